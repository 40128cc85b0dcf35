package hac65

import "crypto/md5"

// Fingerprint is an MD5 digest identifying a segment's content
// independent of where in the address space it was found.
type Fingerprint [md5.Size]byte

// FingerprintCodeSegment returns a position-independent fingerprint of
// a code segment: each instruction contributes its opcode byte plus
// zeroed operand bytes (so relocatable absolute/zero-page operands
// don't perturb the hash), except Immediate and Relative operands,
// whose low byte is data rather than an address and is hashed as-is.
//
// crypto/md5 is stdlib, not third-party: the spec treats MD5 as an
// external primitive the analyzer calls out to, and nothing in the
// retrieved corpus ships an MD5 implementation of its own to prefer
// over the standard library's.
func (a *Analyzer) FingerprintCodeSegment(seg Segment) Fingerprint {
	var filtered []byte
	a.decodeInstructions(seg.StartAddress, seg.EndAddress,
		func(address Address, inst Instruction) bool {
			filtered = append(filtered, inst.Opcode)
			switch inst.OpcodeInfo.AddressMode {
			case AMAccumulator, AMImplied:
			case AMIndirectX, AMIndirectY, AMZeroPage, AMZeroPageX, AMZeroPageY:
				filtered = append(filtered, 0)
			case AMAbsolute, AMAbsoluteX, AMAbsoluteY, AMIndirect:
				filtered = append(filtered, 0, 0)
			case AMImmediate, AMRelative:
				filtered = append(filtered, byte(inst.Operand&0xFF))
			}
			return false
		}, nil)

	return md5.Sum(filtered)
}

// FingerprintDataSegment returns the raw MD5 digest of a data
// segment's bytes.
func (a *Analyzer) FingerprintDataSegment(seg Segment) Fingerprint {
	origin := a.GetOriginAddress()
	start := int(seg.StartAddress) - int(origin)
	end := int(seg.EndAddress) - int(origin)
	return md5.Sum(a.assembly[start : end+1])
}
