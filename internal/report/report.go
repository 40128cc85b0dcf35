// Package report renders an analyzed assembly as human-readable text:
// a segment map, fingerprint listing, full disassembly, or the
// architecture overlays that were loaded for the run. Grounded on
// original_source/Reporter.cpp's section-by-section report methods,
// with the column layout adapted from chriskillpack/bbc-disasm's
// disassemble.go. Data bytes are rendered as ".BYTE $XX" lines.
package report

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"hac65/internal/hac65"
	"hac65/internal/overlay"
)

// Source is the subset of *hac65.Analyzer a Reporter reads from.
type Source interface {
	GetAssembly() []hac65.Octet
	GetAssemblySize() int
	GetOriginAddress() hac65.Address
	GetEndAddress() hac65.Address
	GetData() map[hac65.Address]hac65.Octet
	GetIllegals() map[hac65.Address]hac65.Opcode
	GetInstructions() map[hac65.Address]hac65.Instruction
	GetSegments() []hac65.Segment
	LookupOpcodeInfo(op hac65.Opcode) (hac65.OpcodeInfo, bool)
	LookupMnemonicInfo(m hac65.Mnemonic) hac65.MnemonicInfo
	LookupAddressModeInfo(am hac65.AddressMode) hac65.AddressModeInfo
	LookupLabel(addr hac65.Address, memOp hac65.MemoryOperation) (string, bool)
	LookupEquate(value hac65.Address) ([]string, bool)
	FingerprintCodeSegment(seg hac65.Segment) hac65.Fingerprint
	FingerprintDataSegment(seg hac65.Segment) hac65.Fingerprint
}

// Section identifies one of the four report sections, matching the
// -R flag's 's'/'f'/'d'/'o' letters.
type Section byte

const (
	SectionSegments     Section = 's'
	SectionFingerprints Section = 'f'
	SectionDisassembly  Section = 'd'
	SectionOverlays     Section = 'o'
)

// ParseSections turns a -R flag value such as "sfd" into the ordered
// list of sections it names.
func ParseSections(flag string) ([]Section, error) {
	var out []Section
	for _, r := range flag {
		s := Section(r)
		switch s {
		case SectionSegments, SectionFingerprints, SectionDisassembly, SectionOverlays:
			out = append(out, s)
		default:
			return nil, hac65.NewUsageError("unrecognized report section '%c'", r)
		}
	}
	return out, nil
}

// Reporter renders report sections against an analyzed assembly and
// the overlays that fed it.
type Reporter struct {
	Analyzer Source
	Overlays []overlay.Overlay
}

// New returns a Reporter over the given analyzer results and loaded
// overlay history.
func New(analyzer Source, overlays []overlay.Overlay) *Reporter {
	return &Reporter{Analyzer: analyzer, Overlays: overlays}
}

// Report writes a version/run header followed by each requested
// section in order.
func (r *Reporter) Report(w io.Writer, versionText, runTimeText, commandText, objectMd5Hex string, sections []Section) {
	r.reportHeader(w, versionText, runTimeText, commandText, objectMd5Hex)
	for _, s := range sections {
		switch s {
		case SectionDisassembly:
			r.ReportDisassembly(w)
		case SectionFingerprints:
			r.ReportFingerprints(w)
		case SectionOverlays:
			r.ReportOverlays(w)
		case SectionSegments:
			r.ReportSegments(w)
		}
	}
}

func (r *Reporter) reportHeader(w io.Writer, versionText, runTimeText, commandText, objectMd5Hex string) {
	fmt.Fprintf(w, "%s [run:%s]\n", versionText, runTimeText)
	fmt.Fprintf(w, "%s[md5:%s]\n\n", commandText, objectMd5Hex)
	fmt.Fprintln(w, "Architecture Overlays:")
	for _, ov := range r.Overlays {
		fmt.Fprintf(w, "    %s\n", ov.Architecture)
	}
}

// addressToString renders an address, preferring a registered label
// (unless the operand is Immediate, which is a value not an address),
// then falling back to hex sized to the address mode: 4 digits for a
// 16-bit absolute/indirect form, 2 digits otherwise. An Immediate value
// of 0-9 is printed as plain decimal, and an address with no opcode
// context is printed as four hex digits without a '$'.
func (r *Reporter) addressToString(addr hac65.Address, opcode hac65.Opcode, hasOpcode, symbolic bool) string {
	var mode hac65.AddressMode
	var memOp hac65.MemoryOperation
	if hasOpcode {
		if info, ok := r.Analyzer.LookupOpcodeInfo(opcode); ok {
			mode, memOp = info.AddressMode, info.MemoryOperation
		}
	}

	if mode == hac65.AMUnknown {
		return fmt.Sprintf("%04X", addr)
	}

	if symbolic && mode != hac65.AMImmediate {
		if label, ok := r.Analyzer.LookupLabel(addr, memOp); ok {
			return label
		}
	}

	if mode == hac65.AMImmediate && addr <= 9 {
		return fmt.Sprintf("%d", addr)
	}

	width := 2
	switch mode {
	case hac65.AMAbsolute, hac65.AMAbsoluteX, hac65.AMAbsoluteY, hac65.AMIndirect:
		width = 4
	}
	return fmt.Sprintf("$%0*X", width, addr)
}

func segmentTypeString(t hac65.SegmentType) string {
	switch t {
	case hac65.STCodeDark:
		return "code_dark"
	case hac65.STCodeInferred:
		return "code_inferred"
	case hac65.STCodeKnown:
		return "code_known"
	case hac65.STDataInferred:
		return "data_inferred"
	case hac65.STDataKnown:
		return "data_known"
	default:
		return "unknown"
	}
}

// streamLabel renders the fixed-width label column: up to 14 printable
// characters of the label at addr (the code label, else a data label),
// truncated with a trailing '/' if longer.
func (r *Reporter) streamLabel(addr hac65.Address) string {
	const maxLabelLength = 14
	label, ok := r.Analyzer.LookupLabel(addr, hac65.MOUnknown)
	if !ok {
		label = ""
	} else if len(label) > maxLabelLength {
		label = label[:maxLabelLength] + "/"
	}
	return fmt.Sprintf("%-*s", maxLabelLength+2, label)
}

// streamOctets renders up to three raw instruction/data bytes as
// space-separated two-digit hex, padded on the right with blanks to a
// fixed three-column width.
func streamOctets(octets []hac65.Octet) string {
	var b strings.Builder
	for i := 0; i < 3; i++ {
		if i > 0 {
			b.WriteByte(' ')
		}
		if i < len(octets) {
			fmt.Fprintf(&b, "%02X", octets[i])
		} else {
			b.WriteString("  ")
		}
	}
	return b.String()
}

// disassembleInstruction renders an instruction's raw bytes and its
// mnemonic form, e.g. ("AD 00 C0", "LDA $C000").
func (r *Reporter) disassembleInstruction(addr hac65.Address, inst hac65.Instruction) (raw, cooked string) {
	origin := r.Analyzer.GetOriginAddress()
	assembly := r.Analyzer.GetAssembly()
	modeInfo := r.Analyzer.LookupAddressModeInfo(inst.OpcodeInfo.AddressMode)

	octets := []hac65.Octet{assembly[addr-origin]}
	for i := uint8(0); i < modeInfo.OperandSize; i++ {
		octets = append(octets, assembly[addr-origin+hac65.Address(i)+1])
	}
	raw = streamOctets(octets)

	var b strings.Builder
	mnemonicInfo := r.Analyzer.LookupMnemonicInfo(inst.OpcodeInfo.Mnemonic)
	fmt.Fprintf(&b, "%s %s", mnemonicInfo.Text, modeInfo.Prefix)

	if inst.OpcodeInfo.AddressMode == hac65.AMImmediate {
		operandText := r.addressToString(hac65.Address(inst.Operand), inst.Opcode, true, false)
		fmt.Fprintf(&b, "%-8s", operandText)
		if equates, ok := r.Analyzer.LookupEquate(hac65.Address(inst.Operand)); ok {
			b.WriteString(";")
			for i, eq := range equates {
				if i > 0 {
					b.WriteString(", ")
				}
				fmt.Fprintf(&b, "%s?", eq)
			}
		}
	} else {
		operand := inst.Operand
		if inst.OpcodeInfo.AddressMode == hac65.AMRelative {
			operand = hac65.Operand(hac65Branch(addr, modeInfo.OperandSize, inst.Operand))
		}
		if modeInfo.OperandSize > 0 {
			b.WriteString(r.addressToString(hac65.Address(operand), inst.Opcode, true, true))
		}
	}
	b.WriteString(modeInfo.Suffix)
	cooked = b.String()
	return raw, cooked
}

func hac65Branch(addr hac65.Address, operandSize uint8, operand hac65.Operand) hac65.Address {
	offset := int8(operand)
	return addr + hac65.Address(operandSize) + 1 + hac65.Address(int16(offset))
}

// ReportDisassembly renders the full assembly: one line per
// instruction, illegal byte, or data byte, in address order.
func (r *Reporter) ReportDisassembly(w io.Writer) {
	type line struct {
		raw, cooked string
	}
	lines := make(map[hac65.Address]line)

	var instructionCount, instructionOctets, illegalOctets, dataOctets int

	for addr, inst := range r.Analyzer.GetInstructions() {
		raw, cooked := r.disassembleInstruction(addr, inst)
		lines[addr] = line{raw, cooked}
		instructionCount++
		modeInfo := r.Analyzer.LookupAddressModeInfo(inst.OpcodeInfo.AddressMode)
		instructionOctets += int(modeInfo.OperandSize) + 1
	}

	origin := r.Analyzer.GetOriginAddress()
	assembly := r.Analyzer.GetAssembly()
	for addr, opcode := range r.Analyzer.GetIllegals() {
		_ = opcode
		lines[addr] = line{streamOctets([]hac65.Octet{assembly[addr-origin]}), "???"}
		illegalOctets++
	}
	for addr, octet := range r.Analyzer.GetData() {
		lines[addr] = line{streamOctets([]hac65.Octet{octet}), fmt.Sprintf(".BYTE $%02X", octet)}
		dataOctets++
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Disassembly Report")
	fmt.Fprintln(w, "------------------")
	fmt.Fprintf(w, "Assembly size (bytes) : %d\n", r.Analyzer.GetAssemblySize())
	fmt.Fprintf(w, "  Instruction         : %d\n", instructionOctets)
	fmt.Fprintf(w, "  Illegal instruction : %d\n", illegalOctets)
	fmt.Fprintf(w, "  Data                : %d\n", dataOctets)
	fmt.Fprintf(w, "Instructions (count)  : %d\n\n", instructionCount)
	r.streamOrigin(w)
	fmt.Fprintln(w)

	addrs := make([]hac65.Address, 0, len(lines))
	for a := range lines {
		addrs = append(addrs, a)
	}
	sort.Slice(addrs, func(i, j int) bool { return addrs[i] < addrs[j] })
	for _, addr := range addrs {
		ln := lines[addr]
		fmt.Fprintf(w, "%s  %s  %s %s\n",
			r.addressToString(addr, 0, false, false), ln.raw, r.streamLabel(addr), ln.cooked)
	}
}

func (r *Reporter) streamOrigin(w io.Writer) {
	fmt.Fprintf(w, "%-37s%s\n", "*= $", r.addressToString(r.Analyzer.GetOriginAddress(), 0, false, false))
}

// ReportFingerprints renders one sorted line per segment: its MD5
// digest, ordinal, type, start address, and label.
func (r *Reporter) ReportFingerprints(w io.Writer) {
	segments := r.Analyzer.GetSegments()

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Fingerprints Report")
	fmt.Fprintln(w, "-------------------")
	fmt.Fprintf(w, "Assembly size (bytes) : %d\n", r.Analyzer.GetAssemblySize())
	fmt.Fprintf(w, "Segments (count)      : %d\n\n", len(segments))

	lines := make([]string, 0, len(segments))
	for _, seg := range segments {
		var fp hac65.Fingerprint
		if seg.Type.IsCode() {
			fp = r.Analyzer.FingerprintCodeSegment(seg)
		} else {
			fp = r.Analyzer.FingerprintDataSegment(seg)
		}
		lines = append(lines, fmt.Sprintf("%x #%-4d %-13s %s %s\n",
			fp, seg.Ordinal, segmentTypeString(seg.Type),
			r.addressToString(seg.StartAddress, 0, false, false), r.streamLabel(seg.StartAddress)))
	}
	sort.Strings(lines)
	for _, line := range lines {
		fmt.Fprint(w, line)
	}
}

// ReportOverlays renders the parsed document of each architecture
// overlay loaded for this run, most recently loaded first. Documents
// are printed with fmt's %+v map notation, not re-encoded as JSON.
func (r *Reporter) ReportOverlays(w io.Writer) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Overlays Report")
	fmt.Fprintln(w, "---------------")
	fmt.Fprintf(w, "Overlays (count) : %d\n", len(r.Overlays))

	for _, ov := range r.Overlays {
		fmt.Fprintf(w, "\n# %s:\n", ov.Architecture)
		fmt.Fprintf(w, "%+v\n", ov.Document)
	}
}

// ReportSegments renders the segment map: a per-type count summary
// followed by, for each segment, its address range/type/fingerprint
// and (for code) its disassembly or (for data) its hex byte dump.
func (r *Reporter) ReportSegments(w io.Writer) {
	segments := r.Analyzer.GetSegments()

	var codeDark, codeInferred, codeKnown, dataInferred, dataKnown int
	for _, seg := range segments {
		switch seg.Type {
		case hac65.STCodeDark:
			codeDark++
		case hac65.STCodeInferred:
			codeInferred++
		case hac65.STCodeKnown:
			codeKnown++
		case hac65.STDataInferred:
			dataInferred++
		case hac65.STDataKnown:
			dataKnown++
		}
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Segments Report")
	fmt.Fprintln(w, "---------------")
	fmt.Fprintf(w, "Assembly size (bytes) : %d\n", r.Analyzer.GetAssemblySize())
	fmt.Fprintf(w, "Segments (count)      : %d\n", len(segments))
	fmt.Fprintf(w, "  Known Code          : %d\n", codeKnown)
	fmt.Fprintf(w, "  Inferred Code       : %d\n", codeInferred)
	fmt.Fprintf(w, "  Dark Code           : %d\n", codeDark)
	fmt.Fprintf(w, "  Known Data          : %d\n", dataKnown)
	fmt.Fprintf(w, "  Inferred Data       : %d\n\n", dataInferred)
	r.streamOrigin(w)

	for _, seg := range segments {
		var fp hac65.Fingerprint
		if seg.Type.IsCode() {
			fp = r.Analyzer.FingerprintCodeSegment(seg)
		} else {
			fp = r.Analyzer.FingerprintDataSegment(seg)
		}

		fmt.Fprintf(w, "\n#%d %s-%s %s %x\n",
			seg.Ordinal,
			r.addressToString(seg.StartAddress, 0, false, false),
			r.addressToString(seg.EndAddress, 0, false, false),
			segmentTypeString(seg.Type), fp)

		if seg.Type.IsCode() {
			r.streamCodeSegment(w, seg.StartAddress, seg.EndAddress)
		} else {
			r.streamDataSegment(w, seg.StartAddress, seg.EndAddress)
		}
	}
}

func (r *Reporter) streamCodeSegment(w io.Writer, start, end hac65.Address) {
	instructions := r.Analyzer.GetInstructions()
	addrs := make([]hac65.Address, 0)
	for addr := range instructions {
		if addr >= start && addr <= end {
			addrs = append(addrs, addr)
		}
	}
	sort.Slice(addrs, func(i, j int) bool { return addrs[i] < addrs[j] })
	for _, addr := range addrs {
		raw, cooked := r.disassembleInstruction(addr, instructions[addr])
		fmt.Fprintf(w, "%s  %s  %s %s\n", r.addressToString(addr, 0, false, false), raw, r.streamLabel(addr), cooked)
	}
}

func (r *Reporter) streamDataSegment(w io.Writer, start, end hac65.Address) {
	origin := r.Analyzer.GetOriginAddress()
	assembly := r.Analyzer.GetAssembly()
	col := 0
	for addr := int(start); addr <= int(end); addr++ {
		fmt.Fprintf(w, "%02X", assembly[hac65.Address(addr)-origin])
		col++
		if hac65.Address(addr) == end || col%16 == 0 {
			fmt.Fprintln(w)
		} else {
			fmt.Fprint(w, " ")
		}
	}
}
