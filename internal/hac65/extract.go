package hac65

import "log"

// extractCode decodes every code segment fully, populating the
// instructions and illegals maps with the final result.
func (a *Analyzer) extractCode() {
	legal := func(address Address, inst Instruction) bool {
		a.addInstruction(address, inst)
		return false
	}
	illegal := func(address Address, op Opcode) {
		a.addIllegal(address, op)
	}
	for _, seg := range a.segments.All() {
		if seg.Type.IsCode() {
			a.decodeInstructions(seg.StartAddress, seg.EndAddress, legal, illegal)
		}
	}
}

// segmentHasVectors reports whether any declared vector-table byte
// falls inside a segment's address range.
func (a *Analyzer) segmentHasVectors(seg Segment) bool {
	for _, addr := range a.allVectorAddresses.All() {
		if addr > seg.EndAddress {
			break
		}
		if seg.StartAddress <= addr {
			return true
		}
	}
	return false
}

// extractDarkCode speculatively promotes DataInferred segments that
// look like code: a segment bordered by code on at least one side
// (conservatively treating the image's very first and last segment as
// if they had a code neighbor), spanning more than two bytes, and
// clear of any vector table, is decoded once to count illegal bytes;
// if none are found the whole segment is promoted to CodeDark and
// decoded again for real.
func (a *Analyzer) extractDarkCode() {
	segs := a.segments.All()
	for i, seg := range segs {
		hasCodePredecessor := i == 0 || segs[i-1].Type.IsCode()
		hasCodeSuccessor := i == len(segs)-1 || segs[i+1].Type.IsCode()

		if seg.Type == STDataInferred &&
			(hasCodePredecessor || hasCodeSuccessor) &&
			seg.EndAddress-seg.StartAddress > 1 &&
			!a.segmentHasVectors(seg) {

			illegalCount := a.decodeInstructions(seg.StartAddress, seg.EndAddress,
				func(Address, Instruction) bool { return false }, nil)

			if illegalCount == 0 {
				promoted := seg
				promoted.Type = STCodeDark
				a.segments.Add(promoted)

				a.decodeInstructions(seg.StartAddress, seg.EndAddress,
					func(address Address, inst Instruction) bool {
						a.addInstruction(address, inst)
						return false
					},
					func(address Address, op Opcode) {
						a.addIllegal(address, op)
					})
			}
		}
	}
}

// extractData demotes any segment that turned out to contain an
// illegal opcode byte to DataInferred (illegal bytes only ever occur
// inside data, never inside genuine code), merges newly-adjacent
// same-type data segments, and finally copies each data segment's raw
// bytes into the data map.
func (a *Analyzer) extractData() {
	// Demote the segment enclosing each illegal byte. Scanning
	// segments from the highest start address downward finds the
	// tightest enclosing segment first, matching a reverse walk over
	// an address-ordered map.
	for illegalAddress := range a.illegals {
		segs := a.segments.All()
		for i := len(segs) - 1; i >= 0; i-- {
			if segs[i].StartAddress <= illegalAddress {
				demoted := segs[i]
				demoted.Type = STDataInferred
				a.segments.Add(demoted)
				break
			}
		}
	}

	// Merge adjacent same-type data segments, then copy bytes.
	origin := a.GetOriginAddress()
	segs := a.segments.All()
	merged := make([]Segment, 0, len(segs))
	for i := 0; i < len(segs); {
		seg := segs[i]
		if seg.Type.IsData() {
			j := i + 1
			for j < len(segs) && segs[j].Type == seg.Type {
				seg.EndAddress = segs[j].EndAddress
				j++
			}
			i = j
		} else {
			i++
		}
		merged = append(merged, seg)
	}

	a.segments = newSegmentTable()
	for ordinal, seg := range merged {
		seg.Ordinal = ordinal
		a.segments.Add(seg)
		if seg.Type.IsData() {
			for addr := int(seg.StartAddress); addr <= int(seg.EndAddress); addr++ {
				a.addData(Address(addr), a.assembly[addr-int(origin)])
			}
		}
	}
}

// Analyze runs the full HAC/65 inference pipeline over the declared
// image: initialize, expand vector declarations into lands and leaps,
// alternate ledge inference with segment inference until the segment
// set stabilizes, then extract code, optionally dark code, then data.
func (a *Analyzer) Analyze() error {
	if err := a.initializeAssembly(); err != nil {
		return err
	}

	if err := a.initializeLedges(); err != nil {
		return err
	}

	if a.inferLedges1() {
		if err := a.inferSegments(); err != nil {
			return err
		}
		if a.isTracing {
			log.Printf("segments: pass 1 settled on %d segments", a.segments.Len())
		}
		for pass := 2; a.inferLedges2(); pass++ {
			if err := a.inferSegments(); err != nil {
				return err
			}
			if a.isTracing {
				log.Printf("segments: pass %d settled on %d segments", pass, a.segments.Len())
			}
		}
	}

	if a.segments.Len() == 0 {
		return NewAnalysisError(
			"Curiously, no valid segments were discovered -- is the origin address set correctly? (see -o option)")
	}

	a.extractCode()
	if a.isIlluminating {
		a.extractDarkCode()
	}
	a.extractData()

	return nil
}
