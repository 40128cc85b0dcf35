package hac65

// addSegment records a segment, assigning it the next ordinal, and
// (for a data segment) evicts any illegal/instruction records that
// fell inside the address range it now claims. A segment can be
// reclassified later (extractData demotes segments with embedded
// illegals); the eviction here only guards against a data segment that
// was re-declared over a range a speculative code decode had already
// populated.
func (a *Analyzer) addSegment(startAddress Address, seg Segment) {
	seg.Ordinal = a.segments.Len()
	a.segments.Add(seg)

	if seg.Type.IsData() {
		for addr := int(seg.StartAddress); addr <= int(seg.EndAddress); addr++ {
			a.removeIllegal(Address(addr))
			a.removeInstruction(Address(addr))
		}
	}
}

// inferSegments is the fixed-point core: it walks the lands and leaps
// in address order, pairing each land with the first leap at or past
// it to produce a maximal code segment, then fills every gap between
// segments (and the non-jump vector tables) with data segments. It is
// re-run every time a new land or leap is discovered.
func (a *Analyzer) inferSegments() error {
	a.segments = newSegmentTable()

	lands := a.lands.All()
	leaps := a.leaps.All()
	if len(lands) == 0 || len(leaps) == 0 {
		return nil
	}

	origin := a.GetOriginAddress()
	landIdx, leapIdx := 0, 0
	startAddress := origin
	endAddress := startAddress

	for startAddress <= a.endAddress && landIdx < len(lands) && leapIdx < len(leaps) {
		var segType SegmentType
		for {
			segType = lands[landIdx].Type
			startAddress = lands[landIdx].Address
			landIdx++
			if !(startAddress != origin && startAddress <= endAddress && landIdx < len(lands)) {
				break
			}
		}
		for {
			endAddress = leaps[leapIdx]
			leapIdx++
			if !(endAddress < startAddress && leapIdx < len(leaps)) {
				break
			}
		}

		if startAddress <= endAddress && endAddress <= a.endAddress {
			a.addSegment(startAddress, Segment{Type: segType, StartAddress: startAddress, EndAddress: endAddress})
		}
	}

	// Segment the non-jump vector tables as known data.
	addTableSegment := func(tables []vectorTable, entrySize uint16) {
		for _, t := range tables {
			a.addSegment(t.Address, Segment{
				Type:         STDataKnown,
				StartAddress: t.Address,
				EndAddress:   t.Address + t.Count*entrySize - 1,
			})
		}
	}
	addTableSegment(a.normalVectorTables, 2)
	addTableSegment(a.indirectVectorTables, 2)
	addTableSegment(a.keyedVectorTables, 3)
	addTableSegment(a.keyedIndirectVectorTables, 3)
	addTableSegment(a.keyedIndirectMinusOneVectorTables, 3)
	addTableSegment(a.minusOneVectorTables, 2)
	addTableSegment(a.splitVectorTables, 2)

	// Fill the remaining gaps with data segments, known where a label
	// exists at the gap's start, inferred otherwise.
	cursor := origin
	for _, seg := range a.segments.All() {
		if cursor < seg.StartAddress {
			gapEnd := seg.StartAddress - 1
			if gapEnd <= a.endAddress {
				_, labeled := a.LookupLabel(cursor, MOUnknown)
				gapType := STDataInferred
				if labeled {
					gapType = STDataKnown
				}
				a.addSegment(cursor, Segment{Type: gapType, StartAddress: cursor, EndAddress: gapEnd})
			}
		}
		cursor = seg.EndAddress + 1
	}
	if cursor != 0 && cursor <= a.endAddress {
		a.addSegment(cursor, Segment{Type: STDataInferred, StartAddress: cursor, EndAddress: a.endAddress})
	}

	return nil
}
