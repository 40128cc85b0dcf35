package hac65

// addressToAssemblyOffset converts an absolute address into an index
// into a.assembly, relative to the origin address. It is the one place
// an out-of-range address (one that falls outside the loaded image)
// is caught and turned into an AnalysisError.
func (a *Analyzer) addressToAssemblyOffset(addr Address) (int, error) {
	origin := a.GetOriginAddress()
	offset := int(addr) - int(origin)
	if offset < 0 || offset >= a.assemblySize {
		return 0, NewAnalysisError(
			"encountered an out-of-object address ($%04X) -- is the origin address set correctly? (see -o option)",
			addr)
	}
	return offset, nil
}

// initializeAssembly validates the loaded image against the origin
// address and collects every byte address covered by a declared vector
// table, used later so dark-code promotion never claims a segment that
// overlaps a vector table.
func (a *Analyzer) initializeAssembly() error {
	origin := a.GetOriginAddress()
	if int(origin)+a.assemblySize > kMaxAssemblySize {
		return NewAnalysisError(
			"Origin address ($%04X) + object size ($%04X) exceeds maximum address ($%04X)"+
				" -- is the origin address set correctly? (see -o option)",
			origin, a.assemblySize, kMaxAssemblySize-1)
	}

	a.endAddress = origin + Address(a.assemblySize-1)

	collect := func(tables []vectorTable, vectorSize uint16) {
		for _, t := range tables {
			octetCount := t.Count * vectorSize
			for offset := Address(0); offset < octetCount; offset++ {
				a.allVectorAddresses.Add(t.Address + offset)
			}
		}
	}
	collect(a.jumpVectorTables, 3)
	collect(a.keyedVectorTables, 3)
	collect(a.keyedIndirectVectorTables, 3)
	collect(a.keyedIndirectMinusOneVectorTables, 3)
	collect(a.splitVectorTables, 2)
	collect(a.minusOneVectorTables, 2)
	collect(a.normalVectorTables, 2)
	collect(a.indirectVectorTables, 2)

	return nil
}

// initializeLedges expands the declared vector table shapes into
// concrete lands and leaps. Indirections run first because they
// themselves declare Normal/MinusOne tables that addVectorLedges then
// has to see.
func (a *Analyzer) initializeLedges() error {
	if err := a.addVectorIndirections(); err != nil {
		return err
	}
	if err := a.addVectorLedges(); err != nil {
		return err
	}
	return a.addJumpVectorLedges()
}

// addVectorIndirections expands Indirect, KeyedIndirect, and
// KeyedIndirectMinusOne tables: each entry holds the address of a
// further vector pair rather than a land directly, so this pass reads
// that address out of the image and re-declares it as a Normal (or
// MinusOne, for the "-1" variant) vector table for addVectorLedges to
// resolve on its next pass.
func (a *Analyzer) addVectorIndirections() error {
	expand := func(tableAddress Address, entryCount uint16, entrySize, vectorOffset uint16, landAdjust int) error {
		offset := Address(0)
		for count := uint16(0); count < entryCount; count++ {
			assemblyOffset, err := a.addressToAssemblyOffset(tableAddress + offset)
			if err != nil {
				return err
			}
			offset += entrySize
			vectorAddress := Address(a.assembly[assemblyOffset+int(vectorOffset)+1])<<8 |
				Address(a.assembly[assemblyOffset+int(vectorOffset)])
			if vectorAddress >= a.GetOriginAddress() {
				switch landAdjust {
				case 0:
					a.DeclareNormalVectorTable(vectorAddress, 1)
				case 1:
					a.DeclareMinusOneVectorTable(vectorAddress, 1)
				}
			}
		}
		return nil
	}

	for _, t := range a.indirectVectorTables {
		if err := expand(t.Address, t.Count, 2, 0, 0); err != nil {
			return err
		}
	}
	for _, t := range a.keyedIndirectVectorTables {
		if err := expand(t.Address, t.Count, 3, 1, 0); err != nil {
			return err
		}
	}
	for _, t := range a.keyedIndirectMinusOneVectorTables {
		if err := expand(t.Address, t.Count, 3, 1, 1); err != nil {
			return err
		}
	}
	return nil
}

// addVectorLedges resolves Normal, MinusOne, Keyed, and Split tables
// into concrete CodeKnown lands.
func (a *Analyzer) addVectorLedges() error {
	expand := func(tableAddress Address, entryCount uint16, entrySize, vectorOffset, splitOffset uint16, landAdjust Address) error {
		offset := Address(0)
		for count := uint16(0); count < entryCount; count++ {
			assemblyOffset, err := a.addressToAssemblyOffset(tableAddress + offset)
			if err != nil {
				return err
			}
			offset += entrySize
			landAddress := Address(a.assembly[assemblyOffset+int(vectorOffset)+int(splitOffset)+1])<<8 |
				Address(a.assembly[assemblyOffset+int(vectorOffset)])
			landAddress += landAdjust
			if landAddress >= a.GetOriginAddress() {
				a.addLand(landAddress, STCodeKnown)
			}
		}
		return nil
	}

	for _, t := range a.normalVectorTables {
		if err := expand(t.Address, t.Count, 2, 0, 0, 0); err != nil {
			return err
		}
	}
	for _, t := range a.minusOneVectorTables {
		if err := expand(t.Address, t.Count, 2, 0, 0, 1); err != nil {
			return err
		}
	}
	for _, t := range a.keyedVectorTables {
		if err := expand(t.Address, t.Count, 3, 1, 0, 0); err != nil {
			return err
		}
	}
	for _, t := range a.splitVectorTables {
		if err := expand(t.Address, t.Count, 1, 0, Address(t.Count-1), 0); err != nil {
			return err
		}
	}
	return nil
}

// addJumpVectorLedges resolves jump-vector tables: each entry is a full
// JMP-absolute instruction. The ledge is both the JMP itself (a known
// land/leap pair over the three-byte instruction) and the address it
// jumps to.
func (a *Analyzer) addJumpVectorLedges() error {
	for _, t := range a.jumpVectorTables {
		offset := Address(0)
		for count := uint16(0); count < t.Count; count++ {
			vectorAddress := t.Address + offset
			a.addLand(vectorAddress, STCodeKnown)
			a.addLeap(vectorAddress + 2)

			assemblyOffset, err := a.addressToAssemblyOffset(vectorAddress)
			if err != nil {
				return err
			}
			offset += 3
			if a.assembly[assemblyOffset] != JMPAbsolute {
				return NewAnalysisError(
					"jump vector table entry at $%04X does not begin with a JMP absolute opcode", vectorAddress)
			}
			landAddress := Address(a.assembly[assemblyOffset+2])<<8 | Address(a.assembly[assemblyOffset+1])
			a.addLand(landAddress, STCodeKnown)
		}
	}
	return nil
}
