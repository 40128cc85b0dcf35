package hac65

// legalHandler is invoked for each successfully decoded instruction.
// Returning true tells decodeInstructions to stop scanning past this
// instruction (used by the ledge-inference passes to stop at a
// control-flow-terminating instruction).
type legalHandler func(addr Address, inst Instruction) bool

// illegalHandler is invoked for each byte that does not decode as a
// known opcode. May be nil.
type illegalHandler func(addr Address, op Opcode)

// decodeInstructions performs one linear decode pass over
// [startAddress, endAddress], dispatching each instruction to
// legal/illegalHandler as it goes. It never crosses into the reserved
// NMI/RESET/IRQ vector region. It returns the number of bytes that
// failed to decode as a legal opcode.
func (a *Analyzer) decodeInstructions(startAddress, endAddress Address, legal legalHandler, illegal illegalHandler) uint16 {
	var illegalCount uint16

	origin := a.GetOriginAddress()
	startPosition := int(startAddress) - int(origin)
	endPosition := int(endAddress) - int(origin)

	for position := startPosition; position <= endPosition; {
		address := origin + Address(position)
		if address >= kNmiVector {
			break
		}

		opcode := a.assembly[position]
		info, ok := LookupOpcodeInfo(opcode)
		if !ok {
			if illegal != nil {
				illegal(address, opcode)
			}
			illegalCount++
			position++
			continue
		}

		modeInfo := LookupAddressModeInfo(info.AddressMode)
		var operand Operand
		switch modeInfo.OperandSize {
		case 0:
		case 1:
			operand = Operand(a.assembly[position+1])
		case 2:
			operand = Operand(a.assembly[position+1]) | Operand(a.assembly[position+2])<<8
		}

		if legal(address, Instruction{Opcode: opcode, OpcodeInfo: info, Operand: operand}) {
			break
		}

		position += int(modeInfo.OperandSize) + 1
	}

	return illegalCount
}

// branchTarget computes the absolute target of a relative branch
// instruction: address of the next instruction, plus the signed
// one-byte displacement.
func branchTarget(addr Address, operandSize uint8, operand Operand) Address {
	offset := int8(operand)
	return addr + Address(operandSize) + 1 + Address(int16(offset))
}

// inferLedges1 runs the first ledge-inference pass: a linear decode
// starting at every currently-known land, discovering new inferred
// lands (branch/JMP/JSR targets) and new leaps. It stops scanning past
// BRK, JMP, RTI, and RTS, since those terminate the current basic
// block. Returns whether any new leap was discovered.
func (a *Analyzer) inferLedges1() bool {
	oldLeapsCount := a.leaps.Len()

	handler := func(address Address, inst Instruction) bool {
		modeInfo := LookupAddressModeInfo(inst.OpcodeInfo.AddressMode)
		terminates := false
		switch inst.OpcodeInfo.Mnemonic {
		case MBCC, MBCS, MBEQ, MBNE, MBMI, MBPL, MBVC, MBVS:
			a.addLand(branchTarget(address, modeInfo.OperandSize, inst.Operand), STCodeInferred)
		case MBRK:
			a.addLeap(address)
			terminates = true
		case MJMP:
			a.addLeap(address + Address(modeInfo.OperandSize))
			if inst.OpcodeInfo.AddressMode != AMIndirect {
				a.addLand(inst.Operand, STCodeInferred)
			}
			terminates = true
		case MJSR:
			a.addLand(inst.Operand, STCodeInferred)
		case MRTI, MRTS:
			a.addLeap(address + Address(modeInfo.OperandSize))
			terminates = true
		}
		return terminates
	}

	for _, land := range a.lands.All() {
		a.decodeInstructions(land.Address, a.endAddress, handler, nil)
	}

	return a.leaps.Len() > oldLeapsCount
}

// inferLedges2 runs the second ledge-inference pass: a linear decode
// over every currently-known code segment, discovering further
// inferred lands and leaps. Unlike pass 1 it never stops early — every
// code segment is decoded end to end regardless of BRK/JMP/RTI/RTS,
// since by this pass the segment boundaries themselves (not individual
// terminating instructions) define where decoding should stop. Returns
// whether any new land was discovered.
func (a *Analyzer) inferLedges2() bool {
	oldLandsCount := a.lands.Len()

	handler := func(address Address, inst Instruction) bool {
		modeInfo := LookupAddressModeInfo(inst.OpcodeInfo.AddressMode)
		switch inst.OpcodeInfo.Mnemonic {
		case MBCC, MBCS, MBEQ, MBNE, MBMI, MBPL, MBVC, MBVS:
			a.addLand(branchTarget(address, modeInfo.OperandSize, inst.Operand), STCodeInferred)
		case MBRK:
			a.addLeap(address)
		case MJMP:
			a.addLeap(address + Address(modeInfo.OperandSize))
			if inst.OpcodeInfo.AddressMode != AMIndirect {
				a.addLand(inst.Operand, STCodeInferred)
			}
		case MJSR:
			a.addLand(inst.Operand, STCodeInferred)
		case MRTI, MRTS:
			a.addLeap(address + Address(modeInfo.OperandSize))
		}
		return false
	}

	for _, seg := range a.segments.All() {
		if seg.Type.IsCode() {
			a.decodeInstructions(seg.StartAddress, seg.EndAddress, handler, nil)
		}
	}

	return a.lands.Len() > oldLandsCount
}
