package hac65

// This file is the Go-native, three-table reshaping of the teacher's
// single flat Opcode{Value,Name,Length,AddrMode} catalog in
// chriskillpack/bbc-disasm's opcodes.go: one map from mnemonic to its
// printable text, one from address mode to operand shape, one from
// opcode byte to (mnemonic, mode, memory operation). Splitting it this
// way is what lets the fingerprinter and the dark-code decoder ask
// "how many operand bytes does this address mode have" without also
// carrying a specific opcode's name and length around.

var mnemonicInfos = map[Mnemonic]MnemonicInfo{
	MADC: {"ADC"}, MAND: {"AND"}, MASL: {"ASL"}, MBCC: {"BCC"}, MBCS: {"BCS"},
	MBEQ: {"BEQ"}, MBNE: {"BNE"}, MBMI: {"BMI"}, MBPL: {"BPL"}, MBVC: {"BVC"},
	MBVS: {"BVS"}, MBIT: {"BIT"}, MBRK: {"BRK"}, MCLC: {"CLC"}, MCLD: {"CLD"},
	MCLI: {"CLI"}, MCLV: {"CLV"}, MCMP: {"CMP"}, MCPX: {"CPX"}, MCPY: {"CPY"},
	MDEC: {"DEC"}, MDEX: {"DEX"}, MDEY: {"DEY"}, MEOR: {"EOR"}, MINC: {"INC"},
	MINX: {"INX"}, MINY: {"INY"}, MJMP: {"JMP"}, MJSR: {"JSR"}, MLDA: {"LDA"},
	MLDX: {"LDX"}, MLDY: {"LDY"}, MLSR: {"LSR"}, MNOP: {"NOP"}, MORA: {"ORA"},
	MPHA: {"PHA"}, MPHP: {"PHP"}, MPLA: {"PLA"}, MPLP: {"PLP"}, MROL: {"ROL"},
	MROR: {"ROR"}, MRTI: {"RTI"}, MRTS: {"RTS"}, MSBC: {"SBC"}, MSEC: {"SEC"},
	MSED: {"SED"}, MSEI: {"SEI"}, MSTA: {"STA"}, MSTX: {"STX"}, MSTY: {"STY"},
	MTAX: {"TAX"}, MTAY: {"TAY"}, MTSX: {"TSX"}, MTXA: {"TXA"}, MTXS: {"TXS"},
	MTYA: {"TYA"},
}

var addressModeInfos = map[AddressMode]AddressModeInfo{
	AMAccumulator: {0, "A", ""},
	AMAbsolute:    {2, "", ""},
	AMAbsoluteX:   {2, "", ",X"},
	AMAbsoluteY:   {2, "", ",Y"},
	AMImmediate:   {1, "#", ""},
	AMImplied:     {0, "", ""},
	AMIndirect:    {2, "(", ")"},
	AMIndirectX:   {1, "(", ",X)"},
	AMIndirectY:   {1, "(", "),Y"},
	AMRelative:    {1, "", ""},
	AMZeroPage:    {1, "", ""},
	AMZeroPageX:   {1, "", ",X"},
	AMZeroPageY:   {1, "", ",Y"},
}

// opcodeInfos is the catalog of all 151 legal 6502 opcodes. Source:
// http://www.6502.org/tutorials/6502opcodes.html, cross-checked against
// original_source/Analyzer.hpp's kOpcodeInfos table.
var opcodeInfos = map[Opcode]OpcodeInfo{
	0x69: {MADC, AMImmediate, MONone}, 0x6D: {MADC, AMAbsolute, MORead},
	0x65: {MADC, AMZeroPage, MORead}, 0x61: {MADC, AMIndirectX, MORead},
	0x71: {MADC, AMIndirectY, MORead}, 0x75: {MADC, AMZeroPageX, MORead},
	0x7D: {MADC, AMAbsoluteX, MORead}, 0x79: {MADC, AMAbsoluteY, MORead},

	0x29: {MAND, AMImmediate, MONone}, 0x2D: {MAND, AMAbsolute, MORead},
	0x25: {MAND, AMZeroPage, MORead}, 0x21: {MAND, AMIndirectX, MORead},
	0x31: {MAND, AMIndirectY, MORead}, 0x35: {MAND, AMZeroPageX, MORead},
	0x3D: {MAND, AMAbsoluteX, MORead}, 0x39: {MAND, AMAbsoluteY, MORead},

	0x0E: {MASL, AMAbsolute, MOBoth}, 0x06: {MASL, AMZeroPage, MOBoth},
	0x0A: {MASL, AMAccumulator, MONone}, 0x16: {MASL, AMZeroPageX, MOBoth},
	0x1E: {MASL, AMAbsoluteX, MOBoth},

	0x90: {MBCC, AMRelative, MONone}, 0xB0: {MBCS, AMRelative, MONone},
	0xF0: {MBEQ, AMRelative, MONone}, 0xD0: {MBNE, AMRelative, MONone},
	0x30: {MBMI, AMRelative, MONone}, 0x10: {MBPL, AMRelative, MONone},
	0x50: {MBVC, AMRelative, MONone}, 0x70: {MBVS, AMRelative, MONone},

	0x2C: {MBIT, AMAbsolute, MORead}, 0x24: {MBIT, AMZeroPage, MORead},

	0x00: {MBRK, AMImplied, MONone},

	0x18: {MCLC, AMImplied, MONone}, 0xD8: {MCLD, AMImplied, MONone},
	0x58: {MCLI, AMImplied, MONone}, 0xB8: {MCLV, AMImplied, MONone},

	0xC9: {MCMP, AMImmediate, MONone}, 0xCD: {MCMP, AMAbsolute, MORead},
	0xC5: {MCMP, AMZeroPage, MORead}, 0xC1: {MCMP, AMIndirectX, MORead},
	0xD1: {MCMP, AMIndirectY, MORead}, 0xD5: {MCMP, AMZeroPageX, MORead},
	0xDD: {MCMP, AMAbsoluteX, MORead}, 0xD9: {MCMP, AMAbsoluteY, MORead},

	0xE0: {MCPX, AMImmediate, MONone}, 0xEC: {MCPX, AMAbsolute, MORead},
	0xE4: {MCPX, AMZeroPage, MORead},

	0xC0: {MCPY, AMImmediate, MONone}, 0xCC: {MCPY, AMAbsolute, MORead},
	0xC4: {MCPY, AMZeroPage, MORead},

	0xCE: {MDEC, AMAbsolute, MOBoth}, 0xC6: {MDEC, AMZeroPage, MOBoth},
	0xD6: {MDEC, AMZeroPageX, MOBoth}, 0xDE: {MDEC, AMAbsoluteX, MOBoth},

	0xCA: {MDEX, AMImplied, MONone}, 0x88: {MDEY, AMImplied, MONone},

	0x49: {MEOR, AMImmediate, MONone}, 0x4D: {MEOR, AMAbsolute, MORead},
	0x45: {MEOR, AMZeroPage, MORead}, 0x41: {MEOR, AMIndirectX, MORead},
	0x51: {MEOR, AMIndirectY, MORead}, 0x55: {MEOR, AMZeroPageX, MORead},
	0x5D: {MEOR, AMAbsoluteX, MORead}, 0x59: {MEOR, AMAbsoluteY, MORead},

	0xEE: {MINC, AMAbsolute, MOBoth}, 0xE6: {MINC, AMZeroPage, MOBoth},
	0xF6: {MINC, AMZeroPageX, MOBoth}, 0xFE: {MINC, AMAbsoluteX, MOBoth},

	0xE8: {MINX, AMImplied, MONone}, 0xC8: {MINY, AMImplied, MONone},

	JMPAbsolute: {MJMP, AMAbsolute, MONone}, JMPIndirect: {MJMP, AMIndirect, MONone},

	0x20: {MJSR, AMAbsolute, MONone},

	0xA9: {MLDA, AMImmediate, MONone}, 0xAD: {MLDA, AMAbsolute, MORead},
	0xA5: {MLDA, AMZeroPage, MORead}, 0xA1: {MLDA, AMIndirectX, MORead},
	0xB1: {MLDA, AMIndirectY, MORead}, 0xB5: {MLDA, AMZeroPageX, MORead},
	0xBD: {MLDA, AMAbsoluteX, MORead}, 0xB9: {MLDA, AMAbsoluteY, MORead},

	0xA2: {MLDX, AMImmediate, MONone}, 0xAE: {MLDX, AMAbsolute, MORead},
	0xA6: {MLDX, AMZeroPage, MORead}, 0xBE: {MLDX, AMAbsoluteY, MORead},
	0xB6: {MLDX, AMZeroPageY, MORead},

	0xA0: {MLDY, AMImmediate, MONone}, 0xAC: {MLDY, AMAbsolute, MORead},
	0xA4: {MLDY, AMZeroPage, MORead}, 0xB4: {MLDY, AMZeroPageX, MORead},
	0xBC: {MLDY, AMAbsoluteX, MORead},

	0x4E: {MLSR, AMAbsolute, MOBoth}, 0x46: {MLSR, AMZeroPage, MOBoth},
	0x4A: {MLSR, AMAccumulator, MONone}, 0x56: {MLSR, AMZeroPageX, MOBoth},
	0x5E: {MLSR, AMAbsoluteX, MOBoth},

	0xEA: {MNOP, AMImplied, MONone},

	0x09: {MORA, AMImmediate, MONone}, 0x0D: {MORA, AMAbsolute, MORead},
	0x05: {MORA, AMZeroPage, MORead}, 0x01: {MORA, AMIndirectX, MORead},
	0x11: {MORA, AMIndirectY, MORead}, 0x15: {MORA, AMZeroPageX, MORead},
	0x1D: {MORA, AMAbsoluteX, MORead}, 0x19: {MORA, AMAbsoluteY, MORead},

	0x48: {MPHA, AMImplied, MONone}, 0x08: {MPHP, AMImplied, MONone},
	0x68: {MPLA, AMImplied, MONone}, 0x28: {MPLP, AMImplied, MONone},

	0x2E: {MROL, AMAbsolute, MOBoth}, 0x26: {MROL, AMZeroPage, MOBoth},
	0x2A: {MROL, AMAccumulator, MONone}, 0x36: {MROL, AMZeroPageX, MOBoth},
	0x3E: {MROL, AMAbsoluteX, MOBoth},

	0x6E: {MROR, AMAbsolute, MOBoth}, 0x66: {MROR, AMZeroPage, MOBoth},
	0x6A: {MROR, AMAccumulator, MONone}, 0x76: {MROR, AMZeroPageX, MOBoth},
	0x7E: {MROR, AMAbsoluteX, MOBoth},

	0x40: {MRTI, AMImplied, MONone}, 0x60: {MRTS, AMImplied, MONone},

	0xE9: {MSBC, AMImmediate, MONone}, 0xED: {MSBC, AMAbsolute, MORead},
	0xE5: {MSBC, AMZeroPage, MORead}, 0xE1: {MSBC, AMIndirectX, MORead},
	0xF1: {MSBC, AMIndirectY, MORead}, 0xF5: {MSBC, AMZeroPageX, MORead},
	0xFD: {MSBC, AMAbsoluteX, MORead}, 0xF9: {MSBC, AMAbsoluteY, MORead},

	0x38: {MSEC, AMImplied, MONone}, 0xF8: {MSED, AMImplied, MONone},
	0x78: {MSEI, AMImplied, MONone},

	0x8D: {MSTA, AMAbsolute, MOWrite}, 0x85: {MSTA, AMZeroPage, MOWrite},
	0x81: {MSTA, AMIndirectX, MOWrite}, 0x91: {MSTA, AMIndirectY, MOWrite},
	0x95: {MSTA, AMZeroPageX, MOWrite}, 0x9D: {MSTA, AMAbsoluteX, MOWrite},
	0x99: {MSTA, AMAbsoluteY, MOWrite},

	0x8E: {MSTX, AMAbsolute, MOWrite}, 0x86: {MSTX, AMZeroPage, MOWrite},
	0x96: {MSTX, AMZeroPageY, MOWrite},

	0x8C: {MSTY, AMAbsolute, MOWrite}, 0x84: {MSTY, AMZeroPage, MOWrite},
	0x94: {MSTY, AMZeroPageX, MOWrite},

	0xAA: {MTAX, AMImplied, MONone}, 0xA8: {MTAY, AMImplied, MONone},
	0xBA: {MTSX, AMImplied, MONone}, 0x8A: {MTXA, AMImplied, MONone},
	0x9A: {MTXS, AMImplied, MONone}, 0x98: {MTYA, AMImplied, MONone},
}

// LookupMnemonicInfo returns the catalog entry for a mnemonic.
func LookupMnemonicInfo(m Mnemonic) MnemonicInfo { return mnemonicInfos[m] }

// LookupAddressModeInfo returns the catalog entry for an address mode.
func LookupAddressModeInfo(am AddressMode) AddressModeInfo { return addressModeInfos[am] }

// LookupOpcodeInfo returns the catalog entry for an opcode byte and
// whether it names a legal 6502 instruction.
func LookupOpcodeInfo(op Opcode) (OpcodeInfo, bool) {
	info, ok := opcodeInfos[op]
	return info, ok
}
