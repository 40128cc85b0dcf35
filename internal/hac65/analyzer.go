package hac65

// Reserved interrupt vector addresses. decodeInstructions refuses to
// treat anything at or past kNmiVector as an instruction stream: those
// six bytes are the CPU's own NMI/RESET/IRQ vectors, never executable
// in place.
const (
	kIrqVector   Address = 0xFFFE
	kResetVector Address = kIrqVector - 2
	kNmiVector   Address = kResetVector - 2
)

const (
	kMaxAssemblySize              = 0x10000
	kDefaultOriginAddress Address = 0
)

// vectorTable is one declared table: its address and the number of
// entries it holds.
type vectorTable struct {
	Address Address
	Count   uint16
}

// Analyzer is the inference engine: fed a flat object image and a set
// of declarations (origin, equates, labels, vector tables, expert
// lands/leaps), Analyze runs the fixed-point land/leap/segment sweep
// and leaves its result queryable through the Get*/Lookup* methods.
//
// A single Analyzer is meant to be used once: declare everything, call
// SetAssembly, call Analyze, then read the results. It is not
// goroutine-safe and not meant to be reused across images.
type Analyzer struct {
	codeLabels map[Address]string
	dataLabels map[Address][]string
	equates    map[Address][]string

	indirectVectorTables              []vectorTable
	jumpVectorTables                  []vectorTable
	keyedIndirectMinusOneVectorTables []vectorTable
	keyedIndirectVectorTables         []vectorTable
	keyedVectorTables                 []vectorTable
	minusOneVectorTables              []vectorTable
	normalVectorTables                []vectorTable
	splitVectorTables                 []vectorTable

	allVectorAddresses *addressSet

	isIlluminating bool
	isTracing      bool

	assembly     []Octet
	assemblySize int

	originAddress    Address
	hasOriginAddress bool
	endAddress       Address

	data         map[Address]Octet
	illegals     map[Address]Opcode
	instructions map[Address]Instruction

	lands *landSet
	leaps *addressSet

	segments *segmentTable
}

// NewAnalyzer returns an Analyzer ready to receive declarations.
func NewAnalyzer() *Analyzer {
	return &Analyzer{
		codeLabels:         make(map[Address]string),
		dataLabels:         make(map[Address][]string),
		equates:            make(map[Address][]string),
		allVectorAddresses: newAddressSet(),
		data:               make(map[Address]Octet),
		illegals:           make(map[Address]Opcode),
		instructions:       make(map[Address]Instruction),
		lands:              newLandSet(),
		leaps:              newAddressSet(),
		segments:           newSegmentTable(),
	}
}

// --- declarations -----------------------------------------------------

func (a *Analyzer) DeclareOriginAddress(addr Address) {
	a.originAddress = addr
	a.hasOriginAddress = true
}

func (a *Analyzer) HasOriginAddress() bool { return a.hasOriginAddress }

func (a *Analyzer) GetOriginAddress() Address {
	if a.hasOriginAddress {
		return a.originAddress
	}
	return kDefaultOriginAddress
}

func (a *Analyzer) DeclareCodeLabel(label string, addr Address) {
	a.codeLabels[addr] = label
	a.DeclareLand(addr)
}

func (a *Analyzer) DeclareDataLabel(label string, addr Address) {
	a.dataLabels[addr] = append(a.dataLabels[addr], label)
}

func (a *Analyzer) DeclareEquate(equate string, value Address) {
	a.equates[value] = append(a.equates[value], equate)
}

func (a *Analyzer) DeclareIndirectVectorTable(addr Address, count uint16) {
	a.indirectVectorTables = append(a.indirectVectorTables, vectorTable{addr, count})
}

func (a *Analyzer) DeclareJumpVectorTable(addr Address, count uint16) {
	a.jumpVectorTables = append(a.jumpVectorTables, vectorTable{addr, count})
}

func (a *Analyzer) DeclareKeyedIndirectVectorTable(addr Address, count uint16) {
	a.keyedIndirectVectorTables = append(a.keyedIndirectVectorTables, vectorTable{addr, count})
}

func (a *Analyzer) DeclareKeyedIndirectMinusOneVectorTable(addr Address, count uint16) {
	a.keyedIndirectMinusOneVectorTables = append(a.keyedIndirectMinusOneVectorTables, vectorTable{addr, count})
}

func (a *Analyzer) DeclareKeyedVectorTable(addr Address, count uint16) {
	a.keyedVectorTables = append(a.keyedVectorTables, vectorTable{addr, count})
}

func (a *Analyzer) DeclareMinusOneVectorTable(addr Address, count uint16) {
	a.minusOneVectorTables = append(a.minusOneVectorTables, vectorTable{addr, count})
}

func (a *Analyzer) DeclareNormalVectorTable(addr Address, count uint16) {
	a.normalVectorTables = append(a.normalVectorTables, vectorTable{addr, count})
}

func (a *Analyzer) DeclareSplitVectorTable(addr Address, count uint16) {
	a.splitVectorTables = append(a.splitVectorTables, vectorTable{addr, count})
}

// DeclareLand records an externally-known land (e.g. from an overlay's
// expert.lands list) as CodeKnown.
func (a *Analyzer) DeclareLand(addr Address) bool { return a.addLand(addr, STCodeKnown) }

// DeclareLeap records an externally-known leap.
func (a *Analyzer) DeclareLeap(addr Address) bool { return a.addLeap(addr) }

func (a *Analyzer) addLand(addr Address, t SegmentType) bool {
	if addr < a.GetOriginAddress() {
		return false
	}
	return a.lands.Add(addr, t)
}

func (a *Analyzer) addLeap(addr Address) bool {
	if addr < a.GetOriginAddress() {
		return false
	}
	return a.leaps.Add(addr)
}

func (a *Analyzer) addData(addr Address, o Octet)               { a.data[addr] = o }
func (a *Analyzer) addIllegal(addr Address, o Opcode)           { a.illegals[addr] = o }
func (a *Analyzer) addInstruction(addr Address, in Instruction) { a.instructions[addr] = in }
func (a *Analyzer) removeIllegal(addr Address)                  { delete(a.illegals, addr) }
func (a *Analyzer) removeInstruction(addr Address)              { delete(a.instructions, addr) }

func (a *Analyzer) SetAssembly(assembly []Octet) {
	a.assembly = assembly
	a.assemblySize = len(assembly)
}

func (a *Analyzer) SetIlluminatingMode() { a.isIlluminating = true }

// SetTrace enables the segment-discovery trace: a log.Printf line to
// stderr after each ledge/segment inference pass in Analyze, reporting
// the pass number and the segment count it settled on. Gated by the
// CLI's -R o report flag, not printed otherwise.
func (a *Analyzer) SetTrace() { a.isTracing = true }

// --- accessors ----------------------------------------------------------

func (a *Analyzer) GetAssembly() []Octet                     { return a.assembly }
func (a *Analyzer) GetAssemblySize() int                     { return a.assemblySize }
func (a *Analyzer) GetData() map[Address]Octet               { return a.data }
func (a *Analyzer) GetIllegals() map[Address]Opcode          { return a.illegals }
func (a *Analyzer) GetInstructions() map[Address]Instruction { return a.instructions }
func (a *Analyzer) GetEndAddress() Address                   { return a.endAddress }

// GetSegments returns the discovered segments in ascending address order.
func (a *Analyzer) GetSegments() []Segment { return a.segments.All() }

func (a *Analyzer) LookupMnemonicInfo(m Mnemonic) MnemonicInfo { return LookupMnemonicInfo(m) }
func (a *Analyzer) LookupAddressModeInfo(am AddressMode) AddressModeInfo {
	return LookupAddressModeInfo(am)
}
func (a *Analyzer) LookupOpcodeInfo(op Opcode) (OpcodeInfo, bool) { return LookupOpcodeInfo(op) }

// LookupEquate returns the equate names registered for a value, if any.
func (a *Analyzer) LookupEquate(value Address) ([]string, bool) {
	e, ok := a.equates[value]
	return e, ok
}

// LookupLabel returns the symbol registered for an address, preferring
// a code label (for MONone/MOUnknown operations), then falling back to
// data labels. Among several data labels at one address, one suffixed
// with '<' is preferred for reads (and read-modify-writes) and one
// suffixed with '>' for writes; if no suffix matches the operation, the
// first label registered at the address is returned. The suffix is
// stripped from the returned name.
func (a *Analyzer) LookupLabel(addr Address, memOp MemoryOperation) (string, bool) {
	if memOp == MONone || memOp == MOUnknown {
		if label, ok := a.codeLabels[addr]; ok {
			return label, true
		}
	}

	labels, ok := a.dataLabels[addr]
	if !ok {
		return "", false
	}
	var result string
	var found bool
	for _, label := range labels {
		last := label[len(label)-1]
		bare := label
		if last == '<' || last == '>' {
			bare = label[:len(label)-1]
		}
		if (last == '<' && (memOp == MORead || memOp == MOBoth)) ||
			(last == '>' && memOp == MOWrite) {
			return bare, true
		}
		if !found {
			result = bare
			found = true
		}
	}
	return result, found
}
