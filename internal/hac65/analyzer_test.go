package hac65

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildImage returns a flat 0x8000-byte image spanning addresses
// 0x8000-0xFFFF, filled with NOP, with two identical LDA-immediate/RTS
// routines at 0x8000 and 0x8010, and a reset vector pointing at 0x8000.
func buildImage() []Octet {
	const origin = 0x8000
	image := make([]Octet, 0x10000-origin)
	for i := range image {
		image[i] = 0xEA // NOP
	}

	putRoutine := func(addr Address) {
		i := int(addr) - origin
		image[i+0] = 0xA9 // LDA #imm
		image[i+1] = 0x01
		image[i+2] = 0x60 // RTS
	}
	putRoutine(0x8000)
	putRoutine(0x8010)

	setVector := func(vectorAddr Address, target Address) {
		i := int(vectorAddr) - origin
		image[i] = byte(target & 0xFF)
		image[i+1] = byte(target >> 8)
	}
	// Builtin_MOS6502's normal_vector_tables covers $FFFA for 3 entries:
	// NMI, RESET, IRQ.
	setVector(0xFFFA, 0x8000)
	setVector(0xFFFC, 0x8000)
	setVector(0xFFFE, 0x8000)

	return image
}

func newTestAnalyzer() *Analyzer {
	a := NewAnalyzer()
	a.DeclareOriginAddress(0x8000)
	a.DeclareNormalVectorTable(0xFFFA, 3)
	a.DeclareLand(0x8010)
	a.SetAssembly(buildImage())
	return a
}

func TestAnalyzeProducesContiguousNonOverlappingSegments(t *testing.T) {
	a := newTestAnalyzer()
	require.NoError(t, a.Analyze())

	segs := a.GetSegments()
	require.NotEmpty(t, segs)
	assert.Equal(t, a.GetOriginAddress(), segs[0].StartAddress)
	assert.Equal(t, a.GetEndAddress(), segs[len(segs)-1].EndAddress)
	for i := 1; i < len(segs); i++ {
		assert.Equalf(t, segs[i-1].EndAddress+1, segs[i].StartAddress,
			"gap or overlap between segments %+v and %+v", segs[i-1], segs[i])
	}
}

func TestAnalyzeInstructionsOnlyFallInCodeSegments(t *testing.T) {
	a := newTestAnalyzer()
	require.NoError(t, a.Analyze())

	for addr := range a.GetInstructions() {
		seg, ok := a.segments.ContainingSegment(addr)
		require.Truef(t, ok, "instruction at %#x has no containing segment", addr)
		assert.Truef(t, seg.Type.IsCode(), "instruction at %#x falls in non-code segment %+v", addr, *seg)
	}

	for addr := range a.GetData() {
		seg, ok := a.segments.ContainingSegment(addr)
		require.Truef(t, ok, "data byte at %#x has no containing segment", addr)
		assert.Truef(t, seg.Type.IsData(), "data byte at %#x falls in non-data segment %+v", addr, *seg)
	}
}

func TestAnalyzeDiscoversBothRoutinesAsCode(t *testing.T) {
	a := newTestAnalyzer()
	require.NoError(t, a.Analyze())

	for _, addr := range []Address{0x8000, 0x8010} {
		seg, ok := a.segments.ContainingSegment(addr)
		require.Truef(t, ok, "expected %#x to be in a segment", addr)
		assert.Truef(t, seg.Type.IsCode(), "expected %#x to be in a code segment, got %+v", addr, *seg)
	}
}

func TestAnalyzeIsDeterministic(t *testing.T) {
	a1, a2 := newTestAnalyzer(), newTestAnalyzer()
	require.NoError(t, a1.Analyze())
	require.NoError(t, a2.Analyze())

	assert.Equal(t, a1.GetSegments(), a2.GetSegments())
}

func TestFingerprintCodeSegmentIsPositionIndependent(t *testing.T) {
	a := newTestAnalyzer()
	require.NoError(t, a.Analyze())

	segA, ok := a.segments.ContainingSegment(0x8000)
	require.True(t, ok)
	segB, ok := a.segments.ContainingSegment(0x8010)
	require.True(t, ok)

	fpA := a.FingerprintCodeSegment(*segA)
	fpB := a.FingerprintCodeSegment(*segB)
	assert.Equal(t, fpA, fpB, "identical routines at different addresses must fingerprint identically")
	assert.Equal(t, fpA, a.FingerprintCodeSegment(*segA), "fingerprinting must be deterministic across calls")
}

func TestAnalyzeNoLandsFails(t *testing.T) {
	a := NewAnalyzer()
	a.DeclareOriginAddress(0x8000)
	a.SetAssembly(make([]Octet, 0x100))

	err := a.Analyze()
	require.Error(t, err)
	assert.IsType(t, &AnalysisError{}, err)
}

func TestAnalyzeRejectsOriginOverflow(t *testing.T) {
	a := NewAnalyzer()
	a.DeclareOriginAddress(0xFF00)
	a.SetAssembly(make([]Octet, 0x200)) // 0xFF00 + 0x200 > 0x10000

	assert.Error(t, a.Analyze())
}
