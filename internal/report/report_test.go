package report

import (
	"bytes"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hac65/internal/hac65"
	"hac65/internal/overlay"
)

func TestParseSections(t *testing.T) {
	sections, err := ParseSections("sfdo")
	require.NoError(t, err)
	assert.Equal(t, []Section{SectionSegments, SectionFingerprints, SectionDisassembly, SectionOverlays}, sections)

	_, err = ParseSections("sx")
	assert.Error(t, err)
}

// buildAnalyzedImage returns an Analyzer that has already run a small,
// real 6502 image through Analyze, so ReportXxx methods exercise actual
// segments/instructions rather than a hand-built fake Source.
func buildAnalyzedImage(t *testing.T) *hac65.Analyzer {
	t.Helper()
	const origin = 0x8000
	image := make([]hac65.Octet, 0x10000-origin)
	for i := range image {
		image[i] = 0xEA
	}
	image[0] = 0xA9 // LDA #$01
	image[1] = 0x01
	image[2] = 0x60 // RTS

	setVector := func(addr hac65.Address, target hac65.Address) {
		i := int(addr) - origin
		image[i] = byte(target & 0xFF)
		image[i+1] = byte(target >> 8)
	}
	setVector(0xFFFA, origin)
	setVector(0xFFFC, origin)
	setVector(0xFFFE, origin)

	a := hac65.NewAnalyzer()
	a.DeclareOriginAddress(origin)
	a.DeclareCodeLabel("reset", origin)
	a.DeclareNormalVectorTable(0xFFFA, 3)
	a.SetAssembly(image)
	require.NoError(t, a.Analyze())
	return a
}

func TestReportDisassemblyIncludesDecodedRoutine(t *testing.T) {
	a := buildAnalyzedImage(t)
	r := New(a, nil)

	var buf bytes.Buffer
	r.ReportDisassembly(&buf)

	out := buf.String()
	assert.Contains(t, out, "Disassembly Report")
	assert.Contains(t, out, "LDA")
	assert.Contains(t, out, "RTS")
	assert.Contains(t, out, "reset")
}

func TestReportSegmentsSummarizesCounts(t *testing.T) {
	a := buildAnalyzedImage(t)
	r := New(a, nil)

	var buf bytes.Buffer
	r.ReportSegments(&buf)

	out := buf.String()
	assert.Contains(t, out, "Segments Report")
	assert.Contains(t, out, "Known Code")
}

func TestReportFingerprintsAreSortedLexically(t *testing.T) {
	a := buildAnalyzedImage(t)
	r := New(a, nil)

	var buf bytes.Buffer
	r.ReportFingerprints(&buf)

	out := buf.String()
	assert.Contains(t, out, "Fingerprints Report")

	// The per-segment lines follow the first blank line of the section.
	parts := strings.SplitN(out, "\n\n", 2)
	require.Len(t, parts, 2)
	lines := strings.Split(strings.TrimRight(parts[1], "\n"), "\n")
	assert.Len(t, lines, len(a.GetSegments()))
	assert.True(t, sort.StringsAreSorted(lines), "fingerprint lines must be sorted lexically")
}

func TestReportOverlaysListsLoadedArchitectures(t *testing.T) {
	a := buildAnalyzedImage(t)
	overlays := []overlay.Overlay{{Architecture: "Builtin_MOS6502", Document: map[string]interface{}{"structures": "x"}}}
	r := New(a, overlays)

	var buf bytes.Buffer
	r.ReportOverlays(&buf)

	out := buf.String()
	assert.Contains(t, out, "Overlays Report")
	assert.Contains(t, out, "Builtin_MOS6502")
}

func TestReportWritesHeaderAndRequestedSectionsOnly(t *testing.T) {
	a := buildAnalyzedImage(t)
	r := New(a, nil)

	var buf bytes.Buffer
	r.Report(&buf, "hac65 test", "run-time", "hac65 image.bin", "deadbeef", []Section{SectionSegments})

	out := buf.String()
	assert.Contains(t, out, "hac65 test")
	assert.Contains(t, out, "md5:deadbeef")
	assert.Contains(t, out, "Segments Report")
	assert.NotContains(t, out, "Disassembly Report")
	assert.NotContains(t, out, "Fingerprints Report")
}
