package overlay

import (
	"os"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hac65/internal/hac65"
)

func writeFile(path string, data []byte) error {
	return os.WriteFile(path, data, 0o644)
}

// fakeDeclarer records every declaration issued against it, so tests
// can assert on exactly what a loaded overlay produced without needing
// a real Analyzer.
type fakeDeclarer struct {
	origin       hac65.Address
	hasOrigin    bool
	equates      map[string]hac65.Address
	codeLabels   map[string]hac65.Address
	dataLabels   map[string]hac65.Address
	normalTables map[hac65.Address]uint16
	jumpTables   map[hac65.Address]uint16
	lands        []hac65.Address
	leaps        []hac65.Address

	// equateOrder and dataLabelOrder record the exact sequence in which
	// DeclareEquate/DeclareDataLabel were called, so tests can assert on
	// declaration order for names sharing one address.
	equateOrder    []string
	dataLabelOrder []string
}

func newFakeDeclarer() *fakeDeclarer {
	return &fakeDeclarer{
		equates:      make(map[string]hac65.Address),
		codeLabels:   make(map[string]hac65.Address),
		dataLabels:   make(map[string]hac65.Address),
		normalTables: make(map[hac65.Address]uint16),
		jumpTables:   make(map[hac65.Address]uint16),
	}
}

func (f *fakeDeclarer) HasOriginAddress() bool { return f.hasOrigin }
func (f *fakeDeclarer) DeclareOriginAddress(addr hac65.Address) {
	f.origin, f.hasOrigin = addr, true
}
func (f *fakeDeclarer) DeclareEquate(equate string, value hac65.Address) {
	f.equates[equate] = value
	f.equateOrder = append(f.equateOrder, equate)
}
func (f *fakeDeclarer) DeclareCodeLabel(label string, addr hac65.Address) { f.codeLabels[label] = addr }
func (f *fakeDeclarer) DeclareDataLabel(label string, addr hac65.Address) {
	f.dataLabels[label] = addr
	f.dataLabelOrder = append(f.dataLabelOrder, label)
}
func (f *fakeDeclarer) DeclareNormalVectorTable(addr hac65.Address, count uint16) {
	f.normalTables[addr] = count
}
func (f *fakeDeclarer) DeclareIndirectVectorTable(hac65.Address, uint16)              {}
func (f *fakeDeclarer) DeclareKeyedVectorTable(hac65.Address, uint16)                 {}
func (f *fakeDeclarer) DeclareKeyedIndirectVectorTable(hac65.Address, uint16)         {}
func (f *fakeDeclarer) DeclareKeyedIndirectMinusOneVectorTable(hac65.Address, uint16) {}
func (f *fakeDeclarer) DeclareJumpVectorTable(addr hac65.Address, count uint16) {
	f.jumpTables[addr] = count
}
func (f *fakeDeclarer) DeclareMinusOneVectorTable(hac65.Address, uint16) {}
func (f *fakeDeclarer) DeclareSplitVectorTable(hac65.Address, uint16)    {}
func (f *fakeDeclarer) DeclareLand(addr hac65.Address) bool {
	f.lands = append(f.lands, addr)
	return true
}
func (f *fakeDeclarer) DeclareLeap(addr hac65.Address) bool {
	f.leaps = append(f.leaps, addr)
	return true
}

func TestLoadBuiltinArchitecture(t *testing.T) {
	l := New()
	d := newFakeDeclarer()

	err := l.LoadArchitecture(DefaultArchitecture, d)
	require.NoError(t, err)

	assert.Equal(t, uint16(3), d.normalTables[0xFFFA])
	overlays := l.Overlays()
	require.Len(t, overlays, 1)
	assert.Equal(t, DefaultArchitecture, overlays[0].Architecture)
}

func TestLoadAroFileFromFS(t *testing.T) {
	fsys := fstest.MapFS{
		"custom.aro": &fstest.MapFile{Data: []byte(`{
			"origin": "$C000",
			"equates": {"SCREEN": "$7000"},
			"code_labels": {"reset": "$C000"},
			"structures": {"jump_vector_tables": {"$C100": 2}},
			"expert": {"lands": ["$C200"], "leaps": ["$C300"]}
		}`)},
	}
	l := &Loader{FS: fsys}
	d := newFakeDeclarer()

	err := l.LoadArchitecture("custom", d)
	require.NoError(t, err)

	assert.True(t, d.hasOrigin)
	assert.Equal(t, hac65.Address(0xC000), d.origin)
	assert.Equal(t, hac65.Address(0x7000), d.equates["SCREEN"])
	assert.Equal(t, hac65.Address(0xC000), d.codeLabels["reset"])
	assert.Equal(t, uint16(2), d.jumpTables[0xC100])
	assert.Contains(t, d.lands, hac65.Address(0xC200))
	assert.Contains(t, d.leaps, hac65.Address(0xC300))
}

func TestLoadAroFileWithInclude(t *testing.T) {
	fsys := fstest.MapFS{
		"top.aro":  &fstest.MapFile{Data: []byte("# a comment line\n@include \"base\"\n{\"equates\": {\"TOP\": \"1\"}}\n")},
		"base.aro": &fstest.MapFile{Data: []byte(`{"equates": {"BASE": "2"}}`)},
	}
	l := &Loader{FS: fsys}
	d := newFakeDeclarer()

	err := l.LoadArchitecture("top", d)
	require.NoError(t, err)
	assert.Equal(t, hac65.Address(1), d.equates["TOP"])
	assert.Equal(t, hac65.Address(2), d.equates["BASE"])

	overlays := l.Overlays()
	require.Len(t, overlays, 2)
	// Most recently loaded overlay (the includer) comes first.
	assert.Equal(t, "top", overlays[0].Architecture)
	assert.Equal(t, "base", overlays[1].Architecture)
}

func TestLoadAroFileRejectsUnknownArchitecture(t *testing.T) {
	l := &Loader{FS: fstest.MapFS{}}
	d := newFakeDeclarer()

	err := l.LoadArchitecture("nonexistent", d)
	require.Error(t, err)
	var overlayErr *hac65.OverlayError
	assert.ErrorAs(t, err, &overlayErr)
}

func TestLoadAroFileRejectsDeepIncludeCycle(t *testing.T) {
	fsys := fstest.MapFS{
		"a.aro": &fstest.MapFile{Data: []byte(`@include "b"` + "\n")},
		"b.aro": &fstest.MapFile{Data: []byte(`@include "a"` + "\n")},
	}
	l := &Loader{FS: fsys}
	d := newFakeDeclarer()

	err := l.LoadArchitecture("a", d)
	require.Error(t, err)
}

func TestLoadObjectFileFullRange(t *testing.T) {
	dir := t.TempDir() + "/image.bin"
	data := []byte{0xA9, 0x01, 0x60}
	require.NoError(t, writeFile(dir, data))

	got, fp, err := LoadObjectFile(dir, 0, -1)
	require.NoError(t, err)
	assert.Equal(t, data, got)
	assert.NotEqual(t, hac65.Fingerprint{}, fp)
}

func TestLoadObjectFileRejectsOutOfRangeStart(t *testing.T) {
	dir := t.TempDir() + "/image.bin"
	require.NoError(t, writeFile(dir, []byte{0x01, 0x02}))

	_, _, err := LoadObjectFile(dir, 10, -1)
	require.Error(t, err)
	var usageErr *hac65.UsageError
	assert.ErrorAs(t, err, &usageErr)
}

func TestLoadObjectFileRejectsOversizeRange(t *testing.T) {
	dir := t.TempDir() + "/image.bin"
	require.NoError(t, writeFile(dir, make([]byte, 16)))

	_, _, err := LoadObjectFile(dir, 0, MaxObjectSize)
	require.Error(t, err)
}

// TestLoadAroFileDeclaresSameAddressLabelsInSortedOrder guards against the
// map-iteration hazard: json.Unmarshal produces a map[string]interface{}
// whose iteration order Go randomizes, but two data_labels (or two
// equates) sharing one address must be declared in the same order every
// time, since LookupLabel's read/write disambiguation depends on it. The
// .aro format has no key order of its own, so the loader's contract is
// alphabetical order by name.
func TestLoadAroFileDeclaresSameAddressLabelsInSortedOrder(t *testing.T) {
	fsys := fstest.MapFS{
		"shared.aro": &fstest.MapFile{Data: []byte(`{
			"data_labels": {"BUF<": "$8000", "BUF>": "$8000", "ALPHA": "$9000", "BETA": "$9000"},
			"equates": {"ZETA": "$10", "ALPHA_EQ": "$10"}
		}`)},
	}

	for i := 0; i < 10; i++ {
		l := &Loader{FS: fsys}
		d := newFakeDeclarer()

		require.NoError(t, l.LoadArchitecture("shared", d))

		assert.Equal(t, []string{"ALPHA", "BETA", "BUF<", "BUF>"}, d.dataLabelOrder,
			"data labels sharing an address must be declared in sorted-key order, every run")
		assert.Equal(t, []string{"ALPHA_EQ", "ZETA"}, d.equateOrder,
			"equates sharing a value must be declared in sorted-key order, every run")
	}
}
