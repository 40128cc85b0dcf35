package hac65

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLandSetFirstInsertWins(t *testing.T) {
	s := newLandSet()

	require.True(t, s.Add(0x8000, STCodeInferred), "first Add at a new address should report true")
	require.False(t, s.Add(0x8000, STCodeKnown), "re-Add at an existing address should report false")

	typ, ok := s.TypeOf(0x8000)
	require.True(t, ok)
	assert.Equal(t, STCodeInferred, typ, "first insert must win, not the later re-declaration")
}

func TestLandSetOrdering(t *testing.T) {
	s := newLandSet()
	s.Add(0x9000, STCodeKnown)
	s.Add(0x8000, STCodeKnown)
	s.Add(0x8500, STCodeKnown)

	all := s.All()
	require.Len(t, all, 3)
	for i := 1; i < len(all); i++ {
		assert.Less(t, all[i-1].Address, all[i].Address, "lands must be in ascending order")
	}
}

func TestAddressSetMembership(t *testing.T) {
	s := newAddressSet()
	assert.True(t, s.Add(0x10), "first add should be new")
	assert.False(t, s.Add(0x10), "duplicate add should report false")
	assert.True(t, s.Has(0x10))
	assert.False(t, s.Has(0x20))
}

func TestSegmentTableOrderingAndLookup(t *testing.T) {
	tbl := newSegmentTable()
	tbl.Add(Segment{Type: STCodeKnown, StartAddress: 0x9000, EndAddress: 0x90FF})
	tbl.Add(Segment{Type: STDataKnown, StartAddress: 0x8000, EndAddress: 0x8FFF})

	all := tbl.All()
	require.Len(t, all, 2)
	assert.Equal(t, Address(0x8000), all[0].StartAddress)
	assert.Equal(t, Address(0x9000), all[1].StartAddress)

	seg, ok := tbl.ContainingSegment(0x8500)
	require.True(t, ok)
	assert.Equal(t, Address(0x8000), seg.StartAddress)

	seg, ok = tbl.ContainingSegment(0x90FF)
	require.True(t, ok, "ContainingSegment must treat EndAddress as inclusive")
	assert.Equal(t, Address(0x9000), seg.StartAddress)

	_, ok = tbl.ContainingSegment(0x9100)
	assert.False(t, ok, "no segment covers an address past the end of the table")

	tbl.Remove(0x8000)
	assert.Equal(t, 1, tbl.Len())
}
