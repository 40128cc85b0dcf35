package hac65

import "sort"

// Land is the start address of a basic block together with the
// confidence the engine has in it: CodeKnown lands come from explicit
// declarations or jump-vector tables, CodeInferred lands are discovered
// by the ledge-inference passes.
type Land struct {
	Address Address
	Type    SegmentType
}

// landSet holds the declared and inferred lands in address order. Ledge
// inference and segment inference both walk it front to back, so next
// to its address-to-type map it keeps a slice of addresses that is
// re-sorted on every insert: no ordered-map container exists anywhere
// in the retrieved Go ecosystem code this module was grounded on, and a
// map plus a sorted slice is the idiomatic stdlib-only substitute.
type landSet struct {
	byAddress map[Address]SegmentType
	order     []Address
}

func newLandSet() *landSet {
	return &landSet{byAddress: make(map[Address]SegmentType)}
}

// Add records a land and reports whether it was new. Mirrors
// std::set<Land>::insert ordered solely by address: the first type
// recorded for a given address is the one that sticks, exactly as a
// set keyed only on address would reject a later insert at the same
// key regardless of its payload.
func (s *landSet) Add(addr Address, t SegmentType) bool {
	if _, ok := s.byAddress[addr]; ok {
		return false
	}
	s.byAddress[addr] = t
	s.order = append(s.order, addr)
	sort.Slice(s.order, func(i, j int) bool { return s.order[i] < s.order[j] })
	return true
}

func (s *landSet) Has(addr Address) bool {
	_, ok := s.byAddress[addr]
	return ok
}

func (s *landSet) TypeOf(addr Address) (SegmentType, bool) {
	t, ok := s.byAddress[addr]
	return t, ok
}

func (s *landSet) Len() int { return len(s.order) }

// All returns the lands in ascending address order.
func (s *landSet) All() []Land {
	out := make([]Land, len(s.order))
	for i, a := range s.order {
		out[i] = Land{Address: a, Type: s.byAddress[a]}
	}
	return out
}

// addressSet is the same sorted-slice-plus-membership-map shape used
// for leaps and for the flat pool of all declared vector addresses;
// factored out since both only ever need membership and ascending
// iteration, never a payload.
type addressSet struct {
	present map[Address]bool
	order   []Address
}

func newAddressSet() *addressSet {
	return &addressSet{present: make(map[Address]bool)}
}

func (s *addressSet) Add(addr Address) bool {
	if s.present[addr] {
		return false
	}
	s.present[addr] = true
	s.order = append(s.order, addr)
	sort.Slice(s.order, func(i, j int) bool { return s.order[i] < s.order[j] })
	return true
}

func (s *addressSet) Has(addr Address) bool { return s.present[addr] }
func (s *addressSet) Len() int              { return len(s.order) }
func (s *addressSet) All() []Address        { return append([]Address(nil), s.order...) }

// segmentTable is the collection of segments, keyed by start address
// and always walked in ascending start-address order (not insertion or
// ordinal order). Adding a segment whose start address is already
// present replaces the existing one.
type segmentTable struct {
	byStart map[Address]*Segment
	order   []Address
}

func newSegmentTable() *segmentTable {
	return &segmentTable{byStart: make(map[Address]*Segment)}
}

func (t *segmentTable) Add(seg Segment) {
	if _, exists := t.byStart[seg.StartAddress]; !exists {
		t.order = append(t.order, seg.StartAddress)
		sort.Slice(t.order, func(i, j int) bool { return t.order[i] < t.order[j] })
	}
	cp := seg
	t.byStart[seg.StartAddress] = &cp
}

func (t *segmentTable) Remove(start Address) {
	if _, exists := t.byStart[start]; !exists {
		return
	}
	delete(t.byStart, start)
	for i, a := range t.order {
		if a == start {
			t.order = append(t.order[:i], t.order[i+1:]...)
			break
		}
	}
}

func (t *segmentTable) Len() int { return len(t.order) }

// All returns the segments in ascending start-address order.
func (t *segmentTable) All() []Segment {
	out := make([]Segment, len(t.order))
	for i, a := range t.order {
		out[i] = *t.byStart[a]
	}
	return out
}

func (t *segmentTable) At(start Address) (*Segment, bool) {
	s, ok := t.byStart[start]
	return s, ok
}

// ContainingSegment returns the segment whose inclusive [Start,End]
// range covers addr, if any.
func (t *segmentTable) ContainingSegment(addr Address) (*Segment, bool) {
	i := sort.Search(len(t.order), func(i int) bool { return t.order[i] > addr })
	if i == 0 {
		return nil, false
	}
	seg := t.byStart[t.order[i-1]]
	if addr >= seg.StartAddress && addr <= seg.EndAddress {
		return seg, true
	}
	return nil, false
}
