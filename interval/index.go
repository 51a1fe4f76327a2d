package interval

import (
	"sort"

	store "github.com/biogo/store/interval"
)

// Entry is one feature held by an Index.  ID is assigned by the caller
// (typically the feature's position in its input file) and doubles as the
// final tie-break when query results are ordered.
type Entry struct {
	Span
	ID int
}

// Index answers overlap and proximity queries against a fixed set of
// features.  Build one with NewIndex; it must not be modified afterwards.
//
// Two complementary representations are kept per contig: an interval tree
// for overlap enumeration, and sorted endpoint slices for nearest-neighbor
// distance.  All query results are deterministic regardless of input order.
type Index struct {
	contigs map[string]*contigIndex
}

type contigIndex struct {
	entries []Entry // sorted by (Start0, End, ID)
	tree    store.IntTree
	starts  []PosType // all Start0 values, ascending
	ends    []PosType // all End values, ascending
}

// treeEntry adapts an entries[] element to the store/interval interface.
// Overlap is strict: spans that merely touch do not overlap.
type treeEntry struct {
	start, end PosType
	pos        int
}

func (e treeEntry) Overlap(b store.IntRange) bool {
	return b.Start < int(e.end) && int(e.start) < b.End
}
func (e treeEntry) ID() uintptr { return uintptr(e.pos) }
func (e treeEntry) Range() store.IntRange {
	return store.IntRange{Start: int(e.start), End: int(e.end)}
}

// NewIndex builds an Index from the given features.  The slice is not
// retained.
func NewIndex(entries []Entry) (*Index, error) {
	ix := &Index{contigs: map[string]*contigIndex{}}
	for _, e := range entries {
		ci := ix.contigs[e.Contig]
		if ci == nil {
			ci = &contigIndex{}
			ix.contigs[e.Contig] = ci
		}
		ci.entries = append(ci.entries, e)
	}
	for _, ci := range ix.contigs {
		sort.Slice(ci.entries, func(i, j int) bool {
			ei, ej := ci.entries[i], ci.entries[j]
			if ei.Start0 != ej.Start0 {
				return ei.Start0 < ej.Start0
			}
			if ei.End != ej.End {
				return ei.End < ej.End
			}
			return ei.ID < ej.ID
		})
		ci.starts = make([]PosType, len(ci.entries))
		ci.ends = make([]PosType, len(ci.entries))
		for i, e := range ci.entries {
			ci.starts[i] = e.Start0
			ci.ends[i] = e.End
			if err := ci.tree.Insert(treeEntry{start: e.Start0, end: e.End, pos: i}, true); err != nil {
				return nil, err
			}
		}
		ci.tree.AdjustRanges()
		sort.Slice(ci.ends, func(i, j int) bool { return ci.ends[i] < ci.ends[j] })
	}
	return ix, nil
}

// NumEntries returns the total number of indexed features.
func (ix *Index) NumEntries() int {
	n := 0
	for _, ci := range ix.contigs {
		n += len(ci.entries)
	}
	return n
}

// Overlapping appends to buf every indexed feature sharing at least one base
// with s, ordered by (Start0, End, ID), and returns the extended slice.
// Spans that merely touch s are not reported.
func (ix *Index) Overlapping(s Span, buf []Entry) []Entry {
	ci := ix.contigs[s.Contig]
	if ci == nil || s.Start0 >= s.End {
		return buf
	}
	n := len(buf)
	for _, o := range ci.tree.Get(treeEntry{start: s.Start0, end: s.End, pos: -1}) {
		buf = append(buf, ci.entries[o.(treeEntry).pos])
	}
	hits := buf[n:]
	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Start0 != hits[j].Start0 {
			return hits[i].Start0 < hits[j].Start0
		}
		if hits[i].End != hits[j].End {
			return hits[i].End < hits[j].End
		}
		return hits[i].ID < hits[j].ID
	})
	return buf
}

// NearestGap returns the distance from s to the closest indexed feature on
// the same contig that does not overlap s.  Adjacent features are at
// distance 0.  found is false when no such feature exists, in which case
// gap is PosTypeMax.
//
// Overlapping features are invisible to this query by construction: a
// feature overlapping s has End > s.Start0 and Start0 < s.End, so it can
// satisfy neither bound below.
func (ix *Index) NearestGap(s Span) (gap PosType, found bool) {
	gap = PosTypeMax
	ci := ix.contigs[s.Contig]
	if ci == nil {
		return gap, false
	}
	// First feature starting at or after our end.
	if i := SearchPosTypes(ci.starts, s.End); i < len(ci.starts) {
		gap = ci.starts[i] - s.End
		found = true
	}
	// Last feature ending at or before our start.
	if i := SearchPosTypes(ci.ends, s.Start0+1); i > 0 {
		if d := s.Start0 - ci.ends[i-1]; d < gap {
			gap = d
		}
		found = true
	}
	return gap, found
}

// Contigs returns the names of all contigs with at least one feature, sorted.
func (ix *Index) Contigs() []string {
	names := make([]string, 0, len(ix.contigs))
	for name := range ix.contigs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
