package interval

import (
	"fmt"
	"math"
	"sort"
)

// PosType is the type used to represent interval coordinates.  int32 should be
// large enough for any single contig that shows up in practice.
// (This, and PosTypeMax, should move to a more central package once an
// appropriate one exists.  Code which uses this type should not assume it's
// int32; it may eventually become a 64-bit type.)
type PosType int32

// PosTypeMax is the maximum value that can be represented by a PosType.
const PosTypeMax = math.MaxInt32

// SearchPosTypes returns the index of x in a[], or the position where x would
// be inserted if x isn't in a (this could be len(a)).  It's exactly the same
// as sort.SearchInts(), except for PosType.
func SearchPosTypes(a []PosType, x PosType) int {
	return sort.Search(len(a), func(i int) bool { return a[i] >= x })
}

// Strand is the orientation of a feature: '+', '-', or '.' when unknown.
type Strand byte

const (
	// StrandPlus marks a feature on the forward strand.
	StrandPlus = Strand('+')
	// StrandMinus marks a feature on the reverse strand.
	StrandMinus = Strand('-')
	// StrandNone marks a feature whose orientation is not known.  It never
	// matches any strand, including itself.
	StrandNone = Strand('.')
)

// ParseStrand converts the strand column of a feature line.  Anything other
// than "+", "-", or "." is an error.
func ParseStrand(s string) (Strand, error) {
	if len(s) == 1 {
		switch Strand(s[0]) {
		case StrandPlus, StrandMinus, StrandNone:
			return Strand(s[0]), nil
		}
	}
	return StrandNone, fmt.Errorf("invalid strand %q, want \"+\", \"-\", or \".\"", s)
}

func (s Strand) String() string { return string(rune(s)) }

// Matches returns true iff both strands are known and equal.
func (s Strand) Matches(o Strand) bool {
	return s != StrandNone && s == o
}

// OppositeOf returns true iff both strands are known and differ.  An unknown
// strand is opposite to nothing.
func (s Strand) OppositeOf(o Strand) bool {
	return (s == StrandPlus && o == StrandMinus) || (s == StrandMinus && o == StrandPlus)
}

// Span is a located, oriented interval on a named contig.  Start0 is 0-based
// inclusive, End is 0-based exclusive, so width is End - Start0 and an empty
// span has Start0 == End.  Code constructing Spans from 1-based inclusive
// coordinates (e.g. the 9-column annotation format) must subtract 1 from the
// start and leave the end alone.
type Span struct {
	Contig string
	Start0 PosType
	End    PosType
	Strand Strand
}

// Len returns the number of bases covered by the span.
func (s Span) Len() PosType { return s.End - s.Start0 }

func (s Span) String() string {
	return fmt.Sprintf("%s:%d-%d(%s)", s.Contig, s.Start0+1, s.End, s.Strand)
}

// Relation describes how two spans sit relative to each other.  When
// SameContig is false the spans are unrelated: Overlap is 0 and Gap is
// PosTypeMax.
type Relation struct {
	// SameContig is true iff both spans name the same contig.
	SameContig bool
	// Overlap is the number of bases shared by the two spans (0 if disjoint).
	Overlap PosType
	// Gap is the number of bases strictly between the two spans.  Adjacent
	// spans have Gap 0, as do overlapping ones.
	Gap PosType
	// SameStrand is true iff both strands are known and equal.
	SameStrand bool
}

// Relate computes the Relation between two spans.  It is symmetric:
// Relate(a, b) == Relate(b, a).
func Relate(a, b Span) Relation {
	r := Relation{SameStrand: a.Strand.Matches(b.Strand)}
	if a.Contig != b.Contig {
		r.Gap = PosTypeMax
		return r
	}
	r.SameContig = true
	lo := maxPos(a.Start0, b.Start0)
	hi := minPos(a.End, b.End)
	if lo < hi {
		r.Overlap = hi - lo
	} else {
		r.Gap = lo - hi
	}
	return r
}

func minPos(a, b PosType) PosType {
	if a < b {
		return a
	}
	return b
}

func maxPos(a, b PosType) PosType {
	if a > b {
		return a
	}
	return b
}
