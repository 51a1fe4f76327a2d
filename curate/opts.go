package curate

import "github.com/grailbio/srna/interval"

type Opts struct {
	// IntergenicMargin is the minimum distance (bases) between a candidate
	// and the closest reference feature for an intergenic call.  A feature
	// that overlaps, or whose gap to the candidate is below the margin, is
	// too close.
	IntergenicMargin interval.PosType
	// AntisenseMinOverlap is the minimum overlap (bases) with an
	// opposite-strand reference feature for an antisense call.
	AntisenseMinOverlap interval.PosType

	// PeptideMaxLen and PeptideMinRatio define the short-peptide exception:
	// a same-strand overlapping feature shorter than PeptideMaxLen is
	// disregarded entirely when the candidate is more than PeptideMinRatio
	// times its length.
	PeptideMaxLen   interval.PosType
	PeptideMinRatio interval.PosType

	// MinContigLen drops candidates on contigs shorter than this, however
	// far from the contig edge they sit.
	MinContigLen interval.PosType
	// EdgeMargin is the base edge-exclusion zone; EdgeScaleLen is the contig
	// length at which the effective zone is twice EdgeMargin.  See
	// ScaledEdgeMargin.
	EdgeMargin   interval.PosType
	EdgeScaleLen interval.PosType

	// MaxORFRatio is the largest tolerated value of (longest re-predicted
	// ORF length) / (candidate length).
	MaxORFRatio float64

	// MinLen and MaxLen bound candidate length, both inclusive.
	MinLen interval.PosType
	MaxLen interval.PosType

	// A protein homology hit removes a candidate only when all three hold:
	// bit score > MinBitScore, e-value < MaxEValue, percent identity >
	// MinPctIdentity.
	MinBitScore    float64
	MaxEValue      float64
	MinPctIdentity float64
	// RNAFamilyExclude matches family names whose hits must NOT remove
	// candidates (they are the molecules being looked for).
	RNAFamilyExclude string

	// Parallelism caps the number of concurrent classification jobs.
	// <= 0 means the number of CPUs.
	Parallelism int
}

// DefaultOpts sets the default values to Opts.
var DefaultOpts = Opts{
	IntergenicMargin:    30,         // flag -intergenic-margin
	AntisenseMinOverlap: 10,         // flag -antisense-min-overlap
	PeptideMaxLen:       100,        // flag -peptide-max-len
	PeptideMinRatio:     3,          // flag -peptide-min-ratio
	MinContigLen:        1000,       // flag -min-contig-len
	EdgeMargin:          100,        // flag -edge-margin
	EdgeScaleLen:        1000,       // flag -edge-scale-len
	MaxORFRatio:         1.0 / 3.0,  // flag -max-orf-ratio
	MinLen:              50,         // flag -min-len
	MaxLen:              500,        // flag -max-len
	MinBitScore:         50,         // flag -min-bit-score
	MaxEValue:           1e-4,       // flag -max-e-value
	MinPctIdentity:      30,         // flag -min-pct-identity
	RNAFamilyExclude:    `(?i)srna`, // flag -rna-family-exclude
	Parallelism:         0,          // flag -parallelism. <= 0 means the number of CPUs.
}
