package curate

import (
	"runtime"

	farm "github.com/dgryski/go-farm"
	"github.com/grailbio/base/log"
	"github.com/grailbio/base/traverse"
	gunsafe "github.com/grailbio/base/unsafe"
	"github.com/grailbio/srna/gff"
	"github.com/grailbio/srna/interval"
)

// NewFeatureIndex indexes reference features (predicted ORFs, or genome
// annotation rows) for classification queries.
func NewFeatureIndex(recs []gff.Record) (*interval.Index, error) {
	entries := make([]interval.Entry, len(recs))
	for i := range recs {
		entries[i] = interval.Entry{Span: recs[i].Span(), ID: i}
	}
	return interval.NewIndex(entries)
}

// classifier holds per-job scratch state.  Thread compatible.
type classifier struct {
	ix   *interval.Index
	opts Opts
	buf  []interval.Entry
}

// classify places one candidate against the feature set.  The rules, most
// dominant first:
//
//   - coding: a same-strand feature shares >= 1 base with the candidate.  A
//     feature shorter than PeptideMaxLen is disregarded entirely when the
//     candidate is more than PeptideMinRatio times its length.
//   - antisense: an opposite-strand feature overlaps by at least
//     AntisenseMinOverlap.
//   - intergenic: nothing overlaps, and the nearest feature on the contig is
//     at least IntergenicMargin bases away.
//   - unclassified: everything else.
//
// The outcome is independent of feature order: all overlaps are accumulated
// before any rule is decided.
func (c *classifier) classify(span interval.Span) (class Class, excepted int) {
	var (
		tLen                       = span.Len()
		coding, antisense, blocked bool
	)
	c.buf = c.ix.Overlapping(span, c.buf[:0])
	for _, e := range c.buf {
		if span.Strand.Matches(e.Strand) {
			if fLen := e.Len(); fLen < c.opts.PeptideMaxLen && tLen > c.opts.PeptideMinRatio*fLen {
				excepted++
				continue
			}
			coding = true
			continue
		}
		// Unknown-strand features can satisfy neither rule, but they still
		// sit too close for an intergenic call.
		blocked = true
		if span.Strand.OppositeOf(e.Strand) &&
			interval.Relate(span, e.Span).Overlap >= c.opts.AntisenseMinOverlap {
			antisense = true
		}
	}
	switch {
	case coding:
		return Coding, excepted
	case antisense:
		return Antisense, excepted
	case blocked:
		return Unclassified, excepted
	}
	if gap, ok := c.ix.NearestGap(span); !ok || gap >= c.opts.IntergenicMargin {
		return Intergenic, excepted
	}
	return Unclassified, excepted
}

// shardSeed spreads contig names over classification jobs.
const shardSeed = 0x5eed

// ClassifySet classifies every candidate against the feature set and returns
// one Class per candidate, in input order.  Candidates are grouped by contig
// hash so each job touches few contigs; the grouping does not affect results.
func ClassifySet(ts []Transcript, ix *interval.Index, opts Opts) ([]Class, Stats) {
	parallelism := opts.Parallelism
	if parallelism <= 0 {
		parallelism = runtime.NumCPU()
	}
	if parallelism > len(ts) {
		parallelism = len(ts)
	}
	classes := make([]Class, len(ts))
	if parallelism == 0 {
		return classes, Stats{}
	}
	shards := make([][]int, parallelism)
	for i := range ts {
		h := farm.Hash64WithSeed(gunsafe.StringToBytes(ts[i].Rec.Contig), shardSeed)
		s := int(h % uint64(parallelism))
		shards[s] = append(shards[s], i)
	}
	jobStats := make([]Stats, parallelism)
	err := traverse.Each(parallelism, func(job int) error {
		c := classifier{ix: ix, opts: opts}
		stats := &jobStats[job]
		for _, i := range shards[job] {
			class, excepted := c.classify(ts[i].Rec.Span())
			classes[i] = class
			stats.Transcripts++
			stats.PeptidesExcepted += excepted
			switch class {
			case Coding:
				stats.Coding++
			case Antisense:
				stats.Antisense++
			case Intergenic:
				stats.Intergenic++
			default:
				stats.Unclassified++
			}
		}
		return nil
	})
	if err != nil {
		log.Panicf("classify: %v", err)
	}
	stats := Stats{}
	for _, s := range jobStats {
		stats = stats.Merge(s)
	}
	return classes, stats
}
