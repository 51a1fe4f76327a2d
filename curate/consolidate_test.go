package curate

import (
	"bytes"
	"strings"
	"testing"

	"github.com/grailbio/srna/encoding/fasta"
	"github.com/grailbio/srna/interval"
	"github.com/grailbio/testutil/expect"
	"github.com/grailbio/testutil/h"
)

func TestConsolidate(t *testing.T) {
	ts := []Transcript{
		cand("t1", "c1", 100, 300, interval.StrandPlus),
		cand("t2", "c1", 400, 600, interval.StrandPlus),
		cand("t3", "c1", 700, 900, interval.StrandMinus),
		cand("t4", "c1", 1000, 1200, interval.StrandPlus),
	}
	orf := []Class{Intergenic, Coding, Antisense, Intergenic}
	anno := []Class{Intergenic, Intergenic, Coding, Unclassified}

	got := Consolidate(ts, orf, anno)
	expect.EQ(t, len(got), 1)
	expect.EQ(t, got[0].ID, "t1")
	expect.EQ(t, got[0].Class, Intergenic)
	expect.EQ(t, got[0].Evidence, EvidenceBoth)
}

func TestConsolidateNoAnnotation(t *testing.T) {
	ts := []Transcript{
		cand("t1", "c1", 100, 300, interval.StrandPlus),
		cand("t2", "c1", 400, 600, interval.StrandPlus),
		cand("t3", "c1", 700, 900, interval.StrandMinus),
	}
	orf := []Class{Antisense, Unclassified, Intergenic}

	got := Consolidate(ts, orf, nil)
	expect.EQ(t, len(got), 2)
	expect.EQ(t, got[0].ID, "t1")
	expect.EQ(t, got[0].Class, Antisense)
	expect.EQ(t, got[0].Evidence, EvidenceORF)
	expect.EQ(t, got[1].ID, "t3")
	expect.EQ(t, got[1].Class, Intergenic)
}

func TestConsolidateOrder(t *testing.T) {
	var (
		ts  []Transcript
		orf []Class
	)
	for _, id := range []string{"z", "a", "m", "b"} {
		ts = append(ts, cand(id, "c1", 100, 300, interval.StrandPlus))
		orf = append(orf, Intergenic)
	}
	got := Consolidate(ts, orf, nil)
	ids := make([]string, len(got))
	for i, tr := range got {
		ids[i] = tr.ID
	}
	expect.That(t, ids, h.ElementsAre("z", "a", "m", "b"))
}

func TestConsolidateCommutative(t *testing.T) {
	// Swapping which pass comes first changes the carried class and
	// evidence bookkeeping, never membership.
	ts := []Transcript{
		cand("t1", "c1", 100, 300, interval.StrandPlus),
		cand("t2", "c1", 400, 600, interval.StrandPlus),
		cand("t3", "c1", 700, 900, interval.StrandMinus),
		cand("t4", "c1", 1000, 1200, interval.StrandPlus),
	}
	a := []Class{Intergenic, Coding, Antisense, Unclassified}
	b := []Class{Antisense, Intergenic, Coding, Intergenic}

	idsOf := func(ts []Transcript) []string {
		ids := make([]string, len(ts))
		for i, tr := range ts {
			ids[i] = tr.ID
		}
		return ids
	}
	expect.EQ(t, idsOf(Consolidate(ts, a, b)), idsOf(Consolidate(ts, b, a)))
}

func TestEmptySetFlowsThrough(t *testing.T) {
	// A stage that drops every candidate does not fail the run: each
	// downstream stage accepts an empty set and emits nothing.
	var ts []Transcript

	ts = Consolidate(ts, nil, nil)
	expect.EQ(t, len(ts), 0)

	ts, err := FilterEdges(ts, fasta.Lengths{"c1": 4}, ScaledEdgeMargin(100, 1000), 1000)
	expect.NoError(t, err)
	expect.EQ(t, len(ts), 0)

	ts = FilterORFContent(ts, nil, DefaultOpts.MaxORFRatio)
	expect.EQ(t, len(ts), 0)

	ts = FilterSize(ts, DefaultOpts.MinLen, DefaultOpts.MaxLen)
	expect.EQ(t, len(ts), 0)

	hits := make(HitSet)
	hits.Add("t1")
	ts = FilterHomology(ts, hits)
	expect.EQ(t, len(ts), 0)

	var gtf bytes.Buffer
	expect.NoError(t, WriteRecords(&gtf, ts))
	expect.EQ(t, gtf.Len(), 0)

	fa, err := fasta.New(strings.NewReader(">c1\nACGT\n"))
	expect.NoError(t, err)
	var seqs bytes.Buffer
	expect.NoError(t, Extract(&seqs, fa, ts))
	expect.EQ(t, seqs.Len(), 0)
}
