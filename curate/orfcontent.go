package curate

import (
	"github.com/grailbio/srna/gff"
	"github.com/grailbio/srna/interval"
)

// FilterORFContent drops transcripts whose longest re-predicted ORF covers
// more than maxRatio of the transcript length. The ORF records come from a
// prediction run over the extracted transcript sequences, so each record's
// contig field names a transcript ID. Transcripts with no predicted ORF
// pass through.
func FilterORFContent(ts []Transcript, orfs []gff.Record, maxRatio float64) []Transcript {
	longest := map[string]interval.PosType{}
	for i := range orfs {
		rec := &orfs[i]
		if l := rec.Len(); l > longest[rec.Contig] {
			longest[rec.Contig] = l
		}
	}
	out := make([]Transcript, 0, len(ts))
	for _, t := range ts {
		// The quotient keeps an ORF at exactly maxRatio of the
		// transcript on the passing side.
		if orfLen, ok := longest[t.ID]; ok && float64(orfLen)/float64(t.Rec.Len()) > maxRatio {
			continue
		}
		out = append(out, t)
	}
	return out
}
