package curate

import (
	"fmt"

	"github.com/grailbio/srna/encoding/fasta"
	"github.com/grailbio/srna/interval"
)

// EdgeMarginPolicy maps a contig length to the width of the exclusion zone
// at each contig end.
type EdgeMarginPolicy func(contigLen interval.PosType) interval.PosType

// ScaledEdgeMargin returns a policy that widens the margin on short contigs:
// margin + margin*scaleLen/contigLen. On contigs much longer than scaleLen
// the policy converges to the fixed margin.
func ScaledEdgeMargin(margin, scaleLen interval.PosType) EdgeMarginPolicy {
	return func(contigLen interval.PosType) interval.PosType {
		if contigLen <= 0 {
			return margin
		}
		return margin + interval.PosType(int64(margin)*int64(scaleLen)/int64(contigLen))
	}
}

// FilterEdges drops transcripts on contigs shorter than minContigLen and
// transcripts lying within the policy margin of either contig end. Every
// transcript's contig must appear in lengths.
func FilterEdges(ts []Transcript, lengths fasta.Lengths, policy EdgeMarginPolicy, minContigLen interval.PosType) ([]Transcript, error) {
	out := make([]Transcript, 0, len(ts))
	for _, t := range ts {
		contigLen, ok := lengths[t.Rec.Contig]
		if !ok {
			return nil, fmt.Errorf("transcript %s: contig %s missing from the reference lengths", t.ID, t.Rec.Contig)
		}
		if contigLen < minContigLen {
			continue
		}
		margin := policy(contigLen)
		if t.Rec.Start0 < margin || t.Rec.End > contigLen-margin {
			continue
		}
		out = append(out, t)
	}
	return out, nil
}
