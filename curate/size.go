package curate

import (
	"github.com/grailbio/srna/interval"
)

// FilterSize keeps transcripts whose length falls in [minLen, maxLen], both
// ends inclusive.
func FilterSize(ts []Transcript, minLen, maxLen interval.PosType) []Transcript {
	out := make([]Transcript, 0, len(ts))
	for _, t := range ts {
		if l := t.Rec.Len(); l < minLen || l > maxLen {
			continue
		}
		out = append(out, t)
	}
	return out
}
