package curate

import (
	"github.com/grailbio/base/log"
)

// Consolidate merges the two classification passes into the candidate set.
// orf holds the classes assigned against the ORF catalog and must be
// parallel to ts; anno holds the classes assigned against the reference
// annotation and may be nil when no annotation was supplied.
//
// A transcript survives only when every pass it was subjected to placed it
// in a non-coding class. Survivors keep their input order and carry the
// class from the ORF pass.
func Consolidate(ts []Transcript, orf, anno []Class) []Transcript {
	if len(orf) != len(ts) {
		log.Panicf("consolidate: %d transcripts, %d ORF classes", len(ts), len(orf))
	}
	if anno != nil && len(anno) != len(ts) {
		log.Panicf("consolidate: %d transcripts, %d annotation classes", len(ts), len(anno))
	}
	out := make([]Transcript, 0, len(ts))
	for i, t := range ts {
		if !orf[i].NonCoding() {
			continue
		}
		t.Class = orf[i]
		t.Evidence = EvidenceORF
		if anno != nil {
			if !anno[i].NonCoding() {
				continue
			}
			t.Evidence = EvidenceBoth
		}
		out = append(out, t)
	}
	return out
}
