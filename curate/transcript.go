package curate

import (
	"fmt"
	"strconv"

	"github.com/grailbio/srna/gff"
)

// Class is the placement of a candidate relative to one reference feature
// set.
type Class int

const (
	// Unclassified means no rule matched: the candidate is neither coding,
	// antisense, nor far enough from everything to be intergenic.
	Unclassified Class = iota
	// Intergenic means no reference feature overlaps the candidate or sits
	// within the intergenic margin of it.
	Intergenic
	// Antisense means an opposite-strand reference feature overlaps the
	// candidate sufficiently, and no same-strand feature disqualifies it.
	Antisense
	// Coding means a same-strand reference feature overlaps the candidate
	// (disregarding short-peptide exceptions).
	Coding
)

var classNames = [...]string{"unclassified", "intergenic", "antisense", "coding"}

func (c Class) String() string {
	if c < 0 || int(c) >= len(classNames) {
		return fmt.Sprintf("class(%d)", int(c))
	}
	return classNames[c]
}

// NonCoding reports whether the class is evidence for keeping a candidate.
func (c Class) NonCoding() bool { return c == Intergenic || c == Antisense }

// Evidence records which reference sets support a consolidated candidate.
type Evidence int

const (
	EvidenceNone Evidence = iota
	// EvidenceORF means only predicted ORFs support the candidate.
	EvidenceORF
	// EvidenceAnnotation means only the genome annotation supports it.
	EvidenceAnnotation
	// EvidenceBoth means the two sets agree.
	EvidenceBoth
)

var evidenceNames = [...]string{"none", "orf", "annotation", "both"}

func (e Evidence) String() string {
	if e < 0 || int(e) >= len(evidenceNames) {
		return fmt.Sprintf("evidence(%d)", int(e))
	}
	return evidenceNames[e]
}

// Transcript is one assembled transcript moving through the curation chain.
// Rec is never mutated by the filters; the emitter tags a copy.
type Transcript struct {
	Rec gff.Record
	// ID is the transcript_id attribute.
	ID string
	// TPM is the expression estimate from the assembler, 0 when absent.
	TPM      float64
	Class    Class
	Evidence Evidence
}

// SelectTranscripts picks the transcript rows out of an assembler GTF,
// dropping exon and other sub-feature rows.  Inputs that carry no
// "transcript" rows at all are taken as already transcript-only.
func SelectTranscripts(recs []gff.Record) []gff.Record {
	var out []gff.Record
	for _, r := range recs {
		if r.Feature == "transcript" {
			out = append(out, r)
		}
	}
	if len(out) == 0 {
		return recs
	}
	return out
}

// NewTranscripts builds the candidate set from transcript records.  Every
// record must carry a unique transcript_id; TPM is parsed when present.
func NewTranscripts(recs []gff.Record) ([]Transcript, error) {
	ts := make([]Transcript, 0, len(recs))
	seen := make(map[string]struct{}, len(recs))
	for i, r := range recs {
		id, ok := r.Attr("transcript_id")
		if !ok || id == "" {
			return nil, fmt.Errorf("transcript record %d (%s): no transcript_id attribute", i+1, r.Span())
		}
		if _, dup := seen[id]; dup {
			return nil, fmt.Errorf("transcript record %d (%s): duplicate transcript_id %q", i+1, r.Span(), id)
		}
		seen[id] = struct{}{}
		t := Transcript{Rec: r, ID: id}
		if s, ok := r.Attr("TPM"); ok {
			tpm, err := strconv.ParseFloat(s, 64)
			if err != nil {
				return nil, fmt.Errorf("transcript %s: bad TPM %q", id, s)
			}
			t.TPM = tpm
		}
		ts = append(ts, t)
	}
	return ts, nil
}
