package curate

// Stats represents high-level statistics of one classification pass.
type Stats struct {
	// Transcripts counts the candidates examined.
	Transcripts int
	// Coding is the # of candidates with a disqualifying same-strand overlap.
	Coding int
	// Antisense is the # of candidates called antisense.
	Antisense int
	// Intergenic is the # of candidates called intergenic.
	Intergenic int
	// Unclassified is the # of candidates matching no rule.
	Unclassified int
	// PeptidesExcepted counts reference features disregarded by the
	// short-peptide exception, summed over all candidates.
	PeptidesExcepted int
}

// Merge adds the field values of the two Stats objects and creates new Stats.
func (s Stats) Merge(o Stats) Stats {
	s.Transcripts += o.Transcripts
	s.Coding += o.Coding
	s.Antisense += o.Antisense
	s.Intergenic += o.Intergenic
	s.Unclassified += o.Unclassified
	s.PeptidesExcepted += o.PeptidesExcepted
	return s
}
