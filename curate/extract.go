package curate

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/grailbio/srna/encoding/fasta"
	"github.com/grailbio/srna/interval"
)

// Extract writes the transcript sequences as FASTA, one record per
// transcript named by its ID. Minus-strand transcripts are
// reverse-complemented.
func Extract(w io.Writer, fa fasta.Fasta, ts []Transcript) error {
	out := bufio.NewWriter(w)
	for i := range ts {
		t := &ts[i]
		seq, err := fa.Get(t.Rec.Contig, t.Rec.Start0, t.Rec.End)
		if err != nil {
			return fmt.Errorf("transcript %s: %v", t.ID, err)
		}
		if t.Rec.Strand == interval.StrandMinus {
			if seq, err = reverseComplement(seq); err != nil {
				return fmt.Errorf("transcript %s: %v", t.ID, err)
			}
		}
		if _, err := fmt.Fprintf(out, ">%s\n%s\n", t.ID, seq); err != nil {
			return err
		}
	}
	return out.Flush()
}

func reverseComplement(seq string) (string, error) {
	var revcomp strings.Builder
	revcomp.Grow(len(seq))
	for i := range seq {
		switch x := seq[len(seq)-i-1]; x {
		case 'A', 'a':
			revcomp.WriteByte('T')
		case 'C', 'c':
			revcomp.WriteByte('G')
		case 'T', 't':
			revcomp.WriteByte('A')
		case 'G', 'g':
			revcomp.WriteByte('C')
		case 'N', 'n':
			revcomp.WriteByte('N')
		default:
			return "", fmt.Errorf("unrecognized nucleotide %q", x)
		}
	}
	return revcomp.String(), nil
}
