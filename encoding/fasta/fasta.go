// Package fasta reads nucleotide sequence from FASTA files, either by
// loading the whole file into memory or through a samtools faidx style
// index (http://www.htslib.org/doc/faidx.html).  Sequence names are
// truncated at the first space, so ">chr1 Homo sapiens" becomes "chr1".
package fasta

import (
	"bufio"
	"bytes"
	"io"
	"strings"

	"github.com/grailbio/srna/interval"
	"github.com/pkg/errors"
)

// Fasta is read-only access to a set of named nucleotide sequences.
// Coordinates are 0-based half-open.
type Fasta interface {
	// Get returns the bases of contig in [start, end).  Get is thread
	// safe.
	Get(contig string, start, end interval.PosType) (string, error)

	// Len returns the number of bases in contig.
	Len(contig string) (interval.PosType, error)

	// Contigs returns every sequence name, in file order.
	Contigs() []string
}

type memFasta struct {
	seqs    map[string]string
	contigs []string
}

// New reads all of in, which must be uncompressed FASTA text, into memory.
func New(in io.Reader) (Fasta, error) {
	f := &memFasta{seqs: map[string]string{}}
	r := bufio.NewReader(in)
	var (
		name string
		seq  strings.Builder
	)
	flush := func() error {
		if _, ok := f.seqs[name]; ok {
			return errors.Errorf("duplicate sequence %s", name)
		}
		if seq.Len() > int(interval.PosTypeMax) {
			return errors.Errorf("sequence %s: length %d overflows the position type", name, seq.Len())
		}
		f.seqs[name] = seq.String()
		f.contigs = append(f.contigs, name)
		seq.Reset()
		return nil
	}
	for {
		raw, rerr := r.ReadBytes('\n')
		line := bytes.TrimRight(raw, "\r\n")
		if len(line) > 0 {
			if line[0] == '>' {
				if name != "" {
					if err := flush(); err != nil {
						return nil, err
					}
				}
				name = headerName(line)
				if name == "" {
					return nil, errors.Errorf("sequence with no name")
				}
			} else {
				if name == "" {
					return nil, errors.Errorf("sequence data precedes the first FASTA header")
				}
				seq.Write(line)
			}
		}
		if rerr == io.EOF {
			break
		}
		if rerr != nil {
			return nil, errors.Wrap(rerr, "reading FASTA")
		}
	}
	if name == "" {
		return nil, errors.Errorf("empty FASTA input")
	}
	if err := flush(); err != nil {
		return nil, err
	}
	return f, nil
}

// headerName extracts the sequence name from a ">name description" line.
func headerName(line []byte) string {
	name := string(line[1:])
	if i := strings.IndexByte(name, ' '); i >= 0 {
		name = name[:i]
	}
	return name
}

func (f *memFasta) Get(contig string, start, end interval.PosType) (string, error) {
	seq, ok := f.seqs[contig]
	if !ok {
		return "", errors.Errorf("no sequence %s in the FASTA", contig)
	}
	if start < 0 || start >= end {
		return "", errors.Errorf("%s: invalid range [%d, %d)", contig, start, end)
	}
	if int64(end) > int64(len(seq)) {
		return "", errors.Errorf("%s: range [%d, %d) exceeds sequence length %d",
			contig, start, end, len(seq))
	}
	return seq[start:end], nil
}

func (f *memFasta) Len(contig string) (interval.PosType, error) {
	seq, ok := f.seqs[contig]
	if !ok {
		return 0, errors.Errorf("no sequence %s in the FASTA", contig)
	}
	return interval.PosType(len(seq)), nil
}

func (f *memFasta) Contigs() []string {
	return f.contigs
}
