package fasta

import (
	"io"
	"sync"

	"github.com/grailbio/srna/interval"
	"github.com/pkg/errors"
)

// indexedFasta random-accesses a FASTA file through its *.fai index,
// without holding sequence in memory.  Every lookup seeks and reads the
// exact byte range of the request, so the reader must not be shared.
type indexedFasta struct {
	mu      sync.Mutex
	reader  io.ReadSeeker
	recs    map[string]faiRecord
	contigs []string
	raw     []byte // scratch for file bytes, reused across lookups
	seq     []byte // scratch for the unwrapped sequence
}

// NewIndexed returns a Fasta that reads sequence from fasta on demand,
// guided by the faidx style index.  fasta must be uncompressed.
func NewIndexed(fasta io.ReadSeeker, index io.Reader) (Fasta, error) {
	recs, err := parseIndex(index)
	if err != nil {
		return nil, err
	}
	f := &indexedFasta{reader: fasta, recs: make(map[string]faiRecord, len(recs))}
	for _, rec := range recs {
		f.recs[rec.name] = rec
		f.contigs = append(f.contigs, rec.name)
	}
	return f, nil
}

func (f *indexedFasta) Get(contig string, start, end interval.PosType) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	rec, ok := f.recs[contig]
	if !ok {
		return "", errors.Errorf("sequence %s not in the FASTA index", contig)
	}
	if start < 0 || start >= end {
		return "", errors.Errorf("%s: invalid range [%d, %d)", contig, start, end)
	}
	if end > rec.bases {
		return "", errors.Errorf("%s: range [%d, %d) exceeds sequence length %d",
			contig, start, end, rec.bases)
	}
	// Byte offset of a base, allowing for the newline bytes that close
	// every full line before it.
	pos := func(base int64) int64 {
		return rec.offset + base + base/rec.lineBases*(rec.lineWidth-rec.lineBases)
	}
	lo, hi := pos(int64(start)), pos(int64(end-1))+1
	f.raw = grow(f.raw, int(hi-lo))
	if _, err := f.reader.Seek(lo, io.SeekStart); err != nil {
		return "", errors.Wrapf(err, "%s: seek to %d", contig, lo)
	}
	if _, err := io.ReadFull(f.reader, f.raw); err != nil {
		return "", errors.Wrapf(err, "%s: read [%d, %d): truncated FASTA (stale index?)", contig, lo, hi)
	}
	f.seq = f.seq[:0]
	col := int64(start) % rec.lineBases
	for _, b := range f.raw {
		if col < rec.lineBases {
			f.seq = append(f.seq, b)
		}
		if col++; col == rec.lineWidth {
			col = 0
		}
	}
	return string(f.seq), nil
}

func (f *indexedFasta) Len(contig string) (interval.PosType, error) {
	rec, ok := f.recs[contig]
	if !ok {
		return 0, errors.Errorf("sequence %s not in the FASTA index", contig)
	}
	return rec.bases, nil
}

func (f *indexedFasta) Contigs() []string {
	return f.contigs
}

func grow(buf []byte, n int) []byte {
	if cap(buf) < n {
		return make([]byte, n)
	}
	return buf[:n]
}
