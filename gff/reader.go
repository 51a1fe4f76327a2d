package gff

import (
	"bufio"
	"context"
	"fmt"
	"io"

	"github.com/grailbio/base/compress"
	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/file"
	"github.com/grailbio/base/tsv"
	"github.com/grailbio/srna/interval"
)

// rawRecord mirrors one line of the file before validation.
type rawRecord struct {
	Contig  string
	Source  string
	Feature string
	Start   int
	End     int
	Score   string
	Strand  string
	Frame   string
	Attrs   string
}

// Read parses all records from r.  '#' lines are skipped.  Parsing stops at
// the first malformed record; the returned error identifies it by ordinal
// (field-count and type errors additionally carry the file line number).
func Read(r io.Reader) ([]Record, error) {
	in := tsv.NewReader(r)
	in.Comment = '#'
	in.LazyQuotes = true
	var (
		recs []Record
		raw  rawRecord
	)
	for n := 1; ; n++ {
		if err := in.Read(&raw); err != nil {
			if err == io.EOF {
				break
			}
			return nil, err
		}
		rec, err := fromRaw(&raw)
		if err != nil {
			return nil, fmt.Errorf("record %d: %v", n, err)
		}
		recs = append(recs, rec)
	}
	return recs, nil
}

// ReadPath reads all records from a (possibly compressed) file.  Path
// handling and decompression follow the extension conventions of
// grailbio/base/file and compress.
func ReadPath(ctx context.Context, path string) ([]Record, error) {
	in, err := file.Open(ctx, path)
	if err != nil {
		return nil, err
	}
	var inr io.Reader = in.Reader(ctx)
	if u := compress.NewReaderPath(inr, in.Name()); u != nil {
		inr = u
	}
	recs, err := Read(bufio.NewReaderSize(inr, 64<<10))
	if err != nil {
		err = errors.E(err, path)
	}
	if e := in.Close(ctx); e != nil && err == nil {
		err = e
	}
	return recs, err
}

func fromRaw(raw *rawRecord) (Record, error) {
	if raw.Contig == "" {
		return Record{}, fmt.Errorf("empty contig name")
	}
	if raw.Start < 1 {
		return Record{}, fmt.Errorf("start %d is not 1-based", raw.Start)
	}
	if raw.End < raw.Start {
		return Record{}, fmt.Errorf("end %d precedes start %d", raw.End, raw.Start)
	}
	strand, err := interval.ParseStrand(raw.Strand)
	if err != nil {
		return Record{}, err
	}
	attrs, err := parseAttrs(raw.Attrs)
	if err != nil {
		return Record{}, err
	}
	return Record{
		Contig:  raw.Contig,
		Source:  raw.Source,
		Feature: raw.Feature,
		Start0:  interval.PosType(raw.Start - 1),
		End:     interval.PosType(raw.End),
		Score:   raw.Score,
		Strand:  strand,
		Frame:   raw.Frame,
		Attrs:   attrs,
	}, nil
}
