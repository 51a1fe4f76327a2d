package fasta

import (
	"bufio"
	"bytes"
	"io"
	"strconv"
	"strings"

	"github.com/grailbio/base/tsv"
	"github.com/grailbio/srna/interval"
	"github.com/pkg/errors"
)

// faiRecord is one line of a samtools faidx style index: the sequence name,
// its length in bases, the byte offset of its first base, the number of
// bases per line, and the number of bytes per line including the newline.
type faiRecord struct {
	name      string
	bases     interval.PosType
	offset    int64
	lineBases int64
	lineWidth int64
}

// parseIndex parses a *.fai index.  It rejects duplicate sequence names and
// line geometries that indexed lookups could not honor.
func parseIndex(in io.Reader) ([]faiRecord, error) {
	var (
		recs    []faiRecord
		seen    = map[string]bool{}
		scanner = bufio.NewScanner(in)
		n       int
	)
	for scanner.Scan() {
		n++
		cols := strings.Split(scanner.Text(), "\t")
		if len(cols) != 5 {
			return nil, errors.Errorf("index line %d: %d columns, want 5", n, len(cols))
		}
		var nums [4]int64
		for i, col := range cols[1:] {
			v, err := strconv.ParseInt(col, 10, 64)
			if err != nil || v < 0 {
				return nil, errors.Errorf("index line %d (%s): bad number %q", n, cols[0], col)
			}
			nums[i] = v
		}
		rec := faiRecord{
			name:      cols[0],
			offset:    nums[1],
			lineBases: nums[2],
			lineWidth: nums[3],
		}
		if rec.name == "" || seen[rec.name] {
			return nil, errors.Errorf("index line %d: missing or duplicate sequence name %q", n, rec.name)
		}
		if nums[0] > int64(interval.PosTypeMax) {
			return nil, errors.Errorf("sequence %s: length %d overflows the position type", rec.name, nums[0])
		}
		if rec.lineBases < 1 || rec.lineWidth < rec.lineBases {
			return nil, errors.Errorf("sequence %s: bad line geometry %d bases / %d bytes",
				rec.name, rec.lineBases, rec.lineWidth)
		}
		rec.bases = interval.PosType(nums[0])
		seen[rec.name] = true
		recs = append(recs, rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "reading FASTA index")
	}
	return recs, nil
}

// GenerateIndex writes a *.fai index for the FASTA text read from in.  The
// output can be passed to NewIndexed or ReadLengths later.  Lines within a
// sequence must all be the same length, except the last; GenerateIndex
// rejects input that indexed lookups could not honor.
func GenerateIndex(out io.Writer, in io.Reader) error {
	w := tsv.NewWriter(out)
	var (
		r      = bufio.NewReader(in)
		rec    faiRecord
		open   bool // a header has been seen and not yet flushed
		ragged bool // the previous line of rec was short
		offset int64
	)
	flush := func() error {
		if rec.bases == 0 {
			return errors.Errorf("sequence %s: no bases", rec.name)
		}
		w.WriteString(rec.name)
		w.WriteInt64(int64(rec.bases))
		w.WriteInt64(rec.offset)
		w.WriteInt64(rec.lineBases)
		w.WriteInt64(rec.lineWidth)
		return w.EndLine()
	}
	for {
		raw, rerr := r.ReadBytes('\n')
		line := bytes.TrimRight(raw, "\r\n")
		if len(line) > 0 && line[0] == '>' {
			if open {
				if err := flush(); err != nil {
					return err
				}
			}
			name := headerName(line)
			if name == "" {
				return errors.Errorf("offset %d: sequence with no name", offset)
			}
			rec = faiRecord{name: name, offset: offset + int64(len(raw))}
			open, ragged = true, false
		} else if len(line) > 0 {
			if !open {
				return errors.Errorf("sequence data precedes the first FASTA header")
			}
			if ragged {
				return errors.Errorf("sequence %s: uneven line lengths", rec.name)
			}
			if rec.lineBases == 0 {
				rec.lineBases = int64(len(line))
				rec.lineWidth = int64(len(raw))
			}
			if int64(len(line)) > rec.lineBases {
				return errors.Errorf("sequence %s: uneven line lengths", rec.name)
			}
			ragged = int64(len(line)) < rec.lineBases
			if int64(rec.bases)+int64(len(line)) > int64(interval.PosTypeMax) {
				return errors.Errorf("sequence %s: length overflows the position type", rec.name)
			}
			rec.bases += interval.PosType(len(line))
		} else if len(line) == 0 && len(raw) > 0 {
			// A blank line ends the current sequence body.
			ragged = open
		}
		offset += int64(len(raw))
		if rerr == io.EOF {
			break
		}
		if rerr != nil {
			return errors.Wrap(rerr, "reading FASTA")
		}
	}
	if !open {
		return errors.Errorf("empty FASTA input")
	}
	if err := flush(); err != nil {
		return err
	}
	return w.Flush()
}
