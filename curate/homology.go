package curate

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/grailbio/base/compress"
	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/file"
	"github.com/grailbio/base/tsv"
)

// HitSet names the transcripts flagged by a homology search.
type HitSet map[string]struct{}

// Add records a transcript ID.
func (h HitSet) Add(id string) { h[id] = struct{}{} }

// Contains reports whether the transcript ID was flagged.
func (h HitSet) Contains(id string) bool {
	_, ok := h[id]
	return ok
}

// IDs returns the flagged transcript IDs in sorted order.
func (h HitSet) IDs() []string {
	ids := make([]string, 0, len(h))
	for id := range h {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// proteinHit is one row of the protein search table: query and subject
// names, the three score columns, then alignment coordinates and sequence
// lengths. The score columns are parsed by hand so a bad row names its
// query in the error.
type proteinHit struct {
	Query        string
	Subject      string
	BitScore     string
	EValue       string
	PctIdentity  string
	AlnLen       int
	Mismatches   int
	GapOpens     int
	QueryStart   int
	QueryEnd     int
	SubjectStart int
	SubjectEnd   int
	QueryLen     int
	SubjectLen   int
}

// ReadProteinHits reads a 14-column protein homology table and returns the
// queries with at least one alignment stronger than all three thresholds in
// opts: bit score above MinBitScore, e-value below MaxEValue, and percent
// identity above MinPctIdentity.
func ReadProteinHits(in io.Reader, opts Opts) (HitSet, error) {
	r := tsv.NewReader(in)
	r.Comment = '#'
	hits := HitSet{}
	for n := 1; ; n++ {
		var row proteinHit
		if err := r.Read(&row); err != nil {
			if err == io.EOF {
				break
			}
			return nil, fmt.Errorf("protein hit %d: %v", n, err)
		}
		bit, err := strconv.ParseFloat(row.BitScore, 64)
		if err != nil {
			return nil, fmt.Errorf("protein hit %d (%s): bad bit score %q", n, row.Query, row.BitScore)
		}
		eval, err := strconv.ParseFloat(row.EValue, 64)
		if err != nil {
			return nil, fmt.Errorf("protein hit %d (%s): bad e-value %q", n, row.Query, row.EValue)
		}
		ident, err := strconv.ParseFloat(row.PctIdentity, 64)
		if err != nil {
			return nil, fmt.Errorf("protein hit %d (%s): bad identity %q", n, row.Query, row.PctIdentity)
		}
		if bit > opts.MinBitScore && eval < opts.MaxEValue && ident > opts.MinPctIdentity {
			hits.Add(row.Query)
		}
	}
	return hits, nil
}

// ReadRNAFamilyHits reads a whitespace-aligned RNA family scan table. Each
// non-comment line names the matched family in the first column and the
// query transcript in the third. Queries whose family matches exclude are
// not flagged; a nil exclude flags every query in the table.
func ReadRNAFamilyHits(in io.Reader, exclude *regexp.Regexp) (HitSet, error) {
	hits := HitSet{}
	scanner := bufio.NewScanner(in)
	for n := 1; scanner.Scan(); n++ {
		line := scanner.Text()
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 3 {
			return nil, fmt.Errorf("RNA family hit %d: %d columns, need at least 3", n, len(fields))
		}
		family, query := fields[0], fields[2]
		if exclude != nil && exclude.MatchString(family) {
			continue
		}
		hits.Add(query)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return hits, nil
}

// ReadHitList reads transcript IDs, one per line. Blank lines and lines
// starting with '#' are skipped.
func ReadHitList(in io.Reader) (HitSet, error) {
	hits := HitSet{}
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		hits.Add(line)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return hits, nil
}

// ReadHitListPath reads a transcript ID list from a file path,
// decompressing as needed.
func ReadHitListPath(ctx context.Context, path string) (HitSet, error) {
	return readHitsPath(ctx, path, ReadHitList)
}

// ReadProteinHitsPath reads a protein homology table from a file path,
// decompressing as needed.
func ReadProteinHitsPath(ctx context.Context, path string, opts Opts) (HitSet, error) {
	return readHitsPath(ctx, path, func(in io.Reader) (HitSet, error) {
		return ReadProteinHits(in, opts)
	})
}

// ReadRNAFamilyHitsPath reads an RNA family scan table from a file path,
// decompressing as needed.
func ReadRNAFamilyHitsPath(ctx context.Context, path string, exclude *regexp.Regexp) (HitSet, error) {
	return readHitsPath(ctx, path, func(in io.Reader) (HitSet, error) {
		return ReadRNAFamilyHits(in, exclude)
	})
}

func readHitsPath(ctx context.Context, path string, read func(io.Reader) (HitSet, error)) (HitSet, error) {
	in, err := file.Open(ctx, path)
	if err != nil {
		return nil, err
	}
	var inr io.Reader = in.Reader(ctx)
	if u := compress.NewReaderPath(inr, in.Name()); u != nil {
		inr = u
	}
	hits, err := read(bufio.NewReaderSize(inr, 64<<10))
	if err != nil {
		err = errors.E(err, path)
	}
	if e := in.Close(ctx); e != nil && err == nil {
		err = e
	}
	return hits, err
}

// FilterHomology drops transcripts flagged in hits. A nil or empty set
// passes every transcript through.
func FilterHomology(ts []Transcript, hits HitSet) []Transcript {
	if len(hits) == 0 {
		return ts
	}
	out := make([]Transcript, 0, len(ts))
	for _, t := range ts {
		if hits.Contains(t.ID) {
			continue
		}
		out = append(out, t)
	}
	return out
}
