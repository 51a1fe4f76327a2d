package fasta

import (
	"context"
	"io"
	"io/ioutil"
	"strings"

	"github.com/grailbio/base/file"
	"github.com/grailbio/hts/sam"
	"github.com/grailbio/srna/interval"
	"github.com/pkg/errors"
)

// Lengths maps a sequence name to its length in bases.
type Lengths map[string]interval.PosType

// ReadLengths reads a *.fai index and returns the length of every sequence
// listed in it.  This doesn't require reading the FASTA itself.
func ReadLengths(index io.Reader) (Lengths, error) {
	recs, err := parseIndex(index)
	if err != nil {
		return nil, err
	}
	lengths := make(Lengths, len(recs))
	for _, rec := range recs {
		lengths[rec.name] = rec.bases
	}
	return lengths, nil
}

// ReadDictLengths reads sequence lengths from a *.dict file (a SAM header
// whose @SQ lines carry SN and LN tags, as written by "picard
// CreateSequenceDictionary").
func ReadDictLengths(dict io.Reader) (Lengths, error) {
	data, err := ioutil.ReadAll(dict)
	if err != nil {
		return nil, err
	}
	header, err := sam.NewHeader(data, nil)
	if err != nil {
		return nil, errors.Wrap(err, "couldn't parse sequence dictionary")
	}
	lengths := Lengths{}
	for _, ref := range header.Refs() {
		if ref.Len() < 0 || ref.Len() > int(interval.PosTypeMax) {
			return nil, errors.Errorf("sequence %s: bad length %d", ref.Name(), ref.Len())
		}
		lengths[ref.Name()] = interval.PosType(ref.Len())
	}
	return lengths, nil
}

// ReadLengthsPath loads a length table from path, which may name either a
// *.fai index or a *.dict sequence dictionary.
func ReadLengthsPath(ctx context.Context, path string) (Lengths, error) {
	in, err := file.Open(ctx, path)
	if err != nil {
		return nil, err
	}
	var lengths Lengths
	if strings.HasSuffix(path, ".dict") {
		lengths, err = ReadDictLengths(in.Reader(ctx))
	} else {
		lengths, err = ReadLengths(in.Reader(ctx))
	}
	if err != nil {
		err = errors.Wrap(err, path)
	}
	if e := in.Close(ctx); e != nil && err == nil {
		err = e
	}
	return lengths, err
}
