// Package gff reads and writes 9-column tab-separated annotation records
// (GTF/GFF2).  Coordinates are 1-based inclusive on disk and 0-based
// half-open in memory; the conversion happens at parse and write time.
package gff

import (
	"fmt"
	"strings"

	"github.com/grailbio/srna/interval"
)

// Attribute is one key-value pair from the 9th column.  Values are stored
// unquoted; the writer re-quotes them.
type Attribute struct {
	Key   string
	Value string
}

// Record is one annotation line.  Start0 and End follow the 0-based
// half-open convention of interval.Span, so Record{Start0: 99, End: 200}
// round-trips to columns "100" and "200".
type Record struct {
	// Contig is the sequence the feature lies on (column 1).
	Contig string
	// Source is the program that produced the feature (column 2).
	Source string
	// Feature is the feature type, e.g. "transcript" or "CDS" (column 3).
	Feature string
	Start0  interval.PosType
	End     interval.PosType
	// Score is kept verbatim; it is often ".".
	Score  string
	Strand interval.Strand
	// Frame is kept verbatim; it is "." for non-coding features.
	Frame string
	// Attrs preserves the attribute order of the input line.
	Attrs []Attribute
}

// Span returns the record's location.
func (r *Record) Span() interval.Span {
	return interval.Span{Contig: r.Contig, Start0: r.Start0, End: r.End, Strand: r.Strand}
}

// Len returns the number of bases the record covers.
func (r *Record) Len() interval.PosType { return r.End - r.Start0 }

// Attr returns the value of the named attribute, and whether it is present.
func (r *Record) Attr(key string) (string, bool) {
	for _, a := range r.Attrs {
		if a.Key == key {
			return a.Value, true
		}
	}
	return "", false
}

// SetAttr replaces the named attribute in place, or appends it if absent.
// Existing attribute order is preserved either way.
func (r *Record) SetAttr(key, value string) {
	for i := range r.Attrs {
		if r.Attrs[i].Key == key {
			r.Attrs[i].Value = value
			return
		}
	}
	r.Attrs = append(r.Attrs, Attribute{Key: key, Value: value})
}

func parseAttrs(info string) ([]Attribute, error) {
	var attrs []Attribute
	for _, field := range strings.Split(strings.TrimSpace(info), ";") {
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}
		pair := strings.SplitN(field, " ", 2)
		if len(pair) != 2 {
			return nil, fmt.Errorf("malformed attribute %q", field)
		}
		attrs = append(attrs, Attribute{
			Key:   pair[0],
			Value: strings.Trim(pair[1], "\""),
		})
	}
	return attrs, nil
}

func marshalAttrs(attrs []Attribute) string {
	var sb strings.Builder
	for i, a := range attrs {
		if i > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(a.Key)
		sb.WriteString(" \"")
		sb.WriteString(a.Value)
		sb.WriteString("\";")
	}
	return sb.String()
}
