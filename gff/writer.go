package gff

import (
	"io"

	"github.com/grailbio/base/tsv"
)

// Writer emits records in the 9-column format.  Attribute values are always
// quoted, so a record parsed from a line with unquoted values writes back
// semantically, not byte, identical.
type Writer struct {
	w *tsv.Writer
}

func NewWriter(w io.Writer) *Writer {
	return &Writer{w: tsv.NewWriter(w)}
}

// Write appends one record.
func (w *Writer) Write(r *Record) error {
	w.w.WriteString(r.Contig)
	w.w.WriteString(r.Source)
	w.w.WriteString(r.Feature)
	w.w.WriteInt64(int64(r.Start0 + 1))
	w.w.WriteInt64(int64(r.End))
	w.w.WriteString(r.Score)
	w.w.WriteString(r.Strand.String())
	w.w.WriteString(r.Frame)
	w.w.WriteString(marshalAttrs(r.Attrs))
	return w.w.EndLine()
}

// Flush flushes buffered records to the underlying writer.
func (w *Writer) Flush() error { return w.w.Flush() }

// WriteAll writes recs and flushes.
func WriteAll(w io.Writer, recs []Record) error {
	ww := NewWriter(w)
	for i := range recs {
		if err := ww.Write(&recs[i]); err != nil {
			return err
		}
	}
	return ww.Flush()
}
