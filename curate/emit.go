package curate

import (
	"bufio"
	"context"
	"io"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/file"
	"github.com/grailbio/srna/gff"
)

// classAttr tags emitted records with their assigned class.
const classAttr = "srna_class"

// WriteRecords writes the transcripts back out as annotation records, each
// tagged with its class. The input records are not modified.
func WriteRecords(w io.Writer, ts []Transcript) error {
	out := gff.NewWriter(w)
	for i := range ts {
		rec := ts[i].Rec
		rec.Attrs = append([]gff.Attribute(nil), rec.Attrs...)
		rec.SetAttr(classAttr, ts[i].Class.String())
		if err := out.Write(&rec); err != nil {
			return err
		}
	}
	return out.Flush()
}

// WriteRecordsPath writes the transcripts to a file path.
func WriteRecordsPath(ctx context.Context, path string, ts []Transcript) error {
	out, err := file.Create(ctx, path)
	if err != nil {
		return errors.E(err, path)
	}
	w := bufio.NewWriter(out.Writer(ctx))
	if err := WriteRecords(w, ts); err != nil {
		return errors.E(err, path)
	}
	if err := w.Flush(); err != nil {
		return errors.E(err, path)
	}
	return out.Close(ctx)
}
