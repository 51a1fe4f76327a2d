// Package pipeline holds the stage plumbing for bio-srna: a recordio
// checkpoint that carries the consolidated transcript set between the
// classification and filtering phases, and stage markers that let an
// interrupted run resume without repeating finished work.
package pipeline

import (
	"bytes"
	"context"
	"encoding/gob"
	"fmt"

	"github.com/grailbio/base/file"
	"github.com/grailbio/base/recordio"
	"github.com/grailbio/base/recordio/recordiozstd"
	"github.com/grailbio/srna/curate"
	"v.io/x/lib/vlog"
)

const (
	// <checkpointVersionKey, checkpointVersion> is stored in a recordio
	// header.
	checkpointVersionKey = "srnaversion"
	checkpointVersion    = "SRNA_V1"
)

// checkpointTrailer is stored in the trailer section of the recordio file.
type checkpointTrailer struct {
	// Opts is the option set the classification phase ran with.
	Opts curate.Opts
	// Stats summarizes the classification phase.
	Stats curate.Stats
}

// CheckpointWriter dumps consolidated transcripts to a recordio file. The
// file lets the filtering phase run without repeating classification.
type CheckpointWriter struct {
	out     file.File
	w       recordio.Writer
	trailer checkpointTrailer
}

// NewCheckpointWriter creates a checkpoint at path. Close must be called
// after all transcripts are written.
func NewCheckpointWriter(ctx context.Context, path string, opts curate.Opts, stats curate.Stats) (*CheckpointWriter, error) {
	recordiozstd.Init()
	out, err := file.Create(ctx, path)
	if err != nil {
		return nil, err
	}
	w := recordio.NewWriter(out.Writer(ctx), recordio.WriterOpts{
		Transformers: []string{recordiozstd.Name},
	})
	w.AddHeader(checkpointVersionKey, checkpointVersion)
	w.AddHeader(recordio.KeyTrailer, true)
	return &CheckpointWriter{out: out, w: w, trailer: checkpointTrailer{Opts: opts, Stats: stats}}, nil
}

// Write appends one transcript.
func (w *CheckpointWriter) Write(t curate.Transcript) error {
	var b bytes.Buffer
	if err := gob.NewEncoder(&b).Encode(t); err != nil {
		return err
	}
	w.w.Append(b.Bytes())
	return nil
}

// Close writes the trailer and closes the file. It must be called exactly
// once.
func (w *CheckpointWriter) Close(ctx context.Context) error {
	var b bytes.Buffer
	if err := gob.NewEncoder(&b).Encode(w.trailer); err != nil {
		return err
	}
	w.w.SetTrailer(b.Bytes())
	if err := w.w.Finish(); err != nil {
		return err
	}
	return w.out.Close(ctx)
}

// CheckpointReader reads a file created by CheckpointWriter.
type CheckpointReader struct {
	in      file.File
	r       recordio.Scanner
	trailer checkpointTrailer
	t       curate.Transcript
}

// NewCheckpointReader opens the checkpoint at path and verifies its version.
func NewCheckpointReader(ctx context.Context, path string) (*CheckpointReader, error) {
	in, err := file.Open(ctx, path)
	if err != nil {
		return nil, err
	}
	recordiozstd.Init()
	r := recordio.NewScanner(in.Reader(ctx), recordio.ScannerOpts{})
	version := ""
	for _, kv := range r.Header() {
		if kv.Key == checkpointVersionKey {
			version, _ = kv.Value.(string)
			break
		}
	}
	if version != checkpointVersion {
		_ = in.Close(ctx)
		return nil, fmt.Errorf("%s: checkpoint version %q, expect %q", path, version, checkpointVersion)
	}
	cr := &CheckpointReader{in: in, r: r}
	if err := gob.NewDecoder(bytes.NewReader(r.Trailer())).Decode(&cr.trailer); err != nil {
		_ = in.Close(ctx)
		return nil, fmt.Errorf("%s: checkpoint trailer: %v", path, err)
	}
	return cr, nil
}

// Opts returns the option set stored in the checkpoint. It can be called any
// time.
func (r *CheckpointReader) Opts() curate.Opts { return r.trailer.Opts }

// Stats returns the classification stats stored in the checkpoint. It can be
// called any time.
func (r *CheckpointReader) Stats() curate.Stats { return r.trailer.Stats }

// Scan reads the next transcript.
func (r *CheckpointReader) Scan() bool {
	if !r.r.Scan() {
		return false
	}
	r.t = curate.Transcript{}
	if err := gob.NewDecoder(bytes.NewReader(r.r.Get().([]byte))).Decode(&r.t); err != nil {
		vlog.Error(err)
		return false
	}
	return true
}

// Get yields the current transcript.
//
// REQUIRES: Last Scan call returned true.
func (r *CheckpointReader) Get() curate.Transcript { return r.t }

// Close closes the reader. It must be called exactly once.
func (r *CheckpointReader) Close(ctx context.Context) error {
	if err := r.r.Err(); err != nil {
		_ = r.in.Close(ctx)
		return err
	}
	return r.in.Close(ctx)
}

// WriteCheckpoint dumps the full transcript set in one call.
func WriteCheckpoint(ctx context.Context, path string, ts []curate.Transcript, opts curate.Opts, stats curate.Stats) error {
	w, err := NewCheckpointWriter(ctx, path, opts, stats)
	if err != nil {
		return err
	}
	for _, t := range ts {
		if err := w.Write(t); err != nil {
			return err
		}
	}
	if err := w.Close(ctx); err != nil {
		return err
	}
	vlog.VI(1).Infof("%v: wrote %d transcripts", path, len(ts))
	return nil
}

// ReadCheckpoint reads the full transcript set in one call.
func ReadCheckpoint(ctx context.Context, path string) ([]curate.Transcript, curate.Opts, curate.Stats, error) {
	r, err := NewCheckpointReader(ctx, path)
	if err != nil {
		return nil, curate.Opts{}, curate.Stats{}, err
	}
	var ts []curate.Transcript
	for r.Scan() {
		ts = append(ts, r.Get())
	}
	if err := r.Close(ctx); err != nil {
		return nil, curate.Opts{}, curate.Stats{}, err
	}
	vlog.VI(1).Infof("%v: read %d transcripts", path, len(ts))
	return ts, r.Opts(), r.Stats(), nil
}
