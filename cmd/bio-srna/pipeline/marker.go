package pipeline

import (
	"context"
	"encoding/binary"
	"fmt"

	"github.com/grailbio/base/file"
	"github.com/minio/highwayhash"
	"v.io/x/lib/vlog"
)

// A stage marker is a small file <dir>/<stage>.done holding the digest of
// the stage name and its input descriptors. A rerun skips a stage whose
// marker matches; changing any input invalidates the marker.

func markerPath(dir, stage string) string {
	return fmt.Sprintf("%s/%s.done", dir, stage)
}

func stageDigest(stage string, inputs []string) string {
	var (
		zeroSeed [highwayhash.Size]uint8
		buf      []uint8
	)
	add := func(s string) {
		var n [4]byte
		binary.LittleEndian.PutUint32(n[:], uint32(len(s)))
		buf = append(buf, n[:]...)
		buf = append(buf, s...)
	}
	add(stage)
	for _, in := range inputs {
		add(in)
	}
	sum := highwayhash.Sum(buf, zeroSeed[:])
	return fmt.Sprintf("%x", sum)
}

// StageDone reports whether stage completed in a previous run with the same
// inputs. An empty dir disables markers.
func StageDone(ctx context.Context, dir, stage string, inputs []string) bool {
	if dir == "" {
		return false
	}
	path := markerPath(dir, stage)
	data, err := file.ReadFile(ctx, path)
	if err != nil {
		return false
	}
	if string(data) != stageDigest(stage, inputs) {
		vlog.VI(1).Infof("%v: stale marker, rerunning %s", path, stage)
		return false
	}
	return true
}

// MarkStageDone records that stage completed with the given inputs. An empty
// dir disables markers.
func MarkStageDone(ctx context.Context, dir, stage string, inputs []string) error {
	if dir == "" {
		return nil
	}
	path := markerPath(dir, stage)
	out, err := file.Create(ctx, path)
	if err != nil {
		return err
	}
	if _, err := out.Writer(ctx).Write([]byte(stageDigest(stage, inputs))); err != nil {
		_ = out.Close(ctx)
		return err
	}
	if err := out.Close(ctx); err != nil {
		return err
	}
	vlog.VI(1).Infof("%v: marked %s done", path, stage)
	return nil
}
