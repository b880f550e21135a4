package lexgo

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/hupe1980/lexgo/arena"
	"github.com/hupe1980/lexgo/directory"
	"github.com/hupe1980/lexgo/internal/block"
	"github.com/hupe1980/lexgo/manifest"
	"github.com/hupe1980/lexgo/schema"
)

// SegmentWriter builds one segment. Intermediate data structures live
// in its arena; finished field data is streamed into per-field virtual
// files of a single composite store file. Commit makes the segment
// durable and visible, Abort discards it.
//
// A SegmentWriter is not safe for concurrent use. Using it after Commit
// or Abort is a programming error and panics, except for Commit and
// Abort themselves, which return ErrWriterDone respectively nil.
type SegmentWriter struct {
	store *Store
	ord   uint64
	name  string

	arena     *arena.MemoryArena
	composite *directory.CompositeWriter

	// active is the block writer of the currently open field stream.
	// It is flushed when the next field starts and on Commit.
	active *block.Writer

	// reserved mirrors the arena's memory usage in the resource
	// controller. It is handed back when the writer finishes.
	reserved int64

	numDocs uint32
	err     error
	done    bool
}

func newSegmentWriter(ctx context.Context, s *Store, ord uint64) (*SegmentWriter, error) {
	// The arena allocates its first page eagerly, so reserve it up
	// front. Later pages are reserved by Allocate as they appear.
	if err := s.rc.AcquireMemory(ctx, arena.PageSize); err != nil {
		return nil, fmt.Errorf("lexgo: new segment: %w", err)
	}

	name := segmentFileName(ord)

	w, err := s.dir.OpenWrite(ctx, name)
	if err != nil {
		s.rc.ReleaseMemory(arena.PageSize)

		return nil, fmt.Errorf("lexgo: new segment: open %s: %w", name, err)
	}

	s.logger.LogSegmentStart(ctx, ord)

	return &SegmentWriter{
		store:     s,
		ord:       ord,
		name:      name,
		arena:     arena.New(),
		composite: directory.NewCompositeWriter(w),
		reserved:  arena.PageSize,
	}, nil
}

// Ord returns the ord the segment will be committed under.
func (sw *SegmentWriter) Ord() uint64 {
	return sw.ord
}

// Arena returns the writer's arena for building intermediate data
// structures. Allocations made directly on it bypass the memory
// budget; use Allocate when a budget is configured.
func (sw *SegmentWriter) Arena() *arena.MemoryArena {
	return sw.arena
}

// Allocate reserves n bytes in the writer's arena, charging any page
// growth against the memory budget first. With a hard limit configured
// it blocks until the growth fits or ctx is canceled, in which case no
// allocation happens.
func (sw *SegmentWriter) Allocate(ctx context.Context, n int) (arena.Addr, error) {
	sw.mustActive()

	// Worst case the allocation opens one new page: a standard page
	// for small requests, a dedicated page of exactly n past that.
	need := int64(n)
	if need < arena.PageSize {
		need = arena.PageSize
	}

	if err := sw.store.rc.AcquireMemory(ctx, need); err != nil {
		return arena.NullAddr, fmt.Errorf("lexgo: allocate %d bytes: %w", n, err)
	}

	addr := sw.arena.Allocate(n)

	// Keep only what the arena actually grew by; allocations served
	// from an existing page hand the whole reservation back.
	actual := int64(sw.arena.MemUsage()) - sw.reserved
	if actual < need {
		sw.store.rc.ReleaseMemory(need - actual)
	}

	sw.reserved += actual

	return addr, nil
}

// ForField starts the field's stream at index 0 and returns the writer
// to fill it with. The previous field's stream, if any, is closed.
func (sw *SegmentWriter) ForField(field schema.Field) io.Writer {
	return sw.ForFieldWithIdx(field, 0)
}

// ForFieldWithIdx starts the stream of (field, idx). Streams are
// written strictly one after another; opening the same pair twice is a
// programming error and panics.
//
// The stream is cut into checksummed blocks compressed per the store's
// compression setting. Write errors are deferred and surface at
// Commit.
func (sw *SegmentWriter) ForFieldWithIdx(field schema.Field, idx int) io.Writer {
	sw.mustActive()
	sw.flushActive()

	w := sw.composite.ForFieldWithIdx(field, idx)
	sw.active = block.NewWriter(w, sw.store.compression.block(), sw.store.blockSize)

	return sw.active
}

// SetNumDocs records the number of documents the segment holds, stored
// in the manifest alongside the segment.
func (sw *SegmentWriter) SetNumDocs(n uint32) {
	sw.mustActive()
	sw.numDocs = n
}

// Commit finishes the segment and publishes it: the last field stream
// is flushed, the store file is terminated and made durable, and the
// manifest is updated to reference the new segment. Only after Commit
// returns nil is the segment visible to OpenSegment.
//
// Any write error deferred by a field stream surfaces here. A failed
// Commit leaves no trace: the partial store file is deleted and the
// manifest stays untouched.
func (sw *SegmentWriter) Commit(ctx context.Context) (manifest.SegmentInfo, error) {
	if sw.done {
		return manifest.SegmentInfo{}, fmt.Errorf("lexgo: commit segment %d: %w", sw.ord, ErrWriterDone)
	}

	sw.done = true
	start := time.Now()

	info, bytes, err := sw.commit(ctx)

	sw.release()
	sw.store.metrics.RecordCommit(time.Since(start), bytes, err)
	sw.store.logger.LogCommit(ctx, sw.ord, bytes, err)

	return info, err
}

func (sw *SegmentWriter) commit(ctx context.Context) (manifest.SegmentInfo, uint64, error) {
	sw.flushActive()

	if sw.err != nil {
		sw.discard(ctx)

		return manifest.SegmentInfo{}, 0, fmt.Errorf("lexgo: commit segment %d: %w", sw.ord, sw.err)
	}

	if err := sw.composite.Close(); err != nil {
		sw.deleteFile(ctx)

		return manifest.SegmentInfo{}, 0, fmt.Errorf("lexgo: commit segment %d: %w", sw.ord, err)
	}

	bytes := sw.composite.BytesWritten()

	if err := sw.store.dir.Sync(ctx); err != nil {
		sw.deleteFile(ctx)

		return manifest.SegmentInfo{}, bytes, fmt.Errorf("lexgo: commit segment %d: sync: %w", sw.ord, err)
	}

	info := manifest.SegmentInfo{
		Ord:     sw.ord,
		NumDocs: sw.numDocs,
		Files:   []string{sw.name},
	}

	if err := sw.store.commitSegment(ctx, info); err != nil {
		sw.deleteFile(ctx)

		return manifest.SegmentInfo{}, bytes, err
	}

	return info, bytes, nil
}

// Abort discards the segment: the partial store file is removed and the
// arena's budget reservation is returned. Aborting an already finished
// writer is a no-op.
func (sw *SegmentWriter) Abort(ctx context.Context) error {
	if sw.done {
		return nil
	}

	sw.done = true
	sw.discard(ctx)
	sw.release()

	sw.store.metrics.RecordAbort()
	sw.store.logger.LogAbort(ctx, sw.ord)

	return nil
}

// flushActive cuts the final frame of the open field stream. Errors
// stick and surface at Commit, so callers writing through the stream's
// io.Writer do not have to check a second time.
func (sw *SegmentWriter) flushActive() {
	if sw.active == nil {
		return
	}

	if err := sw.active.Flush(); err != nil && sw.err == nil {
		sw.err = err
	}

	sw.active = nil
}

// discard terminates the underlying writer so the backend releases it,
// then removes whatever entry became visible. TerminatingWriter has no
// discard of its own, so terminate-then-delete is the portable way to
// drop a partial segment.
func (sw *SegmentWriter) discard(ctx context.Context) {
	_ = sw.composite.Close()
	sw.deleteFile(ctx)
}

func (sw *SegmentWriter) deleteFile(ctx context.Context) {
	if err := sw.store.dir.Delete(ctx, sw.name); err != nil && !errors.Is(err, directory.ErrFileNotFound) {
		sw.store.logger.WithSegment(sw.ord).WarnContext(ctx, "failed to delete partial segment file",
			slog.String("file", sw.name),
			slog.Any("error", err),
		)
	}
}

func (sw *SegmentWriter) release() {
	sw.store.rc.ReleaseMemory(sw.reserved)
	sw.reserved = 0
}

func (sw *SegmentWriter) mustActive() {
	if sw.done {
		panic("lexgo: segment writer used after Commit or Abort")
	}
}

// Segment is a committed segment opened for reading. Field data is
// served from the composite store file without copying; FieldBytes
// reassembles a field's stream, RawField exposes the framed bytes for
// callers that decode incrementally.
//
// A Segment stays valid until its Store is closed. It holds no
// resources of its own and needs no Close.
type Segment struct {
	info manifest.SegmentInfo
	name string
	file directory.FileSlice
	cf   *directory.CompositeFile
}

// Ord returns the segment's ord.
func (s *Segment) Ord() uint64 {
	return s.info.Ord
}

// NumDocs returns the number of documents recorded at commit time.
func (s *Segment) NumDocs() uint32 {
	return s.info.NumDocs
}

// SpaceUsage reports the per-field byte footprint inside the store
// file, compressed frames included.
func (s *Segment) SpaceUsage() directory.SpaceUsage {
	return s.cf.SpaceUsage()
}

// FieldBytes returns the decompressed stream of field at index 0. The
// boolean is false when the segment holds no data for the field, which
// is a legitimate state, not corruption. Damaged frames fail with a
// CorruptSegmentError wrapping codec.ErrCorrupted.
func (s *Segment) FieldBytes(field schema.Field) ([]byte, bool, error) {
	return s.FieldBytesWithIdx(field, 0)
}

// FieldBytesWithIdx returns the decompressed stream of (field, idx).
func (s *Segment) FieldBytesWithIdx(field schema.Field, idx int) ([]byte, bool, error) {
	raw, ok := s.cf.OpenReadWithIdx(field, idx)
	if !ok {
		return nil, false, nil
	}

	data, err := block.DecompressAll(raw.Bytes())
	if err != nil {
		return nil, true, &CorruptSegmentError{Ord: s.info.Ord, File: s.name, cause: err}
	}

	return data, true, nil
}

// RawField returns the framed stream of field at index 0, checksummed
// blocks and all.
func (s *Segment) RawField(field schema.Field) (directory.FileSlice, bool) {
	return s.cf.OpenRead(field)
}

// RawFieldWithIdx returns the framed stream of (field, idx).
func (s *Segment) RawFieldWithIdx(field schema.Field, idx int) (directory.FileSlice, bool) {
	return s.cf.OpenReadWithIdx(field, idx)
}
