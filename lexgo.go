package lexgo

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/hupe1980/lexgo/blobstore"
	"github.com/hupe1980/lexgo/codec"
	"github.com/hupe1980/lexgo/directory"
	"github.com/hupe1980/lexgo/internal/cache"
	"github.com/hupe1980/lexgo/manifest"
	"github.com/hupe1980/lexgo/resource"
)

// cacheBlockSize is the fetch granularity of remote stores. Reads are
// rounded to aligned 128 KiB ranges, cached once, and served from the
// cache afterwards.
const cacheBlockSize = 128 << 10

// segmentFileName returns the directory entry of a segment's store
// file. Ords are zero-padded so lexical listing order matches creation
// order.
func segmentFileName(ord uint64) string {
	return fmt.Sprintf("seg-%06d.store", ord)
}

// Location selects where a Store keeps its files. Use Local for a
// directory on disk, Remote for a blob store, or Dir to supply a
// directory implementation directly.
type Location interface {
	open(ctx context.Context, o *options) (directory.Directory, error)
}

type localLocation struct {
	path string
}

func (l localLocation) open(_ context.Context, _ *options) (directory.Directory, error) {
	return directory.OpenMmapDirectory(l.path)
}

// Local stores segments in a directory on the local filesystem, reading
// them back through memory maps. The directory is created if missing.
func Local(path string) Location {
	return localLocation{path: path}
}

type remoteLocation struct {
	store blobstore.BlobStore
}

func (l remoteLocation) open(_ context.Context, o *options) (directory.Directory, error) {
	var (
		bc  cache.BlockCache
		err error
	)

	if o.cacheDir != "" {
		bc, err = cache.NewDisk(cache.DiskConfig{
			RootDir:      o.cacheDir,
			MaxSizeBytes: o.cacheSize,
		})
		if err != nil {
			return nil, err
		}
	} else {
		bc = cache.NewSharded(o.cacheSize, o.rc)
	}

	if c, ok := bc.(io.Closer); ok {
		o.closers = append(o.closers, c)
	}

	return directory.OpenBlobDirectory(blobstore.NewCachingStore(l.store, bc, cacheBlockSize)), nil
}

// Remote stores segments in a blob store such as S3, MinIO or DynamoDB.
// Reads go through a block cache, in memory by default or on local disk
// with WithCacheDir.
func Remote(store blobstore.BlobStore) Location {
	return remoteLocation{store: store}
}

type dirLocation struct {
	dir directory.Directory
}

func (l dirLocation) open(_ context.Context, _ *options) (directory.Directory, error) {
	return l.dir, nil
}

// Dir stores segments in the given directory implementation. The store
// takes ownership and closes it on Close.
func Dir(dir directory.Directory) Location {
	return dirLocation{dir: dir}
}

// Store is a collection of immutable segments under a manifest. Writers
// build new segments through NewSegment, readers open committed ones
// through OpenSegment. A Store is safe for concurrent use.
type Store struct {
	dir      directory.Directory
	manifest *manifest.Store
	rc       *resource.Controller
	codec    codec.Codec
	logger   *Logger
	metrics  MetricsCollector

	compression Compression
	blockSize   int

	closers []io.Closer

	mu      sync.Mutex
	current *manifest.Manifest
	nextOrd uint64
	closed  bool
}

// Open opens the store at the given location, creating it when nothing
// is there yet.
func Open(ctx context.Context, loc Location, optFns ...Option) (*Store, error) {
	o := applyOptions(optFns)

	dir, err := loc.open(ctx, &o)
	if err != nil {
		closeAll(o.closers)

		return nil, fmt.Errorf("lexgo: open location: %w", err)
	}

	if o.rc != nil {
		dir = directory.NewRateLimitedDirectory(dir, o.rc)
	}

	ms := manifest.NewStore(dir, manifest.WithCodec(o.codec))

	m, err := ms.Load(ctx)
	if err != nil {
		_ = dir.Close()
		closeAll(o.closers)

		return nil, fmt.Errorf("lexgo: load manifest: %w", err)
	}

	s := &Store{
		dir:         dir,
		manifest:    ms,
		rc:          o.rc,
		codec:       o.codec,
		logger:      o.logger,
		metrics:     o.metrics,
		compression: o.compression,
		blockSize:   o.blockSize,
		closers:     o.closers,
		current:     m,
		nextOrd:     m.NextSegmentOrd,
	}

	s.logger.DebugContext(ctx, "store opened",
		slog.Int("segments", len(m.Segments)),
		slog.Uint64("opstamp", m.Opstamp),
	)

	return s, nil
}

// NewSegment starts building a new segment. The returned writer owns a
// memory arena for intermediate data structures and must be finished
// with Commit or Abort.
//
// With a memory limit configured, NewSegment blocks until the budget
// admits the first arena page or ctx is canceled. An aborted segment
// leaves a gap in the ord sequence, which is harmless.
func (s *Store) NewSegment(ctx context.Context) (*SegmentWriter, error) {
	s.mu.Lock()

	if s.closed {
		s.mu.Unlock()

		return nil, fmt.Errorf("lexgo: new segment: %w", ErrStoreClosed)
	}

	ord := s.nextOrd
	s.nextOrd++
	s.mu.Unlock()

	return newSegmentWriter(ctx, s, ord)
}

// OpenSegment opens a committed segment for reading. Unknown ords fail
// with ErrSegmentNotFound; damaged store files fail with a
// CorruptSegmentError wrapping codec.ErrCorrupted.
func (s *Store) OpenSegment(ctx context.Context, ord uint64) (*Segment, error) {
	start := time.Now()

	seg, err := s.openSegment(ctx, ord)

	var bytes uint64
	if seg != nil {
		bytes = uint64(seg.file.Len())
	}

	s.metrics.RecordSegmentOpen(time.Since(start), bytes, err)
	s.logger.LogSegmentOpen(ctx, ord, bytes, err)

	return seg, err
}

func (s *Store) openSegment(ctx context.Context, ord uint64) (*Segment, error) {
	s.mu.Lock()

	if s.closed {
		s.mu.Unlock()

		return nil, fmt.Errorf("lexgo: open segment: %w", ErrStoreClosed)
	}

	var (
		info  manifest.SegmentInfo
		found bool
	)

	for _, si := range s.current.Segments {
		if si.Ord == ord {
			info, found = si, true

			break
		}
	}
	s.mu.Unlock()

	if !found {
		return nil, fmt.Errorf("lexgo: segment %d: %w", ord, ErrSegmentNotFound)
	}

	name := segmentFileName(ord)

	data, err := s.dir.OpenRead(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("lexgo: segment %d: open %s: %w", ord, name, err)
	}

	cf, err := directory.OpenComposite(data)
	if err != nil {
		return nil, &CorruptSegmentError{Ord: ord, File: name, cause: err}
	}

	return &Segment{
		info: info,
		name: name,
		file: data,
		cf:   cf,
	}, nil
}

// commitSegment publishes a freshly written segment: it is appended to
// the manifest, and the manifest is saved before the ord becomes
// visible to readers.
func (s *Store) commitSegment(ctx context.Context, info manifest.SegmentInfo) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return fmt.Errorf("lexgo: commit segment: %w", ErrStoreClosed)
	}

	next := s.current.Clone()
	next.Segments = append(next.Segments, info)
	next.NextSegmentOrd = s.nextOrd
	next.Opstamp++

	if err := s.manifest.Save(ctx, next); err != nil {
		return fmt.Errorf("lexgo: save manifest: %w", err)
	}

	s.current = next

	return nil
}

// Segments lists the committed segments in commit order.
func (s *Store) Segments() []manifest.SegmentInfo {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]manifest.SegmentInfo, len(s.current.Segments))
	copy(out, s.current.Segments)

	return out
}

// Manifest returns a copy of the current manifest.
func (s *Store) Manifest() *manifest.Manifest {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.current.Clone()
}

// Prune deletes superseded manifest files. Segment files stay; only the
// manifest history is trimmed.
func (s *Store) Prune(ctx context.Context) error {
	err := s.manifest.Prune(ctx)

	s.logger.LogPrune(ctx, err)

	return err
}

// MemoryUsage returns the bytes currently reserved against the memory
// budget, zero when no resource config is set.
func (s *Store) MemoryUsage() int64 {
	return s.rc.MemoryUsage()
}

// Sync flushes deferred durability work of the underlying directory.
// Commit already syncs what it writes, so most callers never need this.
func (s *Store) Sync(ctx context.Context) error {
	return s.dir.Sync(ctx)
}

// Close releases the store. Segments and writers obtained from it must
// not be used afterwards. Close is idempotent.
func (s *Store) Close() error {
	s.mu.Lock()

	if s.closed {
		s.mu.Unlock()

		return nil
	}

	s.closed = true
	s.mu.Unlock()

	err := s.dir.Close()

	for i := len(s.closers) - 1; i >= 0; i-- {
		err = errors.Join(err, s.closers[i].Close())
	}

	return err
}

func closeAll(closers []io.Closer) {
	for i := len(closers) - 1; i >= 0; i-- {
		_ = closers[i].Close()
	}
}
