package directory

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/hupe1980/lexgo/blobstore"
)

// BlobDirectory adapts a blobstore.BlobStore to the Directory
// interface, putting segments on S3, MinIO or any other blob backend.
//
// OpenRead materializes the whole entry: FileSlice views need the
// bytes contiguous in memory. Mappable blobs are viewed zero-copy and
// kept open until the directory is closed; everything else is copied
// once. Deployments that want block-granular remote reads layer a
// blobstore.CachingStore underneath.
type BlobDirectory struct {
	store blobstore.BlobStore

	mu       sync.Mutex
	retained []blobstore.Blob
	pending  map[string]struct{}
}

var _ Directory = (*BlobDirectory)(nil)

// OpenBlobDirectory wraps store as a Directory.
func OpenBlobDirectory(store blobstore.BlobStore) *BlobDirectory {
	return &BlobDirectory{
		store:   store,
		pending: make(map[string]struct{}),
	}
}

// OpenRead fetches the entry and returns a view of it.
func (d *BlobDirectory) OpenRead(ctx context.Context, name string) (FileSlice, error) {
	blob, err := d.store.Open(ctx, name)
	if err != nil {
		return FileSlice{}, d.mapNotFound(err, name)
	}

	if m, ok := blob.(blobstore.Mappable); ok {
		data, err := m.Bytes()
		if err == nil {
			// The mapping must outlive the returned view.
			d.mu.Lock()
			d.retained = append(d.retained, blob)
			d.mu.Unlock()

			return NewFileSlice(data), nil
		}
	}

	data, err := blobstore.ReadAll(ctx, blob)
	if closeErr := blob.Close(); err == nil {
		err = closeErr
	}

	if err != nil {
		return FileSlice{}, fmt.Errorf("read blob %s: %w", name, err)
	}

	return NewFileSlice(data), nil
}

// OpenWrite starts a new entry streaming into the store. The entry
// becomes visible when the writer is terminated.
func (d *BlobDirectory) OpenWrite(ctx context.Context, name string) (TerminatingWriter, error) {
	exists, err := d.Exists(ctx, name)
	if err != nil {
		return nil, err
	}

	if exists {
		return nil, fmt.Errorf("%w: %s", ErrFileExists, name)
	}

	d.mu.Lock()
	if _, ok := d.pending[name]; ok {
		d.mu.Unlock()
		return nil, fmt.Errorf("%w: %s", ErrFileExists, name)
	}
	d.pending[name] = struct{}{}
	d.mu.Unlock()

	blob, err := d.store.Create(ctx, name)
	if err != nil {
		d.release(name)
		return nil, err
	}

	return &blobWriter{dir: d, name: name, blob: blob}, nil
}

// AtomicRead fetches a small entry in one shot.
func (d *BlobDirectory) AtomicRead(ctx context.Context, name string) ([]byte, error) {
	blob, err := d.store.Open(ctx, name)
	if err != nil {
		return nil, d.mapNotFound(err, name)
	}

	data, err := blobstore.ReadAll(ctx, blob)
	if closeErr := blob.Close(); err == nil {
		err = closeErr
	}

	if err != nil {
		return nil, fmt.Errorf("read blob %s: %w", name, err)
	}

	// Mapped blobs alias their backing store; hand out a copy since the
	// blob is closed already.
	copied := make([]byte, len(data))
	copy(copied, data)

	return copied, nil
}

// AtomicWrite replaces a small entry in one shot. Stores with a commit
// protocol, such as the DynamoDB-backed one, make this a true
// compare-and-swap for their pointer object.
func (d *BlobDirectory) AtomicWrite(ctx context.Context, name string, data []byte) error {
	return d.store.Put(ctx, name, data)
}

// Delete removes an entry.
func (d *BlobDirectory) Delete(ctx context.Context, name string) error {
	// Blob deletes are idempotent, but the Directory contract reports
	// missing entries.
	exists, err := d.Exists(ctx, name)
	if err != nil {
		return err
	}

	if !exists {
		return fmt.Errorf("%w: %s", ErrFileNotFound, name)
	}

	return d.store.Delete(ctx, name)
}

// Exists reports whether an entry is present.
func (d *BlobDirectory) Exists(ctx context.Context, name string) (bool, error) {
	blob, err := d.store.Open(ctx, name)
	if err != nil {
		if errors.Is(err, blobstore.ErrNotFound) {
			return false, nil
		}

		return false, err
	}

	return true, blob.Close()
}

// List returns the names of all entries with the given prefix.
func (d *BlobDirectory) List(ctx context.Context, prefix string) ([]string, error) {
	return d.store.List(ctx, prefix)
}

// Sync is a no-op. Blob stores commit each entry when its writer
// closes.
func (d *BlobDirectory) Sync(_ context.Context) error {
	return nil
}

// Close releases the blobs retained for zero-copy views. Views handed
// out by OpenRead become invalid.
func (d *BlobDirectory) Close() error {
	d.mu.Lock()
	retained := d.retained
	d.retained = nil
	d.mu.Unlock()

	var firstErr error
	for _, blob := range retained {
		if err := blob.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}

	return firstErr
}

func (d *BlobDirectory) mapNotFound(err error, name string) error {
	if errors.Is(err, blobstore.ErrNotFound) {
		return fmt.Errorf("%w: %s", ErrFileNotFound, name)
	}

	return err
}

func (d *BlobDirectory) release(name string) {
	d.mu.Lock()
	delete(d.pending, name)
	d.mu.Unlock()
}

type blobWriter struct {
	dir        *BlobDirectory
	name       string
	blob       blobstore.WritableBlob
	terminated bool
}

func (w *blobWriter) Write(p []byte) (int, error) {
	if w.terminated {
		return 0, fmt.Errorf("directory: write to terminated entry %s", w.name)
	}

	return w.blob.Write(p)
}

func (w *blobWriter) Terminate() error {
	if w.terminated {
		return nil
	}
	w.terminated = true

	defer w.dir.release(w.name)

	return w.blob.Close()
}
