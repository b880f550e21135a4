package blobstore

import (
	"context"
	"io"
	"os"
)

// ErrNotFound is returned when a blob does not exist.
//
// Implementations return errors satisfying errors.Is(err, ErrNotFound).
// The default maps to os.ErrNotExist.
var ErrNotFound = os.ErrNotExist

// BlobStore reads and writes immutable blobs.
type BlobStore interface {
	// Open opens a blob for reading.
	Open(ctx context.Context, name string) (Blob, error)

	// Create starts a streaming write. The blob becomes visible when
	// the writable blob is closed, and not before.
	Create(ctx context.Context, name string) (WritableBlob, error)

	// Put writes a small blob in one shot, replacing any previous
	// content atomically.
	Put(ctx context.Context, name string, data []byte) error

	// Delete removes a blob. Deleting a missing blob is not an error.
	Delete(ctx context.Context, name string) error

	// List returns the sorted names of all blobs with the prefix.
	List(ctx context.Context, prefix string) ([]string, error)
}

// Blob is a read-only handle to an immutable blob.
type Blob interface {
	// ReadAt reads len(p) bytes at offset off. Reads crossing the end
	// of the blob return the available bytes and io.EOF.
	ReadAt(ctx context.Context, p []byte, off int64) (int, error)

	// ReadRange streams length bytes starting at off. Remote backends
	// serve this with a single range request.
	ReadRange(ctx context.Context, off, length int64) (io.ReadCloser, error)

	// Size returns the size of the blob in bytes.
	Size() int64

	io.Closer
}

// WritableBlob is a streaming write in progress. Close commits the
// blob; until then readers do not see it.
type WritableBlob interface {
	io.Writer

	// Sync makes buffered bytes durable where the backend supports
	// that. Object stores commit only on Close and treat Sync as a
	// no-op.
	Sync() error

	io.Closer
}

// Mappable is an optional interface for blobs whose content is
// directly addressable in memory.
type Mappable interface {
	// Bytes returns the blob content without copying. The slice is
	// valid until the blob is closed.
	Bytes() ([]byte, error)
}

// ReadAll returns the full content of a blob. Mappable blobs are
// returned without copying, so the result is only valid until the blob
// is closed.
func ReadAll(ctx context.Context, b Blob) ([]byte, error) {
	if m, ok := b.(Mappable); ok {
		return m.Bytes()
	}

	r, err := b.ReadRange(ctx, 0, b.Size())
	if err != nil {
		return nil, err
	}
	defer r.Close()

	return io.ReadAll(r)
}
