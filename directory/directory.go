// Package directory abstracts where segment files live and how they are
// read and written.
//
// A Directory hands out [FileSlice] views for reading and
// [TerminatingWriter] handles for writing. Writes become visible and
// durable only once the writer is terminated, which lets
// implementations buffer, fsync or upload in one place. The package
// also implements the composite file container that packs all per-field
// blocks of a segment into a single directory entry.
package directory

import (
	"context"
	"io"
	"os"
)

// ErrFileNotFound is returned when a directory entry does not exist.
//
// Implementations return errors satisfying errors.Is(err, ErrFileNotFound).
// The default maps to os.ErrNotExist.
var ErrFileNotFound = os.ErrNotExist

// ErrFileExists is returned by OpenWrite when the entry already exists.
// Directory entries are immutable once terminated, so writers never
// overwrite in place.
var ErrFileExists = os.ErrExist

// TerminatingWriter is an io.Writer whose output becomes visible and
// durable only once Terminate is called. A writer that is dropped
// without Terminate leaves no entry behind (or an ignorable partial
// one, depending on the implementation).
type TerminatingWriter interface {
	io.Writer

	// Terminate flushes buffered bytes, makes the entry visible and
	// releases the writer. No writes may follow.
	Terminate() error
}

// Directory is a flat namespace of immutable files backing segments.
//
// Implementations must be safe for concurrent use.
type Directory interface {
	// OpenRead returns a read-only view of the named entry. The view
	// stays valid until the directory is closed.
	OpenRead(ctx context.Context, name string) (FileSlice, error)

	// OpenWrite starts a new entry. It fails with ErrFileExists when
	// the name is already taken.
	OpenWrite(ctx context.Context, name string) (TerminatingWriter, error)

	// AtomicRead reads a small mutable entry, such as a pointer file,
	// in one shot.
	AtomicRead(ctx context.Context, name string) ([]byte, error)

	// AtomicWrite replaces a small mutable entry in one shot. Readers
	// observe either the previous or the new content, never a mix.
	AtomicWrite(ctx context.Context, name string, data []byte) error

	// Delete removes an entry. Deleting a missing entry returns
	// ErrFileNotFound.
	Delete(ctx context.Context, name string) error

	// Exists reports whether an entry is present.
	Exists(ctx context.Context, name string) (bool, error)

	// List returns the names of all entries with the given prefix.
	List(ctx context.Context, prefix string) ([]string, error)

	// Sync makes previously terminated entries durable where the
	// implementation defers that work.
	Sync(ctx context.Context) error

	io.Closer
}
