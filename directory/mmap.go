package directory

import (
	"bufio"
	"context"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/hupe1980/lexgo/internal/fs"
	"github.com/hupe1980/lexgo/internal/mmap"
)

const writeBufferSize = 64 << 10

// MmapDirectory stores entries as plain files under a root directory
// and memory-maps them for reading. Mappings are cached per entry and
// released when the directory is closed, so FileSlice views stay valid
// for the directory's whole lifetime, even past Delete.
type MmapDirectory struct {
	root string
	fsys fs.FileSystem

	mu       sync.Mutex
	mappings map[string]*mmap.File
	orphans  []*mmap.File
	closed   bool
}

var _ Directory = (*MmapDirectory)(nil)

// MmapOption configures an MmapDirectory.
type MmapOption func(*MmapDirectory)

// WithFileSystem swaps the backing file system, mainly for fault
// injection in tests. Reads are memory-mapped and bypass it.
func WithFileSystem(fsys fs.FileSystem) MmapOption {
	return func(d *MmapDirectory) {
		d.fsys = fsys
	}
}

// OpenMmapDirectory opens, creating it if needed, the directory rooted
// at root.
func OpenMmapDirectory(root string, opts ...MmapOption) (*MmapDirectory, error) {
	d := &MmapDirectory{
		root:     root,
		fsys:     fs.Default,
		mappings: make(map[string]*mmap.File),
	}

	for _, opt := range opts {
		opt(d)
	}

	if err := d.fsys.MkdirAll(root, 0o755); err != nil {
		return nil, err
	}

	return d, nil
}

// Root returns the root path of the directory.
func (d *MmapDirectory) Root() string {
	return d.root
}

// OpenRead memory-maps the named entry.
func (d *MmapDirectory) OpenRead(_ context.Context, name string) (FileSlice, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return FileSlice{}, errors.New("directory: closed")
	}

	if m, ok := d.mappings[name]; ok {
		return NewFileSlice(m.Data), nil
	}

	m, err := mmap.Open(filepath.Join(d.root, name))
	if err != nil {
		return FileSlice{}, err
	}

	// Readers hit the footer first and then jump between blocks.
	_ = m.Advise(mmap.AccessRandom)

	d.mappings[name] = m

	return NewFileSlice(m.Data), nil
}

// OpenWrite creates the named entry. The write path buffers in memory
// and makes the entry durable on Terminate via fsync.
func (d *MmapDirectory) OpenWrite(_ context.Context, name string) (TerminatingWriter, error) {
	f, err := d.fsys.OpenFile(filepath.Join(d.root, name), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return nil, err
	}

	return &fileWriter{f: f, buf: bufio.NewWriterSize(f, writeBufferSize)}, nil
}

// AtomicRead reads the named entry in one shot.
func (d *MmapDirectory) AtomicRead(_ context.Context, name string) ([]byte, error) {
	return fs.ReadFile(d.fsys, filepath.Join(d.root, name))
}

// AtomicWrite replaces the named entry via a temp file and rename.
func (d *MmapDirectory) AtomicWrite(_ context.Context, name string, data []byte) error {
	return fs.WriteAtomic(d.fsys, filepath.Join(d.root, name), data, 0o644)
}

// Delete unlinks the named entry. An existing mapping is kept alive
// until Close so outstanding views remain readable.
func (d *MmapDirectory) Delete(_ context.Context, name string) error {
	d.mu.Lock()
	if m, ok := d.mappings[name]; ok {
		delete(d.mappings, name)
		d.orphans = append(d.orphans, m)
	}
	d.mu.Unlock()

	return d.fsys.Remove(filepath.Join(d.root, name))
}

// Exists reports whether the named entry is present on disk.
func (d *MmapDirectory) Exists(_ context.Context, name string) (bool, error) {
	_, err := d.fsys.Stat(filepath.Join(d.root, name))
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}

		return false, err
	}

	return true, nil
}

// List returns the sorted names of all entries with the given prefix.
// Leftover temp files from interrupted atomic writes are skipped.
func (d *MmapDirectory) List(_ context.Context, prefix string) ([]string, error) {
	entries, err := d.fsys.ReadDir(d.root)
	if err != nil {
		return nil, err
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}

		name := e.Name()
		if strings.HasSuffix(name, ".tmp") {
			continue
		}

		if strings.HasPrefix(name, prefix) {
			names = append(names, name)
		}
	}

	sort.Strings(names)

	return names, nil
}

// Sync fsyncs the root directory so renames and creates survive a
// crash.
func (d *MmapDirectory) Sync(_ context.Context) error {
	return fs.SyncDir(d.fsys, d.root)
}

// Close unmaps all cached entries. Views handed out earlier must not be
// used afterwards.
func (d *MmapDirectory) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return nil
	}
	d.closed = true

	var firstErr error
	for name, m := range d.mappings {
		if err := m.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		delete(d.mappings, name)
	}

	for _, m := range d.orphans {
		if err := m.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	d.orphans = nil

	return firstErr
}

type fileWriter struct {
	f          fs.File
	buf        *bufio.Writer
	terminated bool
}

func (w *fileWriter) Write(p []byte) (int, error) {
	if w.terminated {
		return 0, errors.New("directory: write to terminated entry")
	}

	return w.buf.Write(p)
}

func (w *fileWriter) Terminate() error {
	if w.terminated {
		return nil
	}
	w.terminated = true

	if err := w.buf.Flush(); err != nil {
		_ = w.f.Close()

		return err
	}

	if err := w.f.Sync(); err != nil {
		_ = w.f.Close()

		return err
	}

	return w.f.Close()
}
