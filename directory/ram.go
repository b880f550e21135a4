package directory

import (
	"bytes"
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
)

// RAMDirectory keeps every entry in memory. It backs tests and
// short-lived indexing pipelines whose output is shipped elsewhere.
//
// Reads are zero-copy: entries are immutable once terminated, so the
// returned FileSlice views the stored bytes directly.
type RAMDirectory struct {
	mu      sync.RWMutex
	files   map[string][]byte
	pending map[string]struct{}
}

var _ Directory = (*RAMDirectory)(nil)

// NewRAMDirectory creates an empty in-memory directory.
func NewRAMDirectory() *RAMDirectory {
	return &RAMDirectory{
		files:   make(map[string][]byte),
		pending: make(map[string]struct{}),
	}
}

// OpenRead returns a view of the named entry.
func (d *RAMDirectory) OpenRead(_ context.Context, name string) (FileSlice, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	data, ok := d.files[name]
	if !ok {
		return FileSlice{}, fmt.Errorf("%w: %s", ErrFileNotFound, name)
	}

	return NewFileSlice(data), nil
}

// OpenWrite starts a new entry. The entry becomes visible once the
// returned writer is terminated.
func (d *RAMDirectory) OpenWrite(_ context.Context, name string) (TerminatingWriter, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.files[name]; ok {
		return nil, fmt.Errorf("%w: %s", ErrFileExists, name)
	}
	if _, ok := d.pending[name]; ok {
		return nil, fmt.Errorf("%w: %s", ErrFileExists, name)
	}

	d.pending[name] = struct{}{}

	return &ramWriter{dir: d, name: name}, nil
}

// AtomicRead returns a copy of the named entry.
func (d *RAMDirectory) AtomicRead(_ context.Context, name string) ([]byte, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	data, ok := d.files[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrFileNotFound, name)
	}

	copied := make([]byte, len(data))
	copy(copied, data)

	return copied, nil
}

// AtomicWrite replaces the named entry in one shot.
func (d *RAMDirectory) AtomicWrite(_ context.Context, name string, data []byte) error {
	copied := make([]byte, len(data))
	copy(copied, data)

	d.mu.Lock()
	defer d.mu.Unlock()

	d.files[name] = copied

	return nil
}

// Delete removes an entry. Existing FileSlice views stay readable.
func (d *RAMDirectory) Delete(_ context.Context, name string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.files[name]; !ok {
		return fmt.Errorf("%w: %s", ErrFileNotFound, name)
	}

	delete(d.files, name)

	return nil
}

// Exists reports whether an entry is present.
func (d *RAMDirectory) Exists(_ context.Context, name string) (bool, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	_, ok := d.files[name]

	return ok, nil
}

// List returns the sorted names of all entries with the given prefix.
func (d *RAMDirectory) List(_ context.Context, prefix string) ([]string, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	var names []string
	for name := range d.files {
		if strings.HasPrefix(name, prefix) {
			names = append(names, name)
		}
	}

	sort.Strings(names)

	return names, nil
}

// Sync is a no-op for memory-backed entries.
func (d *RAMDirectory) Sync(_ context.Context) error {
	return nil
}

// Close releases the directory. Outstanding views keep their backing
// memory alive through the garbage collector.
func (d *RAMDirectory) Close() error {
	return nil
}

// TotalSize returns the summed size of all entries in bytes.
func (d *RAMDirectory) TotalSize() int64 {
	d.mu.RLock()
	defer d.mu.RUnlock()

	var total int64
	for _, data := range d.files {
		total += int64(len(data))
	}

	return total
}

type ramWriter struct {
	dir        *RAMDirectory
	name       string
	buf        bytes.Buffer
	terminated bool
}

func (w *ramWriter) Write(p []byte) (int, error) {
	if w.terminated {
		return 0, fmt.Errorf("directory: write to terminated entry %s", w.name)
	}

	return w.buf.Write(p)
}

func (w *ramWriter) Terminate() error {
	if w.terminated {
		return nil
	}
	w.terminated = true

	w.dir.mu.Lock()
	defer w.dir.mu.Unlock()

	delete(w.dir.pending, w.name)

	data := make([]byte, w.buf.Len())
	copy(data, w.buf.Bytes())
	w.dir.files[w.name] = data

	return nil
}
