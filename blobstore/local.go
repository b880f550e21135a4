package blobstore

import (
	"bufio"
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/hupe1980/lexgo/internal/fs"
	"github.com/hupe1980/lexgo/internal/mmap"
)

// LocalStore is a BlobStore on the local filesystem. Reads are served
// from memory mappings; writes stream through a temp file and are
// published with a rename on Close.
type LocalStore struct {
	root string
	fsys fs.FileSystem
}

// LocalOption configures a LocalStore.
type LocalOption func(*LocalStore)

// WithLocalFileSystem overrides the filesystem used for writes,
// deletes and listings. Reads stay memory mapped and bypass it.
func WithLocalFileSystem(fsys fs.FileSystem) LocalOption {
	return func(s *LocalStore) {
		s.fsys = fsys
	}
}

// NewLocalStore creates a local blob store rooted at root.
func NewLocalStore(root string, opts ...LocalOption) (*LocalStore, error) {
	s := &LocalStore{
		root: root,
		fsys: fs.Default,
	}

	for _, opt := range opts {
		opt(s)
	}

	if err := s.fsys.MkdirAll(root, 0o755); err != nil {
		return nil, err
	}

	return s, nil
}

func (s *LocalStore) path(name string) string {
	return filepath.Join(s.root, name)
}

// Open memory maps the blob.
func (s *LocalStore) Open(_ context.Context, name string) (Blob, error) {
	m, err := mmap.Open(s.path(name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}

		return nil, err
	}

	_ = m.Advise(mmap.AccessRandom)

	return &localBlob{m: m}, nil
}

// Create streams into a temp file, published by rename on Close.
func (s *LocalStore) Create(_ context.Context, name string) (WritableBlob, error) {
	path := s.path(name)
	tmpPath := path + ".tmp"

	f, err := s.fsys.OpenFile(tmpPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, err
	}

	return &localWritableBlob{
		fsys:    s.fsys,
		f:       f,
		w:       bufio.NewWriterSize(f, 64<<10),
		tmpPath: tmpPath,
		path:    path,
	}, nil
}

// Put writes the blob through the atomic tmp+rename+fsync sequence.
func (s *LocalStore) Put(_ context.Context, name string, data []byte) error {
	return fs.WriteAtomic(s.fsys, s.path(name), data, 0o644)
}

// Delete removes the blob file. Missing files are ignored.
func (s *LocalStore) Delete(_ context.Context, name string) error {
	err := s.fsys.Remove(s.path(name))
	if err != nil && !os.IsNotExist(err) {
		return err
	}

	return nil
}

// List returns the sorted names of regular files with the prefix.
// In-flight temp files are not listed.
func (s *LocalStore) List(_ context.Context, prefix string) ([]string, error) {
	entries, err := s.fsys.ReadDir(s.root)
	if err != nil {
		return nil, err
	}

	var names []string

	for _, ent := range entries {
		name := ent.Name()
		if ent.IsDir() || strings.HasSuffix(name, ".tmp") {
			continue
		}

		if strings.HasPrefix(name, prefix) {
			names = append(names, name)
		}
	}

	sort.Strings(names)

	return names, nil
}

type localBlob struct {
	m *mmap.File
}

func (b *localBlob) ReadAt(_ context.Context, p []byte, off int64) (int, error) {
	if off >= int64(len(b.m.Data)) {
		return 0, io.EOF
	}

	n := copy(p, b.m.Data[off:])
	if n < len(p) {
		return n, io.EOF
	}

	return n, nil
}

func (b *localBlob) ReadRange(_ context.Context, off, length int64) (io.ReadCloser, error) {
	if off >= int64(len(b.m.Data)) {
		return io.NopCloser(bytes.NewReader(nil)), nil
	}

	end := min(off+length, int64(len(b.m.Data)))

	return io.NopCloser(bytes.NewReader(b.m.Data[off:end])), nil
}

func (b *localBlob) Size() int64 {
	return int64(len(b.m.Data))
}

func (b *localBlob) Close() error {
	return b.m.Close()
}

func (b *localBlob) Bytes() ([]byte, error) {
	return b.m.Data, nil
}

type localWritableBlob struct {
	fsys    fs.FileSystem
	f       fs.File
	w       *bufio.Writer
	tmpPath string
	path    string
	closed  bool
}

func (b *localWritableBlob) Write(p []byte) (int, error) {
	return b.w.Write(p)
}

func (b *localWritableBlob) Sync() error {
	if err := b.w.Flush(); err != nil {
		return err
	}

	return b.f.Sync()
}

func (b *localWritableBlob) Close() error {
	if b.closed {
		return nil
	}
	b.closed = true

	if err := b.Sync(); err != nil {
		b.f.Close()
		_ = b.fsys.Remove(b.tmpPath)

		return err
	}

	if err := b.f.Close(); err != nil {
		_ = b.fsys.Remove(b.tmpPath)
		return err
	}

	if err := b.fsys.Rename(b.tmpPath, b.path); err != nil {
		_ = b.fsys.Remove(b.tmpPath)
		return err
	}

	return nil
}
