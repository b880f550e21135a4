package fs

import (
	"io"
	"os"
	"path/filepath"
)

// WriteAtomic replaces the file at path with data. It writes to a
// temporary sibling, fsyncs it, renames it over the target and fsyncs
// the parent directory, so readers observe either the old or the new
// content even across a crash.
func WriteAtomic(fsys FileSystem, path string, data []byte, perm os.FileMode) error {
	tmpPath := path + ".tmp"

	f, err := fsys.OpenFile(tmpPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, perm)
	if err != nil {
		return err
	}

	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		_ = fsys.Remove(tmpPath)

		return err
	}

	if err := f.Sync(); err != nil {
		_ = f.Close()
		_ = fsys.Remove(tmpPath)

		return err
	}

	if err := f.Close(); err != nil {
		_ = fsys.Remove(tmpPath)

		return err
	}

	if err := fsys.Rename(tmpPath, path); err != nil {
		_ = fsys.Remove(tmpPath)

		return err
	}

	return SyncDir(fsys, filepath.Dir(path))
}

// ReadFile reads the whole file at path.
func ReadFile(fsys FileSystem, path string) ([]byte, error) {
	f, err := fsys.OpenFile(path, os.O_RDONLY, 0)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return io.ReadAll(f)
}

// SyncDir fsyncs a directory so a preceding rename or create in it
// survives a crash.
func SyncDir(fsys FileSystem, dir string) error {
	f, err := fsys.OpenFile(dir, os.O_RDONLY, 0)
	if err != nil {
		return err
	}
	defer f.Close()

	return f.Sync()
}
