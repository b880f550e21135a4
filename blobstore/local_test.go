package blobstore

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/hupe1980/lexgo/internal/fs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStore_Lifecycle(t *testing.T) {
	tmpDir := t.TempDir()

	store, err := NewLocalStore(tmpDir)
	require.NoError(t, err)

	ctx := context.Background()

	// 1. Create a blob
	blobName := "data-001.bin"
	data := []byte("hello world, this is a test blob for lexgo")

	w, err := store.Create(ctx, blobName)
	require.NoError(t, err)

	n, err := w.Write(data)
	require.NoError(t, err)
	require.Equal(t, len(data), n)

	require.NoError(t, w.Close())

	// The temp file is gone and the final file exists
	_, err = os.Stat(filepath.Join(tmpDir, blobName+".tmp"))
	require.True(t, os.IsNotExist(err))

	_, err = os.Stat(filepath.Join(tmpDir, blobName))
	require.NoError(t, err)

	// 2. Open and ReadAt
	blob, err := store.Open(ctx, blobName)
	require.NoError(t, err)
	defer blob.Close()

	require.Equal(t, int64(len(data)), blob.Size())

	buf := make([]byte, 5)
	n, err = blob.ReadAt(ctx, buf, 6) // "world"
	require.NoError(t, err)
	require.Equal(t, 5, n)
	require.Equal(t, "world", string(buf))

	// 3. ReadRange
	r, err := blob.ReadRange(ctx, 13, 4) // "this"
	require.NoError(t, err)

	content, err := io.ReadAll(r)
	require.NoError(t, err)
	require.NoError(t, r.Close())
	require.Equal(t, "this", string(content))

	// 4. List
	require.NoError(t, store.Put(ctx, "data-002.bin", []byte("x")))

	names, err := store.List(ctx, "")
	require.NoError(t, err)
	require.Equal(t, []string{"data-001.bin", "data-002.bin"}, names)

	// 5. Delete
	require.NoError(t, store.Delete(ctx, blobName))
	require.NoError(t, store.Delete(ctx, blobName))

	_, err = store.Open(ctx, blobName)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestLocalStore_ReadRangeBoundaries(t *testing.T) {
	store, err := NewLocalStore(t.TempDir())
	require.NoError(t, err)

	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "boundary.bin", []byte("0123456789")))

	blob, err := store.Open(ctx, "boundary.bin")
	require.NoError(t, err)
	defer blob.Close()

	// Full range
	r, err := blob.ReadRange(ctx, 0, 10)
	require.NoError(t, err)

	content, err := io.ReadAll(r)
	require.NoError(t, err)
	require.Equal(t, "0123456789", string(content))

	// Past the end is truncated
	r, err = blob.ReadRange(ctx, 8, 5)
	require.NoError(t, err)

	content, err = io.ReadAll(r)
	require.NoError(t, err)
	require.Equal(t, "89", string(content))

	// Offset past EOF yields an empty reader
	r, err = blob.ReadRange(ctx, 20, 5)
	require.NoError(t, err)

	content, err = io.ReadAll(r)
	require.NoError(t, err)
	require.Empty(t, content)
}

func TestLocalStore_ListSkipsTempAndDirs(t *testing.T) {
	tmpDir := t.TempDir()

	store, err := NewLocalStore(tmpDir)
	require.NoError(t, err)

	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "real.bin", []byte("x")))
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "partial.bin.tmp"), []byte("y"), 0o644))
	require.NoError(t, os.Mkdir(filepath.Join(tmpDir, "subdir"), 0o755))

	names, err := store.List(ctx, "")
	require.NoError(t, err)
	require.Equal(t, []string{"real.bin"}, names)
}

func TestLocalStore_MappableReadAll(t *testing.T) {
	store, err := NewLocalStore(t.TempDir())
	require.NoError(t, err)

	ctx := context.Background()
	payload := []byte("mapped payload")

	require.NoError(t, store.Put(ctx, "m.bin", payload))

	blob, err := store.Open(ctx, "m.bin")
	require.NoError(t, err)
	defer blob.Close()

	_, ok := blob.(Mappable)
	require.True(t, ok)

	data, err := ReadAll(ctx, blob)
	require.NoError(t, err)
	assert.Equal(t, payload, data)
}

func TestLocalStore_CreateWriteFault(t *testing.T) {
	tmpDir := t.TempDir()

	faulty := fs.NewFaultyFS(nil)
	faulty.AddRule(".tmp", fs.Fault{FailAfterBytes: 0})

	store, err := NewLocalStore(tmpDir, WithLocalFileSystem(faulty))
	require.NoError(t, err)

	ctx := context.Background()

	w, err := store.Create(ctx, "doomed.bin")
	require.NoError(t, err)

	// The write is buffered; the fault fires when Close flushes.
	_, err = w.Write([]byte("payload"))
	require.NoError(t, err)

	err = w.Close()
	require.ErrorIs(t, err, fs.ErrInjected)

	// Neither the temp file nor the final file survives.
	_, err = os.Stat(filepath.Join(tmpDir, "doomed.bin.tmp"))
	assert.True(t, os.IsNotExist(err))

	_, err = store.Open(ctx, "doomed.bin")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLocalStore_CreateSyncFault(t *testing.T) {
	faulty := fs.NewFaultyFS(nil)
	faulty.AddRule("synced.bin.tmp", fs.Fault{FailAfterBytes: -1, FailOnSync: true})

	store, err := NewLocalStore(t.TempDir(), WithLocalFileSystem(faulty))
	require.NoError(t, err)

	ctx := context.Background()

	w, err := store.Create(ctx, "synced.bin")
	require.NoError(t, err)

	_, err = w.Write([]byte("payload"))
	require.NoError(t, err)

	require.ErrorIs(t, w.Close(), fs.ErrInjected)

	_, err = store.Open(ctx, "synced.bin")
	require.ErrorIs(t, err, ErrNotFound)
}
