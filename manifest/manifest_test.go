package manifest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/lexgo/codec"
	"github.com/hupe1980/lexgo/directory"
)

func TestStoreLoadFreshDirectory(t *testing.T) {
	ctx := context.Background()
	store := NewStore(directory.NewRAMDirectory())

	m, err := store.Load(ctx)
	require.NoError(t, err)

	assert.Equal(t, CurrentVersion, m.Version)
	assert.Zero(t, m.ID)
	assert.Empty(t, m.Segments)
}

func TestStoreSaveLoadRoundTrip(t *testing.T) {
	ctx := context.Background()
	dir := directory.NewRAMDirectory()
	store := NewStore(dir)

	m := &Manifest{
		Opstamp:        12,
		NextSegmentOrd: 3,
		Segments: []SegmentInfo{
			{Ord: 0, NumDocs: 100, Files: []string{"seg-000000.store"}},
			{Ord: 2, NumDocs: 7, Files: []string{"seg-000002.store"}},
		},
	}
	require.NoError(t, store.Save(ctx, m))
	assert.Equal(t, uint64(1), m.ID)

	current, err := dir.AtomicRead(ctx, CurrentFileName)
	require.NoError(t, err)
	assert.Equal(t, "MANIFEST-000001", string(current))

	loaded, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, m, loaded)
}

func TestStoreSaveBumpsID(t *testing.T) {
	ctx := context.Background()
	dir := directory.NewRAMDirectory()
	store := NewStore(dir)

	m := &Manifest{}
	require.NoError(t, store.Save(ctx, m))
	require.NoError(t, store.Save(ctx, m))
	assert.Equal(t, uint64(2), m.ID)

	// Older manifests stay behind until pruned.
	names, err := dir.List(ctx, ManifestFilePrefix+"-")
	require.NoError(t, err)
	assert.Equal(t, []string{"MANIFEST-000001", "MANIFEST-000002"}, names)
}

func TestStorePrune(t *testing.T) {
	ctx := context.Background()
	dir := directory.NewRAMDirectory()
	store := NewStore(dir)

	m := &Manifest{}
	for i := 0; i < 3; i++ {
		require.NoError(t, store.Save(ctx, m))
	}

	require.NoError(t, store.Prune(ctx))

	names, err := dir.List(ctx, ManifestFilePrefix+"-")
	require.NoError(t, err)
	assert.Equal(t, []string{"MANIFEST-000003"}, names)

	// The pruned store still loads.
	loaded, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(3), loaded.ID)
}

func TestStorePruneEmptyDirectory(t *testing.T) {
	ctx := context.Background()
	store := NewStore(directory.NewRAMDirectory())
	require.NoError(t, store.Prune(ctx))
}

func TestStoreDetectsCorruption(t *testing.T) {
	ctx := context.Background()
	dir := directory.NewRAMDirectory()
	store := NewStore(dir)

	require.NoError(t, store.Save(ctx, &Manifest{Opstamp: 42}))

	data, err := dir.AtomicRead(ctx, "MANIFEST-000001")
	require.NoError(t, err)

	// Flip one payload byte. The checksum must catch it.
	data[len(data)-8] ^= 0x01
	require.NoError(t, dir.AtomicWrite(ctx, "MANIFEST-000001", data))

	_, err = store.Load(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, codec.ErrCorrupted)
}

func TestStoreRejectsUnknownCodec(t *testing.T) {
	ctx := context.Background()
	dir := directory.NewRAMDirectory()
	store := NewStore(dir)

	require.NoError(t, store.Save(ctx, &Manifest{}))

	data, err := dir.AtomicRead(ctx, "MANIFEST-000001")
	require.NoError(t, err)

	// The default codec name "go-json" is 7 bytes after a 1-byte VInt
	// length. Overwrite it with an equally long unknown name.
	copy(data[1:8], "no-such")
	require.NoError(t, dir.AtomicWrite(ctx, "MANIFEST-000001", data))

	_, err = store.Load(ctx)
	require.Error(t, err)
	assert.ErrorContains(t, err, "unknown manifest codec")
}

func TestStoreWithCodec(t *testing.T) {
	ctx := context.Background()
	dir := directory.NewRAMDirectory()

	writer := NewStore(dir, WithCodec(codec.JSON{}))
	require.NoError(t, writer.Save(ctx, &Manifest{Opstamp: 7}))

	// A store with a different default still decodes it. The frame
	// names its codec.
	reader := NewStore(dir)
	loaded, err := reader.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(7), loaded.Opstamp)
}

func TestStoreRejectsFutureVersion(t *testing.T) {
	ctx := context.Background()
	dir := directory.NewRAMDirectory()

	frame, err := encodeManifest(codec.Default, &Manifest{Version: CurrentVersion + 1})
	require.NoError(t, err)
	require.NoError(t, dir.AtomicWrite(ctx, "MANIFEST-000001", frame))
	require.NoError(t, dir.AtomicWrite(ctx, CurrentFileName, []byte("MANIFEST-000001")))

	_, err = NewStore(dir).Load(ctx)
	require.Error(t, err)
	assert.ErrorContains(t, err, "unsupported manifest version")
}

func TestManifestClone(t *testing.T) {
	m := &Manifest{
		Segments: []SegmentInfo{{Ord: 1, Files: []string{"a"}}},
	}

	clone := m.Clone()
	clone.Segments[0].Files[0] = "b"
	clone.Segments = append(clone.Segments, SegmentInfo{Ord: 2})

	assert.Equal(t, "a", m.Segments[0].Files[0])
	assert.Len(t, m.Segments, 1)
}
