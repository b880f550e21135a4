package integration_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hupe1980/lexgo"
	"github.com/hupe1980/lexgo/document"
	"github.com/hupe1980/lexgo/testutil"
)

func TestE2E_Restart(t *testing.T) {
	dir := t.TempDir()
	docs := testutil.Documents(testutil.NewRNG(42), 50)

	// 1. Open and build a segment
	store, err := lexgo.Open(context.Background(), lexgo.Local(dir))
	require.NoError(t, err)

	writer, err := store.NewSegment(context.Background())
	require.NoError(t, err)

	stream := writer.ForField(testutil.PayloadField)
	for _, doc := range docs {
		require.NoError(t, doc.Serialize(stream))
	}
	writer.SetNumDocs(uint32(len(docs)))

	_, err = writer.Commit(context.Background())
	require.NoError(t, err)

	err = store.Close()
	require.NoError(t, err)

	// 2. Reopen and verify
	store, err = lexgo.Open(context.Background(), lexgo.Local(dir))
	require.NoError(t, err)
	defer store.Close()

	segment, err := store.OpenSegment(context.Background(), 0)
	require.NoError(t, err)
	require.Equal(t, uint32(len(docs)), segment.NumDocs())

	data, ok, err := segment.FieldBytes(testutil.PayloadField)
	require.NoError(t, err)
	require.True(t, ok)

	r := bytes.NewReader(data)
	for i, want := range docs {
		var got document.Document

		require.NoError(t, got.Deserialize(r), "document %d", i)
		require.Equal(t, want.FieldValues(), got.FieldValues(), "document %d", i)
	}
	require.Zero(t, r.Len())
}

func TestE2E_MultipleSegments(t *testing.T) {
	dir := t.TempDir()
	rng := testutil.NewRNG(7)

	// 1. Three separate sessions, one segment each
	for round := 0; round < 3; round++ {
		store, err := lexgo.Open(context.Background(), lexgo.Local(dir))
		require.NoError(t, err)

		writer, err := store.NewSegment(context.Background())
		require.NoError(t, err)
		require.Equal(t, uint64(round), writer.Ord())

		_, err = writer.ForField(testutil.BodyField).Write(rng.Text(32 << 10))
		require.NoError(t, err)
		writer.SetNumDocs(uint32(round + 1))

		_, err = writer.Commit(context.Background())
		require.NoError(t, err)

		require.NoError(t, store.Close())
	}

	// 2. Final session sees all three in order
	store, err := lexgo.Open(context.Background(), lexgo.Local(dir))
	require.NoError(t, err)
	defer store.Close()

	segments := store.Segments()
	require.Len(t, segments, 3)

	for i, info := range segments {
		require.Equal(t, uint64(i), info.Ord)
		require.Equal(t, uint32(i+1), info.NumDocs)

		segment, err := store.OpenSegment(context.Background(), info.Ord)
		require.NoError(t, err)

		data, ok, err := segment.FieldBytes(testutil.BodyField)
		require.NoError(t, err)
		require.True(t, ok)
		require.Len(t, data, 32<<10)
	}
}

func TestE2E_LargeFieldStreams(t *testing.T) {
	dir := t.TempDir()
	rng := testutil.NewRNG(99)

	// Payloads spanning many blocks, mixing compressible and
	// incompressible data.
	text := rng.Text(1 << 20)
	noise := rng.Bytes(512 << 10)

	// 1. Write
	store, err := lexgo.Open(context.Background(), lexgo.Local(dir))
	require.NoError(t, err)

	writer, err := store.NewSegment(context.Background())
	require.NoError(t, err)

	_, err = writer.ForField(testutil.BodyField).Write(text)
	require.NoError(t, err)
	_, err = writer.ForField(testutil.PayloadField).Write(noise)
	require.NoError(t, err)

	_, err = writer.Commit(context.Background())
	require.NoError(t, err)
	require.NoError(t, store.Close())

	// 2. Read back after restart
	store, err = lexgo.Open(context.Background(), lexgo.Local(dir))
	require.NoError(t, err)
	defer store.Close()

	segment, err := store.OpenSegment(context.Background(), 0)
	require.NoError(t, err)

	data, ok, err := segment.FieldBytes(testutil.BodyField)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, text, data)

	data, ok, err = segment.FieldBytes(testutil.PayloadField)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, noise, data)

	// The text stream must have compressed; the store file has to be
	// well under the raw payload size.
	usage := segment.SpaceUsage()
	require.Less(t, usage[testutil.BodyField], uint64(len(text)))
}
