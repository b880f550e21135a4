package directory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/lexgo/resource"
)

func TestRateLimitedDirectoryPassesDataThrough(t *testing.T) {
	ctx := context.Background()

	rc := resource.NewController(resource.Config{IOLimitBytesPerSec: 1 << 20})
	d := NewRateLimitedDirectory(NewRAMDirectory(), rc)
	defer d.Close()

	w, err := d.OpenWrite(ctx, "seg-1.store")
	require.NoError(t, err)

	_, err = w.Write([]byte("throttled"))
	require.NoError(t, err)
	require.NoError(t, w.Terminate())

	data, err := d.OpenRead(ctx, "seg-1.store")
	require.NoError(t, err)
	assert.Equal(t, "throttled", string(data.Bytes()))

	require.NoError(t, d.AtomicWrite(ctx, "meta.json", []byte("{}")))

	meta, err := d.AtomicRead(ctx, "meta.json")
	require.NoError(t, err)
	assert.Equal(t, "{}", string(meta))
}

func TestRateLimitedDirectoryNilControllerIsUnlimited(t *testing.T) {
	ctx := context.Background()

	d := NewRateLimitedDirectory(NewRAMDirectory(), nil)
	defer d.Close()

	w, err := d.OpenWrite(ctx, "seg-1.store")
	require.NoError(t, err)

	_, err = w.Write(make([]byte, 1<<20))
	require.NoError(t, err)
	require.NoError(t, w.Terminate())
}

func TestRateLimitedDirectoryHonorsCancellation(t *testing.T) {
	rc := resource.NewController(resource.Config{IOLimitBytesPerSec: 1})
	d := NewRateLimitedDirectory(NewRAMDirectory(), rc)
	defer d.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := d.AtomicWrite(ctx, "meta.json", make([]byte, 4096))
	assert.Error(t, err)
}
