package resource

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestControllerMemoryBudget(t *testing.T) {
	c := NewController(Config{MemoryLimitBytes: 100})

	require.NoError(t, c.AcquireMemory(context.Background(), 60))
	assert.Equal(t, int64(60), c.MemoryUsage())

	assert.False(t, c.TryAcquireMemory(50))
	assert.True(t, c.TryAcquireMemory(40))
	assert.Equal(t, int64(100), c.MemoryUsage())

	c.ReleaseMemory(100)
	assert.Equal(t, int64(0), c.MemoryUsage())
}

func TestControllerMemoryBlocksUntilRelease(t *testing.T) {
	c := NewController(Config{MemoryLimitBytes: 10})

	require.NoError(t, c.AcquireMemory(context.Background(), 10))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := c.AcquireMemory(ctx, 1)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	c.ReleaseMemory(10)
	assert.NoError(t, c.AcquireMemory(context.Background(), 1))
}

func TestControllerUnlimitedMemoryTracksUsage(t *testing.T) {
	c := NewController(Config{})

	require.NoError(t, c.AcquireMemory(context.Background(), 1<<30))
	assert.Equal(t, int64(1<<30), c.MemoryUsage())

	c.ReleaseMemory(1 << 30)
	assert.Equal(t, int64(0), c.MemoryUsage())
}

func TestControllerBackgroundSlots(t *testing.T) {
	c := NewController(Config{MaxBackgroundWorkers: 2})

	require.NoError(t, c.AcquireBackground(context.Background()))
	require.NoError(t, c.AcquireBackground(context.Background()))
	assert.False(t, c.TryAcquireBackground())

	c.ReleaseBackground()
	assert.True(t, c.TryAcquireBackground())
}

func TestControllerNilIsUnlimited(t *testing.T) {
	var c *Controller

	assert.NoError(t, c.AcquireMemory(context.Background(), 1<<40))
	assert.True(t, c.TryAcquireMemory(1<<40))
	c.ReleaseMemory(1 << 40)

	assert.NoError(t, c.AcquireBackground(context.Background()))
	c.ReleaseBackground()

	assert.NoError(t, c.AcquireIO(context.Background(), 1<<30))
	assert.Equal(t, int64(0), c.MemoryUsage())
}

func TestAcquireIOSplitsOversizedRequests(t *testing.T) {
	// Burst equals one second of budget; a request above it must still
	// pass by being split.
	c := NewController(Config{IOLimitBytesPerSec: 1 << 20})

	err := c.AcquireIO(context.Background(), (1<<20)+512)
	assert.NoError(t, err)
}

func TestRateLimitedWriter(t *testing.T) {
	c := NewController(Config{IOLimitBytesPerSec: 1 << 20})

	var buf bytes.Buffer
	w := NewRateLimitedWriter(context.Background(), &buf, c)

	n, err := w.Write([]byte("throttled payload"))
	require.NoError(t, err)
	assert.Equal(t, 17, n)
	assert.Equal(t, "throttled payload", buf.String())
}

func TestRateLimitedWriterCanceledContext(t *testing.T) {
	c := NewController(Config{IOLimitBytesPerSec: 1})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var buf bytes.Buffer
	w := NewRateLimitedWriter(ctx, &buf, c)

	_, err := w.Write(make([]byte, 1024))
	assert.Error(t, err)
	assert.Zero(t, buf.Len())
}

func TestRateLimitedReader(t *testing.T) {
	c := NewController(Config{IOLimitBytesPerSec: 1 << 20})

	r := NewRateLimitedReader(context.Background(), bytes.NewReader([]byte("data")), c)

	buf := make([]byte, 4)
	n, err := r.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, 4, n)
	assert.Equal(t, "data", string(buf))
}
