package benchmark_test

import (
	"context"
	"testing"

	"github.com/hupe1980/lexgo"
	"github.com/hupe1980/lexgo/schema"
	"github.com/hupe1980/lexgo/testutil"
)

// Shared write payloads. Text compresses well, noise does not.
var (
	text16K  = testutil.NewRNG(7).Text(16 << 10)
	noise16K = testutil.NewRNG(7).Bytes(16 << 10)
)

// buildSegment commits a single-field segment and reopens it for reading.
func buildSegment(b *testing.B, store *lexgo.Store, field schema.Field, payload []byte) *lexgo.Segment {
	b.Helper()

	ctx := context.Background()

	writer, err := store.NewSegment(ctx)
	if err != nil {
		b.Fatal(err)
	}

	if _, err := writer.ForField(field).Write(payload); err != nil {
		b.Fatal(err)
	}

	info, err := writer.Commit(ctx)
	if err != nil {
		b.Fatal(err)
	}

	segment, err := store.OpenSegment(ctx, info.Ord)
	if err != nil {
		b.Fatal(err)
	}

	return segment
}
