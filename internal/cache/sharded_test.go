package cache

import (
	"context"
	"fmt"
	"sync"
	"testing"
)

func TestShardedSetGet(t *testing.T) {
	ctx := context.Background()
	c := NewSharded(1<<20, nil)
	defer c.Close()

	for i := 0; i < 500; i++ {
		c.Set(ctx, blobKey("seg", uint64(i)), []byte(fmt.Sprintf("block %d", i)))
	}

	for i := 0; i < 500; i++ {
		got, ok := c.Get(ctx, blobKey("seg", uint64(i)))
		if !ok {
			t.Fatalf("block %d missing", i)
		}
		if string(got) != fmt.Sprintf("block %d", i) {
			t.Fatalf("block %d holds %q", i, got)
		}
	}

	hits, misses := c.Stats()
	if hits != 500 || misses != 0 {
		t.Fatalf("stats = %d/%d, want 500/0", hits, misses)
	}
}

func TestShardedInvalidate(t *testing.T) {
	ctx := context.Background()
	c := NewSharded(1<<20, nil)
	defer c.Close()

	for i := 0; i < 100; i++ {
		c.Set(ctx, blobKey("doomed", uint64(i)), []byte("x"))
		c.Set(ctx, blobKey("kept", uint64(i)), []byte("y"))
	}

	c.Invalidate(func(key Key) bool { return key.Path == "doomed" })

	for i := 0; i < 100; i++ {
		if _, ok := c.Get(ctx, blobKey("doomed", uint64(i))); ok {
			t.Fatalf("doomed block %d survived", i)
		}
		if _, ok := c.Get(ctx, blobKey("kept", uint64(i))); !ok {
			t.Fatalf("kept block %d gone", i)
		}
	}
}

func TestShardedConcurrentAccess(t *testing.T) {
	ctx := context.Background()
	c := NewSharded(1<<20, nil)
	defer c.Close()

	var wg sync.WaitGroup

	for g := 0; g < 8; g++ {
		wg.Add(1)

		go func(g int) {
			defer wg.Done()

			for i := 0; i < 200; i++ {
				key := blobKey(fmt.Sprintf("seg-%d", g), uint64(i))
				c.Set(ctx, key, []byte{byte(g), byte(i)})
				c.Get(ctx, key)
			}
		}(g)
	}

	wg.Wait()

	if c.Size() == 0 {
		t.Fatal("cache empty after concurrent writes")
	}
}
