package cache

import (
	"context"
	"encoding/binary"
	"hash/maphash"
	"sync"

	"github.com/hupe1980/lexgo/resource"
)

const numShards = 64

// Sharded spreads an LRU cache over independently locked shards, so
// concurrent readers rarely contend on one mutex.
type Sharded struct {
	shards [numShards]*LRU
	seed   maphash.Seed
}

// NewSharded creates a sharded LRU cache. The capacity is split evenly
// across the shards.
func NewSharded(capacity int64, rc *resource.Controller) *Sharded {
	shardCapacity := max(capacity/numShards, 1)

	s := &Sharded{seed: maphash.MakeSeed()}
	for i := range s.shards {
		s.shards[i] = NewLRU(shardCapacity, rc)
	}

	return s
}

func (s *Sharded) shard(key Key) *LRU {
	var h maphash.Hash
	h.SetSeed(s.seed)

	_ = h.WriteByte(byte(key.Kind))
	_, _ = h.WriteString(key.Path)

	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], key.Offset)
	_, _ = h.Write(buf[:])

	return s.shards[h.Sum64()%numShards]
}

// Get returns a cached block.
func (s *Sharded) Get(ctx context.Context, key Key) ([]byte, bool) {
	return s.shard(key).Get(ctx, key)
}

// Set caches a block.
func (s *Sharded) Set(ctx context.Context, key Key, b []byte) {
	s.shard(key).Set(ctx, key, b)
}

// Invalidate removes all entries matching the predicate. Every shard
// is scanned.
func (s *Sharded) Invalidate(predicate func(key Key) bool) {
	var wg sync.WaitGroup
	wg.Add(numShards)

	for i := range s.shards {
		go func(shard *LRU) {
			defer wg.Done()
			shard.Invalidate(predicate)
		}(s.shards[i])
	}

	wg.Wait()
}

// Stats returns the hit and miss counters summed over all shards.
func (s *Sharded) Stats() (hits, misses int64) {
	for i := range s.shards {
		h, m := s.shards[i].Stats()
		hits += h
		misses += m
	}

	return hits, misses
}

// Size returns the cached bytes summed over all shards.
func (s *Sharded) Size() int64 {
	var total int64
	for i := range s.shards {
		total += s.shards[i].Size()
	}

	return total
}

// Close closes all shards.
func (s *Sharded) Close() error {
	for i := range s.shards {
		if err := s.shards[i].Close(); err != nil {
			return err
		}
	}

	return nil
}
