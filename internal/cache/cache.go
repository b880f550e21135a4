// Package cache provides byte-oriented caches for immutable blocks
// fetched from slow backends.
//
// Keys identify a block by source name and block index. Cached slices
// are immutable; neither the cache nor its callers may write to them.
package cache

import "context"

// Kind separates key spaces sharing one cache.
type Kind uint8

const (
	KindUnknown Kind = iota
	// KindBlob keys blocks of blob store reads.
	KindBlob
)

// Key identifies one cached block. It must be stable across processes
// so a disk cache can survive restarts.
type Key struct {
	Kind Kind

	// Path names the source, usually the blob name.
	Path string

	// Offset is the block index within the source.
	Offset uint64
}

// BlockCache is a cache for immutable blocks.
//
// Implementations must be safe for concurrent use.
type BlockCache interface {
	// Get returns a cached block.
	Get(ctx context.Context, key Key) ([]byte, bool)

	// Set caches a block. The cache may retain b, so the caller must
	// not modify it afterwards.
	Set(ctx context.Context, key Key, b []byte)

	// Invalidate removes all entries matching the predicate.
	Invalidate(predicate func(key Key) bool)

	// Stats returns the hit and miss counters.
	Stats() (hits, misses int64)

	// Close releases background resources.
	Close() error
}
