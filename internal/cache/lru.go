package cache

import (
	"container/list"
	"context"
	"sync"
	"sync/atomic"

	"github.com/hupe1980/lexgo/resource"
)

// LRU is a byte-bounded LRU block cache.
//
// When a resource controller is attached, every cached byte is also
// charged against the global memory budget. A Set that the budget
// rejects is silently dropped; caches shed load, they never block.
type LRU struct {
	mu        sync.Mutex
	capacity  int64
	size      int64
	items     map[Key]*list.Element
	evictList *list.List
	rc        *resource.Controller

	hits   atomic.Int64
	misses atomic.Int64
}

type lruEntry struct {
	key   Key
	value []byte
}

// NewLRU creates an LRU cache holding at most capacity bytes.
func NewLRU(capacity int64, rc *resource.Controller) *LRU {
	return &LRU{
		capacity:  capacity,
		items:     make(map[Key]*list.Element),
		evictList: list.New(),
		rc:        rc,
	}
}

// Get returns a cached block.
func (c *LRU) Get(_ context.Context, key Key) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.items[key]; ok {
		c.hits.Add(1)
		c.evictList.MoveToFront(elem)

		return elem.Value.(*lruEntry).value, true
	}

	c.misses.Add(1)

	return nil, false
}

// Set caches a block, evicting from the cold end to make room.
func (c *LRU) Set(_ context.Context, key Key, b []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.items[key]; ok {
		c.replace(elem, b)
		return
	}

	itemSize := int64(len(b))
	if itemSize > c.capacity {
		return
	}

	// Evict first so the freed budget is available before acquiring.
	for c.size+itemSize > c.capacity {
		tail := c.evictList.Back()
		if tail == nil {
			break
		}

		c.remove(tail)
	}

	if !c.rc.TryAcquireMemory(itemSize) {
		return
	}

	c.items[key] = c.evictList.PushFront(&lruEntry{key: key, value: b})
	c.size += itemSize
}

func (c *LRU) replace(elem *list.Element, b []byte) {
	c.evictList.MoveToFront(elem)

	entry := elem.Value.(*lruEntry)
	oldSize := int64(len(entry.value))
	newSize := int64(len(b))

	if newSize > oldSize {
		if !c.rc.TryAcquireMemory(newSize - oldSize) {
			return
		}
	} else if newSize < oldSize {
		c.rc.ReleaseMemory(oldSize - newSize)
	}

	entry.value = b
	c.size += newSize - oldSize

	for c.size > c.capacity {
		tail := c.evictList.Back()
		if tail == nil {
			break
		}

		c.remove(tail)
	}
}

// Invalidate removes all entries matching the predicate.
func (c *LRU) Invalidate(predicate func(key Key) bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var doomed []*list.Element

	for key, elem := range c.items {
		if predicate(key) {
			doomed = append(doomed, elem)
		}
	}

	for _, elem := range doomed {
		c.remove(elem)
	}
}

// Stats returns the hit and miss counters.
func (c *LRU) Stats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}

// Size returns the cached bytes.
func (c *LRU) Size() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.size
}

// Close releases the memory charged to the resource controller.
func (c *LRU) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for c.evictList.Len() > 0 {
		c.remove(c.evictList.Back())
	}

	return nil
}

func (c *LRU) remove(elem *list.Element) {
	c.evictList.Remove(elem)

	entry := elem.Value.(*lruEntry)
	delete(c.items, entry.key)

	itemSize := int64(len(entry.value))
	c.size -= itemSize
	c.rc.ReleaseMemory(itemSize)
}
