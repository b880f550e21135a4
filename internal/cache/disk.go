package cache

import (
	"container/list"
	"context"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/semaphore"

	"github.com/hupe1980/lexgo/internal/fs"
)

// DiskConfig configures a disk-backed block cache.
type DiskConfig struct {
	// RootDir holds the cached block files.
	RootDir string

	// MaxSizeBytes bounds the total size of cached files.
	MaxSizeBytes int64

	// MaxConcurrentWrites bounds background spill goroutines.
	// Defaults to 16.
	MaxConcurrentWrites int64

	// FS is the filesystem used for all IO. Defaults to the local
	// filesystem; tests inject faulty filesystems here.
	FS fs.FileSystem
}

// Disk is a block cache backed by files, for working sets that are
// worth keeping across restarts but too large for memory.
//
// Writes are spilled in the background and shed under pressure; only
// the in-memory index is updated synchronously.
type Disk struct {
	fsys    fs.FileSystem
	rootDir string
	maxSize int64

	writeSem *semaphore.Weighted
	wg       sync.WaitGroup

	mu          sync.Mutex
	currentSize int64
	items       map[Key]*list.Element
	evictList   *list.List

	hits   atomic.Int64
	misses atomic.Int64
}

type diskEntry struct {
	key  Key
	size int64
	path string
}

// NewDisk creates a disk cache rooted at cfg.RootDir, rebuilding its
// index from files left by a previous run.
func NewDisk(cfg DiskConfig) (*Disk, error) {
	fsys := cfg.FS
	if fsys == nil {
		fsys = fs.Default
	}

	if err := fsys.MkdirAll(cfg.RootDir, 0o755); err != nil {
		return nil, err
	}

	maxWrites := cfg.MaxConcurrentWrites
	if maxWrites <= 0 {
		maxWrites = 16
	}

	c := &Disk{
		fsys:      fsys,
		rootDir:   cfg.RootDir,
		maxSize:   cfg.MaxSizeBytes,
		writeSem:  semaphore.NewWeighted(maxWrites),
		items:     make(map[Key]*list.Element),
		evictList: list.New(),
	}

	if err := c.rebuildIndex(); err != nil {
		return nil, err
	}

	return c, nil
}

func (c *Disk) rebuildIndex() error {
	entries, err := c.fsys.ReadDir(c.rootDir)
	if err != nil {
		return err
	}

	for _, ent := range entries {
		if ent.IsDir() {
			continue
		}

		key, ok := keyFromFileName(ent.Name())
		if !ok {
			continue
		}

		info, err := ent.Info()
		if err != nil {
			continue
		}

		c.index(key, filepath.Join(c.rootDir, ent.Name()), info.Size())
	}

	return nil
}

// Cached files are named <kind>-<hex path>-<offset>.blk, flat in the
// root directory, so the index can be rebuilt without metadata files.
func fileNameFromKey(key Key) string {
	return fmt.Sprintf("%d-%s-%d.blk", key.Kind, hex.EncodeToString([]byte(key.Path)), key.Offset)
}

func keyFromFileName(name string) (Key, bool) {
	name, ok := strings.CutSuffix(name, ".blk")
	if !ok {
		return Key{}, false
	}

	parts := strings.SplitN(name, "-", 3)
	if len(parts) != 3 {
		return Key{}, false
	}

	var kind uint8
	if _, err := fmt.Sscanf(parts[0], "%d", &kind); err != nil {
		return Key{}, false
	}

	path, err := hex.DecodeString(parts[1])
	if err != nil {
		return Key{}, false
	}

	var offset uint64
	if _, err := fmt.Sscanf(parts[2], "%d", &offset); err != nil {
		return Key{}, false
	}

	return Key{Kind: Kind(kind), Path: string(path), Offset: offset}, true
}

// Get reads a cached block from disk.
func (c *Disk) Get(_ context.Context, key Key) ([]byte, bool) {
	c.mu.Lock()

	elem, ok := c.items[key]
	if !ok {
		c.mu.Unlock()
		c.misses.Add(1)

		return nil, false
	}

	c.evictList.MoveToFront(elem)
	path := elem.Value.(*diskEntry).path
	c.mu.Unlock()

	data, err := fs.ReadFile(c.fsys, path)
	if err != nil {
		// The file vanished under us. Drop the stale index entry.
		c.mu.Lock()
		if elem, ok := c.items[key]; ok {
			c.removeLocked(elem)
		}
		c.mu.Unlock()
		c.misses.Add(1)

		return nil, false
	}

	c.hits.Add(1)

	return data, true
}

// Set spills a block to disk in the background. Blocks are dropped
// when the write slots are saturated.
func (c *Disk) Set(_ context.Context, key Key, b []byte) {
	if int64(len(b)) > c.maxSize {
		return
	}

	if !c.writeSem.TryAcquire(1) {
		return
	}

	data := append([]byte(nil), b...)
	c.wg.Add(1)

	go func() {
		defer c.wg.Done()
		defer c.writeSem.Release(1)

		path := filepath.Join(c.rootDir, fileNameFromKey(key))
		if err := writeFileAtomic(c.fsys, path, data); err != nil {
			return
		}

		c.mu.Lock()
		c.index(key, path, int64(len(data)))
		c.evictLocked()
		c.mu.Unlock()
	}()
}

// index records a cached file, replacing any previous entry for key.
// Callers hold the mutex except during construction.
func (c *Disk) index(key Key, path string, size int64) {
	if elem, ok := c.items[key]; ok {
		c.currentSize += size - elem.Value.(*diskEntry).size
		elem.Value.(*diskEntry).size = size
		c.evictList.MoveToFront(elem)

		return
	}

	c.items[key] = c.evictList.PushFront(&diskEntry{key: key, size: size, path: path})
	c.currentSize += size
}

// Invalidate removes all entries matching the predicate, deleting
// their files.
func (c *Disk) Invalidate(predicate func(key Key) bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var doomed []*list.Element

	for key, elem := range c.items {
		if predicate(key) {
			doomed = append(doomed, elem)
		}
	}

	for _, elem := range doomed {
		c.removeLocked(elem)
	}
}

// Stats returns the hit and miss counters.
func (c *Disk) Stats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}

// Size returns the total size of indexed files. Spills still in
// flight do not count yet.
func (c *Disk) Size() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.currentSize
}

// Close waits for in-flight spills.
func (c *Disk) Close() error {
	c.wg.Wait()
	return nil
}

func (c *Disk) evictLocked() {
	for c.currentSize > c.maxSize {
		tail := c.evictList.Back()
		if tail == nil {
			return
		}

		c.removeLocked(tail)
	}
}

func (c *Disk) removeLocked(elem *list.Element) {
	c.evictList.Remove(elem)

	entry := elem.Value.(*diskEntry)
	delete(c.items, entry.key)
	c.currentSize -= entry.size

	_ = c.fsys.Remove(entry.path)
}

// writeFileAtomic publishes a cache file with a rename, without the
// fsync of fs.WriteAtomic. A cache entry lost in a crash is re-fetched,
// so durability is not worth the flush.
func writeFileAtomic(fsys fs.FileSystem, path string, data []byte) error {
	tmpPath := path + ".tmp"

	f, err := fsys.OpenFile(tmpPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}

	if _, err := f.Write(data); err != nil {
		f.Close()
		_ = fsys.Remove(tmpPath)

		return err
	}

	if err := f.Close(); err != nil {
		_ = fsys.Remove(tmpPath)
		return err
	}

	if err := fsys.Rename(tmpPath, path); err != nil {
		_ = fsys.Remove(tmpPath)
		return err
	}

	return nil
}
