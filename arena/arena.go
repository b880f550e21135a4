// Package arena implements a page-based bump allocator addressed by
// compact 32-bit handles.
//
// The arena hands out regions of a growing set of 1 MiB pages and never
// frees individual allocations. Releasing the memory means dropping the
// whole arena. This suits write-side indexing structures that are built
// once, read heavily, and discarded together.
//
// # Addressing
//
// Allocations are identified by [Addr], a packed page-id/offset pair,
// rather than by Go pointers. A 32-bit handle halves the footprint of
// pointer-heavy structures such as hash table buckets and linked block
// lists, and keeps them trivially relocatable when the arena is written
// out. [NullAddr] serves as the nil of this address space.
//
// # Concurrency Model
//
// A MemoryArena is not safe for concurrent use. It is designed for a
// single writer goroutine; wrap it externally if sharing is required.
package arena

import (
	"fmt"
	"unsafe"
)

type page struct {
	id   uint32
	len  int
	data []byte
}

func newPage(id uint32, capacity int) *page {
	if id >= MaxPages {
		panic(fmt.Sprintf("arena: page limit %d exceeded, address space is exhausted", MaxPages))
	}

	return &page{
		id:   id,
		data: make([]byte, capacity),
	}
}

func (p *page) available(n int) bool {
	return p.len+n <= len(p.data)
}

func (p *page) allocate(n int) Addr {
	addr := newAddr(p.id, p.len)
	p.len += n

	return addr
}

// MemoryArena is a bump allocator over 1 MiB pages.
type MemoryArena struct {
	pages []*page
}

// New creates an empty arena. The first page is allocated eagerly, so
// the zero allocation already costs PageSize bytes of memory.
func New() *MemoryArena {
	a := &MemoryArena{}
	a.addPage(PageSize)

	return a
}

func (a *MemoryArena) addPage(capacity int) *page {
	p := newPage(uint32(len(a.pages)), capacity)
	a.pages = append(a.pages, p)

	return p
}

// Allocate reserves n contiguous bytes and returns their address. The
// region never straddles a page boundary: if n does not fit into the
// remainder of the current page, a fresh page is started. Requests
// larger than PageSize are served by a dedicated page sized to the
// request.
//
// Allocate panics when n is negative or when the page limit is reached.
func (a *MemoryArena) Allocate(n int) Addr {
	if n < 0 {
		panic(fmt.Sprintf("arena: negative allocation size %d", n))
	}

	last := a.pages[len(a.pages)-1]
	if last.available(n) {
		return last.allocate(n)
	}

	capacity := PageSize
	if n > capacity {
		capacity = n
	}

	return a.addPage(capacity).allocate(n)
}

// Slice returns the n bytes starting at addr. The returned slice aliases
// arena memory and stays valid for the lifetime of the arena.
func (a *MemoryArena) Slice(addr Addr, n int) []byte {
	start := addr.pageLocalAddr()

	return a.pages[addr.pageID()].data[start : start+n]
}

// SliceFrom returns the bytes from addr to the end of its page,
// including any not yet allocated tail.
func (a *MemoryArena) SliceFrom(addr Addr) []byte {
	return a.pages[addr.pageID()].data[addr.pageLocalAddr():]
}

// Len returns the number of bytes handed out so far, counting the
// unusable tail of every exhausted page.
func (a *MemoryArena) Len() int {
	total := 0
	for _, p := range a.pages[:len(a.pages)-1] {
		total += len(p.data)
	}

	return total + a.pages[len(a.pages)-1].len
}

// IsEmpty reports whether nothing has been allocated yet.
func (a *MemoryArena) IsEmpty() bool {
	return a.Len() == 0
}

// MemUsage returns the total capacity of all pages in bytes.
func (a *MemoryArena) MemUsage() int {
	total := 0
	for _, p := range a.pages {
		total += len(p.data)
	}

	return total
}

// NumPages returns the number of pages backing the arena.
func (a *MemoryArena) NumPages() int {
	return len(a.pages)
}

// Store copies the in-memory representation of v into dst, which must be
// at least unsafe.Sizeof(v) bytes long. The destination does not need to
// be aligned for T.
func Store[T any](dst []byte, v T) {
	src := unsafe.Slice((*byte)(unsafe.Pointer(&v)), unsafe.Sizeof(v)) //nolint:gosec // byte view of v for unaligned copy
	copy(dst, src)
}

// Load reads a value of type T from the beginning of data. It is the
// inverse of [Store] and likewise tolerates unaligned input.
func Load[T any](data []byte) T {
	var v T

	dst := unsafe.Slice((*byte)(unsafe.Pointer(&v)), unsafe.Sizeof(v)) //nolint:gosec // byte view of v for unaligned copy
	copy(dst, data[:len(dst)])

	return v
}

// Write stores v at addr. The region must have been allocated with at
// least unsafe.Sizeof(v) bytes.
func Write[T any](a *MemoryArena, addr Addr, v T) {
	Store(a.Slice(addr, int(unsafe.Sizeof(v))), v)
}

// Read loads the value of type T stored at addr.
func Read[T any](a *MemoryArena, addr Addr) T {
	var v T

	return Load[T](a.Slice(addr, int(unsafe.Sizeof(v))))
}
