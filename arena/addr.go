package arena

import "math"

const (
	pageAddrBits = 20

	// PageSize is the capacity of a standard arena page (1 MiB).
	PageSize = 1 << pageAddrBits

	pageAddrMask = PageSize - 1

	// MaxPages bounds the number of pages an arena can hold. Together
	// with PageSize it exhausts the 32-bit address space of Addr.
	MaxPages = 1 << (32 - pageAddrBits)
)

// Addr is a compact 32-bit handle into a MemoryArena. The upper 12 bits
// select the page, the lower 20 bits the offset within the page.
//
// An Addr is only meaningful for the arena that issued it.
type Addr uint32

// NullAddr is a sentinel address that no allocation ever returns. It is
// the zero-value stand-in for "no address" in arena-backed structures.
const NullAddr Addr = math.MaxUint32

func newAddr(pageID uint32, local int) Addr {
	return Addr(pageID<<pageAddrBits | uint32(local))
}

func (a Addr) pageID() uint32 {
	return uint32(a) >> pageAddrBits
}

func (a Addr) pageLocalAddr() int {
	return int(uint32(a) & pageAddrMask)
}

// Offset returns the address n bytes past a. The addition wraps around
// 32 bits; staying inside the originating allocation is the caller's
// responsibility.
func (a Addr) Offset(n uint32) Addr {
	return Addr(uint32(a) + n)
}

// IsNull reports whether a is the NullAddr sentinel.
func (a Addr) IsNull() bool {
	return a == NullAddr
}
