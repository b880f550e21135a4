package hash

import "github.com/zeebo/xxh3"

// XXH3 computes the 64-bit xxh3 digest of data.
func XXH3(data []byte) uint64 {
	return xxh3.Hash(data)
}

// NewXXH3 returns a streaming 64-bit xxh3 hasher.
func NewXXH3() *xxh3.Hasher {
	return xxh3.New()
}
