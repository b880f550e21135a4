// Package hash bundles the checksums used for on-disk integrity.
//
// # Choice of checksum
//
// Small metadata files (the manifest frame) carry a CRC32-Castagnoli
// checksum. It is 4 bytes on the wire and hardware accelerated on
// x86 (SSE 4.2) and ARM.
//
// Block payloads carry a 64-bit xxh3 digest. Blocks are read far more
// often than metadata, and xxh3 verifies multi-megabyte payloads at
// memory speed.
//
// # Usage
//
// One-shot:
//
//	sum := hash.CRC32C(frame)
//	digest := hash.XXH3(block)
//
// Streaming:
//
//	h := hash.NewCRC32C()
//	h.Write(chunk1)
//	h.Write(chunk2)
//	sum := h.Sum32()
package hash
