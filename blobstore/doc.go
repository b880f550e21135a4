// Package blobstore abstracts over the backends that hold a store's
// immutable files: segments, manifests and everything else a directory
// publishes.
//
// BlobStore is the interface for reading and writing whole blobs.
// Implementations must be safe for concurrent use.
//
// # Built-in Implementations
//
//   - MemoryStore: in-memory, for tests and ephemeral stores
//   - LocalStore: local filesystem with mmap reads
//   - CachingStore: block-level read cache around any other store
//   - s3.Store: Amazon S3 with range reads and multipart uploads
//   - minio.Store: MinIO and other S3-compatible object stores
//
// # Remote Backends
//
// Blobs expose range reads, so remote implementations fetch only the
// bytes a reader touches. Wrap a remote store in a CachingStore to keep
// hot blocks local:
//
//	store := blobstore.NewCachingStore(remote, cache.NewSharded(256<<20, rc), 0)
//
// A blob store can back a directory via directory.OpenBlobDirectory,
// which makes remote segments readable through the same API as local
// ones.
package blobstore
