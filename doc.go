// Package lexgo provides the storage substrate of an embedded search
// engine: immutable segment files in a directory, tracked by an
// atomically swapped manifest.
//
// A segment is written once through a [SegmentWriter], which packs all
// per-field byte streams of the segment into a single composite store
// file. Committing a segment makes it durable and publishes it in the
// manifest; readers open committed segments and get zero-copy views of
// their field streams. Segments are never modified after commit.
//
// # Quick Start
//
// Local mode:
//
//	ctx := context.Background()
//	store, _ := lexgo.Open(ctx, lexgo.Local("./data"))
//	defer store.Close()
//
//	w, _ := store.NewSegment(ctx)
//	body := w.ForField(schema.FieldFromID(0))
//	doc.Serialize(body)
//	w.SetNumDocs(1)
//	w.Commit(ctx)
//
//	seg, _ := store.OpenSegment(ctx, w.Ord())
//	raw, ok, _ := seg.FieldBytes(schema.FieldFromID(0))
//
// Cloud mode:
//
//	s3Store := s3.NewStore(client, "my-bucket", "segments/")
//	store, _ := lexgo.Open(ctx, lexgo.Remote(s3Store))
//	store, _ := lexgo.Open(ctx, lexgo.Remote(s3Store), lexgo.WithCacheDir("/fast/nvme"))
//
// # Durability Model
//
// Commits are append-only and atomic. A segment file is fsynced before
// the manifest references it, and the manifest itself is written to a
// fresh checksummed file before the CURRENT pointer flips to it. A
// crash at any point leaves either the previous manifest or the new
// one, never a torn state.
//
// # Field Streams
//
// Field streams are framed into checksummed blocks, optionally
// compressed with lz4 or zstd (see [WithCompression]). Frames are
// self-describing, so readers accept any mix of per-block codecs, and
// a flipped bit anywhere in a stream is reported as corruption rather
// than decoded into garbage.
//
// # Key Packages
//
//   - codec: binary serialization primitives (VInt, fixed-width LE)
//   - arena: page-based allocator behind write-side scratch structures
//   - directory: storage abstraction and the composite file container
//   - blobstore: S3, MinIO and cached remote backends
//   - manifest: versioned commit points with a CURRENT pointer
//   - resource: memory, worker and IO budgets shared across components
package lexgo
