// Package s3 provides S3-backed implementations of blobstore.BlobStore.
//
// Three stores are available:
//
//   - Store targets standard S3 buckets. Reads use ranged GETs so point
//     lookups never download whole segment files, and writes stream
//     through multipart uploads with CRC32C checksums.
//   - ExpressStore targets S3 Express One Zone directory buckets and
//     adds PutIfNotExists on top of conditional writes.
//   - DDBCommitStore pairs a Store with a DynamoDB table that serves as
//     the commit log, giving the CURRENT pointer the atomic
//     compare-and-swap that plain S3 lacks.
//
// # Usage
//
//	cfg, err := config.LoadDefaultConfig(ctx)
//	if err != nil { ... }
//
//	store := s3.NewStore(awss3.NewFromConfig(cfg), "my-bucket", "search/")
//	dir := directory.OpenBlobDirectory(store)
package s3
