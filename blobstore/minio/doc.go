// Package minio provides a BlobStore implementation using the MinIO
// client.
//
// MinIO speaks the S3 protocol, so this store also works against other
// S3-compatible systems like Ceph, SeaweedFS and Garage. It has no AWS
// dependencies, which keeps air-gapped deployments simple.
//
// # Usage
//
//	client, err := minio.New("localhost:9000", &minio.Options{
//	    Creds:  credentials.NewStaticV4("minioadmin", "minioadmin", ""),
//	    Secure: false,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	store := minioblob.NewStore(client, "my-bucket", "search/")
//	dir := directory.OpenBlobDirectory(store)
package minio
