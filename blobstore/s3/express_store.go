package s3

import (
	"bytes"
	"context"
	"errors"
	"path"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"
	"github.com/hupe1980/lexgo/blobstore"
)

// ErrConflict is returned by PutIfNotExists when the object already
// exists.
var ErrConflict = errors.New("object already exists")

// ExpressStore implements blobstore.BlobStore for S3 Express One Zone
// directory buckets (names ending in --azid--x-s3).
//
// Express buckets deliver single-digit millisecond reads and support
// conditional writes, which makes PutIfNotExists possible without an
// external coordinator.
type ExpressStore struct {
	client   Client
	bucket   string
	prefix   string
	cfg      UploadConfig
	uploader *manager.Uploader
}

// NewExpressStore creates an S3 Express One Zone blob store. The bucket
// must be a directory bucket.
func NewExpressStore(client Client, bucket, rootPrefix string, opts ...ExpressOption) *ExpressStore {
	s := &ExpressStore{
		client: client,
		bucket: bucket,
		prefix: rootPrefix,
		cfg:    DefaultUploadConfig(),
	}

	for _, opt := range opts {
		opt(s)
	}

	s.uploader = newUploader(client, s.cfg)

	return s
}

// ExpressOption configures an ExpressStore.
type ExpressOption func(*ExpressStore)

// WithExpressUploadConfig overrides the upload settings.
func WithExpressUploadConfig(cfg UploadConfig) ExpressOption {
	return func(s *ExpressStore) {
		s.cfg = cfg
	}
}

func (s *ExpressStore) key(name string) string {
	return path.Join(s.prefix, name)
}

func (s *ExpressStore) Open(ctx context.Context, name string) (blobstore.Blob, error) {
	return openBlob(ctx, s.client, s.bucket, s.key(name))
}

func (s *ExpressStore) Put(ctx context.Context, name string, data []byte) error {
	if s.cfg.EnableChecksum {
		return putWithChecksum(ctx, s.client, s.bucket, s.key(name), data)
	}

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(name)),
		Body:   bytes.NewReader(data),
	})

	return err
}

// PutIfNotExists writes the object only if the key is vacant, using an
// If-None-Match conditional write. Returns ErrConflict when the object
// already exists.
func (s *ExpressStore) PutIfNotExists(ctx context.Context, name string, data []byte) error {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(s.key(name)),
		Body:        bytes.NewReader(data),
		IfNoneMatch: aws.String("*"),
	})
	if err != nil {
		var apiErr smithy.APIError
		if errors.As(err, &apiErr) {
			code := apiErr.ErrorCode()
			if code == "PreconditionFailed" || code == "ConditionalRequestConflict" {
				return ErrConflict
			}
		}

		return err
	}

	return nil
}

func (s *ExpressStore) Create(ctx context.Context, name string) (blobstore.WritableBlob, error) {
	return newStreamingWritableBlob(ctx, s.client, s.uploader, s.bucket, s.key(name), s.cfg.EnableChecksum), nil
}

func (s *ExpressStore) Delete(ctx context.Context, name string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(name)),
	})

	return err
}

func (s *ExpressStore) List(ctx context.Context, prefix string) ([]string, error) {
	return listObjects(ctx, s.client, s.bucket, s.key(prefix), s.prefix)
}
