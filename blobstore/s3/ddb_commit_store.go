package s3

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/hupe1980/lexgo/blobstore"
)

// ErrConcurrentModification is returned when another writer committed
// first.
var ErrConcurrentModification = errors.New("concurrent modification detected")

// commitObjectName is the pointer object routed through DynamoDB
// instead of S3.
const commitObjectName = "CURRENT"

// DDBClient is the subset of the DynamoDB API the commit store uses.
type DDBClient interface {
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
	DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
}

// DDBCommitStore is a blobstore.BlobStore backed by S3, with DynamoDB
// supplying the atomic compare-and-swap that S3 lacks.
//
// All blobs live in S3 except the CURRENT pointer, which becomes a row
// in a commit table. Updating it is a conditional put on a fresh
// version number, so two concurrent committers cannot both win; the
// loser gets ErrConcurrentModification and must reload.
//
// Table schema:
//   - Partition key: base_uri (string), the store's S3 location
//   - Sort key: version (number), monotonically increasing
//
// Create the table with:
//
//	aws dynamodb create-table \
//	  --table-name lexgo-commits \
//	  --attribute-definitions AttributeName=base_uri,AttributeType=S AttributeName=version,AttributeType=N \
//	  --key-schema AttributeName=base_uri,KeyType=HASH AttributeName=version,KeyType=RANGE \
//	  --billing-mode PAY_PER_REQUEST
type DDBCommitStore struct {
	s3Store   *Store
	ddbClient DDBClient
	tableName string
	baseURI   string
}

// NewDDBCommitStore creates an S3+DynamoDB commit store. baseURI is the
// partition key, conventionally "s3://bucket/prefix".
func NewDDBCommitStore(s3Store *Store, ddbClient DDBClient, tableName, baseURI string) *DDBCommitStore {
	return &DDBCommitStore{
		s3Store:   s3Store,
		ddbClient: ddbClient,
		tableName: tableName,
		baseURI:   baseURI,
	}
}

func (s *DDBCommitStore) Open(ctx context.Context, name string) (blobstore.Blob, error) {
	if name == commitObjectName {
		version, pointer, err := s.getLatestVersion(ctx)
		if err != nil {
			return nil, err
		}

		if version == 0 {
			return nil, blobstore.ErrNotFound
		}

		return &virtualCurrentBlob{content: []byte(pointer)}, nil
	}

	return s.s3Store.Open(ctx, name)
}

func (s *DDBCommitStore) Put(ctx context.Context, name string, data []byte) error {
	if name == commitObjectName {
		return s.commitVersion(ctx, string(data))
	}

	return s.s3Store.Put(ctx, name, data)
}

func (s *DDBCommitStore) Create(ctx context.Context, name string) (blobstore.WritableBlob, error) {
	return s.s3Store.Create(ctx, name)
}

func (s *DDBCommitStore) Delete(ctx context.Context, name string) error {
	return s.s3Store.Delete(ctx, name)
}

func (s *DDBCommitStore) List(ctx context.Context, prefix string) ([]string, error) {
	return s.s3Store.List(ctx, prefix)
}

// PruneVersions deletes commit rows older than the keep most recent
// ones. The blobs the pruned rows pointed to are not touched.
func (s *DDBCommitStore) PruneVersions(ctx context.Context, keep int) error {
	if keep < 1 {
		keep = 1
	}

	resp, err := s.queryVersions(ctx, nil)
	if err != nil {
		return err
	}

	for i, item := range resp.Items {
		if i < keep {
			continue
		}

		versionAttr, ok := item["version"].(*types.AttributeValueMemberN)
		if !ok {
			return errors.New("invalid version attribute in commit table")
		}

		_, err := s.ddbClient.DeleteItem(ctx, &dynamodb.DeleteItemInput{
			TableName: aws.String(s.tableName),
			Key: map[string]types.AttributeValue{
				"base_uri": &types.AttributeValueMemberS{Value: s.baseURI},
				"version":  &types.AttributeValueMemberN{Value: versionAttr.Value},
			},
		})
		if err != nil {
			return fmt.Errorf("delete commit version %s: %w", versionAttr.Value, err)
		}
	}

	return nil
}

func (s *DDBCommitStore) queryVersions(ctx context.Context, limit *int32) (*dynamodb.QueryOutput, error) {
	resp, err := s.ddbClient.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(s.tableName),
		KeyConditionExpression: aws.String("base_uri = :uri"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":uri": &types.AttributeValueMemberS{Value: s.baseURI},
		},
		ScanIndexForward: aws.Bool(false), // newest first
		Limit:            limit,
	})
	if err != nil {
		return nil, fmt.Errorf("query commit table: %w", err)
	}

	return resp, nil
}

// getLatestVersion returns the newest committed version and its
// pointer content. Version 0 means nothing was committed yet.
func (s *DDBCommitStore) getLatestVersion(ctx context.Context) (uint64, string, error) {
	resp, err := s.queryVersions(ctx, aws.Int32(1))
	if err != nil {
		return 0, "", err
	}

	if len(resp.Items) == 0 {
		return 0, "", nil
	}

	item := resp.Items[0]

	versionAttr, ok := item["version"].(*types.AttributeValueMemberN)
	if !ok {
		return 0, "", errors.New("invalid version attribute in commit table")
	}

	pointerAttr, ok := item["manifest_path"].(*types.AttributeValueMemberS)
	if !ok {
		return 0, "", errors.New("invalid manifest_path attribute in commit table")
	}

	var version uint64
	if _, err := fmt.Sscanf(versionAttr.Value, "%d", &version); err != nil {
		return 0, "", fmt.Errorf("parse commit version: %w", err)
	}

	return version, pointerAttr.Value, nil
}

// commitVersion publishes a new pointer under version latest+1. The
// conditional put fails if another writer claimed that version first.
func (s *DDBCommitStore) commitVersion(ctx context.Context, pointer string) error {
	currentVersion, _, err := s.getLatestVersion(ctx)
	if err != nil {
		return err
	}

	newVersion := currentVersion + 1

	_, err = s.ddbClient.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.tableName),
		Item: map[string]types.AttributeValue{
			"base_uri":      &types.AttributeValueMemberS{Value: s.baseURI},
			"version":       &types.AttributeValueMemberN{Value: fmt.Sprintf("%d", newVersion)},
			"manifest_path": &types.AttributeValueMemberS{Value: pointer},
		},
		ConditionExpression: aws.String("attribute_not_exists(version)"),
	})
	if err != nil {
		var condErr *types.ConditionalCheckFailedException
		if errors.As(err, &condErr) {
			return ErrConcurrentModification
		}

		return fmt.Errorf("commit version to table: %w", err)
	}

	return nil
}

// virtualCurrentBlob serves the CURRENT pointer content from memory.
type virtualCurrentBlob struct {
	content []byte
}

func (b *virtualCurrentBlob) Close() error {
	return nil
}

func (b *virtualCurrentBlob) Size() int64 {
	return int64(len(b.content))
}

func (b *virtualCurrentBlob) ReadAt(_ context.Context, p []byte, off int64) (int, error) {
	if off >= int64(len(b.content)) {
		return 0, io.EOF
	}

	n := copy(p, b.content[off:])
	if n < len(p) {
		return n, io.EOF
	}

	return n, nil
}

func (b *virtualCurrentBlob) ReadRange(_ context.Context, off, length int64) (io.ReadCloser, error) {
	if off >= int64(len(b.content)) {
		return io.NopCloser(bytes.NewReader(nil)), nil
	}

	end := min(off+length, int64(len(b.content)))

	return io.NopCloser(bytes.NewReader(b.content[off:end])), nil
}

func (b *virtualCurrentBlob) Bytes() ([]byte, error) {
	return b.content, nil
}
