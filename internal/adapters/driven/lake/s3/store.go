package s3

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path"
	"sort"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/custodia-labs/trucklake/internal/core/domain"
	"github.com/custodia-labs/trucklake/internal/core/ports/driven"
	"github.com/custodia-labs/trucklake/internal/logger"
)

// Ensure Store implements the interface.
var _ driven.ObjectStore = (*Store)(nil)

// Config carries the connection settings for an S3-compatible lake.
type Config struct {
	// Endpoint is the host:port of the S3-compatible service.
	Endpoint string

	// AccessKey and SecretKey authenticate the pipeline.
	AccessKey string
	SecretKey string

	// Bucket is the lake bucket. It must already exist.
	Bucket string

	// Region is the bucket's region, empty for region-less services.
	Region string

	// UseSSL selects https.
	UseSSL bool
}

// Store is a lake on an S3-compatible object store. CommitWrite is a
// server-side copy plus delete: per-key PUT and COPY are atomic on
// S3, so a reader observes the old object or the new one, never a
// partial body.
type Store struct {
	client *minio.Client
	bucket string
}

// NewStore connects to the object store and verifies the bucket
// exists. Buckets are provisioned out of band; a missing bucket is a
// deployment fault the pipeline must not paper over.
func NewStore(ctx context.Context, cfg Config) (*Store, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("create s3 client: %w", err)
	}

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("check bucket %s: %w", cfg.Bucket, err)
	}
	if !exists {
		return nil, fmt.Errorf("%w: bucket %s", domain.ErrNotFound, cfg.Bucket)
	}

	return &Store{
		client: client,
		bucket: cfg.Bucket,
	}, nil
}

// Get retrieves an object's content.
func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	obj, err := s.client.GetObject(ctx, s.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("get object %s: %w", key, err)
	}
	defer obj.Close()

	// GetObject is lazy; a missing key surfaces on first read.
	data, err := io.ReadAll(obj)
	if err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return nil, fmt.Errorf("%w: %s", domain.ErrNotFound, key)
		}
		return nil, fmt.Errorf("read object %s: %w", key, err)
	}
	return data, nil
}

// Put writes an object.
func (s *Store) Put(ctx context.Context, key string, data []byte) error {
	_, err := s.client.PutObject(ctx, s.bucket, key,
		bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: contentTypeOf(key)})
	if err != nil {
		return fmt.Errorf("put object %s: %w", key, err)
	}
	return nil
}

// CommitWrite copies the staged object onto its final key, then
// removes the staged copy.
func (s *Store) CommitWrite(ctx context.Context, stagingKey, finalKey string) error {
	_, err := s.client.CopyObject(ctx,
		minio.CopyDestOptions{Bucket: s.bucket, Object: finalKey},
		minio.CopySrcOptions{Bucket: s.bucket, Object: stagingKey})
	if err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return fmt.Errorf("%w: %s", domain.ErrNotFound, stagingKey)
		}
		return fmt.Errorf("copy %s to %s: %w", stagingKey, finalKey, err)
	}

	// The copy already published the object; a failed delete only
	// leaves a harmless orphan under the staging prefix.
	err = s.client.RemoveObject(ctx, s.bucket, stagingKey, minio.RemoveObjectOptions{})
	if err != nil {
		logger.Warn("S3: staged object %s not removed after commit: %v", stagingKey, err)
	}
	return nil
}

// Delete removes an object. S3 deletes are idempotent, so absent keys
// are a no-op.
func (s *Store) Delete(ctx context.Context, key string) error {
	err := s.client.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{})
	if err != nil {
		return fmt.Errorf("delete object %s: %w", key, err)
	}
	return nil
}

// Exists reports whether an object is present at key.
func (s *Store) Exists(ctx context.Context, key string) (bool, error) {
	_, err := s.client.StatObject(ctx, s.bucket, key, minio.StatObjectOptions{})
	if err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return false, nil
		}
		return false, fmt.Errorf("stat object %s: %w", key, err)
	}
	return true, nil
}

// List returns all keys under prefix, sorted ascending.
func (s *Store) List(ctx context.Context, prefix string) ([]string, error) {
	var keys []string
	for obj := range s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{
		Prefix:    prefix,
		Recursive: true,
	}) {
		if obj.Err != nil {
			return nil, fmt.Errorf("list objects under %s: %w", prefix, obj.Err)
		}
		keys = append(keys, obj.Key)
	}
	sort.Strings(keys)
	return keys, nil
}

func contentTypeOf(key string) string {
	switch path.Ext(key) {
	case ".html":
		return "text/html"
	case ".json":
		return "application/json"
	default:
		return "application/octet-stream"
	}
}
