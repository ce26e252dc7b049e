// Package blob archives raw uploaded documents in S3-compatible storage.
package blob

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/kiranshivaraju/riskdesk/internal/config"
)

// Archive stores document bytes. Implementations must be safe for concurrent use.
type Archive interface {
	Put(ctx context.Context, key string, data []byte, contentType string) error
}

// MinioArchive implements Archive on a MinIO or S3 bucket.
type MinioArchive struct {
	client *minio.Client
	bucket string
}

// NewMinioArchive connects to the endpoint and creates the bucket when it
// does not exist.
func NewMinioArchive(ctx context.Context, cfg config.ArchiveConfig) (*MinioArchive, error) {
	cli, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}

	exists, err := cli.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("check bucket %s: %w", cfg.Bucket, err)
	}
	if !exists {
		if err := cli.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{Region: cfg.Region}); err != nil {
			return nil, fmt.Errorf("create bucket %s: %w", cfg.Bucket, err)
		}
	}

	return &MinioArchive{client: cli, bucket: cfg.Bucket}, nil
}

func (a *MinioArchive) Put(ctx context.Context, key string, data []byte, contentType string) error {
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	_, err := a.client.PutObject(ctx, a.bucket, key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return fmt.Errorf("put object %s: %w", key, err)
	}
	return nil
}

// DocumentKey is the object key for one uploaded file of a report. Path
// separators in the file name are flattened.
func DocumentKey(tenantID, reportID uuid.UUID, position int, fileName string) string {
	name := strings.NewReplacer("/", "_", "\\", "_").Replace(path.Clean("/" + fileName)[1:])
	if name == "" {
		name = "document"
	}
	return fmt.Sprintf("%s/%s/%02d-%s", tenantID, reportID, position, name)
}
