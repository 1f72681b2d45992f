package storage

import (
	"context"
	"fmt"
	"io"
	"strings"

	"medlink/config"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

type minioStore struct {
	client  *minio.Client
	bucket  string
	folder  string
	baseURL string
}

// NewMinio connects to an S3-compatible endpoint and creates the bucket when missing.
func NewMinio(ctx context.Context, cfg config.MinioConfig, folder string) (FileStore, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, err
	}
	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("minio bucket check: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("minio make bucket: %w", err)
		}
	}
	base := strings.TrimRight(cfg.PublicURL, "/")
	if base == "" {
		scheme := "http"
		if cfg.UseSSL {
			scheme = "https"
		}
		base = scheme + "://" + cfg.Endpoint
	}
	return &minioStore{client: client, bucket: cfg.Bucket, folder: folder, baseURL: base}, nil
}

func (m *minioStore) Upload(ctx context.Context, file io.Reader, size int64, fileName, contentType string) (string, error) {
	name := ObjectName(m.folder, fileName)
	_, err := m.client.PutObject(ctx, m.bucket, name, file, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", fmt.Errorf("minio put %s/%s: %w", m.bucket, name, err)
	}
	return m.baseURL + "/" + m.bucket + "/" + name, nil
}
