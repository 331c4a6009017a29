package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"mission-desk/internal/config"
	"mission-desk/internal/domain"
	"mission-desk/internal/logger"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"
)

// NewObjectStorage returns the storage backend selected by cfg.Driver.
func NewObjectStorage(ctx context.Context, cfg config.StorageConfig) (domain.ObjectStorage, error) {
	switch cfg.Driver {
	case "local":
		return NewLocalStorage(cfg.LocalDir)
	case "minio":
		return NewMinioStorage(ctx, cfg)
	default:
		return nil, fmt.Errorf("unsupported storage driver: %s", cfg.Driver)
	}
}

func cleanKey(key string) (string, error) {
	cleaned := filepath.ToSlash(filepath.Clean("/" + key))[1:]
	if cleaned == "" || cleaned != key || strings.Contains(key, "..") {
		return "", fmt.Errorf("invalid object key: %q", key)
	}
	return cleaned, nil
}

// LocalStorage keeps objects below a directory on disk.
type LocalStorage struct {
	root string
}

func NewLocalStorage(root string) (*LocalStorage, error) {
	if root == "" {
		return nil, fmt.Errorf("local storage directory is empty")
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory %s: %w", root, err)
	}
	return &LocalStorage{root: root}, nil
}

func (s *LocalStorage) Upload(ctx context.Context, key string, reader io.Reader, size int64, contentType string) (string, error) {
	key, err := cleanKey(key)
	if err != nil {
		return "", err
	}
	dst := filepath.Join(s.root, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return "", err
	}

	out, err := os.Create(dst)
	if err != nil {
		return "", err
	}
	defer out.Close()

	if _, err := io.Copy(out, reader); err != nil {
		return "", err
	}
	return key, nil
}

func (s *LocalStorage) Delete(ctx context.Context, key string) error {
	key, err := cleanKey(key)
	if err != nil {
		return err
	}
	err = os.Remove(filepath.Join(s.root, filepath.FromSlash(key)))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

// MinioStorage stores objects in an S3-compatible bucket.
type MinioStorage struct {
	client *minio.Client
	bucket string
}

// NewMinioStorage connects to the endpoint and creates the bucket when missing.
func NewMinioStorage(ctx context.Context, cfg config.StorageConfig) (*MinioStorage, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket %s: %w", cfg.Bucket, err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("failed to create bucket %s: %w", cfg.Bucket, err)
		}
		logger.Get().Info("Created object storage bucket", zap.String("bucket", cfg.Bucket))
	}
	return &MinioStorage{client: client, bucket: cfg.Bucket}, nil
}

func (s *MinioStorage) Upload(ctx context.Context, key string, reader io.Reader, size int64, contentType string) (string, error) {
	key, err := cleanKey(key)
	if err != nil {
		return "", err
	}
	_, err = s.client.PutObject(ctx, s.bucket, key, reader, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", err
	}
	return key, nil
}

func (s *MinioStorage) Delete(ctx context.Context, key string) error {
	return s.client.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{})
}
