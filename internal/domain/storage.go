package domain

import (
	"context"
	"io"
)

// ObjectStorage stores uploaded report attachments.
type ObjectStorage interface {
	Upload(ctx context.Context, key string, reader io.Reader, size int64, contentType string) (string, error)
	Delete(ctx context.Context, key string) error
}
