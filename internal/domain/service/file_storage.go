package service

import (
	"context"
	"io"
)

// FileStorage keeps uploaded files and hands back their public URL.
type FileStorage interface {
	Upload(ctx context.Context, file io.Reader, contentType, folder string) (string, error)
	Delete(ctx context.Context, fileURL string) error
	Close() error
}
