// Package storage abstracts where uploaded files live. The pipeline only
// ever streams a file in and back out by key, so the interface stays small
// enough to back with a local directory in development and MinIO or S3 in
// production.
package storage

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/docuvault/docuvault/config"
	"github.com/docuvault/docuvault/pkg/logger"
	"github.com/docuvault/docuvault/pkg/storage/local"
	"github.com/docuvault/docuvault/pkg/storage/minio"
	"github.com/docuvault/docuvault/pkg/storage/s3"
)

type Type string

const (
	TypeLocal Type = "local"
	TypeMinio Type = "minio"
	TypeS3    Type = "s3"
)

// Storage stores, retrieves and deletes uploaded files by key.
type Storage interface {
	Store(ctx context.Context, reader io.Reader, key string) (string, error)
	Get(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
	// CleanupBefore removes files last modified before the threshold.
	CleanupBefore(ctx context.Context, threshold time.Time) error
}

// RunRetentionSweep deletes files last modified more than retention ago,
// once per interval, until ctx is cancelled. A non-positive retention
// disables the sweep entirely.
func RunRetentionSweep(ctx context.Context, files Storage, retention, interval time.Duration, log logger.Logger) {
	if retention <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := files.CleanupBefore(ctx, time.Now().Add(-retention)); err != nil {
				log.Error("Retention sweep failed", logger.Error(err))
			}
		}
	}
}

// New builds the storage backend selected by the configuration.
func New(cfg config.StorageConfig, log logger.Logger) (Storage, error) {
	switch Type(cfg.Type) {
	case TypeLocal:
		return local.New(cfg.Local, log)
	case TypeMinio:
		return minio.New(cfg.Minio, log)
	case TypeS3:
		return s3.New(cfg.S3, log)
	default:
		return nil, fmt.Errorf("unsupported storage type: %s", cfg.Type)
	}
}
