// Package local stores files under a directory on disk. Keys may contain
// slashes; they are resolved relative to the root and never allowed to
// escape it.
package local

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/docuvault/docuvault/config"
	"github.com/docuvault/docuvault/pkg/logger"
)

type Storage struct {
	root   string
	logger logger.Logger
}

func New(cfg config.LocalStorageConfig, log logger.Logger) (*Storage, error) {
	root, err := filepath.Abs(cfg.Dir)
	if err != nil {
		return nil, fmt.Errorf("resolve storage dir: %w", err)
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create storage dir: %w", err)
	}
	return &Storage{root: root, logger: log}, nil
}

func (s *Storage) path(key string) (string, error) {
	p := filepath.Join(s.root, filepath.FromSlash(key))
	if !strings.HasPrefix(p, s.root+string(filepath.Separator)) {
		return "", fmt.Errorf("invalid key: %s", key)
	}
	return p, nil
}

func (s *Storage) Store(ctx context.Context, reader io.Reader, key string) (string, error) {
	p, err := s.path(key)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return "", fmt.Errorf("create key dir: %w", err)
	}

	f, err := os.Create(p)
	if err != nil {
		return "", fmt.Errorf("create file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, reader); err != nil {
		os.Remove(p)
		s.logger.Error("Failed to store file locally",
			logger.String("key", key),
			logger.Error(err),
		)
		return "", fmt.Errorf("write file: %w", err)
	}
	return key, nil
}

func (s *Storage) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	p, err := s.path(key)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(p)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	return f, nil
}

func (s *Storage) Delete(ctx context.Context, key string) error {
	p, err := s.path(key)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove file: %w", err)
	}
	return nil
}

func (s *Storage) CleanupBefore(ctx context.Context, threshold time.Time) error {
	return filepath.WalkDir(s.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		if info.ModTime().Before(threshold) {
			if err := os.Remove(path); err != nil {
				s.logger.Error("Failed to delete expired file",
					logger.String("path", path),
					logger.Error(err),
				)
				return nil
			}
			s.logger.Info("Deleted expired file",
				logger.String("path", path),
				logger.Time("lastModified", info.ModTime()),
			)
		}
		return nil
	})
}
