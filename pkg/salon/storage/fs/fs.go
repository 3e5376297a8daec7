package fs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/ngabo-dev/salon-backend/pkg/salon"
)

// Store is a filesystem implementation of the salon.BlobStore interface.
// Objects live under a base directory and are served from a URL prefix.
type Store struct {
	baseDir   string
	urlPrefix string
}

// Config options for the filesystem backend.
type Config struct {
	BaseDir   string // Base directory for storing files
	URLPrefix string // URL prefix the files are served under
}

// New creates a new filesystem storage backend.
func New(config Config) (*Store, error) {
	if config.BaseDir == "" {
		return nil, errors.New("base directory is required")
	}

	if err := os.MkdirAll(config.BaseDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create base directory: %w", err)
	}

	return &Store{
		baseDir:   config.BaseDir,
		urlPrefix: strings.TrimSuffix(config.URLPrefix, "/"),
	}, nil
}

func (s *Store) Put(ctx context.Context, localPath, prefix string) (salon.ImageRef, error) {
	src, err := os.Open(localPath)
	if err != nil {
		return salon.ImageRef{}, fmt.Errorf("failed to open staged file: %w", err)
	}
	defer src.Close()

	key := fmt.Sprintf("%s/%s%s", prefix, uuid.New(), filepath.Ext(localPath))
	target := filepath.Join(s.baseDir, filepath.FromSlash(key))

	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return salon.ImageRef{}, fmt.Errorf("failed to create object directory: %w", err)
	}

	dst, err := os.Create(target)
	if err != nil {
		return salon.ImageRef{}, fmt.Errorf("failed to create object file: %w", err)
	}

	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		os.Remove(target)
		return salon.ImageRef{}, fmt.Errorf("failed to write object file: %w", err)
	}
	if err := dst.Close(); err != nil {
		os.Remove(target)
		return salon.ImageRef{}, fmt.Errorf("failed to close object file: %w", err)
	}

	return salon.ImageRef{Key: key, URL: s.urlPrefix + path.Join("/", key)}, nil
}

// Delete removes an object file. A missing file is a no-op.
func (s *Store) Delete(ctx context.Context, key string) error {
	target := filepath.Join(s.baseDir, filepath.FromSlash(key))
	if err := os.Remove(target); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to delete object file: %w", err)
	}
	return nil
}
