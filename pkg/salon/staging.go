package salon

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
)

// StagingFile wraps one locally buffered upload. It is valid from creation
// until Release; the coordinator owns its full lifetime and releases it on
// every exit path of a workflow that acquired one.
type StagingFile struct {
	Path string
}

// NewStagingFile buffers src into a temp file under dir, keeping the
// original filename's extension so the object store can derive a sensible
// key suffix.
func NewStagingFile(dir string, src io.Reader, filename string) (*StagingFile, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create staging directory: %w", err)
	}

	f, err := os.CreateTemp(dir, "upload-*"+filepath.Ext(filename))
	if err != nil {
		return nil, fmt.Errorf("failed to create staging file: %w", err)
	}

	if _, err := io.Copy(f, src); err != nil {
		f.Close()
		os.Remove(f.Name())
		return nil, fmt.Errorf("failed to buffer upload: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return nil, fmt.Errorf("failed to close staging file: %w", err)
	}

	return &StagingFile{Path: f.Name()}, nil
}

// Release deletes the local copy. Releasing twice, releasing an
// already-removed file, or releasing a nil StagingFile is a no-op.
func (f *StagingFile) Release() {
	if f == nil || f.Path == "" {
		return
	}
	if err := os.Remove(f.Path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		slog.Warn("failed to remove staging file", "path", f.Path, "error", err)
	}
}
