package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/spf13/afero"
)

// FileStore keeps the blob in a single file and replaces it with a temp-file + rename,
// so a crash mid-write leaves the previous version intact.
type FileStore struct {
	fs   afero.Fs
	path string
}

// NewFileStore returns a FileStore writing to path on the OS filesystem.
func NewFileStore(path string) (*FileStore, error) {
	return NewFileStoreFs(afero.NewOsFs(), path)
}

// NewFileStoreFs returns a FileStore on an arbitrary afero filesystem.
func NewFileStoreFs(fs afero.Fs, path string) (*FileStore, error) {
	if path == "" {
		return nil, fmt.Errorf("file store path is empty")
	}

	if err := fs.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create directory for %s: %w", path, err)
	}

	return &FileStore{fs: fs, path: path}, nil
}

// Name implements BlobStore.
func (s *FileStore) Name() string {
	return "file:" + s.path
}

// Load implements BlobStore.
func (s *FileStore) Load(_ context.Context) ([]byte, error) {
	data, err := afero.ReadFile(s.fs, s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrBlobNotFound
		}
		return nil, fmt.Errorf("failed to read %s: %w", s.path, err)
	}

	return data, nil
}

// Save implements BlobStore.
func (s *FileStore) Save(ctx context.Context, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	tmpPath := fmt.Sprintf("%s.%s.tmp", s.path, uuid.NewString())

	f, err := s.fs.OpenFile(tmpPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}

	if _, err := f.Write(data); err != nil {
		f.Close()
		s.fs.Remove(tmpPath)
		return fmt.Errorf("failed to write temp file: %w", err)
	}

	if err := f.Sync(); err != nil {
		f.Close()
		s.fs.Remove(tmpPath)
		return fmt.Errorf("failed to sync temp file: %w", err)
	}

	if err := f.Close(); err != nil {
		s.fs.Remove(tmpPath)
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := s.fs.Rename(tmpPath, s.path); err != nil {
		s.fs.Remove(tmpPath)
		return fmt.Errorf("failed to replace %s: %w", s.path, err)
	}

	return nil
}
