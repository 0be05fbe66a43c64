package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// LocalObjectStore keeps objects as files under baseDir/bucket/key. Used for
// local development and tests; content types are not persisted.
type LocalObjectStore struct {
	baseDir string
}

var _ ObjectStore = (*LocalObjectStore)(nil)

func NewLocalObjectStore(dir string) (*LocalObjectStore, error) {
	baseDir, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to get absolute path for %s: %w", dir, err)
	}

	return &LocalObjectStore{baseDir: baseDir}, nil
}

func (s *LocalObjectStore) GetObject(ctx context.Context, bucket, key string) ([]byte, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, bucket, filepath.FromSlash(key)))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s/%s", ErrObjectNotFound, bucket, key)
		}
		if os.IsPermission(err) {
			return nil, fmt.Errorf("%w: %s/%s", ErrAccessDenied, bucket, key)
		}
		return nil, fmt.Errorf("%w: failed to read %s/%s: %v", ErrStorage, bucket, key, err)
	}
	return data, nil
}

func (s *LocalObjectStore) PutObject(ctx context.Context, bucket, key string, data io.Reader, contentType string) error {
	path := filepath.Join(s.baseDir, bucket, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(path), os.ModePerm); err != nil {
		return fmt.Errorf("%w: failed to create directory for %s/%s: %v", ErrStorage, bucket, key, err)
	}

	dst, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("%w: failed to create file %s/%s: %v", ErrStorage, bucket, key, err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, data); err != nil {
		return fmt.Errorf("%w: failed to write file %s/%s: %v", ErrStorage, bucket, key, err)
	}

	return nil
}
