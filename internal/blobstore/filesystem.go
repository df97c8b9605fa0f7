package blobstore

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/AnuphapGBC/invoice-management-service/internal/domain"
)

// FilesystemStore keeps blobs as flat files under a base directory. Blob
// names never contain path separators, so every blob maps to exactly one
// file directly under the base dir.
type FilesystemStore struct {
	baseDir string
}

// NewFilesystemStore creates the base directory if needed and returns a store
// rooted at it.
func NewFilesystemStore(baseDir string) (*FilesystemStore, error) {
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}
	return &FilesystemStore{baseDir: baseDir}, nil
}

// BaseDir returns the directory blobs are stored under, for static serving.
func (s *FilesystemStore) BaseDir() string {
	return s.baseDir
}

func (s *FilesystemStore) path(name string) (string, error) {
	if name == "" || strings.ContainsAny(name, "/\\") || name == "." || name == ".." {
		return "", &domain.StorageError{Op: "resolve", Name: name, Err: fmt.Errorf("invalid blob name")}
	}
	return filepath.Join(s.baseDir, name), nil
}

// Write stores data under name. An existing file with the same name is a hard
// error, never overwritten.
func (s *FilesystemStore) Write(ctx context.Context, name string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return &domain.StorageError{Op: "write", Name: name, Err: err}
	}
	p, err := s.path(name)
	if err != nil {
		return err
	}
	f, err := os.OpenFile(p, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		if os.IsExist(err) {
			return &domain.StorageError{Op: "write", Name: name, Err: fmt.Errorf("blob already exists")}
		}
		return &domain.StorageError{Op: "write", Name: name, Err: err}
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(p)
		return &domain.StorageError{Op: "write", Name: name, Err: err}
	}
	if err := f.Close(); err != nil {
		return &domain.StorageError{Op: "write", Name: name, Err: err}
	}
	return nil
}

// Read returns the stored bytes for name.
func (s *FilesystemStore) Read(ctx context.Context, name string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, &domain.StorageError{Op: "read", Name: name, Err: err}
	}
	p, err := s.path(name)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(p)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &domain.NotFoundError{Resource: "blob", ID: name}
		}
		return nil, &domain.StorageError{Op: "read", Name: name, Err: err}
	}
	return data, nil
}

// Delete removes the blob. Deleting an absent blob is a NotFoundError so
// callers can distinguish it from an I/O failure.
func (s *FilesystemStore) Delete(ctx context.Context, name string) error {
	if err := ctx.Err(); err != nil {
		return &domain.StorageError{Op: "delete", Name: name, Err: err}
	}
	p, err := s.path(name)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil {
		if os.IsNotExist(err) {
			return &domain.NotFoundError{Resource: "blob", ID: name}
		}
		return &domain.StorageError{Op: "delete", Name: name, Err: err}
	}
	return nil
}

// Exists reports whether a blob with the given name is stored.
func (s *FilesystemStore) Exists(ctx context.Context, name string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, &domain.StorageError{Op: "stat", Name: name, Err: err}
	}
	p, err := s.path(name)
	if err != nil {
		return false, err
	}
	if _, err := os.Stat(p); err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, &domain.StorageError{Op: "stat", Name: name, Err: err}
	}
	return true, nil
}
