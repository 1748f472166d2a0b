// Package storage keeps uploaded cover letter documents on local disk.
package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"

	"kunjungan/internal/middleware"

	"github.com/google/uuid"
)

// FilePrefix starts every stored cover letter name.
const FilePrefix = "file_pengantar-"

// ErrInvalidName is returned for names the store never generates.
var ErrInvalidName = errors.New("invalid stored file name")

var namePattern = regexp.MustCompile(`^file_pengantar-[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}\.pdf$`)

// ValidName reports whether name has the shape of a server-generated file name.
func ValidName(name string) bool {
	return namePattern.MatchString(name)
}

// DocumentStore persists cover letters by server-generated name.
type DocumentStore interface {
	Save(ctx context.Context, content []byte) (string, error)
	Remove(ctx context.Context, name string) error
	Path(name string) (string, error)
}

// LocalStore writes documents into a single directory.
type LocalStore struct {
	dir string
}

// NewLocalStore returns a store rooted at dir, creating it if needed.
func NewLocalStore(dir string) (*LocalStore, error) {
	if dir == "" {
		dir = "./uploads"
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &LocalStore{dir: dir}, nil
}

// Dir returns the upload directory.
func (s *LocalStore) Dir() string {
	return s.dir
}

// Save writes content under a fresh name. The file appears under its final
// name only once fully written.
func (s *LocalStore) Save(ctx context.Context, content []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	name := FilePrefix + uuid.New().String() + ".pdf"
	tmp, err := os.CreateTemp(s.dir, ".upload-*")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(content); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return "", fmt.Errorf("write document: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return "", fmt.Errorf("close document: %w", err)
	}
	if err := os.Chmod(tmpName, 0o640); err != nil {
		_ = os.Remove(tmpName)
		return "", fmt.Errorf("chmod document: %w", err)
	}
	if err := os.Rename(tmpName, filepath.Join(s.dir, name)); err != nil {
		_ = os.Remove(tmpName)
		return "", fmt.Errorf("store document: %w", err)
	}

	middleware.Logger.DebugContext(ctx, "cover letter stored", slog.String("file", name), slog.Int("bytes", len(content)))
	return name, nil
}

// Remove deletes a stored document. A missing file is not an error.
func (s *LocalStore) Remove(ctx context.Context, name string) error {
	path, err := s.Path(name)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove document: %w", err)
	}
	middleware.Logger.DebugContext(ctx, "cover letter removed", slog.String("file", name))
	return nil
}

// Path resolves a stored name to its location on disk.
func (s *LocalStore) Path(name string) (string, error) {
	if !ValidName(name) {
		return "", ErrInvalidName
	}
	return filepath.Join(s.dir, name), nil
}
