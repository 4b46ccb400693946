package blob

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// urlPrefix is the public exposure prefix for stored files, matching how
// the HTTP layer serves the upload directory.
const urlPrefix = "public/"

// LocalStore keeps blobs on the local filesystem under a base directory.
type LocalStore struct {
	base string
}

// NewLocalStore creates the base directory if needed.
func NewLocalStore(base string) (*LocalStore, error) {
	if err := os.MkdirAll(base, 0o755); err != nil {
		return nil, fmt.Errorf("create blob base dir %s: %w", base, err)
	}
	return &LocalStore{base: base}, nil
}

// Put stores the stream under path and returns its public URL. The path is
// cleaned and confined to the base directory.
func (s *LocalStore) Put(ctx context.Context, path string, r io.Reader) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	rel, err := s.confine(path)
	if err != nil {
		return "", err
	}
	full := filepath.Join(s.base, rel)
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return "", err
	}
	f, err := os.Create(full)
	if err != nil {
		return "", err
	}
	defer f.Close()
	if _, err := io.Copy(f, r); err != nil {
		return "", err
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return urlPrefix + filepath.ToSlash(rel), nil
}

// Get reads back the bytes for a URL previously returned by Put.
func (s *LocalStore) Get(ctx context.Context, url string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	rel, err := s.confine(strings.TrimPrefix(url, urlPrefix))
	if err != nil {
		return nil, err
	}
	return os.ReadFile(filepath.Join(s.base, rel))
}

// confine rejects paths that would escape the base directory.
func (s *LocalStore) confine(path string) (string, error) {
	rel := filepath.Clean(filepath.FromSlash(path))
	if rel == "." || rel == "" || strings.HasPrefix(rel, "..") || filepath.IsAbs(rel) {
		return "", fmt.Errorf("invalid blob path %q", path)
	}
	return rel, nil
}
