package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// LocalStore writes images below root and serves them from baseURL.
type LocalStore struct {
	root    string
	baseURL string
}

// NewLocalStore resolves root against the working directory.
func NewLocalStore(root, baseURL string) *LocalStore {
	if !filepath.IsAbs(root) {
		if cwd, err := os.Getwd(); err == nil {
			root = filepath.Join(cwd, root)
		}
	}
	return &LocalStore{root: root, baseURL: strings.TrimRight(baseURL, "/")}
}

// Root is the absolute directory images are written to.
func (s *LocalStore) Root() string { return s.root }

func (s *LocalStore) abs(name string) (string, error) {
	full := filepath.Join(s.root, filepath.FromSlash(name))
	rel, err := filepath.Rel(s.root, full)
	if err != nil || strings.HasPrefix(rel, "..") {
		return "", fmt.Errorf("storage/local: %q escapes the storage root", name)
	}
	return full, nil
}

func (s *LocalStore) Store(ctx context.Context, name, _ string, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	full, err := s.abs(name)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return "", fmt.Errorf("storage/local: mkdir: %w", err)
	}
	if err := os.WriteFile(full, data, 0o644); err != nil {
		return "", fmt.Errorf("storage/local: write %s: %w", name, err)
	}

	return s.baseURL + "/" + strings.TrimLeft(filepath.ToSlash(name), "/"), nil
}
