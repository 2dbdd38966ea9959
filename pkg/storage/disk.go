package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// DocumentStorage persists uploaded documents on the local filesystem.
// Files live under <root>/<subdir>/<filename>; callers keep the returned
// relative path in the database.
type DocumentStorage interface {
	Save(r io.Reader, subdir, fileName string) (path string, size int64, err error)
	Open(path string) (io.ReadCloser, error)
	Remove(path string) error
	Exists(path string) bool
}

type diskStorage struct {
	root string
}

func NewDiskStorage(root string) (DocumentStorage, error) {
	if root == "" {
		root = "storage/documents"
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage root %s: %w", root, err)
	}
	return &diskStorage{root: root}, nil
}

func (s *diskStorage) Save(r io.Reader, subdir, fileName string) (string, int64, error) {
	rel := filepath.Join(subdir, sanitizeFileName(fileName))
	full := filepath.Join(s.root, rel)

	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return "", 0, err
	}

	f, err := os.Create(full)
	if err != nil {
		return "", 0, err
	}
	defer f.Close()

	size, err := io.Copy(f, r)
	if err != nil {
		os.Remove(full)
		return "", 0, err
	}

	return rel, size, nil
}

func (s *diskStorage) Open(path string) (io.ReadCloser, error) {
	return os.Open(filepath.Join(s.root, filepath.Clean(path)))
}

func (s *diskStorage) Remove(path string) error {
	full := filepath.Join(s.root, filepath.Clean(path))
	if err := os.Remove(full); err != nil {
		return err
	}
	// Best effort: drop the per-document directory if now empty.
	os.Remove(filepath.Dir(full))
	return nil
}

func (s *diskStorage) Exists(path string) bool {
	_, err := os.Stat(filepath.Join(s.root, filepath.Clean(path)))
	return err == nil
}

// sanitizeFileName strips path separators and other characters that have
// no business in a stored file name.
func sanitizeFileName(name string) string {
	name = filepath.Base(name)
	name = strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|':
			return '_'
		}
		return r
	}, name)
	if name == "" || name == "." || name == ".." {
		name = "file"
	}
	return name
}
