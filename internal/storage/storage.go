// Package storage persists uploaded bootcamp photos on the local disk.
package storage

import (
	"io"
	"os"
	"path/filepath"

	"github.com/devtrail/devtrail-be/internal/apperr"
)

// PhotoStore writes named byte streams under a base directory.
type PhotoStore struct {
	dir string
}

// NewPhotoStore creates a PhotoStore rooted at dir, creating it if needed.
func NewPhotoStore(dir string) (*PhotoStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}
	return &PhotoStore{dir: dir}, nil
}

// Save writes the stream to <dir>/<name>, replacing any existing file.
func (s *PhotoStore) Save(name string, r io.Reader) error {
	dst := filepath.Join(s.dir, filepath.Base(name))
	f, err := os.Create(dst)
	if err != nil {
		return apperr.Upstream("file upload", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		os.Remove(dst)
		return apperr.Upstream("file upload", err)
	}
	return nil
}
