package store

import (
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// ImageDirStore saves images received from peers into one directory.
type ImageDirStore struct {
	dir string
	mu  sync.Mutex
	now func() time.Time
}

// NewImageDirStore returns an ImageDirStore writing into dir.
func NewImageDirStore(dir string) *ImageDirStore {
	return &ImageDirStore{dir: dir, now: time.Now}
}

// SaveImage stores data as recv_<unix ms>_<name> and returns the full path.
// Only the base of name is used, so a peer cannot write outside dir.
func (s *ImageDirStore) SaveImage(name string, data []byte) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	base := filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	if base == "." || base == "/" || base == ".." || base == "" {
		base = "image"
	}
	path := filepath.Join(s.dir, fmt.Sprintf("recv_%d_%s", s.now().UnixMilli(), base))
	if err := writeAtomic(path, data, 0o644); err != nil {
		return "", fmt.Errorf("save image: %w", err)
	}
	return path, nil
}
