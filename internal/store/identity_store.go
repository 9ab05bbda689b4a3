package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"rechat/internal/domain"
)

// IdentityFilename is the identity file kept in the home directory.
const IdentityFilename = "chat_identity.json"

// IdentityFileStore persists the local identity to disk.
type IdentityFileStore struct {
	dir string
	mu  sync.Mutex
}

// NewIdentityFileStore returns an IdentityFileStore rooted at dir.
func NewIdentityFileStore(dir string) *IdentityFileStore {
	return &IdentityFileStore{dir: dir}
}

// SaveIdentity writes the identity to disk.
func (s *IdentityFileStore) SaveIdentity(id domain.Identity) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, err := json.MarshalIndent(id, "", "  ")
	if err != nil {
		return err
	}
	return writeAtomic(filepath.Join(s.dir, IdentityFilename), b, 0o600)
}

// LoadIdentity reads the identity; ok is false when none was saved yet.
func (s *IdentityFileStore) LoadIdentity() (domain.Identity, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	path := filepath.Join(s.dir, IdentityFilename)
	b, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return domain.Identity{}, false, nil
	}
	if err != nil {
		return domain.Identity{}, false, err
	}
	var id domain.Identity
	if err := json.Unmarshal(b, &id); err != nil {
		return domain.Identity{}, false, fmt.Errorf("%s: %w", path, err)
	}
	return id, id.ID != "", nil
}

// Compile-time assertion that IdentityFileStore implements domain.IdentityStore.
var _ domain.IdentityStore = (*IdentityFileStore)(nil)
