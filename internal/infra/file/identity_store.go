package file

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"globetrotter/internal/domain"

	"gopkg.in/yaml.v3"
)

// IdentityStore keeps the identity in a small YAML document on disk, the
// terminal counterpart of browser local storage.
type IdentityStore struct {
	path string
}

type document struct {
	User      *domain.Identity `yaml:"globetrotter_user"`
	Timestamp int64            `yaml:"globetrotter_timestamp"`
}

func NewIdentityStore(path string) *IdentityStore {
	return &IdentityStore{path: path}
}

// DefaultPath is ~/.globetrotter/identity.yaml, or dir/identity.yaml when dir is set.
func DefaultPath(dir string) (string, error) {
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		dir = filepath.Join(home, ".globetrotter")
	}
	return filepath.Join(dir, "identity.yaml"), nil
}

func (s *IdentityStore) Save(_ context.Context, identity domain.PersistedIdentity) error {
	user := identity.Identity
	data, err := yaml.Marshal(document{User: &user, Timestamp: identity.SavedAt.UnixMilli()})
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return err
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, s.path)
}

// Load returns ok=false for a missing or unreadable document.
func (s *IdentityStore) Load(_ context.Context) (domain.PersistedIdentity, bool, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return domain.PersistedIdentity{}, false, nil
	}
	if err != nil {
		return domain.PersistedIdentity{}, false, err
	}
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil || doc.User == nil || doc.Timestamp == 0 {
		return domain.PersistedIdentity{}, false, nil
	}
	return domain.PersistedIdentity{Identity: *doc.User, SavedAt: time.UnixMilli(doc.Timestamp)}, true, nil
}

func (s *IdentityStore) Clear(_ context.Context) error {
	err := os.Remove(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}
