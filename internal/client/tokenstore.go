package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// TokenKey is the fixed name the token is persisted under.
const TokenKey = "auth_token"

// TokenStore persists the session token across restarts.
type TokenStore interface {
	// Load returns the stored token, or "" when absent or expired.
	Load() (string, error)
	Save(token string, expiresAt time.Time) error
	Remove() error
}

type storedToken struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// FileTokenStore keeps the token in a small JSON file readable only by its owner.
type FileTokenStore struct {
	path string
	now  func() time.Time
	mu   sync.Mutex
}

func NewFileTokenStore(path string) *FileTokenStore {
	return &FileTokenStore{path: path, now: time.Now}
}

func (s *FileTokenStore) Load() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	raw, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("read token file: %w", err)
	}
	var entries map[string]storedToken
	if err := json.Unmarshal(raw, &entries); err != nil {
		// unreadable state is as good as none
		return "", s.removeLocked()
	}
	entry, ok := entries[TokenKey]
	if !ok || entry.Token == "" {
		return "", nil
	}
	if !s.now().Before(entry.ExpiresAt) {
		return "", s.removeLocked()
	}
	return entry.Token, nil
}

func (s *FileTokenStore) Save(token string, expiresAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	raw, err := json.Marshal(map[string]storedToken{TokenKey: {Token: token, ExpiresAt: expiresAt.UTC()}})
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("create token dir: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o600); err != nil {
		return fmt.Errorf("write token file: %w", err)
	}
	return os.Rename(tmp, s.path)
}

func (s *FileTokenStore) Remove() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.removeLocked()
}

func (s *FileTokenStore) removeLocked() error {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove token file: %w", err)
	}
	return nil
}
