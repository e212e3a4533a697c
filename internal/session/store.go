package session

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Key identifies the persisted access token.
const Key = "dailyfortune.accessToken"

// TokenStore persists a single access token.
type TokenStore interface {
	Load() (string, error)
	Save(token string) error
	Delete() error
}

// FileStore keeps the token in a 0600 file.
type FileStore struct {
	path string
}

// NewFileStore returns a store backed by path. The file is created on first Save.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Path returns the token file location.
func (f *FileStore) Path() string { return f.path }

// Load returns the stored token, or "" if none was saved.
func (f *FileStore) Load() (string, error) {
	data, err := os.ReadFile(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("read token: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}

// Save writes token, replacing any previous one.
func (f *FileStore) Save(token string) error {
	if err := os.MkdirAll(filepath.Dir(f.path), 0o700); err != nil {
		return fmt.Errorf("create token dir: %w", err)
	}
	if err := os.WriteFile(f.path, []byte(token), 0o600); err != nil {
		return fmt.Errorf("save token: %w", err)
	}
	// WriteFile keeps the mode of an existing file.
	if err := os.Chmod(f.path, 0o600); err != nil {
		return fmt.Errorf("chmod token: %w", err)
	}
	return nil
}

// Delete removes the token file. A missing file is not an error.
func (f *FileStore) Delete() error {
	if err := os.Remove(f.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove token: %w", err)
	}
	return nil
}

// MemoryStore holds the token in memory. It backs DAILYFORTUNE_TOKEN and tests.
type MemoryStore struct {
	mu    sync.Mutex
	token string
}

// NewMemoryStore returns a store preloaded with token.
func NewMemoryStore(token string) *MemoryStore {
	return &MemoryStore{token: token}
}

func (m *MemoryStore) Load() (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.token, nil
}

func (m *MemoryStore) Save(token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = token
	return nil
}

func (m *MemoryStore) Delete() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = ""
	return nil
}
