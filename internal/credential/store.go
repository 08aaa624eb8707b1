// Package credential holds the bearer token for the current user session.
package credential

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Store is the single owner of the session credential. Implementations must
// tolerate concurrent Get and Clear from independent call sites.
type Store interface {
	Set(token string) error
	Get() (string, bool)
	Clear() error
	IsAuthenticated() bool
}

// FileStore persists the token to a JSON file so it survives process restarts
type FileStore struct {
	path string
	mu   sync.Mutex
}

type tokenFile struct {
	Version int       `json:"version"`
	Token   string    `json:"token"`
	SavedAt time.Time `json:"saved_at"`
}

// NewFileStore creates a store backed by the file at path
func NewFileStore(path string) *FileStore {
	return &FileStore{
		path: path,
	}
}

// Path returns the backing file path
func (s *FileStore) Path() string {
	return s.path
}

// Set replaces the stored token
func (s *FileStore) Set(token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.MarshalIndent(tokenFile{Version: 1, Token: token, SavedAt: time.Now().UTC()}, "", "  ")
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0700); err != nil {
		return fmt.Errorf("failed to create credentials directory: %w", err)
	}

	// Write then rename so a crash never leaves a half-written token behind
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return fmt.Errorf("failed to write credentials: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to write credentials: %w", err)
	}
	return nil
}

// Get returns the stored token. Missing or unreadable files read as absent.
func (s *FileStore) Get() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		return "", false
	}

	var file tokenFile
	if err := json.Unmarshal(data, &file); err != nil {
		return "", false
	}
	if file.Token == "" {
		return "", false
	}
	return file.Token, true
}

// Clear removes the stored token. Clearing an empty store is not an error.
func (s *FileStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove credentials: %w", err)
	}
	return nil
}

// IsAuthenticated reports whether a token is present
func (s *FileStore) IsAuthenticated() bool {
	_, ok := s.Get()
	return ok
}

// MemoryStore keeps the token in process memory only
type MemoryStore struct {
	mu    sync.RWMutex
	token string
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Set replaces the stored token
func (s *MemoryStore) Set(token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	return nil
}

// Get returns the stored token
func (s *MemoryStore) Get() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token, s.token != ""
}

// Clear removes the stored token
func (s *MemoryStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	return nil
}

// IsAuthenticated reports whether a token is present
func (s *MemoryStore) IsAuthenticated() bool {
	_, ok := s.Get()
	return ok
}
