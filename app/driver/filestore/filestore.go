package filestore

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// FileStore persists the cache blob as a single file, the process-local
// analogue of the platform's async storage. Implements port.DurableStore.
type FileStore struct {
	path string
}

// New creates a file store at path, creating parent directories.
func New(path string) (*FileStore, error) {
	if path == "" {
		return nil, fmt.Errorf("store path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("failed to create store directory: %w", err)
	}
	return &FileStore{path: path}, nil
}

// Load returns the persisted blob, or nil when none has been written.
func (s *FileStore) Load(_ context.Context) ([]byte, error) {
	blob, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read store: %w", err)
	}
	return blob, nil
}

// Save replaces the blob. Write-then-rename keeps a crashed write from
// leaving a truncated snapshot behind.
func (s *FileStore) Save(_ context.Context, data []byte) error {
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("failed to write store: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("failed to replace store: %w", err)
	}
	return nil
}

// Clear removes the blob. Missing is not an error.
func (s *FileStore) Clear(_ context.Context) error {
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to clear store: %w", err)
	}
	return nil
}
