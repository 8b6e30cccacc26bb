package state

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/door66/lost-souls/internal/types"
)

// FileStore persists one JSON file per player under a state directory.
type FileStore struct {
	dir string
	mu  sync.RWMutex
}

// NewFileStore creates the state directory if needed.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create state directory: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

// Get loads a player's state from disk, or nil if none exists yet.
func (fs *FileStore) Get(playerID string) (*types.PlayerState, error) {
	fs.mu.RLock()
	defer fs.mu.RUnlock()

	data, err := os.ReadFile(fs.path(playerID))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read player state: %w", err)
	}

	var state types.PlayerState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("failed to parse player state: %w", err)
	}
	state.Normalize()
	return &state, nil
}

// Put writes a player's state to disk.
func (fs *FileStore) Put(playerID string, state *types.PlayerState) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal player state: %w", err)
	}
	if err := os.WriteFile(fs.path(playerID), data, 0644); err != nil {
		return fmt.Errorf("failed to write player state: %w", err)
	}
	return nil
}

// Delete removes the player's state file. Deleting a missing file is fine.
func (fs *FileStore) Delete(playerID string) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	if err := os.Remove(fs.path(playerID)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete player state: %w", err)
	}
	return nil
}

// Close is a no-op.
func (fs *FileStore) Close() error {
	return nil
}

func (fs *FileStore) path(playerID string) string {
	// Player ids are server-issued UUIDs; Base guards against a crafted id
	// escaping the state directory.
	return filepath.Join(fs.dir, filepath.Base(playerID)+".json")
}
