// Package state persists the per-player game record. The record grows
// monotonically during play and is wiped only by an explicit reset.
package state

import (
	"sync"

	"go.uber.org/zap"

	"github.com/door66/lost-souls/internal/types"
)

// Store is the persistence adapter for player state. Get on an unknown
// player returns nil without error; callers create a fresh state then.
type Store interface {
	Get(playerID string) (*types.PlayerState, error)
	Put(playerID string, state *types.PlayerState) error
	Delete(playerID string) error
	Close() error
}

// Open builds the store named by driver ("file" or "sqlite3"). When the
// backing storage cannot be opened the game degrades to an in-memory store
// that persists nothing, rather than refusing to start.
func Open(driver, path string, logger *zap.Logger) Store {
	var (
		store Store
		err   error
	)
	switch driver {
	case "sqlite3":
		store, err = NewSQLiteStore(path)
	case "file", "":
		store, err = NewFileStore(path)
	default:
		logger.Warn("Unknown storage driver, using file store",
			zap.String("driver", driver))
		store, err = NewFileStore(path)
	}
	if err != nil {
		logger.Warn("Storage unavailable, falling back to in-memory state",
			zap.String("driver", driver),
			zap.String("path", path),
			zap.Error(err))
		return NewMemoryStore()
	}
	return store
}

// MemoryStore keeps player state in process memory only. Used in tests and
// as the degraded mode when durable storage is unavailable. Like the durable
// stores, it never shares live state with callers: Get and Put copy, so a
// reader can never observe a concurrent writer's mutations mid-flight.
type MemoryStore struct {
	mu     sync.RWMutex
	states map[string]*types.PlayerState
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		states: make(map[string]*types.PlayerState),
	}
}

// Get returns the stored state, or nil for an unknown player.
func (ms *MemoryStore) Get(playerID string) (*types.PlayerState, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	state, ok := ms.states[playerID]
	if !ok {
		return nil, nil
	}
	return state.Clone(), nil
}

// Put stores a copy of the state.
func (ms *MemoryStore) Put(playerID string, state *types.PlayerState) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	ms.states[playerID] = state.Clone()
	return nil
}

// Delete removes the player's state entirely.
func (ms *MemoryStore) Delete(playerID string) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	delete(ms.states, playerID)
	return nil
}

// Close is a no-op.
func (ms *MemoryStore) Close() error {
	return nil
}
