package state

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/door66/lost-souls/internal/types"
)

// SQLiteStore persists player state as JSON rows in a single SQLite table,
// one row per player.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (and if needed initializes) the database at dsn.
func NewSQLiteStore(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open state database: %w", err)
	}

	const schema = `CREATE TABLE IF NOT EXISTS player_state (
		player_id  TEXT PRIMARY KEY,
		data       TEXT NOT NULL,
		updated_at TIMESTAMP NOT NULL
	)`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize state database: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Get loads a player's state, or nil if none exists yet.
func (ss *SQLiteStore) Get(playerID string) (*types.PlayerState, error) {
	var data string
	err := ss.db.QueryRow(
		"SELECT data FROM player_state WHERE player_id = ?", playerID,
	).Scan(&data)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read player state: %w", err)
	}

	var state types.PlayerState
	if err := json.Unmarshal([]byte(data), &state); err != nil {
		return nil, fmt.Errorf("failed to parse player state: %w", err)
	}
	state.Normalize()
	return &state, nil
}

// Put upserts a player's state.
func (ss *SQLiteStore) Put(playerID string, state *types.PlayerState) error {
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to marshal player state: %w", err)
	}
	_, err = ss.db.Exec(
		`INSERT INTO player_state (player_id, data, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(player_id) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at`,
		playerID, string(data), time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to write player state: %w", err)
	}
	return nil
}

// Delete removes the player's row. Deleting a missing row is fine.
func (ss *SQLiteStore) Delete(playerID string) error {
	if _, err := ss.db.Exec("DELETE FROM player_state WHERE player_id = ?", playerID); err != nil {
		return fmt.Errorf("failed to delete player state: %w", err)
	}
	return nil
}

// Close closes the database.
func (ss *SQLiteStore) Close() error {
	return ss.db.Close()
}
