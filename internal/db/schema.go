// Package db provides the local command-history store.
package db

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // SQLite driver
)

const schema = `
-- Commands sent to devices, one row per command verb
CREATE TABLE IF NOT EXISTS command_history (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	device_id TEXT NOT NULL,
	component TEXT NOT NULL,
	capability TEXT NOT NULL,
	command TEXT NOT NULL,
	arguments TEXT, -- JSON array
	response TEXT,  -- raw API response JSON
	success INTEGER NOT NULL DEFAULT 1,
	error TEXT,
	created_at INTEGER NOT NULL DEFAULT (strftime('%s', 'now'))
);

CREATE INDEX IF NOT EXISTS idx_history_device ON command_history(device_id);
CREATE INDEX IF NOT EXISTS idx_history_created ON command_history(created_at);
`

// InitDatabase creates and initializes the history database with the schema.
// It creates the directory structure if it doesn't exist.
func InitDatabase(dbPath string) (*sql.DB, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return db, nil
}
