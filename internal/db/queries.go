package db

import (
	"database/sql"
	"fmt"
	"time"
)

// CommandEntry is one recorded device command.
type CommandEntry struct {
	ID         int64
	DeviceID   string
	Component  string
	Capability string
	Command    string
	Arguments  string // JSON array, empty when the command takes none
	Response   string // raw API response, empty on failure
	Success    bool
	Error      string
	CreatedAt  time.Time
}

// RecordCommand inserts a command entry into the history.
func RecordCommand(db *sql.DB, entry CommandEntry) error {
	_, err := db.Exec(`
		INSERT INTO command_history
		(device_id, component, capability, command, arguments, response, success, error)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, entry.DeviceID, entry.Component, entry.Capability, entry.Command,
		entry.Arguments, entry.Response, entry.Success, entry.Error)
	if err != nil {
		return fmt.Errorf("failed to record command: %w", err)
	}
	return nil
}

// ListHistory returns the most recent command entries, newest first.
// deviceID filters to a single device when non-empty.
func ListHistory(db *sql.DB, deviceID string, limit int) ([]CommandEntry, error) {
	query := `
		SELECT id, device_id, component, capability, command,
		       COALESCE(arguments, ''), COALESCE(response, ''),
		       success, COALESCE(error, ''), created_at
		FROM command_history
	`
	args := []interface{}{}

	if deviceID != "" {
		query += " WHERE device_id = ?"
		args = append(args, deviceID)
	}

	query += " ORDER BY created_at DESC, id DESC LIMIT ?"
	args = append(args, limit)

	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query command history: %w", err)
	}
	defer rows.Close()

	var entries []CommandEntry
	for rows.Next() {
		var e CommandEntry
		var createdAt int64
		if err := rows.Scan(&e.ID, &e.DeviceID, &e.Component, &e.Capability, &e.Command,
			&e.Arguments, &e.Response, &e.Success, &e.Error, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan history entry: %w", err)
		}
		e.CreatedAt = time.Unix(createdAt, 0)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read history rows: %w", err)
	}

	return entries, nil
}

// CountHistory returns the total number of recorded commands.
func CountHistory(db *sql.DB) (int, error) {
	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM command_history").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count history: %w", err)
	}
	return count, nil
}
