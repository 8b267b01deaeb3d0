package db

import (
	"path/filepath"
	"testing"
)

func TestInitDatabase(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "nested", "history.db")

	database, err := InitDatabase(dbPath)
	if err != nil {
		t.Fatalf("InitDatabase() error = %v", err)
	}
	defer database.Close()

	count, err := CountHistory(database)
	if err != nil {
		t.Fatalf("CountHistory() error = %v", err)
	}
	if count != 0 {
		t.Errorf("new database has %d entries, want 0", count)
	}
}

func TestRecordAndListHistory(t *testing.T) {
	database, err := InitDatabase(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("InitDatabase() error = %v", err)
	}
	defer database.Close()

	entries := []CommandEntry{
		{DeviceID: "tv-1", Component: "main", Capability: "switch", Command: "on", Success: true, Response: `{}`},
		{DeviceID: "tv-1", Component: "main", Capability: "audioVolume", Command: "setVolume", Arguments: "[30]", Success: true, Response: `{}`},
		{DeviceID: "tv-2", Component: "main", Capability: "switch", Command: "off", Success: false, Error: "API error (500): device offline"},
	}
	for _, e := range entries {
		if err := RecordCommand(database, e); err != nil {
			t.Fatalf("RecordCommand() error = %v", err)
		}
	}

	all, err := ListHistory(database, "", 10)
	if err != nil {
		t.Fatalf("ListHistory() error = %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("ListHistory() count = %d, want 3", len(all))
	}
	// Newest first
	if all[0].DeviceID != "tv-2" || all[0].Command != "off" {
		t.Errorf("first entry = %s/%s, want tv-2/off", all[0].DeviceID, all[0].Command)
	}
	if all[0].Success {
		t.Error("failed command should have Success = false")
	}
	if all[0].Error == "" {
		t.Error("failed command should carry the error message")
	}
}

func TestListHistory_DeviceFilter(t *testing.T) {
	database, err := InitDatabase(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("InitDatabase() error = %v", err)
	}
	defer database.Close()

	RecordCommand(database, CommandEntry{DeviceID: "tv-1", Component: "main", Capability: "switch", Command: "on", Success: true})
	RecordCommand(database, CommandEntry{DeviceID: "tv-2", Component: "main", Capability: "switch", Command: "on", Success: true})

	got, err := ListHistory(database, "tv-2", 10)
	if err != nil {
		t.Fatalf("ListHistory() error = %v", err)
	}
	if len(got) != 1 || got[0].DeviceID != "tv-2" {
		t.Errorf("ListHistory(tv-2) = %+v, want single tv-2 entry", got)
	}
}

func TestListHistory_Limit(t *testing.T) {
	database, err := InitDatabase(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("InitDatabase() error = %v", err)
	}
	defer database.Close()

	for i := 0; i < 5; i++ {
		RecordCommand(database, CommandEntry{DeviceID: "tv-1", Component: "main", Capability: "switch", Command: "on", Success: true})
	}

	got, err := ListHistory(database, "", 2)
	if err != nil {
		t.Fatalf("ListHistory() error = %v", err)
	}
	if len(got) != 2 {
		t.Errorf("ListHistory() with limit 2 = %d entries", len(got))
	}
}
