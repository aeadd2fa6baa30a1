package testutil

import (
	"database/sql"
	"testing"

	_ "modernc.org/sqlite"
)

// SessionsKey is the key the session collection blob is stored under
const SessionsKey = "aquilax_chat_sessions"

const createKVTableSQL = `
CREATE TABLE IF NOT EXISTS chatDiskKV (
	key TEXT PRIMARY KEY,
	value TEXT
)`

// CreateInMemoryDB creates an in-memory SQLite database with the chatDiskKV table
func CreateInMemoryDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("Failed to create in-memory database: %v", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(createKVTableSQL); err != nil {
		db.Close()
		t.Fatalf("Failed to create chatDiskKV table: %v", err)
	}

	t.Cleanup(func() { _ = db.Close() })
	return db
}

// CreateTestDB creates an in-memory database holding SampleSessionsBlob
func CreateTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db := CreateInMemoryDB(t)
	InsertKV(t, db, SessionsKey, SampleSessionsBlob)
	return db
}

// InsertKV upserts a raw value into chatDiskKV
func InsertKV(t *testing.T, db *sql.DB, key, value string) {
	t.Helper()
	_, err := db.Exec(
		"INSERT INTO chatDiskKV (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value",
		key, value,
	)
	if err != nil {
		t.Fatalf("Failed to insert %s: %v", key, err)
	}
}

// ReadKV returns the raw value stored under key, failing the test if it is missing
func ReadKV(t *testing.T, db *sql.DB, key string) string {
	t.Helper()
	var value string
	if err := db.QueryRow("SELECT value FROM chatDiskKV WHERE key = ?", key).Scan(&value); err != nil {
		t.Fatalf("Failed to read %s: %v", key, err)
	}
	return value
}
