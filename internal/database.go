package internal

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

const createKVTableSQL = `
CREATE TABLE IF NOT EXISTS chatDiskKV (
	key TEXT PRIMARY KEY,
	value TEXT
)`

// OpenDatabase opens (creating if needed) the SQLite database backing the key-value slot
func OpenDatabase(path string) (*sql.DB, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, &StorageError{Path: path, Op: "open", Err: err}
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, &StorageError{Path: path, Op: "open", Err: err}
	}
	// one connection keeps :memory: databases coherent and serializes writers
	db.SetMaxOpenConns(1)

	// Test connection
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, &StorageError{Path: path, Op: "open", Err: fmt.Errorf("database ping failed: %w", err)}
	}

	if err := EnsureKVTable(db); err != nil {
		db.Close()
		return nil, &StorageError{Path: path, Op: "open", Err: err}
	}

	return db, nil
}

// EnsureKVTable creates the chatDiskKV table if it does not exist
func EnsureKVTable(db *sql.DB) error {
	if _, err := db.Exec(createKVTableSQL); err != nil {
		return fmt.Errorf("failed to create chatDiskKV table: %w", err)
	}
	return nil
}

// GetKV reads a single value from chatDiskKV
func GetKV(db *sql.DB, key string) (string, bool, error) {
	var value sql.NullString
	err := db.QueryRow("SELECT value FROM chatDiskKV WHERE key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("query failed: %w", err)
	}
	if !value.Valid {
		return "", false, nil
	}
	return value.String, true, nil
}

// SetKV upserts a single value into chatDiskKV
func SetKV(db *sql.DB, key, value string) error {
	_, err := db.Exec(
		"INSERT INTO chatDiskKV (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value",
		key, value,
	)
	if err != nil {
		return fmt.Errorf("upsert failed: %w", err)
	}
	return nil
}

// QueryChatDiskKV lists key/value pairs whose key matches a LIKE pattern
func QueryChatDiskKV(db *sql.DB, pattern string) ([]KeyValuePair, error) {
	query := "SELECT key, value FROM chatDiskKV WHERE key LIKE ? AND value IS NOT NULL"
	rows, err := db.Query(query, pattern)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	var pairs []KeyValuePair
	for rows.Next() {
		var pair KeyValuePair
		var value sql.NullString
		if err := rows.Scan(&pair.Key, &value); err != nil {
			return nil, fmt.Errorf("scan failed: %w", err)
		}
		if value.Valid {
			pair.Value = value.String
			pairs = append(pairs, pair)
		}
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return pairs, nil
}

// KeyValuePair represents a key-value pair from chatDiskKV
type KeyValuePair struct {
	Key   string
	Value string
}
