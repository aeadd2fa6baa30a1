package internal

import (
	"database/sql"
	"errors"
	"sync"
)

// DefaultStorageKey is the single key the session collection is persisted under
const DefaultStorageKey = "aquilax_chat_sessions"

// ErrQuotaExceeded is returned by a MemorySlot whose byte quota would be exceeded
var ErrQuotaExceeded = errors.New("storage quota exceeded")

// Slot is a durable key-value slot holding opaque string blobs
type Slot interface {
	Get(key string) (value string, ok bool, err error)
	Set(key, value string) error
}

// SQLiteSlot stores blobs in the chatDiskKV table
type SQLiteSlot struct {
	db   *sql.DB
	path string
}

// NewSQLiteSlot wraps an open database; path is only used in error messages
func NewSQLiteSlot(db *sql.DB, path string) *SQLiteSlot {
	return &SQLiteSlot{db: db, path: path}
}

// OpenSQLiteSlot opens the database at path and returns a slot backed by it
func OpenSQLiteSlot(path string) (*SQLiteSlot, error) {
	db, err := OpenDatabase(path)
	if err != nil {
		return nil, err
	}
	return NewSQLiteSlot(db, path), nil
}

// Get reads the blob stored under key
func (s *SQLiteSlot) Get(key string) (string, bool, error) {
	value, ok, err := GetKV(s.db, key)
	if err != nil {
		return "", false, &StorageError{Path: s.path, Op: "read", Err: err}
	}
	return value, ok, nil
}

// Set replaces the blob stored under key
func (s *SQLiteSlot) Set(key, value string) error {
	if err := SetKV(s.db, key, value); err != nil {
		return &StorageError{Path: s.path, Op: "write", Err: err}
	}
	return nil
}

// DB exposes the underlying database handle
func (s *SQLiteSlot) DB() *sql.DB {
	return s.db
}

// Close closes the underlying database
func (s *SQLiteSlot) Close() error {
	return s.db.Close()
}

// MemorySlot is an in-process slot with an optional byte quota.
// A zero quota means unlimited.
type MemorySlot struct {
	mu    sync.Mutex
	data  map[string]string
	quota int
}

// NewMemorySlot creates an empty in-memory slot
func NewMemorySlot(quota int) *MemorySlot {
	return &MemorySlot{data: make(map[string]string), quota: quota}
}

// Get reads the value stored under key
func (m *MemorySlot) Get(key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	value, ok := m.data[key]
	return value, ok, nil
}

// Set stores value under key unless doing so exceeds the quota
func (m *MemorySlot) Set(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.quota > 0 {
		size := len(key) + len(value)
		for k, v := range m.data {
			if k != key {
				size += len(k) + len(v)
			}
		}
		if size > m.quota {
			return ErrQuotaExceeded
		}
	}

	m.data[key] = value
	return nil
}
