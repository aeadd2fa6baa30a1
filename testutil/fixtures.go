package testutil

import (
	"os"
	"path/filepath"
	"testing"
)

// SampleSessionsBlob is a persisted collection of two sessions.
// chat-1 is older and pinned; chat-2 was updated last.
const SampleSessionsBlob = `{
  "chat-1": {
    "id": "chat-1",
    "title": "Explain goroutines",
    "messages": [
      {"id": "1", "content": "Hello! I'm Aquilax.", "sender": "assistant", "timestamp": "2024-01-01T10:00:00Z", "messageType": "text", "metadata": {"tokenCount": 3, "confidence": 1}},
      {"id": "user_aaaa1111", "content": "Explain goroutines", "sender": "user", "timestamp": "2024-01-01T10:01:00Z", "messageType": "text"},
      {"id": "ai_bbbb2222", "content": "Goroutines are lightweight threads.", "sender": "ai", "timestamp": "2024-01-01T10:01:02Z", "metadata": {"tokenCount": 4, "confidence": 0.9, "processingTimeMs": 1200}}
    ],
    "createdAt": "2024-01-01T10:00:00Z",
    "updatedAt": "2024-01-01T10:01:02Z",
    "wordCount": 9,
    "tags": ["go"],
    "isPinned": true,
    "aiModel": "Aquilax Pro"
  },
  "chat-2": {
    "id": "chat-2",
    "title": "New Conversation",
    "messages": [
      {"id": "1", "content": "Hello! I'm Aquilax.", "sender": "assistant", "timestamp": "2024-01-02T09:00:00Z", "messageType": "text", "metadata": {"tokenCount": 3, "confidence": 1}}
    ],
    "createdAt": "2024-01-02T09:00:00Z",
    "updatedAt": "2024-01-02T09:00:00Z",
    "wordCount": 3,
    "tags": [],
    "isPinned": false,
    "aiModel": "Aquilax Pro"
  }
}`

// CreateSQLiteFixture creates a SQLite database file holding SampleSessionsBlob
func CreateSQLiteFixture(t *testing.T, dbPath string) {
	t.Helper()
	CreateSQLiteFixtureWithBlob(t, dbPath, SampleSessionsBlob)
}

// CreateSQLiteFixtureWithBlob creates a SQLite database file holding blob under SessionsKey
func CreateSQLiteFixtureWithBlob(t *testing.T, dbPath, blob string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		t.Fatalf("Failed to create fixture directory: %v", err)
	}

	db := openFileDB(t, dbPath)
	defer func() { _ = db.Close() }()

	if _, err := db.Exec(createKVTableSQL); err != nil {
		t.Fatalf("Failed to create table: %v", err)
	}
	InsertKV(t, db, SessionsKey, blob)
}

// CreateConfigFixture writes a YAML config file into dir and returns its path
func CreateConfigFixture(t *testing.T, dir, contents string) string {
	t.Helper()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(contents), 0644); err != nil {
		t.Fatalf("Failed to write config fixture: %v", err)
	}
	return path
}
