package internal

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/iksnae/chatsession/testutil"
)

func TestEncodeDecodeSessions(t *testing.T) {
	session := CreateTestSession("chat-1")
	session.CreatedAt = time.Date(2024, 3, 1, 8, 30, 0, 123456789, time.FixedZone("CET", 3600))

	blob, err := EncodeSessions(map[string]*ChatSession{"chat-1": session})
	if err != nil {
		t.Fatalf("EncodeSessions() error = %v", err)
	}

	decoded, err := DecodeSessions(blob)
	if err != nil {
		t.Fatalf("DecodeSessions() error = %v", err)
	}

	got := decoded["chat-1"]
	if got == nil {
		t.Fatal("session missing after decode")
	}
	if !got.CreatedAt.Equal(session.CreatedAt) {
		t.Errorf("CreatedAt = %v, want %v", got.CreatedAt, session.CreatedAt)
	}
	if len(got.Messages) != len(session.Messages) {
		t.Fatalf("decoded %d messages, want %d", len(got.Messages), len(session.Messages))
	}
	for i := range got.Messages {
		if !got.Messages[i].Timestamp.Equal(session.Messages[i].Timestamp) {
			t.Errorf("message %d timestamp not preserved", i)
		}
	}
	if got.Messages[2].Metadata == nil || got.Messages[2].Metadata.Confidence != 0.9 {
		t.Errorf("metadata not preserved: %+v", got.Messages[2].Metadata)
	}
}

func TestEncodeSessions_TextTimestamps(t *testing.T) {
	session := CreateTestSession("chat-1")
	blob, err := EncodeSessions(map[string]*ChatSession{"chat-1": session})
	if err != nil {
		t.Fatalf("EncodeSessions() error = %v", err)
	}

	var raw map[string]map[string]interface{}
	testutil.JSONUnmarshal(t, []byte(blob), &raw)

	if _, ok := raw["chat-1"]["createdAt"].(string); !ok {
		t.Errorf("createdAt should be stored as text, got %T", raw["chat-1"]["createdAt"])
	}
	if !strings.Contains(blob, `"createdAt":"2024-01-01T12:00:00Z"`) {
		t.Errorf("timestamps should be ISO-8601 in UTC, got %s", blob)
	}
	if !strings.Contains(blob, `"tags":["test"]`) {
		t.Errorf("tags missing from %s", blob)
	}
}

func TestEncodeSessions_NilTagsAsArray(t *testing.T) {
	session := CreateTestSessionWithMessages("chat-1", nil)
	session.Tags = nil

	blob, err := EncodeSessions(map[string]*ChatSession{"chat-1": session})
	if err != nil {
		t.Fatalf("EncodeSessions() error = %v", err)
	}
	if !strings.Contains(blob, `"tags":[]`) {
		t.Errorf("nil tags should encode as [], got %s", blob)
	}
}

func TestDecodeSessions_Idempotent(t *testing.T) {
	first, err := DecodeSessions(testutil.SampleSessionsBlob)
	if err != nil {
		t.Fatalf("DecodeSessions() error = %v", err)
	}

	blob, err := EncodeSessions(first)
	if err != nil {
		t.Fatalf("EncodeSessions() error = %v", err)
	}
	second, err := DecodeSessions(blob)
	if err != nil {
		t.Fatalf("DecodeSessions() second pass error = %v", err)
	}

	a, _ := json.Marshal(first)
	b, _ := json.Marshal(second)
	if string(a) != string(b) {
		t.Errorf("load-save-load changed the collection:\n%s\n%s", a, b)
	}
}

func TestDecodeSessions_MissingIDUsesKey(t *testing.T) {
	blob := `{"chat-9":{"title":"t","messages":[],"createdAt":"2024-01-01T00:00:00Z","updatedAt":"2024-01-01T00:00:00Z","wordCount":0,"tags":[],"isPinned":false}}`
	sessions, err := DecodeSessions(blob)
	if err != nil {
		t.Fatalf("DecodeSessions() error = %v", err)
	}
	if sessions["chat-9"].ID != "chat-9" {
		t.Errorf("ID = %q, want chat-9", sessions["chat-9"].ID)
	}
}

func TestDecodeSessions_Errors(t *testing.T) {
	tests := []struct {
		name string
		blob string
	}{
		{"not json", "{"},
		{"wrong shape", `["a","b"]`},
		{"empty timestamp", `{"a":{"id":"a","createdAt":"","updatedAt":"2024-01-01T00:00:00Z"}}`},
		{"bad message timestamp", `{"a":{"id":"a","createdAt":"2024-01-01T00:00:00Z","updatedAt":"2024-01-01T00:00:00Z","messages":[{"id":"m","timestamp":"noon"}]}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := DecodeSessions(tt.blob); err == nil {
				t.Error("DecodeSessions() should fail")
			}
		})
	}
}
