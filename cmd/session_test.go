package cmd

import (
	"strings"
	"testing"

	"github.com/iksnae/chatsession/internal"
)

func TestNewCommand(t *testing.T) {
	env := newTestEnv(t)

	stdout, err := env.run(t, "new", "Trip", "planning")
	if err != nil {
		t.Fatalf("new error = %v", err)
	}

	id := strings.TrimSpace(stdout)
	session, ok := env.load(t).Get(id)
	if !ok {
		t.Fatalf("session %q was not persisted", id)
	}
	if session.Title != "Trip planning" {
		t.Errorf("Title = %q, want %q", session.Title, "Trip planning")
	}
	if len(session.Messages) != 1 || session.Messages[0].Sender != internal.SenderAssistant {
		t.Errorf("new session should hold only the welcome message, got %+v", session.Messages)
	}
}

func TestNewCommand_DefaultTitle(t *testing.T) {
	env := newTestEnv(t)

	stdout, err := env.run(t, "new")
	if err != nil {
		t.Fatalf("new error = %v", err)
	}

	session, ok := env.load(t).Get(strings.TrimSpace(stdout))
	if !ok {
		t.Fatal("session was not persisted")
	}
	if session.Title != internal.DefaultTitle {
		t.Errorf("Title = %q, want %q", session.Title, internal.DefaultTitle)
	}
}

func TestUpdateCommand(t *testing.T) {
	env := newFixtureEnv(t)

	_, err := env.run(t, "update", "chat-2", "--title", "Renamed", "--pin", "--tag", "a,b", "--summary", "short", "--model", "Aquilax Lite")
	if err != nil {
		t.Fatalf("update error = %v", err)
	}

	session, _ := env.load(t).Get("chat-2")
	if session.Title != "Renamed" {
		t.Errorf("Title = %q, want Renamed", session.Title)
	}
	if !session.IsPinned {
		t.Error("session should be pinned")
	}
	if strings.Join(session.Tags, ",") != "a,b" {
		t.Errorf("Tags = %v, want [a b]", session.Tags)
	}
	if session.Summary != "short" {
		t.Errorf("Summary = %q, want short", session.Summary)
	}
	if session.ModelLabel != "Aquilax Lite" {
		t.Errorf("ModelLabel = %q, want Aquilax Lite", session.ModelLabel)
	}
}

func TestUpdateCommand_UnpinAndClearTags(t *testing.T) {
	env := newFixtureEnv(t)

	if _, err := env.run(t, "update", "chat-1", "--unpin", "--clear-tags"); err != nil {
		t.Fatalf("update error = %v", err)
	}

	session, _ := env.load(t).Get("chat-1")
	if session.IsPinned {
		t.Error("session should be unpinned")
	}
	if len(session.Tags) != 0 {
		t.Errorf("Tags = %v, want none", session.Tags)
	}
	if session.Title != "Explain goroutines" {
		t.Errorf("untouched title changed to %q", session.Title)
	}
}

func TestUpdateCommand_Errors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{name: "nothing to update", args: []string{"update", "chat-1"}},
		{name: "pin and unpin", args: []string{"update", "chat-1", "--pin", "--unpin"}},
		{name: "unknown session", args: []string{"update", "missing", "--title", "x"}},
		{name: "missing id", args: []string{"update", "--title", "x"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newFixtureEnv(t)
			if _, err := env.run(t, tt.args...); err == nil {
				t.Error("update should fail")
			}
		})
	}
}

func TestDeleteCommand(t *testing.T) {
	env := newFixtureEnv(t)

	if _, err := env.run(t, "delete", "chat-1"); err != nil {
		t.Fatalf("delete error = %v", err)
	}

	store := env.load(t)
	if _, ok := store.Get("chat-1"); ok {
		t.Error("chat-1 should be deleted")
	}
	if _, ok := store.Get("chat-2"); !ok {
		t.Error("chat-2 should survive")
	}
}

func TestDeleteCommand_Alias(t *testing.T) {
	env := newFixtureEnv(t)

	if _, err := env.run(t, "rm", "chat-2"); err != nil {
		t.Fatalf("rm error = %v", err)
	}
	if _, ok := env.load(t).Get("chat-2"); ok {
		t.Error("chat-2 should be deleted")
	}
}

func TestDeleteCommand_NotFound(t *testing.T) {
	env := newFixtureEnv(t)

	if _, err := env.run(t, "delete", "missing"); err == nil {
		t.Error("deleting an unknown session should fail")
	}
	if n := len(env.load(t).List()); n != 2 {
		t.Errorf("store has %d sessions, want 2", n)
	}
}
