package cmd

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/iksnae/chatsession/internal"
)

// useGenerator swaps the response generator for the duration of a test
func useGenerator(t *testing.T, g internal.Generator) {
	t.Helper()
	prev := newGenerator
	newGenerator = func() internal.Generator { return g }
	t.Cleanup(func() { newGenerator = prev })
}

func (e *testEnv) chat(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	stdout, _, err := runCommand(t, stdin, e.args(append([]string{"--no-latency", "chat"}, args...)...)...)
	return stdout, err
}

func TestChatCommand_SingleMessage(t *testing.T) {
	useGenerator(t, internal.FixedGenerator("Hi from Aquilax"))
	env := newTestEnv(t)

	stdout, err := env.chat(t, "", "--new", "-m", "Plan a weekend in Lisbon")
	if err != nil {
		t.Fatalf("chat error = %v", err)
	}
	if !strings.Contains(stdout, "Hi from Aquilax") {
		t.Errorf("reply not printed:\n%s", stdout)
	}

	sessions := env.load(t).List()
	if len(sessions) != 1 {
		t.Fatalf("got %d sessions, want 1", len(sessions))
	}
	session := sessions[0]
	if len(session.Messages) != 3 {
		t.Fatalf("got %d messages, want welcome, question and answer", len(session.Messages))
	}
	if session.Messages[1].Content != "Plan a weekend in Lisbon" || session.Messages[1].Sender != internal.SenderUser {
		t.Errorf("unexpected user message %+v", session.Messages[1])
	}
	if session.Messages[2].Content != "Hi from Aquilax" || session.Messages[2].Sender != internal.SenderAssistant {
		t.Errorf("unexpected assistant message %+v", session.Messages[2])
	}
	if session.Title != "Plan a weekend in Lisbon" {
		t.Errorf("Title = %q, want it derived from the first message", session.Title)
	}
}

func TestChatCommand_ExistingSession(t *testing.T) {
	useGenerator(t, internal.FixedGenerator("Sure."))
	env := newFixtureEnv(t)

	if _, err := env.chat(t, "", "chat-1", "-m", "Show an example"); err != nil {
		t.Fatalf("chat error = %v", err)
	}

	session, _ := env.load(t).Get("chat-1")
	if len(session.Messages) != 5 {
		t.Fatalf("got %d messages, want 5", len(session.Messages))
	}
	if session.Title != "Explain goroutines" {
		t.Errorf("existing title changed to %q", session.Title)
	}
	if !session.IsPinned {
		t.Error("chatting should not unpin the session")
	}
}

func TestChatCommand_ResumesMostRecent(t *testing.T) {
	useGenerator(t, internal.FixedGenerator("ok"))
	env := newFixtureEnv(t)

	if _, err := env.chat(t, "", "-m", "hello again"); err != nil {
		t.Fatalf("chat error = %v", err)
	}

	store := env.load(t)
	recent, _ := store.Get("chat-2")
	if len(recent.Messages) != 3 {
		t.Errorf("chat-2 has %d messages, want 3", len(recent.Messages))
	}
	older, _ := store.Get("chat-1")
	if len(older.Messages) != 3 {
		t.Errorf("chat-1 should be untouched, has %d messages", len(older.Messages))
	}
}

func TestChatCommand_GeneratorFailure(t *testing.T) {
	useGenerator(t, internal.FailingGenerator(errors.New("backend down")))
	env := newTestEnv(t)

	stdout, err := env.chat(t, "", "--new", "-m", "anyone there?")
	if err != nil {
		t.Fatalf("chat error = %v", err)
	}
	if !strings.Contains(stdout, "⚠️  Aquilax") {
		t.Errorf("failure should be shown as an error message:\n%s", stdout)
	}

	session := env.load(t).List()[0]
	last := session.Messages[len(session.Messages)-1]
	if last.EffectiveKind() != internal.KindError {
		t.Errorf("last message kind = %q, want error", last.EffectiveKind())
	}
}

func TestChatCommand_Interactive(t *testing.T) {
	useGenerator(t, internal.FixedGenerator("Answer"))
	env := newTestEnv(t)

	stdout, err := env.chat(t, "First question\n\n/regen\n/help\n/quit\nnever sent\n", "--new")
	if err != nil {
		t.Fatalf("chat error = %v", err)
	}
	if !strings.Contains(stdout, "/offline") {
		t.Errorf("/help output missing:\n%s", stdout)
	}

	session := env.load(t).List()[0]
	if len(session.Messages) != 3 {
		t.Fatalf("got %d messages, want 3 after a regenerate", len(session.Messages))
	}
	last := session.Messages[2]
	if last.Metadata == nil || last.Metadata.Confidence != internal.DefaultTurnPolicy().RegenerateConfidence {
		t.Errorf("last answer should be the regenerated one, got %+v", last.Metadata)
	}
	for _, msg := range session.Messages {
		if msg.Content == "never sent" {
			t.Error("input after /quit should be ignored")
		}
	}
}

func TestChatCommand_Offline(t *testing.T) {
	useGenerator(t, internal.FixedGenerator("Answer"))
	env := newFixtureEnv(t)

	if _, err := env.chat(t, "/offline\nhello\n/online\n/quit\n", "chat-2"); err != nil {
		t.Fatalf("chat error = %v", err)
	}

	session, _ := env.load(t).Get("chat-2")
	if len(session.Messages) != 1 {
		t.Errorf("offline submit should not add messages, got %d", len(session.Messages))
	}
}

func TestChatLoop_History(t *testing.T) {
	store := internal.NewSessionStore(internal.NewMemorySlot(0), "")
	engine := internal.NewEngine(store, internal.FixedGenerator("Reply"), internal.DefaultTurnPolicy().WithoutLatency())
	defer engine.Close()

	ctrl, err := engine.NewSession()
	if err != nil {
		t.Fatalf("NewSession() error = %v", err)
	}

	var out, errOut bytes.Buffer
	if err := chatLoop(strings.NewReader("Tell me something\n/history\n"), &out, &errOut, ctrl); err != nil {
		t.Fatalf("chatLoop() error = %v", err)
	}

	if got := strings.Count(out.String(), "Tell me something"); got != 1 {
		t.Errorf("question shown %d times, want once from /history", got)
	}
	if got := strings.Count(out.String(), "👤 You"); got != 1 {
		t.Errorf("user label shown %d times, want 1", got)
	}
	if !strings.Contains(errOut.String(), "thinking") {
		t.Errorf("spinner message missing from stderr: %q", errOut.String())
	}
}

func TestRunTurn_NothingToRegenerate(t *testing.T) {
	store := internal.NewSessionStore(internal.NewMemorySlot(0), "")
	engine := internal.NewEngine(store, internal.FixedGenerator("Reply"), internal.DefaultTurnPolicy().WithoutLatency())
	defer engine.Close()

	ctrl, err := engine.NewSession()
	if err != nil {
		t.Fatalf("NewSession() error = %v", err)
	}

	var out, errOut bytes.Buffer
	if err := runTurn(&out, &errOut, ctrl, ctrl.Regenerate); err != nil {
		t.Errorf("runTurn() error = %v, want the rejection reported as a warning", err)
	}
	if n := len(ctrl.Snapshot().Messages); n != 1 {
		t.Errorf("got %d messages, want only the welcome", n)
	}
}
