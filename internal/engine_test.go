package internal

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEngine(t *testing.T, gen Generator) *Engine {
	t.Helper()
	store := NewSessionStore(NewMemorySlot(0), "")
	engine := NewEngine(store, gen, instantPolicy())
	t.Cleanup(engine.Close)
	return engine
}

func TestEngine_OpenCreatesOnFirstAccess(t *testing.T) {
	engine := newTestEngine(t, FixedGenerator("ok"))

	ctrl, err := engine.Open("chat-new")
	require.NoError(t, err)
	assert.Equal(t, "chat-new", ctrl.SessionID())

	session, ok := engine.GetSession("chat-new")
	require.True(t, ok)
	require.Len(t, session.Messages, 1)
	assert.Equal(t, WelcomeMessageID, session.Messages[0].ID)

	again, err := engine.Open("chat-new")
	require.NoError(t, err)
	assert.Same(t, ctrl, again)
}

func TestEngine_SwitchingTearsDownPrevious(t *testing.T) {
	gen := NewGatedGenerator()
	engine := newTestEngine(t, gen)

	first, err := engine.Open("chat-a")
	require.NoError(t, err)
	require.NoError(t, engine.SubmitMessage("chat-a", "hello a"))
	select {
	case <-gen.Started():
	case <-time.After(2 * time.Second):
		t.Fatal("generator was not called")
	}

	second, err := engine.Open("chat-b")
	require.NoError(t, err)
	assert.NotSame(t, first, second)
	assert.True(t, first.Snapshot().Closed)

	gen.Release()
	first.Wait()

	a, _ := engine.GetSession("chat-a")
	assert.Len(t, a.Messages, 1, "the retired session must not receive the stale reply")
	assert.Same(t, second, engine.Active())
}

func TestEngine_SubmitAndRegenerate(t *testing.T) {
	engine := newTestEngine(t, FixedGenerator("answer"))

	require.NoError(t, engine.SubmitMessage("chat-1", "question"))
	engine.Active().Wait()

	session, _ := engine.GetSession("chat-1")
	require.Len(t, session.Messages, 3)
	assert.Equal(t, "question", session.Title)

	require.NoError(t, engine.RegenerateLast("chat-1"))
	engine.Active().Wait()

	session, _ = engine.GetSession("chat-1")
	require.Len(t, session.Messages, 3)
	assert.Contains(t, session.Messages[2].ID, "ai_regen_")
}

func TestEngine_Subscribe(t *testing.T) {
	engine := newTestEngine(t, FixedGenerator("answer"))

	statuses := make(chan Status, 8)
	unsubscribe, err := engine.Subscribe("chat-1", func(ev Event) {
		if ev.Type == EventStatus {
			statuses <- ev.Status
		}
	})
	require.NoError(t, err)
	defer unsubscribe()

	require.NoError(t, engine.SubmitMessage("chat-1", "hi"))
	engine.Active().Wait()

	assert.Equal(t, StatusThinking, <-statuses)
	assert.Equal(t, StatusOnline, <-statuses)
}

func TestEngine_DeleteActiveSession(t *testing.T) {
	engine := newTestEngine(t, FixedGenerator("answer"))

	ctrl, err := engine.Open("chat-1")
	require.NoError(t, err)
	require.NoError(t, engine.DeleteSession("chat-1"))

	assert.True(t, ctrl.Snapshot().Closed)
	assert.Nil(t, engine.Active())
	_, ok := engine.GetSession("chat-1")
	assert.False(t, ok)
}

func TestEngine_ResumeMostRecent(t *testing.T) {
	engine := newTestEngine(t, FixedGenerator("answer"))

	ctrl, err := engine.Resume()
	require.NoError(t, err)
	assert.Regexp(t, `^chat-\d+-[0-9a-z]{9}$`, ctrl.SessionID())

	_, err = engine.CreateSession("touched", "")
	require.NoError(t, err)
	time.Sleep(2 * time.Millisecond)
	require.NoError(t, engine.UpdateSession("touched", SessionPatch{IsPinned: BoolPtr(true)}))

	resumed, err := engine.Resume()
	require.NoError(t, err)
	assert.Equal(t, "touched", resumed.SessionID())
}

func TestEngine_ListSessions(t *testing.T) {
	engine := newTestEngine(t, nil)

	_, _ = engine.CreateSession("a", "A")
	_, _ = engine.CreateSession("b", "B")

	list := engine.ListSessions()
	require.Len(t, list, 2)
	assert.NotNil(t, engine.Store())
}
