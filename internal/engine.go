package internal

import (
	"sync"
)

// Engine is the entry point for presentation layers: it owns the session store
// and the single active turn controller.
type Engine struct {
	mu        sync.Mutex
	store     *SessionStore
	generator Generator
	policy    TurnPolicy
	active    *TurnController
}

// NewEngine wires a store, a response generator and a turn policy
func NewEngine(store *SessionStore, generator Generator, policy TurnPolicy) *Engine {
	if generator == nil {
		generator = NewTemplateGenerator(nil)
	}
	return &Engine{
		store:     store,
		generator: generator,
		policy:    policy,
	}
}

// Store returns the underlying session store
func (e *Engine) Store() *SessionStore {
	return e.store
}

// CreateSession creates (or overwrites) a session
func (e *Engine) CreateSession(id, title string) (*ChatSession, error) {
	return e.store.Create(id, title)
}

// GetSession returns a copy of the session with id
func (e *Engine) GetSession(id string) (*ChatSession, bool) {
	return e.store.Get(id)
}

// UpdateSession applies caller metadata edits such as rename, pin or tags
func (e *Engine) UpdateSession(id string, patch SessionPatch) error {
	return e.store.Update(id, patch)
}

// DeleteSession removes a session, retiring its controller first if it is active
func (e *Engine) DeleteSession(id string) error {
	e.mu.Lock()
	if e.active != nil && e.active.SessionID() == id {
		e.active.Close()
		e.active = nil
	}
	e.mu.Unlock()

	return e.store.Delete(id)
}

// ListSessions returns every session, most recently active first
func (e *Engine) ListSessions() []*ChatSession {
	return e.store.List()
}

// Open makes id the active session, creating it on first access.
// The previously active controller is torn down so its stale turns cannot leak into the new session.
// The returned error is only ever a non-fatal StoreWriteError.
func (e *Engine) Open(id string) (*TurnController, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.active != nil && e.active.SessionID() == id {
		return e.active, nil
	}

	if e.active != nil {
		LogDebug("Switching from chat %s to %s", e.active.SessionID(), id)
		e.active.Close()
		e.active = nil
	}

	session, err := e.store.GetOrCreate(id)
	e.active = NewTurnController(session, e.store, e.generator, e.policy)
	LogDebug("Loaded chat session %s (%d messages)", id, len(session.Messages))
	return e.active, err
}

// NewSession opens a freshly generated session id
func (e *Engine) NewSession() (*TurnController, error) {
	return e.Open(NewChatID())
}

// Resume opens the most recently updated session, or a new one when none exist
func (e *Engine) Resume() (*TurnController, error) {
	sessions := e.store.List()
	if len(sessions) > 0 {
		return e.Open(sessions[0].ID)
	}
	return e.NewSession()
}

// Active returns the active controller, if any
func (e *Engine) Active() *TurnController {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.active
}

// SubmitMessage submits text to sessionID, switching to it if needed
func (e *Engine) SubmitMessage(sessionID, text string) error {
	ctrl, err := e.Open(sessionID)
	if err != nil && !IsWriteWarning(err) {
		return err
	}
	return ctrl.Submit(text)
}

// RegenerateLast regenerates the final answer of sessionID, switching to it if needed
func (e *Engine) RegenerateLast(sessionID string) error {
	ctrl, err := e.Open(sessionID)
	if err != nil && !IsWriteWarning(err) {
		return err
	}
	return ctrl.Regenerate()
}

// Subscribe observes status and message changes of sessionID
func (e *Engine) Subscribe(sessionID string, fn Observer) (func(), error) {
	ctrl, err := e.Open(sessionID)
	if err != nil && !IsWriteWarning(err) {
		return nil, err
	}
	return ctrl.Subscribe(fn), nil
}

// Close retires the active controller
func (e *Engine) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.active != nil {
		e.active.Close()
		e.active = nil
	}
}
