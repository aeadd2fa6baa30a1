package internal

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"
)

// Status is the observable state of the assistant for one session
type Status string

const (
	StatusOnline   Status = "online"
	StatusThinking Status = "thinking"
	StatusOffline  Status = "offline"
	StatusError    Status = "error"
)

// EventType distinguishes observer notifications
type EventType string

const (
	EventStatus   EventType = "status"
	EventMessages EventType = "messages"
)

// Event is delivered to observers after every observable change
type Event struct {
	Type             EventType
	SessionID        string
	Status           Status
	Messages         []Message
	LastResponseTime time.Duration
}

// Observer receives controller events in mutation order.
// Observers run on whichever goroutine flushes the queue and must not block for long.
type Observer func(Event)

// ControllerState is a point-in-time copy of a controller's observable state
type ControllerState struct {
	SessionID        string
	Status           Status
	Messages         []Message
	LastResponseTime time.Duration
	InFlight         bool
	Offline          bool
	Closed           bool
}

// turnToken marks one in-flight turn; a turn may only commit while it is the active token
type turnToken struct {
	id     uint64
	cancel context.CancelFunc
	// restore is the answer a regeneration took off the transcript; it goes back if the turn never replaces it
	restore *Message
}

type observerEntry struct {
	id int
	fn Observer
}

// TurnController drives one conversational turn at a time for a single session
type TurnController struct {
	mu       sync.Mutex
	notifyMu sync.Mutex
	wg       sync.WaitGroup

	sessionID string
	store     *SessionStore
	generator Generator
	policy    TurnPolicy
	now       func() time.Time

	messages     []Message
	status       Status
	offline      bool
	closed       bool
	lastResponse time.Duration
	active       *turnToken
	generation   uint64

	observers    []observerEntry
	nextObserver int
	pending      []Event
}

// NewTurnController creates a controller for session, committing results to store
func NewTurnController(session *ChatSession, store *SessionStore, generator Generator, policy TurnPolicy) *TurnController {
	return &TurnController{
		sessionID: session.ID,
		store:     store,
		generator: generator,
		policy:    policy,
		now:       time.Now,
		messages:  CloneMessages(session.Messages),
		status:    StatusOnline,
	}
}

// SessionID returns the id of the session this controller drives
func (c *TurnController) SessionID() string {
	return c.sessionID
}

// Submit appends a user message and starts generating the reply in the background.
// It returns ErrEmptyInput, ErrControllerClosed, ErrOffline or ErrTurnInFlight without
// changing anything when the submission is rejected.
//
// A successful turn re-derives the session title from the first user message, unless
// the title was set to something else (see SessionStore.Update), which is kept.
func (c *TurnController) Submit(text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return ErrEmptyInput
	}

	c.mu.Lock()
	if err := c.admitLocked(true); err != nil {
		c.mu.Unlock()
		return err
	}

	tok, ctx := c.issueTokenLocked()
	start := c.now()
	history := recentHistory(c.messages, c.policy.historyWindow())

	c.messages = append(c.messages, Message{
		ID:        newMessageID("user"),
		Content:   text,
		Sender:    SenderUser,
		Timestamp: start,
		Kind:      KindText,
		Metadata:  &MessageMetadata{TokenCount: CountWords(text)},
	})
	c.status = StatusThinking
	c.queueLocked(EventMessages)
	c.queueLocked(EventStatus)

	latency := c.policy.SubmitLatency(text)
	c.wg.Add(1)
	c.mu.Unlock()
	c.flush()

	go c.runSubmit(ctx, tok, text, history, start, latency)
	return nil
}

func (c *TurnController) runSubmit(ctx context.Context, tok *turnToken, input string, history []Message, start time.Time, latency time.Duration) {
	defer c.wg.Done()
	defer tok.cancel()

	reply, err := c.generate(ctx, latency, input, history)
	finished := c.now()
	elapsed := finished.Sub(start)

	c.mu.Lock()
	if !c.isActiveLocked(tok) {
		c.mu.Unlock()
		LogDebug("Discarding stale turn %d for %s", tok.id, c.sessionID)
		return
	}
	c.active = nil

	var patch SessionPatch
	if err != nil {
		LogError("Error generating response: %v", &GenerationError{SessionID: c.sessionID, Err: err})
		c.messages = append(c.messages, Message{
			ID:        newMessageID("error"),
			Content:   ApologyText,
			Sender:    SenderAssistant,
			Timestamp: finished,
			Kind:      KindError,
			Metadata: &MessageMetadata{
				Confidence:       0,
				ProcessingTimeMs: elapsed.Milliseconds(),
			},
		})
		c.status = StatusError
	} else {
		c.messages = append(c.messages, Message{
			ID:        newMessageID("ai"),
			Content:   reply,
			Sender:    SenderAssistant,
			Timestamp: finished,
			Kind:      DetectKind(reply),
			Metadata: &MessageMetadata{
				TokenCount:       CountWords(reply),
				Confidence:       c.policy.FirstConfidence,
				ProcessingTimeMs: elapsed.Milliseconds(),
			},
		})
		c.status = StatusOnline
		c.lastResponse = elapsed
		patch.Title = c.derivedTitleLocked()
	}
	c.applyOfflineLocked()

	patch.Messages = CloneMessages(c.messages)
	c.commitLocked(patch)
	c.queueLocked(EventMessages)
	c.queueLocked(EventStatus)
	c.mu.Unlock()
	c.flush()
}

// Regenerate replaces the trailing assistant answer with a fresh one.
// Failures are logged and leave the previous answer in place.
func (c *TurnController) Regenerate() error {
	c.mu.Lock()
	if err := c.admitLocked(false); err != nil {
		c.mu.Unlock()
		return err
	}
	if len(c.messages) < 2 {
		c.mu.Unlock()
		return ErrNothingToRegenerate
	}

	tok, ctx := c.issueTokenLocked()

	if last := c.messages[len(c.messages)-1]; last.Sender == SenderAssistant {
		tok.restore = &last
		c.messages = CloneMessages(c.messages[:len(c.messages)-1])
	}

	input, _ := LastUserMessage(c.messages)
	history := recentHistory(c.messages, c.policy.historyWindow())

	c.status = StatusThinking
	c.queueLocked(EventMessages)
	c.queueLocked(EventStatus)

	latency := c.policy.RegenerateLatency
	c.wg.Add(1)
	c.mu.Unlock()
	c.flush()

	go c.runRegenerate(ctx, tok, input, history, latency)
	return nil
}

func (c *TurnController) runRegenerate(ctx context.Context, tok *turnToken, input string, history []Message, latency time.Duration) {
	defer c.wg.Done()
	defer tok.cancel()

	reply, err := c.generate(ctx, latency, input, history)

	c.mu.Lock()
	if !c.isActiveLocked(tok) {
		c.mu.Unlock()
		LogDebug("Discarding stale regeneration %d for %s", tok.id, c.sessionID)
		return
	}
	c.active = nil

	if err != nil {
		LogWarn("Error regenerating response: %v", &GenerationError{SessionID: c.sessionID, Err: err})
		if tok.restore != nil {
			c.messages = append(c.messages, *tok.restore)
			c.queueLocked(EventMessages)
		}
		c.status = StatusOnline
		c.applyOfflineLocked()
		c.queueLocked(EventStatus)
		c.mu.Unlock()
		c.flush()
		return
	}

	tok.restore = nil
	c.messages = append(c.messages, Message{
		ID:        newMessageID("ai_regen"),
		Content:   reply,
		Sender:    SenderAssistant,
		Timestamp: c.now(),
		Kind:      DetectKind(reply),
		Metadata: &MessageMetadata{
			TokenCount:       CountWords(reply),
			Confidence:       c.policy.RegenerateConfidence,
			ProcessingTimeMs: latency.Milliseconds(),
		},
	})
	c.status = StatusOnline
	c.applyOfflineLocked()

	c.commitLocked(SessionPatch{Messages: CloneMessages(c.messages)})
	c.queueLocked(EventMessages)
	c.queueLocked(EventStatus)
	c.mu.Unlock()
	c.flush()
}

// Close retires the controller. Any in-flight turn is cancelled and its result discarded.
func (c *TurnController) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	c.closed = true
	c.cancelActiveLocked()
	c.observers = nil
	c.pending = nil
}

// SetOffline toggles the external connectivity signal. While offline, Submit is rejected.
func (c *TurnController) SetOffline(offline bool) {
	c.mu.Lock()
	if c.closed || c.offline == offline {
		c.mu.Unlock()
		return
	}

	c.offline = offline
	before := c.status
	if c.status != StatusThinking {
		if offline {
			c.status = StatusOffline
		} else if c.status == StatusOffline {
			c.status = StatusOnline
		}
	}
	if c.status != before {
		c.queueLocked(EventStatus)
	}
	c.mu.Unlock()
	c.flush()
}

// Subscribe registers an observer and returns a function that removes it
func (c *TurnController) Subscribe(fn Observer) func() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return func() {}
	}

	c.nextObserver++
	id := c.nextObserver
	c.observers = append(c.observers, observerEntry{id: id, fn: fn})

	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		for i, entry := range c.observers {
			if entry.id == id {
				c.observers = append(c.observers[:i:i], c.observers[i+1:]...)
				return
			}
		}
	}
}

// Snapshot returns a copy of the controller's observable state
func (c *TurnController) Snapshot() ControllerState {
	c.mu.Lock()
	defer c.mu.Unlock()

	return ControllerState{
		SessionID:        c.sessionID,
		Status:           c.status,
		Messages:         CloneMessages(c.messages),
		LastResponseTime: c.lastResponse,
		InFlight:         c.active != nil,
		Offline:          c.offline,
		Closed:           c.closed,
	}
}

// Status returns the current status
func (c *TurnController) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

// Wait blocks until every turn started so far has finished or been discarded
func (c *TurnController) Wait() {
	c.wg.Wait()
}

// admitLocked applies the guards shared by Submit and Regenerate
func (c *TurnController) admitLocked(submit bool) error {
	if c.closed {
		return ErrControllerClosed
	}
	if submit && c.offline {
		return ErrOffline
	}
	if c.status == StatusThinking && !c.policy.SupersedeInFlight {
		return ErrTurnInFlight
	}
	return nil
}

// issueTokenLocked invalidates any pending turn and makes a fresh token active
func (c *TurnController) issueTokenLocked() (*turnToken, context.Context) {
	c.cancelActiveLocked()

	var (
		ctx    context.Context
		cancel context.CancelFunc
	)
	if c.policy.TurnTimeout > 0 {
		ctx, cancel = context.WithTimeout(context.Background(), c.policy.TurnTimeout)
	} else {
		ctx, cancel = context.WithCancel(context.Background())
	}

	c.generation++
	tok := &turnToken{id: c.generation, cancel: cancel}
	c.active = tok
	return tok, ctx
}

// cancelActiveLocked invalidates the pending turn. A superseded regeneration puts
// back the answer it removed so the next turn builds on an intact transcript.
func (c *TurnController) cancelActiveLocked() {
	if c.active == nil {
		return
	}
	c.active.cancel()
	if restore := c.active.restore; restore != nil && !c.closed {
		c.messages = append(c.messages, *restore)
		c.active.restore = nil
		c.queueLocked(EventMessages)
	}
	c.active = nil
}

func (c *TurnController) isActiveLocked(tok *turnToken) bool {
	return !c.closed && c.active == tok
}

func (c *TurnController) applyOfflineLocked() {
	if c.offline {
		c.status = StatusOffline
	}
}

// derivedTitleLocked returns the title to store after a successful turn.
// A title the caller set explicitly is kept.
func (c *TurnController) derivedTitleLocked() *string {
	first, ok := FirstUserMessage(c.messages)
	if !ok {
		return nil
	}
	title := GenerateChatTitle(first)

	if current, ok := c.store.Get(c.sessionID); ok {
		if current.Title != DefaultTitle && current.Title != title {
			return nil
		}
	}
	return &title
}

// commitLocked writes through to the store while the turn still holds c.mu,
// so a superseded turn can never write after a newer one.
func (c *TurnController) commitLocked(patch SessionPatch) {
	if _, ok := c.store.Get(c.sessionID); !ok {
		LogDebug("Session %s was deleted; turn result kept in memory only", c.sessionID)
		return
	}
	if err := c.store.Update(c.sessionID, patch); err != nil {
		LogWarn("Chat session %s not persisted: %v", c.sessionID, err)
	}
}

func (c *TurnController) generate(ctx context.Context, latency time.Duration, input string, history []Message) (reply string, err error) {
	if latency > 0 {
		timer := time.NewTimer(latency)
		select {
		case <-ctx.Done():
			timer.Stop()
			return "", ctx.Err()
		case <-timer.C:
		}
	}

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("generator panic: %v", r)
		}
	}()
	return c.generator.Generate(ctx, input, history)
}

func (c *TurnController) queueLocked(t EventType) {
	if c.closed || len(c.observers) == 0 {
		return
	}
	c.pending = append(c.pending, Event{
		Type:             t,
		SessionID:        c.sessionID,
		Status:           c.status,
		Messages:         CloneMessages(c.messages),
		LastResponseTime: c.lastResponse,
	})
}

// flush delivers queued events in order. Only one goroutine delivers at a time;
// events queued while another goroutine is delivering are picked up by that goroutine.
func (c *TurnController) flush() {
	for {
		if !c.notifyMu.TryLock() {
			return
		}
		for {
			c.mu.Lock()
			events := c.pending
			c.pending = nil
			observers := append([]observerEntry(nil), c.observers...)
			c.mu.Unlock()

			if len(events) == 0 {
				break
			}
			for _, ev := range events {
				for _, obs := range observers {
					obs.fn(ev)
				}
			}
		}
		c.notifyMu.Unlock()

		c.mu.Lock()
		more := len(c.pending) > 0
		c.mu.Unlock()
		if !more {
			return
		}
	}
}

// recentHistory returns a copy of the last n messages
func recentHistory(msgs []Message, n int) []Message {
	if len(msgs) > n {
		msgs = msgs[len(msgs)-n:]
	}
	return CloneMessages(msgs)
}
