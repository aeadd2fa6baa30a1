package internal

import (
	"errors"
	"sort"
	"sync"
	"time"
)

// SessionStore is the single source of truth for chat sessions.
// Every mutation is written through to the slot as one blob under one key.
type SessionStore struct {
	mu       sync.Mutex
	slot     Slot
	key      string
	sessions map[string]*ChatSession
	now      func() time.Time
}

// StoreStats summarizes the persisted collection
type StoreStats struct {
	Sessions  int
	Messages  int
	Words     int
	BlobBytes int
}

// NewSessionStore creates a store over slot; call Load to read existing sessions
func NewSessionStore(slot Slot, key string) *SessionStore {
	if key == "" {
		key = DefaultStorageKey
	}
	return &SessionStore{
		slot:     slot,
		key:      key,
		sessions: make(map[string]*ChatSession),
		now:      time.Now,
	}
}

// OpenSessionStore creates a store and loads the persisted collection
func OpenSessionStore(slot Slot, key string) *SessionStore {
	store := NewSessionStore(slot, key)
	store.Load()
	return store
}

// Key returns the slot key the collection is persisted under
func (s *SessionStore) Key() string {
	return s.key
}

// Load replaces the in-memory collection with the persisted blob.
// A missing or unreadable blob leaves the store empty; the returned error is informational only.
func (s *SessionStore) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sessions = make(map[string]*ChatSession)

	blob, ok, err := s.slot.Get(s.key)
	if err != nil {
		LogError("Failed to load chat sessions: %v", err)
		return err
	}
	if !ok || blob == "" {
		LogDebug("No persisted chat sessions under %s", s.key)
		return nil
	}

	sessions, err := DecodeSessions(blob)
	if err != nil {
		parseErr := &ParseError{Source: "kv", Key: s.key, Err: err}
		LogError("Failed to load chat sessions: %v", parseErr)
		return parseErr
	}

	s.sessions = sessions
	LogDebug("Loaded %d chat session(s)", len(sessions))
	return nil
}

// Get returns a copy of the session with id, if present
func (s *SessionStore) Get(id string) (*ChatSession, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[id]
	if !ok {
		return nil, false
	}
	return session.Clone(), true
}

// Create seeds a new session with the welcome message and persists it.
// An existing session with the same id is overwritten.
// A non-nil error is a StoreWriteError: the session exists in memory regardless.
func (s *SessionStore) Create(id, title string) (*ChatSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session := s.newSession(id, title)
	s.sessions[id] = session
	return session.Clone(), s.persistLocked()
}

// GetOrCreate returns the session with id, creating it on first access
func (s *SessionStore) GetOrCreate(id string) (*ChatSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if session, ok := s.sessions[id]; ok {
		return session.Clone(), nil
	}

	session := s.newSession(id, "")
	s.sessions[id] = session
	return session.Clone(), s.persistLocked()
}

func (s *SessionStore) newSession(id, title string) *ChatSession {
	now := s.now()
	if title == "" {
		title = DefaultTitle
	}

	welcome := newWelcomeMessage(now)
	return &ChatSession{
		ID:         id,
		Title:      title,
		Messages:   []Message{welcome},
		CreatedAt:  now,
		UpdatedAt:  now,
		WordCount:  CountWords(welcome.Content),
		Tags:       []string{},
		IsPinned:   false,
		ModelLabel: DefaultModelLabel,
	}
}

// Update merges patch onto the session with id and persists the collection.
// It is a no-op when the session does not exist.
func (s *SessionStore) Update(id string, patch SessionPatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[id]
	if !ok {
		return nil
	}

	updated := session.Clone()
	if patch.Title != nil {
		updated.Title = *patch.Title
	}
	if patch.Messages != nil {
		if len(patch.Messages) == 0 {
			LogDebug("Ignoring empty message list for chat %s", id)
		} else {
			updated.Messages = CloneMessages(patch.Messages)
			updated.WordCount = SumWordCount(updated.Messages)
		}
	}
	if patch.Tags != nil {
		updated.Tags = append([]string{}, patch.Tags...)
	}
	if patch.IsPinned != nil {
		updated.IsPinned = *patch.IsPinned
	}
	if patch.Summary != nil {
		updated.Summary = *patch.Summary
	}
	if patch.ModelLabel != nil {
		updated.ModelLabel = *patch.ModelLabel
	}

	now := s.now()
	if now.Before(updated.CreatedAt) {
		now = updated.CreatedAt
	}
	updated.UpdatedAt = now

	s.sessions[id] = updated
	return s.persistLocked()
}

// Delete removes the session from memory and from the persisted blob.
// It is a no-op when the session does not exist.
func (s *SessionStore) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[id]; !ok {
		return nil
	}
	delete(s.sessions, id)
	return s.persistLocked()
}

// List returns a snapshot of every session, most recently updated first
func (s *SessionStore) List() []*ChatSession {
	s.mu.Lock()
	defer s.mu.Unlock()

	result := make([]*ChatSession, 0, len(s.sessions))
	for _, session := range s.sessions {
		result = append(result, session.Clone())
	}

	sort.Slice(result, func(i, j int) bool {
		if !result[i].UpdatedAt.Equal(result[j].UpdatedAt) {
			return result[i].UpdatedAt.After(result[j].UpdatedAt)
		}
		return result[i].ID < result[j].ID
	})

	return result
}

// Stats summarizes the collection and the size of its encoded blob
func (s *SessionStore) Stats() (StoreStats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stats := StoreStats{Sessions: len(s.sessions)}
	for _, session := range s.sessions {
		stats.Messages += len(session.Messages)
		stats.Words += session.WordCount
	}

	blob, err := EncodeSessions(s.sessions)
	if err != nil {
		return stats, err
	}
	stats.BlobBytes = len(blob)
	return stats, nil
}

// persistLocked writes the whole collection; callers must hold s.mu
func (s *SessionStore) persistLocked() error {
	blob, err := EncodeSessions(s.sessions)
	if err == nil {
		err = s.slot.Set(s.key, blob)
	}
	if err != nil {
		writeErr := &StoreWriteError{Key: s.key, Err: err}
		LogWarn("Failed to save chat sessions: %v", err)
		return writeErr
	}
	return nil
}

// IsWriteWarning reports whether err is a non-fatal persistence warning
func IsWriteWarning(err error) bool {
	return errors.Is(err, ErrStoreWriteFailed)
}
