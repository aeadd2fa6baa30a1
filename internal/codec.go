package internal

import (
	"encoding/json"
	"fmt"
	"time"
)

// timestampLayout is ISO-8601 with nanosecond precision
const timestampLayout = time.RFC3339Nano

// storedMessage mirrors Message with text timestamps
type storedMessage struct {
	ID        string           `json:"id"`
	Content   string           `json:"content"`
	Sender    Sender           `json:"sender"`
	Timestamp string           `json:"timestamp"`
	Kind      MessageKind      `json:"messageType,omitempty"`
	Metadata  *MessageMetadata `json:"metadata,omitempty"`
}

// storedSession mirrors ChatSession with text timestamps
type storedSession struct {
	ID         string          `json:"id"`
	Title      string          `json:"title"`
	Messages   []storedMessage `json:"messages"`
	CreatedAt  string          `json:"createdAt"`
	UpdatedAt  string          `json:"updatedAt"`
	WordCount  int             `json:"wordCount"`
	Tags       []string        `json:"tags"`
	IsPinned   bool            `json:"isPinned"`
	Summary    string          `json:"summary,omitempty"`
	ModelLabel string          `json:"aiModel,omitempty"`
}

// EncodeSessions serializes the whole collection into one JSON blob
func EncodeSessions(sessions map[string]*ChatSession) (string, error) {
	out := make(map[string]storedSession, len(sessions))
	for id, session := range sessions {
		out[id] = toStored(session)
	}

	data, err := json.Marshal(out)
	if err != nil {
		return "", fmt.Errorf("failed to marshal sessions: %w", err)
	}
	return string(data), nil
}

// DecodeSessions parses a blob produced by EncodeSessions, reviving every timestamp
func DecodeSessions(blob string) (map[string]*ChatSession, error) {
	var raw map[string]storedSession
	if err := json.Unmarshal([]byte(blob), &raw); err != nil {
		return nil, fmt.Errorf("failed to unmarshal sessions: %w", err)
	}

	sessions := make(map[string]*ChatSession, len(raw))
	for id, stored := range raw {
		session, err := fromStored(stored)
		if err != nil {
			return nil, fmt.Errorf("session %s: %w", id, err)
		}
		if session.ID == "" {
			session.ID = id
		}
		sessions[id] = session
	}
	return sessions, nil
}

func toStored(s *ChatSession) storedSession {
	msgs := make([]storedMessage, 0, len(s.Messages))
	for _, msg := range s.Messages {
		msgs = append(msgs, storedMessage{
			ID:        msg.ID,
			Content:   msg.Content,
			Sender:    msg.Sender,
			Timestamp: formatTimestamp(msg.Timestamp),
			Kind:      msg.Kind,
			Metadata:  msg.Metadata,
		})
	}

	tags := s.Tags
	if tags == nil {
		tags = []string{}
	}

	return storedSession{
		ID:         s.ID,
		Title:      s.Title,
		Messages:   msgs,
		CreatedAt:  formatTimestamp(s.CreatedAt),
		UpdatedAt:  formatTimestamp(s.UpdatedAt),
		WordCount:  s.WordCount,
		Tags:       tags,
		IsPinned:   s.IsPinned,
		Summary:    s.Summary,
		ModelLabel: s.ModelLabel,
	}
}

func fromStored(s storedSession) (*ChatSession, error) {
	createdAt, err := parseTimestamp(s.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("createdAt: %w", err)
	}
	updatedAt, err := parseTimestamp(s.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("updatedAt: %w", err)
	}

	msgs := make([]Message, 0, len(s.Messages))
	for _, stored := range s.Messages {
		ts, err := parseTimestamp(stored.Timestamp)
		if err != nil {
			return nil, fmt.Errorf("message %s timestamp: %w", stored.ID, err)
		}
		msgs = append(msgs, Message{
			ID:        stored.ID,
			Content:   stored.Content,
			Sender:    normalizeSender(stored.Sender),
			Timestamp: ts,
			Kind:      stored.Kind,
			Metadata:  stored.Metadata,
		})
	}

	return &ChatSession{
		ID:         s.ID,
		Title:      s.Title,
		Messages:   msgs,
		CreatedAt:  createdAt,
		UpdatedAt:  updatedAt,
		WordCount:  s.WordCount,
		Tags:       s.Tags,
		IsPinned:   s.IsPinned,
		Summary:    s.Summary,
		ModelLabel: s.ModelLabel,
	}, nil
}

// normalizeSender accepts the legacy "ai" sender written by older front-ends
func normalizeSender(s Sender) Sender {
	if s == "ai" {
		return SenderAssistant
	}
	return s
}

// formatTimestamp renders t as an ISO-8601 string in UTC
func formatTimestamp(t time.Time) string {
	return t.UTC().Format(timestampLayout)
}

// parseTimestamp parses an ISO-8601 timestamp string
func parseTimestamp(ts string) (time.Time, error) {
	if ts == "" {
		return time.Time{}, fmt.Errorf("empty timestamp")
	}
	t, err := time.Parse(timestampLayout, ts)
	if err != nil {
		return time.Time{}, err
	}
	return t, nil
}
