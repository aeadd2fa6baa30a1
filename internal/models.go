package internal

import (
	"time"
)

// Sender identifies who authored a message
type Sender string

const (
	SenderUser      Sender = "user"
	SenderAssistant Sender = "assistant"
)

// MessageKind describes how a message body should be rendered
type MessageKind string

const (
	KindText  MessageKind = "text"
	KindCode  MessageKind = "code"
	KindList  MessageKind = "list"
	KindError MessageKind = "error"
)

const (
	// DefaultTitle is used until the first user message arrives
	DefaultTitle = "New Conversation"

	// DefaultModelLabel is the model label stamped on new sessions
	DefaultModelLabel = "Aquilax Pro"

	// WelcomeMessageID is the fixed id of the greeting every session starts with
	WelcomeMessageID = "1"

	// WelcomeText is the assistant greeting seeded into every new session
	WelcomeText = "Hello! I'm Aquilax, your intelligent AI assistant. I'm designed to help you with a wide range of tasks - from answering questions and solving problems to brainstorming ideas and providing detailed explanations. What would you like to explore today?"

	// ApologyText is the body of the error message appended when generation fails
	ApologyText = "I apologize, but I encountered an issue while processing your request. Please try again."
)

// MessageMetadata carries optional per-message measurements
type MessageMetadata struct {
	TokenCount       int     `json:"tokenCount,omitempty" yaml:"tokenCount,omitempty"`
	Confidence       float64 `json:"confidence" yaml:"confidence"`
	ProcessingTimeMs int64   `json:"processingTimeMs,omitempty" yaml:"processingTimeMs,omitempty"`
}

// Message is a single entry in a conversation
type Message struct {
	ID        string           `json:"id" yaml:"id"`
	Content   string           `json:"content" yaml:"content"`
	Sender    Sender           `json:"sender" yaml:"sender"`
	Timestamp time.Time        `json:"timestamp" yaml:"timestamp"`
	Kind      MessageKind      `json:"messageType,omitempty" yaml:"messageType,omitempty"`
	Metadata  *MessageMetadata `json:"metadata,omitempty" yaml:"metadata,omitempty"`
}

// EffectiveKind returns the message kind, defaulting to text
func (m Message) EffectiveKind() MessageKind {
	if m.Kind == "" {
		return KindText
	}
	return m.Kind
}

func (m Message) clone() Message {
	if m.Metadata != nil {
		meta := *m.Metadata
		m.Metadata = &meta
	}
	return m
}

// ChatSession is one persisted conversation thread
type ChatSession struct {
	ID         string    `json:"id" yaml:"id"`
	Title      string    `json:"title" yaml:"title"`
	Messages   []Message `json:"messages" yaml:"messages"`
	CreatedAt  time.Time `json:"createdAt" yaml:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt" yaml:"updatedAt"`
	WordCount  int       `json:"wordCount" yaml:"wordCount"`
	Tags       []string  `json:"tags" yaml:"tags"`
	IsPinned   bool      `json:"isPinned" yaml:"isPinned"`
	Summary    string    `json:"summary,omitempty" yaml:"summary,omitempty"`
	ModelLabel string    `json:"aiModel,omitempty" yaml:"aiModel,omitempty"`
}

// Clone returns a deep copy of the session
func (s *ChatSession) Clone() *ChatSession {
	if s == nil {
		return nil
	}
	out := *s
	out.Messages = CloneMessages(s.Messages)
	if s.Tags != nil {
		out.Tags = append([]string(nil), s.Tags...)
	}
	return &out
}

// LastMessage returns the final message in the session, if any
func (s *ChatSession) LastMessage() (Message, bool) {
	if len(s.Messages) == 0 {
		return Message{}, false
	}
	return s.Messages[len(s.Messages)-1], true
}

// SessionPatch is a partial update; nil fields are left untouched
type SessionPatch struct {
	Title      *string
	Messages   []Message
	Tags       []string
	IsPinned   *bool
	Summary    *string
	ModelLabel *string
}

// CloneMessages copies a message slice including metadata
func CloneMessages(msgs []Message) []Message {
	if msgs == nil {
		return nil
	}
	out := make([]Message, len(msgs))
	for i, msg := range msgs {
		out[i] = msg.clone()
	}
	return out
}

// StringPtr returns a pointer to s
func StringPtr(s string) *string {
	return &s
}

// BoolPtr returns a pointer to b
func BoolPtr(b bool) *bool {
	return &b
}

// newWelcomeMessage builds the greeting every session is seeded with
func newWelcomeMessage(now time.Time) Message {
	return Message{
		ID:        WelcomeMessageID,
		Content:   WelcomeText,
		Sender:    SenderAssistant,
		Timestamp: now,
		Kind:      KindText,
		Metadata: &MessageMetadata{
			TokenCount: CountWords(WelcomeText),
			Confidence: 1.0,
		},
	}
}
