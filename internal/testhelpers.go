package internal

import (
	"context"
	"sync"
	"time"
)

// CreateTestSession creates a test session with a welcome, a question and an answer
func CreateTestSession(id string) *ChatSession {
	base := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	return CreateTestSessionWithMessages(id, []Message{
		newWelcomeMessage(base),
		{
			ID:        "user_1",
			Content:   "Hello, how are you?",
			Sender:    SenderUser,
			Timestamp: base.Add(time.Minute),
			Kind:      KindText,
			Metadata:  &MessageMetadata{TokenCount: 4},
		},
		{
			ID:        "ai_1",
			Content:   "I'm doing well, thank you!",
			Sender:    SenderAssistant,
			Timestamp: base.Add(2 * time.Minute),
			Kind:      KindText,
			Metadata:  &MessageMetadata{TokenCount: 5, Confidence: 0.9, ProcessingTimeMs: 1200},
		},
	})
}

// CreateTestSessionWithMessages creates a test session with custom messages
func CreateTestSessionWithMessages(id string, messages []Message) *ChatSession {
	created := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	updated := created
	if n := len(messages); n > 0 && messages[n-1].Timestamp.After(created) {
		updated = messages[n-1].Timestamp
	}
	return &ChatSession{
		ID:         id,
		Title:      "Test Conversation",
		Messages:   messages,
		CreatedAt:  created,
		UpdatedAt:  updated,
		WordCount:  SumWordCount(messages),
		Tags:       []string{"test"},
		ModelLabel: DefaultModelLabel,
	}
}

// FixedGenerator always replies with the same text
func FixedGenerator(reply string) Generator {
	return GeneratorFunc(func(ctx context.Context, input string, history []Message) (string, error) {
		return reply, ctx.Err()
	})
}

// FailingGenerator always fails with err
func FailingGenerator(err error) Generator {
	return GeneratorFunc(func(ctx context.Context, input string, history []Message) (string, error) {
		return "", err
	})
}

// GatedGenerator blocks each call until Release is called or the turn is cancelled.
// It records every input and history window it was given.
type GatedGenerator struct {
	mu        sync.Mutex
	release   chan struct{}
	started   chan string
	inputs    []string
	histories [][]Message
	reply     func(input string) string
}

// NewGatedGenerator creates a gated generator replying "reply to <input>"
func NewGatedGenerator() *GatedGenerator {
	return &GatedGenerator{
		release: make(chan struct{}),
		started: make(chan string, 16),
		reply:   func(input string) string { return "reply to " + input },
	}
}

// Generate waits for Release or cancellation
func (g *GatedGenerator) Generate(ctx context.Context, input string, history []Message) (string, error) {
	g.mu.Lock()
	g.inputs = append(g.inputs, input)
	g.histories = append(g.histories, CloneMessages(history))
	release := g.release
	g.mu.Unlock()

	g.started <- input

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case <-release:
		return g.reply(input), nil
	}
}

// Started receives the input of every call as it begins
func (g *GatedGenerator) Started() <-chan string {
	return g.started
}

// Release unblocks every pending and future call
func (g *GatedGenerator) Release() {
	g.mu.Lock()
	defer g.mu.Unlock()
	select {
	case <-g.release:
	default:
		close(g.release)
	}
}

// Histories returns the history windows seen so far
func (g *GatedGenerator) Histories() [][]Message {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([][]Message(nil), g.histories...)
}

// Inputs returns the inputs seen so far
func (g *GatedGenerator) Inputs() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]string(nil), g.inputs...)
}
