package internal

import (
	"context"
	"math/rand"
	"strings"
	"sync"
	"time"
)

// Generator produces assistant text for an input and the recent history window
type Generator interface {
	Generate(ctx context.Context, input string, history []Message) (string, error)
}

// GeneratorFunc adapts a plain function to the Generator interface
type GeneratorFunc func(ctx context.Context, input string, history []Message) (string, error)

// Generate calls f
func (f GeneratorFunc) Generate(ctx context.Context, input string, history []Message) (string, error) {
	return f(ctx, input, history)
}

// TemplateGenerator is the stand-in assistant: it picks one of a fixed set of
// encouraging reply templates and tailors the tail to keywords in the input.
type TemplateGenerator struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// Ensure TemplateGenerator implements Generator
var _ Generator = (*TemplateGenerator)(nil)

// NewTemplateGenerator creates a template generator; a nil rng seeds from the clock
func NewTemplateGenerator(rng *rand.Rand) *TemplateGenerator {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &TemplateGenerator{rng: rng}
}

// Generate returns one of the reply templates for input
func (g *TemplateGenerator) Generate(ctx context.Context, input string, history []Message) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	replies := templateReplies(strings.ToLower(input))

	g.mu.Lock()
	idx := g.rng.Intn(len(replies))
	g.mu.Unlock()

	return replies[idx], nil
}

func templateReplies(input string) []string {
	pick := func(a, aText, b, bText, fallback string) string {
		switch {
		case strings.Contains(input, a):
			return aText
		case strings.Contains(input, b):
			return bText
		default:
			return fallback
		}
	}

	return []string{
		"Excellent question! Based on our conversation, I can see you're developing a deep understanding of this topic. Let me break this down step by step: " +
			pick("how", "The process involves several key stages...", "why", "The fundamental reason behind this is...", "Here's what you need to know..."),
		"Great thinking! I can see you're making connections between concepts. " +
			pick("compare", "Let me highlight the key differences and similarities...", "example", "Here are some practical examples that illustrate this concept...", "This builds on what we discussed earlier..."),
		"That's a sophisticated question that shows real analytical thinking! " +
			pick("analyze", "Let's examine this from multiple perspectives...", "explain", "I'll walk you through the reasoning behind this...", "The key insight here is..."),
		"Perfect! You're asking exactly the right questions for deep learning. " +
			pick("application", "Here's how this applies in real-world scenarios...", "difference", "The crucial distinctions you should understand are...", "This concept connects to broader principles..."),
	}
}
