package internal

import (
	"math/rand"
	"time"
)

// TurnPolicy holds the tunable knobs of a conversational turn
type TurnPolicy struct {
	// ShortLatency is the simulated processing delay for ordinary inputs
	ShortLatency time.Duration
	// LongLatency replaces ShortLatency for inputs longer than LongInputThreshold characters
	LongLatency        time.Duration
	LongInputThreshold int
	// Jitter adds up to this much random delay to a submit
	Jitter time.Duration
	// RegenerateLatency is the fixed delay before a regenerated answer
	RegenerateLatency time.Duration

	// HistoryWindow is how many preceding messages the generator sees
	HistoryWindow int

	FirstConfidence      float64
	RegenerateConfidence float64

	// TurnTimeout bounds a single generator call; zero disables it
	TurnTimeout time.Duration

	// SupersedeInFlight lets a new submit or regenerate cancel the running turn
	// instead of being rejected with ErrTurnInFlight.
	SupersedeInFlight bool
}

// DefaultTurnPolicy returns the production policy
func DefaultTurnPolicy() TurnPolicy {
	return TurnPolicy{
		ShortLatency:         1000 * time.Millisecond,
		LongLatency:          2000 * time.Millisecond,
		LongInputThreshold:   100,
		Jitter:               500 * time.Millisecond,
		RegenerateLatency:    1000 * time.Millisecond,
		HistoryWindow:        5,
		FirstConfidence:      0.9,
		RegenerateConfidence: 0.85,
	}
}

// WithoutLatency returns a copy of p with every simulated delay removed
func (p TurnPolicy) WithoutLatency() TurnPolicy {
	p.ShortLatency = 0
	p.LongLatency = 0
	p.Jitter = 0
	p.RegenerateLatency = 0
	return p
}

// SubmitLatency returns the simulated delay for a fresh submission of input
func (p TurnPolicy) SubmitLatency(input string) time.Duration {
	delay := p.ShortLatency
	if p.LongInputThreshold > 0 && len(input) > p.LongInputThreshold {
		delay = p.LongLatency
	}
	if p.Jitter > 0 {
		delay += time.Duration(rand.Int63n(int64(p.Jitter)))
	}
	return delay
}

func (p TurnPolicy) historyWindow() int {
	if p.HistoryWindow <= 0 {
		return 5
	}
	return p.HistoryWindow
}
