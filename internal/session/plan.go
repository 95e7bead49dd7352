package session

import (
	"time"

	"github.com/abhisek/fequiz/internal/catalog"
)

// Mode selects how a session's question batch is chosen.
type Mode string

const (
	ModeNormal Mode = "normal" // random questions, optionally from one category
	ModeWeak   Mode = "weak"   // the current weak set
	ModeSingle Mode = "single" // one question by id
)

// DefaultCount is the batch size used when none is configured.
const DefaultCount = 5

// Empty-batch messages.
const (
	EmptyMessage     = "No questions"
	EmptyWeakMessage = "No weak questions"
)

// Config describes one session.
type Config struct {
	Mode       Mode
	Category   catalog.CategoryID // ModeNormal only; empty for all categories
	QuestionID string             // ModeSingle only
	Count      int                // ModeNormal only; 0 requests every question
	Shuffle    bool               // ignored in ModeSingle
	Timer      time.Duration      // per-question countdown; 0 disables it
}

// shuffles reports whether choice order is randomized for this config.
func (c Config) shuffles() bool {
	return c.Shuffle && c.Mode != ModeSingle
}

// timerSeconds returns the countdown length in whole seconds.
func (c Config) timerSeconds() int {
	if c.Timer <= 0 {
		return 0
	}
	return int(c.Timer / time.Second)
}
