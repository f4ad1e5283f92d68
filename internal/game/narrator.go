package game

import (
	"sync"
	"time"
)

// NopNarrator satisfies Narrator without doing anything. Used when a game
// runs without speech.
type NopNarrator struct{}

func (NopNarrator) Speak(string)     {}
func (NopNarrator) Stop()            {}
func (NopNarrator) IsSpeaking() bool { return false }

// TimedNarrator models clue narration as a fixed reading speed: a clue is
// "being spoken" until its estimated reading time has elapsed. Live games use
// the same estimate to decide when buzzers unlock.
type TimedNarrator struct {
	charsPerSec float64
	now         func() time.Time

	mu       sync.Mutex
	deadline time.Time
}

// NewTimedNarrator builds a narrator reading at charsPerSec characters per
// second. Values at or below zero fall back to a sensible default.
func NewTimedNarrator(charsPerSec float64) *TimedNarrator {
	if charsPerSec <= 0 {
		charsPerSec = 25
	}
	return &TimedNarrator{charsPerSec: charsPerSec, now: time.Now}
}

// Duration estimates how long the text takes to read aloud.
func (n *TimedNarrator) Duration(text string) time.Duration {
	secs := float64(len(text)) / n.charsPerSec
	return time.Duration(secs * float64(time.Second))
}

func (n *TimedNarrator) Speak(text string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.deadline = n.now().Add(n.Duration(text))
}

func (n *TimedNarrator) Stop() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.deadline = time.Time{}
}

func (n *TimedNarrator) IsSpeaking() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.now().Before(n.deadline)
}
