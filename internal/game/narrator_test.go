package game

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTimedNarratorSpeaksForEstimatedDuration(t *testing.T) {
	current := time.Date(2026, time.March, 1, 20, 0, 0, 0, time.UTC)
	n := NewTimedNarrator(25)
	n.now = func() time.Time { return current }

	text := "This clue is exactly fifty characters long, okay??"
	assert.Equal(t, 2*time.Second, n.Duration(text))

	n.Speak(text)
	assert.True(t, n.IsSpeaking())

	current = current.Add(1900 * time.Millisecond)
	assert.True(t, n.IsSpeaking())

	current = current.Add(200 * time.Millisecond)
	assert.False(t, n.IsSpeaking())
}

func TestTimedNarratorStop(t *testing.T) {
	n := NewTimedNarrator(25)
	n.Speak("a reasonably long clue that would take a while to read")
	n.Stop()
	assert.False(t, n.IsSpeaking())
}

func TestTimedNarratorDefaultRate(t *testing.T) {
	n := NewTimedNarrator(0)
	assert.Equal(t, time.Second, n.Duration("1234567890123456789012345"))
}
