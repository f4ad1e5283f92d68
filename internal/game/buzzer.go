package game

import "time"

// buzz is one recorded press in the current race.
type buzz struct {
	at      time.Time
	ordinal int
}

// BuzzerRace arbitrates which live player buzzed in first. Presses are only
// counted while the race is armed and only when they land strictly after the
// enable time; among eligible presses the earliest timestamp wins, and equal
// timestamps break toward the lower join ordinal.
type BuzzerRace struct {
	enabled   bool
	enabledAt time.Time
	entries   map[string]buzz
}

// NewBuzzerRace builds a cleared race.
func NewBuzzerRace() *BuzzerRace {
	return &BuzzerRace{entries: make(map[string]buzz)}
}

// Arm opens the race at the given reference time, normally when narration
// completes.
func (b *BuzzerRace) Arm(at time.Time) {
	b.enabled = true
	b.enabledAt = at
	b.entries = make(map[string]buzz)
}

// Enabled reports whether the race is accepting presses.
func (b *BuzzerRace) Enabled() bool { return b.enabled }

// EnabledAt is the reference time presses are measured against.
func (b *BuzzerRace) EnabledAt() time.Time { return b.enabledAt }

// Buzz records a press. Presses before or at the enable time, while the race
// is disarmed, or repeats from the same player are ignored; a player's first
// valid press stands.
func (b *BuzzerRace) Buzz(playerID string, ordinal int, at time.Time) {
	if !b.enabled || !at.After(b.enabledAt) {
		return
	}
	if _, already := b.entries[playerID]; already {
		return
	}
	b.entries[playerID] = buzz{at: at, ordinal: ordinal}
}

// Winner resolves the race. ok is false when nobody has buzzed.
func (b *BuzzerRace) Winner() (playerID string, ok bool) {
	var best buzz
	for id, entry := range b.entries {
		if !ok ||
			entry.at.Before(best.at) ||
			(entry.at.Equal(best.at) && entry.ordinal < best.ordinal) {
			playerID, best, ok = id, entry, true
		}
	}
	return playerID, ok
}

// Latency is how long after the enable time a player buzzed. ok is false for
// players not in the race.
func (b *BuzzerRace) Latency(playerID string) (time.Duration, bool) {
	entry, ok := b.entries[playerID]
	if !ok {
		return 0, false
	}
	return entry.at.Sub(b.enabledAt), true
}

// Clear disarms the race and forgets every press, ready for the next clue.
func (b *BuzzerRace) Clear() {
	b.enabled = false
	b.enabledAt = time.Time{}
	b.entries = make(map[string]buzz)
}
