package game

import (
	"fmt"
	"strconv"
	"strings"
)

// WagerErrorKind distinguishes why a wager was rejected so callers can show
// a specific message.
type WagerErrorKind int

const (
	WagerNotANumber WagerErrorKind = iota
	WagerNegative
	WagerExceedsMax
)

// WagerError is returned by ValidateWager for rejected input.
type WagerError struct {
	Kind  WagerErrorKind
	Input string
	Max   int
}

func (e *WagerError) Error() string {
	switch e.Kind {
	case WagerNotANumber:
		return fmt.Sprintf("wager %q is not a number", e.Input)
	case WagerNegative:
		return fmt.Sprintf("wager %q is negative", e.Input)
	default:
		return fmt.Sprintf("wager %q exceeds the maximum of %d", e.Input, e.Max)
	}
}

// WagerCeiling is the round-dependent wager floor: a team may always wager up
// to this amount even with a lower (or negative) score.
func WagerCeiling(phase Phase) int {
	if phase == PhaseRound2 {
		return Round2WagerCeiling
	}
	return Round1WagerCeiling
}

// ValidateWager parses raw wager input and checks it against the team's score
// and the round ceiling. The maximum allowed is max(ceiling, score).
func ValidateWager(input string, teamScore, roundCeiling int) (int, error) {
	trimmed := strings.TrimSpace(input)
	amount, err := strconv.Atoi(trimmed)
	if err != nil {
		return 0, &WagerError{Kind: WagerNotANumber, Input: input}
	}
	if amount < 0 {
		return 0, &WagerError{Kind: WagerNegative, Input: input}
	}
	max := roundCeiling
	if teamScore > max {
		max = teamScore
	}
	if amount > max {
		return 0, &WagerError{Kind: WagerExceedsMax, Input: input, Max: max}
	}
	return amount, nil
}
