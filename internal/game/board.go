package game

import (
	"errors"
	"fmt"

	"trivio/internal/model"
)

// ErrMalformedSet reports a trivia set whose category names and clue tables
// disagree. Callers fall back to an empty board and surface a message.
var ErrMalformedSet = errors.New("malformed trivia set")

// Coord addresses one clue cell as (category index, point-value slot).
type Coord struct {
	Category int
	Value    int
}

// RoundBoard is the normalized view of one round: ordered categories, dense
// clue/response tables and precomputed special-coordinate sets.
type RoundBoard struct {
	Categories []string
	Clues      [][]string // [category][valueSlot]
	Responses  [][]string
	BaseValue  int // point value of the top slot; slot i is worth BaseValue*(i+1)

	dailyDoubles   map[Coord]struct{}
	tripleStumpers map[Coord]struct{}
	slotCount      int
}

// FinalClue is the single final-round clue.
type FinalClue struct {
	Category string
	Clue     string
	Response string
}

// Board is a fully normalized trivia set ready for play.
type Board struct {
	SetID        string
	Title        string
	HasTwoRounds bool
	Round1       *RoundBoard
	Round2       *RoundBoard
	Final        FinalClue
}

const (
	round1BaseValue = 200
	round2BaseValue = 400

	// Daily-double wager floors per round ("round ceiling" in grading rules).
	Round1WagerCeiling = 1000
	Round2WagerCeiling = 2000
)

// Normalize builds a Board from a stored set without mutating it. Legacy
// documents should be upgraded to the indexed schema before calling.
func Normalize(set *model.TriviaSet) (*Board, error) {
	r1, err := normalizeRound(1, set.Round1Cats, set.Round1Clues, set.Round1Responses, set.Round1Len, round1BaseValue)
	if err != nil {
		return nil, err
	}
	r1.addDailyDouble(set.Round1Daily)
	r1.addStumpers(set.Round1Stumpers)

	board := &Board{
		SetID:        set.ID,
		Title:        set.Title,
		HasTwoRounds: set.HasTwoRounds,
		Round1:       r1,
		Final: FinalClue{
			Category: set.FinalCategory,
			Clue:     set.FinalClue,
			Response: set.FinalResponse,
		},
	}

	if set.HasTwoRounds {
		r2, err := normalizeRound(2, set.Round2Cats, set.Round2Clues, set.Round2Responses, set.Round2Len, round2BaseValue)
		if err != nil {
			return nil, err
		}
		r2.addDailyDouble(set.Round2Daily1)
		r2.addDailyDouble(set.Round2Daily2)
		r2.addStumpers(set.Round2Stumpers)
		board.Round2 = r2
	}
	return board, nil
}

func normalizeRound(round int, cats []string, clues, responses map[int][]string, roundLen, baseValue int) (*RoundBoard, error) {
	if roundLen == 0 {
		roundLen = len(cats)
	}
	if len(cats) != roundLen || len(clues) != roundLen || len(responses) != roundLen {
		return nil, fmt.Errorf("%w: round %d has %d categories, %d clue columns, %d response columns",
			ErrMalformedSet, round, len(cats), len(clues), len(responses))
	}

	rb := &RoundBoard{
		Categories:     append([]string(nil), cats...),
		Clues:          copyRows(model.MapToNestedSlice(clues, roundLen)),
		Responses:      copyRows(model.MapToNestedSlice(responses, roundLen)),
		BaseValue:      baseValue,
		dailyDoubles:   make(map[Coord]struct{}),
		tripleStumpers: make(map[Coord]struct{}),
	}
	for cat, col := range rb.Clues {
		if len(col) != len(rb.Responses[cat]) {
			return nil, fmt.Errorf("%w: round %d category %d has %d clues but %d responses",
				ErrMalformedSet, round, cat, len(col), len(rb.Responses[cat]))
		}
		for _, clue := range col {
			if clue != "" {
				rb.slotCount++
			}
		}
	}
	return rb, nil
}

func copyRows(rows [][]string) [][]string {
	out := make([][]string, len(rows))
	for i, row := range rows {
		out[i] = append([]string(nil), row...)
	}
	return out
}

func (rb *RoundBoard) addDailyDouble(pair []int) {
	if len(pair) != 2 {
		return
	}
	rb.dailyDoubles[Coord{Category: pair[0], Value: pair[1]}] = struct{}{}
}

func (rb *RoundBoard) addStumpers(pairs [][]int) {
	for _, pair := range pairs {
		if len(pair) != 2 {
			continue
		}
		rb.tripleStumpers[Coord{Category: pair[0], Value: pair[1]}] = struct{}{}
	}
}

// IsDailyDouble reports whether the cell is a daily double. O(1).
func (rb *RoundBoard) IsDailyDouble(category, value int) bool {
	_, ok := rb.dailyDoubles[Coord{Category: category, Value: value}]
	return ok
}

// IsTripleStumper reports whether the cell went unanswered in the source
// material. Display-only distinction. O(1).
func (rb *RoundBoard) IsTripleStumper(category, value int) bool {
	_, ok := rb.tripleStumpers[Coord{Category: category, Value: value}]
	return ok
}

// ClueAt returns the clue and response text at a cell, or empty strings when
// the coordinates are out of range.
func (rb *RoundBoard) ClueAt(category, value int) (clue, response string) {
	if category < 0 || category >= len(rb.Clues) {
		return "", ""
	}
	col := rb.Clues[category]
	if value < 0 || value >= len(col) {
		return "", ""
	}
	return col[value], rb.Responses[category][value]
}

// PointValue returns the dollar value of a slot row.
func (rb *RoundBoard) PointValue(value int) int {
	return rb.BaseValue * (value + 1)
}

// SlotCount is the number of playable (non-empty) clues in the round.
func (rb *RoundBoard) SlotCount() int {
	return rb.slotCount
}
