package model

import "time"

// SchemaVersion tags the stored shape of a trivia set. Sets written by old
// clients use flat nested arrays; current documents key their clue tables by
// category index.
type SchemaVersion string

const (
	SchemaFlat    SchemaVersion = "flat"
	SchemaIndexed SchemaVersion = "indexed"
)

// SetStats are aggregate numbers bumped after each finished game.
type SetStats struct {
	Plays        int     `json:"plays" bson:"plays"`
	Rating       float64 `json:"rating" bson:"rating"`
	NumRatings   int     `json:"numRatings" bson:"numRatings"`
	AverageScore float64 `json:"averageScore" bson:"averageScore"`
}

// TriviaSet is the current (indexed) schema. Clue and response tables are
// keyed by category index; each value slice is ordered by point-value slot.
type TriviaSet struct {
	ID              string           `json:"id" bson:"_id,omitempty"`
	Title           string           `json:"title" bson:"title"`
	UserID          string           `json:"userId" bson:"userID"`
	Tags            []string         `json:"tags" bson:"tags"`
	Round1Len       int              `json:"round1Len" bson:"round1Len"`
	Round2Len       int              `json:"round2Len" bson:"round2Len"`
	HasTwoRounds    bool             `json:"hasTwoRounds" bson:"hasTwoRounds"`
	Round1Cats      []string         `json:"round1CategoryNames" bson:"round1CategoryNames"`
	Round2Cats      []string         `json:"round2CategoryNames" bson:"round2CategoryNames"`
	Round1Clues     map[int][]string `json:"round1Clues" bson:"round1Clues"`
	Round1Responses map[int][]string `json:"round1Responses" bson:"round1Responses"`
	Round2Clues     map[int][]string `json:"round2Clues" bson:"round2Clues"`
	Round2Responses map[int][]string `json:"round2Responses" bson:"round2Responses"`
	// Daily-double coordinates as [categoryIdx, valueIdx] pairs.
	Round1Daily  []int `json:"roundOneDaily" bson:"roundOneDaily"`
	Round2Daily1 []int `json:"roundTwoDaily1" bson:"roundTwoDaily1"`
	Round2Daily2 []int `json:"roundTwoDaily2" bson:"roundTwoDaily2"`
	// Triple-stumper coordinates, one [categoryIdx, valueIdx] pair each.
	Round1Stumpers [][]int `json:"round1TripleStumpers" bson:"round1TripleStumpers"`
	Round2Stumpers [][]int `json:"round2TripleStumpers" bson:"round2TripleStumpers"`

	FinalCategory string `json:"finalCat" bson:"finalCat"`
	FinalClue     string `json:"finalClue" bson:"finalClue"`
	FinalResponse string `json:"finalResponse" bson:"finalResponse"`

	NumClues  int       `json:"numClues" bson:"numClues"`
	Stats     SetStats  `json:"stats" bson:"stats"`
	IsPublic  bool      `json:"isPublic" bson:"isPublic"`
	CreatedAt time.Time `json:"dateCreated" bson:"dateCreated"`
	UpdatedAt time.Time `json:"dateLastModified" bson:"dateLastModified"`
}

// Schema reports which stored shape this set carries. A decoded document with
// no indexed clue table is a flat-schema document read through the wrong
// struct and should be re-read as a LegacyTriviaSet.
func (s *TriviaSet) Schema() SchemaVersion {
	if len(s.Round1Clues) > 0 {
		return SchemaIndexed
	}
	return SchemaFlat
}

// LegacyTriviaSet is the flat-array schema still present in older documents.
// It carries the same content as TriviaSet minus the stumper markers.
type LegacyTriviaSet struct {
	ID              string     `json:"id" bson:"_id,omitempty"`
	Title           string     `json:"title" bson:"title"`
	UserID          string     `json:"userId" bson:"userID"`
	Tags            []string   `json:"tags" bson:"tags"`
	Round1Len       int        `json:"jRoundLen" bson:"jRoundLen"`
	Round2Len       int        `json:"djRoundLen" bson:"djRoundLen"`
	Round1Cats      []string   `json:"jCategoryNames" bson:"jCategoryNames"`
	Round2Cats      []string   `json:"djCategoryNames" bson:"djCategoryNames"`
	Round1Clues     [][]string `json:"jRoundClues" bson:"jRoundClues"`
	Round1Responses [][]string `json:"jRoundResponses" bson:"jRoundResponses"`
	Round2Clues     [][]string `json:"djRoundClues" bson:"djRoundClues"`
	Round2Responses [][]string `json:"djRoundResponses" bson:"djRoundResponses"`
	Round1Daily     []int      `json:"jeopardyDailyDoubles" bson:"jeopardyDailyDoubles"`
	Round2Daily1    []int      `json:"djDailyDoubles1" bson:"djDailyDoubles1"`
	Round2Daily2    []int      `json:"djDailyDoubles2" bson:"djDailyDoubles2"`
	FinalCategory   string     `json:"fjCategory" bson:"fjCategory"`
	FinalClue       string     `json:"fjClue" bson:"fjClue"`
	FinalResponse   string     `json:"fjResponse" bson:"fjResponse"`
	NumClues        int        `json:"numclues" bson:"numclues"`
	Stats           SetStats   `json:"stats" bson:"stats,inline"`
	IsPublic        bool       `json:"isPublic" bson:"isPublic"`
	CreatedAt       time.Time  `json:"dateCreated" bson:"dateCreated"`
}

// Upgrade converts a legacy flat document into the indexed schema. Stumper
// markers did not exist in the flat schema, so they come back empty.
func (l *LegacyTriviaSet) Upgrade() *TriviaSet {
	return &TriviaSet{
		ID:              l.ID,
		Title:           l.Title,
		UserID:          l.UserID,
		Tags:            l.Tags,
		Round1Len:       l.Round1Len,
		Round2Len:       l.Round2Len,
		HasTwoRounds:    l.Round2Len > 0,
		Round1Cats:      l.Round1Cats,
		Round2Cats:      l.Round2Cats,
		Round1Clues:     NestedSliceToMap(l.Round1Clues),
		Round1Responses: NestedSliceToMap(l.Round1Responses),
		Round2Clues:     NestedSliceToMap(l.Round2Clues),
		Round2Responses: NestedSliceToMap(l.Round2Responses),
		Round1Daily:     l.Round1Daily,
		Round2Daily1:    l.Round2Daily1,
		Round2Daily2:    l.Round2Daily2,
		FinalCategory:   l.FinalCategory,
		FinalClue:       l.FinalClue,
		FinalResponse:   l.FinalResponse,
		NumClues:        l.NumClues,
		Stats:           l.Stats,
		IsPublic:        l.IsPublic,
		CreatedAt:       l.CreatedAt,
		UpdatedAt:       l.CreatedAt,
	}
}

// NestedSliceToMap converts a flat 2D clue table into the index-keyed form
// used by the current schema.
func NestedSliceToMap(rows [][]string) map[int][]string {
	m := make(map[int][]string, len(rows))
	for i, row := range rows {
		m[i] = row
	}
	return m
}

// MapToNestedSlice is the inverse of NestedSliceToMap. Missing indices come
// back as empty columns so the result is always dense over [0, n).
func MapToNestedSlice(m map[int][]string, n int) [][]string {
	rows := make([][]string, n)
	for i := 0; i < n; i++ {
		if row, ok := m[i]; ok {
			rows[i] = row
		} else {
			rows[i] = []string{}
		}
	}
	return rows
}
