package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trivio/internal/model"
)

func TestRosterAddAssignsDenseIndices(t *testing.T) {
	r := NewRoster(nil)
	a := r.Add("Alpha", nil, 0, "blue")
	b := r.Add("Bravo", []string{"Ann", "Ben"}, 0, "red")

	assert.Equal(t, 0, a.Index)
	assert.Equal(t, 1, b.Index)
	assert.NotEmpty(t, a.ID)
	assert.NotEqual(t, a.ID, b.ID)
}

func TestRosterRemoveReindexes(t *testing.T) {
	r := NewRoster(nil)
	for _, name := range []string{"A", "B", "C", "D"} {
		r.Add(name, nil, 0, "blue")
	}
	r.Remove(1)

	require.Equal(t, 3, r.Len())
	for i, team := range r.Teams() {
		assert.Equal(t, i, team.Index)
	}
	names := []string{r.Teams()[0].Name, r.Teams()[1].Name, r.Teams()[2].Name}
	assert.Equal(t, []string{"A", "C", "D"}, names)
}

func TestRosterRemoveOutOfRangeIsNoop(t *testing.T) {
	r := NewRoster(nil)
	r.Add("A", nil, 0, "blue")
	r.Remove(5)
	r.Remove(-1)
	assert.Equal(t, 1, r.Len())
}

func TestRosterEditScoreAllowsNegative(t *testing.T) {
	r := NewRoster(nil)
	r.Add("A", nil, 0, "blue")
	r.EditScore(0, -600)
	assert.Equal(t, -600, r.Score(0))

	r.EditScore(7, 100) // out of range: no-op
	assert.Equal(t, -600, r.Score(0))
}

func TestRosterSelectedDefaultsToZero(t *testing.T) {
	r := NewRoster(nil)
	r.Add("A", nil, 0, "blue")
	r.Add("B", nil, 0, "red")
	assert.Equal(t, 0, r.Selected())

	r.SetSelected(1)
	assert.Equal(t, 1, r.Selected())

	r.Remove(1)
	assert.Equal(t, 0, r.Selected())
}

func TestRosterSelectLowestScoring(t *testing.T) {
	r := NewRoster(nil)
	r.Add("A", nil, 0, "blue")
	r.Add("B", nil, 0, "red")
	r.Add("C", nil, 0, "green")
	r.EditScore(0, 800)
	r.EditScore(1, -200)
	r.EditScore(2, 400)
	r.IncrementStep()

	r.SelectLowestScoring()
	assert.Equal(t, 1, r.Selected())
}

func TestRosterSpokespersonRotation(t *testing.T) {
	r := NewRoster(nil)
	r.Add("Team", []string{"Ann", "Ben"}, 0, "blue")

	r.IncrementStep()
	assert.Equal(t, "Ann", r.scratch[0].Spokesperson)
	r.IncrementStep()
	assert.Equal(t, "Ben", r.scratch[0].Spokesperson)
	r.IncrementStep()
	assert.Equal(t, "Ann", r.scratch[0].Spokesperson)
}

func TestRosterScoreHistory(t *testing.T) {
	r := NewRoster(nil)
	a := r.Add("A", nil, 0, "blue")
	r.EditScore(0, 200)
	r.IncrementStep()
	r.EditScore(0, -400)
	r.IncrementStep()

	history := r.ScoreHistory()
	assert.Equal(t, []int{200, -200}, history[a.ID])
	assert.Equal(t, 2, r.Step())
}

func TestRosterPlacements(t *testing.T) {
	r := NewRoster(nil)
	r.Add("A", nil, 0, "blue")
	r.Add("B", nil, 0, "red")
	r.Add("C", nil, 0, "green")
	r.EditScore(0, 400)
	r.EditScore(1, 1200)
	r.EditScore(2, 800)

	assert.Equal(t, 1, r.TeamIndexForPlace(First))
	assert.Equal(t, 2, r.TeamIndexForPlace(Second))
	assert.Equal(t, 0, r.TeamIndexForPlace(Third))
}

func TestRosterPlacementsSmallRoster(t *testing.T) {
	r := NewRoster(nil)
	r.Add("A", nil, 0, "blue")
	assert.Equal(t, 0, r.TeamIndexForPlace(First))
	assert.Equal(t, -1, r.TeamIndexForPlace(Second))
	assert.Equal(t, -1, r.TeamIndexForPlace(Third))
}

func TestRosterHasLock(t *testing.T) {
	r := NewRoster(nil)
	r.Add("A", nil, 0, "blue")
	r.Add("B", nil, 0, "red")
	r.EditScore(0, 5000)
	r.EditScore(1, 2000)
	r.IncrementStep()

	assert.True(t, r.HasLock(0))
	assert.False(t, r.HasLock(1))

	// Exactly double is not a lock.
	r.EditScore(1, 500) // 2500; 5000 == 2*2500
	r.IncrementStep()
	assert.False(t, r.HasLock(0))
}

type recordingSaver struct {
	saved   []model.Team
	deleted []string
}

func (s *recordingSaver) QueueSave(team model.Team) { s.saved = append(s.saved, team) }
func (s *recordingSaver) QueueDelete(id string)     { s.deleted = append(s.deleted, id) }

func TestRosterSavedContestantWrites(t *testing.T) {
	saver := &recordingSaver{}
	r := NewRoster(saver)
	team := r.AddSaved(model.SavedContestant{TeamID: "t-1", Name: "Keeper", Color: "purple"})

	r.EditScore(0, 300)
	require.Len(t, saver.saved, 1)
	assert.Equal(t, 300, saver.saved[0].Score)

	r.Remove(0)
	assert.Equal(t, []string{team.ID}, saver.deleted)
}

func TestRosterResetScores(t *testing.T) {
	r := NewRoster(nil)
	r.Add("A", nil, 0, "blue")
	r.EditScore(0, 700)
	r.IncrementStep()
	r.AddSolved()

	r.ResetScores()
	assert.Equal(t, 0, r.Score(0))
	assert.Equal(t, 0, r.Step())
	assert.Equal(t, 0, r.Solved())
	assert.Empty(t, r.ScoreHistory()[r.Teams()[0].ID])
}
