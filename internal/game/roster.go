package game

import (
	"sort"

	"trivio/internal/model"
)

// ContestantSaver receives fire-and-forget persistence work for teams flagged
// as saved profiles. Implementations must not block; the roster's in-memory
// state is authoritative regardless of persistence outcome.
type ContestantSaver interface {
	QueueSave(team model.Team)
	QueueDelete(teamID string)
}

// scratch is per-team transient state for the current round and the final
// round. It lives parallel to the team list and is reindexed with it.
type scratch struct {
	Wager           string // pending wager as typed, validated on use
	MarkedIncorrect bool
	FinalCorrect    bool
	FinalAnswer     string
	FinalRevealed   bool
	Spokesperson    string
}

// Roster tracks the active teams, their scores and their scratch state.
// Indices are always dense: 0..N-1 with no gaps.
type Roster struct {
	teams      []model.Team
	scratch    []scratch
	history    [][]int // score after each question step, per team
	selected   int     // team currently on the clock
	defaultIdx int
	step       int
	solved     int
	saver      ContestantSaver
}

// NewRoster builds an empty roster. saver may be nil.
func NewRoster(saver ContestantSaver) *Roster {
	return &Roster{saver: saver}
}

// Add appends a team, assigning it the next free index.
func (r *Roster) Add(name string, members []string, score int, color string) model.Team {
	team := model.NewTeam("", len(r.teams), name, members, score, color)
	r.teams = append(r.teams, team)
	r.scratch = append(r.scratch, scratch{})
	r.history = append(r.history, make([]int, 0, r.step))
	if r.saver != nil && team.Saved {
		r.saver.QueueSave(team)
	}
	return team
}

// AddSaved appends a previously persisted contestant profile.
func (r *Roster) AddSaved(c model.SavedContestant) model.Team {
	team := model.NewTeam(c.TeamID, len(r.teams), c.Name, c.Members, 0, c.Color)
	team.Saved = true
	r.teams = append(r.teams, team)
	r.scratch = append(r.scratch, scratch{})
	r.history = append(r.history, make([]int, 0, r.step))
	return team
}

// Remove deletes the team at index and shifts every higher index down by one.
// Out-of-range indices are a no-op.
func (r *Roster) Remove(index int) {
	if index < 0 || index >= len(r.teams) {
		return
	}
	removed := r.teams[index]
	r.teams = append(r.teams[:index], r.teams[index+1:]...)
	r.scratch = append(r.scratch[:index], r.scratch[index+1:]...)
	r.history = append(r.history[:index], r.history[index+1:]...)
	for i := range r.teams {
		r.teams[i].Index = i
	}
	if r.selected >= len(r.teams) {
		r.selected = 0
	}
	if r.defaultIdx >= len(r.teams) {
		r.defaultIdx = 0
	}
	if r.saver != nil && removed.Saved {
		r.saver.QueueDelete(removed.ID)
	}
}

// EditScore adds delta to the team's score. Negative totals are valid.
// Out-of-range indices are a no-op.
func (r *Roster) EditScore(index, delta int) {
	if index < 0 || index >= len(r.teams) {
		return
	}
	r.teams[index].Score += delta
	if r.saver != nil && r.teams[index].Saved {
		r.saver.QueueSave(r.teams[index])
	}
}

func (r *Roster) setScore(index, score int) {
	if index < 0 || index >= len(r.teams) {
		return
	}
	r.teams[index].Score = score
}

// EditName renames a team. Out-of-range indices are a no-op.
func (r *Roster) EditName(index int, name string) {
	if index < 0 || index >= len(r.teams) {
		return
	}
	r.teams[index].Name = name
	if r.saver != nil && r.teams[index].Saved {
		r.saver.QueueSave(r.teams[index])
	}
}

// EditColor retags a team's color. Out-of-range indices are a no-op.
func (r *Roster) EditColor(index int, color string) {
	if index < 0 || index >= len(r.teams) {
		return
	}
	r.teams[index].Color = color
	if r.saver != nil && r.teams[index].Saved {
		r.saver.QueueSave(r.teams[index])
	}
}

// AddMember appends a member name to a grouped team and makes them the
// current spokesperson.
func (r *Roster) AddMember(index int, name string) {
	if index < 0 || index >= len(r.teams) {
		return
	}
	r.teams[index].Members = append(r.teams[index].Members, name)
	r.scratch[index].Spokesperson = name
}

// RemoveMember drops a member name from a grouped team.
func (r *Roster) RemoveMember(index int, name string) {
	if index < 0 || index >= len(r.teams) {
		return
	}
	members := r.teams[index].Members[:0]
	for _, m := range r.teams[index].Members {
		if m != name {
			members = append(members, m)
		}
	}
	r.teams[index].Members = members
}

// Len is the number of active teams.
func (r *Roster) Len() int { return len(r.teams) }

// Teams returns a copy of the active team list.
func (r *Roster) Teams() []model.Team {
	return append([]model.Team(nil), r.teams...)
}

// Team returns the team at index and whether it exists.
func (r *Roster) Team(index int) (model.Team, bool) {
	if index < 0 || index >= len(r.teams) {
		return model.Team{}, false
	}
	return r.teams[index], true
}

// Score returns the team's score, or 0 out of range.
func (r *Roster) Score(index int) int {
	if index < 0 || index >= len(r.teams) {
		return 0
	}
	return r.teams[index].Score
}

// SetSelected puts the team at index on the clock. Out-of-range indices are
// clamped to 0.
func (r *Roster) SetSelected(index int) {
	if index < 0 || index >= len(r.teams) {
		index = 0
	}
	r.selected = index
}

// Selected returns the index of the team on the clock; defaults to 0 for a
// non-empty roster.
func (r *Roster) Selected() int {
	if r.selected >= len(r.teams) {
		return 0
	}
	return r.selected
}

// MarkDefault remembers the current selection so grading can fall back to it
// after a reversed correct mark.
func (r *Roster) MarkDefault() { r.defaultIdx = r.Selected() }

// IncrementStep records every team's score into its history and rotates the
// spokesperson on grouped teams.
func (r *Roster) IncrementStep() {
	for i := range r.teams {
		r.history[i] = append(r.history[i], r.teams[i].Score)
		if n := len(r.teams[i].Members); n > 0 {
			r.scratch[i].Spokesperson = r.teams[i].Members[r.step%n]
		}
	}
	r.step++
}

// Step is the number of resolved question steps so far.
func (r *Roster) Step() int { return r.step }

// AddSolved counts a clue somebody answered correctly.
func (r *Roster) AddSolved() { r.solved++ }

// Solved is the number of clues answered correctly this game.
func (r *Roster) Solved() int { return r.solved }

// lastRecordedScore is the team's score as of the previous step; 0 before the
// first step.
func (r *Roster) lastRecordedScore(index int) int {
	if index < 0 || index >= len(r.history) {
		return 0
	}
	h := r.history[index]
	if len(h) == 0 {
		return 0
	}
	return h[len(h)-1]
}

// SelectLowestScoring hands the clock to the lowest-scoring team, the rule
// applied when entering the second round.
func (r *Roster) SelectLowestScoring() {
	if len(r.teams) == 0 {
		return
	}
	lowest := 0
	for i := range r.teams {
		if r.lastRecordedScore(i) < r.lastRecordedScore(lowest) {
			lowest = i
		}
	}
	r.selected = lowest
	r.defaultIdx = lowest
}

// ScoreHistory returns per-step scores keyed by team ID, for the game record.
func (r *Roster) ScoreHistory() map[string][]int {
	out := make(map[string][]int, len(r.teams))
	for i, team := range r.teams {
		out[team.ID] = append([]int(nil), r.history[i]...)
	}
	return out
}

// ResetScores zeroes every team and clears scratch state and history.
func (r *Roster) ResetScores() {
	for i := range r.teams {
		r.teams[i].Score = 0
		r.scratch[i] = scratch{}
		r.history[i] = r.history[i][:0]
	}
	r.step = 0
	r.solved = 0
}

// Placing orders teams for the podium.
type Placing int

const (
	First Placing = iota
	Second
	Third
)

// TeamIndexForPlace returns the index of the team in the given podium place,
// or -1 when the roster is too small.
func (r *Roster) TeamIndexForPlace(place Placing) int {
	need := int(place) + 1
	if len(r.teams) < need {
		return -1
	}
	order := make([]int, len(r.teams))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return r.teams[order[a]].Score > r.teams[order[b]].Score
	})
	return order[int(place)]
}

// HasLock reports a runaway: the team leads with more than double the
// runner-up's score going into the final round. Trivially true with fewer
// than two teams.
func (r *Roster) HasLock(index int) bool {
	if len(r.teams) < 2 {
		return true
	}
	my := r.lastRecordedScore(index)
	all := make([]int, 0, len(r.teams))
	for i := range r.teams {
		all = append(all, r.lastRecordedScore(i))
	}
	sort.Ints(all)
	highest := all[len(all)-1]
	runnerUp := all[len(all)-2]
	return my == highest && my > 2*runnerUp
}
