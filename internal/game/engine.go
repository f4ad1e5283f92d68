package game

import (
	"errors"
	"strconv"
)

// Phase is the coarse game phase. It only moves forward, except through an
// explicit skip.
type Phase string

const (
	PhaseRound1 Phase = "round1"
	PhaseRound2 Phase = "round2"
	PhaseFinal  Phase = "finalRound"
)

// Display is what the host screen is showing within a round.
type Display string

const (
	DisplayGrid Display = "grid"
	DisplayClue Display = "clue"
)

// FinalStage is the strictly sequential sub-stage chain of the final round.
type FinalStage int

const (
	FinalNotBegun FinalStage = iota
	FinalMakeWager
	FinalSubmitAnswer
	FinalRevealResponse
	FinalPodium
)

var (
	ErrWagersPending  = errors.New("not every team has a valid wager")
	ErrAnswersPending = errors.New("not every team has submitted an answer")
)

// Narrator reads clues aloud. Buzzer enablement and clue auto-advance wait on
// it, best effort.
type Narrator interface {
	Speak(text string)
	Stop()
	IsSpeaking() bool
}

// Engine drives one game of a normalized board against a roster. All
// transitions are synchronous; the engine never blocks and treats malformed
// coordinates or shrunk rosters as no-ops.
type Engine struct {
	board    *Board
	roster   *Roster
	narrator Narrator

	phase      Phase
	display    Display
	finalStage FinalStage

	current         Coord
	clueOpen        bool
	currentClue     string
	currentResponse string
	currentIsDaily  bool
	currentIsStump  bool
	wagerMade       bool
	currentWager    int

	// baseline holds every team's score at clue open so that re-marking
	// reverses and reapplies deltas instead of stacking them.
	baseline    []int
	correctTeam int

	completed      map[Coord]struct{}
	completedCount int
	usedAnswers    []string
}

// NewEngine starts a game at round 1 with the grid showing.
func NewEngine(board *Board, roster *Roster, narrator Narrator) *Engine {
	if narrator == nil {
		narrator = NopNarrator{}
	}
	roster.MarkDefault()
	return &Engine{
		board:       board,
		roster:      roster,
		narrator:    narrator,
		phase:       PhaseRound1,
		display:     DisplayGrid,
		finalStage:  FinalNotBegun,
		correctTeam: -1,
		completed:   make(map[Coord]struct{}),
	}
}

func (e *Engine) Phase() Phase           { return e.phase }
func (e *Engine) Display() Display       { return e.display }
func (e *Engine) FinalStage() FinalStage { return e.finalStage }
func (e *Engine) Roster() *Roster        { return e.roster }
func (e *Engine) Board() *Board          { return e.board }

// ActiveRound returns the board for the current phase, nil in the final round.
func (e *Engine) ActiveRound() *RoundBoard {
	switch e.phase {
	case PhaseRound1:
		return e.board.Round1
	case PhaseRound2:
		return e.board.Round2
	}
	return nil
}

// UsedAnswers lists the clue texts resolved so far in the active round.
func (e *Engine) UsedAnswers() []string {
	return append([]string(nil), e.usedAnswers...)
}

// Completed reports whether the cell has been played this round.
func (e *Engine) Completed(category, value int) bool {
	_, ok := e.completed[Coord{Category: category, Value: value}]
	return ok
}

// CurrentClue describes the open clue. ok is false when the grid is showing.
func (e *Engine) CurrentClue() (clue, response string, isDailyDouble, isStumper bool, ok bool) {
	if !e.clueOpen {
		return "", "", false, false, false
	}
	return e.currentClue, e.currentResponse, e.currentIsDaily, e.currentIsStump, true
}

// CurrentPointValue is the grid value of the open clue, or the wager once a
// daily-double wager has been made.
func (e *Engine) CurrentPointValue() int {
	if e.currentIsDaily {
		return e.currentWager
	}
	rb := e.ActiveRound()
	if rb == nil {
		return 0
	}
	return rb.PointValue(e.current.Value)
}

// SelectClue opens the cell at (category, value). Completed cells, empty
// cells, out-of-range coordinates and re-selection while a clue is open are
// all no-ops; the return value reports whether the clue opened.
func (e *Engine) SelectClue(category, value int) bool {
	rb := e.ActiveRound()
	if rb == nil || e.clueOpen {
		return false
	}
	coord := Coord{Category: category, Value: value}
	if _, done := e.completed[coord]; done {
		return false
	}
	clue, response := rb.ClueAt(category, value)
	if clue == "" {
		return false
	}

	e.current = coord
	e.clueOpen = true
	e.display = DisplayClue
	e.currentClue = clue
	e.currentResponse = response
	e.currentIsDaily = rb.IsDailyDouble(category, value)
	e.currentIsStump = rb.IsTripleStumper(category, value)
	e.wagerMade = false
	e.currentWager = 0
	e.correctTeam = -1

	e.baseline = make([]int, e.roster.Len())
	for i := range e.baseline {
		e.baseline[i] = e.roster.Score(i)
	}
	for i := range e.roster.scratch {
		e.roster.scratch[i].MarkedIncorrect = false
	}

	// Daily doubles hold narration until the wager is in.
	if !e.currentIsDaily {
		e.narrator.Speak(clue)
	}
	return true
}

// MakeDailyDoubleWager validates and records the on-the-clock team's wager,
// then starts narration.
func (e *Engine) MakeDailyDoubleWager(input string) error {
	if !e.clueOpen || !e.currentIsDaily || e.wagerMade {
		return nil
	}
	score := e.roster.Score(e.roster.Selected())
	amount, err := ValidateWager(input, score, WagerCeiling(e.phase))
	if err != nil {
		return err
	}
	e.currentWager = amount
	e.wagerMade = true
	e.narrator.Speak(e.currentClue)
	return nil
}

// MarkCorrect grades a team correct on a regular clue. At most one team can
// be correct; marking a new team reverses the previous team's award. Marking
// the already-correct team un-marks it and returns the clock to the default
// selection.
func (e *Engine) MarkCorrect(teamIdx int) {
	if !e.clueOpen || e.currentIsDaily || teamIdx < 0 || teamIdx >= e.roster.Len() {
		return
	}
	if e.correctTeam == teamIdx {
		e.correctTeam = -1
		e.roster.SetSelected(e.roster.defaultIdx)
	} else {
		e.roster.scratch[teamIdx].MarkedIncorrect = false
		e.correctTeam = teamIdx
		e.roster.SetSelected(teamIdx)
	}
	e.reapplyMarks()
}

// MarkIncorrect toggles a team's incorrect mark (-pointValue). Incorrect
// marks are independent across teams; marking the correct team incorrect
// clears its correct award.
func (e *Engine) MarkIncorrect(teamIdx int) {
	if !e.clueOpen || e.currentIsDaily || teamIdx < 0 || teamIdx >= e.roster.Len() {
		return
	}
	if e.correctTeam == teamIdx {
		e.correctTeam = -1
	}
	e.roster.scratch[teamIdx].MarkedIncorrect = !e.roster.scratch[teamIdx].MarkedIncorrect
	e.reapplyMarks()
}

// GradeDailyDouble grades the on-the-clock team's daily-double response.
// Regrading before the clue is finished reverses the previous delta.
func (e *Engine) GradeDailyDouble(correct bool) {
	if !e.clueOpen || !e.currentIsDaily || !e.wagerMade {
		return
	}
	sel := e.roster.Selected()
	if sel >= len(e.baseline) {
		return
	}
	delta := -e.currentWager
	if correct {
		delta = e.currentWager
		e.correctTeam = sel
	} else {
		e.correctTeam = -1
	}
	e.roster.setScore(sel, e.baseline[sel]+delta)
}

// reapplyMarks rebuilds every team's score from the clue-open baseline so
// repeated re-marking never double-counts.
func (e *Engine) reapplyMarks() {
	pv := e.CurrentPointValue()
	for i := 0; i < e.roster.Len() && i < len(e.baseline); i++ {
		score := e.baseline[i]
		if e.roster.scratch[i].MarkedIncorrect {
			score -= pv
		}
		if i == e.correctTeam {
			score += pv
		}
		e.roster.setScore(i, score)
	}
}

// FinishClue closes the open clue: stops narration, marks the cell completed,
// records the answer as used, advances the question step, and auto-advances
// the phase when the round is done. Returns the (possibly new) phase.
func (e *Engine) FinishClue() Phase {
	if !e.clueOpen {
		return e.phase
	}
	e.narrator.Stop()
	if e.correctTeam >= 0 {
		e.roster.AddSolved()
	}
	e.completed[e.current] = struct{}{}
	e.completedCount++
	e.usedAnswers = append(e.usedAnswers, e.currentClue)
	e.roster.IncrementStep()
	e.roster.MarkDefault()

	e.clueOpen = false
	e.display = DisplayGrid
	e.correctTeam = -1
	e.wagerMade = false

	if e.RoundComplete() {
		e.advancePhase()
	}
	return e.phase
}

// ResolveClue is the one-call form: mark correctTeam (pass a negative index
// for "nobody"), using wager for daily doubles, then finish the clue.
func (e *Engine) ResolveClue(correctTeam, wager int) Phase {
	if !e.clueOpen {
		return e.phase
	}
	if e.currentIsDaily {
		e.currentWager = wager
		e.wagerMade = true
		e.GradeDailyDouble(correctTeam >= 0)
	} else if correctTeam >= 0 {
		e.MarkCorrect(correctTeam)
	}
	return e.FinishClue()
}

// UndoClue reopens a completed cell for scoring and removes its text from the
// used-answers list. No-op while a clue is open or for untouched cells.
func (e *Engine) UndoClue(category, value int) {
	if e.clueOpen {
		return
	}
	coord := Coord{Category: category, Value: value}
	if _, done := e.completed[coord]; !done {
		return
	}
	delete(e.completed, coord)
	e.completedCount--
	rb := e.ActiveRound()
	if rb == nil {
		return
	}
	clue, _ := rb.ClueAt(category, value)
	for i, used := range e.usedAnswers {
		if used == clue {
			e.usedAnswers = append(e.usedAnswers[:i], e.usedAnswers[i+1:]...)
			break
		}
	}
}

// RoundComplete reports whether every playable clue in the active round has
// been resolved.
func (e *Engine) RoundComplete() bool {
	rb := e.ActiveRound()
	if rb == nil {
		return false
	}
	return e.completedCount >= rb.SlotCount()
}

// SkipRound advances the phase without finishing the board.
func (e *Engine) SkipRound() Phase {
	if e.phase == PhaseFinal {
		return e.phase
	}
	e.advancePhase()
	return e.phase
}

func (e *Engine) advancePhase() {
	switch e.phase {
	case PhaseRound1:
		if e.board.HasTwoRounds {
			e.phase = PhaseRound2
			e.roster.SelectLowestScoring()
		} else {
			e.phase = PhaseFinal
		}
	case PhaseRound2:
		e.phase = PhaseFinal
	}
	e.completed = make(map[Coord]struct{})
	e.completedCount = 0
	e.usedAnswers = nil
	e.clueOpen = false
	e.display = DisplayGrid
}

// BeginFinalRound opens wager entry. No-op unless the game has reached the
// final phase.
func (e *Engine) BeginFinalRound() {
	if e.phase != PhaseFinal || e.finalStage != FinalNotBegun {
		return
	}
	e.finalStage = FinalMakeWager
	e.narrator.Speak(e.board.Final.Category)
}

// SetFinalWager records a team's final-round wager. The maximum is the team's
// score; teams at zero or below sit the final round out.
func (e *Engine) SetFinalWager(teamIdx int, input string) error {
	if e.finalStage != FinalMakeWager || teamIdx < 0 || teamIdx >= e.roster.Len() {
		return nil
	}
	score := e.roster.Score(teamIdx)
	if score <= 0 {
		return nil
	}
	if _, err := ValidateWager(input, score, 0); err != nil {
		return err
	}
	e.roster.scratch[teamIdx].Wager = input
	return nil
}

// SubmitFinalAnswer records a team's written final response.
func (e *Engine) SubmitFinalAnswer(teamIdx int, text string) {
	if e.finalStage != FinalSubmitAnswer || teamIdx < 0 || teamIdx >= e.roster.Len() {
		return
	}
	e.roster.scratch[teamIdx].FinalAnswer = text
}

// FinalAnswer returns a team's submitted final answer.
func (e *Engine) FinalAnswer(teamIdx int) string {
	if teamIdx < 0 || teamIdx >= e.roster.Len() {
		return ""
	}
	return e.roster.scratch[teamIdx].FinalAnswer
}

// WagersValid reports whether every team with a positive score has a wager
// within range.
func (e *Engine) WagersValid() bool {
	for i := 0; i < e.roster.Len(); i++ {
		score := e.roster.Score(i)
		if score <= 0 {
			continue
		}
		if _, err := ValidateWager(e.roster.scratch[i].Wager, score, 0); err != nil {
			return false
		}
	}
	return true
}

// answersSubmitted reports whether every eligible team has written something.
func (e *Engine) answersSubmitted() bool {
	for i := 0; i < e.roster.Len(); i++ {
		if e.roster.Score(i) <= 0 {
			continue
		}
		if e.roster.scratch[i].FinalAnswer == "" {
			return false
		}
	}
	return true
}

// AdvanceFinalStage steps the final round forward. Leaving MakeWager requires
// every eligible wager; leaving SubmitAnswer requires every eligible answer.
func (e *Engine) AdvanceFinalStage() error {
	switch e.finalStage {
	case FinalNotBegun:
		e.BeginFinalRound()
	case FinalMakeWager:
		if !e.WagersValid() {
			return ErrWagersPending
		}
		e.finalStage = FinalSubmitAnswer
		e.narrator.Speak(e.board.Final.Clue)
	case FinalSubmitAnswer:
		if !e.answersSubmitted() {
			return ErrAnswersPending
		}
		e.finalStage = FinalRevealResponse
	case FinalRevealResponse:
		e.finalStage = FinalPodium
	}
	return nil
}

// StepBackFinalStage is the host's one-step backward navigation.
func (e *Engine) StepBackFinalStage() {
	if e.finalStage > FinalMakeWager {
		e.finalStage--
	}
}

// MarkFinalCorrect toggles a team's final response between correct and
// ungraded, applying or reversing +wager.
func (e *Engine) MarkFinalCorrect(teamIdx int) {
	if teamIdx < 0 || teamIdx >= e.roster.Len() {
		return
	}
	amount := e.finalWagerAmount(teamIdx)
	sc := &e.roster.scratch[teamIdx]
	if sc.FinalCorrect {
		e.roster.EditScore(teamIdx, -amount)
	} else {
		e.roster.EditScore(teamIdx, amount)
	}
	sc.FinalCorrect = !sc.FinalCorrect
}

// MarkFinalIncorrect toggles a team's final response between incorrect and
// ungraded, applying or reversing -wager.
func (e *Engine) MarkFinalIncorrect(teamIdx int) {
	if teamIdx < 0 || teamIdx >= e.roster.Len() {
		return
	}
	amount := e.finalWagerAmount(teamIdx)
	sc := &e.roster.scratch[teamIdx]
	if sc.MarkedIncorrect {
		e.roster.EditScore(teamIdx, amount)
	} else {
		e.roster.EditScore(teamIdx, -amount)
	}
	sc.MarkedIncorrect = !sc.MarkedIncorrect
}

// RevealFinalAnswer flags a team's final response as shown to the room.
func (e *Engine) RevealFinalAnswer(teamIdx int) {
	if teamIdx < 0 || teamIdx >= e.roster.Len() {
		return
	}
	e.roster.scratch[teamIdx].FinalRevealed = true
}

func (e *Engine) finalWagerAmount(teamIdx int) int {
	n, err := strconv.Atoi(e.roster.scratch[teamIdx].Wager)
	if err != nil {
		return 0
	}
	return n
}
