package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type scriptedNarrator struct {
	spoken  []string
	stopped int
}

func (n *scriptedNarrator) Speak(text string) { n.spoken = append(n.spoken, text) }
func (n *scriptedNarrator) Stop()             { n.stopped++ }
func (n *scriptedNarrator) IsSpeaking() bool  { return false }

func newTestEngine(t *testing.T, teams int) (*Engine, *scriptedNarrator) {
	t.Helper()
	board, err := Normalize(testSet(6, 5))
	require.NoError(t, err)
	roster := NewRoster(nil)
	for i := 0; i < teams; i++ {
		roster.Add(string(rune('A'+i)), nil, 0, "blue")
	}
	narrator := &scriptedNarrator{}
	return NewEngine(board, roster, narrator), narrator
}

func TestSelectClueOpensAndNarrates(t *testing.T) {
	e, narrator := newTestEngine(t, 2)

	require.True(t, e.SelectClue(1, 0))
	assert.Equal(t, DisplayClue, e.Display())

	clue, response, isDD, isStumper, ok := e.CurrentClue()
	require.True(t, ok)
	assert.Equal(t, "r1 clue 1-0", clue)
	assert.Equal(t, "r1 response 1-0", response)
	assert.False(t, isDD)
	assert.False(t, isStumper)
	assert.Equal(t, []string{"r1 clue 1-0"}, narrator.spoken)
	assert.Equal(t, 200, e.CurrentPointValue())
}

func TestSelectClueRejectsBadCoordinates(t *testing.T) {
	e, _ := newTestEngine(t, 2)

	assert.False(t, e.SelectClue(9, 0))
	assert.False(t, e.SelectClue(0, 9))
	assert.False(t, e.SelectClue(-1, 0))
	assert.Equal(t, DisplayGrid, e.Display())
}

func TestResolvedClueCannotReopen(t *testing.T) {
	e, _ := newTestEngine(t, 2)

	require.True(t, e.SelectClue(0, 0))
	e.ResolveClue(0, 0)

	assert.False(t, e.SelectClue(0, 0))
	assert.True(t, e.Completed(0, 0))
	assert.Equal(t, []string{"r1 clue 0-0"}, e.UsedAnswers())
}

func TestUndoReopensClue(t *testing.T) {
	e, _ := newTestEngine(t, 2)

	require.True(t, e.SelectClue(0, 0))
	e.ResolveClue(-1, 0)
	require.True(t, e.Completed(0, 0))

	e.UndoClue(0, 0)
	assert.False(t, e.Completed(0, 0))
	assert.Empty(t, e.UsedAnswers())
	assert.True(t, e.SelectClue(0, 0))
}

func TestLastMarkWins(t *testing.T) {
	e, _ := newTestEngine(t, 3)

	require.True(t, e.SelectClue(2, 2)) // worth 600
	e.MarkCorrect(0)
	assert.Equal(t, 600, e.Roster().Score(0))

	// Re-marking a different team reverses the first award.
	e.MarkCorrect(1)
	assert.Equal(t, 0, e.Roster().Score(0))
	assert.Equal(t, 600, e.Roster().Score(1))

	// Marking the same team again un-marks it.
	e.MarkCorrect(1)
	assert.Equal(t, 0, e.Roster().Score(1))
}

func TestMarkCorrectPutsWinnerOnTheClock(t *testing.T) {
	e, _ := newTestEngine(t, 3)
	require.True(t, e.SelectClue(0, 0))
	e.MarkCorrect(2)
	assert.Equal(t, 2, e.Roster().Selected())
}

func TestIncorrectMarksAreIndependent(t *testing.T) {
	e, _ := newTestEngine(t, 3)

	require.True(t, e.SelectClue(0, 4)) // worth 1000
	e.MarkIncorrect(0)
	e.MarkIncorrect(1)
	e.MarkCorrect(2)

	assert.Equal(t, -1000, e.Roster().Score(0))
	assert.Equal(t, -1000, e.Roster().Score(1))
	assert.Equal(t, 1000, e.Roster().Score(2))

	// Toggling an incorrect mark off restores the team.
	e.MarkIncorrect(0)
	assert.Equal(t, 0, e.Roster().Score(0))
}

func TestMarkIncorrectClearsCorrectAward(t *testing.T) {
	e, _ := newTestEngine(t, 2)

	require.True(t, e.SelectClue(0, 0))
	e.MarkCorrect(0)
	e.MarkIncorrect(0)
	assert.Equal(t, -200, e.Roster().Score(0))
}

func TestDailyDoubleRegradeDoesNotDoubleCount(t *testing.T) {
	e, narrator := newTestEngine(t, 2)
	e.Roster().EditScore(0, 500)

	require.True(t, e.SelectClue(0, 1)) // the round-1 daily double
	_, _, isDD, _, ok := e.CurrentClue()
	require.True(t, ok)
	require.True(t, isDD)
	assert.Empty(t, narrator.spoken, "narration waits for the wager")

	require.NoError(t, e.MakeDailyDoubleWager("500"))
	assert.Equal(t, []string{"r1 clue 0-1"}, narrator.spoken)

	e.GradeDailyDouble(true)
	assert.Equal(t, 1000, e.Roster().Score(0))
	e.GradeDailyDouble(false)
	assert.Equal(t, 0, e.Roster().Score(0))
	e.GradeDailyDouble(true)
	assert.Equal(t, 1000, e.Roster().Score(0))

	e.FinishClue()
	assert.Equal(t, 1000, e.Roster().Score(0))
}

func TestDailyDoubleWagerValidation(t *testing.T) {
	e, _ := newTestEngine(t, 2)
	e.Roster().EditScore(0, 400)

	require.True(t, e.SelectClue(0, 1))
	err := e.MakeDailyDoubleWager("1500") // over max(ceiling=1000, score=400)
	var wagerErr *WagerError
	require.ErrorAs(t, err, &wagerErr)
	assert.Equal(t, WagerExceedsMax, wagerErr.Kind)

	require.NoError(t, e.MakeDailyDoubleWager("1000"))
}

func TestValidateWager(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		score   int
		ceiling int
		want    int
		kind    WagerErrorKind
		wantErr bool
	}{
		{name: "accepted", input: "500", score: 1000, ceiling: 1000, want: 500},
		{name: "score over ceiling", input: "1500", score: 1600, ceiling: 1000, want: 1500},
		{name: "exceeds max", input: "1500", score: 1000, ceiling: 1000, kind: WagerExceedsMax, wantErr: true},
		{name: "negative", input: "-5", score: 1000, ceiling: 1000, kind: WagerNegative, wantErr: true},
		{name: "not a number", input: "lots", score: 1000, ceiling: 1000, kind: WagerNotANumber, wantErr: true},
		{name: "empty", input: "", score: 1000, ceiling: 1000, kind: WagerNotANumber, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ValidateWager(tt.input, tt.score, tt.ceiling)
			if tt.wantErr {
				var wagerErr *WagerError
				require.ErrorAs(t, err, &wagerErr)
				assert.Equal(t, tt.kind, wagerErr.Kind)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRoundCompletionAdvancesPhase(t *testing.T) {
	e, _ := newTestEngine(t, 2)

	phase := e.Phase()
	for cat := 0; cat < 6; cat++ {
		for val := 0; val < 5; val++ {
			require.True(t, e.SelectClue(cat, val), "cat %d val %d", cat, val)
			if e.ActiveRound().IsDailyDouble(cat, val) {
				phase = e.ResolveClue(cat%2, 100)
			} else {
				phase = e.ResolveClue(cat%2, 0)
			}
		}
	}
	assert.Equal(t, PhaseRound2, phase)
	assert.Equal(t, PhaseRound2, e.Phase())
	assert.Empty(t, e.UsedAnswers(), "used answers reset for the new round")
	assert.False(t, e.Completed(0, 0))
}

func TestRound2HandsClockToTrailingTeam(t *testing.T) {
	e, _ := newTestEngine(t, 2)

	// Team 1 answers everything: team 0 trails.
	for cat := 0; cat < 6; cat++ {
		for val := 0; val < 5; val++ {
			require.True(t, e.SelectClue(cat, val))
			e.ResolveClue(1, 100)
		}
	}
	require.Equal(t, PhaseRound2, e.Phase())
	assert.Equal(t, 0, e.Roster().Selected())
}

func TestSingleRoundSetSkipsToFinal(t *testing.T) {
	set := testSet(2, 1)
	set.HasTwoRounds = false
	set.Round1Daily = nil
	board, err := Normalize(set)
	require.NoError(t, err)
	roster := NewRoster(nil)
	roster.Add("A", nil, 0, "blue")
	e := NewEngine(board, roster, nil)

	require.True(t, e.SelectClue(0, 0))
	e.ResolveClue(0, 0)
	require.True(t, e.SelectClue(1, 0))
	phase := e.ResolveClue(0, 0)

	assert.Equal(t, PhaseFinal, phase)
}

func TestSkipRound(t *testing.T) {
	e, _ := newTestEngine(t, 2)
	assert.Equal(t, PhaseRound2, e.SkipRound())
	assert.Equal(t, PhaseFinal, e.SkipRound())
	assert.Equal(t, PhaseFinal, e.SkipRound())
}

func TestFinalStageGating(t *testing.T) {
	e, _ := newTestEngine(t, 2)
	e.Roster().EditScore(0, 1000)
	e.Roster().EditScore(1, 800)
	e.SkipRound()
	e.SkipRound()
	require.Equal(t, PhaseFinal, e.Phase())

	e.BeginFinalRound()
	assert.Equal(t, FinalMakeWager, e.FinalStage())

	// Advancing without wagers is rejected.
	assert.ErrorIs(t, e.AdvanceFinalStage(), ErrWagersPending)

	require.NoError(t, e.SetFinalWager(0, "900"))
	require.NoError(t, e.SetFinalWager(1, "800"))
	require.NoError(t, e.AdvanceFinalStage())
	assert.Equal(t, FinalSubmitAnswer, e.FinalStage())

	// Advancing without answers is rejected.
	assert.ErrorIs(t, e.AdvanceFinalStage(), ErrAnswersPending)

	e.SubmitFinalAnswer(0, "what is go?")
	e.SubmitFinalAnswer(1, "what is a goroutine?")
	require.NoError(t, e.AdvanceFinalStage())
	assert.Equal(t, FinalRevealResponse, e.FinalStage())

	require.NoError(t, e.AdvanceFinalStage())
	assert.Equal(t, FinalPodium, e.FinalStage())
}

func TestFinalStageStepBack(t *testing.T) {
	e, _ := newTestEngine(t, 1)
	e.Roster().EditScore(0, 100)
	e.SkipRound()
	e.SkipRound()
	e.BeginFinalRound()
	require.NoError(t, e.SetFinalWager(0, "100"))
	require.NoError(t, e.AdvanceFinalStage())
	require.Equal(t, FinalSubmitAnswer, e.FinalStage())

	e.StepBackFinalStage()
	assert.Equal(t, FinalMakeWager, e.FinalStage())
	e.StepBackFinalStage()
	assert.Equal(t, FinalMakeWager, e.FinalStage(), "cannot step back past wagers")
}

func TestFinalWagerRejectsOverScore(t *testing.T) {
	e, _ := newTestEngine(t, 1)
	e.Roster().EditScore(0, 500)
	e.SkipRound()
	e.SkipRound()
	e.BeginFinalRound()

	err := e.SetFinalWager(0, "600")
	var wagerErr *WagerError
	require.ErrorAs(t, err, &wagerErr)
	assert.Equal(t, WagerExceedsMax, wagerErr.Kind)
}

func TestFinalGradingTogglesWithoutDoubleCounting(t *testing.T) {
	e, _ := newTestEngine(t, 2)
	e.Roster().EditScore(0, 1000)
	e.Roster().EditScore(1, 1000)
	e.SkipRound()
	e.SkipRound()
	e.BeginFinalRound()
	require.NoError(t, e.SetFinalWager(0, "700"))
	require.NoError(t, e.SetFinalWager(1, "0"))

	e.MarkFinalCorrect(0)
	assert.Equal(t, 1700, e.Roster().Score(0))
	e.MarkFinalCorrect(0) // un-grade
	assert.Equal(t, 1000, e.Roster().Score(0))
	e.MarkFinalCorrect(0)
	assert.Equal(t, 1700, e.Roster().Score(0))

	e.MarkFinalIncorrect(1)
	assert.Equal(t, 1000, e.Roster().Score(1))
}

func TestEndToEndTwoTeamRoundOne(t *testing.T) {
	e, _ := newTestEngine(t, 2)

	resolved := 0
	for cat := 0; cat < 6; cat++ {
		for val := 0; val < 5; val++ {
			require.True(t, e.SelectClue(cat, val))
			e.ResolveClue(resolved%2, 200)
			resolved++
		}
	}
	require.Equal(t, 30, resolved)
	assert.Equal(t, PhaseRound2, e.Phase())
	assert.Equal(t, 30, e.Roster().Step())
	assert.Equal(t, 30, e.Roster().Solved())

	// The clock rotates to the trailing team on entering round 2.
	trailing := e.Roster().TeamIndexForPlace(Second)
	assert.Equal(t, trailing, e.Roster().Selected())
}

func TestEngineSurvivesShrunkRoster(t *testing.T) {
	e, _ := newTestEngine(t, 3)

	require.True(t, e.SelectClue(0, 0))
	e.MarkCorrect(2)
	e.Roster().Remove(2)

	// Marks against the removed index are no-ops, and finishing does not panic.
	e.MarkCorrect(2)
	e.MarkIncorrect(5)
	e.FinishClue()
	assert.Equal(t, DisplayGrid, e.Display())
}
