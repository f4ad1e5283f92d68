package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"trivio/internal/game"
	"trivio/internal/model"
	"trivio/internal/service"
	"trivio/internal/transport/rest/middleware"

	"github.com/gorilla/mux"
)

// GameHandler exposes the host's in-memory game engine over REST. Every
// mutation returns the refreshed game state so the host UI can render from
// the response alone.
type GameHandler struct {
	gameSvc *service.GameService
}

// NewGameHandler creates a new game handler
func NewGameHandler(gameSvc *service.GameService) *GameHandler {
	return &GameHandler{gameSvc: gameSvc}
}

// gameState is the serialized view of an engine.
type gameState struct {
	Phase        game.Phase      `json:"phase"`
	Display      game.Display    `json:"display"`
	FinalStage   game.FinalStage `json:"finalStage"`
	Teams        []model.Team    `json:"teams"`
	SelectedTeam int             `json:"selectedTeam"`
	UsedAnswers  []string        `json:"usedAnswers"`
	Clue         *clueState      `json:"clue,omitempty"`
	RoundDone    bool            `json:"roundDone"`

	// Podium holds team indexes for first/second/third once the game reaches
	// the final round; -1 marks places the roster cannot fill. RunawayLock is
	// true when the leader cannot be caught.
	Podium      []int `json:"podium,omitempty"`
	RunawayLock bool  `json:"runawayLock,omitempty"`
}

type clueState struct {
	Clue        string `json:"clue"`
	Response    string `json:"response"`
	DailyDouble bool   `json:"dailyDouble"`
	Stumper     bool   `json:"tripleStumper"`
	PointValue  int    `json:"pointValue"`
}

func snapshot(e *game.Engine) *gameState {
	state := &gameState{
		Phase:        e.Phase(),
		Display:      e.Display(),
		FinalStage:   e.FinalStage(),
		Teams:        e.Roster().Teams(),
		SelectedTeam: e.Roster().Selected(),
		UsedAnswers:  e.UsedAnswers(),
		RoundDone:    e.RoundComplete(),
	}
	if e.Phase() == game.PhaseFinal {
		roster := e.Roster()
		state.Podium = []int{
			roster.TeamIndexForPlace(game.First),
			roster.TeamIndexForPlace(game.Second),
			roster.TeamIndexForPlace(game.Third),
		}
		if leader := state.Podium[0]; leader >= 0 {
			state.RunawayLock = roster.HasLock(leader)
		}
	}
	if clue, response, isDD, isStumper, ok := e.CurrentClue(); ok {
		state.Clue = &clueState{
			Clue:        clue,
			Response:    response,
			DailyDouble: isDD,
			Stumper:     isStumper,
			PointValue:  e.CurrentPointValue(),
		}
	}
	return state
}

// withEngine runs fn on the host's engine and writes the refreshed state.
func (h *GameHandler) withEngine(w http.ResponseWriter, r *http.Request, fn func(e *game.Engine) error) {
	hostID := middleware.GetHostID(r.Context())

	var state *gameState
	err := h.gameSvc.WithEngine(hostID, func(e *game.Engine) error {
		if err := fn(e); err != nil {
			return err
		}
		state = snapshot(e)
		return nil
	})
	if err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, service.ErrNoActiveGame) {
			status = http.StatusNotFound
		}
		writeError(w, status, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, state)
}

// Start handles POST /v1/games
func (h *GameHandler) Start(w http.ResponseWriter, r *http.Request) {
	hostID := middleware.GetHostID(r.Context())

	var req struct {
		SetID string `json:"setId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.SetID == "" {
		writeError(w, http.StatusBadRequest, "setId is required")
		return
	}

	engine, err := h.gameSvc.StartGame(r.Context(), hostID, req.SetID)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, snapshot(engine))
}

// State handles GET /v1/games/state
func (h *GameHandler) State(w http.ResponseWriter, r *http.Request) {
	h.withEngine(w, r, func(e *game.Engine) error { return nil })
}

// AddTeam handles POST /v1/games/teams
func (h *GameHandler) AddTeam(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name    string   `json:"name"`
		Members []string `json:"members"`
		Score   int      `json:"score"`
		Color   string   `json:"color"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}

	h.withEngine(w, r, func(e *game.Engine) error {
		e.Roster().Add(req.Name, req.Members, req.Score, req.Color)
		return nil
	})
}

// AddSavedTeam handles POST /v1/games/teams/saved
func (h *GameHandler) AddSavedTeam(w http.ResponseWriter, r *http.Request) {
	hostID := middleware.GetHostID(r.Context())

	var req struct {
		TeamID string `json:"teamId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.TeamID == "" {
		writeError(w, http.StatusBadRequest, "teamId is required")
		return
	}

	saved, err := h.gameSvc.LoadSavedContestants(r.Context(), hostID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	var profile *model.SavedContestant
	for _, c := range saved {
		if c.TeamID == req.TeamID {
			profile = c
			break
		}
	}
	if profile == nil {
		writeError(w, http.StatusNotFound, "saved contestant not found")
		return
	}

	h.withEngine(w, r, func(e *game.Engine) error {
		e.Roster().AddSaved(*profile)
		return nil
	})
}

// Contestants handles GET /v1/games/contestants
func (h *GameHandler) Contestants(w http.ResponseWriter, r *http.Request) {
	hostID := middleware.GetHostID(r.Context())

	saved, err := h.gameSvc.LoadSavedContestants(r.Context(), hostID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"contestants": saved})
}

// RemoveTeam handles DELETE /v1/games/teams/{index}
func (h *GameHandler) RemoveTeam(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(mux.Vars(r)["index"])
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid team index")
		return
	}

	h.withEngine(w, r, func(e *game.Engine) error {
		e.Roster().Remove(index)
		return nil
	})
}

// EditScore handles POST /v1/games/teams/{index}/score
func (h *GameHandler) EditScore(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(mux.Vars(r)["index"])
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid team index")
		return
	}

	var req struct {
		Delta int `json:"delta"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	h.withEngine(w, r, func(e *game.Engine) error {
		e.Roster().EditScore(index, req.Delta)
		return nil
	})
}

// SelectClue handles POST /v1/games/clue/select
func (h *GameHandler) SelectClue(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Category int `json:"category"`
		Value    int `json:"value"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	h.withEngine(w, r, func(e *game.Engine) error {
		e.SelectClue(req.Category, req.Value)
		return nil
	})
}

// Wager handles POST /v1/games/clue/wager
func (h *GameHandler) Wager(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Wager string `json:"wager"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	h.withEngine(w, r, func(e *game.Engine) error {
		return e.MakeDailyDoubleWager(req.Wager)
	})
}

type teamRequest struct {
	Team int `json:"team"`
}

// MarkCorrect handles POST /v1/games/clue/correct
func (h *GameHandler) MarkCorrect(w http.ResponseWriter, r *http.Request) {
	var req teamRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	h.withEngine(w, r, func(e *game.Engine) error {
		e.MarkCorrect(req.Team)
		return nil
	})
}

// MarkIncorrect handles POST /v1/games/clue/incorrect
func (h *GameHandler) MarkIncorrect(w http.ResponseWriter, r *http.Request) {
	var req teamRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	h.withEngine(w, r, func(e *game.Engine) error {
		e.MarkIncorrect(req.Team)
		return nil
	})
}

// GradeDailyDouble handles POST /v1/games/clue/daily
func (h *GameHandler) GradeDailyDouble(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Correct bool `json:"correct"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	h.withEngine(w, r, func(e *game.Engine) error {
		e.GradeDailyDouble(req.Correct)
		return nil
	})
}

// FinishClue handles POST /v1/games/clue/finish
func (h *GameHandler) FinishClue(w http.ResponseWriter, r *http.Request) {
	h.withEngine(w, r, func(e *game.Engine) error {
		e.FinishClue()
		return nil
	})
}

// UndoClue handles POST /v1/games/clue/undo
func (h *GameHandler) UndoClue(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Category int `json:"category"`
		Value    int `json:"value"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	h.withEngine(w, r, func(e *game.Engine) error {
		e.UndoClue(req.Category, req.Value)
		return nil
	})
}

// SkipRound handles POST /v1/games/round/skip
func (h *GameHandler) SkipRound(w http.ResponseWriter, r *http.Request) {
	h.withEngine(w, r, func(e *game.Engine) error {
		e.SkipRound()
		return nil
	})
}

// BeginFinal handles POST /v1/games/final/begin
func (h *GameHandler) BeginFinal(w http.ResponseWriter, r *http.Request) {
	h.withEngine(w, r, func(e *game.Engine) error {
		e.BeginFinalRound()
		return nil
	})
}

// FinalWager handles POST /v1/games/final/wager
func (h *GameHandler) FinalWager(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Team  int    `json:"team"`
		Wager string `json:"wager"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	h.withEngine(w, r, func(e *game.Engine) error {
		return e.SetFinalWager(req.Team, req.Wager)
	})
}

// FinalAnswer handles POST /v1/games/final/answer
func (h *GameHandler) FinalAnswer(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Team int    `json:"team"`
		Text string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	h.withEngine(w, r, func(e *game.Engine) error {
		e.SubmitFinalAnswer(req.Team, req.Text)
		return nil
	})
}

// FinalAdvance handles POST /v1/games/final/advance
func (h *GameHandler) FinalAdvance(w http.ResponseWriter, r *http.Request) {
	h.withEngine(w, r, func(e *game.Engine) error {
		return e.AdvanceFinalStage()
	})
}

// FinalBack handles POST /v1/games/final/back
func (h *GameHandler) FinalBack(w http.ResponseWriter, r *http.Request) {
	h.withEngine(w, r, func(e *game.Engine) error {
		e.StepBackFinalStage()
		return nil
	})
}

// FinalCorrect handles POST /v1/games/final/correct
func (h *GameHandler) FinalCorrect(w http.ResponseWriter, r *http.Request) {
	var req teamRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	h.withEngine(w, r, func(e *game.Engine) error {
		e.MarkFinalCorrect(req.Team)
		return nil
	})
}

// FinalIncorrect handles POST /v1/games/final/incorrect
func (h *GameHandler) FinalIncorrect(w http.ResponseWriter, r *http.Request) {
	var req teamRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	h.withEngine(w, r, func(e *game.Engine) error {
		e.MarkFinalIncorrect(req.Team)
		return nil
	})
}

// FinalReveal handles POST /v1/games/final/reveal
func (h *GameHandler) FinalReveal(w http.ResponseWriter, r *http.Request) {
	var req teamRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	h.withEngine(w, r, func(e *game.Engine) error {
		e.RevealFinalAnswer(req.Team)
		return nil
	})
}

// Finish handles POST /v1/games/finish
func (h *GameHandler) Finish(w http.ResponseWriter, r *http.Request) {
	hostID := middleware.GetHostID(r.Context())

	var req struct {
		Rating float64 `json:"rating"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	record, err := h.gameSvc.FinishGame(r.Context(), hostID, req.Rating)
	if err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, service.ErrNoActiveGame) {
			status = http.StatusNotFound
		}
		writeError(w, status, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, record)
}

// History handles GET /v1/games/history
func (h *GameHandler) History(w http.ResponseWriter, r *http.Request) {
	hostID := middleware.GetHostID(r.Context())

	limit := 20
	if s := r.URL.Query().Get("limit"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			limit = n
		}
	}

	records, err := h.gameSvc.History(r.Context(), hostID, limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"games": records})
}
