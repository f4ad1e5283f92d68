package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"
	"trivio/internal/model"
	"trivio/internal/service"
	"trivio/internal/transport/rest/middleware"
)

// LiveHandler handles live game session endpoints
type LiveHandler struct {
	liveSvc *service.LiveService
}

// NewLiveHandler creates a new live handler
func NewLiveHandler(liveSvc *service.LiveService) *LiveHandler {
	return &LiveHandler{liveSvc: liveSvc}
}

// Create handles POST /v1/live
func (h *LiveHandler) Create(w http.ResponseWriter, r *http.Request) {
	hostID := middleware.GetHostID(r.Context())

	var req struct {
		HostName string `json:"hostName"`
		SetID    string `json:"setId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.SetID == "" {
		writeError(w, http.StatusBadRequest, "setId is required")
		return
	}

	liveGame, err := h.liveSvc.CreateGame(r.Context(), hostID, req.HostName, req.SetID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, liveGame)
}

// Get handles GET /v1/live
func (h *LiveHandler) Get(w http.ResponseWriter, r *http.Request) {
	hostID := middleware.GetHostID(r.Context())

	liveGame, err := h.liveSvc.GetGame(r.Context(), hostID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if liveGame == nil {
		writeError(w, http.StatusNotFound, "live game not found")
		return
	}

	writeJSON(w, http.StatusOK, liveGame)
}

// Claim handles POST /v1/live/claim (public, host console presents host code)
func (h *LiveHandler) Claim(w http.ResponseWriter, r *http.Request) {
	var req struct {
		HostCode string `json:"hostCode"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.HostCode == "" {
		writeError(w, http.StatusBadRequest, "hostCode is required")
		return
	}

	liveGame, err := h.liveSvc.ClaimHost(r.Context(), req.HostCode)
	if err != nil {
		writeLiveError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, liveGame)
}

// Join handles POST /v1/live/join (public)
func (h *LiveHandler) Join(w http.ResponseWriter, r *http.Request) {
	var req model.JoinRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.PlayerCode == "" || req.Nickname == "" {
		writeError(w, http.StatusBadRequest, "playerCode and nickname are required")
		return
	}

	resp, err := h.liveSvc.Join(r.Context(), req.PlayerCode, req.Nickname)
	if err != nil {
		writeLiveError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// SetDisplay handles POST /v1/live/display
func (h *LiveHandler) SetDisplay(w http.ResponseWriter, r *http.Request) {
	hostID := middleware.GetHostID(r.Context())

	var req struct {
		Display  string `json:"display"`
		Category int    `json:"category"`
		Value    int    `json:"value"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.liveSvc.SetDisplay(r.Context(), hostID, req.Display, req.Category, req.Value); err != nil {
		writeLiveError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"display": req.Display})
}

// EnableBuzzers handles POST /v1/live/buzzers/enable
func (h *LiveHandler) EnableBuzzers(w http.ResponseWriter, r *http.Request) {
	hostID := middleware.GetHostID(r.Context())

	if err := h.liveSvc.EnableBuzzers(r.Context(), hostID); err != nil {
		writeLiveError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "enabled"})
}

// ClearBuzzers handles POST /v1/live/buzzers/clear
func (h *LiveHandler) ClearBuzzers(w http.ResponseWriter, r *http.Request) {
	hostID := middleware.GetHostID(r.Context())

	if err := h.liveSvc.ClearBuzzers(r.Context(), hostID); err != nil {
		writeLiveError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "cleared"})
}

// Buzz handles POST /v1/live/buzz (player). The press is stamped with the
// server receive time.
func (h *LiveHandler) Buzz(w http.ResponseWriter, r *http.Request) {
	gameID := middleware.GetGameID(r.Context())
	playerID := middleware.GetPlayerID(r.Context())

	if err := h.liveSvc.Buzz(r.Context(), gameID, playerID, time.Now()); err != nil {
		writeLiveError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "buzzed"})
}

// Grade handles POST /v1/live/grade
func (h *LiveHandler) Grade(w http.ResponseWriter, r *http.Request) {
	hostID := middleware.GetHostID(r.Context())

	var req struct {
		Status     string `json:"status"`
		PointValue int    `json:"pointValue"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	status := model.LiveResponseStatus(req.Status)
	switch status {
	case model.ResponseCorrect, model.ResponseIncorrect, model.ResponseNeither:
	default:
		writeError(w, http.StatusBadRequest, "status must be correct, incorrect or neither")
		return
	}

	if err := h.liveSvc.Grade(r.Context(), hostID, status, req.PointValue); err != nil {
		writeLiveError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": req.Status})
}

// SubmitResponse handles POST /v1/live/response (player)
func (h *LiveHandler) SubmitResponse(w http.ResponseWriter, r *http.Request) {
	gameID := middleware.GetGameID(r.Context())
	playerID := middleware.GetPlayerID(r.Context())

	var req struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.liveSvc.SubmitResponse(r.Context(), gameID, playerID, req.Text); err != nil {
		writeLiveError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "submitted"})
}

// SubmitWager handles POST /v1/live/wager (player)
func (h *LiveHandler) SubmitWager(w http.ResponseWriter, r *http.Request) {
	gameID := middleware.GetGameID(r.Context())
	playerID := middleware.GetPlayerID(r.Context())

	var req struct {
		Wager int `json:"wager"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.liveSvc.SubmitWager(r.Context(), gameID, playerID, req.Wager); err != nil {
		writeLiveError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "submitted"})
}

// Players handles GET /v1/live/players
func (h *LiveHandler) Players(w http.ResponseWriter, r *http.Request) {
	hostID := middleware.GetHostID(r.Context())

	players, err := h.liveSvc.Players(r.Context(), hostID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"players": players})
}

// Leaderboard handles GET /v1/live/leaderboard
func (h *LiveHandler) Leaderboard(w http.ResponseWriter, r *http.Request) {
	hostID := middleware.GetHostID(r.Context())

	top := 20
	if s := r.URL.Query().Get("top"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			top = n
		}
	}

	entries, err := h.liveSvc.Leaderboard(r.Context(), hostID, top)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"leaderboard": entries})
}

// End handles POST /v1/live/end
func (h *LiveHandler) End(w http.ResponseWriter, r *http.Request) {
	hostID := middleware.GetHostID(r.Context())

	if err := h.liveSvc.EndGame(r.Context(), hostID); err != nil {
		writeLiveError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ended"})
}

func writeLiveError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrGameNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrBuzzersDisabled):
		writeError(w, http.StatusConflict, err.Error())
	default:
		writeError(w, http.StatusBadRequest, err.Error())
	}
}
