package handler

import (
	"encoding/json"
	"net/http"
	"trivio/internal/model"
	"trivio/internal/service"
	"trivio/internal/transport/rest/middleware"

	"github.com/gorilla/mux"
)

// SetHandler handles trivia set endpoints
type SetHandler struct {
	setSvc *service.SetService
}

// NewSetHandler creates a new set handler
func NewSetHandler(setSvc *service.SetService) *SetHandler {
	return &SetHandler{setSvc: setSvc}
}

// Create handles POST /v1/sets
func (h *SetHandler) Create(w http.ResponseWriter, r *http.Request) {
	hostID := middleware.GetHostID(r.Context())

	var set model.TriviaSet
	if err := json.NewDecoder(r.Body).Decode(&set); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	created, err := h.setSvc.CreateSet(r.Context(), hostID, &set)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, created)
}

// List handles GET /v1/sets
func (h *SetHandler) List(w http.ResponseWriter, r *http.Request) {
	hostID := middleware.GetHostID(r.Context())

	sets, err := h.setSvc.ListSets(r.Context(), hostID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"sets": sets})
}

// Get handles GET /v1/sets/{setId}
func (h *SetHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["setId"]

	set, err := h.setSvc.GetSet(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if set == nil {
		writeError(w, http.StatusNotFound, "set not found")
		return
	}

	writeJSON(w, http.StatusOK, set)
}

// Update handles PUT /v1/sets/{setId}
func (h *SetHandler) Update(w http.ResponseWriter, r *http.Request) {
	hostID := middleware.GetHostID(r.Context())
	id := mux.Vars(r)["setId"]

	var set model.TriviaSet
	if err := json.NewDecoder(r.Body).Decode(&set); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	set.ID = id

	if err := h.setSvc.UpdateSet(r.Context(), hostID, &set); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, &set)
}

// Delete handles DELETE /v1/sets/{setId}
func (h *SetHandler) Delete(w http.ResponseWriter, r *http.Request) {
	hostID := middleware.GetHostID(r.Context())
	id := mux.Vars(r)["setId"]

	if err := h.setSvc.DeleteSet(r.Context(), hostID, id); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
