package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"pickem-app-go/logging"
	"pickem-app-go/middleware"
	"pickem-app-go/models"
	"pickem-app-go/services"
)

// PickHandler serves the write side: pick toggles, blazin flags, and
// weekly resets. All endpoints require authentication and act on the
// caller's own picks.
type PickHandler struct {
	merge  *services.MergeService
	logger *logging.Logger
}

// NewPickHandler creates the write-side handler
func NewPickHandler(merge *services.MergeService) *PickHandler {
	return &PickHandler{
		merge:  merge,
		logger: logging.WithPrefix("PickHandler"),
	}
}

type toggleRequest struct {
	Week      int         `json:"week"`
	ContestID int         `json:"contestId"`
	Field     string      `json:"field"` // "line" or "winner"
	Side      models.Side `json:"side"`
}

type blazinRequest struct {
	Week      int `json:"week"`
	ContestID int `json:"contestId"`
}

type resetRequest struct {
	Week int `json:"week"`
}

// Toggle flips one selection of the caller's pick
func (h *PickHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r)
	if user == nil {
		writeError(w, http.StatusUnauthorized, "not authenticated")
		return
	}
	if !h.merge.Loaded() {
		writeNotLoaded(w)
		return
	}

	var req toggleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	err := h.merge.TogglePick(r.Context(), req.Week, user.Name, req.ContestID,
		services.PickField(req.Field), req.Side)
	if err != nil {
		h.writeToggleError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, h.merge.WeekSnapshot(req.Week).Picks[user.Name])
}

// ToggleBlazin flips the featured flag on the caller's pick
func (h *PickHandler) ToggleBlazin(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r)
	if user == nil {
		writeError(w, http.StatusUnauthorized, "not authenticated")
		return
	}
	if !h.merge.Loaded() {
		writeNotLoaded(w)
		return
	}

	var req blazinRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.merge.ToggleBlazin(r.Context(), req.Week, user.Name, req.ContestID); err != nil {
		h.writeToggleError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, h.merge.WeekSnapshot(req.Week).Picks[user.Name])
}

// Reset clears the caller's open picks for a week. Picks on locked
// contests survive the reset.
func (h *PickHandler) Reset(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r)
	if user == nil {
		writeError(w, http.StatusUnauthorized, "not authenticated")
		return
	}
	if !h.merge.Loaded() {
		writeNotLoaded(w)
		return
	}

	var req resetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.merge.ResetWeek(r.Context(), req.Week, user.Name); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to reset picks")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "reset"})
}

func (h *PickHandler) writeToggleError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, services.ErrContestLocked):
		writeError(w, http.StatusConflict, "contest is locked")
	case errors.Is(err, services.ErrUnknownContest):
		writeError(w, http.StatusNotFound, "unknown contest")
	case errors.Is(err, services.ErrBlazinCap):
		writeError(w, http.StatusConflict, "blazin pick limit reached for the week")
	case errors.Is(err, services.ErrNoLinePick):
		writeError(w, http.StatusConflict, "blazin requires a spread pick on the contest")
	default:
		h.logger.Errorf("Pick mutation failed: %v", err)
		writeError(w, http.StatusInternalServerError, "pick update failed")
	}
}
