package handlers

import (
	"net/http"
	"strconv"

	"pickem-app-go/logging"
	"pickem-app-go/models"
	"pickem-app-go/services"

	"github.com/gorilla/mux"
)

// WeekResponse is everything the dashboard needs to render one week
type WeekResponse struct {
	Week        int                           `json:"week"`
	CurrentWeek int                           `json:"currentWeek"`
	Games       []models.Contest              `json:"games"`
	Results     map[int]models.Result         `json:"results"`
	Picks       map[string]models.PickerPicks `json:"picks"`
	Locked      map[int]bool                  `json:"locked"`
}

// DashboardHandler serves the read side: week views, leaderboards,
// record tables, lone wolves, profits and streaks. Every endpoint
// returns 503 until the startup load completes.
type DashboardHandler struct {
	merge       *services.MergeService
	locker      *services.LockService
	aggregation *services.AggregationService
	logger      *logging.Logger
}

// NewDashboardHandler creates the read-side handler
func NewDashboardHandler(merge *services.MergeService, locker *services.LockService, aggregation *services.AggregationService) *DashboardHandler {
	return &DashboardHandler{
		merge:       merge,
		locker:      locker,
		aggregation: aggregation,
		logger:      logging.WithPrefix("DashboardHandler"),
	}
}

// GetWeek serves the merged view for one week
func (h *DashboardHandler) GetWeek(w http.ResponseWriter, r *http.Request) {
	if !h.merge.Loaded() {
		writeNotLoaded(w)
		return
	}

	week, err := strconv.Atoi(mux.Vars(r)["week"])
	if err != nil || week < 1 {
		writeError(w, http.StatusBadRequest, "invalid week")
		return
	}

	data := h.merge.WeekSnapshot(week)
	writeJSON(w, http.StatusOK, WeekResponse{
		Week:        week,
		CurrentWeek: h.locker.CurrentWeek(),
		Games:       data.Games,
		Results:     data.Results,
		Picks:       data.Picks,
		Locked:      h.locker.LockedMap(data, week),
	})
}

// GetLeaderboard serves the spread-pick leaderboard, or the blazin
// leaderboard with ?blazin=true.
func (h *DashboardHandler) GetLeaderboard(w http.ResponseWriter, r *http.Request) {
	if !h.merge.Loaded() {
		writeNotLoaded(w)
		return
	}

	if r.URL.Query().Get("blazin") == "true" {
		writeJSON(w, http.StatusOK, h.aggregation.BlazinLeaderboard())
		return
	}
	writeJSON(w, http.StatusOK, h.aggregation.Leaderboard())
}

// GetRecords serves one picker's record table. The kind query selects
// team, blazin-team, or blazin-spread bucketing; sort and desc control
// ordering.
func (h *DashboardHandler) GetRecords(w http.ResponseWriter, r *http.Request) {
	if !h.merge.Loaded() {
		writeNotLoaded(w)
		return
	}

	picker := mux.Vars(r)["picker"]
	var rows []services.TeamRecordRow
	switch r.URL.Query().Get("kind") {
	case "blazin":
		rows = h.aggregation.BlazinTeamRecords(picker)
	case "spread":
		rows = h.aggregation.BlazinSpreadRecords(picker)
	default:
		rows = h.aggregation.TeamRecords(picker)
	}

	state := services.SortState{Column: services.SortByLabel}
	if col := r.URL.Query().Get("sort"); col != "" {
		state.Column = services.SortColumn(col)
		state.Descending = state.Column != services.SortByLabel
	}
	if r.URL.Query().Get("desc") == "true" {
		state.Descending = true
	} else if r.URL.Query().Get("desc") == "false" {
		state.Descending = false
	}
	services.SortRecordRows(rows, state)

	writeJSON(w, http.StatusOK, rows)
}

// GetWolves serves lone-wolf occurrences for the requested variant
func (h *DashboardHandler) GetWolves(w http.ResponseWriter, r *http.Request) {
	if !h.merge.Loaded() {
		writeNotLoaded(w)
		return
	}

	variant := services.WolfSpread
	switch r.URL.Query().Get("variant") {
	case "straight":
		variant = services.WolfStraightUp
	case "blazin":
		variant = services.WolfSpreadBlazin
	}
	writeJSON(w, http.StatusOK, h.aggregation.LoneWolves(variant))
}

// GetProfits serves the P&L simulation
func (h *DashboardHandler) GetProfits(w http.ResponseWriter, r *http.Request) {
	if !h.merge.Loaded() {
		writeNotLoaded(w)
		return
	}
	writeJSON(w, http.StatusOK, h.aggregation.Profits())
}

// GetStreaks serves current and best win streaks
func (h *DashboardHandler) GetStreaks(w http.ResponseWriter, r *http.Request) {
	if !h.merge.Loaded() {
		writeNotLoaded(w)
		return
	}
	writeJSON(w, http.StatusOK, h.aggregation.Streaks())
}
