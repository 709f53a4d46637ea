package models

import (
	"time"
)

// CurrentWeek computes the 1-based week number for the given wall-clock
// time against the season start date, clamped to [1, weeksPerSeason].
// The result is monotonically non-decreasing as real time passes.
func CurrentWeek(now, seasonStart time.Time, weeksPerSeason int) int {
	week := 1
	if now.After(seasonStart) {
		week = int(now.Sub(seasonStart)/(7*24*time.Hour)) + 1
	}
	if week < 1 {
		week = 1
	}
	if week > weeksPerSeason {
		week = weeksPerSeason
	}
	return week
}

// WeekData is the authoritative merged state for one week: the ordered
// contest list, results by contest id, and picks by picker and contest
// id. It is owned by the merge layer; everything else reads snapshots.
type WeekData struct {
	Games   []Contest           `json:"games"`
	Results map[int]Result      `json:"results"`
	Picks   map[string]PickerPicks `json:"picks"`
}

// NewWeekData returns an empty week
func NewWeekData() *WeekData {
	return &WeekData{
		Results: make(map[int]Result),
		Picks:   make(map[string]PickerPicks),
	}
}

// IsEmpty reports whether the week holds no data from any source
func (w *WeekData) IsEmpty() bool {
	return len(w.Games) == 0 && len(w.Results) == 0 && len(w.Picks) == 0
}

// GameByID finds a contest by its within-week id
func (w *WeekData) GameByID(id int) (Contest, bool) {
	for _, g := range w.Games {
		if g.ID == id {
			return g, true
		}
	}
	return Contest{}, false
}

// GameByTeams finds a contest by fuzzy team matching, exact matchup key
// first, then pairwise containment.
func (w *WeekData) GameByTeams(away, home string) (Contest, bool) {
	key := MatchupKey(away, home)
	for _, g := range w.Games {
		if g.MatchupKey() == key {
			return g, true
		}
	}
	for _, g := range w.Games {
		if TeamsMatch(g.Away, away) && TeamsMatch(g.Home, home) {
			return g, true
		}
	}
	return Contest{}, false
}

// Clone returns a deep copy of the week
func (w *WeekData) Clone() *WeekData {
	out := &WeekData{
		Games:   make([]Contest, len(w.Games)),
		Results: make(map[int]Result, len(w.Results)),
		Picks:   make(map[string]PickerPicks, len(w.Picks)),
	}
	copy(out.Games, w.Games)
	for id, r := range w.Results {
		out.Results[id] = r
	}
	for picker, picks := range w.Picks {
		out.Picks[picker] = picks.Clone()
	}
	return out
}
