package models

import "strings"

// LiveState is the coarse status a live-score feed reports for a game
type LiveState string

const (
	LiveStateScheduled   LiveState = "SCHEDULED"
	LiveStateInProgress  LiveState = "IN_PROGRESS"
	LiveStateHalftime    LiveState = "HALFTIME"
	LiveStateEndOfPeriod LiveState = "END_OF_PERIOD"
	LiveStateFinal       LiveState = "FINAL"
)

// LiveStatus is one ephemeral live-score entry, cached per matchup.
// Completed is redundant with the FINAL state but feeds carry both and
// either one is honored.
type LiveStatus struct {
	Away      string    `json:"away"`
	Home      string    `json:"home"`
	AwayScore int       `json:"awayScore"`
	HomeScore int       `json:"homeScore"`
	State     LiveState `json:"state"`
	Period    int       `json:"period"`
	Clock     string    `json:"clock"`
	Completed bool      `json:"completed"`
}

// Key returns the cache key for this entry, a lower-cased "away@home"
// team-name pair.
func (ls LiveStatus) Key() string {
	return strings.ToLower(strings.TrimSpace(ls.Away)) + "@" + strings.ToLower(strings.TrimSpace(ls.Home))
}

// IsTerminal reports whether the game is over
func (ls LiveStatus) IsTerminal() bool {
	return ls.State == LiveStateFinal || ls.Completed
}

// IsActive reports whether continued polling is warranted for this
// entry: anything not yet terminal, including still-scheduled games.
func (ls LiveStatus) IsActive() bool {
	return !ls.IsTerminal()
}

// Result converts a terminal entry into a Result
func (ls LiveStatus) Result() Result {
	return Result{AwayScore: ls.AwayScore, HomeScore: ls.HomeScore}.Normalized()
}

// ParseLiveState maps the many shapes feeds use for game status onto
// the coarse enum. Unrecognized values read as scheduled.
func ParseLiveState(raw string) LiveState {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "FINAL", "STATUS_FINAL", "POST", "COMPLETED", "F":
		return LiveStateFinal
	case "IN_PROGRESS", "STATUS_IN_PROGRESS", "IN", "LIVE":
		return LiveStateInProgress
	case "HALFTIME", "STATUS_HALFTIME", "HALF":
		return LiveStateHalftime
	case "END_OF_PERIOD", "STATUS_END_PERIOD", "END_PERIOD":
		return LiveStateEndOfPeriod
	default:
		return LiveStateScheduled
	}
}
