package services

import (
	"time"

	"pickem-app-go/models"

	"github.com/itbasis/go-clock"
)

// LockService decides whether a contest is still open for picks. The
// policy is an ordered precedence list; the first rule that matches
// wins. Kickoff time is deliberately checked before results and live
// data so a stale cached FINAL for a same-named matchup from an
// earlier week can never lock an upcoming game.
type LockService struct {
	clock       clock.Clock
	seasonStart time.Time
	seasonWeeks int
	live        *LiveCache
}

// NewLockService creates a lock evaluator against the given season
// calendar and live-status cache.
func NewLockService(clk clock.Clock, seasonStart time.Time, seasonWeeks int, live *LiveCache) *LockService {
	return &LockService{
		clock:       clk,
		seasonStart: seasonStart,
		seasonWeeks: seasonWeeks,
		live:        live,
	}
}

// CurrentWeek returns the clamped current week for the wall clock
func (s *LockService) CurrentWeek() int {
	return models.CurrentWeek(s.clock.Now(), s.seasonStart, s.seasonWeeks)
}

// IsLocked reports whether picks on the contest are frozen.
// Precedence:
//  1. Any week before the current one is immutable history.
//  2. A kickoff still in the future keeps the contest open no matter
//     what the result map or live cache claim.
//  3. A recorded result locks.
//  4. A terminal live status for the matchup locks.
//  5. A kickoff in the past locks.
//  6. With no kickoff, no result and no live data, the contest is open.
func (s *LockService) IsLocked(contest models.Contest, week int, results map[int]models.Result) bool {
	if week < s.CurrentWeek() {
		return true
	}

	now := s.clock.Now()
	if contest.Kickoff != nil && now.Before(*contest.Kickoff) {
		return false
	}

	if _, ok := results[contest.ID]; ok {
		return true
	}

	if s.live != nil {
		if status, ok := s.live.Lookup(contest.Away, contest.Home); ok && status.IsTerminal() {
			return true
		}
	}

	if contest.Kickoff != nil {
		// Step 2 already established now >= kickoff
		return true
	}

	return false
}

// LockedMap evaluates every contest in a week at once, for handlers
// that render a whole week's lock state.
func (s *LockService) LockedMap(week *models.WeekData, weekNum int) map[int]bool {
	out := make(map[int]bool, len(week.Games))
	for _, g := range week.Games {
		out[g.ID] = s.IsLocked(g, weekNum, week.Results)
	}
	return out
}
