package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"pickem-app-go/logging"
	"pickem-app-go/models"
)

// sourceRank orders the data sources. A result already in the table is
// only overwritten by a source of equal or higher rank, which makes the
// merged outcome independent of arrival order.
type sourceRank int

const (
	rankHistory sourceRank = 1
	rankLive    sourceRank = 2
	rankSheet   sourceRank = 3
)

// PickField selects which selection of a pick a toggle targets
type PickField string

const (
	FieldLine   PickField = "line"
	FieldWinner PickField = "winner"
)

var (
	ErrContestLocked  = errors.New("contest is locked")
	ErrUnknownContest = errors.New("unknown contest")
	ErrBlazinCap      = errors.New("blazin pick limit reached for the week")
	ErrNoLinePick     = errors.New("blazin requires a spread pick on the contest")
	ErrNotLoaded      = errors.New("data not loaded yet")
)

// PickStore is the persistence surface the merge layer writes through
type PickStore interface {
	SaveTable(ctx context.Context, table models.PickTable) error
}

// ContestLocker gates pick mutations
type ContestLocker interface {
	IsLocked(contest models.Contest, week int, results map[int]models.Result) bool
	CurrentWeek() int
}

// spreadFavorite remembers a sheet-supplied line so the odds feed
// never overwrites it.
type spreadFavorite struct {
	spread   float64
	favorite models.Side
}

// MergeService owns the authoritative per-week state and folds every
// data source into it under one lock. Read access goes through deep
// snapshots; no caller ever holds a reference into the live maps.
type MergeService struct {
	mu           sync.RWMutex
	weeks        map[int]*models.WeekData
	resultRank   map[int]map[int]sourceRank
	sheetSpreads map[int]map[string]spreadFavorite
	pendingOdds  map[int]map[string]OddsQuote
	loaded       bool

	store    PickStore
	locker   ContestLocker
	onChange func(week int)
	logger   *logging.Logger
}

// NewMergeService creates an empty merge layer. The store may be nil
// in tests; persistence is then skipped.
func NewMergeService(store PickStore, locker ContestLocker) *MergeService {
	return &MergeService{
		weeks:        make(map[int]*models.WeekData),
		resultRank:   make(map[int]map[int]sourceRank),
		sheetSpreads: make(map[int]map[string]spreadFavorite),
		pendingOdds:  make(map[int]map[string]OddsQuote),
		store:        store,
		locker:       locker,
		logger:       logging.WithPrefix("Merge"),
	}
}

// SetOnChange registers the broadcast hook invoked after any mutation
func (s *MergeService) SetOnChange(fn func(week int)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onChange = fn
}

// SetLoaded marks the initial load complete. Handlers serve 503 until
// this flips.
func (s *MergeService) SetLoaded() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loaded = true
}

// Loaded reports whether the initial load has completed
func (s *MergeService) Loaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loaded
}

// week returns the week entry, creating it if needed. Callers hold the
// write lock.
func (s *MergeService) week(weekNum int) *models.WeekData {
	data, ok := s.weeks[weekNum]
	if !ok {
		data = models.NewWeekData()
		s.weeks[weekNum] = data
	}
	return data
}

// setResult applies the rank rule: a stored result survives unless the
// incoming source ranks at least as high.
func (s *MergeService) setResult(weekNum, contestID int, result models.Result, rank sourceRank) bool {
	ranks, ok := s.resultRank[weekNum]
	if !ok {
		ranks = make(map[int]sourceRank)
		s.resultRank[weekNum] = ranks
	}
	if stored, ok := ranks[contestID]; ok && rank < stored {
		return false
	}
	s.week(weekNum).Results[contestID] = result.Normalized()
	ranks[contestID] = rank
	return true
}

// ApplySchedule replaces a week's contest list wholesale. Contests are
// re-sorted by kickoff and renumbered 1..N; existing picks and results
// follow their matchup to its new id, and odds already attached to a
// matchup survive a schedule that carries none.
func (s *MergeService) ApplySchedule(weekNum int, games []models.Contest) {
	if len(games) == 0 {
		return
	}

	s.mu.Lock()
	data := s.week(weekNum)

	oldKeyByID := make(map[int]string, len(data.Games))
	oldByKey := make(map[string]models.Contest, len(data.Games))
	for _, g := range data.Games {
		oldKeyByID[g.ID] = g.MatchupKey()
		oldByKey[g.MatchupKey()] = g
	}

	replacement := make([]models.Contest, len(games))
	copy(replacement, games)
	models.SortAndRenumber(replacement)

	newIDByKey := make(map[string]int, len(replacement))
	for i, g := range replacement {
		newIDByKey[g.MatchupKey()] = g.ID
		if old, ok := oldByKey[g.MatchupKey()]; ok && !g.HasOdds() && old.HasOdds() {
			replacement[i].Spread = old.Spread
			replacement[i].Favorite = old.Favorite
			replacement[i].AwayML = old.AwayML
			replacement[i].HomeML = old.HomeML
			replacement[i].OverUnder = old.OverUnder
		}
	}

	remapID := func(oldID int) (int, bool) {
		key, ok := oldKeyByID[oldID]
		if !ok {
			return 0, false
		}
		newID, ok := newIDByKey[key]
		return newID, ok
	}

	results := make(map[int]models.Result, len(data.Results))
	ranks := make(map[int]sourceRank, len(data.Results))
	for oldID, result := range data.Results {
		newID, ok := remapID(oldID)
		if !ok {
			s.logger.Warnf("Week %d: dropping result for contest %d, matchup gone from schedule", weekNum, oldID)
			continue
		}
		results[newID] = result
		if r, found := s.resultRank[weekNum][oldID]; found {
			ranks[newID] = r
		}
	}

	picks := make(map[string]models.PickerPicks, len(data.Picks))
	for picker, byContest := range data.Picks {
		remapped := make(models.PickerPicks, len(byContest))
		for oldID, pick := range byContest {
			newID, ok := remapID(oldID)
			if !ok {
				s.logger.Warnf("Week %d: dropping %s's pick on contest %d, matchup gone from schedule",
					weekNum, picker, oldID)
				continue
			}
			remapped[newID] = pick
		}
		if len(remapped) > 0 {
			picks[picker] = remapped
		}
	}

	data.Games = replacement
	data.Results = results
	data.Picks = picks
	s.resultRank[weekNum] = ranks

	if n := s.replayPendingOddsLocked(weekNum); n > 0 {
		s.logger.Infof("Week %d: applied %d held odds quotes", weekNum, n)
	}

	s.logger.Infof("Week %d: schedule replaced, %d contests", weekNum, len(replacement))
	// Pick ids moved with the renumbering, write the remap through
	s.persistLocked(context.Background())
	s.finishMutation(weekNum)
}

// ApplyOdds attaches odds to contests matched by team name. IDs are
// never touched; a line the sheet already supplied is left alone.
// Quotes that match no contest yet are held back and replayed once the
// week's schedule lands, so odds arriving first are never lost.
func (s *MergeService) ApplyOdds(weekNum int, quotes []OddsQuote) {
	s.mu.Lock()
	applied := s.applyOddsLocked(weekNum, quotes)

	if applied > 0 {
		s.logger.Infof("Week %d: odds applied to %d contests", weekNum, applied)
	}
	s.finishMutation(weekNum)
}

// applyOddsLocked applies what matches and buffers the rest, keyed by
// matchup so a later quote for the same game replaces the held one.
// Callers hold the write lock.
func (s *MergeService) applyOddsLocked(weekNum int, quotes []OddsQuote) int {
	data := s.week(weekNum)

	applied := 0
	for _, quote := range quotes {
		contest, ok := data.GameByTeams(quote.Away, quote.Home)
		if !ok {
			pending, found := s.pendingOdds[weekNum]
			if !found {
				pending = make(map[string]OddsQuote)
				s.pendingOdds[weekNum] = pending
			}
			pending[models.MatchupKey(quote.Away, quote.Home)] = quote
			continue
		}
		delete(s.pendingOdds[weekNum], contest.MatchupKey())
		if _, pinned := s.sheetSpreads[weekNum][contest.MatchupKey()]; !pinned {
			s.updateContest(data, contest.ID, func(c *models.Contest) {
				c.Spread = quote.Spread
				c.Favorite = quote.Favorite
				c.AwayML = quote.AwayML
				c.HomeML = quote.HomeML
				c.OverUnder = quote.OverUnder
			})
			applied++
		}
	}
	return applied
}

// replayPendingOddsLocked retries the quotes held back before the
// week's contests were known. Callers hold the write lock.
func (s *MergeService) replayPendingOddsLocked(weekNum int) int {
	pending := s.pendingOdds[weekNum]
	if len(pending) == 0 {
		return 0
	}
	held := make([]OddsQuote, 0, len(pending))
	for _, quote := range pending {
		held = append(held, quote)
	}
	return s.applyOddsLocked(weekNum, held)
}

// ApplySheet folds the highest-priority source in. Spreads from the
// sheet pin the contest's line against later odds updates, sheet scores
// overwrite results from any source, and sheet picks merge field by
// field: a selection only fills a locally unset field, while the blazin
// flag always follows the sheet.
func (s *MergeService) ApplySheet(weekNum int, sheet SheetWeek) {
	if sheet.IsEmpty() {
		return
	}

	s.mu.Lock()
	data := s.week(weekNum)

	// An otherwise-empty week is seeded straight from the sheet rows
	if len(data.Games) == 0 {
		seeded := make([]models.Contest, 0, len(sheet.Rows))
		for i, row := range sheet.Rows {
			seeded = append(seeded, models.Contest{
				ID:   i + 1,
				Away: models.NormalizeTeam(row.Away),
				Home: models.NormalizeTeam(row.Home),
			})
		}
		data.Games = seeded
	}

	for _, row := range sheet.Rows {
		contest, ok := data.GameByTeams(row.Away, row.Home)
		if !ok {
			s.logger.Warnf("Week %d: sheet row %s @ %s matches no contest", weekNum, row.Away, row.Home)
			continue
		}

		if spread, favorite, ok := row.SpreadFavorite(); ok {
			s.updateContest(data, contest.ID, func(c *models.Contest) {
				c.Spread = spread
				c.Favorite = favorite
			})
			pins, ok := s.sheetSpreads[weekNum]
			if !ok {
				pins = make(map[string]spreadFavorite)
				s.sheetSpreads[weekNum] = pins
			}
			pins[contest.MatchupKey()] = spreadFavorite{spread: spread, favorite: favorite}
		}

		if result, ok := row.ResultFromRow(); ok {
			s.setResult(weekNum, contest.ID, result, rankSheet)
		}

		for picker, incoming := range row.Picks {
			current := data.Picks[picker][contest.ID]
			merged := mergePick(current, incoming)
			if data.Picks[picker] == nil {
				data.Picks[picker] = make(models.PickerPicks)
			}
			if merged.IsEmpty() {
				delete(data.Picks[picker], contest.ID)
			} else {
				data.Picks[picker][contest.ID] = merged
			}
		}
	}

	s.replayPendingOddsLocked(weekNum)

	s.logger.Infof("Week %d: sheet applied, %d rows", weekNum, len(sheet.Rows))
	s.persistLocked(context.Background())
	s.finishMutation(weekNum)
}

// mergePick folds a higher-priority pick onto the stored one. Line and
// winner keep the first value ever written; the blazin flag tracks the
// incoming source.
func mergePick(current, incoming models.Pick) models.Pick {
	merged := current
	if !merged.Line.Valid() && incoming.Line.Valid() {
		merged.Line = incoming.Line
	}
	if !merged.Winner.Valid() && incoming.Winner.Valid() {
		merged.Winner = incoming.Winner
	}
	merged.Blazin = incoming.Blazin
	if incoming.Blazin {
		merged.BlazinTeam = incoming.BlazinTeam
	} else {
		merged.BlazinTeam = ""
	}
	return merged
}

// ApplyLiveResult records a finished game from the live feed. Entries
// that are not yet terminal are ignored here; they live only in the
// live cache.
func (s *MergeService) ApplyLiveResult(weekNum int, status models.LiveStatus) bool {
	if !status.IsTerminal() {
		return false
	}

	s.mu.Lock()
	data := s.week(weekNum)
	contest, ok := data.GameByTeams(status.Away, status.Home)
	if !ok {
		s.mu.Unlock()
		s.logger.Debugf("Week %d: final for %s @ %s matches no contest", weekNum, status.Away, status.Home)
		return false
	}

	applied := s.setResult(weekNum, contest.ID, status.Result(), rankLive)
	if applied {
		s.logger.Infof("Week %d: final recorded for %s (%d-%d)",
			weekNum, contest.String(), status.AwayScore, status.HomeScore)
	}
	s.finishMutation(weekNum)
	return applied
}

// SeedHistorical backfills weeks from the bundled archive. Only weeks
// that currently hold nothing, and that lie strictly before the current
// week, are touched; live sources always win over the archive.
func (s *MergeService) SeedHistorical(archive map[int]*models.WeekData) {
	current := s.locker.CurrentWeek()

	s.mu.Lock()
	seeded := 0
	for weekNum, archived := range archive {
		if weekNum >= current {
			continue
		}
		if existing, ok := s.weeks[weekNum]; ok && !existing.IsEmpty() {
			continue
		}
		data := s.week(weekNum)
		data.Games = make([]models.Contest, len(archived.Games))
		copy(data.Games, archived.Games)
		for id, result := range archived.Results {
			s.setResult(weekNum, id, result, rankHistory)
		}
		seeded++
	}
	s.mu.Unlock()

	if seeded > 0 {
		s.logger.Infof("Seeded %d weeks from history archive", seeded)
	}
}

// SeedPicks loads the persisted pick table into the week state without
// writing back. Used once at startup.
func (s *MergeService) SeedPicks(table models.PickTable) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for weekNum, byPicker := range table {
		data := s.week(weekNum)
		for picker, picks := range byPicker {
			if data.Picks[picker] == nil {
				data.Picks[picker] = make(models.PickerPicks)
			}
			for contestID, pick := range picks {
				if existing, ok := data.Picks[picker][contestID]; ok {
					data.Picks[picker][contestID] = mergePick(pick, existing)
				} else {
					data.Picks[picker][contestID] = pick
				}
			}
		}
	}
}

// TogglePick flips one selection of a picker's pick. Selecting the side
// already held clears it; selecting the other side switches. Setting a
// line pick on the favored side of a contest with a known line fills an
// unset winner with the same side; an underdog line pick leaves the
// winner alone. Locked contests reject the mutation.
func (s *MergeService) TogglePick(ctx context.Context, weekNum int, picker string, contestID int, field PickField, side models.Side) error {
	if !side.Valid() {
		return fmt.Errorf("invalid side %q", side)
	}

	s.mu.Lock()
	data, ok := s.weeks[weekNum]
	if !ok {
		s.mu.Unlock()
		return ErrUnknownContest
	}
	contest, ok := data.GameByID(contestID)
	if !ok {
		s.mu.Unlock()
		return ErrUnknownContest
	}
	if s.locker.IsLocked(contest, weekNum, data.Results) {
		s.mu.Unlock()
		return ErrContestLocked
	}

	pick := data.Picks[picker][contestID]
	switch field {
	case FieldLine:
		if pick.Line == side {
			pick.Line = models.SideNone
			pick.Blazin = false
			pick.BlazinTeam = ""
		} else {
			pick.Line = side
			if pick.Blazin {
				pick.BlazinTeam = contest.TeamFor(side)
			}
			if !pick.Winner.Valid() && contest.HasOdds() && side == contest.Favorite {
				pick.Winner = side
			}
		}
	case FieldWinner:
		if pick.Winner == side {
			pick.Winner = models.SideNone
		} else {
			pick.Winner = side
		}
	default:
		s.mu.Unlock()
		return fmt.Errorf("invalid pick field %q", field)
	}

	s.storePick(data, picker, contestID, pick)

	if err := s.persistLocked(ctx); err != nil {
		s.finishMutation(weekNum)
		return err
	}
	s.finishMutation(weekNum)
	return nil
}

// ToggleBlazin flips the featured flag on an existing spread pick,
// enforcing the per-week cap when turning it on.
func (s *MergeService) ToggleBlazin(ctx context.Context, weekNum int, picker string, contestID int) error {
	s.mu.Lock()
	data, ok := s.weeks[weekNum]
	if !ok {
		s.mu.Unlock()
		return ErrUnknownContest
	}
	contest, ok := data.GameByID(contestID)
	if !ok {
		s.mu.Unlock()
		return ErrUnknownContest
	}
	if s.locker.IsLocked(contest, weekNum, data.Results) {
		s.mu.Unlock()
		return ErrContestLocked
	}

	pick := data.Picks[picker][contestID]
	if !pick.Line.Valid() {
		s.mu.Unlock()
		return ErrNoLinePick
	}

	if pick.Blazin {
		pick.Blazin = false
		pick.BlazinTeam = ""
	} else {
		if data.Picks[picker].CountBlazin() >= models.MaxBlazinPicks {
			s.mu.Unlock()
			return ErrBlazinCap
		}
		pick.Blazin = true
		pick.BlazinTeam = contest.TeamFor(pick.Line)
	}

	s.storePick(data, picker, contestID, pick)

	if err := s.persistLocked(ctx); err != nil {
		s.finishMutation(weekNum)
		return err
	}
	s.finishMutation(weekNum)
	return nil
}

// ResetWeek clears a picker's picks for the week. Picks on locked
// contests are preserved; history cannot be un-picked.
func (s *MergeService) ResetWeek(ctx context.Context, weekNum int, picker string) error {
	s.mu.Lock()
	data, ok := s.weeks[weekNum]
	if !ok {
		s.mu.Unlock()
		return nil
	}

	picks := data.Picks[picker]
	removed := 0
	for contestID := range picks {
		contest, ok := data.GameByID(contestID)
		if ok && s.locker.IsLocked(contest, weekNum, data.Results) {
			continue
		}
		delete(picks, contestID)
		removed++
	}
	if len(picks) == 0 {
		delete(data.Picks, picker)
	}

	s.logger.Infof("Week %d: reset cleared %d of %s's picks", weekNum, removed, picker)

	if err := s.persistLocked(ctx); err != nil {
		s.finishMutation(weekNum)
		return err
	}
	s.finishMutation(weekNum)
	return nil
}

// storePick writes a pick into the week state, pruning empties
func (s *MergeService) storePick(data *models.WeekData, picker string, contestID int, pick models.Pick) {
	if pick.IsEmpty() {
		delete(data.Picks[picker], contestID)
		if len(data.Picks[picker]) == 0 {
			delete(data.Picks, picker)
		}
		return
	}
	if data.Picks[picker] == nil {
		data.Picks[picker] = make(models.PickerPicks)
	}
	data.Picks[picker][contestID] = pick
}

// updateContest mutates a contest in place by id
func (s *MergeService) updateContest(data *models.WeekData, id int, fn func(*models.Contest)) {
	for i := range data.Games {
		if data.Games[i].ID == id {
			fn(&data.Games[i])
			return
		}
	}
}

// pickTableLocked assembles the persistence view of all picks
func (s *MergeService) pickTableLocked() models.PickTable {
	table := make(models.PickTable)
	for weekNum, data := range s.weeks {
		for picker, picks := range data.Picks {
			for contestID, pick := range picks {
				table.Set(weekNum, picker, contestID, pick)
			}
		}
	}
	return table
}

// persistLocked writes the pick table through to storage. Caller holds
// the write lock.
func (s *MergeService) persistLocked(ctx context.Context) error {
	if s.store == nil {
		return nil
	}
	if err := s.store.SaveTable(ctx, s.pickTableLocked()); err != nil {
		s.logger.Errorf("Failed to persist pick table: %v", err)
		return fmt.Errorf("failed to persist picks: %w", err)
	}
	return nil
}

// finishMutation releases the write lock and fires the change hook
func (s *MergeService) finishMutation(weekNum int) {
	fn := s.onChange
	s.mu.Unlock()
	if fn != nil {
		fn(weekNum)
	}
}

// WeekSnapshot returns a deep copy of one week, or an empty week when
// nothing is known about it.
func (s *MergeService) WeekSnapshot(weekNum int) *models.WeekData {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.weeks[weekNum]
	if !ok {
		return models.NewWeekData()
	}
	return data.Clone()
}

// Snapshot returns a deep copy of every populated week
func (s *MergeService) Snapshot() map[int]*models.WeekData {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[int]*models.WeekData, len(s.weeks))
	for weekNum, data := range s.weeks {
		out[weekNum] = data.Clone()
	}
	return out
}

// Weeks lists the populated week numbers in ascending order
func (s *MergeService) Weeks() []int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]int, 0, len(s.weeks))
	for weekNum := range s.weeks {
		out = append(out, weekNum)
	}
	sort.Ints(out)
	return out
}
