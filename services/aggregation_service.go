package services

import (
	"fmt"
	"math"
	"sort"

	"pickem-app-go/logging"
	"pickem-app-go/models"
)

// LeaderboardRow is one picker's aggregate line
type LeaderboardRow struct {
	Picker string        `json:"picker"`
	Record models.Record `json:"record"`
	Pct    float64       `json:"pct"`
}

// TeamRecordRow is a picker's record bucketed by team
type TeamRecordRow struct {
	Label  string        `json:"label"`
	Record models.Record `json:"record"`
}

// WolfRow is one lone-wolf occurrence
type WolfRow struct {
	Week    int            `json:"week"`
	Picker  string         `json:"picker"`
	Matchup string         `json:"matchup"`
	Side    models.Side    `json:"side"`
	Outcome models.Outcome `json:"outcome"`
}

// WolfVariant selects which pick field lone-wolf detection inspects
type WolfVariant string

const (
	WolfSpread       WolfVariant = "spread"
	WolfStraightUp   WolfVariant = "straight"
	WolfSpreadBlazin WolfVariant = "blazin"
)

// ProfitRow is one picker's simulated profit and loss at fixed odds.
// Total mirrors BlazinProfit, the number the dashboard headlines.
type ProfitRow struct {
	Picker       string  `json:"picker"`
	SpreadProfit float64 `json:"spreadProfit"`
	BlazinProfit float64 `json:"blazinProfit"`
	Total        float64 `json:"total"`
}

// StreakRow reports a picker's current and best runs of spread wins
type StreakRow struct {
	Picker  string `json:"picker"`
	Current int    `json:"current"`
	Best    int    `json:"best"`
}

// AggregationService folds merged week data into leaderboards, team
// and spread records, lone-wolf occurrences, streaks, and the P&L
// simulation. It only ever reads snapshots; it owns no state beyond
// its configuration.
type AggregationService struct {
	merge   *MergeService
	locker  ContestLocker
	pickers []string // regular roster, excludes the blazin-only picker
	blazin  string   // blazin-only picker, tracked for featured stats
	stake   float64
	logger  *logging.Logger
}

// NewAggregationService wires the aggregation engine to the merge
// layer's snapshots.
func NewAggregationService(merge *MergeService, locker ContestLocker, pickers []string, blazinPicker string, stake float64) *AggregationService {
	return &AggregationService{
		merge:   merge,
		locker:  locker,
		pickers: pickers,
		blazin:  blazinPicker,
		stake:   stake,
		logger:  logging.WithPrefix("Aggregation"),
	}
}

// allPickers is the roster plus the featured-only participant
func (s *AggregationService) allPickers() []string {
	if s.blazin == "" {
		return s.pickers
	}
	return append(append([]string{}, s.pickers...), s.blazin)
}

// resolvedPick is one (picker, contest) pairing with a usable result,
// the unit every aggregate walks.
type resolvedPick struct {
	week    int
	picker  string
	contest models.Contest
	pick    models.Pick
	result  models.Result
	ats     models.ATSOutcome
}

// eachResolved visits every pick that has both a line selection and a
// recorded result, across weeks up to and including the current one.
// Picks referencing a contest id no longer in the week are skipped
// with a diagnostic; they are orphans from a schedule renumbering.
func (s *AggregationService) eachResolved(fn func(resolvedPick)) {
	current := s.locker.CurrentWeek()
	for weekNum, data := range s.merge.Snapshot() {
		if weekNum > current {
			continue
		}
		for picker, picks := range data.Picks {
			for contestID, pick := range picks {
				if !pick.Line.Valid() {
					continue
				}
				result, ok := data.Results[contestID]
				if !ok {
					continue
				}
				contest, ok := data.GameByID(contestID)
				if !ok {
					s.logger.Debugf("Week %d: %s's pick on contest %d has no matching game, skipping",
						weekNum, picker, contestID)
					continue
				}
				fn(resolvedPick{
					week:    weekNum,
					picker:  picker,
					contest: contest,
					pick:    pick,
					result:  result,
					ats:     models.CalculateATSWinner(contest, result),
				})
			}
		}
	}
}

// Leaderboard ranks the regular roster on spread-pick record: win
// percentage descending, ties broken by pick volume descending.
func (s *AggregationService) Leaderboard() []LeaderboardRow {
	records := make(map[string]*models.Record)
	for _, p := range s.pickers {
		records[p] = &models.Record{}
	}

	s.eachResolved(func(rp resolvedPick) {
		record, ok := records[rp.picker]
		if !ok {
			return
		}
		record.Add(rp.ats.OutcomeForSide(rp.pick.Line))
	})

	rows := make([]LeaderboardRow, 0, len(records))
	for _, p := range s.pickers {
		rows = append(rows, LeaderboardRow{Picker: p, Record: *records[p], Pct: records[p].Pct()})
	}
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].Pct != rows[j].Pct {
			return rows[i].Pct > rows[j].Pct
		}
		return rows[i].Record.Total() > rows[j].Record.Total()
	})
	return rows
}

// BlazinLeaderboard ranks every participant, the featured-only picker
// included, on the blazin subset.
func (s *AggregationService) BlazinLeaderboard() []LeaderboardRow {
	records := make(map[string]*models.Record)
	for _, p := range s.allPickers() {
		records[p] = &models.Record{}
	}

	s.eachResolved(func(rp resolvedPick) {
		if !rp.pick.Blazin {
			return
		}
		record, ok := records[rp.picker]
		if !ok {
			return
		}
		record.Add(rp.ats.OutcomeForSide(rp.pick.Line))
	})

	rows := make([]LeaderboardRow, 0, len(records))
	for _, p := range s.allPickers() {
		rows = append(rows, LeaderboardRow{Picker: p, Record: *records[p], Pct: records[p].Pct()})
	}
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].Pct != rows[j].Pct {
			return rows[i].Pct > rows[j].Pct
		}
		return rows[i].Record.Total() > rows[j].Record.Total()
	})
	return rows
}

// TeamRecords buckets one picker's spread outcomes by team. Every
// resolved pick credits both teams in its matchup, so a team's row
// reflects all contests it played in regardless of the side picked.
// Names pass through the alias table so variants collapse.
func (s *AggregationService) TeamRecords(picker string) []TeamRecordRow {
	records := make(map[string]*models.Record)
	credit := func(team string, outcome models.Outcome) {
		name := models.NormalizeTeam(team)
		if records[name] == nil {
			records[name] = &models.Record{}
		}
		records[name].Add(outcome)
	}

	s.eachResolved(func(rp resolvedPick) {
		if rp.picker != picker {
			return
		}
		outcome := rp.ats.OutcomeForSide(rp.pick.Line)
		credit(rp.contest.Away, outcome)
		credit(rp.contest.Home, outcome)
	})

	return sortTeamRows(records)
}

// BlazinTeamRecords is TeamRecords filtered to featured picks
func (s *AggregationService) BlazinTeamRecords(picker string) []TeamRecordRow {
	records := make(map[string]*models.Record)
	credit := func(team string, outcome models.Outcome) {
		name := models.NormalizeTeam(team)
		if records[name] == nil {
			records[name] = &models.Record{}
		}
		records[name].Add(outcome)
	}

	s.eachResolved(func(rp resolvedPick) {
		if rp.picker != picker || !rp.pick.Blazin {
			return
		}
		outcome := rp.ats.OutcomeForSide(rp.pick.Line)
		credit(rp.contest.Away, outcome)
		credit(rp.contest.Home, outcome)
	})

	return sortTeamRows(records)
}

// BlazinSpreadRecords buckets a picker's featured outcomes by the
// signed spread the picked side faced: negative means favored by that
// many points, positive means underdog.
func (s *AggregationService) BlazinSpreadRecords(picker string) []TeamRecordRow {
	records := make(map[string]*models.Record)

	s.eachResolved(func(rp resolvedPick) {
		if rp.picker != picker || !rp.pick.Blazin {
			return
		}
		label := fmt.Sprintf("%+.1f", rp.contest.SignedSpread(rp.pick.Line))
		if records[label] == nil {
			records[label] = &models.Record{}
		}
		records[label].Add(rp.ats.OutcomeForSide(rp.pick.Line))
	})

	return sortTeamRows(records)
}

func sortTeamRows(records map[string]*models.Record) []TeamRecordRow {
	rows := make([]TeamRecordRow, 0, len(records))
	for label, record := range records {
		rows = append(rows, TeamRecordRow{Label: label, Record: *record})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Label < rows[j].Label })
	return rows
}

// LoneWolves finds every contest where exactly one roster member took
// one side and every other roster member took the opposite side. A
// split with any abstention, or anything other than strictly
// 1-vs-(N-1), does not register.
func (s *AggregationService) LoneWolves(variant WolfVariant) []WolfRow {
	current := s.locker.CurrentWeek()
	var rows []WolfRow

	for weekNum, data := range s.merge.Snapshot() {
		if weekNum > current {
			continue
		}
		for _, contest := range data.Games {
			result, ok := data.Results[contest.ID]
			if !ok {
				continue
			}
			row, found := s.wolfForContest(weekNum, contest, result, data.Picks, variant)
			if found {
				rows = append(rows, row)
			}
		}
	}

	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Week != rows[j].Week {
			return rows[i].Week < rows[j].Week
		}
		return rows[i].Matchup < rows[j].Matchup
	})
	return rows
}

func (s *AggregationService) wolfForContest(weekNum int, contest models.Contest, result models.Result, picks map[string]models.PickerPicks, variant WolfVariant) (WolfRow, bool) {
	sides := make(map[string]models.Side, len(s.pickers))
	for _, picker := range s.pickers {
		pick, ok := picks[picker][contest.ID]
		if !ok {
			return WolfRow{}, false // abstention disqualifies the contest
		}
		side := pick.Line
		if variant == WolfStraightUp {
			side = pick.Winner
		}
		if !side.Valid() {
			return WolfRow{}, false
		}
		sides[picker] = side
	}

	awayCount := 0
	for _, side := range sides {
		if side == models.SideAway {
			awayCount++
		}
	}

	var loneSide models.Side
	switch {
	case awayCount == 1:
		loneSide = models.SideAway
	case awayCount == len(s.pickers)-1:
		loneSide = models.SideHome
	default:
		return WolfRow{}, false
	}

	var wolf string
	for picker, side := range sides {
		if side == loneSide {
			wolf = picker
			break
		}
	}

	if variant == WolfSpreadBlazin {
		if pick := picks[wolf][contest.ID]; !pick.Blazin {
			return WolfRow{}, false
		}
	}

	var outcome models.Outcome
	if variant == WolfStraightUp {
		outcome = straightUpOutcome(loneSide, result)
	} else {
		outcome = models.CalculateATSWinner(contest, result).OutcomeForSide(loneSide)
	}

	return WolfRow{
		Week:    weekNum,
		Picker:  wolf,
		Matchup: contest.String(),
		Side:    loneSide,
		Outcome: outcome,
	}, true
}

// straightUpOutcome scores a winner pick against the final score
func straightUpOutcome(side models.Side, result models.Result) models.Outcome {
	winner := result.DerivedWinner()
	switch {
	case winner == models.SideNone:
		return models.OutcomePush
	case winner == side:
		return models.OutcomeWin
	default:
		return models.OutcomeLoss
	}
}

// Profits simulates a flat stake on every spread pick at fixed -110
// odds: a win pays stake times 100/110, a loss costs the stake, a push
// returns it. The headline total is the blazin-only figure.
func (s *AggregationService) Profits() []ProfitRow {
	spread := make(map[string]float64)
	blazin := make(map[string]float64)

	s.eachResolved(func(rp resolvedPick) {
		delta := s.payout(rp.ats.OutcomeForSide(rp.pick.Line))
		spread[rp.picker] += delta
		if rp.pick.Blazin {
			blazin[rp.picker] += delta
		}
	})

	rows := make([]ProfitRow, 0, len(s.allPickers()))
	for _, p := range s.allPickers() {
		rows = append(rows, ProfitRow{
			Picker:       p,
			SpreadProfit: roundCents(spread[p]),
			BlazinProfit: roundCents(blazin[p]),
			Total:        roundCents(blazin[p]),
		})
	}
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Total > rows[j].Total })
	return rows
}

func (s *AggregationService) payout(outcome models.Outcome) float64 {
	switch outcome {
	case models.OutcomeWin:
		return s.stake * 100 / 110
	case models.OutcomeLoss:
		return -s.stake
	default:
		return 0
	}
}

func roundCents(x float64) float64 {
	return math.Round(x*100) / 100
}

// Streaks computes each roster member's current and longest run of
// consecutive spread wins, walked in week-then-contest order. Pushes
// do not extend a streak but do not break it either.
func (s *AggregationService) Streaks() []StreakRow {
	type seq struct {
		week    int
		contest int
		outcome models.Outcome
	}
	perPicker := make(map[string][]seq)

	s.eachResolved(func(rp resolvedPick) {
		perPicker[rp.picker] = append(perPicker[rp.picker], seq{
			week:    rp.week,
			contest: rp.contest.ID,
			outcome: rp.ats.OutcomeForSide(rp.pick.Line),
		})
	})

	rows := make([]StreakRow, 0, len(s.pickers))
	for _, picker := range s.pickers {
		seqs := perPicker[picker]
		sort.Slice(seqs, func(i, j int) bool {
			if seqs[i].week != seqs[j].week {
				return seqs[i].week < seqs[j].week
			}
			return seqs[i].contest < seqs[j].contest
		})

		current, best := 0, 0
		for _, item := range seqs {
			switch item.outcome {
			case models.OutcomeWin:
				current++
				if current > best {
					best = current
				}
			case models.OutcomeLoss:
				current = 0
			}
		}
		rows = append(rows, StreakRow{Picker: picker, Current: current, Best: best})
	}
	return rows
}
