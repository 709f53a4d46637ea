package services

import (
	"testing"
	"time"

	"pickem-app-go/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testRoster = []string{"Stephen", "Trevor", "Paul", "Kyle", "Dan"}

// buildSeason assembles a merge service holding one finished week:
// KC@BUF (home favored by 3, final 17-27) and DAL@PHI (home favored
// by 6.5, final 20-21).
func buildSeason(t *testing.T) (*MergeService, *AggregationService) {
	t.Helper()
	locker := openLocker(2)
	merge := NewMergeService(nil, locker)

	k1 := time.Date(2025, 9, 7, 17, 0, 0, 0, time.UTC)
	k2 := time.Date(2025, 9, 5, 0, 20, 0, 0, time.UTC)
	merge.ApplySchedule(1, []models.Contest{
		{Away: "KC", Home: "BUF", Spread: 3, Favorite: models.SideHome, Kickoff: &k1},
		{Away: "DAL", Home: "PHI", Spread: 6.5, Favorite: models.SideHome, Kickoff: &k2},
	})

	merge.ApplyLiveResult(1, models.LiveStatus{
		Away: "KC", Home: "BUF", AwayScore: 17, HomeScore: 27, State: models.LiveStateFinal,
	})
	merge.ApplyLiveResult(1, models.LiveStatus{
		Away: "DAL", Home: "PHI", AwayScore: 20, HomeScore: 21, State: models.LiveStateFinal,
	})

	agg := NewAggregationService(merge, locker, testRoster, "Vince", 20)
	return merge, agg
}

func contestID(t *testing.T, merge *MergeService, away, home string) int {
	t.Helper()
	contest, ok := merge.WeekSnapshot(1).GameByTeams(away, home)
	require.True(t, ok)
	return contest.ID
}

func setPick(t *testing.T, merge *MergeService, picker string, contestID int, side models.Side) {
	t.Helper()
	// Picks land via the sheet path so lock state is irrelevant
	merge.SeedPicks(models.PickTable{1: {picker: {contestID: {Line: side}}}})
}

func TestLeaderboardRanking(t *testing.T) {
	merge, agg := buildSeason(t)
	kcbuf := contestID(t, merge, "KC", "BUF")
	dalphi := contestID(t, merge, "DAL", "PHI")

	// BUF covered (27 vs 17+3); PHI did not (20+6.5 vs 21).
	setPick(t, merge, "Stephen", kcbuf, models.SideHome) // win
	setPick(t, merge, "Stephen", dalphi, models.SideAway) // win
	setPick(t, merge, "Trevor", kcbuf, models.SideHome) // win only
	setPick(t, merge, "Paul", kcbuf, models.SideAway) // loss

	rows := agg.Leaderboard()
	require.Len(t, rows, len(testRoster))

	// Stephen 2-0 ranks above Trevor 1-0 on volume at equal percentage
	assert.Equal(t, "Stephen", rows[0].Picker)
	assert.Equal(t, "Trevor", rows[1].Picker)
	assert.Equal(t, models.Record{Wins: 2}, rows[0].Record)
	assert.Equal(t, models.Record{Wins: 1}, rows[1].Record)

	// Paul 0-1 ties the zero-pick pickers at 0 percent but ranks
	// above them on volume
	assert.Equal(t, "Paul", rows[2].Picker)
}

func TestTeamRecordsCreditBothTeams(t *testing.T) {
	merge, agg := buildSeason(t)
	kcbuf := contestID(t, merge, "KC", "BUF")
	setPick(t, merge, "Stephen", kcbuf, models.SideHome) // win

	rows := agg.TeamRecords("Stephen")
	require.Len(t, rows, 2)

	byLabel := map[string]models.Record{}
	for _, row := range rows {
		byLabel[row.Label] = row.Record
	}
	assert.Equal(t, models.Record{Wins: 1}, byLabel["BUF"])
	assert.Equal(t, models.Record{Wins: 1}, byLabel["KC"], "the opponent bucket carries the same outcome")
}

func TestBlazinSpreadRecordBucketsBySignedSpread(t *testing.T) {
	merge, agg := buildSeason(t)
	kcbuf := contestID(t, merge, "KC", "BUF")
	merge.SeedPicks(models.PickTable{1: {
		"Stephen": {kcbuf: {Line: models.SideHome, Blazin: true, BlazinTeam: "BUF"}},
	}})

	rows := agg.BlazinSpreadRecords("Stephen")
	require.Len(t, rows, 1)
	// Home is favored by 3, so the picked side faced -3.0
	assert.Equal(t, "-3.0", rows[0].Label)
	assert.Equal(t, models.Record{Wins: 1}, rows[0].Record)
}

func TestLoneWolfStrictSplit(t *testing.T) {
	merge, agg := buildSeason(t)
	kcbuf := contestID(t, merge, "KC", "BUF")
	dalphi := contestID(t, merge, "DAL", "PHI")

	table := models.PickTable{1: {}}
	// KC@BUF: Stephen alone on away, everyone else home -> lone wolf
	// DAL@PHI: 2-vs-3 split -> not a lone wolf
	for i, picker := range testRoster {
		side := models.SideHome
		if picker == "Stephen" {
			side = models.SideAway
		}
		dalSide := models.SideHome
		if i < 2 {
			dalSide = models.SideAway
		}
		table[1][picker] = models.PickerPicks{
			kcbuf:  {Line: side},
			dalphi: {Line: dalSide},
		}
	}
	merge.SeedPicks(table)

	rows := agg.LoneWolves(WolfSpread)
	require.Len(t, rows, 1)
	assert.Equal(t, "Stephen", rows[0].Picker)
	assert.Equal(t, models.SideAway, rows[0].Side)
	assert.Equal(t, models.OutcomeLoss, rows[0].Outcome, "BUF covered, the wolf took KC")
}

func TestLoneWolfAbstentionDisqualifies(t *testing.T) {
	merge, agg := buildSeason(t)
	kcbuf := contestID(t, merge, "KC", "BUF")

	table := models.PickTable{1: {}}
	for _, picker := range testRoster[:4] { // Dan abstains
		side := models.SideHome
		if picker == "Stephen" {
			side = models.SideAway
		}
		table[1][picker] = models.PickerPicks{kcbuf: {Line: side}}
	}
	merge.SeedPicks(table)

	assert.Empty(t, agg.LoneWolves(WolfSpread))
}

func TestLoneWolfBlazinVariant(t *testing.T) {
	merge, agg := buildSeason(t)
	kcbuf := contestID(t, merge, "KC", "BUF")

	table := models.PickTable{1: {}}
	for _, picker := range testRoster {
		pick := models.Pick{Line: models.SideHome}
		if picker == "Stephen" {
			pick = models.Pick{Line: models.SideAway, Blazin: true, BlazinTeam: "KC"}
		}
		table[1][picker] = models.PickerPicks{kcbuf: pick}
	}
	merge.SeedPicks(table)

	assert.Len(t, agg.LoneWolves(WolfSpreadBlazin), 1)

	// Same split without the flag does not register
	merge2, agg2 := buildSeason(t)
	kcbuf2 := contestID(t, merge2, "KC", "BUF")
	table2 := models.PickTable{1: {}}
	for _, picker := range testRoster {
		side := models.SideHome
		if picker == "Stephen" {
			side = models.SideAway
		}
		table2[1][picker] = models.PickerPicks{kcbuf2: {Line: side}}
	}
	merge2.SeedPicks(table2)
	assert.Empty(t, agg2.LoneWolves(WolfSpreadBlazin))
}

func TestProfitArithmetic(t *testing.T) {
	merge, agg := buildSeason(t)
	kcbuf := contestID(t, merge, "KC", "BUF")
	dalphi := contestID(t, merge, "DAL", "PHI")

	merge.SeedPicks(models.PickTable{1: {
		"Stephen": {
			kcbuf:  {Line: models.SideHome, Blazin: true, BlazinTeam: "BUF"}, // win
			dalphi: {Line: models.SideHome},                                 // loss
		},
	}})

	rows := agg.Profits()
	var stephen ProfitRow
	for _, row := range rows {
		if row.Picker == "Stephen" {
			stephen = row
		}
	}

	// Win at $20 stake pays 20*100/110 = 18.18; the open loss costs 20
	assert.InDelta(t, 18.18, stephen.BlazinProfit, 0.001)
	assert.InDelta(t, -1.82, stephen.SpreadProfit, 0.001)
	assert.Equal(t, stephen.BlazinProfit, stephen.Total, "headline total is the blazin figure")
}

func TestStreaks(t *testing.T) {
	locker := openLocker(4)
	merge := NewMergeService(nil, locker)

	// Three weeks, one contest each, home always favored and covering
	for week := 1; week <= 3; week++ {
		kick := time.Date(2025, 9, 7+7*(week-1), 17, 0, 0, 0, time.UTC)
		merge.ApplySchedule(week, []models.Contest{
			{Away: "KC", Home: "BUF", Spread: 3, Favorite: models.SideHome, Kickoff: &kick},
		})
		merge.ApplyLiveResult(week, models.LiveStatus{
			Away: "KC", Home: "BUF", AwayScore: 10, HomeScore: 30, State: models.LiveStateFinal,
		})
	}

	// Stephen: win, loss, win -> current 1, best 1
	merge.SeedPicks(models.PickTable{
		1: {"Stephen": {1: {Line: models.SideHome}}, "Trevor": {1: {Line: models.SideHome}}},
		2: {"Stephen": {1: {Line: models.SideAway}}, "Trevor": {1: {Line: models.SideHome}}},
		3: {"Stephen": {1: {Line: models.SideHome}}, "Trevor": {1: {Line: models.SideHome}}},
	})

	agg := NewAggregationService(merge, locker, testRoster, "Vince", 20)
	rows := agg.Streaks()

	byPicker := map[string]StreakRow{}
	for _, row := range rows {
		byPicker[row.Picker] = row
	}
	assert.Equal(t, 1, byPicker["Stephen"].Current)
	assert.Equal(t, 1, byPicker["Stephen"].Best)
	assert.Equal(t, 3, byPicker["Trevor"].Current)
	assert.Equal(t, 3, byPicker["Trevor"].Best)
}

func TestSortRecordRows(t *testing.T) {
	rows := []TeamRecordRow{
		{Label: "BUF", Record: models.Record{Wins: 3, Losses: 1}},
		{Label: "ARI", Record: models.Record{Wins: 1, Losses: 1}},
		{Label: "KC", Record: models.Record{Wins: 2, Losses: 0}},
	}

	var st SortState
	st.Toggle(SortByLabel)
	SortRecordRows(rows, st)
	assert.Equal(t, "ARI", rows[0].Label)

	st.Toggle(SortByMargin)
	assert.True(t, st.Descending, "non-label columns default descending")
	SortRecordRows(rows, st)
	// BUF and KC both have margin 2; BUF's raw wins break the tie
	assert.Equal(t, "BUF", rows[0].Label)
	assert.Equal(t, "KC", rows[1].Label)

	st.Toggle(SortByMargin)
	assert.False(t, st.Descending, "repeat selection flips direction")
	SortRecordRows(rows, st)
	assert.Equal(t, "ARI", rows[0].Label)
}

func TestAggregationSkipsFutureWeeks(t *testing.T) {
	locker := openLocker(1)
	merge := NewMergeService(nil, locker)
	kick := time.Date(2025, 12, 7, 17, 0, 0, 0, time.UTC)
	merge.ApplySchedule(5, []models.Contest{
		{Away: "KC", Home: "BUF", Spread: 3, Favorite: models.SideHome, Kickoff: &kick},
	})
	merge.ApplyLiveResult(5, models.LiveStatus{
		Away: "KC", Home: "BUF", AwayScore: 10, HomeScore: 30, State: models.LiveStateFinal,
	})
	merge.SeedPicks(models.PickTable{5: {"Stephen": {1: {Line: models.SideHome}}}})

	agg := NewAggregationService(merge, locker, testRoster, "Vince", 20)
	rows := agg.Leaderboard()
	for _, row := range rows {
		assert.Zero(t, row.Record.Total(), "weeks after the current one contribute nothing")
	}
}
