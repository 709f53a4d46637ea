package services

import (
	"testing"

	"pickem-app-go/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSheetService() *SheetService {
	return NewSheetService(nil, "", []string{"Stephen", "Trevor"})
}

func TestParseSheetHeaders(t *testing.T) {
	text := "Away Team\tHome Team\tSpread\tAway Score\tHome Score\tStephen\tStephen Winner\tStephen Blazin\n" +
		"Chiefs\tBills\t-3\t17\t27\thome\thome\tx\n" +
		"Cowboys\tEagles\t+6.5\t\t\taway\t\t\n"

	week := newSheetService().Parse(text)
	require.Len(t, week.Rows, 2)

	first := week.Rows[0]
	assert.Equal(t, "Chiefs", first.Away)
	assert.Equal(t, "Bills", first.Home)
	require.NotNil(t, first.Spread)
	assert.Equal(t, -3.0, *first.Spread)
	require.NotNil(t, first.AwayScore)
	assert.Equal(t, 17, *first.AwayScore)

	pick := first.Picks["Stephen"]
	assert.Equal(t, models.SideHome, pick.Line)
	assert.Equal(t, models.SideHome, pick.Winner)
	assert.True(t, pick.Blazin)
	assert.Equal(t, "Bills", pick.BlazinTeam)

	second := week.Rows[1]
	assert.Nil(t, second.AwayScore)
	assert.Equal(t, models.SideAway, second.Picks["Stephen"].Line)
	assert.False(t, second.Picks["Stephen"].Blazin)
}

func TestParseSheetHeaderNotOnFirstRow(t *testing.T) {
	text := "Week 3 picks\t\t\n" +
		"away\thome\tStephen\n" +
		"KC\tBUF\thome\n"

	week := newSheetService().Parse(text)
	require.Len(t, week.Rows, 1)
	assert.Equal(t, "KC", week.Rows[0].Away)
}

func TestParseSheetUnrecognizableHeadersYieldsEmpty(t *testing.T) {
	text := "foo\tbar\tbaz\n1\t2\t3\n"
	week := newSheetService().Parse(text)
	assert.True(t, week.IsEmpty())
}

func TestParseSheetMissingFieldIsOmittedNotGuessed(t *testing.T) {
	// No spread column anywhere: every row's Spread must be nil
	text := "away\thome\tStephen\nKC\tBUF\t17\n"
	week := newSheetService().Parse(text)
	require.Len(t, week.Rows, 1)
	assert.Nil(t, week.Rows[0].Spread)
}

func TestParseSheetCSVFallback(t *testing.T) {
	text := "away,home,spread\nKC,BUF,-7\n"
	week := newSheetService().Parse(text)
	require.Len(t, week.Rows, 1)
	require.NotNil(t, week.Rows[0].Spread)
	assert.Equal(t, -7.0, *week.Rows[0].Spread)
}

func TestParseSheetPickByTeamName(t *testing.T) {
	text := "away\thome\tStephen\nChiefs\tBills\tChiefs\n"
	week := newSheetService().Parse(text)
	require.Len(t, week.Rows, 1)
	assert.Equal(t, models.SideAway, week.Rows[0].Picks["Stephen"].Line)
}

func TestParseSheetSkipsRowsWithoutTeams(t *testing.T) {
	text := "away\thome\tStephen\nKC\tBUF\thome\n\t\t\nTOTALS\t\t\n"
	week := newSheetService().Parse(text)
	assert.Len(t, week.Rows, 1)
}

func TestSpreadFavoriteConversion(t *testing.T) {
	neg, pos, zero := -3.5, 4.0, 0.0

	spread, fav, ok := SheetRow{Spread: &neg}.SpreadFavorite()
	require.True(t, ok)
	assert.Equal(t, 3.5, spread)
	assert.Equal(t, models.SideHome, fav)

	spread, fav, ok = SheetRow{Spread: &pos}.SpreadFavorite()
	require.True(t, ok)
	assert.Equal(t, 4.0, spread)
	assert.Equal(t, models.SideAway, fav)

	spread, fav, ok = SheetRow{Spread: &zero}.SpreadFavorite()
	require.True(t, ok)
	assert.Equal(t, 0.0, spread)
	assert.Equal(t, models.SideAway, fav, "a zero line reads as a pick'em with away nominally favored")

	_, _, ok = SheetRow{}.SpreadFavorite()
	assert.False(t, ok)
}

func TestResultFromRowRequiresBothScores(t *testing.T) {
	score := 21
	_, ok := SheetRow{AwayScore: &score}.ResultFromRow()
	assert.False(t, ok)

	result, ok := SheetRow{AwayScore: &score, HomeScore: &score}.ResultFromRow()
	require.True(t, ok)
	assert.Equal(t, models.SideNone, result.Winner)
}
