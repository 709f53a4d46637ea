package services

import (
	"testing"
	"time"

	"pickem-app-go/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const oddsPayload = `[
	{
		"away_team": "Kansas City Chiefs",
		"home_team": "Buffalo Bills",
		"bookmakers": [
			{
				"key": "bovada",
				"markets": [
					{"key": "spreads", "outcomes": [
						{"name": "Kansas City Chiefs", "point": 9.0},
						{"name": "Buffalo Bills", "point": -9.0}
					]}
				]
			},
			{
				"key": "draftkings",
				"markets": [
					{"key": "spreads", "outcomes": [
						{"name": "Kansas City Chiefs", "point": 2.5},
						{"name": "Buffalo Bills", "point": -2.5}
					]},
					{"key": "h2h", "outcomes": [
						{"name": "Kansas City Chiefs", "price": 120},
						{"name": "Buffalo Bills", "price": -140}
					]},
					{"key": "totals", "outcomes": [
						{"name": "Over", "point": 47.5},
						{"name": "Under", "point": 47.5}
					]}
				]
			}
		]
	},
	{
		"away_team": "Dallas Cowboys",
		"home_team": "Philadelphia Eagles",
		"bookmakers": [
			{
				"key": "fanduel",
				"markets": [
					{"key": "spreads", "outcomes": [
						{"name": "Dallas Cowboys", "point": -3.0},
						{"name": "Philadelphia Eagles", "point": 3.0}
					]}
				]
			}
		]
	}
]`

func TestParseOddsBookmakerPriority(t *testing.T) {
	svc := NewOddsService(nil, "", []string{"draftkings", "fanduel"})
	quotes, err := svc.ParseOdds([]byte(oddsPayload))
	require.NoError(t, err)
	require.Len(t, quotes, 2)

	// Bovada is listed first on the event but draftkings is preferred
	kcbuf := quotes[0]
	assert.Equal(t, 2.5, kcbuf.Spread)
	assert.Equal(t, models.SideHome, kcbuf.Favorite)
	assert.Equal(t, 120, kcbuf.AwayML)
	assert.Equal(t, -140, kcbuf.HomeML)
	assert.Equal(t, 47.5, kcbuf.OverUnder)
}

func TestParseOddsFallsBackToFirstBook(t *testing.T) {
	svc := NewOddsService(nil, "", []string{"draftkings"})
	quotes, err := svc.ParseOdds([]byte(oddsPayload))
	require.NoError(t, err)

	// No draftkings on the second event: fanduel serves. A positive
	// home handicap means the away side is favored.
	dalphi := quotes[1]
	assert.Equal(t, 3.0, dalphi.Spread)
	assert.Equal(t, models.SideAway, dalphi.Favorite)
}

func TestParseOddsSkipsUnusableEvents(t *testing.T) {
	svc := NewOddsService(nil, "", nil)
	quotes, err := svc.ParseOdds([]byte(`[{"away_team": "KC", "home_team": "BUF", "bookmakers": []}]`))
	require.NoError(t, err)
	assert.Empty(t, quotes)

	_, err = svc.ParseOdds([]byte(`not json`))
	assert.Error(t, err)
}

func TestIsContestDay(t *testing.T) {
	// 2025-09-07 is a Sunday
	sunday := time.Date(2025, 9, 7, 12, 0, 0, 0, time.UTC)
	assert.True(t, IsContestDay(sunday, 1))
	assert.True(t, IsContestDay(sunday.AddDate(0, 0, 1), 1), "Monday")
	assert.True(t, IsContestDay(sunday.AddDate(0, 0, 4), 2), "Thursday")
	assert.False(t, IsContestDay(sunday.AddDate(0, 0, 2), 1), "Tuesday")

	// Saturday games only appear late in the season
	saturday := sunday.AddDate(0, 0, 6)
	assert.False(t, IsContestDay(saturday, 6))
	assert.True(t, IsContestDay(saturday, 16))
}
