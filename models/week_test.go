package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var seasonStart = time.Date(2025, 9, 4, 0, 0, 0, 0, time.UTC)

func TestCurrentWeek(t *testing.T) {
	tests := []struct {
		name     string
		now      time.Time
		expected int
	}{
		{"before season", seasonStart.AddDate(0, -1, 0), 1},
		{"opening day", seasonStart, 1},
		{"mid week one", seasonStart.Add(3 * 24 * time.Hour), 1},
		{"exactly one week in", seasonStart.Add(7 * 24 * time.Hour), 2},
		{"week five", seasonStart.Add(29 * 24 * time.Hour), 5},
		{"past season end clamps", seasonStart.AddDate(1, 0, 0), 18},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, CurrentWeek(tc.now, seasonStart, 18))
		})
	}
}

func TestCurrentWeekMonotonic(t *testing.T) {
	prev := 0
	for d := -10; d < 140; d++ {
		now := seasonStart.Add(time.Duration(d) * 24 * time.Hour)
		week := CurrentWeek(now, seasonStart, 18)
		assert.GreaterOrEqual(t, week, prev, "week regressed at day %d", d)
		assert.GreaterOrEqual(t, week, 1)
		assert.LessOrEqual(t, week, 18)
		prev = week
	}
}

func TestWeekDataGameByTeams(t *testing.T) {
	kickoff := seasonStart.Add(10 * 24 * time.Hour)
	wd := NewWeekData()
	wd.Games = []Contest{
		{ID: 1, Away: "Detroit Lions", Home: "Kansas City Chiefs", Kickoff: &kickoff},
		{ID: 2, Away: "Buffalo Bills", Home: "Miami Dolphins", Kickoff: &kickoff},
	}

	g, ok := wd.GameByTeams("DET", "KC")
	assert.True(t, ok)
	assert.Equal(t, 1, g.ID)

	g, ok = wd.GameByTeams("Bills", "Dolphins")
	assert.True(t, ok)
	assert.Equal(t, 2, g.ID)

	_, ok = wd.GameByTeams("Bears", "Packers")
	assert.False(t, ok)
}

func TestSortAndRenumber(t *testing.T) {
	early := seasonStart.Add(1 * time.Hour)
	late := seasonStart.Add(72 * time.Hour)
	games := []Contest{
		{ID: 7, Away: "A", Home: "B", Kickoff: &late},
		{ID: 3, Away: "C", Home: "D", Kickoff: &early},
		{ID: 9, Away: "E", Home: "F"}, // no kickoff sorts last
	}

	SortAndRenumber(games)

	assert.Equal(t, "C", games[0].Away)
	assert.Equal(t, "A", games[1].Away)
	assert.Equal(t, "E", games[2].Away)
	for i, g := range games {
		assert.Equal(t, i+1, g.ID)
	}
}
