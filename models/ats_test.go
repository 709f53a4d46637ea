package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCalculateATSWinner(t *testing.T) {
	tests := []struct {
		name     string
		spread   float64
		favorite Side
		away     int
		home     int
		expected ATSOutcome
	}{
		{
			name:   "underdog covers on half point spread",
			spread: 4.5, favorite: SideHome,
			away: 20, home: 17,
			// awayAdjusted = 20+4.5 = 24.5 vs homeAdjusted = 17
			expected: ATSAway,
		},
		{
			name:   "favorite covers",
			spread: 4.5, favorite: SideHome,
			away: 10, home: 17,
			expected: ATSHome,
		},
		{
			name:   "whole number spread pushes",
			spread: 3, favorite: SideHome,
			away: 17, home: 20,
			// awayAdjusted = 17+3 = 20 vs homeAdjusted = 20
			expected: ATSPush,
		},
		{
			name:   "away favorite loses outright but scenario still covers home",
			spread: 6, favorite: SideAway,
			away: 10, home: 20,
			// awayAdjusted = 10 vs homeAdjusted = 20+6 = 26
			expected: ATSHome,
		},
		{
			name:   "away favorite wins by more than spread",
			spread: 6, favorite: SideAway,
			away: 27, home: 20,
			expected: ATSAway,
		},
		{
			name:   "away favorite wins by exactly the spread",
			spread: 7, favorite: SideAway,
			away: 27, home: 20,
			expected: ATSPush,
		},
		{
			name:   "pick'em decided by raw score",
			spread: 0, favorite: SideHome,
			away: 21, home: 24,
			expected: ATSHome,
		},
		{
			name:   "half point spread can never push",
			spread: 0.5, favorite: SideHome,
			away: 20, home: 20,
			expected: ATSAway,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			contest := Contest{ID: 1, Away: "DET", Home: "KC", Spread: tc.spread, Favorite: tc.favorite}
			result := Result{AwayScore: tc.away, HomeScore: tc.home}
			assert.Equal(t, tc.expected, CalculateATSWinner(contest, result))
		})
	}
}

func TestCalculateATSWinnerDeterminism(t *testing.T) {
	contest := Contest{ID: 3, Away: "BUF", Home: "MIA", Spread: 2.5, Favorite: SideAway}
	result := Result{AwayScore: 31, HomeScore: 27}

	first := CalculateATSWinner(contest, result)
	for i := 0; i < 100; i++ {
		assert.Equal(t, first, CalculateATSWinner(contest, result))
	}
}

func TestOutcomeForSide(t *testing.T) {
	assert.Equal(t, OutcomeWin, ATSAway.OutcomeForSide(SideAway))
	assert.Equal(t, OutcomeLoss, ATSAway.OutcomeForSide(SideHome))
	assert.Equal(t, OutcomeWin, ATSHome.OutcomeForSide(SideHome))
	assert.Equal(t, OutcomeLoss, ATSHome.OutcomeForSide(SideAway))
	assert.Equal(t, OutcomePush, ATSPush.OutcomeForSide(SideAway))
	assert.Equal(t, OutcomePush, ATSPush.OutcomeForSide(SideHome))
}
