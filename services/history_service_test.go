package services

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const archivePayload = `{
	"1": {
		"1": {"away": "Chiefs", "home": "Ravens", "spread": 3.0, "favorite": "home",
		      "kickoff": "2024-09-06T00:20:00Z", "awayScore": 20, "homeScore": 27},
		"2": {"away": "Packers", "home": "Eagles", "spread": 1.5, "favorite": "away"}
	},
	"2": {
		"1": {"away": "Bills", "home": "Dolphins", "spread": 2.5, "favorite": "away",
		      "awayScore": 31, "homeScore": 10}
	},
	"junk": {"1": {"away": "A", "home": "B"}}
}`

func writeArchive(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "history.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestHistoryLoad(t *testing.T) {
	svc := NewHistoryService(writeArchive(t, archivePayload))
	weeks, err := svc.Load()
	require.NoError(t, err)
	require.Len(t, weeks, 2, "non-numeric week keys are dropped")

	week1 := weeks[1]
	require.Len(t, week1.Games, 2)
	assert.Equal(t, "KC", week1.Games[0].Away, "names are normalized")
	assert.Equal(t, "BAL", week1.Games[0].Home)
	require.NotNil(t, week1.Games[0].Kickoff)

	result, ok := week1.Results[1]
	require.True(t, ok)
	assert.Equal(t, 27, result.HomeScore)

	// Game two has no scores: no result entry
	_, ok = week1.Results[2]
	assert.False(t, ok)
}

func TestHistoryLoadMissingFile(t *testing.T) {
	svc := NewHistoryService(filepath.Join(t.TempDir(), "nope.json"))
	weeks, err := svc.Load()
	require.NoError(t, err, "a missing archive is not an error")
	assert.Empty(t, weeks)
}

func TestHistoryLoadCorruptFile(t *testing.T) {
	svc := NewHistoryService(writeArchive(t, "not json at all"))
	_, err := svc.Load()
	assert.Error(t, err)
}
