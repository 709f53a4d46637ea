package database

import (
	"testing"

	"pickem-app-go/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePickTableBlobLegacy(t *testing.T) {
	blob := []byte(`{"Stephen": {"3": "home", "5": {"line": "away", "winner": "away"}}}`)

	table, migrated, err := ParsePickTableBlob(blob, 1)
	require.NoError(t, err)
	assert.True(t, migrated)

	pick, ok := table.Get(1, "Stephen", 3)
	require.True(t, ok)
	assert.Equal(t, models.SideHome, pick.Line)
	assert.Equal(t, models.SideNone, pick.Winner)

	pick, ok = table.Get(1, "Stephen", 5)
	require.True(t, ok)
	assert.Equal(t, models.SideAway, pick.Line)
	assert.Equal(t, models.SideAway, pick.Winner)
}

func TestParsePickTableBlobCurrent(t *testing.T) {
	blob := []byte(`{"7": {"Trevor": {"2": {"line": "home", "blazin": true, "blazinTeam": "KC"}}}}`)

	table, migrated, err := ParsePickTableBlob(blob, 1)
	require.NoError(t, err)
	assert.False(t, migrated)

	pick, ok := table.Get(7, "Trevor", 2)
	require.True(t, ok)
	assert.Equal(t, models.SideHome, pick.Line)
	assert.True(t, pick.Blazin)
	assert.Equal(t, "KC", pick.BlazinTeam)
}

func TestParsePickTableBlobCorrupt(t *testing.T) {
	_, _, err := ParsePickTableBlob([]byte(`{not json`), 1)
	assert.Error(t, err)

	_, _, err = ParsePickTableBlob([]byte(`"just a string"`), 1)
	assert.Error(t, err)
}

func TestParsePickTableBlobSkipsBadRecords(t *testing.T) {
	// Non-numeric contest key and an empty pick skipped, the rest kept
	blob := []byte(`{"Dan": {"abc": "home", "4": {"blazin": true}, "6": "away"}}`)

	table, migrated, err := ParsePickTableBlob(blob, 1)
	require.NoError(t, err)
	assert.True(t, migrated)

	_, ok := table.Get(1, "Dan", 4)
	assert.False(t, ok, "blazin without a selection is an empty pick")

	pick, ok := table.Get(1, "Dan", 6)
	require.True(t, ok)
	assert.Equal(t, models.SideAway, pick.Line)
}

func TestParsePickTableBlobEmpty(t *testing.T) {
	table, migrated, err := ParsePickTableBlob([]byte(`{}`), 1)
	require.NoError(t, err)
	assert.False(t, migrated)
	assert.Empty(t, table)
}
