package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPickIsEmpty(t *testing.T) {
	assert.True(t, Pick{}.IsEmpty())
	assert.True(t, Pick{Blazin: true, BlazinTeam: "KC"}.IsEmpty(), "blazin alone is not a selection")
	assert.False(t, Pick{Line: SideAway}.IsEmpty())
	assert.False(t, Pick{Winner: SideHome}.IsEmpty())
}

func TestPickTableSetPrunesEmpty(t *testing.T) {
	table := make(PickTable)
	table.Set(3, "Stephen", 1, Pick{Line: SideHome})

	_, ok := table.Get(3, "Stephen", 1)
	assert.True(t, ok)

	// Clearing the last selection removes the entry and empty parents
	table.Set(3, "Stephen", 1, Pick{})
	_, ok = table.Get(3, "Stephen", 1)
	assert.False(t, ok)
	assert.Empty(t, table)
}

func TestPickTableClone(t *testing.T) {
	table := make(PickTable)
	table.Set(1, "Trevor", 2, Pick{Line: SideAway, Blazin: true})

	clone := table.Clone()
	clone.Set(1, "Trevor", 2, Pick{Line: SideHome})

	orig, _ := table.Get(1, "Trevor", 2)
	assert.Equal(t, SideAway, orig.Line, "clone mutation must not leak back")
}

func TestCountBlazin(t *testing.T) {
	picks := PickerPicks{
		1: {Line: SideAway, Blazin: true},
		2: {Line: SideHome},
		3: {Line: SideHome, Blazin: true},
	}
	assert.Equal(t, 2, picks.CountBlazin())
}

func TestRecord(t *testing.T) {
	var r Record
	r.Add(OutcomeWin)
	r.Add(OutcomeWin)
	r.Add(OutcomeLoss)
	r.Add(OutcomePush)
	r.Add(OutcomePending) // ignored

	assert.Equal(t, "2-1-1", r.String())
	assert.Equal(t, 4, r.Total())
	assert.Equal(t, 1, r.Margin())
	assert.InDelta(t, 0.5, r.Pct(), 1e-9)
}
