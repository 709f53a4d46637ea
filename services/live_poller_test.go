package services

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"pickem-app-go/models"

	"github.com/itbasis/go-clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const liveFeedFinal = `{
	"events": [{
		"id": "401",
		"status": {"type": {"name": "STATUS_FINAL", "state": "post", "completed": true}, "period": 4},
		"competitions": [{
			"competitors": [
				{"homeAway": "away", "score": "17", "team": {"displayName": "Kansas City Chiefs"}},
				{"homeAway": "home", "score": "27", "team": {"displayName": "Buffalo Bills"}}
			]
		}]
	}]
}`

func newPollerFixture(t *testing.T, payload string) (*LivePoller, *MergeService, *LiveCache, func()) {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(payload))
	}))

	mock := clock.NewMock()
	mock.Set(seasonStart.AddDate(0, 0, 2))

	live := NewLiveCache()
	locker := NewLockService(mock, seasonStart, 18, live)
	merge := NewMergeService(nil, locker)

	fetcher := NewFetcher(nil, 5*time.Second, 16)
	schedule := NewScheduleService(fetcher, server.URL, server.URL)
	poller := NewLivePoller(schedule, live, merge, locker, time.Hour)

	return poller, merge, live, server.Close
}

func TestRefreshCachesAndRecordsFinals(t *testing.T) {
	poller, merge, live, cleanup := newPollerFixture(t, liveFeedFinal)
	defer cleanup()

	kick := seasonStart.AddDate(0, 0, 3)
	merge.ApplySchedule(1, []models.Contest{
		{Away: "Chiefs", Home: "Bills", Spread: 3, Favorite: models.SideHome, Kickoff: &kick},
	})

	poller.Refresh(context.Background())

	status, ok := live.Lookup("Chiefs", "Bills")
	require.True(t, ok)
	assert.True(t, status.IsTerminal())

	week := merge.WeekSnapshot(1)
	result, ok := week.Results[1]
	require.True(t, ok, "terminal status must land in the merge layer")
	assert.Equal(t, 27, result.HomeScore)
}

func TestRefreshIsIdempotent(t *testing.T) {
	poller, merge, _, cleanup := newPollerFixture(t, liveFeedFinal)
	defer cleanup()

	kick := seasonStart.AddDate(0, 0, 3)
	merge.ApplySchedule(1, []models.Contest{
		{Away: "Chiefs", Home: "Bills", Kickoff: &kick},
	})

	poller.Refresh(context.Background())
	first := merge.WeekSnapshot(1).Results
	poller.Refresh(context.Background())
	second := merge.WeekSnapshot(1).Results

	assert.Equal(t, first, second)
}

func TestStartStopIdempotent(t *testing.T) {
	poller, _, _, cleanup := newPollerFixture(t, liveFeedFinal)
	defer cleanup()

	poller.Start()
	poller.Start() // second start must not spawn a second loop
	assert.True(t, poller.Running())

	poller.Stop()
	poller.Stop() // second stop must not panic on a closed channel
	assert.False(t, poller.Running())
}

func TestDoneForTheDay(t *testing.T) {
	poller, _, live, cleanup := newPollerFixture(t, liveFeedFinal)
	defer cleanup()

	assert.False(t, poller.doneForTheDay(), "empty cache keeps polling")

	live.Put(models.LiveStatus{Away: "KC", Home: "BUF", State: models.LiveStateFinal})
	assert.True(t, poller.doneForTheDay())

	live.Put(models.LiveStatus{Away: "DAL", Home: "PHI", State: models.LiveStateInProgress})
	assert.False(t, poller.doneForTheDay())
}
