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

// stubFeedCache is a single-slot feed cache for loader tests
type stubFeedCache struct {
	payload    []byte
	capturedAt time.Time
	puts       int
}

func (c *stubFeedCache) Get(ctx context.Context, key string) ([]byte, time.Time, error) {
	return c.payload, c.capturedAt, nil
}

func (c *stubFeedCache) Put(ctx context.Context, key string, payload []byte, at time.Time) error {
	c.payload = payload
	c.capturedAt = at
	c.puts++
	return nil
}

func newOddsLoaderFixture(t *testing.T, cache *stubFeedCache, now time.Time) (*DataLoader, *MergeService, *int, func()) {
	t.Helper()

	hits := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.Write([]byte(oddsPayload))
	}))

	mock := clock.NewMock()
	mock.Set(now)

	merge := NewMergeService(nil, openLocker(1))
	merge.ApplySchedule(1, []models.Contest{
		{Away: "Kansas City Chiefs", Home: "Buffalo Bills"},
		{Away: "Dallas Cowboys", Home: "Philadelphia Eagles"},
	})

	fetcher := NewFetcher(nil, 5*time.Second, 16)
	odds := NewOddsService(fetcher, server.URL, []string{"draftkings", "fanduel"})

	dl := NewDataLoader(merge, nil, nil, odds, nil, nil, nil, cache, mock, "", 1, time.Hour, time.Hour)
	return dl, merge, &hits, server.Close
}

func TestLoadOddsServesStaleCacheOnNonContestDay(t *testing.T) {
	// 2025-09-09 is a Tuesday; the cached payload is well past its TTL
	tuesday := time.Date(2025, 9, 9, 12, 0, 0, 0, time.UTC)
	cache := &stubFeedCache{payload: []byte(oddsPayload), capturedAt: tuesday.AddDate(0, 0, -2)}

	dl, merge, hits, cleanup := newOddsLoaderFixture(t, cache, tuesday)
	defer cleanup()

	dl.loadOdds(context.Background(), 1)

	assert.Zero(t, *hits, "no upstream request on a non-contest day with a cached payload")
	kcbuf, ok := merge.WeekSnapshot(1).GameByTeams("Kansas City Chiefs", "Buffalo Bills")
	require.True(t, ok)
	assert.Equal(t, 2.5, kcbuf.Spread)
	assert.Equal(t, models.SideHome, kcbuf.Favorite)
}

func TestLoadOddsRefreshesOnContestDay(t *testing.T) {
	// 2025-09-07 is a Sunday
	sunday := time.Date(2025, 9, 7, 12, 0, 0, 0, time.UTC)
	cache := &stubFeedCache{payload: []byte(`[]`), capturedAt: sunday.AddDate(0, 0, -2)}

	dl, merge, hits, cleanup := newOddsLoaderFixture(t, cache, sunday)
	defer cleanup()

	dl.loadOdds(context.Background(), 1)

	assert.Equal(t, 1, *hits, "stale cache on a contest day triggers a refresh")
	assert.Equal(t, 1, cache.puts, "fresh payload is cached")
	kcbuf, ok := merge.WeekSnapshot(1).GameByTeams("Kansas City Chiefs", "Buffalo Bills")
	require.True(t, ok)
	assert.Equal(t, 2.5, kcbuf.Spread)
}

func TestLoadOddsFetchesWhenNothingCached(t *testing.T) {
	// Non-contest day but an empty cache leaves no fallback to serve
	tuesday := time.Date(2025, 9, 9, 12, 0, 0, 0, time.UTC)
	cache := &stubFeedCache{}

	dl, _, hits, cleanup := newOddsLoaderFixture(t, cache, tuesday)
	defer cleanup()

	dl.loadOdds(context.Background(), 1)

	assert.Equal(t, 1, *hits)
}
