package services

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"pickem-app-go/database"
	"pickem-app-go/logging"

	"github.com/itbasis/go-clock"
)

// FeedCache stores last-known-good raw feed payloads with their
// capture time, the fallback when every access path for a feed fails.
type FeedCache interface {
	Get(ctx context.Context, key string) ([]byte, time.Time, error)
	Put(ctx context.Context, key string, payload []byte, at time.Time) error
}

// DataLoader runs the startup sequence: one-time legacy pick
// migration, persisted pick load, history backfill, then feed fetches
// for every week up to the current one. All fetch failures degrade to
// cached or absent data; only storage errors abort startup.
type DataLoader struct {
	merge     *MergeService
	locker    *LockService
	schedule  *ScheduleService
	odds      *OddsService
	sheet     *SheetService
	history   *HistoryService
	pickRepo  *database.MongoPickTableRepository
	feedCache FeedCache
	clock     clock.Clock

	legacyPath  string
	legacyWeek  int
	scheduleTTL time.Duration
	oddsTTL     time.Duration
	logger      *logging.Logger
}

// NewDataLoader wires the startup orchestrator
func NewDataLoader(merge *MergeService, locker *LockService, schedule *ScheduleService, odds *OddsService, sheet *SheetService, history *HistoryService, pickRepo *database.MongoPickTableRepository, feedCache FeedCache, clk clock.Clock, legacyPath string, legacyWeek int, scheduleTTL, oddsTTL time.Duration) *DataLoader {
	return &DataLoader{
		merge:       merge,
		locker:      locker,
		schedule:    schedule,
		odds:        odds,
		sheet:       sheet,
		history:     history,
		pickRepo:    pickRepo,
		feedCache:   feedCache,
		clock:       clk,
		legacyPath:  legacyPath,
		legacyWeek:  legacyWeek,
		scheduleTTL: scheduleTTL,
		oddsTTL:     oddsTTL,
		logger:      logging.WithPrefix("DataLoader"),
	}
}

// Load runs the full startup sequence and marks the merge layer loaded
func (dl *DataLoader) Load(ctx context.Context) error {
	start := dl.clock.Now()

	if err := dl.importLegacyPicks(ctx); err != nil {
		return err
	}

	table, err := dl.pickRepo.LoadTable(ctx)
	if err != nil {
		return fmt.Errorf("failed to load persisted picks: %w", err)
	}
	dl.merge.SeedPicks(table)

	archive, err := dl.history.Load()
	if err != nil {
		dl.logger.Warnf("History archive unusable, continuing without: %v", err)
	} else {
		dl.merge.SeedHistorical(archive)
	}

	dl.fetchAllWeeks(ctx)

	dl.merge.SetLoaded()
	dl.logger.Infof("Startup load finished in %v", dl.clock.Now().Sub(start).Round(time.Millisecond))
	return nil
}

// importLegacyPicks runs the one-time blob migration when a legacy
// export is configured. Corrupt blobs are discarded inside the
// repository; only storage failures surface.
func (dl *DataLoader) importLegacyPicks(ctx context.Context) error {
	if dl.legacyPath == "" {
		return nil
	}
	data, err := os.ReadFile(dl.legacyPath)
	if err != nil {
		if os.IsNotExist(err) {
			dl.logger.Debugf("No legacy pick export at %s", dl.legacyPath)
			return nil
		}
		return fmt.Errorf("failed to read legacy pick export: %w", err)
	}
	if _, err := dl.pickRepo.ImportLegacyBlob(ctx, data, dl.legacyWeek); err != nil {
		return fmt.Errorf("legacy pick import failed: %w", err)
	}
	return nil
}

// fetchAllWeeks pulls schedule, sheet, and odds data. Per-week fetches
// run concurrently; each week is independent and the merge layer is
// safe under any completion order.
func (dl *DataLoader) fetchAllWeeks(ctx context.Context) {
	current := dl.locker.CurrentWeek()

	var wg sync.WaitGroup
	for week := 1; week <= current; week++ {
		wg.Add(1)
		go func(week int) {
			defer wg.Done()
			dl.loadWeek(ctx, week)
		}(week)
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		dl.loadOdds(ctx, current)
	}()
	wg.Wait()
}

// loadWeek fetches one week's schedule and sheet export
func (dl *DataLoader) loadWeek(ctx context.Context, week int) {
	body, ok := dl.cachedFetch(ctx, fmt.Sprintf("schedule:%d", week), dl.scheduleTTL, true, func() ([]byte, error) {
		return dl.schedule.FetchWeekRaw(ctx, week)
	})
	if ok {
		if games, err := dl.schedule.ParseSchedule(body); err != nil {
			dl.logger.Warnf("Week %d: schedule payload unparseable: %v", week, err)
		} else {
			dl.merge.ApplySchedule(week, games)
		}
	}

	sheet, err := dl.sheet.GetWeek(ctx, week)
	if err != nil {
		dl.logger.Warnf("Week %d: sheet fetch failed, continuing without: %v", week, err)
		return
	}
	dl.merge.ApplySheet(week, sheet)
}

// loadOdds fetches the odds feed and applies it to the current week.
// On a non-contest day any cached payload, fresh or stale, is served
// without spending an upstream request.
func (dl *DataLoader) loadOdds(ctx context.Context, week int) {
	refresh := IsContestDay(dl.clock.Now(), week)
	body, ok := dl.cachedFetch(ctx, "odds", dl.oddsTTL, refresh, func() ([]byte, error) {
		return dl.odds.FetchRaw(ctx)
	})
	if !ok {
		return
	}
	quotes, err := dl.odds.ParseOdds(body)
	if err != nil {
		dl.logger.Warnf("Odds payload unparseable: %v", err)
		return
	}
	dl.merge.ApplyOdds(week, quotes)
}

// cachedFetch serves a fresh cached payload when one exists, otherwise
// fetches and caches, and falls back to a stale payload when the fetch
// fails. When refresh is false a stale payload is served without
// fetching; only a wholly empty cache still triggers the fetch.
// Returns false only when no payload is available at all.
func (dl *DataLoader) cachedFetch(ctx context.Context, key string, ttl time.Duration, refresh bool, fetch func() ([]byte, error)) ([]byte, bool) {
	now := dl.clock.Now()

	var stale []byte
	if dl.feedCache != nil {
		cached, capturedAt, err := dl.feedCache.Get(ctx, key)
		if err == nil && cached != nil {
			if database.IsFresh(capturedAt, ttl, now) {
				dl.logger.Debugf("Serving %s from cache (captured %v)", key, capturedAt)
				return cached, true
			}
			if !refresh {
				dl.logger.Debugf("Serving stale %s from cache, no refresh due", key)
				return cached, true
			}
			stale = cached
		}
	}

	body, err := fetch()
	if err != nil {
		if stale != nil {
			dl.logger.Warnf("Fetch of %s failed, using stale cache: %v", key, err)
			return stale, true
		}
		dl.logger.Warnf("Fetch of %s failed with no cached fallback: %v", key, err)
		return nil, false
	}

	if dl.feedCache != nil {
		if err := dl.feedCache.Put(ctx, key, body, now); err != nil {
			dl.logger.Warnf("Failed to cache %s payload: %v", key, err)
		}
	}
	return body, true
}
