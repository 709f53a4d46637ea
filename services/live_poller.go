package services

import (
	"context"
	"sync"
	"time"

	"pickem-app-go/logging"
)

// LivePoller periodically refreshes the live-status cache and folds
// finished games into the merge layer. It stops itself once every
// cached entry is terminal, and re-evaluates that condition after
// every fetch, so a day's polling winds down when the last game ends.
type LivePoller struct {
	schedule *ScheduleService
	live     *LiveCache
	merge    *MergeService
	locker   *LockService
	interval time.Duration

	mu       sync.Mutex
	running  bool
	stopChan chan struct{}
	logger   *logging.Logger
}

// NewLivePoller creates a poller over the given feed and cache
func NewLivePoller(schedule *ScheduleService, live *LiveCache, merge *MergeService, locker *LockService, interval time.Duration) *LivePoller {
	return &LivePoller{
		schedule: schedule,
		live:     live,
		merge:    merge,
		locker:   locker,
		interval: interval,
		logger:   logging.WithPrefix("LivePoller"),
	}
}

// Start launches the polling loop. Calling Start on a running poller
// is a no-op; duplicate timers are never created.
func (p *LivePoller) Start() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.running {
		p.logger.Debug("Start called while already running, ignoring")
		return
	}
	p.running = true
	p.stopChan = make(chan struct{})
	go p.loop(p.stopChan)
	p.logger.Infof("Started, polling every %v", p.interval)
}

// Stop halts the polling loop. Safe to call when not running.
func (p *LivePoller) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.running {
		return
	}
	close(p.stopChan)
	p.running = false
	p.logger.Info("Stopped")
}

// Running reports whether the loop is active
func (p *LivePoller) Running() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.running
}

func (p *LivePoller) loop(stop chan struct{}) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.Refresh(context.Background())

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			p.Refresh(context.Background())
			if p.doneForTheDay() {
				p.logger.Info("All games final, stopping until next start")
				go p.Stop()
				return
			}
		}
	}
}

// Refresh performs one poll cycle: fetch live statuses, update the
// cache, and record any finals into the current week.
func (p *LivePoller) Refresh(ctx context.Context) {
	statuses, err := p.schedule.GetLiveStatuses(ctx)
	if err != nil {
		p.logger.Warnf("Live fetch failed, keeping cached statuses: %v", err)
		return
	}

	for _, status := range statuses {
		p.live.Put(status)
	}

	week := p.locker.CurrentWeek()
	finals := 0
	for _, status := range statuses {
		if status.IsTerminal() && p.merge.ApplyLiveResult(week, status) {
			finals++
		}
	}

	p.logger.Debugf("Refreshed %d live statuses (%d new finals)", len(statuses), finals)
}

// doneForTheDay reports whether every cached entry is terminal. An
// empty cache counts as not done; polling continues until the feed has
// said something.
func (p *LivePoller) doneForTheDay() bool {
	return p.live.Len() > 0 && !p.live.AnyActive()
}
