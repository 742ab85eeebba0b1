package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/Alessandro-giacometti/sleep-debt-app/internal"
	"github.com/Alessandro-giacometti/sleep-debt-app/internal/service"
)

type State string

const (
	StateIdle      State = "idle"
	StateWaiting   State = "waiting"
	StateSyncing   State = "syncing"
	StateSatisfied State = "satisfied"
	StateStopped   State = "stopped"
)

// Daily attempt schedule: every 30 minutes from 07:00 to 09:30, then hourly
// until 13:00. Sleep data usually lands upstream shortly after wake-up, so
// attempts are dense early and taper off.
var syncInstants = []struct{ hour, minute int }{
	{7, 0}, {7, 30}, {8, 0}, {8, 30}, {9, 0}, {9, 30},
	{10, 0}, {11, 0}, {12, 0}, {13, 0},
}

const (
	// dueTolerance absorbs imprecise wake-ups from the coarse poll cadence.
	dueTolerance = 5 * time.Minute
	// maxWait keeps the loop responsive to stop signals and date rollover.
	maxWait      = time.Hour
	errorBackoff = 5 * time.Minute

	bandStartHour = 7
	bandEndHour   = 13
)

// Status is a read-only snapshot of the scheduler's state.
type Status struct {
	Running         bool       `json:"running"`
	State           State      `json:"state"`
	TodayFound      bool       `json:"today_found"`
	LastCheckedDate string     `json:"last_checked_date,omitempty"`
	NextSyncTime    *time.Time `json:"next_sync_time,omitempty"`
	ShouldRunNow    bool       `json:"should_run_now"`
}

// Scheduler opportunistically syncs today's sleep sample within a bounded
// time-of-day band. One instance per process; all state is owned by the
// loop goroutine and mutated only from it.
type Scheduler struct {
	stats    *service.StatsService
	settings *service.SettingsService
	syncer   service.Syncer
	clock    internal.Clock
	logger   internal.Logger

	mu          sync.Mutex
	state       State
	todayFound  bool
	lastChecked string
	running     bool
	cancel      context.CancelFunc
	done        chan struct{}
}

func New(stats *service.StatsService, settings *service.SettingsService, syncer service.Syncer, clock internal.Clock, logger internal.Logger) *Scheduler {
	return &Scheduler{
		stats:    stats,
		settings: settings,
		syncer:   syncer,
		clock:    clock,
		logger:   logger,
		state:    StateIdle,
	}
}

// Start launches the loop goroutine. Calling Start on a running scheduler
// is a no-op.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		s.logger.Warn("scheduler: already running")
		return
	}
	ctx, s.cancel = context.WithCancel(ctx)
	s.running = true
	s.done = make(chan struct{})
	go s.loop(ctx)
	s.logger.Info("scheduler: started")
}

// Stop cancels any in-flight wait and exits the loop without side effects.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	cancel, done := s.cancel, s.done
	s.mu.Unlock()

	cancel()
	<-done
	s.logger.Info("scheduler: stopped")
}

func (s *Scheduler) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.clock.Now()
	due, next := dueAt(now)
	return Status{
		Running:         s.running,
		State:           s.state,
		TodayFound:      s.todayFound,
		LastCheckedDate: s.lastChecked,
		NextSyncTime:    &next,
		ShouldRunNow:    due,
	}
}

func (s *Scheduler) loop(ctx context.Context) {
	defer func() {
		s.setState(StateStopped)
		s.mu.Lock()
		s.running = false
		close(s.done)
		s.mu.Unlock()
	}()

	for {
		wait := s.step(ctx)
		select {
		case <-ctx.Done():
			return
		case <-time.After(wait):
		}
	}
}

// step runs one loop iteration and returns how long to sleep before the
// next one.
func (s *Scheduler) step(ctx context.Context) time.Duration {
	now := s.clock.Now()
	today := s.clock.Today()

	s.mu.Lock()
	if s.lastChecked != "" && s.lastChecked != today {
		s.logger.Infof("scheduler: new day (was %s, now %s), resetting", s.lastChecked, today)
		s.todayFound = false
		s.state = StateIdle
	}
	s.lastChecked = today
	satisfied := s.todayFound
	s.mu.Unlock()

	if satisfied {
		s.setState(StateSatisfied)
		return capWait(tomorrowBandStart(now).Sub(now))
	}

	due, next := dueAt(now)
	if due {
		s.setState(StateSyncing)
		found, err := s.attempt(ctx)
		if err != nil {
			s.logger.Errorf("scheduler: sync attempt failed: %v", err)
			s.setState(StateIdle)
			return errorBackoff
		}
		if found {
			s.mu.Lock()
			s.todayFound = true
			s.state = StateSatisfied
			s.mu.Unlock()
			return capWait(tomorrowBandStart(now).Sub(now))
		}
		s.setState(StateIdle)
	} else {
		s.setState(StateWaiting)
	}
	return capWait(next.Sub(now))
}

// attempt tries to satisfy today's data once: skip in example mode, check
// for an existing sample, otherwise sync exactly one day and re-check.
func (s *Scheduler) attempt(ctx context.Context) (bool, error) {
	settings, err := s.settings.Resolve(ctx)
	if err != nil {
		return false, err
	}
	if settings.UseExampleData {
		s.logger.Info("scheduler: skipping sync, example data mode is enabled")
		return false, nil
	}

	hasToday, err := s.stats.HasToday(ctx, internal.OriginReal)
	if err != nil {
		return false, err
	}
	if hasToday {
		s.logger.Info("scheduler: today's data already present, no sync needed")
		return true, nil
	}

	res, err := s.syncer.Sync(ctx, 1, false)
	if err != nil {
		return false, err
	}
	if !res.Success {
		s.logger.Warnf("scheduler: sync failed: %s", res.Message)
		return false, nil
	}
	s.logger.Infof("scheduler: sync succeeded, %d records", res.RecordsSynced)

	hasToday, err = s.stats.HasToday(ctx, internal.OriginReal)
	if err != nil {
		return false, err
	}
	if !hasToday {
		s.logger.Info("scheduler: sync completed but today's data not yet available upstream")
	}
	return hasToday, nil
}

func (s *Scheduler) setState(state State) {
	s.mu.Lock()
	s.state = state
	s.mu.Unlock()
}

// dueAt reports whether a scheduled instant falls within the tolerance of
// now, and the next upcoming instant (tomorrow's band start when today's
// schedule is exhausted). Outside the daily band nothing is due.
func dueAt(now time.Time) (bool, time.Time) {
	instants := instantsFor(now)

	var next time.Time
	for _, instant := range instants {
		if instant.After(now) {
			next = instant
			break
		}
	}
	if next.IsZero() {
		next = tomorrowBandStart(now)
	}

	bandStart := instants[0]
	bandEnd := time.Date(now.Year(), now.Month(), now.Day(), bandEndHour, 0, 0, 0, now.Location())
	if now.Before(bandStart) || now.After(bandEnd) {
		return false, next
	}

	for _, instant := range instants {
		diff := now.Sub(instant)
		if diff < 0 {
			diff = -diff
		}
		if diff <= dueTolerance {
			return true, next
		}
	}
	return false, next
}

func instantsFor(now time.Time) []time.Time {
	instants := make([]time.Time, 0, len(syncInstants))
	for _, si := range syncInstants {
		instants = append(instants, time.Date(now.Year(), now.Month(), now.Day(), si.hour, si.minute, 0, 0, now.Location()))
	}
	return instants
}

func tomorrowBandStart(now time.Time) time.Time {
	return time.Date(now.Year(), now.Month(), now.Day()+1, bandStartHour, 0, 0, 0, now.Location())
}

func capWait(wait time.Duration) time.Duration {
	if wait > maxWait {
		return maxWait
	}
	if wait < time.Second {
		return time.Second
	}
	return wait
}
