package service

import (
	"context"

	"github.com/Alessandro-giacometti/sleep-debt-app/internal"
	"github.com/Alessandro-giacometti/sleep-debt-app/internal/storage"
)

// recentRealLookbackDays bounds the "how much real history exists" scan to a
// fixed range regardless of how long the user has been tracked.
const recentRealLookbackDays = 35

// StatsService answers "what are the last N days of data, as of now, and how
// complete is that window" for one origin partition.
type StatsService struct {
	samples   storage.SampleRepository
	syncState storage.SyncStateRepository
	clock     internal.Clock
	logger    internal.Logger
}

func NewStatsService(samples storage.SampleRepository, syncState storage.SyncStateRepository, clock internal.Clock, logger internal.Logger) *StatsService {
	return &StatsService{samples: samples, syncState: syncState, clock: clock, logger: logger}
}

// windowBounds returns the inclusive date range for an N-day window ending
// today, or ending yesterday when today's sample has not arrived yet so an
// in-progress day never drags down a completed-day average.
func windowBounds(today string, windowDays int, todayHasData bool) (from, to string) {
	t := mustParseDay(today)
	if todayHasData {
		return dayString(t.AddDate(0, 0, -(windowDays - 1))), today
	}
	return dayString(t.AddDate(0, 0, -windowDays)), dayString(t.AddDate(0, 0, -1))
}

// HasToday reports whether a sample exists for today's date in the partition.
func (s *StatsService) HasToday(ctx context.Context, origin internal.Origin) (bool, error) {
	today := s.clock.Today()
	samples, err := s.samples.ListSamples(ctx, origin, today, today)
	if err != nil {
		return false, err
	}
	return len(samples) > 0, nil
}

// Window returns the samples inside the current statistics window, newest
// first, along with the today-present flag.
func (s *StatsService) Window(ctx context.Context, origin internal.Origin, windowDays int) ([]internal.SleepSample, bool, error) {
	todayHasData, err := s.HasToday(ctx, origin)
	if err != nil {
		return nil, false, err
	}
	from, to := windowBounds(s.clock.Today(), windowDays, todayHasData)
	samples, err := s.samples.ListSamples(ctx, origin, from, to)
	if err != nil {
		return nil, false, err
	}
	return samples, todayHasData, nil
}

// WindowStats aggregates the current window. Missing days are simply absent
// from the sums; an empty window reports zeroes, not an error.
func (s *StatsService) WindowStats(ctx context.Context, origin internal.Origin, windowDays int) (*internal.WindowStats, error) {
	samples, todayHasData, err := s.Window(ctx, origin, windowDays)
	if err != nil {
		return nil, err
	}

	stats := &internal.WindowStats{TodayHasData: todayHasData}
	for _, sample := range samples {
		stats.TotalSleepHours += sample.SleepHours
		stats.TotalTargetHours += sample.TargetHours
		stats.DaysTracked++
	}
	stats.TotalDebt = CumulativeDebt(samples)
	return stats, nil
}

// CountAvailableDays reports how many of the window's days actually have
// data, without materializing the full aggregate.
func (s *StatsService) CountAvailableDays(ctx context.Context, origin internal.Origin, windowDays int) (int, error) {
	samples, _, err := s.Window(ctx, origin, windowDays)
	if err != nil {
		return 0, err
	}
	return len(samples), nil
}

// CountRecentRealDays counts distinct real-origin dates in a fixed lookback
// ending today. It is an upper bound on contiguous history, not a strict
// consecutive-run count.
func (s *StatsService) CountRecentRealDays(ctx context.Context) (int, error) {
	t := mustParseDay(s.clock.Today())
	from := dayString(t.AddDate(0, 0, -(recentRealLookbackDays - 1)))
	samples, err := s.samples.ListSamples(ctx, internal.OriginReal, from, s.clock.Today())
	if err != nil {
		return 0, err
	}
	return len(samples), nil
}

// Status assembles the full statistics report for the effective settings.
func (s *StatsService) Status(ctx context.Context, settings *internal.UserSettings) (*internal.StatusReport, error) {
	origin := internal.OriginFor(settings.UseExampleData)

	samples, todayHasData, err := s.Window(ctx, origin, settings.WindowDays)
	if err != nil {
		return nil, err
	}
	totalReal, err := s.CountRecentRealDays(ctx)
	if err != nil {
		return nil, err
	}
	lastSync, err := s.syncState.GetLastSync(ctx)
	if err != nil {
		s.logger.Warnf("stats: failed to read last sync time: %v", err)
		lastSync = nil
	}

	report := &internal.StatusReport{
		LastSync:          lastSync,
		CurrentDebtHours:  CumulativeDebt(samples),
		DaysTracked:       len(samples),
		HasTodayData:      todayHasData,
		WindowDays:        settings.WindowDays,
		TotalRealDataDays: totalReal,
		UseExampleData:    settings.UseExampleData,
		RecentData:        samples,
	}
	for _, sample := range samples {
		report.TotalSleepHours += sample.SleepHours
		report.TargetSleepHours += sample.TargetHours
	}
	return report, nil
}
