package service

import (
	"context"
	"time"

	"github.com/Alessandro-giacometti/sleep-debt-app/internal"
	"github.com/Alessandro-giacometti/sleep-debt-app/internal/storage"
)

// DailyDebt is target minus actual sleep for one day. Negative debt is a
// surplus and is kept as-is.
func DailyDebt(sleepHours, targetHours float64) float64 {
	return targetHours - sleepHours
}

// CumulativeDebt sums per-day debt. A sample without a recorded debt is
// derived from its own target hours, never from the current global target;
// for a consistent row the derivation yields the stored value anyway.
func CumulativeDebt(samples []internal.SleepSample) float64 {
	total := 0.0
	for _, s := range samples {
		debt := s.Debt
		if debt == 0 {
			debt = DailyDebt(s.SleepHours, s.TargetHours)
		}
		total += debt
	}
	return total
}

// Recalculate rewrites every sample of one origin partition against a new
// target. A row that fails is skipped, not fatal: the sweep continues and
// the count of successfully updated rows is returned.
func Recalculate(ctx context.Context, repo storage.SampleRepository, origin internal.Origin, newTarget float64, logger internal.Logger) (int, error) {
	samples, err := repo.ListAllSamples(ctx, origin)
	if err != nil {
		return 0, err
	}

	updated := 0
	for _, s := range samples {
		if _, err := time.Parse(internal.DateLayout, s.Date); err != nil {
			logger.Warnf("recalculate: skipping %s sample with malformed date %q: %v", origin, s.Date, err)
			continue
		}
		s.TargetHours = newTarget
		s.Debt = DailyDebt(s.SleepHours, newTarget)
		if err := repo.UpsertSample(ctx, origin, &s); err != nil {
			logger.Warnf("recalculate: failed to update %s sample %s: %v", origin, s.Date, err)
			continue
		}
		updated++
	}
	return updated, nil
}
