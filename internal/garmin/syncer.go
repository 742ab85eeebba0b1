package garmin

import (
	"context"
	"fmt"

	"github.com/Alessandro-giacometti/sleep-debt-app/internal"
	"github.com/Alessandro-giacometti/sleep-debt-app/internal/service"
	"github.com/Alessandro-giacometti/sleep-debt-app/internal/storage"
)

// SleepSyncer implements service.Syncer: it pulls real sleep data from the
// wearable API, or generates example data, and upserts it into the matching
// partition. Upstream trouble is reported in the result, never raised.
type SleepSyncer struct {
	client        *Client
	samples       storage.SampleRepository
	settings      storage.SettingsRepository
	syncState     storage.SyncStateRepository
	clock         internal.Clock
	logger        internal.Logger
	defaultTarget float64
}

func NewSleepSyncer(client *Client, samples storage.SampleRepository, settings storage.SettingsRepository, syncState storage.SyncStateRepository, clock internal.Clock, logger internal.Logger, defaultTarget float64) *SleepSyncer {
	return &SleepSyncer{
		client:        client,
		samples:       samples,
		settings:      settings,
		syncState:     syncState,
		clock:         clock,
		logger:        logger,
		defaultTarget: defaultTarget,
	}
}

func (g *SleepSyncer) Sync(ctx context.Context, days int, useExampleData bool) (*internal.SyncResult, error) {
	if days < 1 {
		return nil, fmt.Errorf("garmin: sync days must be at least 1, got %d", days)
	}

	target := g.effectiveTarget(ctx)
	if useExampleData {
		return g.syncExample(ctx, days, target)
	}
	return g.syncReal(ctx, days, target)
}

func (g *SleepSyncer) syncExample(ctx context.Context, days int, target float64) (*internal.SyncResult, error) {
	samples := GenerateExampleSamples(days, target, g.clock.Now())
	written, err := g.samples.UpsertSamples(ctx, internal.OriginExample, samples)
	if err != nil {
		return failure(fmt.Sprintf("failed to store example data: %v", err), true), nil
	}
	return g.success(ctx, written, fmt.Sprintf("generated %d example records", written), true), nil
}

func (g *SleepSyncer) syncReal(ctx context.Context, days int, target float64) (*internal.SyncResult, error) {
	if g.client == nil || !g.client.Configured() {
		return failure("wearable credentials not configured", false), nil
	}
	if err := g.client.Login(ctx); err != nil {
		g.logger.Warnf("garmin: login failed: %v", err)
		return failure(fmt.Sprintf("login failed: %v", err), false), nil
	}

	today := g.clock.Now()
	var samples []internal.SleepSample
	for i := 0; i < days; i++ {
		date := today.AddDate(0, 0, -i).Format(internal.DateLayout)
		hours, ok, err := g.client.DailySleep(ctx, date)
		if err != nil {
			g.logger.Warnf("garmin: fetch for %s failed: %v", date, err)
			return failure(fmt.Sprintf("fetch for %s failed: %v", date, err), false), nil
		}
		if !ok {
			// Day not published upstream; skipped, not an error.
			continue
		}
		samples = append(samples, internal.SleepSample{
			Date:        date,
			SleepHours:  hours,
			TargetHours: target,
			Debt:        service.DailyDebt(hours, target),
		})
	}

	written := 0
	if len(samples) > 0 {
		var err error
		written, err = g.samples.UpsertSamples(ctx, internal.OriginReal, samples)
		if err != nil {
			return failure(fmt.Sprintf("failed to store sleep data: %v", err), false), nil
		}
	}
	return g.success(ctx, written, fmt.Sprintf("synced %d of %d days", written, days), false), nil
}

func (g *SleepSyncer) effectiveTarget(ctx context.Context) float64 {
	settings, err := g.settings.GetSettings(ctx)
	if err != nil || settings == nil {
		return g.defaultTarget
	}
	return settings.TargetSleepHours
}

func (g *SleepSyncer) success(ctx context.Context, written int, msg string, example bool) *internal.SyncResult {
	now := g.clock.Now()
	if err := g.syncState.SetLastSync(ctx, now); err != nil {
		g.logger.Warnf("garmin: failed to record sync time: %v", err)
	}
	return &internal.SyncResult{
		Success:         true,
		RecordsSynced:   written,
		Message:         msg,
		LastSync:        &now,
		UsedExampleData: example,
	}
}

func failure(msg string, example bool) *internal.SyncResult {
	return &internal.SyncResult{Success: false, Message: msg, UsedExampleData: example}
}

var _ service.Syncer = (*SleepSyncer)(nil)
