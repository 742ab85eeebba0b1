package service

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Alessandro-giacometti/sleep-debt-app/internal"
	"github.com/Alessandro-giacometti/sleep-debt-app/internal/storage"
)

type fakeClock struct {
	now time.Time
}

func (f fakeClock) Now() time.Time { return f.now }

func (f fakeClock) Today() string { return f.now.Format(internal.DateLayout) }

func testClock(day string) fakeClock {
	t, err := time.Parse(internal.DateLayout, day)
	if err != nil {
		panic(err)
	}
	// Mid-morning, like the scheduler band.
	return fakeClock{now: t.Add(9 * time.Hour)}
}

func testLogger() internal.Logger {
	return internal.NewZapLogger(zap.NewNop().Sugar())
}

func testStore(t *testing.T) *storage.FileStorage {
	t.Helper()
	dir := t.TempDir()
	store, err := storage.NewFileStorage(
		filepath.Join(dir, "samples.json"),
		filepath.Join(dir, "state.json"),
		testLogger(),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

// seedDays inserts one sample per day for dates from..to inclusive.
func seedDays(t *testing.T, store storage.SampleRepository, origin internal.Origin, from, to string, sleepHours, targetHours float64) {
	t.Helper()
	start, err := time.Parse(internal.DateLayout, from)
	require.NoError(t, err)
	end, err := time.Parse(internal.DateLayout, to)
	require.NoError(t, err)
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		sample := &internal.SleepSample{
			Date:        d.Format(internal.DateLayout),
			SleepHours:  sleepHours,
			TargetHours: targetHours,
			Debt:        DailyDebt(sleepHours, targetHours),
		}
		require.NoError(t, store.UpsertSample(context.Background(), origin, sample))
	}
}

type syncCall struct {
	days    int
	example bool
}

// fakeSyncer records calls and delegates behavior to handler.
type fakeSyncer struct {
	calls   []syncCall
	handler func(days int, example bool) (*internal.SyncResult, error)
}

func (f *fakeSyncer) Sync(ctx context.Context, days int, useExampleData bool) (*internal.SyncResult, error) {
	f.calls = append(f.calls, syncCall{days: days, example: useExampleData})
	if f.handler != nil {
		return f.handler(days, useExampleData)
	}
	return &internal.SyncResult{Success: true, Message: "noop"}, nil
}

// writeBackSyncer returns a handler that behaves like a healthy upstream:
// real mode writes `days` samples ending today, example mode writes into
// the example partition.
func writeBackSyncer(store storage.SampleRepository, clock internal.Clock, target float64) func(days int, example bool) (*internal.SyncResult, error) {
	return func(days int, example bool) (*internal.SyncResult, error) {
		origin := internal.OriginFor(example)
		samples := make([]internal.SleepSample, 0, days)
		for i := 0; i < days; i++ {
			date := clock.Now().AddDate(0, 0, -i).Format(internal.DateLayout)
			samples = append(samples, internal.SleepSample{
				Date: date, SleepHours: 7.5, TargetHours: target, Debt: DailyDebt(7.5, target),
			})
		}
		n, err := store.UpsertSamples(context.Background(), origin, samples)
		if err != nil {
			return nil, err
		}
		return &internal.SyncResult{Success: true, RecordsSynced: n, UsedExampleData: example}, nil
	}
}

// emptyUpstreamSyncer reports success but never produces records, like an
// upstream with no more history to give.
func emptyUpstreamSyncer() func(days int, example bool) (*internal.SyncResult, error) {
	return func(days int, example bool) (*internal.SyncResult, error) {
		return &internal.SyncResult{Success: true, RecordsSynced: 0, Message: "no data available", UsedExampleData: example}, nil
	}
}
