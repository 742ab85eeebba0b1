package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Alessandro-giacometti/sleep-debt-app/internal"
)

func newFileStore(t *testing.T) (*FileStorage, string) {
	t.Helper()
	dir := t.TempDir()
	store, err := NewFileStorage(filepath.Join(dir, "samples.json"), filepath.Join(dir, "state.json"),
		internal.NewZapLogger(zap.NewNop().Sugar()))
	require.NoError(t, err)
	return store, dir
}

func TestUpsertLastWriterWins(t *testing.T) {
	store, _ := newFileStore(t)
	defer store.Close()
	ctx := context.Background()

	first := &internal.SleepSample{Date: "2024-05-01", SleepHours: 7.0, TargetHours: 8.0, Debt: 1.0}
	second := &internal.SleepSample{Date: "2024-05-01", SleepHours: 6.0, TargetHours: 8.0, Debt: 2.0}
	require.NoError(t, store.UpsertSample(ctx, internal.OriginReal, first))
	require.NoError(t, store.UpsertSample(ctx, internal.OriginReal, second))

	samples, err := store.ListAllSamples(ctx, internal.OriginReal)
	require.NoError(t, err)
	require.Len(t, samples, 1)
	assert.InDelta(t, 6.0, samples[0].SleepHours, 1e-9)
}

func TestPartitionsAreDisjoint(t *testing.T) {
	store, _ := newFileStore(t)
	defer store.Close()
	ctx := context.Background()

	real := &internal.SleepSample{Date: "2024-05-01", SleepHours: 7.0, TargetHours: 8.0, Debt: 1.0}
	example := &internal.SleepSample{Date: "2024-05-01", SleepHours: 8.0, TargetHours: 8.0, Debt: 0.0}
	require.NoError(t, store.UpsertSample(ctx, internal.OriginReal, real))
	require.NoError(t, store.UpsertSample(ctx, internal.OriginExample, example))

	realSamples, err := store.ListAllSamples(ctx, internal.OriginReal)
	require.NoError(t, err)
	exampleSamples, err := store.ListAllSamples(ctx, internal.OriginExample)
	require.NoError(t, err)
	require.Len(t, realSamples, 1)
	require.Len(t, exampleSamples, 1)
	assert.InDelta(t, 7.0, realSamples[0].SleepHours, 1e-9)
	assert.InDelta(t, 8.0, exampleSamples[0].SleepHours, 1e-9)
}

func TestListSamplesRangeAndOrder(t *testing.T) {
	store, _ := newFileStore(t)
	defer store.Close()
	ctx := context.Background()

	dates := []string{"2024-05-01", "2024-05-02", "2024-05-03", "2024-05-04"}
	for _, d := range dates {
		require.NoError(t, store.UpsertSample(ctx, internal.OriginReal, &internal.SleepSample{
			Date: d, SleepHours: 7.0, TargetHours: 8.0, Debt: 1.0,
		}))
	}

	samples, err := store.ListSamples(ctx, internal.OriginReal, "2024-05-02", "2024-05-03")
	require.NoError(t, err)
	require.Len(t, samples, 2)
	assert.Equal(t, "2024-05-03", samples[0].Date)
	assert.Equal(t, "2024-05-02", samples[1].Date)
}

func TestUpsertBatchCount(t *testing.T) {
	store, _ := newFileStore(t)
	defer store.Close()
	ctx := context.Background()

	batch := []internal.SleepSample{
		{Date: "2024-05-01", SleepHours: 7.0, TargetHours: 8.0, Debt: 1.0},
		{Date: "2024-05-02", SleepHours: 7.5, TargetHours: 8.0, Debt: 0.5},
	}
	n, err := store.UpsertSamples(ctx, internal.OriginReal, batch)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestDeleteSamples(t *testing.T) {
	store, _ := newFileStore(t)
	defer store.Close()
	ctx := context.Background()

	for _, d := range []string{"2024-05-01", "2024-05-02"} {
		require.NoError(t, store.UpsertSample(ctx, internal.OriginExample, &internal.SleepSample{
			Date: d, SleepHours: 7.0, TargetHours: 8.0, Debt: 1.0,
		}))
	}

	deleted, err := store.DeleteSamples(ctx, internal.OriginExample)
	require.NoError(t, err)
	assert.Equal(t, 2, deleted)

	samples, err := store.ListAllSamples(ctx, internal.OriginExample)
	require.NoError(t, err)
	assert.Empty(t, samples)
}

func TestSettingsRoundTrip(t *testing.T) {
	store, _ := newFileStore(t)
	defer store.Close()
	ctx := context.Background()

	settings, err := store.GetSettings(ctx)
	require.NoError(t, err)
	assert.Nil(t, settings)

	in := &internal.UserSettings{TargetSleepHours: 7.5, WindowDays: 14, UseExampleData: true, UpdatedAt: time.Now()}
	require.NoError(t, store.PutSettings(ctx, in))

	out, err := store.GetSettings(ctx)
	require.NoError(t, err)
	require.NotNil(t, out)
	assert.InDelta(t, 7.5, out.TargetSleepHours, 1e-9)
	assert.Equal(t, 14, out.WindowDays)
	assert.True(t, out.UseExampleData)
}

func TestLastSyncRoundTrip(t *testing.T) {
	store, _ := newFileStore(t)
	defer store.Close()
	ctx := context.Background()

	last, err := store.GetLastSync(ctx)
	require.NoError(t, err)
	assert.Nil(t, last)

	now := time.Now().Truncate(time.Second)
	require.NoError(t, store.SetLastSync(ctx, now))

	last, err = store.GetLastSync(ctx)
	require.NoError(t, err)
	require.NotNil(t, last)
	assert.True(t, last.Equal(now))
}

func TestReloadFromDisk(t *testing.T) {
	store, dir := newFileStore(t)
	ctx := context.Background()

	require.NoError(t, store.UpsertSample(ctx, internal.OriginReal, &internal.SleepSample{
		Date: "2024-05-01", SleepHours: 7.0, TargetHours: 8.0, Debt: 1.0,
	}))
	require.NoError(t, store.PutSettings(ctx, &internal.UserSettings{
		TargetSleepHours: 8.0, WindowDays: 7, UpdatedAt: time.Now(),
	}))
	require.NoError(t, store.Close())

	reloaded, err := NewFileStorage(filepath.Join(dir, "samples.json"), filepath.Join(dir, "state.json"),
		internal.NewZapLogger(zap.NewNop().Sugar()))
	require.NoError(t, err)
	defer reloaded.Close()

	samples, err := reloaded.ListAllSamples(ctx, internal.OriginReal)
	require.NoError(t, err)
	require.Len(t, samples, 1)
	assert.Equal(t, "2024-05-01", samples[0].Date)

	settings, err := reloaded.GetSettings(ctx)
	require.NoError(t, err)
	require.NotNil(t, settings)
	assert.Equal(t, 7, settings.WindowDays)
}
