package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alessandro-giacometti/sleep-debt-app/internal"
)

func TestDailyDebt(t *testing.T) {
	assert.InDelta(t, 1.0, DailyDebt(7.0, 8.0), 1e-9)
	assert.InDelta(t, -0.5, DailyDebt(8.5, 8.0), 1e-9)
	assert.InDelta(t, 0.0, DailyDebt(8.0, 8.0), 1e-9)
	// Surplus is retained, not clamped.
	assert.InDelta(t, -4.0, DailyDebt(12.0, 8.0), 1e-9)
}

func TestCumulativeDebt(t *testing.T) {
	samples := []internal.SleepSample{
		{Date: "2024-05-01", SleepHours: 7.0, TargetHours: 8.0, Debt: 1.0},
		{Date: "2024-05-02", SleepHours: 8.5, TargetHours: 8.0, Debt: -0.5},
		{Date: "2024-05-03", SleepHours: 6.0, TargetHours: 8.0, Debt: 2.0},
	}
	assert.InDelta(t, 2.5, CumulativeDebt(samples), 1e-9)
}

func TestCumulativeDebtDerivesFromOwnTarget(t *testing.T) {
	// A sample without a stored debt must be derived from its own target,
	// never the current global one.
	samples := []internal.SleepSample{
		{Date: "2024-05-01", SleepHours: 6.0, TargetHours: 9.0},
		{Date: "2024-05-02", SleepHours: 7.0, TargetHours: 7.5, Debt: 0.5},
	}
	assert.InDelta(t, 3.5, CumulativeDebt(samples), 1e-9)
}

func TestCumulativeDebtEmpty(t *testing.T) {
	assert.Zero(t, CumulativeDebt(nil))
}

func TestRecalculate(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()
	seedDays(t, store, internal.OriginReal, "2024-05-01", "2024-05-10", 7.0, 8.0)

	updated, err := Recalculate(ctx, store, internal.OriginReal, 7.5, testLogger())
	require.NoError(t, err)
	assert.Equal(t, 10, updated)

	samples, err := store.ListAllSamples(ctx, internal.OriginReal)
	require.NoError(t, err)
	require.Len(t, samples, 10)
	for _, s := range samples {
		assert.InDelta(t, 7.5, s.TargetHours, 1e-9)
		assert.InDelta(t, 7.5-s.SleepHours, s.Debt, 1e-9)
	}
}

func TestRecalculateSkipsMalformedDate(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()
	seedDays(t, store, internal.OriginReal, "2024-05-01", "2024-05-02", 7.0, 8.0)
	require.NoError(t, store.UpsertSample(ctx, internal.OriginReal, &internal.SleepSample{
		Date: "not-a-date", SleepHours: 7.0, TargetHours: 8.0, Debt: 1.0,
	}))

	updated, err := Recalculate(ctx, store, internal.OriginReal, 7.0, testLogger())
	require.NoError(t, err)
	assert.Equal(t, 2, updated)
}

func TestRecalculatePartitionsAreIndependent(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()
	seedDays(t, store, internal.OriginReal, "2024-05-01", "2024-05-03", 7.0, 8.0)
	seedDays(t, store, internal.OriginExample, "2024-05-01", "2024-05-03", 8.0, 8.0)

	_, err := Recalculate(ctx, store, internal.OriginReal, 9.0, testLogger())
	require.NoError(t, err)

	examples, err := store.ListAllSamples(ctx, internal.OriginExample)
	require.NoError(t, err)
	for _, s := range examples {
		assert.InDelta(t, 8.0, s.TargetHours, 1e-9)
	}
}
