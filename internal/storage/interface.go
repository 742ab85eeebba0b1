package storage

import (
	"context"
	"time"

	"github.com/Alessandro-giacometti/sleep-debt-app/internal"
)

// SampleRepository is a per-origin, date-keyed record store. Upserts are
// atomic per row: the last writer for a given date wins.
type SampleRepository interface {
	UpsertSample(ctx context.Context, origin internal.Origin, sample *internal.SleepSample) error
	UpsertSamples(ctx context.Context, origin internal.Origin, samples []internal.SleepSample) (int, error)
	// ListSamples returns samples with from <= date <= to, newest first.
	ListSamples(ctx context.Context, origin internal.Origin, from, to string) ([]internal.SleepSample, error)
	ListAllSamples(ctx context.Context, origin internal.Origin) ([]internal.SleepSample, error)
	DeleteSamples(ctx context.Context, origin internal.Origin) (int, error)
}

type SettingsRepository interface {
	// GetSettings returns (nil, nil) when no settings row exists yet.
	GetSettings(ctx context.Context) (*internal.UserSettings, error)
	PutSettings(ctx context.Context, settings *internal.UserSettings) error
}

type SyncStateRepository interface {
	GetLastSync(ctx context.Context) (*time.Time, error)
	SetLastSync(ctx context.Context, t time.Time) error
}
