package storage

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Alessandro-giacometti/sleep-debt-app/internal"
)

type PostgresStorage struct {
	pool   *pgxpool.Pool
	logger internal.Logger
}

func NewPostgresStorage(dsn string, logger internal.Logger) (*PostgresStorage, error) {
	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		logger.Errorf("failed to connect to postgres: %v", err)
		return nil, err
	}
	s := &PostgresStorage{pool: pool, logger: logger}
	if err := s.initSchema(ctx); err != nil {
		logger.Errorf("failed to init schema: %v", err)
		pool.Close()
		return nil, err
	}
	return s, nil
}

func (p *PostgresStorage) initSchema(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS sleep_samples (
			date TEXT NOT NULL,
			origin TEXT NOT NULL,
			sleep_hours DOUBLE PRECISION NOT NULL,
			target_hours DOUBLE PRECISION NOT NULL,
			debt DOUBLE PRECISION NOT NULL,
			PRIMARY KEY (date, origin)
		)`,
		`CREATE TABLE IF NOT EXISTS user_settings (
			id INT PRIMARY KEY,
			target_sleep_hours DOUBLE PRECISION NOT NULL,
			window_days INT NOT NULL,
			use_example_data BOOLEAN NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS sync_state (
			id INT PRIMARY KEY,
			last_sync TIMESTAMPTZ
		)`,
	}
	for _, stmt := range stmts {
		if _, err := p.pool.Exec(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

func (p *PostgresStorage) Close() {
	p.pool.Close()
}

// --- SampleRepository ---

const upsertSampleSQL = `INSERT INTO sleep_samples (date, origin, sleep_hours, target_hours, debt)
	VALUES ($1, $2, $3, $4, $5)
	ON CONFLICT (date, origin) DO UPDATE
	SET sleep_hours = EXCLUDED.sleep_hours, target_hours = EXCLUDED.target_hours, debt = EXCLUDED.debt`

func (p *PostgresStorage) UpsertSample(ctx context.Context, origin internal.Origin, sample *internal.SleepSample) error {
	_, err := p.pool.Exec(ctx, upsertSampleSQL,
		sample.Date, string(origin), sample.SleepHours, sample.TargetHours, sample.Debt)
	if err != nil {
		p.logger.Errorf("failed to upsert sleep sample %s: %v", sample.Date, err)
		return err
	}
	return nil
}

func (p *PostgresStorage) UpsertSamples(ctx context.Context, origin internal.Origin, samples []internal.SleepSample) (int, error) {
	batch := &pgx.Batch{}
	for _, s := range samples {
		batch.Queue(upsertSampleSQL, s.Date, string(origin), s.SleepHours, s.TargetHours, s.Debt)
	}
	results := p.pool.SendBatch(ctx, batch)
	defer results.Close()

	count := 0
	for range samples {
		if _, err := results.Exec(); err != nil {
			p.logger.Errorf("failed to upsert sample in batch: %v", err)
			return count, err
		}
		count++
	}
	return count, nil
}

func (p *PostgresStorage) ListSamples(ctx context.Context, origin internal.Origin, from, to string) ([]internal.SleepSample, error) {
	rows, err := p.pool.Query(ctx,
		`SELECT date, sleep_hours, target_hours, debt FROM sleep_samples
		 WHERE origin = $1 AND date >= $2 AND date <= $3 ORDER BY date DESC`,
		string(origin), from, to)
	if err != nil {
		p.logger.Errorf("failed to query sleep samples: %v", err)
		return nil, err
	}
	defer rows.Close()
	return scanSamples(rows)
}

func (p *PostgresStorage) ListAllSamples(ctx context.Context, origin internal.Origin) ([]internal.SleepSample, error) {
	rows, err := p.pool.Query(ctx,
		`SELECT date, sleep_hours, target_hours, debt FROM sleep_samples
		 WHERE origin = $1 ORDER BY date DESC`, string(origin))
	if err != nil {
		p.logger.Errorf("failed to query sleep samples: %v", err)
		return nil, err
	}
	defer rows.Close()
	return scanSamples(rows)
}

func scanSamples(rows pgx.Rows) ([]internal.SleepSample, error) {
	var samples []internal.SleepSample
	for rows.Next() {
		var s internal.SleepSample
		if err := rows.Scan(&s.Date, &s.SleepHours, &s.TargetHours, &s.Debt); err != nil {
			return nil, err
		}
		samples = append(samples, s)
	}
	return samples, rows.Err()
}

func (p *PostgresStorage) DeleteSamples(ctx context.Context, origin internal.Origin) (int, error) {
	tag, err := p.pool.Exec(ctx, `DELETE FROM sleep_samples WHERE origin = $1`, string(origin))
	if err != nil {
		p.logger.Errorf("failed to delete %s samples: %v", origin, err)
		return 0, err
	}
	return int(tag.RowsAffected()), nil
}

// --- SettingsRepository ---

func (p *PostgresStorage) GetSettings(ctx context.Context) (*internal.UserSettings, error) {
	row := p.pool.QueryRow(ctx,
		`SELECT target_sleep_hours, window_days, use_example_data, updated_at FROM user_settings WHERE id = 1`)
	var s internal.UserSettings
	if err := row.Scan(&s.TargetSleepHours, &s.WindowDays, &s.UseExampleData, &s.UpdatedAt); err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		p.logger.Errorf("failed to read settings: %v", err)
		return nil, err
	}
	return &s, nil
}

func (p *PostgresStorage) PutSettings(ctx context.Context, settings *internal.UserSettings) error {
	_, err := p.pool.Exec(ctx,
		`INSERT INTO user_settings (id, target_sleep_hours, window_days, use_example_data, updated_at)
		 VALUES (1, $1, $2, $3, $4)
		 ON CONFLICT (id) DO UPDATE
		 SET target_sleep_hours = EXCLUDED.target_sleep_hours,
		     window_days = EXCLUDED.window_days,
		     use_example_data = EXCLUDED.use_example_data,
		     updated_at = EXCLUDED.updated_at`,
		settings.TargetSleepHours, settings.WindowDays, settings.UseExampleData, settings.UpdatedAt)
	if err != nil {
		p.logger.Errorf("failed to save settings: %v", err)
	}
	return err
}

// --- SyncStateRepository ---

func (p *PostgresStorage) GetLastSync(ctx context.Context) (*time.Time, error) {
	row := p.pool.QueryRow(ctx, `SELECT last_sync FROM sync_state WHERE id = 1`)
	var last *time.Time
	if err := row.Scan(&last); err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		p.logger.Errorf("failed to read sync state: %v", err)
		return nil, err
	}
	return last, nil
}

func (p *PostgresStorage) SetLastSync(ctx context.Context, t time.Time) error {
	_, err := p.pool.Exec(ctx,
		`INSERT INTO sync_state (id, last_sync) VALUES (1, $1)
		 ON CONFLICT (id) DO UPDATE SET last_sync = EXCLUDED.last_sync`, t)
	if err != nil {
		p.logger.Errorf("failed to save sync state: %v", err)
	}
	return err
}

// --- Compile-time assertions ---
var _ SampleRepository = (*PostgresStorage)(nil)
var _ SettingsRepository = (*PostgresStorage)(nil)
var _ SyncStateRepository = (*PostgresStorage)(nil)
