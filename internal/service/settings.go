package service

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/Alessandro-giacometti/sleep-debt-app/internal"
	"github.com/Alessandro-giacometti/sleep-debt-app/internal/storage"
)

var validate = validator.New()

// targetEpsilon is the tolerance below which a target change does not
// trigger a debt recalculation sweep.
const targetEpsilon = 0.001

// minExampleDays is the floor on generated example data so a fresh example
// window is never trivially empty.
const minExampleDays = 3

// fallbackSteps maps a requested window to the smaller windows tried, in
// order, when the requested one cannot be filled. Only 30 and 14 have a
// fallback path; other sizes fail directly.
var fallbackSteps = map[int][]int{
	30: {14, 7},
	14: {7},
}

// Syncer pulls sleep data from the external source (or generates example
// data) into the record store. Upstream failures come back as
// Success=false with a message; an error is returned only for caller
// misuse (days < 1).
type Syncer interface {
	Sync(ctx context.Context, days int, useExampleData bool) (*internal.SyncResult, error)
}

type UpdateSettingsRequest struct {
	TargetSleepHours float64 `json:"target_sleep_hours" validate:"required,gt=0"`
	WindowDays       int     `json:"window_days" validate:"required,gte=1"`
	UseExampleData   bool    `json:"use_example_data"`
}

type UpdateSettingsResult struct {
	Settings      *internal.UserSettings `json:"settings"`
	Synced        bool                   `json:"synced"`
	RecordsSynced int                    `json:"records_synced"`
	Recalculated  int                    `json:"recalculated"`
	Message       string                 `json:"message,omitempty"`
}

// Defaults are the env-tier values used when no settings row exists yet.
type Defaults struct {
	TargetSleepHours float64
	WindowDays       int
}

// SettingsService owns the settings singleton and the synchronization
// decisions a settings change implies.
type SettingsService struct {
	settingsRepo storage.SettingsRepository
	samples      storage.SampleRepository
	stats        *StatsService
	syncer       Syncer
	clock        internal.Clock
	logger       internal.Logger
	defaults     Defaults
}

func NewSettingsService(settingsRepo storage.SettingsRepository, samples storage.SampleRepository, stats *StatsService, syncer Syncer, clock internal.Clock, logger internal.Logger, defaults Defaults) *SettingsService {
	return &SettingsService{
		settingsRepo: settingsRepo,
		samples:      samples,
		stats:        stats,
		syncer:       syncer,
		clock:        clock,
		logger:       logger,
		defaults:     defaults,
	}
}

// Resolve returns the effective settings, lazily seeding the singleton from
// the static defaults on first read.
func (s *SettingsService) Resolve(ctx context.Context) (*internal.UserSettings, error) {
	settings, err := s.settingsRepo.GetSettings(ctx)
	if err != nil {
		return nil, err
	}
	if settings != nil {
		return settings, nil
	}

	settings = &internal.UserSettings{
		TargetSleepHours: s.defaults.TargetSleepHours,
		WindowDays:       s.defaults.WindowDays,
		UseExampleData:   false,
		UpdatedAt:        s.clock.Now(),
	}
	if err := s.settingsRepo.PutSettings(ctx, settings); err != nil {
		return nil, err
	}
	return settings, nil
}

// ManualSync triggers one sync in the currently effective mode. days <= 0
// means the caller did not choose a count and the standard 30-day backfill
// is used.
func (s *SettingsService) ManualSync(ctx context.Context, days int) (*internal.SyncResult, error) {
	settings, err := s.Resolve(ctx)
	if err != nil {
		return nil, err
	}
	if days <= 0 {
		days = 30
	}
	return s.syncer.Sync(ctx, days, settings.UseExampleData)
}

// Update applies a settings change, deciding first whether the requested
// window can be backed by data and synchronizing as needed. At most one
// corrective sync runs for the requested window; the fallback ladder may
// then try smaller windows, one sync per candidate.
func (s *SettingsService) Update(ctx context.Context, req *UpdateSettingsRequest) (*UpdateSettingsResult, error) {
	if err := validate.Struct(req); err != nil {
		return nil, &internal.ValidationError{Field: "settings", Reason: err.Error()}
	}
	if req.TargetSleepHours <= 0 {
		return nil, &internal.ValidationError{Field: "target_sleep_hours", Reason: "must be positive"}
	}
	if req.WindowDays < 1 {
		return nil, &internal.ValidationError{Field: "window_days", Reason: "must be at least 1"}
	}

	current, err := s.Resolve(ctx)
	if err != nil {
		return nil, err
	}

	origin := internal.OriginFor(req.UseExampleData)
	effectiveWindow := req.WindowDays
	result := &UpdateSettingsResult{}
	var notes []string
	hasSynced := false

	available, err := s.stats.CountAvailableDays(ctx, origin, req.WindowDays)
	if err != nil {
		return nil, err
	}
	totalReal, err := s.stats.CountRecentRealDays(ctx)
	if err != nil {
		return nil, err
	}

	// The requested window is short on data. If enough real history exists
	// anywhere in the lookback the window framing is just stale and no sync
	// is needed; otherwise force a real-mode sync regardless of the
	// requested mode, since real data is the authoritative backing store.
	if available < req.WindowDays {
		if totalReal >= req.WindowDays {
			s.logger.Infof("settings: %d real days on record cover a %d-day window, no sync needed", totalReal, req.WindowDays)
		} else {
			res := s.trySync(ctx, req.WindowDays, &result.RecordsSynced, &notes)
			hasSynced = res != nil
		}
	}

	// Leaving example mode: make sure real data can actually carry the
	// window before the switch becomes visible.
	if current.UseExampleData && !req.UseExampleData && !hasSynced {
		if totalReal < req.WindowDays {
			res := s.trySync(ctx, req.WindowDays, &result.RecordsSynced, &notes)
			hasSynced = res != nil
		}
	}

	if !req.UseExampleData {
		if err := s.flagStaleExampleData(ctx, req.WindowDays); err != nil {
			s.logger.Warnf("settings: failed to check for stale example data: %v", err)
		}

		available, err = s.stats.CountAvailableDays(ctx, internal.OriginReal, req.WindowDays)
		if err != nil {
			return nil, err
		}
		if available < req.WindowDays {
			if !hasSynced {
				if res := s.trySync(ctx, req.WindowDays, &result.RecordsSynced, &notes); res != nil {
					hasSynced = true
					available, err = s.stats.CountAvailableDays(ctx, internal.OriginReal, req.WindowDays)
					if err != nil {
						return nil, err
					}
				}
			}
			if available < req.WindowDays {
				fallback, err := s.degradeWindow(ctx, req.WindowDays, available, &result.RecordsSynced, &notes)
				if err != nil {
					return nil, err
				}
				effectiveWindow = fallback
			}
		}
	} else {
		// Example data is best-effort convenience: generate enough days to
		// fill the window but never fail the settings update over it.
		days := req.WindowDays
		if days < minExampleDays {
			days = minExampleDays
		}
		res, err := s.syncer.Sync(ctx, days, true)
		if err != nil {
			s.logger.Warnf("settings: example data generation failed: %v", err)
		} else if !res.Success {
			s.logger.Warnf("settings: example data generation failed: %s", res.Message)
		} else {
			result.RecordsSynced += res.RecordsSynced
			result.Synced = true
		}
	}

	settings := &internal.UserSettings{
		TargetSleepHours: req.TargetSleepHours,
		WindowDays:       effectiveWindow,
		UseExampleData:   req.UseExampleData,
		UpdatedAt:        s.clock.Now(),
	}
	if err := s.settingsRepo.PutSettings(ctx, settings); err != nil {
		return nil, err
	}
	result.Settings = settings
	result.Synced = result.Synced || hasSynced

	if math.Abs(req.TargetSleepHours-current.TargetSleepHours) > targetEpsilon {
		for _, origin := range []internal.Origin{internal.OriginReal, internal.OriginExample} {
			updated, err := Recalculate(ctx, s.samples, origin, req.TargetSleepHours, s.logger)
			if err != nil {
				s.logger.Errorf("settings: debt recalculation for %s data failed: %v", origin, err)
				continue
			}
			result.Recalculated += updated
		}
	}

	result.Message = strings.Join(notes, "; ")
	return result, nil
}

// trySync runs one real-mode sync sized to the window, asking for one extra
// day when today's sample is absent to compensate for the window excluding
// today. Returns nil when the syncer reported failure.
func (s *SettingsService) trySync(ctx context.Context, windowDays int, records *int, notes *[]string) *internal.SyncResult {
	days := windowDays
	hasToday, err := s.stats.HasToday(ctx, internal.OriginReal)
	if err != nil {
		s.logger.Warnf("settings: failed to check today's data: %v", err)
	}
	if !hasToday {
		days++
	}

	res, err := s.syncer.Sync(ctx, days, false)
	if err != nil {
		s.logger.Errorf("settings: sync for %d days failed: %v", days, err)
		return nil
	}
	if !res.Success {
		s.logger.Warnf("settings: sync for %d days failed: %s", days, res.Message)
		*notes = append(*notes, fmt.Sprintf("sync failed: %s", res.Message))
		return nil
	}
	*records += res.RecordsSynced
	return res
}

// degradeWindow walks the fixed fallback ladder, syncing each candidate and
// accepting the first one whose availability covers it. Exhaustion is the
// one hard failure of a settings update.
func (s *SettingsService) degradeWindow(ctx context.Context, requested, available int, records *int, notes *[]string) (int, error) {
	for _, candidate := range fallbackSteps[requested] {
		s.trySync(ctx, candidate, records, notes)
		got, err := s.stats.CountAvailableDays(ctx, internal.OriginReal, candidate)
		if err != nil {
			return 0, err
		}
		if got >= candidate {
			s.logger.Warnf("settings: window downgraded from %d to %d days (insufficient data)", requested, candidate)
			*notes = append(*notes, fmt.Sprintf("window reduced from %d to %d days due to limited data", requested, candidate))
			return candidate, nil
		}
		available = got
	}
	return 0, &internal.InsufficientDataError{WindowDays: requested, Available: available}
}

// flagStaleExampleData logs leftover example samples sitting inside a
// real-mode window. Real data always wins on read, so no cleanup happens.
func (s *SettingsService) flagStaleExampleData(ctx context.Context, windowDays int) error {
	count, err := s.stats.CountAvailableDays(ctx, internal.OriginExample, windowDays)
	if err != nil {
		return err
	}
	if count > 0 {
		s.logger.Infof("settings: %d example samples remain within the %d-day window; real data takes precedence", count, windowDays)
	}
	return nil
}
