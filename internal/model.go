package internal

import "time"

// DateLayout is the calendar-day key format used everywhere a date is stored
// or compared. ISO dates order correctly as plain strings.
const DateLayout = "2006-01-02"

// Origin selects the partition a sample belongs to. Real and example data are
// stored side by side and never merged.
type Origin string

const (
	OriginReal    Origin = "real"
	OriginExample Origin = "example"
)

func OriginFor(useExampleData bool) Origin {
	if useExampleData {
		return OriginExample
	}
	return OriginReal
}

// SleepSample is one calendar day's observation. Debt is always
// TargetHours - SleepHours; positive means deficit, negative surplus.
type SleepSample struct {
	Date        string  `json:"date"`
	SleepHours  float64 `json:"sleep_hours"`
	TargetHours float64 `json:"target_hours"`
	Debt        float64 `json:"debt"`
}

type UserSettings struct {
	TargetSleepHours float64   `json:"target_sleep_hours"`
	WindowDays       int       `json:"window_days"`
	UseExampleData   bool      `json:"use_example_data"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// WindowStats is the aggregate over the current statistics window.
type WindowStats struct {
	TotalSleepHours  float64 `json:"total_sleep_hours"`
	TotalTargetHours float64 `json:"total_target_hours"`
	TotalDebt        float64 `json:"total_debt"`
	DaysTracked      int     `json:"days_tracked"`
	TodayHasData     bool    `json:"today_has_data"`
}

// StatusReport is the statistics query result exposed at the process boundary.
type StatusReport struct {
	LastSync          *time.Time    `json:"last_sync"`
	CurrentDebtHours  float64       `json:"current_debt_hours"`
	TotalSleepHours   float64       `json:"total_sleep_hours"`
	TargetSleepHours  float64       `json:"target_sleep_hours"`
	DaysTracked       int           `json:"days_tracked"`
	HasTodayData      bool          `json:"has_today_data"`
	WindowDays        int           `json:"window_days"`
	TotalRealDataDays int           `json:"total_real_data_days"`
	UseExampleData    bool          `json:"use_example_data"`
	RecentData        []SleepSample `json:"recent_data"`
}

// SyncResult is what a Syncer reports back. A failed sync is Success=false
// with a diagnostic message, never an error.
type SyncResult struct {
	Success         bool       `json:"success"`
	RecordsSynced   int        `json:"records_synced"`
	Message         string     `json:"message"`
	LastSync        *time.Time `json:"last_sync"`
	UsedExampleData bool       `json:"used_example_data"`
}
