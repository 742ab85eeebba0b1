package garmin

import (
	"time"

	"github.com/Alessandro-giacometti/sleep-debt-app/internal"
	"github.com/Alessandro-giacometti/sleep-debt-app/internal/service"
)

// GenerateExampleSamples produces days of synthetic sleep data ending today.
// Durations cycle between 7.0 and 8.5 hours so the dashboard has something
// plausible to show.
func GenerateExampleSamples(days int, targetHours float64, today time.Time) []internal.SleepSample {
	samples := make([]internal.SleepSample, 0, days)
	for i := 0; i < days; i++ {
		date := today.AddDate(0, 0, -i)
		sleepHours := 7.0 + float64(i%4)*0.5
		samples = append(samples, internal.SleepSample{
			Date:        date.Format(internal.DateLayout),
			SleepHours:  sleepHours,
			TargetHours: targetHours,
			Debt:        service.DailyDebt(sleepHours, targetHours),
		})
	}
	return samples
}
