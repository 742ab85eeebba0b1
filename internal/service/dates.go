package service

import (
	"time"

	"github.com/Alessandro-giacometti/sleep-debt-app/internal"
)

func dayString(t time.Time) string {
	return t.Format(internal.DateLayout)
}

// mustParseDay is only ever fed dates produced by a Clock.
func mustParseDay(day string) time.Time {
	t, err := time.Parse(internal.DateLayout, day)
	if err != nil {
		panic("service: malformed day " + day)
	}
	return t
}
