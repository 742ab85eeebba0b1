package api

import (
	"github.com/Alessandro-giacometti/sleep-debt-app/internal"
	"github.com/Alessandro-giacometti/sleep-debt-app/internal/scheduler"
	"github.com/Alessandro-giacometti/sleep-debt-app/internal/service"
)

type App interface {
	Logger() internal.Logger
	Stats() *service.StatsService
	Settings() *service.SettingsService
	Scheduler() *scheduler.Scheduler
}
