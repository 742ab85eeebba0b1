package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Alessandro-giacometti/sleep-debt-app/internal"
	"github.com/Alessandro-giacometti/sleep-debt-app/internal/api"
	"github.com/Alessandro-giacometti/sleep-debt-app/internal/auth"
	"github.com/Alessandro-giacometti/sleep-debt-app/internal/config"
	"github.com/Alessandro-giacometti/sleep-debt-app/internal/garmin"
	"github.com/Alessandro-giacometti/sleep-debt-app/internal/scheduler"
	"github.com/Alessandro-giacometti/sleep-debt-app/internal/service"
	"github.com/Alessandro-giacometti/sleep-debt-app/internal/storage"
)

type application struct {
	logger    internal.Logger
	stats     *service.StatsService
	settings  *service.SettingsService
	scheduler *scheduler.Scheduler
}

func (a *application) Logger() internal.Logger            { return a.logger }
func (a *application) Stats() *service.StatsService       { return a.stats }
func (a *application) Settings() *service.SettingsService { return a.settings }
func (a *application) Scheduler() *scheduler.Scheduler    { return a.scheduler }

func main() {
	cfg := config.Load()

	logger, err := internal.NewLogger(cfg.Env, cfg.LogLevel)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}

	var repos *storage.Repositories
	var fileStore *storage.FileStorage
	switch cfg.DBType {
	case "postgres":
		repos, err = storage.NewPostgresRepositories(cfg.DBDSN, logger)
	default:
		if mkErr := os.MkdirAll(filepath.Dir(cfg.FileSamples), 0o755); mkErr != nil {
			logger.Fatalf("failed to create data dir: %v", mkErr)
		}
		repos, fileStore, err = storage.NewFileRepositories(cfg.FileSamples, cfg.FileState, logger)
	}
	if err != nil {
		logger.Fatalf("failed to init storage: %v", err)
	}

	clock := internal.SystemClock{}
	client := garmin.NewClient(cfg.GarminBaseURL, cfg.GarminEmail, cfg.GarminPassword, logger)
	syncer := garmin.NewSleepSyncer(client, repos.Samples, repos.Settings, repos.SyncState, clock, logger, cfg.TargetSleepHours)

	stats := service.NewStatsService(repos.Samples, repos.SyncState, clock, logger)
	settings := service.NewSettingsService(repos.Settings, repos.Samples, stats, syncer, clock, logger, service.Defaults{
		TargetSleepHours: cfg.TargetSleepHours,
		WindowDays:       cfg.StatsWindowDays,
	})

	sched := scheduler.New(stats, settings, syncer, clock, logger)

	app := &application{logger: logger, stats: stats, settings: settings, scheduler: sched}

	if cfg.Env != "development" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())

	middlewares := []gin.HandlerFunc{api.RequestIDMiddleware()}
	if cfg.APIToken != "" {
		middlewares = append(middlewares, auth.Middleware(auth.NewLocalProvider(cfg.APIToken, logger)))
	}
	api.RegisterRoutes(r, app, middlewares...)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sched.Start(ctx)

	srv := &http.Server{Addr: cfg.APIAddr, Handler: r}
	go func() {
		logger.Infof("server listening on %s", cfg.APIAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("server failed: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	sched.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("server shutdown: %v", err)
	}
	if fileStore != nil {
		if err := fileStore.Close(); err != nil {
			logger.Errorf("storage shutdown: %v", err)
		}
	}
}
