package api

import (
	"errors"
	"io"

	"github.com/gin-gonic/gin"
)

type syncRequest struct {
	Days int `json:"days"`
}

// GetSleepStatus reports the window statistics for the effective settings.
func GetSleepStatus(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		settings, err := app.Settings().Resolve(c.Request.Context())
		if err != nil {
			HandleError(c, app.Logger(), err, 500, "Failed to resolve settings")
			return
		}

		report, err := app.Stats().Status(c.Request.Context(), settings)
		if err != nil {
			HandleError(c, app.Logger(), err, 500, "Failed to compute sleep status")
			return
		}

		HandleSuccess(c, app.Logger(), report, nil)
	}
}

// PostSleepSync triggers a manual synchronization. The body is optional;
// an empty or absent one means the default backfill size.
func PostSleepSync(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req syncRequest
		if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
			HandleError(c, app.Logger(), err, 400, "Invalid JSON")
			return
		}

		res, err := app.Settings().ManualSync(c.Request.Context(), req.Days)
		if err != nil {
			HandleError(c, app.Logger(), err, 400, "Sync rejected")
			return
		}

		HandleSuccess(c, app.Logger(), res, nil)
	}
}

// GetAutoSyncStatus exposes a snapshot of the background scheduler.
func GetAutoSyncStatus(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		HandleSuccess(c, app.Logger(), app.Scheduler().Status(), nil)
	}
}

// Healthz is the liveness probe.
func Healthz() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	}
}
