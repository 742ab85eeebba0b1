package api

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/Alessandro-giacometti/sleep-debt-app/internal"
	"github.com/Alessandro-giacometti/sleep-debt-app/internal/service"
)

func GetSettings(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		settings, err := app.Settings().Resolve(c.Request.Context())
		if err != nil {
			HandleError(c, app.Logger(), err, 500, "Failed to resolve settings")
			return
		}
		HandleSuccess(c, app.Logger(), settings, nil)
	}
}

func PutSettings(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req service.UpdateSettingsRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			HandleError(c, app.Logger(), err, 400, "Invalid JSON")
			return
		}

		result, err := app.Settings().Update(c.Request.Context(), &req)
		if err != nil {
			var vErr *internal.ValidationError
			var insErr *internal.InsufficientDataError
			switch {
			case errors.As(err, &vErr):
				HandleError(c, app.Logger(), err, 400, "Validation failed")
			case errors.As(err, &insErr):
				HandleError(c, app.Logger(), err, 409, "Not enough sleep data")
			default:
				HandleError(c, app.Logger(), err, 500, "Failed to update settings")
			}
			return
		}

		var meta map[string]any
		if result.Message != "" {
			meta = map[string]any{"warning": result.Message}
		}
		HandleSuccess(c, app.Logger(), result, meta)
	}
}
