package api

import "github.com/gin-gonic/gin"

// RegisterRoutes wires the API surface. middlewares run in front of every
// /api route (request ID, optional auth).
func RegisterRoutes(r *gin.Engine, app App, middlewares ...gin.HandlerFunc) {
	r.GET("/healthz", Healthz())

	grp := r.Group("/api/sleep", middlewares...)
	grp.GET("/status", GetSleepStatus(app))
	grp.POST("/sync", PostSleepSync(app))
	grp.GET("/settings", GetSettings(app))
	grp.PUT("/settings", PutSettings(app))
	grp.GET("/autosync", GetAutoSyncStatus(app))
}
