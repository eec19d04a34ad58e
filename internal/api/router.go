package api

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"termshift/internal/api/handlers"
)

// NewRouter assembles the admin API. All routes live under /api/v1.
func NewRouter(scheduleSvc handlers.ScheduleService, runSvc handlers.RunService, log *slog.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := r.Group("/api/v1")
	handlers.NewSchedulesHandler(scheduleSvc, log).RegisterRoutes(v1)
	handlers.NewRunsHandler(runSvc, log).RegisterRoutes(v1)

	return r
}
