package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"termshift/internal/domain"
	"termshift/internal/store"
)

// ScheduleService is the slice of the schedule store the handler needs.
type ScheduleService interface {
	List(ctx context.Context) ([]domain.Schedule, error)
	Get(ctx context.Context, index int) (domain.Schedule, error)
	Add(ctx context.Context, rec domain.Record) (int, error)
	Update(ctx context.Context, index int, rec domain.Record) error
	Delete(ctx context.Context, index int) error
	Export(ctx context.Context) ([]domain.Record, error)
	Import(ctx context.Context, records []domain.Record) (int, error)
	ClearCache()
}

// SchedulesHandler serves the admin CRUD surface over the schedule
// collection. Entries are addressed by their position in the collection.
type SchedulesHandler struct {
	svc ScheduleService
	log *slog.Logger
}

func NewSchedulesHandler(svc ScheduleService, log *slog.Logger) *SchedulesHandler {
	if log == nil {
		log = slog.Default()
	}
	return &SchedulesHandler{
		svc: svc,
		log: log.With(slog.String("component", "schedules_handler")),
	}
}

func (h *SchedulesHandler) RegisterRoutes(r *gin.RouterGroup) {
	schedules := r.Group("/schedules")
	{
		schedules.GET("", h.List)
		schedules.POST("", h.Create)
		schedules.GET("/export", h.Export)
		schedules.POST("/import", h.Import)
		schedules.POST("/cache/clear", h.ClearCache)
		schedules.GET("/:index", h.Get)
		schedules.PUT("/:index", h.Update)
		schedules.DELETE("/:index", h.Delete)
	}
}

// List returns the full ordered collection.
// GET /api/v1/schedules
func (h *SchedulesHandler) List(c *gin.Context) {
	scheds, err := h.svc.List(c.Request.Context())
	if err != nil {
		h.log.Error("failed to list schedules", slog.Any("err", err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list schedules"})
		return
	}

	records := make([]domain.Record, 0, len(scheds))
	for _, s := range scheds {
		records = append(records, s.Record())
	}
	c.JSON(http.StatusOK, gin.H{"schedules": records})
}

// Create validates and appends a schedule.
// POST /api/v1/schedules
func (h *SchedulesHandler) Create(c *gin.Context) {
	var rec domain.Record
	if err := c.ShouldBindJSON(&rec); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	index, err := h.svc.Add(c.Request.Context(), rec)
	if err != nil {
		var vErr *domain.ValidationError
		if errors.As(err, &vErr) {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": vErr.Error()})
			return
		}
		h.log.Error("failed to add schedule", slog.String("name", rec.Name), slog.Any("err", err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to add schedule"})
		return
	}

	h.log.Info("schedule added", slog.String("name", rec.Name), slog.Int("index", index))
	c.JSON(http.StatusCreated, gin.H{"index": index})
}

// Get returns one schedule by position.
// GET /api/v1/schedules/:index
func (h *SchedulesHandler) Get(c *gin.Context) {
	index, ok := indexParam(c)
	if !ok {
		return
	}

	sched, err := h.svc.Get(c.Request.Context(), index)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "schedule not found"})
			return
		}
		h.log.Error("failed to get schedule", slog.Int("index", index), slog.Any("err", err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get schedule"})
		return
	}
	c.JSON(http.StatusOK, sched.Record())
}

// Update replaces the schedule at a position.
// PUT /api/v1/schedules/:index
func (h *SchedulesHandler) Update(c *gin.Context) {
	index, ok := indexParam(c)
	if !ok {
		return
	}

	var rec domain.Record
	if err := c.ShouldBindJSON(&rec); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	if err := h.svc.Update(c.Request.Context(), index, rec); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "schedule not found"})
			return
		}
		var vErr *domain.ValidationError
		if errors.As(err, &vErr) {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": vErr.Error()})
			return
		}
		h.log.Error("failed to update schedule", slog.Int("index", index), slog.Any("err", err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update schedule"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"updated": true})
}

// Delete removes the schedule at a position; later entries shift down.
// DELETE /api/v1/schedules/:index
func (h *SchedulesHandler) Delete(c *gin.Context) {
	index, ok := indexParam(c)
	if !ok {
		return
	}

	if err := h.svc.Delete(c.Request.Context(), index); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "schedule not found"})
			return
		}
		h.log.Error("failed to delete schedule", slog.Int("index", index), slog.Any("err", err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete schedule"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": true})
}

// Export returns the collection as plain records.
// GET /api/v1/schedules/export
func (h *SchedulesHandler) Export(c *gin.Context) {
	records, err := h.svc.Export(c.Request.Context())
	if err != nil {
		h.log.Error("failed to export schedules", slog.Any("err", err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to export schedules"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"schedules": records})
}

// Import appends valid records from the payload; invalid ones are
// skipped, not fatal to the batch.
// POST /api/v1/schedules/import
func (h *SchedulesHandler) Import(c *gin.Context) {
	var body struct {
		Schedules []domain.Record `json:"schedules"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	imported, err := h.svc.Import(c.Request.Context(), body.Schedules)
	if err != nil {
		h.log.Error("failed to import schedules", slog.Any("err", err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to import schedules"})
		return
	}

	h.log.Info("schedules imported", slog.Int("imported", imported), slog.Int("received", len(body.Schedules)))
	c.JSON(http.StatusOK, gin.H{"imported": imported})
}

// ClearCache forces the next read to reload from the backing store.
// POST /api/v1/schedules/cache/clear
func (h *SchedulesHandler) ClearCache(c *gin.Context) {
	h.svc.ClearCache()
	c.JSON(http.StatusOK, gin.H{"cleared": true})
}

func indexParam(c *gin.Context) (int, bool) {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil || index < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid schedule index"})
		return 0, false
	}
	return index, true
}
