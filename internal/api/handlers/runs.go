package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// RunService is the slice of the orchestrator the handler needs.
type RunService interface {
	RunManual(ctx context.Context) (map[string]int, error)
	CategorizeOnSave(ctx context.Context, itemID int64) error
}

// RunsHandler exposes the manual batch run and the save-hook endpoint
// the host content system calls after persisting an item.
type RunsHandler struct {
	svc RunService
	log *slog.Logger
}

func NewRunsHandler(svc RunService, log *slog.Logger) *RunsHandler {
	if log == nil {
		log = slog.Default()
	}
	return &RunsHandler{
		svc: svc,
		log: log.With(slog.String("component", "runs_handler")),
	}
}

func (h *RunsHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/runs", h.RunManual)
	r.POST("/items/:id/categorize", h.CategorizeItem)
}

// RunManual runs one synchronous batch pass over all schedules and
// returns per-schedule transition counts for the invoking operator.
// POST /api/v1/runs
func (h *RunsHandler) RunManual(c *gin.Context) {
	counts, err := h.svc.RunManual(c.Request.Context())
	if err != nil {
		h.log.Error("manual run failed", slog.Any("err", err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "manual run failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"transitioned": counts})
}

// CategorizeItem labels one just-saved item. The id must be a positive
// integer; save events for drafts, revisions and other non-addressable
// contexts are the caller's job to filter out and are rejected here.
// POST /api/v1/items/:id/categorize
func (h *RunsHandler) CategorizeItem(c *gin.Context) {
	itemID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || itemID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid item id"})
		return
	}

	if err := h.svc.CategorizeOnSave(c.Request.Context(), itemID); err != nil {
		h.log.Error("categorize-on-save failed", slog.Int64("item_id", itemID), slog.Any("err", err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "categorize failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"categorized": true})
}
