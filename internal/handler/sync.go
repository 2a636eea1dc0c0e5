package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"macrolens/internal/repository"
	"macrolens/internal/service"
)

type SyncHandler struct {
	Service *service.SyncService
	Store   repository.Repository
	Logger  *zap.Logger
}

func (h *SyncHandler) Register(r *gin.Engine) {
	group := r.Group("/api/sync")
	group.POST("", h.trigger)
	group.POST("/full", h.triggerFull)
	group.GET("/runs", h.listRuns)
	group.GET("/status", h.status)
}

// @Summary Trigger a sync run
// @Tags sync
// @Success 200 {object} envelope
// @Failure 409 {object} envelope
// @Router /api/sync [post]
func (h *SyncHandler) trigger(c *gin.Context) {
	if h.Service == nil {
		Error(c, http.StatusInternalServerError, "service unavailable", nil)
		return
	}
	summary, err := h.Service.RunSync(c.Request.Context(), "manual")
	if errors.Is(err, service.ErrSyncInProgress) {
		Error(c, http.StatusConflict, err.Error(), nil)
		return
	}
	if err != nil {
		if h.Logger != nil {
			h.Logger.Warn("manual sync failed", zap.Error(err))
		}
		// The summary still describes what happened before the failure.
		Error(c, http.StatusBadGateway, err.Error(), map[string]any{"summary": summary})
		return
	}
	Ok(c, summary, nil)
}

// @Summary Trigger a full-history sync (every indicator, backfill)
// @Tags sync
// @Param backfill query bool false "request full provider history (default true)"
// @Success 200 {object} envelope
// @Failure 409 {object} envelope
// @Router /api/sync/full [post]
func (h *SyncHandler) triggerFull(c *gin.Context) {
	if h.Service == nil {
		Error(c, http.StatusInternalServerError, "service unavailable", nil)
		return
	}
	backfill := boolQuery(c, "backfill", true)
	summary, err := h.Service.RunFull(c.Request.Context(), "manual_full", backfill)
	if errors.Is(err, service.ErrSyncInProgress) {
		Error(c, http.StatusConflict, err.Error(), nil)
		return
	}
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error(), map[string]any{"summary": summary})
		return
	}
	Ok(c, summary, nil)
}

// @Summary Per-indicator sync status report
// @Tags sync
// @Success 200 {object} envelope
// @Router /api/sync/status [get]
func (h *SyncHandler) status(c *gin.Context) {
	rows, err := h.Store.ListIndicators(c.Request.Context(), repository.ListIndicatorsParams{Limit: 5000})
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	now := time.Now().UTC()
	out := make([]gin.H, 0, len(rows))
	staleCount := 0
	for _, row := range rows {
		stale := row.IsStale(now)
		if stale {
			staleCount++
		}
		entry := gin.H{
			"slug":   row.Slug,
			"source": row.Source,
			"status": row.LastStatus,
			"stale":  stale,
		}
		if row.LastUpdatedAt != nil {
			entry["last_updated_at"] = row.LastUpdatedAt
		}
		if row.LastError != nil && *row.LastError != "" {
			entry["error"] = *row.LastError
		}
		out = append(out, entry)
	}
	Ok(c, out, map[string]any{"count": len(out), "stale": staleCount})
}

// @Summary List recent sync runs
// @Tags sync
// @Param limit query int false "max runs"
// @Success 200 {object} envelope
// @Router /api/sync/runs [get]
func (h *SyncHandler) listRuns(c *gin.Context) {
	runs, err := h.Store.ListSyncRuns(c.Request.Context(), intQuery(c, "limit", 20))
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	Ok(c, runs, listMeta(len(runs)))
}
