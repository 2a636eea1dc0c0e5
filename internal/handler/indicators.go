package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"macrolens/internal/models"
	"macrolens/internal/registry"
	"macrolens/internal/repository"
	"macrolens/internal/service"
)

type IndicatorsHandler struct {
	Registry *registry.Registry
	Store    repository.Repository
	Resolver *service.Resolver
	Logger   *zap.Logger
}

func (h *IndicatorsHandler) Register(r *gin.Engine) {
	group := r.Group("/api/indicators")
	group.GET("", h.list)
	group.GET("/stats", h.stats)
	group.GET("/:slug", h.get)
	group.GET("/:slug/series", h.series)
	group.POST("/:slug/refresh", h.refresh)
	group.POST("/:slug/points", h.addPoints)
}

// @Summary List indicators with sync status
// @Tags indicators
// @Param source query string false "filter by source"
// @Param category query string false "filter by category"
// @Success 200 {object} envelope
// @Router /api/indicators [get]
func (h *IndicatorsHandler) list(c *gin.Context) {
	params := repository.ListIndicatorsParams{
		Source:   strQueryPtr(c, "source"),
		Category: strQueryPtr(c, "category"),
		Limit:    intQuery(c, "limit", 200),
		Offset:   intQuery(c, "offset", 0),
	}
	items, err := h.Store.ListIndicators(c.Request.Context(), params)
	if err != nil {
		if h.Logger != nil {
			h.Logger.Warn("list indicators failed", zap.Error(err))
		}
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	// Internal-only catalog entries are plumbing, not product.
	visible := make([]models.Indicator, 0, len(items))
	for _, item := range items {
		if item.Category == string(registry.CategoryInternal) {
			continue
		}
		visible = append(visible, item)
	}
	Ok(c, visible, listMeta(len(visible)))
}

// @Summary Catalog composition stats
// @Tags indicators
// @Success 200 {object} envelope
// @Router /api/indicators/stats [get]
func (h *IndicatorsHandler) stats(c *gin.Context) {
	Ok(c, h.Registry.Stats(), nil)
}

// @Summary Indicator detail with latest value
// @Tags indicators
// @Param slug path string true "indicator slug"
// @Success 200 {object} envelope
// @Router /api/indicators/{slug} [get]
func (h *IndicatorsHandler) get(c *gin.Context) {
	slug := strings.TrimSpace(c.Param("slug"))
	row, err := h.Store.GetIndicator(c.Request.Context(), slug)
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	if row == nil {
		Error(c, http.StatusNotFound, "indicator not found", nil)
		return
	}
	latest, err := h.Store.LatestPoint(c.Request.Context(), slug)
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	resp := gin.H{"indicator": row}
	if latest != nil {
		resp["latest"] = latest
	}
	Ok(c, resp, nil)
}

// @Summary Indicator time series
// @Tags indicators
// @Param slug path string true "indicator slug"
// @Param since query string false "RFC3339 lower bound"
// @Param until query string false "RFC3339 upper bound"
// @Param limit query int false "max points"
// @Success 200 {object} envelope
// @Router /api/indicators/{slug}/series [get]
func (h *IndicatorsHandler) series(c *gin.Context) {
	slug := strings.TrimSpace(c.Param("slug"))
	if _, ok := h.Registry.Spec(slug); !ok {
		Error(c, http.StatusNotFound, "indicator not found", nil)
		return
	}
	params := repository.SeriesParams{
		Since: timeQueryPtr(c, "since"),
		Until: timeQueryPtr(c, "until"),
		Limit: intQuery(c, "limit", 0),
	}
	points, err := h.Store.GetSeries(c.Request.Context(), slug, params)
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	Ok(c, points, listMeta(len(points)))
}

// @Summary Resolve one indicator now
// @Tags indicators
// @Param slug path string true "indicator slug"
// @Param backfill query bool false "fetch full provider history"
// @Param fetch_deps query bool false "fetch stale dependencies (default true)"
// @Success 200 {object} envelope
// @Router /api/indicators/{slug}/refresh [post]
func (h *IndicatorsHandler) refresh(c *gin.Context) {
	if h.Resolver == nil {
		Error(c, http.StatusInternalServerError, "resolver unavailable", nil)
		return
	}
	slug := strings.TrimSpace(c.Param("slug"))
	backfill := boolQuery(c, "backfill", false)
	fetchDeps := boolQuery(c, "fetch_deps", true)
	series, err := h.Resolver.Resolve(c.Request.Context(), service.NewResolution(), slug, backfill, fetchDeps)
	if errors.Is(err, service.ErrUnknownIndicator) {
		Error(c, http.StatusNotFound, err.Error(), nil)
		return
	}
	if err != nil {
		if h.Logger != nil {
			h.Logger.Warn("manual refresh failed", zap.String("slug", slug), zap.Error(err))
		}
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	Ok(c, gin.H{"slug": slug, "points": len(series)}, nil)
}

type addPointsRequest struct {
	Points []struct {
		Timestamp time.Time `json:"timestamp" binding:"required"`
		Value     float64   `json:"value"`
	} `json:"points" binding:"required,min=1"`
}

// @Summary Add data points to a manual indicator
// @Tags indicators
// @Param slug path string true "indicator slug"
// @Success 200 {object} envelope
// @Router /api/indicators/{slug}/points [post]
func (h *IndicatorsHandler) addPoints(c *gin.Context) {
	slug := strings.TrimSpace(c.Param("slug"))
	spec, ok := h.Registry.Spec(slug)
	if !ok {
		Error(c, http.StatusNotFound, "indicator not found", nil)
		return
	}
	if spec.Source != registry.SourceManual {
		Error(c, http.StatusBadRequest, "data entry is only allowed for manual indicators", nil)
		return
	}
	var req addPointsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Error(c, http.StatusBadRequest, err.Error(), nil)
		return
	}
	rows := make([]models.IndicatorPoint, 0, len(req.Points))
	for _, p := range req.Points {
		rows = append(rows, models.IndicatorPoint{
			Slug:      slug,
			Timestamp: p.Timestamp.UTC(),
			Value:     p.Value,
			Source:    string(registry.SourceManual),
		})
	}
	if err := h.Store.UpsertPoints(c.Request.Context(), rows); err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	now := time.Now().UTC()
	_ = h.Store.UpdateIndicatorStatus(c.Request.Context(), slug, models.StatusActive, nil, &now)
	Ok(c, gin.H{"written": len(rows)}, nil)
}

func intQuery(c *gin.Context, key string, def int) int {
	if val := c.Query(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return def
}

func boolQuery(c *gin.Context, key string, def bool) bool {
	if val := strings.TrimSpace(c.Query(key)); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			return b
		}
	}
	return def
}

func strQueryPtr(c *gin.Context, key string) *string {
	if val := strings.TrimSpace(c.Query(key)); val != "" {
		return &val
	}
	return nil
}

func timeQueryPtr(c *gin.Context, key string) *time.Time {
	if val := strings.TrimSpace(c.Query(key)); val != "" {
		if ts, err := time.Parse(time.RFC3339, val); err == nil {
			return &ts
		}
		if ts, err := time.Parse("2006-01-02", val); err == nil {
			return &ts
		}
	}
	return nil
}
