package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"macrolens/internal/models"
	"macrolens/internal/registry"
	"macrolens/internal/repository"
)

type AlertsHandler struct {
	Registry *registry.Registry
	Store    repository.Repository
}

func (h *AlertsHandler) Register(r *gin.Engine) {
	group := r.Group("/api/alerts")
	group.GET("", h.list)
	group.POST("", h.create)
	group.DELETE("/:id", h.remove)
}

// @Summary List alert rules
// @Tags alerts
// @Success 200 {object} envelope
// @Router /api/alerts [get]
func (h *AlertsHandler) list(c *gin.Context) {
	rules, err := h.Store.ListAlertRules(c.Request.Context(), false)
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	Ok(c, rules, listMeta(len(rules)))
}

type createAlertRequest struct {
	Slug      string          `json:"slug" binding:"required"`
	Condition string          `json:"condition" binding:"required"`
	Threshold decimal.Decimal `json:"threshold"`
	Enabled   *bool           `json:"enabled"`
}

// @Summary Create an alert rule
// @Tags alerts
// @Success 200 {object} envelope
// @Router /api/alerts [post]
func (h *AlertsHandler) create(c *gin.Context) {
	var req createAlertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Error(c, http.StatusBadRequest, err.Error(), nil)
		return
	}
	slug := strings.TrimSpace(req.Slug)
	if _, ok := h.Registry.Spec(slug); !ok {
		Error(c, http.StatusNotFound, "indicator not found", nil)
		return
	}
	condition := strings.ToLower(strings.TrimSpace(req.Condition))
	if condition != models.AlertAbove && condition != models.AlertBelow {
		Error(c, http.StatusBadRequest, "condition must be above or below", nil)
		return
	}
	enabled := true
	if req.Enabled != nil {
		enabled = *req.Enabled
	}
	rule := &models.AlertRule{
		Slug:      slug,
		Condition: condition,
		Threshold: req.Threshold,
		Enabled:   enabled,
	}
	if err := h.Store.SaveAlertRule(c.Request.Context(), rule); err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	Ok(c, rule, nil)
}

// @Summary Delete an alert rule
// @Tags alerts
// @Param id path int true "rule id"
// @Success 200 {object} envelope
// @Router /api/alerts/{id} [delete]
func (h *AlertsHandler) remove(c *gin.Context) {
	id, err := strconv.ParseUint(strings.TrimSpace(c.Param("id")), 10, 64)
	if err != nil || id == 0 {
		Error(c, http.StatusBadRequest, "invalid rule id", nil)
		return
	}
	if err := h.Store.DeleteAlertRule(c.Request.Context(), id); err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	Ok(c, gin.H{"deleted": id}, nil)
}
