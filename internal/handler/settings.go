package handler

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"macrolens/internal/models"
	"macrolens/internal/repository"
)

type SettingsHandler struct {
	Store repository.Repository
}

func (h *SettingsHandler) Register(r *gin.Engine) {
	group := r.Group("/api/settings")
	group.GET("", h.list)
	group.PUT("/:key", h.put)
}

// Keys whose values are never echoed back in full.
var sensitiveSettings = map[string]bool{
	models.SettingFREDAPIKey:   true,
	models.SettingTiingoAPIKey: true,
}

// @Summary List settings (credential values masked)
// @Tags settings
// @Success 200 {object} envelope
// @Router /api/settings [get]
func (h *SettingsHandler) list(c *gin.Context) {
	items, err := h.Store.ListSettings(c.Request.Context())
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	out := make([]gin.H, 0, len(items))
	for _, item := range items {
		entry := gin.H{
			"key":         item.Key,
			"description": item.Description,
			"updated_at":  item.UpdatedAt,
		}
		if sensitiveSettings[item.Key] {
			entry["value"] = "********"
			entry["configured"] = len(item.Value) > 2 // more than bare quotes
		} else {
			entry["value"] = json.RawMessage(item.Value)
		}
		out = append(out, entry)
	}
	Ok(c, out, nil)
}

type putSettingRequest struct {
	Value       json.RawMessage `json:"value" binding:"required"`
	Description string          `json:"description"`
}

// @Summary Create or update a setting
// @Tags settings
// @Param key path string true "setting key"
// @Success 200 {object} envelope
// @Router /api/settings/{key} [put]
func (h *SettingsHandler) put(c *gin.Context) {
	key := strings.TrimSpace(c.Param("key"))
	if key == "" {
		Error(c, http.StatusBadRequest, "key is required", nil)
		return
	}
	var req putSettingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Error(c, http.StatusBadRequest, err.Error(), nil)
		return
	}
	if !json.Valid(req.Value) {
		Error(c, http.StatusBadRequest, "value must be valid JSON", nil)
		return
	}
	item := &models.Setting{
		Key:         key,
		Value:       []byte(req.Value),
		Description: req.Description,
	}
	if err := h.Store.UpsertSetting(c.Request.Context(), item); err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	meta := map[string]any{}
	if sensitiveSettings[key] {
		// Provider clients read credentials at startup.
		meta["note"] = "credential changes take effect on restart"
	}
	Ok(c, gin.H{"key": key}, meta)
}
