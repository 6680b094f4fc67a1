package handler

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"smartops.app/gateway/internal/http/dto"
	"smartops.app/gateway/internal/http/middleware"
	"smartops.app/gateway/internal/llm"
	"smartops.app/gateway/internal/service"
)

type SettingsHandler struct {
	settingsService service.SettingsService
}

func NewSettingsHandler(settingsService service.SettingsService) *SettingsHandler {
	return &SettingsHandler{settingsService: settingsService}
}

// Get returns the user's provider API key entries.
func (h *SettingsHandler) Get(c *gin.Context) {
	ctx := c.Request.Context()
	user := middleware.GetUser(ctx)

	entries := make([]dto.ConfigResponse, 0, 2)
	for _, provider := range []string{llm.ProviderDeepSeek, llm.ProviderTongyi} {
		key := provider + "_api_key"
		entry, err := h.settingsService.Get(ctx, key, user.ID)
		if err != nil {
			slog.ErrorContext(ctx, "failed to load config", "error", err, "key", key)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load config"})
			return
		}
		entries = append(entries, dto.ConfigResponse{Key: entry.Key, Value: entry.Value})
	}

	c.JSON(http.StatusOK, gin.H{"config": entries})
}

func (h *SettingsHandler) Update(c *gin.Context) {
	ctx := c.Request.Context()
	user := middleware.GetUser(ctx)

	var req dto.UpdateConfigRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.WarnContext(ctx, "invalid request body", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	key := req.Model + "_api_key"
	if err := h.settingsService.Set(ctx, key, user.ID, req.APIKey); err != nil {
		slog.ErrorContext(ctx, "failed to save config", "error", err, "key", key)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save config"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "config updated"})
}
