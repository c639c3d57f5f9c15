// internal/handlers/settings/settings_handler.go
package settings

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	settingsdom "console-agent/internal/domain/settings"
	"console-agent/internal/pkg/response"
	settingssvc "console-agent/internal/service/settings"
)

type SettingsHandler struct {
	service *settingssvc.Service
	logger  *zap.Logger
}

func NewSettingsHandler(service *settingssvc.Service, logger *zap.Logger) *SettingsHandler {
	return &SettingsHandler{service: service, logger: logger}
}

// GetSection serves a settings section, from cache while fresh.
func (h *SettingsHandler) GetSection(c *gin.Context) {
	section := c.Param("section")

	data, err := h.service.Get(c.Request.Context(), section)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, "settings", data)
}

// UpdateSetting applies the optimistic mutation right away; the backend write
// happens behind the debounce window, so the handler answers 202. A rejected
// write rolls back and surfaces through the notification channel.
func (h *SettingsHandler) UpdateSetting(c *gin.Context) {
	section := c.Param("section")
	name := c.Param("name")

	var req settingsdom.UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, "invalid request", err)
		return
	}

	h.service.Update(c.Request.Context(), section, name, req.Value)
	response.Success(c, http.StatusAccepted, "setting update queued", gin.H{
		"section_path": section,
		"setting_name": name,
		"value":        req.Value,
	})
}
