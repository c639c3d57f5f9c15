// internal/handlers/profile/profile_handler.go
package profile

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"console-agent/internal/client"
	"console-agent/internal/domain/account"
	"console-agent/internal/pkg/response"
)

type ProfileHandler struct {
	backend *client.Backend
	logger  *zap.Logger
}

func NewProfileHandler(backend *client.Backend, logger *zap.Logger) *ProfileHandler {
	return &ProfileHandler{backend: backend, logger: logger}
}

func (h *ProfileHandler) GetProfile(c *gin.Context) {
	p, err := h.backend.GetProfile(c.Request.Context())
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, "profile", p)
}

func (h *ProfileHandler) UpdateProfile(c *gin.Context) {
	var req account.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, "invalid request", err)
		return
	}

	p, err := h.backend.UpdateProfile(c.Request.Context(), req)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, "profile updated", p)
}
