// internal/handlers/auth/auth_handler.go
package auth

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	sessiondom "console-agent/internal/domain/session"
	"console-agent/internal/pkg/response"
	sessionsvc "console-agent/internal/service/session"
)

type AuthHandler struct {
	manager *sessionsvc.Manager
	store   *sessionsvc.Store
	logger  *zap.Logger
}

func NewAuthHandler(manager *sessionsvc.Manager, store *sessionsvc.Store, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		manager: manager,
		store:   store,
		logger:  logger,
	}
}

// Login authenticates against the backend and seeds the local session.
func (h *AuthHandler) Login(c *gin.Context) {
	var req sessiondom.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, "invalid request", err)
		return
	}

	user, err := h.manager.Login(c.Request.Context(), req)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "login successful", gin.H{
		"user":    user,
		"session": h.store.Status(),
	})
}

// Register creates an account and logs straight in.
func (h *AuthHandler) Register(c *gin.Context) {
	var req sessiondom.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, "invalid request", err)
		return
	}

	user, err := h.manager.Register(c.Request.Context(), req)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, "registration successful", gin.H{
		"user":    user,
		"session": h.store.Status(),
	})
}

// Logout clears the session; the backend call is best-effort.
func (h *AuthHandler) Logout(c *gin.Context) {
	if err := h.manager.Logout(c.Request.Context()); err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, "logged out", nil)
}

// Status returns the derived session view the UI polls between push events.
func (h *AuthHandler) Status(c *gin.Context) {
	response.Success(c, http.StatusOK, "session status", h.store.Status())
}
