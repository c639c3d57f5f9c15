// internal/stub/server.go
package stub

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"console-agent/internal/domain/account"
	"console-agent/internal/domain/catalog"
	sessiondom "console-agent/internal/domain/session"
	settingsdom "console-agent/internal/domain/settings"
	"console-agent/internal/pkg/response"
	"console-agent/internal/pkg/token"
)

const refreshCookie = "refresh_token"

// Server is a development stand-in for the admin backend. It implements the
// API shape the agent talks to: bcrypt-verified login, HS256 token issuance,
// refresh via http-only cookie, settings sections and a product catalog.
type Server struct {
	store      *Store
	gen        *token.Generator
	accessTTL  time.Duration
	refreshTTL time.Duration
	logger     *zap.Logger
}

func NewServer(secret, issuer, audience string, accessTTL time.Duration, logger *zap.Logger) *Server {
	return &Server{
		store:      NewStore(),
		gen:        token.NewGenerator([]byte(secret), issuer, audience, accessTTL),
		accessTTL:  accessTTL,
		refreshTTL: 7 * 24 * time.Hour,
		logger:     logger,
	}
}

func (s *Server) Routes(r *gin.Engine) {
	api := r.Group("/api/v1")

	auth := api.Group("/auth")
	{
		auth.POST("/login", s.login)
		auth.POST("/register", s.register)
		auth.POST("/refresh", s.refresh)
		auth.POST("/logout", s.logout)
	}

	protected := api.Group("")
	protected.Use(s.requireAuth())
	{
		protected.GET("/profile", s.getProfile)
		protected.PUT("/profile", s.updateProfile)

		protected.GET("/settings/:section", s.getSettings)
		protected.PUT("/settings/:section/:name", s.updateSetting)

		protected.GET("/products", s.listProducts)
		protected.GET("/products/:id", s.getProduct)
		protected.POST("/products", s.createProduct)
		protected.PUT("/products/:id", s.updateProduct)
		protected.DELETE("/products/:id", s.deleteProduct)
	}
}

func (s *Server) issueTokens(c *gin.Context, username, userID string) (string, bool) {
	access, _, err := s.gen.Generate(username, userID, s.accessTTL)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "failed to issue token", err)
		return "", false
	}
	refresh, _, err := s.gen.Generate(username, userID, s.refreshTTL)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "failed to issue refresh token", err)
		return "", false
	}

	c.SetCookie(refreshCookie, refresh, int(s.refreshTTL/time.Second), "/api/v1/auth", "", false, true)
	return access, true
}

func (s *Server) login(c *gin.Context) {
	var req sessiondom.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, "invalid request", err)
		return
	}

	profile, ok := s.store.Authenticate(req.Username, req.Password)
	if !ok {
		response.Unauthorized(c, "invalid credentials")
		return
	}

	access, ok := s.issueTokens(c, profile.Username, profile.UserID)
	if !ok {
		return
	}
	response.Success(c, http.StatusOK, "login successful", gin.H{
		"access_token": access,
		"user":         profile,
	})
}

func (s *Server) register(c *gin.Context) {
	var req sessiondom.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, "invalid request", err)
		return
	}

	if err := s.store.CreateUser(req.Username, req.Password, account.Profile{
		Email:    req.Email,
		FullName: req.FullName,
	}); err != nil {
		response.Error(c, http.StatusBadRequest, "registration failed", err)
		return
	}

	profile, _ := s.store.Profile(req.Username)
	access, ok := s.issueTokens(c, profile.Username, profile.UserID)
	if !ok {
		return
	}
	response.Success(c, http.StatusCreated, "registration successful", gin.H{
		"access_token": access,
		"user":         profile,
	})
}

// refresh exchanges a valid refresh cookie for a fresh access token and
// rotates the cookie. The fingerprint in the body is accepted and logged but
// never used as an authentication factor.
func (s *Server) refresh(c *gin.Context) {
	cookie, err := c.Cookie(refreshCookie)
	if err != nil || cookie == "" {
		response.Unauthorized(c, "missing refresh token")
		return
	}

	claims, err := s.gen.Verify(cookie)
	if err != nil {
		response.Unauthorized(c, "invalid refresh token")
		return
	}

	var body struct {
		ShortHash string `json:"short_hash"`
	}
	if err := c.ShouldBindJSON(&body); err == nil && body.ShortHash != "" {
		s.logger.Debug("refresh fingerprint",
			zap.String("subject", claims.Subject),
			zap.String("short_hash", body.ShortHash),
		)
	}

	access, ok := s.issueTokens(c, claims.Subject, claims.UserID)
	if !ok {
		return
	}
	response.Success(c, http.StatusOK, "token refreshed", gin.H{
		"access_token": access,
	})
}

func (s *Server) logout(c *gin.Context) {
	c.SetCookie(refreshCookie, "", -1, "/api/v1/auth", "", false, true)
	response.Success(c, http.StatusOK, "logged out", nil)
}

// requireAuth validates the bearer token. The stub verifies signatures; the
// agent never does.
func (s *Server) requireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		raw := strings.TrimPrefix(header, "Bearer ")
		if raw == "" || raw == header {
			response.Unauthorized(c, "missing authorization token")
			return
		}

		claims, err := s.gen.Verify(raw)
		if err != nil {
			response.Unauthorized(c, "invalid or expired token")
			return
		}
		c.Set("username", claims.Subject)
		c.Next()
	}
}

func (s *Server) getProfile(c *gin.Context) {
	profile, ok := s.store.Profile(c.GetString("username"))
	if !ok {
		response.NotFound(c, "profile not found")
		return
	}
	response.Success(c, http.StatusOK, "profile", profile)
}

func (s *Server) updateProfile(c *gin.Context) {
	var req account.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, "invalid request", err)
		return
	}

	profile, ok := s.store.UpdateProfile(c.GetString("username"), req)
	if !ok {
		response.NotFound(c, "profile not found")
		return
	}
	response.Success(c, http.StatusOK, "profile updated", profile)
}

func (s *Server) getSettings(c *gin.Context) {
	data, ok := s.store.Settings(c.Param("section"))
	if !ok {
		response.NotFound(c, "unknown settings section")
		return
	}
	response.Success(c, http.StatusOK, "settings", data)
}

func (s *Server) updateSetting(c *gin.Context) {
	var req settingsdom.UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, "invalid request", err)
		return
	}

	updated, ok := s.store.UpdateSetting(c.Param("section"), c.Param("name"), req.Value)
	if !ok {
		response.NotFound(c, "unknown setting")
		return
	}
	response.Success(c, http.StatusOK, "setting updated", updated)
}

func (s *Server) listProducts(c *gin.Context) {
	products := s.store.ListProducts()
	response.Success(c, http.StatusOK, "products", catalog.ListResponse{
		Products: products,
		Total:    int64(len(products)),
		Page:     1,
		PageSize: len(products),
	})
}

func (s *Server) getProduct(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.ValidationError(c, "invalid product id", err)
		return
	}
	p, ok := s.store.GetProduct(id)
	if !ok {
		response.NotFound(c, "product not found")
		return
	}
	response.Success(c, http.StatusOK, "product", p)
}

func (s *Server) createProduct(c *gin.Context) {
	var req catalog.CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, "invalid request", err)
		return
	}
	p := s.store.CreateProduct(req)
	response.Success(c, http.StatusCreated, "product created", p)
}

func (s *Server) updateProduct(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.ValidationError(c, "invalid product id", err)
		return
	}
	var req catalog.UpdateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, "invalid request", err)
		return
	}
	p, ok := s.store.UpdateProduct(id, req)
	if !ok {
		response.NotFound(c, "product not found")
		return
	}
	response.Success(c, http.StatusOK, "product updated", p)
}

func (s *Server) deleteProduct(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.ValidationError(c, "invalid product id", err)
		return
	}
	if !s.store.DeleteProduct(id) {
		response.NotFound(c, "product not found")
		return
	}
	response.Success(c, http.StatusOK, "product deleted", nil)
}
