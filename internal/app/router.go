// internal/app/router.go
package app

import (
	"github.com/gin-gonic/gin"

	authHandler "console-agent/internal/handlers/auth"
	catalogHandler "console-agent/internal/handlers/catalog"
	profileHandler "console-agent/internal/handlers/profile"
	settingsHandler "console-agent/internal/handlers/settings"
	wsHandler "console-agent/internal/handlers/ws"
)

type Handlers struct {
	AuthHandler     *authHandler.AuthHandler
	ProfileHandler  *profileHandler.ProfileHandler
	SettingsHandler *settingsHandler.SettingsHandler
	CatalogHandler  *catalogHandler.CatalogHandler
	WSHandler       *wsHandler.WSHandler
}

func SetupRouter(r *gin.Engine, h *Handlers) {
	api := r.Group("/api/v1")

	// ==================== Health Check ====================
	api.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// ==================== Event push ====================
	r.GET("/ws", h.WSHandler.HandleConnection)

	// ==================== Auth / Session ====================
	auth := api.Group("/auth")
	{
		auth.POST("/login", h.AuthHandler.Login)
		auth.POST("/register", h.AuthHandler.Register)
		auth.POST("/logout", h.AuthHandler.Logout)
	}
	api.GET("/session", h.AuthHandler.Status)

	// ==================== Profile ====================
	api.GET("/profile", h.ProfileHandler.GetProfile)
	api.PUT("/profile", h.ProfileHandler.UpdateProfile)

	// ==================== Settings ====================
	settings := api.Group("/settings")
	{
		settings.GET("/:section", h.SettingsHandler.GetSection)
		settings.PUT("/:section/:name", h.SettingsHandler.UpdateSetting)
	}

	// ==================== Product Catalog ====================
	products := api.Group("/products")
	{
		products.GET("", h.CatalogHandler.ListProducts)
		products.GET("/:id", h.CatalogHandler.GetProduct)
		products.POST("", h.CatalogHandler.CreateProduct)
		products.PUT("/:id", h.CatalogHandler.UpdateProduct)
		products.DELETE("/:id", h.CatalogHandler.DeleteProduct)
	}
}
