// internal/handlers/catalog/catalog_handler.go
package catalog

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"console-agent/internal/client"
	catalogdom "console-agent/internal/domain/catalog"
	"console-agent/internal/pkg/response"
)

// CatalogHandler passes product catalog operations through to the backend;
// the agent adds nothing here beyond the bearer token and error mapping.
type CatalogHandler struct {
	backend *client.Backend
	logger  *zap.Logger
}

func NewCatalogHandler(backend *client.Backend, logger *zap.Logger) *CatalogHandler {
	return &CatalogHandler{backend: backend, logger: logger}
}

func (h *CatalogHandler) ListProducts(c *gin.Context) {
	var filters catalogdom.ListFilters
	if err := c.ShouldBindQuery(&filters); err != nil {
		response.ValidationError(c, "invalid filters", err)
		return
	}

	res, err := h.backend.ListProducts(c.Request.Context(), filters)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, "products", res)
}

func (h *CatalogHandler) GetProduct(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.ValidationError(c, "invalid product id", err)
		return
	}

	p, err := h.backend.GetProduct(c.Request.Context(), id)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, "product", p)
}

func (h *CatalogHandler) CreateProduct(c *gin.Context) {
	var req catalogdom.CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, "invalid request", err)
		return
	}

	p, err := h.backend.CreateProduct(c.Request.Context(), req)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, "product created", p)
}

func (h *CatalogHandler) UpdateProduct(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.ValidationError(c, "invalid product id", err)
		return
	}

	var req catalogdom.UpdateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, "invalid request", err)
		return
	}

	p, err := h.backend.UpdateProduct(c.Request.Context(), id, req)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, "product updated", p)
}

func (h *CatalogHandler) DeleteProduct(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.ValidationError(c, "invalid product id", err)
		return
	}

	if err := h.backend.DeleteProduct(c.Request.Context(), id); err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, "product deleted", nil)
}
