package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"pricing-engine/internal/domains/catalog/service"
	"pricing-engine/internal/shared/response"
)

// CatalogHandler exposes the catalog apply/remove transitions.
type CatalogHandler struct {
	service service.ServiceInterface
}

// NewCatalogHandler creates a handler instance
func NewCatalogHandler(service service.ServiceInterface) *CatalogHandler {
	return &CatalogHandler{service: service}
}

// ApplyToCatalog bakes a rule's discount into stored prices.
// POST /api/v1/admin/rules/:id/apply
func (h *CatalogHandler) ApplyToCatalog(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid rule id")
		return
	}

	result, err := h.service.ApplyToCatalog(c.Request.Context(), id)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, http.StatusOK, result)
}

// RemoveFromCatalog restores base prices for a rule's applications.
// POST /api/v1/admin/rules/:id/remove
func (h *CatalogHandler) RemoveFromCatalog(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid rule id")
		return
	}

	result, err := h.service.RemoveFromCatalog(c.Request.Context(), id)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, http.StatusOK, result)
}
