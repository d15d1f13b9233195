package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"pricing-engine/internal/domains/promotion/model"
	"pricing-engine/internal/domains/promotion/service"
	"pricing-engine/internal/shared/response"
)

// PromoHandler exposes the admin API for promo codes.
type PromoHandler struct {
	service service.ServiceInterface
}

// NewPromoHandler creates a handler instance
func NewPromoHandler(service service.ServiceInterface) *PromoHandler {
	return &PromoHandler{service: service}
}

// UpsertPromo creates or updates a promo code.
// POST /api/v1/admin/promos
func (h *PromoHandler) UpsertPromo(c *gin.Context) {
	var req model.UpsertPromoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	promo, err := h.service.UpsertPromo(c.Request.Context(), &req)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, http.StatusOK, promo)
}

// ListPromos returns a paginated, filterable promo listing with
// optional field projection.
// GET /api/v1/admin/promos
func (h *PromoHandler) ListPromos(c *gin.Context) {
	var filter model.ListPromosFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		response.BadRequest(c, "Invalid query parameters: "+err.Error())
		return
	}

	promos, total, err := h.service.ListPromos(c.Request.Context(), &filter)
	if err != nil {
		response.FromError(c, err)
		return
	}

	projected := make([]map[string]interface{}, len(promos))
	for i, promo := range promos {
		projected[i] = promo.Project(filter.Fields)
	}

	response.SuccessWithMeta(c, http.StatusOK, projected, &response.Meta{
		Page:  filter.Page,
		Limit: filter.Limit,
		Total: total,
	})
}

// GetPromo returns a single promo code.
// GET /api/v1/admin/promos/:id
func (h *PromoHandler) GetPromo(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid promo id")
		return
	}

	promo, err := h.service.GetPromo(c.Request.Context(), id)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, http.StatusOK, promo)
}

// TogglePromoActive flips the is_active flag.
// PATCH /api/v1/admin/promos/:id/active?value=true
func (h *PromoHandler) TogglePromoActive(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid promo id")
		return
	}

	value, err := strconv.ParseBool(c.Query("value"))
	if err != nil {
		response.BadRequest(c, "Query parameter 'value' must be true or false")
		return
	}

	promo, err := h.service.TogglePromoActive(c.Request.Context(), id, value)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, http.StatusOK, promo)
}

// DeletePromo archives a promo code.
// DELETE /api/v1/admin/promos/:id
func (h *PromoHandler) DeletePromo(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid promo id")
		return
	}

	if err := h.service.DeletePromo(c.Request.Context(), id); err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}

// GetPromoStats aggregates a promo's redemption history.
// GET /api/v1/admin/promos/:id/stats?from=...&to=...
func (h *PromoHandler) GetPromoStats(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid promo id")
		return
	}

	var from, to *time.Time
	if raw := c.Query("from"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			response.BadRequest(c, "Query parameter 'from' must be RFC3339")
			return
		}
		from = &t
	}
	if raw := c.Query("to"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			response.BadRequest(c, "Query parameter 'to' must be RFC3339")
			return
		}
		to = &t
	}

	stats, err := h.service.GetUsageStats(c.Request.Context(), id, from, to)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, http.StatusOK, stats)
}
