package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"pricing-engine/internal/domains/pricing/model"
	"pricing-engine/internal/domains/pricing/service"
	"pricing-engine/internal/shared/apperror"
	"pricing-engine/internal/shared/response"
)

// PricingHandler exposes the read-only pricing endpoints.
type PricingHandler struct {
	engine     *service.Engine
	applicator *service.Applicator
}

// NewPricingHandler creates a handler instance
func NewPricingHandler(engine *service.Engine, applicator *service.Applicator) *PricingHandler {
	return &PricingHandler{engine: engine, applicator: applicator}
}

// PreviewPricing prices a cart without touching any state.
// POST /api/v1/pricing/preview
func (h *PricingHandler) PreviewPricing(c *gin.Context) {
	var req model.PreviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	if err := req.Validate(); err != nil {
		response.FromError(c, apperror.Validation(err.Error()))
		return
	}

	result, err := h.engine.PreviewPricing(c.Request.Context(), req.Items, time.Now().UTC())
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, http.StatusOK, result)
}

// ApplyPromo previews a cart with a promo code stacked on top.
// POST /api/v1/pricing/apply-promo
func (h *PricingHandler) ApplyPromo(c *gin.Context) {
	var req model.ApplyPromoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	if err := req.Validate(); err != nil {
		response.FromError(c, apperror.Validation(err.Error()))
		return
	}

	customerID := uuid.Nil
	if req.CustomerID != nil {
		customerID = *req.CustomerID
	}

	application, err := h.applicator.ApplyPromo(c.Request.Context(), req.Code, req.Items, customerID, time.Now().UTC())
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, http.StatusOK, application)
}
