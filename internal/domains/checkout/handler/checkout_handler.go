package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"pricing-engine/internal/domains/checkout/model"
	"pricing-engine/internal/domains/checkout/service"
	"pricing-engine/internal/shared/apperror"
	"pricing-engine/internal/shared/response"
)

// CheckoutHandler exposes checkout finalization.
type CheckoutHandler struct {
	finalizer *service.Finalizer
}

// NewCheckoutHandler creates a handler instance
func NewCheckoutHandler(finalizer *service.Finalizer) *CheckoutHandler {
	return &CheckoutHandler{finalizer: finalizer}
}

// Checkout finalizes an order's pricing and consumes promo usage.
// POST /api/v1/checkout
func (h *CheckoutHandler) Checkout(c *gin.Context) {
	var req model.CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	if err := req.Validate(); err != nil {
		response.FromError(c, apperror.Validation(err.Error()))
		return
	}

	result, err := h.finalizer.Checkout(c.Request.Context(), req.ToOrder(), time.Now().UTC())
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, http.StatusOK, result)
}
