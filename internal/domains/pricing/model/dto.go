package model

import (
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
)

// PreviewRequest prices a cart without touching any state.
type PreviewRequest struct {
	Items []LineItem `json:"items"`
}

func (r PreviewRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Items, validation.Required, validation.By(validateLineItems(r.Items))),
	)
}

// ApplyPromoRequest previews a cart with a promo code stacked on top.
// CustomerID is optional: anonymous carts skip the per-customer limit
// pre-check.
type ApplyPromoRequest struct {
	Code       string     `json:"code"`
	Items      []LineItem `json:"items"`
	CustomerID *uuid.UUID `json:"customer_id,omitempty"`
}

func (r ApplyPromoRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Code, validation.Required),
		validation.Field(&r.Items, validation.Required, validation.By(validateLineItems(r.Items))),
	)
}

func validateLineItems(items []LineItem) validation.RuleFunc {
	return func(interface{}) error {
		for i, item := range items {
			if item.ProductID == uuid.Nil {
				return fmt.Errorf("items[%d]: product_id is required", i)
			}
			if item.Quantity < 1 {
				return fmt.Errorf("items[%d]: quantity must be >= 1", i)
			}
		}
		return nil
	}
}
