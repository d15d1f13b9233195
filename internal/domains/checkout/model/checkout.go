package model

import (
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"

	pricingmodel "pricing-engine/internal/domains/pricing/model"
)

// CheckoutOrder is the order being finalized. Totals are never taken
// from the client; the finalizer recomputes everything server-side.
type CheckoutOrder struct {
	Items      []pricingmodel.LineItem
	PromoCode  string
	CustomerID uuid.UUID
	OrderRef   string
}

// FinalizeResult carries the authoritative pricing the caller persists
// on the order. Promo is nil when no code was supplied.
type FinalizeResult struct {
	Pricing *pricingmodel.PricingResult    `json:"pricing"`
	Promo   *pricingmodel.PromoApplication `json:"promo,omitempty"`
}

// CheckoutRequest is the HTTP payload for finalization.
type CheckoutRequest struct {
	Items      []pricingmodel.LineItem `json:"items"`
	PromoCode  string                  `json:"promo_code,omitempty"`
	CustomerID *uuid.UUID              `json:"customer_id,omitempty"`
	OrderRef   string                  `json:"order_ref"`
}

func (r CheckoutRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.OrderRef, validation.Required),
		validation.Field(&r.Items, validation.Required, validation.By(func(interface{}) error {
			for i, item := range r.Items {
				if item.ProductID == uuid.Nil {
					return fmt.Errorf("items[%d]: product_id is required", i)
				}
				if item.Quantity < 1 {
					return fmt.Errorf("items[%d]: quantity must be >= 1", i)
				}
			}
			return nil
		})),
	)
}

// ToOrder builds the order from the request.
func (r CheckoutRequest) ToOrder() *CheckoutOrder {
	order := &CheckoutOrder{
		Items:     r.Items,
		PromoCode: r.PromoCode,
		OrderRef:  r.OrderRef,
	}
	if r.CustomerID != nil {
		order.CustomerID = *r.CustomerID
	}
	return order
}
