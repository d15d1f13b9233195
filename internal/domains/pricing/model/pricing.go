package model

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LineItem is one cart line to be priced.
type LineItem struct {
	ProductID uuid.UUID `json:"product_id"`
	Quantity  int       `json:"quantity"`
}

// AppliedRule traces one rule application on a line: the rule's
// identity, its discount, and the unit price before and after.
type AppliedRule struct {
	RuleID uuid.UUID       `json:"rule_id"`
	Name   string          `json:"name"`
	Kind   string          `json:"kind"`
	Value  decimal.Decimal `json:"value"`
	Before decimal.Decimal `json:"before"`
	After  decimal.Decimal `json:"after"`
}

// LinePricing is the priced view of one cart line. Subtotal is the
// undiscounted base price times quantity; Total is the discounted
// amount actually charged.
type LinePricing struct {
	ProductID    uuid.UUID       `json:"product_id"`
	Name         string          `json:"name"`
	Quantity     int             `json:"quantity"`
	BasePrice    decimal.Decimal `json:"base_price"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
	Subtotal     decimal.Decimal `json:"subtotal"`
	Discount     decimal.Decimal `json:"discount"`
	Total        decimal.Decimal `json:"total"`
	AppliedRules []AppliedRule   `json:"applied_rules,omitempty"`
}

// PricingResult is the priced view of a whole cart. It is ephemeral:
// nothing here is ever persisted.
type PricingResult struct {
	Lines         []LinePricing   `json:"lines"`
	Subtotal      decimal.Decimal `json:"subtotal"`
	TotalDiscount decimal.Decimal `json:"total_discount"`
	Total         decimal.Decimal `json:"total"`
}

// PromoLine traces the promo's effect on one matching line.
type PromoLine struct {
	ProductID uuid.UUID       `json:"product_id"`
	Before    decimal.Decimal `json:"before"`
	After     decimal.Decimal `json:"after"`
	Discount  decimal.Decimal `json:"discount"`
}

// PromoApplication is the result of stacking a promo code on top of
// the rule-priced cart.
type PromoApplication struct {
	PromoID        uuid.UUID       `json:"promo_id"`
	Code           string          `json:"code"`
	Name           string          `json:"name"`
	DiscountType   string          `json:"discount_type"`
	DiscountValue  decimal.Decimal `json:"discount_value"`
	DiscountAmount decimal.Decimal `json:"discount_amount"`
	Lines          []PromoLine     `json:"lines,omitempty"`
	Result         *PricingResult  `json:"result"`
}
