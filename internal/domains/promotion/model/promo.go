package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"pricing-engine/internal/shared/targeting"
)

// DiscountType represents valid discount types
type DiscountType string

const (
	DiscountTypePercentage DiscountType = "percentage"
	DiscountTypeFixed      DiscountType = "fixed"
)

func (dt DiscountType) IsValid() bool {
	switch dt {
	case DiscountTypePercentage, DiscountTypeFixed:
		return true
	}
	return false
}

func (dt DiscountType) String() string {
	return string(dt)
}

// PromoCode is a customer-supplied code granting an additional
// discount on top of automatic rules, subject to usage limits.
type PromoCode struct {
	// Identity. Code is stored canonicalized upper-case and matched
	// case-insensitively.
	ID          uuid.UUID `json:"id" db:"id"`
	Code        string    `json:"code" db:"code"`
	Name        string    `json:"name" db:"name"`
	Description *string   `json:"description,omitempty" db:"description"`

	// Discount strategy
	DiscountType  string          `json:"discount_type" db:"discount_type"`
	DiscountValue decimal.Decimal `json:"discount_value" db:"discount_value"`

	// Targeting criteria (same shape as discount rules)
	Targeting targeting.Targeting `json:"targeting"`

	// Order constraints
	MinOrderValue    *decimal.Decimal `json:"min_order_value,omitempty" db:"min_order_value"`
	CustomerLimit    *int             `json:"customer_limit,omitempty" db:"customer_limit"`
	GlobalUsageLimit *int             `json:"global_usage_limit,omitempty" db:"global_usage_limit"`

	// UsedCount is a storage-owned monotonic counter. It is only ever
	// advanced by the conditional increment in the repository, so it
	// can never pass global_usage_limit, even under concurrent
	// checkouts.
	UsedCount int `json:"used_count" db:"used_count"`

	// Schedule
	StartsAt time.Time `json:"starts_at" db:"starts_at"`
	EndsAt   time.Time `json:"ends_at" db:"ends_at"`

	// Status
	IsActive    bool `json:"is_active" db:"is_active"`
	IsExclusive bool `json:"is_exclusive" db:"is_exclusive"`
	IsDeleted   bool `json:"is_deleted" db:"is_deleted"`

	// Operator bookkeeping. Never included in list projections.
	CreatedBy     *uuid.UUID `json:"created_by,omitempty" db:"created_by"`
	InternalNotes *string    `json:"internal_notes,omitempty" db:"internal_notes"`

	// Timestamps
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// NormalizeCode canonicalizes a promo code for storage and lookup.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// IsScheduledAt reports whether now falls inside the promo's window.
func (p *PromoCode) IsScheduledAt(now time.Time) bool {
	return !now.Before(p.StartsAt) && !now.After(p.EndsAt)
}

// HasReachedGlobalLimit is the optimistic pre-check; the authoritative
// check is the conditional increment at checkout.
func (p *PromoCode) HasReachedGlobalLimit() bool {
	if p.GlobalUsageLimit == nil {
		return false
	}
	return p.UsedCount >= *p.GlobalUsageLimit
}

// MatchesProduct evaluates the promo's targeting against a product.
func (p *PromoCode) MatchesProduct(facts targeting.ProductFacts) bool {
	return p.Targeting.Matches(facts)
}

// PromoRedemption records one use of a promo code by a customer in a
// finalized checkout. Written in the same transaction as the usage
// counter increment.
type PromoRedemption struct {
	ID             uuid.UUID       `json:"id" db:"id"`
	PromoID        uuid.UUID       `json:"promo_id" db:"promo_id"`
	CustomerID     uuid.UUID       `json:"customer_id" db:"customer_id"`
	OrderRef       string          `json:"order_ref" db:"order_ref"`
	DiscountAmount decimal.Decimal `json:"discount_amount" db:"discount_amount"`
	UsedAt         time.Time       `json:"used_at" db:"used_at"`
}

// UsageStats aggregates a promo's redemption history.
type UsageStats struct {
	TotalUses          int             `json:"total_uses"`
	TotalDiscountGiven decimal.Decimal `json:"total_discount_given"`
	AverageDiscount    decimal.Decimal `json:"average_discount"`
	UniqueCustomers    int             `json:"unique_customers"`
}
