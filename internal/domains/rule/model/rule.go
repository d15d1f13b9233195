package model

import (
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

// DiscountRule is a scheduled, targeted, prioritized discount applied
// automatically to matching products.
type DiscountRule struct {
	// Identity
	ID          uuid.UUID `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Description *string   `json:"description,omitempty" db:"description"`

	// Discount strategy
	DiscountType  string          `json:"discount_type" db:"discount_type"`
	DiscountValue decimal.Decimal `json:"discount_value" db:"discount_value"`

	// Targeting criteria and range constraints
	Targeting targeting.Targeting `json:"targeting"`
	Bounds    targeting.Bounds    `json:"bounds"`

	// Schedule & ordering
	StartsAt time.Time `json:"starts_at" db:"starts_at"`
	EndsAt   time.Time `json:"ends_at" db:"ends_at"`
	// Priority orders rule evaluation, lower first.
	Priority    int  `json:"priority" db:"priority"`
	IsExclusive bool `json:"is_exclusive" db:"is_exclusive"`

	// Status flags
	IsActive bool `json:"is_active" db:"is_active"`
	// InUse is owned exclusively by the catalog mutator state machine:
	// false -> true on apply, true -> false on remove. No other
	// transition is legal.
	InUse     bool `json:"in_use" db:"in_use"`
	IsDeleted bool `json:"is_deleted" db:"is_deleted"`

	// Operator bookkeeping. Never included in list projections.
	CreatedBy     *uuid.UUID `json:"created_by,omitempty" db:"created_by"`
	InternalNotes *string    `json:"internal_notes,omitempty" db:"internal_notes"`

	// Timestamps
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// IsScheduledAt reports whether now falls inside the rule's window.
func (r *DiscountRule) IsScheduledAt(now time.Time) bool {
	return !now.Before(r.StartsAt) && !now.After(r.EndsAt)
}

// AppliesAt reports whether the rule participates in pricing at now.
func (r *DiscountRule) AppliesAt(now time.Time) bool {
	return r.IsActive && !r.IsDeleted && r.IsScheduledAt(now)
}

/// MatchesProduct evaluates the rule against a product: OR across the
// non-empty targeting sets, then AND with the configured bounds.
func (r *DiscountRule) MatchesProduct(p targeting.ProductFacts) bool {
	return r.Targeting.Matches(p) && r.Bounds.Contains(p)
}

// BeginCatalogApplication transitions in_use false -> true.
// Re-application of an in-use rule is rejected, not merged.
func (r *DiscountRule) BeginCatalogApplication() error {
	if r.InUse {
		return ErrRuleAlreadyApplied
	}
	r.InUse = true
	return nil
}

// EndCatalogApplication transitions in_use true -> false. Removal does
// NOT touch is_active: deactivation stays an operator decision.
func (r *DiscountRule) EndCatalogApplication() error {
	if !r.InUse {
		return ErrRuleNotApplied
	}
	r.InUse = false
	return nil
}
