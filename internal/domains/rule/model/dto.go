package model

import (
	"fmt"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"pricing-engine/internal/shared/targeting"
)

// UpsertRuleRequest creates a rule, or updates one when ID is set.
type UpsertRuleRequest struct {
	ID          *uuid.UUID `json:"id,omitempty"`
	Name        string     `json:"name"`
	Description *string    `json:"description,omitempty"`

	DiscountType  string          `json:"discount_type"`
	DiscountValue decimal.Decimal `json:"discount_value"`

	ProductIDs  []uuid.UUID `json:"product_ids,omitempty"`
	CategoryIDs []uuid.UUID `json:"category_ids,omitempty"`
	BrandIDs    []uuid.UUID `json:"brand_ids,omitempty"`
	Tags        []string    `json:"tags,omitempty"`

	MinStock *int             `json:"min_stock,omitempty"`
	MaxStock *int             `json:"max_stock,omitempty"`
	MinPrice *decimal.Decimal `json:"min_price,omitempty"`
	MaxPrice *decimal.Decimal `json:"max_price,omitempty"`

	StartsAt time.Time `json:"starts_at"`
	EndsAt   time.Time `json:"ends_at"`

	Priority    int  `json:"priority"`
	IsExclusive bool `json:"is_exclusive"`
	IsActive    bool `json:"is_active"`

	InternalNotes *string `json:"internal_notes,omitempty"`
}

// Validate enforces the model invariants: value >= 0, percentage
// capped at 100, schedule window ordered.
func (r UpsertRuleRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Required, validation.Length(1, 200)),
		validation.Field(&r.DiscountType, validation.Required, validation.In(
			string(DiscountTypePercentage), string(DiscountTypeFixed),
		)),
		validation.Field(&r.DiscountValue, validation.By(validateDiscountValue(r.DiscountType))),
		validation.Field(&r.StartsAt, validation.Required),
		validation.Field(&r.EndsAt, validation.Required, validation.By(func(interface{}) error {
			if !r.EndsAt.After(r.StartsAt) {
				return fmt.Errorf("must be after starts_at")
			}
			return nil
		})),
		validation.Field(&r.MinPrice, validation.By(validateNonNegativePtr(r.MinPrice))),
		validation.Field(&r.MaxPrice, validation.By(validateNonNegativePtr(r.MaxPrice))),
	)
}

func validateDiscountValue(discountType string) validation.RuleFunc {
	return func(value interface{}) error {
		v, ok := value.(decimal.Decimal)
		if !ok {
			return fmt.Errorf("must be a decimal value")
		}
		if v.IsNegative() {
			return fmt.Errorf("must be >= 0")
		}
		if discountType == string(DiscountTypePercentage) && v.GreaterThan(decimal.NewFromInt(100)) {
			return fmt.Errorf("percentage discount cannot exceed 100")
		}
		return nil
	}
}

func validateNonNegativePtr(v *decimal.Decimal) validation.RuleFunc {
	return func(interface{}) error {
		if v != nil && v.IsNegative() {
			return fmt.Errorf("must be >= 0")
		}
		return nil
	}
}

// ToRule builds the entity from the request. Status flags not present
// on the request (in_use, is_deleted) are storage-owned.
func (r UpsertRuleRequest) ToRule() *DiscountRule {
	rule := &DiscountRule{
		Name:          r.Name,
		Description:   r.Description,
		DiscountType:  r.DiscountType,
		DiscountValue: r.DiscountValue,
		Targeting: targeting.Targeting{
			ProductIDs:  r.ProductIDs,
			CategoryIDs: r.CategoryIDs,
			BrandIDs:    r.BrandIDs,
			Tags:        r.Tags,
		},
		Bounds: targeting.Bounds{
			MinStock: r.MinStock,
			MaxStock: r.MaxStock,
			MinPrice: r.MinPrice,
			MaxPrice: r.MaxPrice,
		},
		StartsAt:      r.StartsAt,
		EndsAt:        r.EndsAt,
		Priority:      r.Priority,
		IsExclusive:   r.IsExclusive,
		IsActive:      r.IsActive,
		InternalNotes: r.InternalNotes,
	}

	if r.ID != nil {
		rule.ID = *r.ID
	}

	return rule
}

// ListRulesFilter drives the paginated admin listing.
type ListRulesFilter struct {
	ActiveOnly      bool       `form:"active_only"`
	IncludeArchived bool       `form:"include_archived"`
	Search          string     `form:"search"`
	ProductID       *uuid.UUID `form:"product_id"`
	CategoryID      *uuid.UUID `form:"category_id"`
	BrandID         *uuid.UUID `form:"brand_id"`
	ScheduledFrom   *time.Time `form:"scheduled_from" time_format:"2006-01-02T15:04:05Z07:00"`
	ScheduledTo     *time.Time `form:"scheduled_to" time_format:"2006-01-02T15:04:05Z07:00"`
	Fields          []string   `form:"fields"`
	Page            int        `form:"page"`
	Limit           int        `form:"limit"`
}

// Normalize applies pagination defaults and caps.
func (f *ListRulesFilter) Normalize() {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 {
		f.Limit = 20
	}
	if f.Limit > 100 {
		f.Limit = 100
	}
}

// sensitiveRuleFields are excluded from every projection regardless of
// what the caller requests.
var sensitiveRuleFields = map[string]struct{}{
	"created_by":     {},
	"internal_notes": {},
}

// ruleFieldAccessors maps projectable field names to value accessors.
var ruleFieldAccessors = map[string]func(*DiscountRule) interface{}{
	"id":             func(r *DiscountRule) interface{} { return r.ID },
	"name":           func(r *DiscountRule) interface{} { return r.Name },
	"description":    func(r *DiscountRule) interface{} { return r.Description },
	"discount_type":  func(r *DiscountRule) interface{} { return r.DiscountType },
	"discount_value": func(r *DiscountRule) interface{} { return r.DiscountValue },
	"targeting":      func(r *DiscountRule) interface{} { return r.Targeting },
	"bounds":         func(r *DiscountRule) interface{} { return r.Bounds },
	"starts_at":      func(r *DiscountRule) interface{} { return r.StartsAt },
	"ends_at":        func(r *DiscountRule) interface{} { return r.EndsAt },
	"priority":       func(r *DiscountRule) interface{} { return r.Priority },
	"is_exclusive":   func(r *DiscountRule) interface{} { return r.IsExclusive },
	"is_active":      func(r *DiscountRule) interface{} { return r.IsActive },
	"in_use":         func(r *DiscountRule) interface{} { return r.InUse },
	"is_deleted":     func(r *DiscountRule) interface{} { return r.IsDeleted },
	"created_at":     func(r *DiscountRule) interface{} { return r.CreatedAt },
	"updated_at":     func(r *DiscountRule) interface{} { return r.UpdatedAt },
}

// Project returns the rule as a field map restricted to the requested
// fields. Unknown fields are ignored; sensitive fields are stripped
// even when explicitly requested. An empty request means "all safe
// fields".
func (r *DiscountRule) Project(fields []string) map[string]interface{} {
	out := make(map[string]interface{})

	if len(fields) == 0 {
		for name, get := range ruleFieldAccessors {
			out[name] = get(r)
		}
		return out
	}

	for _, name := range fields {
		if _, sensitive := sensitiveRuleFields[name]; sensitive {
			continue
		}
		if get, ok := ruleFieldAccessors[name]; ok {
			out[name] = get(r)
		}
	}

	return out
}
