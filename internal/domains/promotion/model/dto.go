package model

import (
	"fmt"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"pricing-engine/internal/shared/targeting"
)

// UpsertPromoRequest creates a promo code, or updates one when ID is set.
type UpsertPromoRequest struct {
	ID          *uuid.UUID `json:"id,omitempty"`
	Code        string     `json:"code"`
	Name        string     `json:"name"`
	Description *string    `json:"description,omitempty"`

	DiscountType  string          `json:"discount_type"`
	DiscountValue decimal.Decimal `json:"discount_value"`

	ProductIDs  []uuid.UUID `json:"product_ids,omitempty"`
	CategoryIDs []uuid.UUID `json:"category_ids,omitempty"`
	BrandIDs    []uuid.UUID `json:"brand_ids,omitempty"`
	Tags        []string    `json:"tags,omitempty"`

	MinOrderValue    *decimal.Decimal `json:"min_order_value,omitempty"`
	CustomerLimit    *int             `json:"customer_limit,omitempty"`
	GlobalUsageLimit *int             `json:"global_usage_limit,omitempty"`

	StartsAt time.Time `json:"starts_at"`
	EndsAt   time.Time `json:"ends_at"`

	IsActive    bool `json:"is_active"`
	IsExclusive bool `json:"is_exclusive"`

	InternalNotes *string `json:"internal_notes,omitempty"`
}

// Validate enforces the model invariants: value >= 0, percentage
// capped at 100, positive usage limits, schedule window ordered.
func (r UpsertPromoRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Code, validation.Required, validation.Length(1, 50)),
		validation.Field(&r.Name, validation.Required, validation.Length(1, 200)),
		validation.Field(&r.DiscountType, validation.Required, validation.In(
			string(DiscountTypePercentage), string(DiscountTypeFixed),
		)),
		validation.Field(&r.DiscountValue, validation.By(validatePromoDiscountValue(r.DiscountType))),
		validation.Field(&r.StartsAt, validation.Required),
		validation.Field(&r.EndsAt, validation.Required, validation.By(func(interface{}) error {
			if !r.EndsAt.After(r.StartsAt) {
				return fmt.Errorf("must be after starts_at")
			}
			return nil
		})),
		validation.Field(&r.MinOrderValue, validation.By(func(interface{}) error {
			if r.MinOrderValue != nil && r.MinOrderValue.IsNegative() {
				return fmt.Errorf("must be >= 0")
			}
			return nil
		})),
		validation.Field(&r.CustomerLimit, validation.By(validatePositiveLimit(r.CustomerLimit))),
		validation.Field(&r.GlobalUsageLimit, validation.By(validatePositiveLimit(r.GlobalUsageLimit))),
	)
}

func validatePromoDiscountValue(discountType string) validation.RuleFunc {
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

func validatePositiveLimit(v *int) validation.RuleFunc {
	return func(interface{}) error {
		if v != nil && *v < 1 {
			return fmt.Errorf("must be >= 1")
		}
		return nil
	}
}

// ToPromo builds the entity from the request. The code is stored
// canonicalized; used_count and is_deleted are storage-owned.
func (r UpsertPromoRequest) ToPromo() *PromoCode {
	promo := &PromoCode{
		Code:          NormalizeCode(r.Code),
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
		MinOrderValue:    r.MinOrderValue,
		CustomerLimit:    r.CustomerLimit,
		GlobalUsageLimit: r.GlobalUsageLimit,
		StartsAt:         r.StartsAt,
		EndsAt:           r.EndsAt,
		IsActive:         r.IsActive,
		IsExclusive:      r.IsExclusive,
		InternalNotes:    r.InternalNotes,
	}

	if r.ID != nil {
		promo.ID = *r.ID
	}

	return promo
}

// ListPromosFilter drives the paginated admin listing.
type ListPromosFilter struct {
	ActiveOnly      bool       `form:"active_only"`
	IncludeArchived bool       `form:"include_archived"`
	Search          string     `form:"search"`
	ProductID       *uuid.UUID `form:"product_id"`
	ScheduledFrom   *time.Time `form:"scheduled_from" time_format:"2006-01-02T15:04:05Z07:00"`
	ScheduledTo     *time.Time `form:"scheduled_to" time_format:"2006-01-02T15:04:05Z07:00"`
	Fields          []string   `form:"fields"`
	Page            int        `form:"page"`
	Limit           int        `form:"limit"`
}

// Normalize applies pagination defaults and caps.
func (f *ListPromosFilter) Normalize() {
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

// sensitivePromoFields are excluded from every projection regardless
// of what the caller requests.
var sensitivePromoFields = map[string]struct{}{
	"created_by":     {},
	"internal_notes": {},
}

// promoFieldAccessors maps projectable field names to value accessors.
var promoFieldAccessors = map[string]func(*PromoCode) interface{}{
	"id":                 func(p *PromoCode) interface{} { return p.ID },
	"code":               func(p *PromoCode) interface{} { return p.Code },
	"name":               func(p *PromoCode) interface{} { return p.Name },
	"description":        func(p *PromoCode) interface{} { return p.Description },
	"discount_type":      func(p *PromoCode) interface{} { return p.DiscountType },
	"discount_value":     func(p *PromoCode) interface{} { return p.DiscountValue },
	"targeting":          func(p *PromoCode) interface{} { return p.Targeting },
	"min_order_value":    func(p *PromoCode) interface{} { return p.MinOrderValue },
	"customer_limit":     func(p *PromoCode) interface{} { return p.CustomerLimit },
	"global_usage_limit": func(p *PromoCode) interface{} { return p.GlobalUsageLimit },
	"used_count":         func(p *PromoCode) interface{} { return p.UsedCount },
	"starts_at":          func(p *PromoCode) interface{} { return p.StartsAt },
	"ends_at":            func(p *PromoCode) interface{} { return p.EndsAt },
	"is_active":          func(p *PromoCode) interface{} { return p.IsActive },
	"is_exclusive":       func(p *PromoCode) interface{} { return p.IsExclusive },
	"is_deleted":         func(p *PromoCode) interface{} { return p.IsDeleted },
	"created_at":         func(p *PromoCode) interface{} { return p.CreatedAt },
	"updated_at":         func(p *PromoCode) interface{} { return p.UpdatedAt },
}

// Project returns the promo as a field map restricted to the requested
// fields. Unknown fields are ignored; sensitive fields are stripped
// even when explicitly requested. An empty request means "all safe
// fields".
func (p *PromoCode) Project(fields []string) map[string]interface{} {
	out := make(map[string]interface{})

	if len(fields) == 0 {
		for name, get := range promoFieldAccessors {
			out[name] = get(p)
		}
		return out
	}

	for _, name := range fields {
		if _, sensitive := sensitivePromoFields[name]; sensitive {
			continue
		}
		if get, ok := promoFieldAccessors[name]; ok {
			out[name] = get(p)
		}
	}

	return out
}
