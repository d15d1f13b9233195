package targeting

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProductFacts carries the product attributes targeting is evaluated
// against. It is a snapshot: callers decide which point-in-time view of
// the product it represents.
type ProductFacts struct {
	ID         uuid.UUID
	CategoryID *uuid.UUID
	BrandID    *uuid.UUID
	Tags       []string
	Stock      int
	BasePrice  decimal.Decimal
}

// Targeting is the shared criteria shape used by discount rules and
// promo codes. Each set is optional; an empty set is "not a criterion".
type Targeting struct {
	ProductIDs  []uuid.UUID `json:"product_ids,omitempty"`
	CategoryIDs []uuid.UUID `json:"category_ids,omitempty"`
	BrandIDs    []uuid.UUID `json:"brand_ids,omitempty"`
	Tags        []string    `json:"tags,omitempty"`
}

// IsEmpty reports whether no targeting set is configured. An empty
// Targeting never matches anything: it is a documented no-op, not an
// error, except where an operation explicitly requires targets.
func (t Targeting) IsEmpty() bool {
	return len(t.ProductIDs) == 0 &&
		len(t.CategoryIDs) == 0 &&
		len(t.BrandIDs) == 0 &&
		len(t.Tags) == 0
}

// Matches evaluates the targeting as a boolean OR across the non-empty
// sets: the product matches if its id, category, brand, or any of its
// tags appears in the corresponding set. This is the single matcher
// used by the pricing engine, the promo applicator, and mirrored by the
// catalog mutator's SQL match query.
func (t Targeting) Matches(p ProductFacts) bool {
	if t.IsEmpty() {
		return false
	}

	for _, id := range t.ProductIDs {
		if id == p.ID {
			return true
		}
	}

	if p.CategoryID != nil {
		for _, id := range t.CategoryIDs {
			if id == *p.CategoryID {
				return true
			}
		}
	}

	if p.BrandID != nil {
		for _, id := range t.BrandIDs {
			if id == *p.BrandID {
				return true
			}
		}
	}

	if len(t.Tags) > 0 && len(p.Tags) > 0 {
		want := make(map[string]struct{}, len(t.Tags))
		for _, tag := range t.Tags {
			want[tag] = struct{}{}
		}
		for _, tag := range p.Tags {
			if _, ok := want[tag]; ok {
				return true
			}
		}
	}

	return false
}

// Bounds are the optional stock/price range constraints a rule may add
// on top of its targeting sets. A nil bound is not a criterion.
type Bounds struct {
	MinStock *int             `json:"min_stock,omitempty"`
	MaxStock *int             `json:"max_stock,omitempty"`
	MinPrice *decimal.Decimal `json:"min_price,omitempty"`
	MaxPrice *decimal.Decimal `json:"max_price,omitempty"`
}

// Contains reports whether the product's stock and base price fall
// inside every configured bound.
func (b Bounds) Contains(p ProductFacts) bool {
	if b.MinStock != nil && p.Stock < *b.MinStock {
		return false
	}
	if b.MaxStock != nil && p.Stock > *b.MaxStock {
		return false
	}
	if b.MinPrice != nil && p.BasePrice.LessThan(*b.MinPrice) {
		return false
	}
	if b.MaxPrice != nil && p.BasePrice.GreaterThan(*b.MaxPrice) {
		return false
	}
	return true
}
