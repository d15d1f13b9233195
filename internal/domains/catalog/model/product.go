package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"pricing-engine/internal/shared/targeting"
)

// Product is the catalog view this system prices against. base_price
// is owned by catalog management and never written here; final_price,
// sale_price and the discount display fields are the only columns the
// mutator touches.
type Product struct {
	ID   uuid.UUID `json:"id" db:"id"`
	Name string    `json:"name" db:"name"`

	BasePrice  decimal.Decimal `json:"base_price" db:"base_price"`
	FinalPrice decimal.Decimal `json:"final_price" db:"final_price"`
	SalePrice  decimal.Decimal `json:"sale_price" db:"sale_price"`

	// Discount display fields, stamped on apply and cleared on remove.
	DiscountType  *string          `json:"discount_type,omitempty" db:"discount_type"`
	DiscountValue *decimal.Decimal `json:"discount_value,omitempty" db:"discount_value"`
	Discount      *decimal.Decimal `json:"discount,omitempty" db:"discount"`

	CategoryID *uuid.UUID `json:"category_id,omitempty" db:"category_id"`
	BrandID    *uuid.UUID `json:"brand_id,omitempty" db:"brand_id"`
	Tags       []string   `json:"tags,omitempty" db:"tags"`
	Stock      int        `json:"stock" db:"stock"`

	IsDeleted bool      `json:"is_deleted" db:"is_deleted"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// Facts snapshots the attributes targeting evaluates against.
func (p *Product) Facts() targeting.ProductFacts {
	return targeting.ProductFacts{
		ID:         p.ID,
		CategoryID: p.CategoryID,
		BrandID:    p.BrandID,
		Tags:       p.Tags,
		Stock:      p.Stock,
		BasePrice:  p.BasePrice,
	}
}
