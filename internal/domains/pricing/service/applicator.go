package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"pricing-engine/internal/domains/pricing/model"
	promomodel "pricing-engine/internal/domains/promotion/model"
)

// Applicator stacks a promo code on top of the rule-priced cart.
type Applicator struct {
	engine *Engine
	promos PromoResolver
}

// NewApplicator creates an applicator instance
func NewApplicator(engine *Engine, promos PromoResolver) *Applicator {
	return &Applicator{engine: engine, promos: promos}
}

// ApplyPromo prices the cart with the promo applied. The promo is
// resolved and gated first (unknown, out of schedule, inactive, or
// exhausted codes fail), then it discounts the running unit price of
// matching lines after every rule has run. The minimum order
// constraint is checked against the post-discount total. customerID
// may be uuid.Nil for anonymous carts.
func (a *Applicator) ApplyPromo(ctx context.Context, code string, items []model.LineItem, customerID uuid.UUID, now time.Time) (*model.PromoApplication, error) {
	promo, err := a.promos.ResolveForCustomer(ctx, code, customerID, now)
	if err != nil {
		return nil, err
	}

	lines, err := a.engine.priceLines(ctx, items, now)
	if err != nil {
		return nil, err
	}

	application := &model.PromoApplication{
		PromoID:       promo.ID,
		Code:          promo.Code,
		Name:          promo.Name,
		DiscountType:  promo.DiscountType,
		DiscountValue: promo.DiscountValue,
	}

	for _, line := range lines {
		if !promo.MatchesProduct(line.product.Facts()) {
			continue
		}

		before := line.unit
		after := applyDiscount(before, promo.DiscountType, promo.DiscountValue)
		qty := decimal.NewFromInt(int64(line.quantity))

		application.Lines = append(application.Lines, model.PromoLine{
			ProductID: line.product.ID,
			Before:    before.Round(2),
			After:     after.Round(2),
			Discount:  before.Mul(qty).Round(2).Sub(after.Mul(qty).Round(2)),
		})

		line.unit = after
	}

	result := buildResult(lines)
	application.Result = result

	for _, pl := range application.Lines {
		application.DiscountAmount = application.DiscountAmount.Add(pl.Discount)
	}

	if promo.MinOrderValue != nil && result.Total.LessThan(*promo.MinOrderValue) {
		return nil, promomodel.ErrPromoMinOrderNotMet
	}

	return application, nil
}
