package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	catalogmodel "pricing-engine/internal/domains/catalog/model"
	"pricing-engine/internal/domains/pricing/model"
)

var oneHundred = decimal.NewFromInt(100)

// Engine computes cart prices from base prices and the active rule
// set. It is pure: the evaluation instant is a parameter, nothing is
// mutated, and identical inputs always produce identical results.
type Engine struct {
	products ProductReader
	rules    RuleSource
}

// NewEngine creates an engine instance
func NewEngine(products ProductReader, rules RuleSource) *Engine {
	return &Engine{products: products, rules: rules}
}

// pricedLine carries a line's unrounded running unit price through the
// rule chain. Rounding happens once, at the result boundary.
type pricedLine struct {
	product  *catalogmodel.Product
	quantity int
	unit     decimal.Decimal
	applied  []model.AppliedRule
}

// PreviewPricing prices the cart at the given instant. Lines whose
// product id does not resolve are silently dropped.
func (e *Engine) PreviewPricing(ctx context.Context, items []model.LineItem, now time.Time) (*model.PricingResult, error) {
	lines, err := e.priceLines(ctx, items, now)
	if err != nil {
		return nil, err
	}
	return buildResult(lines), nil
}

// priceLines runs the rule chain per line. Rules are already sorted by
// priority; each matching rule discounts the running unit price, an
// exclusive rule ends the chain for that line only.
func (e *Engine) priceLines(ctx context.Context, items []model.LineItem, now time.Time) ([]*pricedLine, error) {
	ids := make([]uuid.UUID, 0, len(items))
	seen := make(map[uuid.UUID]struct{}, len(items))
	for _, item := range items {
		if _, ok := seen[item.ProductID]; !ok {
			seen[item.ProductID] = struct{}{}
			ids = append(ids, item.ProductID)
		}
	}

	products, err := e.products.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	byID := make(map[uuid.UUID]*catalogmodel.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	rules, err := e.rules.ActiveRulesAt(ctx, now)
	if err != nil {
		return nil, err
	}

	lines := make([]*pricedLine, 0, len(items))
	for _, item := range items {
		product, ok := byID[item.ProductID]
		if !ok {
			continue
		}

		line := &pricedLine{
			product:  product,
			quantity: item.Quantity,
			unit:     product.BasePrice,
		}

		facts := product.Facts()
		for _, rule := range rules {
			if !rule.MatchesProduct(facts) {
				continue
			}

			after := applyDiscount(line.unit, rule.DiscountType, rule.DiscountValue)
			line.applied = append(line.applied, model.AppliedRule{
				RuleID: rule.ID,
				Name:   rule.Name,
				Kind:   rule.DiscountType,
				Value:  rule.DiscountValue,
				Before: line.unit.Round(2),
				After:  after.Round(2),
			})
			line.unit = after

			if rule.IsExclusive {
				break
			}
		}

		lines = append(lines, line)
	}

	return lines, nil
}

// applyDiscount discounts a unit price, clamped at zero.
func applyDiscount(price decimal.Decimal, kind string, value decimal.Decimal) decimal.Decimal {
	var after decimal.Decimal
	switch kind {
	case "percentage":
		after = price.Sub(price.Mul(value).Div(oneHundred))
	case "fixed":
		after = price.Sub(value)
	default:
		return price
	}

	if after.IsNegative() {
		return decimal.Zero
	}
	return after
}

// buildResult rounds each line to currency precision and sums the
// cart. Subtotal is the undiscounted amount, Total what is charged.
func buildResult(lines []*pricedLine) *model.PricingResult {
	result := &model.PricingResult{
		Lines:         make([]model.LinePricing, 0, len(lines)),
		Subtotal:      decimal.Zero,
		TotalDiscount: decimal.Zero,
		Total:         decimal.Zero,
	}

	for _, line := range lines {
		qty := decimal.NewFromInt(int64(line.quantity))
		subtotal := line.product.BasePrice.Mul(qty).Round(2)
		total := line.unit.Mul(qty).Round(2)

		lp := model.LinePricing{
			ProductID:    line.product.ID,
			Name:         line.product.Name,
			Quantity:     line.quantity,
			BasePrice:    line.product.BasePrice.Round(2),
			UnitPrice:    line.unit.Round(2),
			Subtotal:     subtotal,
			Discount:     subtotal.Sub(total),
			Total:        total,
			AppliedRules: line.applied,
		}

		result.Lines = append(result.Lines, lp)
		result.Subtotal = result.Subtotal.Add(lp.Subtotal)
		result.TotalDiscount = result.TotalDiscount.Add(lp.Discount)
		result.Total = result.Total.Add(lp.Total)
	}

	return result
}
