package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	catalogmodel "pricing-engine/internal/domains/catalog/model"
	"pricing-engine/internal/domains/pricing/model"
	rulemodel "pricing-engine/internal/domains/rule/model"
	"pricing-engine/internal/shared/targeting"
)

var testNow = time.Date(2026, 7, 15, 12, 0, 0, 0, time.UTC)

type stubProducts struct {
	products []*catalogmodel.Product
}

func (s *stubProducts) GetByIDs(_ context.Context, ids []uuid.UUID) ([]*catalogmodel.Product, error) {
	want := make(map[uuid.UUID]struct{}, len(ids))
	for _, id := range ids {
		want[id] = struct{}{}
	}

	var out []*catalogmodel.Product
	for _, p := range s.products {
		if _, ok := want[p.ID]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

type stubRules struct {
	rules []*rulemodel.DiscountRule
}

func (s *stubRules) ActiveRulesAt(_ context.Context, now time.Time) ([]*rulemodel.DiscountRule, error) {
	var out []*rulemodel.DiscountRule
	for _, r := range s.rules {
		if r.AppliesAt(now) {
			out = append(out, r)
		}
	}
	return out, nil
}

func testProduct(name string, price string, tags ...string) *catalogmodel.Product {
	return &catalogmodel.Product{
		ID:        uuid.New(),
		Name:      name,
		BasePrice: decimal.RequireFromString(price),
		Tags:      tags,
		Stock:     10,
	}
}

func testRule(name string, priority int, kind string, value string, tags ...string) *rulemodel.DiscountRule {
	return &rulemodel.DiscountRule{
		ID:            uuid.New(),
		Name:          name,
		DiscountType:  kind,
		DiscountValue: decimal.RequireFromString(value),
		Targeting:     targeting.Targeting{Tags: tags},
		StartsAt:      testNow.Add(-24 * time.Hour),
		EndsAt:        testNow.Add(24 * time.Hour),
		Priority:      priority,
		IsActive:      true,
	}
}

func newTestEngine(products []*catalogmodel.Product, rules []*rulemodel.DiscountRule) *Engine {
	return NewEngine(&stubProducts{products: products}, &stubRules{rules: rules})
}

func TestEngine_PreviewPricing_StacksByPriority(t *testing.T) {
	product := testProduct("Widget", "100.00", "sale")
	// 20% off 100 -> 80, then 10 fixed off -> 70
	rules := []*rulemodel.DiscountRule{
		testRule("twenty off", 1, "percentage", "20", "sale"),
		testRule("ten flat", 2, "fixed", "10", "sale"),
	}

	engine := newTestEngine([]*catalogmodel.Product{product}, rules)

	result, err := engine.PreviewPricing(context.Background(), []model.LineItem{
		{ProductID: product.ID, Quantity: 2},
	}, testNow)
	require.NoError(t, err)
	require.Len(t, result.Lines, 1)

	line := result.Lines[0]
	assert.True(t, decimal.RequireFromString("70").Equal(line.UnitPrice), "unit price: %s", line.UnitPrice)
	assert.True(t, decimal.RequireFromString("200").Equal(line.Subtotal))
	assert.True(t, decimal.RequireFromString("140").Equal(line.Total))
	assert.True(t, decimal.RequireFromString("60").Equal(line.Discount))

	require.Len(t, line.AppliedRules, 2)
	assert.Equal(t, "twenty off", line.AppliedRules[0].Name)
	assert.True(t, decimal.RequireFromString("100").Equal(line.AppliedRules[0].Before))
	assert.True(t, decimal.RequireFromString("80").Equal(line.AppliedRules[0].After))
	assert.Equal(t, "ten flat", line.AppliedRules[1].Name)
	assert.True(t, decimal.RequireFromString("70").Equal(line.AppliedRules[1].After))

	assert.True(t, decimal.RequireFromString("200").Equal(result.Subtotal))
	assert.True(t, decimal.RequireFromString("140").Equal(result.Total))
	assert.True(t, decimal.RequireFromString("60").Equal(result.TotalDiscount))
}

func TestEngine_PreviewPricing_ExclusiveHaltsLineOnly(t *testing.T) {
	shirt := testProduct("Shirt", "50.00", "apparel")
	mug := testProduct("Mug", "20.00", "kitchen")

	exclusive := testRule("exclusive apparel", 1, "percentage", "50", "apparel")
	exclusive.IsExclusive = true

	rules := []*rulemodel.DiscountRule{
		exclusive,
		testRule("never reaches shirt", 2, "percentage", "10", "apparel"),
		testRule("kitchen deal", 3, "percentage", "25", "kitchen"),
	}

	engine := newTestEngine([]*catalogmodel.Product{shirt, mug}, rules)

	result, err := engine.PreviewPricing(context.Background(), []model.LineItem{
		{ProductID: shirt.ID, Quantity: 1},
		{ProductID: mug.ID, Quantity: 1},
	}, testNow)
	require.NoError(t, err)
	require.Len(t, result.Lines, 2)

	// Exclusive halts the shirt's chain after itself.
	assert.True(t, decimal.RequireFromString("25").Equal(result.Lines[0].UnitPrice))
	require.Len(t, result.Lines[0].AppliedRules, 1)

	// The mug's chain is unaffected.
	assert.True(t, decimal.RequireFromString("15").Equal(result.Lines[1].UnitPrice))
}

func TestEngine_PreviewPricing_ClampsAtZero(t *testing.T) {
	cheap := testProduct("Sticker", "3.00", "sale")
	rules := []*rulemodel.DiscountRule{
		testRule("five off", 1, "fixed", "5", "sale"),
	}

	engine := newTestEngine([]*catalogmodel.Product{cheap}, rules)

	result, err := engine.PreviewPricing(context.Background(), []model.LineItem{
		{ProductID: cheap.ID, Quantity: 1},
	}, testNow)
	require.NoError(t, err)

	assert.True(t, result.Lines[0].UnitPrice.IsZero())
	assert.True(t, result.Lines[0].Total.IsZero())
	assert.True(t, decimal.RequireFromString("3").Equal(result.Lines[0].Discount))
}

func TestEngine_PreviewPricing_SkipsUnknownProducts(t *testing.T) {
	product := testProduct("Widget", "10.00")
	engine := newTestEngine([]*catalogmodel.Product{product}, nil)

	result, err := engine.PreviewPricing(context.Background(), []model.LineItem{
		{ProductID: product.ID, Quantity: 1},
		{ProductID: uuid.New(), Quantity: 3},
	}, testNow)
	require.NoError(t, err)

	require.Len(t, result.Lines, 1)
	assert.Equal(t, product.ID, result.Lines[0].ProductID)
}

func TestEngine_PreviewPricing_ScheduleRespectsExplicitNow(t *testing.T) {
	product := testProduct("Widget", "100.00", "sale")

	expired := testRule("last month", 1, "percentage", "50", "sale")
	expired.StartsAt = testNow.Add(-48 * time.Hour)
	expired.EndsAt = testNow.Add(-24 * time.Hour)

	engine := newTestEngine([]*catalogmodel.Product{product}, []*rulemodel.DiscountRule{expired})

	items := []model.LineItem{{ProductID: product.ID, Quantity: 1}}

	// Outside the window: no discount.
	result, err := engine.PreviewPricing(context.Background(), items, testNow)
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("100").Equal(result.Lines[0].UnitPrice))

	// Inside the window: discounted.
	result, err = engine.PreviewPricing(context.Background(), items, testNow.Add(-36*time.Hour))
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("50").Equal(result.Lines[0].UnitPrice))
}

func TestEngine_PreviewPricing_Deterministic(t *testing.T) {
	product := testProduct("Widget", "99.99", "sale")
	rules := []*rulemodel.DiscountRule{
		testRule("odd percent", 1, "percentage", "33", "sale"),
	}

	engine := newTestEngine([]*catalogmodel.Product{product}, rules)
	items := []model.LineItem{{ProductID: product.ID, Quantity: 3}}

	first, err := engine.PreviewPricing(context.Background(), items, testNow)
	require.NoError(t, err)
	second, err := engine.PreviewPricing(context.Background(), items, testNow)
	require.NoError(t, err)

	assert.True(t, first.Total.Equal(second.Total))
	assert.True(t, first.TotalDiscount.Equal(second.TotalDiscount))
	assert.Equal(t, len(first.Lines), len(second.Lines))
}
