package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	catalogmodel "pricing-engine/internal/domains/catalog/model"
	"pricing-engine/internal/domains/checkout/model"
	pricingmodel "pricing-engine/internal/domains/pricing/model"
	pricingservice "pricing-engine/internal/domains/pricing/service"
	promomodel "pricing-engine/internal/domains/promotion/model"
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

type ruleSourceFunc func(context.Context, time.Time) ([]*rulemodel.DiscountRule, error)

func (f ruleSourceFunc) ActiveRulesAt(ctx context.Context, now time.Time) ([]*rulemodel.DiscountRule, error) {
	if f == nil {
		return nil, nil
	}
	return f(ctx, now)
}

type stubResolver struct {
	promo *promomodel.PromoCode
}

func (s *stubResolver) ResolveForCustomer(context.Context, string, uuid.UUID, time.Time) (*promomodel.PromoCode, error) {
	return s.promo, nil
}

// mockAccountant enforces a usage limit the way the conditional
// increment in SQL does: atomically, first-come-first-served.
type mockAccountant struct {
	mu          sync.Mutex
	limit       int
	used        int
	redemptions []*promomodel.PromoRedemption
}

func (m *mockAccountant) ConsumeUsage(_ context.Context, _ pgx.Tx, _ uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.used >= m.limit {
		return promomodel.ErrPromoUsageLimitReached
	}
	m.used++
	return nil
}

func (m *mockAccountant) RecordRedemption(_ context.Context, _ pgx.Tx, r *promomodel.PromoRedemption) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.redemptions = append(m.redemptions, r)
	return nil
}

func testSetup(limit int) (*Finalizer, *mockAccountant, *catalogmodel.Product) {
	product := &catalogmodel.Product{
		ID:        uuid.New(),
		Name:      "Widget",
		BasePrice: decimal.RequireFromString("100.00"),
		Tags:      []string{"sale"},
		Stock:     10,
	}

	promo := &promomodel.PromoCode{
		ID:            uuid.New(),
		Code:          "SAVE",
		Name:          "Save",
		DiscountType:  "fixed",
		DiscountValue: decimal.RequireFromString("10"),
		Targeting:     targeting.Targeting{Tags: []string{"sale"}},
		StartsAt:      testNow.Add(-time.Hour),
		EndsAt:        testNow.Add(time.Hour),
		IsActive:      true,
	}

	engine := pricingservice.NewEngine(&stubProducts{products: []*catalogmodel.Product{product}}, ruleSourceFunc(nil))
	applicator := pricingservice.NewApplicator(engine, &stubResolver{promo: promo})
	accountant := &mockAccountant{limit: limit}

	return NewFinalizer(engine, applicator, accountant, nil), accountant, product
}

func TestFinalizer_NoPromo(t *testing.T) {
	finalizer, accountant, product := testSetup(1)

	order := &model.CheckoutOrder{
		Items:    []pricingmodel.LineItem{{ProductID: product.ID, Quantity: 2}},
		OrderRef: "ORD-1",
	}

	result, err := finalizer.FinalizeCheckout(context.Background(), nil, order, testNow)
	require.NoError(t, err)

	assert.Nil(t, result.Promo)
	assert.True(t, decimal.RequireFromString("200").Equal(result.Pricing.Total))
	assert.Zero(t, accountant.used)
}

func TestFinalizer_WithPromo(t *testing.T) {
	finalizer, accountant, product := testSetup(5)
	customerID := uuid.New()

	order := &model.CheckoutOrder{
		Items:      []pricingmodel.LineItem{{ProductID: product.ID, Quantity: 1}},
		PromoCode:  "SAVE",
		CustomerID: customerID,
		OrderRef:   "ORD-2",
	}

	result, err := finalizer.FinalizeCheckout(context.Background(), nil, order, testNow)
	require.NoError(t, err)

	require.NotNil(t, result.Promo)
	assert.True(t, decimal.RequireFromString("90").Equal(result.Pricing.Total))
	assert.Equal(t, 1, accountant.used)

	require.Len(t, accountant.redemptions, 1)
	redemption := accountant.redemptions[0]
	assert.Equal(t, customerID, redemption.CustomerID)
	assert.Equal(t, "ORD-2", redemption.OrderRef)
	assert.True(t, decimal.RequireFromString("10").Equal(redemption.DiscountAmount))
	assert.Equal(t, testNow, redemption.UsedAt)
}

func TestFinalizer_ConcurrentCheckoutsRespectGlobalLimit(t *testing.T) {
	const workers = 16

	finalizer, accountant, product := testSetup(1)

	var wg sync.WaitGroup
	errs := make([]error, workers)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			order := &model.CheckoutOrder{
				Items:      []pricingmodel.LineItem{{ProductID: product.ID, Quantity: 1}},
				PromoCode:  "SAVE",
				CustomerID: uuid.New(),
				OrderRef:   "ORD-C",
			}
			_, errs[i] = finalizer.FinalizeCheckout(context.Background(), nil, order, testNow)
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
		} else {
			assert.ErrorIs(t, err, promomodel.ErrPromoUsageLimitReached)
		}
	}

	assert.Equal(t, 1, succeeded)
	assert.Equal(t, 1, accountant.used)
	assert.Len(t, accountant.redemptions, 1)
}
