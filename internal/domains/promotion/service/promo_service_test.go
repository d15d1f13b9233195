package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pricing-engine/internal/domains/promotion/model"
)

var testNow = time.Date(2026, 7, 15, 12, 0, 0, 0, time.UTC)

type mockPromoRepo struct {
	promos        map[string]*model.PromoCode
	customerUses  int
	upserted      *model.PromoCode
	softDeletedID uuid.UUID
}

func newMockPromoRepo(promos ...*model.PromoCode) *mockPromoRepo {
	m := &mockPromoRepo{promos: make(map[string]*model.PromoCode)}
	for _, p := range promos {
		m.promos[p.Code] = p
	}
	return m
}

func (m *mockPromoRepo) FindByID(_ context.Context, id uuid.UUID) (*model.PromoCode, error) {
	for _, p := range m.promos {
		if p.ID == id {
			return p, nil
		}
	}
	return nil, model.ErrPromoNotFound
}

func (m *mockPromoRepo) FindByCode(_ context.Context, code string) (*model.PromoCode, error) {
	if p, ok := m.promos[model.NormalizeCode(code)]; ok {
		return p, nil
	}
	return nil, model.ErrPromoNotFound
}

func (m *mockPromoRepo) List(context.Context, *model.ListPromosFilter) ([]*model.PromoCode, int, error) {
	return nil, 0, nil
}

func (m *mockPromoRepo) Upsert(_ context.Context, p *model.PromoCode) error {
	m.upserted = p
	return nil
}

func (m *mockPromoRepo) ToggleActive(context.Context, uuid.UUID, bool) error { return nil }

func (m *mockPromoRepo) SoftDelete(_ context.Context, id uuid.UUID) error {
	m.softDeletedID = id
	return nil
}

func (m *mockPromoRepo) ConsumeUsage(context.Context, pgx.Tx, uuid.UUID) error { return nil }

func (m *mockPromoRepo) RecordRedemption(context.Context, pgx.Tx, *model.PromoRedemption) error {
	return nil
}

func (m *mockPromoRepo) CountCustomerRedemptions(context.Context, uuid.UUID, uuid.UUID) (int, error) {
	return m.customerUses, nil
}

func (m *mockPromoRepo) GetUsageStats(context.Context, uuid.UUID, *time.Time, *time.Time) (*model.UsageStats, error) {
	return &model.UsageStats{}, nil
}

func schedulablePromo() *model.PromoCode {
	return &model.PromoCode{
		ID:            uuid.New(),
		Code:          "SUMMER20",
		Name:          "Summer",
		DiscountType:  "percentage",
		DiscountValue: decimal.NewFromInt(20),
		StartsAt:      testNow.Add(-time.Hour),
		EndsAt:        testNow.Add(time.Hour),
		IsActive:      true,
	}
}

func TestPromoService_ResolveForCustomer(t *testing.T) {
	intPtr := func(v int) *int { return &v }

	tests := []struct {
		name         string
		mutate       func(*model.PromoCode)
		customerUses int
		wantErr      error
	}{
		{"valid", func(p *model.PromoCode) {}, 0, nil},
		{"inactive", func(p *model.PromoCode) { p.IsActive = false }, 0, model.ErrPromoInactive},
		{"not started", func(p *model.PromoCode) { p.StartsAt = testNow.Add(time.Minute) }, 0, model.ErrPromoNotStarted},
		{"expired", func(p *model.PromoCode) { p.EndsAt = testNow.Add(-time.Minute) }, 0, model.ErrPromoExpired},
		{"global limit reached", func(p *model.PromoCode) {
			p.GlobalUsageLimit = intPtr(3)
			p.UsedCount = 3
		}, 0, model.ErrPromoUsageLimitReached},
		{"customer limit reached", func(p *model.PromoCode) {
			p.CustomerLimit = intPtr(2)
		}, 2, model.ErrPromoCustomerLimitReached},
		{"customer under limit", func(p *model.PromoCode) {
			p.CustomerLimit = intPtr(2)
		}, 1, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			promo := schedulablePromo()
			tt.mutate(promo)

			repo := newMockPromoRepo(promo)
			repo.customerUses = tt.customerUses
			svc := NewPromoService(repo)

			got, err := svc.ResolveForCustomer(context.Background(), "summer20", uuid.New(), testNow)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, promo.ID, got.ID)
		})
	}
}

func TestPromoService_ResolveForCustomer_CaseInsensitive(t *testing.T) {
	promo := schedulablePromo()
	svc := NewPromoService(newMockPromoRepo(promo))

	got, err := svc.ResolveForCustomer(context.Background(), "  Summer20 ", uuid.Nil, testNow)
	require.NoError(t, err)
	assert.Equal(t, "SUMMER20", got.Code)
}

func TestPromoService_ResolveForCustomer_UnknownCode(t *testing.T) {
	svc := NewPromoService(newMockPromoRepo())

	_, err := svc.ResolveForCustomer(context.Background(), "NOPE", uuid.Nil, testNow)
	assert.ErrorIs(t, err, model.ErrPromoNotFound)
}

func TestPromoService_UpsertPromo_CanonicalizesCode(t *testing.T) {
	repo := newMockPromoRepo()
	svc := NewPromoService(repo)

	promo, err := svc.UpsertPromo(context.Background(), &model.UpsertPromoRequest{
		Code:          " summer20 ",
		Name:          "Summer",
		DiscountType:  "percentage",
		DiscountValue: decimal.NewFromInt(20),
		StartsAt:      testNow,
		EndsAt:        testNow.Add(time.Hour),
		IsActive:      true,
	})
	require.NoError(t, err)

	assert.Equal(t, "SUMMER20", promo.Code)
	assert.Equal(t, promo, repo.upserted)
}

func TestPromoService_UpsertPromo_ValidationFailures(t *testing.T) {
	svc := NewPromoService(newMockPromoRepo())

	base := model.UpsertPromoRequest{
		Code:          "SAVE",
		Name:          "Save",
		DiscountType:  "percentage",
		DiscountValue: decimal.NewFromInt(20),
		StartsAt:      testNow,
		EndsAt:        testNow.Add(time.Hour),
	}

	t.Run("percentage above 100", func(t *testing.T) {
		req := base
		req.DiscountValue = decimal.NewFromInt(150)
		_, err := svc.UpsertPromo(context.Background(), &req)
		assert.Error(t, err)
	})

	t.Run("zero usage limit", func(t *testing.T) {
		req := base
		zero := 0
		req.GlobalUsageLimit = &zero
		_, err := svc.UpsertPromo(context.Background(), &req)
		assert.Error(t, err)
	})

	t.Run("negative min order", func(t *testing.T) {
		req := base
		neg := decimal.NewFromInt(-1)
		req.MinOrderValue = &neg
		_, err := svc.UpsertPromo(context.Background(), &req)
		assert.Error(t, err)
	})
}
