package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"pricing-engine/internal/domains/promotion/model"
)

// ServiceInterface defines promo code business operations
type ServiceInterface interface {
	UpsertPromo(ctx context.Context, req *model.UpsertPromoRequest) (*model.PromoCode, error)
	GetPromo(ctx context.Context, id uuid.UUID) (*model.PromoCode, error)
	ListPromos(ctx context.Context, filter *model.ListPromosFilter) ([]*model.PromoCode, int, error)
	TogglePromoActive(ctx context.Context, id uuid.UUID, isActive bool) (*model.PromoCode, error)
	DeletePromo(ctx context.Context, id uuid.UUID) error

	// ResolveForCustomer validates a customer-supplied code against
	// schedule, status and usage limits at the given instant.
	ResolveForCustomer(ctx context.Context, code string, customerID uuid.UUID, now time.Time) (*model.PromoCode, error)

	GetUsageStats(ctx context.Context, promoID uuid.UUID, from, to *time.Time) (*model.UsageStats, error)
}
