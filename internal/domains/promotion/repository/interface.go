package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"pricing-engine/internal/domains/promotion/model"
)

// PromoRepository defines promo code data access
type PromoRepository interface {
	// Read operations
	FindByID(ctx context.Context, id uuid.UUID) (*model.PromoCode, error)
	FindByCode(ctx context.Context, code string) (*model.PromoCode, error)
	List(ctx context.Context, filter *model.ListPromosFilter) ([]*model.PromoCode, int, error)

	// Write operations
	Upsert(ctx context.Context, promo *model.PromoCode) error
	ToggleActive(ctx context.Context, id uuid.UUID, isActive bool) error
	SoftDelete(ctx context.Context, id uuid.UUID) error

	// Redemption operations. ConsumeUsage and RecordRedemption run
	// inside the checkout transaction.
	ConsumeUsage(ctx context.Context, tx pgx.Tx, id uuid.UUID) error
	RecordRedemption(ctx context.Context, tx pgx.Tx, redemption *model.PromoRedemption) error
	CountCustomerRedemptions(ctx context.Context, promoID, customerID uuid.UUID) (int, error)
	GetUsageStats(ctx context.Context, promoID uuid.UUID, from, to *time.Time) (*model.UsageStats, error)
}
