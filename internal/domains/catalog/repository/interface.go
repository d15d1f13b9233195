package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"pricing-engine/internal/domains/catalog/model"
	"pricing-engine/internal/shared/targeting"
)

// CatalogRepository defines product and audit-trail data access. Every
// price mutation takes a pgx.Tx so the mutator's apply/remove flows
// cannot run outside a transaction.
type CatalogRepository interface {
	// Read operations
	GetByIDs(ctx context.Context, ids []uuid.UUID) ([]*model.Product, error)
	FindMatching(ctx context.Context, t targeting.Targeting, b targeting.Bounds) ([]*model.Product, error)
	FindActiveByRule(ctx context.Context, ruleID uuid.UUID) ([]*model.AppliedDiscount, error)

	// Price mutations (transactional)
	ApplyDiscountPrices(ctx context.Context, tx pgx.Tx, productIDs []uuid.UUID, discountType string, value decimal.Decimal) error
	RestoreBasePrices(ctx context.Context, tx pgx.Tx, productIDs []uuid.UUID) error

	// Audit trail (transactional)
	InsertApplied(ctx context.Context, tx pgx.Tx, ruleID uuid.UUID, productIDs []uuid.UUID, appliedAt time.Time) error
	DeactivateByRule(ctx context.Context, tx pgx.Tx, ruleID uuid.UUID, removedAt time.Time) error
}
