package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"pricing-engine/internal/domains/catalog/model"
	rulemodel "pricing-engine/internal/domains/rule/model"
)

// ServiceInterface defines the catalog mutation operations
type ServiceInterface interface {
	ApplyToCatalog(ctx context.Context, ruleID uuid.UUID) (*model.ApplyResult, error)
	RemoveFromCatalog(ctx context.Context, ruleID uuid.UUID) (*model.RemoveResult, error)
}

// RuleStore is the slice of the rule repository the mutator needs.
type RuleStore interface {
	FindByID(ctx context.Context, id uuid.UUID) (*rulemodel.DiscountRule, error)
	SetInUse(ctx context.Context, tx pgx.Tx, id uuid.UUID, inUse bool) error
}

// CacheInvalidator drops the cached active-rule set after a catalog
// transition so the pricing engine sees the new in_use state.
type CacheInvalidator interface {
	InvalidateCache(ctx context.Context)
}

// TxRunner executes fn inside a database transaction. Production wires
// database.WithTransaction over the pool; tests substitute a passthrough.
type TxRunner func(ctx context.Context, fn func(pgx.Tx) error) error
