package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	catalogmodel "pricing-engine/internal/domains/catalog/model"
	promomodel "pricing-engine/internal/domains/promotion/model"
	rulemodel "pricing-engine/internal/domains/rule/model"
)

// ProductReader is the slice of the catalog repository the engine
// needs: load products by id, silently dropping unknown ids.
type ProductReader interface {
	GetByIDs(ctx context.Context, ids []uuid.UUID) ([]*catalogmodel.Product, error)
}

// RuleSource serves the active rule set for an explicit instant,
// sorted by priority ascending.
type RuleSource interface {
	ActiveRulesAt(ctx context.Context, now time.Time) ([]*rulemodel.DiscountRule, error)
}

// PromoResolver validates a customer-supplied code against schedule,
// status and usage limits.
type PromoResolver interface {
	ResolveForCustomer(ctx context.Context, code string, customerID uuid.UUID, now time.Time) (*promomodel.PromoCode, error)
}
