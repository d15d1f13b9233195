package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"pricing-engine/internal/domains/rule/model"
)

// ServiceInterface is the business-logic contract for discount rules.
type ServiceInterface interface {
	UpsertRule(ctx context.Context, req *model.UpsertRuleRequest) (*model.DiscountRule, error)
	GetRule(ctx context.Context, id uuid.UUID) (*model.DiscountRule, error)
	ListRules(ctx context.Context, filter *model.ListRulesFilter) ([]*model.DiscountRule, int, error)
	ToggleRuleActive(ctx context.Context, id uuid.UUID, isActive bool) (*model.DiscountRule, error)
	DeleteRule(ctx context.Context, id uuid.UUID) error

	// ActiveRulesAt returns the rules participating in pricing at the
	// given instant, sorted by priority ascending. Backed by the rule
	// cache; safe for unlimited concurrent readers.
	ActiveRulesAt(ctx context.Context, now time.Time) ([]*model.DiscountRule, error)

	// InvalidateCache drops the cached active-rule set. Called after
	// every rule mutation, including catalog apply/remove.
	InvalidateCache(ctx context.Context)
}
