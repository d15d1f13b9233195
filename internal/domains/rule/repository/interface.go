package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"pricing-engine/internal/domains/rule/model"
)

// RuleRepository is the data access contract for discount rules.
type RuleRepository interface {
	// Upsert creates the rule, or updates it when a rule with the same
	// id exists. The storage-owned in_use flag is never written here.
	Upsert(ctx context.Context, rule *model.DiscountRule) error

	FindByID(ctx context.Context, id uuid.UUID) (*model.DiscountRule, error)

	// List returns a page of rules plus the total count.
	List(ctx context.Context, filter *model.ListRulesFilter) ([]*model.DiscountRule, int, error)

	// FindActive returns every active, non-deleted rule sorted by
	// priority ascending, regardless of schedule. Schedule filtering is
	// done by the caller against an explicit timestamp.
	FindActive(ctx context.Context) ([]*model.DiscountRule, error)

	// FindActiveScheduled returns active rules whose schedule window
	// contains now, sorted by priority ascending.
	FindActiveScheduled(ctx context.Context, now time.Time) ([]*model.DiscountRule, error)

	ToggleActive(ctx context.Context, id uuid.UUID, isActive bool) error

	SoftDelete(ctx context.Context, id uuid.UUID) error

	// SetInUse flips the catalog-application flag inside the caller's
	// transaction. Only the catalog mutator calls this.
	SetInUse(ctx context.Context, tx pgx.Tx, id uuid.UUID, inUse bool) error
}
