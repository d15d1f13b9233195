package model

import (
	"time"

	"github.com/google/uuid"
)

// AppliedDiscount is the audit trail of catalog price mutations: one
// row per (rule, product) application. Reversal restores exactly the
// products recorded here and never re-runs the matcher, so later edits
// to the rule's targeting cannot strand discounted prices.
type AppliedDiscount struct {
	ID        uuid.UUID  `json:"id" db:"id"`
	RuleID    uuid.UUID  `json:"rule_id" db:"rule_id"`
	ProductID uuid.UUID  `json:"product_id" db:"product_id"`
	AppliedAt time.Time  `json:"applied_at" db:"applied_at"`
	IsActive  bool       `json:"is_active" db:"is_active"`
	RemovedAt *time.Time `json:"removed_at,omitempty" db:"removed_at"`
}

// ApplyResult reports a catalog application. NoMatch is the documented
// non-error outcome when the rule's targeting matches nothing: the rule
// is left untouched and no prices change.
type ApplyResult struct {
	RuleID     uuid.UUID   `json:"rule_id"`
	NoMatch    bool        `json:"no_match"`
	ProductIDs []uuid.UUID `json:"product_ids,omitempty"`
	AppliedAt  time.Time   `json:"applied_at"`
}

// RemoveResult reports a catalog reversal. NoActiveApplications is the
// non-error outcome when the rule has no active audit rows.
type RemoveResult struct {
	RuleID               uuid.UUID   `json:"rule_id"`
	NoActiveApplications bool        `json:"no_active_applications"`
	ProductIDs           []uuid.UUID `json:"product_ids,omitempty"`
	RemovedAt            time.Time   `json:"removed_at"`
}
