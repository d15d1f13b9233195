package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"pricing-engine/internal/domains/catalog/model"
	"pricing-engine/internal/domains/catalog/repository"
	rulemodel "pricing-engine/internal/domains/rule/model"
	"pricing-engine/pkg/logger"
)

// mutatorService bakes rule discounts into stored product prices and
// reverses them. It is the only writer of product final/sale prices
// and the only owner of the rule in_use flag.
type mutatorService struct {
	catalog     repository.CatalogRepository
	rules       RuleStore
	invalidator CacheInvalidator
	runInTx     TxRunner
}

// NewMutatorService creates a new service instance. invalidator may be
// nil in tests.
func NewMutatorService(catalog repository.CatalogRepository, rules RuleStore, invalidator CacheInvalidator, runInTx TxRunner) ServiceInterface {
	return &mutatorService{
		catalog:     catalog,
		rules:       rules,
		invalidator: invalidator,
		runInTx:     runInTx,
	}
}

// ApplyToCatalog stamps a rule's discount into the stored prices of
// every matching product, records one audit row per product, and
// claims the rule via in_use. A rule with no matching products is a
// documented no-op: nothing is written and the rule stays unclaimed.
func (s *mutatorService) ApplyToCatalog(ctx context.Context, ruleID uuid.UUID) (*model.ApplyResult, error) {
	rule, err := s.rules.FindByID(ctx, ruleID)
	if err != nil {
		return nil, err
	}

	if rule.IsDeleted {
		return nil, rulemodel.ErrRuleNotFound
	}
	if !rule.IsActive {
		return nil, rulemodel.ErrRuleInactive
	}
	if rule.InUse {
		return nil, rulemodel.ErrRuleAlreadyApplied
	}
	if rule.Targeting.IsEmpty() {
		return nil, rulemodel.ErrRuleNoTargets
	}

	products, err := s.catalog.FindMatching(ctx, rule.Targeting, rule.Bounds)
	if err != nil {
		return nil, err
	}

	if len(products) == 0 {
		return &model.ApplyResult{RuleID: ruleID, NoMatch: true}, nil
	}

	productIDs := make([]uuid.UUID, len(products))
	for i, p := range products {
		productIDs[i] = p.ID
	}

	appliedAt := time.Now().UTC()

	err = s.runInTx(ctx, func(tx pgx.Tx) error {
		// The in_use guard runs first: a concurrent applier loses
		// here before any price is touched.
		if err := s.rules.SetInUse(ctx, tx, ruleID, true); err != nil {
			return err
		}
		if err := s.catalog.ApplyDiscountPrices(ctx, tx, productIDs, rule.DiscountType, rule.DiscountValue); err != nil {
			return err
		}
		return s.catalog.InsertApplied(ctx, tx, ruleID, productIDs, appliedAt)
	})
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx)

	logger.Info("rule applied to catalog", map[string]interface{}{
		"rule_id":  ruleID.String(),
		"products": len(productIDs),
	})

	return &model.ApplyResult{
		RuleID:     ruleID,
		ProductIDs: productIDs,
		AppliedAt:  appliedAt,
	}, nil
}

// RemoveFromCatalog restores base prices for exactly the products in
// the rule's active audit rows. The matcher is never re-run, so edits
// to the rule's targeting after application cannot strand discounted
// prices. Only in_use is reset; the operator-controlled is_active flag
// is untouched.
func (s *mutatorService) RemoveFromCatalog(ctx context.Context, ruleID uuid.UUID) (*model.RemoveResult, error) {
	rule, err := s.rules.FindByID(ctx, ruleID)
	if err != nil {
		return nil, err
	}

	applied, err := s.catalog.FindActiveByRule(ctx, ruleID)
	if err != nil {
		return nil, err
	}

	if len(applied) == 0 {
		return &model.RemoveResult{RuleID: ruleID, NoActiveApplications: true}, nil
	}

	productIDs := make([]uuid.UUID, len(applied))
	for i, a := range applied {
		productIDs[i] = a.ProductID
	}

	removedAt := time.Now().UTC()

	err = s.runInTx(ctx, func(tx pgx.Tx) error {
		if err := s.catalog.RestoreBasePrices(ctx, tx, productIDs); err != nil {
			return err
		}
		if err := s.catalog.DeactivateByRule(ctx, tx, ruleID, removedAt); err != nil {
			return err
		}
		// Audit rows can outlive the flag if a past removal was
		// interrupted; restoring is still correct, so only flip
		// in_use when it is actually set.
		if rule.InUse {
			return s.rules.SetInUse(ctx, tx, ruleID, false)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx)

	logger.Info("rule removed from catalog", map[string]interface{}{
		"rule_id":  ruleID.String(),
		"products": len(productIDs),
	})

	return &model.RemoveResult{
		RuleID:     ruleID,
		ProductIDs: productIDs,
		RemovedAt:  removedAt,
	}, nil
}

func (s *mutatorService) invalidate(ctx context.Context) {
	if s.invalidator != nil {
		s.invalidator.InvalidateCache(ctx)
	}
}
