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

	"pricing-engine/internal/domains/catalog/model"
	rulemodel "pricing-engine/internal/domains/rule/model"
	"pricing-engine/internal/shared/targeting"
)

type mockCatalogRepo struct {
	matching []*model.Product
	applied  []*model.AppliedDiscount

	appliedPrices  []uuid.UUID
	restoredPrices []uuid.UUID
	insertedAudit  []uuid.UUID
	deactivated    bool
}

func (m *mockCatalogRepo) GetByIDs(context.Context, []uuid.UUID) ([]*model.Product, error) {
	return nil, nil
}

func (m *mockCatalogRepo) FindMatching(context.Context, targeting.Targeting, targeting.Bounds) ([]*model.Product, error) {
	return m.matching, nil
}

func (m *mockCatalogRepo) FindActiveByRule(context.Context, uuid.UUID) ([]*model.AppliedDiscount, error) {
	return m.applied, nil
}

func (m *mockCatalogRepo) ApplyDiscountPrices(_ context.Context, _ pgx.Tx, ids []uuid.UUID, _ string, _ decimal.Decimal) error {
	m.appliedPrices = ids
	return nil
}

func (m *mockCatalogRepo) RestoreBasePrices(_ context.Context, _ pgx.Tx, ids []uuid.UUID) error {
	m.restoredPrices = ids
	return nil
}

func (m *mockCatalogRepo) InsertApplied(_ context.Context, _ pgx.Tx, _ uuid.UUID, ids []uuid.UUID, _ time.Time) error {
	m.insertedAudit = ids
	return nil
}

func (m *mockCatalogRepo) DeactivateByRule(context.Context, pgx.Tx, uuid.UUID, time.Time) error {
	m.deactivated = true
	return nil
}

type mockRuleStore struct {
	rule       *rulemodel.DiscountRule
	inUseCalls []bool
}

func (m *mockRuleStore) FindByID(_ context.Context, id uuid.UUID) (*rulemodel.DiscountRule, error) {
	if m.rule == nil || m.rule.ID != id {
		return nil, rulemodel.ErrRuleNotFound
	}
	return m.rule, nil
}

func (m *mockRuleStore) SetInUse(_ context.Context, _ pgx.Tx, _ uuid.UUID, inUse bool) error {
	if m.rule.InUse == inUse {
		if inUse {
			return rulemodel.ErrRuleAlreadyApplied
		}
		return rulemodel.ErrRuleNotApplied
	}
	m.rule.InUse = inUse
	m.inUseCalls = append(m.inUseCalls, inUse)
	return nil
}

func passthroughTx(ctx context.Context, fn func(pgx.Tx) error) error {
	return fn(nil)
}

func activeRule() *rulemodel.DiscountRule {
	return &rulemodel.DiscountRule{
		ID:            uuid.New(),
		Name:          "Summer Sale",
		DiscountType:  "percentage",
		DiscountValue: decimal.NewFromInt(20),
		Targeting:     targeting.Targeting{Tags: []string{"summer"}},
		IsActive:      true,
	}
}

func catalogProducts(n int) []*model.Product {
	out := make([]*model.Product, n)
	for i := range out {
		out[i] = &model.Product{
			ID:        uuid.New(),
			BasePrice: decimal.NewFromInt(100),
			Tags:      []string{"summer"},
		}
	}
	return out
}

func TestMutator_ApplyToCatalog(t *testing.T) {
	rule := activeRule()
	catalog := &mockCatalogRepo{matching: catalogProducts(3)}
	rules := &mockRuleStore{rule: rule}

	mutator := NewMutatorService(catalog, rules, nil, passthroughTx)

	result, err := mutator.ApplyToCatalog(context.Background(), rule.ID)
	require.NoError(t, err)

	assert.False(t, result.NoMatch)
	assert.Len(t, result.ProductIDs, 3)
	assert.Equal(t, result.ProductIDs, catalog.appliedPrices)
	assert.Equal(t, result.ProductIDs, catalog.insertedAudit)
	assert.True(t, rule.InUse)
}

func TestMutator_ApplyToCatalog_Gates(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*rulemodel.DiscountRule)
		wantErr error
	}{
		{"deleted rule", func(r *rulemodel.DiscountRule) { r.IsDeleted = true }, rulemodel.ErrRuleNotFound},
		{"inactive rule", func(r *rulemodel.DiscountRule) { r.IsActive = false }, rulemodel.ErrRuleInactive},
		{"already applied", func(r *rulemodel.DiscountRule) { r.InUse = true }, rulemodel.ErrRuleAlreadyApplied},
		{"no targets", func(r *rulemodel.DiscountRule) { r.Targeting = targeting.Targeting{} }, rulemodel.ErrRuleNoTargets},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rule := activeRule()
			tt.mutate(rule)

			catalog := &mockCatalogRepo{matching: catalogProducts(1)}
			mutator := NewMutatorService(catalog, &mockRuleStore{rule: rule}, nil, passthroughTx)

			_, err := mutator.ApplyToCatalog(context.Background(), rule.ID)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Nil(t, catalog.appliedPrices)
		})
	}
}

func TestMutator_ApplyToCatalog_NoMatchIsNotAnError(t *testing.T) {
	rule := activeRule()
	catalog := &mockCatalogRepo{}
	mutator := NewMutatorService(catalog, &mockRuleStore{rule: rule}, nil, passthroughTx)

	result, err := mutator.ApplyToCatalog(context.Background(), rule.ID)
	require.NoError(t, err)

	assert.True(t, result.NoMatch)
	assert.False(t, rule.InUse, "a no-match apply must not claim the rule")
	assert.Nil(t, catalog.appliedPrices)
	assert.Nil(t, catalog.insertedAudit)
}

func TestMutator_RemoveFromCatalog_RestoresAuditedProductsOnly(t *testing.T) {
	rule := activeRule()
	rule.InUse = true

	// The rule's targeting was edited after application; removal must
	// restore the audited products, not re-run the matcher.
	rule.Targeting = targeting.Targeting{Tags: []string{"winter"}}

	auditedIDs := []uuid.UUID{uuid.New(), uuid.New()}
	applied := make([]*model.AppliedDiscount, len(auditedIDs))
	for i, id := range auditedIDs {
		applied[i] = &model.AppliedDiscount{
			ID:        uuid.New(),
			RuleID:    rule.ID,
			ProductID: id,
			IsActive:  true,
		}
	}

	catalog := &mockCatalogRepo{applied: applied}
	mutator := NewMutatorService(catalog, &mockRuleStore{rule: rule}, nil, passthroughTx)

	result, err := mutator.RemoveFromCatalog(context.Background(), rule.ID)
	require.NoError(t, err)

	assert.False(t, result.NoActiveApplications)
	assert.Equal(t, auditedIDs, catalog.restoredPrices)
	assert.True(t, catalog.deactivated)
	assert.False(t, rule.InUse)
	assert.True(t, rule.IsActive, "removal must not touch is_active")
}

func TestMutator_RemoveFromCatalog_NoActiveApplications(t *testing.T) {
	rule := activeRule()
	catalog := &mockCatalogRepo{}
	mutator := NewMutatorService(catalog, &mockRuleStore{rule: rule}, nil, passthroughTx)

	result, err := mutator.RemoveFromCatalog(context.Background(), rule.ID)
	require.NoError(t, err)

	assert.True(t, result.NoActiveApplications)
	assert.Nil(t, catalog.restoredPrices)
}

func TestMutator_RemoveFromCatalog_UnknownRule(t *testing.T) {
	mutator := NewMutatorService(&mockCatalogRepo{}, &mockRuleStore{}, nil, passthroughTx)

	_, err := mutator.RemoveFromCatalog(context.Background(), uuid.New())
	assert.ErrorIs(t, err, rulemodel.ErrRuleNotFound)
}
