package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"pricing-engine/internal/domains/rule/model"
	"pricing-engine/internal/domains/rule/repository"
	"pricing-engine/internal/shared/apperror"
	"pricing-engine/pkg/cache"
	"pricing-engine/pkg/logger"
)

const activeRulesCacheKey = "pricing:rules:active"

type ruleService struct {
	repo     repository.RuleRepository
	cache    cache.Cache
	cacheTTL time.Duration
}

// NewRuleService creates a new service instance. cache may be nil in
// tests; every cache failure degrades to a repository read.
func NewRuleService(repo repository.RuleRepository, c cache.Cache, cacheTTL time.Duration) ServiceInterface {
	return &ruleService{
		repo:     repo,
		cache:    c,
		cacheTTL: cacheTTL,
	}
}

// UpsertRule validates and persists a rule, then drops the rule cache.
func (s *ruleService) UpsertRule(ctx context.Context, req *model.UpsertRuleRequest) (*model.DiscountRule, error) {
	if err := req.Validate(); err != nil {
		return nil, apperror.Validation(err.Error())
	}

	rule := req.ToRule()

	// Updates must not resurrect archived rules or clobber the
	// mutator-owned in_use flag; the upsert SQL leaves both alone, but
	// an update against a soft-deleted rule is still a conflict.
	if rule.ID != uuid.Nil {
		existing, err := s.repo.FindByID(ctx, rule.ID)
		if err == nil && existing.IsDeleted {
			return nil, apperror.Conflict("cannot update an archived rule")
		}
	}

	if err := s.repo.Upsert(ctx, rule); err != nil {
		return nil, err
	}

	s.InvalidateCache(ctx)

	return rule, nil
}

func (s *ruleService) GetRule(ctx context.Context, id uuid.UUID) (*model.DiscountRule, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *ruleService) ListRules(ctx context.Context, filter *model.ListRulesFilter) ([]*model.DiscountRule, int, error) {
	return s.repo.List(ctx, filter)
}

// ToggleRuleActive is the narrow single-field status update.
func (s *ruleService) ToggleRuleActive(ctx context.Context, id uuid.UUID, isActive bool) (*model.DiscountRule, error) {
	if err := s.repo.ToggleActive(ctx, id, isActive); err != nil {
		return nil, err
	}

	s.InvalidateCache(ctx)

	return s.repo.FindByID(ctx, id)
}

// DeleteRule soft-deletes a rule. A rule still baked into the catalog
// must be removed from it first.
func (s *ruleService) DeleteRule(ctx context.Context, id uuid.UUID) error {
	rule, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}

	if rule.InUse {
		return model.ErrRuleInUse
	}

	if err := s.repo.SoftDelete(ctx, id); err != nil {
		return err
	}

	s.InvalidateCache(ctx)
	return nil
}

// ActiveRulesAt serves the pricing engine. The full active set is
// cached; the schedule window is filtered in memory against the
// caller's explicit timestamp so identical inputs always produce
// identical rule sets.
func (s *ruleService) ActiveRulesAt(ctx context.Context, now time.Time) ([]*model.DiscountRule, error) {
	rules, err := s.activeRules(ctx)
	if err != nil {
		return nil, err
	}

	scheduled := make([]*model.DiscountRule, 0, len(rules))
	for _, r := range rules {
		if r.IsScheduledAt(now) {
			scheduled = append(scheduled, r)
		}
	}

	return scheduled, nil
}

func (s *ruleService) activeRules(ctx context.Context) ([]*model.DiscountRule, error) {
	if s.cache != nil {
		var cached []*model.DiscountRule
		found, err := s.cache.Get(ctx, activeRulesCacheKey, &cached)
		if err != nil {
			logger.Warn("rule cache read failed", map[string]interface{}{"error": err.Error()})
		} else if found {
			return cached, nil
		}
	}

	rules, err := s.repo.FindActive(ctx)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, activeRulesCacheKey, rules, s.cacheTTL); err != nil {
			logger.Warn("rule cache write failed", map[string]interface{}{"error": err.Error()})
		}
	}

	return rules, nil
}

func (s *ruleService) InvalidateCache(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, activeRulesCacheKey); err != nil {
		logger.Warn("rule cache invalidation failed", map[string]interface{}{"error": err.Error()})
	}
}
