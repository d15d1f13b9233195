package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"pricing-engine/internal/domains/promotion/model"
	"pricing-engine/internal/domains/promotion/repository"
	"pricing-engine/internal/shared/apperror"
)

type promoService struct {
	repo repository.PromoRepository
}

// NewPromoService creates a new service instance
func NewPromoService(repo repository.PromoRepository) ServiceInterface {
	return &promoService{repo: repo}
}

// UpsertPromo validates and persists a promo code. The code is
// canonicalized before storage so lookups stay case-insensitive.
func (s *promoService) UpsertPromo(ctx context.Context, req *model.UpsertPromoRequest) (*model.PromoCode, error) {
	if err := req.Validate(); err != nil {
		return nil, apperror.Validation(err.Error())
	}

	promo := req.ToPromo()

	// Updates must not resurrect archived promos or reset the
	// storage-owned usage counter; the upsert SQL leaves both alone,
	// but an update against a soft-deleted promo is still a conflict.
	if promo.ID != uuid.Nil {
		existing, err := s.repo.FindByID(ctx, promo.ID)
		if err == nil && existing.IsDeleted {
			return nil, apperror.Conflict("cannot update an archived promo code")
		}
	}

	if err := s.repo.Upsert(ctx, promo); err != nil {
		return nil, err
	}

	return promo, nil
}

func (s *promoService) GetPromo(ctx context.Context, id uuid.UUID) (*model.PromoCode, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *promoService) ListPromos(ctx context.Context, filter *model.ListPromosFilter) ([]*model.PromoCode, int, error) {
	return s.repo.List(ctx, filter)
}

// TogglePromoActive is the narrow single-field status update.
func (s *promoService) TogglePromoActive(ctx context.Context, id uuid.UUID, isActive bool) (*model.PromoCode, error) {
	if err := s.repo.ToggleActive(ctx, id, isActive); err != nil {
		return nil, err
	}

	return s.repo.FindByID(ctx, id)
}

// DeletePromo archives the promo. Redemption history survives for
// reporting.
func (s *promoService) DeletePromo(ctx context.Context, id uuid.UUID) error {
	return s.repo.SoftDelete(ctx, id)
}

// ResolveForCustomer is the read-side gate for preview and checkout.
// The per-customer and global limit checks here are optimistic; the
// conditional increment at checkout remains the authoritative global
// check.
func (s *promoService) ResolveForCustomer(ctx context.Context, code string, customerID uuid.UUID, now time.Time) (*model.PromoCode, error) {
	promo, err := s.repo.FindByCode(ctx, code)
	if err != nil {
		return nil, err
	}

	if !promo.IsActive {
		return nil, model.ErrPromoInactive
	}
	if now.Before(promo.StartsAt) {
		return nil, model.ErrPromoNotStarted
	}
	if now.After(promo.EndsAt) {
		return nil, model.ErrPromoExpired
	}
	if promo.HasReachedGlobalLimit() {
		return nil, model.ErrPromoUsageLimitReached
	}

	if promo.CustomerLimit != nil && customerID != uuid.Nil {
		used, err := s.repo.CountCustomerRedemptions(ctx, promo.ID, customerID)
		if err != nil {
			return nil, err
		}
		if used >= *promo.CustomerLimit {
			return nil, model.ErrPromoCustomerLimitReached
		}
	}

	return promo, nil
}

func (s *promoService) GetUsageStats(ctx context.Context, promoID uuid.UUID, from, to *time.Time) (*model.UsageStats, error) {
	if _, err := s.repo.FindByID(ctx, promoID); err != nil {
		return nil, err
	}
	return s.repo.GetUsageStats(ctx, promoID, from, to)
}
