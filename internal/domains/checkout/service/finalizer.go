package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"pricing-engine/internal/domains/checkout/model"
	pricingservice "pricing-engine/internal/domains/pricing/service"
	promomodel "pricing-engine/internal/domains/promotion/model"
	"pricing-engine/pkg/logger"
)

// PromoAccountant is the slice of the promo repository the finalizer
// needs: the conditional usage increment and the redemption record,
// both inside the checkout transaction.
type PromoAccountant interface {
	ConsumeUsage(ctx context.Context, tx pgx.Tx, id uuid.UUID) error
	RecordRedemption(ctx context.Context, tx pgx.Tx, redemption *promomodel.PromoRedemption) error
}

// TxRunner executes fn inside a database transaction.
type TxRunner func(ctx context.Context, fn func(pgx.Tx) error) error

// Finalizer computes the authoritative order pricing at checkout and
// consumes promo usage. Order persistence itself is the caller's job,
// inside the same transaction.
type Finalizer struct {
	engine     *pricingservice.Engine
	applicator *pricingservice.Applicator
	promos     PromoAccountant
	runInTx    TxRunner
}

// NewFinalizer creates a finalizer instance. runInTx may be nil when
// callers drive FinalizeCheckout with their own transaction.
func NewFinalizer(engine *pricingservice.Engine, applicator *pricingservice.Applicator, promos PromoAccountant, runInTx TxRunner) *Finalizer {
	return &Finalizer{
		engine:     engine,
		applicator: applicator,
		promos:     promos,
		runInTx:    runInTx,
	}
}

// FinalizeCheckout recomputes pricing server-side inside the caller's
// transaction. When a promo code is present, the usage counter is
// advanced by one conditional increment; zero rows affected means the
// limit was consumed by a concurrent checkout and the whole
// transaction must abort, so the error is returned as-is.
func (f *Finalizer) FinalizeCheckout(ctx context.Context, tx pgx.Tx, order *model.CheckoutOrder, now time.Time) (*model.FinalizeResult, error) {
	if order.PromoCode == "" {
		pricing, err := f.engine.PreviewPricing(ctx, order.Items, now)
		if err != nil {
			return nil, err
		}
		return &model.FinalizeResult{Pricing: pricing}, nil
	}

	application, err := f.applicator.ApplyPromo(ctx, order.PromoCode, order.Items, order.CustomerID, now)
	if err != nil {
		return nil, err
	}

	if err := f.promos.ConsumeUsage(ctx, tx, application.PromoID); err != nil {
		return nil, err
	}

	redemption := &promomodel.PromoRedemption{
		PromoID:        application.PromoID,
		CustomerID:     order.CustomerID,
		OrderRef:       order.OrderRef,
		DiscountAmount: application.DiscountAmount,
		UsedAt:         now,
	}
	if err := f.promos.RecordRedemption(ctx, tx, redemption); err != nil {
		return nil, err
	}

	logger.Info("promo redeemed at checkout", map[string]interface{}{
		"promo_id":  application.PromoID.String(),
		"order_ref": order.OrderRef,
	})

	return &model.FinalizeResult{
		Pricing: application.Result,
		Promo:   application,
	}, nil
}

// Checkout wraps FinalizeCheckout in its own transaction for callers
// that have no surrounding one.
func (f *Finalizer) Checkout(ctx context.Context, order *model.CheckoutOrder, now time.Time) (*model.FinalizeResult, error) {
	var result *model.FinalizeResult
	err := f.runInTx(ctx, func(tx pgx.Tx) error {
		var err error
		result, err = f.FinalizeCheckout(ctx, tx, order, now)
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}
