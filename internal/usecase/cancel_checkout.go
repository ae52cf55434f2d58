package usecase

import (
	"context"
	"fmt"

	domain "github.com/gdncomm-andi-r-djunaedi/training-project-2025-11-sub002/internal/entity"
	"github.com/gdncomm-andi-r-djunaedi/training-project-2025-11-sub002/internal/logging"
)

// CancelCheckout voids a WAITING checkout and returns its stock locks to the
// ledger. Like pay, it claims the row first; only the claim winner releases
// stock, so a pay/cancel race can never double-apply inventory effects.
func (s *CheckoutService) CancelCheckout(ctx context.Context, checkoutID, userID, reason string) (*domain.Checkout, error) {
	log := logging.FromCtx(ctx)

	c, err := s.getOwned(ctx, checkoutID, userID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	if c.EffectiveStatus(now) != domain.StatusWaiting {
		return nil, invalidStateErr(c, now)
	}
	if reason == "" {
		reason = "cancelled by user"
	}

	claimed, err := s.repo.ClaimCancelled(ctx, c.ID, reason, now)
	if err != nil {
		return nil, fmt.Errorf("claim cancelled: %w", err)
	}
	if !claimed {
		fresh, gerr := s.repo.GetByID(ctx, c.ID)
		if gerr != nil {
			return nil, ErrInvalidState
		}
		return nil, invalidStateErr(fresh, now)
	}

	released := s.releaseReserved(ctx, c)
	if released {
		if err := s.repo.MarkStockReleased(ctx, c.ID); err != nil {
			log.Warn("mark stock released failed", "checkout_id", c.ID, "error", err)
		}
		c.StockReleased = true
	}

	c.Status = domain.StatusCancelled
	c.CancelledAt = &now
	c.CancelReason = reason

	s.cacheDrop(ctx, c.ID)
	s.publish(ctx, EventCheckoutCancelled, c)

	log.Info("checkout cancelled", "checkout_id", c.ID, "reason", reason)
	return c, nil
}

// releaseReserved returns every reserved line's lock to the ledger. Reports
// whether all releases succeeded; failed lines keep their lock records and
// are retried by the reconciler.
func (s *CheckoutService) releaseReserved(ctx context.Context, c *domain.Checkout) bool {
	log := logging.FromCtx(ctx)
	ok := true
	for _, l := range c.ReservedLines() {
		if err := s.ledger.Release(ctx, c.ID, l.Sku, l.SubSku, l.Quantity); err != nil {
			ok = false
			log.Error("stock release failed",
				"checkout_id", c.ID, "sub_sku", l.SubSku, "quantity", l.Quantity, "error", err)
		}
	}
	return ok
}
