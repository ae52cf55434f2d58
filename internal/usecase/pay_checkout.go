package usecase

import (
	"context"
	"fmt"

	domain "github.com/gdncomm-andi-r-djunaedi/training-project-2025-11-sub002/internal/entity"
	"github.com/gdncomm-andi-r-djunaedi/training-project-2025-11-sub002/internal/logging"
)

// PayCheckout confirms payment of a WAITING checkout. The conditional
// ClaimPaid update is what serializes pay against cancel and the expiry
// reconciler: exactly one of them wins the WAITING row, and only the winner
// performs its inventory effect. Reserved locks are committed line by line;
// a line whose commit fails is logged and left for reconciliation, the
// payment itself still stands.
func (s *CheckoutService) PayCheckout(ctx context.Context, checkoutID, userID string) (*domain.Checkout, error) {
	log := logging.FromCtx(ctx)

	c, err := s.getOwned(ctx, checkoutID, userID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	if c.EffectiveStatus(now) != domain.StatusWaiting {
		return nil, invalidStateErr(c, now)
	}
	if !c.HasReservedLines() {
		return nil, fmt.Errorf("%w: checkout %s", ErrNothingReserved, c.ID)
	}

	claimed, err := s.repo.ClaimPaid(ctx, c.ID, now)
	if err != nil {
		return nil, fmt.Errorf("claim paid: %w", err)
	}
	if !claimed {
		// Lost the race: reload and report what actually happened.
		fresh, gerr := s.repo.GetByID(ctx, c.ID)
		if gerr != nil {
			return nil, ErrInvalidState
		}
		return nil, invalidStateErr(fresh, now)
	}

	var commitFailures int
	for _, l := range c.ReservedLines() {
		if err := s.ledger.Commit(ctx, c.ID, l.Sku, l.SubSku, l.Quantity); err != nil {
			commitFailures++
			log.Error("stock commit failed",
				"checkout_id", c.ID, "sub_sku", l.SubSku, "quantity", l.Quantity, "error", err)
		}
	}

	c.Status = domain.StatusPaid
	c.PaidAt = &now
	c.TotalPrice = c.CalculateTotalPrice()

	if err := s.carts.Clear(ctx, userID); err != nil {
		log.Warn("cart clear after payment failed", "user_id", userID, "error", err)
	}

	s.cacheDrop(ctx, c.ID)
	s.publish(ctx, EventCheckoutPaid, c)

	log.Info("checkout paid",
		"checkout_id", c.ID, "order_id", c.OrderID,
		"total_price", c.TotalPrice, "commit_failures", commitFailures)
	return c, nil
}
