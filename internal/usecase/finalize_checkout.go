package usecase

import (
	"context"
	"fmt"

	domain "github.com/gdncomm-andi-r-djunaedi/training-project-2025-11-sub002/internal/entity"
	"github.com/gdncomm-andi-r-djunaedi/training-project-2025-11-sub002/internal/logging"
)

// FinalizeInput carries the shipping choice: exactly one of AddressID (a
// saved address resolved through the address book) or NewAddress (an inline
// snapshot) must be set.
type FinalizeInput struct {
	AddressID  string
	NewAddress *domain.AddressSnapshot
}

// FinalizeCheckout freezes the shipping address onto a WAITING checkout and
// stamps it with an order id and payment code. Finalizing twice is rejected;
// callers that want a different address must cancel and prepare again.
func (s *CheckoutService) FinalizeCheckout(ctx context.Context, checkoutID, userID string, in FinalizeInput) (*domain.Checkout, error) {
	if (in.AddressID == "") == (in.NewAddress == nil) {
		return nil, ErrAddressRequired
	}

	c, err := s.getOwned(ctx, checkoutID, userID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	if c.EffectiveStatus(now) != domain.StatusWaiting {
		return nil, invalidStateErr(c, now)
	}
	if c.IsFinalized() {
		return nil, fmt.Errorf("%w: checkout already finalized as %s", ErrInvalidState, c.OrderID)
	}

	addr := in.NewAddress
	if in.AddressID != "" {
		addr, err = s.book.Resolve(ctx, in.AddressID)
		if err != nil {
			return nil, fmt.Errorf("resolve address %s: %w", in.AddressID, err)
		}
	}
	if err := validateAddress(addr); err != nil {
		return nil, err
	}

	orderID := s.generateOrderID(ctx)
	paymentCode := s.generatePaymentCode(ctx)
	totalPrice := c.CalculateTotalPrice()

	if err := s.repo.Finalize(ctx, c.ID, addr, orderID, paymentCode, totalPrice); err != nil {
		return nil, fmt.Errorf("finalize checkout: %w", err)
	}

	c.ShippingAddress = addr
	c.OrderID = orderID
	c.PaymentCode = paymentCode
	c.TotalPrice = totalPrice

	s.cachePut(ctx, c)
	s.publish(ctx, EventCheckoutFinalized, c)

	logging.FromCtx(ctx).Info("checkout finalized",
		"checkout_id", c.ID, "order_id", orderID, "total_price", totalPrice)
	return c, nil
}

func validateAddress(a *domain.AddressSnapshot) error {
	if a == nil {
		return ErrAddressRequired
	}
	if a.Recipient == "" || a.Street == "" || a.City == "" {
		return fmt.Errorf("%w: recipient, street and city required", ErrValidation)
	}
	return nil
}
