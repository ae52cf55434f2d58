package kafka

import (
	"context"
	"errors"
	"fmt"

	domain "github.com/gdncomm-andi-r-djunaedi/training-project-2025-11-sub002/internal/entity"
	"github.com/gdncomm-andi-r-djunaedi/training-project-2025-11-sub002/internal/logging"
	"github.com/gdncomm-andi-r-djunaedi/training-project-2025-11-sub002/internal/usecase"
)

// PaymentResolver is the slice of the checkout service the handler needs.
type PaymentResolver interface {
	PayCheckout(ctx context.Context, checkoutID, userID string) (*domain.Checkout, error)
	CancelCheckout(ctx context.Context, checkoutID, userID, reason string) (*domain.Checkout, error)
}

// PaymentStatusHandler applies payment gateway verdicts to checkouts:
// SUCCESS confirms the payment, anything else cancels it. The checkout
// service's conditional claims make redelivered events harmless.
type PaymentStatusHandler struct {
	checkouts PaymentResolver
}

func NewPaymentStatusHandler(checkouts PaymentResolver) *PaymentStatusHandler {
	return &PaymentStatusHandler{checkouts: checkouts}
}

func (h *PaymentStatusHandler) Handle(ctx context.Context, ev usecase.PaymentStatusChangedMsg) error {
	if ev.CheckoutID == "" || ev.UserID == "" {
		logging.FromCtx(ctx).Warn("payment event missing ids", "event", ev)
		return nil
	}

	var err error
	if ev.Status == "SUCCESS" {
		_, err = h.checkouts.PayCheckout(ctx, ev.CheckoutID, ev.UserID)
	} else {
		reason := ev.Reason
		if reason == "" {
			reason = fmt.Sprintf("payment %s", ev.Status)
		}
		_, err = h.checkouts.CancelCheckout(ctx, ev.CheckoutID, ev.UserID, reason)
	}
	if err == nil {
		return nil
	}

	// Terminal outcomes are not retryable: the checkout was already resolved
	// by the user, a duplicate delivery, or the reconciler.
	if errors.Is(err, usecase.ErrInvalidState) || errors.Is(err, usecase.ErrNotFound) ||
		errors.Is(err, usecase.ErrNotOwner) || errors.Is(err, usecase.ErrNothingReserved) {
		logging.FromCtx(ctx).Info("payment event skipped",
			"checkout_id", ev.CheckoutID, "status", ev.Status, "reason", err.Error())
		return nil
	}
	return err
}
