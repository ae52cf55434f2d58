package usecase

import (
	"context"
	"errors"
	"fmt"

	domain "github.com/gdncomm-andi-r-djunaedi/training-project-2025-11-sub002/internal/entity"
)

// GetCheckout returns the caller's checkout with its effective status: a
// WAITING record past its deadline reads as EXPIRED even before the
// reconciler has swept it.
func (s *CheckoutService) GetCheckout(ctx context.Context, checkoutID, userID string) (*domain.Checkout, error) {
	c, err := s.getOwned(ctx, checkoutID, userID)
	if err != nil {
		return nil, err
	}
	c.Status = c.EffectiveStatus(s.now())
	return c, nil
}

// GetActiveCheckout returns the user's live WAITING checkout, or ErrNotFound
// when there is none or the one on record has passed its deadline.
func (s *CheckoutService) GetActiveCheckout(ctx context.Context, userID string) (*domain.Checkout, error) {
	if userID == "" {
		return nil, fmt.Errorf("%w: user id required", ErrValidation)
	}
	c, err := s.repo.FindWaitingByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if c.IsExpired(s.now()) {
		return nil, fmt.Errorf("%w: no active checkout for user %s", ErrNotFound, userID)
	}
	return c, nil
}

// ListCheckouts pages through the caller's checkout history, newest first.
// Statuses in the result are effective statuses.
func (s *CheckoutService) ListCheckouts(ctx context.Context, f CheckoutFilter) ([]*domain.Checkout, string, error) {
	if f.UserID == "" {
		return nil, "", fmt.Errorf("%w: user id required", ErrValidation)
	}
	if f.Status != "" && !validStatus(f.Status) {
		return nil, "", fmt.Errorf("%w: unknown status %q", ErrValidation, f.Status)
	}
	if f.Size <= 0 {
		f.Size = 20
	}
	if f.Size > 100 {
		f.Size = 100
	}

	list, cursor, err := s.repo.Filter(ctx, f)
	if err != nil {
		if errors.Is(err, ErrValidation) {
			return nil, "", err
		}
		return nil, "", fmt.Errorf("filter checkouts: %w", err)
	}
	now := s.now()
	for _, c := range list {
		c.Status = c.EffectiveStatus(now)
	}
	return list, cursor, nil
}

func validStatus(st domain.Status) bool {
	switch st {
	case domain.StatusWaiting, domain.StatusPaid, domain.StatusCancelled, domain.StatusExpired:
		return true
	}
	return false
}
