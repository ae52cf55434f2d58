package usecase

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	domain "github.com/gdncomm-andi-r-djunaedi/training-project-2025-11-sub002/internal/entity"
	"github.com/gdncomm-andi-r-djunaedi/training-project-2025-11-sub002/internal/logging"
)

// reserveFanOut bounds the concurrent per-line ledger calls within one prepare.
const reserveFanOut = 8

// SkuLockSummary is the per-line report of one reservation attempt, returned
// for reserved and unreserved lines alike so callers can retry just the
// failed SKUs.
type SkuLockSummary struct {
	Sku               string `json:"sku"`
	SubSku            string `json:"subSku"`
	Locked            bool   `json:"locked"`
	RequestedQuantity int64  `json:"requestedQuantity"`
	LockedQuantity    int64  `json:"lockedQuantity"`
	AvailableStock    int64  `json:"availableStock"`
	ErrorMessage      string `json:"errorMessage,omitempty"`
}

type PrepareCheckoutResult struct {
	Success     bool             `json:"success"`
	Message     string           `json:"message"`
	Checkout    *domain.Checkout `json:"checkout,omitempty"`
	LockSummary []SkuLockSummary `json:"skuLockSummary"`
}

// PrepareCheckout converts the user's cart into a WAITING checkout, locking
// stock per line. Partial success is surfaced, not rolled back: each line
// records its own outcome and the caller decides whether to proceed.
func (s *CheckoutService) PrepareCheckout(ctx context.Context, userID string) (*PrepareCheckoutResult, error) {
	log := logging.FromCtx(ctx)

	cart, err := s.carts.GetCart(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(cart.Lines) == 0 {
		return nil, ErrEmptyCart
	}

	now := s.now()

	// One active checkout per user: reuse a live one, expire a stale one.
	existing, err := s.repo.FindWaitingByUser(ctx, userID)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("find waiting checkout: %w", err)
	}
	if existing != nil {
		if !existing.IsExpired(now) {
			log.Info("active checkout already exists", "user_id", userID, "checkout_id", existing.ID)
			return &PrepareCheckoutResult{
				Success:     existing.IsFullyReserved(),
				Message:     "an active checkout already exists for this user",
				Checkout:    existing,
				LockSummary: summaryFromLines(existing.Lines),
			}, nil
		}
		if err := s.expireOne(ctx, existing); err != nil {
			return nil, fmt.Errorf("expire stale checkout %s: %w", existing.ID, err)
		}
	}

	ttl := s.checkoutTTL(ctx)
	checkoutID := s.newCheckoutID()
	lines := cart.Lines

	// Lines are independent; reserve them concurrently and join before
	// persisting anything.
	outcomes := make([]ReserveOutcome, len(lines))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(reserveFanOut)
	for i := range lines {
		i := i
		g.Go(func() error {
			out, err := s.ledger.TryReserve(gctx, checkoutID, lines[i].Sku, lines[i].SubSku, lines[i].Quantity)
			if err != nil {
				return err
			}
			outcomes[i] = out
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		// Whole-call failure: return every lock the fan-out may have taken.
		// Release is idempotent, so lines that never locked are no-ops.
		for _, l := range lines {
			if rerr := s.ledger.Release(ctx, checkoutID, l.Sku, l.SubSku, l.Quantity); rerr != nil {
				log.Error("rollback release failed", "checkout_id", checkoutID, "sub_sku", l.SubSku, "error", rerr)
			}
		}
		return nil, ledgerErr(err)
	}

	checkoutLines := make([]domain.CheckoutLine, len(lines))
	summary := make([]SkuLockSummary, len(lines))
	for i, l := range lines {
		out := outcomes[i]
		cl := domain.CheckoutLine{
			Sku:                    l.Sku,
			SubSku:                 l.SubSku,
			Title:                  l.Title,
			ImageURL:               l.ImageURL,
			Quantity:               l.Quantity,
			PriceSnapshot:          l.PriceSnapshot,
			Reserved:               out.Reserved,
			AvailableStockSnapshot: out.AvailableStock,
		}
		sum := SkuLockSummary{
			Sku:               l.Sku,
			SubSku:            l.SubSku,
			Locked:            out.Reserved,
			RequestedQuantity: l.Quantity,
			AvailableStock:    out.AvailableStock,
		}
		if out.Reserved {
			sum.LockedQuantity = l.Quantity
		} else {
			cl.ReservationError = fmt.Sprintf("insufficient stock: available %d, requested %d", out.AvailableStock, l.Quantity)
			sum.ErrorMessage = cl.ReservationError
		}
		checkoutLines[i] = cl
		summary[i] = sum
	}

	checkout := &domain.Checkout{
		ID:           checkoutID,
		UserID:       userID,
		SourceCartID: cart.ID,
		Lines:        checkoutLines,
		Currency:     cart.Currency,
		Status:       domain.StatusWaiting,
		LockedAt:     now,
		ExpiresAt:    now.Add(ttl),
		CreatedAt:    now,
	}
	checkout.TotalPrice = checkout.CalculateTotalPrice()

	if err := s.repo.Create(ctx, checkout); err != nil {
		// The checkout row is the record of the locks; without it the locks
		// must not survive.
		for _, l := range checkout.ReservedLines() {
			if rerr := s.ledger.Release(ctx, checkoutID, l.Sku, l.SubSku, l.Quantity); rerr != nil {
				log.Error("rollback release failed", "checkout_id", checkoutID, "sub_sku", l.SubSku, "error", rerr)
			}
		}
		return nil, fmt.Errorf("persist checkout: %w", err)
	}

	s.cachePut(ctx, checkout)
	s.publish(ctx, EventCheckoutPrepared, checkout)

	res := &PrepareCheckoutResult{
		Checkout:    checkout,
		LockSummary: summary,
	}
	switch {
	case checkout.IsFullyReserved():
		res.Success = true
		res.Message = "all items reserved"
	case checkout.HasReservedLines():
		res.Message = fmt.Sprintf("%d of %d items reserved", checkout.ReservedLineCount(), len(checkout.Lines))
	default:
		res.Message = "no items could be reserved"
	}
	log.Info("checkout prepared",
		"checkout_id", checkoutID, "user_id", userID,
		"reserved", checkout.ReservedLineCount(), "lines", len(checkout.Lines))
	return res, nil
}

func summaryFromLines(lines []domain.CheckoutLine) []SkuLockSummary {
	out := make([]SkuLockSummary, len(lines))
	for i, l := range lines {
		out[i] = SkuLockSummary{
			Sku:               l.Sku,
			SubSku:            l.SubSku,
			Locked:            l.Reserved,
			RequestedQuantity: l.Quantity,
			AvailableStock:    l.AvailableStockSnapshot,
			ErrorMessage:      l.ReservationError,
		}
		if l.Reserved {
			out[i].LockedQuantity = l.Quantity
		}
	}
	return out
}
