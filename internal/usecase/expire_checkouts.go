package usecase

import (
	"context"
	"fmt"

	domain "github.com/gdncomm-andi-r-djunaedi/training-project-2025-11-sub002/internal/entity"
	"github.com/gdncomm-andi-r-djunaedi/training-project-2025-11-sub002/internal/logging"
)

// expirySweepLimit caps how many checkouts one sweep handles.
const expirySweepLimit = 200

// SweepStats summarizes one expiry sweep for logging and metrics.
type SweepStats struct {
	Scanned         int
	Expired         int
	Released        int
	ReleaseFailures int
}

// ExpireDueCheckouts is the reconciler entry point. It claims each overdue
// WAITING checkout as EXPIRED and releases its stock locks, and retries the
// release for already-terminal checkouts whose locks are still out. Claims
// make the sweep safe to run concurrently with user pays and cancels, and
// idempotent releases make a partially failed sweep safe to rerun.
func (s *CheckoutService) ExpireDueCheckouts(ctx context.Context) (SweepStats, error) {
	log := logging.FromCtx(ctx)
	now := s.now()

	var stats SweepStats
	due, err := s.repo.FindPendingExpiry(ctx, now, expirySweepLimit)
	if err != nil {
		return stats, fmt.Errorf("find pending expiry: %w", err)
	}
	stats.Scanned = len(due)

	for _, c := range due {
		if ctx.Err() != nil {
			return stats, ctx.Err()
		}
		switch c.Status {
		case domain.StatusWaiting:
			claimed, err := s.expireClaim(ctx, c)
			if err != nil {
				stats.ReleaseFailures++
				log.Error("expire checkout failed", "checkout_id", c.ID, "error", err)
				continue
			}
			if !claimed {
				continue
			}
			stats.Expired++
			if c.StockReleased {
				stats.Released++
			} else {
				stats.ReleaseFailures++
			}
		case domain.StatusExpired, domain.StatusCancelled:
			// Locks left over from a failed release on a previous tick.
			if s.releaseReserved(ctx, c) {
				if err := s.repo.MarkStockReleased(ctx, c.ID); err != nil {
					log.Warn("mark stock released failed", "checkout_id", c.ID, "error", err)
				}
				stats.Released++
			} else {
				stats.ReleaseFailures++
			}
		}
	}

	if stats.Expired > 0 || stats.ReleaseFailures > 0 {
		log.Info("expiry sweep finished",
			"scanned", stats.Scanned, "expired", stats.Expired,
			"released", stats.Released, "release_failures", stats.ReleaseFailures)
	}
	return stats, nil
}

// expireOne claims a single overdue checkout and releases its locks. Losing
// the claim is not an error: a concurrent pay, cancel or sweep got there
// first and owns the inventory effect.
func (s *CheckoutService) expireOne(ctx context.Context, c *domain.Checkout) error {
	_, err := s.expireClaim(ctx, c)
	return err
}

func (s *CheckoutService) expireClaim(ctx context.Context, c *domain.Checkout) (bool, error) {
	now := s.now()
	claimed, err := s.repo.ClaimExpired(ctx, c.ID, now)
	if err != nil {
		return false, fmt.Errorf("claim expired: %w", err)
	}
	if !claimed {
		return false, nil
	}
	c.Status = domain.StatusExpired
	if s.releaseReserved(ctx, c) {
		if err := s.repo.MarkStockReleased(ctx, c.ID); err != nil {
			logging.FromCtx(ctx).Warn("mark stock released failed", "checkout_id", c.ID, "error", err)
		} else {
			c.StockReleased = true
		}
	}
	s.cacheDrop(ctx, c.ID)
	s.publish(ctx, EventCheckoutExpired, c)
	return true, nil
}
