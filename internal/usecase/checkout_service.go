package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	domain "github.com/gdncomm-andi-r-djunaedi/training-project-2025-11-sub002/internal/entity"
	"github.com/gdncomm-andi-r-djunaedi/training-project-2025-11-sub002/internal/logging"
)

const orderIDDateLayout = "20060102"

// CheckoutService drives the checkout lifecycle: prepare (reserve stock),
// finalize (attach address + identifiers), pay (commit stock), cancel and
// expire (release stock). The conditional Claim* repo updates are the only
// concurrency control; whoever loses a claim skips its inventory effect.
type CheckoutService struct {
	repo     CheckoutRepo
	carts    *CartService
	ledger   InventoryLedger
	book     AddressBook
	params   SystemParams
	cache    CheckoutCache
	events   EventPublisher
	defaults ParamDefaults
	now      func() time.Time
}

func NewCheckoutService(
	repo CheckoutRepo,
	carts *CartService,
	ledger InventoryLedger,
	book AddressBook,
	params SystemParams,
	cache CheckoutCache,
	events EventPublisher,
	defaults ParamDefaults,
) *CheckoutService {
	return &CheckoutService{
		repo:     repo,
		carts:    carts,
		ledger:   ledger,
		book:     book,
		params:   params,
		cache:    cache,
		events:   events,
		defaults: defaults,
		now:      time.Now,
	}
}

// getOwned loads a checkout and enforces ownership. Callers map ErrNotOwner
// to not-found at the edge.
func (s *CheckoutService) getOwned(ctx context.Context, checkoutID, userID string) (*domain.Checkout, error) {
	if checkoutID == "" || userID == "" {
		return nil, fmt.Errorf("%w: checkout id and user id required", ErrValidation)
	}
	c, err := s.getCached(ctx, checkoutID)
	if err != nil {
		return nil, err
	}
	if c.UserID != userID {
		logging.FromCtx(ctx).Warn("checkout ownership violation",
			"checkout_id", checkoutID, "caller", userID, "owner", c.UserID)
		return nil, fmt.Errorf("%w: checkout %s", ErrNotOwner, checkoutID)
	}
	return c, nil
}

// getCached tries the Redis snapshot first when the use-redis parameter is on,
// falling back to the repository.
func (s *CheckoutService) getCached(ctx context.Context, checkoutID string) (*domain.Checkout, error) {
	if s.useRedis(ctx) && s.cache != nil {
		if c, err := s.cache.Get(ctx, checkoutID); err == nil && c != nil {
			return c, nil
		}
	}
	c, err := s.repo.GetByID(ctx, checkoutID)
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (s *CheckoutService) useRedis(ctx context.Context) bool {
	return s.params.GetBool(ctx, ParamUseRedis, s.defaults.UseRedis)
}

func (s *CheckoutService) checkoutTTL(ctx context.Context) time.Duration {
	secs := s.params.GetInt(ctx, ParamCheckoutTTLSeconds, s.defaults.CheckoutTTLSeconds)
	if secs <= 0 {
		secs = s.defaults.CheckoutTTLSeconds
	}
	return time.Duration(secs) * time.Second
}

// cachePut refreshes the snapshot cache with the checkout's remaining TTL.
// Best-effort; a cache failure never fails the operation.
func (s *CheckoutService) cachePut(ctx context.Context, c *domain.Checkout) {
	if !s.useRedis(ctx) || s.cache == nil {
		return
	}
	remaining := time.Until(c.ExpiresAt)
	if remaining <= 0 {
		return
	}
	if err := s.cache.Put(ctx, c, remaining); err != nil {
		logging.FromCtx(ctx).Warn("checkout cache put failed", "checkout_id", c.ID, "error", err)
	}
}

func (s *CheckoutService) cacheDrop(ctx context.Context, checkoutID string) {
	if !s.useRedis(ctx) || s.cache == nil {
		return
	}
	if err := s.cache.Drop(ctx, checkoutID); err != nil {
		logging.FromCtx(ctx).Warn("checkout cache drop failed", "checkout_id", checkoutID, "error", err)
	}
}

// publish emits a lifecycle event. Best-effort.
func (s *CheckoutService) publish(ctx context.Context, eventType string, c *domain.Checkout) {
	if s.events == nil {
		return
	}
	msg := CheckoutEventMsg{
		Type:       eventType,
		CheckoutID: c.ID,
		UserID:     c.UserID,
		OrderID:    c.OrderID,
		TotalPrice: c.CalculateTotalPrice(),
		Currency:   c.Currency,
		OccurredAt: s.now(),
	}
	if err := s.events.Publish(ctx, msg); err != nil {
		logging.FromCtx(ctx).Warn("event publish failed", "type", eventType, "checkout_id", c.ID, "error", err)
	}
}

func (s *CheckoutService) newCheckoutID() string {
	return "chk-" + uuid.NewString()[:8]
}

// generateOrderID builds a readable order id, e.g. ORD-20241205-3F1A.
func (s *CheckoutService) generateOrderID(ctx context.Context) string {
	prefix := s.params.GetString(ctx, ParamOrderIDPrefix, s.defaults.OrderIDPrefix)
	date := s.now().Format(orderIDDateLayout)
	random := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:4])
	return prefix + "-" + date + "-" + random
}

// generatePaymentCode builds a unique payment code, e.g. PAY-9C04B21F.
func (s *CheckoutService) generatePaymentCode(ctx context.Context) string {
	prefix := s.params.GetString(ctx, ParamPaymentCodePrefix, s.defaults.PaymentCodePrefix)
	random := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
	return prefix + "-" + random
}

// invalidStateErr picks the caller-facing variant for a checkout that is no
// longer actionable.
func invalidStateErr(c *domain.Checkout, now time.Time) error {
	switch c.EffectiveStatus(now) {
	case domain.StatusPaid:
		return ErrAlreadyPaid
	case domain.StatusCancelled:
		return ErrAlreadyCancelled
	case domain.StatusExpired:
		return ErrCheckoutExpired
	default:
		return ErrInvalidState
	}
}

// ledgerErr tags transport-level ledger failures as retryable.
func ledgerErr(err error) error {
	if errors.Is(err, ErrInventoryUnavailable) {
		return err
	}
	return fmt.Errorf("%w: %v", ErrInventoryUnavailable, err)
}
