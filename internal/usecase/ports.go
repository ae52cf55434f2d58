package usecase

import (
	"context"
	"time"

	domain "github.com/gdncomm-andi-r-djunaedi/training-project-2025-11-sub002/internal/entity"
)

// CheckoutRepo persists checkouts. Every status-changing write is conditioned
// on the previously observed status (the Claim* methods); a false return means
// another writer already resolved the checkout and the caller must not touch
// inventory.
type CheckoutRepo interface {
	Create(ctx context.Context, c *domain.Checkout) error
	GetByID(ctx context.Context, id string) (*domain.Checkout, error)
	// FindWaitingByUser returns the user's WAITING checkout or ErrNotFound.
	FindWaitingByUser(ctx context.Context, userID string) (*domain.Checkout, error)

	// Finalize attaches the shipping address, order id and payment code.
	// Status is untouched; payment is a separate step.
	Finalize(ctx context.Context, id string, addr *domain.AddressSnapshot, orderID, paymentCode string, totalPrice int64) error

	// ClaimPaid transitions WAITING -> PAID iff the deadline has not passed.
	ClaimPaid(ctx context.Context, id string, now time.Time) (bool, error)
	// ClaimCancelled transitions WAITING -> CANCELLED iff the deadline has not passed.
	ClaimCancelled(ctx context.Context, id, reason string, now time.Time) (bool, error)
	// ClaimExpired transitions WAITING -> EXPIRED iff the deadline has passed.
	ClaimExpired(ctx context.Context, id string, now time.Time) (bool, error)
	// MarkStockReleased records that every reserved line was returned to the ledger.
	MarkStockReleased(ctx context.Context, id string) error

	// FindPendingExpiry returns checkouts the reconciler must handle: WAITING
	// past their deadline, plus EXPIRED or CANCELLED ones whose stock release
	// has not completed (retried on a later tick).
	FindPendingExpiry(ctx context.Context, now time.Time, limit int) ([]*domain.Checkout, error)

	Filter(ctx context.Context, f CheckoutFilter) ([]*domain.Checkout, string, error)
}

// CheckoutFilter narrows Filter results. UserID is mandatory: users only ever
// see their own checkouts.
type CheckoutFilter struct {
	UserID  string
	Status  domain.Status
	OrderID string
	Size    int
	Cursor  string
}

// CartRepo persists carts, one per user. GetByUser returns ErrNotFound for a
// user who never touched their cart.
type CartRepo interface {
	GetByUser(ctx context.Context, userID string) (*domain.Cart, error)
	Save(ctx context.Context, c *domain.Cart) error
}

// ReserveOutcome reports one TryReserve attempt. AvailableStock is the
// ledger's available count at decision time, on success and failure alike.
type ReserveOutcome struct {
	Reserved       bool
	AvailableStock int64
}

// InventoryLedger is the stock-locking contract. All three operations are
// linearizable per (sku, subSku) on the ledger side. Release is idempotent
// per (checkoutID, subSku): releasing an already-released line is a no-op.
// A transport-level failure is returned as an error wrapping
// ErrInventoryUnavailable; an insufficient-stock outcome is data, not an error.
type InventoryLedger interface {
	TryReserve(ctx context.Context, checkoutID, sku, subSku string, qty int64) (ReserveOutcome, error)
	Commit(ctx context.Context, checkoutID, sku, subSku string, qty int64) error
	Release(ctx context.Context, checkoutID, sku, subSku string, qty int64) error
}

// AddressBook resolves saved addresses from the member service.
type AddressBook interface {
	Resolve(ctx context.Context, addressID string) (*domain.AddressSnapshot, error)
}

// SystemParams is the runtime tunable store. Lookup failures fall back to the
// supplied default; a missing parameter is not an error.
type SystemParams interface {
	GetInt(ctx context.Context, key string, def int) int
	GetString(ctx context.Context, key, def string) string
	GetBool(ctx context.Context, key string, def bool) bool
}

// CheckoutCache is the optional read-through snapshot cache, toggled by the
// cart.checkout.use-redis parameter.
type CheckoutCache interface {
	Put(ctx context.Context, c *domain.Checkout, ttl time.Duration) error
	Get(ctx context.Context, id string) (*domain.Checkout, error)
	Drop(ctx context.Context, id string) error
}

// EventPublisher emits checkout lifecycle events. Publishing is best-effort:
// callers log failures and never fail the user-facing operation over one.
type EventPublisher interface {
	Publish(ctx context.Context, msg CheckoutEventMsg) error
}
