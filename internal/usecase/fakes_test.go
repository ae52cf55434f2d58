package usecase

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	domain "github.com/gdncomm-andi-r-djunaedi/training-project-2025-11-sub002/internal/entity"
)

type fakeCheckoutRepo struct {
	mu   sync.Mutex
	byID map[string]*domain.Checkout
}

func newFakeCheckoutRepo() *fakeCheckoutRepo {
	return &fakeCheckoutRepo{byID: make(map[string]*domain.Checkout)}
}

func (r *fakeCheckoutRepo) Create(_ context.Context, c *domain.Checkout) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *c
	r.byID[c.ID] = &cp
	return nil
}

func (r *fakeCheckoutRepo) GetByID(_ context.Context, id string) (*domain.Checkout, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.byID[id]
	if !ok {
		return nil, fmt.Errorf("%w: checkout %s", ErrNotFound, id)
	}
	cp := *c
	return &cp, nil
}

func (r *fakeCheckoutRepo) FindWaitingByUser(_ context.Context, userID string) (*domain.Checkout, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.byID {
		if c.UserID == userID && c.Status == domain.StatusWaiting {
			cp := *c
			return &cp, nil
		}
	}
	return nil, fmt.Errorf("%w: no waiting checkout for user %s", ErrNotFound, userID)
}

func (r *fakeCheckoutRepo) Finalize(_ context.Context, id string, addr *domain.AddressSnapshot, orderID, paymentCode string, totalPrice int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.byID[id]
	if !ok {
		return fmt.Errorf("%w: checkout %s", ErrNotFound, id)
	}
	if c.Status != domain.StatusWaiting || c.OrderID != "" {
		return fmt.Errorf("%w: checkout %s not finalizable", ErrInvalidState, id)
	}
	c.ShippingAddress = addr
	c.OrderID = orderID
	c.PaymentCode = paymentCode
	c.TotalPrice = totalPrice
	return nil
}

func (r *fakeCheckoutRepo) ClaimPaid(_ context.Context, id string, now time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.byID[id]
	if !ok || c.Status != domain.StatusWaiting || !now.Before(c.ExpiresAt) {
		return false, nil
	}
	c.Status = domain.StatusPaid
	c.PaidAt = &now
	return true, nil
}

func (r *fakeCheckoutRepo) ClaimCancelled(_ context.Context, id, reason string, now time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.byID[id]
	if !ok || c.Status != domain.StatusWaiting || !now.Before(c.ExpiresAt) {
		return false, nil
	}
	c.Status = domain.StatusCancelled
	c.CancelledAt = &now
	c.CancelReason = reason
	return true, nil
}

func (r *fakeCheckoutRepo) ClaimExpired(_ context.Context, id string, now time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.byID[id]
	if !ok || c.Status != domain.StatusWaiting || now.Before(c.ExpiresAt) {
		return false, nil
	}
	c.Status = domain.StatusExpired
	c.CancelledAt = &now
	c.CancelReason = "checkout expired"
	return true, nil
}

func (r *fakeCheckoutRepo) MarkStockReleased(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.byID[id]
	if !ok {
		return fmt.Errorf("%w: checkout %s", ErrNotFound, id)
	}
	c.StockReleased = true
	return nil
}

func (r *fakeCheckoutRepo) FindPendingExpiry(_ context.Context, now time.Time, limit int) ([]*domain.Checkout, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Checkout
	for _, c := range r.byID {
		overdue := c.Status == domain.StatusWaiting && now.After(c.ExpiresAt)
		pendingRelease := (c.Status == domain.StatusExpired || c.Status == domain.StatusCancelled) && !c.StockReleased
		if overdue || pendingRelease {
			cp := *c
			out = append(out, &cp)
		}
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (r *fakeCheckoutRepo) Filter(_ context.Context, f CheckoutFilter) ([]*domain.Checkout, string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Checkout
	for _, c := range r.byID {
		if c.UserID != f.UserID {
			continue
		}
		if f.Status != "" && c.Status != f.Status {
			continue
		}
		if f.OrderID != "" && c.OrderID != f.OrderID {
			continue
		}
		cp := *c
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if len(out) > f.Size {
		out = out[:f.Size]
	}
	return out, "", nil
}

var _ CheckoutRepo = (*fakeCheckoutRepo)(nil)

type fakeCartRepo struct {
	mu     sync.Mutex
	byUser map[string]*domain.Cart
}

func newFakeCartRepo() *fakeCartRepo {
	return &fakeCartRepo{byUser: make(map[string]*domain.Cart)}
}

func (r *fakeCartRepo) GetByUser(_ context.Context, userID string) (*domain.Cart, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.byUser[userID]
	if !ok {
		return nil, fmt.Errorf("%w: cart for user %s", ErrNotFound, userID)
	}
	cp := *c
	cp.Lines = append([]domain.CartLine(nil), c.Lines...)
	return &cp, nil
}

func (r *fakeCartRepo) Save(_ context.Context, c *domain.Cart) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *c
	cp.Lines = append([]domain.CartLine(nil), c.Lines...)
	r.byUser[c.UserID] = &cp
	return nil
}

var _ CartRepo = (*fakeCartRepo)(nil)

// staticParams always answers with the caller's default, like an empty
// system_parameters table.
type staticParams struct{}

func (staticParams) GetInt(_ context.Context, _ string, def int) int          { return def }
func (staticParams) GetString(_ context.Context, _ string, def string) string { return def }
func (staticParams) GetBool(_ context.Context, _ string, def bool) bool       { return def }

var _ SystemParams = staticParams{}

type fakeStockRow struct {
	available int64
	locked    int64
	committed int64
}

type fakeLedger struct {
	mu         sync.Mutex
	stock      map[string]*fakeStockRow
	locks      map[string]int64
	reserveErr map[string]error
	releaseErr map[string]error
	releaseLog []string
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{
		stock:      make(map[string]*fakeStockRow),
		locks:      make(map[string]int64),
		reserveErr: make(map[string]error),
		releaseErr: make(map[string]error),
	}
}

func (l *fakeLedger) setStock(subSku string, available int64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.stock[subSku] = &fakeStockRow{available: available}
}

func (l *fakeLedger) row(subSku string) *fakeStockRow {
	r, ok := l.stock[subSku]
	if !ok {
		r = &fakeStockRow{}
		l.stock[subSku] = r
	}
	return r
}

func (l *fakeLedger) snapshot(subSku string) (int64, int64, int64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	r := l.row(subSku)
	return r.available, r.locked, r.committed
}

func lockRef(checkoutID, subSku string) string { return checkoutID + ":" + subSku }

func (l *fakeLedger) TryReserve(_ context.Context, checkoutID, sku, subSku string, qty int64) (ReserveOutcome, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.reserveErr[subSku]; err != nil {
		return ReserveOutcome{}, err
	}
	r := l.row(subSku)
	if r.available < qty {
		return ReserveOutcome{Reserved: false, AvailableStock: r.available}, nil
	}
	r.available -= qty
	r.locked += qty
	l.locks[lockRef(checkoutID, subSku)] = qty
	return ReserveOutcome{Reserved: true, AvailableStock: r.available}, nil
}

func (l *fakeLedger) Release(_ context.Context, checkoutID, sku, subSku string, qty int64) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.releaseErr[subSku]; err != nil {
		return err
	}
	held, ok := l.locks[lockRef(checkoutID, subSku)]
	if !ok {
		return nil
	}
	delete(l.locks, lockRef(checkoutID, subSku))
	r := l.row(subSku)
	r.locked -= held
	r.available += held
	l.releaseLog = append(l.releaseLog, lockRef(checkoutID, subSku))
	return nil
}

func (l *fakeLedger) Commit(_ context.Context, checkoutID, sku, subSku string, qty int64) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	held, ok := l.locks[lockRef(checkoutID, subSku)]
	if !ok {
		return fmt.Errorf("commit %s: no lock record for checkout %s", subSku, checkoutID)
	}
	delete(l.locks, lockRef(checkoutID, subSku))
	r := l.row(subSku)
	r.locked -= held
	r.committed += held
	return nil
}

var _ InventoryLedger = (*fakeLedger)(nil)

type fakePublisher struct {
	mu     sync.Mutex
	events []CheckoutEventMsg
}

func (p *fakePublisher) Publish(_ context.Context, msg CheckoutEventMsg) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, msg)
	return nil
}

func (p *fakePublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, e := range p.events {
		out[i] = e.Type
	}
	return out
}

var _ EventPublisher = (*fakePublisher)(nil)

type fakeAddressBook struct {
	addrs map[string]*domain.AddressSnapshot
}

func (b *fakeAddressBook) Resolve(_ context.Context, addressID string) (*domain.AddressSnapshot, error) {
	a, ok := b.addrs[addressID]
	if !ok {
		return nil, fmt.Errorf("%w: address %s", ErrNotFound, addressID)
	}
	cp := *a
	return &cp, nil
}

var _ AddressBook = (*fakeAddressBook)(nil)
