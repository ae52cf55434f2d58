package inventory

import (
	"context"
	"fmt"
	"sync"

	"github.com/gdncomm-andi-r-djunaedi/training-project-2025-11-sub002/internal/usecase"
)

// MemoryLedger is an in-process ledger with the same semantics as
// RedisLedger, used by tests and local runs without Redis.
type MemoryLedger struct {
	mu    sync.Mutex
	stock map[string]*stockRow
	locks map[string]int64
}

type stockRow struct {
	available int64
	locked    int64
	committed int64
}

func NewMemoryLedger() *MemoryLedger {
	return &MemoryLedger{
		stock: make(map[string]*stockRow),
		locks: make(map[string]int64),
	}
}

func (l *MemoryLedger) row(subSku string) *stockRow {
	r, ok := l.stock[subSku]
	if !ok {
		r = &stockRow{}
		l.stock[subSku] = r
	}
	return r
}

func (l *MemoryLedger) TryReserve(ctx context.Context, checkoutID, sku, subSku string, qty int64) (usecase.ReserveOutcome, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	r := l.row(subSku)
	if r.available < qty {
		return usecase.ReserveOutcome{Reserved: false, AvailableStock: r.available}, nil
	}
	r.available -= qty
	r.locked += qty
	l.locks[lockKey(checkoutID, subSku)] = qty
	return usecase.ReserveOutcome{Reserved: true, AvailableStock: r.available}, nil
}

func (l *MemoryLedger) Release(ctx context.Context, checkoutID, sku, subSku string, qty int64) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	key := lockKey(checkoutID, subSku)
	held, ok := l.locks[key]
	if !ok {
		return nil
	}
	delete(l.locks, key)
	r := l.row(subSku)
	r.locked -= held
	r.available += held
	return nil
}

func (l *MemoryLedger) Commit(ctx context.Context, checkoutID, sku, subSku string, qty int64) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	key := lockKey(checkoutID, subSku)
	held, ok := l.locks[key]
	if !ok {
		return fmt.Errorf("commit %s: no lock record for checkout %s", subSku, checkoutID)
	}
	delete(l.locks, key)
	r := l.row(subSku)
	r.locked -= held
	r.committed += held
	return nil
}

// Restock adds quantity to a variant's available pool.
func (l *MemoryLedger) Restock(ctx context.Context, subSku string, qty int64) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.row(subSku).available += qty
	return nil
}

// Snapshot returns (available, locked, committed) for a variant.
func (l *MemoryLedger) Snapshot(subSku string) (int64, int64, int64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	r := l.row(subSku)
	return r.available, r.locked, r.committed
}

var _ usecase.InventoryLedger = (*MemoryLedger)(nil)
