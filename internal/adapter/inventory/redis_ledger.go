package inventory

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/gdncomm-andi-r-djunaedi/training-project-2025-11-sub002/internal/usecase"
)

// RedisLedger keeps per-variant stock in a hash stock:{subSku} with fields
// available, locked and committed. Every mutation runs as a Lua script, so
// the check-and-move is atomic and available+locked+committed stays constant
// outside of restocks.
//
// Each successful reserve also writes a lock record
// stocklock:{checkoutID}:{subSku} holding the quantity. Release and commit
// consume the record with GETDEL, which is what makes them idempotent per
// (checkout, variant): the second caller finds no record and does nothing.
type RedisLedger struct {
	rdb     *redis.Client
	lockTTL time.Duration
}

// NewRedisLedger builds a ledger. lockTTL bounds how long an orphaned lock
// record lives; it should comfortably exceed the checkout TTL so the
// reconciler always finds the record first.
func NewRedisLedger(rdb *redis.Client, lockTTL time.Duration) *RedisLedger {
	return &RedisLedger{rdb: rdb, lockTTL: lockTTL}
}

func stockKey(subSku string) string { return "stock:" + subSku }

func lockKey(checkoutID, subSku string) string {
	return "stocklock:" + checkoutID + ":" + subSku
}

// KEYS[1]=stock hash, KEYS[2]=lock record; ARGV[1]=qty, ARGV[2]=lock ttl sec.
// Returns {1, available-after} on success, {0, available} when short.
var reserveScript = redis.NewScript(`
local avail = tonumber(redis.call('HGET', KEYS[1], 'available') or '0')
local qty = tonumber(ARGV[1])
if avail < qty then
  return {0, avail}
end
redis.call('HINCRBY', KEYS[1], 'available', -qty)
redis.call('HINCRBY', KEYS[1], 'locked', qty)
redis.call('SET', KEYS[2], ARGV[1], 'EX', ARGV[2])
local left = tonumber(redis.call('HGET', KEYS[1], 'available'))
return {1, left}
`)

// KEYS[1]=stock hash, KEYS[2]=lock record.
// Moves the recorded quantity locked -> available. No record, no effect.
var releaseScript = redis.NewScript(`
local qty = redis.call('GET', KEYS[2])
if not qty then
  return 0
end
redis.call('DEL', KEYS[2])
redis.call('HINCRBY', KEYS[1], 'locked', -qty)
redis.call('HINCRBY', KEYS[1], 'available', qty)
return 1
`)

// KEYS[1]=stock hash, KEYS[2]=lock record.
// Moves the recorded quantity locked -> committed. No record, no effect.
var commitScript = redis.NewScript(`
local qty = redis.call('GET', KEYS[2])
if not qty then
  return 0
end
redis.call('DEL', KEYS[2])
redis.call('HINCRBY', KEYS[1], 'locked', -qty)
redis.call('HINCRBY', KEYS[1], 'committed', qty)
return 1
`)

func (l *RedisLedger) TryReserve(ctx context.Context, checkoutID, sku, subSku string, qty int64) (usecase.ReserveOutcome, error) {
	res, err := reserveScript.Run(ctx, l.rdb,
		[]string{stockKey(subSku), lockKey(checkoutID, subSku)},
		qty, int(l.lockTTL.Seconds()),
	).Int64Slice()
	if err != nil {
		return usecase.ReserveOutcome{}, fmt.Errorf("reserve %s: %w", subSku, err)
	}
	if len(res) != 2 {
		return usecase.ReserveOutcome{}, fmt.Errorf("reserve %s: unexpected reply %v", subSku, res)
	}
	return usecase.ReserveOutcome{
		Reserved:       res[0] == 1,
		AvailableStock: res[1],
	}, nil
}

func (l *RedisLedger) Release(ctx context.Context, checkoutID, sku, subSku string, qty int64) error {
	err := releaseScript.Run(ctx, l.rdb,
		[]string{stockKey(subSku), lockKey(checkoutID, subSku)},
	).Err()
	if err != nil && err != redis.Nil {
		return fmt.Errorf("release %s: %w", subSku, err)
	}
	return nil
}

func (l *RedisLedger) Commit(ctx context.Context, checkoutID, sku, subSku string, qty int64) error {
	ran, err := commitScript.Run(ctx, l.rdb,
		[]string{stockKey(subSku), lockKey(checkoutID, subSku)},
	).Int64()
	if err != nil && err != redis.Nil {
		return fmt.Errorf("commit %s: %w", subSku, err)
	}
	if ran == 0 {
		return fmt.Errorf("commit %s: no lock record for checkout %s", subSku, checkoutID)
	}
	return nil
}

// Restock adds quantity to a variant's available pool. Operational helper
// for seeding and manual adjustment.
func (l *RedisLedger) Restock(ctx context.Context, subSku string, qty int64) error {
	return l.rdb.HIncrBy(ctx, stockKey(subSku), "available", qty).Err()
}

var _ usecase.InventoryLedger = (*RedisLedger)(nil)
