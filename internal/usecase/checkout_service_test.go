package usecase

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "github.com/gdncomm-andi-r-djunaedi/training-project-2025-11-sub002/internal/entity"
)

type testEnv struct {
	repo     *fakeCheckoutRepo
	cartRepo *fakeCartRepo
	ledger   *fakeLedger
	events   *fakePublisher
	book     *fakeAddressBook
	carts    *CartService
	svc      *CheckoutService
	now      time.Time
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	env := &testEnv{
		repo:     newFakeCheckoutRepo(),
		cartRepo: newFakeCartRepo(),
		ledger:   newFakeLedger(),
		events:   &fakePublisher{},
		book: &fakeAddressBook{addrs: map[string]*domain.AddressSnapshot{
			"addr-1": {Label: "home", Recipient: "Budi", Phone: "0812", Street: "Jl. Merdeka 1", City: "Jakarta", Province: "DKI", PostalCode: "10110"},
		}},
		now: time.Date(2025, 11, 20, 10, 0, 0, 0, time.UTC),
	}
	defaults := ParamDefaults{
		CheckoutTTLSeconds: 900,
		MaxItems:           50,
		MaxQuantityPerItem: 99,
		UseRedis:           false,
		ExpiryCheckSeconds: 60,
		OrderIDPrefix:      "ORD",
		PaymentCodePrefix:  "PAY",
	}
	env.carts = NewCartService(env.cartRepo, staticParams{}, defaults)
	env.carts.now = func() time.Time { return env.now }
	env.svc = NewCheckoutService(env.repo, env.carts, env.ledger, env.book, staticParams{}, nil, env.events, defaults)
	env.svc.now = func() time.Time { return env.now }
	return env
}

func (env *testEnv) advance(d time.Duration) { env.now = env.now.Add(d) }

func (env *testEnv) fillCart(t *testing.T, user string, lines ...domain.CartLine) {
	t.Helper()
	for _, l := range lines {
		_, err := env.carts.AddLine(context.Background(), user, l)
		require.NoError(t, err)
	}
}

func TestPrepareCheckout_AllReserved(t *testing.T) {
	env := newTestEnv(t)
	env.ledger.setStock("SKU-1-RED", 10)
	env.ledger.setStock("SKU-2-BLK", 10)
	env.fillCart(t, "user-1",
		domain.CartLine{Sku: "SKU-1", SubSku: "SKU-1-RED", Quantity: 2, PriceSnapshot: 50000},
		domain.CartLine{Sku: "SKU-2", SubSku: "SKU-2-BLK", Quantity: 3, PriceSnapshot: 30000},
	)

	res, err := env.svc.PrepareCheckout(context.Background(), "user-1")
	require.NoError(t, err)

	assert.True(t, res.Success)
	require.NotNil(t, res.Checkout)
	assert.True(t, strings.HasPrefix(res.Checkout.ID, "chk-"))
	assert.Equal(t, domain.StatusWaiting, res.Checkout.Status)
	assert.Equal(t, env.now.Add(15*time.Minute), res.Checkout.ExpiresAt)
	assert.Equal(t, int64(2*50000+3*30000), res.Checkout.TotalPrice)
	require.Len(t, res.LockSummary, 2)
	assert.True(t, res.LockSummary[0].Locked)
	assert.Equal(t, int64(2), res.LockSummary[0].LockedQuantity)

	avail, locked, _ := env.ledger.snapshot("SKU-1-RED")
	assert.Equal(t, int64(8), avail)
	assert.Equal(t, int64(2), locked)

	assert.Equal(t, []string{EventCheckoutPrepared}, env.events.types())
}

func TestPrepareCheckout_PartialReservation(t *testing.T) {
	env := newTestEnv(t)
	env.ledger.setStock("SKU-1-RED", 10)
	env.ledger.setStock("SKU-2-BLK", 1) // short
	env.fillCart(t, "user-1",
		domain.CartLine{Sku: "SKU-1", SubSku: "SKU-1-RED", Quantity: 2, PriceSnapshot: 50000},
		domain.CartLine{Sku: "SKU-2", SubSku: "SKU-2-BLK", Quantity: 3, PriceSnapshot: 30000},
	)

	res, err := env.svc.PrepareCheckout(context.Background(), "user-1")
	require.NoError(t, err)

	assert.False(t, res.Success)
	assert.Contains(t, res.Message, "1 of 2")
	// the checkout is persisted anyway, billing only the reserved line
	stored, err := env.repo.GetByID(context.Background(), res.Checkout.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusWaiting, stored.Status)
	assert.Equal(t, int64(100000), stored.TotalPrice)

	require.Len(t, res.LockSummary, 2)
	assert.True(t, res.LockSummary[0].Locked)
	assert.False(t, res.LockSummary[1].Locked)
	assert.Equal(t, int64(1), res.LockSummary[1].AvailableStock)
	assert.NotEmpty(t, res.LockSummary[1].ErrorMessage)

	// the short line locked nothing
	avail, locked, _ := env.ledger.snapshot("SKU-2-BLK")
	assert.Equal(t, int64(1), avail)
	assert.Equal(t, int64(0), locked)
}

func TestPrepareCheckout_EmptyCart(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.svc.PrepareCheckout(context.Background(), "user-1")
	assert.ErrorIs(t, err, ErrEmptyCart)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestPrepareCheckout_ReusesActiveCheckout(t *testing.T) {
	env := newTestEnv(t)
	env.ledger.setStock("SKU-1-RED", 10)
	env.fillCart(t, "user-1", domain.CartLine{Sku: "SKU-1", SubSku: "SKU-1-RED", Quantity: 2, PriceSnapshot: 50000})

	first, err := env.svc.PrepareCheckout(context.Background(), "user-1")
	require.NoError(t, err)
	second, err := env.svc.PrepareCheckout(context.Background(), "user-1")
	require.NoError(t, err)

	assert.Equal(t, first.Checkout.ID, second.Checkout.ID)
	// no double locking
	avail, locked, _ := env.ledger.snapshot("SKU-1-RED")
	assert.Equal(t, int64(8), avail)
	assert.Equal(t, int64(2), locked)
}

func TestPrepareCheckout_ExpiresStaleCheckoutFirst(t *testing.T) {
	env := newTestEnv(t)
	env.ledger.setStock("SKU-1-RED", 2)
	env.fillCart(t, "user-1", domain.CartLine{Sku: "SKU-1", SubSku: "SKU-1-RED", Quantity: 2, PriceSnapshot: 50000})

	first, err := env.svc.PrepareCheckout(context.Background(), "user-1")
	require.NoError(t, err)

	env.advance(16 * time.Minute)

	second, err := env.svc.PrepareCheckout(context.Background(), "user-1")
	require.NoError(t, err)
	assert.NotEqual(t, first.Checkout.ID, second.Checkout.ID)
	assert.True(t, second.Success, "released stock must be reservable again")

	old, err := env.repo.GetByID(context.Background(), first.Checkout.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusExpired, old.Status)
	assert.True(t, old.StockReleased)
}

func TestPrepareCheckout_LedgerDown(t *testing.T) {
	env := newTestEnv(t)
	env.ledger.setStock("SKU-1-RED", 10)
	env.ledger.reserveErr["SKU-2-BLK"] = assert.AnError
	env.fillCart(t, "user-1",
		domain.CartLine{Sku: "SKU-1", SubSku: "SKU-1-RED", Quantity: 2, PriceSnapshot: 50000},
		domain.CartLine{Sku: "SKU-2", SubSku: "SKU-2-BLK", Quantity: 1, PriceSnapshot: 30000},
	)

	_, err := env.svc.PrepareCheckout(context.Background(), "user-1")
	assert.ErrorIs(t, err, ErrInventoryUnavailable)

	// the lock taken before the failure was rolled back
	avail, locked, _ := env.ledger.snapshot("SKU-1-RED")
	assert.Equal(t, int64(10), avail)
	assert.Equal(t, int64(0), locked)
}

func TestFinalizeCheckout(t *testing.T) {
	env := newTestEnv(t)
	env.ledger.setStock("SKU-1-RED", 10)
	env.fillCart(t, "user-1", domain.CartLine{Sku: "SKU-1", SubSku: "SKU-1-RED", Quantity: 2, PriceSnapshot: 50000})
	res, err := env.svc.PrepareCheckout(context.Background(), "user-1")
	require.NoError(t, err)

	chk, err := env.svc.FinalizeCheckout(context.Background(), res.Checkout.ID, "user-1",
		FinalizeInput{AddressID: "addr-1"})
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(chk.OrderID, "ORD-20251120-"))
	assert.True(t, strings.HasPrefix(chk.PaymentCode, "PAY-"))
	require.NotNil(t, chk.ShippingAddress)
	assert.Equal(t, "Budi", chk.ShippingAddress.Recipient)
	assert.Equal(t, int64(100000), chk.TotalPrice)

	// a second finalize is rejected
	_, err = env.svc.FinalizeCheckout(context.Background(), res.Checkout.ID, "user-1",
		FinalizeInput{AddressID: "addr-1"})
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestFinalizeCheckout_AddressChoice(t *testing.T) {
	env := newTestEnv(t)
	env.ledger.setStock("SKU-1-RED", 10)
	env.fillCart(t, "user-1", domain.CartLine{Sku: "SKU-1", SubSku: "SKU-1-RED", Quantity: 1, PriceSnapshot: 50000})
	res, err := env.svc.PrepareCheckout(context.Background(), "user-1")
	require.NoError(t, err)

	// neither
	_, err = env.svc.FinalizeCheckout(context.Background(), res.Checkout.ID, "user-1", FinalizeInput{})
	assert.ErrorIs(t, err, ErrAddressRequired)

	// both
	_, err = env.svc.FinalizeCheckout(context.Background(), res.Checkout.ID, "user-1", FinalizeInput{
		AddressID:  "addr-1",
		NewAddress: &domain.AddressSnapshot{Recipient: "Budi", Street: "x", City: "y"},
	})
	assert.ErrorIs(t, err, ErrAddressRequired)

	// inline snapshot missing required fields
	_, err = env.svc.FinalizeCheckout(context.Background(), res.Checkout.ID, "user-1", FinalizeInput{
		NewAddress: &domain.AddressSnapshot{Recipient: "Budi"},
	})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestPayCheckout_CommitsStockAndClearsCart(t *testing.T) {
	env := newTestEnv(t)
	env.ledger.setStock("SKU-1-RED", 10)
	env.fillCart(t, "user-1", domain.CartLine{Sku: "SKU-1", SubSku: "SKU-1-RED", Quantity: 2, PriceSnapshot: 50000})
	res, err := env.svc.PrepareCheckout(context.Background(), "user-1")
	require.NoError(t, err)
	_, err = env.svc.FinalizeCheckout(context.Background(), res.Checkout.ID, "user-1", FinalizeInput{AddressID: "addr-1"})
	require.NoError(t, err)

	chk, err := env.svc.PayCheckout(context.Background(), res.Checkout.ID, "user-1")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPaid, chk.Status)
	require.NotNil(t, chk.PaidAt)

	avail, locked, committed := env.ledger.snapshot("SKU-1-RED")
	assert.Equal(t, int64(8), avail)
	assert.Equal(t, int64(0), locked)
	assert.Equal(t, int64(2), committed)

	cart, err := env.carts.GetCart(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Empty(t, cart.Lines)

	assert.Contains(t, env.events.types(), EventCheckoutPaid)
}

func TestPayCheckout_NothingReserved(t *testing.T) {
	env := newTestEnv(t)
	// zero stock everywhere
	env.fillCart(t, "user-1", domain.CartLine{Sku: "SKU-1", SubSku: "SKU-1-RED", Quantity: 2, PriceSnapshot: 50000})
	res, err := env.svc.PrepareCheckout(context.Background(), "user-1")
	require.NoError(t, err)
	assert.False(t, res.Success)

	_, err = env.svc.PayCheckout(context.Background(), res.Checkout.ID, "user-1")
	assert.ErrorIs(t, err, ErrNothingReserved)
}

func TestPayCheckout_PartialCommitsOnlyReservedLines(t *testing.T) {
	env := newTestEnv(t)
	env.ledger.setStock("SKU-1-RED", 10)
	// SKU-2-BLK never had stock
	env.fillCart(t, "user-1",
		domain.CartLine{Sku: "SKU-1", SubSku: "SKU-1-RED", Quantity: 2, PriceSnapshot: 50000},
		domain.CartLine{Sku: "SKU-2", SubSku: "SKU-2-BLK", Quantity: 3, PriceSnapshot: 30000},
	)
	res, err := env.svc.PrepareCheckout(context.Background(), "user-1")
	require.NoError(t, err)
	require.False(t, res.Success)

	paid, err := env.svc.PayCheckout(context.Background(), res.Checkout.ID, "user-1")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPaid, paid.Status)
	// billed for the reserved line only
	assert.Equal(t, int64(100000), paid.TotalPrice)

	avail, locked, committed := env.ledger.snapshot("SKU-1-RED")
	assert.Equal(t, int64(8), avail)
	assert.Equal(t, int64(0), locked)
	assert.Equal(t, int64(2), committed)

	// the unreserved line is untouched end to end
	avail, locked, committed = env.ledger.snapshot("SKU-2-BLK")
	assert.Equal(t, int64(0), avail)
	assert.Equal(t, int64(0), locked)
	assert.Equal(t, int64(0), committed)
}

func TestPayCheckout_AfterDeadline(t *testing.T) {
	env := newTestEnv(t)
	env.ledger.setStock("SKU-1-RED", 10)
	env.fillCart(t, "user-1", domain.CartLine{Sku: "SKU-1", SubSku: "SKU-1-RED", Quantity: 2, PriceSnapshot: 50000})
	res, err := env.svc.PrepareCheckout(context.Background(), "user-1")
	require.NoError(t, err)

	env.advance(16 * time.Minute)

	_, err = env.svc.PayCheckout(context.Background(), res.Checkout.ID, "user-1")
	assert.ErrorIs(t, err, ErrCheckoutExpired)
	assert.ErrorIs(t, err, ErrInvalidState)

	// no inventory effect happened
	_, locked, committed := env.ledger.snapshot("SKU-1-RED")
	assert.Equal(t, int64(2), locked)
	assert.Equal(t, int64(0), committed)
}

func TestCancelAfterPay(t *testing.T) {
	env := newTestEnv(t)
	env.ledger.setStock("SKU-1-RED", 10)
	env.fillCart(t, "user-1", domain.CartLine{Sku: "SKU-1", SubSku: "SKU-1-RED", Quantity: 2, PriceSnapshot: 50000})
	res, err := env.svc.PrepareCheckout(context.Background(), "user-1")
	require.NoError(t, err)

	_, err = env.svc.PayCheckout(context.Background(), res.Checkout.ID, "user-1")
	require.NoError(t, err)

	_, err = env.svc.CancelCheckout(context.Background(), res.Checkout.ID, "user-1", "changed my mind")
	assert.ErrorIs(t, err, ErrAlreadyPaid)

	// committed stock stays committed
	_, _, committed := env.ledger.snapshot("SKU-1-RED")
	assert.Equal(t, int64(2), committed)
}

func TestCancelCheckout_ReleasesStock(t *testing.T) {
	env := newTestEnv(t)
	env.ledger.setStock("SKU-1-RED", 10)
	env.fillCart(t, "user-1", domain.CartLine{Sku: "SKU-1", SubSku: "SKU-1-RED", Quantity: 2, PriceSnapshot: 50000})
	res, err := env.svc.PrepareCheckout(context.Background(), "user-1")
	require.NoError(t, err)

	chk, err := env.svc.CancelCheckout(context.Background(), res.Checkout.ID, "user-1", "")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCancelled, chk.Status)
	assert.Equal(t, "cancelled by user", chk.CancelReason)

	avail, locked, committed := env.ledger.snapshot("SKU-1-RED")
	assert.Equal(t, int64(10), avail)
	assert.Equal(t, int64(0), locked)
	assert.Equal(t, int64(0), committed)
}

func TestGetCheckout_OwnershipAndProjection(t *testing.T) {
	env := newTestEnv(t)
	env.ledger.setStock("SKU-1-RED", 10)
	env.fillCart(t, "user-1", domain.CartLine{Sku: "SKU-1", SubSku: "SKU-1-RED", Quantity: 2, PriceSnapshot: 50000})
	res, err := env.svc.PrepareCheckout(context.Background(), "user-1")
	require.NoError(t, err)

	_, err = env.svc.GetCheckout(context.Background(), res.Checkout.ID, "user-2")
	assert.ErrorIs(t, err, ErrNotOwner)

	env.advance(16 * time.Minute)

	chk, err := env.svc.GetCheckout(context.Background(), res.Checkout.ID, "user-1")
	require.NoError(t, err)
	// projected, not yet persisted by the reconciler
	assert.Equal(t, domain.StatusExpired, chk.Status)
	stored, err := env.repo.GetByID(context.Background(), res.Checkout.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusWaiting, stored.Status)
}

func TestListCheckouts(t *testing.T) {
	env := newTestEnv(t)
	env.ledger.setStock("SKU-1-RED", 10)
	env.fillCart(t, "user-1", domain.CartLine{Sku: "SKU-1", SubSku: "SKU-1-RED", Quantity: 1, PriceSnapshot: 50000})
	res, err := env.svc.PrepareCheckout(context.Background(), "user-1")
	require.NoError(t, err)
	_, err = env.svc.CancelCheckout(context.Background(), res.Checkout.ID, "user-1", "test")
	require.NoError(t, err)

	list, _, err := env.svc.ListCheckouts(context.Background(), CheckoutFilter{UserID: "user-1"})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, domain.StatusCancelled, list[0].Status)

	_, _, err = env.svc.ListCheckouts(context.Background(), CheckoutFilter{UserID: "user-1", Status: "BOGUS"})
	assert.ErrorIs(t, err, ErrValidation)

	_, _, err = env.svc.ListCheckouts(context.Background(), CheckoutFilter{})
	assert.ErrorIs(t, err, ErrValidation)
}
