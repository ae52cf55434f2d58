package usecase

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation covers malformed or missing input.
	ErrValidation = errors.New("validation failed")

	// ErrNotFound covers absent checkouts, carts and addresses. Ownership
	// violations surface as ErrNotOwner internally but must be mapped to
	// not-found at the transport edge so existence is not leaked.
	ErrNotFound = errors.New("not found")

	// ErrNotOwner means the caller is not the checkout's owner.
	ErrNotOwner = errors.New("not owner")

	// ErrEmptyCart means there is nothing to check out.
	ErrEmptyCart = fmt.Errorf("%w: cart is empty", ErrValidation)

	// ErrInvalidState means a transition was attempted from a terminal or
	// mismatched state. The named variants below let clients render "already
	// paid" vs "already cancelled" vs "expired" instead of a generic conflict.
	ErrInvalidState     = errors.New("invalid checkout state")
	ErrAlreadyPaid      = fmt.Errorf("%w: already paid", ErrInvalidState)
	ErrAlreadyCancelled = fmt.Errorf("%w: already cancelled", ErrInvalidState)
	ErrCheckoutExpired  = fmt.Errorf("%w: checkout expired", ErrInvalidState)

	// ErrNothingReserved means a checkout with zero locked lines cannot be paid.
	ErrNothingReserved = errors.New("no reserved items to pay")

	// ErrInventoryUnavailable means the ledger could not be reached; the whole
	// call failed and nothing was locked. Retryable.
	ErrInventoryUnavailable = errors.New("inventory ledger unavailable")

	// ErrAddressRequired means finalize got neither an address id nor a snapshot.
	ErrAddressRequired = fmt.Errorf("%w: exactly one of address id or new address required", ErrValidation)
)
