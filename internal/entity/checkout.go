package domain

import "time"

// CheckoutLine records the reservation outcome for one cart line.
// Reserved=false means the stock lock failed at prepare time; the line is
// kept for reporting but is neither billable nor committed at payment.
type CheckoutLine struct {
	Sku                    string `json:"sku"`
	SubSku                 string `json:"subSku"`
	Title                  string `json:"title,omitempty"`
	ImageURL               string `json:"imageUrl,omitempty"`
	Quantity               int64  `json:"quantity"`
	PriceSnapshot          int64  `json:"priceSnapshot"`
	Reserved               bool   `json:"reserved"`
	AvailableStockSnapshot int64  `json:"availableStockSnapshot"`
	ReservationError       string `json:"reservationError,omitempty"`
}

// AddressSnapshot is the shipping address frozen onto a checkout at finalize
// time. It is a copy, not a reference into the address book.
type AddressSnapshot struct {
	Label      string `json:"label,omitempty"`
	Recipient  string `json:"recipient"`
	Phone      string `json:"phone"`
	Street     string `json:"street"`
	City       string `json:"city"`
	Province   string `json:"province"`
	PostalCode string `json:"postalCode"`
}

// Checkout holds validated/locked items through the payment window.
//
// Lifecycle: WAITING -> PAID | CANCELLED | EXPIRED. PAID and CANCELLED come
// from user actions, EXPIRED only from the reconciler. All three are terminal.
type Checkout struct {
	ID              string           `json:"checkoutId"`
	UserID          string           `json:"userId"`
	OrderID         string           `json:"orderId,omitempty"`
	PaymentCode     string           `json:"paymentCode,omitempty"`
	SourceCartID    string           `json:"sourceCartId,omitempty"`
	Lines           []CheckoutLine   `json:"lines"`
	TotalPrice      int64            `json:"totalPrice"`
	Currency        string           `json:"currency"`
	Status          Status           `json:"status"`
	ShippingAddress *AddressSnapshot `json:"shippingAddress,omitempty"`
	LockedAt        time.Time        `json:"lockedAt"`
	ExpiresAt       time.Time        `json:"expiresAt"`
	CreatedAt       time.Time        `json:"createdAt"`
	PaidAt          *time.Time       `json:"paidAt,omitempty"`
	CancelledAt     *time.Time       `json:"cancelledAt,omitempty"`
	CancelReason    string           `json:"cancelReason,omitempty"`

	// StockReleased marks that the reconciler returned every reserved line to
	// the ledger. Internal bookkeeping; not part of any response.
	StockReleased bool `json:"stockReleased,omitempty"`
}

// CalculateTotalPrice sums price x quantity over reserved lines only.
// Unreserved lines are informational, never billable.
func (c *Checkout) CalculateTotalPrice() int64 {
	var total int64
	for _, l := range c.Lines {
		if l.Reserved {
			total += l.PriceSnapshot * l.Quantity
		}
	}
	return total
}

// IsExpired reports whether the checkout is WAITING at or past its deadline.
// The boundary matches the store's conditional claims: at exactly ExpiresAt
// the checkout is no longer payable, so it already reads as expired.
// Terminal checkouts are never expired, whatever their ExpiresAt says.
func (c *Checkout) IsExpired(now time.Time) bool {
	return c.Status == StatusWaiting && !c.ExpiresAt.After(now)
}

// EffectiveStatus is the status a reader observes: EXPIRED is projected at
// read time so callers never see a stale WAITING past its deadline, even
// before the reconciler has claimed the record.
func (c *Checkout) EffectiveStatus(now time.Time) Status {
	if c.IsExpired(now) {
		return StatusExpired
	}
	return c.Status
}

// IsFullyReserved reports whether every line holds a stock lock.
func (c *Checkout) IsFullyReserved() bool {
	if len(c.Lines) == 0 {
		return false
	}
	for _, l := range c.Lines {
		if !l.Reserved {
			return false
		}
	}
	return true
}

// HasReservedLines reports whether at least one line holds a stock lock.
func (c *Checkout) HasReservedLines() bool {
	for _, l := range c.Lines {
		if l.Reserved {
			return true
		}
	}
	return false
}

// ReservedLineCount returns how many lines hold a stock lock.
func (c *Checkout) ReservedLineCount() int {
	n := 0
	for _, l := range c.Lines {
		if l.Reserved {
			n++
		}
	}
	return n
}

// ReservedLines returns the lines holding a stock lock.
func (c *Checkout) ReservedLines() []CheckoutLine {
	out := make([]CheckoutLine, 0, len(c.Lines))
	for _, l := range c.Lines {
		if l.Reserved {
			out = append(out, l)
		}
	}
	return out
}

// IsFinalized reports whether finalize already attached an order id.
func (c *Checkout) IsFinalized() bool {
	return c.OrderID != ""
}
