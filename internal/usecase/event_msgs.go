package usecase

import "time"

// Lifecycle event types published to the checkout.events exchange.
const (
	EventCheckoutPrepared  = "checkout.prepared"
	EventCheckoutFinalized = "checkout.finalized"
	EventCheckoutPaid      = "checkout.paid"
	EventCheckoutCancelled = "checkout.cancelled"
	EventCheckoutExpired   = "checkout.expired"
)

// CheckoutEventMsg is the wire shape for lifecycle events.
type CheckoutEventMsg struct {
	Type       string    `json:"type"`
	CheckoutID string    `json:"checkoutId"`
	UserID     string    `json:"userId"`
	OrderID    string    `json:"orderId,omitempty"`
	TotalPrice int64     `json:"totalPrice"`
	Currency   string    `json:"currency,omitempty"`
	OccurredAt time.Time `json:"occurredAt"`
}

// PaymentStatusChangedMsg is consumed from the payment gateway's Kafka topic.
// Status "SUCCESS" confirms payment; anything else fails it.
type PaymentStatusChangedMsg struct {
	CheckoutID string `json:"checkout_id"`
	UserID     string `json:"user_id"`
	Status     string `json:"status"`
	Reason     string `json:"reason,omitempty"`
}
