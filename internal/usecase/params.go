package usecase

// System-parameter keys. Values live in the system_parameters table; the
// defaults come from configuration.
const (
	ParamCheckoutTTLSeconds  = "cart.checkout.ttl-seconds"
	ParamMaxItems            = "cart.max-items"
	ParamMaxQuantityPerItem  = "cart.max-quantity-per-item"
	ParamUseRedis            = "cart.checkout.use-redis"
	ParamExpiryCheckInterval = "cart.checkout.expiry-check-interval-seconds"
	ParamPaymentCodePrefix   = "cart.checkout.payment-code-prefix"
	ParamOrderIDPrefix       = "cart.checkout.order-id-prefix"
)

// ParamDefaults carries the config-sourced fallbacks for the keys above.
type ParamDefaults struct {
	CheckoutTTLSeconds int
	MaxItems           int
	MaxQuantityPerItem int
	UseRedis           bool
	ExpiryCheckSeconds int
	OrderIDPrefix      string
	PaymentCodePrefix  string
}
