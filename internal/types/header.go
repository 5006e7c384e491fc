package types

const (
	HeaderRequestID       = "X-Request-ID"
	HeaderAuthorization   = "Authorization"
	HeaderStripeSignature = "Stripe-Signature"

	SessionCookieName = "ratelink_session"
)
