package gateway

import (
	"context"
	"time"
)

// Customer is the processor side customer record
type Customer struct {
	ID    string
	Email string
	Name  string
}

// SetupIntent is an off-session, reusable payment method setup
type SetupIntent struct {
	ID           string
	ClientSecret string
	Status       string
}

// PaymentIntent is a one-off charge attempt in integer minor units
type PaymentIntent struct {
	ID           string
	ClientSecret string
	Amount       int64
	Currency     string
	Status       string
	Metadata     map[string]string
}

// PaymentIntentStatusSucceeded is the only status ConfirmPayment accepts
const PaymentIntentStatusSucceeded = "succeeded"

// Subscription mirrors the processor's live subscription state
type Subscription struct {
	ID                string
	CustomerID        string
	ItemID            string
	PriceID           string
	Status            string
	CancelAtPeriodEnd bool
	Paused            bool
	CurrentPeriodEnd  time.Time
	Metadata          map[string]string
}

// Price is processor price/product metadata
type Price struct {
	ID          string
	ProductID   string
	ProductName string
	UnitAmount  int64
	Currency    string
	Interval    string
}

// Gateway abstracts the external billing provider. Implementations must be
// process-wide, initialized once and reused across all operations. The local
// store is mutated only after a gateway call returns success.
type Gateway interface {
	// EnsureCustomer returns the existing customer for the email or creates one
	EnsureCustomer(ctx context.Context, email, name string, metadata map[string]string) (*Customer, error)

	// CreateSetupIntent creates an off-session setup intent for the customer
	CreateSetupIntent(ctx context.Context, customerID string) (*SetupIntent, error)

	// CreatePaymentIntent creates a charge for amount in integer minor units
	CreatePaymentIntent(ctx context.Context, customerID string, amount int64, currency string, metadata map[string]string) (*PaymentIntent, error)

	// GetPaymentIntent retrieves a payment intent by id
	GetPaymentIntent(ctx context.Context, id string) (*PaymentIntent, error)

	// GetSubscription retrieves a subscription by id
	GetSubscription(ctx context.Context, id string) (*Subscription, error)

	// PauseCollection pauses invoice collection (mark_uncollectible)
	PauseCollection(ctx context.Context, subscriptionID string) (*Subscription, error)

	// ResumeCollection clears the pause on invoice collection
	ResumeCollection(ctx context.Context, subscriptionID string) (*Subscription, error)

	// ReactivateSubscription clears cancel-at-period-end and reattaches the
	// current price with proration
	ReactivateSubscription(ctx context.Context, subscriptionID string) (*Subscription, error)

	// CancelSubscription cancels the subscription immediately
	CancelSubscription(ctx context.Context, subscriptionID string) error

	// GetPrice retrieves price and product metadata
	GetPrice(ctx context.Context, priceID string) (*Price, error)
}
