package stripe

import (
	"context"

	"github.com/stripe/stripe-go/v82"

	"github.com/ratelink/ratelink/internal/gateway"
)

// CreateSetupIntent creates an off-session setup intent so the customer's
// payment method can be reused for future subscription charges.
func (c *Client) CreateSetupIntent(ctx context.Context, customerID string) (*gateway.SetupIntent, error) {
	sc, err := c.get()
	if err != nil {
		return nil, err
	}

	params := &stripe.SetupIntentCreateParams{
		Customer: stripe.String(customerID),
		Usage:    stripe.String("off_session"),
	}

	si, err := sc.V1SetupIntents.Create(ctx, params)
	if err != nil {
		return nil, c.wrapStripeError(err, "setup intent create")
	}

	c.logger.Infow("created stripe setup intent", "setup_intent_id", si.ID, "customer_id", customerID)
	return &gateway.SetupIntent{
		ID:           si.ID,
		ClientSecret: si.ClientSecret,
		Status:       string(si.Status),
	}, nil
}

// CreatePaymentIntent creates a charge for amount in integer minor units
func (c *Client) CreatePaymentIntent(ctx context.Context, customerID string, amount int64, currency string, metadata map[string]string) (*gateway.PaymentIntent, error) {
	sc, err := c.get()
	if err != nil {
		return nil, err
	}

	params := &stripe.PaymentIntentCreateParams{
		Amount:   stripe.Int64(amount),
		Currency: stripe.String(currency),
		AutomaticPaymentMethods: &stripe.PaymentIntentCreateAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	if customerID != "" {
		params.Customer = stripe.String(customerID)
	}
	for k, v := range metadata {
		params.AddMetadata(k, v)
	}

	pi, err := sc.V1PaymentIntents.Create(ctx, params)
	if err != nil {
		return nil, c.wrapStripeError(err, "payment intent create")
	}

	c.logger.Infow("created stripe payment intent",
		"payment_intent_id", pi.ID,
		"amount", amount,
		"currency", currency)
	return paymentIntentFromStripe(pi), nil
}

// GetPaymentIntent retrieves a payment intent by id
func (c *Client) GetPaymentIntent(ctx context.Context, id string) (*gateway.PaymentIntent, error) {
	sc, err := c.get()
	if err != nil {
		return nil, err
	}

	pi, err := sc.V1PaymentIntents.Retrieve(ctx, id, &stripe.PaymentIntentRetrieveParams{})
	if err != nil {
		return nil, c.wrapStripeError(err, "payment intent retrieve")
	}
	return paymentIntentFromStripe(pi), nil
}

func paymentIntentFromStripe(pi *stripe.PaymentIntent) *gateway.PaymentIntent {
	if pi == nil {
		return nil
	}
	return &gateway.PaymentIntent{
		ID:           pi.ID,
		ClientSecret: pi.ClientSecret,
		Amount:       pi.Amount,
		Currency:     string(pi.Currency),
		Status:       string(pi.Status),
		Metadata:     pi.Metadata,
	}
}
