package stripe

import (
	"context"

	"github.com/stripe/stripe-go/v82"

	"github.com/ratelink/ratelink/internal/gateway"
)

// EnsureCustomer returns the existing Stripe customer for the email or
// creates a new one. The most recently created customer wins when the email
// is ambiguous.
func (c *Client) EnsureCustomer(ctx context.Context, email, name string, metadata map[string]string) (*gateway.Customer, error) {
	sc, err := c.get()
	if err != nil {
		return nil, err
	}

	listParams := &stripe.CustomerListParams{
		Email: stripe.String(email),
	}
	listParams.Limit = stripe.Int64(1)

	for existing, iterErr := range sc.V1Customers.List(ctx, listParams) {
		if iterErr != nil {
			return nil, c.wrapStripeError(iterErr, "customer lookup")
		}
		c.logger.Debugw("found existing stripe customer", "customer_id", existing.ID, "email", email)
		return &gateway.Customer{
			ID:    existing.ID,
			Email: existing.Email,
			Name:  existing.Name,
		}, nil
	}

	createParams := &stripe.CustomerCreateParams{
		Email: stripe.String(email),
	}
	if name != "" {
		createParams.Name = stripe.String(name)
	}
	for k, v := range metadata {
		createParams.AddMetadata(k, v)
	}

	created, err := sc.V1Customers.Create(ctx, createParams)
	if err != nil {
		return nil, c.wrapStripeError(err, "customer create")
	}

	c.logger.Infow("created stripe customer", "customer_id", created.ID, "email", email)
	return &gateway.Customer{
		ID:    created.ID,
		Email: created.Email,
		Name:  created.Name,
	}, nil
}
