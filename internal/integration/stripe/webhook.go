package stripe

import (
	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/webhook"

	ierr "github.com/ratelink/ratelink/internal/errors"
)

// ConstructWebhookEvent verifies the Stripe signature and parses the event.
// API version mismatches are tolerated because the CLI and dashboard may
// deliver events pinned to a different version; the signature check itself
// is unaffected.
func (c *Client) ConstructWebhookEvent(payload []byte, signature string) (*stripe.Event, error) {
	if c.cfg.WebhookSecret == "" {
		return nil, ierr.NewError("stripe webhook secret is not configured").
			WithHint("Configure the webhook signing secret").
			Mark(ierr.ErrSystem)
	}

	event, err := webhook.ConstructEventWithOptions(payload, signature, c.cfg.WebhookSecret, webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Invalid webhook signature").
			Mark(ierr.ErrUnauthorized)
	}
	return &event, nil
}
