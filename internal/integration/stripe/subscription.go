package stripe

import (
	"context"
	"time"

	"github.com/stripe/stripe-go/v82"

	ierr "github.com/ratelink/ratelink/internal/errors"
	"github.com/ratelink/ratelink/internal/gateway"
)

// GetSubscription retrieves a subscription by id
func (c *Client) GetSubscription(ctx context.Context, id string) (*gateway.Subscription, error) {
	sc, err := c.get()
	if err != nil {
		return nil, err
	}

	params := &stripe.SubscriptionRetrieveParams{}
	params.AddExpand("items.data.price")

	sub, err := sc.V1Subscriptions.Retrieve(ctx, id, params)
	if err != nil {
		return nil, c.wrapStripeError(err, "subscription retrieve")
	}
	return subscriptionFromStripe(sub), nil
}

// PauseCollection pauses invoice collection with mark_uncollectible so no
// invoices accrue while the subscription is paused.
func (c *Client) PauseCollection(ctx context.Context, subscriptionID string) (*gateway.Subscription, error) {
	sc, err := c.get()
	if err != nil {
		return nil, err
	}

	params := &stripe.SubscriptionUpdateParams{
		PauseCollection: &stripe.SubscriptionUpdatePauseCollectionParams{
			Behavior: stripe.String("mark_uncollectible"),
		},
	}

	sub, err := sc.V1Subscriptions.Update(ctx, subscriptionID, params)
	if err != nil {
		return nil, c.wrapStripeError(err, "pause collection")
	}

	c.logger.Infow("paused stripe collection", "subscription_id", subscriptionID)
	return subscriptionFromStripe(sub), nil
}

// ResumeCollection clears pause_collection so billing resumes
func (c *Client) ResumeCollection(ctx context.Context, subscriptionID string) (*gateway.Subscription, error) {
	sc, err := c.get()
	if err != nil {
		return nil, err
	}

	// Stripe clears the pause when pause_collection is set to an empty value
	params := &stripe.SubscriptionUpdateParams{}
	params.AddExtra("pause_collection", "")

	sub, err := sc.V1Subscriptions.Update(ctx, subscriptionID, params)
	if err != nil {
		return nil, c.wrapStripeError(err, "resume collection")
	}

	c.logger.Infow("resumed stripe collection", "subscription_id", subscriptionID)
	return subscriptionFromStripe(sub), nil
}

// ReactivateSubscription clears cancel-at-period-end and reattaches the
// subscription's current price with proration so the next invoice reflects
// the renewal.
func (c *Client) ReactivateSubscription(ctx context.Context, subscriptionID string) (*gateway.Subscription, error) {
	sc, err := c.get()
	if err != nil {
		return nil, err
	}

	current, err := c.GetSubscription(ctx, subscriptionID)
	if err != nil {
		return nil, err
	}
	if current.ItemID == "" || current.PriceID == "" {
		return nil, ierr.NewError("subscription has no item to reattach").
			WithHint("The subscription has no price item and cannot be renewed").
			Mark(ierr.ErrInvalidOperation)
	}

	params := &stripe.SubscriptionUpdateParams{
		CancelAtPeriodEnd: stripe.Bool(false),
		ProrationBehavior: stripe.String("create_prorations"),
		Items: []*stripe.SubscriptionUpdateItemParams{
			{
				ID:    stripe.String(current.ItemID),
				Price: stripe.String(current.PriceID),
			},
		},
	}

	sub, err := sc.V1Subscriptions.Update(ctx, subscriptionID, params)
	if err != nil {
		return nil, c.wrapStripeError(err, "subscription reactivate")
	}

	c.logger.Infow("reactivated stripe subscription", "subscription_id", subscriptionID)
	return subscriptionFromStripe(sub), nil
}

// CancelSubscription cancels the subscription immediately
func (c *Client) CancelSubscription(ctx context.Context, subscriptionID string) error {
	sc, err := c.get()
	if err != nil {
		return err
	}

	_, err = sc.V1Subscriptions.Cancel(ctx, subscriptionID, &stripe.SubscriptionCancelParams{})
	if err != nil {
		return c.wrapStripeError(err, "subscription cancel")
	}

	c.logger.Infow("cancelled stripe subscription", "subscription_id", subscriptionID)
	return nil
}

func subscriptionFromStripe(sub *stripe.Subscription) *gateway.Subscription {
	if sub == nil {
		return nil
	}

	out := &gateway.Subscription{
		ID:                sub.ID,
		Status:            string(sub.Status),
		CancelAtPeriodEnd: sub.CancelAtPeriodEnd,
		Paused:            sub.PauseCollection != nil && sub.PauseCollection.Behavior != "",
		Metadata:          sub.Metadata,
	}
	if sub.Customer != nil {
		out.CustomerID = sub.Customer.ID
	}
	if sub.Items != nil && len(sub.Items.Data) > 0 {
		item := sub.Items.Data[0]
		out.ItemID = item.ID
		out.CurrentPeriodEnd = time.Unix(item.CurrentPeriodEnd, 0).UTC()
		if item.Price != nil {
			out.PriceID = item.Price.ID
		}
	}
	return out
}
