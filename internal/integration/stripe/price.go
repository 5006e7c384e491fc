package stripe

import (
	"context"
	"fmt"

	"github.com/stripe/stripe-go/v82"

	"github.com/ratelink/ratelink/internal/cache"
	"github.com/ratelink/ratelink/internal/gateway"
)

// GetPrice retrieves price and product metadata. Price metadata is the only
// gateway read that may be cached; authorization and metrics never are.
func (c *Client) GetPrice(ctx context.Context, priceID string) (*gateway.Price, error) {
	cacheKey := fmt.Sprintf("stripe:price:%s", priceID)
	if cached, ok := cache.Get[gateway.Price](ctx, cacheKey); ok {
		return cached, nil
	}

	sc, err := c.get()
	if err != nil {
		return nil, err
	}

	params := &stripe.PriceRetrieveParams{}
	params.AddExpand("product")

	price, err := sc.V1Prices.Retrieve(ctx, priceID, params)
	if err != nil {
		return nil, c.wrapStripeError(err, "price retrieve")
	}

	out := &gateway.Price{
		ID:         price.ID,
		UnitAmount: price.UnitAmount,
		Currency:   string(price.Currency),
	}
	if price.Recurring != nil {
		out.Interval = string(price.Recurring.Interval)
	}
	if price.Product != nil {
		out.ProductID = price.Product.ID
		out.ProductName = price.Product.Name
	}

	cache.Set(ctx, cacheKey, out)
	return out, nil
}
