package stripe

import (
	"net/http"
	"sync"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/stripe/stripe-go/v82"

	"github.com/ratelink/ratelink/internal/config"
	ierr "github.com/ratelink/ratelink/internal/errors"
	"github.com/ratelink/ratelink/internal/logger"
)

// Client wraps the Stripe SDK client. It is constructed once at process
// start and shared; the underlying SDK client is initialized lazily on
// first use so processes without billing configured can still boot.
type Client struct {
	cfg    config.StripeConfig
	logger *logger.Logger

	once sync.Once
	sc   *stripe.Client
	err  error
}

// NewClient creates the shared Stripe client wrapper
func NewClient(cfg *config.Configuration, log *logger.Logger) *Client {
	return &Client{
		cfg:    cfg.Stripe,
		logger: log,
	}
}

// get returns the SDK client, initializing it on first call. Fails with a
// non-retryable system error when the secret key is unset.
func (c *Client) get() (*stripe.Client, error) {
	c.once.Do(func() {
		if c.cfg.SecretKey == "" {
			c.err = ierr.NewError("stripe secret key is not configured").
				WithHint("Billing is not configured for this deployment").
				Mark(ierr.ErrSystem)
			return
		}

		retryClient := retryablehttp.NewClient()
		retryClient.RetryMax = 3
		retryClient.Logger = c.logger.GetRetryableHTTPLogger()
		httpClient := retryClient.StandardClient()
		httpClient.Timeout = c.cfg.CallTimeout

		c.sc = stripe.NewClient(c.cfg.SecretKey,
			stripe.WithBackends(&stripe.Backends{
				API: stripe.GetBackendWithConfig(stripe.APIBackend, &stripe.BackendConfig{
					HTTPClient: httpClient,
				}),
			}),
		)
		c.logger.Infow("stripe client initialized")
	})
	return c.sc, c.err
}

// wrapStripeError classifies an SDK error for the rest of the application
func (c *Client) wrapStripeError(err error, operation string) error {
	if err == nil {
		return nil
	}

	stripeErr, ok := err.(*stripe.Error)
	if !ok {
		return ierr.WithError(err).
			WithHintf("Stripe %s failed", operation).
			Mark(ierr.ErrHTTPClient)
	}

	if stripeErr.Code == stripe.ErrorCodeResourceMissing {
		return ierr.WithError(err).
			WithHintf("Stripe resource not found during %s", operation).
			Mark(ierr.ErrNotFound)
	}
	if stripeErr.HTTPStatusCode == http.StatusBadRequest {
		return ierr.WithError(err).
			WithHint(stripeErr.Msg).
			WithReportableDetails(map[string]interface{}{
				"code": string(stripeErr.Code),
			}).
			Mark(ierr.ErrValidation)
	}

	return ierr.WithError(err).
		WithHintf("Stripe %s failed", operation).
		WithReportableDetails(map[string]interface{}{
			"code":       string(stripeErr.Code),
			"request_id": stripeErr.RequestID,
		}).
		Mark(ierr.ErrHTTPClient)
}
