package email

import (
	"context"

	"github.com/resend/resend-go/v2"

	"github.com/ratelink/ratelink/internal/config"
	ierr "github.com/ratelink/ratelink/internal/errors"
)

// Client wraps the resend API client. When the email integration is
// disabled the client is still constructable and every send becomes a
// no-op for the caller to log.
type Client struct {
	enabled     bool
	fromAddress string
	resend      *resend.Client
}

func NewClient(cfg *config.Configuration) *Client {
	c := &Client{
		enabled:     cfg.Email.Enabled,
		fromAddress: cfg.Email.FromEmail,
	}
	if c.enabled {
		c.resend = resend.NewClient(cfg.Email.APIKey)
	}
	return c
}

func (c *Client) IsEnabled() bool {
	return c.enabled
}

func (c *Client) GetFromAddress() string {
	return c.fromAddress
}

// Send delivers a single email and returns the provider message id.
func (c *Client) Send(ctx context.Context, from, to, subject, html, text string) (string, error) {
	if !c.enabled {
		return "", ierr.NewError("email client is disabled").
			Mark(ierr.ErrSystem)
	}

	sent, err := c.resend.Emails.SendWithContext(ctx, &resend.SendEmailRequest{
		From:    from,
		To:      []string{to},
		Subject: subject,
		Html:    html,
		Text:    text,
	})
	if err != nil {
		return "", ierr.WithError(err).
			WithHint("Failed to send email").
			WithReportableDetails(map[string]interface{}{
				"to":      to,
				"subject": subject,
			}).
			Mark(ierr.ErrHTTPClient)
	}

	return sent.Id, nil
}
