package email

import (
	"bytes"
	"context"
	"html/template"

	"github.com/ratelink/ratelink/internal/logger"
)

// emailTemplates stores email templates as string constants
var emailTemplates = map[string]string{
	"cancellation-confirmation.html": `<!DOCTYPE html>
<html>
<head>
    <meta http-equiv="Content-Type" content="text/html; charset=UTF-8" />
    <title>Your RateLink subscription is cancelled</title>
</head>
<body style="font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, Helvetica, Arial, sans-serif; font-size: 14px; line-height: 1.6; color: #333;">
    <p>Hi {{.name}},</p>
    <p>We've cancelled the subscription for <strong>{{.business_name}}</strong>. Your review pages stay live until {{.end_date}}, after which collection links will be disabled.</p>
    <p>Changed your mind? You can reactivate any time from your dashboard and pick up right where you left off.</p>
    <p>Best,<br/>The RateLink team</p>
</body>
</html>`,
	"payment-failed.html": `<!DOCTYPE html>
<html>
<head>
    <meta http-equiv="Content-Type" content="text/html; charset=UTF-8" />
    <title>Payment failed for your RateLink subscription</title>
</head>
<body style="font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, Helvetica, Arial, sans-serif; font-size: 14px; line-height: 1.6; color: #333;">
    <p>Hi {{.name}},</p>
    <p>We couldn't collect the latest payment for <strong>{{.business_name}}</strong>. Your subscription is now marked past due.</p>
    <p>Please update your payment method from the billing page to keep review collection running. We'll retry automatically over the next few days.</p>
    <p>Best,<br/>The RateLink team</p>
</body>
</html>`,
}

// Service sends transactional lifecycle emails. Every send is
// best-effort: callers log failures and move on, billing state is
// never blocked on delivery.
type Service struct {
	client *Client
	logger *logger.Logger
}

func NewService(client *Client, log *logger.Logger) *Service {
	return &Service{
		client: client,
		logger: log,
	}
}

// SendCancellationConfirmation notifies the owner that the
// subscription was cancelled and until when access remains.
func (s *Service) SendCancellationConfirmation(ctx context.Context, to, name, businessName, endDate string) error {
	html, err := s.renderTemplate("cancellation-confirmation.html", map[string]interface{}{
		"name":          name,
		"business_name": businessName,
		"end_date":      endDate,
	})
	if err != nil {
		return err
	}
	return s.send(ctx, to, "Your RateLink subscription is cancelled", html)
}

// SendPaymentFailedNotice notifies the owner that a renewal charge
// failed and the subscription went past due.
func (s *Service) SendPaymentFailedNotice(ctx context.Context, to, name, businessName string) error {
	html, err := s.renderTemplate("payment-failed.html", map[string]interface{}{
		"name":          name,
		"business_name": businessName,
	})
	if err != nil {
		return err
	}
	return s.send(ctx, to, "Payment failed for your RateLink subscription", html)
}

func (s *Service) send(ctx context.Context, to, subject, html string) error {
	if !s.client.IsEnabled() {
		s.logger.Warnw("email client is disabled, skipping email send",
			"to", to,
			"subject", subject,
		)
		return nil
	}

	messageID, err := s.client.Send(ctx, s.client.GetFromAddress(), to, subject, html, "")
	if err != nil {
		s.logger.Errorw("failed to send email",
			"error", err,
			"to", to,
			"subject", subject,
		)
		return err
	}

	s.logger.Infow("email sent successfully",
		"message_id", messageID,
		"to", to,
		"subject", subject,
	)
	return nil
}

func (s *Service) renderTemplate(name string, data map[string]interface{}) (string, error) {
	tmplContent, ok := emailTemplates[name]
	if !ok {
		s.logger.Errorw("email template not found", "template", name)
		return "", nil
	}

	tmpl, err := template.New(name).Parse(tmplContent)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
