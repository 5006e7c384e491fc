package webhook

import (
	"context"
	"encoding/json"

	"github.com/stripe/stripe-go/v82"

	"github.com/ratelink/ratelink/internal/config"
	"github.com/ratelink/ratelink/internal/domain/activity"
	"github.com/ratelink/ratelink/internal/domain/business"
	"github.com/ratelink/ratelink/internal/email"
	ierr "github.com/ratelink/ratelink/internal/errors"
	"github.com/ratelink/ratelink/internal/gateway"
	"github.com/ratelink/ratelink/internal/logger"
	"github.com/ratelink/ratelink/internal/types"
)

const webhookActor = "stripe_webhook"

// invoiceEvent is the minimal shape of an invoice event payload
type invoiceEvent struct {
	ID           string `json:"id"`
	Customer     string `json:"customer"`
	Subscription string `json:"subscription"`
	AmountPaid   int64  `json:"amount_paid"`
	AmountDue    int64  `json:"amount_due"`
}

// subscriptionEvent is the minimal shape of a subscription event payload
type subscriptionEvent struct {
	ID       string `json:"id"`
	Customer string `json:"customer"`
	Status   string `json:"status"`
}

// Verifier checks a raw payload signature and parses the event
type Verifier interface {
	ConstructWebhookEvent(payload []byte, signature string) (*stripe.Event, error)
}

// Processor ingests processor-driven events. Every revenue event lands as
// an immutable activity row keyed by the processor event id, so a redelivery
// is a no-op. Subscription state is mirrored separately, keyed by business.
type Processor struct {
	logger       *logger.Logger
	config       *config.Configuration
	verifier     Verifier
	businessRepo business.Repository
	activityRepo activity.Repository
	gateway      gateway.Gateway
	email        *email.Service
}

func NewProcessor(
	log *logger.Logger,
	cfg *config.Configuration,
	verifier Verifier,
	businessRepo business.Repository,
	activityRepo activity.Repository,
	gw gateway.Gateway,
	emailSvc *email.Service,
) *Processor {
	return &Processor{
		logger:       log,
		config:       cfg,
		verifier:     verifier,
		businessRepo: businessRepo,
		activityRepo: activityRepo,
		gateway:      gw,
		email:        emailSvc,
	}
}

// Process verifies the signature and dispatches the event. A signature
// failure is returned to the caller; processing failures for a valid event
// are logged and swallowed so the processor does not retry forever against
// a bug on our side.
func (p *Processor) Process(ctx context.Context, payload []byte, signature string) error {
	event, err := p.verifier.ConstructWebhookEvent(payload, signature)
	if err != nil {
		return err
	}

	if err := p.dispatch(ctx, event); err != nil {
		p.logger.Errorw("webhook event processing failed",
			"event_id", event.ID,
			"type", event.Type,
			"error", err,
		)
	}
	return nil
}

func (p *Processor) dispatch(ctx context.Context, event *stripe.Event) error {
	switch event.Type {
	case "invoice.paid":
		var inv invoiceEvent
		if err := json.Unmarshal(event.Data.Raw, &inv); err != nil {
			return ierr.WithError(err).
				WithHint("Malformed invoice payload").
				Mark(ierr.ErrValidation)
		}
		return p.handleInvoicePaid(ctx, event.ID, inv)

	case "invoice.payment_failed":
		var inv invoiceEvent
		if err := json.Unmarshal(event.Data.Raw, &inv); err != nil {
			return ierr.WithError(err).
				WithHint("Malformed invoice payload").
				Mark(ierr.ErrValidation)
		}
		return p.handlePaymentFailed(ctx, event.ID, inv)

	case "customer.subscription.deleted":
		var sub subscriptionEvent
		if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
			return ierr.WithError(err).
				WithHint("Malformed subscription payload").
				Mark(ierr.ErrValidation)
		}
		return p.handleSubscriptionDeleted(ctx, event.ID, sub)

	default:
		p.logger.Debugw("webhook event ignored", "event_id", event.ID, "type", event.Type)
		return nil
	}
}

func (p *Processor) handleInvoicePaid(ctx context.Context, eventID string, inv invoiceEvent) error {
	b, err := p.businessForCustomer(ctx, inv.Customer)
	if err != nil {
		return err
	}
	if b == nil {
		p.logger.Warnw("invoice paid for unknown customer",
			"event_id", eventID,
			"customer", inv.Customer,
		)
		return nil
	}

	entry := activity.New(types.ActivityInvoicePaid, b.ID, webhookActor).
		WithAmount(inv.AmountPaid).
		WithEventID(eventID)
	if err := p.activityRepo.Append(ctx, entry); err != nil {
		if ierr.IsAlreadyExists(err) {
			p.logger.Infow("duplicate webhook delivery dropped",
				"event_id", eventID,
				"business_id", b.ID,
			)
			return nil
		}
		return err
	}

	if inv.Subscription != "" {
		if err := p.mirrorSubscription(ctx, b, inv.Subscription); err != nil {
			p.logger.Errorw("failed to mirror subscription after invoice paid",
				"event_id", eventID,
				"business_id", b.ID,
				"error", err,
			)
		}
	}
	return nil
}

func (p *Processor) handlePaymentFailed(ctx context.Context, eventID string, inv invoiceEvent) error {
	b, err := p.businessForCustomer(ctx, inv.Customer)
	if err != nil {
		return err
	}
	if b == nil {
		p.logger.Warnw("payment failure for unknown customer",
			"event_id", eventID,
			"customer", inv.Customer,
		)
		return nil
	}

	entry := activity.New(types.ActivityPaymentFailed, b.ID, webhookActor).
		WithAmount(inv.AmountDue).
		WithEventID(eventID)
	if err := p.activityRepo.Append(ctx, entry); err != nil {
		if ierr.IsAlreadyExists(err) {
			return nil
		}
		return err
	}

	if err := p.updateStatus(ctx, b, func(s *business.Subscription) {
		s.Status = types.SubscriptionStatusPastDue
	}); err != nil {
		return err
	}

	if p.email != nil {
		if err := p.email.SendPaymentFailedNotice(ctx, b.ContactEmail, b.Name, b.Name); err != nil {
			p.logger.Warnw("failed to send payment failure email",
				"business_id", b.ID,
				"error", err,
			)
		}
	}
	return nil
}

func (p *Processor) handleSubscriptionDeleted(ctx context.Context, eventID string, sub subscriptionEvent) error {
	b, err := p.businessForCustomer(ctx, sub.Customer)
	if err != nil {
		return err
	}
	if b == nil || b.Subscription.StripeSubscriptionID != sub.ID {
		return nil
	}

	entry := activity.New(types.ActivitySubscriptionCancelled, b.ID, webhookActor).
		WithEventID(eventID)
	if err := p.activityRepo.Append(ctx, entry); err != nil {
		if ierr.IsAlreadyExists(err) {
			return nil
		}
		return err
	}

	return p.updateStatus(ctx, b, func(s *business.Subscription) {
		s.Status = types.SubscriptionStatusCanceled
		s.AutoRenew = false
	})
}

// mirrorSubscription pulls the live processor subscription and applies its
// status and period end to the local record
func (p *Processor) mirrorSubscription(ctx context.Context, b *business.Business, subscriptionID string) error {
	gctx, cancel := context.WithTimeout(ctx, p.config.Stripe.CallTimeout)
	defer cancel()

	sub, err := p.gateway.GetSubscription(gctx, subscriptionID)
	if err != nil {
		return err
	}

	return p.updateStatus(ctx, b, func(s *business.Subscription) {
		switch {
		case sub.Status == "canceled":
			s.Status = types.SubscriptionStatusCanceled
			s.AutoRenew = false
		case sub.Paused:
			s.Status = types.SubscriptionStatusPaused
			s.PauseStatus = true
		default:
			s.Status = types.SubscriptionStatusActive
		}
		if !sub.CurrentPeriodEnd.IsZero() {
			s.EndDate = sub.CurrentPeriodEnd
		}
		if s.StripeSubscriptionID == "" {
			s.StripeSubscriptionID = sub.ID
		}
		if sub.PriceID != "" {
			s.StripePriceID = sub.PriceID
		}
	})
}

// updateStatus applies fn under the version check, re-reading once when a
// concurrent lifecycle operation won the race
func (p *Processor) updateStatus(ctx context.Context, b *business.Business, fn func(*business.Subscription)) error {
	for attempt := 0; attempt < 2; attempt++ {
		fn(&b.Subscription)
		b.Subscription.LastModifiedBy = webhookActor

		err := p.businessRepo.UpdateSubscription(ctx, b)
		if err == nil {
			return nil
		}
		if !ierr.IsVersionConflict(err) {
			return err
		}

		fresh, gerr := p.businessRepo.Get(ctx, b.ID)
		if gerr != nil {
			return gerr
		}
		b = fresh
	}
	return ierr.NewError("subscription record keeps changing, giving up").
		WithReportableDetails(map[string]interface{}{
			"business_id": b.ID,
		}).
		Mark(ierr.ErrVersionConflict)
}

func (p *Processor) businessForCustomer(ctx context.Context, customerID string) (*business.Business, error) {
	if customerID == "" {
		return nil, nil
	}
	matches, err := p.businessRepo.List(ctx, &business.Filter{StripeCustomer: customerID})
	if err != nil {
		return nil, err
	}
	if len(matches) == 0 {
		return nil, nil
	}
	return matches[0], nil
}
