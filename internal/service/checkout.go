package service

import (
	"context"

	"github.com/ratelink/ratelink/internal/api/dto"
	"github.com/ratelink/ratelink/internal/auth"
	ierr "github.com/ratelink/ratelink/internal/errors"
	"github.com/ratelink/ratelink/internal/types"
)

// CheckoutService starts checkouts against the payment processor. It never
// activates a plan itself; activation happens through ConfirmPayment or the
// webhook reconciler once the processor reports success.
type CheckoutService interface {
	// CreateSetupIntent ensures a processor customer for the business and
	// returns an off-session setup intent for collecting a reusable payment
	// method
	CreateSetupIntent(ctx context.Context, identity *auth.Identity, businessID string) (*dto.SetupIntentResponse, error)

	// CreatePaymentIntent creates a charge for the plan's price and marks
	// the plan as pending on the subscription
	CreatePaymentIntent(ctx context.Context, identity *auth.Identity, businessID string, req dto.CreatePaymentIntentRequest) (*dto.PaymentIntentResponse, error)
}

type checkoutService struct {
	ServiceParams
}

func NewCheckoutService(params ServiceParams) CheckoutService {
	return &checkoutService{ServiceParams: params}
}

func (s *checkoutService) CreateSetupIntent(ctx context.Context, identity *auth.Identity, businessID string) (*dto.SetupIntentResponse, error) {
	b, err := s.BusinessRepo.Get(ctx, businessID)
	if err != nil {
		return nil, err
	}
	if err := s.Guard.Authorize(ctx, identity, b); err != nil {
		return nil, err
	}

	gctx, cancel := context.WithTimeout(ctx, s.Config.Stripe.CallTimeout)
	defer cancel()

	customer, err := s.Gateway.EnsureCustomer(gctx, b.ContactEmail, b.Name, map[string]string{
		"business_id": b.ID,
	})
	if err != nil {
		return nil, err
	}

	if b.Subscription.StripeCustomerID != customer.ID {
		b.Subscription.StripeCustomerID = customer.ID
		if err := s.BusinessRepo.UpdateSubscription(ctx, b); err != nil {
			return nil, err
		}
	}

	si, err := s.Gateway.CreateSetupIntent(gctx, customer.ID)
	if err != nil {
		return nil, err
	}

	s.Logger.Infow("setup intent created",
		"business_id", b.ID,
		"customer_id", customer.ID,
		"setup_intent_id", si.ID,
	)

	return &dto.SetupIntentResponse{
		SetupIntentID: si.ID,
		ClientSecret:  si.ClientSecret,
		CustomerID:    customer.ID,
	}, nil
}

func (s *checkoutService) CreatePaymentIntent(ctx context.Context, identity *auth.Identity, businessID string, req dto.CreatePaymentIntentRequest) (*dto.PaymentIntentResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if req.Plan == types.PlanTrial {
		return nil, ierr.NewError("trial plans are not purchasable").
			WithHint("Pick a paid plan").
			Mark(ierr.ErrValidation)
	}

	b, err := s.BusinessRepo.Get(ctx, businessID)
	if err != nil {
		return nil, err
	}
	if err := s.Guard.Authorize(ctx, identity, b); err != nil {
		return nil, err
	}

	priceID, err := s.priceForPlan(req.Plan)
	if err != nil {
		return nil, err
	}

	gctx, cancel := context.WithTimeout(ctx, s.Config.Stripe.CallTimeout)
	defer cancel()

	price, err := s.Gateway.GetPrice(gctx, priceID)
	if err != nil {
		return nil, err
	}

	customer, err := s.Gateway.EnsureCustomer(gctx, b.ContactEmail, b.Name, map[string]string{
		"business_id": b.ID,
	})
	if err != nil {
		return nil, err
	}

	pi, err := s.Gateway.CreatePaymentIntent(gctx, customer.ID, price.UnitAmount, price.Currency, map[string]string{
		"business_id": b.ID,
		"plan":        string(req.Plan),
	})
	if err != nil {
		return nil, err
	}

	b.Subscription.StripeCustomerID = customer.ID
	b.Subscription.PendingPlan = req.Plan
	if err := s.BusinessRepo.UpdateSubscription(ctx, b); err != nil {
		return nil, err
	}

	s.Logger.Infow("payment intent created",
		"business_id", b.ID,
		"plan", req.Plan,
		"amount", pi.Amount,
		"payment_intent_id", pi.ID,
	)

	return &dto.PaymentIntentResponse{
		PaymentIntentID: pi.ID,
		ClientSecret:    pi.ClientSecret,
		Amount:          pi.Amount,
		Currency:        pi.Currency,
	}, nil
}

func (s *checkoutService) priceForPlan(plan types.SubscriptionPlan) (string, error) {
	var priceID string
	switch plan {
	case types.PlanBasic:
		priceID = s.Config.Stripe.PriceBasic
	case types.PlanPremium:
		priceID = s.Config.Stripe.PricePremium
	case types.PlanLifetime:
		priceID = s.Config.Stripe.PriceLifetime
	}
	if priceID == "" {
		return "", ierr.NewErrorf("no price configured for plan %s", plan).
			WithHint("This plan is not available for purchase").
			Mark(ierr.ErrValidation)
	}
	return priceID, nil
}
