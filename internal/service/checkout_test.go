package service

import (
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/ratelink/ratelink/internal/api/dto"
	"github.com/ratelink/ratelink/internal/auth"
	"github.com/ratelink/ratelink/internal/domain/business"
	ierr "github.com/ratelink/ratelink/internal/errors"
	"github.com/ratelink/ratelink/internal/gateway"
	"github.com/ratelink/ratelink/internal/testutil"
	"github.com/ratelink/ratelink/internal/types"
)

type CheckoutServiceSuite struct {
	testutil.BaseServiceTestSuite
	service CheckoutService
}

func TestCheckoutService(t *testing.T) {
	suite.Run(t, new(CheckoutServiceSuite))
}

func (s *CheckoutServiceSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()
	s.service = NewCheckoutService(ServiceParams{
		Logger:       s.GetLogger(),
		Config:       s.GetConfig(),
		BusinessRepo: s.GetStores().BusinessRepo,
		ActivityRepo: s.GetStores().ActivityRepo,
		OutboxRepo:   s.GetStores().OutboxRepo,
		Gateway:      s.GetGateway(),
		Guard:        auth.NewGuard(),
	})
}

func (s *CheckoutServiceSuite) seedBusiness() *business.Business {
	b := &business.Business{
		ID:           "biz_checkout",
		Name:         "Corner Cafe",
		ContactEmail: "owner@cafe.example",
		Active:       true,
		AdminUserIDs: []string{"user_owner"},
		Subscription: business.Subscription{
			Plan:   types.PlanTrial,
			Status: types.SubscriptionStatusTrialing,
		},
	}
	s.NoError(s.GetStores().BusinessRepo.Create(s.GetContext(), b))
	return b
}

func (s *CheckoutServiceSuite) owner() *auth.Identity {
	return &auth.Identity{ID: "user_owner", Email: "owner@cafe.example", Role: types.RoleAdmin}
}

func (s *CheckoutServiceSuite) TestCreateSetupIntentEnsuresCustomer() {
	b := s.seedBusiness()

	resp, err := s.service.CreateSetupIntent(s.GetContext(), s.owner(), b.ID)

	s.NoError(err)
	s.NotEmpty(resp.SetupIntentID)
	s.NotEmpty(resp.ClientSecret)
	s.NotEmpty(resp.CustomerID)

	stored, err := s.GetStores().BusinessRepo.Get(s.GetContext(), b.ID)
	s.NoError(err)
	s.Equal(resp.CustomerID, stored.Subscription.StripeCustomerID)
}

func (s *CheckoutServiceSuite) TestCreateSetupIntentReusesExistingCustomer() {
	b := s.seedBusiness()

	first, err := s.service.CreateSetupIntent(s.GetContext(), s.owner(), b.ID)
	s.NoError(err)
	second, err := s.service.CreateSetupIntent(s.GetContext(), s.owner(), b.ID)
	s.NoError(err)

	s.Equal(first.CustomerID, second.CustomerID)
}

func (s *CheckoutServiceSuite) TestCreatePaymentIntentMarksPendingPlan() {
	b := s.seedBusiness()
	s.GetGateway().Prices[s.GetConfig().Stripe.PricePremium] = &gateway.Price{
		ID:         s.GetConfig().Stripe.PricePremium,
		UnitAmount: 5900,
		Currency:   "usd",
	}

	resp, err := s.service.CreatePaymentIntent(s.GetContext(), s.owner(), b.ID, dto.CreatePaymentIntentRequest{
		Plan: types.PlanPremium,
	})

	s.NoError(err)
	s.Equal(int64(5900), resp.Amount)
	s.Equal("usd", resp.Currency)
	s.NotEmpty(resp.ClientSecret)

	stored, err := s.GetStores().BusinessRepo.Get(s.GetContext(), b.ID)
	s.NoError(err)
	s.Equal(types.PlanPremium, stored.Subscription.PendingPlan)
	s.Equal(types.PlanTrial, stored.Subscription.Plan)
	s.Equal(types.SubscriptionStatusTrialing, stored.Subscription.Status)
}

func (s *CheckoutServiceSuite) TestCreatePaymentIntentRejectsTrial() {
	b := s.seedBusiness()

	_, err := s.service.CreatePaymentIntent(s.GetContext(), s.owner(), b.ID, dto.CreatePaymentIntentRequest{
		Plan: types.PlanTrial,
	})

	s.Error(err)
	s.True(ierr.IsValidation(err))
	s.Zero(s.GetGateway().CallCount("CreatePaymentIntent"))
}

func (s *CheckoutServiceSuite) TestCreatePaymentIntentStrangerForbidden() {
	b := s.seedBusiness()
	stranger := &auth.Identity{ID: "user_x", Email: "x@elsewhere.example", Role: types.RoleAdmin}

	_, err := s.service.CreatePaymentIntent(s.GetContext(), stranger, b.ID, dto.CreatePaymentIntentRequest{
		Plan: types.PlanBasic,
	})

	s.Error(err)
	s.True(ierr.IsPermissionDenied(err))
	s.Zero(s.GetGateway().CallCount("EnsureCustomer"))
}
