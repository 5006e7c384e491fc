package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/ratelink/ratelink/internal/api/dto"
	"github.com/ratelink/ratelink/internal/auth"
	"github.com/ratelink/ratelink/internal/domain/activity"
	"github.com/ratelink/ratelink/internal/domain/business"
	"github.com/ratelink/ratelink/internal/domain/outbox"
	ierr "github.com/ratelink/ratelink/internal/errors"
	"github.com/ratelink/ratelink/internal/gateway"
	"github.com/ratelink/ratelink/internal/testutil"
	"github.com/ratelink/ratelink/internal/types"
)

type SubscriptionServiceSuite struct {
	testutil.BaseServiceTestSuite
	service SubscriptionService
	params  ServiceParams
}

func TestSubscriptionService(t *testing.T) {
	suite.Run(t, new(SubscriptionServiceSuite))
}

func (s *SubscriptionServiceSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()
	s.params = ServiceParams{
		Logger:       s.GetLogger(),
		Config:       s.GetConfig(),
		BusinessRepo: s.GetStores().BusinessRepo,
		UserRepo:     s.GetStores().UserRepo,
		ActivityRepo: s.GetStores().ActivityRepo,
		OutboxRepo:   s.GetStores().OutboxRepo,
		Gateway:      s.GetGateway(),
		Guard:        auth.NewGuard(),
	}
	s.service = NewSubscriptionService(s.params)
}

func (s *SubscriptionServiceSuite) superAdmin() *auth.Identity {
	return &auth.Identity{
		ID:    "user_root",
		Email: "root@ratelink.app",
		Name:  "Root",
		Role:  types.RoleSuperAdmin,
	}
}

func (s *SubscriptionServiceSuite) owner() *auth.Identity {
	return &auth.Identity{
		ID:    "user_owner",
		Email: "owner@cafe.example",
		Name:  "Owner",
		Role:  types.RoleAdmin,
	}
}

func (s *SubscriptionServiceSuite) stranger() *auth.Identity {
	return &auth.Identity{
		ID:    "user_other",
		Email: "other@elsewhere.example",
		Name:  "Other",
		Role:  types.RoleAdmin,
	}
}

func (s *SubscriptionServiceSuite) seedBusiness(plan types.SubscriptionPlan, status types.SubscriptionStatus, mutate func(*business.Business)) *business.Business {
	now := time.Now().UTC()
	b := &business.Business{
		ID:           "biz_test",
		Name:         "Corner Cafe",
		Subdomain:    "corner-cafe",
		Active:       true,
		ContactEmail: "owner@cafe.example",
		AdminUserIDs: []string{"user_owner"},
		Subscription: business.Subscription{
			Plan:      plan,
			Status:    status,
			StartDate: now.Add(-24 * time.Hour),
			EndDate:   types.EndDateForPlan(plan, now.Add(-24*time.Hour)),
		},
	}
	if mutate != nil {
		mutate(b)
	}
	s.NoError(s.GetStores().BusinessRepo.Create(s.GetContext(), b))
	return b
}

func (s *SubscriptionServiceSuite) seedRemoteSubscription(id string) {
	s.GetGateway().Subscriptions[id] = &gateway.Subscription{
		ID:               id,
		CustomerID:       "cus_test",
		Status:           "active",
		CurrentPeriodEnd: time.Now().UTC().Add(30 * 24 * time.Hour),
	}
}

func (s *SubscriptionServiceSuite) reload(id string) *business.Business {
	b, err := s.GetStores().BusinessRepo.Get(s.GetContext(), id)
	s.NoError(err)
	return b
}

// --- ChangePlan ---

func (s *SubscriptionServiceSuite) TestChangePlanSamePlanIsNoOp() {
	b := s.seedBusiness(types.PlanBasic, types.SubscriptionStatusActive, nil)

	resp, err := s.service.ChangePlan(s.GetContext(), s.superAdmin(), b.ID, dto.ChangePlanRequest{
		NewPlan: types.PlanBasic,
	})

	s.NoError(err)
	s.True(resp.AlreadyOnPlan)
	s.Equal(types.PlanBasic, resp.NewPlan)

	stored := s.reload(b.ID)
	s.Empty(stored.Subscription.History)
	s.Equal(b.Version, stored.Version)
}

func (s *SubscriptionServiceSuite) TestChangePlanTrialToPremium() {
	b := s.seedBusiness(types.PlanTrial, types.SubscriptionStatusTrialing, nil)

	resp, err := s.service.ChangePlan(s.GetContext(), s.superAdmin(), b.ID, dto.ChangePlanRequest{
		NewPlan: types.PlanPremium,
	})

	s.NoError(err)
	s.False(resp.AlreadyOnPlan)
	s.Equal(types.PlanPremium, resp.NewPlan)
	s.WithinDuration(time.Now().UTC().Add(30*24*time.Hour), resp.EndDate, 5*time.Second)

	stored := s.reload(b.ID)
	s.Equal(types.PlanPremium, stored.Subscription.Plan)
	s.Equal(types.SubscriptionStatusActive, stored.Subscription.Status)
	s.Len(stored.Subscription.History, 1)
	s.Equal(types.HistoryActionPlanChanged, stored.Subscription.History[0].Action)
	s.Equal(types.PlanTrial, stored.Subscription.History[0].FromPlan)
	s.Equal(types.PlanPremium, stored.Subscription.History[0].ToPlan)

	entries, err := s.GetStores().ActivityRepo.List(s.GetContext(), &activity.Filter{BusinessID: b.ID})
	s.NoError(err)
	s.Len(entries, 1)
	s.Equal(types.ActivitySubscriptionPlanChange, entries[0].Type)
}

func (s *SubscriptionServiceSuite) TestChangePlanRequiresSuperAdmin() {
	b := s.seedBusiness(types.PlanTrial, types.SubscriptionStatusTrialing, nil)

	_, err := s.service.ChangePlan(s.GetContext(), s.owner(), b.ID, dto.ChangePlanRequest{
		NewPlan: types.PlanPremium,
	})

	s.Error(err)
	s.True(ierr.IsPermissionDenied(err))
	s.Empty(s.reload(b.ID).Subscription.History)
}

func (s *SubscriptionServiceSuite) TestChangePlanRejectsInvalidPlan() {
	b := s.seedBusiness(types.PlanTrial, types.SubscriptionStatusTrialing, nil)

	_, err := s.service.ChangePlan(s.GetContext(), s.superAdmin(), b.ID, dto.ChangePlanRequest{
		NewPlan: "platinum",
	})

	s.Error(err)
	s.True(ierr.IsValidation(err))
}

// --- Pause ---

func (s *SubscriptionServiceSuite) TestPauseWithoutProcessorReference() {
	b := s.seedBusiness(types.PlanBasic, types.SubscriptionStatusActive, nil)

	_, err := s.service.Pause(s.GetContext(), s.owner(), b.ID)

	s.Error(err)
	s.True(ierr.IsValidation(err))

	stored := s.reload(b.ID)
	s.Equal(types.SubscriptionStatusActive, stored.Subscription.Status)
	s.False(stored.Subscription.PauseStatus)
	s.Zero(s.GetGateway().CallCount("PauseCollection"))
}

func (s *SubscriptionServiceSuite) TestPauseSuccess() {
	b := s.seedBusiness(types.PlanBasic, types.SubscriptionStatusActive, func(b *business.Business) {
		b.Subscription.StripeSubscriptionID = "sub_abc"
	})
	s.seedRemoteSubscription("sub_abc")

	resp, err := s.service.Pause(s.GetContext(), s.owner(), b.ID)

	s.NoError(err)
	s.Equal(types.SubscriptionStatusPaused, resp.Status)
	s.Equal("sub_abc", resp.SubscriptionID)
	s.Equal(1, s.GetGateway().CallCount("PauseCollection"))

	stored := s.reload(b.ID)
	s.Equal(types.SubscriptionStatusPaused, stored.Subscription.Status)
	s.True(stored.Subscription.PauseStatus)
	s.NotNil(stored.Subscription.PausedAt)
	s.WithinDuration(time.Now().UTC(), *stored.Subscription.PausedAt, 5*time.Second)

	intents := s.GetStores().OutboxRepo.All(s.GetContext())
	s.Len(intents, 1)
	s.Equal(outbox.StateSucceeded, intents[0].State)
	s.Equal(types.OperationPause, intents[0].Operation)
}

func (s *SubscriptionServiceSuite) TestPauseRejectedFromTrialing() {
	b := s.seedBusiness(types.PlanTrial, types.SubscriptionStatusTrialing, func(b *business.Business) {
		b.Subscription.StripeSubscriptionID = "sub_abc"
	})

	_, err := s.service.Pause(s.GetContext(), s.owner(), b.ID)

	s.Error(err)
	s.True(ierr.IsInvalidOperation(err))
	s.Zero(s.GetGateway().CallCount("PauseCollection"))
}

func (s *SubscriptionServiceSuite) TestPauseGatewayFailureLeavesStateUnchanged() {
	b := s.seedBusiness(types.PlanBasic, types.SubscriptionStatusActive, func(b *business.Business) {
		b.Subscription.StripeSubscriptionID = "sub_abc"
	})
	s.seedRemoteSubscription("sub_abc")
	s.GetGateway().FailWith("PauseCollection", ierr.NewError("boom").Mark(ierr.ErrHTTPClient))

	_, err := s.service.Pause(s.GetContext(), s.owner(), b.ID)

	s.Error(err)
	stored := s.reload(b.ID)
	s.Equal(types.SubscriptionStatusActive, stored.Subscription.Status)
	s.Nil(stored.Subscription.PausedAt)

	intents := s.GetStores().OutboxRepo.All(s.GetContext())
	s.Len(intents, 1)
	s.Equal(outbox.StateFailed, intents[0].State)
}

// racingPauseGateway lets the pause land remotely and then slips a competing
// local write in before the service persists, forcing a version conflict.
type racingPauseGateway struct {
	*testutil.FakeGateway
	store      business.Repository
	businessID string
}

func (g *racingPauseGateway) PauseCollection(ctx context.Context, subscriptionID string) (*gateway.Subscription, error) {
	sub, err := g.FakeGateway.PauseCollection(ctx, subscriptionID)
	if err != nil {
		return nil, err
	}
	other, err := g.store.Get(ctx, g.businessID)
	if err != nil {
		return nil, err
	}
	other.Subscription.LastModifiedBy = "support@ratelink.app"
	if err := g.store.UpdateSubscription(ctx, other); err != nil {
		return nil, err
	}
	return sub, nil
}

func (s *SubscriptionServiceSuite) TestPauseLocalWriteConflictQueuesDivergentIntent() {
	b := s.seedBusiness(types.PlanBasic, types.SubscriptionStatusActive, func(b *business.Business) {
		b.Subscription.StripeSubscriptionID = "sub_abc"
	})
	s.seedRemoteSubscription("sub_abc")

	params := s.params
	params.Gateway = &racingPauseGateway{
		FakeGateway: s.GetGateway(),
		store:       s.GetStores().BusinessRepo,
		businessID:  b.ID,
	}
	svc := NewSubscriptionService(params)

	_, err := svc.Pause(s.GetContext(), s.owner(), b.ID)

	s.Error(err)
	s.True(ierr.IsVersionConflict(err))

	// The remote pause landed but the local record still says active.
	s.True(s.GetGateway().Subscriptions["sub_abc"].Paused)
	stored := s.reload(b.ID)
	s.Equal(types.SubscriptionStatusActive, stored.Subscription.Status)

	// The intent must stay visible to the reconciler, not resolve succeeded.
	unresolved, lerr := s.GetStores().OutboxRepo.ListUnresolved(s.GetContext(), 10)
	s.NoError(lerr)
	s.Len(unresolved, 1)
	s.Equal(outbox.StateDivergent, unresolved[0].State)
	s.Equal(types.OperationPause, unresolved[0].Operation)
	s.NotEmpty(unresolved[0].LastError)
}

// --- Resume ---

func (s *SubscriptionServiceSuite) TestResumeRestoresActiveAndClearsPausedAt() {
	pausedAt := time.Now().UTC().Add(-time.Hour)
	b := s.seedBusiness(types.PlanBasic, types.SubscriptionStatusPaused, func(b *business.Business) {
		b.Subscription.StripeSubscriptionID = "sub_abc"
		b.Subscription.PauseStatus = true
		b.Subscription.PausedAt = &pausedAt
	})
	s.seedRemoteSubscription("sub_abc")

	resp, err := s.service.Resume(s.GetContext(), s.owner(), b.ID)

	s.NoError(err)
	s.Equal(types.SubscriptionStatusActive, resp.Status)
	s.Equal(1, s.GetGateway().CallCount("ResumeCollection"))

	stored := s.reload(b.ID)
	s.Equal(types.SubscriptionStatusActive, stored.Subscription.Status)
	s.False(stored.Subscription.PauseStatus)
	s.Nil(stored.Subscription.PausedAt)
	s.NotNil(stored.Subscription.ResumedAt)
}

func (s *SubscriptionServiceSuite) TestRePauseSetsFreshTimestamp() {
	b := s.seedBusiness(types.PlanBasic, types.SubscriptionStatusActive, func(b *business.Business) {
		b.Subscription.StripeSubscriptionID = "sub_abc"
	})
	s.seedRemoteSubscription("sub_abc")

	_, err := s.service.Pause(s.GetContext(), s.owner(), b.ID)
	s.NoError(err)
	first := *s.reload(b.ID).Subscription.PausedAt

	_, err = s.service.Resume(s.GetContext(), s.owner(), b.ID)
	s.NoError(err)

	time.Sleep(10 * time.Millisecond)

	_, err = s.service.Pause(s.GetContext(), s.owner(), b.ID)
	s.NoError(err)
	second := *s.reload(b.ID).Subscription.PausedAt

	s.True(second.After(first))
}

// --- Cancel ---

func (s *SubscriptionServiceSuite) TestCancelLandsLocallyDespiteGatewayFailure() {
	b := s.seedBusiness(types.PlanPremium, types.SubscriptionStatusActive, func(b *business.Business) {
		b.Subscription.StripeSubscriptionID = "sub_abc"
		b.Subscription.AutoRenew = true
	})
	s.seedRemoteSubscription("sub_abc")
	s.GetGateway().FailWith("CancelSubscription", ierr.NewError("stripe down").Mark(ierr.ErrHTTPClient))

	resp, err := s.service.Cancel(s.GetContext(), s.owner(), b.ID, dto.CancelSubscriptionRequest{
		Reason: "too expensive",
	})

	s.NoError(err)
	s.Equal(types.SubscriptionStatusCanceled, resp.Status)

	stored := s.reload(b.ID)
	s.Equal(types.SubscriptionStatusCanceled, stored.Subscription.Status)
	s.False(stored.Subscription.AutoRenew)
	s.NotNil(stored.Subscription.CancelledAt)
	s.Equal("too expensive", stored.Subscription.CancellationReason)
	s.Len(stored.Subscription.History, 1)
	s.Equal(types.HistoryActionCancelled, stored.Subscription.History[0].Action)
}

func (s *SubscriptionServiceSuite) TestCancelWithoutProcessorReference() {
	b := s.seedBusiness(types.PlanTrial, types.SubscriptionStatusTrialing, nil)

	resp, err := s.service.Cancel(s.GetContext(), s.owner(), b.ID, dto.CancelSubscriptionRequest{})

	s.NoError(err)
	s.Equal(types.SubscriptionStatusCanceled, resp.Status)
	s.Zero(s.GetGateway().CallCount("CancelSubscription"))
}

func (s *SubscriptionServiceSuite) TestCancelTwiceRejected() {
	b := s.seedBusiness(types.PlanBasic, types.SubscriptionStatusCanceled, nil)

	_, err := s.service.Cancel(s.GetContext(), s.owner(), b.ID, dto.CancelSubscriptionRequest{})

	s.Error(err)
	s.True(ierr.IsInvalidOperation(err))
}

// --- Renew ---

func (s *SubscriptionServiceSuite) TestRenewReactivatesAndAdoptsPeriodEnd() {
	b := s.seedBusiness(types.PlanPremium, types.SubscriptionStatusCanceled, func(b *business.Business) {
		now := time.Now().UTC()
		b.Subscription.StripeSubscriptionID = "sub_abc"
		b.Subscription.CancelledAt = &now
		b.Subscription.CancellationReason = "changed my mind"
	})
	periodEnd := time.Now().UTC().Add(14 * 24 * time.Hour)
	s.GetGateway().Subscriptions["sub_abc"] = &gateway.Subscription{
		ID:                "sub_abc",
		Status:            "active",
		CancelAtPeriodEnd: true,
		CurrentPeriodEnd:  periodEnd,
	}

	resp, err := s.service.Renew(s.GetContext(), s.owner(), b.ID)

	s.NoError(err)
	s.Equal(types.SubscriptionStatusActive, resp.Status)
	s.Equal(1, s.GetGateway().CallCount("ReactivateSubscription"))

	stored := s.reload(b.ID)
	s.Equal(types.SubscriptionStatusActive, stored.Subscription.Status)
	s.True(stored.Subscription.AutoRenew)
	s.Nil(stored.Subscription.CancelledAt)
	s.Empty(stored.Subscription.CancellationReason)
	s.WithinDuration(periodEnd, stored.Subscription.EndDate, time.Second)
	s.Len(stored.Subscription.History, 1)
	s.Equal(types.HistoryActionReactivated, stored.Subscription.History[0].Action)
}

func (s *SubscriptionServiceSuite) TestRenewWithoutProcessorReference() {
	b := s.seedBusiness(types.PlanBasic, types.SubscriptionStatusCanceled, nil)

	_, err := s.service.Renew(s.GetContext(), s.owner(), b.ID)

	s.Error(err)
	s.True(ierr.IsValidation(err))
}

// --- ConfirmPayment ---

func (s *SubscriptionServiceSuite) TestConfirmPaymentRejectsUnsucceededIntent() {
	b := s.seedBusiness(types.PlanTrial, types.SubscriptionStatusTrialing, nil)
	s.GetGateway().PaymentIntents["pi_1"] = &gateway.PaymentIntent{
		ID:     "pi_1",
		Status: "requires_payment_method",
	}

	_, err := s.service.ConfirmPayment(s.GetContext(), s.owner(), b.ID, dto.ConfirmPaymentRequest{
		PaymentIntentID: "pi_1",
	})

	s.Error(err)
	s.True(ierr.IsValidation(err))
	s.Equal(types.PlanTrial, s.reload(b.ID).Subscription.Plan)
}

func (s *SubscriptionServiceSuite) TestConfirmPaymentOneOffActivatesLifetime() {
	b := s.seedBusiness(types.PlanTrial, types.SubscriptionStatusTrialing, func(b *business.Business) {
		b.Subscription.PendingPlan = types.PlanLifetime
	})
	s.GetGateway().PaymentIntents["pi_1"] = &gateway.PaymentIntent{
		ID:     "pi_1",
		Status: "succeeded",
		Amount: 29900,
		Metadata: map[string]string{
			"plan": "lifetime",
		},
	}

	resp, err := s.service.ConfirmPayment(s.GetContext(), s.owner(), b.ID, dto.ConfirmPaymentRequest{
		PaymentIntentID: "pi_1",
	})

	s.NoError(err)
	s.Equal(types.SubscriptionStatusActive, resp.Subscription.Status)

	stored := s.reload(b.ID)
	s.Equal(types.PlanLifetime, stored.Subscription.Plan)
	s.Empty(stored.Subscription.PendingPlan)
	s.WithinDuration(time.Now().UTC().AddDate(100, 0, 0), stored.Subscription.EndDate, time.Minute)

	entries, err := s.GetStores().ActivityRepo.List(s.GetContext(), &activity.Filter{BusinessID: b.ID})
	s.NoError(err)
	s.Len(entries, 1)
	s.Equal(types.ActivityPaymentCompleted, entries[0].Type)
	s.NotNil(entries[0].Amount)
	s.Equal(int64(29900), *entries[0].Amount)
}

func (s *SubscriptionServiceSuite) TestConfirmPaymentMirrorsRecurringSubscription() {
	b := s.seedBusiness(types.PlanTrial, types.SubscriptionStatusTrialing, nil)
	s.GetGateway().PaymentIntents["pi_1"] = &gateway.PaymentIntent{
		ID:     "pi_1",
		Status: "succeeded",
		Amount: 5900,
	}
	periodEnd := time.Now().UTC().Add(30 * 24 * time.Hour)
	s.GetGateway().Subscriptions["sub_new"] = &gateway.Subscription{
		ID:               "sub_new",
		CustomerID:       "cus_test",
		PriceID:          s.GetConfig().Stripe.PricePremium,
		Status:           "active",
		CurrentPeriodEnd: periodEnd,
		Metadata: map[string]string{
			"plan": "premium",
		},
	}

	resp, err := s.service.ConfirmPayment(s.GetContext(), s.owner(), b.ID, dto.ConfirmPaymentRequest{
		PaymentIntentID: "pi_1",
		SubscriptionID:  "sub_new",
	})

	s.NoError(err)
	s.Equal("sub_new", resp.Subscription.ID)
	s.WithinDuration(periodEnd, resp.Subscription.CurrentPeriodEnd, time.Second)

	stored := s.reload(b.ID)
	s.Equal(types.PlanPremium, stored.Subscription.Plan)
	s.Equal(types.SubscriptionStatusActive, stored.Subscription.Status)
	s.Equal("sub_new", stored.Subscription.StripeSubscriptionID)
	s.True(stored.Subscription.AutoRenew)
	s.Len(stored.Subscription.History, 1)
	s.Equal(types.HistoryActionActivated, stored.Subscription.History[0].Action)
}

// --- SetCustomDate ---

func (s *SubscriptionServiceSuite) TestSetCustomDateRejectsPastDate() {
	b := s.seedBusiness(types.PlanBasic, types.SubscriptionStatusActive, nil)

	_, err := s.service.SetCustomDate(s.GetContext(), s.superAdmin(), b.ID, dto.SetCustomDateRequest{
		EndDate: time.Now().UTC().Add(-time.Minute),
	})

	s.Error(err)
	s.True(ierr.IsValidation(err))
	s.False(s.reload(b.ID).Subscription.CustomDate)
}

func (s *SubscriptionServiceSuite) TestSetCustomDateAcceptsFutureDate() {
	b := s.seedBusiness(types.PlanBasic, types.SubscriptionStatusActive, nil)
	future := time.Now().UTC().AddDate(1, 0, 0)

	resp, err := s.service.SetCustomDate(s.GetContext(), s.superAdmin(), b.ID, dto.SetCustomDateRequest{
		EndDate: future,
	})

	s.NoError(err)
	s.WithinDuration(future, resp.EndDate, time.Second)

	stored := s.reload(b.ID)
	s.True(stored.Subscription.CustomDate)
	s.WithinDuration(future, stored.Subscription.EndDate, time.Second)
	s.Len(stored.Subscription.History, 1)
	s.Equal(types.HistoryActionCustomDateSet, stored.Subscription.History[0].Action)
}

func (s *SubscriptionServiceSuite) TestSetCustomDateRequiresSuperAdmin() {
	b := s.seedBusiness(types.PlanBasic, types.SubscriptionStatusActive, nil)

	_, err := s.service.SetCustomDate(s.GetContext(), s.owner(), b.ID, dto.SetCustomDateRequest{
		EndDate: time.Now().UTC().AddDate(1, 0, 0),
	})

	s.Error(err)
	s.True(ierr.IsPermissionDenied(err))
}

// --- Authorization ---

func (s *SubscriptionServiceSuite) TestForbiddenCallerNeverReachesGateway() {
	b := s.seedBusiness(types.PlanBasic, types.SubscriptionStatusActive, func(b *business.Business) {
		b.Subscription.StripeSubscriptionID = "sub_abc"
	})
	s.seedRemoteSubscription("sub_abc")
	before := s.reload(b.ID)

	ops := []func() error{
		func() error { _, err := s.service.Pause(s.GetContext(), s.stranger(), b.ID); return err },
		func() error { _, err := s.service.Renew(s.GetContext(), s.stranger(), b.ID); return err },
		func() error {
			_, err := s.service.Cancel(s.GetContext(), s.stranger(), b.ID, dto.CancelSubscriptionRequest{})
			return err
		},
	}
	for _, op := range ops {
		err := op()
		s.Error(err)
		s.True(ierr.IsPermissionDenied(err))
	}

	s.Zero(s.GetGateway().CallCount("PauseCollection"))
	s.Zero(s.GetGateway().CallCount("ReactivateSubscription"))
	s.Zero(s.GetGateway().CallCount("CancelSubscription"))

	after := s.reload(b.ID)
	s.Equal(before.Version, after.Version)
	s.Equal(before.Subscription.Status, after.Subscription.Status)
}

func (s *SubscriptionServiceSuite) TestOwnerByContactEmailIsAuthorized() {
	b := s.seedBusiness(types.PlanBasic, types.SubscriptionStatusActive, func(b *business.Business) {
		b.AdminUserIDs = nil
	})

	resp, err := s.service.GetSubscription(s.GetContext(), s.owner(), b.ID)

	s.NoError(err)
	s.Equal(b.ID, resp.BusinessID)
}

func (s *SubscriptionServiceSuite) TestNilIdentityRejected() {
	b := s.seedBusiness(types.PlanBasic, types.SubscriptionStatusActive, nil)

	_, err := s.service.GetSubscription(s.GetContext(), nil, b.ID)

	s.Error(err)
	s.True(ierr.IsUnauthorized(err))
}

func (s *SubscriptionServiceSuite) TestUnknownBusiness() {
	_, err := s.service.GetSubscription(s.GetContext(), s.superAdmin(), "biz_missing")

	s.Error(err)
	s.True(ierr.IsNotFound(err))
}
