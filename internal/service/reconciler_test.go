package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/ratelink/ratelink/internal/domain/business"
	"github.com/ratelink/ratelink/internal/domain/outbox"
	ierr "github.com/ratelink/ratelink/internal/errors"
	"github.com/ratelink/ratelink/internal/gateway"
	"github.com/ratelink/ratelink/internal/testutil"
	"github.com/ratelink/ratelink/internal/types"
)

type ReconcilerSuite struct {
	testutil.BaseServiceTestSuite
	reconciler *Reconciler
}

func TestReconciler(t *testing.T) {
	suite.Run(t, new(ReconcilerSuite))
}

func (s *ReconcilerSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()
	s.reconciler = NewReconciler(ServiceParams{
		Logger:       s.GetLogger(),
		Config:       s.GetConfig(),
		BusinessRepo: s.GetStores().BusinessRepo,
		ActivityRepo: s.GetStores().ActivityRepo,
		OutboxRepo:   s.GetStores().OutboxRepo,
		Gateway:      s.GetGateway(),
	})
}

func (s *ReconcilerSuite) seedBusiness(subID string) *business.Business {
	b := &business.Business{
		ID:           "biz_rec",
		Name:         "Corner Cafe",
		ContactEmail: "owner@cafe.example",
		Active:       true,
		Subscription: business.Subscription{
			Plan:                 types.PlanBasic,
			Status:               types.SubscriptionStatusActive,
			StripeSubscriptionID: subID,
		},
	}
	s.NoError(s.GetStores().BusinessRepo.Create(s.GetContext(), b))
	return b
}

func (s *ReconcilerSuite) seedDivergentIntent(businessID string, op types.SubscriptionOperation) *outbox.Intent {
	intent := outbox.New(businessID, op, nil)
	intent.State = outbox.StateDivergent
	intent.LastError = "context deadline exceeded"
	s.NoError(s.GetStores().OutboxRepo.Create(s.GetContext(), intent))
	return intent
}

func (s *ReconcilerSuite) TestDivergentPauseThatLandedRemotely() {
	b := s.seedBusiness("sub_rec")
	s.GetGateway().Subscriptions["sub_rec"] = &gateway.Subscription{
		ID:     "sub_rec",
		Status: "active",
		Paused: true,
	}
	intent := s.seedDivergentIntent(b.ID, types.OperationPause)

	s.NoError(s.reconciler.RunOnce(s.GetContext()))

	resolved, err := s.GetStores().OutboxRepo.Get(s.GetContext(), intent.ID)
	s.NoError(err)
	s.Equal(outbox.StateSucceeded, resolved.State)
	s.NotNil(resolved.ResolvedAt)

	stored, err := s.GetStores().BusinessRepo.Get(s.GetContext(), b.ID)
	s.NoError(err)
	s.Equal(types.SubscriptionStatusPaused, stored.Subscription.Status)
	s.True(stored.Subscription.PauseStatus)
	s.NotNil(stored.Subscription.PausedAt)
}

func (s *ReconcilerSuite) TestDivergentPauseThatNeverLanded() {
	b := s.seedBusiness("sub_rec")
	s.GetGateway().Subscriptions["sub_rec"] = &gateway.Subscription{
		ID:     "sub_rec",
		Status: "active",
		Paused: false,
	}
	intent := s.seedDivergentIntent(b.ID, types.OperationPause)

	s.NoError(s.reconciler.RunOnce(s.GetContext()))

	resolved, err := s.GetStores().OutboxRepo.Get(s.GetContext(), intent.ID)
	s.NoError(err)
	s.Equal(outbox.StateSucceeded, resolved.State)

	stored, err := s.GetStores().BusinessRepo.Get(s.GetContext(), b.ID)
	s.NoError(err)
	s.Equal(types.SubscriptionStatusActive, stored.Subscription.Status)
}

func (s *ReconcilerSuite) TestRemoteSubscriptionGoneTreatedAsCanceled() {
	b := s.seedBusiness("sub_gone")
	intent := s.seedDivergentIntent(b.ID, types.OperationCancel)

	s.NoError(s.reconciler.RunOnce(s.GetContext()))

	resolved, err := s.GetStores().OutboxRepo.Get(s.GetContext(), intent.ID)
	s.NoError(err)
	s.Equal(outbox.StateSucceeded, resolved.State)

	stored, err := s.GetStores().BusinessRepo.Get(s.GetContext(), b.ID)
	s.NoError(err)
	s.Equal(types.SubscriptionStatusCanceled, stored.Subscription.Status)
	s.False(stored.Subscription.AutoRenew)
	s.NotNil(stored.Subscription.CancelledAt)
}

func (s *ReconcilerSuite) TestIntentExhaustsAttempts() {
	b := s.seedBusiness("sub_rec")
	s.GetGateway().Subscriptions["sub_rec"] = &gateway.Subscription{ID: "sub_rec", Status: "active"}
	s.GetGateway().FailWith("GetSubscription", ierr.NewError("stripe down").Mark(ierr.ErrHTTPClient))

	intent := s.seedDivergentIntent(b.ID, types.OperationPause)
	intent.Attempts = s.GetConfig().Reconciler.MaxAttempts - 1
	s.NoError(s.GetStores().OutboxRepo.Update(s.GetContext(), intent))

	s.NoError(s.reconciler.RunOnce(s.GetContext()))

	resolved, err := s.GetStores().OutboxRepo.Get(s.GetContext(), intent.ID)
	s.NoError(err)
	s.Equal(outbox.StateFailed, resolved.State)
	s.NotEmpty(resolved.LastError)
	s.NotNil(resolved.ResolvedAt)
}

func (s *ReconcilerSuite) TestNothingToReconcile() {
	start := time.Now()
	s.NoError(s.reconciler.RunOnce(s.GetContext()))
	s.Less(time.Since(start), time.Second)
	s.Zero(s.GetGateway().CallCount("GetSubscription"))
}
