package webhook

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/suite"
	"github.com/stripe/stripe-go/v82"

	"github.com/ratelink/ratelink/internal/config"
	"github.com/ratelink/ratelink/internal/domain/activity"
	"github.com/ratelink/ratelink/internal/domain/business"
	"github.com/ratelink/ratelink/internal/gateway"
	"github.com/ratelink/ratelink/internal/logger"
	"github.com/ratelink/ratelink/internal/testutil"
	"github.com/ratelink/ratelink/internal/types"
)

// passthroughVerifier parses the payload as an event without checking the
// signature, standing in for the stripe webhook verifier in tests
type passthroughVerifier struct{}

func (passthroughVerifier) ConstructWebhookEvent(payload []byte, signature string) (*stripe.Event, error) {
	var event stripe.Event
	if err := json.Unmarshal(payload, &event); err != nil {
		return nil, err
	}
	return &event, nil
}

type ProcessorSuite struct {
	suite.Suite
	ctx       context.Context
	processor *Processor
	stores    testutil.Stores
	gateway   *testutil.FakeGateway
}

func TestProcessor(t *testing.T) {
	suite.Run(t, new(ProcessorSuite))
}

func (s *ProcessorSuite) SetupTest() {
	s.ctx = context.Background()
	s.stores = testutil.Stores{
		BusinessRepo: testutil.NewInMemoryBusinessStore(),
		UserRepo:     testutil.NewInMemoryUserStore(),
		ActivityRepo: testutil.NewInMemoryActivityStore(),
		OutboxRepo:   testutil.NewInMemoryOutboxStore(),
	}
	s.gateway = testutil.NewFakeGateway()
	s.processor = NewProcessor(
		logger.GetLogger(),
		config.GetDefaultConfig(),
		passthroughVerifier{},
		s.stores.BusinessRepo,
		s.stores.ActivityRepo,
		s.gateway,
		nil,
	)
}

func (s *ProcessorSuite) seedBusiness() *business.Business {
	b := &business.Business{
		ID:           "biz_hook",
		Name:         "Corner Cafe",
		ContactEmail: "owner@cafe.example",
		Active:       true,
		Subscription: business.Subscription{
			Plan:                 types.PlanBasic,
			Status:               types.SubscriptionStatusActive,
			StripeCustomerID:     "cus_hook",
			StripeSubscriptionID: "sub_hook",
		},
	}
	s.NoError(s.stores.BusinessRepo.Create(s.ctx, b))
	return b
}

func (s *ProcessorSuite) eventPayload(id, eventType string, data interface{}) []byte {
	raw, err := json.Marshal(data)
	s.NoError(err)
	payload, err := json.Marshal(map[string]interface{}{
		"id":   id,
		"type": eventType,
		"data": map[string]interface{}{"object": json.RawMessage(raw)},
	})
	s.NoError(err)
	return payload
}

func (s *ProcessorSuite) invoicePayload(eventID string, amountPaid int64) []byte {
	return s.eventPayload(eventID, "invoice.paid", map[string]interface{}{
		"id":           "in_1",
		"customer":     "cus_hook",
		"subscription": "sub_hook",
		"amount_paid":  amountPaid,
	})
}

func (s *ProcessorSuite) paidActivities(businessID string) []*activity.Entry {
	entries, err := s.stores.ActivityRepo.List(s.ctx, &activity.Filter{
		BusinessID: businessID,
		Types:      []types.ActivityType{types.ActivityInvoicePaid},
	})
	s.NoError(err)
	return entries
}

func (s *ProcessorSuite) TestInvoicePaidRecordsActivityAndMirrors() {
	b := s.seedBusiness()
	s.gateway.Subscriptions["sub_hook"] = &gateway.Subscription{ID: "sub_hook", Status: "active"}

	s.NoError(s.processor.Process(s.ctx, s.invoicePayload("evt_1", 2900), "sig"))

	entries := s.paidActivities(b.ID)
	s.Len(entries, 1)
	s.NotNil(entries[0].Amount)
	s.Equal(int64(2900), *entries[0].Amount)
	s.Equal("evt_1", entries[0].EventID)
}

func (s *ProcessorSuite) TestDuplicateDeliveryIsDropped() {
	b := s.seedBusiness()

	payload := s.invoicePayload("evt_dup", 2900)
	s.NoError(s.processor.Process(s.ctx, payload, "sig"))
	s.NoError(s.processor.Process(s.ctx, payload, "sig"))

	s.Len(s.paidActivities(b.ID), 1)
}

func (s *ProcessorSuite) TestPaymentFailedMarksPastDue() {
	b := s.seedBusiness()

	payload := s.eventPayload("evt_fail", "invoice.payment_failed", map[string]interface{}{
		"id":         "in_2",
		"customer":   "cus_hook",
		"amount_due": 2900,
	})
	s.NoError(s.processor.Process(s.ctx, payload, "sig"))

	stored, err := s.stores.BusinessRepo.Get(s.ctx, b.ID)
	s.NoError(err)
	s.Equal(types.SubscriptionStatusPastDue, stored.Subscription.Status)
	s.Equal(webhookActor, stored.Subscription.LastModifiedBy)
}

func (s *ProcessorSuite) TestSubscriptionDeletedCancelsLocally() {
	b := s.seedBusiness()

	payload := s.eventPayload("evt_del", "customer.subscription.deleted", map[string]interface{}{
		"id":       "sub_hook",
		"customer": "cus_hook",
		"status":   "canceled",
	})
	s.NoError(s.processor.Process(s.ctx, payload, "sig"))

	stored, err := s.stores.BusinessRepo.Get(s.ctx, b.ID)
	s.NoError(err)
	s.Equal(types.SubscriptionStatusCanceled, stored.Subscription.Status)
	s.False(stored.Subscription.AutoRenew)
}

func (s *ProcessorSuite) TestSubscriptionDeletedForStaleSubscriptionIgnored() {
	b := s.seedBusiness()

	payload := s.eventPayload("evt_stale", "customer.subscription.deleted", map[string]interface{}{
		"id":       "sub_old",
		"customer": "cus_hook",
		"status":   "canceled",
	})
	s.NoError(s.processor.Process(s.ctx, payload, "sig"))

	stored, err := s.stores.BusinessRepo.Get(s.ctx, b.ID)
	s.NoError(err)
	s.Equal(types.SubscriptionStatusActive, stored.Subscription.Status)
}

func (s *ProcessorSuite) TestUnknownCustomerIsIgnored() {
	payload := s.eventPayload("evt_unknown", "invoice.paid", map[string]interface{}{
		"id":       "in_3",
		"customer": "cus_nobody",
	})
	s.NoError(s.processor.Process(s.ctx, payload, "sig"))
}
