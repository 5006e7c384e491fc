package types

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	ierr "github.com/ratelink/ratelink/internal/errors"
)

func TestValidateTransition(t *testing.T) {
	cases := []struct {
		name    string
		status  SubscriptionStatus
		op      SubscriptionOperation
		allowed bool
	}{
		{"pause from active", SubscriptionStatusActive, OperationPause, true},
		{"pause from trialing", SubscriptionStatusTrialing, OperationPause, false},
		{"pause from paused", SubscriptionStatusPaused, OperationPause, false},
		{"pause from canceled", SubscriptionStatusCanceled, OperationPause, false},
		{"resume from paused", SubscriptionStatusPaused, OperationResume, true},
		{"resume from active", SubscriptionStatusActive, OperationResume, false},
		{"resume from canceled", SubscriptionStatusCanceled, OperationResume, false},
		{"renew from active", SubscriptionStatusActive, OperationRenew, true},
		{"renew from past_due", SubscriptionStatusPastDue, OperationRenew, true},
		{"renew from canceled", SubscriptionStatusCanceled, OperationRenew, true},
		{"renew from trialing", SubscriptionStatusTrialing, OperationRenew, false},
		{"renew from paused", SubscriptionStatusPaused, OperationRenew, false},
		{"cancel from active", SubscriptionStatusActive, OperationCancel, true},
		{"cancel from trialing", SubscriptionStatusTrialing, OperationCancel, true},
		{"cancel from paused", SubscriptionStatusPaused, OperationCancel, true},
		{"cancel from past_due", SubscriptionStatusPastDue, OperationCancel, true},
		{"cancel from canceled", SubscriptionStatusCanceled, OperationCancel, false},
		{"change plan from any status", SubscriptionStatusCanceled, OperationChangePlan, true},
		{"confirm payment from trialing", SubscriptionStatusTrialing, OperationConfirmPayment, true},
		{"custom date from canceled", SubscriptionStatusCanceled, OperationSetCustomDate, true},
		{"unknown status", SubscriptionStatus("limbo"), OperationPause, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateTransition(tc.status, tc.op)
			if tc.allowed {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
				assert.True(t, ierr.IsInvalidOperation(err))
			}
			assert.Equal(t, tc.allowed, CanTransition(tc.status, tc.op))
		})
	}
}

func TestEndDateForPlan(t *testing.T) {
	start := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

	assert.Equal(t, start.Add(7*24*time.Hour), EndDateForPlan(PlanTrial, start))
	assert.Equal(t, start.Add(30*24*time.Hour), EndDateForPlan(PlanBasic, start))
	assert.Equal(t, start.Add(30*24*time.Hour), EndDateForPlan(PlanPremium, start))
	assert.Equal(t, start.AddDate(100, 0, 0), EndDateForPlan(PlanLifetime, start))
}

func TestPlanValidate(t *testing.T) {
	for _, plan := range []SubscriptionPlan{PlanTrial, PlanBasic, PlanPremium, PlanLifetime} {
		assert.NoError(t, plan.Validate())
	}
	err := SubscriptionPlan("platinum").Validate()
	assert.Error(t, err)
	assert.True(t, ierr.IsValidation(err))
}

func TestPlanIsPaid(t *testing.T) {
	assert.True(t, PlanBasic.IsPaid())
	assert.True(t, PlanPremium.IsPaid())
	assert.False(t, PlanTrial.IsPaid())
	assert.False(t, PlanLifetime.IsPaid())
}
