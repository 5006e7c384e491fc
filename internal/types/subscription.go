package types

import (
	"time"

	ierr "github.com/ratelink/ratelink/internal/errors"
)

// SubscriptionPlan is the named billing tier a business is on
type SubscriptionPlan string

const (
	PlanTrial    SubscriptionPlan = "trial"
	PlanBasic    SubscriptionPlan = "basic"
	PlanPremium  SubscriptionPlan = "premium"
	PlanLifetime SubscriptionPlan = "lifetime"
)

func (p SubscriptionPlan) Validate() error {
	switch p {
	case PlanTrial, PlanBasic, PlanPremium, PlanLifetime:
		return nil
	}
	return ierr.NewErrorf("invalid subscription plan: %s", p).
		WithHint("Plan must be one of trial, basic, premium, lifetime").
		Mark(ierr.ErrValidation)
}

// IsPaid reports whether the plan is billed through the payment processor
func (p SubscriptionPlan) IsPaid() bool {
	return p == PlanBasic || p == PlanPremium
}

// Duration windows for each plan. Lifetime plans get a far future end date
// and are treated as "no expiry".
const (
	TrialPeriod    = 7 * 24 * time.Hour
	PaidPlanPeriod = 30 * 24 * time.Hour
	LifetimeYears  = 100
)

// EndDateForPlan computes the billing window end for a plan starting at start
func EndDateForPlan(plan SubscriptionPlan, start time.Time) time.Time {
	switch plan {
	case PlanTrial:
		return start.Add(TrialPeriod)
	case PlanLifetime:
		return start.AddDate(LifetimeYears, 0, 0)
	default:
		return start.Add(PaidPlanPeriod)
	}
}

// SubscriptionStatus is the lifecycle state of a subscription
type SubscriptionStatus string

const (
	SubscriptionStatusTrialing SubscriptionStatus = "trialing"
	SubscriptionStatusActive   SubscriptionStatus = "active"
	SubscriptionStatusPaused   SubscriptionStatus = "paused"
	SubscriptionStatusPastDue  SubscriptionStatus = "past_due"
	SubscriptionStatusCanceled SubscriptionStatus = "canceled"
)

func (s SubscriptionStatus) Validate() error {
	switch s {
	case SubscriptionStatusTrialing, SubscriptionStatusActive,
		SubscriptionStatusPaused, SubscriptionStatusPastDue,
		SubscriptionStatusCanceled:
		return nil
	}
	return ierr.NewErrorf("invalid subscription status: %s", s).
		Mark(ierr.ErrValidation)
}

// SubscriptionOperation names one state changing billing action
type SubscriptionOperation string

const (
	OperationChangePlan     SubscriptionOperation = "change_plan"
	OperationPause          SubscriptionOperation = "pause"
	OperationResume         SubscriptionOperation = "resume"
	OperationCancel         SubscriptionOperation = "cancel"
	OperationRenew          SubscriptionOperation = "renew"
	OperationConfirmPayment SubscriptionOperation = "confirm_payment"
	OperationSetCustomDate  SubscriptionOperation = "set_custom_date"
)

// transitions is the explicit state machine: which operations are allowed
// from which status. Checked centrally before any operation proceeds.
var transitions = map[SubscriptionStatus]map[SubscriptionOperation]bool{
	SubscriptionStatusTrialing: {
		OperationChangePlan:     true,
		OperationCancel:         true,
		OperationConfirmPayment: true,
		OperationSetCustomDate:  true,
	},
	SubscriptionStatusActive: {
		OperationChangePlan:     true,
		OperationPause:          true,
		OperationCancel:         true,
		OperationRenew:          true,
		OperationConfirmPayment: true,
		OperationSetCustomDate:  true,
	},
	SubscriptionStatusPaused: {
		OperationChangePlan:     true,
		OperationResume:         true,
		OperationCancel:         true,
		OperationConfirmPayment: true,
		OperationSetCustomDate:  true,
	},
	SubscriptionStatusPastDue: {
		OperationChangePlan:     true,
		OperationCancel:         true,
		OperationRenew:          true,
		OperationConfirmPayment: true,
		OperationSetCustomDate:  true,
	},
	SubscriptionStatusCanceled: {
		OperationChangePlan:     true,
		OperationRenew:          true,
		OperationConfirmPayment: true,
		OperationSetCustomDate:  true,
	},
}

// CanTransition reports whether op is allowed from the given status
func CanTransition(status SubscriptionStatus, op SubscriptionOperation) bool {
	allowed, ok := transitions[status]
	if !ok {
		return false
	}
	return allowed[op]
}

// ValidateTransition returns a marked error when op is not allowed from status
func ValidateTransition(status SubscriptionStatus, op SubscriptionOperation) error {
	if CanTransition(status, op) {
		return nil
	}
	return ierr.NewErrorf("operation %s not allowed while subscription is %s", op, status).
		WithHint("The subscription is not in a state that allows this operation").
		WithReportableDetails(map[string]interface{}{
			"status":    status,
			"operation": op,
		}).
		Mark(ierr.ErrInvalidOperation)
}

// HistoryAction is the action recorded in a subscription history entry
type HistoryAction string

const (
	HistoryActionPlanChanged   HistoryAction = "plan_changed"
	HistoryActionPaused        HistoryAction = "paused"
	HistoryActionResumed       HistoryAction = "resumed"
	HistoryActionCancelled     HistoryAction = "cancelled"
	HistoryActionReactivated   HistoryAction = "reactivated"
	HistoryActionActivated     HistoryAction = "activated"
	HistoryActionCustomDateSet HistoryAction = "custom_date_set"
)
