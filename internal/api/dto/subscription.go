package dto

import (
	"time"

	"github.com/ratelink/ratelink/internal/domain/business"
	ierr "github.com/ratelink/ratelink/internal/errors"
	"github.com/ratelink/ratelink/internal/types"
	"github.com/ratelink/ratelink/internal/validator"
)

type ChangePlanRequest struct {
	NewPlan types.SubscriptionPlan `json:"new_plan" binding:"required"`
}

func (r *ChangePlanRequest) Validate() error {
	if err := validator.ValidateRequest(r); err != nil {
		return err
	}
	return r.NewPlan.Validate()
}

type ChangePlanResponse struct {
	NewPlan types.SubscriptionPlan `json:"new_plan"`
	EndDate time.Time              `json:"end_date"`

	// AlreadyOnPlan signals a no-op: the business was already on the
	// requested plan and nothing was written.
	AlreadyOnPlan bool `json:"already_on_plan,omitempty"`
}

type CancelSubscriptionRequest struct {
	Reason   string `json:"reason,omitempty" binding:"omitempty,max=255"`
	Feedback string `json:"feedback,omitempty" binding:"omitempty,max=2000"`
}

func (r *CancelSubscriptionRequest) Validate() error {
	return validator.ValidateRequest(r)
}

type ConfirmPaymentRequest struct {
	PaymentIntentID string `json:"payment_intent_id" binding:"required"`

	// SubscriptionID is set when the checkout created a recurring processor
	// subscription; it is absent for one-off charges (e.g. lifetime).
	SubscriptionID string `json:"subscription_id,omitempty"`
}

func (r *ConfirmPaymentRequest) Validate() error {
	return validator.ValidateRequest(r)
}

type SetCustomDateRequest struct {
	EndDate time.Time `json:"end_date" binding:"required"`
}

func (r *SetCustomDateRequest) Validate() error {
	if err := validator.ValidateRequest(r); err != nil {
		return err
	}
	if !r.EndDate.After(time.Now().UTC()) {
		return ierr.NewError("end date must be strictly in the future").
			WithHint("Provide a future end date").
			WithReportableDetails(map[string]interface{}{
				"end_date": r.EndDate,
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}

type SetCustomDateResponse struct {
	EndDate time.Time `json:"end_date"`
}

// SubscriptionStatusResponse is the minimal status echo returned by the
// pause, resume, cancel and renew operations.
type SubscriptionStatusResponse struct {
	SubscriptionID string                   `json:"subscription_id,omitempty"`
	Status         types.SubscriptionStatus `json:"status"`
}

type ConfirmPaymentResponse struct {
	Subscription ConfirmedSubscription `json:"subscription"`
}

type ConfirmedSubscription struct {
	ID               string                   `json:"id,omitempty"`
	Status           types.SubscriptionStatus `json:"status"`
	CurrentPeriodEnd time.Time                `json:"current_period_end"`
}

// SubscriptionResponse is the full subscription view for dashboard reads
type SubscriptionResponse struct {
	BusinessID string                   `json:"business_id"`
	Plan       types.SubscriptionPlan   `json:"plan"`
	Status     types.SubscriptionStatus `json:"status"`
	StartDate  time.Time                `json:"start_date"`
	EndDate    time.Time                `json:"end_date"`
	AutoRenew  bool                     `json:"auto_renew"`
	PausedAt   *time.Time               `json:"paused_at,omitempty"`
	CustomDate bool                     `json:"custom_date"`
	History    []business.HistoryEntry  `json:"history"`
}

func NewSubscriptionResponse(b *business.Business) *SubscriptionResponse {
	return &SubscriptionResponse{
		BusinessID: b.ID,
		Plan:       b.Subscription.Plan,
		Status:     b.Subscription.Status,
		StartDate:  b.Subscription.StartDate,
		EndDate:    b.Subscription.EndDate,
		AutoRenew:  b.Subscription.AutoRenew,
		PausedAt:   b.Subscription.PausedAt,
		CustomDate: b.Subscription.CustomDate,
		History:    b.Subscription.History,
	}
}
