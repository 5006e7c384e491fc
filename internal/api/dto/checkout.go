package dto

import (
	"github.com/ratelink/ratelink/internal/types"
	"github.com/ratelink/ratelink/internal/validator"
)

type SetupIntentResponse struct {
	SetupIntentID string `json:"setup_intent_id"`
	ClientSecret  string `json:"client_secret"`
	CustomerID    string `json:"customer_id"`
}

type CreatePaymentIntentRequest struct {
	Plan types.SubscriptionPlan `json:"plan" binding:"required"`
}

func (r *CreatePaymentIntentRequest) Validate() error {
	if err := validator.ValidateRequest(r); err != nil {
		return err
	}
	return r.Plan.Validate()
}

type PaymentIntentResponse struct {
	PaymentIntentID string `json:"payment_intent_id"`
	ClientSecret    string `json:"client_secret"`
	Amount          int64  `json:"amount"`
	Currency        string `json:"currency"`
}
