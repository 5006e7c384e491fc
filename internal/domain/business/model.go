package business

import (
	"time"

	"github.com/samber/lo"

	ierr "github.com/ratelink/ratelink/internal/errors"
	"github.com/ratelink/ratelink/internal/types"
)

// Business is a tenant: it owns one storefront and exactly one subscription.
// Businesses are never hard deleted; cancellation is a status change on the
// embedded subscription.
type Business struct {
	ID           string   `json:"id" bson:"_id"`
	Name         string   `json:"name" bson:"name"`
	Subdomain    string   `json:"subdomain" bson:"subdomain"`
	Active       bool     `json:"active" bson:"active"`
	ContactEmail string   `json:"contact_email" bson:"contact_email"`
	AdminUserIDs []string `json:"admin_user_ids" bson:"admin_user_ids"`

	Subscription Subscription `json:"subscription" bson:"subscription"`

	// Version guards concurrent lifecycle operations: every subscription
	// write is a compare-and-swap on this field.
	Version int64 `json:"version" bson:"version"`

	types.BaseModel `bson:",inline"`
}

// Subscription is the canonical per tenant billing record, embedded in the
// Business document.
type Subscription struct {
	Plan   types.SubscriptionPlan   `json:"plan" bson:"plan"`
	Status types.SubscriptionStatus `json:"status" bson:"status"`

	StartDate time.Time `json:"start_date" bson:"start_date"`
	EndDate   time.Time `json:"end_date" bson:"end_date"`

	StripeCustomerID     string `json:"stripe_customer_id,omitempty" bson:"stripe_customer_id,omitempty"`
	StripeSubscriptionID string `json:"stripe_subscription_id,omitempty" bson:"stripe_subscription_id,omitempty"`
	StripePriceID        string `json:"stripe_price_id,omitempty" bson:"stripe_price_id,omitempty"`

	PauseStatus bool       `json:"pause_status" bson:"pause_status"`
	PausedAt    *time.Time `json:"paused_at,omitempty" bson:"paused_at,omitempty"`
	ResumedAt   *time.Time `json:"resumed_at,omitempty" bson:"resumed_at,omitempty"`

	AutoRenew            bool       `json:"auto_renew" bson:"auto_renew"`
	CancelledAt          *time.Time `json:"cancelled_at,omitempty" bson:"cancelled_at,omitempty"`
	CancellationReason   string     `json:"cancellation_reason,omitempty" bson:"cancellation_reason,omitempty"`
	CancellationFeedback string     `json:"cancellation_feedback,omitempty" bson:"cancellation_feedback,omitempty"`

	// PendingPlan marks a checkout that was started but not yet confirmed
	// by the processor.
	PendingPlan types.SubscriptionPlan `json:"pending_plan,omitempty" bson:"pending_plan,omitempty"`

	CustomDate     bool   `json:"custom_date" bson:"custom_date"`
	LastModifiedBy string `json:"last_modified_by,omitempty" bson:"last_modified_by,omitempty"`

	History []HistoryEntry `json:"history" bson:"history"`
}

// HistoryEntry is one append-only row in the subscription history
type HistoryEntry struct {
	ID        string                 `json:"id" bson:"id"`
	Action    types.HistoryAction    `json:"action" bson:"action"`
	FromPlan  types.SubscriptionPlan `json:"from_plan,omitempty" bson:"from_plan,omitempty"`
	ToPlan    types.SubscriptionPlan `json:"to_plan,omitempty" bson:"to_plan,omitempty"`
	Timestamp time.Time              `json:"timestamp" bson:"timestamp"`
	Actor     string                 `json:"actor" bson:"actor"`
	Reason    string                 `json:"reason,omitempty" bson:"reason,omitempty"`
}

// AppendHistory appends an entry; history is never truncated or rewritten
func (s *Subscription) AppendHistory(entry HistoryEntry) {
	if entry.ID == "" {
		entry.ID = types.GenerateUUIDWithPrefix(types.UUID_PREFIX_HISTORY)
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now().UTC()
	}
	s.History = append(s.History, entry)
}

// HasProcessorSubscription reports whether a processor subscription
// reference has been established for the current billing cycle.
func (s *Subscription) HasProcessorSubscription() bool {
	return s.StripeSubscriptionID != ""
}

// IsOwnedBy reports whether the caller owns this business, either through
// membership in the admin set or by matching the recorded contact email.
func (b *Business) IsOwnedBy(userID, email string) bool {
	if userID != "" && lo.Contains(b.AdminUserIDs, userID) {
		return true
	}
	return email != "" && b.ContactEmail == email
}

// Validate validates the business record
func (b *Business) Validate() error {
	if b.Name == "" {
		return ierr.NewError("business name is required").Mark(ierr.ErrValidation)
	}
	if b.ContactEmail == "" {
		return ierr.NewError("contact_email is required").Mark(ierr.ErrValidation)
	}
	if err := b.Subscription.Plan.Validate(); err != nil {
		return err
	}
	return b.Subscription.Status.Validate()
}
