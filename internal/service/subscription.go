package service

import (
	"context"
	"errors"
	"time"

	"github.com/ratelink/ratelink/internal/api/dto"
	"github.com/ratelink/ratelink/internal/auth"
	"github.com/ratelink/ratelink/internal/domain/activity"
	"github.com/ratelink/ratelink/internal/domain/business"
	"github.com/ratelink/ratelink/internal/domain/outbox"
	ierr "github.com/ratelink/ratelink/internal/errors"
	"github.com/ratelink/ratelink/internal/gateway"
	"github.com/ratelink/ratelink/internal/types"
)

// SubscriptionService owns every subscription lifecycle operation. Each
// operation follows the same step order: read the current record, authorize,
// validate the transition against that snapshot, call the gateway, persist
// with a version check, append history and activity. The local record is
// mutated only after a gateway call returns success.
type SubscriptionService interface {
	GetSubscription(ctx context.Context, identity *auth.Identity, businessID string) (*dto.SubscriptionResponse, error)
	ChangePlan(ctx context.Context, identity *auth.Identity, businessID string, req dto.ChangePlanRequest) (*dto.ChangePlanResponse, error)
	Pause(ctx context.Context, identity *auth.Identity, businessID string) (*dto.SubscriptionStatusResponse, error)
	Resume(ctx context.Context, identity *auth.Identity, businessID string) (*dto.SubscriptionStatusResponse, error)
	Cancel(ctx context.Context, identity *auth.Identity, businessID string, req dto.CancelSubscriptionRequest) (*dto.SubscriptionStatusResponse, error)
	Renew(ctx context.Context, identity *auth.Identity, businessID string) (*dto.SubscriptionStatusResponse, error)
	ConfirmPayment(ctx context.Context, identity *auth.Identity, businessID string, req dto.ConfirmPaymentRequest) (*dto.ConfirmPaymentResponse, error)
	SetCustomDate(ctx context.Context, identity *auth.Identity, businessID string, req dto.SetCustomDateRequest) (*dto.SetCustomDateResponse, error)
}

type subscriptionService struct {
	ServiceParams
}

// NewSubscriptionService creates a new subscription lifecycle service
func NewSubscriptionService(params ServiceParams) SubscriptionService {
	return &subscriptionService{ServiceParams: params}
}

// loadForOperation reads the business, authorizes the caller against it and
// validates the state transition, in that order. No gateway call happens
// before all three pass.
func (s *subscriptionService) loadForOperation(
	ctx context.Context,
	identity *auth.Identity,
	businessID string,
	op types.SubscriptionOperation,
) (*business.Business, error) {
	b, err := s.BusinessRepo.Get(ctx, businessID)
	if err != nil {
		return nil, err
	}
	if err := s.Guard.Authorize(ctx, identity, b); err != nil {
		return nil, err
	}
	if err := types.ValidateTransition(b.Subscription.Status, op); err != nil {
		return nil, err
	}
	return b, nil
}

// callGateway wraps an externally mutating gateway call in an outbox intent:
// the intent is written before the call and handed back still unresolved when
// the call succeeds. The intent resolves in persist, once the local write
// lands; resolving it here would let a failed local write strand the remote
// change with nothing left for the reconciler to pick up. A timeout leaves
// the remote outcome unknown, so the intent is marked divergent for the
// reconciler and local state stays untouched.
func (s *subscriptionService) callGateway(
	ctx context.Context,
	b *business.Business,
	op types.SubscriptionOperation,
	payload map[string]interface{},
	call func(ctx context.Context) error,
) (*outbox.Intent, error) {
	intent := outbox.New(b.ID, op, payload)
	if err := s.OutboxRepo.Create(ctx, intent); err != nil {
		return nil, err
	}

	gctx, cancel := context.WithTimeout(ctx, s.Config.Stripe.CallTimeout)
	defer cancel()

	callErr := call(gctx)
	intent.Attempts++

	if callErr == nil {
		if err := s.OutboxRepo.Update(ctx, intent); err != nil {
			s.Logger.Errorw("failed to record outbox intent attempt",
				"intent_id", intent.ID,
				"business_id", b.ID,
				"operation", op,
				"error", err,
			)
		}
		return intent, nil
	}

	timedOut := errors.Is(callErr, context.DeadlineExceeded) || errors.Is(callErr, context.Canceled)
	if timedOut {
		intent.State = outbox.StateDivergent
	} else {
		intent.State = outbox.StateFailed
	}
	intent.LastError = callErr.Error()

	if err := s.OutboxRepo.Update(ctx, intent); err != nil {
		s.Logger.Errorw("failed to record outbox intent outcome",
			"intent_id", intent.ID,
			"business_id", b.ID,
			"operation", op,
			"error", err,
		)
	}

	if timedOut {
		return nil, ierr.WithError(callErr).
			WithHint("The payment processor did not respond in time; the operation was queued for reconciliation").
			WithReportableDetails(map[string]interface{}{
				"intent_id": intent.ID,
				"operation": op,
			}).
			Mark(ierr.ErrHTTPClient)
	}
	return nil, callErr
}

// persist writes the subscription back under the version check, resolves the
// outbox intent and appends the activity row. When the write fails after the
// gateway call already succeeded, the intent goes divergent so the reconciler
// replays the remote state; the remote change is never silently dropped.
// Activity append failures are logged, not surfaced: the state change has
// already landed and the history entry inside the document preserves the
// audit trail.
func (s *subscriptionService) persist(ctx context.Context, b *business.Business, entry *activity.Entry, intent *outbox.Intent) error {
	if err := s.BusinessRepo.UpdateSubscription(ctx, b); err != nil {
		if intent != nil {
			intent.State = outbox.StateDivergent
			intent.LastError = err.Error()
			if uerr := s.OutboxRepo.Update(ctx, intent); uerr != nil {
				s.Logger.Errorw("failed to mark outbox intent divergent after local write failure",
					"intent_id", intent.ID,
					"business_id", b.ID,
					"error", uerr,
				)
			}
		}
		return err
	}

	if intent != nil {
		now := time.Now().UTC()
		intent.State = outbox.StateSucceeded
		intent.ResolvedAt = &now
		if err := s.OutboxRepo.Update(ctx, intent); err != nil {
			s.Logger.Errorw("failed to resolve outbox intent",
				"intent_id", intent.ID,
				"business_id", b.ID,
				"error", err,
			)
		}
	}

	if entry != nil {
		if err := s.ActivityRepo.Append(ctx, entry); err != nil {
			s.Logger.Errorw("failed to append activity entry",
				"business_id", b.ID,
				"type", entry.Type,
				"error", err,
			)
		}
	}
	return nil
}

func (s *subscriptionService) GetSubscription(ctx context.Context, identity *auth.Identity, businessID string) (*dto.SubscriptionResponse, error) {
	b, err := s.BusinessRepo.Get(ctx, businessID)
	if err != nil {
		return nil, err
	}
	if err := s.Guard.Authorize(ctx, identity, b); err != nil {
		return nil, err
	}
	return dto.NewSubscriptionResponse(b), nil
}

func (s *subscriptionService) ChangePlan(ctx context.Context, identity *auth.Identity, businessID string, req dto.ChangePlanRequest) (*dto.ChangePlanResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if err := requireSuperAdmin(identity); err != nil {
		return nil, err
	}

	b, err := s.loadForOperation(ctx, identity, businessID, types.OperationChangePlan)
	if err != nil {
		return nil, err
	}

	if b.Subscription.Plan == req.NewPlan {
		return &dto.ChangePlanResponse{
			NewPlan:       b.Subscription.Plan,
			EndDate:       b.Subscription.EndDate,
			AlreadyOnPlan: true,
		}, nil
	}

	now := time.Now().UTC()
	fromPlan := b.Subscription.Plan

	b.Subscription.Plan = req.NewPlan
	b.Subscription.Status = types.SubscriptionStatusActive
	b.Subscription.StartDate = now
	b.Subscription.EndDate = types.EndDateForPlan(req.NewPlan, now)
	b.Subscription.CustomDate = false
	b.Subscription.LastModifiedBy = identity.Email
	b.Subscription.AppendHistory(business.HistoryEntry{
		Action:   types.HistoryActionPlanChanged,
		FromPlan: fromPlan,
		ToPlan:   req.NewPlan,
		Actor:    identity.Email,
	})

	entry := activity.New(types.ActivitySubscriptionPlanChange, b.ID, identity.Email)
	if err := s.persist(ctx, b, entry, nil); err != nil {
		return nil, err
	}

	s.Logger.Infow("subscription plan changed",
		"business_id", b.ID,
		"from_plan", fromPlan,
		"to_plan", req.NewPlan,
		"actor", identity.Email,
	)

	return &dto.ChangePlanResponse{
		NewPlan: b.Subscription.Plan,
		EndDate: b.Subscription.EndDate,
	}, nil
}

func (s *subscriptionService) Pause(ctx context.Context, identity *auth.Identity, businessID string) (*dto.SubscriptionStatusResponse, error) {
	b, err := s.loadForOperation(ctx, identity, businessID, types.OperationPause)
	if err != nil {
		return nil, err
	}
	if !b.Subscription.HasProcessorSubscription() {
		return nil, ierr.NewError("business has no processor subscription to pause").
			WithHint("Complete a checkout before pausing").
			WithReportableDetails(map[string]interface{}{
				"business_id": b.ID,
			}).
			Mark(ierr.ErrValidation)
	}

	subID := b.Subscription.StripeSubscriptionID
	intent, err := s.callGateway(ctx, b, types.OperationPause,
		map[string]interface{}{"subscription_id": subID},
		func(gctx context.Context) error {
			_, err := s.Gateway.PauseCollection(gctx, subID)
			return err
		})
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	b.Subscription.Status = types.SubscriptionStatusPaused
	b.Subscription.PauseStatus = true
	b.Subscription.PausedAt = &now
	b.Subscription.ResumedAt = nil
	b.Subscription.LastModifiedBy = identity.Email
	b.Subscription.AppendHistory(business.HistoryEntry{
		Action: types.HistoryActionPaused,
		Actor:  identity.Email,
	})

	entry := activity.New(types.ActivitySubscriptionPaused, b.ID, identity.Email)
	if err := s.persist(ctx, b, entry, intent); err != nil {
		return nil, err
	}

	s.Logger.Infow("subscription paused", "business_id", b.ID, "actor", identity.Email)

	return &dto.SubscriptionStatusResponse{
		SubscriptionID: subID,
		Status:         b.Subscription.Status,
	}, nil
}

func (s *subscriptionService) Resume(ctx context.Context, identity *auth.Identity, businessID string) (*dto.SubscriptionStatusResponse, error) {
	b, err := s.loadForOperation(ctx, identity, businessID, types.OperationResume)
	if err != nil {
		return nil, err
	}
	if !b.Subscription.HasProcessorSubscription() {
		return nil, ierr.NewError("business has no processor subscription to resume").
			WithHint("Complete a checkout before resuming").
			WithReportableDetails(map[string]interface{}{
				"business_id": b.ID,
			}).
			Mark(ierr.ErrValidation)
	}

	subID := b.Subscription.StripeSubscriptionID
	intent, err := s.callGateway(ctx, b, types.OperationResume,
		map[string]interface{}{"subscription_id": subID},
		func(gctx context.Context) error {
			_, err := s.Gateway.ResumeCollection(gctx, subID)
			return err
		})
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	b.Subscription.Status = types.SubscriptionStatusActive
	b.Subscription.PauseStatus = false
	b.Subscription.PausedAt = nil
	b.Subscription.ResumedAt = &now
	b.Subscription.LastModifiedBy = identity.Email
	b.Subscription.AppendHistory(business.HistoryEntry{
		Action: types.HistoryActionResumed,
		Actor:  identity.Email,
	})

	entry := activity.New(types.ActivitySubscriptionResumed, b.ID, identity.Email)
	if err := s.persist(ctx, b, entry, intent); err != nil {
		return nil, err
	}

	s.Logger.Infow("subscription resumed", "business_id", b.ID, "actor", identity.Email)

	return &dto.SubscriptionStatusResponse{
		SubscriptionID: subID,
		Status:         b.Subscription.Status,
	}, nil
}

// Cancel always lands locally. The remote cancellation is attempted best
// effort: a gateway failure is logged for reconciliation but never leaves
// the tenant billed with no way out.
func (s *subscriptionService) Cancel(ctx context.Context, identity *auth.Identity, businessID string, req dto.CancelSubscriptionRequest) (*dto.SubscriptionStatusResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	b, err := s.loadForOperation(ctx, identity, businessID, types.OperationCancel)
	if err != nil {
		return nil, err
	}

	var intent *outbox.Intent
	if b.Subscription.HasProcessorSubscription() {
		subID := b.Subscription.StripeSubscriptionID
		intent, err = s.callGateway(ctx, b, types.OperationCancel,
			map[string]interface{}{"subscription_id": subID},
			func(gctx context.Context) error {
				return s.Gateway.CancelSubscription(gctx, subID)
			})
		if err != nil {
			s.Logger.Errorw("remote cancellation failed, continuing with local cancel",
				"business_id", b.ID,
				"subscription_id", subID,
				"error", err,
			)
		}
	}

	now := time.Now().UTC()
	b.Subscription.Status = types.SubscriptionStatusCanceled
	b.Subscription.CancelledAt = &now
	b.Subscription.AutoRenew = false
	b.Subscription.CancellationReason = req.Reason
	b.Subscription.CancellationFeedback = req.Feedback
	b.Subscription.LastModifiedBy = identity.Email
	b.Subscription.AppendHistory(business.HistoryEntry{
		Action: types.HistoryActionCancelled,
		Actor:  identity.Email,
		Reason: req.Reason,
	})

	entry := activity.New(types.ActivitySubscriptionCancelled, b.ID, identity.Email)
	if err := s.persist(ctx, b, entry, intent); err != nil {
		return nil, err
	}

	s.Logger.Infow("subscription cancelled",
		"business_id", b.ID,
		"actor", identity.Email,
		"reason", req.Reason,
	)

	s.sendCancellationEmail(ctx, b)

	return &dto.SubscriptionStatusResponse{
		SubscriptionID: b.Subscription.StripeSubscriptionID,
		Status:         b.Subscription.Status,
	}, nil
}

func (s *subscriptionService) Renew(ctx context.Context, identity *auth.Identity, businessID string) (*dto.SubscriptionStatusResponse, error) {
	b, err := s.loadForOperation(ctx, identity, businessID, types.OperationRenew)
	if err != nil {
		return nil, err
	}
	if !b.Subscription.HasProcessorSubscription() {
		return nil, ierr.NewError("business has no processor subscription to renew").
			WithHint("Complete a checkout to start a new subscription").
			WithReportableDetails(map[string]interface{}{
				"business_id": b.ID,
			}).
			Mark(ierr.ErrValidation)
	}

	subID := b.Subscription.StripeSubscriptionID
	var periodEnd time.Time
	intent, err := s.callGateway(ctx, b, types.OperationRenew,
		map[string]interface{}{"subscription_id": subID},
		func(gctx context.Context) error {
			sub, err := s.Gateway.ReactivateSubscription(gctx, subID)
			if err != nil {
				return err
			}
			periodEnd = sub.CurrentPeriodEnd
			return nil
		})
	if err != nil {
		return nil, err
	}

	b.Subscription.Status = types.SubscriptionStatusActive
	b.Subscription.AutoRenew = true
	b.Subscription.CancelledAt = nil
	b.Subscription.CancellationReason = ""
	b.Subscription.CancellationFeedback = ""
	if !periodEnd.IsZero() {
		b.Subscription.EndDate = periodEnd
	}
	b.Subscription.LastModifiedBy = identity.Email
	b.Subscription.AppendHistory(business.HistoryEntry{
		Action: types.HistoryActionReactivated,
		Actor:  identity.Email,
	})

	entry := activity.New(types.ActivitySubscriptionRenewed, b.ID, identity.Email)
	if err := s.persist(ctx, b, entry, intent); err != nil {
		return nil, err
	}

	s.Logger.Infow("subscription renewed", "business_id", b.ID, "actor", identity.Email)

	return &dto.SubscriptionStatusResponse{
		SubscriptionID: subID,
		Status:         b.Subscription.Status,
	}, nil
}

func (s *subscriptionService) ConfirmPayment(ctx context.Context, identity *auth.Identity, businessID string, req dto.ConfirmPaymentRequest) (*dto.ConfirmPaymentResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	b, err := s.loadForOperation(ctx, identity, businessID, types.OperationConfirmPayment)
	if err != nil {
		return nil, err
	}

	gctx, cancel := context.WithTimeout(ctx, s.Config.Stripe.CallTimeout)
	defer cancel()

	pi, err := s.Gateway.GetPaymentIntent(gctx, req.PaymentIntentID)
	if err != nil {
		return nil, err
	}
	if pi.Status != gateway.PaymentIntentStatusSucceeded {
		return nil, ierr.NewError("payment has not succeeded").
			WithHint("The payment must complete before the subscription can be confirmed").
			WithReportableDetails(map[string]interface{}{
				"payment_intent_id": pi.ID,
				"status":            pi.Status,
			}).
			Mark(ierr.ErrValidation)
	}

	if req.SubscriptionID != "" {
		return s.confirmRecurring(gctx, identity, b, req.SubscriptionID)
	}
	return s.confirmOneOff(ctx, identity, b, pi.Amount, pi.Metadata)
}

// confirmRecurring mirrors the live processor subscription into the store
func (s *subscriptionService) confirmRecurring(ctx context.Context, identity *auth.Identity, b *business.Business, subscriptionID string) (*dto.ConfirmPaymentResponse, error) {
	sub, err := s.Gateway.GetSubscription(ctx, subscriptionID)
	if err != nil {
		return nil, err
	}

	plan := s.planForPrice(sub.PriceID, sub.Metadata)
	now := time.Now().UTC()

	b.Subscription.Plan = plan
	b.Subscription.Status = types.SubscriptionStatusActive
	b.Subscription.StartDate = now
	if !sub.CurrentPeriodEnd.IsZero() {
		b.Subscription.EndDate = sub.CurrentPeriodEnd
	} else {
		b.Subscription.EndDate = types.EndDateForPlan(plan, now)
	}
	b.Subscription.StripeSubscriptionID = sub.ID
	b.Subscription.StripePriceID = sub.PriceID
	if sub.CustomerID != "" {
		b.Subscription.StripeCustomerID = sub.CustomerID
	}
	b.Subscription.AutoRenew = true
	b.Subscription.PendingPlan = ""
	b.Subscription.LastModifiedBy = identity.Email
	b.Subscription.AppendHistory(business.HistoryEntry{
		Action: types.HistoryActionActivated,
		ToPlan: plan,
		Actor:  identity.Email,
	})

	entry := activity.New(types.ActivitySubscriptionActivated, b.ID, identity.Email)
	if err := s.persist(ctx, b, entry, nil); err != nil {
		return nil, err
	}

	s.Logger.Infow("subscription activated from checkout",
		"business_id", b.ID,
		"subscription_id", sub.ID,
		"plan", plan,
	)

	return &dto.ConfirmPaymentResponse{
		Subscription: dto.ConfirmedSubscription{
			ID:               sub.ID,
			Status:           b.Subscription.Status,
			CurrentPeriodEnd: b.Subscription.EndDate,
		},
	}, nil
}

// confirmOneOff activates a plan paid with a single charge (lifetime)
func (s *subscriptionService) confirmOneOff(ctx context.Context, identity *auth.Identity, b *business.Business, amount int64, metadata map[string]string) (*dto.ConfirmPaymentResponse, error) {
	plan := b.Subscription.PendingPlan
	if p, ok := metadata["plan"]; ok && p != "" {
		plan = types.SubscriptionPlan(p)
	}
	if plan == "" {
		return nil, ierr.NewError("payment intent carries no plan to activate").
			WithHint("Start the checkout again").
			Mark(ierr.ErrValidation)
	}
	if err := plan.Validate(); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	b.Subscription.Plan = plan
	b.Subscription.Status = types.SubscriptionStatusActive
	b.Subscription.StartDate = now
	b.Subscription.EndDate = types.EndDateForPlan(plan, now)
	b.Subscription.PendingPlan = ""
	b.Subscription.LastModifiedBy = identity.Email
	b.Subscription.AppendHistory(business.HistoryEntry{
		Action: types.HistoryActionActivated,
		ToPlan: plan,
		Actor:  identity.Email,
	})

	entry := activity.New(types.ActivityPaymentCompleted, b.ID, identity.Email).WithAmount(amount)
	if err := s.persist(ctx, b, entry, nil); err != nil {
		return nil, err
	}

	s.Logger.Infow("payment confirmed, plan activated",
		"business_id", b.ID,
		"plan", plan,
		"amount", amount,
	)

	return &dto.ConfirmPaymentResponse{
		Subscription: dto.ConfirmedSubscription{
			Status:           b.Subscription.Status,
			CurrentPeriodEnd: b.Subscription.EndDate,
		},
	}, nil
}

func (s *subscriptionService) SetCustomDate(ctx context.Context, identity *auth.Identity, businessID string, req dto.SetCustomDateRequest) (*dto.SetCustomDateResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if err := requireSuperAdmin(identity); err != nil {
		return nil, err
	}

	b, err := s.loadForOperation(ctx, identity, businessID, types.OperationSetCustomDate)
	if err != nil {
		return nil, err
	}

	b.Subscription.EndDate = req.EndDate.UTC()
	b.Subscription.CustomDate = true
	b.Subscription.LastModifiedBy = identity.Email
	b.Subscription.AppendHistory(business.HistoryEntry{
		Action: types.HistoryActionCustomDateSet,
		Actor:  identity.Email,
	})

	if err := s.persist(ctx, b, nil, nil); err != nil {
		return nil, err
	}

	s.Logger.Infow("custom end date set",
		"business_id", b.ID,
		"end_date", b.Subscription.EndDate,
		"actor", identity.Email,
	)

	return &dto.SetCustomDateResponse{EndDate: b.Subscription.EndDate}, nil
}

func (s *subscriptionService) sendCancellationEmail(ctx context.Context, b *business.Business) {
	if s.Email == nil {
		return
	}
	endDate := b.Subscription.EndDate.Format("January 2, 2006")
	if err := s.Email.SendCancellationConfirmation(ctx, b.ContactEmail, b.Name, b.Name, endDate); err != nil {
		s.Logger.Warnw("failed to send cancellation email",
			"business_id", b.ID,
			"error", err,
		)
	}
}

// planForPrice maps a processor price reference back to the plan it sells.
// Checkout metadata wins when present.
func (s *subscriptionService) planForPrice(priceID string, metadata map[string]string) types.SubscriptionPlan {
	if p, ok := metadata["plan"]; ok && p != "" {
		if plan := types.SubscriptionPlan(p); plan.Validate() == nil {
			return plan
		}
	}
	switch priceID {
	case s.Config.Stripe.PriceBasic:
		return types.PlanBasic
	case s.Config.Stripe.PricePremium:
		return types.PlanPremium
	}
	return types.PlanBasic
}

func requireSuperAdmin(identity *auth.Identity) error {
	if identity == nil {
		return ierr.NewError("no identity resolved").
			WithHint("Authentication required").
			Mark(ierr.ErrUnauthorized)
	}
	if identity.Role != types.RoleSuperAdmin {
		return ierr.NewError("operation requires super_admin role").
			WithHint("You do not have permission to perform this operation").
			Mark(ierr.ErrPermissionDenied)
	}
	return nil
}
