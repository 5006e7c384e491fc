package service

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/sourcegraph/conc/pool"

	"github.com/ratelink/ratelink/internal/domain/business"
	"github.com/ratelink/ratelink/internal/domain/outbox"
	ierr "github.com/ratelink/ratelink/internal/errors"
	"github.com/ratelink/ratelink/internal/gateway"
	"github.com/ratelink/ratelink/internal/types"
)

// Reconciler settles outbox intents whose remote outcome is unknown. It
// polls for unresolved intents, asks the processor for the live subscription
// state and mirrors it into the store. Intents that stay unresolvable past
// the attempt budget are marked failed and logged for manual review.
type Reconciler struct {
	ServiceParams
	stopCh chan struct{}
	doneCh chan struct{}
}

func NewReconciler(params ServiceParams) *Reconciler {
	return &Reconciler{
		ServiceParams: params,
		stopCh:        make(chan struct{}),
		doneCh:        make(chan struct{}),
	}
}

// Start runs the polling loop until Stop is called or the context ends
func (r *Reconciler) Start(ctx context.Context) {
	defer close(r.doneCh)

	ticker := time.NewTicker(r.Config.Reconciler.PollInterval)
	defer ticker.Stop()

	r.Logger.Infow("outbox reconciler started",
		"poll_interval", r.Config.Reconciler.PollInterval,
		"workers", r.Config.Reconciler.Workers,
	)

	for {
		select {
		case <-ctx.Done():
			return
		case <-r.stopCh:
			return
		case <-ticker.C:
			if err := r.RunOnce(ctx); err != nil {
				r.Logger.Errorw("reconciliation pass failed", "error", err)
			}
		}
	}
}

// Stop signals the loop to exit and waits for it
func (r *Reconciler) Stop() {
	close(r.stopCh)
	<-r.doneCh
}

// RunOnce reconciles one batch of unresolved intents
func (r *Reconciler) RunOnce(ctx context.Context) error {
	intents, err := r.OutboxRepo.ListUnresolved(ctx, 100)
	if err != nil {
		return err
	}
	if len(intents) == 0 {
		return nil
	}

	p := pool.New().WithMaxGoroutines(r.Config.Reconciler.Workers)
	for _, intent := range intents {
		intent := intent
		p.Go(func() {
			r.reconcileIntent(ctx, intent)
		})
	}
	p.Wait()
	return nil
}

func (r *Reconciler) reconcileIntent(ctx context.Context, intent *outbox.Intent) {
	intent.Attempts++

	err := r.settle(ctx, intent)
	now := time.Now().UTC()
	switch {
	case err == nil:
		intent.State = outbox.StateSucceeded
		intent.ResolvedAt = &now
		intent.LastError = ""
	case intent.Attempts >= r.Config.Reconciler.MaxAttempts:
		intent.State = outbox.StateFailed
		intent.ResolvedAt = &now
		intent.LastError = err.Error()
		r.Logger.Errorw("intent exhausted reconciliation attempts, needs manual review",
			"intent_id", intent.ID,
			"business_id", intent.BusinessID,
			"operation", intent.Operation,
			"error", err,
		)
	default:
		intent.State = outbox.StateDivergent
		intent.LastError = err.Error()
	}

	if uerr := r.OutboxRepo.Update(ctx, intent); uerr != nil {
		r.Logger.Errorw("failed to persist reconciled intent",
			"intent_id", intent.ID,
			"error", uerr,
		)
	}
}

// settle fetches the live processor subscription and mirrors it locally.
// The processor is the source of truth for any intent whose outcome was
// lost, whichever way the original call actually went.
func (r *Reconciler) settle(ctx context.Context, intent *outbox.Intent) error {
	b, err := r.BusinessRepo.Get(ctx, intent.BusinessID)
	if err != nil {
		return err
	}
	if !b.Subscription.HasProcessorSubscription() {
		// nothing remote to reconcile against
		return nil
	}

	var sub *gateway.Subscription
	op := func() error {
		gctx, cancel := context.WithTimeout(ctx, r.Config.Stripe.CallTimeout)
		defer cancel()

		var gerr error
		sub, gerr = r.Gateway.GetSubscription(gctx, b.Subscription.StripeSubscriptionID)
		if gerr != nil && ierr.IsNotFound(gerr) {
			// remote subscription is gone; treat as canceled
			sub = nil
			return nil
		}
		return gerr
	}

	bo := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 3), ctx)
	if err := backoff.Retry(op, bo); err != nil {
		return err
	}

	return r.mirror(ctx, b, sub)
}

// mirror applies the remote subscription state to the local record under
// the version check, retrying once on a concurrent write.
func (r *Reconciler) mirror(ctx context.Context, b *business.Business, sub *gateway.Subscription) error {
	for attempt := 0; attempt < 2; attempt++ {
		applyRemoteState(b, sub)

		err := r.BusinessRepo.UpdateSubscription(ctx, b)
		if err == nil {
			return nil
		}
		if !ierr.IsVersionConflict(err) {
			return err
		}

		fresh, gerr := r.BusinessRepo.Get(ctx, b.ID)
		if gerr != nil {
			return gerr
		}
		b = fresh
	}
	return ierr.NewError("could not mirror remote state, record keeps changing").
		WithReportableDetails(map[string]interface{}{
			"business_id": b.ID,
		}).
		Mark(ierr.ErrVersionConflict)
}

func applyRemoteState(b *business.Business, sub *gateway.Subscription) {
	now := time.Now().UTC()

	if sub == nil || sub.Status == "canceled" {
		b.Subscription.Status = types.SubscriptionStatusCanceled
		b.Subscription.AutoRenew = false
		if b.Subscription.CancelledAt == nil {
			b.Subscription.CancelledAt = &now
		}
		return
	}

	if sub.Paused {
		b.Subscription.Status = types.SubscriptionStatusPaused
		b.Subscription.PauseStatus = true
		if b.Subscription.PausedAt == nil {
			b.Subscription.PausedAt = &now
		}
	} else {
		b.Subscription.Status = types.SubscriptionStatusActive
		b.Subscription.PauseStatus = false
		b.Subscription.PausedAt = nil
	}

	if !sub.CurrentPeriodEnd.IsZero() {
		b.Subscription.EndDate = sub.CurrentPeriodEnd
	}
	if sub.PriceID != "" {
		b.Subscription.StripePriceID = sub.PriceID
	}
}
