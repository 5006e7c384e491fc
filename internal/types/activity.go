package types

// ActivityType classifies an append-only activity log row. The rows feed
// both the audit trail and the metrics aggregator.
type ActivityType string

const (
	ActivityInvoicePaid            ActivityType = "invoice_paid"
	ActivityPaymentCompleted       ActivityType = "payment_completed"
	ActivityPaymentFailed          ActivityType = "payment_failed"
	ActivitySubscriptionActivated  ActivityType = "subscription_activated"
	ActivitySubscriptionPlanChange ActivityType = "subscription_plan_changed"
	ActivitySubscriptionPaused     ActivityType = "subscription_paused"
	ActivitySubscriptionResumed    ActivityType = "subscription_resumed"
	ActivitySubscriptionCancelled  ActivityType = "subscription_cancelled"
	ActivitySubscriptionRenewed    ActivityType = "subscription_renewed"
)
