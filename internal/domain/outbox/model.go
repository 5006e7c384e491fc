package outbox

import (
	"time"

	"github.com/ratelink/ratelink/internal/types"
)

// IntentState tracks an externally mutating call through its lifecycle
type IntentState string

const (
	// StatePending is written before the gateway call is attempted
	StatePending IntentState = "pending"
	// StateSucceeded means both the gateway call and the local write landed
	StateSucceeded IntentState = "succeeded"
	// StateFailed means the gateway call failed; local state was untouched
	StateFailed IntentState = "failed"
	// StateDivergent means the remote outcome is unknown or the local write
	// failed after remote success. Divergent intents are never dropped; the
	// reconciler retries or flags them for manual review.
	StateDivergent IntentState = "divergent"
)

// Intent is one outbox record: an intent to perform an external call,
// written before the call, resolved after.
type Intent struct {
	ID         string                      `json:"id" bson:"_id"`
	BusinessID string                      `json:"business_id" bson:"business_id"`
	Operation  types.SubscriptionOperation `json:"operation" bson:"operation"`
	Payload    map[string]interface{}      `json:"payload,omitempty" bson:"payload,omitempty"`
	State      IntentState                 `json:"state" bson:"state"`
	Attempts   int                         `json:"attempts" bson:"attempts"`
	LastError  string                      `json:"last_error,omitempty" bson:"last_error,omitempty"`

	CreatedAt  time.Time  `json:"created_at" bson:"created_at"`
	ResolvedAt *time.Time `json:"resolved_at,omitempty" bson:"resolved_at,omitempty"`
}

// New builds a pending intent for an operation on a business
func New(businessID string, op types.SubscriptionOperation, payload map[string]interface{}) *Intent {
	return &Intent{
		ID:         types.GenerateUUIDWithPrefix(types.UUID_PREFIX_OUTBOX),
		BusinessID: businessID,
		Operation:  op,
		Payload:    payload,
		State:      StatePending,
		CreatedAt:  time.Now().UTC(),
	}
}
