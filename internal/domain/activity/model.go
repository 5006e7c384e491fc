package activity

import (
	"time"

	ierr "github.com/ratelink/ratelink/internal/errors"
	"github.com/ratelink/ratelink/internal/types"
)

// Entry is one append-only activity log row. Entries are never mutated;
// they feed both the audit trail and the metrics aggregator.
type Entry struct {
	ID         string             `json:"id" bson:"_id"`
	Type       types.ActivityType `json:"type" bson:"type"`
	BusinessID string             `json:"business_id" bson:"business_id"`

	// Amount is in integer minor units (cents) when the entry carries money
	Amount *int64 `json:"amount,omitempty" bson:"amount,omitempty"`

	// EventID is the processor's event id, used to drop webhook redeliveries
	EventID string `json:"event_id,omitempty" bson:"event_id,omitempty"`

	Actor     string    `json:"actor" bson:"actor"`
	Timestamp time.Time `json:"timestamp" bson:"timestamp"`
}

// New builds an entry stamped with a fresh id and timestamp
func New(entryType types.ActivityType, businessID, actor string) *Entry {
	return &Entry{
		ID:         types.GenerateUUIDWithPrefix(types.UUID_PREFIX_ACTIVITY),
		Type:       entryType,
		BusinessID: businessID,
		Actor:      actor,
		Timestamp:  time.Now().UTC(),
	}
}

// WithAmount attaches a minor unit amount
func (e *Entry) WithAmount(amount int64) *Entry {
	e.Amount = &amount
	return e
}

// WithEventID attaches the processor event id
func (e *Entry) WithEventID(eventID string) *Entry {
	e.EventID = eventID
	return e
}

func (e *Entry) Validate() error {
	if e.Type == "" {
		return ierr.NewError("activity type is required").Mark(ierr.ErrValidation)
	}
	if e.BusinessID == "" {
		return ierr.NewError("business_id is required").Mark(ierr.ErrValidation)
	}
	return nil
}
