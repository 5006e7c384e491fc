package user

import (
	ierr "github.com/ratelink/ratelink/internal/errors"
	"github.com/ratelink/ratelink/internal/types"
)

// User is a platform identity. Admins own one or more businesses;
// super admins bypass ownership checks.
type User struct {
	ID           string         `json:"id" bson:"_id"`
	Email        string         `json:"email" bson:"email"`
	Name         string         `json:"name" bson:"name"`
	Role         types.UserRole `json:"role" bson:"role"`
	BusinessIDs  []string       `json:"business_ids" bson:"business_ids"`
	PasswordHash string         `json:"-" bson:"password_hash"`

	StripeCustomerID string `json:"stripe_customer_id,omitempty" bson:"stripe_customer_id,omitempty"`

	types.BaseModel `bson:",inline"`
}

// Validate validates the user record
func (u *User) Validate() error {
	if u.Email == "" {
		return ierr.NewError("email is required").Mark(ierr.ErrValidation)
	}
	return u.Role.Validate()
}
