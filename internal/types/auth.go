package types

import ierr "github.com/ratelink/ratelink/internal/errors"

// UserRole determines what a caller is allowed to do. super_admin bypasses
// business ownership checks entirely.
type UserRole string

const (
	RoleAdmin      UserRole = "admin"
	RoleSuperAdmin UserRole = "super_admin"
)

func (r UserRole) Validate() error {
	switch r {
	case RoleAdmin, RoleSuperAdmin:
		return nil
	}
	return ierr.NewErrorf("invalid user role: %s", r).
		WithHint("Role must be admin or super_admin").
		Mark(ierr.ErrValidation)
}

// CredentialSource tags where a credential was presented
type CredentialSource string

const (
	CredentialSourceBearer  CredentialSource = "bearer"
	CredentialSourceSession CredentialSource = "session"
)
