package auth

import (
	"context"

	"github.com/ratelink/ratelink/internal/domain/business"
	ierr "github.com/ratelink/ratelink/internal/errors"
	"github.com/ratelink/ratelink/internal/types"
)

// Guard checks business ownership for a resolved identity. It is a pure
// check with no side effects, evaluated fresh on every call.
type Guard struct{}

func NewGuard() *Guard {
	return &Guard{}
}

// Authorize verifies the identity may act on the business. super_admin
// bypasses ownership; any other role must own the business through the
// admin set or the recorded contact email.
func (g *Guard) Authorize(ctx context.Context, identity *Identity, b *business.Business) error {
	if identity == nil {
		return ierr.NewError("no identity resolved").
			WithHint("Authentication required").
			Mark(ierr.ErrUnauthorized)
	}

	if identity.Role == types.RoleSuperAdmin {
		return nil
	}

	if b.IsOwnedBy(identity.ID, identity.Email) {
		return nil
	}

	return ierr.NewError("caller does not own this business").
		WithHint("You do not have access to this business").
		WithReportableDetails(map[string]interface{}{
			"business_id": b.ID,
		}).
		Mark(ierr.ErrPermissionDenied)
}
