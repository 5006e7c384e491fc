package auth

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ratelink/ratelink/internal/domain/business"
	ierr "github.com/ratelink/ratelink/internal/errors"
	"github.com/ratelink/ratelink/internal/types"
)

func testBusiness() *business.Business {
	return &business.Business{
		ID:           "biz_guard",
		Name:         "Corner Cafe",
		ContactEmail: "owner@cafe.example",
		AdminUserIDs: []string{"user_owner"},
	}
}

func TestGuardAuthorize(t *testing.T) {
	guard := NewGuard()
	ctx := context.Background()

	t.Run("super admin bypasses ownership", func(t *testing.T) {
		identity := &Identity{ID: "user_root", Email: "root@ratelink.example", Role: types.RoleSuperAdmin}
		assert.NoError(t, guard.Authorize(ctx, identity, testBusiness()))
	})

	t.Run("owner by admin set", func(t *testing.T) {
		identity := &Identity{ID: "user_owner", Email: "someone-else@cafe.example", Role: types.RoleAdmin}
		assert.NoError(t, guard.Authorize(ctx, identity, testBusiness()))
	})

	t.Run("owner by contact email", func(t *testing.T) {
		b := testBusiness()
		b.AdminUserIDs = nil
		identity := &Identity{ID: "user_other", Email: "owner@cafe.example", Role: types.RoleAdmin}
		assert.NoError(t, guard.Authorize(ctx, identity, b))
	})

	t.Run("stranger is rejected", func(t *testing.T) {
		identity := &Identity{ID: "user_stranger", Email: "stranger@elsewhere.example", Role: types.RoleAdmin}
		err := guard.Authorize(ctx, identity, testBusiness())
		assert.Error(t, err)
		assert.True(t, ierr.IsPermissionDenied(err))
	})

	t.Run("nil identity is rejected as unauthenticated", func(t *testing.T) {
		err := guard.Authorize(ctx, nil, testBusiness())
		assert.Error(t, err)
		assert.True(t, ierr.IsUnauthorized(err))
		assert.False(t, ierr.IsPermissionDenied(err))
	})
}
