package v1

import (
	"github.com/gin-gonic/gin"

	"github.com/ratelink/ratelink/internal/auth"
	ierr "github.com/ratelink/ratelink/internal/errors"
)

// ContextKeyIdentity is where the auth middleware stores the resolved
// caller identity on the gin context
const ContextKeyIdentity = "identity"

// identityFromContext returns the identity resolved by the auth middleware,
// or nil when the request carried no valid credential
func identityFromContext(c *gin.Context) *auth.Identity {
	v, ok := c.Get(ContextKeyIdentity)
	if !ok {
		return nil
	}
	identity, ok := v.(*auth.Identity)
	if !ok {
		return nil
	}
	return identity
}

// businessIDParam extracts the business id path parameter
func businessIDParam(c *gin.Context) (string, error) {
	id := c.Param("id")
	if id == "" {
		return "", ierr.NewError("business id is required").
			WithHint("Business ID is missing from the request path").
			Mark(ierr.ErrValidation)
	}
	return id, nil
}
