package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/ratelink/ratelink/internal/auth"
	ierr "github.com/ratelink/ratelink/internal/errors"
	"github.com/ratelink/ratelink/internal/logger"
	"github.com/ratelink/ratelink/internal/types"
)

// ContextKeyIdentity mirrors the key the handlers read the identity from
const ContextKeyIdentity = "identity"

// extractCredential picks the caller credential from the request: a bearer
// token wins over the ambient session cookie. Both resolve to the same
// Identity shape downstream.
func extractCredential(c *gin.Context) (auth.Credential, bool) {
	header := c.GetHeader(types.HeaderAuthorization)
	if strings.HasPrefix(header, "Bearer ") {
		token := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
		if token != "" {
			return auth.Credential{Source: types.CredentialSourceBearer, Token: token}, true
		}
	}

	if cookie, err := c.Cookie(types.SessionCookieName); err == nil && cookie != "" {
		return auth.Credential{Source: types.CredentialSourceSession, Token: cookie}, true
	}

	return auth.Credential{}, false
}

// AuthenticateMiddleware resolves the request credential into an identity
// and rejects the request when none resolves
func AuthenticateMiddleware(authSvc auth.Service, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		cred, ok := extractCredential(c)
		if !ok {
			c.Error(ierr.NewError("no credential presented").
				WithHint("Provide a bearer token or log in").
				Mark(ierr.ErrUnauthorized))
			c.Abort()
			return
		}

		identity, err := authSvc.ResolveIdentity(c.Request.Context(), cred)
		if err != nil {
			log.Debugw("credential resolution failed", "source", cred.Source, "error", err)
			c.Error(err)
			c.Abort()
			return
		}

		attachIdentity(c, identity)
		c.Next()
	}
}

// OptionalAuthMiddleware resolves an identity when a credential is present
// but lets anonymous requests through. Handlers decide what anonymity means.
func OptionalAuthMiddleware(authSvc auth.Service, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if cred, ok := extractCredential(c); ok {
			if identity, err := authSvc.ResolveIdentity(c.Request.Context(), cred); err == nil {
				attachIdentity(c, identity)
			} else {
				log.Debugw("ignoring invalid credential on optional route", "error", err)
			}
		}
		c.Next()
	}
}

func attachIdentity(c *gin.Context, identity *auth.Identity) {
	c.Set(ContextKeyIdentity, identity)
	c.Set("user_id", identity.ID)

	ctx := c.Request.Context()
	ctx = context.WithValue(ctx, types.CtxUserID, identity.ID)
	ctx = context.WithValue(ctx, types.CtxUserEmail, identity.Email)
	ctx = context.WithValue(ctx, types.CtxUserRole, identity.Role)
	c.Request = c.Request.WithContext(ctx)
}
