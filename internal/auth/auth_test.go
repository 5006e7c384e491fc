package auth_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/ratelink/ratelink/internal/auth"
	"github.com/ratelink/ratelink/internal/config"
	ierr "github.com/ratelink/ratelink/internal/errors"
	"github.com/ratelink/ratelink/internal/testutil"
	"github.com/ratelink/ratelink/internal/types"
)

type AuthServiceSuite struct {
	suite.Suite
	ctx      context.Context
	userRepo *testutil.InMemoryUserStore
	service  auth.Service
}

func TestAuthService(t *testing.T) {
	suite.Run(t, new(AuthServiceSuite))
}

func (s *AuthServiceSuite) SetupTest() {
	s.ctx = context.Background()
	s.userRepo = testutil.NewInMemoryUserStore()
	s.service = auth.NewService(config.GetDefaultConfig(), s.userRepo)
}

func (s *AuthServiceSuite) TestSignUpAndResolveBearer() {
	u, token, err := s.service.SignUp(s.ctx, "owner@cafe.example", "Owner", "hunter2hunter2")
	s.NoError(err)
	s.NotEmpty(token)
	s.Equal(types.RoleAdmin, u.Role)

	identity, err := s.service.ResolveIdentity(s.ctx, auth.Credential{
		Source: types.CredentialSourceBearer,
		Token:  token,
	})
	s.NoError(err)
	s.Equal(u.ID, identity.ID)
	s.Equal("owner@cafe.example", identity.Email)
	s.Equal(types.RoleAdmin, identity.Role)
}

func (s *AuthServiceSuite) TestSessionCookieResolvesToSameIdentity() {
	u, token, err := s.service.SignUp(s.ctx, "owner@cafe.example", "Owner", "hunter2hunter2")
	s.NoError(err)

	bearer, err := s.service.ResolveIdentity(s.ctx, auth.Credential{
		Source: types.CredentialSourceBearer,
		Token:  token,
	})
	s.NoError(err)

	session, err := s.service.ResolveIdentity(s.ctx, auth.Credential{
		Source: types.CredentialSourceSession,
		Token:  token,
	})
	s.NoError(err)

	s.Equal(bearer, session)
	s.Equal(u.ID, session.ID)
}

func (s *AuthServiceSuite) TestResolveReflectsCurrentUserRecord() {
	u, token, err := s.service.SignUp(s.ctx, "owner@cafe.example", "Owner", "hunter2hunter2")
	s.NoError(err)

	u.Role = types.RoleSuperAdmin
	s.NoError(s.userRepo.Update(s.ctx, u))

	identity, err := s.service.ResolveIdentity(s.ctx, auth.Credential{
		Source: types.CredentialSourceBearer,
		Token:  token,
	})
	s.NoError(err)
	s.Equal(types.RoleSuperAdmin, identity.Role)
}

func (s *AuthServiceSuite) TestGarbageTokenRejected() {
	_, err := s.service.ResolveIdentity(s.ctx, auth.Credential{
		Source: types.CredentialSourceBearer,
		Token:  "not-a-jwt",
	})
	s.Error(err)
	s.True(ierr.IsUnauthorized(err))
}

func (s *AuthServiceSuite) TestMissingCredentialRejected() {
	_, err := s.service.ResolveIdentity(s.ctx, auth.Credential{})
	s.Error(err)
	s.True(ierr.IsUnauthorized(err))
}

func (s *AuthServiceSuite) TestLoginWrongPassword() {
	_, _, err := s.service.SignUp(s.ctx, "owner@cafe.example", "Owner", "hunter2hunter2")
	s.NoError(err)

	_, _, err = s.service.Login(s.ctx, "owner@cafe.example", "wrong-password")
	s.Error(err)
	s.True(ierr.IsUnauthorized(err))
}

func (s *AuthServiceSuite) TestDuplicateSignUpRejected() {
	_, _, err := s.service.SignUp(s.ctx, "owner@cafe.example", "Owner", "hunter2hunter2")
	s.NoError(err)

	_, _, err = s.service.SignUp(s.ctx, "owner@cafe.example", "Other", "hunter2hunter2")
	s.Error(err)
	s.True(ierr.IsAlreadyExists(err))
}
