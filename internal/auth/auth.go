package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"golang.org/x/crypto/bcrypt"

	"github.com/ratelink/ratelink/internal/config"
	"github.com/ratelink/ratelink/internal/domain/user"
	ierr "github.com/ratelink/ratelink/internal/errors"
	"github.com/ratelink/ratelink/internal/types"
)

// Identity is the single shape every credential resolves to. Both bearer
// tokens and session cookies decode into it.
type Identity struct {
	ID    string         `json:"id"`
	Email string         `json:"email"`
	Name  string         `json:"name"`
	Role  types.UserRole `json:"role"`
}

// Credential is a tagged union of the supported credential sources
type Credential struct {
	Source types.CredentialSource
	Token  string
}

// Service resolves credentials into identities and issues new credentials
type Service interface {
	// ResolveIdentity decodes a credential into an Identity. It fails with
	// ErrUnauthorized when no identity resolves; it never consults the
	// business ownership model.
	ResolveIdentity(ctx context.Context, cred Credential) (*Identity, error)

	// SignUp registers a user with a bcrypt hashed password and returns a
	// bearer token for it
	SignUp(ctx context.Context, email, name, password string) (*user.User, string, error)

	// Login verifies a password and returns a bearer token
	Login(ctx context.Context, email, password string) (*user.User, string, error)

	// IssueToken mints a signed token for the user
	IssueToken(u *user.User, expiry time.Duration) (string, error)
}

type jwtAuth struct {
	cfg      config.AuthConfig
	userRepo user.Repository
}

// NewService creates the JWT backed auth service
func NewService(cfg *config.Configuration, userRepo user.Repository) Service {
	return &jwtAuth{
		cfg:      cfg.Auth,
		userRepo: userRepo,
	}
}

func (a *jwtAuth) ResolveIdentity(ctx context.Context, cred Credential) (*Identity, error) {
	if cred.Token == "" {
		return nil, ierr.NewError("missing credential").
			WithHint("Provide a bearer token or session cookie").
			Mark(ierr.ErrUnauthorized)
	}

	parsedToken, err := jwt.Parse(cred.Token, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ierr.NewError("unexpected signing method").
				WithHint(fmt.Sprintf("unexpected signing method: %v", token.Header["alg"])).
				Mark(ierr.ErrUnauthorized)
		}
		return []byte(a.cfg.Secret), nil
	})
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Token parse error").
			Mark(ierr.ErrUnauthorized)
	}

	claims, ok := parsedToken.Claims.(jwt.MapClaims)
	if !ok || !parsedToken.Valid {
		return nil, ierr.NewError("invalid token claims").
			WithHint("Invalid token claims").
			Mark(ierr.ErrUnauthorized)
	}

	userID, ok := claims["user_id"].(string)
	if !ok || userID == "" {
		return nil, ierr.NewError("token missing user ID").
			WithHint("Token missing user ID").
			Mark(ierr.ErrUnauthorized)
	}

	// The stored user is authoritative for email and role; token claims go
	// stale when an account is renamed or demoted. Never cached.
	u, err := a.userRepo.Get(ctx, userID)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Account no longer exists").
			Mark(ierr.ErrUnauthorized)
	}

	return &Identity{
		ID:    u.ID,
		Email: u.Email,
		Name:  u.Name,
		Role:  u.Role,
	}, nil
}

func (a *jwtAuth) SignUp(ctx context.Context, email, name, password string) (*user.User, string, error) {
	if password == "" {
		return nil, "", ierr.NewError("password is required").
			WithHint("Password is required").
			Mark(ierr.ErrValidation)
	}

	if existing, err := a.userRepo.GetByEmail(ctx, email); err == nil && existing != nil {
		return nil, "", ierr.NewError("user already exists").
			WithHint("An account with this email already exists").
			Mark(ierr.ErrAlreadyExists)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", ierr.WithError(err).
			WithHint("Failed to hash password").
			Mark(ierr.ErrSystem)
	}

	u := &user.User{
		ID:           types.GenerateUUIDWithPrefix(types.UUID_PREFIX_USER),
		Email:        email,
		Name:         name,
		Role:         types.RoleAdmin,
		PasswordHash: string(hashedPassword),
		BaseModel:    types.GetDefaultBaseModel(ctx),
	}
	if err := a.userRepo.Create(ctx, u); err != nil {
		return nil, "", err
	}

	token, err := a.IssueToken(u, a.cfg.TokenExpiry)
	if err != nil {
		return nil, "", err
	}
	return u, token, nil
}

func (a *jwtAuth) Login(ctx context.Context, email, password string) (*user.User, string, error) {
	u, err := a.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, "", ierr.NewError("invalid email or password").
			WithHint("Invalid email or password").
			Mark(ierr.ErrUnauthorized)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, "", ierr.NewError("invalid email or password").
			WithHint("Invalid email or password").
			Mark(ierr.ErrUnauthorized)
	}

	token, err := a.IssueToken(u, a.cfg.TokenExpiry)
	if err != nil {
		return nil, "", err
	}
	return u, token, nil
}

func (a *jwtAuth) IssueToken(u *user.User, expiry time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"user_id": u.ID,
		"email":   u.Email,
		"name":    u.Name,
		"role":    string(u.Role),
		"exp":     now.Add(expiry).Unix(),
		"iat":     now.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(a.cfg.Secret))
	if err != nil {
		return "", ierr.WithError(err).
			WithHint("Failed to sign token").
			Mark(ierr.ErrSystem)
	}
	return signed, nil
}
