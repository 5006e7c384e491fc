package dto

import (
	"github.com/ratelink/ratelink/internal/domain/user"
	"github.com/ratelink/ratelink/internal/types"
	"github.com/ratelink/ratelink/internal/validator"
)

type SignUpRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Name     string `json:"name" binding:"required"`
	Password string `json:"password" binding:"required,min=8"`
}

func (r *SignUpRequest) Validate() error {
	return validator.ValidateRequest(r)
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

func (r *LoginRequest) Validate() error {
	return validator.ValidateRequest(r)
}

type AuthResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}

type UserResponse struct {
	ID    string         `json:"id"`
	Email string         `json:"email"`
	Name  string         `json:"name"`
	Role  types.UserRole `json:"role"`
}

func NewAuthResponse(u *user.User, token string) *AuthResponse {
	return &AuthResponse{
		Token: token,
		User: UserResponse{
			ID:    u.ID,
			Email: u.Email,
			Name:  u.Name,
			Role:  u.Role,
		},
	}
}
