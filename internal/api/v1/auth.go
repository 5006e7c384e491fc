package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ratelink/ratelink/internal/api/dto"
	"github.com/ratelink/ratelink/internal/auth"
	"github.com/ratelink/ratelink/internal/config"
	ierr "github.com/ratelink/ratelink/internal/errors"
	"github.com/ratelink/ratelink/internal/logger"
	"github.com/ratelink/ratelink/internal/types"
)

type AuthHandler struct {
	auth auth.Service
	cfg  *config.Configuration
	log  *logger.Logger
}

func NewAuthHandler(authSvc auth.Service, cfg *config.Configuration, log *logger.Logger) *AuthHandler {
	return &AuthHandler{
		auth: authSvc,
		cfg:  cfg,
		log:  log,
	}
}

// @Summary Register a new user
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body dto.SignUpRequest true "Registration details"
// @Success 201 {object} dto.AuthResponse
// @Failure 400 {object} ierr.ErrorResponse
// @Failure 409 {object} ierr.ErrorResponse
// @Router /auth/signup [post]
func (h *AuthHandler) SignUp(c *gin.Context) {
	var req dto.SignUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}
	if err := req.Validate(); err != nil {
		c.Error(err)
		return
	}

	u, token, err := h.auth.SignUp(c.Request.Context(), req.Email, req.Name, req.Password)
	if err != nil {
		c.Error(err)
		return
	}

	h.setSessionCookie(c, token)
	c.JSON(http.StatusCreated, dto.NewAuthResponse(u, token))
}

// @Summary Log in with email and password
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body dto.LoginRequest true "Credentials"
// @Success 200 {object} dto.AuthResponse
// @Failure 400 {object} ierr.ErrorResponse
// @Failure 403 {object} ierr.ErrorResponse
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}
	if err := req.Validate(); err != nil {
		c.Error(err)
		return
	}

	u, token, err := h.auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		c.Error(err)
		return
	}

	h.setSessionCookie(c, token)
	c.JSON(http.StatusOK, dto.NewAuthResponse(u, token))
}

// @Summary Log out and clear the session cookie
// @Tags Auth
// @Success 204
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	c.SetCookie(types.SessionCookieName, "", -1, "/", "", h.cfg.Auth.SecureCookies, true)
	c.Status(http.StatusNoContent)
}

func (h *AuthHandler) setSessionCookie(c *gin.Context, token string) {
	maxAge := int(h.cfg.Auth.SessionExpiry.Seconds())
	c.SetCookie(types.SessionCookieName, token, maxAge, "/", "", h.cfg.Auth.SecureCookies, true)
}
