package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	iauth "github.com/threadloom/threadloom/internal/auth"
	"github.com/threadloom/threadloom/internal/auth/providers"
	"github.com/threadloom/threadloom/internal/middleware"
	"github.com/threadloom/threadloom/internal/models"
	apperrors "github.com/threadloom/threadloom/pkg/errors"
	"github.com/threadloom/threadloom/pkg/metrics"
	"github.com/threadloom/threadloom/pkg/response"
)

const (
	accessTokenCookie  = "accessToken"
	refreshTokenCookie = "refreshToken"

	// refreshCookiePath scopes the refresh credential to the single endpoint
	// that consumes it.
	refreshCookiePath = "/api/auth/refresh"
)

// AuthHandler manages signup, login, logout, refresh and the current-user endpoint.
type AuthHandler struct {
	provider   *providers.LocalProvider
	sessions   *iauth.SessionService
	accessTTL  time.Duration
	refreshTTL time.Duration
	production bool
}

// AuthHandlerConfig carries cookie lifetimes and the production flag.
type AuthHandlerConfig struct {
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration
	Production      bool
}

// NewAuthHandler constructs the auth handler.
func NewAuthHandler(provider *providers.LocalProvider, sessions *iauth.SessionService, cfg AuthHandlerConfig) *AuthHandler {
	accessTTL := cfg.AccessTokenTTL
	if accessTTL <= 0 {
		accessTTL = iauth.DefaultAccessTokenTTL
	}
	refreshTTL := cfg.RefreshTokenTTL
	if refreshTTL <= 0 {
		refreshTTL = iauth.DefaultRefreshTokenTTL
	}
	return &AuthHandler{
		provider:   provider,
		sessions:   sessions,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		production: cfg.Production,
	}
}

type signupRequest struct {
	Username string `json:"username" validate:"required,username"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

type loginRequest struct {
	Identifier string `json:"identifier" validate:"required"`
	Password   string `json:"password" validate:"required"`
}

type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// POST /api/auth/signup
func (h *AuthHandler) Signup(c *gin.Context) {
	var req signupRequest
	if !bindAndValidate(c, &req) {
		return
	}

	user, err := h.provider.Register(requestContext(c), providers.RegisterInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	h.issueAndRespond(c, http.StatusCreated, user)
}

// POST /api/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if !bindAndValidate(c, &req) {
		return
	}

	user, err := h.provider.Authenticate(requestContext(c), req.Identifier, req.Password)
	if err != nil {
		// Inactive accounts answer exactly like bad credentials so the
		// endpoint cannot be used to probe account state.
		var appErr *apperrors.AppError
		if errors.As(err, &appErr) {
			response.Error(c, apperrors.ErrInvalidCredentials)
			return
		}
		response.Error(c, err)
		return
	}

	h.issueAndRespond(c, http.StatusOK, user)
}

// POST /api/auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	// The refresh cookie is scoped to the refresh path, so it usually is not
	// presented here. Revoke is best-effort; the cookie reset below is what
	// actually ends the browser session.
	if token, err := c.Cookie(refreshTokenCookie); err == nil && token != "" {
		_ = h.sessions.RevokeSession(requestContext(c), token)
	}

	h.setSameSite(c)
	c.SetCookie(accessTokenCookie, iauth.LoggedOutToken, 10, "/", "", h.production, true)
	c.SetCookie(refreshTokenCookie, iauth.LoggedOutToken, 10, refreshCookiePath, "", h.production, true)

	response.Success(c, http.StatusOK, gin.H{"logged_out": true})
}

// POST /api/auth/refresh
func (h *AuthHandler) Refresh(c *gin.Context) {
	token, err := c.Cookie(refreshTokenCookie)
	if err != nil {
		token = ""
	}

	pair, _, err := h.sessions.RotateSession(requestContext(c), token)
	if err != nil {
		response.Error(c, mapSessionError(err))
		return
	}

	user, err := h.sessions.Authenticate(requestContext(c), pair.AccessToken)
	if err != nil {
		response.Error(c, mapSessionError(err))
		return
	}

	h.setAuthCookies(c, pair)
	response.Success(c, http.StatusOK, gin.H{
		"user":   user,
		"tokens": tokenResponse{AccessToken: pair.AccessToken, RefreshToken: pair.RefreshToken},
	})
}

// GET /api/auth/me
func (h *AuthHandler) Me(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		response.Error(c, apperrors.ErrUnauthorized)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"user": user})
}

func (h *AuthHandler) issueAndRespond(c *gin.Context, status int, user *models.User) {
	pair, _, err := h.sessions.IssueSession(requestContext(c), user.ID)
	if err != nil {
		metrics.AuthAttempts.WithLabelValues("failure").Inc()
		response.Error(c, mapSessionError(err))
		return
	}

	h.setAuthCookies(c, pair)
	response.Success(c, status, gin.H{
		"user":   user,
		"tokens": tokenResponse{AccessToken: pair.AccessToken, RefreshToken: pair.RefreshToken},
	})
}

func (h *AuthHandler) setAuthCookies(c *gin.Context, pair iauth.TokenPair) {
	h.setSameSite(c)
	c.SetCookie(accessTokenCookie, pair.AccessToken, int(h.accessTTL.Seconds()), "/", "", h.production, true)
	c.SetCookie(refreshTokenCookie, pair.RefreshToken, int(h.refreshTTL.Seconds()), refreshCookiePath, "", h.production, true)
}

func (h *AuthHandler) setSameSite(c *gin.Context) {
	if h.production {
		c.SetSameSite(http.SameSiteStrictMode)
		return
	}
	c.SetSameSite(http.SameSiteLaxMode)
}

func mapSessionError(err error) error {
	switch {
	case errors.Is(err, iauth.ErrMissingCredential):
		return apperrors.ErrUnauthorized
	case errors.Is(err, iauth.ErrInvalidCredential):
		return apperrors.ErrInvalidCredentials
	case errors.Is(err, iauth.ErrCredentialExpired):
		return apperrors.ErrSessionExpired
	case errors.Is(err, iauth.ErrInactiveUser):
		return apperrors.ErrUserInactive
	case errors.Is(err, iauth.ErrTransient):
		return apperrors.ErrTransient
	default:
		return err
	}
}
