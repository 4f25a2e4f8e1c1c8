package middleware

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"

	iauth "github.com/threadloom/threadloom/internal/auth"
	"github.com/threadloom/threadloom/internal/models"
	apperrors "github.com/threadloom/threadloom/pkg/errors"
	"github.com/threadloom/threadloom/pkg/response"
)

const (
	CtxUserKey   = "authUser"
	CtxUserIDKey = "userID"

	// AccessTokenCookie is the cookie carrying the access credential.
	AccessTokenCookie = "accessToken"
)

// Auth enforces authentication using the session manager. The access token is
// read from the cookie first, then from the Authorization header.
func Auth(sessions *iauth.SessionService) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := authenticate(c, sessions)
		if err != nil {
			response.Error(c, mapAuthError(err))
			c.Abort()
			return
		}

		c.Set(CtxUserKey, user)
		c.Set(CtxUserIDKey, user.ID)
		c.Next()
	}
}

// OptionalAuth attaches the user when a valid access token is presented but
// lets anonymous requests through untouched.
func OptionalAuth(sessions *iauth.SessionService) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := authenticate(c, sessions)
		if err == nil {
			c.Set(CtxUserKey, user)
			c.Set(CtxUserIDKey, user.ID)
		}
		c.Next()
	}
}

func authenticate(c *gin.Context, sessions *iauth.SessionService) (*models.User, error) {
	return sessions.Authenticate(c.Request.Context(), extractToken(c))
}

func extractToken(c *gin.Context) string {
	if cookie, err := c.Cookie(AccessTokenCookie); err == nil && cookie != "" {
		return cookie
	}

	authz := c.GetHeader("Authorization")
	if len(authz) >= 8 && strings.EqualFold(authz[:7], "Bearer ") {
		return strings.TrimSpace(authz[7:])
	}

	return ""
}

func mapAuthError(err error) error {
	switch {
	case errors.Is(err, iauth.ErrCredentialExpired):
		return apperrors.ErrSessionExpired
	case errors.Is(err, iauth.ErrInactiveUser):
		return apperrors.ErrUserInactive
	case errors.Is(err, iauth.ErrTransient):
		return apperrors.ErrTransient
	case errors.Is(err, iauth.ErrMissingCredential):
		return apperrors.ErrUnauthorized
	default:
		return apperrors.ErrUnauthorized
	}
}

// CurrentUser returns the authenticated user attached by Auth.
func CurrentUser(c *gin.Context) (*models.User, bool) {
	value, ok := c.Get(CtxUserKey)
	if !ok {
		return nil, false
	}
	user, ok := value.(*models.User)
	return user, ok
}

// CurrentUserID returns the authenticated user's id, or "" for anonymous requests.
func CurrentUserID(c *gin.Context) string {
	return c.GetString(CtxUserIDKey)
}
