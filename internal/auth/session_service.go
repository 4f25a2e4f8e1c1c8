package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"gorm.io/gorm"

	"github.com/threadloom/threadloom/internal/models"
	"github.com/threadloom/threadloom/pkg/crypto"
	"github.com/threadloom/threadloom/pkg/metrics"
)

// DefaultRefreshTokenTTL is the fallback refresh token lifetime.
const DefaultRefreshTokenTTL = 7 * 24 * time.Hour

// LoggedOutToken is the cookie value written on logout. It reads as "no
// credential supplied" everywhere a token is expected.
const LoggedOutToken = "loggedout"

// rotateAttempts bounds the nonce-collision retry loop inside RotateSession.
// Exhausting the budget surfaces ErrTransient rather than retrying forever.
const rotateAttempts = 3

var (
	// ErrMissingCredential means no token was supplied (or the logged-out sentinel was).
	ErrMissingCredential = errors.New("auth: missing credential")
	// ErrInvalidCredential covers bad signatures, forged tokens and refresh
	// tokens with no matching live record. Deliberately coarse: callers learn
	// nothing about which check failed.
	ErrInvalidCredential = errors.New("auth: invalid credential")
	// ErrCredentialExpired marks an access token past its expiry. Distinct
	// from ErrInvalidCredential so the middleware can hint a refresh.
	ErrCredentialExpired = errors.New("auth: credential expired")
	// ErrInactiveUser means the owning account no longer exists or was deactivated.
	ErrInactiveUser = errors.New("auth: user inactive or missing")
	// ErrTransient covers storage failures and the exhausted rotation retry budget.
	ErrTransient = errors.New("auth: transient failure")
)

// SessionConfig describes tunable behaviour for the SessionService.
type SessionConfig struct {
	RefreshTokenTTL time.Duration
	NonceLength     int
	Clock           func() time.Time
	// Nonce overrides the random nonce source; tests use it to force
	// refresh-token collisions.
	Nonce func(length int) (string, error)
}

// TokenPair represents an access token and refresh token pair.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// SessionService is the session and token manager: it mints, validates,
// rotates and revokes the two credential types. It holds no state across
// calls; the database is the single source of truth.
type SessionService struct {
	db         *gorm.DB
	jwt        *JWTService
	refreshTTL time.Duration
	nonceLen   int
	now        func() time.Time
	nonce      func(length int) (string, error)
}

// NewSessionService constructs a session manager backed by the provided database and JWT service.
func NewSessionService(db *gorm.DB, jwtService *JWTService, cfg SessionConfig) (*SessionService, error) {
	if db == nil {
		return nil, errors.New("session service: db is required")
	}
	if jwtService == nil {
		return nil, errors.New("session service: jwt service is required")
	}

	ttl := cfg.RefreshTokenTTL
	if ttl <= 0 {
		ttl = DefaultRefreshTokenTTL
	}

	length := cfg.NonceLength
	if length <= 0 {
		length = 16
	}

	clock := time.Now
	if cfg.Clock != nil {
		clock = cfg.Clock
	}

	nonce := crypto.GenerateToken
	if cfg.Nonce != nil {
		nonce = cfg.Nonce
	}

	return &SessionService{
		db:         db,
		jwt:        jwtService,
		refreshTTL: ttl,
		nonceLen:   length,
		now:        clock,
		nonce:      nonce,
	}, nil
}

// IssueSession mints a fresh token pair for the user and persists the session
// record backing the refresh token.
func (s *SessionService) IssueSession(ctx context.Context, userID string) (TokenPair, *models.RefreshToken, error) {
	if strings.TrimSpace(userID) == "" {
		return TokenPair{}, nil, errors.New("session service: user id is required")
	}

	accessToken, err := s.jwt.GenerateAccessToken(userID)
	if err != nil {
		return TokenPair{}, nil, fmt.Errorf("session service: generate access token: %w", err)
	}

	now := s.now()

	refreshToken, record, err := s.mintRefresh(userID, now)
	if err != nil {
		return TokenPair{}, nil, err
	}

	if err := s.db.WithContext(ctx).Create(record).Error; err != nil {
		return TokenPair{}, nil, fmt.Errorf("%w: create session record: %v", ErrTransient, err)
	}

	metrics.ActiveSessions.Inc()

	return TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, record, nil
}

// Authenticate resolves an access token to its owning user. The user row is
// re-read on every call; stale embedded profile data is never trusted.
func (s *SessionService) Authenticate(ctx context.Context, accessToken string) (*models.User, error) {
	accessToken = strings.TrimSpace(accessToken)
	if accessToken == "" || accessToken == LoggedOutToken {
		return nil, ErrMissingCredential
	}

	claims, err := s.jwt.ValidateAccessToken(accessToken)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrCredentialExpired
		}
		return nil, ErrInvalidCredential
	}

	return s.activeUser(ctx, claims.UserID)
}

// RotateSession exchanges a valid refresh token for a new token pair,
// revoking the old session record. Revoke-and-replace happens in one
// transaction: a stolen token can never stay valid alongside its replacement,
// and of two concurrent rotations exactly one wins.
func (s *SessionService) RotateSession(ctx context.Context, oldToken string) (TokenPair, *models.RefreshToken, error) {
	oldToken = strings.TrimSpace(oldToken)
	if oldToken == "" || oldToken == LoggedOutToken {
		return TokenPair{}, nil, ErrMissingCredential
	}

	claims, err := s.jwt.ValidateRefreshToken(oldToken)
	if err != nil {
		metrics.TokenRotations.WithLabelValues("invalid").Inc()
		return TokenPair{}, nil, ErrInvalidCredential
	}

	now := s.now()

	// One coarse lookup: expiry, prior revocation and forgery all read the
	// same, so a guesser learns nothing.
	var record models.RefreshToken
	err = s.db.WithContext(ctx).
		Where("token = ? AND user_id = ? AND revoked_at IS NULL AND expires_at > ?", oldToken, claims.UserID, now).
		Take(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		metrics.TokenRotations.WithLabelValues("invalid").Inc()
		return TokenPair{}, nil, ErrInvalidCredential
	}
	if err != nil {
		return TokenPair{}, nil, fmt.Errorf("%w: find session record: %v", ErrTransient, err)
	}

	user, err := s.activeUser(ctx, claims.UserID)
	if err != nil {
		return TokenPair{}, nil, err
	}

	accessToken, err := s.jwt.GenerateAccessToken(user.ID)
	if err != nil {
		return TokenPair{}, nil, fmt.Errorf("session service: generate access token: %w", err)
	}

	for attempt := 0; attempt < rotateAttempts; attempt++ {
		newToken, replacement, mintErr := s.mintRefresh(user.ID, now)
		if mintErr != nil {
			return TokenPair{}, nil, mintErr
		}

		switch s.swapSession(ctx, record.ID, replacement) {
		case swapOK:
			metrics.TokenRotations.WithLabelValues("success").Inc()
			return TokenPair{
				AccessToken:  accessToken,
				RefreshToken: newToken,
			}, replacement, nil
		case swapConflict:
			// Token string already taken; mint a fresh nonce and try again.
			continue
		case swapLost:
			// A concurrent rotation revoked the record first.
			metrics.TokenRotations.WithLabelValues("invalid").Inc()
			return TokenPair{}, nil, ErrInvalidCredential
		default:
			metrics.TokenRotations.WithLabelValues("transient").Inc()
			return TokenPair{}, nil, fmt.Errorf("%w: rotate session", ErrTransient)
		}
	}

	metrics.TokenRotations.WithLabelValues("transient").Inc()
	return TokenPair{}, nil, fmt.Errorf("%w: refresh token collision retries exhausted", ErrTransient)
}

// RevokeSession marks the matching unrevoked session record as revoked.
// Idempotent: a missing or malformed token is not an error, logout must
// always succeed from the caller's perspective.
func (s *SessionService) RevokeSession(ctx context.Context, refreshToken string) error {
	refreshToken = strings.TrimSpace(refreshToken)
	if refreshToken == "" || refreshToken == LoggedOutToken {
		return nil
	}

	result := s.db.WithContext(ctx).
		Model(&models.RefreshToken{}).
		Where("token = ? AND revoked_at IS NULL", refreshToken).
		Update("revoked_at", s.now())
	if result.Error != nil {
		return fmt.Errorf("%w: revoke session record: %v", ErrTransient, result.Error)
	}

	if result.RowsAffected > 0 {
		metrics.ActiveSessions.Sub(float64(result.RowsAffected))
	}

	return nil
}

// CountActive returns the number of session records that are neither revoked
// nor expired. The maintenance job feeds this into the sessions gauge.
func (s *SessionService) CountActive(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).
		Model(&models.RefreshToken{}).
		Where("revoked_at IS NULL AND expires_at > ?", s.now()).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("%w: count active sessions: %v", ErrTransient, err)
	}
	return count, nil
}

func (s *SessionService) mintRefresh(userID string, now time.Time) (string, *models.RefreshToken, error) {
	nonce, err := s.nonce(s.nonceLen)
	if err != nil {
		return "", nil, fmt.Errorf("session service: generate nonce: %w", err)
	}

	expiresAt := now.Add(s.refreshTTL)

	token, err := s.jwt.GenerateRefreshToken(userID, nonce, expiresAt)
	if err != nil {
		return "", nil, fmt.Errorf("session service: generate refresh token: %w", err)
	}

	return token, &models.RefreshToken{
		Token:     token,
		UserID:    userID,
		ExpiresAt: expiresAt,
	}, nil
}

func (s *SessionService) activeUser(ctx context.Context, userID string) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).Take(&user, "id = ?", userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrInactiveUser
	}
	if err != nil {
		return nil, fmt.Errorf("%w: find user: %v", ErrTransient, err)
	}
	if !user.IsActive {
		return nil, ErrInactiveUser
	}
	return &user, nil
}

// swapOutcome is the explicit result of one revoke-and-replace attempt. The
// retry loop branches on this value, not on error inspection.
type swapOutcome int

const (
	swapOK swapOutcome = iota
	swapConflict
	swapLost
	swapFailed
)

var errRotationLost = errors.New("session service: record already revoked")

// swapSession revokes the old record and creates the replacement as one
// atomic unit. Both effects commit together or neither does, so a
// mid-sequence failure never leaves a revoked record without a successor.
func (s *SessionService) swapSession(ctx context.Context, oldID string, replacement *models.RefreshToken) swapOutcome {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.RefreshToken{}).
			Where("id = ? AND revoked_at IS NULL", oldID).
			Update("revoked_at", s.now())
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return errRotationLost
		}

		return tx.Create(replacement).Error
	})

	switch {
	case err == nil:
		return swapOK
	case errors.Is(err, errRotationLost):
		return swapLost
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return swapConflict
	default:
		return swapFailed
	}
}
