package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultAccessTokenTTL defines the fallback validity period for access tokens.
const DefaultAccessTokenTTL = 15 * time.Minute

// JWTConfig bundles the configuration required to build a JWTService.
type JWTConfig struct {
	Secret         string
	Issuer         string
	AccessTokenTTL time.Duration
	Clock          func() time.Time
}

// AccessClaims represents the claims embedded in access tokens. Validity is
// solely a function of signature and expiry; nothing is persisted.
type AccessClaims struct {
	UserID string `json:"uid"`
	jwt.RegisteredClaims
}

// RefreshClaims represents the claims embedded in refresh tokens. The nonce
// plus issued-at timestamp keep token strings unique across concurrent
// issuances for the same user.
type RefreshClaims struct {
	UserID string `json:"uid"`
	Nonce  string `json:"nonce"`
	jwt.RegisteredClaims
}

// JWTService is responsible for issuing and validating JSON Web Tokens.
type JWTService struct {
	secret    []byte
	issuer    string
	accessTTL time.Duration
	now       func() time.Time
}

// NewJWTService constructs a JWTService instance when provided with the required configuration.
func NewJWTService(cfg JWTConfig) (*JWTService, error) {
	if cfg.Secret == "" {
		return nil, errors.New("jwt: secret must be provided")
	}

	ttl := cfg.AccessTokenTTL
	if ttl <= 0 {
		ttl = DefaultAccessTokenTTL
	}

	now := time.Now
	if cfg.Clock != nil {
		now = cfg.Clock
	}

	return &JWTService{
		secret:    []byte(cfg.Secret),
		issuer:    cfg.Issuer,
		accessTTL: ttl,
		now:       now,
	}, nil
}

// GenerateAccessToken issues a signed JWT asserting the supplied user id.
func (s *JWTService) GenerateAccessToken(userID string) (string, error) {
	if userID == "" {
		return "", errors.New("jwt: user id is required")
	}

	now := s.now()

	claims := &AccessClaims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			Issuer:    s.issuer,
			ExpiresAt: jwt.NewNumericDate(now.Add(s.accessTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("jwt: sign token: %w", err)
	}

	return signed, nil
}

// GenerateRefreshToken issues a signed refresh JWT carrying the nonce and the
// caller-chosen expiry.
func (s *JWTService) GenerateRefreshToken(userID, nonce string, expiresAt time.Time) (string, error) {
	if userID == "" {
		return "", errors.New("jwt: user id is required")
	}
	if nonce == "" {
		return "", errors.New("jwt: nonce is required")
	}

	now := s.now()

	claims := &RefreshClaims{
		UserID: userID,
		Nonce:  nonce,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			Issuer:    s.issuer,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("jwt: sign token: %w", err)
	}

	return signed, nil
}

// ValidateAccessToken parses and validates a signed access token. Expiry
// failures keep jwt.ErrTokenExpired in the error chain so callers can
// distinguish a lapsed credential from a forged one.
func (s *JWTService) ValidateAccessToken(tokenString string) (*AccessClaims, error) {
	var claims AccessClaims
	if err := s.parse(tokenString, &claims); err != nil {
		return nil, err
	}

	if claims.UserID == "" {
		return nil, errors.New("jwt: missing user id claim")
	}

	return &claims, nil
}

// ValidateRefreshToken parses and validates a signed refresh token.
func (s *JWTService) ValidateRefreshToken(tokenString string) (*RefreshClaims, error) {
	var claims RefreshClaims
	if err := s.parse(tokenString, &claims); err != nil {
		return nil, err
	}

	if claims.UserID == "" {
		return nil, errors.New("jwt: missing user id claim")
	}

	return &claims, nil
}

func (s *JWTService) parse(tokenString string, claims jwt.Claims) error {
	if tokenString == "" {
		return errors.New("jwt: token string is empty")
	}

	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
	)

	_, err := parser.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return s.secret, nil
	})
	if err != nil {
		return fmt.Errorf("jwt: parse token: %w", err)
	}

	if s.issuer != "" {
		issuer, issuerErr := claims.GetIssuer()
		if issuerErr != nil || issuer != s.issuer {
			return errors.New("jwt: invalid issuer")
		}
	}

	return nil
}
