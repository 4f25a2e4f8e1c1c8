package providers

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/threadloom/threadloom/internal/models"
	"github.com/threadloom/threadloom/pkg/crypto"
	apperrors "github.com/threadloom/threadloom/pkg/errors"
	"github.com/threadloom/threadloom/pkg/metrics"
)

// LocalProvider authenticates users against the password hashes stored in the
// platform's own database.
type LocalProvider struct {
	db *gorm.DB
}

// NewLocalProvider builds a database-backed credential provider.
func NewLocalProvider(db *gorm.DB) *LocalProvider {
	return &LocalProvider{db: db}
}

// RegisterInput carries the fields required to create an account.
type RegisterInput struct {
	Username string
	Email    string
	Password string
}

// Register creates a new active account with a hashed password.
func (p *LocalProvider) Register(ctx context.Context, input RegisterInput) (*models.User, error) {
	hash, err := crypto.HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("local provider: hash password: %w", err)
	}

	user := &models.User{
		Username: strings.TrimSpace(input.Username),
		Email:    strings.ToLower(strings.TrimSpace(input.Email)),
		Password: hash,
		IsActive: true,
	}

	if err := p.db.WithContext(ctx).Create(user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperrors.NewConflict("User with this username or email already exists")
		}
		return nil, fmt.Errorf("local provider: create user: %w", err)
	}

	return user, nil
}

// Authenticate verifies an identifier/password pair. The identifier may be a
// username or an email address. Unknown accounts and wrong passwords produce
// the same error; callers cannot probe which accounts exist.
func (p *LocalProvider) Authenticate(ctx context.Context, identifier, password string) (*models.User, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" || password == "" {
		metrics.AuthAttempts.WithLabelValues("failure").Inc()
		return nil, apperrors.ErrInvalidCredentials
	}

	var user models.User
	err := p.db.WithContext(ctx).
		Where("username = ? OR email = ?", identifier, strings.ToLower(identifier)).
		Take(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		// Burn a comparison so the miss costs the same as a wrong password.
		crypto.VerifyPassword("$2a$12$CwTycUXWue0Thq9StjUM0uJ8ikvZQjc7bIRlAC7v1lBHOdaPkMEpi", password)
		metrics.AuthAttempts.WithLabelValues("failure").Inc()
		return nil, apperrors.ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("local provider: find user: %w", err)
	}

	if !crypto.VerifyPassword(user.Password, password) {
		metrics.AuthAttempts.WithLabelValues("failure").Inc()
		return nil, apperrors.ErrInvalidCredentials
	}

	if !user.IsActive {
		metrics.AuthAttempts.WithLabelValues("failure").Inc()
		return nil, apperrors.ErrUserInactive
	}

	now := time.Now()
	if err := p.db.WithContext(ctx).Model(&user).Update("last_login_at", now).Error; err != nil {
		return nil, fmt.Errorf("local provider: record login: %w", err)
	}
	user.LastLoginAt = &now

	metrics.AuthAttempts.WithLabelValues("success").Inc()
	return &user, nil
}
