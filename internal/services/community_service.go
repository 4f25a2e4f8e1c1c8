package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/threadloom/threadloom/internal/media"
	"github.com/threadloom/threadloom/internal/models"
	apperrors "github.com/threadloom/threadloom/pkg/errors"
	"github.com/threadloom/threadloom/pkg/logger"
)

// CommunityService manages community lifecycle and ownership rules.
type CommunityService struct {
	db    *gorm.DB
	store media.Store
}

// CommunityInput describes a community create payload. Banner and logo URLs
// point at objects already uploaded to the media store.
type CommunityInput struct {
	Name        string
	Description string
	IsPublic    *bool
	BannerURL   string
	LogoURL     string
}

// CommunityDTO is the community shape returned to API consumers.
type CommunityDTO struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Banner      string          `json:"banner,omitempty"`
	Logo        string          `json:"logo,omitempty"`
	IsPublic    bool            `json:"is_public"`
	CreatedBy   *models.UserRef `json:"created_by,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
}

// CommunityToDTO projects a community for API responses, reducing the creator
// to its public reference.
func CommunityToDTO(c *models.Community) CommunityDTO {
	dto := CommunityDTO{
		ID:          c.ID,
		Name:        c.Name,
		Description: c.Description,
		Banner:      c.Banner,
		Logo:        c.Logo,
		IsPublic:    c.IsPublic,
		CreatedAt:   c.CreatedAt,
	}
	if c.CreatedBy != nil {
		ref := c.CreatedBy.Ref()
		dto.CreatedBy = &ref
	}
	return dto
}

// NewCommunityService constructs a community service.
func NewCommunityService(db *gorm.DB, store media.Store) (*CommunityService, error) {
	if db == nil {
		return nil, errors.New("community service: db is required")
	}
	if store == nil {
		return nil, errors.New("community service: media store is required")
	}
	return &CommunityService{db: db, store: store}, nil
}

// Create persists a new community owned by the given user.
func (s *CommunityService) Create(ctx context.Context, userID string, input CommunityInput) (*models.Community, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, apperrors.NewBadRequest("Community name is required")
	}

	isPublic := true
	if input.IsPublic != nil {
		isPublic = *input.IsPublic
	}

	community := &models.Community{
		Name:        name,
		Description: strings.TrimSpace(input.Description),
		Banner:      input.BannerURL,
		Logo:        input.LogoURL,
		IsPublic:    isPublic,
		CreatedByID: userID,
	}

	if err := s.db.WithContext(ctx).Create(community).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperrors.NewBadRequest("A community with this name already exists")
		}
		return nil, fmt.Errorf("community service: create: %w", err)
	}

	return community, nil
}

// List returns all communities, newest first, with creator projections.
func (s *CommunityService) List(ctx context.Context) ([]models.Community, error) {
	var communities []models.Community
	err := s.db.WithContext(ctx).
		Preload("CreatedBy").
		Order("created_at DESC").
		Find(&communities).Error
	if err != nil {
		return nil, fmt.Errorf("community service: list: %w", err)
	}
	return communities, nil
}

// Get returns a single community by id.
func (s *CommunityService) Get(ctx context.Context, id string) (*models.Community, error) {
	var community models.Community
	err := s.db.WithContext(ctx).
		Preload("CreatedBy").
		Take(&community, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.NewNotFound("Community not found")
	}
	if err != nil {
		return nil, fmt.Errorf("community service: get: %w", err)
	}
	return &community, nil
}

// Delete removes a community. Only the creator may delete it; stored banner
// and logo objects are removed best-effort.
func (s *CommunityService) Delete(ctx context.Context, userID, id string) error {
	var community models.Community
	err := s.db.WithContext(ctx).Take(&community, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperrors.NewNotFound("Community not found")
	}
	if err != nil {
		return fmt.Errorf("community service: get: %w", err)
	}

	if community.CreatedByID != userID {
		return apperrors.NewForbidden("Only the community creator can delete it")
	}

	if err := s.db.WithContext(ctx).Delete(&community).Error; err != nil {
		return fmt.Errorf("community service: delete: %w", err)
	}

	if err := removeObjects(ctx, s.store, community.Banner, community.Logo); err != nil {
		logger.Warn("failed to remove community media", zap.Error(err))
	}

	return nil
}
