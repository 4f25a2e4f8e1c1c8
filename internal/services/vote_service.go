package services

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/threadloom/threadloom/internal/models"
	apperrors "github.com/threadloom/threadloom/pkg/errors"
)

// VoteService manages per-user votes on posts.
type VoteService struct {
	db    *gorm.DB
	posts *PostService
}

// VoteResult is the outcome of casting a vote: the resulting vote (nil when
// the cast toggled an existing vote off) plus fresh tallies.
type VoteResult struct {
	Vote   *models.Vote `json:"vote"`
	Counts VoteCounts   `json:"counts"`
}

// NewVoteService constructs a vote service.
func NewVoteService(db *gorm.DB, posts *PostService) (*VoteService, error) {
	if db == nil {
		return nil, errors.New("vote service: db is required")
	}
	if posts == nil {
		return nil, errors.New("vote service: post service is required")
	}
	return &VoteService{db: db, posts: posts}, nil
}

// Cast applies a vote. Casting the same direction twice removes the vote,
// casting the opposite direction flips it, and a first cast creates it.
func (s *VoteService) Cast(ctx context.Context, userID, postID string, voteType models.VoteType) (*VoteResult, error) {
	if !voteType.Valid() {
		return nil, apperrors.NewBadRequest("Vote type must be UP or DOWN")
	}

	var post models.Post
	err := s.db.WithContext(ctx).Take(&post, "id = ?", postID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.NewNotFound("Post not found")
	}
	if err != nil {
		return nil, fmt.Errorf("vote service: find post: %w", err)
	}

	var result VoteResult

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing models.Vote
		err := tx.Take(&existing, "user_id = ? AND post_id = ?", userID, postID).Error
		switch {
		case err == nil:
			if existing.Type == voteType {
				return tx.Delete(&existing).Error
			}
			existing.Type = voteType
			if err := tx.Save(&existing).Error; err != nil {
				return err
			}
			result.Vote = &existing
			return nil
		case errors.Is(err, gorm.ErrRecordNotFound):
			vote := &models.Vote{
				Type:   voteType,
				UserID: userID,
				PostID: postID,
			}
			if err := tx.Create(vote).Error; err != nil {
				return err
			}
			result.Vote = vote
			return nil
		default:
			return err
		}
	})
	if err != nil {
		return nil, fmt.Errorf("vote service: cast: %w", err)
	}

	counts, err := s.posts.Counts(ctx, postID)
	if err != nil {
		return nil, err
	}
	result.Counts = counts

	return &result, nil
}

// Get returns the requester's vote on a post, or nil when none exists.
func (s *VoteService) Get(ctx context.Context, userID, postID string) (*models.Vote, error) {
	var vote models.Vote
	err := s.db.WithContext(ctx).Take(&vote, "user_id = ? AND post_id = ?", userID, postID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("vote service: get: %w", err)
	}
	return &vote, nil
}

// Remove deletes the requester's vote on a post and returns fresh tallies.
func (s *VoteService) Remove(ctx context.Context, userID, postID string) (VoteCounts, error) {
	result := s.db.WithContext(ctx).
		Where("user_id = ? AND post_id = ?", userID, postID).
		Delete(&models.Vote{})
	if result.Error != nil {
		return VoteCounts{}, fmt.Errorf("vote service: remove: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return VoteCounts{}, apperrors.NewNotFound("Vote not found")
	}

	return s.posts.Counts(ctx, postID)
}
