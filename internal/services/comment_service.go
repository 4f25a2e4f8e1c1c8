package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/threadloom/threadloom/internal/models"
	apperrors "github.com/threadloom/threadloom/pkg/errors"
)

// CommentService manages comments and their ownership rules.
type CommentService struct {
	db *gorm.DB
}

// NewCommentService constructs a comment service.
func NewCommentService(db *gorm.DB) (*CommentService, error) {
	if db == nil {
		return nil, errors.New("comment service: db is required")
	}
	return &CommentService{db: db}, nil
}

// Create adds a comment to an existing post.
func (s *CommentService) Create(ctx context.Context, userID, postID, content string) (*models.Comment, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, apperrors.NewBadRequest("Comment content is required")
	}

	var post models.Post
	err := s.db.WithContext(ctx).Take(&post, "id = ?", postID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.NewNotFound("Post not found")
	}
	if err != nil {
		return nil, fmt.Errorf("comment service: find post: %w", err)
	}

	comment := &models.Comment{
		Content:  content,
		PostID:   postID,
		AuthorID: userID,
	}
	if err := s.db.WithContext(ctx).Create(comment).Error; err != nil {
		return nil, fmt.Errorf("comment service: create: %w", err)
	}

	return comment, nil
}

// ByPost returns a post's comments, newest first, with author projections.
func (s *CommentService) ByPost(ctx context.Context, postID string) ([]models.Comment, error) {
	var post models.Post
	err := s.db.WithContext(ctx).Take(&post, "id = ?", postID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.NewNotFound("Post not found")
	}
	if err != nil {
		return nil, fmt.Errorf("comment service: find post: %w", err)
	}

	var comments []models.Comment
	err = s.db.WithContext(ctx).
		Preload("Author").
		Where("post_id = ?", postID).
		Order("created_at DESC").
		Find(&comments).Error
	if err != nil {
		return nil, fmt.Errorf("comment service: list by post: %w", err)
	}
	return comments, nil
}

// ByUser returns a user's comments, newest first, with post projections.
func (s *CommentService) ByUser(ctx context.Context, userID string) ([]models.Comment, error) {
	var user models.User
	err := s.db.WithContext(ctx).Take(&user, "id = ?", userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.NewNotFound("User not found")
	}
	if err != nil {
		return nil, fmt.Errorf("comment service: find user: %w", err)
	}

	var comments []models.Comment
	err = s.db.WithContext(ctx).
		Preload("Post").
		Where("author_id = ?", userID).
		Order("created_at DESC").
		Find(&comments).Error
	if err != nil {
		return nil, fmt.Errorf("comment service: list by user: %w", err)
	}
	return comments, nil
}

// Update changes a comment's content. Only the author may update it.
func (s *CommentService) Update(ctx context.Context, userID, id, content string) (*models.Comment, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, apperrors.NewBadRequest("Comment content is required")
	}

	comment, err := s.ownedComment(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	comment.Content = content
	if err := s.db.WithContext(ctx).Save(comment).Error; err != nil {
		return nil, fmt.Errorf("comment service: update: %w", err)
	}
	return comment, nil
}

// Delete removes a comment. Only the author may delete it.
func (s *CommentService) Delete(ctx context.Context, userID, id string) error {
	comment, err := s.ownedComment(ctx, userID, id)
	if err != nil {
		return err
	}

	if err := s.db.WithContext(ctx).Delete(comment).Error; err != nil {
		return fmt.Errorf("comment service: delete: %w", err)
	}
	return nil
}

func (s *CommentService) ownedComment(ctx context.Context, userID, id string) (*models.Comment, error) {
	var comment models.Comment
	err := s.db.WithContext(ctx).Take(&comment, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.NewNotFound("Comment not found")
	}
	if err != nil {
		return nil, fmt.Errorf("comment service: get: %w", err)
	}

	if comment.AuthorID != userID {
		return nil, apperrors.NewForbidden("Only the comment author can modify it")
	}
	return &comment, nil
}
