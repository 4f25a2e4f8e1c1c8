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

// PostService manages posts, their ownership rules and vote aggregation.
type PostService struct {
	db    *gorm.DB
	store media.Store
}

// PostInput describes a post create payload. MediaURL points at an object
// already uploaded to the media store.
type PostInput struct {
	Title       string
	Content     string
	MediaURL    string
	AuthorID    string
	CommunityID string
}

// PostUpdateInput describes a post update payload. Nil fields are left untouched.
type PostUpdateInput struct {
	Title    *string
	Content  *string
	MediaURL *string
}

// VoteCounts aggregates the vote tallies for one post.
type VoteCounts struct {
	Upvotes   int64 `json:"upvotes"`
	Downvotes int64 `json:"downvotes"`
	Score     int64 `json:"vote_score"`
}

// PostDTO is the post shape returned to API consumers.
type PostDTO struct {
	ID           string               `json:"id"`
	Title        string               `json:"title"`
	Content      string               `json:"content,omitempty"`
	MediaURL     string               `json:"media_url,omitempty"`
	Author       *models.UserRef      `json:"author,omitempty"`
	Community    *models.CommunityRef `json:"community,omitempty"`
	CommentCount int64                `json:"comment_count"`
	VoteCounts
	UserVote  *models.VoteType `json:"user_vote,omitempty"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`
}

// NewPostService constructs a post service.
func NewPostService(db *gorm.DB, store media.Store) (*PostService, error) {
	if db == nil {
		return nil, errors.New("post service: db is required")
	}
	if store == nil {
		return nil, errors.New("post service: media store is required")
	}
	return &PostService{db: db, store: store}, nil
}

// Create persists a new post. Exactly one of AuthorID and CommunityID must be
// set; community posts require the caller to be the community creator.
func (s *PostService) Create(ctx context.Context, userID string, input PostInput) (*models.Post, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, apperrors.NewBadRequest("Post title is required")
	}

	content := strings.TrimSpace(input.Content)
	if content == "" && input.MediaURL == "" {
		return nil, apperrors.NewBadRequest("Post content or media is required")
	}

	hasAuthor := input.AuthorID != ""
	hasCommunity := input.CommunityID != ""
	if hasAuthor == hasCommunity {
		return nil, apperrors.NewBadRequest("Post must have exactly one of author or community")
	}

	post := &models.Post{
		Title:    title,
		Content:  content,
		MediaURL: input.MediaURL,
	}

	if hasAuthor {
		if input.AuthorID != userID {
			return nil, apperrors.NewForbidden("Cannot create posts for another user")
		}
		post.AuthorID = &input.AuthorID
	} else {
		var community models.Community
		err := s.db.WithContext(ctx).Take(&community, "id = ?", input.CommunityID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFound("Community not found")
		}
		if err != nil {
			return nil, fmt.Errorf("post service: find community: %w", err)
		}
		if community.CreatedByID != userID {
			return nil, apperrors.NewForbidden("Only the community creator can post as the community")
		}
		post.CommunityID = &input.CommunityID
	}

	if err := s.db.WithContext(ctx).Create(post).Error; err != nil {
		return nil, fmt.Errorf("post service: create: %w", err)
	}

	return post, nil
}

// ListOptions filters the post listing.
type ListOptions struct {
	CommunityID string
	AuthorID    string
}

// List returns posts newest first with author/community projections, comment
// counts and vote tallies, optionally filtered by community or author.
func (s *PostService) List(ctx context.Context, opts ListOptions) ([]PostDTO, error) {
	query := s.db.WithContext(ctx).
		Preload("Author").
		Preload("Community").
		Order("created_at DESC")
	if opts.CommunityID != "" {
		query = query.Where("community_id = ?", opts.CommunityID)
	}
	if opts.AuthorID != "" {
		query = query.Where("author_id = ?", opts.AuthorID)
	}

	var posts []models.Post
	if err := query.Find(&posts).Error; err != nil {
		return nil, fmt.Errorf("post service: list: %w", err)
	}

	return s.decorate(ctx, posts)
}

// Get returns a single post with its projections and vote tallies. When
// userID is non-empty, the requester's own vote is attached.
func (s *PostService) Get(ctx context.Context, id, userID string) (*PostDTO, error) {
	var post models.Post
	err := s.db.WithContext(ctx).
		Preload("Author").
		Preload("Community").
		Take(&post, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.NewNotFound("Post not found")
	}
	if err != nil {
		return nil, fmt.Errorf("post service: get: %w", err)
	}

	dtos, err := s.decorate(ctx, []models.Post{post})
	if err != nil {
		return nil, err
	}
	dto := dtos[0]

	if userID != "" {
		var vote models.Vote
		err := s.db.WithContext(ctx).
			Take(&vote, "user_id = ? AND post_id = ?", userID, id).Error
		switch {
		case err == nil:
			dto.UserVote = &vote.Type
		case !errors.Is(err, gorm.ErrRecordNotFound):
			return nil, fmt.Errorf("post service: find user vote: %w", err)
		}
	}

	return &dto, nil
}

// Update modifies a post. Only the author may update it; a replaced media
// object is removed from the store.
func (s *PostService) Update(ctx context.Context, userID, id string, input PostUpdateInput) (*models.Post, error) {
	post, err := s.ownedPost(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	oldMedia := post.MediaURL

	if input.Title != nil {
		title := strings.TrimSpace(*input.Title)
		if title == "" {
			return nil, apperrors.NewBadRequest("Post title is required")
		}
		post.Title = title
	}
	if input.Content != nil {
		post.Content = strings.TrimSpace(*input.Content)
	}
	if input.MediaURL != nil {
		post.MediaURL = *input.MediaURL
	}

	if post.Content == "" && post.MediaURL == "" {
		return nil, apperrors.NewBadRequest("Post content or media is required")
	}

	if err := s.db.WithContext(ctx).Save(post).Error; err != nil {
		return nil, fmt.Errorf("post service: update: %w", err)
	}

	if input.MediaURL != nil && oldMedia != post.MediaURL {
		if err := removeObjects(ctx, s.store, oldMedia); err != nil {
			logger.Warn("failed to remove replaced post media", zap.Error(err))
		}
	}

	return post, nil
}

// Delete removes a post. Only the author may delete it; comments and votes
// cascade, and any stored media object is removed best-effort.
func (s *PostService) Delete(ctx context.Context, userID, id string) error {
	post, err := s.ownedPost(ctx, userID, id)
	if err != nil {
		return err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("post_id = ?", id).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", id).Delete(&models.Vote{}).Error; err != nil {
			return err
		}
		return tx.Delete(post).Error
	})
	if err != nil {
		return fmt.Errorf("post service: delete: %w", err)
	}

	if err := removeObjects(ctx, s.store, post.MediaURL); err != nil {
		logger.Warn("failed to remove post media", zap.Error(err))
	}

	return nil
}

// Counts returns the vote tallies for a single post.
func (s *PostService) Counts(ctx context.Context, postID string) (VoteCounts, error) {
	counts, err := s.countVotes(ctx, []string{postID})
	if err != nil {
		return VoteCounts{}, err
	}
	return counts[postID], nil
}

func (s *PostService) ownedPost(ctx context.Context, userID, id string) (*models.Post, error) {
	var post models.Post
	err := s.db.WithContext(ctx).Take(&post, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.NewNotFound("Post not found")
	}
	if err != nil {
		return nil, fmt.Errorf("post service: get: %w", err)
	}

	if post.AuthorID == nil || *post.AuthorID != userID {
		return nil, apperrors.NewForbidden("Only the post author can modify it")
	}

	return &post, nil
}

// decorate attaches projections, comment counts and vote tallies to a batch
// of posts with one query per aggregate.
func (s *PostService) decorate(ctx context.Context, posts []models.Post) ([]PostDTO, error) {
	if len(posts) == 0 {
		return []PostDTO{}, nil
	}

	ids := make([]string, len(posts))
	for i, post := range posts {
		ids[i] = post.ID
	}

	votes, err := s.countVotes(ctx, ids)
	if err != nil {
		return nil, err
	}

	comments, err := s.countComments(ctx, ids)
	if err != nil {
		return nil, err
	}

	dtos := make([]PostDTO, len(posts))
	for i, post := range posts {
		dto := PostDTO{
			ID:           post.ID,
			Title:        post.Title,
			Content:      post.Content,
			MediaURL:     post.MediaURL,
			CommentCount: comments[post.ID],
			VoteCounts:   votes[post.ID],
			CreatedAt:    post.CreatedAt,
			UpdatedAt:    post.UpdatedAt,
		}
		if post.Author != nil {
			ref := post.Author.Ref()
			dto.Author = &ref
		}
		if post.Community != nil {
			ref := post.Community.Ref()
			dto.Community = &ref
		}
		dtos[i] = dto
	}

	return dtos, nil
}

func (s *PostService) countVotes(ctx context.Context, postIDs []string) (map[string]VoteCounts, error) {
	type voteRow struct {
		PostID string
		Type   models.VoteType
		Count  int64
	}

	var rows []voteRow
	err := s.db.WithContext(ctx).
		Model(&models.Vote{}).
		Select("post_id, type, COUNT(*) AS count").
		Where("post_id IN ?", postIDs).
		Group("post_id, type").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("post service: count votes: %w", err)
	}

	counts := make(map[string]VoteCounts, len(postIDs))
	for _, row := range rows {
		entry := counts[row.PostID]
		switch row.Type {
		case models.VoteUp:
			entry.Upvotes = row.Count
		case models.VoteDown:
			entry.Downvotes = row.Count
		}
		entry.Score = entry.Upvotes - entry.Downvotes
		counts[row.PostID] = entry
	}

	return counts, nil
}

func (s *PostService) countComments(ctx context.Context, postIDs []string) (map[string]int64, error) {
	type commentRow struct {
		PostID string
		Count  int64
	}

	var rows []commentRow
	err := s.db.WithContext(ctx).
		Model(&models.Comment{}).
		Select("post_id, COUNT(*) AS count").
		Where("post_id IN ?", postIDs).
		Group("post_id").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("post service: count comments: %w", err)
	}

	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.PostID] = row.Count
	}
	return counts, nil
}
