package services

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/threadloom/threadloom/internal/database/testutil"
	"github.com/threadloom/threadloom/internal/media"
	"github.com/threadloom/threadloom/internal/models"
)

type serviceFixture struct {
	db          *gorm.DB
	store       *media.MemoryStore
	communities *CommunityService
	posts       *PostService
	comments    *CommentService
	votes       *VoteService
}

func newServiceFixture(t *testing.T) *serviceFixture {
	t.Helper()

	db := testutil.MustOpenTestDB(t)
	store := media.NewMemoryStore()

	communities, err := NewCommunityService(db, store)
	require.NoError(t, err)

	posts, err := NewPostService(db, store)
	require.NoError(t, err)

	comments, err := NewCommentService(db)
	require.NoError(t, err)

	votes, err := NewVoteService(db, posts)
	require.NoError(t, err)

	return &serviceFixture{
		db:          db,
		store:       store,
		communities: communities,
		posts:       posts,
		comments:    comments,
		votes:       votes,
	}
}

func (f *serviceFixture) createUser(t *testing.T, username string) *models.User {
	t.Helper()

	user := &models.User{
		Username: username,
		Email:    username + "@example.com",
		Password: "hashed",
		IsActive: true,
	}
	require.NoError(t, f.db.Create(user).Error)
	return user
}

func (f *serviceFixture) createPost(t *testing.T, authorID, title string) *models.Post {
	t.Helper()

	post := &models.Post{
		Title:    title,
		Content:  "content of " + title,
		AuthorID: &authorID,
	}
	require.NoError(t, f.db.Create(post).Error)
	return post
}
