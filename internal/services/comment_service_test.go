package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/threadloom/threadloom/pkg/errors"
)

func TestCommentServiceCreate(t *testing.T) {
	f := newServiceFixture(t)
	author := f.createUser(t, "alice")
	commenter := f.createUser(t, "bob")
	ctx := context.Background()

	post := f.createPost(t, author.ID, "hello")

	comment, err := f.comments.Create(ctx, commenter.ID, post.ID, "  nice post  ")
	require.NoError(t, err)
	assert.Equal(t, "nice post", comment.Content)
	assert.Equal(t, post.ID, comment.PostID)
	assert.Equal(t, commenter.ID, comment.AuthorID)
}

func TestCommentServiceCreateValidation(t *testing.T) {
	f := newServiceFixture(t)
	user := f.createUser(t, "alice")
	post := f.createPost(t, user.ID, "hello")
	ctx := context.Background()

	var appErr *apperrors.AppError

	_, err := f.comments.Create(ctx, user.ID, post.ID, "   ")
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.ErrBadRequest.Code, appErr.Code)

	_, err = f.comments.Create(ctx, user.ID, "no-such-post", "content")
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.ErrNotFound.Code, appErr.Code)
}

func TestCommentServiceByPost(t *testing.T) {
	f := newServiceFixture(t)
	author := f.createUser(t, "alice")
	ctx := context.Background()

	post := f.createPost(t, author.ID, "hello")
	other := f.createPost(t, author.ID, "other")

	_, err := f.comments.Create(ctx, author.ID, post.ID, "first")
	require.NoError(t, err)
	_, err = f.comments.Create(ctx, author.ID, other.ID, "elsewhere")
	require.NoError(t, err)

	comments, err := f.comments.ByPost(ctx, post.ID)
	require.NoError(t, err)
	require.Len(t, comments, 1)
	assert.Equal(t, "first", comments[0].Content)
	require.NotNil(t, comments[0].Author)
	assert.Equal(t, "alice", comments[0].Author.Username)

	var appErr *apperrors.AppError
	_, err = f.comments.ByPost(ctx, "no-such-post")
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.ErrNotFound.Code, appErr.Code)
}

func TestCommentServiceByUser(t *testing.T) {
	f := newServiceFixture(t)
	author := f.createUser(t, "alice")
	commenter := f.createUser(t, "bob")
	ctx := context.Background()

	post := f.createPost(t, author.ID, "hello")
	_, err := f.comments.Create(ctx, commenter.ID, post.ID, "mine")
	require.NoError(t, err)
	_, err = f.comments.Create(ctx, author.ID, post.ID, "theirs")
	require.NoError(t, err)

	comments, err := f.comments.ByUser(ctx, commenter.ID)
	require.NoError(t, err)
	require.Len(t, comments, 1)
	assert.Equal(t, "mine", comments[0].Content)
	require.NotNil(t, comments[0].Post)
	assert.Equal(t, "hello", comments[0].Post.Title)

	var appErr *apperrors.AppError
	_, err = f.comments.ByUser(ctx, "no-such-user")
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.ErrNotFound.Code, appErr.Code)
}

func TestCommentServiceUpdateAuthorOnly(t *testing.T) {
	f := newServiceFixture(t)
	author := f.createUser(t, "alice")
	other := f.createUser(t, "bob")
	ctx := context.Background()

	post := f.createPost(t, author.ID, "hello")
	comment, err := f.comments.Create(ctx, author.ID, post.ID, "original")
	require.NoError(t, err)

	_, err = f.comments.Update(ctx, other.ID, comment.ID, "hijacked")
	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.ErrForbidden.Code, appErr.Code)

	updated, err := f.comments.Update(ctx, author.ID, comment.ID, "edited")
	require.NoError(t, err)
	assert.Equal(t, "edited", updated.Content)
}

func TestCommentServiceDelete(t *testing.T) {
	f := newServiceFixture(t)
	author := f.createUser(t, "alice")
	other := f.createUser(t, "bob")
	ctx := context.Background()

	post := f.createPost(t, author.ID, "hello")
	comment, err := f.comments.Create(ctx, author.ID, post.ID, "doomed")
	require.NoError(t, err)

	err = f.comments.Delete(ctx, other.ID, comment.ID)
	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.ErrForbidden.Code, appErr.Code)

	require.NoError(t, f.comments.Delete(ctx, author.ID, comment.ID))

	err = f.comments.Delete(ctx, author.ID, comment.ID)
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.ErrNotFound.Code, appErr.Code)
}
