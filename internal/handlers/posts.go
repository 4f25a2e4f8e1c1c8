package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/threadloom/threadloom/internal/media"
	"github.com/threadloom/threadloom/internal/middleware"
	"github.com/threadloom/threadloom/internal/services"
	apperrors "github.com/threadloom/threadloom/pkg/errors"
	"github.com/threadloom/threadloom/pkg/response"
)

// PostHandler exposes post CRUD endpoints.
type PostHandler struct {
	posts    *services.PostService
	comments *services.CommentService
	store    media.Store
}

// NewPostHandler constructs the post handler.
func NewPostHandler(posts *services.PostService, comments *services.CommentService, store media.Store) *PostHandler {
	return &PostHandler{posts: posts, comments: comments, store: store}
}

// GET /api/posts
func (h *PostHandler) List(c *gin.Context) {
	dtos, err := h.posts.List(requestContext(c), services.ListOptions{
		CommunityID: strings.TrimSpace(c.Query("communityId")),
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.List(c, http.StatusOK, gin.H{"posts": dtos}, len(dtos))
}

// GET /api/posts/author/posts
func (h *PostHandler) ListByAuthor(c *gin.Context) {
	authorID := strings.TrimSpace(c.Query("authorId"))
	if authorID == "" {
		response.Error(c, apperrors.NewBadRequest("authorId is required"))
		return
	}

	dtos, err := h.posts.List(requestContext(c), services.ListOptions{AuthorID: authorID})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.List(c, http.StatusOK, gin.H{"posts": dtos}, len(dtos))
}

// GET /api/posts/:id
func (h *PostHandler) Get(c *gin.Context) {
	id := c.Param("id")

	dto, err := h.posts.Get(requestContext(c), id, middleware.CurrentUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	comments, err := h.comments.ByPost(requestContext(c), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"post":     dto,
		"comments": comments,
	})
}

// POST /api/posts (multipart)
func (h *PostHandler) Create(c *gin.Context) {
	input := services.PostInput{
		Title:       c.PostForm("title"),
		Content:     c.PostForm("content"),
		AuthorID:    strings.TrimSpace(c.PostForm("authorId")),
		CommunityID: strings.TrimSpace(c.PostForm("communityId")),
	}

	if header, err := c.FormFile("media"); err == nil {
		url, uploadErr := uploadAttachment(c, h.store, header, media.FolderPostMedia, media.KindImage, media.KindVideo)
		if uploadErr != nil {
			response.Error(c, uploadErr)
			return
		}
		input.MediaURL = url
	}

	post, err := h.posts.Create(requestContext(c), middleware.CurrentUserID(c), input)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"post": post})
}

// PUT /api/posts/:id (multipart)
func (h *PostHandler) Update(c *gin.Context) {
	var input services.PostUpdateInput

	if title, ok := c.GetPostForm("title"); ok {
		input.Title = &title
	}
	if content, ok := c.GetPostForm("content"); ok {
		input.Content = &content
	}

	if header, err := c.FormFile("media"); err == nil {
		url, uploadErr := uploadAttachment(c, h.store, header, media.FolderPostMedia, media.KindImage, media.KindVideo)
		if uploadErr != nil {
			response.Error(c, uploadErr)
			return
		}
		input.MediaURL = &url
	}

	post, err := h.posts.Update(requestContext(c), middleware.CurrentUserID(c), c.Param("id"), input)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"post": post})
}

// DELETE /api/posts/:id
func (h *PostHandler) Delete(c *gin.Context) {
	err := h.posts.Delete(requestContext(c), middleware.CurrentUserID(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}
