package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/threadloom/threadloom/internal/middleware"
	"github.com/threadloom/threadloom/internal/services"
	"github.com/threadloom/threadloom/pkg/response"
)

// CommentHandler exposes comment CRUD endpoints.
type CommentHandler struct {
	comments *services.CommentService
}

// NewCommentHandler constructs the comment handler.
func NewCommentHandler(comments *services.CommentService) *CommentHandler {
	return &CommentHandler{comments: comments}
}

type createCommentRequest struct {
	PostID  string `json:"post_id" validate:"required"`
	Content string `json:"content" validate:"required"`
}

type updateCommentRequest struct {
	Content string `json:"content" validate:"required"`
}

// POST /api/comments
func (h *CommentHandler) Create(c *gin.Context) {
	var req createCommentRequest
	if !bindAndValidate(c, &req) {
		return
	}

	comment, err := h.comments.Create(requestContext(c), middleware.CurrentUserID(c), req.PostID, req.Content)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"comment": comment})
}

// GET /api/comments/post/:postId
func (h *CommentHandler) ByPost(c *gin.Context) {
	comments, err := h.comments.ByPost(requestContext(c), c.Param("postId"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.List(c, http.StatusOK, gin.H{"comments": comments}, len(comments))
}

// GET /api/comments/user/:userId
func (h *CommentHandler) ByUser(c *gin.Context) {
	comments, err := h.comments.ByUser(requestContext(c), c.Param("userId"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.List(c, http.StatusOK, gin.H{"comments": comments}, len(comments))
}

// PUT /api/comments/:id
func (h *CommentHandler) Update(c *gin.Context) {
	var req updateCommentRequest
	if !bindAndValidate(c, &req) {
		return
	}

	comment, err := h.comments.Update(requestContext(c), middleware.CurrentUserID(c), c.Param("id"), req.Content)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"comment": comment})
}

// DELETE /api/comments/:id
func (h *CommentHandler) Delete(c *gin.Context) {
	err := h.comments.Delete(requestContext(c), middleware.CurrentUserID(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}
