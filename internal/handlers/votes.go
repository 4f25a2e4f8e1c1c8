package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/threadloom/threadloom/internal/middleware"
	"github.com/threadloom/threadloom/internal/models"
	"github.com/threadloom/threadloom/internal/services"
	"github.com/threadloom/threadloom/pkg/response"
)

// VoteHandler exposes vote endpoints.
type VoteHandler struct {
	votes *services.VoteService
}

// NewVoteHandler constructs the vote handler.
func NewVoteHandler(votes *services.VoteService) *VoteHandler {
	return &VoteHandler{votes: votes}
}

type castVoteRequest struct {
	PostID string `json:"post_id" validate:"required"`
	Type   string `json:"type" validate:"required,oneof=UP DOWN"`
}

// POST /api/votes
func (h *VoteHandler) Cast(c *gin.Context) {
	var req castVoteRequest
	if !bindAndValidate(c, &req) {
		return
	}

	result, err := h.votes.Cast(requestContext(c), middleware.CurrentUserID(c), req.PostID, models.VoteType(req.Type))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"vote":   result.Vote,
		"counts": result.Counts,
	})
}

// GET /api/votes/:postId
func (h *VoteHandler) Get(c *gin.Context) {
	vote, err := h.votes.Get(requestContext(c), middleware.CurrentUserID(c), c.Param("postId"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"vote": vote})
}

// DELETE /api/votes/:postId
func (h *VoteHandler) Delete(c *gin.Context) {
	counts, err := h.votes.Remove(requestContext(c), middleware.CurrentUserID(c), c.Param("postId"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"counts": counts})
}
