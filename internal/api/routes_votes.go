package api

import (
	"github.com/gin-gonic/gin"

	"github.com/threadloom/threadloom/internal/handlers"
	"github.com/threadloom/threadloom/internal/services"
)

func registerVoteRoutes(r *gin.Engine, votes *services.VoteService, requireAuth gin.HandlerFunc) {
	handler := handlers.NewVoteHandler(votes)

	group := r.Group("/api/votes", requireAuth)
	{
		group.POST("", handler.Cast)
		group.GET("/:postId", handler.Get)
		group.DELETE("/:postId", handler.Delete)
	}
}
