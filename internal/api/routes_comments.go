package api

import (
	"github.com/gin-gonic/gin"

	"github.com/threadloom/threadloom/internal/handlers"
	"github.com/threadloom/threadloom/internal/services"
)

func registerCommentRoutes(r *gin.Engine, comments *services.CommentService, requireAuth gin.HandlerFunc) {
	handler := handlers.NewCommentHandler(comments)

	group := r.Group("/api/comments", requireAuth)
	{
		group.POST("", handler.Create)
		group.GET("/post/:postId", handler.ByPost)
		group.GET("/user/:userId", handler.ByUser)
		group.PUT("/:id", handler.Update)
		group.DELETE("/:id", handler.Delete)
	}
}
