package api

import (
	"github.com/gin-gonic/gin"

	"github.com/threadloom/threadloom/internal/handlers"
	"github.com/threadloom/threadloom/internal/media"
	"github.com/threadloom/threadloom/internal/services"
)

func registerPostRoutes(r *gin.Engine, posts *services.PostService, comments *services.CommentService, store media.Store, requireAuth, optionalAuth gin.HandlerFunc) {
	handler := handlers.NewPostHandler(posts, comments, store)

	group := r.Group("/api/posts")
	{
		group.GET("", handler.List)
		// Registered before /:id so the literal segment wins.
		group.GET("/author/posts", requireAuth, handler.ListByAuthor)
		group.GET("/:id", optionalAuth, handler.Get)
		group.POST("", requireAuth, handler.Create)
		group.PUT("/:id", requireAuth, handler.Update)
		group.DELETE("/:id", requireAuth, handler.Delete)
	}
}
