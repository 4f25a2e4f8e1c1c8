package api

import (
	"github.com/gin-gonic/gin"

	"github.com/threadloom/threadloom/internal/handlers"
	"github.com/threadloom/threadloom/internal/media"
	"github.com/threadloom/threadloom/internal/services"
)

func registerCommunityRoutes(r *gin.Engine, communities *services.CommunityService, store media.Store, requireAuth gin.HandlerFunc) {
	handler := handlers.NewCommunityHandler(communities, store)

	group := r.Group("/api/communities", requireAuth)
	{
		group.POST("", handler.Create)
		group.GET("", handler.List)
		group.GET("/:id", handler.Get)
		group.DELETE("/:id", handler.Delete)
	}
}
