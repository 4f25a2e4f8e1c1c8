package api

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	iauth "github.com/threadloom/threadloom/internal/auth"
	"github.com/threadloom/threadloom/internal/auth/providers"
	"github.com/threadloom/threadloom/internal/handlers"
)

func registerAuthRoutes(r *gin.Engine, db *gorm.DB, sessions *iauth.SessionService, cfg Config, requireAuth gin.HandlerFunc) {
	provider := providers.NewLocalProvider(db)
	handler := handlers.NewAuthHandler(provider, sessions, handlers.AuthHandlerConfig{
		AccessTokenTTL:  cfg.AccessTokenTTL,
		RefreshTokenTTL: cfg.RefreshTokenTTL,
		Production:      cfg.Production,
	})

	auth := r.Group("/api/auth")
	{
		auth.POST("/signup", handler.Signup)
		auth.POST("/login", handler.Login)
		auth.POST("/logout", handler.Logout)
		auth.POST("/refresh", handler.Refresh)
		auth.GET("/me", requireAuth, handler.Me)
	}
}
