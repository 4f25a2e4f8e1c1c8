package api

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"

	iauth "github.com/threadloom/threadloom/internal/auth"
	"github.com/threadloom/threadloom/internal/handlers"
	"github.com/threadloom/threadloom/internal/media"
	"github.com/threadloom/threadloom/internal/middleware"
	"github.com/threadloom/threadloom/internal/services"
)

// Config carries the knobs the router needs from the application config.
type Config struct {
	Production      bool
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration
	MetricsEnabled  bool
	RateLimit       int
	RateLimitWindow time.Duration
	AllowedOrigins  []string
}

// NewRouter builds the Gin engine, wires middleware and registers all routes.
func NewRouter(db *gorm.DB, sessions *iauth.SessionService, store media.Store, cfg Config) (*gin.Engine, error) {
	if db == nil {
		return nil, fmt.Errorf("database handle must be provided")
	}
	if sessions == nil {
		return nil, fmt.Errorf("session service must be provided")
	}
	if store == nil {
		return nil, fmt.Errorf("media store must be provided")
	}

	if cfg.Production {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	r.Use(middleware.Recovery())
	r.Use(middleware.Logger())
	r.Use(middleware.Metrics())
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(cfg.AllowedOrigins...))
	if cfg.RateLimit > 0 {
		window := cfg.RateLimitWindow
		if window <= 0 {
			window = time.Minute
		}
		r.Use(middleware.RateLimit(cfg.RateLimit, window))
	}

	r.NoRoute(middleware.NotFoundHandler)

	r.GET("/health", handlers.Health())
	if cfg.MetricsEnabled {
		r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	}

	communitySvc, err := services.NewCommunityService(db, store)
	if err != nil {
		return nil, err
	}
	postSvc, err := services.NewPostService(db, store)
	if err != nil {
		return nil, err
	}
	commentSvc, err := services.NewCommentService(db)
	if err != nil {
		return nil, err
	}
	voteSvc, err := services.NewVoteService(db, postSvc)
	if err != nil {
		return nil, err
	}

	requireAuth := middleware.Auth(sessions)
	optionalAuth := middleware.OptionalAuth(sessions)

	registerAuthRoutes(r, db, sessions, cfg, requireAuth)
	registerCommunityRoutes(r, communitySvc, store, requireAuth)
	registerPostRoutes(r, postSvc, commentSvc, store, requireAuth, optionalAuth)
	registerCommentRoutes(r, commentSvc, requireAuth)
	registerVoteRoutes(r, voteSvc, requireAuth)

	return r, nil
}
