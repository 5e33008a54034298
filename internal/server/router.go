// Package server assembles the HTTP router.
package server

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/riftvoice/backend/config"
	"github.com/riftvoice/backend/internal/auth"
	"github.com/riftvoice/backend/internal/middleware"
	"github.com/riftvoice/backend/internal/sessions"
	"github.com/riftvoice/backend/pkg/response"
)

// Handlers are the route owners mounted under /api.
type Handlers struct {
	Sessions *sessions.Handler
	Auth     *auth.Handler
}

// NewRouter builds the gin engine. limiter may be nil to disable rate
// limiting. mode is reported by /health.
func NewRouter(cfg config.ServerConfig, h Handlers, limiter *middleware.IPRateLimiter, mode string, logger *zap.Logger) *gin.Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORS(cfg.CORSAllowedOrigins))
	router.Use(middleware.Logger(logger))

	router.GET("/health", func(c *gin.Context) {
		response.OK(c, gin.H{"status": "ok", "mode": mode})
	})

	api := router.Group("/api")
	if h.Auth != nil {
		h.Auth.Register(api)
	}
	var guard []gin.HandlerFunc
	if limiter != nil {
		guard = append(guard, limiter.Middleware())
	}
	h.Sessions.Register(api, guard...)
	return router
}
