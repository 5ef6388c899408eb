package server

import (
	"net/http"

	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/nexusai/broker/internal/broker"
	"github.com/nexusai/broker/internal/broker/catalog"
	"github.com/nexusai/broker/internal/broker/ratelimit"
	"github.com/nexusai/broker/internal/broker/registry"
	"github.com/nexusai/broker/internal/config"
	"github.com/nexusai/broker/internal/guardrails"
	"github.com/nexusai/broker/internal/server/middleware"
	"github.com/nexusai/broker/internal/store/cache"
)

// Components are the wired collaborators the routes need.
type Components struct {
	Dispatcher *broker.Dispatcher
	Registry   *registry.Registry
	Limiter    *ratelimit.Limiter
	Catalog    *catalog.Catalog
	Guard      guardrails.Checker
	Cache      cache.CacheService
}

type Server struct {
	router     *gin.Engine
	config     *config.Config
	logger     *zap.Logger
	components Components
}

func New(cfg *config.Config, logger *zap.Logger, components Components) *Server {
	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()

	engine.Use(ginzap.RecoveryWithZap(logger, true))
	engine.Use(middleware.Logger(logger))

	s := &Server{
		router:     engine,
		config:     cfg,
		logger:     logger,
		components: components,
	}

	s.SetupRoutes()
	return s
}

func (s *Server) Handler() http.Handler {
	return s.router
}
