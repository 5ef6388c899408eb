package server

import (
	"github.com/nexusai/broker/internal/server/middleware"
	v1 "github.com/nexusai/broker/internal/server/v1"
)

func (s *Server) SetupRoutes() {
	s.router.Use(middleware.CORS())
	s.router.Use(middleware.ErrorHandler())
	s.router.Use(middleware.Tracing("broker"))

	httpLimiter := middleware.NewRateLimiter(
		s.config.RateLimit.RequestsPerSecond,
		s.config.RateLimit.Burst,
		s.logger,
	)
	s.router.Use(httpLimiter.Middleware())

	// Health Check (Public)
	healthHandler := v1.NewHealthHandler()
	s.router.GET("/health", healthHandler.Health)

	api := s.router.Group("/api")
	api.Use(middleware.Auth(s.config.Server.APIKeys))
	{
		chatHandler := v1.NewChatHandler(s.components.Dispatcher, s.components.Guard)
		api.POST("/chat", chatHandler.Chat)

		modelHandler := v1.NewModelHandler(
			s.components.Catalog,
			s.components.Registry,
			s.components.Limiter,
			s.components.Dispatcher.Stats(),
			s.components.Cache,
		)
		api.GET("/models", modelHandler.ListModels)
		api.POST("/models/refresh", modelHandler.RefreshModels)
		api.GET("/providers/status", modelHandler.ProviderStatus)
	}
}
