package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/nexusai/broker/cmd"
	"github.com/nexusai/broker/internal/analytics"
	"github.com/nexusai/broker/internal/broker"
	"github.com/nexusai/broker/internal/broker/catalog"
	"github.com/nexusai/broker/internal/broker/ratelimit"
	"github.com/nexusai/broker/internal/broker/registry"
	"github.com/nexusai/broker/internal/config"
	"github.com/nexusai/broker/internal/guardrails"
	"github.com/nexusai/broker/internal/llm"
	"github.com/nexusai/broker/internal/platform/logger"
	"github.com/nexusai/broker/internal/platform/otel"
	"github.com/nexusai/broker/internal/server"
	"github.com/nexusai/broker/internal/server/validator"
	"github.com/nexusai/broker/internal/store/cache"
	"github.com/nexusai/broker/internal/store/cache/memory"
	rediscache "github.com/nexusai/broker/internal/store/cache/redis"
	"github.com/nexusai/broker/internal/store/sqlite"

	// Import providers to trigger init() registration
	_ "github.com/nexusai/broker/internal/llm/anthropic"
	_ "github.com/nexusai/broker/internal/llm/google"
	_ "github.com/nexusai/broker/internal/llm/groq"
	_ "github.com/nexusai/broker/internal/llm/ollama"
	_ "github.com/nexusai/broker/internal/llm/openai"
)

func main() {
	logger.Initialize(logger.DefaultConfig())
	defer logger.Sync()

	go cmd.CheckForUpdates()

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatal("failed to load config", zap.Error(err))
	}

	validator.InitValidator()

	shutdownTracer, err := otel.InitTracer("broker", logger.Get(), os.Stdout)
	if err != nil {
		logger.Fatal("failed to init tracer", zap.Error(err))
	}

	repo, err := sqlite.NewSQLiteStorage(cfg.Database.Path)
	if err != nil {
		logger.Fatal("failed to open store", zap.Error(err))
	}
	defer func() {
		_ = repo.Close()
	}()

	var cacheSvc cache.CacheService
	if cfg.Redis.Enabled {
		cacheSvc, err = rediscache.NewRedisCache(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			logger.Warn("redis unavailable, falling back to memory cache", zap.Error(err))
			cacheSvc = memory.NewMemoryCache()
		}
	} else {
		cacheSvc = memory.NewMemoryCache()
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	reg := registry.New()
	limiter := ratelimit.New(nil)
	for _, pCfg := range cfg.Providers {
		p, err := llm.New(pCfg)
		if err != nil {
			logger.Error("failed to build provider", zap.String("provider", pCfg.ID), zap.Error(err))
			continue
		}
		if err := reg.Register(ctx, pCfg, p); err != nil {
			logger.Error("failed to register provider", zap.String("provider", pCfg.ID), zap.Error(err))
			continue
		}
		limiter.SetLimit(pCfg.ID, pCfg.RateLimit)
	}

	cat := catalog.New(reg)
	cat.Refresh(ctx)

	ingestor := analytics.NewIngestor(logger.Get(), repo)
	ingestor.Start(ctx)
	defer ingestor.Stop()

	dispatcher := broker.NewDispatcher(reg, limiter, cat, ingestor)

	srv := server.New(cfg, logger.Get(), server.Components{
		Dispatcher: dispatcher,
		Registry:   reg,
		Limiter:    limiter,
		Catalog:    cat,
		Guard:      guardrails.NewRegexChecker(),
		Cache:      cacheSvc,
	})

	httpServer := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: srv.Handler(),
	}

	go func() {
		logger.Info("server listening", zap.String("port", cfg.Server.Port))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}
	if err := shutdownTracer(shutdownCtx); err != nil {
		logger.Error("tracer shutdown failed", zap.Error(err))
	}
}
