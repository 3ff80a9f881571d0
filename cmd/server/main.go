// backend-go/cmd/server/main.go
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/andresuchdata/return-router/backend-go/internal/api"
	"github.com/andresuchdata/return-router/backend-go/internal/cache"
	"github.com/andresuchdata/return-router/backend-go/internal/config"
	"github.com/andresuchdata/return-router/backend-go/internal/routing"
	"github.com/andresuchdata/return-router/backend-go/internal/service"
	"github.com/andresuchdata/return-router/backend-go/pkg/logger"
	"github.com/gin-gonic/gin"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize logger
	logger.SetLevel(cfg.Log.Level)
	if cfg.Server.Mode == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	// Result cache; fall back to no caching when redis is unreachable
	resultCache, err := cache.NewRecommendationCache(context.Background(), cfg.Cache)
	if err != nil {
		logger.Log.Warn().Err(err).Msg("Result cache unavailable, continuing without cache")
		resultCache = cache.NewNoopRecommendationCache()
	}
	defer resultCache.Close()

	// Initialize services
	engine := routing.NewEngine(routing.WithWorkers(cfg.Routing.Workers))
	routingService := service.NewRoutingService(engine, resultCache, "api")

	// Initialize HTTP server
	router := api.NewRouter(&api.Services{RoutingService: routingService}, api.Options{
		AllowedOrigins: cfg.Server.AllowedOrigins,
		DefaultWeights: cfg.Weights(),
		MaxUploadBytes: cfg.Routing.MaxUploadMB << 20,
	})
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Log.Info().Str("port", cfg.Server.Port).Bool("cache", cfg.Cache.Enabled).Int("workers", cfg.Routing.Workers).Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info().Msg("Shutting down server...")

	// The context is used to inform the server it has 5 seconds to finish
	// the request it is currently handling
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Error().Err(err).Msg("Server forced to shutdown")
	}

	logger.Log.Info().Msg("Server exiting")
}
