// internal/api/api.go
package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/andresuchdata/return-router/backend-go/internal/api/handlers"
	"github.com/andresuchdata/return-router/backend-go/internal/api/middleware"
	"github.com/andresuchdata/return-router/backend-go/internal/domain"
	"github.com/andresuchdata/return-router/backend-go/internal/service"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Services struct {
	RoutingService *service.RoutingService
}

// Options carries the HTTP-level settings of the router.
type Options struct {
	AllowedOrigins []string
	DefaultWeights domain.Weights
	MaxUploadBytes int64
}

func NewRouter(services *Services, opts Options) *gin.Engine {
	router := gin.New()

	// Add middleware
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger())
	router.Use(middleware.Recovery())
	defaultOrigins := []string{"http://localhost:3000", "http://127.0.0.1:3000"}
	corsConfig := cors.Config{
		AllowOrigins:     defaultOrigins,
		AllowMethods:     []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition", "X-Run-ID", middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(opts.AllowedOrigins) > 0 {
		normalizedOrigins, allowAll := normalizeAllowedOrigins(opts.AllowedOrigins)
		if allowAll {
			corsConfig.AllowOrigins = nil
			corsConfig.AllowOriginFunc = func(origin string) bool { return true }
		} else if len(normalizedOrigins) > 0 {
			corsConfig.AllowOrigins = normalizedOrigins
		}
	}
	router.Use(cors.New(corsConfig))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	apiGroup := router.Group("/api/v1")

	if services != nil && services.RoutingService != nil {
		recommendationHandler := handlers.NewRecommendationHandler(services.RoutingService, opts.DefaultWeights, opts.MaxUploadBytes)
		recommendationGroup := apiGroup.Group("/recommendations")
		{
			recommendationGroup.POST("", recommendationHandler.Recommend)
			recommendationGroup.POST("/stores", recommendationHandler.Stores)
			recommendationGroup.DELETE("/cache", recommendationHandler.InvalidateCache)
		}
	}

	return router
}

func normalizeAllowedOrigins(origins []string) ([]string, bool) {
	var (
		parsed   []string
		allowAll bool
	)
	for _, origin := range origins {
		parts := strings.Split(origin, ",")
		for _, part := range parts {
			trimmed := strings.TrimSpace(part)
			if trimmed == "" {
				continue
			}
			if trimmed == "*" {
				allowAll = true
				continue
			}
			parsed = append(parsed, trimmed)
		}
	}
	return parsed, allowAll
}
