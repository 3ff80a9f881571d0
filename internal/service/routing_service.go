package service

import (
	"context"
	"time"

	"github.com/andresuchdata/return-router/backend-go/internal/cache"
	"github.com/andresuchdata/return-router/backend-go/internal/domain"
	"github.com/andresuchdata/return-router/backend-go/internal/metrics"
	"github.com/andresuchdata/return-router/backend-go/internal/routing"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Run is one recommendation request and its outcome.
type Run struct {
	ID     string          `json:"run_id"`
	Cached bool            `json:"cached"`
	Result *routing.Result `json:"result"`
}

type RoutingService struct {
	engine *routing.Engine
	cache  cache.RecommendationCache
	source string
}

// NewRoutingService wires the engine with a result cache. source labels the
// caller in metrics (for example "api" or "cli").
func NewRoutingService(engine *routing.Engine, cacheImpl cache.RecommendationCache, source string) *RoutingService {
	if engine == nil {
		engine = routing.NewEngine()
	}
	if cacheImpl == nil {
		cacheImpl = cache.NewNoopRecommendationCache()
	}
	if source == "" {
		source = "unknown"
	}
	return &RoutingService{engine: engine, cache: cacheImpl, source: source}
}

func (s *RoutingService) Recommend(ctx context.Context, tables domain.Tables, weights domain.Weights) (*Run, error) {
	run := &Run{ID: uuid.NewString()}
	logger := log.With().Str("run_id", run.ID).Str("source", s.source).Logger()
	start := time.Now()

	key, err := cache.Fingerprint(tables, weights)
	if err != nil {
		logger.Warn().Err(err).Msg("routing: fingerprint failed, skipping cache")
	}

	if key != "" {
		if result, ok, err := s.cache.Get(ctx, key); err == nil && ok {
			metrics.ObserveCache("hit")
			metrics.ObserveRun(s.source, metrics.OutcomeCached, time.Since(start), len(result.Recommendations), len(result.Dropped))
			logger.Info().Int("recommendations", len(result.Recommendations)).Msg("routing: served from cache")
			run.Cached = true
			run.Result = result
			return run, nil
		} else if err != nil {
			metrics.ObserveCache("error")
			logger.Warn().Err(err).Msg("routing: cache get failed")
		} else {
			metrics.ObserveCache("miss")
		}
	}

	result, err := s.engine.Recommend(ctx, tables, weights)
	if err != nil {
		metrics.ObserveRun(s.source, metrics.OutcomeError, time.Since(start), 0, 0)
		return nil, err
	}
	elapsed := time.Since(start)
	metrics.ObserveRun(s.source, metrics.OutcomeSuccess, elapsed, len(result.Recommendations), len(result.Dropped))

	logger.Info().
		Int("returns", len(tables.Returns)).
		Int("inventory_rows", len(tables.Inventory)).
		Int("recommendations", len(result.Recommendations)).
		Int("dropped", len(result.Dropped)).
		Bool("boosted", result.Boosted).
		Dur("elapsed", elapsed).
		Msg("routing: run completed")

	if key != "" {
		if err := s.cache.Set(ctx, key, result); err != nil {
			logger.Warn().Err(err).Msg("routing: cache set failed")
		}
	}

	run.Result = result
	return run, nil
}

// InvalidateCache drops every memoized result.
func (s *RoutingService) InvalidateCache(ctx context.Context) error {
	if err := s.cache.InvalidateAll(ctx); err != nil {
		return err
	}
	log.Info().Str("source", s.source).Msg("routing: result cache invalidated")
	return nil
}
