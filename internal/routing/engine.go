package routing

import (
	"context"

	"github.com/andresuchdata/return-router/backend-go/internal/domain"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// Result is the outcome of one scoring pass.
type Result struct {
	Recommendations []domain.Recommendation `json:"recommendations"`
	Details         []domain.RouteDetail    `json:"details"`
	Dropped         []string                `json:"dropped"`
	Weights         domain.Weights          `json:"weights"`
	Boosted         bool                    `json:"boosted"`
}

// Find returns the recommendation for a return ID.
func (r *Result) Find(returnID string) (domain.RouteDetail, bool) {
	for _, d := range r.Details {
		if d.ReturnID == returnID {
			return d, true
		}
	}
	return domain.RouteDetail{}, false
}

// Option configures an Engine.
type Option func(*Engine)

// WithWorkers scores returns on up to n goroutines. Output is identical to the
// sequential pass.
func WithWorkers(n int) Option {
	return func(e *Engine) {
		if n < 1 {
			n = 1
		}
		e.workers = n
	}
}

// Engine runs the recommendation pipeline. It holds no per-run state and is
// safe to share between concurrent callers.
type Engine struct {
	workers int
}

// NewEngine creates an engine that scores sequentially unless configured otherwise.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{workers: 1}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Recommend joins, normalizes and scores the given tables, picking one store
// per return. Returns whose product has no inventory are reported in Dropped.
// The only error is context cancellation.
func (e *Engine) Recommend(ctx context.Context, tables domain.Tables, weights domain.Weights) (*Result, error) {
	w := weights.Normalize()
	groups := NormalizeByProduct(Enrich(tables.Inventory, tables.Demand))

	slots := make([]*domain.RouteDetail, len(tables.Returns))
	score := func(i int) {
		ret := tables.Returns[i]
		candidates, ok := groups[ret.ProductID]
		if !ok {
			return
		}
		best, ok := SelectBest(ScoreCandidates(ret, candidates, w))
		if !ok {
			return
		}
		detail := BuildDetail(ret, best)
		slots[i] = &detail
	}

	if e.workers <= 1 || len(tables.Returns) < 2 {
		for i := range tables.Returns {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			score(i)
		}
	} else {
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(e.workers)
		for i := range tables.Returns {
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				score(i)
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
	}

	result := &Result{
		Recommendations: make([]domain.Recommendation, 0, len(slots)),
		Details:         make([]domain.RouteDetail, 0, len(slots)),
		Dropped:         make([]string, 0),
		Weights:         w,
		Boosted:         w.MultiFactor(),
	}
	for i, slot := range slots {
		if slot == nil {
			result.Dropped = append(result.Dropped, tables.Returns[i].ReturnID)
			log.Debug().
				Str("return_id", tables.Returns[i].ReturnID).
				Str("product_id", tables.Returns[i].ProductID).
				Msg("no inventory for returned product, skipping")
			continue
		}
		result.Recommendations = append(result.Recommendations, slot.Recommendation)
		result.Details = append(result.Details, *slot)
	}
	return result, nil
}
