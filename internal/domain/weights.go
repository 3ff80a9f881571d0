package domain

import (
	"fmt"
	"math"
)

// Weights are the user supplied factor weights. They do not need to sum to 1.
type Weights struct {
	Stock    float64 `json:"stock_weight"`
	Sales    float64 `json:"sales_weight"`
	Distance float64 `json:"distance_weight"`
}

// DefaultWeights mirrors the slider defaults of the operations UI.
func DefaultWeights() Weights {
	return Weights{Stock: 0.5, Sales: 0.3, Distance: 0.2}
}

// Validate rejects weights outside [0,1]. Used at the API and CLI boundary only;
// the scoring core accepts anything and normalizes.
func (w Weights) Validate() error {
	for _, f := range []struct {
		name  string
		value float64
	}{
		{"stock_weight", w.Stock},
		{"sales_weight", w.Sales},
		{"distance_weight", w.Distance},
	} {
		if math.IsNaN(f.value) || f.value < 0 || f.value > 1 {
			return fmt.Errorf("%w: %s=%v must be within [0,1]", ErrInvalidWeights, f.name, f.value)
		}
	}
	return nil
}

// Normalize scales the weights to sum to 1. Negative or NaN weights count as 0,
// and an all-zero set falls back to equal thirds.
func (w Weights) Normalize() Weights {
	clean := func(v float64) float64 {
		if math.IsNaN(v) || v < 0 {
			return 0
		}
		return v
	}
	n := Weights{Stock: clean(w.Stock), Sales: clean(w.Sales), Distance: clean(w.Distance)}

	total := n.Stock + n.Sales + n.Distance
	if total == 0 || math.IsInf(total, 0) {
		return Weights{Stock: 1.0 / 3, Sales: 1.0 / 3, Distance: 1.0 / 3}
	}
	return Weights{Stock: n.Stock / total, Sales: n.Sales / total, Distance: n.Distance / total}
}

// MultiFactor reports whether more than one weight is strictly positive.
func (w Weights) MultiFactor() bool {
	positive := 0
	for _, v := range []float64{w.Stock, w.Sales, w.Distance} {
		if v > 0 {
			positive++
		}
	}
	return positive > 1
}
