package routing

import (
	"github.com/andresuchdata/return-router/backend-go/internal/domain"
	"github.com/andresuchdata/return-router/backend-go/internal/geo"
)

const (
	// BoostFactor scales the blended sales/proximity signal added under multi-factor weighting.
	BoostFactor = 0.1

	boostSalesShare    = 0.5
	boostDistanceShare = 0.5
)

// ScoreCandidates scores every candidate store of a product against one return.
// Weights must already be normalized. Distance and the boost blend are scaled
// within this return's candidate set, independently of the product-group scores.
func ScoreCandidates(ret domain.ReturnRecord, candidates []domain.NormalizedCandidate, weights domain.Weights) []domain.ScoredCandidate {
	if len(candidates) == 0 {
		return nil
	}

	distances := make([]float64, len(candidates))
	sales := make([]float64, len(candidates))
	for i, c := range candidates {
		distances[i] = geo.Haversine(ret.Lat, ret.Lng, c.Lat, c.Lng)
		sales[i] = c.PastWeekSales
	}

	distanceScores := InvertedMinMaxScale(distances)

	boostSales := MinMaxScale(sales)
	boostProximity := InvertedMinMaxScale(distances)

	useBoost := weights.MultiFactor()

	scored := make([]domain.ScoredCandidate, len(candidates))
	for i, c := range candidates {
		boost := boostSalesShare*boostSales[i] + boostDistanceShare*boostProximity[i]

		score := weights.Stock*c.StockScore +
			weights.Sales*c.SalesScore +
			weights.Distance*distanceScores[i]
		if useBoost {
			score += BoostFactor * boost
		}

		scored[i] = domain.ScoredCandidate{
			NormalizedCandidate: c,
			DistanceKm:          distances[i],
			DistanceScore:       distanceScores[i],
			Boost:               boost,
			Score:               score,
		}
	}
	return scored
}
