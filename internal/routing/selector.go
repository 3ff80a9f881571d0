package routing

import (
	"math"

	"github.com/andresuchdata/return-router/backend-go/internal/domain"
)

// SelectBest returns the highest scoring candidate. Ties keep the earliest one.
func SelectBest(scored []domain.ScoredCandidate) (domain.ScoredCandidate, bool) {
	if len(scored) == 0 {
		return domain.ScoredCandidate{}, false
	}

	best := 0
	for i := 1; i < len(scored); i++ {
		if scored[i].Score > scored[best].Score {
			best = i
		}
	}
	return scored[best], true
}

// BuildDetail assembles the result row for a return and its chosen store.
func BuildDetail(ret domain.ReturnRecord, best domain.ScoredCandidate) domain.RouteDetail {
	return domain.RouteDetail{
		Recommendation: domain.Recommendation{
			ReturnID:    ret.ReturnID,
			ProductName: ret.ProductName,
			StoreName:   best.StoreName,
			DistanceKm:  Round(best.DistanceKm, 2),
			Score:       Round(best.Score, 3),
		},
		ProductID: ret.ProductID,
		StoreID:   best.StoreID,
		ReturnLat: ret.Lat,
		ReturnLng: ret.Lng,
		StoreLat:  best.Lat,
		StoreLng:  best.Lng,
	}
}

// Round rounds half away from zero to the given number of decimals.
func Round(v float64, decimals int) float64 {
	p := math.Pow(10, float64(decimals))
	return math.Round(v*p) / p
}
