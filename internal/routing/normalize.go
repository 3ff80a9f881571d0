package routing

import (
	"github.com/andresuchdata/return-router/backend-go/internal/domain"
)

// DegenerateScore is assigned to every member of a group whose values span no range.
const DegenerateScore = 0.5

// ProductGroups maps a product_id to its candidate stores in inventory order.
type ProductGroups map[string][]domain.NormalizedCandidate

// MinMaxScale rescales values to [0,1]. A group with zero range (including a
// single value) maps every member to DegenerateScore.
func MinMaxScale(values []float64) []float64 {
	scaled := make([]float64, len(values))
	if len(values) == 0 {
		return scaled
	}

	lo, hi := values[0], values[0]
	for _, v := range values[1:] {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}

	span := hi - lo
	for i, v := range values {
		if span == 0 {
			scaled[i] = DegenerateScore
			continue
		}
		scaled[i] = clamp01((v - lo) / span)
	}
	return scaled
}

// InvertedMinMaxScale is 1 - MinMaxScale, so the smallest value scores 1.
// Degenerate groups still map to DegenerateScore.
func InvertedMinMaxScale(values []float64) []float64 {
	scaled := MinMaxScale(values)
	for i := range scaled {
		scaled[i] = 1 - scaled[i]
	}
	return scaled
}

// NormalizeByProduct partitions enriched inventory by product and scales stock
// (inverted: lower stock is better) and sales within each product only.
func NormalizeByProduct(enriched []domain.EnrichedInventoryRecord) ProductGroups {
	order := make([]string, 0)
	rows := make(map[string][]domain.EnrichedInventoryRecord)
	for _, r := range enriched {
		if _, ok := rows[r.ProductID]; !ok {
			order = append(order, r.ProductID)
		}
		rows[r.ProductID] = append(rows[r.ProductID], r)
	}

	groups := make(ProductGroups, len(rows))
	for _, productID := range order {
		members := rows[productID]

		stock := make([]float64, len(members))
		sales := make([]float64, len(members))
		for i, m := range members {
			stock[i] = m.CurrentStock
			sales[i] = m.PastWeekSales
		}
		stockScores := InvertedMinMaxScale(stock)
		salesScores := MinMaxScale(sales)

		candidates := make([]domain.NormalizedCandidate, len(members))
		for i, m := range members {
			candidates[i] = domain.NormalizedCandidate{
				EnrichedInventoryRecord: m,
				StockScore:              stockScores[i],
				SalesScore:              salesScores[i],
			}
		}
		groups[productID] = candidates
	}
	return groups
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
