package routing

import (
	"sort"

	"github.com/andresuchdata/return-router/backend-go/internal/domain"
)

// SummarizeStores groups route details by recommended store, listing the
// distinct product names sent there. Stores appear in order of first use.
func SummarizeStores(details []domain.RouteDetail) []domain.StoreSummary {
	index := make(map[string]int)
	products := make([]map[string]struct{}, 0)
	summaries := make([]domain.StoreSummary, 0)

	for _, d := range details {
		key := d.StoreID + "\x00" + d.StoreName
		i, ok := index[key]
		if !ok {
			i = len(summaries)
			index[key] = i
			summaries = append(summaries, domain.StoreSummary{
				StoreID:   d.StoreID,
				StoreName: d.StoreName,
				Lat:       d.StoreLat,
				Lng:       d.StoreLng,
			})
			products = append(products, make(map[string]struct{}))
		}
		summaries[i].Returns++
		products[i][d.ProductName] = struct{}{}
	}

	for i := range summaries {
		names := make([]string, 0, len(products[i]))
		for name := range products[i] {
			names = append(names, name)
		}
		sort.Strings(names)
		summaries[i].Products = names
	}
	return summaries
}
