package routing

import (
	"github.com/andresuchdata/return-router/backend-go/internal/domain"
	"github.com/rs/zerolog/log"
)

// storeProductKey joins inventory and demand rows.
type storeProductKey struct {
	StoreID   string
	ProductID string
}

// Enrich left-joins inventory with demand on (store_id, product_id). Stores
// without a demand row get zero sales. The first occurrence of a duplicated
// key wins on both sides, so the output has one row per inventory key.
func Enrich(inventory []domain.InventoryRecord, demand []domain.DemandRecord) []domain.EnrichedInventoryRecord {
	sales := make(map[storeProductKey]float64, len(demand))
	for _, d := range demand {
		key := storeProductKey{StoreID: d.StoreID, ProductID: d.ProductID}
		if _, ok := sales[key]; ok {
			log.Debug().Str("store_id", d.StoreID).Str("product_id", d.ProductID).Msg("duplicate demand row ignored")
			continue
		}
		sales[key] = d.PastWeekSales
	}

	seen := make(map[storeProductKey]struct{}, len(inventory))
	enriched := make([]domain.EnrichedInventoryRecord, 0, len(inventory))
	for _, inv := range inventory {
		key := storeProductKey{StoreID: inv.StoreID, ProductID: inv.ProductID}
		if _, ok := seen[key]; ok {
			log.Debug().Str("store_id", inv.StoreID).Str("product_id", inv.ProductID).Msg("duplicate inventory row ignored")
			continue
		}
		seen[key] = struct{}{}

		enriched = append(enriched, domain.EnrichedInventoryRecord{
			InventoryRecord: inv,
			PastWeekSales:   sales[key],
		})
	}
	return enriched
}
