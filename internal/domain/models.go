package domain

// ReturnRecord is one returned item waiting to be rerouted.
type ReturnRecord struct {
	ReturnID    string  `json:"return_id"`
	ProductID   string  `json:"product_id"`
	ProductName string  `json:"product_name"`
	Lat         float64 `json:"return_location_lat"`
	Lng         float64 `json:"return_location_lng"`
}

// InventoryRecord is the stock a store holds for a product.
type InventoryRecord struct {
	StoreID      string  `json:"store_id"`
	ProductID    string  `json:"product_id"`
	StoreName    string  `json:"store_name"`
	Lat          float64 `json:"lat"`
	Lng          float64 `json:"lng"`
	CurrentStock float64 `json:"current_stock"`
}

// DemandRecord is the recent sales velocity of a product at a store.
type DemandRecord struct {
	StoreID       string  `json:"store_id"`
	ProductID     string  `json:"product_id"`
	PastWeekSales float64 `json:"past_week_sales"`
}

// EnrichedInventoryRecord is an inventory row joined with its demand row.
// PastWeekSales is 0 when the store has no demand row for the product.
type EnrichedInventoryRecord struct {
	InventoryRecord
	PastWeekSales float64 `json:"past_week_sales"`
}

// NormalizedCandidate carries the product-group scaled stock and sales signals.
type NormalizedCandidate struct {
	EnrichedInventoryRecord
	StockScore float64 `json:"stock_score"`
	SalesScore float64 `json:"sales_score"`
}

// ScoredCandidate is a candidate store scored against one return.
type ScoredCandidate struct {
	NormalizedCandidate
	DistanceKm    float64 `json:"distance_km"`
	DistanceScore float64 `json:"distance_score"`
	Boost         float64 `json:"boost"`
	Score         float64 `json:"score"`
}

// Recommendation is one row of the result table.
type Recommendation struct {
	ReturnID    string  `json:"return_id"`
	ProductName string  `json:"product_name"`
	StoreName   string  `json:"store_name"`
	DistanceKm  float64 `json:"distance_km"`
	Score       float64 `json:"score"`
}

// RouteDetail extends a Recommendation with the identifiers and coordinates
// needed to draw the route on a map.
type RouteDetail struct {
	Recommendation
	ProductID string  `json:"product_id"`
	StoreID   string  `json:"store_id"`
	ReturnLat float64 `json:"return_lat"`
	ReturnLng float64 `json:"return_lng"`
	StoreLat  float64 `json:"store_lat"`
	StoreLng  float64 `json:"store_lng"`
}

// StoreSummary lists the products routed to one store.
type StoreSummary struct {
	StoreID   string   `json:"store_id"`
	StoreName string   `json:"store_name"`
	Lat       float64  `json:"lat"`
	Lng       float64  `json:"lng"`
	Products  []string `json:"products"`
	Returns   int      `json:"returns"`
}

// Tables is one immutable snapshot of the three input tables.
type Tables struct {
	Returns   []ReturnRecord    `json:"returns"`
	Inventory []InventoryRecord `json:"inventory"`
	Demand    []DemandRecord    `json:"demand"`
}
