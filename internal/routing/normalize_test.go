package routing

import (
	"testing"

	"github.com/andresuchdata/return-router/backend-go/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMinMaxScale(t *testing.T) {
	tests := []struct {
		name   string
		values []float64
		want   []float64
	}{
		{"empty", nil, []float64{}},
		{"single value is degenerate", []float64{7}, []float64{0.5}},
		{"all equal is degenerate", []float64{3, 3, 3}, []float64{0.5, 0.5, 0.5}},
		{"spread", []float64{10, 5, 7.5}, []float64{1, 0, 0.5}},
		{"zeros and value", []float64{0, 0, 4}, []float64{0, 0, 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MinMaxScale(tt.values)
			require.Len(t, got, len(tt.want))
			for i := range tt.want {
				assert.InDelta(t, tt.want[i], got[i], 1e-12)
			}
		})
	}
}

func TestInvertedMinMaxScale(t *testing.T) {
	assert.Equal(t, []float64{0, 1}, InvertedMinMaxScale([]float64{10, 5}))
	assert.Equal(t, []float64{0.5, 0.5}, InvertedMinMaxScale([]float64{2, 2}))
}

func TestMinMaxScale_StaysInUnitRange(t *testing.T) {
	values := []float64{0.1, 1e9, -3, 42, 0.30000000000000004, 7}
	for _, v := range MinMaxScale(values) {
		assert.GreaterOrEqual(t, v, 0.0)
		assert.LessOrEqual(t, v, 1.0)
	}
	for _, v := range InvertedMinMaxScale(values) {
		assert.GreaterOrEqual(t, v, 0.0)
		assert.LessOrEqual(t, v, 1.0)
	}
}

func TestNormalizeByProduct_ScalesPerProduct(t *testing.T) {
	enriched := []domain.EnrichedInventoryRecord{
		{InventoryRecord: domain.InventoryRecord{StoreID: "S1", ProductID: "P1", CurrentStock: 10}, PastWeekSales: 20},
		{InventoryRecord: domain.InventoryRecord{StoreID: "S2", ProductID: "P1", CurrentStock: 5}, PastWeekSales: 80},
		{InventoryRecord: domain.InventoryRecord{StoreID: "S1", ProductID: "P2", CurrentStock: 1000}, PastWeekSales: 1},
		{InventoryRecord: domain.InventoryRecord{StoreID: "S3", ProductID: "P1", CurrentStock: 7.5}, PastWeekSales: 50},
	}

	groups := NormalizeByProduct(enriched)
	require.Len(t, groups, 2)

	p1 := groups["P1"]
	require.Len(t, p1, 3)
	assert.Equal(t, "S1", p1[0].StoreID)
	assert.Equal(t, "S2", p1[1].StoreID)
	assert.Equal(t, "S3", p1[2].StoreID)

	// lowest stock scores highest
	assert.InDelta(t, 0.0, p1[0].StockScore, 1e-12)
	assert.InDelta(t, 1.0, p1[1].StockScore, 1e-12)
	assert.InDelta(t, 0.5, p1[2].StockScore, 1e-12)

	assert.InDelta(t, 0.0, p1[0].SalesScore, 1e-12)
	assert.InDelta(t, 1.0, p1[1].SalesScore, 1e-12)
	assert.InDelta(t, 0.5, p1[2].SalesScore, 1e-12)

	// P2's huge stock does not leak into P1, and its single row is degenerate
	p2 := groups["P2"]
	require.Len(t, p2, 1)
	assert.Equal(t, DegenerateScore, p2[0].StockScore)
	assert.Equal(t, DegenerateScore, p2[0].SalesScore)
}

func TestEnrich_LeftJoinDefaultsSalesToZero(t *testing.T) {
	inventory := []domain.InventoryRecord{
		{StoreID: "S1", ProductID: "P1", CurrentStock: 10},
		{StoreID: "S2", ProductID: "P1", CurrentStock: 5},
		{StoreID: "S1", ProductID: "P1", CurrentStock: 99},
	}
	demand := []domain.DemandRecord{
		{StoreID: "S1", ProductID: "P1", PastWeekSales: 20},
		{StoreID: "S1", ProductID: "P1", PastWeekSales: 999},
		{StoreID: "S9", ProductID: "P1", PastWeekSales: 5},
	}

	enriched := Enrich(inventory, demand)
	require.Len(t, enriched, 2)
	assert.Equal(t, 20.0, enriched[0].PastWeekSales)
	assert.Equal(t, 10.0, enriched[0].CurrentStock)
	assert.Equal(t, 0.0, enriched[1].PastWeekSales)
}
