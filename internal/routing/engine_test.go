package routing

import (
	"context"
	"fmt"
	"math"
	"testing"

	"github.com/andresuchdata/return-router/backend-go/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixtureTables() domain.Tables {
	return domain.Tables{
		Returns: []domain.ReturnRecord{
			{ReturnID: "R1", ProductID: "P1", ProductName: "P1-Name", Lat: 0, Lng: 0},
		},
		Inventory: []domain.InventoryRecord{
			{StoreID: "S1", ProductID: "P1", StoreName: "Store1", Lat: 0, Lng: 1, CurrentStock: 10},
			{StoreID: "S2", ProductID: "P1", StoreName: "Store2", Lat: 0, Lng: 2, CurrentStock: 5},
		},
		Demand: []domain.DemandRecord{
			{StoreID: "S1", ProductID: "P1", PastWeekSales: 20},
			{StoreID: "S2", ProductID: "P1", PastWeekSales: 80},
		},
	}
}

// largerTables builds several products across a handful of stores, plus a
// return for a product nobody stocks.
func largerTables() domain.Tables {
	stores := []struct {
		id       string
		lat, lng float64
	}{
		{"S1", 40.71, -74.00},
		{"S2", 34.05, -118.24},
		{"S3", 41.88, -87.63},
		{"S4", 29.76, -95.37},
	}
	var tables domain.Tables
	for p := 1; p <= 3; p++ {
		productID := fmt.Sprintf("P%d", p)
		for s, st := range stores {
			if p == 3 && s > 0 {
				break
			}
			tables.Inventory = append(tables.Inventory, domain.InventoryRecord{
				StoreID: st.id, ProductID: productID, StoreName: "Store " + st.id,
				Lat: st.lat, Lng: st.lng, CurrentStock: float64((s*7 + p*3) % 11),
			})
			if s%2 == 0 {
				tables.Demand = append(tables.Demand, domain.DemandRecord{
					StoreID: st.id, ProductID: productID, PastWeekSales: float64((s + 1) * p * 4),
				})
			}
		}
	}
	returnPoints := [][2]float64{{40.0, -75.0}, {33.0, -117.0}, {42.0, -88.0}, {30.0, -96.0}, {39.0, -100.0}}
	for i, pt := range returnPoints {
		tables.Returns = append(tables.Returns, domain.ReturnRecord{
			ReturnID: fmt.Sprintf("R%d", i+1), ProductID: fmt.Sprintf("P%d", i%3+1),
			ProductName: fmt.Sprintf("Product %d", i%3+1), Lat: pt[0], Lng: pt[1],
		})
	}
	tables.Returns = append(tables.Returns, domain.ReturnRecord{
		ReturnID: "R-orphan", ProductID: "P404", ProductName: "Ghost", Lat: 1, Lng: 1,
	})
	return tables
}

func TestEngine_RegressionFixture(t *testing.T) {
	result, err := NewEngine().Recommend(context.Background(), fixtureTables(), domain.Weights{Stock: 0.5, Sales: 0.3, Distance: 0.2})
	require.NoError(t, err)
	require.Len(t, result.Recommendations, 1)

	rec := result.Recommendations[0]
	assert.Equal(t, "R1", rec.ReturnID)
	assert.Equal(t, "P1-Name", rec.ProductName)
	assert.Equal(t, "Store2", rec.StoreName)
	assert.InDelta(t, 222.39, rec.DistanceKm, 1e-9)
	// 0.5*1 + 0.3*1 + 0.2*0 + 0.1*0.5
	assert.InDelta(t, 0.85, rec.Score, 1e-9)
	assert.True(t, result.Boosted)
	assert.Empty(t, result.Dropped)
}

func TestEngine_AntipodalStoreKeepsScoresFinite(t *testing.T) {
	tables := domain.Tables{
		Returns: []domain.ReturnRecord{
			{ReturnID: "R1", ProductID: "X", ProductName: "X", Lat: -86.77999999999997, Lng: -179},
		},
		Inventory: []domain.InventoryRecord{
			{StoreID: "F", ProductID: "X", StoreName: "Far", Lat: 86.77999999999997, Lng: 1, CurrentStock: 3},
			{StoreID: "N", ProductID: "X", StoreName: "Near", Lat: -80, Lng: -170, CurrentStock: 3},
		},
	}

	result, err := NewEngine().Recommend(context.Background(), tables, domain.DefaultWeights())
	require.NoError(t, err)
	require.Len(t, result.Recommendations, 1)

	rec := result.Recommendations[0]
	assert.Equal(t, "Near", rec.StoreName)
	assert.False(t, math.IsNaN(rec.DistanceKm))
	assert.False(t, math.IsNaN(rec.Score))
	// 0.5*0.5 + 0.3*0.5 + 0.2*1 + 0.1*(0.5*0.5 + 0.5*1)
	assert.InDelta(t, 0.675, rec.Score, 1e-9)
}

func TestEngine_DropsUnmatchedReturns(t *testing.T) {
	tables := largerTables()
	result, err := NewEngine().Recommend(context.Background(), tables, domain.DefaultWeights())
	require.NoError(t, err)

	assert.Equal(t, []string{"R-orphan"}, result.Dropped)
	assert.Len(t, result.Recommendations, len(tables.Returns)-1)

	// every recommended store carries the returned product
	for _, d := range result.Details {
		found := false
		for _, inv := range tables.Inventory {
			if inv.ProductID == d.ProductID && inv.StoreID == d.StoreID {
				found = true
			}
		}
		assert.True(t, found, "store %s does not stock %s", d.StoreID, d.ProductID)
	}

	// order follows the returns table
	for i, rec := range result.Recommendations {
		assert.Equal(t, tables.Returns[i].ReturnID, rec.ReturnID)
	}
}

func TestEngine_EmptyInputs(t *testing.T) {
	result, err := NewEngine().Recommend(context.Background(), domain.Tables{}, domain.DefaultWeights())
	require.NoError(t, err)
	assert.NotNil(t, result.Recommendations)
	assert.Empty(t, result.Recommendations)
	assert.Empty(t, result.Dropped)

	tables := fixtureTables()
	tables.Inventory = nil
	result, err = NewEngine().Recommend(context.Background(), tables, domain.DefaultWeights())
	require.NoError(t, err)
	assert.Empty(t, result.Recommendations)
	assert.Equal(t, []string{"R1"}, result.Dropped)
}

func TestEngine_WeightScalingDoesNotChangeResult(t *testing.T) {
	tables := largerTables()
	base := domain.Weights{Stock: 0.4, Sales: 0.25, Distance: 0.1}

	want, err := NewEngine().Recommend(context.Background(), tables, base)
	require.NoError(t, err)

	for _, k := range []float64{0.5, 2, 4} {
		scaled := domain.Weights{Stock: base.Stock * k, Sales: base.Sales * k, Distance: base.Distance * k}
		got, err := NewEngine().Recommend(context.Background(), tables, scaled)
		require.NoError(t, err)
		assert.Equal(t, want.Recommendations, got.Recommendations, "scale %v", k)
	}
}

func TestEngine_AllZeroWeightsUseEqualThirds(t *testing.T) {
	tables := largerTables()

	zero, err := NewEngine().Recommend(context.Background(), tables, domain.Weights{})
	require.NoError(t, err)
	equal, err := NewEngine().Recommend(context.Background(), tables, domain.Weights{Stock: 1, Sales: 1, Distance: 1})
	require.NoError(t, err)

	assert.Equal(t, equal.Recommendations, zero.Recommendations)
	assert.True(t, zero.Boosted)
}

func TestEngine_ParallelMatchesSequential(t *testing.T) {
	tables := largerTables()
	weights := domain.Weights{Stock: 0.2, Sales: 0.5, Distance: 0.9}

	seq, err := NewEngine().Recommend(context.Background(), tables, weights)
	require.NoError(t, err)
	par, err := NewEngine(WithWorkers(4)).Recommend(context.Background(), tables, weights)
	require.NoError(t, err)

	assert.Equal(t, seq, par)
}

func TestEngine_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewEngine().Recommend(ctx, largerTables(), domain.DefaultWeights())
	assert.ErrorIs(t, err, context.Canceled)

	_, err = NewEngine(WithWorkers(3)).Recommend(ctx, largerTables(), domain.DefaultWeights())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestResult_Find(t *testing.T) {
	result, err := NewEngine().Recommend(context.Background(), largerTables(), domain.DefaultWeights())
	require.NoError(t, err)

	d, ok := result.Find("R2")
	require.True(t, ok)
	assert.Equal(t, "P2", d.ProductID)

	_, ok = result.Find("R-orphan")
	assert.False(t, ok)
}
