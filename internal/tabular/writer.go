package tabular

import (
	"encoding/csv"
	"io"
	"strconv"
	"strings"

	"github.com/andresuchdata/return-router/backend-go/internal/domain"
)

// RecommendationHeader is the column order of the exported result table.
var RecommendationHeader = []string{"return_id", "product_name", "store_name", "distance_km", "score"}

// RouteDetailHeader extends RecommendationHeader with ids and coordinates.
var RouteDetailHeader = []string{
	"return_id", "product_id", "product_name", "store_id", "store_name",
	"return_lat", "return_lng", "store_lat", "store_lng", "distance_km", "score",
}

// StoreSummaryHeader is the column order of the per-store summary.
var StoreSummaryHeader = []string{"store_id", "store_name", "lat", "lng", "returns", "products"}

// WriteRecommendationsCSV writes the result table with a header row. An empty
// slice produces a header-only file.
func WriteRecommendationsCSV(w io.Writer, recs []domain.Recommendation) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(RecommendationHeader); err != nil {
		return err
	}
	for _, r := range recs {
		if err := cw.Write([]string{r.ReturnID, r.ProductName, r.StoreName, formatFloat(r.DistanceKm), formatFloat(r.Score)}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteRouteDetailsCSV writes the extended result table.
func WriteRouteDetailsCSV(w io.Writer, details []domain.RouteDetail) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(RouteDetailHeader); err != nil {
		return err
	}
	for _, d := range details {
		rec := []string{
			d.ReturnID, d.ProductID, d.ProductName, d.StoreID, d.StoreName,
			formatFloat(d.ReturnLat), formatFloat(d.ReturnLng),
			formatFloat(d.StoreLat), formatFloat(d.StoreLng),
			formatFloat(d.DistanceKm), formatFloat(d.Score),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteStoreSummaryCSV writes one row per recommended store.
func WriteStoreSummaryCSV(w io.Writer, stores []domain.StoreSummary) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(StoreSummaryHeader); err != nil {
		return err
	}
	for _, s := range stores {
		rec := []string{
			s.StoreID, s.StoreName, formatFloat(s.Lat), formatFloat(s.Lng),
			strconv.Itoa(s.Returns), joinProducts(s.Products),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// formatFloat prints the shortest representation, so 0.850 is written as 0.85.
func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func joinProducts(products []string) string {
	return strings.Join(products, ", ")
}
