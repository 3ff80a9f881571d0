package tabular

import (
	"fmt"
	"io"

	"github.com/andresuchdata/return-router/backend-go/internal/domain"
	"github.com/xuri/excelize/v2"
)

const (
	recommendationsSheet = "Recommendations"
	storesSheet          = "Stores"
)

// readXLSXRecords reads the first sheet of a workbook as string records.
func readXLSXRecords(r io.Reader) ([][]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open xlsx: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("%w: workbook has no sheets", domain.ErrUnsupportedFormat)
	}
	sheet := sheets[0]

	rows, err := f.Rows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read rows from sheet %s: %w", sheet, err)
	}
	defer rows.Close()

	var records [][]string
	for rows.Next() {
		record, err := rows.Columns()
		if err != nil {
			return nil, fmt.Errorf("failed to read row from sheet %s: %w", sheet, err)
		}
		records = append(records, record)
	}
	if err := rows.Error(); err != nil {
		return nil, fmt.Errorf("error iterating rows in sheet %s: %w", sheet, err)
	}
	return records, nil
}

// WriteWorkbook writes the recommendations and, when given, the per-store
// summary to an xlsx workbook.
func WriteWorkbook(w io.Writer, recs []domain.Recommendation, stores []domain.StoreSummary) error {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(recommendationsSheet)
	if err != nil {
		return err
	}

	rows := make([][]interface{}, 0, len(recs))
	for _, r := range recs {
		rows = append(rows, []interface{}{r.ReturnID, r.ProductName, r.StoreName, r.DistanceKm, r.Score})
	}
	if err := streamSheet(f, recommendationsSheet, toInterfaces(RecommendationHeader), rows); err != nil {
		return err
	}

	if stores != nil {
		if _, err := f.NewSheet(storesSheet); err != nil {
			return err
		}
		rows = rows[:0]
		for _, s := range stores {
			rows = append(rows, []interface{}{s.StoreID, s.StoreName, s.Lat, s.Lng, s.Returns, joinProducts(s.Products)})
		}
		if err := streamSheet(f, storesSheet, toInterfaces(StoreSummaryHeader), rows); err != nil {
			return err
		}
	}

	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return err
	}

	_, err = f.WriteTo(w)
	return err
}

func streamSheet(f *excelize.File, sheet string, header []interface{}, rows [][]interface{}) error {
	sw, err := f.NewStreamWriter(sheet)
	if err != nil {
		return err
	}
	if err := sw.SetRow("A1", header); err != nil {
		return err
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := sw.SetRow(cell, row); err != nil {
			return err
		}
	}
	return sw.Flush()
}

func toInterfaces(values []string) []interface{} {
	out := make([]interface{}, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}
