package tabular

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/andresuchdata/return-router/backend-go/internal/domain"
	"github.com/rs/zerolog/log"
)

// Format is the file format of an input table.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

const (
	TableReturns   = "returns"
	TableInventory = "inventory"
	TableDemand    = "demand"
)

// Default file names looked up by LoadDir, without extension.
var defaultBaseNames = map[string]string{
	TableReturns:   "returns",
	TableInventory: "store_inventory",
	TableDemand:    "store_demand",
}

// FormatFromName picks the format from a file name extension.
func FormatFromName(name string) (Format, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".csv", "":
		return FormatCSV, nil
	case ".xlsx":
		return FormatXLSX, nil
	default:
		return "", fmt.Errorf("%w: %s", domain.ErrUnsupportedFormat, name)
	}
}

// ReadRecords reads all rows, header included, from a CSV or XLSX source.
func ReadRecords(r io.Reader, format Format) ([][]string, error) {
	switch format {
	case FormatCSV, "":
		reader := csv.NewReader(r)
		reader.TrimLeadingSpace = true
		reader.FieldsPerRecord = -1
		return reader.ReadAll()
	case FormatXLSX:
		return readXLSXRecords(r)
	default:
		return nil, fmt.Errorf("%w: %s", domain.ErrUnsupportedFormat, format)
	}
}

var columnNameSanitizer = strings.NewReplacer(" ", "", "_", "", ".", "", "-", "", "/", "")

func normalizeColumnName(name string) string {
	name = strings.TrimSpace(strings.ToLower(strings.TrimPrefix(name, "\ufeff")))
	return columnNameSanitizer.Replace(name)
}

// sheet gives column access to one parsed table.
type sheet struct {
	table  string
	header []string
	rows   [][]string
}

func newSheet(table string, records [][]string) (*sheet, error) {
	if len(records) == 0 {
		return nil, &domain.TableError{Table: table, Err: fmt.Errorf("%w: no header row", domain.ErrMissingColumn)}
	}
	return &sheet{table: table, header: records[0], rows: records[1:]}, nil
}

// column returns the index of the header matching the first of names
// present, so the canonical name wins over its aliases.
func (s *sheet) column(names ...string) (int, error) {
	headers := make(map[string]int, len(s.header))
	for i, h := range s.header {
		key := normalizeColumnName(h)
		if _, ok := headers[key]; !ok {
			headers[key] = i
		}
	}
	for _, name := range names {
		if i, ok := headers[normalizeColumnName(name)]; ok {
			return i, nil
		}
	}
	return -1, &domain.TableError{Table: s.table, Column: names[0], Err: domain.ErrMissingColumn}
}

// columns resolves every required column or fails on the first missing one.
func (s *sheet) columns(aliases [][]string) ([]int, error) {
	idx := make([]int, len(aliases))
	for i, names := range aliases {
		col, err := s.column(names...)
		if err != nil {
			return nil, err
		}
		idx[i] = col
	}
	return idx, nil
}

// row is a cursor over one data record.
type row struct {
	sheet  *sheet
	num    int
	record []string
}

func (s *sheet) each(fn func(r row) error) error {
	for i, record := range s.rows {
		if blank(record) {
			continue
		}
		if err := fn(row{sheet: s, num: i + 1, record: record}); err != nil {
			return err
		}
	}
	return nil
}

func blank(record []string) bool {
	for _, v := range record {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

func (r row) get(idx int) string {
	if idx < 0 || idx >= len(r.record) {
		return ""
	}
	return strings.TrimSpace(r.record[idx])
}

func (r row) fail(idx int, err error) error {
	column := ""
	if idx >= 0 && idx < len(r.sheet.header) {
		column = strings.TrimSpace(r.sheet.header[idx])
	}
	return &domain.TableError{Table: r.sheet.table, Row: r.num, Column: column, Err: err}
}

// number parses a required numeric cell.
func (r row) number(idx int) (float64, error) {
	v := r.get(idx)
	if v == "" {
		return 0, r.fail(idx, fmt.Errorf("%w: empty", domain.ErrMalformedValue))
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, r.fail(idx, fmt.Errorf("%w: %q", domain.ErrMalformedValue, v))
	}
	return f, nil
}

// quantity parses a count-like cell: empty is 0, thousands separators are
// dropped and negatives clamp to 0.
func (r row) quantity(idx int) (float64, error) {
	v := strings.ReplaceAll(r.get(idx), ",", "")
	if v == "" {
		return 0, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, r.fail(idx, fmt.Errorf("%w: %q", domain.ErrMalformedValue, v))
	}
	if f < 0 {
		log.Debug().Str("table", r.sheet.table).Int("row", r.num).Float64("value", f).Msg("negative quantity clamped to 0")
		return 0, nil
	}
	return f, nil
}

// ReadReturns parses the returns table.
func ReadReturns(r io.Reader, format Format) ([]domain.ReturnRecord, error) {
	s, err := load(TableReturns, r, format)
	if err != nil {
		return nil, err
	}
	idx, err := s.columns([][]string{
		{"return_id"},
		{"product_id"},
		{"product_name"},
		{"return_location_lat", "return_lat"},
		{"return_location_lng", "return_lng", "return_location_lon"},
	})
	if err != nil {
		return nil, err
	}

	out := make([]domain.ReturnRecord, 0, len(s.rows))
	err = s.each(func(r row) error {
		lat, err := r.number(idx[3])
		if err != nil {
			return err
		}
		lng, err := r.number(idx[4])
		if err != nil {
			return err
		}
		out = append(out, domain.ReturnRecord{
			ReturnID:    r.get(idx[0]),
			ProductID:   r.get(idx[1]),
			ProductName: r.get(idx[2]),
			Lat:         lat,
			Lng:         lng,
		})
		return nil
	})
	return out, err
}

// ReadInventory parses the store inventory table.
func ReadInventory(r io.Reader, format Format) ([]domain.InventoryRecord, error) {
	s, err := load(TableInventory, r, format)
	if err != nil {
		return nil, err
	}
	idx, err := s.columns([][]string{
		{"store_id"},
		{"product_id"},
		{"store_name"},
		{"lat", "latitude"},
		{"lng", "lon", "longitude"},
		{"current_stock", "stock"},
	})
	if err != nil {
		return nil, err
	}

	out := make([]domain.InventoryRecord, 0, len(s.rows))
	err = s.each(func(r row) error {
		lat, err := r.number(idx[3])
		if err != nil {
			return err
		}
		lng, err := r.number(idx[4])
		if err != nil {
			return err
		}
		stock, err := r.quantity(idx[5])
		if err != nil {
			return err
		}
		out = append(out, domain.InventoryRecord{
			StoreID:      r.get(idx[0]),
			ProductID:    r.get(idx[1]),
			StoreName:    r.get(idx[2]),
			Lat:          lat,
			Lng:          lng,
			CurrentStock: stock,
		})
		return nil
	})
	return out, err
}

// ReadDemand parses the store demand table.
func ReadDemand(r io.Reader, format Format) ([]domain.DemandRecord, error) {
	s, err := load(TableDemand, r, format)
	if err != nil {
		return nil, err
	}
	idx, err := s.columns([][]string{
		{"store_id"},
		{"product_id"},
		{"past_week_sales", "sales"},
	})
	if err != nil {
		return nil, err
	}

	out := make([]domain.DemandRecord, 0, len(s.rows))
	err = s.each(func(r row) error {
		sales, err := r.quantity(idx[2])
		if err != nil {
			return err
		}
		out = append(out, domain.DemandRecord{
			StoreID:       r.get(idx[0]),
			ProductID:     r.get(idx[1]),
			PastWeekSales: sales,
		})
		return nil
	})
	return out, err
}

func load(table string, r io.Reader, format Format) (*sheet, error) {
	records, err := ReadRecords(r, format)
	if err != nil {
		var tableErr *domain.TableError
		if errors.As(err, &tableErr) || errors.Is(err, domain.ErrUnsupportedFormat) {
			return nil, err
		}
		return nil, &domain.TableError{Table: table, Err: fmt.Errorf("%w: %v", domain.ErrMalformedValue, err)}
	}
	return newSheet(table, records)
}

// Source names the three input files of one run.
type Source struct {
	Returns   string
	Inventory string
	Demand    string
}

// SourceFromDir resolves the default file names inside dir, preferring CSV
// over XLSX when both exist.
func SourceFromDir(dir string) (Source, error) {
	find := func(table string) (string, error) {
		base := defaultBaseNames[table]
		for _, ext := range []string{".csv", ".xlsx"} {
			path := filepath.Join(dir, base+ext)
			if _, err := os.Stat(path); err == nil {
				return path, nil
			}
		}
		return "", fmt.Errorf("%w: %s.csv not found in %s", domain.ErrMissingTable, base, dir)
	}

	var src Source
	var err error
	if src.Returns, err = find(TableReturns); err != nil {
		return src, err
	}
	if src.Inventory, err = find(TableInventory); err != nil {
		return src, err
	}
	if src.Demand, err = find(TableDemand); err != nil {
		return src, err
	}
	return src, nil
}

// LoadFiles reads the three tables from disk.
func LoadFiles(src Source) (domain.Tables, error) {
	var tables domain.Tables
	var err error

	if tables.Returns, err = readFile(src.Returns, ReadReturns); err != nil {
		return tables, err
	}
	if tables.Inventory, err = readFile(src.Inventory, ReadInventory); err != nil {
		return tables, err
	}
	if tables.Demand, err = readFile(src.Demand, ReadDemand); err != nil {
		return tables, err
	}
	return tables, nil
}

func readFile[T any](path string, read func(io.Reader, Format) ([]T, error)) ([]T, error) {
	format, err := FormatFromName(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	rows, err := read(f, format)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return rows, nil
}
