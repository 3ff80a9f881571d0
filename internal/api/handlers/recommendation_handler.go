package handlers

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/andresuchdata/return-router/backend-go/internal/domain"
	"github.com/andresuchdata/return-router/backend-go/internal/routing"
	"github.com/andresuchdata/return-router/backend-go/internal/service"
	"github.com/andresuchdata/return-router/backend-go/internal/tabular"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

const (
	formatJSON = "json"
	formatCSV  = "csv"
	formatXLSX = "xlsx"

	xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

var errMissingUpload = errors.New("missing upload")

type RecommendationHandler struct {
	service        *service.RoutingService
	defaults       domain.Weights
	maxUploadBytes int64
}

func NewRecommendationHandler(svc *service.RoutingService, defaults domain.Weights, maxUploadBytes int64) *RecommendationHandler {
	if maxUploadBytes <= 0 {
		maxUploadBytes = 32 << 20
	}
	return &RecommendationHandler{service: svc, defaults: defaults, maxUploadBytes: maxUploadBytes}
}

// Recommend scores uploaded returns/inventory/demand tables and responds with
// one recommended store per matched return.
func (h *RecommendationHandler) Recommend(c *gin.Context) {
	format, ok := h.parseFormat(c)
	if !ok {
		return
	}
	run, ok := h.run(c)
	if !ok {
		return
	}
	result := run.Result
	c.Header("X-Run-ID", run.ID)

	if returnID := strings.TrimSpace(c.Query("return_id")); returnID != "" {
		detail, found := result.Find(returnID)
		if !found {
			c.JSON(http.StatusNotFound, gin.H{"error": fmt.Sprintf("no recommendation for return %s", returnID)})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"run_id":         run.ID,
			"recommendation": detail,
		})
		return
	}

	switch format {
	case formatCSV:
		var buf bytes.Buffer
		var err error
		if c.Query("details") == "true" {
			err = tabular.WriteRouteDetailsCSV(&buf, result.Details)
		} else {
			err = tabular.WriteRecommendationsCSV(&buf, result.Recommendations)
		}
		if err != nil {
			respondError(c, err)
			return
		}
		attachment(c, "recommendations.csv")
		c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
	case formatXLSX:
		var buf bytes.Buffer
		if err := tabular.WriteWorkbook(&buf, result.Recommendations, routing.SummarizeStores(result.Details)); err != nil {
			respondError(c, err)
			return
		}
		attachment(c, "recommendations.xlsx")
		c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
	default:
		c.JSON(http.StatusOK, gin.H{
			"run_id":          run.ID,
			"cached":          run.Cached,
			"weights":         result.Weights,
			"boosted":         result.Boosted,
			"recommendations": result.Recommendations,
			"details":         result.Details,
			"dropped":         result.Dropped,
		})
	}
}

// Stores responds with the per-store summary of a scoring run.
func (h *RecommendationHandler) Stores(c *gin.Context) {
	format, ok := h.parseFormat(c)
	if !ok {
		return
	}
	run, ok := h.run(c)
	if !ok {
		return
	}
	stores := routing.SummarizeStores(run.Result.Details)
	c.Header("X-Run-ID", run.ID)

	if format == formatCSV {
		var buf bytes.Buffer
		if err := tabular.WriteStoreSummaryCSV(&buf, stores); err != nil {
			respondError(c, err)
			return
		}
		attachment(c, "stores.csv")
		c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"run_id": run.ID,
		"stores": stores,
	})
}

// InvalidateCache drops all memoized recommendation results.
func (h *RecommendationHandler) InvalidateCache(c *gin.Context) {
	if err := h.service.InvalidateCache(c.Request.Context()); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *RecommendationHandler) parseFormat(c *gin.Context) (string, bool) {
	format := strings.ToLower(strings.TrimSpace(c.DefaultQuery("format", formatJSON)))
	switch format {
	case formatJSON, formatCSV, formatXLSX:
		return format, true
	}
	c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("unsupported format %q", format)})
	return "", false
}

func (h *RecommendationHandler) run(c *gin.Context) (*service.Run, bool) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadBytes)
	// PostForm drops parse errors, so an oversized body must surface here.
	if err := c.Request.ParseMultipartForm(h.maxUploadBytes); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			respondError(c, err)
			return nil, false
		}
	}

	weights, err := h.parseWeights(c)
	if err != nil {
		respondError(c, err)
		return nil, false
	}

	tables, err := readUploadedTables(c)
	if err != nil {
		respondError(c, err)
		return nil, false
	}

	run, err := h.service.Recommend(c.Request.Context(), tables, weights)
	if err != nil {
		respondError(c, err)
		return nil, false
	}
	return run, true
}

// parseWeights reads optional weight form values, falling back to the
// configured defaults per field.
func (h *RecommendationHandler) parseWeights(c *gin.Context) (domain.Weights, error) {
	weights := h.defaults
	fields := []struct {
		name string
		dst  *float64
	}{
		{"stock_weight", &weights.Stock},
		{"sales_weight", &weights.Sales},
		{"distance_weight", &weights.Distance},
	}
	for _, f := range fields {
		raw := strings.TrimSpace(c.PostForm(f.name))
		if raw == "" {
			continue
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return weights, fmt.Errorf("%w: %s=%q", domain.ErrInvalidWeights, f.name, raw)
		}
		*f.dst = v
	}
	if err := weights.Validate(); err != nil {
		return weights, err
	}
	return weights, nil
}

func readUploadedTables(c *gin.Context) (domain.Tables, error) {
	var tables domain.Tables
	var err error

	if tables.Returns, err = readUpload(c, "returns", tabular.ReadReturns); err != nil {
		return tables, err
	}
	if tables.Inventory, err = readUpload(c, "inventory", tabular.ReadInventory); err != nil {
		return tables, err
	}
	if tables.Demand, err = readUpload(c, "demand", tabular.ReadDemand); err != nil {
		return tables, err
	}
	return tables, nil
}

func readUpload[T any](c *gin.Context, field string, read func(io.Reader, tabular.Format) ([]T, error)) ([]T, error) {
	header, err := c.FormFile(field)
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: form file %q", errMissingUpload, field)
	}
	return readFileHeader(header, read)
}

func readFileHeader[T any](header *multipart.FileHeader, read func(io.Reader, tabular.Format) ([]T, error)) ([]T, error) {
	format, err := tabular.FormatFromName(header.Filename)
	if err != nil {
		return nil, err
	}
	f, err := header.Open()
	if err != nil {
		return nil, fmt.Errorf("open upload %s: %w", header.Filename, err)
	}
	defer f.Close()
	return read(f, format)
}

func attachment(c *gin.Context, filename string) {
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
}

func respondError(c *gin.Context, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		log.Error().Err(err).Str("path", c.Request.URL.Path).Msg("request failed")
	} else {
		log.Debug().Err(err).Int("status", status).Msg("request rejected")
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

func statusFor(err error) int {
	var maxErr *http.MaxBytesError
	switch {
	case errors.As(err, &maxErr):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, errMissingUpload),
		errors.Is(err, domain.ErrMissingColumn),
		errors.Is(err, domain.ErrMalformedValue),
		errors.Is(err, domain.ErrInvalidWeights),
		errors.Is(err, domain.ErrUnsupportedFormat):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
