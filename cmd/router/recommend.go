package main

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/andresuchdata/return-router/backend-go/internal/config"
	"github.com/andresuchdata/return-router/backend-go/internal/routing"
	"github.com/andresuchdata/return-router/backend-go/internal/service"
	"github.com/andresuchdata/return-router/backend-go/internal/tabular"
	"github.com/andresuchdata/return-router/backend-go/pkg/logger"
	"github.com/urfave/cli/v2"
)

func recommendCommand() *cli.Command {
	return &cli.Command{
		Name:  "recommend",
		Usage: "Score input tables and write the recommendations table",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "data-dir",
				Usage: "Directory holding returns, store_inventory and store_demand, .csv or .xlsx (default $APP_DATA_DIR)",
			},
			&cli.StringFlag{Name: "returns", Usage: "Returns table, overrides data-dir"},
			&cli.StringFlag{Name: "inventory", Usage: "Store inventory table, overrides data-dir"},
			&cli.StringFlag{Name: "demand", Usage: "Store demand table, overrides data-dir"},
			&cli.Float64Flag{Name: "stock-weight", Usage: "Weight of low current stock, in [0,1] (default $ROUTING_STOCK_WEIGHT)"},
			&cli.Float64Flag{Name: "sales-weight", Usage: "Weight of past week sales, in [0,1] (default $ROUTING_SALES_WEIGHT)"},
			&cli.Float64Flag{Name: "distance-weight", Usage: "Weight of proximity to the return, in [0,1] (default $ROUTING_DISTANCE_WEIGHT)"},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Output file (.csv or .xlsx), - for stdout; bare file names go under $APP_OUTPUT_DIR",
				Value:   "-",
			},
			&cli.BoolFlag{
				Name:  "details",
				Usage: "Include ids and coordinates in CSV output",
			},
			&cli.StringFlag{
				Name:  "stores",
				Usage: "Also write the per-store summary CSV to this path; bare file names go under $APP_OUTPUT_DIR",
			},
			&cli.IntFlag{
				Name:  "workers",
				Usage: "Number of goroutines scoring returns (default $ROUTING_WORKERS)",
			},
		},
		Action: runRecommend,
	}
}

func runRecommend(c *cli.Context) error {
	cfg := config.Load()

	src, err := resolveSource(c, cfg.App.DataDir)
	if err != nil {
		return err
	}

	weights := cfg.Weights()
	for flag, dst := range map[string]*float64{
		"stock-weight":    &weights.Stock,
		"sales-weight":    &weights.Sales,
		"distance-weight": &weights.Distance,
	} {
		if c.IsSet(flag) {
			*dst = c.Float64(flag)
		}
	}
	if err := weights.Validate(); err != nil {
		return err
	}

	tables, err := tabular.LoadFiles(src)
	if err != nil {
		return err
	}

	workers := cfg.Routing.Workers
	if c.IsSet("workers") {
		workers = c.Int("workers")
	}
	engine := routing.NewEngine(routing.WithWorkers(workers))
	run, err := service.NewRoutingService(engine, nil, "cli").Recommend(c.Context, tables, weights)
	if err != nil {
		return err
	}
	result := run.Result

	if err := writeResult(c.App.Writer, outputPath(c.String("output"), cfg.App.OutputDir), result, c.Bool("details")); err != nil {
		return err
	}

	if path := c.String("stores"); path != "" {
		path = outputPath(path, cfg.App.OutputDir)
		var buf bytes.Buffer
		if err := tabular.WriteStoreSummaryCSV(&buf, routing.SummarizeStores(result.Details)); err != nil {
			return err
		}
		if err := writeFile(path, buf.Bytes()); err != nil {
			return err
		}
	}

	logger.Log.Info().
		Str("run_id", run.ID).
		Int("returns", len(tables.Returns)).
		Int("recommendations", len(result.Recommendations)).
		Strs("dropped", result.Dropped).
		Msg("recommendations written")
	return nil
}

// resolveSource starts from the data directory defaults and applies
// per-table overrides.
func resolveSource(c *cli.Context, defaultDataDir string) (tabular.Source, error) {
	src := tabular.Source{
		Returns:   c.String("returns"),
		Inventory: c.String("inventory"),
		Demand:    c.String("demand"),
	}
	if src.Returns != "" && src.Inventory != "" && src.Demand != "" {
		return src, nil
	}

	dataDir := c.String("data-dir")
	if dataDir == "" {
		dataDir = defaultDataDir
	}
	fromDir, err := tabular.SourceFromDir(dataDir)
	if err != nil {
		return src, err
	}
	if src.Returns == "" {
		src.Returns = fromDir.Returns
	}
	if src.Inventory == "" {
		src.Inventory = fromDir.Inventory
	}
	if src.Demand == "" {
		src.Demand = fromDir.Demand
	}
	return src, nil
}

// outputPath places a bare file name under outputDir. Paths with a directory
// component and "-" (stdout) are returned unchanged.
func outputPath(output, outputDir string) string {
	if output == "" || output == "-" || outputDir == "" {
		return output
	}
	if filepath.Base(output) != output {
		return output
	}
	return filepath.Join(outputDir, output)
}

func writeResult(stdout io.Writer, output string, result *routing.Result, details bool) error {
	var buf bytes.Buffer
	var err error

	switch {
	case strings.EqualFold(filepath.Ext(output), ".xlsx"):
		err = tabular.WriteWorkbook(&buf, result.Recommendations, routing.SummarizeStores(result.Details))
	case details:
		err = tabular.WriteRouteDetailsCSV(&buf, result.Details)
	default:
		err = tabular.WriteRecommendationsCSV(&buf, result.Recommendations)
	}
	if err != nil {
		return fmt.Errorf("encode result: %w", err)
	}

	if output == "" || output == "-" {
		_, err := stdout.Write(buf.Bytes())
		return err
	}
	return writeFile(output, buf.Bytes())
}

func writeFile(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to prepare directory for %s: %w", path, err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
