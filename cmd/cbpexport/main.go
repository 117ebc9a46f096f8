// Command cbpexport loads a County Business Patterns extract, aggregates it
// and writes one chart as CSV, or the whole dashboard as XLSX or JSON,
// without starting the server.
//
//	cbpexport -source cbp_2021.csv -format csv -chart payroll-by-legal-form -out payroll.csv
//	cbpexport -format xlsx -sector 23 -out construction.xlsx
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"cbpdash/internal/config"
	"cbpdash/internal/dataprocessing"
	"cbpdash/internal/exporter"
	"cbpdash/internal/infrastructure"
	"cbpdash/internal/services"
	"cbpdash/pkg/contracts/domain"
)

// options are the parsed command line flags
type options struct {
	source string
	out    string
	format string
	chart  string
	sector string
	year   string
	bom    bool
}

func main() {
	if err := run(context.Background(), os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if !errors.Is(err, flag.ErrHelp) {
			fmt.Fprintln(os.Stderr, "cbpexport:", err)
		}
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	opts, err := parseFlags(args, cfg.Data, stderr)
	if err != nil {
		return err
	}

	logger, logFile, err := infrastructure.NewLogger(cfg.Logging, stderr)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	if logFile != nil {
		defer logFile.Close()
	}
	logger = infrastructure.WithComponent(logger, "cbpexport")
	ctx = infrastructure.EnsureTraceID(ctx)

	logger.InfoContext(ctx, "Starting export",
		slog.String("source", opts.source),
		slog.String("format", opts.format),
		slog.String("chart", opts.chart),
		slog.String("sector", opts.sector),
		slog.String("out", opts.out))

	source := dataprocessing.FileSource{Path: opts.source, Loader: dataprocessing.NewLoader(logger)}
	svc := services.NewDashboardService(source, services.DashboardConfig{
		Year:          opts.year,
		DefaultSector: cfg.Data.DefaultSector,
	}, nil, logger)

	d, err := svc.Build(ctx, opts.sector)
	if err != nil {
		return err
	}

	write := func(w io.Writer) error { return writeExport(w, d, opts) }
	if opts.out == "" || opts.out == "-" {
		return write(stdout)
	}
	if err := exporter.WriteFile(opts.out, write); err != nil {
		return err
	}

	logger.InfoContext(ctx, "Export complete",
		slog.String("out", opts.out),
		slog.Int("rows", d.TotalRows))
	return nil
}

func parseFlags(args []string, data config.DataConfig, stderr io.Writer) (options, error) {
	var opts options

	fs := flag.NewFlagSet("cbpexport", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&opts.source, "source", data.SourcePath, "CSV or XLSX County Business Patterns extract")
	fs.StringVar(&opts.out, "out", "-", "output file, - for stdout")
	fs.StringVar(&opts.format, "format", "csv", "output format: csv, xlsx or json")
	fs.StringVar(&opts.chart, "chart", string(domain.ChartEstablishmentsBySize), "chart to export as csv")
	fs.StringVar(&opts.sector, "sector", data.DefaultSector, "two digit NAICS sector, 00 for all sectors")
	fs.StringVar(&opts.year, "year", data.Year, "data year recorded in the export")
	fs.BoolVar(&opts.bom, "bom", false, "prefix csv output with a UTF-8 byte order mark")

	if err := fs.Parse(args); err != nil {
		return opts, err
	}
	if fs.NArg() > 0 {
		return opts, fmt.Errorf("unexpected arguments: %v", fs.Args())
	}

	switch opts.format {
	case "csv":
		if _, err := domain.ParseChartID(opts.chart); err != nil {
			return opts, err
		}
	case "xlsx", "json":
	default:
		return opts, fmt.Errorf("unsupported format %q", opts.format)
	}
	return opts, nil
}

func writeExport(w io.Writer, d *domain.Dashboard, opts options) error {
	switch opts.format {
	case "xlsx":
		return exporter.WriteWorkbook(w, d)
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(d)
	default:
		chart, err := domain.ParseChartID(opts.chart)
		if err != nil {
			return err
		}
		return exporter.WriteChartCSV(w, d, chart, exporter.WriteOptions{BOMPrefix: opts.bom})
	}
}
