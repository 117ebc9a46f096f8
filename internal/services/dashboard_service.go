package services

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"cbpdash/internal/charts"
	"cbpdash/internal/dataprocessing"
	apierrors "cbpdash/internal/errors"
	"cbpdash/internal/infrastructure"
	"cbpdash/pkg/contracts/domain"
)

// DashboardConfig holds the page-level settings of the dashboard.
type DashboardConfig struct {
	// Year is shown in chart titles; the extract itself carries no year.
	Year          string
	DefaultSector string
}

// RenderedChart is one SVG chart of the dashboard page.
type RenderedChart struct {
	ID    domain.ChartID
	Title string
	SVG   template.HTML
	// Empty is set when the sector has no rows for the chart.
	Empty bool
}

// DashboardService runs the load, aggregate and render pipeline.
type DashboardService struct {
	source     dataprocessing.Source
	summarizer *dataprocessing.Summarizer
	renderer   charts.Renderer
	metrics    *infrastructure.BusinessMetrics
	tracer     trace.Tracer
	cfg        DashboardConfig
	logger     *slog.Logger
}

// NewDashboardService creates a dashboard service. metrics may be nil.
func NewDashboardService(source dataprocessing.Source, cfg DashboardConfig, metrics *infrastructure.BusinessMetrics, logger *slog.Logger) *DashboardService {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.DefaultSector == "" {
		cfg.DefaultSector = domain.AllSectors
	}
	logger = logger.With(slog.String("component", "dashboard_service"))

	labeler := dataprocessing.NewLabeler(func(ctx context.Context, dim dataprocessing.Dimension, value string) {
		logger.WarnContext(ctx, "unmapped category label",
			slog.String("dimension", string(dim)),
			slog.String("value", value))
		infrastructure.RecordUnknownLabel(ctx, metrics, string(dim))
	})

	return &DashboardService{
		source:     source,
		summarizer: dataprocessing.NewSummarizer(labeler),
		renderer:   charts.DefaultRenderer,
		metrics:    metrics,
		tracer:     otel.Tracer(infrastructure.MeterName),
		cfg:        cfg,
		logger:     logger,
	}
}

// ResolveSector returns the sector to aggregate, applying the default.
func (s *DashboardService) ResolveSector(sector string) (string, error) {
	if sector == "" {
		return s.cfg.DefaultSector, nil
	}
	if !domain.IsSectorCode(sector) {
		return "", fmt.Errorf("%w: %q", ErrInvalidSector, sector)
	}
	return sector, nil
}

// Build loads the source and computes the five chart data sets for sector.
func (s *DashboardService) Build(ctx context.Context, sector string) (d *domain.Dashboard, err error) {
	sector, err = s.ResolveSector(sector)
	if err != nil {
		return nil, err
	}

	ctx, span := s.tracer.Start(ctx, "dashboard.build", trace.WithAttributes(attribute.String("sector", sector)))
	defer span.End()

	start := time.Now()
	defer func() {
		infrastructure.RecordPipelineRun(ctx, s.metrics, sector, time.Since(start), err)
		if err != nil {
			infrastructure.RecordError(ctx, err)
		}
	}()

	ds, err := s.dataset(ctx)
	if err != nil {
		return nil, err
	}

	opt := dataprocessing.WithSector(sector)
	d = &domain.Dashboard{
		Source:      ds.Source,
		Sector:      sector,
		SectorTitle: dataprocessing.SectorTitle(sector),
		Year:        s.cfg.Year,
		TotalRows:   len(ds.Full),
		AllRows:     len(ds.All),
		GeneratedAt: time.Now().UTC(),

		EstablishmentsBySize:      s.summarizer.SizeBreakdown(ctx, ds.All, domain.MetricEstablishments, opt),
		PayrollByLegalForm:        s.summarizer.LegalFormTotals(ctx, ds.Full, domain.MetricPayroll, opt),
		EmployeesBySize:           s.summarizer.SizeBreakdown(ctx, ds.All, domain.MetricEmployees, opt),
		EstablishmentsByLegalForm: s.summarizer.LegalFormTotals(ctx, ds.Full, domain.MetricEstablishments, opt),
		PayrollBySizeAndLegalForm: s.summarizer.CrossTab(ctx, ds.Full, domain.MetricPayroll, opt),
	}

	s.logger.DebugContext(ctx, "dashboard built",
		slog.String("sector", sector),
		slog.Int("rows", d.TotalRows),
		slog.Duration("duration", time.Since(start)))
	return d, nil
}

// SizeBreakdown returns one size-bucket chart for any count metric.
func (s *DashboardService) SizeBreakdown(ctx context.Context, sector string, metric domain.Metric) ([]domain.SizeBreakdownEntry, error) {
	if metric != domain.MetricEstablishments && metric != domain.MetricEmployees {
		return nil, fmt.Errorf("%w: %s", ErrInvalidMetric, metric)
	}
	sector, ds, err := s.prepare(ctx, sector)
	if err != nil {
		return nil, err
	}
	return s.summarizer.SizeBreakdown(ctx, ds.All, metric, dataprocessing.WithSector(sector)), nil
}

// LegalFormTotals returns the legal-form totals for metric.
func (s *DashboardService) LegalFormTotals(ctx context.Context, sector string, metric domain.Metric) ([]domain.LegalFormTotal, error) {
	sector, ds, err := s.prepare(ctx, sector)
	if err != nil {
		return nil, err
	}
	return s.summarizer.LegalFormTotals(ctx, ds.Full, metric, dataprocessing.WithSector(sector)), nil
}

// CrossTab returns the size by legal form payroll cells.
func (s *DashboardService) CrossTab(ctx context.Context, sector string) ([]domain.CrossTabEntry, error) {
	sector, ds, err := s.prepare(ctx, sector)
	if err != nil {
		return nil, err
	}
	return s.summarizer.CrossTab(ctx, ds.Full, domain.MetricPayroll, dataprocessing.WithSector(sector)), nil
}

func (s *DashboardService) prepare(ctx context.Context, sector string) (string, *dataprocessing.Dataset, error) {
	sector, err := s.ResolveSector(sector)
	if err != nil {
		return "", nil, err
	}
	ds, err := s.dataset(ctx)
	if err != nil {
		return "", nil, err
	}
	return sector, ds, nil
}

// dataset loads through the configured source. Loader errors are returned
// unwrapped in identity so callers can match ErrNoRows and DataSourceError.
func (s *DashboardService) dataset(ctx context.Context) (*dataprocessing.Dataset, error) {
	ctx, span := s.tracer.Start(ctx, "dataset.load")
	defer span.End()

	start := time.Now()
	ds, err := s.source.Dataset(ctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to load data source", slog.String("error", err.Error()))
		return nil, fmt.Errorf("load dataset: %w", err)
	}
	infrastructure.RecordDatasetLoad(ctx, s.metrics, time.Since(start), len(ds.Full))
	span.SetAttributes(attribute.Int("rows", len(ds.Full)))
	return ds, nil
}

// chartTitle appends the data year to a chart heading.
func (s *DashboardService) chartTitle(id domain.ChartID) string {
	if s.cfg.Year == "" {
		return id.Title()
	}
	return fmt.Sprintf("%s (%s)", id.Title(), s.cfg.Year)
}

// RenderChart draws one chart of d as SVG.
func (s *DashboardService) RenderChart(ctx context.Context, d *domain.Dashboard, id domain.ChartID) ([]byte, error) {
	start := time.Now()
	defer func() {
		if s.metrics != nil {
			s.metrics.ChartRenderDuration.Record(ctx, time.Since(start).Seconds())
		}
	}()

	title := s.chartTitle(id)
	yLabel := id.Metric().Label()

	switch id {
	case domain.ChartEstablishmentsBySize:
		return s.renderer.Bar(title, yLabel, d.EstablishmentsBySize)
	case domain.ChartEmployeesBySize:
		return s.renderer.Bar(title, yLabel, d.EmployeesBySize)
	case domain.ChartPayrollByLegalForm:
		return s.renderer.Share(title, d.PayrollByLegalForm)
	case domain.ChartEstablishmentsByLegalForm:
		return s.renderer.Share(title, d.EstablishmentsByLegalForm)
	case domain.ChartPayrollBySizeAndLegalForm:
		return s.renderer.StackedBar(title, yLabel, d.PayrollBySizeAndLegalForm)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownChart, id)
	}
}

// RenderCharts draws the five charts in page order. A chart with no data
// is returned with Empty set instead of failing the page.
func (s *DashboardService) RenderCharts(ctx context.Context, d *domain.Dashboard) ([]RenderedChart, error) {
	ctx, span := s.tracer.Start(ctx, "dashboard.render")
	defer span.End()

	out := make([]RenderedChart, 0, len(domain.ChartIDs))
	for _, id := range domain.ChartIDs {
		chart := RenderedChart{ID: id, Title: s.chartTitle(id)}

		svg, err := s.RenderChart(ctx, d, id)
		switch {
		case errors.Is(err, charts.ErrNoData):
			chart.Empty = true
		case err != nil:
			return nil, apierrors.NewRenderError(string(id), err)
		default:
			chart.SVG = template.HTML(svg)
		}
		out = append(out, chart)
	}
	return out, nil
}
