package http

import (
	"context"

	"cbpdash/internal/services"
	"cbpdash/pkg/contracts/domain"
)

// DashboardServiceInterface defines the dashboard operations used by handlers
type DashboardServiceInterface interface {
	ResolveSector(sector string) (string, error)
	Build(ctx context.Context, sector string) (*domain.Dashboard, error)
	SizeBreakdown(ctx context.Context, sector string, metric domain.Metric) ([]domain.SizeBreakdownEntry, error)
	LegalFormTotals(ctx context.Context, sector string, metric domain.Metric) ([]domain.LegalFormTotal, error)
	CrossTab(ctx context.Context, sector string) ([]domain.CrossTabEntry, error)
	RenderChart(ctx context.Context, d *domain.Dashboard, id domain.ChartID) ([]byte, error)
	RenderCharts(ctx context.Context, d *domain.Dashboard) ([]services.RenderedChart, error)
}

var _ DashboardServiceInterface = (*services.DashboardService)(nil)
