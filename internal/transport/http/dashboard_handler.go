package http

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"cbpdash/internal/charts"
	apierrors "cbpdash/internal/errors"
	"cbpdash/internal/middleware"
	"cbpdash/internal/services"
	"cbpdash/pkg/contracts/domain"
)

// DashboardHandler serves the dashboard aggregates and chart data as JSON
type DashboardHandler struct {
	service      DashboardServiceInterface
	validator    *middleware.QueryValidator
	errorHandler *apierrors.ErrorHandler
	logger       *slog.Logger
}

// ChartResponse is the JSON body of a single chart endpoint
type ChartResponse struct {
	Chart   string      `json:"chart"`
	Sector  string      `json:"sector"`
	Metric  string      `json:"metric"`
	Label   string      `json:"label"`
	Entries interface{} `json:"entries"`
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(service DashboardServiceInterface, validator *middleware.QueryValidator, errorHandler *apierrors.ErrorHandler, logger *slog.Logger) *DashboardHandler {
	return &DashboardHandler{
		service:      service,
		validator:    validator,
		errorHandler: errorHandler,
		logger:       logger.With(slog.String("component", "dashboard_handler")),
	}
}

// Routes returns the dashboard routes, mounted under /api
func (h *DashboardHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.With(render.SetContentType(render.ContentTypeJSON)).Get("/dashboard", h.GetDashboard)
	r.Route("/charts", func(r chi.Router) {
		r.With(render.SetContentType(render.ContentTypeJSON)).Group(func(r chi.Router) {
			r.Get("/size", h.GetSizeChart)
			r.Get("/legal-form", h.GetLegalFormChart)
			r.Get("/cross-tab", h.GetCrossTabChart)
		})
		r.Get("/{chart}.svg", h.GetChartSVG)
	})

	return r
}

// GetDashboard handles GET /api/dashboard
func (h *DashboardHandler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	var q middleware.DashboardQuery
	if !h.validator.Bind(w, r, &q) {
		return
	}

	d, err := h.service.Build(r.Context(), q.Sector)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	render.JSON(w, r, d)
}

// GetSizeChart handles GET /api/charts/size
func (h *DashboardHandler) GetSizeChart(w http.ResponseWriter, r *http.Request) {
	q, metric, ok := h.bindChart(w, r, domain.MetricEstablishments)
	if !ok {
		return
	}

	entries, err := h.service.SizeBreakdown(r.Context(), q.Sector, metric)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	render.JSON(w, r, h.chartResponse("size", q.Sector, metric, entries))
}

// GetLegalFormChart handles GET /api/charts/legal-form
func (h *DashboardHandler) GetLegalFormChart(w http.ResponseWriter, r *http.Request) {
	q, metric, ok := h.bindChart(w, r, domain.MetricPayroll)
	if !ok {
		return
	}

	totals, err := h.service.LegalFormTotals(r.Context(), q.Sector, metric)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	render.JSON(w, r, h.chartResponse("legal-form", q.Sector, metric, totals))
}

// GetCrossTabChart handles GET /api/charts/cross-tab. The cross-tab is
// always payroll.
func (h *DashboardHandler) GetCrossTabChart(w http.ResponseWriter, r *http.Request) {
	q, _, ok := h.bindChart(w, r, domain.MetricPayroll)
	if !ok {
		return
	}

	cells, err := h.service.CrossTab(r.Context(), q.Sector)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	render.JSON(w, r, h.chartResponse("cross-tab", q.Sector, domain.MetricPayroll, cells))
}

// GetChartSVG handles GET /api/charts/{chart}.svg
func (h *DashboardHandler) GetChartSVG(w http.ResponseWriter, r *http.Request) {
	id, err := domain.ParseChartID(chi.URLParam(r, "chart"))
	if err != nil {
		h.errorHandler.HandleError(w, r, apierrors.ErrChartNotFound)
		return
	}

	var q middleware.DashboardQuery
	if !h.validator.Bind(w, r, &q) {
		return
	}

	d, err := h.service.Build(r.Context(), q.Sector)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	svg, err := h.service.RenderChart(r.Context(), d, id)
	if errors.Is(err, charts.ErrNoData) {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	if err != nil {
		h.fail(w, r, apierrors.NewRenderError(string(id), err))
		return
	}

	w.Header().Set("Content-Type", "image/svg+xml")
	w.Header().Set("Cache-Control", "no-cache")
	w.Write(svg)
}

func (h *DashboardHandler) bindChart(w http.ResponseWriter, r *http.Request, def domain.Metric) (middleware.DashboardQuery, domain.Metric, bool) {
	var q middleware.DashboardQuery
	if !h.validator.Bind(w, r, &q) {
		return q, "", false
	}
	sector, err := h.service.ResolveSector(q.Sector)
	if err != nil {
		h.fail(w, r, err)
		return q, "", false
	}
	q.Sector = sector
	if q.Metric == "" {
		return q, def, true
	}
	metric, err := domain.ParseMetric(q.Metric)
	if err != nil {
		h.errorHandler.HandleError(w, r, apierrors.ErrValidation("metric", err.Error()))
		return q, "", false
	}
	return q, metric, true
}

func (h *DashboardHandler) chartResponse(chart, sector string, metric domain.Metric, entries interface{}) ChartResponse {
	return ChartResponse{
		Chart:   chart,
		Sector:  sector,
		Metric:  string(metric),
		Label:   metric.Label(),
		Entries: entries,
	}
}

// fail maps service input errors to validation problems before handing the
// error to the central handler.
func (h *DashboardHandler) fail(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, services.ErrInvalidSector):
		err = apierrors.ErrValidation("sector", err.Error())
	case errors.Is(err, services.ErrInvalidMetric):
		err = apierrors.ErrValidation("metric", err.Error())
	case errors.Is(err, services.ErrUnknownChart):
		err = apierrors.ErrChartNotFound
	}
	h.errorHandler.HandleError(w, r, err)
}
