package http

import (
	"bytes"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	apierrors "cbpdash/internal/errors"
	"cbpdash/internal/exporter"
	"cbpdash/internal/infrastructure"
	"cbpdash/internal/middleware"
	"cbpdash/pkg/contracts/domain"
)

const (
	contentTypeCSV  = "text/csv; charset=utf-8"
	contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// ExportHandler serves chart data as CSV and the whole dashboard as XLSX
type ExportHandler struct {
	service      DashboardServiceInterface
	validator    *middleware.QueryValidator
	errorHandler *apierrors.ErrorHandler
	metrics      *infrastructure.BusinessMetrics
	logger       *slog.Logger
}

// NewExportHandler creates a new export handler. metrics may be nil.
func NewExportHandler(service DashboardServiceInterface, validator *middleware.QueryValidator, errorHandler *apierrors.ErrorHandler, metrics *infrastructure.BusinessMetrics, logger *slog.Logger) *ExportHandler {
	return &ExportHandler{
		service:      service,
		validator:    validator,
		errorHandler: errorHandler,
		metrics:      metrics,
		logger:       logger.With(slog.String("component", "export_handler")),
	}
}

// Routes returns the export routes, mounted under /api/export
func (h *ExportHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/dashboard.xlsx", h.GetWorkbook)
	r.Get("/{chart}.csv", h.GetChartCSV)
	return r
}

// GetChartCSV handles GET /api/export/{chart}.csv
func (h *ExportHandler) GetChartCSV(w http.ResponseWriter, r *http.Request) {
	id, err := domain.ParseChartID(chi.URLParam(r, "chart"))
	if err != nil {
		h.errorHandler.HandleError(w, r, apierrors.ErrChartNotFound)
		return
	}

	q, d, ok := h.build(w, r)
	if !ok {
		return
	}

	// Buffer so a write failure can still produce a problem response.
	var buf bytes.Buffer
	opts := exporter.WriteOptions{BOMPrefix: q.BOM == "1" || q.BOM == "true"}
	if err := exporter.WriteChartCSV(&buf, d, id, opts); err != nil {
		h.errorHandler.HandleError(w, r, apierrors.NewExportError("csv", err))
		return
	}

	infrastructure.RecordExport(r.Context(), h.metrics, "csv", string(id))
	h.attach(w, contentTypeCSV, exportFilename(d, string(id), "csv"), buf.Bytes())
}

// GetWorkbook handles GET /api/export/dashboard.xlsx
func (h *ExportHandler) GetWorkbook(w http.ResponseWriter, r *http.Request) {
	_, d, ok := h.build(w, r)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := exporter.WriteWorkbook(&buf, d); err != nil {
		h.errorHandler.HandleError(w, r, apierrors.NewExportError("xlsx", err))
		return
	}

	infrastructure.RecordExport(r.Context(), h.metrics, "xlsx", "dashboard")
	h.attach(w, contentTypeXLSX, exportFilename(d, "dashboard", "xlsx"), buf.Bytes())
}

func (h *ExportHandler) build(w http.ResponseWriter, r *http.Request) (middleware.DashboardQuery, *domain.Dashboard, bool) {
	var q middleware.DashboardQuery
	if !h.validator.Bind(w, r, &q) {
		return q, nil, false
	}

	d, err := h.service.Build(r.Context(), q.Sector)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return q, nil, false
	}
	return q, d, true
}

func (h *ExportHandler) attach(w http.ResponseWriter, contentType, filename string, body []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Header().Set("Content-Length", fmt.Sprint(len(body)))
	w.WriteHeader(http.StatusOK)
	w.Write(body)
}

// exportFilename builds e.g. cbp_2021_31-33_payroll-by-legal-form.csv
func exportFilename(d *domain.Dashboard, name, ext string) string {
	parts := []string{"cbp"}
	if d.Year != "" {
		parts = append(parts, d.Year)
	}
	parts = append(parts, d.Sector, name)
	return strings.Join(parts, "_") + "." + ext
}
