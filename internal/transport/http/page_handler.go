package http

import (
	"bytes"
	"embed"
	"html/template"
	"log/slog"
	"net/http"
	"time"

	apierrors "cbpdash/internal/errors"
	"cbpdash/internal/middleware"
	"cbpdash/internal/services"
)

//go:embed templates/dashboard.html
var templateFS embed.FS

var dashboardTemplate = template.Must(template.ParseFS(templateFS, "templates/dashboard.html"))

// PageHandler renders the dashboard HTML page
type PageHandler struct {
	service      DashboardServiceInterface
	validator    *middleware.QueryValidator
	errorHandler *apierrors.ErrorHandler
	logger       *slog.Logger
}

type pageData struct {
	Source      string
	Sector      string
	SectorTitle string
	Year        string
	TotalRows   int
	AllRows     int
	GeneratedAt time.Time
	Charts      []services.RenderedChart
}

// NewPageHandler creates a new page handler
func NewPageHandler(service DashboardServiceInterface, validator *middleware.QueryValidator, errorHandler *apierrors.ErrorHandler, logger *slog.Logger) *PageHandler {
	return &PageHandler{
		service:      service,
		validator:    validator,
		errorHandler: errorHandler,
		logger:       logger.With(slog.String("component", "page_handler")),
	}
}

// ServeDashboard handles GET /
func (h *PageHandler) ServeDashboard(w http.ResponseWriter, r *http.Request) {
	var q middleware.DashboardQuery
	if !h.validator.Bind(w, r, &q) {
		return
	}

	d, err := h.service.Build(r.Context(), q.Sector)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	rendered, err := h.service.RenderCharts(r.Context(), d)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	var buf bytes.Buffer
	err = dashboardTemplate.Execute(&buf, pageData{
		Source:      d.Source,
		Sector:      d.Sector,
		SectorTitle: d.SectorTitle,
		Year:        d.Year,
		TotalRows:   d.TotalRows,
		AllRows:     d.AllRows,
		GeneratedAt: d.GeneratedAt,
		Charts:      rendered,
	})
	if err != nil {
		h.logger.ErrorContext(r.Context(), "template execution failed", slog.String("error", err.Error()))
		h.errorHandler.HandleError(w, r, apierrors.ErrInternalServer)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}
