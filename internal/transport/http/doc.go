// Package http implements the HTTP handlers of the dashboard. Handlers are
// thin: they bind and validate query parameters, call the dashboard service
// and format the result. Errors go to the central apierrors.ErrorHandler,
// which renders RFC 7807 problem details.
//
// # Routes
//
//	GET /                               HTML page with the five charts
//	GET /api/dashboard                  all aggregates as JSON
//	GET /api/charts/size                size breakdown (metric, sector)
//	GET /api/charts/legal-form          legal-form totals (metric, sector)
//	GET /api/charts/cross-tab           payroll by size and legal form
//	GET /api/charts/{chart}.svg         one rendered chart
//	GET /api/export/{chart}.csv         one chart's data as CSV (bom=1)
//	GET /api/export/dashboard.xlsx      every chart as a workbook sheet
//	GET /api/health, /api/health/ready  liveness and readiness
//	GET /api/version                    build information
//
// # Handler Structure
//
// Each handler follows this pattern:
//
//	func (h *Handler) GetSomething(w http.ResponseWriter, r *http.Request) {
//	    var q middleware.DashboardQuery
//	    if !h.validator.Bind(w, r, &q) {
//	        return
//	    }
//	    result, err := h.service.Something(r.Context(), q.Sector)
//	    if err != nil {
//	        h.errorHandler.HandleError(w, r, err)
//	        return
//	    }
//	    render.JSON(w, r, result)
//	}
//
// Bodies that may fail half way (CSV, XLSX, HTML) are written to a buffer
// first so a failure still produces a problem response.
package http
