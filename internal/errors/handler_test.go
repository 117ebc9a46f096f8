package errors

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cbpdash/internal/dataprocessing"
)

func newTestHandler(t *testing.T) (*ErrorHandler, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	return NewErrorHandler(slog.New(slog.NewJSONHandler(&buf, nil)), false), &buf
}

func decodeProblem(t *testing.T, body io.Reader) map[string]interface{} {
	t.Helper()
	var got map[string]interface{}
	require.NoError(t, json.NewDecoder(body).Decode(&got))
	return got
}

func TestErrorHandler_HandleError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantType   string
		wantTitle  string
	}{
		{
			name:       "context deadline exceeded",
			err:        context.DeadlineExceeded,
			wantStatus: http.StatusGatewayTimeout,
			wantType:   TypeTimeout,
			wantTitle:  "Request Timeout",
		},
		{
			name:       "API validation error",
			err:        ErrValidation("sector", "must be a NAICS code"),
			wantStatus: http.StatusBadRequest,
			wantType:   TypeValidation,
			wantTitle:  "Bad Request",
		},
		{
			name:       "unknown chart",
			err:        ErrChartNotFound,
			wantStatus: http.StatusNotFound,
			wantType:   TypeChartNotFound,
			wantTitle:  "Not Found",
		},
		{
			name:       "empty data source",
			err:        fmt.Errorf("cbp.csv: %w", dataprocessing.ErrNoRows),
			wantStatus: http.StatusUnprocessableEntity,
			wantType:   TypeDataEmpty,
			wantTitle:  "Empty Data Source",
		},
		{
			name:       "unreadable data source",
			err:        &dataprocessing.DataSourceError{Source: "cbp.csv", Op: "open", Err: io.ErrUnexpectedEOF},
			wantStatus: http.StatusServiceUnavailable,
			wantType:   TypeDataUnavailable,
			wantTitle:  "Data Source Unavailable",
		},
		{
			name:       "render app error",
			err:        NewRenderError("payroll-by-legal-form", assert.AnError),
			wantStatus: http.StatusInternalServerError,
			wantType:   TypeRenderFailed,
			wantTitle:  "Chart Rendering Failed",
		},
		{
			name:       "export app error",
			err:        NewExportError("csv", assert.AnError),
			wantStatus: http.StatusInternalServerError,
			wantType:   TypeExportFailed,
			wantTitle:  "Export Failed",
		},
		{
			name:       "generic error",
			err:        assert.AnError,
			wantStatus: http.StatusInternalServerError,
			wantType:   TypeInternal,
			wantTitle:  "Internal Server Error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, _ := newTestHandler(t)
			req := httptest.NewRequest(http.MethodGet, "/api/dashboard", nil)
			rec := httptest.NewRecorder()

			h.HandleError(rec, req, tt.err)

			assert.Equal(t, tt.wantStatus, rec.Code)
			got := decodeProblem(t, rec.Body)
			assert.Equal(t, tt.wantType, got["type"])
			assert.Equal(t, tt.wantTitle, got["title"])
			assert.Equal(t, float64(tt.wantStatus), got["status"])
			assert.Equal(t, "/api/dashboard", got["instance"])
			assert.Contains(t, got, "trace_id")
		})
	}
}

func TestErrorHandler_AppErrorContext(t *testing.T) {
	h, _ := newTestHandler(t)
	rec := httptest.NewRecorder()

	h.HandleError(rec, httptest.NewRequest(http.MethodGet, "/api/export/dashboard.xlsx", nil), NewExportError("xlsx", assert.AnError))

	got := decodeProblem(t, rec.Body)
	assert.Equal(t, "xlsx", got["format"])
	assert.NotContains(t, got["detail"], assert.AnError.Error())
}

func TestErrorHandler_HandleError_Nil(t *testing.T) {
	h, logs := newTestHandler(t)
	rec := httptest.NewRecorder()

	h.HandleError(rec, httptest.NewRequest(http.MethodGet, "/", nil), nil)

	assert.Zero(t, rec.Body.Len())
	assert.Zero(t, logs.Len())
}

func TestErrorHandler_MissingColumns(t *testing.T) {
	h, logs := newTestHandler(t)
	err := &dataprocessing.DataSourceError{
		Source:  "cbp.csv",
		Op:      "read header",
		Missing: []string{"ESTAB", "PAYANN"},
		Err:     dataprocessing.ErrMissingColumns,
	}
	rec := httptest.NewRecorder()

	h.HandleError(rec, httptest.NewRequest(http.MethodGet, "/api/dashboard", nil), err)

	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	got := decodeProblem(t, rec.Body)
	assert.Equal(t, []interface{}{"ESTAB", "PAYANN"}, got["missing_columns"])
	assert.Contains(t, logs.String(), `"level":"ERROR"`)
}

func TestErrorHandler_ValidationDetails(t *testing.T) {
	h, _ := newTestHandler(t)
	rec := httptest.NewRecorder()

	h.HandleError(rec, httptest.NewRequest(http.MethodGet, "/api/charts/size", nil),
		ErrValidation("metric", "must be one of establishments employees payroll"))

	got := decodeProblem(t, rec.Body)
	require.Contains(t, got, "errors")
	errs := got["errors"].([]interface{})
	require.Len(t, errs, 1)
	assert.Equal(t, "metric", errs[0].(map[string]interface{})["field"])
	assert.Equal(t, "VALIDATION_FAILED", got["error_code"])
}

func TestErrorHandler_NotFoundAndMethodNotAllowed(t *testing.T) {
	h, _ := newTestHandler(t)

	rec := httptest.NewRecorder()
	h.NotFound(rec, httptest.NewRequest(http.MethodGet, "/missing", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, TypeNotFound, decodeProblem(t, rec.Body)["type"])

	rec = httptest.NewRecorder()
	h.MethodNotAllowed(rec, httptest.NewRequest(http.MethodDelete, "/api/dashboard", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	got := decodeProblem(t, rec.Body)
	assert.Equal(t, TypeMethodNotAllowed, got["type"])
	assert.Contains(t, got["detail"], "DELETE")
}

func TestRecoveryMiddleware(t *testing.T) {
	h, logs := newTestHandler(t)
	panicking := http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	})

	rec := httptest.NewRecorder()
	RecoveryMiddleware(h)(panicking).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, TypeInternal, decodeProblem(t, rec.Body)["type"])
	assert.Contains(t, logs.String(), "panic recovered")
}

func TestRecoveryMiddleware_IncludeStack(t *testing.T) {
	h := NewErrorHandler(slog.New(slog.NewJSONHandler(io.Discard, nil)), true)
	panicking := http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	})

	rec := httptest.NewRecorder()
	RecoveryMiddleware(h)(panicking).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	got := decodeProblem(t, rec.Body)
	assert.Equal(t, "boom", got["panic"])
	assert.NotEmpty(t, got["stack"])
}

func TestProblemDetails_MarshalJSON(t *testing.T) {
	p := NewProblemDetails(http.StatusServiceUnavailable, TypeDataUnavailable, "Data Source Unavailable", "", "").
		WithExtension("trace_id", "abc")

	data, err := json.Marshal(p)
	require.NoError(t, err)

	var got map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, "abc", got["trace_id"])
	assert.Equal(t, float64(503), got["status"])
	assert.NotContains(t, got, "detail")
	assert.NotContains(t, got, "instance")

	// extensions cannot shadow standard members
	p.WithExtension("status", "oops")
	data, err = json.Marshal(p)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, float64(503), got["status"])
}

func TestAppError(t *testing.T) {
	err := NewExportError("xlsx", assert.AnError)

	assert.ErrorIs(t, err, assert.AnError)
	assert.Equal(t, ErrTypeExport, err.Type)
	assert.Equal(t, "xlsx", err.Context["format"])
	assert.Contains(t, err.Error(), "[EXPORT] failed to write export")

	cfgErr := NewConfigError("failed to load configuration", io.ErrUnexpectedEOF)
	assert.ErrorIs(t, cfgErr, io.ErrUnexpectedEOF)
	assert.Equal(t, ErrTypeConfig, cfgErr.Type)
}
