package middleware

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	apierrors "cbpdash/internal/errors"
	"cbpdash/pkg/contracts/domain"
)

// DashboardQuery is the query string accepted by the dashboard, chart and
// export endpoints.
type DashboardQuery struct {
	Sector string `query:"sector" validate:"omitempty,naics"`
	Metric string `query:"metric" validate:"omitempty,oneof=establishments employees payroll payroll_thousands"`
	BOM    string `query:"bom" validate:"omitempty,oneof=0 1 true false"`
}

// QueryValidator binds query parameters into structs and validates them
// with struct tags.
type QueryValidator struct {
	validator    *validator.Validate
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewQueryValidator creates a validator with the NAICS sector and chart rules
// registered.
func NewQueryValidator(logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *QueryValidator {
	v := validator.New()
	v.RegisterValidation("naics", isNAICSSector)
	v.RegisterValidation("chart", isChartID)

	// Report query parameter names in error messages
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("query"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return &QueryValidator{
		validator:    v,
		logger:       logger.With(slog.String("component", "query_validator")),
		errorHandler: errorHandler,
	}
}

// Bind fills the string fields of dst, a pointer to a struct with query
// tags, from the request and validates it. On failure it writes the error
// response and returns false.
func (v *QueryValidator) Bind(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	rv := reflect.ValueOf(dst)
	if rv.Kind() != reflect.Pointer || rv.Elem().Kind() != reflect.Struct {
		v.errorHandler.HandleError(w, r, fmt.Errorf("bind target must be a struct pointer, got %T", dst))
		return false
	}

	q := r.URL.Query()
	elem := rv.Elem()
	for i := 0; i < elem.NumField(); i++ {
		field := elem.Type().Field(i)
		name := field.Tag.Get("query")
		if name == "" || name == "-" || field.Type.Kind() != reflect.String {
			continue
		}
		elem.Field(i).SetString(strings.TrimSpace(q.Get(name)))
	}

	if err := v.ValidateStruct(dst); err != nil {
		v.logger.DebugContext(r.Context(), "query validation failed",
			slog.String("path", r.URL.Path),
			slog.String("query", r.URL.RawQuery),
			slog.String("error", err.Error()),
		)
		v.errorHandler.HandleError(w, r, err)
		return false
	}
	return true
}

// ValidateStruct validates a struct and returns validation errors
func (v *QueryValidator) ValidateStruct(s interface{}) error {
	err := v.validator.Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}

	validationErrors := make([]apierrors.ValidationError, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		validationErrors = append(validationErrors, apierrors.ValidationError{
			Field:   fe.Field(),
			Message: formatValidationError(fe),
		})
	}
	return apierrors.NewValidationErrors(validationErrors)
}

// formatValidationError formats validation error messages
func formatValidationError(err validator.FieldError) string {
	field := err.Field()
	param := err.Param()

	switch err.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, strings.ReplaceAll(param, " ", ", "))
	case "naics":
		return fmt.Sprintf("%s must be a 2-digit NAICS sector code such as 23 or 31-33", field)
	case "chart":
		return fmt.Sprintf("%s must be a known chart name", field)
	default:
		return fmt.Sprintf("%s failed %s validation", field, err.Tag())
	}
}

// isNAICSSector validates a 2-digit NAICS sector or range
func isNAICSSector(fl validator.FieldLevel) bool {
	return domain.IsSectorCode(fl.Field().String())
}

// isChartID validates a chart name
func isChartID(fl validator.FieldLevel) bool {
	_, err := domain.ParseChartID(fl.Field().String())
	return err == nil
}
