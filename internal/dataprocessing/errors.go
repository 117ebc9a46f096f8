package dataprocessing

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNoRows is returned when the source has a header but no data rows.
	ErrNoRows = errors.New("dataset has no data rows")

	// ErrUnsupportedFormat is returned for sources that are neither CSV nor XLSX.
	ErrUnsupportedFormat = errors.New("unsupported source format")

	// ErrMissingColumns is the cause of a header mismatch.
	ErrMissingColumns = errors.New("missing required columns")
)

// DataSourceError reports a source that could not be opened, read or whose
// header does not match the expected schema.
type DataSourceError struct {
	Source  string
	Op      string
	Missing []string
	Err     error
}

// Error implements the error interface
func (e *DataSourceError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "data source %q: %s", e.Source, e.Op)
	if len(e.Missing) > 0 {
		fmt.Fprintf(&b, " (%s)", strings.Join(e.Missing, ", "))
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

// Unwrap allows errors.Is and errors.As to reach the cause
func (e *DataSourceError) Unwrap() error {
	return e.Err
}

func sourceError(source, op string, err error) *DataSourceError {
	return &DataSourceError{Source: source, Op: op, Err: err}
}

// IsDataSourceError reports whether err carries a *DataSourceError.
func IsDataSourceError(err error) bool {
	var dsErr *DataSourceError
	return errors.As(err, &dsErr)
}
