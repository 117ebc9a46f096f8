package errors

import (
	"fmt"
)

// ErrorType classifies failures raised below the HTTP layer
type ErrorType string

const (
	ErrTypeRender ErrorType = "RENDER"
	ErrTypeExport ErrorType = "EXPORT"
	ErrTypeConfig ErrorType = "CONFIG"
)

// AppError represents an application-specific error
type AppError struct {
	Type    ErrorType
	Message string
	Cause   error
	Context map[string]interface{}
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

// Unwrap allows errors.Is and errors.As to work with AppError
func (e *AppError) Unwrap() error {
	return e.Cause
}

// WithContext adds context to the error
func (e *AppError) WithContext(key string, value interface{}) *AppError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// NewAppError creates a new application error
func NewAppError(errType ErrorType, message string, cause error) *AppError {
	return &AppError{
		Type:    errType,
		Message: message,
		Cause:   cause,
		Context: make(map[string]interface{}),
	}
}

// NewRenderError wraps a chart rendering failure
func NewRenderError(chart string, cause error) *AppError {
	return NewAppError(ErrTypeRender, "failed to render chart", cause).WithContext("chart", chart)
}

// NewExportError wraps a CSV or workbook export failure
func NewExportError(format string, cause error) *AppError {
	return NewAppError(ErrTypeExport, "failed to write export", cause).WithContext("format", format)
}

// NewConfigError creates a configuration error
func NewConfigError(message string, cause error) *AppError {
	return NewAppError(ErrTypeConfig, message, cause)
}
