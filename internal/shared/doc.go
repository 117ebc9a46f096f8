// Package shared holds code used across packages that belongs to no single
// layer. The testutil subpackage provides a log-capturing slog handler and
// County Business Patterns fixture extracts (CSV and XLSX) for tests.
package shared
