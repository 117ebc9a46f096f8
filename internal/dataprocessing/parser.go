package dataprocessing

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"cbpdash/pkg/contracts/domain"
)

// Format identifies the layout of a source file.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// FormatFromPath picks the source format from the file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv", ".txt":
		return FormatCSV, nil
	case ".xlsx", ".xlsm":
		return FormatXLSX, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(path))
	}
}

// Dataset is one normalized load of the source file.
type Dataset struct {
	Source   string
	All      domain.View
	Full     domain.View
	LoadedAt time.Time
}

// Loader reads and normalizes County Business Patterns extracts.
type Loader struct {
	logger *slog.Logger
}

// NewLoader creates a loader. A nil logger falls back to slog.Default().
func NewLoader(logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{logger: logger.With(slog.String("component", "loader"))}
}

// Load reads the file at path and returns the all-establishments and full
// views.
func Load(path string) (domain.View, domain.View, error) {
	ds, err := NewLoader(nil).Load(context.Background(), path)
	if err != nil {
		return nil, nil, err
	}
	return ds.All, ds.Full, nil
}

// Load reads the file at path into a Dataset.
func (l *Loader) Load(ctx context.Context, path string) (*Dataset, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, sourceError(path, "detect format", err)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, sourceError(path, "open", err)
	}
	defer f.Close()

	return l.load(ctx, path, f, format)
}

// LoadReader reads an already open source. name is only used in errors and logs.
func (l *Loader) LoadReader(ctx context.Context, name string, r io.Reader, format Format) (*Dataset, error) {
	return l.load(ctx, name, r, format)
}

func (l *Loader) load(ctx context.Context, name string, r io.Reader, format Format) (*Dataset, error) {
	start := time.Now()

	records, err := readRecords(r, format)
	if err != nil {
		return nil, sourceError(name, "read", err)
	}
	if len(records) == 0 {
		return nil, sourceError(name, "read header", io.ErrUnexpectedEOF)
	}

	columns, missing := mapColumns(records[0])
	if len(missing) > 0 {
		return nil, &DataSourceError{Source: name, Op: "match header", Missing: missing, Err: ErrMissingColumns}
	}

	full := make(domain.View, 0, len(records)-1)
	for _, record := range records[1:] {
		if isBlank(record) {
			continue
		}
		full = append(full, normalizeRecord(record, columns))
	}
	if len(full) == 0 {
		return nil, fmt.Errorf("%s: %w", name, ErrNoRows)
	}

	ds := &Dataset{
		Source:   name,
		All:      AllEstablishments(full),
		Full:     full,
		LoadedAt: time.Now(),
	}

	l.logger.DebugContext(ctx, "dataset loaded",
		slog.String("source", name),
		slog.String("format", string(format)),
		slog.Int("rows", len(ds.Full)),
		slog.Int("all_establishment_rows", len(ds.All)),
		slog.Duration("duration", time.Since(start)))

	return ds, nil
}

// readRecords returns every row of the source, header first.
func readRecords(r io.Reader, format Format) ([][]string, error) {
	switch format {
	case FormatCSV:
		return readCSV(r)
	case FormatXLSX:
		return readXLSX(r)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
}

func readCSV(r io.Reader) ([][]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}
	return records, nil
}

func readXLSX(r io.Reader) ([][]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheets[0], err)
	}
	return rows, nil
}

// columnIndex maps each required header to its position in the source.
type columnIndex map[string]int

func mapColumns(header []string) (columnIndex, []string) {
	columns := make(columnIndex, len(domain.RequiredColumns))
	for i, h := range header {
		h = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		if _, seen := columns[h]; !seen {
			columns[h] = i
		}
	}

	var missing []string
	for _, required := range domain.RequiredColumns {
		if _, ok := columns[required]; !ok {
			missing = append(missing, required)
		}
	}
	return columns, missing
}

func (c columnIndex) cell(record []string, column string) string {
	i, ok := c[column]
	if !ok || i >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[i])
}

func isBlank(record []string) bool {
	for _, cell := range record {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
