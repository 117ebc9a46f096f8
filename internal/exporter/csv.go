package exporter

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"cbpdash/pkg/contracts/domain"
)

// ErrUnknownChart is returned for a chart id the exporter cannot write.
var ErrUnknownChart = errors.New("unknown chart")

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// WriteOptions configures CSV writing behavior
type WriteOptions struct {
	BOMPrefix bool // Add UTF-8 BOM for Excel compatibility
}

// writeTable writes a header row followed by records.
func writeTable(w io.Writer, headers []string, records [][]string, options WriteOptions) error {
	if options.BOMPrefix {
		if _, err := w.Write(utf8BOM); err != nil {
			return fmt.Errorf("failed to write BOM: %w", err)
		}
	}

	writer := csv.NewWriter(w)
	if err := writer.Write(headers); err != nil {
		return fmt.Errorf("failed to write headers: %w", err)
	}
	for i, record := range records {
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write record %d: %w", i, err)
		}
	}
	writer.Flush()
	return writer.Error()
}

// WriteSizeBreakdownCSV writes a size-bucket breakdown in display order.
func WriteSizeBreakdownCSV(w io.Writer, metric domain.Metric, entries []domain.SizeBreakdownEntry, options WriteOptions) error {
	records := make([][]string, 0, len(entries))
	for _, e := range entries {
		records = append(records, []string{e.Size, formatCount(e.Value)})
	}
	return writeTable(w, []string{"Employment Size", metric.Label()}, records, options)
}

// WriteLegalFormCSV writes legal-form totals.
func WriteLegalFormCSV(w io.Writer, metric domain.Metric, totals []domain.LegalFormTotal, options WriteOptions) error {
	records := make([][]string, 0, len(totals))
	for _, t := range totals {
		records = append(records, []string{t.OrgForm, formatCount(t.Value)})
	}
	return writeTable(w, []string{"Legal Form", metric.Label()}, records, options)
}

// WriteCrossTabCSV writes the size by legal form cross-tab in long form.
func WriteCrossTabCSV(w io.Writer, metric domain.Metric, entries []domain.CrossTabEntry, options WriteOptions) error {
	records := make([][]string, 0, len(entries))
	for _, e := range entries {
		records = append(records, []string{e.Size, e.OrgForm, formatCount(e.Value)})
	}
	return writeTable(w, []string{"Employment Size", "Legal Form", metric.Label()}, records, options)
}

// WriteChartCSV writes the data set of one dashboard chart.
func WriteChartCSV(w io.Writer, d *domain.Dashboard, chart domain.ChartID, options WriteOptions) error {
	metric := chart.Metric()
	switch chart {
	case domain.ChartEstablishmentsBySize:
		return WriteSizeBreakdownCSV(w, metric, d.EstablishmentsBySize, options)
	case domain.ChartEmployeesBySize:
		return WriteSizeBreakdownCSV(w, metric, d.EmployeesBySize, options)
	case domain.ChartPayrollByLegalForm:
		return WriteLegalFormCSV(w, metric, d.PayrollByLegalForm, options)
	case domain.ChartEstablishmentsByLegalForm:
		return WriteLegalFormCSV(w, metric, d.EstablishmentsByLegalForm, options)
	case domain.ChartPayrollBySizeAndLegalForm:
		return WriteCrossTabCSV(w, metric, d.PayrollBySizeAndLegalForm, options)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownChart, chart)
	}
}

// WriteFile creates path, including its directory, and hands it to write.
func WriteFile(path string, write func(io.Writer) error) error {
	slog.Info("Writing export file", slog.String("path", path))

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}

	if err := write(file); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}
