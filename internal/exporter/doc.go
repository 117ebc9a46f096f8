// Package exporter writes dashboard aggregates as CSV and XLSX files.
//
// CSV: one table per chart, written by WriteSizeBreakdownCSV,
// WriteLegalFormCSV and WriteCrossTabCSV, or by chart id with WriteChartCSV.
// Missing values are written as empty cells. An optional UTF-8 BOM helps
// Excel recognize the encoding.
//
// XLSX: WriteWorkbook writes a summary sheet followed by one sheet per chart.
//
// Example usage:
//
//	d, err := svc.Build(ctx, "00")
//	if err != nil {
//	    return err
//	}
//	err = exporter.WriteFile("out/payroll.csv", func(w io.Writer) error {
//	    return exporter.WriteChartCSV(w, d, domain.ChartPayrollByLegalForm, exporter.WriteOptions{BOMPrefix: true})
//	})
package exporter
