// Package dataprocessing turns a County Business Patterns extract into the
// aggregates shown on the dashboard.
//
// # Architecture
//
// The package has two responsibilities:
//
// 1. Loader/Normalizer: reads the CSV or XLSX source, cleans the
// comma-formatted numeric columns into domain.Count values and derives the
// absolute payroll column (parser.go, processor.go).
// 2. Aggregator: filters, relabels and groups the normalized rows into the
// per-chart data sets (summarizer.go, labels.go).
//
// # Usage
//
//	all, full, err := dataprocessing.Load("cbp_2021.csv")
//	if err != nil {
//	    return err
//	}
//	bars := dataprocessing.SizeBreakdown(all, domain.MetricEstablishments)
//	totals := dataprocessing.LegalFormTotals(full, domain.MetricPayroll)
//	stacked := dataprocessing.CrossTab(full, domain.MetricPayroll)
//
// # Missing values
//
// A cell that does not parse as a non-negative integer becomes a missing
// domain.Count. Sums skip missing values; a group with no present value sums
// to missing. Nothing is ever coerced to zero here; renderers decide how to
// draw a missing value.
//
// # Data Flow
//
//	source file → Loader → Full view ─┬→ LegalFormTotals / CrossTab
//	                     → All view ──┴→ SizeBreakdown
//
// # Error Handling
//
// Only loading can fail. A source that cannot be opened, read, or whose
// header lacks a required column yields a *DataSourceError. A source with a
// header and no data rows yields ErrNoRows. Aggregation functions are total.
package dataprocessing
