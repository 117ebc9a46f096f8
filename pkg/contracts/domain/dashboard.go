package domain

import (
	"fmt"
	"strings"
	"time"
)

// SizeBreakdownEntry is one bar of a size-bucket breakdown.
type SizeBreakdownEntry struct {
	Size  string `json:"size"`
	Value Count  `json:"value"`
}

// LegalFormTotal is the summed metric for one legal form of organization.
type LegalFormTotal struct {
	OrgForm string `json:"org_form"`
	Value   Count  `json:"value"`
}

// CrossTabEntry is one (size, legal form) cell of the payroll cross-tab.
type CrossTabEntry struct {
	Size    string `json:"size"`
	OrgForm string `json:"org_form"`
	Value   Count  `json:"value"`
}

// TotalsByOrgForm returns legal-form totals in mapping form.
func TotalsByOrgForm(totals []LegalFormTotal) map[string]Count {
	out := make(map[string]Count, len(totals))
	for _, t := range totals {
		out[t.OrgForm] = t.Value
	}
	return out
}

// Dashboard holds every chart data set shown on the page.
type Dashboard struct {
	Source      string    `json:"source"`
	Sector      string    `json:"sector"`
	SectorTitle string    `json:"sector_title"`
	Year        string    `json:"year"`
	TotalRows   int       `json:"total_rows"`
	AllRows     int       `json:"all_establishment_rows"`
	GeneratedAt time.Time `json:"generated_at"`

	EstablishmentsBySize      []SizeBreakdownEntry `json:"establishments_by_size"`
	EmployeesBySize           []SizeBreakdownEntry `json:"employees_by_size"`
	PayrollByLegalForm        []LegalFormTotal     `json:"payroll_by_legal_form"`
	EstablishmentsByLegalForm []LegalFormTotal     `json:"establishments_by_legal_form"`
	PayrollBySizeAndLegalForm []CrossTabEntry      `json:"payroll_by_size_and_legal_form"`
}

// ChartID names one of the dashboard charts.
type ChartID string

const (
	ChartEstablishmentsBySize      ChartID = "establishments-by-size"
	ChartPayrollByLegalForm        ChartID = "payroll-by-legal-form"
	ChartEmployeesBySize           ChartID = "employees-by-size"
	ChartEstablishmentsByLegalForm ChartID = "establishments-by-legal-form"
	ChartPayrollBySizeAndLegalForm ChartID = "payroll-by-size-and-legal-form"
)

// ChartIDs lists the charts in page order.
var ChartIDs = []ChartID{
	ChartEstablishmentsBySize,
	ChartPayrollByLegalForm,
	ChartEmployeesBySize,
	ChartEstablishmentsByLegalForm,
	ChartPayrollBySizeAndLegalForm,
}

// ParseChartID validates a chart name.
func ParseChartID(s string) (ChartID, error) {
	id := ChartID(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range ChartIDs {
		if id == known {
			return id, nil
		}
	}
	return "", fmt.Errorf("unknown chart %q", s)
}

// Title returns the chart heading without the data year.
func (c ChartID) Title() string {
	switch c {
	case ChartEstablishmentsBySize:
		return "Establishments by Employment Size"
	case ChartPayrollByLegalForm:
		return "Payroll Distribution by Legal Form"
	case ChartEmployeesBySize:
		return "Employees by Employment Size"
	case ChartEstablishmentsByLegalForm:
		return "Establishments by Legal Form"
	case ChartPayrollBySizeAndLegalForm:
		return "Payroll by Employment Size and Legal Form"
	default:
		return string(c)
	}
}

// Metric returns the metric the chart plots.
func (c ChartID) Metric() Metric {
	switch c {
	case ChartEstablishmentsBySize, ChartEstablishmentsByLegalForm:
		return MetricEstablishments
	case ChartEmployeesBySize:
		return MetricEmployees
	default:
		return MetricPayroll
	}
}
