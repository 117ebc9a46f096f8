package exporter

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"cbpdash/pkg/contracts/domain"
)

const summarySheet = "Summary"

// sheetNames keeps every chart sheet under Excel's 31 character limit.
var sheetNames = map[domain.ChartID]string{
	domain.ChartEstablishmentsBySize:      "Establishments by Size",
	domain.ChartPayrollByLegalForm:        "Payroll by Legal Form",
	domain.ChartEmployeesBySize:           "Employees by Size",
	domain.ChartEstablishmentsByLegalForm: "Establishments by Legal Form",
	domain.ChartPayrollBySizeAndLegalForm: "Payroll by Size x Legal Form",
}

// WriteWorkbook writes a summary sheet and one sheet per chart.
func WriteWorkbook(w io.Writer, d *domain.Dashboard) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), summarySheet); err != nil {
		return fmt.Errorf("rename summary sheet: %w", err)
	}
	summary := [][]interface{}{
		{"Source", d.Source},
		{"Sector", d.Sector},
		{"Sector Title", d.SectorTitle},
		{"Year", d.Year},
		{"Rows", d.TotalRows},
		{"All Establishment Rows", d.AllRows},
		{"Generated At", formatTime(d.GeneratedAt)},
	}
	if err := writeRows(f, summarySheet, summary); err != nil {
		return err
	}

	for _, chart := range domain.ChartIDs {
		name := sheetNames[chart]
		if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("create sheet %q: %w", name, err)
		}
		if err := writeRows(f, name, chartRows(d, chart)); err != nil {
			return err
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func chartRows(d *domain.Dashboard, chart domain.ChartID) [][]interface{} {
	label := chart.Metric().Label()

	var rows [][]interface{}
	switch chart {
	case domain.ChartEstablishmentsBySize, domain.ChartEmployeesBySize:
		entries := d.EstablishmentsBySize
		if chart == domain.ChartEmployeesBySize {
			entries = d.EmployeesBySize
		}
		rows = append(rows, []interface{}{"Employment Size", label})
		for _, e := range entries {
			rows = append(rows, []interface{}{e.Size, cellValue(e.Value)})
		}
	case domain.ChartPayrollByLegalForm, domain.ChartEstablishmentsByLegalForm:
		totals := d.PayrollByLegalForm
		if chart == domain.ChartEstablishmentsByLegalForm {
			totals = d.EstablishmentsByLegalForm
		}
		rows = append(rows, []interface{}{"Legal Form", label})
		for _, t := range totals {
			rows = append(rows, []interface{}{t.OrgForm, cellValue(t.Value)})
		}
	case domain.ChartPayrollBySizeAndLegalForm:
		rows = append(rows, []interface{}{"Employment Size", "Legal Form", label})
		for _, e := range d.PayrollBySizeAndLegalForm {
			rows = append(rows, []interface{}{e.Size, e.OrgForm, cellValue(e.Value)})
		}
	}
	return rows
}

func writeRows(f *excelize.File, sheet string, rows [][]interface{}) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		row := row
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("write %s row %d: %w", sheet, i+1, err)
		}
	}
	return nil
}
