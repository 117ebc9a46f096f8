package dataprocessing

import (
	"math"
	"strconv"
	"strings"

	"cbpdash/pkg/contracts/domain"
)

// payrollUnit converts the $1,000-denominated payroll column into dollars.
const payrollUnit = 1000

// ParseCount cleans a comma-formatted numeric cell.
// Empty, non-numeric, fractional and negative text is missing.
func ParseCount(s string) domain.Count {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if s == "" {
		return domain.Missing()
	}

	if v, err := strconv.ParseInt(s, 10, 64); err == nil {
		if v < 0 {
			return domain.Missing()
		}
		return domain.Known(v)
	}

	// Spreadsheet exports sometimes render integers as "12.0".
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f < 0 || f != math.Trunc(f) || f >= math.MaxInt64 {
		return domain.Missing()
	}
	return domain.Known(int64(f))
}

// normalizeSector restores the leading zero spreadsheets drop from "00".
func normalizeSector(code string) string {
	if len(code) == 1 && code[0] >= '0' && code[0] <= '9' {
		return "0" + code
	}
	return code
}

func normalizeRecord(record []string, columns columnIndex) domain.Row {
	payrollThousands := ParseCount(columns.cell(record, domain.ColumnPayrollThousands))

	return domain.Row{
		SectorCode:       normalizeSector(columns.cell(record, domain.ColumnSector)),
		OrgForm:          columns.cell(record, domain.ColumnOrgForm),
		SizeBucket:       columns.cell(record, domain.ColumnSizeBucket),
		Establishments:   ParseCount(columns.cell(record, domain.ColumnEstablishments)),
		Employees:        ParseCount(columns.cell(record, domain.ColumnEmployees)),
		PayrollThousands: payrollThousands,
		Payroll:          payrollThousands.Scale(payrollUnit),
	}
}

// AllEstablishments keeps the rows not broken out by legal form, in order.
func AllEstablishments(full domain.View) domain.View {
	all := make(domain.View, 0, len(full)/2)
	for _, row := range full {
		if row.OrgForm == domain.Sentinel {
			all = append(all, row)
		}
	}
	return all
}
