package testutil

import (
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"cbpdash/pkg/contracts/domain"
)

// Size bucket and legal form values as they appear in the extract
const (
	SizeLT5     = "Establishments with less than 5 employees"
	Size5to9    = "Establishments with 5 to 9 employees"
	FormPartner = "Partnerships"
	FormSCorp   = "S-corporations"
)

// Header is the column header of the fixture extracts
var Header = []string{
	domain.ColumnSector,
	domain.ColumnOrgForm,
	domain.ColumnSizeBucket,
	domain.ColumnEstablishments,
	domain.ColumnEmployees,
	domain.ColumnPayrollThousands,
}

// SampleRecords returns a small extract with all-sectors rows and one
// construction row. Sector 00 payroll totals are 50 (Partnerships) and 120
// (S-corporations) thousand dollars.
func SampleRecords() [][]string {
	return [][]string{
		{"00", domain.Sentinel, domain.Sentinel, "1000", "5000", "200"},
		{"00", domain.Sentinel, SizeLT5, "600", "900", "50"},
		{"00", domain.Sentinel, Size5to9, "300", "2000", "80"},
		{"00", FormPartner, domain.Sentinel, "200", "800", "40"},
		{"00", FormPartner, SizeLT5, "150", "300", "10"},
		{"00", FormSCorp, domain.Sentinel, "300", "1200", "90"},
		{"00", FormSCorp, Size5to9, "100", "600", "30"},
		{"23", domain.Sentinel, SizeLT5, "50", "60", "N"},
	}
}

// WriteCSV writes Header and records to name under t.TempDir().
func WriteCSV(t *testing.T, name string, records [][]string) string {
	t.Helper()

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	require.NoError(t, w.Write(Header))
	require.NoError(t, w.WriteAll(records))

	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))
	return path
}

// WriteXLSX writes Header and records to the first sheet of a workbook.
func WriteXLSX(t *testing.T, name string, records [][]string) string {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)

	for i, record := range append([][]string{Header}, records...) {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		row := make([]interface{}, len(record))
		for j, v := range record {
			row[j] = v
		}
		require.NoError(t, f.SetSheetRow(sheet, cell, &row))
	}

	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, f.SaveAs(path))
	return path
}
