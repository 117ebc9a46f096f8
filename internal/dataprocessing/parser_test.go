package dataprocessing

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"cbpdash/pkg/contracts/domain"
)

const (
	sizeLT5     = "Establishments with less than 5 employees"
	size5to9    = "Establishments with 5 to 9 employees"
	size1000    = "Establishments with 1,000 employees or more"
	formPartner = "Partnerships"
	formSCorp   = "S-corporations"
)

var testHeader = []string{
	domain.ColumnSector,
	domain.ColumnOrgForm,
	domain.ColumnSizeBucket,
	domain.ColumnEstablishments,
	domain.ColumnEmployees,
	domain.ColumnPayrollThousands,
}

// writeCSV writes header and records to a file under t.TempDir().
func writeCSV(t *testing.T, header []string, records [][]string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "cbp.csv")
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	require.NoError(t, w.Write(header))
	require.NoError(t, w.WriteAll(records))
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))
	return path
}

// writeXLSX writes header and records to the first sheet of a workbook.
func writeXLSX(t *testing.T, header []string, records [][]string) string {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)

	all := append([][]string{header}, records...)
	for i, record := range all {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		values := make([]interface{}, len(record))
		for j, v := range record {
			values[j] = v
		}
		require.NoError(t, f.SetSheetRow(sheet, cell, &values))
	}

	path := filepath.Join(t.TempDir(), "cbp.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}

// endToEndRecords is the three row fixture used across the package tests.
var endToEndRecords = [][]string{
	{"00", domain.Sentinel, sizeLT5, "100", "250", "500"},
	{"00", domain.Sentinel, domain.Sentinel, "500", "1,200", "3,000"},
	{"01", domain.Sentinel, sizeLT5, "10", "20", "50"},
}

func TestLoad(t *testing.T) {
	path := writeCSV(t, testHeader, endToEndRecords)

	all, full, err := Load(path)
	require.NoError(t, err)
	require.Len(t, full, 3)
	require.Len(t, all, 3)

	assert.Equal(t, "01", full[2].SectorCode)
	assert.Equal(t, domain.Known(1200), full[1].Employees)
	assert.Equal(t, domain.Known(3000), full[1].PayrollThousands)
	assert.Equal(t, domain.Known(3_000_000), full[1].Payroll)
	assert.Equal(t, domain.Known(500_000), full[0].Payroll)
}

func TestLoad_AllEstablishmentsView(t *testing.T) {
	records := [][]string{
		{"00", formPartner, sizeLT5, "1", "2", "3"},
		{"00", domain.Sentinel, size5to9, "4", "5", "6"},
		{"00", formSCorp, domain.Sentinel, "7", "8", "9"},
		{"00", domain.Sentinel, sizeLT5, "10", "11", "12"},
	}
	path := writeCSV(t, testHeader, records)

	all, full, err := Load(path)
	require.NoError(t, err)
	require.Len(t, full, 4)
	require.Len(t, all, 2)

	assert.Equal(t, size5to9, all[0].SizeBucket)
	assert.Equal(t, sizeLT5, all[1].SizeBucket)
	for _, row := range all {
		assert.Equal(t, domain.Sentinel, row.OrgForm)
	}
}

func TestLoad_MissingValues(t *testing.T) {
	records := [][]string{
		{"00", formPartner, sizeLT5, "", "D", "12"},
		{"00", formPartner, size5to9, "5", "7", "N"},
	}
	path := writeCSV(t, testHeader, records)

	_, full, err := Load(path)
	require.NoError(t, err)

	assert.False(t, full[0].Establishments.Valid)
	assert.False(t, full[0].Employees.Valid)
	assert.Equal(t, domain.Known(12_000), full[0].Payroll)
	assert.False(t, full[1].PayrollThousands.Valid)
	assert.False(t, full[1].Payroll.Valid)
}

func TestLoad_HeaderOrderAndExtraColumns(t *testing.T) {
	header := []string{
		"Geographic Area Name (NAME)",
		domain.ColumnPayrollThousands,
		domain.ColumnEmployees,
		domain.ColumnEstablishments,
		domain.ColumnSizeBucket,
		domain.ColumnOrgForm,
		domain.ColumnSector,
	}
	records := [][]string{{"United States", "500", "250", "100", sizeLT5, domain.Sentinel, "00"}}
	path := writeCSV(t, header, records)

	all, full, err := Load(path)
	require.NoError(t, err)
	require.Len(t, all, 1)

	assert.Equal(t, domain.Row{
		SectorCode:       "00",
		OrgForm:          domain.Sentinel,
		SizeBucket:       sizeLT5,
		Establishments:   domain.Known(100),
		Employees:        domain.Known(250),
		PayrollThousands: domain.Known(500),
		Payroll:          domain.Known(500_000),
	}, full[0])
}

func TestLoad_ByteOrderMarkAndShortRows(t *testing.T) {
	header := append([]string(nil), testHeader...)
	header[0] = "\ufeff" + header[0]
	records := [][]string{{"0", domain.Sentinel, sizeLT5, "100"}}
	path := writeCSV(t, header, records)

	_, full, err := Load(path)
	require.NoError(t, err)
	require.Len(t, full, 1)

	assert.Equal(t, "00", full[0].SectorCode)
	assert.Equal(t, domain.Known(100), full[0].Establishments)
	assert.False(t, full[0].Employees.Valid)
	assert.False(t, full[0].Payroll.Valid)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name        string
		setup       func(t *testing.T) string
		wantSource  bool
		wantErr     error
		wantMissing []string
	}{
		{
			name: "file does not exist",
			setup: func(t *testing.T) string {
				return filepath.Join(t.TempDir(), "absent.csv")
			},
			wantSource: true,
			wantErr:    os.ErrNotExist,
		},
		{
			name: "unsupported extension",
			setup: func(t *testing.T) string {
				path := filepath.Join(t.TempDir(), "cbp.json")
				require.NoError(t, os.WriteFile(path, []byte("{}"), 0o644))
				return path
			},
			wantSource: true,
			wantErr:    ErrUnsupportedFormat,
		},
		{
			name: "empty file",
			setup: func(t *testing.T) string {
				path := filepath.Join(t.TempDir(), "cbp.csv")
				require.NoError(t, os.WriteFile(path, nil, 0o644))
				return path
			},
			wantSource: true,
		},
		{
			name: "missing required columns",
			setup: func(t *testing.T) string {
				return writeCSV(t, testHeader[:4], [][]string{{"00", domain.Sentinel, sizeLT5, "1"}})
			},
			wantSource:  true,
			wantErr:     ErrMissingColumns,
			wantMissing: []string{domain.ColumnEmployees, domain.ColumnPayrollThousands},
		},
		{
			name: "header only",
			setup: func(t *testing.T) string {
				return writeCSV(t, testHeader, nil)
			},
			wantErr: ErrNoRows,
		},
		{
			name: "blank data lines only",
			setup: func(t *testing.T) string {
				return writeCSV(t, testHeader, [][]string{{"", "", "", "", "", ""}})
			},
			wantErr: ErrNoRows,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			all, full, err := Load(tt.setup(t))
			require.Error(t, err)
			assert.Nil(t, all)
			assert.Nil(t, full)

			assert.Equal(t, tt.wantSource, IsDataSourceError(err))
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
			if tt.wantMissing != nil {
				var dsErr *DataSourceError
				require.True(t, errors.As(err, &dsErr))
				assert.Equal(t, tt.wantMissing, dsErr.Missing)
				assert.Contains(t, err.Error(), domain.ColumnEmployees)
			}
		})
	}
}

func TestLoad_XLSXMatchesCSV(t *testing.T) {
	records := [][]string{
		{"00", domain.Sentinel, sizeLT5, "1,234", "250", "500"},
		{"00", formPartner, domain.Sentinel, "10", "", "75"},
		{"23", formSCorp, size1000, "3", "4,500", "D"},
	}

	csvAll, csvFull, err := Load(writeCSV(t, testHeader, records))
	require.NoError(t, err)
	xlsxAll, xlsxFull, err := Load(writeXLSX(t, testHeader, records))
	require.NoError(t, err)

	assert.Equal(t, csvAll, xlsxAll)
	assert.Equal(t, csvFull, xlsxFull)
}

func TestLoader_LoadReader(t *testing.T) {
	input := strings.Join([]string{
		strings.Join(quoteAll(testHeader), ","),
		`00,All establishments,Establishments with less than 5 employees,"1,000",20,30`,
	}, "\n")

	ds, err := NewLoader(nil).LoadReader(context.Background(), "inline", strings.NewReader(input), FormatCSV)
	require.NoError(t, err)

	assert.Equal(t, "inline", ds.Source)
	assert.Equal(t, domain.Known(1000), ds.Full[0].Establishments)
	assert.Equal(t, ds.Full, ds.All)
	assert.False(t, ds.LoadedAt.IsZero())
}

func TestFormatFromPath(t *testing.T) {
	tests := []struct {
		path    string
		want    Format
		wantErr bool
	}{
		{path: "data/cbp.csv", want: FormatCSV},
		{path: "CBP.CSV", want: FormatCSV},
		{path: "cbp.txt", want: FormatCSV},
		{path: "cbp.xlsx", want: FormatXLSX},
		{path: "cbp.parquet", wantErr: true},
		{path: "cbp", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got, err := FormatFromPath(tt.path)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrUnsupportedFormat)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func quoteAll(fields []string) []string {
	out := make([]string, len(fields))
	for i, f := range fields {
		out[i] = `"` + strings.ReplaceAll(f, `"`, `""`) + `"`
	}
	return out
}
