package exporter

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"cbpdash/pkg/contracts/domain"
)

func testDashboard() *domain.Dashboard {
	return &domain.Dashboard{
		Source:      "cbp.csv",
		Sector:      "00",
		SectorTitle: "Total for all sectors",
		Year:        "2021",
		TotalRows:   12,
		AllRows:     4,
		GeneratedAt: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
		EstablishmentsBySize: []domain.SizeBreakdownEntry{
			{Size: "<5", Value: domain.Known(100)},
			{Size: "5-9", Value: domain.Missing()},
		},
		EmployeesBySize: []domain.SizeBreakdownEntry{
			{Size: "<5", Value: domain.Known(250)},
		},
		PayrollByLegalForm: []domain.LegalFormTotal{
			{OrgForm: "C-Corporations", Value: domain.Known(5_000_000)},
			{OrgForm: "Government", Value: domain.Missing()},
		},
		EstablishmentsByLegalForm: []domain.LegalFormTotal{
			{OrgForm: "Partnerships", Value: domain.Known(15)},
		},
		PayrollBySizeAndLegalForm: []domain.CrossTabEntry{
			{Size: "<5", OrgForm: "Partnerships", Value: domain.Known(3000)},
			{Size: "1,000+", OrgForm: "S-Corporations", Value: domain.Missing()},
		},
	}
}

func TestWriteChartCSV(t *testing.T) {
	d := testDashboard()

	tests := []struct {
		chart domain.ChartID
		want  string
	}{
		{
			chart: domain.ChartEstablishmentsBySize,
			want:  "Employment Size,Establishments\n<5,100\n5-9,\n",
		},
		{
			chart: domain.ChartEmployeesBySize,
			want:  "Employment Size,Employees\n<5,250\n",
		},
		{
			chart: domain.ChartPayrollByLegalForm,
			want:  "Legal Form,Annual Payroll ($)\nC-Corporations,5000000\nGovernment,\n",
		},
		{
			chart: domain.ChartEstablishmentsByLegalForm,
			want:  "Legal Form,Establishments\nPartnerships,15\n",
		},
		{
			chart: domain.ChartPayrollBySizeAndLegalForm,
			want:  "Employment Size,Legal Form,Annual Payroll ($)\n<5,Partnerships,3000\n\"1,000+\",S-Corporations,\n",
		},
	}

	for _, tt := range tests {
		t.Run(string(tt.chart), func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, WriteChartCSV(&buf, d, tt.chart, WriteOptions{}))
			assert.Equal(t, tt.want, buf.String())
		})
	}
}

func TestWriteChartCSV_UnknownChart(t *testing.T) {
	var buf bytes.Buffer
	err := WriteChartCSV(&buf, testDashboard(), domain.ChartID("pie"), WriteOptions{})
	assert.ErrorIs(t, err, ErrUnknownChart)
	assert.Zero(t, buf.Len())
}

func TestWriteSizeBreakdownCSV_BOM(t *testing.T) {
	var buf bytes.Buffer
	err := WriteSizeBreakdownCSV(&buf, domain.MetricEstablishments,
		[]domain.SizeBreakdownEntry{{Size: "<5", Value: domain.Known(1)}},
		WriteOptions{BOMPrefix: true})
	require.NoError(t, err)

	content := buf.Bytes()
	assert.True(t, bytes.HasPrefix(content, []byte{0xEF, 0xBB, 0xBF}))
	assert.Equal(t, "Employment Size,Establishments\n<5,1\n", string(content[3:]))
}

func TestWriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "out.csv")

	err := WriteFile(path, func(w io.Writer) error {
		_, err := io.WriteString(w, "hello")
		return err
	})
	require.NoError(t, err)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(content))
}

func TestWriteFile_PropagatesWriteError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")

	err := WriteFile(path, func(io.Writer) error { return ErrUnknownChart })
	assert.ErrorIs(t, err, ErrUnknownChart)
}

func TestWriteWorkbook(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteWorkbook(&buf, testDashboard()))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{
		"Summary",
		"Establishments by Size",
		"Payroll by Legal Form",
		"Employees by Size",
		"Establishments by Legal Form",
		"Payroll by Size x Legal Form",
	}, f.GetSheetList())

	for _, name := range f.GetSheetList() {
		assert.LessOrEqual(t, len(name), 31)
	}

	summary, err := f.GetRows("Summary")
	require.NoError(t, err)
	assert.Equal(t, []string{"Sector", "00"}, summary[1])
	assert.Equal(t, []string{"Generated At", "2024-03-01T12:00:00Z"}, summary[6])

	rows, err := f.GetRows("Establishments by Size")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"Employment Size", "Establishments"}, rows[0])
	assert.Equal(t, []string{"<5", "100"}, rows[1])
	assert.Equal(t, "5-9", rows[2][0])
	if len(rows[2]) > 1 {
		assert.Empty(t, strings.TrimSpace(rows[2][1]))
	}

	cross, err := f.GetRows("Payroll by Size x Legal Form")
	require.NoError(t, err)
	assert.Equal(t, []string{"<5", "Partnerships", "3000"}, cross[1])
}
