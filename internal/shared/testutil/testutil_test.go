package testutil

import (
	"context"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestBufferedSlogHandler(t *testing.T) {
	logger, handler := NewTestLogger(t)

	logger.With(slog.String("component", "loader")).Info("dataset loaded", slog.Int("rows", 8))
	logger.WarnContext(context.Background(), "unmapped category label", slog.String("value", "Cooperatives"))

	require.Len(t, handler.GetRecords(), 2)
	assert.True(t, handler.ContainsMessage("dataset loaded"))
	assert.True(t, handler.ContainsAttr("component", "loader"))
	assert.True(t, handler.ContainsAttr("rows", int64(8)))
	assert.False(t, handler.ContainsAttr("component", "cache"))
	assert.Len(t, handler.GetRecordsByLevel(slog.LevelWarn), 1)

	AssertLogContains(t, handler, slog.LevelWarn, "unmapped")
	AssertNoErrors(t, handler)
}

func TestWriteFixtures(t *testing.T) {
	csvPath := WriteCSV(t, "cbp.csv", SampleRecords())
	data, err := os.ReadFile(csvPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), FormPartner)

	xlsxPath := WriteXLSX(t, "cbp.xlsx", SampleRecords())
	f, err := excelize.OpenFile(xlsxPath)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(f.GetSheetName(0))
	require.NoError(t, err)
	assert.Len(t, rows, len(SampleRecords())+1)
	assert.Equal(t, Header, rows[0])
}
