package exporter

import (
	"time"

	"cbpdash/pkg/contracts/domain"
)

// formatCount renders a count for CSV output. Missing values are empty cells.
func formatCount(c domain.Count) string {
	return c.String()
}

// cellValue returns the spreadsheet value of a count; nil leaves the cell blank.
func cellValue(c domain.Count) interface{} {
	if !c.Valid {
		return nil
	}
	return c.Value
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
