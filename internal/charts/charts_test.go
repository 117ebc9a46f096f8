package charts

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cbpdash/pkg/contracts/domain"
)

func TestBar(t *testing.T) {
	entries := []domain.SizeBreakdownEntry{
		{Size: "<5", Value: domain.Known(100)},
		{Size: "5-9", Value: domain.Missing()},
		{Size: "10-19", Value: domain.Known(40)},
	}

	svg, err := Bar("Establishments by Employment Size", "Establishments", entries)
	require.NoError(t, err)

	out := string(svg)
	assert.Contains(t, out, "<svg")
	assert.Contains(t, out, "Establishments by Employment Size")
	assert.Contains(t, out, "10-19")
}

func TestShare(t *testing.T) {
	totals := []domain.LegalFormTotal{
		{OrgForm: "C-Corporations", Value: domain.Known(300)},
		{OrgForm: "Government", Value: domain.Missing()},
		{OrgForm: "Non-Profit", Value: domain.Known(0)},
		{OrgForm: "Partnerships", Value: domain.Known(100)},
	}

	svg, err := Share("Payroll Distribution by Legal Form", totals)
	require.NoError(t, err)

	out := string(svg)
	assert.Contains(t, out, "C-Corporations (75.0%)")
	assert.Contains(t, out, "Partnerships (25.0%)")
	assert.NotContains(t, out, "Government")
	assert.NotContains(t, out, "Non-Profit")
}

func TestStackedBar(t *testing.T) {
	entries := []domain.CrossTabEntry{
		{Size: "<5", OrgForm: "Partnerships", Value: domain.Known(5)},
		{Size: "<5", OrgForm: "C-Corporations", Value: domain.Known(7)},
		{Size: "5-9", OrgForm: "Partnerships", Value: domain.Missing()},
	}

	svg, err := StackedBar("Payroll by Employment Size and Legal Form", "Annual Payroll ($)", entries)
	require.NoError(t, err)

	out := string(svg)
	assert.Contains(t, out, "Partnerships")
	assert.Contains(t, out, "C-Corporations")
	assert.True(t, strings.HasPrefix(strings.TrimSpace(out), "<?xml") || strings.HasPrefix(strings.TrimSpace(out), "<svg"))
}

func TestNoData(t *testing.T) {
	_, err := Bar("empty", "", nil)
	assert.ErrorIs(t, err, ErrNoData)

	_, err = Share("empty", []domain.LegalFormTotal{{OrgForm: "Government", Value: domain.Missing()}})
	assert.ErrorIs(t, err, ErrNoData)

	_, err = StackedBar("empty", "", nil)
	assert.ErrorIs(t, err, ErrNoData)
}
