package domain

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
)

// Sentinel marks a row that is not broken out along a dimension.
const Sentinel = "All establishments"

// AllSectors is the NAICS code of the "all sectors" aggregate rows.
const AllSectors = "00"

// IsSectorCode accepts a 2-digit NAICS code or a range such as 31-33.
func IsSectorCode(s string) bool {
	digits := func(p string) bool {
		return len(p) == 2 && p[0] >= '0' && p[0] <= '9' && p[1] >= '0' && p[1] <= '9'
	}
	if lo, hi, ok := strings.Cut(s, "-"); ok {
		return digits(lo) && digits(hi)
	}
	return digits(s)
}

// Source column headers, exactly as published.
const (
	ColumnSector           = "2017 NAICS code (NAICS2017)"
	ColumnOrgForm          = "Meaning of Legal form of organization code (LFO_LABEL)"
	ColumnSizeBucket       = "Meaning of Employment size of establishments code (EMPSZES_LABEL)"
	ColumnEstablishments   = "Number of establishments (ESTAB)"
	ColumnEmployees        = "Number of employees (EMP)"
	ColumnPayrollThousands = "Annual payroll ($1,000) (PAYANN)"
)

// RequiredColumns lists every header a source file must carry.
var RequiredColumns = []string{
	ColumnSector,
	ColumnOrgForm,
	ColumnSizeBucket,
	ColumnEstablishments,
	ColumnEmployees,
	ColumnPayrollThousands,
}

// Count is a non-negative integer that may be missing.
// The zero value is missing.
type Count struct {
	Value int64
	Valid bool
}

// Known returns a present Count.
func Known(v int64) Count {
	return Count{Value: v, Valid: true}
}

// Missing returns a missing Count.
func Missing() Count {
	return Count{}
}

// Scale multiplies a present value by a positive factor. Missing stays
// missing, and so does a product that overflows int64.
func (c Count) Scale(factor int64) Count {
	if !c.Valid {
		return c
	}
	if factor <= 0 || c.Value > math.MaxInt64/factor {
		return Missing()
	}
	return Known(c.Value * factor)
}

// Add returns c + o. A sum that overflows int64 is missing; callers
// decide how missing operands combine.
func (c Count) Add(o Count) Count {
	if !c.Valid || !o.Valid || c.Value > math.MaxInt64-o.Value {
		return Missing()
	}
	return Known(c.Value + o.Value)
}

// OrZero returns the value, or 0 when missing.
func (c Count) OrZero() int64 {
	if !c.Valid {
		return 0
	}
	return c.Value
}

// String renders the value, or an empty string when missing.
func (c Count) String() string {
	if !c.Valid {
		return ""
	}
	return fmt.Sprintf("%d", c.Value)
}

// MarshalJSON encodes a missing Count as null.
func (c Count) MarshalJSON() ([]byte, error) {
	if !c.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(c.Value)
}

// UnmarshalJSON accepts a number or null.
func (c *Count) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*c = Missing()
		return nil
	}
	var v int64
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("count: %w", err)
	}
	*c = Known(v)
	return nil
}

// Metric selects which numeric column feeds a chart.
type Metric string

const (
	MetricEstablishments   Metric = "establishments"
	MetricEmployees        Metric = "employees"
	MetricPayroll          Metric = "payroll"
	MetricPayrollThousands Metric = "payroll_thousands"
)

// Metrics lists every supported metric.
var Metrics = []Metric{MetricEstablishments, MetricEmployees, MetricPayroll, MetricPayrollThousands}

// ParseMetric parses a metric name, case-insensitively.
func ParseMetric(s string) (Metric, error) {
	m := Metric(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Metrics {
		if m == known {
			return m, nil
		}
	}
	return "", fmt.Errorf("unknown metric %q", s)
}

// Label returns the axis label used for the metric.
func (m Metric) Label() string {
	switch m {
	case MetricEstablishments:
		return "Establishments"
	case MetricEmployees:
		return "Employees"
	case MetricPayroll:
		return "Annual Payroll ($)"
	case MetricPayrollThousands:
		return "Annual Payroll ($1,000)"
	default:
		return string(m)
	}
}

// Row is one normalized record of the source table.
type Row struct {
	SectorCode       string `json:"sector_code"`
	OrgForm          string `json:"org_form_label"`
	SizeBucket       string `json:"size_bucket_label"`
	Establishments   Count  `json:"establishment_count"`
	Employees        Count  `json:"employee_count"`
	PayrollThousands Count  `json:"annual_payroll_thousands"`
	Payroll          Count  `json:"annual_payroll"`
}

// Metric returns the value of the selected column.
func (r Row) Metric(m Metric) Count {
	switch m {
	case MetricEstablishments:
		return r.Establishments
	case MetricEmployees:
		return r.Employees
	case MetricPayroll:
		return r.Payroll
	case MetricPayrollThousands:
		return r.PayrollThousands
	default:
		return Missing()
	}
}

// View is a read-only, ordered selection of rows.
type View []Row
