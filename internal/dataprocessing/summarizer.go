package dataprocessing

import (
	"context"
	"sort"

	"cbpdash/pkg/contracts/domain"
)

// predicate selects rows for an aggregation.
type predicate func(domain.Row) bool

func inSector(code string) predicate {
	return func(r domain.Row) bool { return r.SectorCode == code }
}

// excludeSentinel drops rows that are not broken out along dim.
func excludeSentinel(dim Dimension) predicate {
	return func(r domain.Row) bool {
		switch dim {
		case DimensionOrgForm:
			return r.OrgForm != domain.Sentinel
		case DimensionSizeBucket:
			return r.SizeBucket != domain.Sentinel
		default:
			return true
		}
	}
}

func filterRows(view domain.View, preds ...predicate) domain.View {
	out := make(domain.View, 0, len(view))
next:
	for _, row := range view {
		for _, keep := range preds {
			if !keep(row) {
				continue next
			}
		}
		out = append(out, row)
	}
	return out
}

// Sum adds the present values. Missing values are skipped; if none is
// present, or the total overflows int64, the result is missing.
func Sum(values []domain.Count) domain.Count {
	total := domain.Missing()
	for _, v := range values {
		if !v.Valid {
			continue
		}
		if !total.Valid {
			total = v
			continue
		}
		if total = total.Add(v); !total.Valid {
			return total
		}
	}
	return total
}

// Option adjusts a single aggregation call.
type Option func(*options)

type options struct {
	sector string
}

// WithSector restricts an aggregation to a sector code. The default is "00".
func WithSector(code string) Option {
	return func(o *options) {
		if code != "" {
			o.sector = normalizeSector(code)
		}
	}
}

func buildOptions(opts []Option) options {
	o := options{sector: domain.AllSectors}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Summarizer builds the per-chart data sets from the loaded views.
type Summarizer struct {
	labels *Labeler
}

// NewSummarizer creates a summarizer. A nil labeler logs unknown labels
// through slog.Default().
func NewSummarizer(labels *Labeler) *Summarizer {
	if labels == nil {
		labels = NewLabeler(nil)
	}
	return &Summarizer{labels: labels}
}

// SizeBreakdown returns one entry per size bucket of the sector in the
// fixed display order. The size sentinel row is excluded.
func (s *Summarizer) SizeBreakdown(ctx context.Context, view domain.View, metric domain.Metric, opts ...Option) []domain.SizeBreakdownEntry {
	o := buildOptions(opts)
	rows := filterRows(view, inSector(o.sector), excludeSentinel(DimensionSizeBucket))

	entries := make([]domain.SizeBreakdownEntry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, domain.SizeBreakdownEntry{
			Size:  s.labels.Size(ctx, row.SizeBucket),
			Value: row.Metric(metric),
		})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return sizePosition(entries[i].Size) < sizePosition(entries[j].Size)
	})
	return entries
}

// LegalFormTotals sums metric over every row of each legal form in the
// sector, size sentinel rows included, sorted by short label.
func (s *Summarizer) LegalFormTotals(ctx context.Context, full domain.View, metric domain.Metric, opts ...Option) []domain.LegalFormTotal {
	o := buildOptions(opts)
	rows := filterRows(full, inSector(o.sector), excludeSentinel(DimensionOrgForm))

	groups := make(map[string][]domain.Count)
	var order []string
	for _, row := range rows {
		if _, ok := groups[row.OrgForm]; !ok {
			order = append(order, row.OrgForm)
		}
		groups[row.OrgForm] = append(groups[row.OrgForm], row.Metric(metric))
	}

	result := make([]domain.LegalFormTotal, 0, len(order))
	for _, raw := range order {
		result = append(result, domain.LegalFormTotal{
			OrgForm: s.labels.OrgForm(ctx, raw),
			Value:   Sum(groups[raw]),
		})
	}

	sort.SliceStable(result, func(i, j int) bool {
		return result[i].OrgForm < result[j].OrgForm
	})
	return result
}

// CrossTab returns one entry per (size, legal form) row of the sector with
// both axes relabelled. Entries follow the fixed size order and keep source
// order within a bucket. Missing combinations are not synthesized.
func (s *Summarizer) CrossTab(ctx context.Context, full domain.View, metric domain.Metric, opts ...Option) []domain.CrossTabEntry {
	o := buildOptions(opts)
	rows := filterRows(full,
		inSector(o.sector),
		excludeSentinel(DimensionOrgForm),
		excludeSentinel(DimensionSizeBucket),
	)

	entries := make([]domain.CrossTabEntry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, domain.CrossTabEntry{
			Size:    s.labels.Size(ctx, row.SizeBucket),
			OrgForm: s.labels.OrgForm(ctx, row.OrgForm),
			Value:   row.Metric(metric),
		})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return sizePosition(entries[i].Size) < sizePosition(entries[j].Size)
	})
	return entries
}

// SizeBreakdown aggregates with a default Summarizer.
func SizeBreakdown(view domain.View, metric domain.Metric, opts ...Option) []domain.SizeBreakdownEntry {
	return NewSummarizer(nil).SizeBreakdown(context.Background(), view, metric, opts...)
}

// LegalFormTotals aggregates with a default Summarizer.
func LegalFormTotals(full domain.View, metric domain.Metric, opts ...Option) []domain.LegalFormTotal {
	return NewSummarizer(nil).LegalFormTotals(context.Background(), full, metric, opts...)
}

// CrossTab aggregates with a default Summarizer.
func CrossTab(full domain.View, metric domain.Metric, opts ...Option) []domain.CrossTabEntry {
	return NewSummarizer(nil).CrossTab(context.Background(), full, metric, opts...)
}
