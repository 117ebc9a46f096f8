// Package charts renders dashboard aggregates as SVG with gonum/plot.
package charts

import (
	"bytes"
	"errors"
	"fmt"
	"image/color"
	"math"
	"sort"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"cbpdash/pkg/contracts/domain"
)

// ErrNoData is returned when a chart is asked to render no categories.
var ErrNoData = errors.New("chart has no data")

// barColor is the fill of single-series bar charts.
var barColor = color.RGBA{R: 70, G: 130, B: 180, A: 255}

// Renderer draws charts at a fixed canvas size.
type Renderer struct {
	Width    vg.Length
	Height   vg.Length
	BarWidth vg.Length
}

// DefaultRenderer matches the card size of the dashboard page.
var DefaultRenderer = Renderer{
	Width:    7 * vg.Inch,
	Height:   4 * vg.Inch,
	BarWidth: vg.Points(24),
}

// Bar draws one bar per entry, in the given order. Missing values draw as
// zero-height bars.
func (r Renderer) Bar(title, yLabel string, entries []domain.SizeBreakdownEntry) ([]byte, error) {
	if len(entries) == 0 {
		return nil, fmt.Errorf("%s: %w", title, ErrNoData)
	}

	values := make(plotter.Values, len(entries))
	labels := make([]string, len(entries))
	for i, e := range entries {
		values[i] = float64(e.Value.OrZero())
		labels[i] = e.Size
	}

	p := newPlot(title)
	p.Y.Label.Text = yLabel

	bars, err := plotter.NewBarChart(values, r.BarWidth)
	if err != nil {
		return nil, fmt.Errorf("%s: build bars: %w", title, err)
	}
	bars.Color = barColor
	bars.LineStyle.Width = vg.Length(0)

	p.Add(bars, plotter.NewGrid())
	p.NominalX(labels...)
	rotateTicks(p)

	return r.encode(p, title)
}

// Share draws each legal form's percentage of the total as a horizontal
// bar. Missing and zero totals are omitted.
func (r Renderer) Share(title string, totals []domain.LegalFormTotal) ([]byte, error) {
	var sum float64
	kept := make([]domain.LegalFormTotal, 0, len(totals))
	for _, t := range totals {
		if t.Value.Valid && t.Value.Value > 0 {
			kept = append(kept, t)
			sum += float64(t.Value.Value)
		}
	}
	if len(kept) == 0 {
		return nil, fmt.Errorf("%s: %w", title, ErrNoData)
	}

	values := make(plotter.Values, len(kept))
	labels := make([]string, len(kept))
	for i, t := range kept {
		pct := 100 * float64(t.Value.Value) / sum
		values[i] = pct
		labels[i] = fmt.Sprintf("%s (%.1f%%)", t.OrgForm, pct)
	}

	p := newPlot(title)
	p.X.Label.Text = "Share (%)"
	p.X.Min = 0
	p.X.Max = math.Max(100, maxValue(values))

	bars, err := plotter.NewBarChart(values, r.BarWidth)
	if err != nil {
		return nil, fmt.Errorf("%s: build bars: %w", title, err)
	}
	bars.Horizontal = true
	bars.LineStyle.Width = vg.Length(0)
	bars.Color = plotutil.Color(0)

	p.Add(bars, plotter.NewGrid())
	p.NominalY(labels...)

	return r.encode(p, title)
}

// StackedBar draws one series per legal form stacked over the size axis.
// Sizes keep their entry order; series are sorted by legal form.
func (r Renderer) StackedBar(title, yLabel string, entries []domain.CrossTabEntry) ([]byte, error) {
	if len(entries) == 0 {
		return nil, fmt.Errorf("%s: %w", title, ErrNoData)
	}

	var sizes, forms []string
	sizeIdx := make(map[string]int)
	formSeen := make(map[string]bool)
	for _, e := range entries {
		if _, ok := sizeIdx[e.Size]; !ok {
			sizeIdx[e.Size] = len(sizes)
			sizes = append(sizes, e.Size)
		}
		if !formSeen[e.OrgForm] {
			formSeen[e.OrgForm] = true
			forms = append(forms, e.OrgForm)
		}
	}
	sort.Strings(forms)

	series := make(map[string]plotter.Values, len(forms))
	for _, form := range forms {
		series[form] = make(plotter.Values, len(sizes))
	}
	for _, e := range entries {
		series[e.OrgForm][sizeIdx[e.Size]] += float64(e.Value.OrZero())
	}

	p := newPlot(title)
	p.Y.Label.Text = yLabel
	p.Legend.Top = true
	p.Legend.Left = true

	var below *plotter.BarChart
	for i, form := range forms {
		bars, err := plotter.NewBarChart(series[form], r.BarWidth)
		if err != nil {
			return nil, fmt.Errorf("%s: build series %q: %w", title, form, err)
		}
		bars.Color = plotutil.Color(i)
		bars.LineStyle.Width = vg.Length(0)
		if below != nil {
			bars.StackOn(below)
		}
		p.Add(bars)
		p.Legend.Add(form, bars)
		below = bars
	}

	p.Add(plotter.NewGrid())
	p.NominalX(sizes...)
	rotateTicks(p)

	return r.encode(p, title)
}

func newPlot(title string) *plot.Plot {
	p := plot.New()
	p.Title.Text = title
	p.Title.TextStyle.Font.Size = vg.Points(14)
	return p
}

func (r Renderer) encode(p *plot.Plot, title string) ([]byte, error) {
	wt, err := p.WriterTo(r.Width, r.Height, "svg")
	if err != nil {
		return nil, fmt.Errorf("%s: svg canvas: %w", title, err)
	}
	var buf bytes.Buffer
	if _, err := wt.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("%s: write svg: %w", title, err)
	}
	return buf.Bytes(), nil
}

func rotateTicks(p *plot.Plot) {
	p.X.Tick.Label.Rotation = math.Pi / 6
	p.X.Tick.Label.YAlign = draw.YCenter
	p.X.Tick.Label.XAlign = draw.XRight
}

func maxValue(values plotter.Values) float64 {
	m := 0.0
	for _, v := range values {
		m = math.Max(m, v)
	}
	return m
}

// Bar renders with DefaultRenderer.
func Bar(title, yLabel string, entries []domain.SizeBreakdownEntry) ([]byte, error) {
	return DefaultRenderer.Bar(title, yLabel, entries)
}

// Share renders with DefaultRenderer.
func Share(title string, totals []domain.LegalFormTotal) ([]byte, error) {
	return DefaultRenderer.Share(title, totals)
}

// StackedBar renders with DefaultRenderer.
func StackedBar(title, yLabel string, entries []domain.CrossTabEntry) ([]byte, error) {
	return DefaultRenderer.StackedBar(title, yLabel, entries)
}
