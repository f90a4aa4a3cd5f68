package charts

import (
	"errors"
	"fmt"
	"image/color"
	"io"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/KaramelBytes/reliefdash/internal/dataset"
)

// ErrNoData is returned when a chart would have nothing to draw.
var ErrNoData = errors.New("no rows to plot")

// Labels are the axis titles used for each column.
var Labels = map[string]string{
	dataset.ColTSAEligible:  "TSA Eligible (1 = Yes, 0 = No)",
	dataset.ColRepairAmount: "Repair Amount",
}

const (
	HistogramTitle = "Distribution of Repair Amounts"
	BoxPlotTitle   = "Repair Amount by TSA Eligibility"
)

// Options controls chart size and format.
type Options struct {
	Bins   int
	Width  vg.Length
	Height vg.Length
	// Format is any extension gonum/plot understands: png, svg, pdf, jpg.
	Format string
}

// DefaultOptions returns 30 bins on an 8x5 inch PNG.
func DefaultOptions() Options {
	return Options{Bins: 30, Width: 8 * vg.Inch, Height: 5 * vg.Inch, Format: "png"}
}

func (o Options) withDefaults() Options {
	def := DefaultOptions()
	if o.Bins <= 0 {
		o.Bins = def.Bins
	}
	if o.Width <= 0 {
		o.Width = def.Width
	}
	if o.Height <= 0 {
		o.Height = def.Height
	}
	if o.Format == "" {
		o.Format = def.Format
	}
	return o
}

var barColor = color.RGBA{R: 99, G: 110, B: 250, A: 255}

// Histogram builds the repair-amount distribution chart.
func Histogram(t *dataset.CleanedTable, bins int) (*plot.Plot, error) {
	h, err := newHistogram(t.Amounts(), bins)
	if err != nil {
		return nil, err
	}
	p := plot.New()
	p.Title.Text = HistogramTitle
	// the histogram keeps the raw column name, only the boxplot is relabelled
	p.X.Label.Text = dataset.ColRepairAmount
	p.Y.Label.Text = "count"
	p.Add(h)
	return p, nil
}

func newHistogram(vals []float64, bins int) (*plotter.Histogram, error) {
	if len(vals) == 0 {
		return nil, ErrNoData
	}
	h, err := plotter.NewHist(plotter.Values(vals), bins)
	if err != nil {
		return nil, fmt.Errorf("histogram: %w", err)
	}
	h.FillColor = barColor
	h.LineStyle.Width = vg.Points(0.5)
	return h, nil
}

// BoxPlot builds one box per tsaEligible value, ordered by key.
func BoxPlot(t *dataset.CleanedTable) (*plot.Plot, error) {
	groups := t.Groups()
	if len(groups) == 0 {
		return nil, ErrNoData
	}
	p := plot.New()
	p.Title.Text = BoxPlotTitle
	p.X.Label.Text = Labels[dataset.ColTSAEligible]
	p.Y.Label.Text = Labels[dataset.ColRepairAmount]
	names := make([]string, 0, len(groups))
	for i, g := range groups {
		box, err := plotter.NewBoxPlot(vg.Points(40), float64(i), plotter.Values(g.Values))
		if err != nil {
			return nil, fmt.Errorf("boxplot %s=%s: %w", dataset.ColTSAEligible, g.Key, err)
		}
		box.FillColor = barColor
		p.Add(box)
		names = append(names, g.Key)
	}
	p.NominalX(names...)
	return p, nil
}

// Render writes p to w in the configured size and format.
func Render(p *plot.Plot, w io.Writer, opt Options) error {
	opt = opt.withDefaults()
	wt, err := p.WriterTo(opt.Width, opt.Height, opt.Format)
	if err != nil {
		return fmt.Errorf("render %s: %w", opt.Format, err)
	}
	if _, err := wt.WriteTo(w); err != nil {
		return fmt.Errorf("write chart: %w", err)
	}
	return nil
}

// Kind names a dashboard chart.
type Kind string

const (
	KindHistogram Kind = "histogram"
	KindBoxPlot   Kind = "boxplot"
)

// Build returns the named chart for t.
func Build(kind Kind, t *dataset.CleanedTable, opt Options) (*plot.Plot, error) {
	opt = opt.withDefaults()
	switch kind {
	case KindHistogram:
		return Histogram(t, opt.Bins)
	case KindBoxPlot:
		return BoxPlot(t)
	default:
		return nil, fmt.Errorf("unknown chart: %s", kind)
	}
}
