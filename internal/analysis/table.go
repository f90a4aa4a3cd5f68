package analysis

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"gonum.org/v1/plot/plotter"

	"github.com/KaramelBytes/reliefdash/internal/dataset"
)

// Insight is the static explanatory text shown under the charts.
const Insight = "Based off of the data, TSA-Eligible households tend to have higher repair amounts than Non-Eligible households. This fits TSA's goals of helping those in greater need."

// Options controls summary behavior.
type Options struct {
	// SampleRows determines how many preview rows to include in the report.
	SampleRows int
	// Bins is the histogram bin count.
	Bins int
}

// DefaultOptions returns the dashboard defaults.
func DefaultOptions() Options {
	return Options{
		SampleRows: 5,
		Bins:       30,
	}
}

// Report is a markdown-friendly summary of a cleaned table.
type Report struct {
	Name       string `json:"source"`
	Digest     string `json:"digest"`
	SourceRows int    `json:"source_rows"`
	Dropped    int    `json:"dropped"`
	Rows       int    `json:"rows"`
	Sampled    bool   `json:"sampled"`

	Amount   NumSummary       `json:"repair_amount"`
	Groups   []GroupResult    `json:"groups"`
	Bins     []Bin            `json:"histogram"`
	Samples  []dataset.Record `json:"preview"`
	Warnings []string         `json:"warnings,omitempty"`
}

// NumSummary holds streaming statistics for one numeric column.
type NumSummary struct {
	Count int     `json:"count"`
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
	Mean  float64 `json:"mean"`
	Std   float64 `json:"std"`
}

// GroupResult is the boxplot summary for one tsaEligible value.
type GroupResult struct {
	Key  string     `json:"tsa_eligible"`
	Size int        `json:"size"`
	Mean float64    `json:"mean"`
	Box  FiveNumber `json:"box"`
}

// FiveNumber is the min/quartiles/max summary a boxplot draws.
type FiveNumber struct {
	Min    float64 `json:"min"`
	Q1     float64 `json:"q1"`
	Median float64 `json:"median"`
	Q3     float64 `json:"q3"`
	Max    float64 `json:"max"`
}

// Bin is one equal-width histogram bucket; the last bucket includes Hi.
type Bin struct {
	Lo    float64 `json:"lo"`
	Hi    float64 `json:"hi"`
	Count int     `json:"count"`
}

// Summarize computes the report for t.
func Summarize(t *dataset.CleanedTable, opt Options) *Report {
	sampleRows := opt.SampleRows
	if sampleRows <= 0 {
		sampleRows = 5
	}
	bins := opt.Bins
	if bins <= 0 {
		bins = 30
	}
	rep := &Report{}
	if t == nil {
		return rep
	}
	rep.Name = t.SourceURL
	rep.Digest = t.Digest
	rep.SourceRows = t.SourceRows
	rep.Dropped = t.Dropped
	rep.Rows = t.Len()
	rep.Sampled = t.Sampled

	amounts := t.Amounts()
	rep.Amount = describe(amounts)
	rep.Bins = Histogram(amounts, bins)
	for _, g := range t.Groups() {
		gr := GroupResult{Key: g.Key, Size: len(g.Values), Box: Quartiles(g.Values)}
		gr.Mean = describe(g.Values).Mean
		rep.Groups = append(rep.Groups, gr)
	}
	head := t.Head(sampleRows)
	rep.Samples = make([]dataset.Record, len(head))
	copy(rep.Samples, head)

	if rep.Dropped > 0 {
		rep.Warnings = append(rep.Warnings, fmt.Sprintf("excluded %d/%d rows with a missing or non-numeric value", rep.Dropped, rep.SourceRows))
	}
	if rep.Sampled {
		rep.Warnings = append(rep.Warnings, fmt.Sprintf("sampled %d of %d usable rows", rep.Rows, rep.SourceRows-rep.Dropped))
	}
	return rep
}

// describe computes count, range, mean and sample std via Welford.
func describe(vals []float64) NumSummary {
	s := NumSummary{Min: math.Inf(1), Max: math.Inf(-1)}
	var m2 float64
	for _, x := range vals {
		s.Count++
		if x < s.Min {
			s.Min = x
		}
		if x > s.Max {
			s.Max = x
		}
		delta := x - s.Mean
		s.Mean += delta / float64(s.Count)
		m2 += delta * (x - s.Mean)
	}
	if s.Count == 0 {
		return NumSummary{}
	}
	if s.Count > 1 {
		s.Std = math.Sqrt(m2 / float64(s.Count-1))
	}
	return s
}

// Histogram buckets vals into n equal-width bins spanning [min, max] with
// the same binning the rendered chart uses. A degenerate range collapses to
// a single bin.
func Histogram(vals []float64, n int) []Bin {
	if len(vals) == 0 {
		return nil
	}
	if n < 1 {
		n = 1
	}
	h, err := plotter.NewHist(plotter.Values(vals), n)
	if err != nil {
		return nil
	}
	out := make([]Bin, len(h.Bins))
	for i, b := range h.Bins {
		out[i] = Bin{Lo: b.Min, Hi: b.Max, Count: int(b.Weight)}
	}
	return out
}

// Quartiles returns the five-number summary using linear interpolation.
func Quartiles(vals []float64) FiveNumber {
	if len(vals) == 0 {
		return FiveNumber{}
	}
	cp := make([]float64, len(vals))
	copy(cp, vals)
	sort.Float64s(cp)
	return FiveNumber{
		Min:    cp[0],
		Q1:     quantile(cp, 0.25),
		Median: quantile(cp, 0.5),
		Q3:     quantile(cp, 0.75),
		Max:    cp[len(cp)-1],
	}
}

func quantile(sorted []float64, q float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	if q <= 0 {
		return sorted[0]
	}
	if q >= 1 {
		return sorted[len(sorted)-1]
	}
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	w := pos - float64(lo)
	return sorted[lo]*(1-w) + sorted[hi]*w
}

// Markdown renders the summary as the text half of the dashboard.
func (r *Report) Markdown() string {
	var b strings.Builder
	b.WriteString("[DATASET SUMMARY]\n")
	if r.Name != "" {
		b.WriteString(fmt.Sprintf("Source: %s\n", r.Name))
	}
	if r.Digest != "" {
		b.WriteString(fmt.Sprintf("Digest: %s\n", r.Digest))
	}
	if r.Sampled {
		b.WriteString(fmt.Sprintf("Rows: %d (sampled from %d usable)\n", r.Rows, r.SourceRows-r.Dropped))
	} else {
		b.WriteString(fmt.Sprintf("Rows: %d\n", r.Rows))
	}
	b.WriteString("\n[REPAIR AMOUNT]\n")
	if r.Amount.Count > 0 {
		b.WriteString(fmt.Sprintf("- count %d, min %.4g, max %.4g, mean %.4g, std %.4g\n",
			r.Amount.Count, r.Amount.Min, r.Amount.Max, r.Amount.Mean, r.Amount.Std))
	} else {
		b.WriteString("- no rows\n")
	}
	if len(r.Groups) > 0 {
		b.WriteString("\n[BY TSA ELIGIBILITY]\n")
		for _, g := range r.Groups {
			b.WriteString(fmt.Sprintf("- tsaEligible=%s (n=%d): median %.4g (q1 %.4g, q3 %.4g), mean %.4g\n",
				SafeVal(g.Key), g.Size, g.Box.Median, g.Box.Q1, g.Box.Q3, g.Mean))
		}
	}
	if len(r.Samples) > 0 {
		b.WriteString("\n[DATA PREVIEW]\n")
		b.WriteString("| repairAmount | tsaEligible |\n")
		b.WriteString("| --- | --- |\n")
		for _, s := range r.Samples {
			b.WriteString(fmt.Sprintf("| %g | %s |\n", s.RepairAmount, SafeVal(s.TSAEligible)))
		}
	}
	if len(r.Warnings) > 0 {
		b.WriteString("\n[NOTES]\n")
		for _, w := range r.Warnings {
			b.WriteString("- ")
			b.WriteString(w)
			b.WriteString("\n")
		}
	}
	return b.String()
}

// SafeVal flattens a value so it fits in one markdown table cell.
func SafeVal(s string) string { return strings.ReplaceAll(strings.ReplaceAll(s, "\n", " "), "|", "/") }
