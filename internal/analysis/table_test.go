package analysis

import (
	"math"
	"strings"
	"testing"

	"github.com/KaramelBytes/reliefdash/internal/dataset"
)

func sampleTable() *dataset.CleanedTable {
	return &dataset.CleanedTable{
		SourceURL:  "https://example.test/fema.csv",
		Digest:     "abc123",
		SourceRows: 8,
		Dropped:    2,
		Records: []dataset.Record{
			{RepairAmount: 100, TSAEligible: "1"},
			{RepairAmount: 250.5, TSAEligible: "0"},
			{RepairAmount: 400, TSAEligible: "1"},
			{RepairAmount: 50, TSAEligible: "0"},
			{RepairAmount: 1000, TSAEligible: "1"},
			{RepairAmount: 0, TSAEligible: "0"},
		},
	}
}

func TestSummarizeAndMarkdown(t *testing.T) {
	rep := Summarize(sampleTable(), Options{SampleRows: 3, Bins: 30})
	if rep.Rows != 6 || rep.Amount.Count != 6 {
		t.Fatalf("unexpected row counts: %+v", rep)
	}
	if rep.Amount.Min != 0 || rep.Amount.Max != 1000 {
		t.Fatalf("unexpected range: %+v", rep.Amount)
	}
	wantMean := (100 + 250.5 + 400 + 50 + 1000 + 0) / 6
	if math.Abs(rep.Amount.Mean-wantMean) > 1e-9 {
		t.Fatalf("mean: want %v, got %v", wantMean, rep.Amount.Mean)
	}
	if len(rep.Bins) != 30 {
		t.Fatalf("expected 30 bins, got %d", len(rep.Bins))
	}
	if len(rep.Samples) != 3 {
		t.Fatalf("expected 3 preview rows, got %d", len(rep.Samples))
	}
	if len(rep.Groups) != 2 || rep.Groups[0].Key != "0" || rep.Groups[1].Key != "1" {
		t.Fatalf("unexpected groups: %+v", rep.Groups)
	}
	if rep.Groups[1].Box.Median != 400 {
		t.Fatalf("expected median 400 for eligible group, got %v", rep.Groups[1].Box.Median)
	}

	md := rep.Markdown()
	for _, want := range []string{
		"[DATASET SUMMARY]",
		"Source: https://example.test/fema.csv",
		"Rows: 6",
		"tsaEligible=1 (n=3)",
		"| 100 | 1 |",
		"excluded 2/8 rows",
	} {
		if !strings.Contains(md, want) {
			t.Fatalf("markdown missing %q:\n%s", want, md)
		}
	}
}

func TestHistogramCountsEveryValue(t *testing.T) {
	vals := []float64{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10}
	bins := Histogram(vals, 5)
	if len(bins) != 5 {
		t.Fatalf("expected 5 bins, got %d", len(bins))
	}
	total := 0
	for _, b := range bins {
		total += b.Count
	}
	if total != len(vals) {
		t.Fatalf("expected %d counted values, got %d", len(vals), total)
	}
	if bins[4].Count != 3 { // 8, 9 and the max value 10
		t.Fatalf("expected max to land in last bin, got %+v", bins[4])
	}
}

func TestHistogramDegenerate(t *testing.T) {
	if Histogram(nil, 30) != nil {
		t.Fatalf("expected nil bins for empty input")
	}
	bins := Histogram([]float64{5, 5, 5}, 30)
	if len(bins) != 1 || bins[0].Count != 3 {
		t.Fatalf("expected a single bin with 3 values, got %+v", bins)
	}
}

func TestQuartiles(t *testing.T) {
	got := Quartiles([]float64{4, 1, 3, 2, 5})
	want := FiveNumber{Min: 1, Q1: 2, Median: 3, Q3: 4, Max: 5}
	if got != want {
		t.Fatalf("Quartiles: want %+v, got %+v", want, got)
	}
	if q := quantile([]float64{1, 2}, 0.5); q != 1.5 {
		t.Fatalf("expected interpolated median 1.5, got %v", q)
	}
}

func TestSummarizeEmptyTable(t *testing.T) {
	rep := Summarize(&dataset.CleanedTable{}, DefaultOptions())
	if rep.Rows != 0 || rep.Amount.Count != 0 || len(rep.Bins) != 0 {
		t.Fatalf("expected empty report, got %+v", rep)
	}
	if !strings.Contains(rep.Markdown(), "no rows") {
		t.Fatalf("expected empty marker in markdown")
	}
}
