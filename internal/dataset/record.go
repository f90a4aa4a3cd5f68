package dataset

import (
	"sort"
	"time"
)

const (
	// ColRepairAmount is the monetary column plotted by the dashboard.
	ColRepairAmount = "repairAmount"
	// ColTSAEligible is the Transitional Sheltering Assistance indicator.
	ColTSAEligible = "tsaEligible"

	// DefaultSourceURL is the public FEMA housing registrants extract.
	DefaultSourceURL = "https://storage.googleapis.com/info_450/IndividualAssistanceHousingRegistrantsLargeDisasters%20(1).csv"
	// DefaultSampleCap bounds the number of rows handed to the charts.
	DefaultSampleCap = 200_000
	// DefaultSeed makes the bounded sample reproducible.
	DefaultSeed int64 = 42
)

// RawRecord is a source row projected to the two fields of interest.
// Values are kept as read from the CSV.
type RawRecord struct {
	RepairAmount string
	TSAEligible  string
}

// Record is a cleaned row.
type Record struct {
	RepairAmount float64 `json:"repairAmount"`
	TSAEligible  string  `json:"tsaEligible"`
}

// CleanedTable is the bounded, chart-ready output of the preparer.
// It must not be modified once returned.
type CleanedTable struct {
	Records []Record

	SourceURL  string
	Digest     string // xxhash of the fetched bytes
	SourceRows int
	Dropped    int  // rows removed as missing or non-numeric
	Sampled    bool // true when the cap was applied
	PreparedAt time.Time
}

// Len returns the number of records.
func (t *CleanedTable) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Records)
}

// Head returns up to n leading records.
func (t *CleanedTable) Head(n int) []Record {
	if t == nil || n <= 0 {
		return nil
	}
	if n > len(t.Records) {
		n = len(t.Records)
	}
	return t.Records[:n]
}

// Amounts returns every repair amount in table order.
func (t *CleanedTable) Amounts() []float64 {
	if t == nil {
		return nil
	}
	out := make([]float64, len(t.Records))
	for i, r := range t.Records {
		out[i] = r.RepairAmount
	}
	return out
}

// Group holds the repair amounts for one tsaEligible value.
type Group struct {
	Key    string
	Values []float64
}

// Groups partitions repair amounts by tsaEligible, ordered by key.
func (t *CleanedTable) Groups() []Group {
	if t == nil {
		return nil
	}
	idx := map[string]int{}
	var groups []Group
	for _, r := range t.Records {
		i, ok := idx[r.TSAEligible]
		if !ok {
			i = len(groups)
			idx[r.TSAEligible] = i
			groups = append(groups, Group{Key: r.TSAEligible})
		}
		groups[i].Values = append(groups[i].Values, r.RepairAmount)
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i].Key < groups[j].Key })
	return groups
}
