package dataset

import (
	"math"
	"strconv"
	"strings"
)

// naValues are the tokens read as missing, the same default set a pandas
// read_csv applies.
var naValues = map[string]struct{}{
	"": {}, "#N/A": {}, "#N/A N/A": {}, "#NA": {}, "-1.#IND": {}, "-1.#QNAN": {},
	"-NaN": {}, "-nan": {}, "1.#IND": {}, "1.#QNAN": {}, "<NA>": {}, "N/A": {},
	"NA": {}, "NULL": {}, "NaN": {}, "None": {}, "n/a": {}, "nan": {}, "null": {},
}

// IsMissing reports whether a raw field counts as null.
func IsMissing(s string) bool {
	_, ok := naValues[strings.TrimSpace(s)]
	return ok
}

// DropMissing removes rows where either field is missing.
func DropMissing(rows []RawRecord) []RawRecord {
	out := make([]RawRecord, 0, len(rows))
	for _, r := range rows {
		if IsMissing(r.RepairAmount) || IsMissing(r.TSAEligible) {
			continue
		}
		out = append(out, r)
	}
	return out
}

// ParseAmount coerces a raw repair amount. Non-finite results and hex
// notation are rejected.
func ParseAmount(s string) (float64, bool) {
	raw := strings.TrimSpace(s)
	if raw == "" || strings.ContainsAny(raw, "xX_") {
		return 0, false
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// Coerce parses repair amounts and drops rows that fail to parse.
func Coerce(rows []RawRecord) []Record {
	out := make([]Record, 0, len(rows))
	for _, r := range rows {
		amt, ok := ParseAmount(r.RepairAmount)
		if !ok {
			continue
		}
		out = append(out, Record{RepairAmount: amt, TSAEligible: EligibilityLabel(r.TSAEligible)})
	}
	return out
}

// EligibilityLabel normalizes the indicator so "1", "1.0" and " 1" group
// together. Non-numeric values are kept as trimmed text.
func EligibilityLabel(s string) string {
	raw := strings.TrimSpace(s)
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return raw
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// Clean applies null filtering followed by numeric coercion.
func Clean(rows []RawRecord) []Record {
	return Coerce(DropMissing(rows))
}
