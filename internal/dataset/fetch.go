package dataset

import (
	"context"
	"encoding/csv"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// source is the raw projection of the fetched dataset.
type source struct {
	Rows   []RawRecord
	Digest string
}

// fetch downloads url and projects it to the two required columns.
// Every failure is reported as an UnavailableError.
func fetch(ctx context.Context, client *http.Client, url string) (*source, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, unavailable(url, fmt.Errorf("build request: %w", err))
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, unavailable(url, fmt.Errorf("fetch: %w", err))
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return nil, unavailable(url, fmt.Errorf("fetch: unexpected status %s: %s", resp.Status, strings.TrimSpace(string(b))))
	}

	h := xxhash.New()
	body := io.TeeReader(resp.Body, h)
	rows, err := ReadRecords(body)
	if err != nil {
		return nil, unavailable(url, err)
	}
	// the digest covers the whole payload, including anything after the last record
	if _, err := io.Copy(io.Discard, body); err != nil {
		return nil, unavailable(url, fmt.Errorf("drain body: %w", err))
	}
	return &source{Rows: rows, Digest: hex.EncodeToString(h.Sum(nil))}, nil
}

// ReadRecords parses CSV from r keeping only repairAmount and tsaEligible.
// Short rows are padded so absent trailing fields read as missing.
func ReadRecords(r io.Reader) ([]RawRecord, error) {
	cr := csv.NewReader(r)
	cr.ReuseRecord = true
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("read header: empty dataset")
		}
		return nil, fmt.Errorf("read header: %w", err)
	}
	amountIdx, eligIdx := -1, -1
	for i, h := range header {
		name := strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		switch name {
		case ColRepairAmount:
			amountIdx = i
		case ColTSAEligible:
			eligIdx = i
		}
	}
	var missing []string
	if amountIdx < 0 {
		missing = append(missing, ColRepairAmount)
	}
	if eligIdx < 0 {
		missing = append(missing, ColTSAEligible)
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("missing columns: %s", strings.Join(missing, ", "))
	}

	var rows []RawRecord
	for {
		rec, err := cr.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("read row %d: %w", len(rows)+1, err)
		}
		rows = append(rows, RawRecord{
			RepairAmount: field(rec, amountIdx),
			TSAEligible:  field(rec, eligIdx),
		})
	}
	return rows, nil
}

func field(rec []string, i int) string {
	if i < len(rec) {
		return rec[i]
	}
	return ""
}
