package dataset

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func csvServer(t *testing.T, body string, status int) (*httptest.Server, *int32) {
	t.Helper()
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.WriteHeader(status)
		fmt.Fprint(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv, &hits
}

func TestPrepareCleansAndMemoizes(t *testing.T) {
	body := "repairAmount,tsaEligible\n100,1\n,0\nabc,1\n250.5,0\n"
	srv, hits := csvServer(t, body, http.StatusOK)
	p := NewPreparer(Options{URL: srv.URL})

	if _, ok := p.Cached(); ok {
		t.Fatalf("expected empty cache before first Prepare")
	}
	first, err := p.Prepare(context.Background())
	if err != nil {
		t.Fatalf("Prepare: %v", err)
	}
	if first.Len() != 2 {
		t.Fatalf("expected 2 rows, got %d: %+v", first.Len(), first.Records)
	}
	if first.Records[0] != (Record{RepairAmount: 100, TSAEligible: "1"}) ||
		first.Records[1] != (Record{RepairAmount: 250.5, TSAEligible: "0"}) {
		t.Fatalf("unexpected records: %+v", first.Records)
	}
	if first.SourceRows != 4 || first.Dropped != 2 || first.Sampled {
		t.Fatalf("unexpected accounting: source=%d dropped=%d sampled=%v", first.SourceRows, first.Dropped, first.Sampled)
	}
	if first.Digest == "" {
		t.Fatalf("expected source digest")
	}

	second, err := p.Prepare(context.Background())
	if err != nil {
		t.Fatalf("second Prepare: %v", err)
	}
	if second != first {
		t.Fatalf("expected the cached table on second call")
	}
	if n := atomic.LoadInt32(hits); n != 1 {
		t.Fatalf("expected one fetch, got %d", n)
	}
}

func TestPrepareSamplesAboveCap(t *testing.T) {
	var b strings.Builder
	b.WriteString("repairAmount,tsaEligible\n")
	for i := 0; i < 50; i++ {
		fmt.Fprintf(&b, "%d,%d\n", i, i%2)
	}
	srv, _ := csvServer(t, b.String(), http.StatusOK)

	run := func() *CleanedTable {
		p := NewPreparer(Options{URL: srv.URL, SampleCap: 20})
		tbl, err := p.Prepare(context.Background())
		if err != nil {
			t.Fatalf("Prepare: %v", err)
		}
		return tbl
	}
	a, b2 := run(), run()
	if a.Len() != 20 || !a.Sampled {
		t.Fatalf("expected 20 sampled rows, got %d (sampled=%v)", a.Len(), a.Sampled)
	}
	for i := range a.Records {
		if a.Records[i] != b2.Records[i] {
			t.Fatalf("independent runs diverge at %d", i)
		}
	}
}

func TestPrepareUnavailable(t *testing.T) {
	srv, hits := csvServer(t, "gone", http.StatusNotFound)
	p := NewPreparer(Options{URL: srv.URL})
	_, err := p.Prepare(context.Background())
	if !errors.Is(err, ErrDataUnavailable) {
		t.Fatalf("expected ErrDataUnavailable, got %v", err)
	}
	var ue *UnavailableError
	if !errors.As(err, &ue) || ue.URL != srv.URL {
		t.Fatalf("expected UnavailableError for %s, got %#v", srv.URL, err)
	}
	// failures are not memoized
	if _, err := p.Prepare(context.Background()); err == nil {
		t.Fatalf("expected second failure")
	}
	if n := atomic.LoadInt32(hits); n != 2 {
		t.Fatalf("expected a refetch after failure, got %d fetches", n)
	}
}

func TestPrepareMissingColumnIsUnavailable(t *testing.T) {
	srv, _ := csvServer(t, "repairAmount\n1\n", http.StatusOK)
	_, err := NewPreparer(Options{URL: srv.URL}).Prepare(context.Background())
	if !errors.Is(err, ErrDataUnavailable) {
		t.Fatalf("expected ErrDataUnavailable, got %v", err)
	}
}

func TestPrepareUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()
	_, err := NewPreparer(Options{URL: url}).Prepare(context.Background())
	if !errors.Is(err, ErrDataUnavailable) {
		t.Fatalf("expected ErrDataUnavailable for closed server, got %v", err)
	}
}

func TestGroupsOrderedByKey(t *testing.T) {
	tbl := &CleanedTable{Records: []Record{
		{RepairAmount: 5, TSAEligible: "1"},
		{RepairAmount: 1, TSAEligible: "0"},
		{RepairAmount: 7, TSAEligible: "1"},
	}}
	g := tbl.Groups()
	if len(g) != 2 || g[0].Key != "0" || g[1].Key != "1" {
		t.Fatalf("unexpected groups: %+v", g)
	}
	if len(g[1].Values) != 2 || g[1].Values[0] != 5 || g[1].Values[1] != 7 {
		t.Fatalf("unexpected values for group 1: %+v", g[1].Values)
	}
	if h := tbl.Head(10); len(h) != 3 {
		t.Fatalf("Head should clamp to table size, got %d", len(h))
	}
}

func sampleBody(n int) string {
	var b strings.Builder
	b.WriteString("repairAmount,tsaEligible\n")
	for i := 0; i < n; i++ {
		fmt.Fprintf(&b, "%d,%d\n", i, i%2)
	}
	return b.String()
}

func TestPrepareSeedDefaultsTo42(t *testing.T) {
	body := sampleBody(50)
	srv, _ := csvServer(t, body, http.StatusOK)
	rows, err := ReadRecords(strings.NewReader(body))
	if err != nil {
		t.Fatalf("ReadRecords: %v", err)
	}

	cases := []struct {
		name string
		seed *int64
		want int64
	}{
		{name: "unset", seed: nil, want: DefaultSeed},
		{name: "zero", seed: new(int64), want: 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tbl, err := NewPreparer(Options{URL: srv.URL, SampleCap: 20, Seed: tc.seed}).Prepare(context.Background())
			if err != nil {
				t.Fatalf("Prepare: %v", err)
			}
			want := Sample(Clean(rows), 20, tc.want)
			for i := range want {
				if tbl.Records[i] != want[i] {
					t.Fatalf("row %d got %+v want %+v", i, tbl.Records[i], want[i])
				}
			}
		})
	}
}

// gatedServer serves body only after the returned release func is called;
// started receives once per request.
func gatedServer(t *testing.T, body string) (*httptest.Server, *int32, chan struct{}, func()) {
	t.Helper()
	var hits int32
	started := make(chan struct{}, 64)
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		started <- struct{}{}
		<-release
		fmt.Fprint(w, body)
	}))
	t.Cleanup(srv.Close)
	var once sync.Once
	unblock := func() { once.Do(func() { close(release) }) }
	t.Cleanup(unblock)
	return srv, &hits, started, unblock
}

func TestPrepareConcurrentFirstCallersShareFetch(t *testing.T) {
	srv, hits, started, release := gatedServer(t, sampleBody(10))
	p := NewPreparer(Options{URL: srv.URL})

	const callers = 8
	tables := make([]*CleanedTable, callers)
	errs := make([]error, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			tables[i], errs[i] = p.Prepare(context.Background())
		}(i)
	}
	<-started
	release()
	wg.Wait()

	for i := range tables {
		if errs[i] != nil {
			t.Fatalf("caller %d: %v", i, errs[i])
		}
		if tables[i] != tables[0] {
			t.Fatalf("caller %d got a different table", i)
		}
	}
	if n := atomic.LoadInt32(hits); n != 1 {
		t.Fatalf("expected one fetch for %d callers, got %d", callers, n)
	}
}

func TestCachedDoesNotWaitForFetch(t *testing.T) {
	srv, _, started, release := gatedServer(t, sampleBody(10))
	p := NewPreparer(Options{URL: srv.URL})

	done := make(chan error, 1)
	go func() {
		_, err := p.Prepare(context.Background())
		done <- err
	}()
	<-started

	cached := make(chan bool, 1)
	go func() {
		_, ok := p.Cached()
		cached <- ok
	}()
	select {
	case ok := <-cached:
		if ok {
			t.Fatalf("expected no table while the fetch is in flight")
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("Cached blocked while the fetch is in flight")
	}

	release()
	if err := <-done; err != nil {
		t.Fatalf("Prepare: %v", err)
	}
	if _, ok := p.Cached(); !ok {
		t.Fatalf("expected table after the fetch completes")
	}
}
