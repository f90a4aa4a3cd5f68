package dataset

import (
	"context"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// Options controls how the preparer fetches and bounds the dataset.
type Options struct {
	URL       string
	SampleCap int
	// Seed of the bounded sample; nil means DefaultSeed. Zero is a valid seed.
	Seed *int64
	// HTTPTimeout of 0 means no client timeout; the caller's context still applies.
	HTTPTimeout time.Duration
	HTTPClient  *http.Client
	Logger      *zap.Logger
}

// DefaultOptions returns the fixed source, cap and seed of the dashboard.
func DefaultOptions() Options {
	seed := DefaultSeed
	return Options{
		URL:       DefaultSourceURL,
		SampleCap: DefaultSampleCap,
		Seed:      &seed,
	}
}

// Preparer builds the CleanedTable once and serves the cached copy afterwards.
type Preparer struct {
	opt    Options
	seed   int64
	client *http.Client
	logger *zap.Logger

	// fetchMu serializes builds; table is published once a build succeeds
	// so readers never wait on an in-flight fetch.
	fetchMu sync.Mutex
	table   atomic.Pointer[CleanedTable]
}

// NewPreparer returns a preparer; zero-valued options fall back to defaults.
func NewPreparer(opt Options) *Preparer {
	def := DefaultOptions()
	if opt.URL == "" {
		opt.URL = def.URL
	}
	if opt.SampleCap <= 0 {
		opt.SampleCap = def.SampleCap
	}
	if opt.Seed == nil {
		opt.Seed = def.Seed
	}
	client := opt.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: opt.HTTPTimeout}
	}
	logger := opt.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Preparer{opt: opt, seed: *opt.Seed, client: client, logger: logger}
}

// URL returns the configured source location.
func (p *Preparer) URL() string { return p.opt.URL }

// Cached returns the table if a previous Prepare call succeeded.
// It does not block on a fetch in progress.
func (p *Preparer) Cached() (*CleanedTable, bool) {
	t := p.table.Load()
	return t, t != nil
}

// Prepare fetches, cleans and bounds the dataset on first use and returns
// the same table on every later call. Failures are not cached, so a later
// call fetches again. Concurrent first callers share a single fetch.
func (p *Preparer) Prepare(ctx context.Context) (*CleanedTable, error) {
	if t := p.table.Load(); t != nil {
		return t, nil
	}
	p.fetchMu.Lock()
	defer p.fetchMu.Unlock()
	if t := p.table.Load(); t != nil {
		return t, nil
	}

	start := time.Now()
	p.logger.Info("fetching dataset", zap.String("url", p.opt.URL))
	src, err := fetch(ctx, p.client, p.opt.URL)
	if err != nil {
		p.logger.Error("dataset unavailable", zap.String("url", p.opt.URL), zap.Error(err))
		return nil, err
	}

	records, dropped := Process(src.Rows, p.opt.SampleCap, p.seed)
	t := &CleanedTable{
		Records:    records,
		SourceURL:  p.opt.URL,
		Digest:     src.Digest,
		SourceRows: len(src.Rows),
		Dropped:    dropped,
		Sampled:    len(src.Rows)-dropped > len(records),
		PreparedAt: time.Now(),
	}
	p.logger.Info("dataset prepared",
		zap.Int("source_rows", t.SourceRows),
		zap.Int("dropped", t.Dropped),
		zap.Int("rows", t.Len()),
		zap.Bool("sampled", t.Sampled),
		zap.String("digest", t.Digest),
		zap.Duration("elapsed", time.Since(start)))
	p.table.Store(t)
	return t, nil
}

// Process runs the cleaning and bounding steps over already fetched rows.
// It returns the bounded records and how many rows were excluded as
// missing or non-numeric.
func Process(rows []RawRecord, sampleCap int, seed int64) ([]Record, int) {
	cleaned := Clean(rows)
	dropped := len(rows) - len(cleaned)
	return Sample(cleaned, sampleCap, seed), dropped
}
