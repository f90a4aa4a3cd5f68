package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/KaramelBytes/reliefdash/internal/charts"
	cfgpkg "github.com/KaramelBytes/reliefdash/internal/config"
	"github.com/KaramelBytes/reliefdash/internal/dataset"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gonum.org/v1/plot/vg"
)

var (
	// Global flags
	cfgFile string
	debug   bool
	// Overrides for config values (applied only when set)
	flagHTTPTimeoutSec int
	flagDataURL        string

	// Loaded configuration
	cfg    *cfgpkg.Global
	logger = zap.NewNop()
)

var rootCmd = &cobra.Command{
	Use:          "reliefdash",
	Short:        "FEMA disaster relief dashboard",
	Long:         `reliefdash loads the FEMA Individual Assistance housing registrants extract, keeps repairAmount and tsaEligible, and renders a histogram, a boxplot by TSA eligibility and a short insight.`,
	SilenceUsage: true,
}

// Execute is the entry point called by main.main()
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "✗ Error:", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(loadConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.reliefdash/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
	rootCmd.PersistentFlags().IntVar(&flagHTTPTimeoutSec, "http-timeout", 0, "dataset fetch timeout in seconds (overrides config)")
	rootCmd.PersistentFlags().StringVar(&flagDataURL, "data-url", "", "dataset CSV location (overrides config)")
}

func loadConfig() {
	logger = newLogger(debug)

	c, err := cfgpkg.Load(cfgFile)
	if err != nil {
		// Non-fatal: commands fall back to built-in defaults
		fmt.Fprintf(os.Stderr, "⚠ Warning: failed to load config: %v\n", err)
		return
	}
	cfg = c

	f := rootCmd.PersistentFlags()
	if f.Changed("http-timeout") && flagHTTPTimeoutSec > 0 {
		cfg.HTTPTimeoutSec = flagHTTPTimeoutSec
	}
	if f.Changed("data-url") && flagDataURL != "" {
		cfg.DataURL = flagDataURL
	}
}

func newLogger(debug bool) *zap.Logger {
	var (
		l   *zap.Logger
		err error
	)
	if debug {
		l, err = zap.NewDevelopment()
	} else {
		l, err = zap.NewProduction()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "⚠ Warning: failed to build logger: %v\n", err)
		return zap.NewNop()
	}
	return l
}

// effectiveConfig returns the loaded config, or defaults when loading failed.
func effectiveConfig() *cfgpkg.Global {
	if cfg != nil {
		return cfg
	}
	return &cfgpkg.Global{
		DataURL:       dataset.DefaultSourceURL,
		SampleCap:     dataset.DefaultSampleCap,
		SampleSeed:    dataset.DefaultSeed,
		HistogramBins: 30,
		PreviewRows:   5,
		ChartWidthIn:  8,
		ChartHeightIn: 5,
		ListenAddr:    ":8501",
		OutputDir:     "dashboard_out",
	}
}

// newPreparer builds the process-wide dataset preparer from config.
func newPreparer(c *cfgpkg.Global) *dataset.Preparer {
	seed := c.SampleSeed
	return dataset.NewPreparer(dataset.Options{
		URL:         c.DataURL,
		SampleCap:   c.SampleCap,
		Seed:        &seed,
		HTTPTimeout: time.Duration(c.HTTPTimeoutSec) * time.Second,
		Logger:      logger,
	})
}

func chartOptions(c *cfgpkg.Global, format string) charts.Options {
	return charts.Options{
		Bins:   c.HistogramBins,
		Width:  vg.Length(c.ChartWidthIn) * vg.Inch,
		Height: vg.Length(c.ChartHeightIn) * vg.Inch,
		Format: format,
	}
}
