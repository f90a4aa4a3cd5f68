package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/KaramelBytes/reliefdash/internal/dataset"
)

// Global configuration structure.
type Global struct {
	DataURL    string `mapstructure:"data_url" yaml:"data_url"`
	SampleCap  int    `mapstructure:"sample_cap" yaml:"sample_cap"`
	SampleSeed int64  `mapstructure:"sample_seed" yaml:"sample_seed"`

	HistogramBins int     `mapstructure:"histogram_bins" yaml:"histogram_bins"`
	PreviewRows   int     `mapstructure:"preview_rows" yaml:"preview_rows"`
	ChartWidthIn  float64 `mapstructure:"chart_width_in" yaml:"chart_width_in"`
	ChartHeightIn float64 `mapstructure:"chart_height_in" yaml:"chart_height_in"`

	ListenAddr string `mapstructure:"listen_addr" yaml:"listen_addr"`
	OutputDir  string `mapstructure:"output_dir" yaml:"output_dir"`

	// 0 disables the client timeout; the fetch then waits as long as the source does.
	HTTPTimeoutSec int `mapstructure:"http_timeout_sec" yaml:"http_timeout_sec"`
}

func defaultDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, ".reliefdash"), nil
}

// Save writes the given configuration to the cfgFile path. If cfgFile is empty,
// it writes to ~/.reliefdash/config.yaml, creating the directory if necessary.
func Save(c *Global, cfgFile string) error {
	var path string
	if cfgFile != "" {
		path = cfgFile
	} else {
		dir, err := defaultDir()
		if err != nil {
			return err
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("mkdir config dir: %w", err)
		}
		path = filepath.Join(dir, "config.yaml")
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Load loads configuration from file, env, and defaults.
// Precedence: env > config file > defaults. A .env file in the working
// directory is loaded first when present.
func Load(cfgFile string) (*Global, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("RELIEFDASH")
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("data_url", dataset.DefaultSourceURL)
	v.SetDefault("sample_cap", dataset.DefaultSampleCap)
	v.SetDefault("sample_seed", dataset.DefaultSeed)
	v.SetDefault("histogram_bins", 30)
	v.SetDefault("preview_rows", 5)
	v.SetDefault("chart_width_in", 8.0)
	v.SetDefault("chart_height_in", 5.0)
	v.SetDefault("listen_addr", ":8501")
	v.SetDefault("output_dir", "dashboard_out")
	v.SetDefault("http_timeout_sec", 0)

	// Config file
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		dir, err := defaultDir()
		if err != nil {
			return nil, err
		}
		v.AddConfigPath(dir)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
	// optional read
	_ = v.ReadInConfig()

	var c Global
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &c, nil
}
