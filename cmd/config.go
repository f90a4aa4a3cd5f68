package cmd

import (
	"fmt"
	"strconv"

	cfgpkg "github.com/KaramelBytes/reliefdash/internal/config"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or set reliefdash configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg == nil {
			fmt.Println("No config loaded")
			return nil
		}
		fmt.Printf("data_url: %s\n", cfg.DataURL)
		fmt.Printf("sample_cap: %d\n", cfg.SampleCap)
		fmt.Printf("sample_seed: %d\n", cfg.SampleSeed)
		fmt.Printf("histogram_bins: %d\n", cfg.HistogramBins)
		fmt.Printf("preview_rows: %d\n", cfg.PreviewRows)
		fmt.Printf("chart_width_in: %.2f\n", cfg.ChartWidthIn)
		fmt.Printf("chart_height_in: %.2f\n", cfg.ChartHeightIn)
		fmt.Printf("listen_addr: %s\n", cfg.ListenAddr)
		fmt.Printf("output_dir: %s\n", cfg.OutputDir)
		if cfg.HTTPTimeoutSec > 0 {
			fmt.Printf("http_timeout_sec: %d\n", cfg.HTTPTimeoutSec)
		}
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a config value and save to disk",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, val := args[0], args[1]
		if cfg == nil {
			c, err := cfgpkg.Load(cfgFile)
			if err != nil {
				return err
			}
			cfg = c
		}
		switch key {
		case "data_url":
			cfg.DataURL = val
		case "sample_cap":
			i, err := strconv.Atoi(val)
			if err != nil || i <= 0 {
				return fmt.Errorf("invalid positive int for sample_cap: %v", val)
			}
			cfg.SampleCap = i
		case "sample_seed":
			i, err := strconv.ParseInt(val, 10, 64)
			if err != nil {
				return fmt.Errorf("invalid int for sample_seed: %w", err)
			}
			cfg.SampleSeed = i
		case "histogram_bins":
			i, err := strconv.Atoi(val)
			if err != nil || i <= 0 {
				return fmt.Errorf("invalid positive int for histogram_bins: %v", val)
			}
			cfg.HistogramBins = i
		case "preview_rows":
			i, err := strconv.Atoi(val)
			if err != nil || i <= 0 {
				return fmt.Errorf("invalid positive int for preview_rows: %v", val)
			}
			cfg.PreviewRows = i
		case "chart_width_in", "chart_height_in":
			f, err := strconv.ParseFloat(val, 64)
			if err != nil || f <= 0 {
				return fmt.Errorf("invalid positive float for %s: %v", key, val)
			}
			if key == "chart_width_in" {
				cfg.ChartWidthIn = f
			} else {
				cfg.ChartHeightIn = f
			}
		case "listen_addr":
			cfg.ListenAddr = val
		case "output_dir":
			cfg.OutputDir = val
		case "http_timeout_sec":
			i, err := strconv.Atoi(val)
			if err != nil || i < 0 {
				return fmt.Errorf("invalid int for http_timeout_sec: %v", val)
			}
			cfg.HTTPTimeoutSec = i
		default:
			return fmt.Errorf("unknown key: %s", key)
		}
		if err := cfgpkg.Save(cfg, cfgFile); err != nil {
			return err
		}
		fmt.Println("Saved config")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
}
