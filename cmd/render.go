package cmd

import (
	"bytes"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/KaramelBytes/reliefdash/internal/analysis"
	"github.com/KaramelBytes/reliefdash/internal/charts"
	"github.com/KaramelBytes/reliefdash/internal/dashboard"
	"github.com/KaramelBytes/reliefdash/internal/utils"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	renderOutDir string
	renderFormat string
)

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Write the dashboard charts and a markdown page to a directory",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c := effectiveConfig()
		outDir := c.OutputDir
		if renderOutDir != "" {
			outDir = renderOutDir
		}
		format := strings.ToLower(strings.TrimPrefix(renderFormat, "."))
		switch format {
		case "png", "svg", "pdf", "jpg", "jpeg":
		default:
			return fmt.Errorf("unsupported --format: %s (use png|svg|pdf|jpg)", renderFormat)
		}

		t, err := newPreparer(c).Prepare(cmd.Context())
		if err != nil {
			return err
		}
		rep := analysis.Summarize(t, analysis.Options{SampleRows: c.PreviewRows, Bins: c.HistogramBins})
		if err := utils.EnsureDir(outDir); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}

		opt := chartOptions(c, format)
		ext := format
		for _, kind := range []charts.Kind{charts.KindHistogram, charts.KindBoxPlot} {
			p, err := charts.Build(kind, t, opt)
			if errors.Is(err, charts.ErrNoData) {
				logger.Warn("skipping chart", zap.String("chart", string(kind)), zap.Error(err))
				ext = ""
				continue
			}
			if err != nil {
				return err
			}
			var buf bytes.Buffer
			if err := charts.Render(p, &buf, opt); err != nil {
				return err
			}
			path := filepath.Join(outDir, string(kind)+"."+format)
			if err := utils.SafeWriteFile(path, buf.Bytes()); err != nil {
				return fmt.Errorf("write %s: %w", kind, err)
			}
			fmt.Printf("✓ Wrote %s\n", path)
		}

		mdPath := filepath.Join(outDir, "dashboard.md")
		if err := utils.SafeWriteFile(mdPath, []byte(dashboard.Markdown(rep, ext))); err != nil {
			return fmt.Errorf("write dashboard: %w", err)
		}
		fmt.Printf("✓ Wrote %s (%d rows)\n", mdPath, rep.Rows)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(renderCmd)
	renderCmd.Flags().StringVarP(&renderOutDir, "output", "o", "", "output directory (default from config output_dir)")
	renderCmd.Flags().StringVar(&renderFormat, "format", "png", "chart image format: png|svg|pdf|jpg")
}
