package cmd

import (
	"fmt"
	"os"

	"github.com/KaramelBytes/reliefdash/internal/analysis"
	"github.com/KaramelBytes/reliefdash/internal/utils"
	"github.com/spf13/cobra"
)

var (
	prevRows   int
	prevJSON   bool
	prevOutput string
)

var previewCmd = &cobra.Command{
	Use:   "preview",
	Short: "Print the cleaned data preview and summary",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c := effectiveConfig()
		rows := c.PreviewRows
		if prevRows > 0 {
			rows = prevRows
		}
		t, err := newPreparer(c).Prepare(cmd.Context())
		if err != nil {
			return err
		}
		rep := analysis.Summarize(t, analysis.Options{SampleRows: rows, Bins: c.HistogramBins})

		var out []byte
		if prevJSON {
			out, err = utils.PrettyJSON(rep)
			if err != nil {
				return err
			}
		} else {
			out = []byte(rep.Markdown())
		}
		if prevOutput != "" {
			if err := os.WriteFile(prevOutput, out, 0o644); err != nil {
				return fmt.Errorf("write output: %w", err)
			}
			fmt.Printf("✓ Wrote preview to %s\n", prevOutput)
			return nil
		}
		fmt.Println(string(out))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(previewCmd)
	previewCmd.Flags().IntVarP(&prevRows, "rows", "n", 0, "number of preview rows (default from config preview_rows)")
	previewCmd.Flags().BoolVar(&prevJSON, "json", false, "print the summary as JSON")
	previewCmd.Flags().StringVarP(&prevOutput, "output", "o", "", "optional path to write the preview")
}
