package dashboard

import (
	"fmt"
	"strings"

	"github.com/KaramelBytes/reliefdash/internal/analysis"
	"github.com/KaramelBytes/reliefdash/internal/charts"
)

// Markdown renders the static export of the dashboard. Chart images are
// referenced as histogram.<ext> and boxplot.<ext> next to the document;
// pass an empty ext to leave them out.
func Markdown(rep *analysis.Report, ext string) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("# %s\n\n%s\n\n", Title, Author))

	b.WriteString("## Data Preview\n\n")
	b.WriteString("| | repairAmount | tsaEligible |\n| --- | --- | --- |\n")
	for i, r := range rep.Samples {
		b.WriteString(fmt.Sprintf("| %d | %g | %s |\n", i, r.RepairAmount, analysis.SafeVal(r.TSAEligible)))
	}

	b.WriteString("\n## Histogram of Repair Amount\n\n")
	if ext != "" {
		b.WriteString(fmt.Sprintf("![%s](%s.%s)\n", charts.HistogramTitle, charts.KindHistogram, ext))
	}
	b.WriteString("\n## Boxplot: Repair Amount by TSA Eligibility\n\n")
	if ext != "" {
		b.WriteString(fmt.Sprintf("![%s](%s.%s)\n", charts.BoxPlotTitle, charts.KindBoxPlot, ext))
	}

	b.WriteString("\n**Insight:** ")
	b.WriteString(analysis.Insight)
	b.WriteString("\n\n```\n")
	b.WriteString(rep.Markdown())
	b.WriteString("```\n")
	return b.String()
}
