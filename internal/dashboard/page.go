package dashboard

import (
	"bytes"
	"html/template"

	"github.com/KaramelBytes/reliefdash/internal/analysis"
	"github.com/KaramelBytes/reliefdash/internal/charts"
)

const (
	Title  = "FEMA Disaster Relief Dashboard"
	Author = "Eileena Doek"
)

var pageTmpl = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
body { font-family: sans-serif; max-width: 960px; margin: 2rem auto; padding: 0 1rem; }
table { border-collapse: collapse; }
td, th { border: 1px solid #ddd; padding: 4px 10px; text-align: right; }
img { width: 100%; }
.note { color: #666; font-size: 0.9em; }
</style>
</head>
<body>
<h1>{{.Title}}</h1>
<p>{{.Author}}</p>

<h2>Data Preview</h2>
<table>
<tr><th></th><th>repairAmount</th><th>tsaEligible</th></tr>
{{range $i, $r := .Report.Samples}}<tr><td>{{$i}}</td><td>{{$r.RepairAmount}}</td><td>{{$r.TSAEligible}}</td></tr>
{{end}}</table>
<p class="note">{{.Report.Rows}} rows{{if .Report.Sampled}} (sampled){{end}}</p>

<h2>Histogram of Repair Amount</h2>
{{if .Report.Rows}}<img src="/charts/histogram.png" alt="{{.HistogramTitle}}">{{else}}<p>No rows to plot.</p>{{end}}

<h2>Boxplot: Repair Amount by TSA Eligibility</h2>
{{if .Report.Rows}}<img src="/charts/boxplot.png" alt="{{.BoxPlotTitle}}">{{else}}<p>No rows to plot.</p>{{end}}

<p><strong>Insight:</strong> {{.Insight}}</p>
</body>
</html>
`))

var errorTmpl = template.Must(template.New("error").Parse(`<!DOCTYPE html>
<html lang="en"><head><meta charset="utf-8"><title>{{.Title}}</title></head>
<body><h1>{{.Title}}</h1><p>The dataset could not be loaded.</p><pre>{{.Err}}</pre></body></html>
`))

type pageData struct {
	Title          string
	Author         string
	HistogramTitle string
	BoxPlotTitle   string
	Insight        string
	Report         *analysis.Report
}

func renderPage(rep *analysis.Report) ([]byte, error) {
	var buf bytes.Buffer
	err := pageTmpl.Execute(&buf, pageData{
		Title:          Title,
		Author:         Author,
		HistogramTitle: charts.HistogramTitle,
		BoxPlotTitle:   charts.BoxPlotTitle,
		Insight:        analysis.Insight,
		Report:         rep,
	})
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func renderError(err error) []byte {
	var buf bytes.Buffer
	if e := errorTmpl.Execute(&buf, struct{ Title, Err string }{Title, err.Error()}); e != nil {
		return []byte(err.Error())
	}
	return buf.Bytes()
}
