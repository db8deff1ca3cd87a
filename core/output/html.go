package output

import (
	"html/template"
	"io"
	"sort"

	"ionos-finops/core/types"
	"ionos-finops/internal/errors"
)

// HTMLRenderer renders a summary as a standalone HTML report
type HTMLRenderer struct {
	// ShowDetails adds per-component rows under each resource
	ShowDetails bool
}

// Format returns FormatHTML
func (r *HTMLRenderer) Format() Format {
	return FormatHTML
}

type htmlComponent struct {
	Name    string
	Monthly string
	Yearly  string
}

type htmlResource struct {
	Address    string
	Hourly     string
	Monthly    string
	Yearly     string
	Components []htmlComponent
}

type htmlTypeRow struct {
	Type    string
	Count   int
	Hourly  string
	Monthly string
	Yearly  string
}

type htmlReport struct {
	Region      string
	Currency    types.Currency
	Resources   int
	Skipped     int
	Hourly      string
	Monthly     string
	Yearly      string
	Types       []htmlTypeRow
	Items       []htmlResource
	ShowDetails bool
}

// Render writes the report. All values are escaped by html/template.
func (r *HTMLRenderer) Render(w io.Writer, s *types.CostSummary) error {
	cur := s.Currency
	report := htmlReport{
		Region:      s.Region,
		Currency:    cur,
		Resources:   s.TotalResources,
		Skipped:     s.Skipped,
		Hourly:      Money(s.TotalCost.Hourly, 4, cur),
		Monthly:     Money(s.TotalCost.Monthly, 2, cur),
		Yearly:      Money(s.TotalCost.Yearly, 2, cur),
		ShowDetails: r.ShowDetails,
	}

	for _, t := range s.TypeOrder {
		tc := s.CostByType[t]
		report.Types = append(report.Types, htmlTypeRow{
			Type:    t,
			Count:   tc.Count,
			Hourly:  Money(tc.Hourly, 4, cur),
			Monthly: Money(tc.Monthly, 2, cur),
			Yearly:  Money(tc.Yearly, 2, cur),
		})
	}

	for _, rc := range s.Resources {
		item := htmlResource{
			Address: rc.Type + "." + rc.Name,
			Hourly:  Money(rc.Costs.Hourly, 4, cur),
			Monthly: Money(rc.Costs.Monthly, 2, cur),
			Yearly:  Money(rc.Costs.Yearly, 2, cur),
		}
		names := make([]string, 0, len(rc.Costs.Breakdown))
		for name, monthly := range rc.Costs.Breakdown {
			if monthly > 0 {
				names = append(names, name)
			}
		}
		sort.Strings(names)
		for _, name := range names {
			monthly := rc.Costs.Breakdown[name]
			item.Components = append(item.Components, htmlComponent{
				Name:    name,
				Monthly: Money(monthly, 2, cur),
				Yearly:  Money(monthly*12, 2, cur),
			})
		}
		report.Items = append(report.Items, item)
	}

	if err := htmlTemplate.Execute(w, report); err != nil {
		return errors.Internal("render html report", err)
	}
	return nil
}

var htmlTemplate = template.Must(template.New("report").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<title>IONOS Cloud Cost Report</title>
<style>
body { font-family: -apple-system, "Segoe UI", Roboto, sans-serif; max-width: 1200px; margin: 0 auto; padding: 20px; background: #f5f5f5; }
.header { background: linear-gradient(135deg, #003d8f 0%, #0b7fd4 100%); color: #fff; padding: 30px; border-radius: 10px; margin-bottom: 30px; }
.header h1 { margin: 0 0 10px 0; }
.summary { display: grid; grid-template-columns: repeat(auto-fit, minmax(220px, 1fr)); gap: 20px; margin-bottom: 30px; }
.card, .section { background: #fff; padding: 20px; border-radius: 8px; box-shadow: 0 2px 4px rgba(0,0,0,0.1); }
.section { margin-bottom: 30px; }
.card h3 { margin: 0 0 10px 0; color: #666; font-size: 14px; text-transform: uppercase; }
.card .value { font-size: 30px; font-weight: bold; color: #333; }
table { width: 100%; border-collapse: collapse; }
th { background: #f8f9fa; padding: 12px; text-align: left; border-bottom: 2px solid #dee2e6; }
td { padding: 10px 12px; border-bottom: 1px solid #dee2e6; }
.cost { text-align: right; font-family: "Courier New", monospace; }
.resource { font-family: "Courier New", monospace; color: #003d8f; }
.component { font-size: 12px; color: #666; padding-left: 32px; }
.total { font-weight: bold; background: #f8f9fa; }
.note { color: #666; font-size: 13px; }
</style>
</head>
<body>
<div class="header">
<h1>IONOS Cloud Cost Report</h1>
<p>Region: {{.Region}} | Currency: {{.Currency}} | Resources: {{.Resources}}</p>
</div>

<div class="summary">
<div class="card"><h3>Hourly Cost</h3><div class="value">{{.Hourly}}</div></div>
<div class="card"><h3>Monthly Cost</h3><div class="value">{{.Monthly}}</div></div>
<div class="card"><h3>Yearly Cost</h3><div class="value">{{.Yearly}}</div></div>
<div class="card"><h3>Resources</h3><div class="value">{{.Resources}}</div></div>
</div>

<div class="section">
<h2>Cost by Resource Type</h2>
<table>
<thead><tr><th>Resource Type</th><th class="cost">Count</th><th class="cost">Hourly</th><th class="cost">Monthly</th><th class="cost">Yearly</th></tr></thead>
<tbody>
{{- range .Types}}
<tr><td class="resource">{{.Type}}</td><td class="cost">{{.Count}}</td><td class="cost">{{.Hourly}}</td><td class="cost">{{.Monthly}}</td><td class="cost">{{.Yearly}}</td></tr>
{{- end}}
<tr class="total"><td>Total</td><td class="cost">{{.Resources}}</td><td class="cost">{{.Hourly}}</td><td class="cost">{{.Monthly}}</td><td class="cost">{{.Yearly}}</td></tr>
</tbody>
</table>
{{- if .Skipped}}
<p class="note">{{.Skipped}} resource(s) without a cost model were skipped</p>
{{- end}}
</div>

<div class="section">
<h2>Resource Breakdown</h2>
<table>
<thead><tr><th>Resource</th><th class="cost">Hourly</th><th class="cost">Monthly</th><th class="cost">Yearly</th></tr></thead>
<tbody>
{{- $details := .ShowDetails}}
{{- range .Items}}
<tr><td class="resource">{{.Address}}</td><td class="cost">{{.Hourly}}</td><td class="cost">{{.Monthly}}</td><td class="cost">{{.Yearly}}</td></tr>
{{- if $details}}{{range .Components}}
<tr><td class="component">{{.Name}}</td><td class="cost component"></td><td class="cost component">{{.Monthly}}</td><td class="cost component">{{.Yearly}}</td></tr>
{{- end}}{{end}}
{{- end}}
</tbody>
</table>
</div>
</body>
</html>
`))
