package output

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"

	"ionos-finops/core/types"
)

// TableRenderer renders a summary as aligned text tables
type TableRenderer struct {
	// ShowDetails adds one row per resource with its breakdown
	ShowDetails bool
}

// Format returns FormatTable
func (r *TableRenderer) Format() Format {
	return FormatTable
}

// Render writes the summary header, per-type table and optional details
func (r *TableRenderer) Render(w io.Writer, s *types.CostSummary) error {
	cur := s.Currency

	fmt.Fprintf(w, "IONOS Cloud cost estimate (%s, %s)\n\n", s.Region, cur)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "RESOURCE TYPE\tCOUNT\tHOURLY\tMONTHLY\tYEARLY")
	fmt.Fprintln(tw, "-------------\t-----\t------\t-------\t------")
	for _, t := range s.TypeOrder {
		tc := s.CostByType[t]
		fmt.Fprintf(tw, "%s\t%d\t%s\t%s\t%s\n",
			t, tc.Count,
			Money(tc.Hourly, 4, cur),
			Money(tc.Monthly, 2, cur),
			Money(tc.Yearly, 2, cur))
	}
	fmt.Fprintf(tw, "TOTAL\t%d\t%s\t%s\t%s\n",
		s.TotalResources,
		Money(s.TotalCost.Hourly, 4, cur),
		Money(s.TotalCost.Monthly, 2, cur),
		Money(s.TotalCost.Yearly, 2, cur))
	if err := tw.Flush(); err != nil {
		return err
	}

	if s.Skipped > 0 {
		fmt.Fprintf(w, "\n%d resource(s) without a cost model were skipped\n", s.Skipped)
	}

	if r.ShowDetails && len(s.Resources) > 0 {
		return r.renderDetails(w, s)
	}
	return nil
}

func (r *TableRenderer) renderDetails(w io.Writer, s *types.CostSummary) error {
	fmt.Fprintln(w, "\nResources")

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "RESOURCE\tMONTHLY\tBREAKDOWN")
	fmt.Fprintln(tw, "--------\t-------\t---------")
	for _, rc := range s.Resources {
		fmt.Fprintf(tw, "%s.%s\t%s\t%s\n",
			rc.Type, rc.Name,
			Money(rc.Costs.Monthly, 2, s.Currency),
			breakdown(rc.Costs.Breakdown, s.Currency))
	}
	return tw.Flush()
}

// breakdown renders "name=amount" pairs sorted by component name
func breakdown(parts map[string]float64, cur types.Currency) string {
	if len(parts) == 0 {
		return "-"
	}
	names := make([]string, 0, len(parts))
	for name := range parts {
		names = append(names, name)
	}
	sort.Strings(names)

	pairs := make([]string, 0, len(names))
	for _, name := range names {
		pairs = append(pairs, name+"="+Money(parts[name], 2, cur))
	}
	return strings.Join(pairs, ", ")
}
