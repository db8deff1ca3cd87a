// Package cost - Resource cost aggregation
// NormalizedResource → handler → ResourceCost → CostSummary (totals + per type).
// Aggregation is pure: no I/O, no shared state.
package cost

import (
	"sort"

	"ionos-finops/clouds"
	"ionos-finops/core/types"
)

// Aggregator prices resources through a handler registry
type Aggregator struct {
	registry *clouds.Registry
}

// NewAggregator creates an aggregator over registry
func NewAggregator(registry *clouds.Registry) *Aggregator {
	return &Aggregator{registry: registry}
}

// Aggregate prices every resource with a registered handler. Resources of
// unknown type are excluded and only counted in Skipped.
func (a *Aggregator) Aggregate(region string, currency types.Currency, resources []types.NormalizedResource, prices types.PriceTable) *types.CostSummary {
	summary := types.NewCostSummary(region, currency)

	for _, r := range resources {
		h, ok := a.registry.Lookup(r.Type)
		if !ok {
			summary.Skipped++
			continue
		}
		addResource(summary, types.NewResourceCost(r, region, h.Cost(r.Attributes, prices)))
	}

	return summary
}

// addResource appends rc and updates the running and per-type totals
func addResource(s *types.CostSummary, rc types.ResourceCost) {
	s.Resources = append(s.Resources, rc)
	s.TotalResources++

	s.TotalCost.Hourly += rc.Costs.Hourly
	s.TotalCost.Monthly += rc.Costs.Monthly
	s.TotalCost.Yearly = s.TotalCost.Monthly * types.MonthsPerYear

	tc, seen := s.CostByType[rc.Type]
	if !seen {
		s.TypeOrder = append(s.TypeOrder, rc.Type)
	}
	tc.Hourly += rc.Costs.Hourly
	tc.Monthly += rc.Costs.Monthly
	tc.Yearly = tc.Monthly * types.MonthsPerYear
	tc.Count++
	s.CostByType[rc.Type] = tc
}

// TopResources returns the n most expensive resources by monthly cost.
// Ties keep input order.
func TopResources(s *types.CostSummary, n int) []types.ResourceCost {
	out := make([]types.ResourceCost, len(s.Resources))
	copy(out, s.Resources)

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Costs.Monthly > out[j].Costs.Monthly
	})

	if n >= 0 && n < len(out) {
		out = out[:n]
	}
	return out
}
