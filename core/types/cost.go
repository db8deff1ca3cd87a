// Package types - Cost types
package types

import "sort"

const (
	// HoursPerMonth is the billing month used for every hourly/monthly conversion
	HoursPerMonth = 730.0

	// MonthsPerYear derives yearly cost from monthly cost
	MonthsPerYear = 12.0
)

// CostResult is the cost of one resource. Yearly is always derived.
type CostResult struct {
	Hourly  float64 `json:"hourly"`
	Monthly float64 `json:"monthly"`

	// Breakdown attributes the monthly cost to components, e.g. "vcpu", "ram"
	Breakdown map[string]float64 `json:"breakdown"`
}

// Yearly returns monthly × 12
func (c CostResult) Yearly() float64 {
	return c.Monthly * MonthsPerYear
}

// IsZero reports whether the resource costs nothing
func (c CostResult) IsZero() bool {
	return c.Hourly == 0 && c.Monthly == 0
}

// HourlyCost builds a result from an hourly amount; monthly = hourly × 730
func HourlyCost(hourly float64, breakdown map[string]float64) CostResult {
	if breakdown == nil {
		breakdown = map[string]float64{}
	}
	return CostResult{
		Hourly:    hourly,
		Monthly:   hourly * HoursPerMonth,
		Breakdown: breakdown,
	}
}

// MonthlyCost builds a result from a monthly amount; hourly = monthly / 730
func MonthlyCost(monthly float64, breakdown map[string]float64) CostResult {
	if breakdown == nil {
		breakdown = map[string]float64{}
	}
	return CostResult{
		Hourly:    monthly / HoursPerMonth,
		Monthly:   monthly,
		Breakdown: breakdown,
	}
}

// ComponentCost builds a result from per-component hourly amounts. The
// breakdown holds each component's monthly figure.
func ComponentCost(hourlyParts map[string]float64) CostResult {
	names := make([]string, 0, len(hourlyParts))
	for name := range hourlyParts {
		names = append(names, name)
	}
	// fixed summation order keeps results bit-identical across runs
	sort.Strings(names)

	var hourly float64
	breakdown := make(map[string]float64, len(hourlyParts))
	for _, name := range names {
		part := hourlyParts[name]
		hourly += part
		breakdown[name] = part * HoursPerMonth
	}
	return CostResult{
		Hourly:    hourly,
		Monthly:   hourly * HoursPerMonth,
		Breakdown: breakdown,
	}
}

// ZeroCost is the result of a free resource
func ZeroCost() CostResult {
	return CostResult{Breakdown: map[string]float64{}}
}

// ResourceCosts is the cost block of a ResourceCost
type ResourceCosts struct {
	Hourly    float64            `json:"hourly"`
	Monthly   float64            `json:"monthly"`
	Yearly    float64            `json:"yearly"`
	Breakdown map[string]float64 `json:"breakdown"`
}

// ResourceCost is a priced resource instance
type ResourceCost struct {
	Name       string        `json:"name"`
	Type       string        `json:"type"`
	Region     string        `json:"region"`
	Source     string        `json:"source,omitempty"`
	Attributes Attributes    `json:"config"`
	Costs      ResourceCosts `json:"costs"`
}

// NewResourceCost pairs a resource with its computed cost
func NewResourceCost(r NormalizedResource, region string, cost CostResult) ResourceCost {
	return ResourceCost{
		Name:       r.Name,
		Type:       r.Type,
		Region:     region,
		Source:     r.Source,
		Attributes: r.Attributes,
		Costs: ResourceCosts{
			Hourly:    cost.Hourly,
			Monthly:   cost.Monthly,
			Yearly:    cost.Yearly(),
			Breakdown: cost.Breakdown,
		},
	}
}

// CostTotals holds hourly, monthly and yearly totals
type CostTotals struct {
	Hourly  float64 `json:"hourly"`
	Monthly float64 `json:"monthly"`
	Yearly  float64 `json:"yearly"`
}

// TypeCost is the per-type aggregate
type TypeCost struct {
	Hourly  float64 `json:"hourly"`
	Monthly float64 `json:"monthly"`
	Yearly  float64 `json:"yearly"`
	Count   int     `json:"count"`
}

// CostSummary is the aggregated cost of a set of resources
type CostSummary struct {
	Region         string              `json:"region"`
	Currency       Currency            `json:"currency"`
	TotalResources int                 `json:"total_resources"`
	TotalCost      CostTotals          `json:"total_cost"`
	CostByType     map[string]TypeCost `json:"cost_by_type"`

	// TypeOrder lists CostByType keys in first-encounter order
	TypeOrder []string `json:"type_order"`

	Resources []ResourceCost `json:"resources"`

	// Skipped counts resources whose type has no handler
	Skipped int `json:"skipped,omitempty"`
}

// NewCostSummary returns an empty summary
func NewCostSummary(region string, currency Currency) *CostSummary {
	return &CostSummary{
		Region:     region,
		Currency:   currency,
		CostByType: make(map[string]TypeCost),
		TypeOrder:  []string{},
		Resources:  []ResourceCost{},
	}
}
