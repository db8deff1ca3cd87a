package pricing

import (
	"time"

	corepricing "ionos-finops/core/pricing"
	"ionos-finops/core/types"
)

// SourceFallback labels catalogs built without authoritative prices
const SourceFallback = "fallback_data"

// ExtraFallbackCategories lists categories filled from the fallback set
const ExtraFallbackCategories = "fallback_categories"

// FallbackCategories returns the typical list prices used when the billing
// API offers nothing for a category. They are the bundled prices for the
// region.
func FallbackCategories(region string) map[string]map[string]float64 {
	return corepricing.LoadBundled(region).Clone().Categories
}

// FallbackCatalog returns a complete catalog made only of fallback prices,
// labelled with SourceFallback.
func FallbackCatalog(region string, now time.Time) *types.PricingCatalog {
	categories := FallbackCategories(region)

	c := &types.PricingCatalog{
		Region:      region,
		Currency:    corepricing.CurrencyForRegion(region),
		LastUpdated: now.UTC().Format(time.RFC3339),
		Source:      SourceFallback,
		Categories:  categories,
	}
	c.Extra = map[string]any{ExtraFallbackCategories: toAnySlice(c.CategoryNames())}
	return c
}

func toAnySlice(in []string) []any {
	out := make([]any, len(in))
	for i, s := range in {
		out[i] = s
	}
	return out
}
