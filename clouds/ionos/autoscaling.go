package ionos

import (
	"ionos-finops/clouds"
	"ionos-finops/core/pricing"
	"ionos-finops/core/types"
)

func autoscalingHandlers() []clouds.Handler {
	return []clouds.Handler{
		{ResourceType: "ionos_autoscaling_group", Kind: clouds.KindAutoscalingGroup, Category: pricing.CategoryAutoscaling, Cost: autoscalingGroupCost},
	}
}

// autoscalingGroupCost prices desired_instances server-like members plus the
// monthly group fee spread over the month
func autoscalingGroupCost(attrs types.Attributes, prices types.PriceTable) types.CostResult {
	desired := attrs.Float("desired_instances", 2)

	member := coresAndRAM(attrs, prices, 2, 4)
	member["storage"] = attrs.Float("storage_size", 50) *
		prices.Price(storageKey("storage", attrs.String("storage_type", "SSD")), defaultStorageHourly)

	parts := make(map[string]float64, len(member)+1)
	for name, hourly := range member {
		parts[name] = desired * hourly
	}
	parts["autoscaling_fee"] = prices.Price("autoscaling_monthly_fee", 0) / types.HoursPerMonth

	return types.ComponentCost(parts)
}
