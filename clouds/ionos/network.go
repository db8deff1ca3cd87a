// Package ionos - IONOS network cost handlers
// Pricing model:
// - Load balancers and NAT gateways per hour
// - IPv4 addresses per address hour
// - Cross-connects flat monthly
package ionos

import (
	"ionos-finops/clouds"
	"ionos-finops/core/pricing"
	"ionos-finops/core/types"
)

const (
	defaultLoadBalancerHourly  = 0.034
	defaultIPv4Hourly          = 0.003
	defaultNATGatewayHourly    = 0.05
	defaultCrossConnectMonthly = 100.0
)

func networkHandlers() []clouds.Handler {
	lb := flatHourly("loadbalancer_hourly", defaultLoadBalancerHourly, "loadbalancer")
	return []clouds.Handler{
		{ResourceType: "ionos_loadbalancer", Kind: clouds.KindLoadBalancer, Category: pricing.CategoryNetwork, Cost: lb},
		{ResourceType: "ionos_networkloadbalancer", Kind: clouds.KindLoadBalancer, Category: pricing.CategoryNetwork, Cost: lb},
		{ResourceType: "ionos_application_loadbalancer", Kind: clouds.KindLoadBalancer, Category: pricing.CategoryNetwork, Cost: appLoadBalancerCost},
		{ResourceType: "ionos_ipblock", Kind: clouds.KindIPBlock, Category: pricing.CategoryNetwork, Cost: ipBlockCost},
		{ResourceType: "ionos_natgateway", Kind: clouds.KindNATGateway, Category: pricing.CategoryNetwork, Cost: flatHourly("natgateway_hourly", defaultNATGatewayHourly, "nat_gateway")},
		{ResourceType: "ionos_crossconnect", Kind: clouds.KindCrossConnect, Category: pricing.CategoryNetwork, Cost: crossConnectCost},
	}
}

func flatHourly(key string, def float64, component string) clouds.CostFunc {
	return func(_ types.Attributes, prices types.PriceTable) types.CostResult {
		return types.ComponentCost(map[string]float64{component: prices.Price(key, def)})
	}
}

// appLoadBalancerCost uses app_loadbalancer_hourly, falling back to the
// network load balancer price
func appLoadBalancerCost(_ types.Attributes, prices types.PriceTable) types.CostResult {
	hourly := prices.Price("app_loadbalancer_hourly", prices.Price("loadbalancer_hourly", defaultLoadBalancerHourly))
	return types.ComponentCost(map[string]float64{"loadbalancer": hourly})
}

func ipBlockCost(attrs types.Attributes, prices types.PriceTable) types.CostResult {
	return types.ComponentCost(map[string]float64{
		"ipv4_addresses": attrs.Float("size", 1) * prices.Price("ipv4_hourly", defaultIPv4Hourly),
	})
}

func crossConnectCost(_ types.Attributes, prices types.PriceTable) types.CostResult {
	monthly := prices.Price("crossconnect_monthly", defaultCrossConnectMonthly)
	return types.MonthlyCost(monthly, map[string]float64{"cross_connect": monthly})
}
