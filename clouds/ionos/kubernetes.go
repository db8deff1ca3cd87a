// Package ionos - IONOS managed Kubernetes cost handlers
// Pricing model:
// - Control plane per hour (free by default)
// - Node pools billed per node for vCPU, RAM and storage
package ionos

import (
	"ionos-finops/clouds"
	"ionos-finops/core/pricing"
	"ionos-finops/core/types"
)

func kubernetesHandlers() []clouds.Handler {
	return []clouds.Handler{
		{ResourceType: "ionos_k8s_cluster", Kind: clouds.KindK8sCluster, Category: pricing.CategoryKubernetes, Cost: flatHourly("k8s_control_plane_hourly", 0, "control_plane")},
		{ResourceType: "ionos_k8s_node_pool", Kind: clouds.KindK8sNodePool, Category: pricing.CategoryKubernetes, Cost: nodePoolCost},
	}
}

func nodePoolCost(attrs types.Attributes, prices types.PriceTable) types.CostResult {
	nodes := attrs.Float("node_count", 1)

	return types.ComponentCost(map[string]float64{
		"vcpu": nodes * attrs.Float("cores", 2) *
			prices.Price("k8s_node_vcpu_hourly", defaultVCPUHourly),
		"ram": nodes * attrs.Float("ram", 4) *
			prices.Price("k8s_node_ram_gb_hourly", defaultRAMHourly),
		"storage": nodes * attrs.Float("storage_size", 50) *
			prices.Price(storageKey("k8s_node_storage", attrs.String("storage_type", "SSD")), defaultStorageHourly),
	})
}
