// Package ionos - IONOS compute cost handlers
// Pricing model:
// - Per vCPU hour and per GB RAM hour
// - Attached volume per GB hour by storage tier
// - Cube servers billed per template hour
package ionos

import (
	"strings"

	"ionos-finops/clouds"
	"ionos-finops/core/pricing"
	"ionos-finops/core/types"
)

// Built-in unit prices used when the catalog lacks a key
const (
	defaultVCPUHourly    = 0.01
	defaultRAMHourly     = 0.005
	defaultStorageHourly = 0.0001
)

func computeHandlers() []clouds.Handler {
	return []clouds.Handler{
		{ResourceType: "ionos_server", Kind: clouds.KindComputeInstance, Category: pricing.CategoryCompute, Cost: serverCost},
		{ResourceType: "ionos_vcpu_server", Kind: clouds.KindVCPUInstance, Category: pricing.CategoryCompute, Cost: vcpuServerCost},
		{ResourceType: "ionos_cube_server", Kind: clouds.KindCubeInstance, Category: pricing.CategoryCompute, Cost: cubeServerCost},
	}
}

// serverCost: cores × vcpu + ram × ram_gb + volume.size × storage_<tier>
func serverCost(attrs types.Attributes, prices types.PriceTable) types.CostResult {
	volume := attrs.Block("volume")

	parts := coresAndRAM(attrs, prices, 0, 0)
	parts["storage"] = volume.Float("size", 0) *
		prices.Price(storageKey("storage", volume.String("type", "HDD")), defaultStorageHourly)

	return types.ComponentCost(parts)
}

// vcpuServerCost: cores × vcpu + ram × ram_gb
func vcpuServerCost(attrs types.Attributes, prices types.PriceTable) types.CostResult {
	return types.ComponentCost(coresAndRAM(attrs, prices, 0, 0))
}

// cubeServerCost prices a fixed template. Unknown templates cost nothing.
func cubeServerCost(attrs types.Attributes, prices types.PriceTable) types.CostResult {
	template := attrs.String("template_uuid", attrs.String("template_name", ""))
	if template == "" {
		return types.ComponentCost(map[string]float64{"cube_instance": 0})
	}
	return types.ComponentCost(map[string]float64{
		"cube_instance": prices.Price(CubeTemplateKey(template), 0),
	})
}

// CubeTemplateKey returns cube_template_<template>_hourly with the template
// lower-cased and '-' or ' ' replaced by '_'
func CubeTemplateKey(template string) string {
	t := strings.ToLower(strings.TrimSpace(template))
	t = strings.NewReplacer("-", "_", " ", "_").Replace(t)
	return "cube_template_" + t + "_hourly"
}

func coresAndRAM(attrs types.Attributes, prices types.PriceTable, defCores, defRAM float64) map[string]float64 {
	return map[string]float64{
		"vcpu": attrs.Float("cores", defCores) * prices.Price("vcpu_hourly", defaultVCPUHourly),
		"ram":  attrs.Float("ram", defRAM) * prices.Price("ram_gb_hourly", defaultRAMHourly),
	}
}

// storageKey builds <prefix>_<tier>_gb_hourly with the tier lower-cased
func storageKey(prefix, tier string) string {
	return prefix + "_" + strings.ToLower(strings.TrimSpace(tier)) + "_gb_hourly"
}
