package ionos

import (
	"ionos-finops/clouds"
	"ionos-finops/core/pricing"
	"ionos-finops/core/types"
)

// FreeTypes are resources IONOS does not bill for
var FreeTypes = []string{
	"ionos_nic",
	"ionos_firewall",
	"ionos_lan",
	"ionos_user",
	"ionos_group",
	"ionos_share",
	"ionos_contract",
	"ionos_s3_key",
	"ionos_s3_bucket_policy",
	"ionos_scaling_policy",
	"ionos_datacenter",
}

func freeCost(types.Attributes, types.PriceTable) types.CostResult {
	return types.ZeroCost()
}

// Handlers returns the full IONOS handler table
func Handlers() []clouds.Handler {
	var all []clouds.Handler
	all = append(all, computeHandlers()...)
	all = append(all, storageHandlers()...)
	all = append(all, networkHandlers()...)
	all = append(all, databaseHandlers()...)
	all = append(all, kubernetesHandlers()...)
	all = append(all, backupHandlers()...)
	all = append(all, autoscalingHandlers()...)

	for _, t := range FreeTypes {
		all = append(all, clouds.Handler{
			ResourceType: t,
			Kind:         clouds.KindFree,
			Category:     pricing.CategoryManagement,
			Cost:         freeCost,
		})
	}
	return all
}

// NewRegistry returns a registry holding every IONOS handler
func NewRegistry() *clouds.Registry {
	r := clouds.NewRegistry()
	r.MustRegister(Handlers()...)
	return r
}
