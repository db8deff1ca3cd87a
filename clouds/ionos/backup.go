package ionos

import (
	"ionos-finops/clouds"
	"ionos-finops/core/pricing"
	"ionos-finops/core/types"
)

const defaultBackupPlanMonthly = 5.0

func backupHandlers() []clouds.Handler {
	return []clouds.Handler{
		{ResourceType: "ionos_backup_plan", Kind: clouds.KindBackupPlan, Category: pricing.CategoryBackup, Cost: backupPlanCost},
	}
}

// RetentionMultiplier scales the plan base price by retention period
func RetentionMultiplier(days float64) float64 {
	switch {
	case days > 90:
		return 2.0
	case days > 30:
		return 1.5
	default:
		return 1.0
	}
}

func backupPlanCost(attrs types.Attributes, prices types.PriceTable) types.CostResult {
	monthly := prices.Price("backup_plan_base_monthly", defaultBackupPlanMonthly) *
		RetentionMultiplier(attrs.Float("retention_days", 7))

	return types.MonthlyCost(monthly, map[string]float64{"backup_plan": monthly})
}
