// Package ionos - IONOS storage cost handlers
// Pricing model:
// - Block volumes per GB hour by tier
// - Object storage per GB month plus per 1000 requests
// - Backup units, snapshots and private images per GB hour
package ionos

import (
	"strings"

	"ionos-finops/clouds"
	"ionos-finops/core/pricing"
	"ionos-finops/core/types"
)

const (
	defaultS3StorageMonthly   = 0.02
	defaultS3RequestsPer1000  = 0.004
	defaultBackupGBHourly     = 0.00015
	defaultSnapshotGBHourly   = 0.00008
	defaultImageStorageHourly = 0.00005
)

func storageHandlers() []clouds.Handler {
	return []clouds.Handler{
		{ResourceType: "ionos_volume", Kind: clouds.KindBlockVolume, Category: pricing.CategoryStorage, Cost: volumeCost},
		{ResourceType: "ionos_s3_bucket", Kind: clouds.KindObjectBucket, Category: pricing.CategoryStorage, Cost: bucketCost},
		{ResourceType: "ionos_backup_unit", Kind: clouds.KindBackupUnit, Category: pricing.CategoryBackup, Cost: perGBHourly("backup_gb_hourly", defaultBackupGBHourly, "backup_storage")},
		{ResourceType: "ionos_snapshot", Kind: clouds.KindSnapshot, Category: pricing.CategoryStorage, Cost: perGBHourly("snapshot_gb_hourly", defaultSnapshotGBHourly, "snapshot_storage")},
		{ResourceType: "ionos_image", Kind: clouds.KindPrivateImage, Category: pricing.CategoryManagement, Cost: perGBHourly("image_storage_gb_hourly", defaultImageStorageHourly, "image_storage")},
	}
}

func volumeCost(attrs types.Attributes, prices types.PriceTable) types.CostResult {
	tier := attrs.String("type", "HDD")
	return types.ComponentCost(map[string]float64{
		"storage_" + strings.ToLower(tier): attrs.Float("size", 0) * prices.Price(storageKey("storage", tier), defaultStorageHourly),
	})
}

// bucketCost is billed monthly from estimated size and request volume
func bucketCost(attrs types.Attributes, prices types.PriceTable) types.CostResult {
	storage := attrs.Float("estimated_size_gb", 0) * prices.Price("s3_storage_gb_monthly", defaultS3StorageMonthly)
	requests := attrs.Float("estimated_requests_monthly", 0) / 1000 * prices.Price("s3_requests_per_1000", defaultS3RequestsPer1000)

	return types.MonthlyCost(storage+requests, map[string]float64{
		"storage":  storage,
		"requests": requests,
	})
}

// perGBHourly prices size × key
func perGBHourly(key string, def float64, component string) clouds.CostFunc {
	return func(attrs types.Attributes, prices types.PriceTable) types.CostResult {
		return types.ComponentCost(map[string]float64{
			component: attrs.Float("size", 0) * prices.Price(key, def),
		})
	}
}
