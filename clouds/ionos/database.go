// Package ionos - IONOS DBaaS cluster cost handler
// Pricing model:
// - Per-instance vCPU, RAM and storage hours, keyed by engine
// - Multiplied by the number of instances
package ionos

import (
	"strings"

	"go.uber.org/zap"

	"ionos-finops/clouds"
	"ionos-finops/core/pricing"
	"ionos-finops/core/types"
	"ionos-finops/internal/logging"
)

const (
	defaultDBVCPUHourly    = 0.015
	defaultDBRAMHourly     = 0.008
	defaultDBStorageHourly = 0.00015

	// DefaultEngine is used when neither the attributes nor the resource
	// type name an engine
	DefaultEngine = "postgres"
)

var engineAliases = map[string]string{
	"postgres":   "postgres",
	"postgresql": "postgres",
	"pg":         "postgres",
	"mongo":      "mongo",
	"mongodb":    "mongo",
	"mysql":      "mysql",
	"mariadb":    "mariadb",
}

func databaseHandlers() []clouds.Handler {
	return []clouds.Handler{
		{ResourceType: "ionos_pg_cluster", Kind: clouds.KindDatabaseCluster, Category: pricing.CategoryDatabase, Cost: databaseCost("postgres")},
		{ResourceType: "ionos_mongo_cluster", Kind: clouds.KindDatabaseCluster, Category: pricing.CategoryDatabase, Cost: databaseCost("mongo")},
		{ResourceType: "ionos_mysql_cluster", Kind: clouds.KindDatabaseCluster, Category: pricing.CategoryDatabase, Cost: databaseCost("mysql")},
		{ResourceType: "ionos_mariadb_cluster", Kind: clouds.KindDatabaseCluster, Category: pricing.CategoryDatabase, Cost: databaseCost("mariadb")},
	}
}

// Engine resolves the engine from the type attribute, then the engine implied
// by the resource type, then DefaultEngine. An unrecognised type attribute
// is logged and ignored.
func Engine(attrs types.Attributes, implied string) string {
	raw := strings.ToLower(strings.TrimSpace(attrs.String("type", "")))
	if e, ok := engineAliases[raw]; ok {
		return e
	}

	fallback := implied
	if fallback == "" {
		fallback = DefaultEngine
	}
	if raw != "" {
		logging.Named("ionos").Debug("unknown database engine, using fallback pricing",
			zap.String("engine", raw),
			zap.String("fallback", fallback))
	}
	return fallback
}

func databaseCost(implied string) clouds.CostFunc {
	return func(attrs types.Attributes, prices types.PriceTable) types.CostResult {
		engine := Engine(attrs, implied)
		prefix := "dbaas_" + engine + "_"
		instances := attrs.Float("instances", 1)

		return types.ComponentCost(map[string]float64{
			"vcpu": instances * attrs.Float("cores", 1) *
				prices.Price(prefix+"vcpu_hourly", defaultDBVCPUHourly),
			"ram": instances * attrs.Float("ram", 2) *
				prices.Price(prefix+"ram_gb_hourly", defaultDBRAMHourly),
			"storage": instances * attrs.Float("storage_size", 20) *
				prices.Price(storageKey(prefix+"storage", attrs.String("storage_type", "HDD")), defaultDBStorageHourly),
		})
	}
}
