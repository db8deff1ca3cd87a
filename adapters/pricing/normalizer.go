package pricing

import (
	"encoding/json"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	corepricing "ionos-finops/core/pricing"
)

// PricePrecision is the number of decimal places kept for every price
const PricePrecision = 6

// MeterTarget is the catalog location a billing meter maps to
type MeterTarget struct {
	Category string
	Key      string
}

// MeterMappings translates billing meter ids to catalog price keys
var MeterMappings = map[string]MeterTarget{
	// Compute
	"C01000": {corepricing.CategoryCompute, "vcpu_hourly"},
	"C010US": {corepricing.CategoryCompute, "vcpu_hourly_us"},
	"C02000": {corepricing.CategoryCompute, "ram_gb_hourly"},
	"C03000": {corepricing.CategoryCompute, "ram_gb_hourly_high"},
	"C04000": {corepricing.CategoryCompute, "ram_gb_hourly_ultra"},
	"C05000": {corepricing.CategoryCompute, "dedicated_core_hourly"},
	"C06000": {corepricing.CategoryCompute, "dedicated_core_high_hourly"},

	// Block storage
	"S01000": {corepricing.CategoryStorage, "storage_hdd_gb_hourly"},
	"S02000": {corepricing.CategoryStorage, "storage_ssd_gb_hourly"},
	"S03000": {corepricing.CategoryStorage, "storage_ssd_premium_gb_hourly"},
	"S05000": {corepricing.CategoryStorage, "snapshot_gb_hourly"},

	// Object storage
	"S3SU1000": {corepricing.CategoryStorage, "s3_storage_gb_monthly"},
	"S3SU1100": {corepricing.CategoryStorage, "s3_storage_gb_monthly_standard"},
	"S3SU1200": {corepricing.CategoryStorage, "s3_storage_gb_monthly_premium"},
	"S3SU1300": {corepricing.CategoryStorage, "s3_storage_gb_monthly_archive"},
	"S3SU2000": {corepricing.CategoryStorage, "s3_requests_per_1000"},
	"S3TI1000": {corepricing.CategoryStorage, "s3_tiered_requests_per_1000"},
	"S3TO1000": {corepricing.CategoryStorage, "s3_transfer_out_gb"},

	// Network
	"NLB1000":  {corepricing.CategoryNetwork, "loadbalancer_hourly"},
	"NLB1100":  {corepricing.CategoryNetwork, "loadbalancer_hourly_plus"},
	"NAT1000":  {corepricing.CategoryNetwork, "natgateway_hourly"},
	"VPNG1000": {corepricing.CategoryNetwork, "vpn_gateway_hourly"},
	"VPNG1100": {corepricing.CategoryNetwork, "vpn_gateway_hourly_ha"},
	"ALB1000":  {corepricing.CategoryNetwork, "app_loadbalancer_hourly"},

	// Database
	"DBPGB1000": {corepricing.CategoryDatabase, "dbaas_postgres_vcpu_hourly"},
	"DBPGB1100": {corepricing.CategoryDatabase, "dbaas_postgres_ram_gb_hourly"},
	"DBPGB1200": {corepricing.CategoryDatabase, "dbaas_postgres_storage_ssd_gb_hourly"},
	"DBPGB1300": {corepricing.CategoryDatabase, "dbaas_postgres_storage_hdd_gb_hourly"},
	"DBMB1000":  {corepricing.CategoryDatabase, "dbaas_mongo_vcpu_hourly"},
	"DBMB1100":  {corepricing.CategoryDatabase, "dbaas_mongo_ram_gb_hourly"},
	"DBMB1200":  {corepricing.CategoryDatabase, "dbaas_mongo_storage_ssd_gb_hourly"},
	"DBMAB1000": {corepricing.CategoryDatabase, "dbaas_mariadb_vcpu_hourly"},
	"DBMAB1100": {corepricing.CategoryDatabase, "dbaas_mariadb_ram_gb_hourly"},
	"DBMAB1200": {corepricing.CategoryDatabase, "dbaas_mariadb_storage_ssd_gb_hourly"},
	"DBMIM1000": {corepricing.CategoryDatabase, "dbaas_mysql_vcpu_hourly"},
	"DBMIM1100": {corepricing.CategoryDatabase, "dbaas_mysql_ram_gb_hourly"},
	"DBMIM1200": {corepricing.CategoryDatabase, "dbaas_mysql_storage_ssd_gb_hourly"},

	// Backup
	"BA1100": {corepricing.CategoryBackup, "backup_plan_base_monthly"},
	"BA1200": {corepricing.CategoryBackup, "backup_gb_hourly"},
	"BA1300": {corepricing.CategoryBackup, "backup_gb_hourly_premium"},

	// Kubernetes
	"K8S1000": {corepricing.CategoryKubernetes, "k8s_control_plane_hourly"},
	"K8S1100": {corepricing.CategoryKubernetes, "k8s_node_vcpu_hourly"},
	"K8S1200": {corepricing.CategoryKubernetes, "k8s_node_ram_gb_hourly"},

	// Management
	"WL1000": {corepricing.CategoryManagement, "image_storage_gb_hourly"},
	"WL2000": {corepricing.CategoryManagement, "image_storage_gb_hourly_premium"},
}

// Product is one entry of the billing products response
type Product struct {
	MeterID   string         `json:"meterId"`
	MeterDesc string         `json:"meterDesc,omitempty"`
	Unit      string         `json:"unit"`
	UnitCost  map[string]any `json:"unitCost"`
}

// ProductsResponse is the billing products payload
type ProductsResponse struct {
	Products []Product `json:"products"`
	Metadata struct {
		CustomerID string `json:"customerId"`
	} `json:"metadata"`
}

var hoursPerMonth = decimal.NewFromInt(730)

// unitCostFields are tried in order to find the price of a product
var unitCostFields = []string{"value", "amount", "price", "cost"}

// Normalizer converts billing products into category prices
type Normalizer struct {
	logger *zap.Logger
}

// NewNormalizer creates a normalizer
func NewNormalizer(logger *zap.Logger) *Normalizer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Normalizer{logger: logger}
}

// Normalize maps every recognised product to its category and key. Unknown
// meters, products without a usable price and negative prices are skipped.
func (n *Normalizer) Normalize(products []Product) map[string]map[string]float64 {
	out := make(map[string]map[string]float64)

	for _, p := range products {
		target, ok := MeterMappings[p.MeterID]
		if !ok {
			continue
		}

		price, ok := unitPrice(p.UnitCost)
		if !ok {
			n.logger.Debug("skipping product without unit cost", zap.String("meter", p.MeterID))
			continue
		}
		if price.IsNegative() {
			n.logger.Warn("skipping product with negative price",
				zap.String("meter", p.MeterID), zap.String("price", price.String()))
			continue
		}

		value, _ := NormalizePrice(price, p.Unit, p.MeterID, target.Key).Float64()

		if out[target.Category] == nil {
			out[target.Category] = make(map[string]float64)
		}
		out[target.Category][target.Key] = value
	}

	return out
}

// NormalizePrice converts a raw unit price to the unit implied by key and
// rounds it to PricePrecision. A monthly price feeding an _hourly key is
// divided by 730; per-1000 prices are kept as they are.
func NormalizePrice(price decimal.Decimal, unit, meterID, key string) decimal.Decimal {
	monthly := strings.Contains(strings.ToLower(unit), "month") ||
		strings.Contains(strings.ToLower(meterID), "monthly")

	if monthly && strings.HasSuffix(key, "_hourly") {
		price = price.Div(hoursPerMonth)
	}
	return price.Round(PricePrecision)
}

func unitPrice(cost map[string]any) (decimal.Decimal, bool) {
	for _, field := range unitCostFields {
		raw, ok := cost[field]
		if !ok {
			continue
		}
		switch v := raw.(type) {
		case float64:
			return decimal.NewFromFloat(v), true
		case json.Number:
			d, err := decimal.NewFromString(v.String())
			return d, err == nil
		case string:
			d, err := decimal.NewFromString(strings.TrimSpace(v))
			return d, err == nil
		default:
			return decimal.Zero, false
		}
	}
	return decimal.Zero, false
}
