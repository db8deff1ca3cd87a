package pricing

import (
	"embed"
	"encoding/json"
	"strings"

	"ionos-finops/core/types"
)

//go:embed data/*.json
var bundled embed.FS

// DefaultRegion is used when no region is configured
const DefaultRegion = "de/fra"

// MinimalLastUpdated dates the hard-coded catalog
const MinimalLastUpdated = "2026-02-25"

// PublicPricingURL is the source recorded for bundled catalogs
const PublicPricingURL = "https://www.ionos.com/enterprise-cloud/pricing"

var supportedRegions = []string{
	"de/fra", "de/ber", "de/fra2", "de/txl",
	"gb/lhr", "gb/wor",
	"fr/par",
	"es/vit",
	"us/las", "us/ewr", "us/mci",
}

// SupportedRegions returns every region the scheduler refreshes by default
func SupportedRegions() []string {
	return append([]string(nil), supportedRegions...)
}

// CurrencyForRegion returns GBP for gb/*, USD for us/*, otherwise EUR
func CurrencyForRegion(region string) types.Currency {
	switch {
	case strings.HasPrefix(region, "gb/"):
		return types.CurrencyGBP
	case strings.HasPrefix(region, "us/"):
		return types.CurrencyUSD
	default:
		return types.CurrencyEUR
	}
}

// RegionFileStem replaces path separators so a region can name a file
func RegionFileStem(region string) string {
	return strings.NewReplacer("/", "_", `\`, "_").Replace(region)
}

// LoadBundled returns the bundled catalog for a region: the region file if
// one ships, else the generic default file, else MinimalCatalog. It never
// fails.
func LoadBundled(region string) *types.PricingCatalog {
	if c, ok := readBundled("data/" + RegionFileStem(region) + ".json"); ok {
		return c
	}
	if c, ok := readBundled("data/default.json"); ok {
		c.Region = region
		c.Currency = CurrencyForRegion(region)
		return c
	}
	return MinimalCatalog(region)
}

func readBundled(name string) (*types.PricingCatalog, bool) {
	data, err := bundled.ReadFile(name)
	if err != nil {
		return nil, false
	}
	var c types.PricingCatalog
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, false
	}
	if Validate(&c) != nil {
		return nil, false
	}
	return &c, true
}

// MinimalCatalog is the hard-coded last-resort catalog covering the base
// compute, storage, network, database and kubernetes keys.
func MinimalCatalog(region string) *types.PricingCatalog {
	return &types.PricingCatalog{
		Region:      region,
		Currency:    CurrencyForRegion(region),
		LastUpdated: MinimalLastUpdated,
		Source:      PublicPricingURL,
		Categories: map[string]map[string]float64{
			CategoryCompute: {
				"vcpu_hourly":   0.01,
				"ram_gb_hourly": 0.005,
			},
			CategoryStorage: {
				"storage_hdd_gb_hourly":         0.00005,
				"storage_ssd_gb_hourly":         0.0001,
				"storage_ssd_premium_gb_hourly": 0.00015,
				"s3_storage_gb_monthly":         0.02,
				"s3_requests_per_1000":          0.004,
				"backup_gb_hourly":              0.00015,
			},
			CategoryNetwork: {
				"loadbalancer_hourly": 0.034,
				"ipv4_hourly":         0.003,
				"bandwidth_gb":        0.0,
			},
			CategoryDatabase: {
				"dbaas_postgres_vcpu_hourly":           0.015,
				"dbaas_postgres_ram_gb_hourly":         0.008,
				"dbaas_postgres_storage_ssd_gb_hourly": 0.00015,
				"dbaas_mongo_vcpu_hourly":              0.015,
				"dbaas_mongo_ram_gb_hourly":            0.008,
				"dbaas_mongo_storage_ssd_gb_hourly":    0.00015,
			},
			CategoryKubernetes: {
				"k8s_control_plane_hourly": 0.0,
				"k8s_node_vcpu_hourly":     0.01,
				"k8s_node_ram_gb_hourly":   0.005,
			},
		},
	}
}
