package cmd

import (
	"github.com/prometheus/client_golang/prometheus"

	adpricing "ionos-finops/adapters/pricing"
	corepricing "ionos-finops/core/pricing"
	"ionos-finops/core/types"
	"ionos-finops/internal/config"
)

// newFetcher builds the billing API client from configuration, wrapped
// with request metrics registered on reg (nil skips registration).
func newFetcher(cfg *config.Config, reg prometheus.Registerer) (*adpricing.MetricsFetcher, error) {
	client := adpricing.NewClient(adpricing.Config{
		CloudAPIURL:   cfg.Remote.CloudAPIURL,
		BillingAPIURL: cfg.Remote.BillingAPIURL,
		Timeout:       cfg.Remote.Timeout,
		RetryCount:    cfg.Remote.RetryCount,
		RetryDelay:    cfg.Remote.RetryDelay,
	})
	return adpricing.NewMetricsFetcher(client, reg)
}

func newCache(cfg *config.Config) *corepricing.FileCache {
	return corepricing.NewFileCache(cfg.Pricing.CacheDir)
}

func loadCredentials() (types.Credentials, error) {
	return config.LoadCredentials(envFile)
}

// loadOverrides reads path, falling back to the configured overrides file
func loadOverrides(cfg *config.Config, path string) (map[string]any, error) {
	if path == "" {
		path = cfg.Pricing.OverridesFile
	}
	if path == "" {
		return nil, nil
	}
	return corepricing.LoadOverrides(path)
}
