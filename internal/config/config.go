// Package config provides configuration management.
package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"ionos-finops/internal/errors"
	"ionos-finops/internal/logging"
)

// EnvPrefix is prepended to every environment override, e.g. IONOS_FINOPS_PRICING_REGION
const EnvPrefix = "IONOS_FINOPS"

// Config is the main application configuration
type Config struct {
	// Version is the configuration version
	Version string `json:"version" mapstructure:"version"`

	// Pricing contains catalog resolution settings
	Pricing PricingConfig `json:"pricing" mapstructure:"pricing"`

	// Remote contains remote pricing API settings
	Remote RemoteConfig `json:"remote" mapstructure:"remote"`

	// Scheduler contains background refresh settings
	Scheduler SchedulerConfig `json:"scheduler" mapstructure:"scheduler"`

	// Output contains output configuration
	Output OutputConfig `json:"output" mapstructure:"output"`

	// Logging contains logging configuration
	Logging logging.Config `json:"logging" mapstructure:"logging"`
}

// PricingConfig contains pricing-related settings
type PricingConfig struct {
	// Region is the default pricing region
	Region string `json:"region" mapstructure:"region"`

	// CacheDir is the directory holding per-region catalog files
	CacheDir string `json:"cache_dir" mapstructure:"cache_dir"`

	// CacheTTLHours is how long a catalog stays fresh
	CacheTTLHours int `json:"cache_ttl_hours" mapstructure:"cache_ttl_hours"`

	// UseAPI enables remote refresh of stale catalogs
	UseAPI bool `json:"use_api" mapstructure:"use_api"`

	// OverridesFile is an optional JSON/YAML file merged over every catalog
	OverridesFile string `json:"overrides_file,omitempty" mapstructure:"overrides_file"`
}

// RemoteConfig contains remote pricing client settings
type RemoteConfig struct {
	CloudAPIURL   string        `json:"cloud_api_url" mapstructure:"cloud_api_url"`
	BillingAPIURL string        `json:"billing_api_url" mapstructure:"billing_api_url"`
	Timeout       time.Duration `json:"timeout" mapstructure:"timeout"`
	RetryCount    int           `json:"retry_count" mapstructure:"retry_count"`
	RetryDelay    time.Duration `json:"retry_delay" mapstructure:"retry_delay"`
}

// SchedulerConfig contains background refresh settings
type SchedulerConfig struct {
	// Regions to refresh; empty means all supported regions
	Regions []string `json:"regions,omitempty" mapstructure:"regions"`

	// Interval between successful cycles
	Interval time.Duration `json:"interval" mapstructure:"interval"`

	// RetryInterval is used after a cycle where nothing succeeded
	RetryInterval time.Duration `json:"retry_interval" mapstructure:"retry_interval"`

	// StopTimeout bounds how long Stop waits for the worker
	StopTimeout time.Duration `json:"stop_timeout" mapstructure:"stop_timeout"`

	// MetricsAddr is the listen address of the status server
	MetricsAddr string `json:"metrics_addr" mapstructure:"metrics_addr"`
}

// OutputConfig contains output-related settings
type OutputConfig struct {
	// Format is the default output format (table, json, html)
	Format string `json:"format" mapstructure:"format"`

	// ShowDetails shows per-resource breakdowns
	ShowDetails bool `json:"show_details" mapstructure:"show_details"`
}

// CacheTTL returns the pricing TTL as a duration
func (p PricingConfig) CacheTTL() time.Duration {
	return time.Duration(p.CacheTTLHours) * time.Hour
}

// DefaultCacheDir returns $HOME/.ionos-finops/cache
func DefaultCacheDir() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		homeDir = "."
	}
	return filepath.Join(homeDir, ".ionos-finops", "cache")
}

// Default returns a default configuration
func Default() *Config {
	return &Config{
		Version: "1.0",
		Pricing: PricingConfig{
			Region:        "de/fra",
			CacheDir:      DefaultCacheDir(),
			CacheTTLHours: 24,
		},
		Remote: RemoteConfig{
			CloudAPIURL:   "https://api.ionos.com/cloudapi/v6",
			BillingAPIURL: "https://api.ionos.com/billing/v3",
			Timeout:       30 * time.Second,
			RetryCount:    3,
			RetryDelay:    500 * time.Millisecond,
		},
		Scheduler: SchedulerConfig{
			Interval:      24 * time.Hour,
			RetryInterval: 5 * time.Minute,
			StopTimeout:   10 * time.Second,
			MetricsAddr:   ":9464",
		},
		Output: OutputConfig{
			Format:      "table",
			ShowDetails: false,
		},
		Logging: logging.DefaultConfig(),
	}
}

// setDefaults registers every key so that environment overrides apply
// even when the config file does not mention them.
func setDefaults(v *viper.Viper, cfg *Config) {
	v.SetDefault("version", cfg.Version)

	v.SetDefault("pricing.region", cfg.Pricing.Region)
	v.SetDefault("pricing.cache_dir", cfg.Pricing.CacheDir)
	v.SetDefault("pricing.cache_ttl_hours", cfg.Pricing.CacheTTLHours)
	v.SetDefault("pricing.use_api", cfg.Pricing.UseAPI)
	v.SetDefault("pricing.overrides_file", cfg.Pricing.OverridesFile)

	v.SetDefault("remote.cloud_api_url", cfg.Remote.CloudAPIURL)
	v.SetDefault("remote.billing_api_url", cfg.Remote.BillingAPIURL)
	v.SetDefault("remote.timeout", cfg.Remote.Timeout)
	v.SetDefault("remote.retry_count", cfg.Remote.RetryCount)
	v.SetDefault("remote.retry_delay", cfg.Remote.RetryDelay)

	v.SetDefault("scheduler.regions", cfg.Scheduler.Regions)
	v.SetDefault("scheduler.interval", cfg.Scheduler.Interval)
	v.SetDefault("scheduler.retry_interval", cfg.Scheduler.RetryInterval)
	v.SetDefault("scheduler.stop_timeout", cfg.Scheduler.StopTimeout)
	v.SetDefault("scheduler.metrics_addr", cfg.Scheduler.MetricsAddr)

	v.SetDefault("output.format", cfg.Output.Format)
	v.SetDefault("output.show_details", cfg.Output.ShowDetails)

	v.SetDefault("logging.level", cfg.Logging.Level)
	v.SetDefault("logging.format", cfg.Logging.Format)
	v.SetDefault("logging.output", cfg.Logging.Output)
	v.SetDefault("logging.development", cfg.Logging.Development)
}

// Load loads configuration from a file, applying IONOS_FINOPS_* environment
// overrides. A missing file yields the defaults (plus overrides).
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v, Default())

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			v.SetConfigFile(path)
			if err := v.ReadInConfig(); err != nil {
				return nil, errors.Config("failed to read config file "+path, err)
			}
		} else if !os.IsNotExist(err) {
			return nil, errors.Config("failed to stat config file "+path, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, errors.Config("failed to decode configuration", err)
	}

	return cfg, nil
}

// Save saves configuration to a file
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// Global configuration instance
var globalConfig = Default()

// Get returns the global configuration
func Get() *Config {
	return globalConfig
}

// Set sets the global configuration
func Set(config *Config) {
	globalConfig = config
}
