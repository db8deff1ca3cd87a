package cost

import (
	"context"
	"time"

	"go.uber.org/zap"

	"ionos-finops/clouds"
	"ionos-finops/core/pricing"
	"ionos-finops/core/types"
	"ionos-finops/internal/logging"
)

// DefinitionReader turns an infrastructure definition into resources
type DefinitionReader interface {
	Read(ctx context.Context, path string) ([]types.NormalizedResource, error)
}

// CalculatorOptions configure a Calculator
type CalculatorOptions struct {
	Region      string
	Overrides   map[string]any
	UseRemote   bool
	Credentials types.Credentials
	CacheTTL    time.Duration

	// Resolver defaults to a resolver with no cache and no remote client
	Resolver *pricing.Resolver

	// Registry holds the resource handlers and is required
	Registry *clouds.Registry

	Logger *zap.Logger
}

// Calculator resolves a catalog once and prices resources against it
type Calculator struct {
	region     string
	catalog    *types.PricingCatalog
	prices     types.PriceTable
	aggregator *Aggregator
	resources  []types.NormalizedResource
	logger     *zap.Logger
}

// NewCalculator resolves the catalog for opts.Region
func NewCalculator(ctx context.Context, opts CalculatorOptions) *Calculator {
	region := opts.Region
	if region == "" {
		region = pricing.DefaultRegion
	}
	resolver := opts.Resolver
	if resolver == nil {
		resolver = pricing.NewResolver(pricing.Options{})
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.Named("calculator")
	}

	catalog := resolver.Resolve(ctx, pricing.Request{
		Region:      region,
		Overrides:   opts.Overrides,
		UseRemote:   opts.UseRemote,
		Credentials: opts.Credentials,
		CacheTTL:    opts.CacheTTL,
	})

	for _, c := range pricing.Collisions(catalog) {
		logger.Debug("price key present in several categories",
			zap.String("key", c.Key),
			zap.String("winner", c.Winner),
			zap.Strings("shadowed", c.Shadowed))
	}

	return &Calculator{
		region:     region,
		catalog:    catalog,
		prices:     pricing.Flatten(catalog),
		aggregator: NewAggregator(opts.Registry),
		logger:     logger,
	}
}

// Load appends resources to be priced
func (c *Calculator) Load(resources ...types.NormalizedResource) {
	c.resources = append(c.resources, resources...)
}

// LoadFrom reads resources from path and appends them
func (c *Calculator) LoadFrom(ctx context.Context, reader DefinitionReader, path string) error {
	resources, err := reader.Read(ctx, path)
	if err != nil {
		return err
	}
	c.logger.Debug("loaded resources", zap.String("path", path), zap.Int("count", len(resources)))
	c.Load(resources...)
	return nil
}

// Resources returns the loaded resources
func (c *Calculator) Resources() []types.NormalizedResource {
	return c.resources
}

// Summary prices every loaded resource
func (c *Calculator) Summary() *types.CostSummary {
	summary := c.aggregator.Aggregate(c.region, c.currency(), c.resources, c.prices)
	if summary.Skipped > 0 {
		c.logger.Info("resources without a cost handler were skipped", zap.Int("skipped", summary.Skipped))
	}
	return summary
}

// Catalog returns the resolved catalog
func (c *Calculator) Catalog() *types.PricingCatalog {
	return c.catalog
}

// Prices returns the flattened catalog
func (c *Calculator) Prices() types.PriceTable {
	return c.prices
}

func (c *Calculator) currency() types.Currency {
	if c.catalog.Currency != "" {
		return c.catalog.Currency
	}
	return pricing.CurrencyForRegion(c.region)
}
