package cmd

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"ionos-finops/adapters/terraform"
	"ionos-finops/clouds/ionos"
	"ionos-finops/core/cost"
	corepricing "ionos-finops/core/pricing"
	"ionos-finops/core/output"
	"ionos-finops/core/types"
	"ionos-finops/internal/config"
	"ionos-finops/internal/errors"
	"ionos-finops/internal/logging"
)

var (
	breakdownPlanFile    string
	breakdownFormat      string
	breakdownOutput      string
	breakdownRegion      string
	breakdownPricingFile string
	breakdownUseAPI      bool
	breakdownCacheTTL    int
	breakdownDetails     bool
)

// breakdownCmd prices a Terraform project or plan
var breakdownCmd = &cobra.Command{
	Use:   "breakdown [path]",
	Short: "Show the cost breakdown of IONOS resources",
	Long: `Read IONOS resources from Terraform and print their estimated cost.

The path can be a directory of .tf files, a single .tf file, plan JSON
(terraform show -json) or a binary .tfplan (requires terraform on PATH).

Examples:
  ionos-finops breakdown .
  ionos-finops breakdown --plan-file plan.json --format json --output cost.json
  ionos-finops breakdown ./infra --format html --output report.html
  ionos-finops breakdown --region gb/lhr --pricing-file prices.yaml ./infra
  ionos-finops breakdown --use-api --cache-ttl 6 ./infra`,
	Args: cobra.MaximumNArgs(1),
	RunE: runBreakdown,
}

func init() {
	rootCmd.AddCommand(breakdownCmd)

	breakdownCmd.Flags().StringVar(&breakdownPlanFile, "plan-file", "", "Terraform plan (JSON or .tfplan) to price instead of a path")
	breakdownCmd.Flags().StringVarP(&breakdownFormat, "format", "f", "", "output format (table, json, html)")
	breakdownCmd.Flags().StringVarP(&breakdownOutput, "output", "o", "", "write the report to a file instead of stdout")
	breakdownCmd.Flags().StringVarP(&breakdownRegion, "region", "r", "", "pricing region, e.g. de/fra")
	breakdownCmd.Flags().StringVar(&breakdownPricingFile, "pricing-file", "", "JSON or YAML price overrides")
	breakdownCmd.Flags().BoolVar(&breakdownUseAPI, "use-api", false, "refresh stale pricing from the IONOS billing API")
	breakdownCmd.Flags().IntVar(&breakdownCacheTTL, "cache-ttl", 0, "hours a cached catalog stays fresh (0 uses config)")
	breakdownCmd.Flags().BoolVarP(&breakdownDetails, "details", "d", false, "show per-resource breakdown")
}

func runBreakdown(cmd *cobra.Command, args []string) error {
	cfg := config.Get()

	path := "."
	if len(args) > 0 {
		path = args[0]
	}
	if breakdownPlanFile != "" {
		path = breakdownPlanFile
	}

	format := breakdownFormat
	if format == "" {
		format = cfg.Output.Format
	}
	renderer, err := output.ForFormat(format, breakdownDetails || cfg.Output.ShowDetails)
	if err != nil {
		return err
	}

	summary, err := estimate(cmd.Context(), cfg, estimateOptions{
		Path:        path,
		Region:      breakdownRegion,
		PricingFile: breakdownPricingFile,
		UseAPI:      breakdownUseAPI,
		CacheTTL:    breakdownCacheTTL,
	})
	if err != nil {
		return err
	}

	var w io.Writer = cmd.OutOrStdout()
	if breakdownOutput != "" {
		f, err := os.Create(breakdownOutput)
		if err != nil {
			return errors.Wrapf(errors.TypeInput, err, "failed to create %s", breakdownOutput)
		}
		defer f.Close()
		w = f
	}

	return renderer.Render(w, summary)
}

// estimateOptions are the pricing inputs shared by breakdown and ci
type estimateOptions struct {
	Path        string
	Region      string
	PricingFile string
	UseAPI      bool
	CacheTTL    int // hours; 0 uses config
}

// estimate reads the definitions at opts.Path and prices them
func estimate(ctx context.Context, cfg *config.Config, opts estimateOptions) (*types.CostSummary, error) {
	logger := logging.Named("breakdown")

	region := opts.Region
	if region == "" {
		region = cfg.Pricing.Region
	}
	ttl := cfg.Pricing.CacheTTL()
	if opts.CacheTTL > 0 {
		ttl = time.Duration(opts.CacheTTL) * time.Hour
	}

	overrides, err := loadOverrides(cfg, opts.PricingFile)
	if err != nil {
		return nil, err
	}

	resolverOpts := corepricing.Options{Cache: newCache(cfg), Logger: logging.Named("resolver")}
	var creds types.Credentials
	if opts.UseAPI || cfg.Pricing.UseAPI {
		if creds, err = loadCredentials(); err != nil {
			return nil, err
		}
		fetcher, err := newFetcher(cfg, nil)
		if err != nil {
			return nil, err
		}
		resolverOpts.Fetcher = fetcher
	}

	calc := cost.NewCalculator(ctx, cost.CalculatorOptions{
		Region:      region,
		Overrides:   overrides,
		UseRemote:   resolverOpts.Fetcher != nil,
		Credentials: creds,
		CacheTTL:    ttl,
		Resolver:    corepricing.NewResolver(resolverOpts),
		Registry:    ionos.NewRegistry(),
		Logger:      logging.Named("calculator"),
	})

	if err := calc.LoadFrom(ctx, terraform.NewReader(), opts.Path); err != nil {
		return nil, err
	}

	summary := calc.Summary()
	logger.Debug("priced resources",
		zap.String("region", summary.Region),
		zap.Int("resources", summary.TotalResources),
		zap.Int("skipped", summary.Skipped))
	return summary, nil
}
