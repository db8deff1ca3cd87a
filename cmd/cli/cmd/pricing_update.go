package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	corepricing "ionos-finops/core/pricing"
	"ionos-finops/internal/config"
	"ionos-finops/internal/errors"
	"ionos-finops/internal/logging"
)

var pricingUpdateCmd = &cobra.Command{
	Use:   "update",
	Short: "Fetch pricing from the IONOS billing API into the cache",
	Long: `Fetch the current contract prices and write the region cache files.

Unlike breakdown --use-api, which silently falls back to bundled prices,
update reports every failure and rejects missing or invalid credentials.

Examples:
  ionos-finops pricing update
  ionos-finops pricing update --region gb/lhr`,
	RunE: runPricingUpdate,
}

var (
	updateRegion  string
	updateTimeout time.Duration
)

func init() {
	pricingCmd.AddCommand(pricingUpdateCmd)

	pricingUpdateCmd.Flags().StringVarP(&updateRegion, "region", "r", "all", "region to update, or 'all'")
	pricingUpdateCmd.Flags().DurationVar(&updateTimeout, "timeout", 5*time.Minute, "timeout for the whole update")
}

func runPricingUpdate(cmd *cobra.Command, args []string) error {
	cfg := config.Get()
	logger := logging.Named("update")

	creds, err := loadCredentials()
	if err != nil {
		return err
	}
	if !creds.HasAny() {
		return errors.InvalidCredentials("no IONOS credentials found in the environment")
	}

	fetcher, err := newFetcher(cfg, nil)
	if err != nil {
		return err
	}
	resolver := corepricing.NewResolver(corepricing.Options{
		Cache:   newCache(cfg),
		Fetcher: fetcher,
		Logger:  logger,
	})

	regions := []string{updateRegion}
	if updateRegion == "all" {
		regions = supportedRegions()
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), updateTimeout)
	defer cancel()

	out := cmd.OutOrStdout()
	var successful, failed []string
	startTime := time.Now()

	for i, region := range regions {
		regionStart := time.Now()
		catalog, err := resolver.Refresh(ctx, region, nil, creds)
		if err != nil {
			// Rejected credentials fail every region the same way.
			if errors.IsType(err, errors.TypeInvalidCredentials) {
				return err
			}
			logger.Warn("region update failed", zap.String("region", region), zap.Error(err))
			fmt.Fprintf(out, "[%d/%d] ✗ %s: %v\n", i+1, len(regions), region, err)
			failed = append(failed, region)
			continue
		}
		fmt.Fprintf(out, "[%d/%d] ✓ %s (%d categories, %s)\n",
			i+1, len(regions), region, len(catalog.Categories), time.Since(regionStart).Round(time.Millisecond))
		successful = append(successful, region)
	}

	fmt.Fprintf(out, "\nDuration:   %s\n", time.Since(startTime).Round(time.Millisecond))
	fmt.Fprintf(out, "Successful: %d regions\n", len(successful))
	fmt.Fprintf(out, "Failed:     %d regions\n", len(failed))

	if len(failed) > 0 {
		return errors.Newf(errors.TypeRemoteFetch, "%d of %d regions failed", len(failed), len(regions))
	}
	return nil
}

func supportedRegions() []string {
	return corepricing.SupportedRegions()
}
