package cmd

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"ionos-finops/core/pricing/scheduler"
	"ionos-finops/internal/config"
	"ionos-finops/internal/errors"
)

var pricingCmd = &cobra.Command{
	Use:   "pricing",
	Short: "Manage cached IONOS pricing catalogs",
	Long: `Pricing catalog management.

Catalogs are cached per region under the configured cache directory.
update and daemon need IONOS_TOKEN, or IONOS_USERNAME and IONOS_PASSWORD,
plus IONOS_CONTRACT_ID, in the environment or the --env-file.`,
}

var pricingStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the age of every cached region catalog",
	RunE:  runPricingStatus,
}

var pricingValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check the configured API credentials",
	RunE:  runPricingValidate,
}

var pricingStatusJSON bool

func init() {
	rootCmd.AddCommand(pricingCmd)
	pricingCmd.AddCommand(pricingStatusCmd)
	pricingCmd.AddCommand(pricingValidateCmd)

	pricingStatusCmd.Flags().BoolVar(&pricingStatusJSON, "json", false, "print status as JSON")
}

func runPricingStatus(cmd *cobra.Command, args []string) error {
	cfg := config.Get()
	creds, err := loadCredentials()
	if err != nil {
		return err
	}

	regions := cfg.Scheduler.Regions
	if len(regions) == 0 {
		regions = supportedRegions()
	}
	status := scheduler.Status{
		State:                 scheduler.StateIdle.String(),
		CredentialsConfigured: creds.HasAny(),
		Regions:               scheduler.RegionStatuses(newCache(cfg), regions, time.Now(), cfg.Pricing.CacheTTL()),
	}

	out := cmd.OutOrStdout()
	if pricingStatusJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(status)
	}

	fmt.Fprintf(out, "Cache directory: %s\n", cfg.Pricing.CacheDir)
	fmt.Fprintf(out, "Credentials:     %s\n\n", configured(status.CredentialsConfigured))

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "REGION\tLAST UPDATE\tSTATUS")
	for _, rs := range status.Regions {
		last := rs.LastUpdate
		if last == "" {
			last = "never"
		}
		state := "fresh"
		if rs.NeedsUpdate {
			state = "needs update"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\n", rs.Region, last, state)
	}
	return tw.Flush()
}

func runPricingValidate(cmd *cobra.Command, args []string) error {
	cfg := config.Get()
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
	ok, err := fetcher.ValidateCredentials(cmd.Context(), creds)
	if err != nil {
		return err
	}
	if !ok {
		return errors.InvalidCredentials("IONOS API rejected the credentials")
	}

	fmt.Fprintln(cmd.OutOrStdout(), "✓ credentials accepted")
	return nil
}

func configured(ok bool) string {
	if ok {
		return "configured"
	}
	return "not configured"
}
