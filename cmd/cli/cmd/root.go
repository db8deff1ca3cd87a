// Package cmd provides the CLI commands for ionos-finops.
package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"ionos-finops/internal/config"
	"ionos-finops/internal/logging"
)

// Version is set at build time with -ldflags "-X ionos-finops/cmd/cli/cmd.Version=..."
var Version = "0.1.0"

var (
	cfgFile string
	envFile string
	verbose bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "ionos-finops",
	Short: "Estimate IONOS Cloud costs from Terraform definitions",
	Long: `ionos-finops prices IONOS Cloud infrastructure described in Terraform.

It reads .tf files or plan JSON, resolves a per-region pricing catalog
(local cache, bundled defaults or the IONOS billing API) and reports
hourly, monthly and yearly costs per resource and per resource type.

Examples:
  ionos-finops breakdown ./infrastructure
  ionos-finops breakdown --plan-file plan.json --format json
  ionos-finops pricing update --region de/fra
  ionos-finops pricing daemon --interval 12h`,
	SilenceUsage: true,
}

// Execute runs the CLI
func Execute() error {
	defer logging.Sync()
	return rootCmd.ExecuteContext(context.Background())
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (JSON or YAML)")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file holding IONOS_* credentials")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")

	rootCmd.AddCommand(versionCmd)
}

func initConfig() {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	config.Set(cfg)

	if verbose {
		cfg.Logging.Level = "debug"
	}
	if err := logging.Initialize(cfg.Logging); err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing logging: %v\n", err)
	}
}

// versionCmd prints version information
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "ionos-finops version %s\n", Version)
	},
}
