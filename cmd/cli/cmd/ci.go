package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"ionos-finops/adapters/ci"
	"ionos-finops/adapters/git"
	"ionos-finops/adapters/webhook"
	"ionos-finops/internal/config"
	"ionos-finops/internal/errors"
)

var ciCmd = &cobra.Command{
	Use:   "ci [path]",
	Short: "Check a cost estimate against a budget in CI",
	Long: `Price the definitions and evaluate budget rules for a CI pipeline.

The markdown report goes to stdout and, when set, is appended to the file
named by --summary-file (GITHUB_STEP_SUMMARY by default). In blocking
mode the command exits non-zero when a rule fails.

Examples:
  ionos-finops ci --budget 500 ./infra
  ionos-finops ci --plan-file plan.json --mode warning --max-skipped 10`,
	Args: cobra.MaximumNArgs(1),
	RunE: runCI,
}

var (
	ciPlanFile    string
	ciRegion      string
	ciPricingFile string
	ciMode        string
	ciBudget      float64
	ciMaxSkipped  float64
	ciFailOnWarn  bool
	ciJSON        bool
	ciSummaryFile string
	ciWebhookURL  string
	ciWebhookType string
	ciWebhookKey  string
	ciBaseRef     string
)

func init() {
	rootCmd.AddCommand(ciCmd)

	ciCmd.Flags().StringVar(&ciPlanFile, "plan-file", "", "Terraform plan (JSON or .tfplan) to price instead of a path")
	ciCmd.Flags().StringVarP(&ciRegion, "region", "r", "", "pricing region, e.g. de/fra")
	ciCmd.Flags().StringVar(&ciPricingFile, "pricing-file", "", "JSON or YAML price overrides")
	ciCmd.Flags().StringVar(&ciMode, "mode", "blocking", "informational, warning or blocking")
	ciCmd.Flags().Float64Var(&ciBudget, "budget", 0, "monthly budget limit (0 disables)")
	ciCmd.Flags().Float64Var(&ciMaxSkipped, "max-skipped", -1, "max percent of resources without a cost model (-1 disables)")
	ciCmd.Flags().BoolVar(&ciFailOnWarn, "fail-on-warnings", false, "fail on warnings in blocking mode")
	ciCmd.Flags().BoolVar(&ciJSON, "json", false, "print the result as JSON instead of markdown")
	ciCmd.Flags().StringVar(&ciSummaryFile, "summary-file", os.Getenv("GITHUB_STEP_SUMMARY"), "file the markdown report is appended to")
	ciCmd.Flags().StringVar(&ciBaseRef, "base-ref", "", "skip the check when no Terraform file changed since this git ref")
	ciCmd.Flags().StringVar(&ciWebhookURL, "webhook-url", "", "post the result to this URL")
	ciCmd.Flags().StringVar(&ciWebhookType, "webhook-provider", "custom", "webhook format: slack, teams or custom")
	ciCmd.Flags().StringVar(&ciWebhookKey, "webhook-secret", os.Getenv("IONOS_FINOPS_WEBHOOK_SECRET"), "HMAC secret for custom webhooks")
}

func runCI(cmd *cobra.Command, args []string) error {
	mode, err := ci.ParseMode(ciMode)
	if err != nil {
		return err
	}

	path := "."
	if len(args) > 0 {
		path = args[0]
	}
	if ciPlanFile != "" {
		path = ciPlanFile
	}

	repo, err := git.New(git.Config{RepoPath: repoDir(path)})
	if err != nil {
		return err
	}
	if ciBaseRef != "" {
		changed, err := repo.HasTerraformChanges(cmd.Context(), ciBaseRef, "HEAD")
		if err != nil {
			return err
		}
		if !changed {
			fmt.Fprintf(cmd.OutOrStdout(), "No Terraform changes since %s, skipping cost check\n", ciBaseRef)
			return nil
		}
	}

	summary, err := estimate(cmd.Context(), config.Get(), estimateOptions{
		Path:        path,
		Region:      ciRegion,
		PricingFile: ciPricingFile,
	})
	if err != nil {
		return err
	}

	ciCfg := ci.DefaultConfig()
	ciCfg.Mode = mode
	ciCfg.BudgetLimit = ciBudget
	ciCfg.MaxSkippedPercent = ciMaxSkipped
	ciCfg.FailOnWarnings = ciFailOnWarn
	result := ci.Evaluate(summary, ciCfg)
	if gitCtx, err := repo.GetContext(cmd.Context()); err == nil && gitCtx.IsRepo {
		result.Branch = gitCtx.Branch
		result.Commit = gitCtx.ShortCommit
	}

	out := cmd.OutOrStdout()
	if ciJSON {
		err = ci.WriteJSON(out, result)
	} else {
		err = ci.WriteMarkdown(out, result, ciCfg.Title)
	}
	if err != nil {
		return err
	}

	if ciSummaryFile != "" {
		if err := appendSummary(ciSummaryFile, result, ciCfg.Title); err != nil {
			return err
		}
	}

	if ciWebhookURL != "" {
		provider, err := webhook.ParseProvider(ciWebhookType)
		if err != nil {
			return err
		}
		hookCfg := webhook.DefaultConfig(provider)
		hookCfg.Endpoint = ciWebhookURL
		hookCfg.Secret = ciWebhookKey
		if err := webhook.New(hookCfg).Send(cmd.Context(), webhook.NewPayload(result, time.Now())); err != nil {
			return err
		}
	}

	if result.ExitCode != 0 {
		return errors.Newf(errors.TypeInput, "cost check failed: %d violation(s)", len(result.Violations))
	}
	return nil
}

// repoDir is the directory git commands run in for a definitions path
func repoDir(path string) string {
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		return path
	}
	return filepath.Dir(path)
}

func appendSummary(path string, result *ci.Result, title string) error {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return errors.Wrapf(errors.TypeInput, err, "failed to open summary file %s", path)
	}
	defer f.Close()

	return ci.WriteMarkdown(f, result, title)
}
