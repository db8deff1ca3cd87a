// Package ci evaluates a cost summary against budget rules and renders the
// result for CI systems (exit code, check conclusion, markdown summary).
package ci

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"ionos-finops/core/cost"
	"ionos-finops/core/output"
	"ionos-finops/core/types"
	"ionos-finops/internal/errors"
)

// Mode controls CI behavior
type Mode string

const (
	// ModeInformational only reports, never fails
	ModeInformational Mode = "informational"

	// ModeWarning reports violations as a neutral conclusion
	ModeWarning Mode = "warning"

	// ModeBlocking fails the check on errors
	ModeBlocking Mode = "blocking"
)

// ParseMode validates a mode name
func ParseMode(s string) (Mode, error) {
	switch m := Mode(strings.ToLower(strings.TrimSpace(s))); m {
	case ModeInformational, ModeWarning, ModeBlocking:
		return m, nil
	case "":
		return ModeBlocking, nil
	default:
		return "", errors.Input(fmt.Sprintf("unknown CI mode %q (use informational, warning or blocking)", s))
	}
}

// Config configures CI evaluation
type Config struct {
	Mode Mode `json:"mode"`

	// BudgetLimit is the monthly cost ceiling; 0 disables it
	BudgetLimit float64 `json:"budget_limit"`

	// MaxSkippedPercent is the share of resources allowed to lack a cost
	// model; negative disables the rule
	MaxSkippedPercent float64 `json:"max_skipped_percent"`

	// FailOnWarnings treats warnings as errors in blocking mode
	FailOnWarnings bool `json:"fail_on_warnings"`

	// Title heads the markdown report
	Title string `json:"title"`

	// TopN is the number of most expensive resources listed
	TopN int `json:"top_n"`
}

// DefaultConfig returns production defaults
func DefaultConfig() Config {
	return Config{
		Mode:              ModeBlocking,
		MaxSkippedPercent: -1,
		Title:             "💰 IONOS Cloud Cost Estimate",
		TopN:              5,
	}
}

// Violation is a failed rule
type Violation struct {
	Rule      string  `json:"rule"`
	Message   string  `json:"message"`
	Severity  string  `json:"severity"` // error, warning
	Threshold float64 `json:"threshold"`
	Actual    float64 `json:"actual"`
}

// ResourceCost is one priced resource in the report
type ResourceCost struct {
	Address     string  `json:"address"`
	MonthlyCost float64 `json:"monthly_cost"`
}

// Result is the CI outcome
type Result struct {
	ExitCode        int            `json:"exit_code"`
	CheckConclusion string         `json:"check_conclusion"` // success, neutral, failure
	Region          string         `json:"region"`
	Currency        types.Currency `json:"currency"`
	TotalCost       float64        `json:"total_cost"`
	Resources       int            `json:"resources"`
	Skipped         int            `json:"skipped"`
	Violations      []Violation    `json:"violations,omitempty"`
	TopResources    []ResourceCost `json:"top_resources"`

	// Branch and Commit identify the revision, when known
	Branch string `json:"branch,omitempty"`
	Commit string `json:"commit,omitempty"`
}

// Evaluate applies the configured rules to a summary
func Evaluate(s *types.CostSummary, cfg Config) *Result {
	if cfg.Mode == "" {
		cfg.Mode = ModeBlocking
	}

	r := &Result{
		Region:    s.Region,
		Currency:  s.Currency,
		TotalCost: s.TotalCost.Monthly,
		Resources: s.TotalResources,
		Skipped:   s.Skipped,
	}
	for _, rc := range cost.TopResources(s, cfg.TopN) {
		r.TopResources = append(r.TopResources, ResourceCost{
			Address:     rc.Type + "." + rc.Name,
			MonthlyCost: rc.Costs.Monthly,
		})
	}

	if cfg.BudgetLimit > 0 && s.TotalCost.Monthly > cfg.BudgetLimit {
		r.Violations = append(r.Violations, Violation{
			Rule: "budget_limit",
			Message: fmt.Sprintf("monthly cost %s exceeds budget %s",
				output.Money(s.TotalCost.Monthly, 2, s.Currency),
				output.Money(cfg.BudgetLimit, 2, s.Currency)),
			Severity:  "error",
			Threshold: cfg.BudgetLimit,
			Actual:    s.TotalCost.Monthly,
		})
	}

	if total := s.TotalResources + s.Skipped; cfg.MaxSkippedPercent >= 0 && total > 0 {
		pct := float64(s.Skipped) / float64(total) * 100
		if pct > cfg.MaxSkippedPercent {
			r.Violations = append(r.Violations, Violation{
				Rule:      "skipped_resources",
				Message:   fmt.Sprintf("%.0f%% of resources have no cost model (max %.0f%%)", pct, cfg.MaxSkippedPercent),
				Severity:  "warning",
				Threshold: cfg.MaxSkippedPercent,
				Actual:    pct,
			})
		}
	}

	hasErrors, hasWarnings := false, false
	for _, v := range r.Violations {
		if v.Severity == "error" {
			hasErrors = true
		} else {
			hasWarnings = true
		}
	}

	switch cfg.Mode {
	case ModeInformational:
		r.CheckConclusion = "success"
	case ModeWarning:
		r.CheckConclusion = "success"
		if hasErrors || hasWarnings {
			r.CheckConclusion = "neutral"
		}
	default:
		r.CheckConclusion = "success"
		if hasErrors || (hasWarnings && cfg.FailOnWarnings) {
			r.ExitCode = 1
			r.CheckConclusion = "failure"
		}
	}
	return r
}

// WriteJSON encodes the result
func WriteJSON(w io.Writer, r *Result) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}

// WriteMarkdown renders the result as a PR comment or job summary
func WriteMarkdown(w io.Writer, r *Result, title string) error {
	var sb strings.Builder

	if title == "" {
		title = DefaultConfig().Title
	}
	fmt.Fprintf(&sb, "## %s\n\n", title)
	fmt.Fprintf(&sb, "**Total Monthly Cost:** %s (%s)\n", output.Money(r.TotalCost, 2, r.Currency), r.Region)
	fmt.Fprintf(&sb, "**Resources:** %d priced, %d skipped\n\n", r.Resources, r.Skipped)

	if len(r.TopResources) > 0 {
		sb.WriteString("### Top Resources by Cost\n")
		for _, rc := range r.TopResources {
			fmt.Fprintf(&sb, "- `%s`: %s\n", rc.Address, output.Money(rc.MonthlyCost, 2, r.Currency))
		}
		sb.WriteString("\n")
	}

	if len(r.Violations) > 0 {
		sb.WriteString("### Policy Violations\n")
		for _, v := range r.Violations {
			icon := "⚠️"
			if v.Severity == "error" {
				icon = "❌"
			}
			fmt.Fprintf(&sb, "- %s **%s**: %s\n", icon, v.Rule, v.Message)
		}
		sb.WriteString("\n")
	}

	sb.WriteString("---\n")
	if r.Commit != "" {
		fmt.Fprintf(&sb, "Commit: `%s` (%s)\n", r.Commit, r.Branch)
	}
	fmt.Fprintf(&sb, "Check: **%s**\n", r.CheckConclusion)

	_, err := io.WriteString(w, sb.String())
	return err
}
