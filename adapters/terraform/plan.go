package terraform

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strings"

	"ionos-finops/core/types"
	"ionos-finops/internal/errors"
)

// PlanOutput is the subset of `terraform show -json` output that carries
// planned resource values
type PlanOutput struct {
	FormatVersion    string         `json:"format_version"`
	TerraformVersion string         `json:"terraform_version"`
	PlannedValues    *PlannedValues `json:"planned_values,omitempty"`
}

// PlannedValues contains planned values
type PlannedValues struct {
	RootModule PlannedModule `json:"root_module"`
}

// PlannedModule is a planned module
type PlannedModule struct {
	Address      string            `json:"address,omitempty"`
	Resources    []PlannedResource `json:"resources,omitempty"`
	ChildModules []PlannedModule   `json:"child_modules,omitempty"`
}

// PlannedResource is a planned resource
type PlannedResource struct {
	Address string         `json:"address"`
	Mode    string         `json:"mode"`
	Type    string         `json:"type"`
	Name    string         `json:"name"`
	Values  map[string]any `json:"values"`
}

// ParsePlanJSON decodes plan JSON. Numbers are kept as json.Number.
func ParsePlanJSON(data []byte) (*PlanOutput, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var plan PlanOutput
	if err := dec.Decode(&plan); err != nil {
		return nil, errors.DefinitionRead("failed to parse plan JSON", err)
	}
	return &plan, nil
}

// Resources walks the root module and every child module depth first.
// Data sources are skipped.
func (p *PlanOutput) Resources(prefix string) []types.NormalizedResource {
	if p.PlannedValues == nil {
		return []types.NormalizedResource{}
	}
	out := []types.NormalizedResource{}
	collectModule(p.PlannedValues.RootModule, prefix, &out)
	return out
}

func collectModule(m PlannedModule, prefix string, out *[]types.NormalizedResource) {
	for _, r := range m.Resources {
		if r.Mode == "data" || !strings.HasPrefix(r.Type, prefix) {
			continue
		}
		attrs := types.Attributes(r.Values)
		if attrs == nil {
			attrs = types.Attributes{}
		}
		*out = append(*out, types.NormalizedResource{
			Type:       r.Type,
			Name:       r.Name,
			Attributes: attrs,
			Source:     r.Address,
		})
	}
	for _, child := range m.ChildModules {
		collectModule(child, prefix, out)
	}
}

// showPlanJSON runs `terraform show -json` on a binary plan file
func (r *Reader) showPlanJSON(ctx context.Context, planFile string) ([]byte, error) {
	if r.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}

	bin := r.TerraformPath
	if bin == "" {
		bin = "terraform"
	}
	cmd := exec.CommandContext(ctx, bin, "show", "-json", "-no-color", planFile)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		var execErr *exec.Error
		if errors.As(err, &execErr) {
			return nil, errors.DefinitionRead("terraform command not found, install Terraform to read plan files", err)
		}
		return nil, errors.DefinitionRead(
			fmt.Sprintf("terraform show failed: %s", strings.TrimSpace(stderr.String())), err)
	}
	return stdout.Bytes(), nil
}
