package pricing

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"ionos-finops/core/types"
	"ionos-finops/internal/errors"
)

// DeepMerge returns base with override applied on top. Where both sides
// hold a mapping the merge recurses; otherwise the override value replaces
// the base value. Neither input is modified.
func DeepMerge(base, override map[string]any) map[string]any {
	out := make(map[string]any, len(base)+len(override))
	for k, v := range base {
		out[k] = copyValue(v)
	}
	for k, v := range override {
		baseMap, baseIsMap := out[k].(map[string]any)
		overMap, overIsMap := v.(map[string]any)
		if baseIsMap && overIsMap {
			out[k] = DeepMerge(baseMap, overMap)
			continue
		}
		out[k] = copyValue(v)
	}
	return out
}

func copyValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return DeepMerge(t, nil)
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = copyValue(item)
		}
		return out
	default:
		return v
	}
}

// MergeCatalog applies overrides to a catalog. A nil or empty override
// yields a copy of the catalog. Overrides that put a non-numeric value in
// a price category, or that leave any price negative or non-finite, are
// rejected with an Input error and the catalog is left untouched.
func MergeCatalog(c *types.PricingCatalog, overrides map[string]any) (*types.PricingCatalog, error) {
	if len(overrides) == 0 {
		return c.Clone(), nil
	}
	if err := checkOverrideCategories(c, overrides); err != nil {
		return nil, err
	}
	merged, err := types.CatalogFromMap(DeepMerge(c.ToMap(), overrides))
	if err != nil {
		return nil, errors.Wrap(errors.TypeInput, "invalid pricing overrides", err)
	}
	if err := Validate(merged); err != nil {
		return nil, errors.Wrap(errors.TypeInput, "invalid pricing overrides", err)
	}
	return merged, nil
}

// checkOverrideCategories requires every override aimed at an existing
// price category to be a mapping of numbers.
func checkOverrideCategories(c *types.PricingCatalog, overrides map[string]any) error {
	for name, value := range overrides {
		if _, ok := c.Categories[name]; !ok {
			continue
		}
		prices, ok := value.(map[string]any)
		if !ok {
			return errors.Newf(errors.TypeInput, "pricing override %q must be a mapping of prices, got %T", name, value)
		}
		for key, raw := range prices {
			if !types.IsPrice(raw) {
				return errors.Newf(errors.TypeInput, "pricing override %s.%s must be a number, got %v", name, key, raw)
			}
		}
	}
	return nil
}

// LoadOverrides reads a JSON or YAML overrides file into a mapping.
// JSON is a subset of YAML so one decoder serves both.
func LoadOverrides(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(errors.TypeInput, err, "failed to read pricing file %s", path)
	}

	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, errors.Parsing("failed to parse pricing file "+filepath.Base(path), err)
	}

	normalized, _ := normalizeYAML(raw).(map[string]any)
	if normalized == nil {
		normalized = map[string]any{}
	}
	return normalized, nil
}

// normalizeYAML converts integers to float64 so overrides compare equal to
// catalogs decoded from JSON.
func normalizeYAML(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[k] = normalizeYAML(val)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = normalizeYAML(val)
		}
		return out
	case int:
		return float64(t)
	case int64:
		return float64(t)
	case uint64:
		return float64(t)
	default:
		return v
	}
}
