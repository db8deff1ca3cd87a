package pricing

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ionos-finops/core/types"
	"ionos-finops/internal/errors"
)

func TestDeepMerge(t *testing.T) {
	tests := []struct {
		name     string
		base     map[string]any
		override map[string]any
		want     map[string]any
	}{
		{
			name:     "nested mappings merge",
			base:     map[string]any{"compute": map[string]any{"vcpu_hourly": 0.01, "ram_gb_hourly": 0.005}},
			override: map[string]any{"compute": map[string]any{"vcpu_hourly": 0.02}},
			want:     map[string]any{"compute": map[string]any{"vcpu_hourly": 0.02, "ram_gb_hourly": 0.005}},
		},
		{
			name:     "leaf replaces mapping",
			base:     map[string]any{"compute": map[string]any{"vcpu_hourly": 0.01}},
			override: map[string]any{"compute": 1.0},
			want:     map[string]any{"compute": 1.0},
		},
		{
			name:     "lists are replaced not merged",
			base:     map[string]any{"tags": []any{"a", "b"}},
			override: map[string]any{"tags": []any{"c"}},
			want:     map[string]any{"tags": []any{"c"}},
		},
		{
			name:     "new keys added",
			base:     map[string]any{"region": "de/fra"},
			override: map[string]any{"network": map[string]any{"ipv4_hourly": 0.004}},
			want:     map[string]any{"region": "de/fra", "network": map[string]any{"ipv4_hourly": 0.004}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DeepMerge(tt.base, tt.override))
		})
	}
}

func TestDeepMergeIdempotence(t *testing.T) {
	override := map[string]any{
		"compute": map[string]any{"vcpu_hourly": 0.02},
		"region":  "gb/lhr",
	}
	base := LoadBundled("de/fra").ToMap()

	assert.Equal(t, override, DeepMerge(override, override))
	assert.Equal(t, base, DeepMerge(base, map[string]any{}))
}

func TestDeepMergeDoesNotMutateInputs(t *testing.T) {
	base := map[string]any{"compute": map[string]any{"vcpu_hourly": 0.01}}
	override := map[string]any{"compute": map[string]any{"vcpu_hourly": 0.02}}

	merged := DeepMerge(base, override)
	merged["compute"].(map[string]any)["ram_gb_hourly"] = 1.0

	assert.Equal(t, map[string]any{"vcpu_hourly": 0.01}, base["compute"])
	assert.Equal(t, map[string]any{"vcpu_hourly": 0.02}, override["compute"])
}

func TestMergeCatalogOverrideWinsOverAnyBase(t *testing.T) {
	override := map[string]any{"compute": map[string]any{"vcpu_hourly": 0.02}}

	for _, base := range []float64{0, 0.01, 0.5, 12} {
		c := &types.PricingCatalog{Region: "de/fra"}
		c.Category(CategoryCompute)["vcpu_hourly"] = base
		c.Category(CategoryCompute)["ram_gb_hourly"] = 0.005

		merged, err := MergeCatalog(c, override)
		require.NoError(t, err)

		table := Flatten(merged)
		assert.Equal(t, 0.02, table["vcpu_hourly"])
		assert.Equal(t, 0.005, table["ram_gb_hourly"])
		assert.Equal(t, base, c.Categories[CategoryCompute]["vcpu_hourly"])
	}
}

func TestMergeCatalogRejectsInvalidPrices(t *testing.T) {
	tests := []struct {
		name     string
		override map[string]any
	}{
		{"negative", map[string]any{"compute": map[string]any{"vcpu_hourly": -0.5}}},
		{"string value", map[string]any{"compute": map[string]any{"note": "contract"}}},
		{"category replaced by scalar", map[string]any{"storage": 3.0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			base := MinimalCatalog("de/fra")

			merged, err := MergeCatalog(base, tt.override)
			require.Error(t, err)
			assert.Nil(t, merged)
			assert.True(t, errors.IsType(err, errors.TypeInput))
			assert.Equal(t, 0.01, base.Categories[CategoryCompute]["vcpu_hourly"])
		})
	}
}

func TestMergeCatalogRejectsBadMetadata(t *testing.T) {
	_, err := MergeCatalog(MinimalCatalog("de/fra"), map[string]any{"region": 42})
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.TypeInput))
}

func TestLoadOverrides(t *testing.T) {
	dir := t.TempDir()

	yamlPath := filepath.Join(dir, "prices.yaml")
	require.NoError(t, os.WriteFile(yamlPath, []byte("compute:\n  vcpu_hourly: 0.02\n  ram_gb_hourly: 1\n"), 0644))

	jsonPath := filepath.Join(dir, "prices.json")
	require.NoError(t, os.WriteFile(jsonPath, []byte(`{"network": {"ipv4_hourly": 0.004}}`), 0644))

	got, err := LoadOverrides(yamlPath)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"compute": map[string]any{"vcpu_hourly": 0.02, "ram_gb_hourly": 1.0}}, got)

	got, err = LoadOverrides(jsonPath)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"network": map[string]any{"ipv4_hourly": 0.004}}, got)

	_, err = LoadOverrides(filepath.Join(dir, "absent.yaml"))
	assert.True(t, errors.IsType(err, errors.TypeInput))

	badPath := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(badPath, []byte("compute: [unclosed"), 0644))
	_, err = LoadOverrides(badPath)
	assert.True(t, errors.IsType(err, errors.TypeParsing))
}
