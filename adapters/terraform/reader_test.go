package terraform

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ionos-finops/internal/errors"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const planJSON = `{
  "format_version": "1.2",
  "planned_values": {
    "root_module": {
      "resources": [
        {"address": "ionos_server.web", "mode": "managed", "type": "ionos_server", "name": "web",
         "values": {"cores": 2, "ram": 4, "volume": [{"size": 50, "type": "SSD"}]}},
        {"address": "data.ionos_image.ubuntu", "mode": "data", "type": "ionos_image", "name": "ubuntu",
         "values": {"size": 3}},
        {"address": "aws_instance.x", "mode": "managed", "type": "aws_instance", "name": "x", "values": {}}
      ],
      "child_modules": [
        {"address": "module.db", "resources": [
          {"address": "module.db.ionos_pg_cluster.main", "mode": "managed", "type": "ionos_pg_cluster",
           "name": "main", "values": {"instances": 3}}
        ]}
      ]
    }
  }
}`

func TestReadDirectory(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "b.tf", `resource "ionos_lan" "public" { public = true }`)
	writeFile(t, dir, "a.tf", `
resource "ionos_server" "web" {
  cores = 2
}
resource "aws_instance" "other" {}
`)
	writeFile(t, dir, "notes.txt", `resource "ionos_nic" "ignored" {}`)
	require.NoError(t, os.Mkdir(filepath.Join(dir, "nested"), 0o755))
	writeFile(t, filepath.Join(dir, "nested"), "c.tf", `resource "ionos_nic" "ignored" {}`)

	got, err := NewReader().Read(context.Background(), dir)

	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "ionos_server.web", got[0].Address())
	assert.Equal(t, 2.0, got[0].Attributes.Float("cores", 0))
	assert.Equal(t, filepath.Join(dir, "a.tf"), got[0].Source)
	assert.Equal(t, "ionos_lan.public", got[1].Address())
	assert.True(t, got[1].Attributes.Bool("public", false))
}

func TestReadEmptyDirectory(t *testing.T) {
	got, err := NewReader().Read(context.Background(), t.TempDir())

	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestReadSingleFile(t *testing.T) {
	path := writeFile(t, t.TempDir(), "main.tf", `
resource "ionos_volume" "data" {
  size = 100
  type = "SSD"
}`)

	got, err := NewReader().Read(context.Background(), path)

	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "SSD", got[0].Attributes.String("type", ""))
	assert.Equal(t, 100.0, got[0].Attributes.Float("size", 0))
}

func TestReadPlanJSON(t *testing.T) {
	path := writeFile(t, t.TempDir(), "plan.json", planJSON)

	got, err := NewReader().Read(context.Background(), path)

	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, "ionos_server", got[0].Type)
	assert.Equal(t, "web", got[0].Name)
	assert.Equal(t, "ionos_server.web", got[0].Source)
	assert.Equal(t, 2.0, got[0].Attributes.Float("cores", 0))
	assert.Equal(t, 50.0, got[0].Attributes.Block("volume").Float("size", 0))

	assert.Equal(t, "module.db.ionos_pg_cluster.main", got[1].Source)
	assert.Equal(t, 3, got[1].Attributes.Int("instances", 0))
}

func TestParsePlanJSONKeepsNumbers(t *testing.T) {
	plan, err := ParsePlanJSON([]byte(planJSON))
	require.NoError(t, err)

	values := plan.PlannedValues.RootModule.Resources[0].Values
	assert.IsType(t, json.Number(""), values["cores"])
}

func TestPlanWithoutPlannedValues(t *testing.T) {
	plan, err := ParsePlanJSON([]byte(`{"format_version": "1.2"}`))
	require.NoError(t, err)

	assert.Empty(t, plan.Resources(DefaultPrefix))
}

func TestCustomPrefix(t *testing.T) {
	path := writeFile(t, t.TempDir(), "plan.json", planJSON)
	r := NewReader()
	r.Prefix = "aws_"

	got, err := r.Read(context.Background(), path)

	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "aws_instance", got[0].Type)
}

func TestReadErrors(t *testing.T) {
	dir := t.TempDir()
	badTF := writeFile(t, dir, "bad.tf", `resource "ionos_server" "x" {`)
	badJSON := writeFile(t, dir, "plan.json", `{"planned_values": [`)
	other := writeFile(t, dir, "main.yaml", `a: 1`)
	brokenDir := t.TempDir()
	writeFile(t, brokenDir, "ok.tf", `resource "ionos_lan" "a" {}`)
	writeFile(t, brokenDir, "zz.tf", `resource {`)

	tests := []struct {
		name string
		path string
	}{
		{"missing path", filepath.Join(dir, "nope")},
		{"invalid hcl", badTF},
		{"invalid plan json", badJSON},
		{"unsupported extension", other},
		{"directory with invalid file", brokenDir},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewReader().Read(context.Background(), tt.path)
			require.Error(t, err)
			assert.True(t, errors.IsType(err, errors.TypeDefinitionRead), "got %v", err)
		})
	}
}

func TestReadTFPlanWithoutTerraform(t *testing.T) {
	path := writeFile(t, t.TempDir(), "out.tfplan", "binary")
	r := NewReader()
	r.TerraformPath = filepath.Join(t.TempDir(), "no-terraform-here")

	_, err := r.Read(context.Background(), path)

	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.TypeDefinitionRead))
}
