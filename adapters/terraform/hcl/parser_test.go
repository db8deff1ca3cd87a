package hcl

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"

	"ionos-finops/internal/errors"
)

const serverHCL = `
resource "ionos_server" "web" {
  name   = "web-01"
  cores  = 2
  ram    = 4096 / 1024
  zone   = var.zone

  volume {
    size = 50
    type = "SSD"
  }

  nic {
    lan = 1
  }
  nic {
    lan = 2
  }

  lifecycle {
    prevent_destroy = true
  }
}

resource "ionos_ipblock" "ips" {
  size     = 2
  location = "de/fra"
  labels   = { env = "prod" }
  tags     = ["a", "b"]
}

variable "zone" {
  default = "AUTO"
}
`

func TestParse(t *testing.T) {
	resources, err := NewParser().Parse([]byte(serverHCL), "main.tf")
	require.NoError(t, err)
	require.Len(t, resources, 2)

	web := resources[0]
	assert.Equal(t, "ionos_server", web.Type)
	assert.Equal(t, "web", web.Name)
	assert.Equal(t, "main.tf", web.File)
	assert.Equal(t, 2, web.Line)

	assert.Equal(t, "web-01", web.Attributes["name"])
	assert.Equal(t, 2.0, web.Attributes["cores"])
	assert.Equal(t, 4.0, web.Attributes["ram"])
	assert.NotContains(t, web.Attributes, "zone", "variable references are not evaluated")
	assert.NotContains(t, web.Attributes, "lifecycle")

	assert.Equal(t, []any{map[string]any{"size": 50.0, "type": "SSD"}}, web.Attributes["volume"])
	assert.Len(t, web.Attributes["nic"], 2)

	ips := resources[1]
	assert.Equal(t, 2.0, ips.Attributes["size"])
	assert.Equal(t, map[string]any{"env": "prod"}, ips.Attributes["labels"])
	assert.Equal(t, []any{"a", "b"}, ips.Attributes["tags"])
}

func TestParseInvalid(t *testing.T) {
	_, err := NewParser().Parse([]byte(`resource "ionos_server" {`), "bad.tf")

	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.TypeDefinitionRead))
	assert.Contains(t, err.Error(), "bad.tf")
}

func TestParseFileMissing(t *testing.T) {
	_, err := NewParser().ParseFile("/does/not/exist.tf")

	assert.True(t, errors.IsType(err, errors.TypeDefinitionRead))
}

func TestParseSameFilenameTwice(t *testing.T) {
	p := NewParser()

	first, err := p.Parse([]byte(`resource "ionos_lan" "a" {}`), "main.tf")
	require.NoError(t, err)
	second, err := p.Parse([]byte(`resource "ionos_nic" "b" {}`), "main.tf")
	require.NoError(t, err)

	assert.Equal(t, "ionos_lan", first[0].Type)
	assert.Equal(t, "ionos_nic", second[0].Type)
}

func TestToGo(t *testing.T) {
	tests := []struct {
		name   string
		val    cty.Value
		want   any
		wantOK bool
	}{
		{"string", cty.StringVal("x"), "x", true},
		{"number", cty.NumberVal(big.NewFloat(2.5)), 2.5, true},
		{"int", cty.NumberIntVal(4), 4.0, true},
		{"bool", cty.True, true, true},
		{"null", cty.NullVal(cty.String), nil, true},
		{"unknown", cty.UnknownVal(cty.Number), nil, false},
		{"list with unknown", cty.ListVal([]cty.Value{cty.UnknownVal(cty.String)}), nil, false},
		{"list", cty.ListVal([]cty.Value{cty.StringVal("a"), cty.StringVal("b")}), []any{"a", "b"}, true},
		{"set", cty.SetVal([]cty.Value{cty.NumberIntVal(1)}), []any{1.0}, true},
		{"tuple", cty.TupleVal([]cty.Value{cty.StringVal("a"), cty.True}), []any{"a", true}, true},
		{"map", cty.MapVal(map[string]cty.Value{"k": cty.StringVal("v")}), map[string]any{"k": "v"}, true},
		{
			"object",
			cty.ObjectVal(map[string]cty.Value{"size": cty.NumberIntVal(10), "type": cty.StringVal("HDD")}),
			map[string]any{"size": 10.0, "type": "HDD"},
			true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ToGo(tt.val)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
