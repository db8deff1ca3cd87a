// Package hcl provides Terraform HCL parsing.
package hcl

import (
	"fmt"
	"os"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/hashicorp/hcl/v2/hclsyntax"

	"ionos-finops/internal/errors"
)

// Resource is one `resource "type" "name" {}` block
type Resource struct {
	Type       string
	Name       string
	Attributes map[string]any
	File       string
	Line       int
}

// Meta blocks that never carry billable configuration
var skippedBlocks = map[string]bool{
	"lifecycle":   true,
	"provisioner": true,
	"connection":  true,
	"timeouts":    true,
}

// Parser reads resource blocks from .tf files
type Parser struct{}

// NewParser creates a new HCL parser
func NewParser() *Parser {
	return &Parser{}
}

// ParseFile reads and parses one .tf file
func (p *Parser) ParseFile(path string) ([]Resource, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.DefinitionRead("failed to read "+path, err)
	}
	return p.Parse(src, path)
}

// Parse extracts resource blocks from HCL source. Attributes that cannot
// be evaluated without variables or functions are omitted.
func (p *Parser) Parse(src []byte, filename string) ([]Resource, error) {
	// hclparse caches by filename; a fresh parser keeps re-reads current
	file, diags := hclparse.NewParser().ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, errors.DefinitionRead("invalid HCL in "+filename, diagError(diags))
	}

	content, _, diags := file.Body.PartialContent(&hcl.BodySchema{
		Blocks: []hcl.BlockHeaderSchema{
			{Type: "resource", LabelNames: []string{"type", "name"}},
		},
	})
	if diags.HasErrors() {
		return nil, errors.DefinitionRead("invalid resource block in "+filename, diagError(diags))
	}

	resources := make([]Resource, 0, len(content.Blocks))
	for _, block := range content.Blocks {
		resources = append(resources, Resource{
			Type:       block.Labels[0],
			Name:       block.Labels[1],
			Attributes: extractAttributes(block.Body),
			File:       filename,
			Line:       block.DefRange.Start.Line,
		})
	}
	return resources, nil
}

// extractAttributes evaluates attributes and collects nested blocks as
// lists of mappings keyed by block type
func extractAttributes(body hcl.Body) map[string]any {
	attrs := make(map[string]any)

	syntaxBody, ok := body.(*hclsyntax.Body)
	if !ok {
		// Non-native syntax: attributes only
		if plain, diags := body.JustAttributes(); !diags.HasErrors() {
			for name, attr := range plain {
				setEvaluated(attrs, name, attr.Expr)
			}
		}
		return attrs
	}

	for name, attr := range syntaxBody.Attributes {
		setEvaluated(attrs, name, attr.Expr)
	}

	for _, block := range syntaxBody.Blocks {
		if skippedBlocks[block.Type] {
			continue
		}
		list, _ := attrs[block.Type].([]any)
		attrs[block.Type] = append(list, extractAttributes(block.Body))
	}

	return attrs
}

func setEvaluated(attrs map[string]any, name string, expr hcl.Expression) {
	val, diags := expr.Value(nil)
	if diags.HasErrors() {
		return
	}
	if v, ok := ToGo(val); ok {
		attrs[name] = v
	}
}

func diagError(diags hcl.Diagnostics) error {
	var msgs []string
	for _, d := range diags {
		if d.Severity != hcl.DiagError {
			continue
		}
		msg := d.Summary
		if d.Detail != "" {
			msg += ": " + d.Detail
		}
		if d.Subject != nil {
			msg = fmt.Sprintf("line %d: %s", d.Subject.Start.Line, msg)
		}
		msgs = append(msgs, msg)
	}
	return fmt.Errorf("%s", strings.Join(msgs, "; "))
}
