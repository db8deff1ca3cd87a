// Package terraform reads infrastructure definitions into normalized
// resources: a directory of .tf files, a single .tf file, plan JSON, or a
// binary .tfplan rendered through `terraform show -json`.
package terraform

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"ionos-finops/adapters/terraform/hcl"
	"ionos-finops/core/types"
	"ionos-finops/internal/errors"
	"ionos-finops/internal/logging"
)

// DefaultPrefix selects IONOS provider resources
const DefaultPrefix = "ionos_"

// Reader reads definitions from disk
type Reader struct {
	// Prefix filters resource types
	Prefix string

	// TerraformPath is the terraform executable used for .tfplan files
	TerraformPath string

	// Timeout bounds `terraform show`
	Timeout time.Duration

	parser *hcl.Parser
	logger *zap.Logger
}

// NewReader creates a reader with IONOS defaults
func NewReader() *Reader {
	return &Reader{
		Prefix:        DefaultPrefix,
		TerraformPath: "terraform",
		Timeout:       5 * time.Minute,
		parser:        hcl.NewParser(),
		logger:        logging.Named("terraform"),
	}
}

// Read returns the resources defined at path, in file then block order
func (r *Reader) Read(ctx context.Context, path string) ([]types.NormalizedResource, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, errors.DefinitionRead("definition path "+path+" is not a valid file or directory", err)
	}

	if info.IsDir() {
		return r.readDir(path)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".tf":
		return r.readHCL(path)
	case ".json":
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, errors.DefinitionRead("failed to read "+path, err)
		}
		return r.readPlan(data)
	case ".tfplan":
		data, err := r.showPlanJSON(ctx, path)
		if err != nil {
			return nil, err
		}
		return r.readPlan(data)
	default:
		return nil, errors.DefinitionRead("unsupported definition file "+path+" (want .tf, .json or .tfplan)", nil)
	}
}

// readDir reads every *.tf file directly inside dir, sorted by name
func (r *Reader) readDir(dir string) ([]types.NormalizedResource, error) {
	files, err := filepath.Glob(filepath.Join(dir, "*.tf"))
	if err != nil {
		return nil, errors.DefinitionRead("failed to list "+dir, err)
	}
	sort.Strings(files)

	out := []types.NormalizedResource{}
	for _, file := range files {
		resources, err := r.readHCL(file)
		if err != nil {
			return nil, err
		}
		out = append(out, resources...)
	}

	r.log().Debug("read definition directory",
		zap.String("dir", dir),
		zap.Int("files", len(files)),
		zap.Int("resources", len(out)))
	return out, nil
}

func (r *Reader) readHCL(file string) ([]types.NormalizedResource, error) {
	blocks, err := r.hclParser().ParseFile(file)
	if err != nil {
		return nil, err
	}

	out := []types.NormalizedResource{}
	for _, b := range blocks {
		if !strings.HasPrefix(b.Type, r.prefix()) {
			continue
		}
		out = append(out, types.NormalizedResource{
			Type:       b.Type,
			Name:       b.Name,
			Attributes: types.Attributes(b.Attributes),
			Source:     file,
		})
	}
	return out, nil
}

func (r *Reader) readPlan(data []byte) ([]types.NormalizedResource, error) {
	plan, err := ParsePlanJSON(data)
	if err != nil {
		return nil, err
	}
	return plan.Resources(r.prefix()), nil
}

func (r *Reader) prefix() string {
	if r.Prefix == "" {
		return DefaultPrefix
	}
	return r.Prefix
}

func (r *Reader) hclParser() *hcl.Parser {
	if r.parser == nil {
		r.parser = hcl.NewParser()
	}
	return r.parser
}

func (r *Reader) log() *zap.Logger {
	if r.logger == nil {
		return logging.Named("terraform")
	}
	return r.logger
}
