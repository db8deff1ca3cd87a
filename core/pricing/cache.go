package pricing

import (
	"encoding/json"
	"os"
	"path/filepath"

	"ionos-finops/core/types"
	"ionos-finops/internal/errors"
)

// FileCache stores one catalog file per region under Dir
type FileCache struct {
	Dir string
}

// NewFileCache creates a cache rooted at dir
func NewFileCache(dir string) *FileCache {
	return &FileCache{Dir: dir}
}

// Path returns Dir/pricing_<region>.json
func (c *FileCache) Path(region string) string {
	return filepath.Join(c.Dir, "pricing_"+RegionFileStem(region)+".json")
}

// Load reads the cached catalog for a region. A missing file yields
// (nil, nil); an unreadable or invalid file yields a CacheRead error.
func (c *FileCache) Load(region string) (*types.PricingCatalog, error) {
	path := c.Path(region)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.CacheRead(path, err)
	}

	var catalog types.PricingCatalog
	if err := json.Unmarshal(data, &catalog); err != nil {
		return nil, errors.CacheRead(path, err)
	}
	if err := Validate(&catalog); err != nil {
		return nil, errors.CacheRead(path, err)
	}
	if catalog.Region == "" {
		catalog.Region = region
	}
	return &catalog, nil
}

// Save serialises the whole catalog to a temporary file in Dir and renames
// it over the region file, so readers never see a partial catalog.
// Concurrent writers race; the last rename wins.
func (c *FileCache) Save(catalog *types.PricingCatalog) error {
	path := c.Path(catalog.Region)

	if err := os.MkdirAll(c.Dir, 0755); err != nil {
		return errors.CacheWrite(path, err)
	}

	data, err := json.MarshalIndent(catalog, "", "  ")
	if err != nil {
		return errors.CacheWrite(path, err)
	}

	tmp, err := os.CreateTemp(c.Dir, ".pricing-*.tmp")
	if err != nil {
		return errors.CacheWrite(path, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return errors.CacheWrite(path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return errors.CacheWrite(path, err)
	}
	if err := os.Chmod(tmpName, 0644); err != nil {
		os.Remove(tmpName)
		return errors.CacheWrite(path, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return errors.CacheWrite(path, err)
	}
	return nil
}

// LastUpdated returns the cached catalog's last_updated, or "" when no
// readable cache exists.
func (c *FileCache) LastUpdated(region string) string {
	catalog, err := c.Load(region)
	if err != nil || catalog == nil {
		return ""
	}
	return catalog.LastUpdated
}
