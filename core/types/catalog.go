// Package types - Pricing catalog types
package types

import (
	"encoding/json"
	"fmt"
	"sort"
)

// Catalog metadata keys as they appear in the JSON file form
const (
	KeyRegion      = "region"
	KeyCurrency    = "currency"
	KeyLastUpdated = "last_updated"
	KeySource      = "source"
)

// PricingCatalog is a region-scoped price list grouped by category.
//
// The file form places metadata and categories side by side:
//
//	{"region": "de/fra", "currency": "EUR", "last_updated": "...",
//	 "compute": {"vcpu_hourly": 0.01}, ...}
type PricingCatalog struct {
	Region      string
	Currency    Currency
	LastUpdated string
	Source      string

	// Categories maps category name to price key to unit price
	Categories map[string]map[string]float64

	// Extra holds any non-category keys, e.g. fallback_categories
	Extra map[string]any
}

// PriceTable is the flattened catalog: every price key across categories
// mapped to its unit price.
type PriceTable map[string]float64

// Price returns the price for key, or def when absent
func (p PriceTable) Price(key string, def float64) float64 {
	if v, ok := p[key]; ok {
		return v
	}
	return def
}

// Category returns a category, creating it if needed
func (c *PricingCatalog) Category(name string) map[string]float64 {
	if c.Categories == nil {
		c.Categories = make(map[string]map[string]float64)
	}
	cat, ok := c.Categories[name]
	if !ok {
		cat = make(map[string]float64)
		c.Categories[name] = cat
	}
	return cat
}

// CategoryNames returns the category names sorted lexically
func (c *PricingCatalog) CategoryNames() []string {
	names := make([]string, 0, len(c.Categories))
	for name := range c.Categories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Clone returns a deep copy
func (c *PricingCatalog) Clone() *PricingCatalog {
	if c == nil {
		return nil
	}
	out, _ := CatalogFromMap(c.ToMap())
	return out
}

// ToMap converts the catalog to its generic mapping form
func (c *PricingCatalog) ToMap() map[string]any {
	m := make(map[string]any, len(c.Categories)+len(c.Extra)+4)
	for k, v := range c.Extra {
		m[k] = cloneValue(v)
	}
	for name, prices := range c.Categories {
		cat := make(map[string]any, len(prices))
		for k, v := range prices {
			cat[k] = v
		}
		m[name] = cat
	}
	if c.Region != "" {
		m[KeyRegion] = c.Region
	}
	if c.Currency != "" {
		m[KeyCurrency] = string(c.Currency)
	}
	if c.LastUpdated != "" {
		m[KeyLastUpdated] = c.LastUpdated
	}
	if c.Source != "" {
		m[KeySource] = c.Source
	}
	return m
}

// CatalogFromMap builds a catalog from its generic mapping form. Mappings
// whose leaves are all numeric become categories; everything else is
// preserved in Extra.
func CatalogFromMap(m map[string]any) (*PricingCatalog, error) {
	c := &PricingCatalog{
		Categories: make(map[string]map[string]float64),
	}

	for key, value := range m {
		switch key {
		case KeyRegion, KeyCurrency, KeyLastUpdated, KeySource:
			s, ok := value.(string)
			if !ok && value != nil {
				return nil, fmt.Errorf("catalog key %q must be a string, got %T", key, value)
			}
			switch key {
			case KeyRegion:
				c.Region = s
			case KeyCurrency:
				c.Currency = Currency(s)
			case KeyLastUpdated:
				c.LastUpdated = s
			case KeySource:
				c.Source = s
			}
			continue
		}

		if prices, ok := numericMapping(value); ok {
			c.Categories[key] = prices
			continue
		}

		if c.Extra == nil {
			c.Extra = make(map[string]any)
		}
		c.Extra[key] = cloneValue(value)
	}

	return c, nil
}

func numericMapping(v any) (map[string]float64, bool) {
	m, ok := v.(map[string]any)
	if !ok {
		return nil, false
	}
	out := make(map[string]float64, len(m))
	for k, raw := range m {
		f, ok := toFloat(raw)
		if !ok {
			return nil, false
		}
		out[k] = f
	}
	return out, true
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[k] = cloneValue(val)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = cloneValue(val)
		}
		return out
	case []string:
		return append([]string(nil), t...)
	default:
		return v
	}
}

// MarshalJSON writes the file form
func (c *PricingCatalog) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.ToMap())
}

// UnmarshalJSON reads the file form
func (c *PricingCatalog) UnmarshalJSON(data []byte) error {
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}
	parsed, err := CatalogFromMap(m)
	if err != nil {
		return err
	}
	*c = *parsed
	return nil
}

// IsPrice reports whether v can be stored as a catalog price.
func IsPrice(v any) bool {
	_, ok := toFloat(v)
	return ok
}
