// Package pricing resolves region pricing catalogs: bundled defaults, file
// cache, overrides and remote refresh.
package pricing

import (
	"fmt"
	"math"
	"sort"

	"ionos-finops/core/types"
)

// Known categories, listed in flattening precedence
const (
	CategoryCompute     = "compute"
	CategoryStorage     = "storage"
	CategoryNetwork     = "network"
	CategoryDatabase    = "database"
	CategoryKubernetes  = "kubernetes"
	CategoryBackup      = "backup"
	CategoryAutoscaling = "autoscaling"
	CategoryManagement  = "management"
)

var categoryPrecedence = []string{
	CategoryCompute,
	CategoryStorage,
	CategoryNetwork,
	CategoryDatabase,
	CategoryKubernetes,
	CategoryBackup,
	CategoryAutoscaling,
	CategoryManagement,
}

// CategoryOrder returns the catalog's categories in flattening precedence:
// known categories first, then unknown ones lexically.
func CategoryOrder(c *types.PricingCatalog) []string {
	known := make(map[string]bool, len(categoryPrecedence))
	order := make([]string, 0, len(c.Categories))

	for _, name := range categoryPrecedence {
		known[name] = true
		if _, ok := c.Categories[name]; ok {
			order = append(order, name)
		}
	}

	var rest []string
	for name := range c.Categories {
		if !known[name] {
			rest = append(rest, name)
		}
	}
	sort.Strings(rest)

	return append(order, rest...)
}

// Flatten merges every category into one price table. When a key appears in
// more than one category, the category earliest in precedence keeps it.
func Flatten(c *types.PricingCatalog) types.PriceTable {
	table := make(types.PriceTable)
	if c == nil {
		return table
	}
	for _, name := range CategoryOrder(c) {
		for key, price := range c.Categories[name] {
			if _, taken := table[key]; taken {
				continue
			}
			table[key] = price
		}
	}
	return table
}

// Collision describes a price key present in more than one category
type Collision struct {
	Key      string
	Winner   string
	Shadowed []string
}

// Collisions lists keys defined by several categories, sorted by key
func Collisions(c *types.PricingCatalog) []Collision {
	owners := make(map[string][]string)
	for _, name := range CategoryOrder(c) {
		for key := range c.Categories[name] {
			owners[key] = append(owners[key], name)
		}
	}

	var out []Collision
	for key, cats := range owners {
		if len(cats) < 2 {
			continue
		}
		out = append(out, Collision{Key: key, Winner: cats[0], Shadowed: cats[1:]})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

// Validate checks that every price is finite and non-negative
func Validate(c *types.PricingCatalog) error {
	for _, name := range c.CategoryNames() {
		for key, price := range c.Categories[name] {
			if math.IsNaN(price) || math.IsInf(price, 0) {
				return fmt.Errorf("price %s.%s is not finite", name, key)
			}
			if price < 0 {
				return fmt.Errorf("price %s.%s is negative: %v", name, key, price)
			}
		}
	}
	return nil
}
