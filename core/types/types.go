// Package types defines core domain types shared across all layers.
// This package contains NO business logic - only type definitions and accessors.
package types

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Currency represents an ISO currency code
type Currency string

const (
	CurrencyEUR Currency = "EUR"
	CurrencyGBP Currency = "GBP"
	CurrencyUSD Currency = "USD"
)

// String returns the string representation
func (c Currency) String() string {
	return string(c)
}

// NormalizedResource is one resource declaration extracted from an
// infrastructure definition.
type NormalizedResource struct {
	// Type is the provider resource type, e.g. "ionos_server"
	Type string `json:"type"`

	// Name is the declared resource name
	Name string `json:"name"`

	// Attributes are the declared configuration values
	Attributes Attributes `json:"config"`

	// Source is the file the resource was read from (optional)
	Source string `json:"source,omitempty"`
}

// Address returns "type.name"
func (r NormalizedResource) Address() string {
	return r.Type + "." + r.Name
}

// Attributes is a heterogeneous mapping of attribute names to values.
// Missing or uncoercible values fall back to the caller's default.
type Attributes map[string]any

// Get retrieves an attribute value, returning nil if not found
func (a Attributes) Get(key string) any {
	if a == nil {
		return nil
	}
	return a[key]
}

// Has reports whether a non-nil value is present
func (a Attributes) Has(key string) bool {
	return a.Get(key) != nil
}

// String retrieves a string attribute
func (a Attributes) String(key, def string) string {
	switch v := a.Get(key).(type) {
	case string:
		if v == "" {
			return def
		}
		return v
	case nil:
		return def
	case fmt.Stringer:
		return v.String()
	case bool:
		return strconv.FormatBool(v)
	default:
		if f, ok := toFloat(v); ok {
			return strconv.FormatFloat(f, 'f', -1, 64)
		}
		return def
	}
}

// Float retrieves a numeric attribute
func (a Attributes) Float(key string, def float64) float64 {
	if f, ok := toFloat(a.Get(key)); ok {
		return f
	}
	return def
}

// Int retrieves a numeric attribute truncated to an integer
func (a Attributes) Int(key string, def int) int {
	if f, ok := toFloat(a.Get(key)); ok {
		return int(f)
	}
	return def
}

// Bool retrieves a boolean attribute
func (a Attributes) Bool(key string, def bool) bool {
	switch v := a.Get(key).(type) {
	case bool:
		return v
	case string:
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}

// Block retrieves a nested block. Both a mapping and a list whose first
// element is a mapping are accepted; anything else yields an empty block.
func (a Attributes) Block(key string) Attributes {
	switch v := a.Get(key).(type) {
	case Attributes:
		return v
	case map[string]any:
		return Attributes(v)
	case []any:
		if len(v) > 0 {
			switch first := v[0].(type) {
			case Attributes:
				return first
			case map[string]any:
				return Attributes(first)
			}
		}
	case []map[string]any:
		if len(v) > 0 {
			return Attributes(v[0])
		}
	}
	return Attributes{}
}

func toFloat(v any) (float64, bool) {
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case float32:
		f = float64(n)
	case int:
		f = float64(n)
	case int8:
		f = float64(n)
	case int16:
		f = float64(n)
	case int32:
		f = float64(n)
	case int64:
		f = float64(n)
	case uint:
		f = float64(n)
	case uint8:
		f = float64(n)
	case uint16:
		f = float64(n)
	case uint32:
		f = float64(n)
	case uint64:
		f = float64(n)
	case json.Number:
		parsed, err := n.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// Credentials authenticate against the remote pricing services. A bearer
// token serves the cloud API; username, password and contract id serve the
// billing API.
type Credentials struct {
	Token      string `json:"-"`
	Username   string `json:"-"`
	Password   string `json:"-"`
	ContractID string `json:"contract_id,omitempty"`
}

// HasAny reports whether any usable authentication is present
func (c Credentials) HasAny() bool {
	return c.Token != "" || (c.Username != "" && c.Password != "")
}

// HasBilling reports whether the billing API can be queried
func (c Credentials) HasBilling() bool {
	return c.Username != "" && c.Password != "" && c.ContractID != ""
}
