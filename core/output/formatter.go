// Package output renders cost summaries for humans and machines.
package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"

	"ionos-finops/core/types"
	"ionos-finops/internal/errors"
)

// Format represents output format type
type Format string

const (
	// FormatTable is a human-readable table
	FormatTable Format = "table"

	// FormatJSON is machine-readable JSON
	FormatJSON Format = "json"

	// FormatHTML is a standalone HTML report
	FormatHTML Format = "html"
)

// Formats lists the supported formats
func Formats() []Format {
	return []Format{FormatTable, FormatJSON, FormatHTML}
}

// Renderer writes a cost summary
type Renderer interface {
	// Format returns the format type
	Format() Format

	// Render writes the summary to w
	Render(w io.Writer, summary *types.CostSummary) error
}

// ForFormat returns the renderer for a format name
func ForFormat(name string, showDetails bool) (Renderer, error) {
	switch Format(strings.ToLower(strings.TrimSpace(name))) {
	case FormatTable, "":
		return &TableRenderer{ShowDetails: showDetails}, nil
	case FormatJSON:
		return &JSONRenderer{Indent: "  "}, nil
	case FormatHTML:
		return &HTMLRenderer{ShowDetails: showDetails}, nil
	default:
		return nil, errors.Newf(errors.TypeInput, "unsupported output format %q (want table, json or html)", name)
	}
}

var currencySymbols = map[types.Currency]string{
	types.CurrencyEUR: "€",
	types.CurrencyGBP: "£",
	types.CurrencyUSD: "$",
}

// Money formats an amount with places decimals and the currency symbol,
// e.g. "€32.85". Unknown currencies use the code as a suffix.
func Money(amount float64, places int32, currency types.Currency) string {
	s := decimal.NewFromFloat(amount).StringFixed(places)
	if sym, ok := currencySymbols[currency]; ok {
		if strings.HasPrefix(s, "-") {
			return "-" + sym + s[1:]
		}
		return sym + s
	}
	if currency == "" {
		return s
	}
	return fmt.Sprintf("%s %s", s, currency)
}

// Round returns amount rounded half away from zero to places decimals
func Round(amount float64, places int32) float64 {
	f, _ := decimal.NewFromFloat(amount).Round(places).Float64()
	return f
}
