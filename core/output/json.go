package output

import (
	"encoding/json"
	"io"

	"ionos-finops/core/types"
)

// JSONRenderer writes the summary as JSON
type JSONRenderer struct {
	Indent string
}

// Format returns FormatJSON
func (r *JSONRenderer) Format() Format {
	return FormatJSON
}

// Render encodes the summary
func (r *JSONRenderer) Render(w io.Writer, s *types.CostSummary) error {
	enc := json.NewEncoder(w)
	if r.Indent != "" {
		enc.SetIndent("", r.Indent)
	}
	return enc.Encode(s)
}
