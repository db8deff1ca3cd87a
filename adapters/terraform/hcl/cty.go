// Package hcl - cty value conversion
// Unknown values are reported, never passed through.
package hcl

import (
	"github.com/zclconf/go-cty/cty"
)

// ToGo converts a cty value into plain Go values: string, float64, bool,
// []any, map[string]any or nil. ok is false when the value, or a nested
// value, is unknown at plan time.
func ToGo(val cty.Value) (v any, ok bool) {
	if !val.IsWhollyKnown() {
		return nil, false
	}
	if val.IsNull() {
		return nil, true
	}

	ty := val.Type()
	switch {
	case ty == cty.String:
		return val.AsString(), true

	case ty == cty.Number:
		f, _ := val.AsBigFloat().Float64()
		return f, true

	case ty == cty.Bool:
		return val.True(), true

	case ty.IsListType() || ty.IsSetType() || ty.IsTupleType():
		out := make([]any, 0, val.LengthInt())
		for it := val.ElementIterator(); it.Next(); {
			_, elem := it.Element()
			converted, _ := ToGo(elem)
			out = append(out, converted)
		}
		return out, true

	case ty.IsMapType() || ty.IsObjectType():
		out := make(map[string]any)
		for it := val.ElementIterator(); it.Next(); {
			k, elem := it.Element()
			converted, _ := ToGo(elem)
			out[k.AsString()] = converted
		}
		return out, true
	}

	return nil, false
}
