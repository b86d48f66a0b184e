package expression

import "github.com/spf13/cast"

// toStringFallback renders an arbitrary property-function return value
// (bool, int, float, etc.) as its string form, reaching for spf13/cast the
// same way the rest of the ecosystem does for ad-hoc dynamic-value
// coercion, instead of hand-rolling a type switch over every numeric kind.
func toStringFallback(v interface{}) string {
	s, err := cast.ToStringE(v)
	if err != nil {
		return ""
	}
	return s
}
