package mapper

import (
	"math"
	"strconv"
)

// SafeNumber coerces a loosely typed numeric value to a float64. Missing,
// non-numeric, NaN and infinite inputs all map to 0; it never panics.
func SafeNumber(v interface{}) float64 {
	var n float64

	switch value := v.(type) {
	case nil:
		return 0
	case float64:
		n = value
	case float32:
		n = float64(value)
	case int:
		n = float64(value)
	case int32:
		n = float64(value)
	case int64:
		n = float64(value)
	case string:
		parsed, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return 0
		}
		n = parsed
	default:
		return 0
	}

	if math.IsNaN(n) || math.IsInf(n, 0) {
		return 0
	}
	return n
}

// SafeInt coerces a loosely typed numeric value to an int, truncating
// fractional parts. Anything SafeNumber maps to 0 stays 0.
func SafeInt(v interface{}) int {
	return int(SafeNumber(v))
}
