package encoding

import (
	"math"
	"strconv"
	"strings"
)

// Number coerces a decoded JSON value to a float64 the way a loosely typed
// client would: booleans become 0/1 and numeric strings are parsed. null
// and anything else is NaN, so callers can skip the value.
func Number(v any) float64 {
	switch x := v.(type) {
	case nil:
		return math.NaN()
	case float64:
		return x
	case float32:
		return float64(x)
	case int:
		return float64(x)
	case int64:
		return float64(x)
	case bool:
		if x {
			return 1
		}
		return 0
	case string:
		s := strings.TrimSpace(x)
		if s == "" {
			return 0
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return math.NaN()
		}
		return f
	default:
		return math.NaN()
	}
}

// NumberOr returns Number(v) unless it is NaN or zero, in which case it
// returns fallback.
func NumberOr(v any, fallback float64) float64 {
	f := Number(v)
	if math.IsNaN(f) || f == 0 {
		return fallback
	}
	return f
}

// Truthy reports whether v is a truthy value.
func Truthy(v any) bool {
	switch x := v.(type) {
	case nil:
		return false
	case bool:
		return x
	case float64:
		return x != 0 && !math.IsNaN(x)
	case string:
		return x != ""
	default:
		return true
	}
}

// Round rounds x half up to the given number of decimals.
func Round(x float64, decimals int) float64 {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return x
	}
	p := math.Pow(10, float64(decimals))
	return math.Floor(x*p+0.5) / p
}
