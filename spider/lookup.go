package spider

import (
	"strconv"
)

// Lookup walks a decoded JSON value along path and returns the scalar found
// at the end as a string. def is returned when any step is missing, null or
// not an object, and when the final value is not a scalar.
func Lookup(v interface{}, def string, path ...string) string {
	cur := v
	for _, key := range path {
		m, ok := cur.(map[string]interface{})
		if !ok {
			return def
		}

		if cur, ok = m[key]; !ok {
			return def
		}
	}

	switch x := cur.(type) {
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	default:
		return def
	}
}
