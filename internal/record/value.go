package record

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Number converts an int or float into the json.Number form stored in objects.
func Number(f float64) json.Number {
	return json.Number(strconv.FormatFloat(f, 'f', -1, 64))
}

// Int returns n as a json.Number.
func Int(n int) json.Number {
	return json.Number(strconv.Itoa(n))
}

// AsFloat reports the numeric value of v. Numeric strings do not count.
func AsFloat(v any) (float64, bool) {
	switch t := v.(type) {
	case json.Number:
		f, err := t.Float64()
		return f, err == nil
	case float64:
		return t, finite(t)
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	}
	return 0, false
}

// ParseNumber parses a number written as text. Infinities and NaN are
// rejected since JSON cannot encode them.
func ParseNumber(s string) (float64, bool) {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || !finite(f) {
		return 0, false
	}
	return f, true
}

func finite(f float64) bool {
	return !math.IsInf(f, 0) && !math.IsNaN(f)
}

// IsNumber reports whether v is a JSON number.
func IsNumber(v any) bool {
	_, ok := AsFloat(v)
	return ok
}

// AsString reports v when it is a string.
func AsString(v any) (string, bool) {
	s, ok := v.(string)
	return s, ok
}

// AsObject reports v when it is an object.
func AsObject(v any) (*Object, bool) {
	o, ok := v.(*Object)
	return o, ok && o != nil
}

// TypeName names the JSON type of v for diagnostics.
func TypeName(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case bool:
		return "bool"
	case json.Number, float64, int, int64:
		return "number"
	case string:
		return "string"
	case []any:
		return "array"
	case *Object:
		return "object"
	}
	return "unknown"
}

// Text renders a scalar for annotations and diagnostics. Composite values are
// rendered as compact JSON.
func Text(v any) string {
	switch t := v.(type) {
	case nil:
		return "null"
	case string:
		return t
	case json.Number:
		return t.String()
	case bool:
		return strconv.FormatBool(t)
	}
	b, err := marshalValue(v)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(b))
}
