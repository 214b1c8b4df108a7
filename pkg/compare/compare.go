package compare

import (
	"fmt"
	"math"
	"reflect"
	"sort"
	"strconv"
	"strings"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Values reports whether two decoded template values are equal. Templates
// written in JSON and YAML decode scalars differently, so numbers, numeric
// strings and boolean strings are compared by value, and nil collections
// equal empty ones.
func Values(a, b any) bool {
	if isEmpty(a) && isEmpty(b) {
		return true
	}
	return cmp.Equal(a, b, cmpopts.EquateEmpty(), scalarComparer)
}

var scalarComparer = cmp.FilterValues(func(x, y any) bool {
	return isScalar(x) && isScalar(y)
}, cmp.Comparer(scalarEqual))

func isScalar(v any) bool {
	switch reflect.ValueOf(v).Kind() {
	case reflect.String, reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}

func isEmpty(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Map, reflect.Slice:
		return rv.Len() == 0
	}
	return false
}

func scalarEqual(x, y any) bool {
	if xs, ok := x.(string); ok {
		if ys, ok := y.(string); ok {
			if xs == ys {
				return true
			}
			equal, _ := JSONStrings(xs, ys)
			return equal
		}
	}

	if xb, ok := toBool(x); ok {
		if yb, ok := toBool(y); ok {
			_, xIsBool := x.(bool)
			_, yIsBool := y.(bool)
			if xIsBool || yIsBool {
				return xb == yb
			}
		}
	}

	if xf, ok := toFloat64(x); ok {
		if yf, ok := toFloat64(y); ok {
			const tolerance = 1e-9
			return math.Abs(xf-yf) < tolerance
		}
	}

	return x == y
}

func toBool(v any) (bool, bool) {
	switch t := v.(type) {
	case bool:
		return t, true
	case string:
		b, err := strconv.ParseBool(t)
		return b, err == nil
	}
	return false, false
}

func toFloat64(v any) (float64, bool) {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(rv.Uint()), true
	case reflect.Float32, reflect.Float64:
		return rv.Float(), true
	case reflect.String:
		f, err := strconv.ParseFloat(strings.TrimSpace(rv.String()), 64)
		return f, err == nil
	}
	return 0, false
}

// Sets checks if two string slices contain the same elements, ignoring order and duplicates.
// Returns true if the sets are equal, and a descriptive diff string otherwise.
func Sets(setA, setB []string) (bool, string) {
	inA := make(map[string]struct{}, len(setA))
	for _, s := range setA {
		inA[s] = struct{}{}
	}
	inB := make(map[string]struct{}, len(setB))
	for _, s := range setB {
		inB[s] = struct{}{}
	}

	var added, removed []string
	for k := range inB {
		if _, ok := inA[k]; !ok {
			added = append(added, k)
		}
	}
	for k := range inA {
		if _, ok := inB[k]; !ok {
			removed = append(removed, k)
		}
	}
	if len(added) == 0 && len(removed) == 0 {
		return true, ""
	}
	sort.Strings(added)
	sort.Strings(removed)

	var parts []string
	if len(added) > 0 {
		parts = append(parts, fmt.Sprintf("Added: [%s]", strings.Join(added, ", ")))
	}
	if len(removed) > 0 {
		parts = append(parts, fmt.Sprintf("Removed: [%s]", strings.Join(removed, ", ")))
	}
	return false, strings.Join(parts, "; ")
}

// JSONStrings compares two strings containing JSON, ignoring formatting differences.
// Returns true if the JSON structures are semantically equal.
// If parsing fails or structures differ, it returns false and a descriptive detail string.
func JSONStrings(jsonStrA, jsonStrB string) (bool, string) {
	if jsonStrA == jsonStrB {
		return true, ""
	}
	if jsonStrA == "" {
		return false, "JSON differs (first empty, second not)"
	}
	if jsonStrB == "" {
		return false, "JSON differs (second empty, first not)"
	}

	var dataA, dataB any
	if err := json.Unmarshal([]byte(jsonStrA), &dataA); err != nil {
		return false, fmt.Sprintf("Strings differ (first is not valid JSON: %v)", err)
	}
	if err := json.Unmarshal([]byte(jsonStrB), &dataB); err != nil {
		return false, fmt.Sprintf("JSON differs (second is not valid JSON: %v)", err)
	}
	// Only structured documents count; "1" and "1.0" stay different strings.
	if !isEmpty(dataA) || !isEmpty(dataB) {
		if !isCollection(dataA) || !isCollection(dataB) {
			return false, "Strings differ"
		}
	}

	if !cmp.Equal(dataA, dataB, cmpopts.EquateEmpty()) {
		return false, "JSON structures differ"
	}
	return true, ""
}

func isCollection(v any) bool {
	switch v.(type) {
	case map[string]any, []any:
		return true
	}
	return false
}

// StringSet normalizes a value that may be a single string or a list of
// strings, as DependsOn is.
func StringSet(v any) []string {
	switch t := v.(type) {
	case nil:
		return nil
	case string:
		return []string{t}
	case []string:
		return t
	case []any:
		out := make([]string, 0, len(t))
		for _, e := range t {
			out = append(out, fmt.Sprint(e))
		}
		return out
	}
	return []string{fmt.Sprint(v)}
}
