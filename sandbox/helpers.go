package sandbox

import (
	"fmt"
	"reflect"
	"regexp"
	"strconv"
	"strings"

	"github.com/traefik/yaegi/interp"
)

// Import path under which the helper package is exposed inside the
// interpreter. Expressions reference the helpers by bare name via aliases
// generated into the program prelude.
const (
	helpersImportPath = "relnotes/helpers"
	helpersPkgName    = "helpers"
)

// helperFuncs maps the bare helper names available to expressions onto
// their implementations. All helpers are total: bad input degrades to a
// zero value rather than panicking.
var helperFuncs = map[string]any{
	"str":     helperStr,
	"num":     helperNum,
	"lower":   helperLower,
	"upper":   helperUpper,
	"trim":    helperTrim,
	"replace": helperReplace,
	"split":   helperSplit,
	"join":    helperJoin,
	"first":   helperFirst,
	"has":     helperHas,
	"get":     helperGet,
	"match":   helperMatch,
}

// helperExports packages the helpers for interp.Use, with exported names.
func helperExports() interp.Exports {
	symbols := make(map[string]reflect.Value, len(helperFuncs))
	for name, fn := range helperFuncs {
		symbols[exportName(name)] = reflect.ValueOf(fn)
	}
	return interp.Exports{helpersImportPath + "/" + helpersPkgName: symbols}
}

func exportName(name string) string {
	return strings.ToUpper(name[:1]) + name[1:]
}

// helperStr renders any value as a string. Whole floats drop the decimal
// point so normalized numbers read like the integers they came from.
func helperStr(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case bool:
		if val {
			return "true"
		}
		return "false"
	case float64:
		return strconv.FormatFloat(val, 'g', -1, 64)
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	default:
		return fmt.Sprintf("%v", v)
	}
}

// helperNum coerces any value to a float64: numbers pass through, strings
// parse, true is 1, anything else is 0.
func helperNum(v any) float64 {
	switch val := v.(type) {
	case float64:
		return val
	case int:
		return float64(val)
	case int64:
		return float64(val)
	case bool:
		if val {
			return 1
		}
		return 0
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(val), 64)
		if err != nil {
			return 0
		}
		return f
	default:
		return 0
	}
}

func helperLower(v any) string {
	return strings.ToLower(helperStr(v))
}

func helperUpper(v any) string {
	return strings.ToUpper(helperStr(v))
}

func helperTrim(v any) string {
	return strings.TrimSpace(helperStr(v))
}

func helperReplace(v any, old, repl string) string {
	return strings.ReplaceAll(helperStr(v), old, repl)
}

func helperSplit(v any, sep string) []any {
	parts := strings.Split(helperStr(v), sep)
	out := make([]any, len(parts))
	for i, p := range parts {
		out[i] = p
	}
	return out
}

func helperJoin(v any, sep string) string {
	items, ok := v.([]any)
	if !ok {
		return helperStr(v)
	}
	parts := make([]string, len(items))
	for i, item := range items {
		parts[i] = helperStr(item)
	}
	return strings.Join(parts, sep)
}

// helperFirst returns the first element of a slice, nil when empty, and
// the value itself when it is not a slice.
func helperFirst(v any) any {
	items, ok := v.([]any)
	if !ok {
		return v
	}
	if len(items) == 0 {
		return nil
	}
	return items[0]
}

// helperHas reports membership: a non-nil value at a dotted path for maps,
// an element with matching string form for slices, a substring for
// strings.
func helperHas(v any, key string) bool {
	switch val := v.(type) {
	case map[string]any:
		return helperGet(val, key) != nil
	case []any:
		for _, item := range val {
			if helperStr(item) == key {
				return true
			}
		}
		return false
	case string:
		return strings.Contains(val, key)
	default:
		return false
	}
}

// helperGet walks a dotted path through nested maps and slices (numeric
// segments index slices) and returns nil on any miss.
func helperGet(v any, path string) any {
	current := v
	for _, segment := range strings.Split(path, ".") {
		switch node := current.(type) {
		case map[string]any:
			next, ok := node[segment]
			if !ok {
				return nil
			}
			current = next
		case []any:
			idx, err := strconv.Atoi(segment)
			if err != nil || idx < 0 || idx >= len(node) {
				return nil
			}
			current = node[idx]
		default:
			return nil
		}
	}
	return current
}

// helperMatch reports whether the value's string form matches the
// pattern; a bad pattern is false, not an error.
func helperMatch(v any, pattern string) bool {
	matched, err := regexp.MatchString(pattern, helperStr(v))
	if err != nil {
		return false
	}
	return matched
}
