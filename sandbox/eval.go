package sandbox

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/traefik/yaegi/interp"
	"github.com/traefik/yaegi/stdlib"
)

type evalResult struct {
	val any
	err error
}

// Eval runs the validated expression against ctx under a hard wall-clock
// deadline (DefaultTimeout when timeout is not positive). The expression
// executes in a fresh interpreter loaded with only the allowed package
// symbols; ctx values are injected as generated literals, so the caller's
// data cannot be mutated. Deadline overrun returns a *TimeoutError and the
// runaway evaluation is abandoned; any other evaluation failure comes back
// as a plain wrapped error.
func (e *Expression) Eval(ctx map[string]any, timeout time.Duration) (any, error) {
	if e == nil || !e.validated {
		return nil, fmt.Errorf("expression has not been validated")
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	prog, err := e.program(ctx)
	if err != nil {
		return nil, err
	}

	i := interp.New(interp.Options{})
	if err := i.Use(restrictedSymbols()); err != nil {
		return nil, fmt.Errorf("load interpreter symbols: %w", err)
	}
	if err := i.Use(helperExports()); err != nil {
		return nil, fmt.Errorf("load helper symbols: %w", err)
	}

	if _, err := i.Eval(prog); err != nil {
		return nil, fmt.Errorf("prepare expression: %w", err)
	}

	done := make(chan evalResult, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- evalResult{err: fmt.Errorf("expression panicked: %v", r)}
			}
		}()
		v, err := i.Eval("main.Transform()")
		if err != nil {
			done <- evalResult{err: err}
			return
		}
		var out any
		if v.IsValid() && v.CanInterface() {
			out = v.Interface()
		}
		done <- evalResult{val: out}
	}()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case res := <-done:
		if res.err != nil {
			return nil, fmt.Errorf("evaluate expression: %w", res.err)
		}
		return res.val, nil
	case <-timer.C:
		return nil, &TimeoutError{Expr: e.src, Timeout: timeout}
	}
}

// program generates the interpreted source: context values as package-level
// literals (package scope so unreferenced names are legal), helper aliases,
// and a Transform function returning the expression.
func (e *Expression) program(ctx map[string]any) (string, error) {
	var b strings.Builder
	b.WriteString("package main\n\n")

	helperNames := make([]string, 0, len(helperFuncs))
	for name := range helperFuncs {
		if containsName(e.names, name) {
			// Context values shadow helpers of the same name.
			continue
		}
		helperNames = append(helperNames, name)
	}
	sort.Strings(helperNames)

	b.WriteString("import (\n")
	if len(helperNames) > 0 {
		fmt.Fprintf(&b, "\t%q\n", helpersImportPath)
	}
	for _, path := range e.imports {
		fmt.Fprintf(&b, "\t%q\n", path)
	}
	b.WriteString(")\n\n")

	if len(e.names) > 0 {
		b.WriteString("var (\n")
		for _, name := range e.names {
			if !isIdentifier(name) {
				return "", fmt.Errorf("invalid context name %q", name)
			}
			fmt.Fprintf(&b, "\t%s = %s\n", name, literal(ctx[name]))
		}
		b.WriteString(")\n\n")
	}

	if len(helperNames) > 0 {
		b.WriteString("var (\n")
		for _, name := range helperNames {
			fmt.Fprintf(&b, "\t%s = %s.%s\n", name, helpersPkgName, exportName(name))
		}
		b.WriteString(")\n\n")
	}

	b.WriteString("func Transform() any {\n\treturn " + e.src + "\n}\n")
	return b.String(), nil
}

// restrictedSymbols filters the interpreter's stdlib symbol table down to
// the allowed packages. Everything else simply does not exist inside the
// interpreter, so even a validation gap cannot reach os or net.
func restrictedSymbols() interp.Exports {
	out := make(interp.Exports, len(allowedPackages))
	for _, path := range allowedPackages {
		key := path + "/" + pkgBaseName(path)
		if symbols, ok := stdlib.Symbols[key]; ok {
			out[key] = symbols
		}
	}
	return out
}

func pkgBaseName(path string) string {
	if i := strings.LastIndex(path, "/"); i >= 0 {
		return path[i+1:]
	}
	return path
}

// literal renders a context value as Go literal source. Maps and slices
// recurse with sorted keys for deterministic programs; all numbers become
// float64 so expressions never mix int and float arithmetic; values of
// unsupported types degrade to their quoted string form.
func literal(v any) string {
	switch val := v.(type) {
	case nil:
		return "any(nil)"
	case string:
		return strconv.Quote(val)
	case bool:
		if val {
			return "true"
		}
		return "false"
	case int:
		return floatLiteral(float64(val))
	case int8:
		return floatLiteral(float64(val))
	case int16:
		return floatLiteral(float64(val))
	case int32:
		return floatLiteral(float64(val))
	case int64:
		return floatLiteral(float64(val))
	case uint:
		return floatLiteral(float64(val))
	case uint64:
		return floatLiteral(float64(val))
	case float32:
		return floatLiteral(float64(val))
	case float64:
		return floatLiteral(val)
	case map[string]any:
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, 0, len(keys))
		for _, k := range keys {
			parts = append(parts, strconv.Quote(k)+": "+literal(val[k]))
		}
		return "map[string]any{" + strings.Join(parts, ", ") + "}"
	case []any:
		parts := make([]string, 0, len(val))
		for _, item := range val {
			parts = append(parts, literal(item))
		}
		return "[]any{" + strings.Join(parts, ", ") + "}"
	case []string:
		parts := make([]string, 0, len(val))
		for _, item := range val {
			parts = append(parts, strconv.Quote(item))
		}
		return "[]any{" + strings.Join(parts, ", ") + "}"
	default:
		return strconv.Quote(fmt.Sprintf("%v", v))
	}
}

func floatLiteral(f float64) string {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return "float64(0)"
	}
	return "float64(" + strconv.FormatFloat(f, 'g', -1, 64) + ")"
}

func isIdentifier(name string) bool {
	if name == "" {
		return false
	}
	for i, r := range name {
		letter := r == '_' || ('a' <= r && r <= 'z') || ('A' <= r && r <= 'Z')
		digit := '0' <= r && r <= '9'
		if !letter && (i == 0 || !digit) {
			return false
		}
	}
	return true
}

func containsName(names []string, name string) bool {
	for _, n := range names {
		if n == name {
			return true
		}
	}
	return false
}
