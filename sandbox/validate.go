// Package sandbox validates and executes small user-authored transform
// expressions against a restricted namespace and a fixed time budget.
//
// An expression is a single Go expression (statements do not parse), e.g.
//
//	upper(str(value))
//	str(get(item, "fields.priority.name")) + " change"
//	num(value) * 1.5
//
// Execution proceeds in two phases. Validate parses the source and walks
// the syntax tree, rejecting function literals, type definitions, denied
// capability names (process, filesystem, network, reflection) and any
// identifier not on the allow-list of context names, helpers, safe value
// packages and universe names. Eval then runs the validated expression in
// a fresh interpreter loaded with only the allowed package symbols, under
// a hard wall-clock deadline. Context values are injected as generated
// literals, so the expression operates on copies and nothing leaks back
// into the caller's state, even on timeout. Numeric context values are
// normalized to float64 on injection.
//
// The lifecycle is Unvalidated -> Validated -> Executing -> Completed,
// TimedOut or RuntimeError; a rejected expression never becomes Validated,
// and only a Validated expression can execute.
package sandbox

import (
	"fmt"
	"go/ast"
	"go/parser"
	"sort"
	"strings"
	"time"
)

// DefaultTimeout is the wall-clock deadline applied when the caller
// passes no positive timeout to Eval.
const DefaultTimeout = 250 * time.Millisecond

// deniedIdents names the dangerous capabilities an expression may not
// reference, bare or as a selector base. Enumerating these is tractable
// and auditable; enumerating every safe operation would not be.
var deniedIdents = map[string]string{
	"os":      "process and filesystem access",
	"exec":    "process execution",
	"syscall": "system calls",
	"net":     "network access",
	"http":    "network access",
	"rpc":     "network access",
	"unsafe":  "unsafe memory access",
	"reflect": "reflection",
	"runtime": "runtime control",
	"plugin":  "code loading",
	"cgo":     "native code",
	"eval":    "dynamic evaluation",
	"panic":   "abort control",
	"print":   "direct output",
	"println": "direct output",
	"recover": "abort control",
}

// allowedPackages maps the package identifiers an expression may use to
// their import paths. All are value-type packages: text, numbers,
// patterns, collections, time values.
var allowedPackages = map[string]string{
	"strings": "strings",
	"strconv": "strconv",
	"fmt":     "fmt",
	"math":    "math",
	"regexp":  "regexp",
	"time":    "time",
	"sort":    "sort",
	"bytes":   "bytes",
	"unicode": "unicode",
	"json":    "encoding/json",
}

// allowedUniverse lists predeclared names considered safe: scalar and
// collection types, constants, and pure builtins.
var allowedUniverse = map[string]bool{
	"true": true, "false": true, "nil": true, "iota": true,
	"string": true, "bool": true, "byte": true, "rune": true, "any": true, "error": true,
	"int": true, "int8": true, "int16": true, "int32": true, "int64": true,
	"uint": true, "uint8": true, "uint16": true, "uint32": true, "uint64": true,
	"float32": true, "float64": true,
	"len": true, "cap": true, "append": true, "copy": true, "delete": true,
	"make": true, "new": true, "min": true, "max": true,
}

// Expression is a validated transform expression. Instances only come out
// of Validate, so holding one implies the static checks passed; Eval may
// be called any number of times.
type Expression struct {
	src       string
	names     []string
	imports   []string
	validated bool
}

// Source returns the original expression text.
func (e *Expression) Source() string { return e.src }

// Validate parses src as a single Go expression and statically checks it
// against the sandbox rules. contextNames are the value names the caller
// will supply to Eval; referencing anything else (beyond helpers, allowed
// packages and universe names) is a *SecurityError.
func Validate(src string, contextNames []string) (*Expression, error) {
	src = strings.TrimSpace(src)
	if src == "" {
		return nil, fmt.Errorf("empty expression")
	}

	node, err := parser.ParseExpr(src)
	if err != nil {
		return nil, fmt.Errorf("parse expression: %w", err)
	}

	allowed := make(map[string]bool, len(contextNames)+len(helperFuncs))
	for _, name := range contextNames {
		allowed[name] = true
	}
	for name := range helperFuncs {
		allowed[name] = true
	}

	// Idents in selector position are member names (strings.ToUpper); the
	// base identifier carries the capability, so members are only checked
	// against the deny list.
	selBases := map[*ast.Ident]bool{}
	selNames := map[*ast.Ident]bool{}
	ast.Inspect(node, func(n ast.Node) bool {
		if sel, ok := n.(*ast.SelectorExpr); ok {
			if id, ok := sel.X.(*ast.Ident); ok {
				selBases[id] = true
			}
			selNames[sel.Sel] = true
		}
		return true
	})

	imports := map[string]bool{}
	var verr error
	ast.Inspect(node, func(n ast.Node) bool {
		if verr != nil {
			return false
		}
		switch t := n.(type) {
		case *ast.FuncLit:
			verr = &SecurityError{Expr: src, Reason: "function literals are not allowed"}
			return false
		case *ast.FuncType:
			verr = &SecurityError{Expr: src, Reason: "function types are not allowed"}
			return false
		case *ast.StructType, *ast.InterfaceType, *ast.ChanType:
			verr = &SecurityError{Expr: src, Reason: "type definitions are not allowed"}
			return false
		case *ast.Ident:
			verr = checkIdent(src, t, allowed, selBases, selNames, imports)
			return verr == nil
		}
		return true
	})
	if verr != nil {
		return nil, verr
	}

	paths := make([]string, 0, len(imports))
	for path := range imports {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	names := append([]string(nil), contextNames...)
	sort.Strings(names)

	return &Expression{src: src, names: names, imports: paths, validated: true}, nil
}

func checkIdent(src string, id *ast.Ident, allowed map[string]bool, selBases, selNames map[*ast.Ident]bool, imports map[string]bool) error {
	name := id.Name

	if strings.HasPrefix(name, "__") {
		return &SecurityError{Expr: src, Reason: fmt.Sprintf("identifier %q uses a reserved prefix", name)}
	}
	if reason, denied := deniedIdents[name]; denied {
		return &SecurityError{Expr: src, Reason: fmt.Sprintf("identifier %q is denied (%s)", name, reason)}
	}
	if selNames[id] {
		return nil
	}
	if allowed[name] {
		return nil
	}
	if path, ok := allowedPackages[name]; ok {
		if selBases[id] {
			imports[path] = true
		}
		return nil
	}
	if allowedUniverse[name] {
		return nil
	}
	return &SecurityError{Expr: src, Reason: fmt.Sprintf("identifier %q is not allowed", name)}
}
