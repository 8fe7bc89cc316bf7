// Package buildutil provides helpers for reading arguments out of buildtools
// AST nodes. The manifest parser uses it to walk Starlark call expressions.
package buildutil

import (
	"github.com/bazelbuild/buildtools/build"
)

// FuncName returns the function name from a CallExpr.
// Returns empty string if the call is not a simple function call
// (e.g., method calls like foo.bar()).
func FuncName(call *build.CallExpr) string {
	if ident, ok := call.X.(*build.Ident); ok {
		return ident.Name
	}
	return ""
}

// Kwarg returns the expression bound to the keyword argument name,
// or nil if the call has no such argument.
func Kwarg(call *build.CallExpr, name string) build.Expr {
	for _, arg := range call.List {
		assign, ok := arg.(*build.AssignExpr)
		if !ok {
			continue
		}
		if lhs, ok := assign.LHS.(*build.Ident); ok && lhs.Name == name {
			return assign.RHS
		}
	}
	return nil
}

// KwargNames returns the keyword argument names of a call in source order.
func KwargNames(call *build.CallExpr) []string {
	var names []string
	for _, arg := range call.List {
		assign, ok := arg.(*build.AssignExpr)
		if !ok {
			continue
		}
		if lhs, ok := assign.LHS.(*build.Ident); ok {
			names = append(names, lhs.Name)
		}
	}
	return names
}

// Positional returns the positional arguments of a call.
func Positional(call *build.CallExpr) []build.Expr {
	var out []build.Expr
	for _, arg := range call.List {
		if _, ok := arg.(*build.AssignExpr); ok {
			continue
		}
		out = append(out, arg)
	}
	return out
}

// AsString returns the value of a string literal.
func AsString(expr build.Expr) (string, bool) {
	str, ok := expr.(*build.StringExpr)
	if !ok {
		return "", false
	}
	return str.Value, true
}

// AsBool returns the value of a True or False identifier.
func AsBool(expr build.Expr) (value, ok bool) {
	ident, isIdent := expr.(*build.Ident)
	if !isIdent {
		return false, false
	}
	switch ident.Name {
	case "True":
		return true, true
	case "False":
		return false, true
	}
	return false, false
}

// AsList returns the elements of a list literal.
func AsList(expr build.Expr) ([]build.Expr, bool) {
	list, ok := expr.(*build.ListExpr)
	if !ok {
		return nil, false
	}
	return list.List, true
}

// Pos returns the 1-based line and column where expr starts.
func Pos(expr build.Expr) (line, col int) {
	start, _ := expr.Span()
	return start.Line, start.LineRune
}
