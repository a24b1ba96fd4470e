// Package conditionals evaluates the string predicates used by story
// content: "flag:<id>" and its negation "!flag:<id>".
package conditionals

import "strings"

// FlagSource provides the minimal read access needed to evaluate a
// condition. This avoids an import cycle with the state package.
type FlagSource interface {
	Flag(id string) bool
}

// Check evaluates a single condition string against flag state.
//
// Grammar: the empty string is trivially true; "flag:<id>" returns the
// flag's value; "!flag:<id>" returns its negation. Any other string is
// treated as true. The permissive default is load-bearing for existing
// content and is pinned by tests; callers that want to surface
// unrecognized syntax can pre-screen with Recognized.
func Check(expr string, flags FlagSource) bool {
	if expr == "" {
		return true
	}
	if id, ok := strings.CutPrefix(expr, "flag:"); ok {
		return flags.Flag(id)
	}
	if id, ok := strings.CutPrefix(expr, "!flag:"); ok {
		return !flags.Flag(id)
	}
	return true
}

// CheckAll returns true if every condition passes (AND logic). An empty
// list is vacuously true. There is no boolean composition inside a
// single condition string.
func CheckAll(exprs []string, flags FlagSource) bool {
	for _, expr := range exprs {
		if !Check(expr, flags) {
			return false
		}
	}
	return true
}

// Recognized reports whether the expression is part of the condition
// grammar. Useful as a development-time diagnostic; Check stays
// permissive regardless.
func Recognized(expr string) bool {
	return expr == "" ||
		strings.HasPrefix(expr, "flag:") ||
		strings.HasPrefix(expr, "!flag:")
}
