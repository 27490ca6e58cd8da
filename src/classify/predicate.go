// Package classify implements the conditional file classifier: deciding
// which build target(s) a source file belongs to and under which
// (backend, opt-level) pairs it is included.
package classify

import (
	"fmt"

	"github.com/lumenlang/lumenbuild/src/core"
)

// Predicate is a boolean function of (backend, opt-level), the evaluated
// form of a manifest `supported-targets` expression or a filename-derived
// constraint.
type Predicate func(backend core.Backend, opt core.OptLevel) bool

// Always admits every (backend, opt-level) pair.
func Always(core.Backend, core.OptLevel) bool { return true }

// And combines predicates by conjunction; an empty list is Always.
func And(preds ...Predicate) Predicate {
	return func(b core.Backend, o core.OptLevel) bool {
		for _, p := range preds {
			if !p(b, o) {
				return false
			}
		}
		return true
	}
}

// Or combines predicates by disjunction; an empty list admits nothing.
func Or(preds ...Predicate) Predicate {
	return func(b core.Backend, o core.OptLevel) bool {
		for _, p := range preds {
			if p(b, o) {
				return true
			}
		}
		return false
	}
}

// NotP negates a predicate.
func NotP(p Predicate) Predicate {
	return func(b core.Backend, o core.OptLevel) bool { return !p(b, o) }
}

// AtomPredicate builds a predicate for a single `supported-targets` atom:
// a constraint on backend, opt-level, or both. An empty
// field places no constraint on that axis.
func AtomPredicate(backend, optLevel string) (Predicate, error) {
	var backendCheck, optCheck Predicate = Always, Always
	if backend != "" {
		want, err := core.ParseBackend(backend)
		if err != nil {
			return nil, err
		}
		backendCheck = func(b core.Backend, _ core.OptLevel) bool { return b == want }
	}
	if optLevel != "" {
		want, err := core.ParseOptLevel(optLevel)
		if err != nil {
			return nil, err
		}
		optCheck = func(_ core.Backend, o core.OptLevel) bool { return o == want }
	}
	return And(backendCheck, optCheck), nil
}

// EvalExpr compiles a manifest `supported-targets` expression
// (core.FileTarget) into a Predicate: an atom, or one of
// `not` / `and` / `or` / `first-atom` (which implicitly ORs its args).
func EvalExpr(expr core.FileTarget) (Predicate, error) {
	if expr.IsAtom() {
		return AtomPredicate(expr.Backend, expr.OptLevel)
	}
	args := make([]Predicate, len(expr.Args))
	for i, a := range expr.Args {
		p, err := EvalExpr(a)
		if err != nil {
			return nil, err
		}
		args[i] = p
	}
	switch expr.Op {
	case "not":
		if len(args) != 1 {
			return nil, fmt.Errorf("supported-targets: %q takes exactly one argument", expr.Op)
		}
		return NotP(args[0]), nil
	case "and":
		return And(args...), nil
	case "or", "first-atom":
		return Or(args...), nil
	default:
		return nil, fmt.Errorf("supported-targets: unknown operator %q", expr.Op)
	}
}
