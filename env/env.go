// Package env implements the per-statement lexical scope of visible
// identifiers the inferrer consults: tables and columns brought in by FROM,
// JOIN, and CTEs, plus aliases that rebind or shadow them.
package env

import "github.com/basilisk-labs/sqlitec/types"

// TypeContainer is the value stored per identifier. Ambiguous marks a name
// bound by more than one source (e.g. an unqualified column present on two
// joined tables); an unqualified read of an ambiguous name is a diagnostic.
// ExplicitAccessOnly marks a binding visible only to an explicit reference
// (FTS5's pseudo-column "rank") and absent from SELECT * expansion.
type TypeContainer struct {
	Type               types.Type
	Ambiguous          bool
	ExplicitAccessOnly bool
}

// Environment is an identifier scope, optionally nested in a parent scope
// (see Child), built incrementally as a
// statement's clauses are walked: FROM introduces table columns, CTEs
// introduce subquery results, AS aliases rebind. It is discarded once
// inference of the statement completes; type variables it holds are never
// reused across statements.
type Environment struct {
	parent *Environment
	vars   map[string]*TypeContainer
	// order preserves insertion order for "SELECT *" column expansion when
	// iterating a table's unqualified bindings, skipping ExplicitAccessOnly.
	order []string
}

// New returns an empty, parentless environment.
func New() *Environment {
	return &Environment{vars: make(map[string]*TypeContainer)}
}

// Child returns a new environment that falls back to e for lookups not
// satisfied locally, used for subquery scopes that still see the outer
// query's bindings (correlated subqueries).
func (e *Environment) Child() *Environment {
	return &Environment{parent: e, vars: make(map[string]*TypeContainer)}
}

// Define inserts or updates name. A second Define of the same name marks
// the existing entry Ambiguous rather than overwriting it, per the spec's
// "duplicate inserts set ambiguous=true" rule.
func (e *Environment) Define(name string, t types.Type, explicitAccessOnly bool) {
	if existing, ok := e.vars[name]; ok {
		existing.Ambiguous = true
		return
	}
	e.vars[name] = &TypeContainer{Type: t, ExplicitAccessOnly: explicitAccessOnly}
	e.order = append(e.order, name)
}

// Rebind replaces name's binding unconditionally, clearing any Ambiguous
// or ExplicitAccessOnly mark, and appends name to the insertion order if
// it is new. It leaves every other binding in place.
func (e *Environment) Rebind(name string, t types.Type) {
	e.vars[name] = &TypeContainer{Type: t}
	for _, n := range e.order {
		if n == name {
			return
		}
	}
	e.order = append(e.order, name)
}

// Lookup resolves name in e, then in enclosing scopes. ok is false if
// name is bound nowhere.
func (e *Environment) Lookup(name string) (*TypeContainer, bool) {
	for cur := e; cur != nil; cur = cur.parent {
		if c, ok := cur.vars[name]; ok {
			return c, true
		}
	}
	return nil, false
}

// Columns iterates this scope's bindings in insertion order, skipping
// ExplicitAccessOnly entries, for SELECT * expansion. It does not walk
// into parent scopes: a star only expands the tables introduced by the
// current FROM/JOIN list.
func (e *Environment) Columns() []string {
	out := make([]string, 0, len(e.order))
	for _, n := range e.order {
		if c := e.vars[n]; c != nil && !c.ExplicitAccessOnly {
			out = append(out, n)
		}
	}
	return out
}

// Get returns the raw container for name in the local scope only, or nil.
func (e *Environment) Get(name string) *TypeContainer { return e.vars[name] }
