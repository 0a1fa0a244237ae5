// Copyright 2025 Canonical Ltd.
// Licensed under Apache 2.0, see LICENCE file for details.

package compile

// Env is the emission environment of one compilation. It holds the
// variable bindings assigned to shared statements and the rewrites
// produced by the simplification pass. Statements consult it while
// rendering to resolve dependency references; all lookups are keyed by
// statement identity, never by structural equality.
type Env struct {
	// names maps each bound statement to its variable name.
	names map[Statement]string
	// filters holds the merged filter chains of simplified selections.
	filters map[Statement][]Filter
	// operands holds the flattened operand lists of simplified
	// combinations.
	operands map[Statement][]Statement
}

func newEnv() *Env {
	return &Env{
		names:    map[Statement]string{},
		filters:  map[Statement][]Filter{},
		operands: map[Statement][]Statement{},
	}
}

// Name returns the variable bound to the statement's result, if any.
func (e *Env) Name(s Statement) (string, bool) {
	name, ok := e.names[s]
	return name, ok
}

// Ref renders a reference to the statement's result for use as a
// combination operand: the variable reference if the statement is bound,
// or its full inline form otherwise.
func (e *Env) Ref(s Statement) (string, error) {
	if name, ok := e.names[s]; ok {
		return "." + name + ";", nil
	}
	return s.Render(e, "")
}

// FiltersOf returns the effective filter chain of a selection: the merged
// chain when the simplification pass rewrote it, the declared chain
// otherwise.
func (e *Env) FiltersOf(s Selection) []Filter {
	if filters, ok := e.filters[s]; ok {
		return filters
	}
	return s.SelectionFilters()
}

// OperandsOf returns the effective operand list of a combination: the
// flattened list when the simplification pass rewrote it, the declared
// list otherwise.
func (e *Env) OperandsOf(s Combination) []Statement {
	if operands, ok := e.operands[s]; ok {
		return operands
	}
	return s.Operands()
}

// dependenciesOf returns the statement's dependencies as rewritten by the
// simplification pass.
func (e *Env) dependenciesOf(s Statement) []Statement {
	switch t := s.(type) {
	case Selection:
		var deps []Statement
		for _, f := range e.FiltersOf(t) {
			deps = append(deps, f.Dependencies()...)
		}
		return deps
	case Combination:
		return e.OperandsOf(t)
	default:
		return s.Dependencies()
	}
}
