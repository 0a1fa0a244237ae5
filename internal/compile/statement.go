// Copyright 2025 Canonical Ltd.
// Licensed under Apache 2.0, see LICENCE file for details.

package compile

// Statement is the contract between the compiler and the statements it
// compiles. Concrete statement kinds live in the public package; the
// compiler only relies on the dependency list, the label, the presence of
// output directives and the rendering methods.
//
// Statements are immutable once constructed. The compiler never mutates
// them, all compilation bookkeeping is kept in maps keyed by statement
// identity.
type Statement interface {
	// Dependencies returns the statements whose results this statement
	// consumes, in declaration order.
	Dependencies() []Statement
	// Label returns the user-chosen variable name for this statement's
	// result, or "" if the statement is unlabelled.
	Label() string
	// HasOutput reports whether output directives are attached to this
	// statement.
	HasOutput() bool
	// Render compiles the statement body. dst is the name of the variable
	// the result must be stored into, or "" if the result goes to the
	// default set.
	Render(env *Env, dst string) (string, error)
	// RenderOutput renders the trailing output directives of the
	// statement, if any. name is the variable holding the statement's
	// result, or "".
	RenderOutput(name string) string
}

// Selection is implemented by statements that select elements of a single
// kind through a chain of filters. The simplification pass may replace a
// selection's filter chain with a merged one, so selections must render
// the chain handed to them by the environment rather than their declared
// one.
type Selection interface {
	Statement
	// ElementKind returns the kind of element selected (node, way, ...).
	// Filter chains only merge across selections of the same kind.
	ElementKind() string
	// SelectionFilters returns the declared filter chain.
	SelectionFilters() []Filter
}

// Combination is implemented by statements that combine operand sets into
// one result set. Operands used only once may be rendered inline inside
// the combination instead of being bound to a variable.
type Combination interface {
	Statement
	// Operands returns the declared operand sets, in composition order.
	Operands() []Statement
	// Flattenable reports whether single-use operands of the same kind
	// may be spliced into this statement's operand list. Unions are
	// associative and flattenable, differences are binary and are not.
	Flattenable() bool
}

// Fragment is implemented by raw statements that reference other
// statements through named placeholders. All referenced statements are
// bound to variables before the fragment is emitted.
type Fragment interface {
	Statement
	// Refs returns the declared placeholder bindings.
	Refs() map[string]Statement
	// Placeholders returns the placeholder names appearing in the
	// fragment's text, excluding the reserved output placeholder.
	Placeholders() []string
}

// Filter is the contract for constraints attached to a selection. A
// filter may reference other statements, in which case those statements
// are bound to variables the filter's rendered form refers to.
type Filter interface {
	// Dependencies returns the statements referenced by this filter, in
	// declaration order.
	Dependencies() []Statement
	// Render compiles the filter to its textual form.
	Render(env *Env) (string, error)
}

// SetFilter is a filter restricting a selection to the members of other
// sets. It is the point where filter chains merge: a single-use
// predecessor of the same element kind is replaced by its own filters.
type SetFilter interface {
	Filter
	// Sets returns the sets the selection is restricted to.
	Sets() []Statement
	// Restrict returns a copy of the filter restricted to the given
	// subset of its sets.
	Restrict(sets []Statement) Filter
}
