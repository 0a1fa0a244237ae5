// Copyright 2025 Canonical Ltd.
// Licensed under Apache 2.0, see LICENCE file for details.

package overpassql

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"github.com/canonical/overpassql/internal/compile"
	"github.com/canonical/overpassql/internal/sliceutil"
)

// Statement is the interface implemented by every query statement. The
// concrete statement kinds are [Elements], [Combination], [Recurse] and
// [RawStatement]; the set is closed.
//
// Statements are immutable once constructed: chaining methods return a
// new statement wrapping the receiver, they never modify it. Sharing a
// statement between several consumers is therefore safe and is how
// results are reused — a statement referenced from more than one place is
// compiled once and bound to a variable.
type Statement = compile.Statement

// Filter is a constraint attached to an element selection. A filter may
// itself reference other statements, for example the set a spatial filter
// measures distances from.
type Filter = compile.Filter

// outOptions are the options accepted by [Elements.Out] and the other Out
// methods.
var outOptions = []string{
	"ids", "skel", "body", "tags", "meta", "noids",
	"geom", "bb", "center", "asc", "qt", "count",
}

// parseOutOptions splits, validates and normalises output directive
// options. It panics on unknown options: an invalid output directive is a
// programming error, not a property of the compiled graph.
func parseOutOptions(options []string) []string {
	var tokens []string
	for _, item := range options {
		tokens = append(tokens, strings.Fields(item)...)
	}
	_, invalid := sliceutil.Partition(tokens, func(tok string) bool {
		return sliceutil.Contains(outOptions, tok)
	})
	if len(invalid) > 0 {
		panic(fmt.Sprintf("overpassql: invalid out options: %s", strings.Join(invalid, ",")))
	}
	return sliceutil.SortedUnique(tokens)
}

// directives holds the label and output directives common to all
// statement kinds.
type directives struct {
	label string
	outs  [][]string
}

// Label returns the user-chosen variable name, or "".
func (d directives) Label() string { return d.label }

// HasOutput reports whether output directives are attached.
func (d directives) HasOutput() bool { return len(d.outs) > 0 }

// RenderOutput renders the trailing output directives, one per line.
func (d directives) RenderOutput(name string) string {
	if len(d.outs) == 0 {
		return ""
	}
	var lines []string
	for _, opts := range d.outs {
		line := "out"
		if name != "" {
			line = "." + name + " out"
		}
		if len(opts) > 0 {
			line += " " + strings.Join(opts, " ")
		}
		lines = append(lines, line+";")
	}
	return strings.Join(lines, "\n")
}

func (d directives) withLabel(label string) directives {
	d.label = label
	return d
}

func (d directives) withOut(options []string) directives {
	outs := make([][]string, 0, len(d.outs)+1)
	outs = append(outs, d.outs...)
	d.outs = append(outs, parseOutOptions(options))
	return d
}

// Elements is a query statement selecting elements of one kind (node,
// way, relation, area) through a chain of filters. The zero filter chain
// selects every element of the kind.
type Elements struct {
	directives
	kind    string
	filters []Filter
}

var _ compile.Selection = (*Elements)(nil)

// Nodes returns a statement selecting nodes matching all the given
// filters.
func Nodes(filters ...Filter) *Elements { return &Elements{kind: "node", filters: filters} }

// Ways returns a statement selecting ways matching all the given filters.
func Ways(filters ...Filter) *Elements { return &Elements{kind: "way", filters: filters} }

// Relations returns a statement selecting relations matching all the
// given filters.
func Relations(filters ...Filter) *Elements { return &Elements{kind: "rel", filters: filters} }

// Areas returns a statement selecting areas matching all the given
// filters.
func Areas(filters ...Filter) *Elements { return &Elements{kind: "area", filters: filters} }

// NWR returns a statement selecting nodes, ways and relations matching
// all the given filters.
func NWR(filters ...Filter) *Elements { return &Elements{kind: "nwr", filters: filters} }

// ElementKind returns the kind of element selected.
func (e *Elements) ElementKind() string { return e.kind }

// SelectionFilters returns the declared filter chain.
func (e *Elements) SelectionFilters() []Filter { return e.filters }

// Dependencies returns the statements referenced by the selection's
// filters, in filter order.
func (e *Elements) Dependencies() []Statement {
	var deps []Statement
	for _, f := range e.filters {
		deps = append(deps, f.Dependencies()...)
	}
	return deps
}

// Render compiles the selection using the effective filter chain from the
// environment, which may differ from the declared one after filter-chain
// merging.
func (e *Elements) Render(env *compile.Env, dst string) (string, error) {
	var sb strings.Builder
	sb.WriteString(e.kind)
	for _, f := range env.FiltersOf(e) {
		text, err := f.Render(env)
		if err != nil {
			return "", err
		}
		sb.WriteString(text)
	}
	if dst != "" {
		sb.WriteString("->." + dst)
	}
	sb.WriteString(";")
	return sb.String(), nil
}

// derive returns a new selection of the same kind restricted to the
// receiver's result and further constrained by the given filters.
func (e *Elements) derive(filters ...Filter) *Elements {
	return &Elements{kind: e.kind, filters: append([]Filter{Intersect(e)}, filters...)}
}

// Where returns a new selection of the receiver's elements further
// constrained by the given filters.
func (e *Elements) Where(filters ...Filter) *Elements { return e.derive(filters...) }

// Within returns a new selection of the receiver's elements that lay in
// the given spatial filter (a bounding box, area, polygon, ...).
func (e *Elements) Within(area Filter) *Elements { return e.derive(area) }

// Around returns a new selection of the receiver's elements within the
// given radius, in meters, of the elements of other.
func (e *Elements) Around(radius float64, other Statement) *Elements {
	return e.derive(Around(radius, other))
}

// Intersection returns a new selection of the receiver's elements that
// are also present in all the other sets.
func (e *Elements) Intersection(others ...Statement) *Elements {
	sets := append([]Statement{e}, others...)
	return &Elements{kind: e.kind, filters: []Filter{Intersect(sets...)}}
}

// ChangedSince returns a new selection of the receiver's elements changed
// since the given date.
func (e *Elements) ChangedSince(date time.Time) *Elements {
	return e.derive(Newer(date))
}

// ChangedBetween returns a new selection of the receiver's elements
// changed between the two given dates.
func (e *Elements) ChangedBetween(lower, upper time.Time) *Elements {
	return e.derive(ChangedBetween(lower, upper))
}

// LastChangedBy returns a new selection of the receiver's elements last
// edited by any of the given users.
func (e *Elements) LastChangedBy(users ...string) *Elements {
	return e.derive(User(users...))
}

// OutlinesOf returns a new selection of the receiver's elements that are
// part of the outline of the given area.
func (e *Elements) OutlinesOf(area Statement) *Elements {
	return e.derive(Pivot(area))
}

// RecurseDown returns the statement recursing down from the receiver's
// result to its members.
func (e *Elements) RecurseDown() *Recurse { return RecurseDown(e) }

// RecurseDownRels returns the statement recursing down from the
// receiver's result, following relations transitively.
func (e *Elements) RecurseDownRels() *Recurse { return RecurseDownRels(e) }

// RecurseUp returns the statement recursing up from the receiver's result
// to its parents.
func (e *Elements) RecurseUp() *Recurse { return RecurseUp(e) }

// RecurseUpRels returns the statement recursing up from the receiver's
// result, following relations transitively.
func (e *Elements) RecurseUpRels() *Recurse { return RecurseUpRels(e) }

// As returns a copy of the selection labelled with the given name. The
// label is used as the variable name for the statement's result and must
// be unique within one compiled query.
func (e *Elements) As(label string) *Elements {
	c := *e
	c.directives = c.directives.withLabel(label)
	return &c
}

// Out returns a copy of the selection with an output directive appended.
// Options may be passed individually or space-separated; Out panics on
// options the target language does not know.
func (e *Elements) Out(options ...string) *Elements {
	c := *e
	c.directives = c.directives.withOut(options)
	return &c
}

// combineOp discriminates the set combination kinds.
type combineOp int

const (
	opUnion combineOp = iota
	opDifference
)

// Combination combines operand sets into one result set: the union of
// any number of sets, or the difference of exactly two.
type Combination struct {
	directives
	op   combineOp
	sets []Statement
}

var _ compile.Combination = (*Combination)(nil)

// Union returns the statement combining the results of all the given
// sets. Union is associative: directly nested unions compile to a single
// flat statement.
func Union(sets ...Statement) *Combination {
	return &Combination{op: opUnion, sets: sets}
}

// Difference returns the statement selecting the results of a that are
// not results of b.
func Difference(a, b Statement) *Combination {
	return &Combination{op: opDifference, sets: []Statement{a, b}}
}

// Dependencies returns the operand sets.
func (c *Combination) Dependencies() []Statement { return c.sets }

// Operands returns the operand sets in composition order.
func (c *Combination) Operands() []Statement { return c.sets }

// Flattenable reports whether nested operands may be spliced into this
// statement. Unions are flattenable, differences are binary and are not.
func (c *Combination) Flattenable() bool { return c.op == opUnion }

// Render compiles the combination using the effective operand list from
// the environment. Operands bound to a variable are referenced by name,
// single-use operands are rendered inline.
func (c *Combination) Render(env *compile.Env, dst string) (string, error) {
	operands := env.OperandsOf(c)
	refs := make([]string, len(operands))
	for i, op := range operands {
		ref, err := env.Ref(op)
		if err != nil {
			return "", err
		}
		refs[i] = ref
	}
	var body string
	switch c.op {
	case opUnion:
		body = strings.Join(refs, " ")
	case opDifference:
		body = refs[0] + " - " + refs[1]
	}
	text := "(" + body + ")"
	if dst != "" {
		text += "->." + dst
	}
	return text + ";", nil
}

// As returns a copy of the combination labelled with the given name.
func (c *Combination) As(label string) *Combination {
	cp := *c
	cp.directives = cp.directives.withLabel(label)
	return &cp
}

// Out returns a copy of the combination with an output directive
// appended. See [Elements.Out].
func (c *Combination) Out(options ...string) *Combination {
	cp := *c
	cp.directives = cp.directives.withOut(options)
	return &cp
}

// recurseOp discriminates the recursion kinds.
type recurseOp int

const (
	recurseDown recurseOp = iota
	recurseDownRels
	recurseUp
	recurseUpRels
)

func (op recurseOp) symbol() string {
	switch op {
	case recurseDown:
		return ">"
	case recurseDownRels:
		return ">>"
	case recurseUp:
		return "<"
	default:
		return "<<"
	}
}

// Recurse is a statement traversing the membership graph from an input
// set: down to members and node positions, or up to parent ways and
// relations, optionally following relations transitively.
type Recurse struct {
	directives
	op    recurseOp
	input Statement
}

var _ Statement = (*Recurse)(nil)

// RecurseDown returns the statement recursing down from input's result.
func RecurseDown(input Statement) *Recurse {
	return &Recurse{op: recurseDown, input: input}
}

// RecurseDownRels returns the statement recursing down from input's
// result, following relations transitively.
func RecurseDownRels(input Statement) *Recurse {
	return &Recurse{op: recurseDownRels, input: input}
}

// RecurseUp returns the statement recursing up from input's result.
func RecurseUp(input Statement) *Recurse {
	return &Recurse{op: recurseUp, input: input}
}

// RecurseUpRels returns the statement recursing up from input's result,
// following relations transitively.
func RecurseUpRels(input Statement) *Recurse {
	return &Recurse{op: recurseUpRels, input: input}
}

// Dependencies returns the input set.
func (r *Recurse) Dependencies() []Statement { return []Statement{r.input} }

// Render compiles the recursion. The input set is always referenced by
// variable name.
func (r *Recurse) Render(env *compile.Env, dst string) (string, error) {
	name, ok := env.Name(r.input)
	if !ok {
		return "", fmt.Errorf("internal error: recursion input is not bound to a variable")
	}
	text := "." + name + " " + r.op.symbol()
	if dst != "" {
		text += " ->." + dst
	}
	return text + ";", nil
}

// As returns a copy of the recursion labelled with the given name.
func (r *Recurse) As(label string) *Recurse {
	c := *r
	c.directives = c.directives.withLabel(label)
	return &c
}

// Out returns a copy of the recursion with an output directive appended.
// See [Elements.Out].
func (r *Recurse) Out(options ...string) *Recurse {
	c := *r
	c.directives = c.directives.withOut(options)
	return &c
}

// placeholderPattern matches the {name} placeholders of a raw statement.
var placeholderPattern = regexp.MustCompile(`\{([^{}]*)\}`)

// RawStatement is a raw fragment of query text. Placeholders of the form
// {name} mark dependencies on other statements and are substituted with
// the variable their result is bound to; the reserved {:out_var}
// placeholder marks where the fragment's own result variable goes.
//
// The refs map is retained by the statement, keyed by placeholder name.
type RawStatement struct {
	directives
	template     string
	refs         map[string]Statement
	placeholders []string
}

var _ compile.Fragment = (*RawStatement)(nil)

// Raw returns a raw statement for the given fragment of query text.
func Raw(template string, refs map[string]Statement) *RawStatement {
	r := &RawStatement{template: template, refs: refs}
	for _, m := range placeholderPattern.FindAllStringSubmatch(template, -1) {
		if m[1] != ":out_var" {
			r.placeholders = append(r.placeholders, m[1])
		}
	}
	return r
}

// Refs returns the declared placeholder bindings.
func (r *RawStatement) Refs() map[string]Statement { return r.refs }

// Placeholders returns the placeholder names appearing in the fragment.
func (r *RawStatement) Placeholders() []string { return r.placeholders }

// Dependencies returns the referenced statements in placeholder-name
// order, which keeps traversal deterministic.
func (r *RawStatement) Dependencies() []Statement {
	names := maps.Keys(r.refs)
	slices.Sort(names)
	deps := make([]Statement, 0, len(names))
	for _, name := range names {
		deps = append(deps, r.refs[name])
	}
	return deps
}

// Render substitutes every placeholder with the variable bound to the
// referenced statement, and {:out_var} with dst or the default set.
func (r *RawStatement) Render(env *compile.Env, dst string) (string, error) {
	text := r.template
	if strings.Contains(text, "{:out_var}") {
		name := dst
		if name == "" {
			name = "_"
		}
		text = strings.ReplaceAll(text, "{:out_var}", name)
	} else if dst != "" {
		return "", &UnresolvedReferenceError{Statement: r, Placeholder: ":out_var"}
	}
	for placeholder, stmt := range r.refs {
		name, ok := env.Name(stmt)
		if !ok {
			return "", fmt.Errorf("internal error: raw statement dependency %q is not bound to a variable", placeholder)
		}
		text = strings.ReplaceAll(text, "{"+placeholder+"}", name)
	}
	return text, nil
}

// As returns a copy of the raw statement labelled with the given name.
func (r *RawStatement) As(label string) *RawStatement {
	c := *r
	c.directives = c.directives.withLabel(label)
	return &c
}

// Out returns a copy of the raw statement with an output directive
// appended. See [Elements.Out].
func (r *RawStatement) Out(options ...string) *RawStatement {
	c := *r
	c.directives = c.directives.withOut(options)
	return &c
}
