// Copyright 2025 Canonical Ltd.
// Licensed under Apache 2.0, see LICENCE file for details.

package compile

import (
	"fmt"
	"regexp"
)

// generatedName matches the names the compiler reserves for itself.
var generatedName = regexp.MustCompile(`^set_[0-9]+$`)

// stmtInfo holds the bookkeeping derived for one statement during graph
// resolution.
type stmtInfo struct {
	// refs is the number of edges referencing the statement's result.
	refs int
	// noInline is set when at least one consumer references the result by
	// variable name (filters, raw fragments, recursions), in which case
	// the statement must always be bound.
	noInline bool
}

// graph is the resolved dependency graph of one compilation. It is
// derived, read-only state, built fresh for every Compile call and
// discarded on return.
type graph struct {
	root Statement
	info map[Statement]*stmtInfo
	// postOrder lists every reachable statement with dependencies before
	// dependents, in first-seen depth-first order.
	postOrder []Statement
	// labels maps every user label to the statement carrying it.
	labels map[string]Statement
}

func (g *graph) infoFor(s Statement) *stmtInfo {
	info, ok := g.info[s]
	if !ok {
		info = &stmtInfo{}
		g.info[s] = info
	}
	return info
}

// resolve walks the dependency graph below root depth-first and records,
// per statement, its reference count and whether it must be bound. It
// fails on cycles, label collisions and malformed raw fragments before
// any query text is produced.
func resolve(root Statement) (*graph, error) {
	g := &graph{
		root:   root,
		info:   map[Statement]*stmtInfo{},
		labels: map[string]Statement{},
	}
	visited := map[Statement]bool{}
	onStack := map[Statement]bool{}

	var walk func(s Statement) error
	walk = func(s Statement) error {
		if onStack[s] {
			return &CyclicDependencyError{Statement: s}
		}
		if visited[s] {
			return nil
		}
		visited[s] = true
		onStack[s] = true

		if err := g.checkStatement(s); err != nil {
			return err
		}

		// Operands of a set combination may be inlined when used only
		// once; every other kind of consumer references its dependencies
		// by variable name.
		_, isCombination := s.(Combination)
		for _, dep := range s.Dependencies() {
			info := g.infoFor(dep)
			info.refs++
			if !isCombination {
				info.noInline = true
			}
			if err := walk(dep); err != nil {
				return err
			}
		}

		onStack[s] = false
		g.postOrder = append(g.postOrder, s)
		return nil
	}

	if err := walk(root); err != nil {
		return nil, err
	}
	return g, nil
}

// checkStatement validates the statement's label and, per kind, its
// configuration.
func (g *graph) checkStatement(s Statement) error {
	if label := s.Label(); label != "" {
		if generatedName.MatchString(label) {
			return &LabelCollisionError{Label: label, Reserved: true}
		}
		if other, ok := g.labels[label]; ok && other != s {
			return &LabelCollisionError{Label: label}
		}
		g.labels[label] = s
	}

	switch t := s.(type) {
	case Fragment:
		refs := t.Refs()
		for _, p := range t.Placeholders() {
			if p == "" {
				return &UnresolvedReferenceError{Statement: s}
			}
			if _, ok := refs[p]; !ok {
				return &UnresolvedReferenceError{Statement: s, Placeholder: p}
			}
		}
	case Selection:
		for _, f := range t.SelectionFilters() {
			if sf, ok := f.(SetFilter); ok && len(sf.Sets()) == 0 {
				return fmt.Errorf("cannot compile empty set intersection")
			}
		}
	case Combination:
		if len(t.Operands()) == 0 {
			return fmt.Errorf("cannot compile a set combination without operands")
		}
	}
	return nil
}
