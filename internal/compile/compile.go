// Copyright 2025 Canonical Ltd.
// Licensed under Apache 2.0, see LICENCE file for details.

// Package compile implements the query compilation engine: the dependency
// graph walk, variable binding assignment, statement ordering and
// deduplication, and the structural simplifications applied during code
// generation. It knows nothing about the syntax of any particular
// statement or filter kind beyond the rendering contracts declared in
// statement.go.
package compile

import (
	"strconv"
	"strings"
)

// Compile compiles the dependency graph below root into a query program.
// The output is deterministic for a given graph shape: the same graph
// compiles to byte-identical text on every call.
//
// Compile fails, returning no partial text, when the graph contains a
// dependency cycle, two statements collide on a label, or a raw fragment
// references a statement it does not declare.
func Compile(root Statement) (string, error) {
	g, err := resolve(root)
	if err != nil {
		return "", err
	}

	env := newEnv()
	simplify(g, env)
	plan := planStatements(g, env)
	assignNames(g, env, plan)

	var parts []string
	for _, s := range plan {
		name, _ := env.Name(s)
		text, err := s.Render(env, name)
		if err != nil {
			return "", err
		}
		if out := s.RenderOutput(name); out != "" {
			text += "\n" + out
		}
		parts = append(parts, text)
	}
	return strings.Join(parts, "\n"), nil
}

// planStatements produces the emission plan: the statements that must be
// emitted as their own program line, dependencies strictly before
// dependents, the root last. Statements consumed exactly once as a
// combination operand, unlabelled and without output directives, are left
// out of the plan and rendered inline by their consumer.
func planStatements(g *graph, env *Env) []Statement {
	var plan []Statement
	visited := map[Statement]bool{}

	var walk func(s Statement)
	walk = func(s Statement) {
		if visited[s] {
			return
		}
		visited[s] = true
		for _, dep := range env.dependenciesOf(s) {
			walk(dep)
		}
		if s == g.root || !canInline(g, s) {
			plan = append(plan, s)
		}
	}
	walk(g.root)
	return plan
}

// canInline reports whether the statement can be rendered inline inside
// its single consumer instead of being bound to a variable.
func canInline(g *graph, s Statement) bool {
	info := g.infoFor(s)
	return !info.noInline && info.refs <= 1 && s.Label() == "" && !s.HasOutput()
}

// assignNames binds every emitted statement to a variable, in emission
// order. Labelled statements use their label; the rest draw generated
// names from a per-compilation counter, skipping any value already taken
// by a user label. The root is bound only when the user labelled it, its
// result otherwise goes to the default set.
func assignNames(g *graph, env *Env, plan []Statement) {
	next := 0
	for _, s := range plan {
		name := s.Label()
		if name == "" {
			if s == g.root {
				continue
			}
			for {
				name = "set_" + strconv.Itoa(next)
				next++
				if _, taken := g.labels[name]; !taken {
					break
				}
			}
		}
		env.names[s] = name
	}
}
