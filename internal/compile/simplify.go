// Copyright 2025 Canonical Ltd.
// Licensed under Apache 2.0, see LICENCE file for details.

package compile

// simplify rewrites the resolved graph before emission. Two independent
// structural rewrites are applied, both recorded as overlays in the
// environment so that the input statements are never mutated:
//
//   - filter-chain merging: a selection restricted to a single-use
//     predecessor of the same element kind absorbs the predecessor's
//     filters instead of referencing it through a variable;
//   - union flattening: a union whose operand is a single-use union is
//     rewritten with the inner operands spliced in place, yielding one
//     flat statement instead of nested groups.
//
// Statements are processed dependencies-first so that rewrites compose
// transitively: an arbitrarily long chain collapses into one selection
// and arbitrarily nested unions into one flat union.
func simplify(g *graph, env *Env) {
	for _, s := range g.postOrder {
		switch t := s.(type) {
		case Selection:
			if filters, changed := mergeFilters(g, env, t); changed {
				env.filters[t] = filters
			}
		case Combination:
			if !t.Flattenable() {
				continue
			}
			if operands, changed := flattenOperands(g, env, t); changed {
				env.operands[t] = operands
			}
		}
	}
}

// mergeFilters computes the merged filter chain of sel. Every set filter
// whose referenced sets can all be absorbed is replaced by the filters of
// those sets, in order, at the same position in the chain; sets that
// cannot be absorbed stay behind in a restricted set filter.
func mergeFilters(g *graph, env *Env, sel Selection) ([]Filter, bool) {
	var merged []Filter
	changed := false
	for _, f := range sel.SelectionFilters() {
		sf, ok := f.(SetFilter)
		if !ok {
			merged = append(merged, f)
			continue
		}
		var locked []Statement
		for _, set := range sf.Sets() {
			if pred, ok := mergeable(g, sel, set); ok {
				merged = append(merged, env.FiltersOf(pred)...)
				changed = true
			} else {
				locked = append(locked, set)
			}
		}
		switch {
		case len(locked) == len(sf.Sets()):
			merged = append(merged, f)
		case len(locked) > 0:
			merged = append(merged, sf.Restrict(locked))
		}
	}
	return merged, changed
}

// mergeable reports whether set's filters can be absorbed into sel.
// An element-kind mismatch is the only hard blocker; sharing, a label or
// an output directive keep the predecessor as a separate bound statement.
func mergeable(g *graph, sel Selection, set Statement) (Selection, bool) {
	pred, ok := set.(Selection)
	if !ok || pred.ElementKind() != sel.ElementKind() {
		return nil, false
	}
	if g.infoFor(set).refs > 1 || set.Label() != "" || set.HasOutput() {
		return nil, false
	}
	return pred, true
}

// flattenOperands computes the flattened operand list of a union,
// splicing the effective operands of every single-use nested union in
// place. Operand order is preserved.
func flattenOperands(g *graph, env *Env, c Combination) ([]Statement, bool) {
	var flat []Statement
	changed := false
	for _, op := range c.Operands() {
		inner, ok := op.(Combination)
		if ok && inner.Flattenable() && g.infoFor(op).refs <= 1 && op.Label() == "" && !op.HasOutput() {
			flat = append(flat, env.OperandsOf(inner)...)
			changed = true
		} else {
			flat = append(flat, op)
		}
	}
	return flat, changed
}
