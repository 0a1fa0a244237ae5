// Copyright 2025 Canonical Ltd.
// Licensed under Apache 2.0, see LICENCE file for details.

package compile

import "fmt"

// CyclicDependencyError is returned when a statement transitively depends
// on its own result. A cyclic graph is not compilable; no partial query
// text is produced.
type CyclicDependencyError struct {
	// Statement is the statement found on the traversal stack twice.
	Statement Statement
}

func (e *CyclicDependencyError) Error() string {
	return "circular dependency: statement depends on its own result"
}

// LabelCollisionError is returned when two distinct statements carry the
// same user-supplied label, or a label collides with the reserved
// generated-name pattern "set_N".
type LabelCollisionError struct {
	// Label is the offending label.
	Label string
	// Reserved is true if the label collides with the generated-name
	// pattern rather than with another statement's label.
	Reserved bool
}

func (e *LabelCollisionError) Error() string {
	if e.Reserved {
		return fmt.Sprintf("label %q collides with the reserved generated-name pattern", e.Label)
	}
	return fmt.Sprintf("label %q is used by two different statements", e.Label)
}

// UnresolvedReferenceError is returned when a raw statement placeholder
// has no matching referenced statement, or a raw statement cannot store
// its result where one is required.
type UnresolvedReferenceError struct {
	// Statement is the raw statement at fault.
	Statement Statement
	// Placeholder is the offending placeholder name. It is empty for an
	// unnamed placeholder and ":out_var" when the reserved output
	// placeholder is missing but needed.
	Placeholder string
}

func (e *UnresolvedReferenceError) Error() string {
	switch e.Placeholder {
	case "":
		return "raw statement contains an unnamed placeholder"
	case ":out_var":
		return "raw statement result must be stored in a variable but the {:out_var} placeholder is missing"
	default:
		return fmt.Sprintf("raw statement placeholder {%s} has no matching statement", e.Placeholder)
	}
}
