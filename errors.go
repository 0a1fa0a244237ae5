// Copyright 2025 Canonical Ltd.
// Licensed under Apache 2.0, see LICENCE file for details.

package overpassql

import "github.com/canonical/overpassql/internal/compile"

// CyclicDependencyError is returned by [Build] when a statement
// transitively depends on its own result.
type CyclicDependencyError = compile.CyclicDependencyError

// LabelCollisionError is returned by [Build] when two distinct statements
// carry the same label, or a label collides with the reserved
// generated-name pattern.
type LabelCollisionError = compile.LabelCollisionError

// UnresolvedReferenceError is returned by [Build] when a raw statement
// placeholder has no matching referenced statement.
type UnresolvedReferenceError = compile.UnresolvedReferenceError
