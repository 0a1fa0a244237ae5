// Copyright 2025 Canonical Ltd.
// Licensed under Apache 2.0, see LICENCE file for details.

package overpassql

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/canonical/overpassql/internal/compile"
)

// Build compiles the dependency graph below the given statement into a
// query program, with the optional global settings prepended. A nil
// settings compiles the statement alone.
//
// Build is deterministic: the same statement graph compiles to
// byte-identical text on every call. It fails with a structural error —
// [CyclicDependencyError], [LabelCollisionError],
// [UnresolvedReferenceError] — rather than returning partial text.
//
// Compilation is pure: the statements are not modified and no state
// survives the call, so independent graphs may be built concurrently.
func Build(stmt Statement, settings *Settings) (string, error) {
	return BuildContext(context.Background(), stmt, settings)
}

// BuildContext is like [Build] and records the compilation as a span on
// the context's trace.
func BuildContext(ctx context.Context, stmt Statement, settings *Settings) (string, error) {
	_, span := otel.Tracer("overpassql").Start(ctx, "overpassql.build")
	defer span.End()

	query, err := compile.Compile(stmt)
	if err != nil {
		span.RecordError(err)
		return "", err
	}
	if settings != nil {
		header, err := settings.compile()
		if err != nil {
			span.RecordError(err)
			return "", err
		}
		query = header + "\n" + query
	}
	span.SetAttributes(attribute.Int("overpassql.query_bytes", len(query)))
	return query, nil
}

// MustBuild is the same as [Build] except that it panics on error.
func MustBuild(stmt Statement, settings *Settings) string {
	query, err := Build(stmt, settings)
	if err != nil {
		panic(err)
	}
	return query
}
