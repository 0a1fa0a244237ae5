/*
Package overpassql builds Overpass QL queries from composable Go values and
compiles them to a single query program.

Queries over the OpenStreetMap element database are assembled as a graph of
statements — element selections, unions, differences, recursions, raw
fragments — with filters attached to the selections.
The compiler walks the dependency graph of the root statement, orders every
statement after its dependencies, binds shared results to variables, merges
chained filters and flattens nested unions, and emits the minimal textual
program with the same semantics.

# Basics

A selection is built from a constructor and a list of filters, and refined
through chaining methods.
Every chaining method returns a new statement, the receiver is never
modified, so intermediate statements can be shared freely:

	all := overpassql.Nodes(overpassql.BoundingBox(50.6, 7.0, 50.8, 7.3))
	cinemas := all.Where(overpassql.Tag("amenity", "cinema"))
	rest := overpassql.Difference(all, cinemas)

	query, err := overpassql.Build(rest, nil)

Chains of filters over the same element kind compile to a single statement:

	overpassql.Nodes().
		Where(overpassql.Tag("amenity", "bar")).
		Where(overpassql.Tag("tourism", "yes"))

compiles to

	node["amenity"="bar"]["tourism"="yes"];

A statement used by more than one consumer is compiled exactly once, bound
to a variable (set_0, set_1, ... or the name given with As) and referenced
by that variable everywhere else.

# Results

Output directives are attached with Out and emitted after the statement
they belong to.
Global settings — output format, timeout, bounding box, attic dates — are
passed to [Build] as a [Settings] value and compiled into the leading
settings statement.

# Failure

Build never returns partial text.
A dependency cycle, a label used by two statements, or a raw fragment
placeholder without a matching statement abort the compilation with
[CyclicDependencyError], [LabelCollisionError] or
[UnresolvedReferenceError].
*/
package overpassql
