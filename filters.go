// Copyright 2025 Canonical Ltd.
// Licensed under Apache 2.0, see LICENCE file for details.

package overpassql

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/canonical/overpassql/internal/compile"
)

// dateFormat is the date layout the target language expects.
const dateFormat = "2006-01-02T15:04:05Z"

// formatFloat renders a coordinate or distance without a trailing
// fractional zero.
func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func formatDate(t time.Time) string {
	return t.UTC().Format(dateFormat)
}

// TagFilter filters elements on a tag comparison: presence or absence of
// a key, or an exact or regular-expression match on its value.
type TagFilter struct {
	comparison  string
	insensitive bool
}

var _ Filter = TagFilter{}

// Tag returns the filter ["key"="value"].
func Tag(key, value string) TagFilter {
	return TagFilter{comparison: `"` + key + `"="` + value + `"`}
}

// TagNot returns the filter ["key"!="value"].
func TagNot(key, value string) TagFilter {
	return TagFilter{comparison: `"` + key + `"!="` + value + `"`}
}

// TagRegex returns the filter ["key"~"pattern"].
func TagRegex(key, pattern string) TagFilter {
	return TagFilter{comparison: `"` + key + `"~"` + pattern + `"`}
}

// TagKeyRegex returns the filter [~"keyPattern"~"valuePattern"], matching
// both key and value as regular expressions.
func TagKeyRegex(keyPattern, valuePattern string) TagFilter {
	return TagFilter{comparison: `~"` + keyPattern + `"~"` + valuePattern + `"`}
}

// HasTag returns the filter ["key"], selecting elements carrying the key.
func HasTag(key string) TagFilter {
	return TagFilter{comparison: `"` + key + `"`}
}

// NoTag returns the filter [!"key"], selecting elements without the key.
func NoTag(key string) TagFilter {
	return TagFilter{comparison: `!"` + key + `"`}
}

// IgnoreCase returns a copy of the filter matching values
// case-insensitively.
func (t TagFilter) IgnoreCase() TagFilter {
	t.insensitive = true
	return t
}

// Dependencies implements [Filter].
func (t TagFilter) Dependencies() []Statement { return nil }

// Render implements [Filter].
func (t TagFilter) Render(env *compile.Env) (string, error) {
	if t.insensitive {
		return "[" + t.comparison + ",i]", nil
	}
	return "[" + t.comparison + "]", nil
}

// BoundingBoxFilter filters elements within a latitude/longitude bounding
// box.
type BoundingBoxFilter struct {
	South, West, North, East float64
}

var _ Filter = BoundingBoxFilter{}

// BoundingBox returns a bounding box filter. south and north are the
// minimum and maximum latitudes, west and east the minimum and maximum
// longitudes.
func BoundingBox(south, west, north, east float64) BoundingBoxFilter {
	return BoundingBoxFilter{South: south, West: west, North: north, East: east}
}

func (b BoundingBoxFilter) coords() string {
	return formatFloat(b.South) + "," + formatFloat(b.West) + "," +
		formatFloat(b.North) + "," + formatFloat(b.East)
}

// Dependencies implements [Filter].
func (b BoundingBoxFilter) Dependencies() []Statement { return nil }

// Render implements [Filter].
func (b BoundingBoxFilter) Render(env *compile.Env) (string, error) {
	return "(" + b.coords() + ")", nil
}

// IdsFilter filters elements by OSM id.
type IdsFilter struct {
	ids []int64
}

var _ Filter = IdsFilter{}

// Ids returns a filter selecting the elements with the given OSM ids.
func Ids(ids ...int64) IdsFilter { return IdsFilter{ids: ids} }

// Dependencies implements [Filter].
func (i IdsFilter) Dependencies() []Statement { return nil }

// Render implements [Filter].
func (i IdsFilter) Render(env *compile.Env) (string, error) {
	switch len(i.ids) {
	case 0:
		return "", nil
	case 1:
		return "(" + strconv.FormatInt(i.ids[0], 10) + ")", nil
	default:
		parts := make([]string, len(i.ids))
		for n, id := range i.ids {
			parts[n] = strconv.FormatInt(id, 10)
		}
		return "(id:" + strings.Join(parts, ",") + ")", nil
	}
}

// SetIntersection restricts a selection to the members of other sets. It
// is the filter the chaining methods use to build on a previous
// statement, and the point where the compiler merges filter chains.
type SetIntersection struct {
	sets []Statement
}

var _ compile.SetFilter = SetIntersection{}

// Intersect returns a filter restricting the selection to elements
// present in all the given sets.
func Intersect(sets ...Statement) SetIntersection {
	return SetIntersection{sets: sets}
}

// Sets implements [compile.SetFilter].
func (s SetIntersection) Sets() []Statement { return s.sets }

// Restrict implements [compile.SetFilter].
func (s SetIntersection) Restrict(sets []Statement) Filter {
	return SetIntersection{sets: sets}
}

// Dependencies implements [Filter].
func (s SetIntersection) Dependencies() []Statement { return s.sets }

// Render implements [Filter].
func (s SetIntersection) Render(env *compile.Env) (string, error) {
	if len(s.sets) == 0 {
		return "", fmt.Errorf("cannot compile empty set intersection")
	}
	names := make([]string, len(s.sets))
	for i, set := range s.sets {
		name, ok := env.Name(set)
		if !ok {
			return "", fmt.Errorf("internal error: intersected set is not bound to a variable")
		}
		names[i] = name
	}
	return "." + strings.Join(names, "."), nil
}

// NewerFilter filters elements changed since a date.
type NewerFilter struct {
	date time.Time
}

var _ Filter = NewerFilter{}

// Newer returns a filter selecting elements changed since the given date.
func Newer(date time.Time) NewerFilter { return NewerFilter{date: date} }

// Dependencies implements [Filter].
func (n NewerFilter) Dependencies() []Statement { return nil }

// Render implements [Filter].
func (n NewerFilter) Render(env *compile.Env) (string, error) {
	return `(newer:"` + formatDate(n.date) + `")`, nil
}

// ChangedFilter filters elements changed within a date range.
type ChangedFilter struct {
	lower, upper time.Time
}

var _ Filter = ChangedFilter{}

// ChangedSince returns a filter selecting elements changed between the
// given date and the front date of the database.
func ChangedSince(lower time.Time) ChangedFilter {
	return ChangedFilter{lower: lower}
}

// ChangedBetween returns a filter selecting elements changed between the
// two given dates.
func ChangedBetween(lower, upper time.Time) ChangedFilter {
	return ChangedFilter{lower: lower, upper: upper}
}

// Dependencies implements [Filter].
func (c ChangedFilter) Dependencies() []Statement { return nil }

// Render implements [Filter].
func (c ChangedFilter) Render(env *compile.Env) (string, error) {
	if c.upper.IsZero() {
		return `(changed:"` + formatDate(c.lower) + `")`, nil
	}
	return `(changed:"` + formatDate(c.lower) + `","` + formatDate(c.upper) + `")`, nil
}

// UserFilter filters elements last edited by given users, by name or by
// user id.
type UserFilter struct {
	names []string
	ids   []int64
}

var _ Filter = UserFilter{}

// User returns a filter selecting elements last edited by any of the
// given user names.
func User(names ...string) UserFilter { return UserFilter{names: names} }

// UserID returns a filter selecting elements last edited by any of the
// given user ids.
func UserID(ids ...int64) UserFilter { return UserFilter{ids: ids} }

// Dependencies implements [Filter].
func (u UserFilter) Dependencies() []Statement { return nil }

// Render implements [Filter].
func (u UserFilter) Render(env *compile.Env) (string, error) {
	if len(u.names) == 0 && len(u.ids) == 0 {
		return "", fmt.Errorf("user filter must list at least one user")
	}
	var sb strings.Builder
	if len(u.ids) > 0 {
		parts := make([]string, len(u.ids))
		for i, id := range u.ids {
			parts[i] = strconv.FormatInt(id, 10)
		}
		sb.WriteString("(uid:" + strings.Join(parts, ",") + ")")
	}
	if len(u.names) > 0 {
		parts := make([]string, len(u.names))
		for i, name := range u.names {
			parts[i] = `"` + name + `"`
		}
		sb.WriteString("(user:" + strings.Join(parts, ",") + ")")
	}
	return sb.String(), nil
}

// AreaFilter filters elements within the results of an area statement.
type AreaFilter struct {
	area Statement
}

var _ Filter = AreaFilter{}

// InArea returns a filter selecting the elements laying within the given
// areas.
func InArea(area Statement) AreaFilter { return AreaFilter{area: area} }

// Dependencies implements [Filter].
func (a AreaFilter) Dependencies() []Statement { return []Statement{a.area} }

// Render implements [Filter].
func (a AreaFilter) Render(env *compile.Env) (string, error) {
	name, ok := env.Name(a.area)
	if !ok {
		return "", fmt.Errorf("internal error: area input is not bound to a variable")
	}
	return "(area." + name + ")", nil
}

// PivotFilter filters elements that are part of the outline of an area.
type PivotFilter struct {
	area Statement
}

var _ Filter = PivotFilter{}

// Pivot returns a filter selecting the elements that are part of the
// outline of the given areas.
func Pivot(area Statement) PivotFilter { return PivotFilter{area: area} }

// Dependencies implements [Filter].
func (p PivotFilter) Dependencies() []Statement { return []Statement{p.area} }

// Render implements [Filter].
func (p PivotFilter) Render(env *compile.Env) (string, error) {
	name, ok := env.Name(p.area)
	if !ok {
		return "", fmt.Errorf("internal error: pivot input is not bound to a variable")
	}
	return "(pivot." + name + ")", nil
}

// AroundFilter filters elements within a radius of the elements of
// another set, or of a list of coordinates.
type AroundFilter struct {
	radius     float64
	set        Statement
	lats, lons []float64
}

var _ Filter = AroundFilter{}

// Around returns a filter selecting elements within radius meters of the
// elements of set.
func Around(radius float64, set Statement) AroundFilter {
	return AroundFilter{radius: radius, set: set}
}

// AroundPoints returns a filter selecting elements within radius meters
// of any of the given points.
func AroundPoints(radius float64, lats, lons []float64) AroundFilter {
	return AroundFilter{radius: radius, lats: lats, lons: lons}
}

// Dependencies implements [Filter].
func (a AroundFilter) Dependencies() []Statement {
	if a.set == nil {
		return nil
	}
	return []Statement{a.set}
}

// Render implements [Filter].
func (a AroundFilter) Render(env *compile.Env) (string, error) {
	if a.set != nil && (a.lats != nil || a.lons != nil) {
		return "", fmt.Errorf("around filter cannot use both an input set and coordinates")
	}
	if a.set != nil {
		name, ok := env.Name(a.set)
		if !ok {
			return "", fmt.Errorf("internal error: around input is not bound to a variable")
		}
		return "(around." + name + ":" + formatFloat(a.radius) + ")", nil
	}
	if len(a.lats) == 0 || len(a.lats) != len(a.lons) {
		return "", fmt.Errorf("around filter needs an input set or matching coordinate lists")
	}
	parts := make([]string, 0, 2*len(a.lats))
	for i := range a.lats {
		parts = append(parts, formatFloat(a.lats[i]), formatFloat(a.lons[i]))
	}
	return "(around:" + formatFloat(a.radius) + "," + strings.Join(parts, ",") + ")", nil
}

// PolygonFilter filters elements inside a polygon.
type PolygonFilter struct {
	lats, lons []float64
}

var _ Filter = PolygonFilter{}

// Polygon returns a filter selecting the elements inside the polygon
// described by the given points.
func Polygon(lats, lons []float64) PolygonFilter {
	return PolygonFilter{lats: lats, lons: lons}
}

// Dependencies implements [Filter].
func (p PolygonFilter) Dependencies() []Statement { return nil }

// Render implements [Filter].
func (p PolygonFilter) Render(env *compile.Env) (string, error) {
	if len(p.lats) == 0 || len(p.lats) != len(p.lons) {
		return "", fmt.Errorf("polygon filter needs matching coordinate lists")
	}
	parts := make([]string, 0, 2*len(p.lats))
	for i := range p.lats {
		parts = append(parts, formatFloat(p.lats[i]), formatFloat(p.lons[i]))
	}
	return `(poly:"` + strings.Join(parts, " ") + `")`, nil
}
