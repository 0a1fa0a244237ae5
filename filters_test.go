// Copyright 2025 Canonical Ltd.
// Licensed under Apache 2.0, see LICENCE file for details.

package overpassql

import (
	"time"

	. "gopkg.in/check.v1"
)

type FiltersSuite struct{}

var _ = Suite(&FiltersSuite{})

var (
	filterDate  = time.Date(2023, 4, 25, 10, 30, 0, 0, time.UTC)
	filterDate2 = time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
)

var filterTests = []struct {
	summary string
	filter  Filter
	text    string
}{{
	summary: "tag equality",
	filter:  Tag("amenity", "bar"),
	text:    `["amenity"="bar"]`,
}, {
	summary: "tag inequality",
	filter:  TagNot("amenity", "bar"),
	text:    `["amenity"!="bar"]`,
}, {
	summary: "tag value regex",
	filter:  TagRegex("name", "^The"),
	text:    `["name"~"^The"]`,
}, {
	summary: "tag key and value regex",
	filter:  TagKeyRegex("^addr:", "."),
	text:    `[~"^addr:"~"."]`,
}, {
	summary: "tag presence",
	filter:  HasTag("name"),
	text:    `["name"]`,
}, {
	summary: "tag absence",
	filter:  NoTag("name"),
	text:    `[!"name"]`,
}, {
	summary: "case-insensitive tag match",
	filter:  Tag("name", "dublin").IgnoreCase(),
	text:    `["name"="dublin",i]`,
}, {
	summary: "bounding box drops trailing fractional zeros",
	filter:  BoundingBox(50.6, 7.0, 50.8, 7.3),
	text:    `(50.6,7,50.8,7.3)`,
}, {
	summary: "no ids",
	filter:  Ids(),
	text:    ``,
}, {
	summary: "single id",
	filter:  Ids(42),
	text:    `(42)`,
}, {
	summary: "several ids",
	filter:  Ids(1, 2, 3),
	text:    `(id:1,2,3)`,
}, {
	summary: "newer than a date",
	filter:  Newer(filterDate),
	text:    `(newer:"2023-04-25T10:30:00Z")`,
}, {
	summary: "changed since a date",
	filter:  ChangedSince(filterDate),
	text:    `(changed:"2023-04-25T10:30:00Z")`,
}, {
	summary: "changed between two dates",
	filter:  ChangedBetween(filterDate, filterDate2),
	text:    `(changed:"2023-04-25T10:30:00Z","2024-01-02T03:04:05Z")`,
}, {
	summary: "edited by user names",
	filter:  User("alice", "bob"),
	text:    `(user:"alice","bob")`,
}, {
	summary: "edited by user ids",
	filter:  UserID(7, 8),
	text:    `(uid:7,8)`,
}, {
	summary: "around coordinates",
	filter:  AroundPoints(30, []float64{50.7, 50.8}, []float64{7.1, 7.2}),
	text:    `(around:30,50.7,7.1,50.8,7.2)`,
}, {
	summary: "polygon",
	filter:  Polygon([]float64{50.6, 50.7}, []float64{7.1, 7.2}),
	text:    `(poly:"50.6 7.1 50.7 7.2")`,
}}

func (s *FiltersSuite) TestRender(c *C) {
	for _, t := range filterTests {
		text, err := t.filter.Render(nil)
		c.Assert(err, IsNil, Commentf("test %q failed", t.summary))
		c.Assert(text, Equals, t.text, Commentf("test %q failed", t.summary))
	}
}

var filterErrorTests = []struct {
	summary string
	filter  Filter
	err     string
}{{
	summary: "user filter without users",
	filter:  UserFilter{},
	err:     "user filter must list at least one user",
}, {
	summary: "around with mismatched coordinate lists",
	filter:  AroundPoints(30, []float64{50.7}, []float64{7.1, 7.2}),
	err:     "around filter needs an input set or matching coordinate lists",
}, {
	summary: "around without input",
	filter:  AroundFilter{radius: 30},
	err:     "around filter needs an input set or matching coordinate lists",
}, {
	summary: "around with both input set and coordinates",
	filter:  AroundFilter{radius: 30, set: Nodes(), lats: []float64{1}, lons: []float64{2}},
	err:     "around filter cannot use both an input set and coordinates",
}, {
	summary: "polygon with mismatched coordinate lists",
	filter:  Polygon([]float64{50.6}, nil),
	err:     "polygon filter needs matching coordinate lists",
}}

func (s *FiltersSuite) TestRenderErrors(c *C) {
	for _, t := range filterErrorTests {
		_, err := t.filter.Render(nil)
		c.Assert(err, ErrorMatches, t.err, Commentf("test %q failed", t.summary))
	}
}

func (s *FiltersSuite) TestIgnoreCaseCopies(c *C) {
	base := Tag("name", "dublin")
	_ = base.IgnoreCase()
	text, err := base.Render(nil)
	c.Assert(err, IsNil)
	c.Assert(text, Equals, `["name"="dublin"]`)
}
