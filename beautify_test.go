// Copyright 2025 Canonical Ltd.
// Licensed under Apache 2.0, see LICENCE file for details.

package overpassql_test

import (
	. "gopkg.in/check.v1"

	"github.com/canonical/overpassql"
)

type BeautifySuite struct{}

var _ = Suite(&BeautifySuite{})

var beautifyTests = []struct {
	summary string
	query   string
	want    string
}{{
	summary: "plain statement is untouched",
	query:   `node["amenity"="bar"];`,
	want:    `node["amenity"="bar"];`,
}, {
	summary: "filter parentheses are untouched",
	query:   "node(1)->.set_0;\n.set_0 out body;",
	want:    "node(1)->.set_0;\n.set_0 out body;",
}, {
	summary: "union group is indented",
	query:   `(way(42); node(42););`,
	want: `(
  way(42);
  node(42);
);`,
}, {
	summary: "nested groups indent per level",
	query:   `((node(128); .set_0;); - (.set_0; node(id:16,32);););`,
	want: `(
  (
    node(128);
    .set_0;
  );
  - (
    .set_0;
    node(id:16,32);
  );
);`,
}, {
	summary: "quoted text is untouched",
	query:   `node["name"="Foo (Bar)"];`,
	want:    `node["name"="Foo (Bar)"];`,
}, {
	summary: "quoted coordinates keep their spaces",
	query:   `node(poly:"50.6 7.1 50.7 7.2");`,
	want:    `node(poly:"50.6 7.1 50.7 7.2");`,
}}

func (s *BeautifySuite) TestBeautify(c *C) {
	for _, t := range beautifyTests {
		c.Assert(overpassql.Beautify(t.query), Equals, t.want,
			Commentf("test %q failed", t.summary))
	}
}

func (s *BeautifySuite) TestBeautifyIsIdempotent(c *C) {
	for _, t := range beautifyTests {
		once := overpassql.Beautify(t.query)
		c.Assert(overpassql.Beautify(once), Equals, once,
			Commentf("test %q failed", t.summary))
	}
}
