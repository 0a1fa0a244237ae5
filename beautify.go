// Copyright 2025 Canonical Ltd.
// Licensed under Apache 2.0, see LICENCE file for details.

package overpassql

import "strings"

// Beautify reformats a compiled query with one statement per line and
// group contents indented. The result is equivalent to the input, only
// whitespace changes, and reformatting an already beautified query is a
// no-op.
//
// A parenthesis opens a group when it starts a statement; parentheses
// inside a statement (filters, recursion inputs) and anything inside
// quoted strings are left untouched.
func Beautify(query string) string {
	var sb strings.Builder
	indent := 0
	inQuote := false
	// groups records, for every open parenthesis, whether it is a group.
	var groups []bool
	prev := byte(0)

	// Line breaks are written lazily so that existing indentation can be
	// absorbed and group delimiters never produce blank lines.
	pending := false
	flush := func() {
		if !pending {
			return
		}
		pending = false
		sb.WriteByte('\n')
		if indent > 0 {
			sb.WriteString(strings.Repeat("  ", indent))
		}
	}

	for i := 0; i < len(query); i++ {
		ch := query[i]
		if inQuote {
			sb.WriteByte(ch)
			inQuote = ch != '"'
			prev = ch
			continue
		}
		switch ch {
		case '"':
			flush()
			sb.WriteByte(ch)
			inQuote = true
		case '(':
			group := prev == 0 || prev == '\n' || prev == ' ' || prev == '('
			groups = append(groups, group)
			flush()
			sb.WriteByte('(')
			if group {
				indent++
				pending = true
			}
		case ')':
			group := false
			if n := len(groups); n > 0 {
				group = groups[n-1]
				groups = groups[:n-1]
			}
			if group {
				indent--
				pending = true
			}
			flush()
			sb.WriteByte(')')
		case ' ':
			switch {
			case prev == ';' && len(groups) > 0:
				// Statements inside a group are separated by "; ".
				pending = true
			case pending:
				// Existing indentation, replaced on flush.
			default:
				sb.WriteByte(' ')
			}
		case '\n':
			pending = true
		default:
			flush()
			sb.WriteByte(ch)
		}
		prev = ch
	}
	return sb.String()
}
