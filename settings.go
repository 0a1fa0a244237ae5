// Copyright 2025 Canonical Ltd.
// Licensed under Apache 2.0, see LICENCE file for details.

package overpassql

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Format is the global output format of a query.
type Format string

const (
	FormatJSON Format = "json"
	FormatXML  Format = "xml"
	FormatCSV  Format = "csv"
)

// NoTimeout disables the timeout setting of a query.
const NoTimeout = time.Duration(-1)

// Settings are the global settings of a query, compiled into the leading
// settings statement of the program. The zero value compiles to
// [out:json][timeout:25];.
type Settings struct {
	// Format is the output format. The default is json.
	Format Format
	// Timeout is the server-side timeout. The default is 25 seconds;
	// NoTimeout omits the setting.
	Timeout time.Duration
	// MaxSize is the maximum allowed response size in bytes. Zero omits
	// the setting.
	MaxSize int
	// BBox restricts the whole query to a bounding box.
	BBox *BoundingBoxFilter
	// Date runs the query against the database state at that date.
	Date time.Time
	// Diff compares the database state at the first date against the
	// second, or against the current state if only one date is given.
	Diff []time.Time
	// CSVFields lists the fields of a csv output. Required when Format is
	// FormatCSV.
	CSVFields []string
	// CSVNoHeader omits the csv header line.
	CSVNoHeader bool
	// CSVSeparator overrides the csv field separator.
	CSVSeparator string
}

// compile renders the settings statement.
func (s *Settings) compile() (string, error) {
	var sb strings.Builder
	add := func(setting string) {
		sb.WriteString("[" + setting + "]")
	}

	format := s.Format
	if format == "" {
		format = FormatJSON
	}
	switch format {
	case FormatCSV:
		if len(s.CSVFields) == 0 {
			return "", fmt.Errorf("csv output needs at least one field")
		}
		fields := make([]string, len(s.CSVFields))
		for i, f := range s.CSVFields {
			fields[i] = `"` + strings.Trim(f, ` "'`) + `"`
		}
		header := strings.Join(fields, ",")
		if s.CSVNoHeader {
			header += "; false"
		} else {
			header += "; true"
		}
		if s.CSVSeparator != "" {
			header += "; " + s.CSVSeparator
		}
		add("out:csv(" + header + ")")
	case FormatJSON, FormatXML:
		add("out:" + string(format))
	default:
		return "", fmt.Errorf("unknown output format %q", format)
	}

	switch {
	case s.Timeout == NoTimeout:
	case s.Timeout < 0:
		return "", fmt.Errorf("timeout cannot be negative")
	default:
		timeout := s.Timeout
		if timeout == 0 {
			timeout = 25 * time.Second
		}
		add("timeout:" + strconv.Itoa(int(timeout/time.Second)))
	}

	if s.MaxSize > 0 {
		add("maxsize:" + strconv.Itoa(s.MaxSize))
	}
	if s.BBox != nil {
		add("bbox:" + s.BBox.coords())
	}
	if !s.Date.IsZero() {
		add(`date:"` + formatDate(s.Date) + `"`)
	}
	switch len(s.Diff) {
	case 0:
	case 1:
		add(`diff:"` + formatDate(s.Diff[0]) + `"`)
	case 2:
		add(`diff:"` + formatDate(s.Diff[0]) + `","` + formatDate(s.Diff[1]) + `"`)
	default:
		return "", fmt.Errorf("diff takes at most two dates")
	}

	return sb.String() + ";", nil
}
