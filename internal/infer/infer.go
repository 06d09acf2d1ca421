// Package infer derives column definitions from sampled upload rows.
package infer

import (
	"strconv"
	"strings"
	"time"

	"github.com/dochub/dochub/internal/schema"
)

// dateLayouts are tried in order when testing whether a value is a date/time.
var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	time.RFC3339,
	"01/02/2006",
	"02-Jan-2006",
}

// Columns infers one column definition per header label, in header order.
// Sample values are collected from every row; a label with no non-empty
// samples defaults to text at the default width. An empty header yields an
// empty column list, which callers must treat as "nothing to create".
func Columns(header []string, rows []map[string]string) []schema.ColumnDefinition {
	cols := make([]schema.ColumnDefinition, 0, len(header))
	for _, label := range header {
		samples := collectSamples(label, rows)
		cols = append(cols, schema.ColumnDefinition{
			ColumnName: SanitizeIdent(strings.TrimSpace(label)),
			DataType:   inferType(samples),
			MaxLength:  inferWidth(samples),
			IsNullable: true,
		})
	}
	return cols
}

// collectSamples gathers non-empty values for a label across all rows.
// Lookup is by exact label first, then by trimmed-name equality, since
// spreadsheet parses can carry the same logical column with incidental
// whitespace differences.
func collectSamples(label string, rows []map[string]string) []string {
	trimmed := strings.TrimSpace(label)
	var samples []string
	for _, row := range rows {
		v, ok := row[label]
		if !ok {
			for k, rv := range row {
				if strings.TrimSpace(k) == trimmed {
					v = rv
					ok = true
					break
				}
			}
		}
		if ok && strings.TrimSpace(v) != "" {
			samples = append(samples, v)
		}
	}
	return samples
}

// inferType tests predicates in fixed priority order:
// int > decimal > datetime > bit > text.
func inferType(samples []string) string {
	if len(samples) == 0 {
		return schema.TypeText
	}
	switch {
	case allMatch(samples, isInt):
		return schema.TypeInt
	case allMatch(samples, isDecimal):
		return schema.TypeDecimal
	case allMatch(samples, isDatetime):
		return schema.TypeDatetime
	case allMatch(samples, isBool):
		return schema.TypeBit
	default:
		return schema.TypeText
	}
}

// inferWidth returns max(longest sample, 50), or 255 with no samples.
func inferWidth(samples []string) int {
	if len(samples) == 0 {
		return schema.DefaultColumnWidth
	}
	width := schema.MinColumnWidth
	for _, s := range samples {
		if len(s) > width {
			width = len(s)
		}
	}
	return width
}

func allMatch(samples []string, pred func(string) bool) bool {
	for _, s := range samples {
		if !pred(strings.TrimSpace(s)) {
			return false
		}
	}
	return true
}

func isInt(s string) bool {
	_, err := strconv.ParseInt(s, 10, 64)
	return err == nil
}

func isDecimal(s string) bool {
	_, err := strconv.ParseFloat(s, 64)
	return err == nil
}

func isDatetime(s string) bool {
	for _, layout := range dateLayouts {
		if _, err := time.Parse(layout, s); err == nil {
			return true
		}
	}
	return false
}

func isBool(s string) bool {
	switch strings.ToLower(s) {
	case "true", "false":
		return true
	}
	return false
}

// SanitizeIdent replaces any character outside [A-Za-z0-9_] with an
// underscore and prefixes an underscore when the result starts with a digit.
// Sanitizing is idempotent.
func SanitizeIdent(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 1)
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	out := b.String()
	if out != "" && out[0] >= '0' && out[0] <= '9' {
		out = "_" + out
	}
	return out
}
