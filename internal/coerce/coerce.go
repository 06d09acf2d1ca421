// Package coerce normalizes cell values on their way into and out of
// generated tables.
package coerce

import (
	"strconv"
	"strings"
)

// IsEmployeeIDColumn reports whether a column label is the employee-ID
// column. Matching is case-insensitive and trimmed, and covers both the
// original spreadsheet label and its sanitized identifier form.
func IsEmployeeIDColumn(label string) bool {
	switch strings.ToUpper(strings.TrimSpace(label)) {
	case "EMP ID", "EMP_ID":
		return true
	}
	return false
}

// NormalizeValue rewrites float-looking employee IDs as integer strings so
// that spreadsheet artifacts like 1.23E+08 do not corrupt identifier values.
// It is applied symmetrically on insert and on read, since the stored value
// is text either way. The rule is scoped to exactly the employee-ID label;
// generalizing it to other numeric columns is a product decision, not an
// implementation detail (see DESIGN.md).
func NormalizeValue(label, value string) string {
	if !IsEmployeeIDColumn(label) {
		return value
	}
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return value
	}
	f, err := strconv.ParseFloat(trimmed, 64)
	if err != nil {
		return value
	}
	return strconv.FormatFloat(f, 'f', 0, 64)
}
