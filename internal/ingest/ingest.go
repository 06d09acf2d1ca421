// Package ingest parses uploaded rosters into the label→value rows the
// table engine consumes. Labels are kept verbatim (untrimmed); the loader's
// trimmed-name reconciliation handles incidental whitespace downstream.
package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
)

// Upload is one parsed roster: the header in original order plus one
// label→value map per data row.
type Upload struct {
	Header []string
	Rows   []map[string]string
}

// ParseCSV reads a roster from CSV. The first record is the header. Records
// shorter than the header leave the trailing labels absent from that row's
// map, so those cells load as NULL. Fully blank records are skipped.
func ParseCSV(r io.Reader) (*Upload, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = false

	header, err := cr.Read()
	if err == io.EOF {
		return &Upload{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}
	if err := checkHeader(header); err != nil {
		return nil, err
	}

	var rows []map[string]string
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading row %d: %w", len(rows)+1, err)
		}
		if blank(record) {
			continue
		}
		row := make(map[string]string, len(header))
		for i, label := range header {
			if i < len(record) {
				row[label] = record[i]
			}
		}
		rows = append(rows, row)
	}

	return &Upload{Header: header, Rows: rows}, nil
}

// checkHeader rejects empty and duplicate labels; two labels that collide
// after trimming would map onto one logical column and silently shadow each
// other in every row.
func checkHeader(header []string) error {
	seen := make(map[string]int, len(header))
	for i, label := range header {
		trimmed := strings.TrimSpace(label)
		if trimmed == "" {
			return fmt.Errorf("header column %d is empty", i+1)
		}
		if prev, ok := seen[trimmed]; ok {
			return fmt.Errorf("duplicate header label %q (columns %d and %d)", trimmed, prev+1, i+1)
		}
		seen[trimmed] = i
	}
	return nil
}

func blank(record []string) bool {
	for _, v := range record {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
