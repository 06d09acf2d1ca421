package infer

import (
	"testing"

	"github.com/dochub/dochub/internal/schema"
)

func TestSanitizeIdent(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"EMP ID", "EMP_ID"},
		{"EMP_ID", "EMP_ID"},
		{"Name (Full)", "Name__Full_"},
		{"2024 Salary", "_2024_Salary"},
		{"CTC", "CTC"},
		{"a-b.c", "a_b_c"},
		{"", ""},
	}
	for _, c := range cases {
		if got := SanitizeIdent(c.in); got != c.want {
			t.Errorf("SanitizeIdent(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestSanitizeIdentIdempotent(t *testing.T) {
	inputs := []string{"EMP ID", "2024 Salary", "weird!!chars??", "_ok_", "9"}
	for _, in := range inputs {
		once := SanitizeIdent(in)
		twice := SanitizeIdent(once)
		if once != twice {
			t.Errorf("sanitize not idempotent for %q: %q != %q", in, once, twice)
		}
	}
}

func TestInferTypePriority(t *testing.T) {
	cases := []struct {
		name    string
		samples []string
		want    string
	}{
		{"ints", []string{"1", "2", "3"}, schema.TypeInt},
		{"decimal wins over int mix", []string{"1.5", "2"}, schema.TypeDecimal},
		{"dates", []string{"2024-01-01"}, schema.TypeDatetime},
		{"bools", []string{"true", "false"}, schema.TypeBit},
		{"text", []string{"abc"}, schema.TypeText},
		{"mixed falls to text", []string{"1", "abc"}, schema.TypeText},
		{"empty defaults to text", nil, schema.TypeText},
		{"negative ints", []string{"-5", "0"}, schema.TypeInt},
		{"datetime with time", []string{"2024-01-01 09:30:00"}, schema.TypeDatetime},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := inferType(c.samples); got != c.want {
				t.Errorf("inferType(%v) = %q, want %q", c.samples, got, c.want)
			}
		})
	}
}

func TestInferTypeDeterministic(t *testing.T) {
	samples := []string{"1", "2", "3"}
	first := inferType(samples)
	for i := 0; i < 10; i++ {
		if got := inferType(samples); got != first {
			t.Fatalf("inference not deterministic: %q then %q", first, got)
		}
	}
}

func TestInferWidth(t *testing.T) {
	cases := []struct {
		name    string
		samples []string
		want    int
	}{
		{"floor of 50", []string{"short"}, 50},
		{"longest sample", []string{"x", string(make([]byte, 80))}, 80},
		{"no samples default", nil, 255},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := inferWidth(c.samples); got != c.want {
				t.Errorf("inferWidth = %d, want %d", got, c.want)
			}
		})
	}
}

func TestColumns(t *testing.T) {
	header := []string{"EMP ID", "EMP NAME", "DOJ", "CTC"}
	rows := []map[string]string{
		{"EMP ID": "1001", "EMP NAME": "Jane Doe", "DOJ": "2024-01-01", "CTC": "1200000.50"},
		{"EMP ID": "1002", "EMP NAME": "", "DOJ": "2024-02-15", "CTC": "900000"},
	}

	cols := Columns(header, rows)
	if len(cols) != 4 {
		t.Fatalf("expected 4 columns, got %d", len(cols))
	}

	want := []struct {
		name     string
		dataType string
	}{
		{"EMP_ID", schema.TypeInt},
		{"EMP_NAME", schema.TypeText},
		{"DOJ", schema.TypeDatetime},
		{"CTC", schema.TypeDecimal},
	}
	for i, w := range want {
		if cols[i].ColumnName != w.name {
			t.Errorf("column %d name = %q, want %q", i, cols[i].ColumnName, w.name)
		}
		if cols[i].DataType != w.dataType {
			t.Errorf("column %d type = %q, want %q", i, cols[i].DataType, w.dataType)
		}
		if cols[i].MaxLength < schema.MinColumnWidth {
			t.Errorf("column %d width %d below floor", i, cols[i].MaxLength)
		}
		if !cols[i].IsNullable {
			t.Errorf("column %d should be nullable", i)
		}
	}
}

func TestColumnsEmptyHeader(t *testing.T) {
	if cols := Columns(nil, nil); len(cols) != 0 {
		t.Errorf("expected empty column list, got %d", len(cols))
	}
}

func TestColumnsTrimmedLabelSamples(t *testing.T) {
	// Second row carries the label with trailing whitespace; its value must
	// still count as a sample for the logical column.
	header := []string{"EMP ID"}
	rows := []map[string]string{
		{"EMP ID": "1"},
		{"EMP ID ": "2"},
	}
	cols := Columns(header, rows)
	if len(cols) != 1 {
		t.Fatalf("expected 1 column, got %d", len(cols))
	}
	if cols[0].DataType != schema.TypeInt {
		t.Errorf("type = %q, want int (trimmed-label sample missed)", cols[0].DataType)
	}
}
