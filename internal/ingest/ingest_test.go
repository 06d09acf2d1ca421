package ingest

import (
	"strings"
	"testing"
)

func TestParseCSV(t *testing.T) {
	in := "EMP ID,EMP NAME,EMAIL\n1001,Jane Doe,jane@example.com\n1002,John Roe,john@example.com\n"

	up, err := ParseCSV(strings.NewReader(in))
	if err != nil {
		t.Fatal(err)
	}
	if len(up.Header) != 3 || up.Header[0] != "EMP ID" {
		t.Fatalf("header = %v", up.Header)
	}
	if len(up.Rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(up.Rows))
	}
	if up.Rows[0]["EMP NAME"] != "Jane Doe" {
		t.Errorf("row 0 EMP NAME = %q", up.Rows[0]["EMP NAME"])
	}
}

func TestParseCSVShortRecord(t *testing.T) {
	in := "EMP ID,EMP NAME\n1001,Jane Doe\n1002\n"

	up, err := ParseCSV(strings.NewReader(in))
	if err != nil {
		t.Fatal(err)
	}
	if len(up.Rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(up.Rows))
	}
	if _, ok := up.Rows[1]["EMP NAME"]; ok {
		t.Error("short record must leave trailing labels absent, not empty")
	}
}

func TestParseCSVBlankLines(t *testing.T) {
	in := "A,B\n1,2\n,\n3,4\n"

	up, err := ParseCSV(strings.NewReader(in))
	if err != nil {
		t.Fatal(err)
	}
	if len(up.Rows) != 2 {
		t.Errorf("blank record should be skipped, got %d rows", len(up.Rows))
	}
}

func TestParseCSVPreservesLabelWhitespace(t *testing.T) {
	in := "EMP ID , EMP NAME\n1,Jane\n"

	up, err := ParseCSV(strings.NewReader(in))
	if err != nil {
		t.Fatal(err)
	}
	if up.Header[0] != "EMP ID " {
		t.Errorf("header label trimmed: %q", up.Header[0])
	}
	if up.Rows[0]["EMP ID "] != "1" {
		t.Errorf("row keyed by original label missing: %v", up.Rows[0])
	}
}

func TestParseCSVDuplicateHeader(t *testing.T) {
	in := "EMP ID,EMP ID \n1,2\n"
	if _, err := ParseCSV(strings.NewReader(in)); err == nil {
		t.Fatal("expected duplicate header error")
	}
}

func TestParseCSVEmptyHeaderLabel(t *testing.T) {
	in := "EMP ID,,EMAIL\n1,2,3\n"
	if _, err := ParseCSV(strings.NewReader(in)); err == nil {
		t.Fatal("expected empty header label error")
	}
}

func TestParseCSVEmptyInput(t *testing.T) {
	up, err := ParseCSV(strings.NewReader(""))
	if err != nil {
		t.Fatal(err)
	}
	if len(up.Header) != 0 || len(up.Rows) != 0 {
		t.Errorf("empty input should yield empty upload: %+v", up)
	}
}
