package tui

import (
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/dochub/dochub/internal/engine"
	"github.com/dochub/dochub/internal/schema"
)

func testRecords() []schema.TableSchema {
	return []schema.TableSchema{
		{
			TableName:    "experience_letter_20250101_120000",
			LetterTypeID: "lt-1",
			TotalRows:    2,
			IsActive:     true,
			CreatedAt:    time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC),
			Columns: []schema.ColumnDefinition{
				{ColumnName: "EMP_ID"},
				{ColumnName: "EMP_NAME"},
			},
		},
		{
			TableName:    "offer_letter_20240101_090000",
			LetterTypeID: "lt-2",
			IsActive:     false,
			CreatedAt:    time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC),
		},
	}
}

func TestTablesLoaded(t *testing.T) {
	m := Model{loading: true}

	next, _ := m.Update(tablesLoadedMsg{tables: testRecords()})
	m = next.(Model)

	if m.loading {
		t.Error("loading should clear after tables arrive")
	}
	if len(m.tables) != 2 {
		t.Fatalf("expected 2 tables, got %d", len(m.tables))
	}
	if len(m.visibleIdxs) != 2 {
		t.Errorf("expected 2 visible, got %d", len(m.visibleIdxs))
	}
}

func TestTablesLoadedError(t *testing.T) {
	m := Model{loading: true}

	next, _ := m.Update(tablesLoadedMsg{err: errors.New("connection refused")})
	m = next.(Model)

	if m.errMsg == "" {
		t.Error("expected error message to be shown")
	}
}

func TestCursorNavigation(t *testing.T) {
	m := Model{tables: testRecords()}
	m.applyFilter()

	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyDown})
	m = next.(Model)
	if m.cursor != 1 {
		t.Errorf("cursor = %d after down, want 1", m.cursor)
	}

	// clamps at the end
	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyDown})
	m = next.(Model)
	if m.cursor != 1 {
		t.Errorf("cursor = %d, should clamp at 1", m.cursor)
	}

	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyUp})
	m = next.(Model)
	if m.cursor != 0 {
		t.Errorf("cursor = %d after up, want 0", m.cursor)
	}
}

func TestFilter(t *testing.T) {
	m := Model{tables: testRecords()}
	m.applyFilter()

	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'/'}})
	m = next.(Model)
	if !m.filtering {
		t.Fatal("/ should enter filter mode")
	}

	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'o'}})
	m = next.(Model)
	if len(m.visibleIdxs) != 1 {
		t.Fatalf("expected 1 visible with filter 'o', got %d", len(m.visibleIdxs))
	}
	if m.tables[m.visibleIdxs[0]].TableName != "offer_letter_20240101_090000" {
		t.Errorf("wrong table visible: %s", m.tables[m.visibleIdxs[0]].TableName)
	}

	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	m = next.(Model)
	if m.filtering || m.filter != "" {
		t.Error("esc should clear the filter")
	}
	if len(m.visibleIdxs) != 2 {
		t.Errorf("expected all tables visible after clear, got %d", len(m.visibleIdxs))
	}
}

func TestEnterOnInactiveTable(t *testing.T) {
	m := Model{tables: testRecords(), cursor: 1}
	m.applyFilter()

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = next.(Model)
	if cmd != nil {
		t.Error("inactive table must not trigger a page load")
	}
	if m.errMsg == "" {
		t.Error("expected an inactive-table message")
	}
}

func TestPageLoadedSwitchesToRows(t *testing.T) {
	recs := testRecords()
	m := Model{tables: recs, selected: &recs[0], loading: true}

	next, _ := m.Update(pageLoadedMsg{page: &engine.PageResult{
		TableName: recs[0].TableName,
		Rows:      []map[string]string{{"EMP_ID": "1001", "EMP_NAME": "Jane Doe"}},
		TotalRows: 2,
	}})
	m = next.(Model)

	if m.mode != modeRows {
		t.Fatalf("mode = %d, want modeRows", m.mode)
	}
	if m.loading {
		t.Error("loading should clear")
	}

	view := m.View()
	if !strings.Contains(view, "Jane Doe") {
		t.Errorf("row view missing cell value:\n%s", view)
	}
	if !strings.Contains(view, "EMP_ID") {
		t.Errorf("row view missing column header:\n%s", view)
	}
}

func TestEscReturnsToList(t *testing.T) {
	recs := testRecords()
	m := Model{mode: modeRows, tables: recs, selected: &recs[0], page: &engine.PageResult{}}

	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	m = next.(Model)
	if m.mode != modeTableList {
		t.Errorf("mode = %d, want modeTableList", m.mode)
	}
	if m.page != nil || m.selected != nil {
		t.Error("row viewer state should reset")
	}
}

func TestColumnOrderFollowsSchema(t *testing.T) {
	recs := testRecords()
	m := Model{selected: &recs[0], page: &engine.PageResult{
		Rows: []map[string]string{{"EMP_NAME": "Jane", "EMP_ID": "1"}},
	}}

	cols := m.columnOrder()
	if len(cols) != 2 || cols[0] != "EMP_ID" || cols[1] != "EMP_NAME" {
		t.Errorf("column order = %v, want schema order", cols)
	}
}

func TestColumnWidthsCapped(t *testing.T) {
	cols := []string{"NOTE"}
	rows := []map[string]string{{"NOTE": strings.Repeat("x", 80)}}
	widths := columnWidths(cols, rows)
	if widths[0] != 24 {
		t.Errorf("width = %d, want cap 24", widths[0])
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("short", 10); got != "short" {
		t.Errorf("truncate(short) = %q", got)
	}
	got := truncate("a_very_long_table_name", 10)
	if len([]rune(got)) != 10 {
		t.Errorf("truncated length = %d, want 10", len([]rune(got)))
	}
}
