// Package tui is the interactive terminal browser over the table registry:
// a list of registered tables and a paginated row viewer for each.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/dochub/dochub/internal/engine"
	"github.com/dochub/dochub/internal/schema"
)

// pageSize is the number of rows shown per page in the row viewer.
const pageSize = 20

type viewMode int

const (
	modeTableList viewMode = iota
	modeRows
)

type tablesLoadedMsg struct {
	tables []schema.TableSchema
	err    error
}

type pageLoadedMsg struct {
	page *engine.PageResult
	err  error
}

// Model is the bubbletea model for the registry browser.
type Model struct {
	eng     *engine.Engine
	ctx     context.Context
	mode    viewMode
	spinner spinner.Model
	loading bool
	errMsg  string

	tables      []schema.TableSchema
	cursor      int
	filter      string
	filtering   bool
	visibleIdxs []int

	// row viewer state
	selected *schema.TableSchema
	page     *engine.PageResult
	skip     int

	width  int
	height int
}

// NewModel creates the browser model.
func NewModel(ctx context.Context, eng *engine.Engine) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = highlightStyle
	return Model{
		eng:     eng,
		ctx:     ctx,
		spinner: sp,
		loading: true,
		width:   100,
		height:  24,
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.loadTables())
}

func (m Model) loadTables() tea.Cmd {
	return func() tea.Msg {
		tables, err := m.eng.Tables(m.ctx)
		return tablesLoadedMsg{tables: tables, err: err}
	}
}

func (m Model) loadPage(letterTypeID string, skip int) tea.Cmd {
	return func() tea.Msg {
		page, err := m.eng.Page(m.ctx, letterTypeID, skip, pageSize)
		return pageLoadedMsg{page: page, err: err}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tablesLoadedMsg:
		m.loading = false
		if msg.err != nil {
			m.errMsg = msg.err.Error()
			return m, nil
		}
		m.errMsg = ""
		m.tables = msg.tables
		m.applyFilter()
		return m, nil

	case pageLoadedMsg:
		m.loading = false
		if msg.err != nil {
			m.errMsg = msg.err.Error()
			return m, nil
		}
		m.errMsg = ""
		m.page = msg.page
		m.mode = modeRows
		return m, nil

	case tea.KeyMsg:
		if m.mode == modeRows {
			return m.updateRows(msg)
		}
		return m.updateTableList(msg)
	}
	return m, nil
}

func (m Model) updateTableList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.filtering {
		return m.updateFilter(msg)
	}

	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit

	case "esc":
		if m.filter != "" {
			m.filter = ""
			m.applyFilter()
			return m, nil
		}
		return m, tea.Quit

	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}

	case "down", "j":
		if m.cursor < len(m.visibleIdxs)-1 {
			m.cursor++
		}

	case "/":
		m.filtering = true
		m.filter = ""
		m.applyFilter()
		return m, nil

	case "r":
		m.loading = true
		return m, tea.Batch(m.spinner.Tick, m.loadTables())

	case "enter":
		if m.cursor < 0 || m.cursor >= len(m.visibleIdxs) {
			return m, nil
		}
		rec := m.tables[m.visibleIdxs[m.cursor]]
		if !rec.IsActive {
			m.errMsg = fmt.Sprintf("%s is inactive", rec.TableName)
			return m, nil
		}
		m.selected = &rec
		m.skip = 0
		m.loading = true
		return m, tea.Batch(m.spinner.Tick, m.loadPage(rec.LetterTypeID, 0))
	}
	return m, nil
}

func (m Model) updateFilter(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.filtering = false
		m.filter = ""
		m.applyFilter()
		return m, nil

	case "enter":
		m.filtering = false
		return m, nil

	case "backspace":
		if len(m.filter) > 0 {
			m.filter = m.filter[:len(m.filter)-1]
			m.applyFilter()
		}
		return m, nil

	default:
		if len(msg.String()) == 1 {
			m.filter += msg.String()
			m.applyFilter()
		}
		return m, nil
	}
}

func (m *Model) applyFilter() {
	m.visibleIdxs = m.visibleIdxs[:0]
	lower := strings.ToLower(m.filter)
	for i, rec := range m.tables {
		if lower == "" ||
			strings.Contains(strings.ToLower(rec.TableName), lower) ||
			strings.Contains(strings.ToLower(rec.LetterTypeID), lower) {
			m.visibleIdxs = append(m.visibleIdxs, i)
		}
	}
	if m.cursor >= len(m.visibleIdxs) {
		m.cursor = max(0, len(m.visibleIdxs)-1)
	}
}

func (m Model) updateRows(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit

	case "esc", "backspace":
		m.mode = modeTableList
		m.page = nil
		m.selected = nil
		return m, nil

	case "right", "l", "]", "pgdown":
		if m.page != nil && int64(m.skip+pageSize) < m.page.TotalRows {
			m.skip += pageSize
			m.loading = true
			return m, tea.Batch(m.spinner.Tick, m.loadPage(m.selected.LetterTypeID, m.skip))
		}

	case "left", "h", "[", "pgup":
		if m.skip > 0 {
			m.skip -= pageSize
			if m.skip < 0 {
				m.skip = 0
			}
			m.loading = true
			return m, tea.Batch(m.spinner.Tick, m.loadPage(m.selected.LetterTypeID, m.skip))
		}
	}
	return m, nil
}

func (m Model) View() string {
	if m.mode == modeRows {
		return m.viewRows()
	}
	return m.viewTableList()
}

func (m Model) viewTableList() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("DocHub Tables") + "\n\n")

	if m.loading {
		b.WriteString("  " + m.spinner.View() + " Loading tables...\n")
		return b.String()
	}
	if m.errMsg != "" {
		b.WriteString(errStyle.Render("  "+m.errMsg) + "\n\n")
	}
	if len(m.tables) == 0 {
		b.WriteString(dimStyle.Render("  No tables registered. Upload a roster to create one.") + "\n")
		b.WriteString("\n" + dimStyle.Render("  r refresh • q quit") + "\n")
		return b.String()
	}

	if m.filtering {
		b.WriteString(highlightStyle.Render("  Filter: ") + m.filter + "█\n\n")
	} else if m.filter != "" {
		b.WriteString(dimStyle.Render(fmt.Sprintf("  Filter: %s (esc to clear)", m.filter)) + "\n\n")
	}

	header := fmt.Sprintf("  %-2s %-42s %-14s %8s %-8s %s",
		"", "Table", "Letter Type", "Rows", "Active", "Created")
	b.WriteString(dimStyle.Render(header) + "\n")
	b.WriteString(dimStyle.Render("  "+strings.Repeat("─", min(m.width-4, 96))) + "\n")

	if len(m.visibleIdxs) == 0 {
		b.WriteString(dimStyle.Render("  No tables match the filter") + "\n")
	}

	for vi, idx := range m.visibleIdxs {
		rec := m.tables[idx]
		cursor := "  "
		nameStyle := lipgloss.NewStyle()
		if vi == m.cursor {
			cursor = highlightStyle.Render("> ")
			nameStyle = nameStyle.Bold(true)
		}

		active := dimStyle.Render("no")
		if rec.IsActive {
			active = activeStyle.Render("yes")
		}

		line := fmt.Sprintf("%s%-42s %-14s %8d %-8s %s",
			cursor,
			nameStyle.Render(truncate(rec.TableName, 42)),
			truncate(rec.LetterTypeID, 14),
			rec.TotalRows,
			active,
			rec.CreatedAt.Format("2006-01-02 15:04"))
		b.WriteString(line + "\n")
	}

	b.WriteString("\n" + dimStyle.Render("  enter view rows • / filter • r refresh • q quit") + "\n")
	return b.String()
}

func (m Model) viewRows() string {
	var b strings.Builder

	title := "Rows"
	if m.selected != nil {
		title = m.selected.TableName
	}
	b.WriteString(titleStyle.Render(title) + "\n\n")

	if m.loading {
		b.WriteString("  " + m.spinner.View() + " Loading rows...\n")
		return b.String()
	}
	if m.errMsg != "" {
		b.WriteString(errStyle.Render("  "+m.errMsg) + "\n")
	}
	if m.page == nil || len(m.page.Rows) == 0 {
		b.WriteString(dimStyle.Render("  No rows.") + "\n")
		b.WriteString("\n" + dimStyle.Render("  esc back • q quit") + "\n")
		return b.String()
	}

	cols := m.columnOrder()
	widths := columnWidths(cols, m.page.Rows)

	var header strings.Builder
	header.WriteString("  ")
	for i, c := range cols {
		header.WriteString(pad(c, widths[i]) + "  ")
	}
	b.WriteString(dimStyle.Render(header.String()) + "\n")
	b.WriteString(dimStyle.Render("  "+strings.Repeat("─", min(m.width-4, 96))) + "\n")

	for _, row := range m.page.Rows {
		b.WriteString("  ")
		for i, c := range cols {
			b.WriteString(pad(row[c], widths[i]) + "  ")
		}
		b.WriteString("\n")
	}

	first := m.skip + 1
	last := m.skip + len(m.page.Rows)
	b.WriteString("\n" + summaryStyle.Render(fmt.Sprintf("  Rows %d-%d of %d", first, last, m.page.TotalRows)) + "\n")
	b.WriteString(dimStyle.Render("  [/] page • esc back • q quit") + "\n")
	return b.String()
}

// columnOrder prefers the registered schema's column order over map
// iteration order.
func (m Model) columnOrder() []string {
	if m.selected != nil && len(m.selected.Columns) > 0 {
		cols := make([]string, len(m.selected.Columns))
		for i, c := range m.selected.Columns {
			cols[i] = c.ColumnName
		}
		return cols
	}
	seen := map[string]bool{}
	var cols []string
	for _, row := range m.page.Rows {
		for k := range row {
			if !seen[k] {
				seen[k] = true
				cols = append(cols, k)
			}
		}
	}
	return cols
}

func columnWidths(cols []string, rows []map[string]string) []int {
	widths := make([]int, len(cols))
	for i, c := range cols {
		widths[i] = len(c)
		for _, row := range rows {
			if n := len(row[c]); n > widths[i] {
				widths[i] = n
			}
		}
		if widths[i] > 24 {
			widths[i] = 24
		}
	}
	return widths
}

func pad(s string, w int) string {
	s = truncate(s, w)
	if len(s) < w {
		return s + strings.Repeat(" ", w-len(s))
	}
	return s
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 1 {
		return s[:maxLen]
	}
	return s[:maxLen-1] + "…"
}

// Run starts the browser and blocks until the user quits.
func Run(ctx context.Context, eng *engine.Engine) error {
	p := tea.NewProgram(NewModel(ctx, eng), tea.WithAltScreen())
	_, err := p.Run()
	return err
}

var (
	titleStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("99")).BorderStyle(lipgloss.DoubleBorder()).BorderBottom(true).Padding(0, 1)
	highlightStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))
	dimStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	activeStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("82"))
	summaryStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("99"))
	errStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
)
