package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/lexcodex/contour/engine"
)

// Run scans the engine's workspace and opens the interactive outline browser.
func Run(ctx context.Context, eng *engine.Engine) error {
	if eng == nil {
		return fmt.Errorf("engine is required")
	}
	program := tea.NewProgram(
		NewModel(eng),
		tea.WithContext(ctx),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)
	_, err := program.Run()
	return err
}

// scanDoneMsg delivers a finished workspace scan to the update loop.
type scanDoneMsg struct {
	result *engine.ScanResult
}

// scanErrorMsg wraps scan failures for display in the status bar.
type scanErrorMsg struct {
	err error
}

func scanCmd(eng *engine.Engine) tea.Cmd {
	return func() tea.Msg {
		result, err := eng.OutlineWorkspace()
		if err != nil {
			return scanErrorMsg{err: err}
		}
		return scanDoneMsg{result: result}
	}
}

// Model implements the Bubble Tea Model interface and coordinates the report
// list, filter bar, preview pane, and status bar.
type Model struct {
	engine *engine.Engine

	preview *viewport.Model
	filter  textinput.Model
	spinner spinner.Model

	reports  []*engine.Report
	failures []engine.ScanFailure
	visible  []int
	cursor   int

	scanDuration time.Duration
	scanErr      error

	width  int
	height int
	ready  bool

	scanning  bool
	filtering bool
}

// NewModel builds the browser model with the scan still pending.
func NewModel(eng *engine.Engine) Model {
	filter := textinput.New()
	filter.Placeholder = "filter by path"
	filter.Prompt = ""

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(colorPrimary)

	return Model{
		engine:   eng,
		filter:   filter,
		spinner:  sp,
		scanning: true,
	}
}

// Init kicks off the workspace scan alongside the spinner.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, scanCmd(m.engine))
}

// Update applies incoming Bubble Tea messages to mutate the Model state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.handleResize(msg)
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit
		}
		if m.filtering {
			return m.handleFilterKeys(msg)
		}
		return m.handleListKeys(msg)
	case spinner.TickMsg:
		if !m.scanning {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case scanDoneMsg:
		m.scanning = false
		m.scanErr = nil
		m.reports = msg.result.Reports
		m.failures = msg.result.Failures
		m.scanDuration = msg.result.Duration
		m.applyFilter()
		return m, nil
	case scanErrorMsg:
		m.scanning = false
		m.scanErr = msg.err
		return m, nil
	}
	return m, nil
}

// handleResize adjusts the list/preview layout on terminal resize events.
func (m Model) handleResize(msg tea.WindowSizeMsg) (tea.Model, tea.Cmd) {
	m.width = msg.Width
	m.height = msg.Height

	statusBarHeight := 1
	filterBarHeight := 1
	paneHeight := max(1, msg.Height-statusBarHeight-filterBarHeight-2)
	previewWidth := max(10, msg.Width-m.listWidth()-6)

	if !m.ready {
		v := viewport.New(previewWidth, paneHeight)
		m.preview = &v
		m.ready = true
	} else {
		m.preview.Width = previewWidth
		m.preview.Height = paneHeight
	}
	m.filter.Width = max(10, msg.Width-20)
	m.syncPreview()
	return m, nil
}

func (m Model) handleListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "esc":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
			m.syncPreview()
		}
		return m, nil
	case "down", "j":
		if m.cursor < len(m.visible)-1 {
			m.cursor++
			m.syncPreview()
		}
		return m, nil
	case "home", "g":
		m.cursor = 0
		m.syncPreview()
		return m, nil
	case "end", "G":
		if len(m.visible) > 0 {
			m.cursor = len(m.visible) - 1
			m.syncPreview()
		}
		return m, nil
	case "pgup", "pgdown":
		if m.preview == nil {
			return m, nil
		}
		var cmd tea.Cmd
		*m.preview, cmd = m.preview.Update(msg)
		return m, cmd
	case "/":
		m.filtering = true
		m.filter.Focus()
		return m, textinput.Blink
	case "r":
		if m.scanning {
			return m, nil
		}
		m.scanning = true
		m.scanErr = nil
		return m, tea.Batch(m.spinner.Tick, scanCmd(m.engine))
	default:
		if m.preview == nil {
			return m, nil
		}
		var cmd tea.Cmd
		*m.preview, cmd = m.preview.Update(msg)
		return m, cmd
	}
}

func (m Model) handleFilterKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		m.filtering = false
		m.filter.Blur()
		return m, nil
	case "esc":
		m.filtering = false
		m.filter.Blur()
		m.filter.SetValue("")
		m.applyFilter()
		return m, nil
	default:
		var cmd tea.Cmd
		m.filter, cmd = m.filter.Update(msg)
		m.applyFilter()
		return m, cmd
	}
}

// applyFilter recomputes the visible report set and clamps the cursor.
func (m *Model) applyFilter() {
	m.visible = filterReports(m.reports, m.filter.Value())
	if m.cursor >= len(m.visible) {
		m.cursor = max(0, len(m.visible)-1)
	}
	m.syncPreview()
}

// syncPreview loads the selected report into the preview pane.
func (m *Model) syncPreview() {
	if m.preview == nil {
		return
	}
	report, ok := m.selected()
	if !ok {
		m.preview.SetContent(emptyStyle.Render("No report selected."))
		return
	}
	m.preview.SetContent(report.Output)
	m.preview.GotoTop()
}

func (m Model) selected() (*engine.Report, bool) {
	if m.cursor < 0 || m.cursor >= len(m.visible) {
		return nil, false
	}
	return m.reports[m.visible[m.cursor]], true
}

// filterReports returns indexes of reports whose path contains the query,
// compared case-insensitively. An empty query keeps everything.
func filterReports(reports []*engine.Report, query string) []int {
	query = strings.ToLower(strings.TrimSpace(query))
	visible := make([]int, 0, len(reports))
	for i, report := range reports {
		if query == "" || strings.Contains(strings.ToLower(report.Path), query) {
			visible = append(visible, i)
		}
	}
	return visible
}

// View composes the list pane, preview pane, filter bar, and status bar.
func (m Model) View() string {
	if !m.ready || m.preview == nil {
		return "Initializing..."
	}

	panes := lipgloss.JoinHorizontal(lipgloss.Top, m.renderList(), previewStyle.Render(m.preview.View()))
	return lipgloss.JoinVertical(lipgloss.Left, panes, m.renderFilterBar(), m.renderStatusBar())
}

func (m Model) listWidth() int {
	return max(24, m.width/3)
}

func (m Model) renderList() string {
	height := m.preview.Height
	width := m.listWidth()

	var lines []string
	switch {
	case m.scanning:
		lines = append(lines, m.spinner.View()+" scanning workspace...")
	case m.scanErr != nil:
		lines = append(lines, errorStyle.Render("scan failed: "+m.scanErr.Error()))
	case len(m.visible) == 0:
		lines = append(lines, emptyStyle.Render("No reports."))
	default:
		lines = m.renderItems(height, width)
	}
	for len(lines) < height {
		lines = append(lines, "")
	}
	return listStyle.Width(width).Render(strings.Join(lines[:height], "\n"))
}

func (m Model) renderItems(height, width int) []string {
	// Keep the cursor inside the window when the list outgrows the pane.
	first := 0
	if m.cursor >= height {
		first = m.cursor - height + 1
	}

	lines := make([]string, 0, height)
	for i := first; i < len(m.visible) && len(lines) < height; i++ {
		report := m.reports[m.visible[i]]
		label := truncate(report.Path, max(1, width-6))
		marker := "  "
		style := itemStyle
		if i == m.cursor {
			marker = "> "
			style = selectedStyle
		}
		badge := " "
		switch {
		case report.ErrorCount > 0:
			badge = warningStyle.Render("!")
		case report.CacheHit:
			badge = cachedStyle.Render("=")
		}
		lines = append(lines, style.Render(marker+label)+" "+badge)
	}
	return lines
}

func (m Model) renderFilterBar() string {
	label := "/ "
	hint := dimStyle.Render(" / filter | r rescan | q quit")
	if m.filtering {
		hint = dimStyle.Render(" Enter to apply | Esc to clear")
	}
	return filterBarStyle.Width(m.width).Render(label + m.filter.View() + hint)
}

func (m Model) renderStatusBar() string {
	left := fmt.Sprintf("%s | %d reports", truncate(m.engine.Root(), 32), len(m.visible))
	if len(m.failures) > 0 {
		left += " | " + errorStyle.Render(fmt.Sprintf("%d failed", len(m.failures)))
	}
	right := ""
	switch {
	case m.scanning:
		right = "scanning"
	case m.scanErr == nil:
		right = fmt.Sprintf("scanned in %s", formatDuration(m.scanDuration))
	}
	padding := m.width - lipgloss.Width(left) - lipgloss.Width(right) - 2
	if padding < 0 {
		padding = 0
	}
	return statusStyle.Width(m.width).Render(left + strings.Repeat(" ", padding) + right)
}

func formatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	return fmt.Sprintf("%.1fs", d.Seconds())
}

// truncate shortens s to at most n runes, ending in an ellipsis. Counting
// runes rather than bytes keeps multi-byte paths intact.
func truncate(s string, n int) string {
	if n <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	if n == 1 {
		return string(runes[:1])
	}
	return string(runes[:n-1]) + "…"
}
