// Package historyui provides the Bubble Tea history browser.
package historyui

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/mkonijn/tafel/internal/model"
	"github.com/mkonijn/tafel/internal/stats"
	"github.com/mkonijn/tafel/internal/store"
)

const (
	tabOverview = iota
	tabSessions
	tabTables
)

const plotHeight = 10

var (
	activeNavStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F0F0F0")).
			Bold(true).
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#C89A3A"))
	inactiveNavStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#B0B0B0")).
				Padding(0, 1).
				Border(lipgloss.RoundedBorder(), true).
				BorderForeground(lipgloss.Color("#4A4A4A"))
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	cardStyle   = lipgloss.NewStyle().
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#4A4A4A"))
	cardTitleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	cardValueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
	tableMutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#B8B8B8"))
	modalStyle      = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#C89A3A")).
			Padding(1, 2)
)

// Model implements the Bubble Tea history UI.
type Model struct {
	store  *store.Store
	filter model.HistoryFilter

	report stats.Report
	errMsg string

	tabs         []string
	activeTab    int
	viewports    []viewport.Model
	sessionTable table.Model

	width  int
	height int

	lastInputMode  bool
	lastInput      textinput.Model
	lastInputError string
}

// NewModel constructs a history UI model.
func NewModel(st *store.Store, filter model.HistoryFilter) *Model {
	m := &Model{
		store:  st,
		filter: filter,
		tabs:   []string{"Overview", "Sessions", "Tables"},
	}
	if m.filter.CurveWindow <= 0 {
		m.filter.CurveWindow = 5
	}
	m.initLastInput()
	m.initViewports()
	m.sessionTable = buildSessionTable(nil, 0, 1)
	m.refreshReport()
	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.updateLayout()
		m.renderTabContents()
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		if m.lastInputMode {
			return m.updateLastInput(msg)
		}
		if msg.String() == "q" {
			return m, tea.Quit
		}
		if m.activeTab == tabSessions {
			m.sessionTable.Focus()
		} else {
			m.sessionTable.Blur()
		}
		switch msg.String() {
		case "left", "h":
			m.moveTab(-1)
			return m, tea.ClearScreen
		case "right", "l":
			m.moveTab(1)
			return m, tea.ClearScreen
		case "=":
			m.filter.CurveWindow = nextWindow(m.filter.CurveWindow)
			m.renderTabContents()
			return m, nil
		case "-":
			m.filter.CurveWindow = prevWindow(m.filter.CurveWindow)
			m.renderTabContents()
			return m, nil
		case "p":
			m.filter.Type = nextTypeFilter(m.filter.Type)
			m.refreshReport()
			return m, nil
		case "/":
			return m.startLastInput()
		case "g", "home":
			if m.activeTab == tabSessions {
				m.sessionTable.GotoTop()
			} else {
				m.viewports[m.activeTab].GotoTop()
			}
			return m, nil
		case "G", "end":
			if m.activeTab == tabSessions {
				m.sessionTable.GotoBottom()
			} else {
				m.viewports[m.activeTab].GotoBottom()
			}
			return m, nil
		default:
			if m.activeTab == tabSessions {
				var cmd tea.Cmd
				m.sessionTable, cmd = m.sessionTable.Update(msg)
				return m, cmd
			}
			vp := m.viewports[m.activeTab]
			var cmd tea.Cmd
			vp, cmd = vp.Update(msg)
			m.viewports[m.activeTab] = vp
			return m, cmd
		}
	}
	return m, nil
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	if m.lastInputMode {
		return fitLines(m.renderLastModal(), m.width, m.height)
	}
	headerHeight, bodyHeight, footerHeight := m.layoutHeights()
	header := fitLines(m.renderHeader(), m.width, headerHeight)
	body := fitLines(m.renderBody(bodyHeight), m.width, bodyHeight)
	footer := fitLines(m.renderFooter(), m.width, footerHeight)
	return strings.Join([]string{header, body, footer}, "\n")
}

func (m *Model) initViewports() {
	m.viewports = make([]viewport.Model, len(m.tabs))
	for i := range m.viewports {
		m.viewports[i] = viewport.New(0, 0)
	}
}

func (m *Model) initLastInput() {
	input := textinput.New()
	input.Prompt = "Last: "
	input.Placeholder = "all"
	input.CharLimit = 3
	input.Cursor.SetMode(cursor.CursorBlink)
	m.lastInput = input
}

func (m *Model) layoutHeights() (headerHeight, bodyHeight, footerHeight int) {
	tabsHeight := lipgloss.Height(activeNavStyle.Render("X"))
	if tabsHeight < 1 {
		tabsHeight = 1
	}
	headerHeight = tabsHeight + 1
	footerHeight = 1
	if m.errMsg != "" {
		footerHeight++
	}
	bodyHeight = m.height - headerHeight - footerHeight
	if bodyHeight < 1 {
		bodyHeight = 1
	}
	return headerHeight, bodyHeight, footerHeight
}

func (m *Model) updateLayout() {
	if m.width <= 0 || m.height <= 0 {
		return
	}
	_, bodyHeight, _ := m.layoutHeights()
	for i := range m.viewports {
		m.viewports[i].Width = m.width
		m.viewports[i].Height = bodyHeight
	}
	m.sessionTable.SetWidth(m.width)
	m.sessionTable.SetHeight(maxInt(1, bodyHeight-1))
	promptWidth := lipgloss.Width(m.lastInput.Prompt)
	m.lastInput.Width = maxInt(10, modalInnerWidth(m.width)-promptWidth)
}

func (m *Model) moveTab(delta int) {
	count := len(m.tabs)
	if count == 0 {
		return
	}
	next := m.activeTab + delta
	if next < 0 {
		next = count - 1
	}
	if next >= count {
		next = 0
	}
	m.activeTab = next
	if m.activeTab == tabSessions {
		m.sessionTable.Focus()
	} else {
		m.sessionTable.Blur()
	}
}

func (m *Model) refreshReport() {
	report, err := stats.BuildReport(context.Background(), m.store, m.filter)
	if err != nil {
		m.errMsg = err.Error()
		for i := range m.viewports {
			m.viewports[i].SetContent("Failed to load history.")
		}
		return
	}
	m.errMsg = ""
	m.report = report
	_, bodyHeight, _ := m.layoutHeights()
	m.sessionTable = buildSessionTable(report.Entries, m.width, bodyHeight)
	m.renderTabContents()
}

func (m *Model) renderTabContents() {
	if len(m.viewports) == 0 || m.errMsg != "" {
		return
	}
	width := m.width
	if width <= 0 {
		width = 80
	}
	m.viewports[tabOverview].SetContent(renderOverview(m.report.Entries, m.filter.CurveWindow, width))
	m.viewports[tabTables].SetContent(renderTables(m.report.Tables))
}

func (m *Model) renderTabs() string {
	parts := make([]string, 0, len(m.tabs))
	for i, tab := range m.tabs {
		if i == m.activeTab {
			parts = append(parts, activeNavStyle.Render(tab))
		} else {
			parts = append(parts, inactiveNavStyle.Render(tab))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

func (m *Model) renderHeader() string {
	tabs := padLines(m.renderTabs(), m.width)
	filters := padLines(m.renderFilterSummary(), m.width)
	return tabs + "\n" + filters
}

func (m *Model) renderFilterSummary() string {
	typ := "both"
	if m.filter.Type != "" {
		typ = string(m.filter.Type)
	}
	last := "all"
	if m.filter.Last > 0 {
		last = strconv.Itoa(m.filter.Last)
	}
	summary := fmt.Sprintf("Filter: type=%s  last=%s  window=%d", typ, last, m.filter.CurveWindow)
	summary = truncateLine(summary, m.width)
	return headerStyle.Render(summary)
}

func (m *Model) renderFooter() string {
	help := "Nav: left/right  Scroll: up/down  Type: p  Last: /  Window: -/=  Quit: q"
	if m.errMsg != "" {
		return headerStyle.Render(help) + "\n" + errorStyle.Render(m.errMsg)
	}
	return headerStyle.Render(help)
}

func (m *Model) renderBody(height int) string {
	if m.activeTab == tabSessions {
		if len(m.report.Entries) == 0 {
			return fitLines("No sessions recorded yet.", m.width, height)
		}
		return fitLines(tableMutedStyle.Render(m.sessionTable.View()), m.width, height)
	}
	return fitLines(m.viewports[m.activeTab].View(), m.width, height)
}

func renderOverview(entries []model.HistoryEntry, window, width int) string {
	if len(entries) == 0 {
		return "No sessions recorded yet."
	}
	summary := renderSummaryCards(entries, width)
	curves := renderCurves(entries, window, width)
	return strings.TrimRight(summary+"\n\n"+curves, "\n")
}

func renderSummaryCards(entries []model.HistoryEntry, width int) string {
	totalPoints := 0
	bestPoints := 0
	tests := 0
	passed := 0
	var totalAcc float64
	for _, entry := range entries {
		totalPoints += entry.Points
		if entry.Points > bestPoints {
			bestPoints = entry.Points
		}
		if entry.Type == model.Test {
			tests++
			if entry.Passed {
				passed++
			}
		}
		if entry.Total > 0 {
			totalAcc += float64(entry.Correct) / float64(entry.Total)
		}
	}
	count := float64(len(entries))
	cards := []string{
		metricCard("Sessions", fmt.Sprintf("%d", len(entries))),
		metricCard("Passed", fmt.Sprintf("%d/%d", passed, tests)),
		metricCard("Best points", fmt.Sprintf("%d", bestPoints)),
		metricCard("Avg points", fmt.Sprintf("%.0f", float64(totalPoints)/count)),
		metricCard("Avg accuracy", fmt.Sprintf("%.0f%%", totalAcc/count*100)),
	}
	if width < 80 {
		return strings.Join(cards, "\n")
	}
	row1 := lipgloss.JoinHorizontal(lipgloss.Top, cards[0], cards[1], cards[2])
	row2 := lipgloss.JoinHorizontal(lipgloss.Top, cards[3], cards[4])
	return lipgloss.JoinVertical(lipgloss.Left, row1, row2)
}

func metricCard(label, value string) string {
	content := fmt.Sprintf("%s\n%s", cardTitleStyle.Render(label), cardValueStyle.Render(value))
	return cardStyle.Render(content)
}

func renderCurves(entries []model.HistoryEntry, window, width int) string {
	points := stats.MovingAverage(stats.PointsSeries(entries), window)
	accuracy := stats.MovingAverage(stats.AccuracySeries(entries), window)
	var buf bytes.Buffer
	err := stats.PlotSeries(&buf, "Progress", []stats.Series{
		{Name: "Points", Values: points},
		{Name: "Accuracy", Unit: "%", Values: accuracy},
	}, stats.PlotWidthFor(width), plotHeight, true)
	if err != nil {
		return fmt.Sprintf("Failed to render curves: %v", err)
	}
	return strings.TrimRight(buf.String(), "\n")
}

func renderTables(aggs []stats.TableStat) string {
	if len(aggs) == 0 {
		return "No table stats yet."
	}
	threshold := model.DefaultRules().WeakBelow
	headers := []string{"Table", "Correct", "Wrong", "Points", "Accuracy", ""}
	rows := make([][]string, 0, len(aggs))
	for _, t := range aggs {
		flag := ""
		if t.NeedsPractice(threshold) {
			flag = "needs practice"
		}
		rows = append(rows, []string{
			fmt.Sprintf("%d", t.Table),
			fmt.Sprintf("%d", t.Correct),
			fmt.Sprintf("%d", t.Wrong),
			fmt.Sprintf("%d", t.Points),
			fmt.Sprintf("%.0f%%", t.Accuracy()*100),
			flag,
		})
	}
	rightAlign := map[int]bool{1: true, 2: true, 3: true, 4: true}
	return strings.Join(stats.FormatTable(headers, rows, rightAlign), "\n")
}

func buildSessionTable(entries []model.HistoryEntry, width, height int) table.Model {
	columns := []table.Column{
		{Title: "Date", Width: 16},
		{Title: "Type", Width: 8},
		{Title: "Score", Width: 7},
		{Title: "Points", Width: 6},
		{Title: "Result", Width: 7},
	}
	rows := make([]table.Row, 0, len(entries))
	for _, entry := range entries {
		result := ""
		if entry.Type == model.Test {
			if entry.Passed {
				result = "passed"
			} else {
				result = "failed"
			}
		}
		rows = append(rows, table.Row{
			entry.CreatedAt.Format("2006-01-02 15:04"),
			string(entry.Type),
			fmt.Sprintf("%d/%d", entry.Correct, entry.Total),
			fmt.Sprintf("%d", entry.Points),
			result,
		})
	}
	t := table.New(
		table.WithColumns(columns),
		table.WithRows(rows),
		table.WithHeight(maxInt(1, height-1)),
	)
	t.SetWidth(width)
	t.SetStyles(sessionTableStyles())
	return t
}

func sessionTableStyles() table.Styles {
	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		Border(lipgloss.NormalBorder(), false, false, true, false).
		BorderForeground(lipgloss.Color("#4A4A4A")).
		Foreground(lipgloss.Color("#C0C0C0")).
		Bold(true).
		Padding(0, 1).
		PaddingLeft(0)
	styles.Cell = styles.Cell.
		Padding(0, 1).
		PaddingLeft(0)
	styles.Selected = styles.Cell.
		Foreground(lipgloss.Color("#F0F0F0")).
		Bold(true)
	return styles
}

func (m *Model) startLastInput() (tea.Model, tea.Cmd) {
	m.lastInputMode = true
	m.lastInputError = ""
	if m.filter.Last > 0 {
		m.lastInput.SetValue(strconv.Itoa(m.filter.Last))
	} else {
		m.lastInput.SetValue("")
	}
	return m, m.lastInput.Focus()
}

func (m *Model) updateLastInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.lastInputMode = false
		m.lastInputError = ""
		return m, nil
	case tea.KeyEnter:
		value := strings.TrimSpace(m.lastInput.Value())
		last := 0
		if value != "" {
			parsed, err := strconv.Atoi(value)
			if err != nil || parsed < 0 {
				m.lastInputError = "use 0 or a positive integer"
				return m, nil
			}
			last = parsed
		}
		m.filter.Last = last
		m.lastInputMode = false
		m.lastInputError = ""
		m.refreshReport()
		return m, nil
	}
	var cmd tea.Cmd
	m.lastInput, cmd = m.lastInput.Update(msg)
	return m, cmd
}

func (m *Model) renderLastModal() string {
	title := cardValueStyle.Render("Limit sessions")
	body := []string{
		title,
		m.lastInput.View(),
		headerStyle.Render("Empty or 0 shows all sessions."),
		headerStyle.Render("Enter to apply / Esc to cancel"),
	}
	if m.lastInputError != "" {
		body = append(body, errorStyle.Render(m.lastInputError))
	}
	box := modalStyle.Width(modalWidth(m.width)).Render(strings.Join(body, "\n"))
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
}

func nextTypeFilter(t model.SessionType) model.SessionType {
	switch t {
	case "":
		return model.Practice
	case model.Practice:
		return model.Test
	default:
		return ""
	}
}

func nextWindow(n int) int {
	if n < 5 {
		return 5
	}
	if n%5 == 0 {
		return n + 5
	}
	return ((n / 5) + 1) * 5
}

func prevWindow(n int) int {
	if n <= 5 {
		return 1
	}
	if n%5 == 0 {
		return n - 5
	}
	return (n / 5) * 5
}

func modalWidth(width int) int {
	return maxInt(40, minInt(width-4, 80))
}

func modalInnerWidth(width int) int {
	w := modalWidth(width)
	w -= 6 // 2 border + 4 padding
	if w < 10 {
		return 10
	}
	return w
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func padLines(s string, width int) string {
	if width <= 0 || s == "" {
		return s
	}
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = padLine(line, width)
	}
	return strings.Join(lines, "\n")
}

func padLine(line string, width int) string {
	lineWidth := lipgloss.Width(line)
	if lineWidth < width {
		return line + strings.Repeat(" ", width-lineWidth)
	}
	return line
}

func fitLines(s string, width, height int) string {
	if width <= 0 || height <= 0 {
		return s
	}
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = padLine(line, width)
	}
	if len(lines) > height {
		lines = lines[:height]
	}
	for len(lines) < height {
		lines = append(lines, strings.Repeat(" ", width))
	}
	return strings.Join(lines, "\n")
}

func truncateLine(s string, width int) string {
	if width <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= width {
		return s
	}
	if width <= 3 {
		return string(runes[:width])
	}
	return string(runes[:width-3]) + "..."
}
