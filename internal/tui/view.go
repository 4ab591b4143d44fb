package tui

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/mkonijn/tafel/internal/game"
	"github.com/mkonijn/tafel/internal/model"
	"github.com/mkonijn/tafel/internal/stats"
)

const countdownCells = 12

var (
	titleStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
	mutedStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	footerStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	correctStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#7FBF4D")).Bold(true)
	wrongStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F")).Bold(true)
	passStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#7FBF4D")).Bold(true)
	failStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F")).Bold(true)
	selectedStyle = lipgloss.NewStyle().Bold(true).Underline(true)
	cursorStyle   = lipgloss.NewStyle().Reverse(true)
)

// View implements tea.Model.
func (m *Model) View() string {
	var content string
	switch m.controller.Mode() {
	case game.ModeMenu:
		content = m.viewMenu()
	case game.ModeSetupPractice, game.ModeSetupTest:
		content = m.viewSetup()
	case game.ModePlaying:
		content = m.viewPlaying()
	case game.ModeResults:
		content = m.viewResults()
	}
	if m.width == 0 || m.height == 0 {
		return content
	}
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, content)
}

func (m *Model) viewMenu() string {
	lines := []string{
		titleStyle.Render("Tafel: times tables trainer"),
		"",
		"p  practice (untimed)",
		"t  test (timed, pass/fail)",
		"q  quit",
	}
	if footer := m.menuFooter(); footer != "" {
		lines = append(lines, "", footer)
	}
	return strings.Join(lines, "\n")
}

func (m *Model) menuFooter() string {
	if len(m.history) == 0 {
		return ""
	}
	last := m.history[0]
	segments := []string{
		fmt.Sprintf("Last %d/%d · %d pts", last.Correct, last.Total, last.Points),
	}
	if last.Type == model.Test {
		if last.Passed {
			segments = append(segments, "passed")
		} else {
			segments = append(segments, "failed")
		}
	}
	if spark := stats.Sparkline(stats.PointsSeries(m.history)); spark != "" {
		segments = append(segments, "Points "+spark)
	}
	return footerStyle.Render(strings.Join(segments, "  "))
}

func (m *Model) viewSetup() string {
	label := "practice"
	if m.controller.Type() == model.Test {
		label = "test"
	}
	lines := []string{
		titleStyle.Render(fmt.Sprintf("Pick tables for your %s", label)),
		"",
		m.renderTableGrid(),
		"",
	}
	if len(m.controller.SelectedTables()) == 0 {
		lines = append(lines, mutedStyle.Render("Select at least one table to start."))
	} else {
		lines = append(lines, mutedStyle.Render("enter: start"))
	}
	lines = append(lines, footerStyle.Render("1-0/space: toggle  arrows: move  c: color  esc: back"))
	return strings.Join(lines, "\n")
}

func (m *Model) renderTableGrid() string {
	selected := map[int]bool{}
	for _, table := range m.controller.SelectedTables() {
		selected[table] = true
	}
	cells := make([]string, 0, model.MaxTable)
	for table := model.MinTable; table <= model.MaxTable; table++ {
		style := lipgloss.NewStyle().Foreground(lipgloss.Color(m.colors[table])).Padding(0, 1)
		label := fmt.Sprintf("%2d", table)
		if selected[table] {
			style = style.Inherit(selectedStyle)
			label = "[" + strings.TrimSpace(label) + "]"
		}
		if table == m.setupCursor {
			style = style.Inherit(cursorStyle)
		}
		cells = append(cells, style.Render(label))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, cells...)
}

func (m *Model) viewPlaying() string {
	question, ok := m.controller.Current()
	if !ok {
		return ""
	}
	header := mutedStyle.Render(fmt.Sprintf("Question %d/%d", m.controller.Index()+1, m.controller.QuestionCount()))
	lines := []string{header}
	if m.controller.Type() == model.Test {
		remaining := m.controller.Remaining(m.clock.Now())
		lines = append(lines, countdownBar(remaining, m.controller.Rules().TimeLimit))
	}
	questionStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(m.colors[question.Table])).Bold(true)
	lines = append(lines, "", questionStyle.Render(formatQuestion(question))+" "+m.answer.View())

	if feedback := m.feedbackLine(question); feedback != "" {
		lines = append(lines, "", feedback)
	} else {
		lines = append(lines, "", footerStyle.Render("enter: answer  esc: menu"))
	}
	return strings.Join(lines, "\n")
}

func (m *Model) feedbackLine(question model.Question) string {
	switch m.controller.Feedback() {
	case game.FeedbackCorrect:
		results := m.controller.Results()
		points := 0
		if len(results) > 0 {
			points = results[len(results)-1].Points
		}
		return correctStyle.Render(fmt.Sprintf("Correct! +%d points", points))
	case game.FeedbackWrong:
		return wrongStyle.Render(fmt.Sprintf("Wrong: %s %d", formatQuestion(question), question.Product))
	case game.FeedbackTimeout:
		return wrongStyle.Render(fmt.Sprintf("Time's up: %s %d", formatQuestion(question), question.Product))
	}
	return ""
}

func (m *Model) viewResults() string {
	summary, ok := m.controller.Summary()
	if !ok {
		return ""
	}
	lines := []string{
		titleStyle.Render("Results"),
		"",
		fmt.Sprintf("Score: %d/%d correct", summary.Correct, summary.Total),
		fmt.Sprintf("Points: %d", summary.Points),
	}
	if summary.Type == model.Test {
		if summary.Passed {
			lines = append(lines, passStyle.Render("Passed!"))
		} else {
			lines = append(lines, failStyle.Render("Not passed yet. Keep practicing!"))
		}
	}
	lines = append(lines, "", titleStyle.Render("Per table"))
	lines = append(lines, m.renderPerTable(summary)...)
	if weak := stats.WeakTables(summary.PerTable, m.controller.Rules().WeakBelow); len(weak) > 0 {
		lines = append(lines, mutedStyle.Render("Practice these next: "+joinTables(weak)))
	}
	if len(summary.Mistakes) > 0 {
		lines = append(lines, "", titleStyle.Render("Mistakes"))
		lines = append(lines, renderMistakes(summary.Mistakes, m.height)...)
	}
	lines = append(lines, "", footerStyle.Render("enter: menu"))
	return strings.Join(lines, "\n")
}

func (m *Model) renderPerTable(summary stats.Summary) []string {
	threshold := m.controller.Rules().WeakBelow
	headers := []string{"Table", "Correct", "Points", "Accuracy", ""}
	rows := make([][]string, 0, len(summary.PerTable))
	for _, t := range summary.PerTable {
		flag := ""
		if t.NeedsPractice(threshold) {
			flag = "needs practice"
		}
		rows = append(rows, []string{
			fmt.Sprintf("%d", t.Table),
			fmt.Sprintf("%d/%d", t.Correct, t.Correct+t.Wrong),
			fmt.Sprintf("%d", t.Points),
			fmt.Sprintf("%.0f%%", t.Accuracy()*100),
			flag,
		})
	}
	rightAlign := map[int]bool{1: true, 2: true, 3: true}
	return stats.FormatTable(headers, rows, rightAlign)
}

func renderMistakes(mistakes []model.Result, height int) []string {
	limit := len(mistakes)
	if height > 0 && limit > height/3 {
		limit = maxInt(1, height/3)
	}
	lines := make([]string, 0, limit+1)
	for _, r := range mistakes[:limit] {
		answer := "no answer"
		if r.Answered {
			answer = fmt.Sprintf("you said %d", r.Answer)
		}
		lines = append(lines, fmt.Sprintf("%s %d  (%s)", formatQuestion(r.Question), r.Question.Product, answer))
	}
	if limit < len(mistakes) {
		lines = append(lines, mutedStyle.Render(fmt.Sprintf("… and %d more", len(mistakes)-limit)))
	}
	return lines
}

func joinTables(tables []int) string {
	parts := make([]string, len(tables))
	for i, table := range tables {
		parts[i] = strconv.Itoa(table)
	}
	return strings.Join(parts, ", ")
}

// formatQuestion renders a question prompt without its answer.
func formatQuestion(q model.Question) string {
	return fmt.Sprintf("%d × %d =", q.Table, q.Factor)
}

// countdownBar renders the remaining time budget as a filled bar.
func countdownBar(remaining, limit time.Duration) string {
	if limit <= 0 {
		return ""
	}
	if remaining < 0 {
		remaining = 0
	}
	if remaining > limit {
		remaining = limit
	}
	filled := int(float64(countdownCells) * remaining.Seconds() / limit.Seconds())
	if filled > countdownCells {
		filled = countdownCells
	}
	bar := strings.Repeat("█", filled) + strings.Repeat("░", countdownCells-filled)
	return fmt.Sprintf("%s %.1fs", bar, remaining.Seconds())
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
