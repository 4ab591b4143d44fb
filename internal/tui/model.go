// Package tui provides the Bubble Tea play interface.
package tui

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/mkonijn/tafel/internal/config"
	"github.com/mkonijn/tafel/internal/game"
	"github.com/mkonijn/tafel/internal/model"
	"github.com/mkonijn/tafel/internal/store"
)

const tickInterval = 100 * time.Millisecond

// tickMsg drives the Test countdown; gen is the controller generation the
// tick was armed under, so ticks outliving their question are dropped.
type tickMsg struct {
	gen uint64
}

// dwellMsg ends the feedback hold between answering and advancing.
type dwellMsg struct {
	gen uint64
}

// Model implements the Bubble Tea play UI.
type Model struct {
	controller *game.Controller
	store      *store.Store
	clock      game.Clock
	colors     map[int]string
	history    []model.HistoryEntry

	answer      textinput.Model
	setupCursor int

	width  int
	height int
}

// NewModel constructs a play UI model. The history slice is the in-memory
// seed loaded at startup; every completed session re-persists it in full.
func NewModel(controller *game.Controller, st *store.Store, clock game.Clock, colors map[int]string, history []model.HistoryEntry) *Model {
	answer := textinput.New()
	answer.Prompt = ""
	answer.CharLimit = 3
	answer.Width = 5
	answer.Cursor.SetMode(cursor.CursorBlink)
	answer.Validate = digitsOnly
	return &Model{
		controller:  controller,
		store:       st,
		clock:       clock,
		colors:      colors,
		history:     history,
		answer:      answer,
		setupCursor: model.MinTable,
	}
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case tickMsg:
		return m.handleTick(msg)
	case dwellMsg:
		return m.handleDwell(msg)
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		switch m.controller.Mode() {
		case game.ModeMenu:
			return m.updateMenu(msg)
		case game.ModeSetupPractice, game.ModeSetupTest:
			return m.updateSetup(msg)
		case game.ModePlaying:
			return m.updatePlaying(msg)
		case game.ModeResults:
			return m.updateResults(msg)
		}
	}
	var cmd tea.Cmd
	m.answer, cmd = m.answer.Update(msg)
	return m, cmd
}

func (m *Model) updateMenu(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "p":
		m.controller.SelectSessionType(model.Practice)
		return m, nil
	case "t":
		m.controller.SelectSessionType(model.Test)
		return m, nil
	}
	return m, nil
}

func (m *Model) updateSetup(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "q":
		m.controller.CancelSetup()
		return m, nil
	case "left", "h", "up", "k":
		m.moveSetupCursor(-1)
		return m, nil
	case "right", "l", "down", "j":
		m.moveSetupCursor(1)
		return m, nil
	case " ":
		m.controller.ToggleTable(m.setupCursor)
		return m, nil
	case "c":
		m.cycleColor(m.setupCursor)
		return m, nil
	case "enter":
		return m.startSession()
	}
	if table, ok := tableForKey(msg.String()); ok {
		m.controller.ToggleTable(table)
		m.setupCursor = table
	}
	return m, nil
}

func (m *Model) updatePlaying(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "esc" {
		// Bumps the generation, so any pending tick or dwell is stale.
		m.controller.ReturnToMenu()
		m.answer.Reset()
		return m, nil
	}
	if m.controller.Feedback() != game.FeedbackNone {
		// Input during the feedback hold is ignored.
		return m, nil
	}
	if msg.String() == "enter" {
		value, err := strconv.Atoi(m.answer.Value())
		if err != nil {
			return m, nil
		}
		m.controller.SubmitAnswer(value)
		if m.controller.Feedback() == game.FeedbackNone {
			return m, nil
		}
		return m, dwellCmd(m.controller.Dwell(), m.controller.Generation())
	}
	var cmd tea.Cmd
	m.answer, cmd = m.answer.Update(msg)
	return m, cmd
}

func (m *Model) updateResults(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter", "esc", "q":
		m.controller.ReturnToMenu()
		return m, nil
	}
	return m, nil
}

func (m *Model) startSession() (tea.Model, tea.Cmd) {
	if !m.controller.StartSession() {
		return m, nil
	}
	m.answer.Reset()
	cmds := []tea.Cmd{m.answer.Focus()}
	if m.controller.Type() == model.Test {
		cmds = append(cmds, tickCmd(m.controller.Generation()))
	}
	return m, tea.Batch(cmds...)
}

func (m *Model) handleTick(msg tickMsg) (tea.Model, tea.Cmd) {
	if msg.gen != m.controller.Generation() {
		return m, nil
	}
	if m.controller.Remaining(m.clock.Now()) > 0 {
		return m, tickCmd(msg.gen)
	}
	m.controller.ExpireQuestion(msg.gen)
	if m.controller.Feedback() == game.FeedbackNone {
		return m, nil
	}
	return m, dwellCmd(m.controller.Dwell(), m.controller.Generation())
}

func (m *Model) handleDwell(msg dwellMsg) (tea.Model, tea.Cmd) {
	if msg.gen != m.controller.Generation() {
		return m, nil
	}
	m.controller.AdvanceAfterFeedback(msg.gen)
	switch m.controller.Mode() {
	case game.ModePlaying:
		m.answer.Reset()
		if m.controller.Type() == model.Test {
			return m, tickCmd(m.controller.Generation())
		}
		return m, nil
	case game.ModeResults:
		m.recordSession()
		return m, nil
	}
	return m, nil
}

// recordSession prepends the finished session to the in-memory history,
// applies the cap, and rewrites the persisted list in full.
func (m *Model) recordSession() {
	summary, ok := m.controller.Summary()
	if !ok {
		return
	}
	entry := model.HistoryEntry{
		CreatedAt: m.clock.Now(),
		Type:      summary.Type,
		Correct:   summary.Correct,
		Total:     summary.Total,
		Points:    summary.Points,
		Passed:    summary.Passed,
		Tables:    summary.Breakdown(),
	}
	m.history = pushHistory(m.history, entry)
	if err := m.store.SaveHistory(context.Background(), m.history); err != nil {
		logErrf("failed to save history: %v\n", err)
	}
}

// pushHistory prepends the newest entry and evicts the oldest beyond the
// cap, keeping the list newest-first.
func pushHistory(history []model.HistoryEntry, entry model.HistoryEntry) []model.HistoryEntry {
	history = append([]model.HistoryEntry{entry}, history...)
	if len(history) > model.HistoryCap {
		history = history[:model.HistoryCap]
	}
	return history
}

func (m *Model) moveSetupCursor(delta int) {
	next := m.setupCursor + delta
	if next < model.MinTable {
		next = model.MaxTable
	}
	if next > model.MaxTable {
		next = model.MinTable
	}
	m.setupCursor = next
}

// cycleColor advances the table's color through the palette and rewrites
// the persisted color map in full.
func (m *Model) cycleColor(table int) {
	m.colors[table] = config.NextColor(m.colors[table])
	if err := m.store.SaveColors(context.Background(), m.colors); err != nil {
		logErrf("failed to save colors: %v\n", err)
	}
}

// tableForKey maps digit keys to tables: "1" to "9" directly, "0" to 10.
func tableForKey(key string) (int, bool) {
	if len(key) != 1 || key[0] < '0' || key[0] > '9' {
		return 0, false
	}
	if key == "0" {
		return 10, true
	}
	return int(key[0] - '0'), true
}

func digitsOnly(s string) error {
	for _, r := range s {
		if r < '0' || r > '9' {
			return fmt.Errorf("digits only")
		}
	}
	return nil
}

func tickCmd(gen uint64) tea.Cmd {
	return tea.Tick(tickInterval, func(time.Time) tea.Msg {
		return tickMsg{gen: gen}
	})
}

func dwellCmd(d time.Duration, gen uint64) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg {
		return dwellMsg{gen: gen}
	})
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
