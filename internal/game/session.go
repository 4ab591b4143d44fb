// Package game implements the session controller: the state machine that
// owns table selection, question flow, timing, and scoring for one run.
package game

import (
	"math"
	"sort"
	"time"

	"github.com/mkonijn/tafel/internal/generator"
	"github.com/mkonijn/tafel/internal/model"
	"github.com/mkonijn/tafel/internal/stats"
)

// Mode is the controller's top-level state.
type Mode int

// Controller modes.
const (
	ModeMenu Mode = iota
	ModeSetupPractice
	ModeSetupTest
	ModePlaying
	ModeResults
)

// Feedback is the per-question evaluation state shown between answering
// and advancing.
type Feedback int

// Feedback states.
const (
	FeedbackNone Feedback = iota
	FeedbackCorrect
	FeedbackWrong
	FeedbackTimeout
)

// Controller drives one session at a time. All methods are synchronous;
// timer and dwell expiry arrive as calls carrying the generation that was
// current when they were armed, and stale generations are ignored.
type Controller struct {
	rules model.Rules
	clock Clock
	gen   *generator.Generator

	mode     Mode
	sessType model.SessionType
	selected map[int]bool

	questions []model.Question
	index     int
	results   []model.Result

	questionStart time.Time
	feedback      Feedback

	generation uint64
	summary    *stats.Summary
}

// NewController constructs a controller in the menu state.
func NewController(rules model.Rules, clock Clock, gen *generator.Generator) *Controller {
	return &Controller{
		rules:    rules,
		clock:    clock,
		gen:      gen,
		mode:     ModeMenu,
		selected: map[int]bool{},
	}
}

// Mode returns the current state.
func (c *Controller) Mode() Mode {
	return c.mode
}

// Type returns the chosen session type.
func (c *Controller) Type() model.SessionType {
	return c.sessType
}

// Rules returns the session parameters.
func (c *Controller) Rules() model.Rules {
	return c.rules
}

// Generation identifies the currently valid scheduled action. Any tick or
// dwell armed under an older generation must be dropped by the caller.
func (c *Controller) Generation() uint64 {
	return c.generation
}

// SelectSessionType moves from the menu to the setup screen for the given
// session type. No side effects beyond recording the type.
func (c *Controller) SelectSessionType(t model.SessionType) {
	if c.mode != ModeMenu {
		return
	}
	c.sessType = t
	if t == model.Test {
		c.mode = ModeSetupTest
	} else {
		c.mode = ModeSetupPractice
	}
}

// ToggleTable flips table membership during setup.
func (c *Controller) ToggleTable(n int) {
	if c.mode != ModeSetupPractice && c.mode != ModeSetupTest {
		return
	}
	if n < model.MinTable || n > model.MaxTable {
		return
	}
	if c.selected[n] {
		delete(c.selected, n)
		return
	}
	c.selected[n] = true
}

// SelectedTables returns the chosen tables in ascending order.
func (c *Controller) SelectedTables() []int {
	tables := make([]int, 0, len(c.selected))
	for n := range c.selected {
		tables = append(tables, n)
	}
	sort.Ints(tables)
	return tables
}

// PreselectTables seeds the table selection before the first setup
// screen, used for CLI-provided tables. Out-of-range values are ignored.
func (c *Controller) PreselectTables(tables []int) {
	for _, n := range tables {
		if n < model.MinTable || n > model.MaxTable {
			continue
		}
		c.selected[n] = true
	}
}

// StartSession generates the question list and enters the playing state.
// It reports false, leaving the state untouched, when no table is selected.
func (c *Controller) StartSession() bool {
	if c.mode != ModeSetupPractice && c.mode != ModeSetupTest {
		return false
	}
	tables := c.SelectedTables()
	if len(tables) == 0 {
		return false
	}
	c.questions = c.gen.Questions(tables, c.rules.Questions)
	c.index = 0
	c.results = c.results[:0]
	c.feedback = FeedbackNone
	c.summary = nil
	c.mode = ModePlaying
	c.generation++
	c.questionStart = c.clock.Now()
	return true
}

// Current returns the question being asked, or false outside of play.
func (c *Controller) Current() (model.Question, bool) {
	if c.mode != ModePlaying || c.index >= len(c.questions) {
		return model.Question{}, false
	}
	return c.questions[c.index], true
}

// Index returns the zero-based position of the current question.
func (c *Controller) Index() int {
	return c.index
}

// QuestionCount returns the number of questions in the session.
func (c *Controller) QuestionCount() int {
	return len(c.questions)
}

// Results returns the results recorded so far.
func (c *Controller) Results() []model.Result {
	return c.results
}

// Feedback returns the evaluation state of the current question.
func (c *Controller) Feedback() Feedback {
	return c.feedback
}

// Remaining reports time left on the current question's budget. Only Test
// sessions enforce the budget; Practice always reports the full limit.
func (c *Controller) Remaining(now time.Time) time.Duration {
	if c.mode != ModePlaying || c.feedback != FeedbackNone {
		return 0
	}
	if c.sessType != model.Test {
		return c.rules.TimeLimit
	}
	left := c.rules.TimeLimit - now.Sub(c.questionStart)
	if left < 0 {
		return 0
	}
	return left
}

// SubmitAnswer evaluates an answer for the current question and enters the
// feedback state. Submissions outside of play, or after the question has
// already been evaluated, are ignored.
func (c *Controller) SubmitAnswer(value int) {
	if c.mode != ModePlaying || c.feedback != FeedbackNone {
		return
	}
	question, ok := c.Current()
	if !ok {
		return
	}
	elapsed := c.clock.Now().Sub(c.questionStart)
	correct := value == question.Product
	points := 0
	if correct {
		points = c.points(elapsed)
	}
	c.results = append(c.results, model.Result{
		Question: question,
		Answer:   value,
		Answered: true,
		Correct:  correct,
		Elapsed:  elapsed,
		Points:   points,
	})
	if correct {
		c.feedback = FeedbackCorrect
	} else {
		c.feedback = FeedbackWrong
	}
	c.generation++
}

// ExpireQuestion records a timeout for the current question. It applies
// only to Test sessions and only when the given generation is still
// current and the question has not been answered.
func (c *Controller) ExpireQuestion(generation uint64) {
	if generation != c.generation {
		return
	}
	if c.mode != ModePlaying || c.feedback != FeedbackNone || c.sessType != model.Test {
		return
	}
	question, ok := c.Current()
	if !ok {
		return
	}
	c.results = append(c.results, model.Result{
		Question: question,
		Answered: false,
		Correct:  false,
		Elapsed:  c.rules.TimeLimit,
	})
	c.feedback = FeedbackTimeout
	c.generation++
}

// AdvanceAfterFeedback leaves the feedback state: the next question
// becomes current, or the session completes after the last one. Stale
// generations are ignored.
func (c *Controller) AdvanceAfterFeedback(generation uint64) {
	if generation != c.generation {
		return
	}
	if c.mode != ModePlaying || c.feedback == FeedbackNone {
		return
	}
	c.feedback = FeedbackNone
	c.index++
	c.generation++
	if c.index < len(c.questions) {
		c.questionStart = c.clock.Now()
		return
	}
	summary := stats.Summarize(c.sessType, c.rules, c.results)
	c.summary = &summary
	c.mode = ModeResults
}

// Dwell returns how long the feedback state should hold before advancing.
func (c *Controller) Dwell() time.Duration {
	if c.feedback == FeedbackCorrect {
		return c.rules.DwellCorrect
	}
	return c.rules.DwellWrong
}

// Summary returns the completed session's aggregates, or false before
// the session has finished.
func (c *Controller) Summary() (stats.Summary, bool) {
	if c.summary == nil {
		return stats.Summary{}, false
	}
	return *c.summary, true
}

// ReturnToMenu discards session state, including the table selection,
// and invalidates any outstanding scheduled tick or dwell. Persisted
// history is unaffected.
func (c *Controller) ReturnToMenu() {
	c.mode = ModeMenu
	c.selected = map[int]bool{}
	c.questions = nil
	c.index = 0
	c.results = nil
	c.feedback = FeedbackNone
	c.summary = nil
	c.generation++
}

// CancelSetup abandons the table selection and returns to the menu.
func (c *Controller) CancelSetup() {
	if c.mode != ModeSetupPractice && c.mode != ModeSetupTest {
		return
	}
	c.selected = map[int]bool{}
	c.mode = ModeMenu
}

// points converts elapsed time on a correct answer into a speed bonus:
// the full budget's worth of points at zero elapsed, decreasing linearly,
// never below one. Practice answers slower than the budget clamp to one.
func (c *Controller) points(elapsed time.Duration) int {
	limit := c.rules.TimeLimit.Seconds()
	if limit <= 0 {
		return 1
	}
	p := int(math.Ceil(maxPointsPerQuestion * (1 - elapsed.Seconds()/limit)))
	if p < 1 {
		return 1
	}
	return p
}

const maxPointsPerQuestion = 6
