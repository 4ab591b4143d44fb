// Package model defines shared data structures.
package model

import "time"

// MinTable and MaxTable bound the multiplication tables on offer.
const (
	MinTable = 1
	MaxTable = 10
)

// MaxFactor is the largest second factor drawn for a question.
const MaxFactor = 10

// HistoryCap is the maximum number of persisted history entries.
const HistoryCap = 20

// SessionType distinguishes untimed practice from timed tests.
type SessionType string

// Session types.
const (
	Practice SessionType = "practice"
	Test     SessionType = "test"
)

// Question is a single multiplication prompt. Table is the selected
// multiplication table the question was drawn from and doubles as the
// first factor.
type Question struct {
	Table   int
	Factor  int
	Product int
}

// Result records the outcome of one answered question. Answered is false
// when the time budget expired without a submission. Created once per
// question and never mutated.
type Result struct {
	Question Question
	Answer   int
	Answered bool
	Correct  bool
	Elapsed  time.Duration
	Points   int
}

// TableBreakdown aggregates results for one table within a session.
type TableBreakdown struct {
	Table   int
	Correct int
	Wrong   int
	Points  int
}

// HistoryEntry is one persisted session outcome, newest-first in storage.
type HistoryEntry struct {
	ID        int64
	CreatedAt time.Time
	Type      SessionType
	Correct   int
	Total     int
	Points    int
	Passed    bool
	Tables    []TableBreakdown
}

// Rules holds the tunable session parameters.
type Rules struct {
	Questions    int
	TimeLimit    time.Duration
	DwellCorrect time.Duration
	DwellWrong   time.Duration
	PassCorrect  int
	PassPoints   int
	WeakBelow    float64
}

// DefaultRules returns the standard game parameters.
func DefaultRules() Rules {
	return Rules{
		Questions:    40,
		TimeLimit:    6 * time.Second,
		DwellCorrect: 800 * time.Millisecond,
		DwellWrong:   2 * time.Second,
		PassCorrect:  36,
		PassPoints:   120,
		WeakBelow:    0.8,
	}
}

// HistoryFilter narrows which history entries the history views load.
type HistoryFilter struct {
	Type        SessionType // empty means both types
	Last        int         // 0 means all
	CurveWindow int
}
