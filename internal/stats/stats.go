// Package stats contains scoring aggregation and reporting.
package stats

import (
	"math"
	"sort"
	"strings"

	"github.com/mkonijn/tafel/internal/model"
)

const sparkChars = " .:-=+*#%@"

// TableStat aggregates results for one multiplication table.
type TableStat struct {
	Table   int
	Correct int
	Wrong   int
	Points  int
}

// Accuracy returns the correct fraction for the table, 0 when unasked.
func (t TableStat) Accuracy() float64 {
	total := t.Correct + t.Wrong
	if total == 0 {
		return 0
	}
	return float64(t.Correct) / float64(total)
}

// NeedsPractice reports whether the table's accuracy falls strictly below
// the threshold.
func (t TableStat) NeedsPractice(threshold float64) bool {
	return t.Accuracy() < threshold
}

// Summary holds the aggregates of a completed session.
type Summary struct {
	Type     model.SessionType
	Correct  int
	Total    int
	Points   int
	Passed   bool
	PerTable []TableStat
	Mistakes []model.Result
}

// Summarize computes session aggregates from the recorded results. Only
// Test sessions can pass; either threshold alone suffices.
func Summarize(typ model.SessionType, rules model.Rules, results []model.Result) Summary {
	s := Summary{Type: typ, Total: len(results)}
	for _, r := range results {
		if r.Correct {
			s.Correct++
		} else {
			s.Mistakes = append(s.Mistakes, r)
		}
		s.Points += r.Points
	}
	if typ == model.Test {
		s.Passed = s.Correct >= rules.PassCorrect || s.Points >= rules.PassPoints
	}
	s.PerTable = PerTable(results)
	return s
}

// Breakdown converts the per-table aggregates into the persisted form.
func (s Summary) Breakdown() []model.TableBreakdown {
	out := make([]model.TableBreakdown, 0, len(s.PerTable))
	for _, t := range s.PerTable {
		out = append(out, model.TableBreakdown{
			Table:   t.Table,
			Correct: t.Correct,
			Wrong:   t.Wrong,
			Points:  t.Points,
		})
	}
	return out
}

// PerTable groups results by the question's table, ascending.
func PerTable(results []model.Result) []TableStat {
	byTable := map[int]*TableStat{}
	for _, r := range results {
		entry, ok := byTable[r.Question.Table]
		if !ok {
			entry = &TableStat{Table: r.Question.Table}
			byTable[r.Question.Table] = entry
		}
		if r.Correct {
			entry.Correct++
		} else {
			entry.Wrong++
		}
		entry.Points += r.Points
	}
	out := make([]TableStat, 0, len(byTable))
	for _, entry := range byTable {
		out = append(out, *entry)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Table < out[j].Table
	})
	return out
}

// WeakTables selects the tables whose accuracy falls strictly below the
// threshold, ascending.
func WeakTables(perTable []TableStat, threshold float64) []int {
	var weak []int
	for _, t := range perTable {
		if t.NeedsPractice(threshold) {
			weak = append(weak, t.Table)
		}
	}
	return weak
}

// AggregateTables merges per-table breakdowns across history entries.
func AggregateTables(entries []model.HistoryEntry) []TableStat {
	byTable := map[int]*TableStat{}
	for _, entry := range entries {
		for _, b := range entry.Tables {
			agg, ok := byTable[b.Table]
			if !ok {
				agg = &TableStat{Table: b.Table}
				byTable[b.Table] = agg
			}
			agg.Correct += b.Correct
			agg.Wrong += b.Wrong
			agg.Points += b.Points
		}
	}
	out := make([]TableStat, 0, len(byTable))
	for _, agg := range byTable {
		out = append(out, *agg)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Table < out[j].Table
	})
	return out
}

// MovingAverage computes a rolling mean over the provided window size.
func MovingAverage(values []float64, window int) []float64 {
	if window <= 1 || len(values) == 0 {
		out := make([]float64, len(values))
		copy(out, values)
		return out
	}
	out := make([]float64, len(values))
	var sum float64
	for i := 0; i < len(values); i++ {
		sum += values[i]
		if i >= window {
			sum -= values[i-window]
		}
		den := float64(i + 1)
		if i >= window {
			den = float64(window)
		}
		out[i] = sum / den
	}
	return out
}

// Sparkline renders a single-line ASCII sparkline for the values.
func Sparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}
	minVal := values[0]
	maxVal := values[0]
	for _, v := range values[1:] {
		if v < minVal {
			minVal = v
		}
		if v > maxVal {
			maxVal = v
		}
	}
	if math.Abs(maxVal-minVal) < 1e-9 {
		return strings.Repeat(string(sparkChars[len(sparkChars)/2]), len(values))
	}
	var b strings.Builder
	for _, v := range values {
		pos := (v - minVal) / (maxVal - minVal)
		idx := int(math.Round(pos * float64(len(sparkChars)-1)))
		if idx < 0 {
			idx = 0
		}
		if idx >= len(sparkChars) {
			idx = len(sparkChars) - 1
		}
		b.WriteByte(sparkChars[idx])
	}
	return b.String()
}
