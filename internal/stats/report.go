// Package stats contains scoring aggregation and reporting.
package stats

import (
	"context"

	"github.com/mkonijn/tafel/internal/model"
	"github.com/mkonijn/tafel/internal/store"
)

// Report contains precomputed data for history rendering.
type Report struct {
	Entries []model.HistoryEntry // newest-first
	Tables  []TableStat          // aggregated across Entries
}

// BuildReport loads and filters history for rendering.
func BuildReport(ctx context.Context, st *store.Store, filter model.HistoryFilter) (Report, error) {
	entries, err := st.LoadHistory(ctx)
	if err != nil {
		return Report{}, err
	}
	if filter.Type != "" {
		kept := entries[:0]
		for _, entry := range entries {
			if entry.Type == filter.Type {
				kept = append(kept, entry)
			}
		}
		entries = kept
	}
	if filter.Last > 0 && len(entries) > filter.Last {
		entries = entries[:filter.Last]
	}
	return Report{
		Entries: entries,
		Tables:  AggregateTables(entries),
	}, nil
}

// PointsSeries returns total points per session, oldest first.
func PointsSeries(entries []model.HistoryEntry) []float64 {
	out := make([]float64, len(entries))
	for i, entry := range entries {
		out[len(entries)-1-i] = float64(entry.Points)
	}
	return out
}

// AccuracySeries returns the correct percentage per session, oldest first.
func AccuracySeries(entries []model.HistoryEntry) []float64 {
	out := make([]float64, len(entries))
	for i, entry := range entries {
		acc := 0.0
		if entry.Total > 0 {
			acc = float64(entry.Correct) / float64(entry.Total) * 100
		}
		out[len(entries)-1-i] = acc
	}
	return out
}
