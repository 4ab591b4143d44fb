package stats

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/mkonijn/tafel/internal/model"
	"github.com/mkonijn/tafel/internal/store"
)

func seedReportStore(t *testing.T) *store.Store {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "tafel.db"))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() {
		if err := st.Close(); err != nil {
			t.Errorf("Close failed: %v", err)
		}
	})
	base := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	entries := []model.HistoryEntry{
		{CreatedAt: base.Add(3 * time.Hour), Type: model.Test, Correct: 38, Total: 40, Points: 150, Passed: true},
		{CreatedAt: base.Add(2 * time.Hour), Type: model.Practice, Correct: 30, Total: 40, Points: 90},
		{CreatedAt: base.Add(time.Hour), Type: model.Test, Correct: 20, Total: 40, Points: 60},
		{CreatedAt: base, Type: model.Practice, Correct: 10, Total: 40, Points: 30},
	}
	if err := st.SaveHistory(context.Background(), entries); err != nil {
		t.Fatalf("SaveHistory failed: %v", err)
	}
	return st
}

func TestBuildReportTypeFilter(t *testing.T) {
	st := seedReportStore(t)
	report, err := BuildReport(context.Background(), st, model.HistoryFilter{Type: model.Test})
	if err != nil {
		t.Fatalf("BuildReport failed: %v", err)
	}
	if len(report.Entries) != 2 {
		t.Fatalf("expected 2 test entries, got %d", len(report.Entries))
	}
	for _, entry := range report.Entries {
		if entry.Type != model.Test {
			t.Fatalf("unexpected entry type %q", entry.Type)
		}
	}
}

func TestBuildReportLastCap(t *testing.T) {
	st := seedReportStore(t)
	report, err := BuildReport(context.Background(), st, model.HistoryFilter{Last: 2})
	if err != nil {
		t.Fatalf("BuildReport failed: %v", err)
	}
	if len(report.Entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(report.Entries))
	}
	if report.Entries[0].Points != 150 {
		t.Fatalf("expected the newest entries to be kept, got %+v", report.Entries[0])
	}
}

func TestSeriesOldestFirst(t *testing.T) {
	st := seedReportStore(t)
	report, err := BuildReport(context.Background(), st, model.HistoryFilter{})
	if err != nil {
		t.Fatalf("BuildReport failed: %v", err)
	}
	points := PointsSeries(report.Entries)
	want := []float64{30, 60, 90, 150}
	if len(points) != len(want) {
		t.Fatalf("expected %d points, got %d", len(want), len(points))
	}
	for i := range want {
		if points[i] != want[i] {
			t.Fatalf("index %d: got %v, want %v", i, points[i], want[i])
		}
	}
	accuracy := AccuracySeries(report.Entries)
	if accuracy[0] != 25 || accuracy[len(accuracy)-1] != 95 {
		t.Fatalf("unexpected accuracy series %v", accuracy)
	}
}
