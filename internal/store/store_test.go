package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/mkonijn/tafel/internal/model"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	st, err := Open(filepath.Join(t.TempDir(), "tafel.db"))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() {
		if err := st.Close(); err != nil {
			t.Errorf("Close failed: %v", err)
		}
	})
	return st
}

func makeEntry(createdAt time.Time, typ model.SessionType, correct int) model.HistoryEntry {
	return model.HistoryEntry{
		CreatedAt: createdAt,
		Type:      typ,
		Correct:   correct,
		Total:     40,
		Points:    correct * 3,
		Passed:    typ == model.Test && correct >= 36,
		Tables: []model.TableBreakdown{
			{Table: 4, Correct: correct / 2, Wrong: (40 - correct) / 2, Points: correct},
			{Table: 7, Correct: correct - correct/2, Wrong: 40 - correct - (40-correct)/2, Points: correct * 2},
		},
	}
}

func TestHistoryRoundTrip(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	base := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	entries := []model.HistoryEntry{
		makeEntry(base.Add(2*time.Hour), model.Test, 38),
		makeEntry(base.Add(time.Hour), model.Practice, 30),
		makeEntry(base, model.Test, 20),
	}
	if err := st.SaveHistory(ctx, entries); err != nil {
		t.Fatalf("SaveHistory failed: %v", err)
	}

	loaded, err := st.LoadHistory(ctx)
	if err != nil {
		t.Fatalf("LoadHistory failed: %v", err)
	}
	if len(loaded) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(loaded))
	}
	if !loaded[0].CreatedAt.After(loaded[1].CreatedAt) || !loaded[1].CreatedAt.After(loaded[2].CreatedAt) {
		t.Fatalf("expected newest-first ordering, got %v", loaded)
	}
	if loaded[0].Type != model.Test || !loaded[0].Passed || loaded[0].Correct != 38 {
		t.Fatalf("unexpected first entry: %+v", loaded[0])
	}
	if loaded[1].Type != model.Practice || loaded[1].Passed {
		t.Fatalf("unexpected practice entry: %+v", loaded[1])
	}
	if len(loaded[0].Tables) != 2 {
		t.Fatalf("expected 2 breakdown rows, got %d", len(loaded[0].Tables))
	}
	if loaded[0].Tables[0].Table != 4 || loaded[0].Tables[1].Table != 7 {
		t.Fatalf("expected breakdowns ordered by table, got %+v", loaded[0].Tables)
	}
}

func TestSaveHistoryRewritesInFull(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	base := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	first := []model.HistoryEntry{makeEntry(base, model.Test, 38)}
	if err := st.SaveHistory(ctx, first); err != nil {
		t.Fatalf("SaveHistory failed: %v", err)
	}
	second := []model.HistoryEntry{makeEntry(base.Add(time.Hour), model.Practice, 25)}
	if err := st.SaveHistory(ctx, second); err != nil {
		t.Fatalf("SaveHistory failed: %v", err)
	}

	loaded, err := st.LoadHistory(ctx)
	if err != nil {
		t.Fatalf("LoadHistory failed: %v", err)
	}
	if len(loaded) != 1 {
		t.Fatalf("expected the rewrite to replace previous rows, got %d entries", len(loaded))
	}
	if loaded[0].Type != model.Practice {
		t.Fatalf("unexpected surviving entry: %+v", loaded[0])
	}
}

func TestSaveHistoryRefusesOverCap(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	base := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	entries := make([]model.HistoryEntry, model.HistoryCap+1)
	for i := range entries {
		entries[i] = makeEntry(base.Add(time.Duration(i)*time.Minute), model.Practice, 30)
	}
	if err := st.SaveHistory(ctx, entries); err == nil {
		t.Fatal("expected SaveHistory to refuse entries beyond the cap")
	}
}

func TestLoadHistorySkipsMalformedRows(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	base := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	if err := st.SaveHistory(ctx, []model.HistoryEntry{makeEntry(base, model.Test, 38)}); err != nil {
		t.Fatalf("SaveHistory failed: %v", err)
	}
	if _, err := st.db.Exec(
		`INSERT INTO history (created_at, session_type, correct, total, points, passed)
		 VALUES ('not-a-timestamp', 'test', 10, 40, 30, 0)`); err != nil {
		t.Fatalf("insert failed: %v", err)
	}
	if _, err := st.db.Exec(
		`INSERT INTO history (created_at, session_type, correct, total, points, passed)
		 VALUES (?, 'mystery', 10, 40, 30, 0)`, base.Add(time.Hour).Format(time.RFC3339Nano)); err != nil {
		t.Fatalf("insert failed: %v", err)
	}

	loaded, err := st.LoadHistory(ctx)
	if err != nil {
		t.Fatalf("LoadHistory failed: %v", err)
	}
	if len(loaded) != 1 {
		t.Fatalf("expected malformed rows to be skipped, got %d entries", len(loaded))
	}
	if loaded[0].Correct != 38 {
		t.Fatalf("unexpected surviving entry: %+v", loaded[0])
	}
}

func TestClearHistory(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	base := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	if err := st.SaveHistory(ctx, []model.HistoryEntry{makeEntry(base, model.Test, 38)}); err != nil {
		t.Fatalf("SaveHistory failed: %v", err)
	}
	if err := st.ClearHistory(ctx); err != nil {
		t.Fatalf("ClearHistory failed: %v", err)
	}
	loaded, err := st.LoadHistory(ctx)
	if err != nil {
		t.Fatalf("LoadHistory failed: %v", err)
	}
	if len(loaded) != 0 {
		t.Fatalf("expected empty history after clear, got %d entries", len(loaded))
	}
}

func TestColorsRoundTrip(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	defaults := map[int]string{1: "#111111", 2: "#222222", 3: "#333333"}
	colors, err := st.LoadColors(ctx, defaults)
	if err != nil {
		t.Fatalf("LoadColors failed: %v", err)
	}
	if len(colors) != len(defaults) {
		t.Fatalf("expected defaults from an empty store, got %v", colors)
	}

	colors[2] = "#ABCDEF"
	if err := st.SaveColors(ctx, colors); err != nil {
		t.Fatalf("SaveColors failed: %v", err)
	}
	loaded, err := st.LoadColors(ctx, defaults)
	if err != nil {
		t.Fatalf("LoadColors failed: %v", err)
	}
	if loaded[2] != "#ABCDEF" {
		t.Fatalf("expected the override to survive, got %q", loaded[2])
	}
	if loaded[1] != "#111111" || loaded[3] != "#333333" {
		t.Fatalf("expected untouched defaults to survive, got %v", loaded)
	}
}

func TestLoadColorsIgnoresBadRows(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	if _, err := st.db.Exec(`INSERT INTO table_colors (table_no, color) VALUES (42, '#FFFFFF')`); err != nil {
		t.Fatalf("insert failed: %v", err)
	}
	if _, err := st.db.Exec(`INSERT INTO table_colors (table_no, color) VALUES (3, '')`); err != nil {
		t.Fatalf("insert failed: %v", err)
	}

	defaults := map[int]string{3: "#333333"}
	loaded, err := st.LoadColors(ctx, defaults)
	if err != nil {
		t.Fatalf("LoadColors failed: %v", err)
	}
	if len(loaded) != 1 || loaded[3] != "#333333" {
		t.Fatalf("expected bad rows to be ignored, got %v", loaded)
	}
}
