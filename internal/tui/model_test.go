package tui

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/mkonijn/tafel/internal/model"
	"github.com/mkonijn/tafel/internal/store"
)

func TestPushHistoryEvictsOldest(t *testing.T) {
	base := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	var history []model.HistoryEntry
	for i := 0; i < model.HistoryCap+1; i++ {
		history = pushHistory(history, model.HistoryEntry{
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
			Type:      model.Practice,
			Correct:   i,
			Total:     40,
		})
	}
	if len(history) != model.HistoryCap {
		t.Fatalf("expected %d entries after %d sessions, got %d", model.HistoryCap, model.HistoryCap+1, len(history))
	}
	if history[0].Correct != model.HistoryCap {
		t.Fatalf("expected the newest session first, got %+v", history[0])
	}
	for _, entry := range history {
		if entry.Correct == 0 {
			t.Fatal("expected the oldest session to be evicted")
		}
	}
	for i := 1; i < len(history); i++ {
		if !history[i-1].CreatedAt.After(history[i].CreatedAt) {
			t.Fatalf("expected newest-first ordering at index %d", i)
		}
	}
}

func TestPushHistoryPersistsWithinCap(t *testing.T) {
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
	ctx := context.Background()
	var history []model.HistoryEntry
	for i := 0; i < model.HistoryCap+1; i++ {
		history = pushHistory(history, model.HistoryEntry{
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
			Type:      model.Test,
			Correct:   36,
			Total:     40,
			Points:    100 + i,
			Passed:    true,
		})
		if err := st.SaveHistory(ctx, history); err != nil {
			t.Fatalf("SaveHistory failed on session %d: %v", i, err)
		}
	}

	loaded, err := st.LoadHistory(ctx)
	if err != nil {
		t.Fatalf("LoadHistory failed: %v", err)
	}
	if len(loaded) != model.HistoryCap {
		t.Fatalf("expected %d persisted entries, got %d", model.HistoryCap, len(loaded))
	}
	if loaded[0].Points != 100+model.HistoryCap {
		t.Fatalf("expected the newest session first, got %+v", loaded[0])
	}
	if loaded[len(loaded)-1].Points != 101 {
		t.Fatalf("expected the oldest session evicted, got %+v", loaded[len(loaded)-1])
	}
}
