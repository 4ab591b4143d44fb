package tui

import (
	"strings"
	"testing"
	"time"

	"github.com/mkonijn/tafel/internal/model"
)

func TestFormatQuestion(t *testing.T) {
	got := formatQuestion(model.Question{Table: 7, Factor: 8, Product: 56})
	if got != "7 × 8 =" {
		t.Fatalf("unexpected question text %q", got)
	}
}

func TestCountdownBar(t *testing.T) {
	full := countdownBar(6*time.Second, 6*time.Second)
	if !strings.HasPrefix(full, strings.Repeat("█", countdownCells)) {
		t.Fatalf("expected a full bar, got %q", full)
	}
	if !strings.HasSuffix(full, "6.0s") {
		t.Fatalf("expected the remaining seconds suffix, got %q", full)
	}

	half := countdownBar(3*time.Second, 6*time.Second)
	if strings.Count(half, "█") != countdownCells/2 {
		t.Fatalf("expected a half-filled bar, got %q", half)
	}

	empty := countdownBar(-time.Second, 6*time.Second)
	if strings.Count(empty, "█") != 0 || !strings.HasSuffix(empty, "0.0s") {
		t.Fatalf("expected an empty clamped bar, got %q", empty)
	}

	if got := countdownBar(time.Second, 0); got != "" {
		t.Fatalf("expected no bar without a limit, got %q", got)
	}
}

func TestTableForKey(t *testing.T) {
	cases := []struct {
		key   string
		table int
		ok    bool
	}{
		{"1", 1, true},
		{"9", 9, true},
		{"0", 10, true},
		{"a", 0, false},
		{"", 0, false},
		{"12", 0, false},
	}
	for _, tc := range cases {
		table, ok := tableForKey(tc.key)
		if table != tc.table || ok != tc.ok {
			t.Fatalf("tableForKey(%q) = (%d, %v), want (%d, %v)", tc.key, table, ok, tc.table, tc.ok)
		}
	}
}

func TestJoinTables(t *testing.T) {
	if got := joinTables([]int{3, 7, 10}); got != "3, 7, 10" {
		t.Fatalf("unexpected table list %q", got)
	}
	if got := joinTables(nil); got != "" {
		t.Fatalf("expected an empty list, got %q", got)
	}
}

func TestDigitsOnly(t *testing.T) {
	if err := digitsOnly("42"); err != nil {
		t.Fatalf("expected digits to validate, got %v", err)
	}
	if err := digitsOnly(""); err != nil {
		t.Fatalf("expected empty input to validate, got %v", err)
	}
	if err := digitsOnly("4x"); err == nil {
		t.Fatal("expected non-digits to be rejected")
	}
}
