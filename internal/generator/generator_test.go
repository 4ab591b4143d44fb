package generator

import (
	"testing"

	"github.com/mkonijn/tafel/internal/model"
)

func TestQuestionsDrawFromSelectedTables(t *testing.T) {
	gen := NewSeeded(1)
	tables := []int{3, 7}
	questions := gen.Questions(tables, 40)
	if len(questions) != 40 {
		t.Fatalf("expected 40 questions, got %d", len(questions))
	}
	allowed := map[int]bool{3: true, 7: true}
	for i, q := range questions {
		if !allowed[q.Table] {
			t.Fatalf("question %d drawn from table %d, want one of %v", i, q.Table, tables)
		}
		if q.Factor < 1 || q.Factor > model.MaxFactor {
			t.Fatalf("question %d factor %d out of range", i, q.Factor)
		}
		if q.Product != q.Table*q.Factor {
			t.Fatalf("question %d product %d, want %d", i, q.Product, q.Table*q.Factor)
		}
	}
}

func TestQuestionsSeededReproducible(t *testing.T) {
	a := NewSeeded(42).Questions([]int{1, 2, 3}, 40)
	b := NewSeeded(42).Questions([]int{1, 2, 3}, 40)
	if len(a) != len(b) {
		t.Fatalf("lengths differ: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("question %d differs: %+v vs %+v", i, a[i], b[i])
		}
	}
}

func TestQuestionsEmptyInput(t *testing.T) {
	gen := NewSeeded(1)
	if got := gen.Questions(nil, 40); got != nil {
		t.Fatalf("expected nil for empty tables, got %d questions", len(got))
	}
	if got := gen.Questions([]int{5}, 0); got != nil {
		t.Fatalf("expected nil for zero count, got %d questions", len(got))
	}
}
