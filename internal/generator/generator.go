// Package generator builds randomized question sequences.
package generator

import (
	"math/rand"
	"time"

	"github.com/mkonijn/tafel/internal/model"
)

// Generator produces randomized multiplication questions.
type Generator struct {
	rnd *rand.Rand
}

// New returns a Generator seeded with the current time.
func New() *Generator {
	return NewSeeded(time.Now().UnixNano())
}

// NewSeeded returns a Generator with a fixed seed for reproducible output.
func NewSeeded(seed int64) *Generator {
	return &Generator{rnd: rand.New(rand.NewSource(seed))}
}

// Questions draws count questions. Each question picks a table uniformly
// from tables and a second factor uniformly from 1 to MaxFactor. Draws are
// independent, so repeats are possible.
func (g *Generator) Questions(tables []int, count int) []model.Question {
	if len(tables) == 0 || count <= 0 {
		return nil
	}
	questions := make([]model.Question, 0, count)
	for i := 0; i < count; i++ {
		table := tables[g.rnd.Intn(len(tables))]
		factor := g.rnd.Intn(model.MaxFactor) + 1
		questions = append(questions, model.Question{
			Table:   table,
			Factor:  factor,
			Product: table * factor,
		})
	}
	return questions
}
