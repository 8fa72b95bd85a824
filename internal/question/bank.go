// Package question holds the fixed six-question interview bank:
// two easy, two medium, two hard, always in that order.
package question

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/prepdesk/prepdesk/internal/model"
)

// bandOrder is the only legal difficulty sequence for a bank.
var bandOrder = []model.Difficulty{
	model.DifficultyEasy, model.DifficultyEasy,
	model.DifficultyMedium, model.DifficultyMedium,
	model.DifficultyHard, model.DifficultyHard,
}

var defaultQuestions = []model.Question{
	{ID: 1, Text: "What is a REST API and what are its main benefits?", Difficulty: model.DifficultyEasy, TimeLimit: model.TimeLimitEasy},
	{ID: 2, Text: "Explain the difference between a process and a thread.", Difficulty: model.DifficultyEasy, TimeLimit: model.TimeLimitEasy},
	{ID: 3, Text: "How does an index speed up a database query, and when can it hurt?", Difficulty: model.DifficultyMedium, TimeLimit: model.TimeLimitMedium},
	{ID: 4, Text: "Explain the concept of middleware in a web framework and provide an example.", Difficulty: model.DifficultyMedium, TimeLimit: model.TimeLimitMedium},
	{ID: 5, Text: "Design a scalable architecture for a real-time chat application.", Difficulty: model.DifficultyHard, TimeLimit: model.TimeLimitHard},
	{ID: 6, Text: "How would you diagnose and fix high tail latency in a production web service?", Difficulty: model.DifficultyHard, TimeLimit: model.TimeLimitHard},
}

// Bank is an immutable ordered question list.
type Bank struct {
	questions []model.Question
}

// Default returns the compiled-in bank.
func Default() *Bank {
	return &Bank{questions: defaultQuestions}
}

// Load reads a bank from a JSON file of QuestionImport entries. The
// file must contain exactly six questions whose difficulties follow the
// easy,easy,medium,medium,hard,hard order; anything else is rejected so
// existing transcripts keep lining up with the bank.
func Load(path string) (*Bank, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	var imports []model.QuestionImport
	if err := json.Unmarshal(data, &imports); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return FromImports(imports)
}

// FromImports builds and validates a bank from imported questions.
func FromImports(imports []model.QuestionImport) (*Bank, error) {
	if len(imports) != model.InterviewLength {
		return nil, fmt.Errorf("%w: bank needs exactly %d questions, got %d",
			model.ErrInvalidInput, model.InterviewLength, len(imports))
	}
	questions := make([]model.Question, len(imports))
	for i, qi := range imports {
		if qi.Difficulty != bandOrder[i] {
			return nil, fmt.Errorf("%w: question %d must be %s, got %s",
				model.ErrInvalidInput, i+1, bandOrder[i], qi.Difficulty)
		}
		if qi.Text == "" {
			return nil, fmt.Errorf("%w: question %d has empty text", model.ErrInvalidInput, i+1)
		}
		questions[i] = model.Question{
			ID:         i + 1,
			Text:       qi.Text,
			Difficulty: qi.Difficulty,
			TimeLimit:  qi.Difficulty.TimeLimit(),
		}
	}
	return &Bank{questions: questions}, nil
}

// Len returns the number of questions in the bank.
func (b *Bank) Len() int {
	return len(b.questions)
}

// ForIndex returns the question at the 0-based index.
func (b *Bank) ForIndex(i int) (model.Question, error) {
	if i < 0 || i >= len(b.questions) {
		return model.Question{}, fmt.Errorf("%w: question index %d out of range", model.ErrInvalidInput, i)
	}
	return b.questions[i], nil
}

// All returns a copy of the ordered question list.
func (b *Bank) All() []model.Question {
	out := make([]model.Question, len(b.questions))
	copy(out, b.questions)
	return out
}

// TimeLimitForIndex re-derives the time budget for a question slot by
// its difficulty band: slots 0-1 are easy, 2-3 medium, 4-5 hard. Resume
// uses this so the budget never depends on transient session state.
func TimeLimitForIndex(i int) int {
	switch {
	case i < 2:
		return model.TimeLimitEasy
	case i < 4:
		return model.TimeLimitMedium
	default:
		return model.TimeLimitHard
	}
}
