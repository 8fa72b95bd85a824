package question

import (
	"errors"
	"testing"

	"github.com/prepdesk/prepdesk/internal/model"
)

func TestDefaultBankOrder(t *testing.T) {
	b := Default()
	if b.Len() != model.InterviewLength {
		t.Fatalf("expected %d questions, got %d", model.InterviewLength, b.Len())
	}

	wantDifficulty := []model.Difficulty{
		model.DifficultyEasy, model.DifficultyEasy,
		model.DifficultyMedium, model.DifficultyMedium,
		model.DifficultyHard, model.DifficultyHard,
	}
	wantLimit := []int{20, 20, 60, 60, 120, 120}

	for i, q := range b.All() {
		if q.ID != i+1 {
			t.Errorf("question %d: ID = %d, want %d", i, q.ID, i+1)
		}
		if q.Difficulty != wantDifficulty[i] {
			t.Errorf("question %d: difficulty = %s, want %s", i, q.Difficulty, wantDifficulty[i])
		}
		if q.TimeLimit != wantLimit[i] {
			t.Errorf("question %d: time limit = %d, want %d", i, q.TimeLimit, wantLimit[i])
		}
		if q.Text == "" {
			t.Errorf("question %d has empty text", i)
		}
	}
}

func TestForIndex(t *testing.T) {
	b := Default()

	q, err := b.ForIndex(0)
	if err != nil {
		t.Fatalf("ForIndex(0): %v", err)
	}
	if q.ID != 1 {
		t.Errorf("ForIndex(0).ID = %d, want 1", q.ID)
	}

	for _, i := range []int{-1, 6, 100} {
		if _, err := b.ForIndex(i); !errors.Is(err, model.ErrInvalidInput) {
			t.Errorf("ForIndex(%d): expected ErrInvalidInput, got %v", i, err)
		}
	}
}

func TestTimeLimitForIndex(t *testing.T) {
	want := []int{20, 20, 60, 60, 120, 120}
	for i, w := range want {
		if got := TimeLimitForIndex(i); got != w {
			t.Errorf("TimeLimitForIndex(%d) = %d, want %d", i, got, w)
		}
	}
}

func TestFromImports(t *testing.T) {
	valid := []model.QuestionImport{
		{Text: "e1", Difficulty: model.DifficultyEasy},
		{Text: "e2", Difficulty: model.DifficultyEasy},
		{Text: "m1", Difficulty: model.DifficultyMedium},
		{Text: "m2", Difficulty: model.DifficultyMedium},
		{Text: "h1", Difficulty: model.DifficultyHard},
		{Text: "h2", Difficulty: model.DifficultyHard},
	}

	b, err := FromImports(valid)
	if err != nil {
		t.Fatalf("FromImports: %v", err)
	}
	if q, _ := b.ForIndex(2); q.TimeLimit != 60 {
		t.Errorf("imported medium question time limit = %d, want 60", q.TimeLimit)
	}

	t.Run("wrong count", func(t *testing.T) {
		if _, err := FromImports(valid[:5]); !errors.Is(err, model.ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput, got %v", err)
		}
	})

	t.Run("wrong band order", func(t *testing.T) {
		shuffled := make([]model.QuestionImport, len(valid))
		copy(shuffled, valid)
		shuffled[0], shuffled[4] = shuffled[4], shuffled[0]
		if _, err := FromImports(shuffled); !errors.Is(err, model.ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput, got %v", err)
		}
	})

	t.Run("empty text", func(t *testing.T) {
		blank := make([]model.QuestionImport, len(valid))
		copy(blank, valid)
		blank[3].Text = ""
		if _, err := FromImports(blank); !errors.Is(err, model.ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput, got %v", err)
		}
	})
}
