package scorer

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/prepdesk/prepdesk/internal/model"
)

func answersWithScores(scores ...int) []model.Answer {
	answers := make([]model.Answer, len(scores))
	for i, s := range scores {
		answers[i] = model.Answer{
			QuestionID: i + 1,
			Question:   "q",
			Answer:     "a",
			TimeSpent:  10,
			MaxTime:    20,
			Difficulty: model.DifficultyEasy,
			Score:      s,
		}
	}
	return answers
}

func TestHeuristicScoreAnswer(t *testing.T) {
	h := NewHeuristic()
	ctx := context.Background()

	t.Run("bounds", func(t *testing.T) {
		tests := []struct {
			name      string
			answer    string
			timeSpent int
			maxTime   int
		}{
			{"empty fast", "", 0, 20},
			{"empty slow", "", 20, 20},
			{"short", "yes", 5, 60},
			{"long", strings.Repeat("x", 500), 30, 60},
			{"full time", strings.Repeat("x", 200), 120, 120},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				score, err := h.ScoreAnswer(ctx, "question", tt.answer, tt.timeSpent, tt.maxTime)
				if err != nil {
					t.Fatalf("ScoreAnswer: %v", err)
				}
				if score < 0 || score > 100 {
					t.Errorf("score %d outside [0,100]", score)
				}
			})
		}
	})

	t.Run("deterministic", func(t *testing.T) {
		a, err := h.ScoreAnswer(ctx, "q", "a decent answer with some substance", 10, 60)
		if err != nil {
			t.Fatalf("ScoreAnswer: %v", err)
		}
		b, err := h.ScoreAnswer(ctx, "q", "a decent answer with some substance", 10, 60)
		if err != nil {
			t.Fatalf("ScoreAnswer: %v", err)
		}
		if a != b {
			t.Errorf("same inputs scored differently: %d vs %d", a, b)
		}
	})

	t.Run("empty answer with no time left scores zero", func(t *testing.T) {
		score, err := h.ScoreAnswer(ctx, "q", "", 20, 20)
		if err != nil {
			t.Fatalf("ScoreAnswer: %v", err)
		}
		if score != 0 {
			t.Errorf("score = %d, want 0", score)
		}
	})

	t.Run("longer answer scores higher", func(t *testing.T) {
		short, _ := h.ScoreAnswer(ctx, "q", "ok", 10, 60)
		long, _ := h.ScoreAnswer(ctx, "q", strings.Repeat("detail ", 20), 10, 60)
		if long <= short {
			t.Errorf("long answer (%d) should outscore short answer (%d)", long, short)
		}
	})

	t.Run("invalid timing", func(t *testing.T) {
		if _, err := h.ScoreAnswer(ctx, "q", "a", 5, 0); !errors.Is(err, model.ErrInvalidInput) {
			t.Errorf("maxTime=0: expected ErrInvalidInput, got %v", err)
		}
		if _, err := h.ScoreAnswer(ctx, "q", "a", 30, 20); !errors.Is(err, model.ErrInvalidInput) {
			t.Errorf("timeSpent>maxTime: expected ErrInvalidInput, got %v", err)
		}
	})
}

func TestHeuristicJitterStaysInBounds(t *testing.T) {
	h := NewHeuristicWithJitter(42)
	ctx := context.Background()
	for i := 0; i < 50; i++ {
		score, err := h.ScoreAnswer(ctx, "q", strings.Repeat("x", 150), 10, 120)
		if err != nil {
			t.Fatalf("ScoreAnswer: %v", err)
		}
		if score < 0 || score > 100 {
			t.Fatalf("iteration %d: score %d outside [0,100]", i, score)
		}
	}
}

func TestFinalize(t *testing.T) {
	h := NewHeuristic()
	ctx := context.Background()

	t.Run("empty answers rejected", func(t *testing.T) {
		if _, err := h.Finalize(ctx, nil); !errors.Is(err, model.ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput, got %v", err)
		}
	})

	t.Run("uniform eighties", func(t *testing.T) {
		res, err := h.Finalize(ctx, answersWithScores(80, 80, 80, 80, 80, 80))
		if err != nil {
			t.Fatalf("Finalize: %v", err)
		}
		if res.Score != 80 {
			t.Errorf("score = %d, want 80", res.Score)
		}
		if band := model.SummaryBand(res.Score); band != "excellent" {
			t.Errorf("band = %q, want excellent", band)
		}
	})

	t.Run("mean rounds up", func(t *testing.T) {
		// 90+70+50+30+10+0 = 250, mean 41.67, rounds to 42.
		res, err := h.Finalize(ctx, answersWithScores(90, 70, 50, 30, 10, 0))
		if err != nil {
			t.Fatalf("Finalize: %v", err)
		}
		if res.Score != 42 {
			t.Errorf("score = %d, want 42", res.Score)
		}
		if band := model.SummaryBand(res.Score); band != "average" {
			t.Errorf("band = %q, want average", band)
		}
	})

	t.Run("idempotent", func(t *testing.T) {
		answers := answersWithScores(33, 67, 12, 99, 45, 80)
		first, err := h.Finalize(ctx, answers)
		if err != nil {
			t.Fatalf("Finalize: %v", err)
		}
		second, err := h.Finalize(ctx, answers)
		if err != nil {
			t.Fatalf("Finalize: %v", err)
		}
		if first != second {
			t.Errorf("finalize not idempotent: %+v vs %+v", first, second)
		}
	})
}

func TestSummaryBands(t *testing.T) {
	tests := []struct {
		score int
		want  string
	}{
		{100, "excellent"},
		{80, "excellent"},
		{79, "good"},
		{60, "good"},
		{59, "average"},
		{40, "average"},
		{39, "needs improvement"},
		{0, "needs improvement"},
	}
	for _, tt := range tests {
		if got := model.SummaryBand(tt.score); got != tt.want {
			t.Errorf("SummaryBand(%d) = %q, want %q", tt.score, got, tt.want)
		}
	}
}

func TestBuildScoringPrompt(t *testing.T) {
	prompt := buildScoringPrompt("What is a goroutine?", 15, 60)
	if !strings.Contains(prompt, "What is a goroutine?") {
		t.Error("prompt should contain question text")
	}
	if !strings.Contains(prompt, "15 of 60") {
		t.Error("prompt should contain timing")
	}
	if !strings.Contains(prompt, `"score"`) {
		t.Error("prompt should request a score field")
	}
}

func TestClampScore(t *testing.T) {
	tests := []struct{ in, want int }{
		{-5, 0}, {0, 0}, {50, 50}, {100, 100}, {130, 100},
	}
	for _, tt := range tests {
		if got := clampScore(tt.in); got != tt.want {
			t.Errorf("clampScore(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}
}
