package scorer

import (
	"context"
	"fmt"
	"math"
	"math/rand/v2"
	"sync"

	"github.com/prepdesk/prepdesk/internal/model"
)

// Heuristic is the reference scoring backend: a length proxy for answer
// substance plus a speed proxy for confidence. It is deterministic
// unless jitter is enabled, so it doubles as the test fixture.
type Heuristic struct {
	mu  sync.Mutex
	rng *rand.Rand // nil means no jitter
}

// NewHeuristic returns a deterministic heuristic scorer.
func NewHeuristic() *Heuristic {
	return &Heuristic{}
}

// NewHeuristicWithJitter returns a heuristic scorer that multiplies the
// base score by a random factor in [0.8, 1.2), seeded for
// reproducibility. Jitter exists to mimic evaluator variance and should
// stay off in tests.
func NewHeuristicWithJitter(seed uint64) *Heuristic {
	return &Heuristic{rng: rand.New(rand.NewPCG(seed, seed))}
}

// ScoreAnswer scores one answer from its length and how much of the
// time budget was left.
func (h *Heuristic) ScoreAnswer(_ context.Context, _ string, answerText string, timeSpent, maxTime int) (int, error) {
	if maxTime <= 0 {
		return 0, fmt.Errorf("%w: maxTime must be positive, got %d", model.ErrInvalidInput, maxTime)
	}
	if timeSpent < 0 || timeSpent > maxTime {
		return 0, fmt.Errorf("%w: timeSpent %d outside [0,%d]", model.ErrInvalidInput, timeSpent, maxTime)
	}

	lengthScore := math.Min(float64(len(answerText))/100, 1)
	timeRatio := float64(timeSpent) / float64(maxTime)
	base := lengthScore*0.7 + (1-timeRatio)*0.3

	factor := 1.0
	if h.rng != nil {
		h.mu.Lock()
		factor = 0.8 + h.rng.Float64()*0.4
		h.mu.Unlock()
	}

	score := int(math.Round(math.Min(base*factor*100, 100)))
	if score < 0 {
		score = 0
	}
	return score, nil
}

// Finalize aggregates per-answer scores into the final result.
func (h *Heuristic) Finalize(_ context.Context, answers []model.Answer) (Result, error) {
	return finalize(answers)
}
