// Package scorer turns answers into 0-100 scores. The scoring backend
// is a seam: the heuristic implementation is a stand-in for a real
// evaluator and an LLM-backed implementation can be swapped in without
// touching the orchestrator.
package scorer

import (
	"context"
	"fmt"
	"math"

	"github.com/prepdesk/prepdesk/internal/model"
)

// Result is the outcome of finalizing a completed answer set.
type Result struct {
	Score   int    `json:"score"`
	Summary string `json:"summary"`
}

// Scorer evaluates answers. ScoreAnswer must return an integer in
// [0,100] computed only from its four inputs. Finalize must reject an
// empty answer set with model.ErrInvalidInput.
type Scorer interface {
	ScoreAnswer(ctx context.Context, questionText, answerText string, timeSpent, maxTime int) (int, error)
	Finalize(ctx context.Context, answers []model.Answer) (Result, error)
}

// Summary sentences per band. The 80/60/40 boundaries are the contract;
// the wording is presentation.
var bandSummaries = map[string]string{
	"excellent":         "Excellent candidate with strong technical knowledge and good communication skills.",
	"good":              "Good candidate with solid understanding of concepts, some areas for improvement.",
	"average":           "Average candidate with basic knowledge, needs significant development.",
	"needs improvement": "Candidate needs substantial improvement in technical skills and knowledge.",
}

// finalize computes the aggregate score and summary from per-answer
// scores: round(mean), then the band sentence. Shared by every backend
// so the result is deterministic given the same answer set.
func finalize(answers []model.Answer) (Result, error) {
	if len(answers) == 0 {
		return Result{}, fmt.Errorf("%w: cannot finalize with zero answers", model.ErrInvalidInput)
	}
	total := 0
	for _, a := range answers {
		total += a.Score
	}
	score := int(math.Round(float64(total) / float64(len(answers))))
	return Result{
		Score:   score,
		Summary: bandSummaries[model.SummaryBand(score)],
	}, nil
}
