package store

import (
	"context"
	"fmt"
	"time"

	"github.com/prepdesk/prepdesk/internal/model"
)

// ExportAll builds export-ready results from every candidate record.
func ExportAll(ctx context.Context, repo Repository) (model.InterviewExport, error) {
	candidates, err := repo.List(ctx)
	if err != nil {
		return model.InterviewExport{}, fmt.Errorf("list candidates: %w", err)
	}

	results := make([]model.CandidateResult, 0, len(candidates))
	for _, c := range candidates {
		var answers []model.AnswerResult
		for _, a := range c.Answers {
			answers = append(answers, model.AnswerResult{
				QuestionID: a.QuestionID,
				Question:   a.Question,
				Difficulty: a.Difficulty,
				Answer:     a.Answer,
				TimeSpent:  a.TimeSpent,
				MaxTime:    a.MaxTime,
				Score:      a.Score,
			})
		}

		cr := model.CandidateResult{
			ID:          c.ID,
			Name:        c.Name,
			Email:       c.Email,
			Phone:       c.Phone,
			Status:      c.Status,
			Score:       c.Score,
			Summary:     c.Summary,
			CreatedAt:   c.CreatedAt,
			CompletedAt: c.CompletedAt,
			Answers:     answers,
		}
		if c.Status == model.StatusCompleted {
			cr.Band = model.SummaryBand(c.Score)
		}
		results = append(results, cr)
	}

	return model.InterviewExport{
		ExportedAt:    time.Now().UTC(),
		NumQuestions:  model.InterviewLength,
		NumCandidates: len(results),
		Candidates:    results,
	}, nil
}
