package model

import "time"

// InterviewExport is the top-level JSON structure for result export.
type InterviewExport struct {
	ExportedAt    time.Time         `json:"exported_at"`
	NumQuestions  int               `json:"num_questions"`
	NumCandidates int               `json:"num_candidates"`
	Candidates    []CandidateResult `json:"candidates"`
}

// CandidateResult holds one candidate's attempt for export.
type CandidateResult struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Email       string          `json:"email"`
	Phone       string          `json:"phone"`
	Status      CandidateStatus `json:"status"`
	Score       int             `json:"score"`
	Summary     string          `json:"summary"`
	Band        string          `json:"band,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	CompletedAt *time.Time      `json:"completed_at,omitempty"`
	Answers     []AnswerResult  `json:"answers"`
}

// AnswerResult holds per-question transcript data for export.
type AnswerResult struct {
	QuestionID int        `json:"question_id"`
	Question   string     `json:"question"`
	Difficulty Difficulty `json:"difficulty"`
	Answer     string     `json:"answer"`
	TimeSpent  int        `json:"time_spent"`
	MaxTime    int        `json:"max_time"`
	Score      int        `json:"score"`
}
