package model

import "time"

// Difficulty represents question difficulty level.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// Per-difficulty time budgets in seconds. These are fixed: every easy
// question gets 20s, medium 60s, hard 120s.
const (
	TimeLimitEasy   = 20
	TimeLimitMedium = 60
	TimeLimitHard   = 120
)

// TimeLimit returns the time budget in seconds for a difficulty.
// Unknown difficulties fall back to the easy budget.
func (d Difficulty) TimeLimit() int {
	switch d {
	case DifficultyMedium:
		return TimeLimitMedium
	case DifficultyHard:
		return TimeLimitHard
	default:
		return TimeLimitEasy
	}
}

// CandidateStatus represents the lifecycle state of a candidate record.
type CandidateStatus string

const (
	StatusPending    CandidateStatus = "pending"
	StatusInProgress CandidateStatus = "in-progress"
	StatusCompleted  CandidateStatus = "completed"
	StatusAbandoned  CandidateStatus = "abandoned"
)

// InterviewLength is the fixed number of questions in one attempt.
const InterviewLength = 6

// Question is one entry in the interview question bank.
type Question struct {
	ID         int        `json:"id"`
	Text       string     `json:"text"`
	Difficulty Difficulty `json:"difficulty"`
	TimeLimit  int        `json:"timeLimit"`
}

// Answer is one submitted answer. It denormalizes the question text,
// difficulty, and time limit as they were at answer time, so later bank
// edits never rewrite history. Answers are immutable once appended.
type Answer struct {
	QuestionID int        `json:"questionId"`
	Question   string     `json:"question"`
	Answer     string     `json:"answer"`
	TimeSpent  int        `json:"timeSpent"`
	MaxTime    int        `json:"maxTime"`
	Difficulty Difficulty `json:"difficulty"`
	Score      int        `json:"score"`
}

// Candidate is the aggregate root for one interview attempt: the
// profile extracted from the resume plus every submitted answer and the
// final score. The repository owns these records; sessions only hold
// the candidate's id.
type Candidate struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Email       string          `json:"email"`
	Phone       string          `json:"phone"`
	ResumeText  string          `json:"resumeText"`
	Score       int             `json:"score"`
	Summary     string          `json:"summary"`
	Answers     []Answer        `json:"answers"`
	Status      CandidateStatus `json:"status"`
	CreatedAt   time.Time       `json:"createdAt"`
	CompletedAt *time.Time      `json:"completedAt,omitempty"`
}

// Clone returns a deep copy. Stores hand out clones so callers never
// alias repository-owned state.
func (c *Candidate) Clone() *Candidate {
	cp := *c
	cp.Answers = make([]Answer, len(c.Answers))
	copy(cp.Answers, c.Answers)
	if c.CompletedAt != nil {
		t := *c.CompletedAt
		cp.CompletedAt = &t
	}
	return &cp
}

// ContactInfo is the best-effort triple the resume extractor produces.
// Any field may be empty; missing fields are completed manually.
type ContactInfo struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	Phone      string `json:"phone"`
	ResumeText string `json:"resumeText"`
}

// MissingFields lists which of the three required contact fields are
// still empty, in a stable order.
func (ci ContactInfo) MissingFields() []string {
	var missing []string
	if ci.Name == "" {
		missing = append(missing, "name")
	}
	if ci.Email == "" {
		missing = append(missing, "email")
	}
	if ci.Phone == "" {
		missing = append(missing, "phone")
	}
	return missing
}

// Summary band thresholds. Downstream consumers (badge colors, the
// dashboard) rely on the 80/60/40 boundaries, not the wording.
const (
	BandExcellent = 80
	BandGood      = 60
	BandAverage   = 40
)

// SummaryBand maps a final score to its band name.
func SummaryBand(score int) string {
	switch {
	case score >= BandExcellent:
		return "excellent"
	case score >= BandGood:
		return "good"
	case score >= BandAverage:
		return "average"
	default:
		return "needs improvement"
	}
}

// QuestionImport is used for loading a custom question bank from JSON.
type QuestionImport struct {
	Text       string     `json:"text"`
	Difficulty Difficulty `json:"difficulty"`
}
