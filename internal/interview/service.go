// Package interview orchestrates one attempt end to end: it glues the
// question bank, the session manager, the scorer, and the candidate
// repository together.
package interview

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/prepdesk/prepdesk/internal/model"
	"github.com/prepdesk/prepdesk/internal/question"
	"github.com/prepdesk/prepdesk/internal/scorer"
	"github.com/prepdesk/prepdesk/internal/session"
	"github.com/prepdesk/prepdesk/internal/store"
)

// Service drives interview attempts.
type Service struct {
	bank     *question.Bank
	scorer   scorer.Scorer
	repo     store.Repository
	sessions *session.Manager

	// locksMu guards locks; each candidate gets one mutex so
	// submissions for the same candidate never overlap while scoring
	// is in flight.
	locksMu sync.Mutex
	locks   map[string]*sync.Mutex
}

// New creates the orchestrator and its session manager.
func New(bank *question.Bank, sc scorer.Scorer, repo store.Repository) *Service {
	s := &Service{
		bank:   bank,
		scorer: sc,
		repo:   repo,
		locks:  make(map[string]*sync.Mutex),
	}
	s.sessions = session.NewManager(s.autoSubmit)
	return s
}

// Bank exposes the question bank for read-only display.
func (s *Service) Bank() *question.Bank {
	return s.bank
}

// Close ends all live sessions.
func (s *Service) Close() {
	s.sessions.Close()
}

// BeginSession creates a candidate from complete contact info and
// starts the countdown on question 0. Incomplete contact info returns a
// ContactIncompleteError naming the missing fields; no candidate record
// exists until all three are present.
func (s *Service) BeginSession(ctx context.Context, contact model.ContactInfo) (*model.Candidate, error) {
	if missing := contact.MissingFields(); len(missing) > 0 {
		return nil, &model.ContactIncompleteError{Missing: missing}
	}

	first, err := s.bank.ForIndex(0)
	if err != nil {
		return nil, err
	}

	c := &model.Candidate{
		ID:         uuid.NewString(),
		Name:       contact.Name,
		Email:      contact.Email,
		Phone:      contact.Phone,
		ResumeText: contact.ResumeText,
		Status:     model.StatusInProgress,
		CreatedAt:  time.Now().UTC(),
	}
	if err := s.repo.Insert(ctx, c); err != nil {
		return nil, fmt.Errorf("insert candidate: %w", err)
	}

	s.sessions.Start(c.ID, 0, first.TimeLimit)
	slog.Info("interview started", "candidate_id", c.ID, "name", c.Name)
	return c, nil
}

// SubmitAnswer scores and records the answer to the current question,
// then advances the session, or finalizes the attempt if this was the
// last question. A scoring failure mutates nothing; the caller may
// retry the submission.
func (s *Service) SubmitAnswer(ctx context.Context, candidateID, text string) (*model.Candidate, error) {
	lock := s.candidateLock(candidateID)
	lock.Lock()
	defer lock.Unlock()
	return s.submit(ctx, candidateID, text)
}

func (s *Service) submit(ctx context.Context, candidateID, text string) (*model.Candidate, error) {
	st, ok := s.sessions.Get(candidateID)
	if !ok || !st.Active {
		return nil, fmt.Errorf("no active session for candidate %s: %w", candidateID, model.ErrInvalidState)
	}

	c, err := s.repo.FindByID(ctx, candidateID)
	if err != nil {
		return nil, err
	}

	q, err := s.bank.ForIndex(st.QuestionIndex)
	if err != nil {
		return nil, err
	}

	timeSpent := q.TimeLimit - st.TimeRemaining
	if timeSpent < 0 {
		timeSpent = 0
	}
	if timeSpent > q.TimeLimit {
		timeSpent = q.TimeLimit
	}

	// Scoring must complete before any state moves, so timeSpent and
	// the next countdown come from a consistent snapshot.
	score, err := s.scorer.ScoreAnswer(ctx, q.Text, text, timeSpent, q.TimeLimit)
	if err != nil {
		return nil, fmt.Errorf("score answer for question %d: %w", q.ID, err)
	}

	c.Answers = append(c.Answers, model.Answer{
		QuestionID: q.ID,
		Question:   q.Text,
		Answer:     text,
		TimeSpent:  timeSpent,
		MaxTime:    q.TimeLimit,
		Difficulty: q.Difficulty,
		Score:      score,
	})

	if len(c.Answers) >= s.bank.Len() {
		result, err := s.scorer.Finalize(ctx, c.Answers)
		if err != nil {
			return nil, fmt.Errorf("finalize attempt: %w", err)
		}
		now := time.Now().UTC()
		c.Score = result.Score
		c.Summary = result.Summary
		c.Status = model.StatusCompleted
		c.CompletedAt = &now

		if err := s.repo.UpdateByID(ctx, c); err != nil {
			return nil, fmt.Errorf("persist completed candidate: %w", err)
		}
		s.sessions.End(candidateID)
		s.dropCandidateLock(candidateID)
		slog.Info("interview completed", "candidate_id", candidateID, "score", c.Score, "band", model.SummaryBand(c.Score))
		return c, nil
	}

	if err := s.repo.UpdateByID(ctx, c); err != nil {
		return nil, fmt.Errorf("persist answer: %w", err)
	}
	next, err := s.bank.ForIndex(len(c.Answers))
	if err != nil {
		return nil, err
	}
	if err := s.sessions.Advance(candidateID, next.TimeLimit); err != nil {
		return nil, err
	}
	slog.Info("answer recorded", "candidate_id", candidateID, "question_id", q.ID, "score", score, "time_spent", timeSpent)
	return c, nil
}

// autoSubmit is the countdown expiry callback. It submits whatever the
// candidate had typed, including nothing at all. One retry covers
// transient scoring failures; after that the session pauses so the
// attempt stays resumable instead of recording a bogus score.
func (s *Service) autoSubmit(candidateID, draft string) {
	lock := s.candidateLock(candidateID)
	lock.Lock()
	defer lock.Unlock()

	// A manual submission may have won the race and advanced the
	// session; only act if the countdown is still sitting at zero.
	st, ok := s.sessions.Get(candidateID)
	if !ok || !st.Active || st.TimeRemaining != 0 {
		return
	}

	ctx := context.Background()
	if _, err := s.submit(ctx, candidateID, draft); err != nil {
		slog.Warn("auto-submit failed, retrying", "candidate_id", candidateID, "error", err)
		if _, err := s.submit(ctx, candidateID, draft); err != nil {
			slog.Error("auto-submit failed, pausing session", "candidate_id", candidateID, "error", err)
			_ = s.sessions.Pause(candidateID)
		}
	}
}

// Resume restarts an interrupted attempt at its first unanswered
// question. Only fully submitted answers survive; partial work on the
// question that was open during the interruption is gone.
func (s *Service) Resume(ctx context.Context, candidateID string) (*model.Candidate, session.State, error) {
	c, err := s.repo.FindByID(ctx, candidateID)
	if err != nil {
		return nil, session.State{}, err
	}
	if c.Status != model.StatusInProgress || len(c.Answers) >= s.bank.Len() {
		return nil, session.State{}, fmt.Errorf("candidate %s is not resumable (status %s, %d answers): %w",
			candidateID, c.Status, len(c.Answers), model.ErrInvalidState)
	}

	idx := len(c.Answers)
	s.sessions.Start(candidateID, idx, question.TimeLimitForIndex(idx))
	st, _ := s.sessions.Get(candidateID)
	slog.Info("interview resumed", "candidate_id", candidateID, "question_index", idx)
	return c, st, nil
}

// Resumable reports an interrupted in-progress attempt, if one exists
// and no session is currently live. The caller offers resume-or-restart.
func (s *Service) Resumable(ctx context.Context) (*model.Candidate, error) {
	if _, active := s.sessions.ActiveID(); active {
		return nil, nil
	}
	candidates, err := s.repo.FindByStatus(ctx, model.StatusInProgress)
	if err != nil {
		return nil, err
	}
	for _, c := range candidates {
		if len(c.Answers) < s.bank.Len() {
			return c, nil
		}
	}
	return nil, nil
}

// Abandon marks an in-progress attempt as abandoned and ends its
// session. Restarting without this would leak in-progress records
// forever.
func (s *Service) Abandon(ctx context.Context, candidateID string) (*model.Candidate, error) {
	lock := s.candidateLock(candidateID)
	lock.Lock()
	defer lock.Unlock()

	c, err := s.repo.FindByID(ctx, candidateID)
	if err != nil {
		return nil, err
	}
	if c.Status != model.StatusInProgress {
		return nil, fmt.Errorf("candidate %s has status %s: %w", candidateID, c.Status, model.ErrInvalidState)
	}
	c.Status = model.StatusAbandoned
	if err := s.repo.UpdateByID(ctx, c); err != nil {
		return nil, fmt.Errorf("persist abandoned candidate: %w", err)
	}
	s.sessions.End(candidateID)
	s.dropCandidateLock(candidateID)
	slog.Info("interview abandoned", "candidate_id", candidateID)
	return c, nil
}

// SessionState returns the live session snapshot for a candidate.
func (s *Service) SessionState(candidateID string) (session.State, bool) {
	return s.sessions.Get(candidateID)
}

// UpdateDraft records the answer text typed so far.
func (s *Service) UpdateDraft(candidateID, text string) error {
	return s.sessions.UpdateDraft(candidateID, text)
}

// PauseTimer suspends the countdown without ending the session.
func (s *Service) PauseTimer(candidateID string) error {
	return s.sessions.Pause(candidateID)
}

// ResumeTimer releases a paused countdown.
func (s *Service) ResumeTimer(candidateID string) error {
	return s.sessions.Resume(candidateID)
}

func (s *Service) candidateLock(id string) *sync.Mutex {
	s.locksMu.Lock()
	defer s.locksMu.Unlock()
	if l, ok := s.locks[id]; ok {
		return l
	}
	l := &sync.Mutex{}
	s.locks[id] = l
	return l
}

// dropCandidateLock releases the mutex entry once an attempt is
// completed or abandoned. Candidate ids are never reused, so a late
// holder of the old mutex just finds no active session and bails.
func (s *Service) dropCandidateLock(id string) {
	s.locksMu.Lock()
	defer s.locksMu.Unlock()
	delete(s.locks, id)
}
