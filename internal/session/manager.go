package session

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/prepdesk/prepdesk/internal/model"
)

// ExpireFunc is called when a session's countdown reaches zero. It
// receives the candidate id and the draft text typed so far; the
// orchestrator submits that draft as the answer.
type ExpireFunc func(candidateID, draft string)

type entry struct {
	state  *State
	cancel context.CancelFunc
}

// Manager owns all live sessions, keyed by candidate id. Each active
// session has one countdown goroutine that ticks the state machine at
// a fixed cadence and fires the expiry callback when a countdown hits
// zero. In practice a single entry is populated at a time, but nothing
// here assumes that.
type Manager struct {
	mu       sync.Mutex
	sessions map[string]*entry
	onExpire ExpireFunc
	interval time.Duration
}

// NewManager creates a session manager ticking once per second.
func NewManager(onExpire ExpireFunc) *Manager {
	return newManager(onExpire, time.Second)
}

func newManager(onExpire ExpireFunc, interval time.Duration) *Manager {
	return &Manager{
		sessions: make(map[string]*entry),
		onExpire: onExpire,
		interval: interval,
	}
}

// Start begins a session for the candidate at the given question. Any
// prior session for the same candidate is ended first.
func (m *Manager) Start(candidateID string, questionIndex, timeLimit int) {
	m.mu.Lock()
	if old, ok := m.sessions[candidateID]; ok {
		old.state.End()
		old.cancel()
	}
	st := &State{CandidateID: candidateID}
	st.Start(questionIndex, timeLimit)
	ctx, cancel := context.WithCancel(context.Background())
	e := &entry{state: st, cancel: cancel}
	m.sessions[candidateID] = e
	m.mu.Unlock()

	go m.run(ctx, candidateID, e)
	slog.Info("session started", "candidate_id", candidateID, "question_index", questionIndex, "time_limit", timeLimit)
}

// run drives one session's countdown until the session ends.
func (m *Manager) run(ctx context.Context, candidateID string, e *entry) {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			expired, draft, ok := m.tick(candidateID, e)
			if !ok {
				return
			}
			if expired && m.onExpire != nil {
				m.onExpire(candidateID, draft)
			}
		}
	}
}

// tick advances one countdown step for the goroutine driving e. It
// reports ok=false when the session ended or was replaced by a newer
// one for the same candidate; a goroutine that already woke before its
// cancel must not touch the replacement's countdown.
func (m *Manager) tick(candidateID string, e *entry) (expired bool, draft string, ok bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, live := m.sessions[candidateID]
	if !live || cur != e || !e.state.Active {
		return false, "", false
	}
	expired = e.state.Tick()
	return expired, e.state.Draft, true
}

// Get returns a snapshot of the candidate's session state.
func (m *Manager) Get(candidateID string) (State, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.sessions[candidateID]
	if !ok {
		return State{}, false
	}
	return *e.state, true
}

// ActiveID returns the id of a currently active session, if any.
func (m *Manager) ActiveID() (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, e := range m.sessions {
		if e.state.Active {
			return id, true
		}
	}
	return "", false
}

// Advance moves the candidate's session to the next question.
func (m *Manager) Advance(candidateID string, nextTimeLimit int) error {
	return m.with(candidateID, func(s *State) { s.Advance(nextTimeLimit) })
}

// Pause suspends the candidate's countdown.
func (m *Manager) Pause(candidateID string) error {
	return m.with(candidateID, func(s *State) { s.Pause() })
}

// Resume releases the candidate's paused countdown.
func (m *Manager) Resume(candidateID string) error {
	return m.with(candidateID, func(s *State) { s.Resume() })
}

// UpdateDraft records the answer text typed so far, so that an expiry
// submits what the candidate actually wrote.
func (m *Manager) UpdateDraft(candidateID, text string) error {
	return m.with(candidateID, func(s *State) { s.Draft = text })
}

// End terminates the candidate's session and stops its countdown.
func (m *Manager) End(candidateID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if e, ok := m.sessions[candidateID]; ok {
		e.state.End()
		e.cancel()
		delete(m.sessions, candidateID)
	}
}

// Close ends every live session.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, e := range m.sessions {
		e.state.End()
		e.cancel()
		delete(m.sessions, id)
	}
}

func (m *Manager) with(candidateID string, fn func(*State)) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.sessions[candidateID]
	if !ok || !e.state.Active {
		return fmt.Errorf("no active session for candidate %s: %w", candidateID, model.ErrNotFound)
	}
	fn(e.state)
	return nil
}
