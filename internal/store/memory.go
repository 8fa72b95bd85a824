package store

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/prepdesk/prepdesk/internal/model"
)

// Memory is the in-memory repository. It mirrors the reference
// behavior: all candidate data is lost when the process exits.
type Memory struct {
	mu         sync.RWMutex
	candidates map[string]*model.Candidate
}

// NewMemory creates an empty in-memory repository.
func NewMemory() *Memory {
	return &Memory{candidates: make(map[string]*model.Candidate)}
}

// Insert stores a new candidate. Duplicate ids are rejected.
func (m *Memory) Insert(_ context.Context, c *model.Candidate) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.candidates[c.ID]; ok {
		return fmt.Errorf("candidate %s: %w", c.ID, model.ErrAlreadyExists)
	}
	m.candidates[c.ID] = c.Clone()
	return nil
}

// UpdateByID replaces the stored record. The clone swap under the lock
// keeps the update atomic: readers see either the old record or the new
// one, never a partial write.
func (m *Memory) UpdateByID(_ context.Context, c *model.Candidate) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.candidates[c.ID]; !ok {
		return fmt.Errorf("candidate %s: %w", c.ID, model.ErrNotFound)
	}
	m.candidates[c.ID] = c.Clone()
	return nil
}

// FindByID returns a copy of the candidate, or model.ErrNotFound.
func (m *Memory) FindByID(_ context.Context, id string) (*model.Candidate, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.candidates[id]
	if !ok {
		return nil, fmt.Errorf("candidate %s: %w", id, model.ErrNotFound)
	}
	return c.Clone(), nil
}

// FindByStatus returns candidates in the given status, oldest first.
func (m *Memory) FindByStatus(_ context.Context, status model.CandidateStatus) ([]*model.Candidate, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*model.Candidate
	for _, c := range m.candidates {
		if c.Status == status {
			out = append(out, c.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

// List returns all candidates, oldest first.
func (m *Memory) List(_ context.Context) ([]*model.Candidate, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*model.Candidate, 0, len(m.candidates))
	for _, c := range m.candidates {
		out = append(out, c.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

// Close is a no-op for the in-memory repository.
func (m *Memory) Close() error {
	return nil
}
