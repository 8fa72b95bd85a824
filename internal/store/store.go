// Package store owns candidate records. The repository is an
// interface: an in-memory implementation preserves the reference
// behavior of keeping nothing across restarts, and a SQLite
// implementation makes in-progress attempts survive them.
package store

import (
	"context"

	"github.com/prepdesk/prepdesk/internal/model"
)

// Repository defines candidate persistence. UpdateByID replaces the
// whole record at the matching id (full overwrite, not a merge) and
// returns model.ErrNotFound on an unknown id; the update is atomic per
// record. Reads return deep copies.
type Repository interface {
	Insert(ctx context.Context, c *model.Candidate) error
	UpdateByID(ctx context.Context, c *model.Candidate) error
	FindByID(ctx context.Context, id string) (*model.Candidate, error)
	FindByStatus(ctx context.Context, status model.CandidateStatus) ([]*model.Candidate, error)
	List(ctx context.Context) ([]*model.Candidate, error)
	Close() error
}
