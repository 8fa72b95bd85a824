package store

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/prepdesk/prepdesk/internal/model"
)

func newSQLiteStore(t *testing.T) *SQLite {
	t.Helper()
	s, err := NewSQLite(":memory:")
	if err != nil {
		t.Fatalf("newSQLiteStore: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func testCandidate(id string) *model.Candidate {
	return &model.Candidate{
		ID:         id,
		Name:       "Jane Doe",
		Email:      "jane@example.com",
		Phone:      "(555) 123-4567",
		ResumeText: "Jane Doe jane@example.com (555) 123-4567 Software Engineer",
		Status:     model.StatusInProgress,
		CreatedAt:  time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		Answers: []model.Answer{
			{QuestionID: 1, Question: "q1", Answer: "a1", TimeSpent: 10, MaxTime: 20, Difficulty: model.DifficultyEasy, Score: 70},
		},
	}
}

// equalCandidates compares records field by field, using time.Equal for
// timestamps so driver round-trips through SQLite compare by instant.
func equalCandidates(a, b *model.Candidate) bool {
	if a.ID != b.ID || a.Name != b.Name || a.Email != b.Email || a.Phone != b.Phone ||
		a.ResumeText != b.ResumeText || a.Score != b.Score || a.Summary != b.Summary ||
		a.Status != b.Status {
		return false
	}
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return false
	}
	if (a.CompletedAt == nil) != (b.CompletedAt == nil) {
		return false
	}
	if a.CompletedAt != nil && !a.CompletedAt.Equal(*b.CompletedAt) {
		return false
	}
	return reflect.DeepEqual(a.Answers, b.Answers)
}

// repos runs a subtest against each repository implementation.
func repos(t *testing.T, fn func(t *testing.T, repo Repository)) {
	t.Helper()
	t.Run("memory", func(t *testing.T) {
		fn(t, NewMemory())
	})
	t.Run("sqlite", func(t *testing.T) {
		fn(t, newSQLiteStore(t))
	})
}

func TestInsertAndFindByID(t *testing.T) {
	repos(t, func(t *testing.T, repo Repository) {
		ctx := context.Background()
		c := testCandidate("cand-1")

		if err := repo.Insert(ctx, c); err != nil {
			t.Fatalf("Insert: %v", err)
		}

		got, err := repo.FindByID(ctx, "cand-1")
		if err != nil {
			t.Fatalf("FindByID: %v", err)
		}
		if !equalCandidates(got, c) {
			t.Errorf("round-trip mismatch:\n got %+v\nwant %+v", got, c)
		}

		// Mutating the returned copy must not touch stored state.
		got.Name = "changed"
		got.Answers[0].Score = 1
		again, err := repo.FindByID(ctx, "cand-1")
		if err != nil {
			t.Fatalf("FindByID: %v", err)
		}
		if again.Name != "Jane Doe" || again.Answers[0].Score != 70 {
			t.Error("stored record aliased by returned copy")
		}
	})
}

func TestInsertDuplicate(t *testing.T) {
	repos(t, func(t *testing.T, repo Repository) {
		ctx := context.Background()
		if err := repo.Insert(ctx, testCandidate("dup")); err != nil {
			t.Fatalf("Insert: %v", err)
		}
		if err := repo.Insert(ctx, testCandidate("dup")); !errors.Is(err, model.ErrAlreadyExists) {
			t.Errorf("expected ErrAlreadyExists, got %v", err)
		}
	})
}

func TestFindByIDMissing(t *testing.T) {
	repos(t, func(t *testing.T, repo Repository) {
		if _, err := repo.FindByID(context.Background(), "nope"); !errors.Is(err, model.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})
}

func TestUpdateByID(t *testing.T) {
	repos(t, func(t *testing.T, repo Repository) {
		ctx := context.Background()
		a := testCandidate("a")
		b := testCandidate("b")
		b.Name = "Other Person"
		if err := repo.Insert(ctx, a); err != nil {
			t.Fatalf("Insert a: %v", err)
		}
		if err := repo.Insert(ctx, b); err != nil {
			t.Fatalf("Insert b: %v", err)
		}

		updated := a.Clone()
		updated.Answers = append(updated.Answers, model.Answer{
			QuestionID: 2, Question: "q2", Answer: "a2", TimeSpent: 30, MaxTime: 60, Difficulty: model.DifficultyMedium, Score: 55,
		})
		completedAt := time.Date(2026, 3, 1, 12, 30, 0, 0, time.UTC)
		updated.Status = model.StatusCompleted
		updated.Score = 62
		updated.Summary = "Good candidate."
		updated.CompletedAt = &completedAt

		if err := repo.UpdateByID(ctx, updated); err != nil {
			t.Fatalf("UpdateByID: %v", err)
		}

		got, err := repo.FindByID(ctx, "a")
		if err != nil {
			t.Fatalf("FindByID: %v", err)
		}
		if !equalCandidates(got, updated) {
			t.Errorf("update not reflected:\n got %+v\nwant %+v", got, updated)
		}

		// The other record must be untouched.
		other, err := repo.FindByID(ctx, "b")
		if err != nil {
			t.Fatalf("FindByID b: %v", err)
		}
		if !equalCandidates(other, b) {
			t.Errorf("unrelated record mutated:\n got %+v\nwant %+v", other, b)
		}
	})
}

func TestUpdateByIDMissing(t *testing.T) {
	repos(t, func(t *testing.T, repo Repository) {
		err := repo.UpdateByID(context.Background(), testCandidate("ghost"))
		if !errors.Is(err, model.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})
}

func TestFindByStatus(t *testing.T) {
	repos(t, func(t *testing.T, repo Repository) {
		ctx := context.Background()

		inProgress := testCandidate("ip")
		done := testCandidate("done")
		done.Status = model.StatusCompleted
		done.CreatedAt = done.CreatedAt.Add(time.Minute)
		abandoned := testCandidate("gone")
		abandoned.Status = model.StatusAbandoned
		abandoned.CreatedAt = abandoned.CreatedAt.Add(2 * time.Minute)

		for _, c := range []*model.Candidate{inProgress, done, abandoned} {
			if err := repo.Insert(ctx, c); err != nil {
				t.Fatalf("Insert %s: %v", c.ID, err)
			}
		}

		got, err := repo.FindByStatus(ctx, model.StatusInProgress)
		if err != nil {
			t.Fatalf("FindByStatus: %v", err)
		}
		if len(got) != 1 || got[0].ID != "ip" {
			t.Errorf("FindByStatus(in-progress) = %v, want [ip]", ids(got))
		}

		none, err := repo.FindByStatus(ctx, model.StatusPending)
		if err != nil {
			t.Fatalf("FindByStatus: %v", err)
		}
		if len(none) != 0 {
			t.Errorf("FindByStatus(pending) = %v, want empty", ids(none))
		}

		all, err := repo.List(ctx)
		if err != nil {
			t.Fatalf("List: %v", err)
		}
		if len(all) != 3 {
			t.Errorf("List returned %d candidates, want 3", len(all))
		}
	})
}

func ids(cs []*model.Candidate) []string {
	var out []string
	for _, c := range cs {
		out = append(out, c.ID)
	}
	return out
}

func TestExportAll(t *testing.T) {
	repos(t, func(t *testing.T, repo Repository) {
		ctx := context.Background()

		done := testCandidate("done")
		done.Status = model.StatusCompleted
		done.Score = 85
		done.Summary = "Excellent candidate."
		if err := repo.Insert(ctx, done); err != nil {
			t.Fatalf("Insert: %v", err)
		}
		if err := repo.Insert(ctx, testCandidate("ip")); err != nil {
			t.Fatalf("Insert: %v", err)
		}

		export, err := ExportAll(ctx, repo)
		if err != nil {
			t.Fatalf("ExportAll: %v", err)
		}
		if export.NumCandidates != 2 {
			t.Fatalf("NumCandidates = %d, want 2", export.NumCandidates)
		}
		if export.NumQuestions != model.InterviewLength {
			t.Errorf("NumQuestions = %d, want %d", export.NumQuestions, model.InterviewLength)
		}

		var doneResult *model.CandidateResult
		for i := range export.Candidates {
			if export.Candidates[i].ID == "done" {
				doneResult = &export.Candidates[i]
			}
		}
		if doneResult == nil {
			t.Fatal("completed candidate missing from export")
		}
		if doneResult.Band != "excellent" {
			t.Errorf("band = %q, want excellent", doneResult.Band)
		}
		if len(doneResult.Answers) != 1 || doneResult.Answers[0].Score != 70 {
			t.Errorf("answers not exported: %+v", doneResult.Answers)
		}
	})
}

func TestSQLiteMetadata(t *testing.T) {
	s := newSQLiteStore(t)

	v, err := s.GetMetadata("bank_hash")
	if err != nil {
		t.Fatalf("GetMetadata: %v", err)
	}
	if v != "" {
		t.Fatalf("expected empty value for missing key, got %q", v)
	}

	if err := s.SetMetadata("bank_hash", "abc123"); err != nil {
		t.Fatalf("SetMetadata: %v", err)
	}
	if v, _ = s.GetMetadata("bank_hash"); v != "abc123" {
		t.Errorf("GetMetadata = %q, want abc123", v)
	}

	if err := s.SetMetadata("bank_hash", "def456"); err != nil {
		t.Fatalf("SetMetadata: %v", err)
	}
	if v, _ = s.GetMetadata("bank_hash"); v != "def456" {
		t.Errorf("GetMetadata after upsert = %q, want def456", v)
	}
}
