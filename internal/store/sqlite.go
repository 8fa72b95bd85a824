package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/prepdesk/prepdesk/internal/model"

	_ "modernc.org/sqlite"
)

// SQLite is the durable repository. Only candidates are persisted;
// session state is ephemeral and never written here.
type SQLite struct {
	db *sql.DB
}

// NewSQLite opens (and migrates) a SQLite-backed repository.
func NewSQLite(dbPath string) (*SQLite, error) {
	db, err := sql.Open("sqlite", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}
	s := &SQLite{db: db}
	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

// Close closes the database.
func (s *SQLite) Close() error {
	return s.db.Close()
}

func (s *SQLite) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS candidates (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL DEFAULT '',
		email TEXT NOT NULL DEFAULT '',
		phone TEXT NOT NULL DEFAULT '',
		resume_text TEXT NOT NULL DEFAULT '',
		score INTEGER NOT NULL DEFAULT 0,
		summary TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL DEFAULT 'in-progress',
		created_at DATETIME NOT NULL,
		completed_at DATETIME
	);

	CREATE TABLE IF NOT EXISTS answers (
		candidate_id TEXT NOT NULL,
		position INTEGER NOT NULL,
		question_id INTEGER NOT NULL,
		question TEXT NOT NULL,
		answer TEXT NOT NULL DEFAULT '',
		time_spent INTEGER NOT NULL DEFAULT 0,
		max_time INTEGER NOT NULL DEFAULT 0,
		difficulty TEXT NOT NULL,
		score INTEGER NOT NULL DEFAULT 0,
		PRIMARY KEY (candidate_id, position),
		FOREIGN KEY (candidate_id) REFERENCES candidates(id)
	);

	CREATE TABLE IF NOT EXISTS metadata (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Insert stores a new candidate and its answers in one transaction.
func (s *SQLite) Insert(ctx context.Context, c *model.Candidate) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var exists int
	if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM candidates WHERE id = ?`, c.ID).Scan(&exists); err != nil {
		return err
	}
	if exists > 0 {
		return fmt.Errorf("candidate %s: %w", c.ID, model.ErrAlreadyExists)
	}

	if err := insertCandidateTx(ctx, tx, c); err != nil {
		return err
	}
	return tx.Commit()
}

// UpdateByID replaces the whole record. The transaction keeps the
// update atomic: either the full new record lands or the old one
// remains.
func (s *SQLite) UpdateByID(ctx context.Context, c *model.Candidate) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM answers WHERE candidate_id = ?`, c.ID); err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM candidates WHERE id = ?`, c.ID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("candidate %s: %w", c.ID, model.ErrNotFound)
	}

	if err := insertCandidateTx(ctx, tx, c); err != nil {
		return err
	}
	return tx.Commit()
}

func insertCandidateTx(ctx context.Context, tx *sql.Tx, c *model.Candidate) error {
	var completedAt *time.Time
	if c.CompletedAt != nil {
		t := c.CompletedAt.UTC()
		completedAt = &t
	}
	_, err := tx.ExecContext(ctx,
		`INSERT INTO candidates (id, name, email, phone, resume_text, score, summary, status, created_at, completed_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.Name, c.Email, c.Phone, c.ResumeText, c.Score, c.Summary, c.Status, c.CreatedAt.UTC(), completedAt,
	)
	if err != nil {
		return err
	}
	for i, a := range c.Answers {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO answers (candidate_id, position, question_id, question, answer, time_spent, max_time, difficulty, score)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			c.ID, i, a.QuestionID, a.Question, a.Answer, a.TimeSpent, a.MaxTime, a.Difficulty, a.Score,
		)
		if err != nil {
			return err
		}
	}
	return nil
}

// FindByID returns a candidate with its ordered answers.
func (s *SQLite) FindByID(ctx context.Context, id string) (*model.Candidate, error) {
	var c model.Candidate
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, email, phone, resume_text, score, summary, status, created_at, completed_at
		 FROM candidates WHERE id = ?`, id,
	).Scan(&c.ID, &c.Name, &c.Email, &c.Phone, &c.ResumeText, &c.Score, &c.Summary, &c.Status, &c.CreatedAt, &c.CompletedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("candidate %s: %w", id, model.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	if c.Answers, err = s.answersFor(ctx, id); err != nil {
		return nil, err
	}
	return &c, nil
}

// FindByStatus returns candidates in the given status, oldest first.
func (s *SQLite) FindByStatus(ctx context.Context, status model.CandidateStatus) ([]*model.Candidate, error) {
	return s.query(ctx,
		`SELECT id, name, email, phone, resume_text, score, summary, status, created_at, completed_at
		 FROM candidates WHERE status = ? ORDER BY created_at`, status)
}

// List returns all candidates, oldest first.
func (s *SQLite) List(ctx context.Context) ([]*model.Candidate, error) {
	return s.query(ctx,
		`SELECT id, name, email, phone, resume_text, score, summary, status, created_at, completed_at
		 FROM candidates ORDER BY created_at`)
}

func (s *SQLite) query(ctx context.Context, q string, args ...any) ([]*model.Candidate, error) {
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*model.Candidate
	for rows.Next() {
		var c model.Candidate
		if err := rows.Scan(&c.ID, &c.Name, &c.Email, &c.Phone, &c.ResumeText, &c.Score, &c.Summary, &c.Status, &c.CreatedAt, &c.CompletedAt); err != nil {
			return nil, err
		}
		out = append(out, &c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for _, c := range out {
		if c.Answers, err = s.answersFor(ctx, c.ID); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (s *SQLite) answersFor(ctx context.Context, candidateID string) ([]model.Answer, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT question_id, question, answer, time_spent, max_time, difficulty, score
		 FROM answers WHERE candidate_id = ? ORDER BY position`, candidateID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var answers []model.Answer
	for rows.Next() {
		var a model.Answer
		if err := rows.Scan(&a.QuestionID, &a.Question, &a.Answer, &a.TimeSpent, &a.MaxTime, &a.Difficulty, &a.Score); err != nil {
			return nil, err
		}
		answers = append(answers, a)
	}
	return answers, rows.Err()
}

// SetMetadata upserts a key-value pair in the metadata table.
func (s *SQLite) SetMetadata(key, value string) error {
	_, err := s.db.Exec(
		`INSERT INTO metadata (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = ?`,
		key, value, value,
	)
	return err
}

// GetMetadata returns the value for a metadata key.
// Returns empty string and nil error if the key is missing.
func (s *SQLite) GetMetadata(key string) (string, error) {
	var value string
	err := s.db.QueryRow(`SELECT value FROM metadata WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	return value, err
}
