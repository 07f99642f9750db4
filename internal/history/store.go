// Package history persists screening outcomes in a local SQLite database so
// past decisions stay reviewable across runs.
package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS screening_results (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	candidate_name TEXT NOT NULL,
	job_name TEXT NOT NULL,
	local_score REAL NOT NULL,
	ai_score REAL,
	final_score REAL NOT NULL,
	bucket TEXT NOT NULL,
	recommendation TEXT,
	justification TEXT,
	skills TEXT,
	degraded INTEGER NOT NULL DEFAULT 0,
	degraded_reason TEXT,
	created_at TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS candidates (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT NOT NULL UNIQUE,
	resume_text TEXT,
	skills TEXT,
	years REAL,
	created_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_results_created ON screening_results (created_at DESC);
`

// Record is one persisted screening outcome.
type Record struct {
	ID             int64
	CandidateName  string
	JobName        string
	LocalScore     float64
	AIScore        float64
	FinalScore     float64
	Bucket         string
	Recommendation string
	Justification  string
	Skills         []string
	Degraded       bool
	DegradedReason string
	CreatedAt      time.Time
}

// Candidate is one persisted candidate profile, keyed by name.
type Candidate struct {
	ID         int64
	Name       string
	ResumeText string
	Skills     []string
	Years      float64
	CreatedAt  time.Time
}

// Store wraps the SQLite database. Safe for concurrent use; the driver
// serializes writes.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the database at path and applies the
// schema.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open history database: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply history schema: %w", err)
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// SaveResult inserts a screening record and returns its id.
func (s *Store) SaveResult(ctx context.Context, record Record) (int64, error) {
	skills, err := json.Marshal(record.Skills)
	if err != nil {
		return 0, fmt.Errorf("encode skills: %w", err)
	}

	createdAt := record.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO screening_results
		(candidate_name, job_name, local_score, ai_score, final_score, bucket, recommendation, justification, skills, degraded, degraded_reason, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		record.CandidateName,
		record.JobName,
		record.LocalScore,
		record.AIScore,
		record.FinalScore,
		record.Bucket,
		record.Recommendation,
		record.Justification,
		string(skills),
		record.Degraded,
		record.DegradedReason,
		createdAt.UTC(),
	)
	if err != nil {
		return 0, fmt.Errorf("insert screening result: %w", err)
	}

	return res.LastInsertId()
}

// Results returns the most recent records, newest first. A non-positive
// limit returns everything.
func (s *Store) Results(ctx context.Context, limit int) ([]Record, error) {
	query := `
		SELECT id, candidate_name, job_name, local_score, ai_score, final_score, bucket, recommendation, justification, skills, degraded, degraded_reason, created_at
		FROM screening_results
		ORDER BY created_at DESC, id DESC`
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query screening results: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var (
			record Record
			skills sql.NullString
		)
		if err := rows.Scan(
			&record.ID,
			&record.CandidateName,
			&record.JobName,
			&record.LocalScore,
			&record.AIScore,
			&record.FinalScore,
			&record.Bucket,
			&record.Recommendation,
			&record.Justification,
			&skills,
			&record.Degraded,
			&record.DegradedReason,
			&record.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan screening result: %w", err)
		}
		if skills.Valid && skills.String != "" {
			if err := json.Unmarshal([]byte(skills.String), &record.Skills); err != nil {
				return nil, fmt.Errorf("decode skills for record %d: %w", record.ID, err)
			}
		}
		records = append(records, record)
	}

	return records, rows.Err()
}

// SaveCandidate upserts a candidate profile keyed by name.
func (s *Store) SaveCandidate(ctx context.Context, candidate Candidate) error {
	skills, err := json.Marshal(candidate.Skills)
	if err != nil {
		return fmt.Errorf("encode skills: %w", err)
	}

	createdAt := candidate.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO candidates (name, resume_text, skills, years, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			resume_text = excluded.resume_text,
			skills = excluded.skills,
			years = excluded.years`,
		candidate.Name,
		candidate.ResumeText,
		string(skills),
		candidate.Years,
		createdAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("upsert candidate: %w", err)
	}

	return nil
}

// Candidates returns all stored candidates, newest first.
func (s *Store) Candidates(ctx context.Context) ([]Candidate, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, resume_text, skills, years, created_at
		FROM candidates
		ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("query candidates: %w", err)
	}
	defer rows.Close()

	var candidates []Candidate
	for rows.Next() {
		var (
			candidate Candidate
			skills    sql.NullString
		)
		if err := rows.Scan(
			&candidate.ID,
			&candidate.Name,
			&candidate.ResumeText,
			&skills,
			&candidate.Years,
			&candidate.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan candidate: %w", err)
		}
		if skills.Valid && skills.String != "" {
			if err := json.Unmarshal([]byte(skills.String), &candidate.Skills); err != nil {
				return nil, fmt.Errorf("decode skills for candidate %d: %w", candidate.ID, err)
			}
		}
		candidates = append(candidates, candidate)
	}

	return candidates, rows.Err()
}
