package segstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Interview is the recording a segment set belongs to.
type Interview struct {
	ID             string
	Title          string
	SourceLanguage string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// UpsertInterview inserts or updates an interview row. Re-insertion updates
// title and source language but preserves the creation timestamp.
func (s *Store) UpsertInterview(ctx context.Context, interview *Interview) error {
	if interview == nil || strings.TrimSpace(interview.ID) == "" {
		return fmt.Errorf("%w: interview id required", ErrConstraint)
	}
	now := time.Now().UTC().Format(time.RFC3339Nano)
	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO interviews (id, title, source_language, created_at, updated_at)
         VALUES (?, ?, ?, ?, ?)
         ON CONFLICT(id) DO UPDATE SET
            title = excluded.title,
            source_language = excluded.source_language,
            updated_at = excluded.updated_at`,
		interview.ID,
		interview.Title,
		interview.SourceLanguage,
		now,
		now,
	)
	if err != nil {
		return fmt.Errorf("upsert interview: %w", err)
	}
	return nil
}

// GetInterview fetches one interview by ID.
func (s *Store) GetInterview(ctx context.Context, id string) (*Interview, error) {
	row := s.db.QueryRowContext(
		ctx,
		`SELECT id, title, source_language, created_at, updated_at FROM interviews WHERE id = ?`,
		id,
	)
	interview, err := scanInterview(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: interview %q", ErrNotFound, id)
		}
		return nil, fmt.Errorf("get interview: %w", err)
	}
	return interview, nil
}

// ListInterviews returns all interviews ordered by creation time.
func (s *Store) ListInterviews(ctx context.Context) ([]Interview, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT id, title, source_language, created_at, updated_at FROM interviews ORDER BY created_at, id`,
	)
	if err != nil {
		return nil, fmt.Errorf("list interviews: %w", err)
	}
	defer rows.Close()

	var interviews []Interview
	for rows.Next() {
		interview, err := scanInterview(rows)
		if err != nil {
			return nil, fmt.Errorf("scan interview: %w", err)
		}
		interviews = append(interviews, *interview)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate interviews: %w", err)
	}
	return interviews, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanInterview(row rowScanner) (*Interview, error) {
	var interview Interview
	var createdAt, updatedAt string
	if err := row.Scan(&interview.ID, &interview.Title, &interview.SourceLanguage, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	interview.CreatedAt = parseTimestamp(createdAt)
	interview.UpdatedAt = parseTimestamp(updatedAt)
	return &interview, nil
}

func parseTimestamp(value string) time.Time {
	parsed, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return time.Time{}
	}
	return parsed
}
