package segstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

// UpsertTranslation records the text for one language variant of one segment.
// Timing columns live on the segments table and are never touched here, so a
// translation write cannot alter start/end times by construction.
func (s *Store) UpsertTranslation(ctx context.Context, interviewID string, index int, lang, text string) error {
	lang = strings.TrimSpace(lang)
	if lang == "" {
		return fmt.Errorf("%w: language required", ErrConstraint)
	}
	if err := s.segmentExists(ctx, s.db, interviewID, index); err != nil {
		return err
	}
	now := time.Now().UTC().Format(time.RFC3339Nano)
	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO segment_translations (interview_id, segment_index, language, text, updated_at)
         VALUES (?, ?, ?, ?, ?)
         ON CONFLICT(interview_id, segment_index, language) DO UPDATE SET
            text = excluded.text,
            updated_at = excluded.updated_at`,
		interviewID, index, lang, text, now,
	)
	if err != nil {
		return fmt.Errorf("upsert translation: %w", err)
	}
	return nil
}

// UpsertTranslations writes one language's text for a batch of segments
// atomically: either every entry lands or none do. The translation
// coordinator relies on this for its all-or-nothing batch semantics.
func (s *Store) UpsertTranslations(ctx context.Context, interviewID, lang string, texts map[int]string) error {
	lang = strings.TrimSpace(lang)
	if lang == "" {
		return fmt.Errorf("%w: language required", ErrConstraint)
	}
	if len(texts) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin translation tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	now := time.Now().UTC().Format(time.RFC3339Nano)
	stmt, err := tx.PrepareContext(
		ctx,
		`INSERT INTO segment_translations (interview_id, segment_index, language, text, updated_at)
         VALUES (?, ?, ?, ?, ?)
         ON CONFLICT(interview_id, segment_index, language) DO UPDATE SET
            text = excluded.text,
            updated_at = excluded.updated_at`,
	)
	if err != nil {
		return fmt.Errorf("prepare translation insert: %w", err)
	}
	defer stmt.Close()

	for index, text := range texts {
		if err := s.segmentExists(ctx, tx, interviewID, index); err != nil {
			return err
		}
		if _, err := stmt.ExecContext(ctx, interviewID, index, lang, text, now); err != nil {
			return fmt.Errorf("insert translation for segment %d: %w", index, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit translations: %w", err)
	}
	return nil
}

// Languages returns the distinct translated languages present for one
// interview, sorted.
func (s *Store) Languages(ctx context.Context, interviewID string) ([]string, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT DISTINCT language FROM segment_translations WHERE interview_id = ? ORDER BY language`,
		interviewID,
	)
	if err != nil {
		return nil, fmt.Errorf("query languages: %w", err)
	}
	defer rows.Close()

	var languages []string
	for rows.Next() {
		var lang string
		if err := rows.Scan(&lang); err != nil {
			return nil, fmt.Errorf("scan language: %w", err)
		}
		languages = append(languages, lang)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate languages: %w", err)
	}
	return languages, nil
}

type querier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *Store) segmentExists(ctx context.Context, q querier, interviewID string, index int) error {
	var one int
	err := q.QueryRowContext(
		ctx,
		`SELECT 1 FROM segments WHERE interview_id = ? AND segment_index = ?`,
		interviewID, index,
	).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: segment %d of interview %q", ErrNotFound, index, interviewID)
	}
	if err != nil {
		return fmt.Errorf("check segment: %w", err)
	}
	return nil
}
