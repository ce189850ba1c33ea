package segstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"subsync/internal/segments"
)

// UpsertSegment inserts or updates one segment. Structural invariants are
// checked here, at the storage boundary: positive duration, confidence bounds,
// and start-time ordering against both stored neighbors. Re-insertion of an
// existing (interview, index) pair is an update, not a duplicate.
func (s *Store) UpsertSegment(ctx context.Context, seg *segments.Segment) error {
	if seg == nil {
		return fmt.Errorf("%w: segment required", ErrConstraint)
	}
	if err := seg.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrConstraint, err)
	}
	if err := s.interviewExists(ctx, seg.InterviewID); err != nil {
		return err
	}

	var prevStart sql.NullFloat64
	err := s.db.QueryRowContext(
		ctx,
		`SELECT start_time FROM segments WHERE interview_id = ? AND segment_index = ?`,
		seg.InterviewID, seg.Index-1,
	).Scan(&prevStart)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("check preceding segment: %w", err)
	}
	if prevStart.Valid && seg.Start < prevStart.Float64 {
		return fmt.Errorf("%w: segment %d start %.3f precedes segment %d start %.3f",
			ErrConstraint, seg.Index, seg.Start, seg.Index-1, prevStart.Float64)
	}

	var nextStart sql.NullFloat64
	err = s.db.QueryRowContext(
		ctx,
		`SELECT start_time FROM segments WHERE interview_id = ? AND segment_index = ?`,
		seg.InterviewID, seg.Index+1,
	).Scan(&nextStart)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("check following segment: %w", err)
	}
	if nextStart.Valid && seg.Start > nextStart.Float64 {
		return fmt.Errorf("%w: segment %d start %.3f exceeds segment %d start %.3f",
			ErrConstraint, seg.Index, seg.Start, seg.Index+1, nextStart.Float64)
	}

	now := time.Now().UTC().Format(time.RFC3339Nano)
	_, err = s.db.ExecContext(
		ctx,
		`INSERT INTO segments (
            interview_id, segment_index, start_time, end_time, original_text,
            confidence_score, speaker, fallback, created_at, updated_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
        ON CONFLICT(interview_id, segment_index) DO UPDATE SET
            start_time = excluded.start_time,
            end_time = excluded.end_time,
            original_text = excluded.original_text,
            confidence_score = excluded.confidence_score,
            speaker = excluded.speaker,
            fallback = excluded.fallback,
            updated_at = excluded.updated_at`,
		seg.InterviewID,
		seg.Index,
		seg.Start,
		seg.End,
		seg.Text,
		nullableFloat(seg.Confidence),
		nullableString(seg.Speaker),
		boolToInt(seg.Fallback),
		now,
		now,
	)
	if err != nil {
		return fmt.Errorf("upsert segment: %w", err)
	}
	return nil
}

// ReplaceSegments atomically replaces the whole segment set of one interview.
// Either every segment (and the removal of the prior set, including its
// translations) lands, or nothing changes.
func (s *Store) ReplaceSegments(ctx context.Context, interviewID string, segs []segments.Segment) error {
	for i := range segs {
		if segs[i].InterviewID != interviewID {
			return fmt.Errorf("%w: segment %d belongs to interview %q, not %q",
				ErrConstraint, segs[i].Index, segs[i].InterviewID, interviewID)
		}
	}
	if err := segments.ValidateOrdering(segs); err != nil {
		return fmt.Errorf("%w: %v", ErrConstraint, err)
	}
	if err := s.interviewExists(ctx, interviewID); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin replace tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM segments WHERE interview_id = ?`, interviewID); err != nil {
		return fmt.Errorf("clear segments: %w", err)
	}

	now := time.Now().UTC().Format(time.RFC3339Nano)
	stmt, err := tx.PrepareContext(
		ctx,
		`INSERT INTO segments (
            interview_id, segment_index, start_time, end_time, original_text,
            confidence_score, speaker, fallback, created_at, updated_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return fmt.Errorf("prepare segment insert: %w", err)
	}
	defer stmt.Close()

	for _, seg := range segs {
		if _, err := stmt.ExecContext(
			ctx,
			seg.InterviewID,
			seg.Index,
			seg.Start,
			seg.End,
			seg.Text,
			nullableFloat(seg.Confidence),
			nullableString(seg.Speaker),
			boolToInt(seg.Fallback),
			now,
			now,
		); err != nil {
			return fmt.Errorf("insert segment %d: %w", seg.Index, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit replace: %w", err)
	}
	return nil
}

// GetSegments returns the full ordered segment list of one interview,
// translations included.
func (s *Store) GetSegments(ctx context.Context, interviewID string) ([]segments.Segment, error) {
	return s.querySegments(
		ctx,
		interviewID,
		`SELECT interview_id, segment_index, start_time, end_time, original_text,
                confidence_score, speaker, fallback
         FROM segments WHERE interview_id = ? ORDER BY segment_index`,
		interviewID,
	)
}

// GetSegmentsInRange returns the ordered segments whose display window
// overlaps [start, end).
func (s *Store) GetSegmentsInRange(ctx context.Context, interviewID string, start, end float64) ([]segments.Segment, error) {
	if end <= start {
		return nil, fmt.Errorf("%w: range end %.3f must exceed start %.3f", ErrConstraint, end, start)
	}
	return s.querySegments(
		ctx,
		interviewID,
		`SELECT interview_id, segment_index, start_time, end_time, original_text,
                confidence_score, speaker, fallback
         FROM segments
         WHERE interview_id = ? AND start_time < ? AND end_time > ?
         ORDER BY segment_index`,
		interviewID, end, start,
	)
}

func (s *Store) querySegments(ctx context.Context, interviewID, query string, args ...any) ([]segments.Segment, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query segments: %w", err)
	}
	defer rows.Close()

	var segs []segments.Segment
	for rows.Next() {
		var seg segments.Segment
		var confidence sql.NullFloat64
		var speaker sql.NullString
		var fallback int
		if err := rows.Scan(
			&seg.InterviewID, &seg.Index, &seg.Start, &seg.End, &seg.Text,
			&confidence, &speaker, &fallback,
		); err != nil {
			return nil, fmt.Errorf("scan segment: %w", err)
		}
		if confidence.Valid {
			value := confidence.Float64
			seg.Confidence = &value
		}
		seg.Speaker = speaker.String
		seg.Fallback = fallback != 0
		segs = append(segs, seg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate segments: %w", err)
	}
	if len(segs) == 0 {
		return segs, nil
	}
	if err := s.attachTranslations(ctx, interviewID, segs); err != nil {
		return nil, err
	}
	return segs, nil
}

func (s *Store) attachTranslations(ctx context.Context, interviewID string, segs []segments.Segment) error {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT segment_index, language, text FROM segment_translations WHERE interview_id = ?`,
		interviewID,
	)
	if err != nil {
		return fmt.Errorf("query translations: %w", err)
	}
	defer rows.Close()

	byIndex := make(map[int]*segments.Segment, len(segs))
	for i := range segs {
		byIndex[segs[i].Index] = &segs[i]
	}

	for rows.Next() {
		var index int
		var lang, text string
		if err := rows.Scan(&index, &lang, &text); err != nil {
			return fmt.Errorf("scan translation: %w", err)
		}
		if seg, ok := byIndex[index]; ok {
			seg.SetTranslation(lang, text)
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate translations: %w", err)
	}
	return nil
}

func (s *Store) interviewExists(ctx context.Context, interviewID string) error {
	var one int
	err := s.db.QueryRowContext(ctx, `SELECT 1 FROM interviews WHERE id = ?`, interviewID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: interview %q", ErrNotFound, interviewID)
	}
	if err != nil {
		return fmt.Errorf("check interview: %w", err)
	}
	return nil
}

func nullableFloat(value *float64) any {
	if value == nil {
		return nil
	}
	return *value
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func boolToInt(value bool) int {
	if value {
		return 1
	}
	return 0
}
