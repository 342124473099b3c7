package repository

import (
	"context"
	"errors"
	"fmt"

	"physionote/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrRecordingNotInFlight is returned when a recording already reached a terminal status.
var ErrRecordingNotInFlight = errors.New("recording_not_in_flight")

// RecordingRepository persists recordings and their transcripts.
type RecordingRepository interface {
	CreateRecording(ctx context.Context, rec *model.Recording) (*model.Recording, error)
	// GetRecordingForUser returns nil, nil unless the recording exists and belongs to userID.
	GetRecordingForUser(ctx context.Context, recordingID, userID string) (*model.Recording, error)
	ListRecordingsByUser(ctx context.Context, userID string, limit, offset int) ([]model.Recording, error)
	// CompleteRecording stores the transcript of an in-flight recording and marks it completed.
	CompleteRecording(ctx context.Context, recordingID, transcript string, language *string) (*model.Recording, error)
	// MarkRecordingFailed moves an in-flight recording to failed and clears its transcript.
	MarkRecordingFailed(ctx context.Context, recordingID string) error
}

type recordingRepo struct {
	pool *pgxpool.Pool
}

func NewRecordingRepo(pool *pgxpool.Pool) RecordingRepository {
	return &recordingRepo{pool: pool}
}

const recordingColumns = `id, user_id, duration_seconds, language_detected, transcript, status, created_at, updated_at`

func scanRecording(row pgx.Row) (*model.Recording, error) {
	var rec model.Recording
	if err := row.Scan(
		&rec.ID,
		&rec.UserID,
		&rec.DurationSeconds,
		&rec.LanguageDetected,
		&rec.Transcript,
		&rec.Status,
		&rec.CreatedAt,
		&rec.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *recordingRepo) CreateRecording(ctx context.Context, rec *model.Recording) (*model.Recording, error) {
	q := `INSERT INTO recordings (user_id, duration_seconds, language_detected, status)
          VALUES ($1, $2, $3, $4)
          RETURNING ` + recordingColumns
	created, err := scanRecording(conn(ctx, r.pool).QueryRow(ctx, q, rec.UserID, rec.DurationSeconds, rec.LanguageDetected, rec.Status))
	if err != nil {
		return nil, fmt.Errorf("create recording for user %s: %w", rec.UserID, err)
	}
	return created, nil
}

func (r *recordingRepo) GetRecordingForUser(ctx context.Context, recordingID, userID string) (*model.Recording, error) {
	q := `SELECT ` + recordingColumns + ` FROM recordings WHERE id = $1 AND user_id = $2`
	rec, err := scanRecording(conn(ctx, r.pool).QueryRow(ctx, q, recordingID, userID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("fetch recording %s: %w", recordingID, err)
	}
	return rec, nil
}

func (r *recordingRepo) ListRecordingsByUser(ctx context.Context, userID string, limit, offset int) ([]model.Recording, error) {
	q := `SELECT ` + recordingColumns + `
          FROM recordings
          WHERE user_id = $1
          ORDER BY created_at DESC
          LIMIT $2 OFFSET $3`
	rows, err := conn(ctx, r.pool).Query(ctx, q, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list recordings for user %s: %w", userID, err)
	}
	defer rows.Close()

	recs := []model.Recording{}
	for rows.Next() {
		rec, err := scanRecording(rows)
		if err != nil {
			return nil, fmt.Errorf("scan recording: %w", err)
		}
		recs = append(recs, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate recordings: %w", err)
	}
	return recs, nil
}

func (r *recordingRepo) CompleteRecording(ctx context.Context, recordingID, transcript string, language *string) (*model.Recording, error) {
	q := `UPDATE recordings
          SET transcript = $2,
              language_detected = COALESCE($3, language_detected),
              status = 'completed',
              updated_at = NOW()
          WHERE id = $1 AND status IN ('processing', 'transcribing')
          RETURNING ` + recordingColumns
	rec, err := scanRecording(conn(ctx, r.pool).QueryRow(ctx, q, recordingID, transcript, language))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrRecordingNotInFlight
	}
	if err != nil {
		return nil, fmt.Errorf("complete recording %s: %w", recordingID, err)
	}
	return rec, nil
}

func (r *recordingRepo) MarkRecordingFailed(ctx context.Context, recordingID string) error {
	const q = `UPDATE recordings
               SET status = 'failed', transcript = NULL, updated_at = NOW()
               WHERE id = $1 AND status IN ('processing', 'transcribing')`
	tag, err := conn(ctx, r.pool).Exec(ctx, q, recordingID)
	if err != nil {
		return fmt.Errorf("mark recording %s failed: %w", recordingID, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrRecordingNotInFlight
	}
	return nil
}
