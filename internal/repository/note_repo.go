package repository

import (
	"context"
	"errors"
	"fmt"

	"physionote/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// NoteRepository defines methods for persisting SOAP notes.
type NoteRepository interface {
	CreateNote(ctx context.Context, n *model.Note) (*model.Note, error)
	// GetNoteForUser returns nil, nil unless the note exists and belongs to userID.
	GetNoteForUser(ctx context.Context, noteID, userID string) (*model.Note, error)
	ListNotesByRecording(ctx context.Context, recordingID, userID string) ([]model.Note, error)
}

type noteRepository struct {
	pool *pgxpool.Pool
}

func NewNoteRepository(pool *pgxpool.Pool) NoteRepository {
	return &noteRepository{pool: pool}
}

const noteColumns = `id, user_id, recording_id, subjective, objective, assessment, plan,
        language, format, verbosity, created_at, updated_at`

func scanNote(row pgx.Row) (*model.Note, error) {
	var n model.Note
	if err := row.Scan(
		&n.ID,
		&n.UserID,
		&n.RecordingID,
		&n.Subjective,
		&n.Objective,
		&n.Assessment,
		&n.Plan,
		&n.Language,
		&n.Format,
		&n.Verbosity,
		&n.CreatedAt,
		&n.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &n, nil
}

func (r *noteRepository) CreateNote(ctx context.Context, n *model.Note) (*model.Note, error) {
	q := `INSERT INTO soap_notes (user_id, recording_id, subjective, objective, assessment, plan,
                                  language, format, verbosity)
          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
          RETURNING ` + noteColumns
	created, err := scanNote(conn(ctx, r.pool).QueryRow(ctx, q,
		n.UserID, n.RecordingID, n.Subjective, n.Objective, n.Assessment, n.Plan,
		n.Language, n.Format, n.Verbosity,
	))
	if err != nil {
		return nil, fmt.Errorf("create note for recording %s: %w", n.RecordingID, err)
	}
	return created, nil
}

func (r *noteRepository) GetNoteForUser(ctx context.Context, noteID, userID string) (*model.Note, error) {
	q := `SELECT ` + noteColumns + ` FROM soap_notes WHERE id = $1 AND user_id = $2`
	n, err := scanNote(conn(ctx, r.pool).QueryRow(ctx, q, noteID, userID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("fetch note %s: %w", noteID, err)
	}
	return n, nil
}

func (r *noteRepository) ListNotesByRecording(ctx context.Context, recordingID, userID string) ([]model.Note, error) {
	q := `SELECT ` + noteColumns + `
          FROM soap_notes
          WHERE recording_id = $1 AND user_id = $2
          ORDER BY created_at DESC`
	rows, err := conn(ctx, r.pool).Query(ctx, q, recordingID, userID)
	if err != nil {
		return nil, fmt.Errorf("list notes for recording %s: %w", recordingID, err)
	}
	defer rows.Close()

	notes := []model.Note{}
	for rows.Next() {
		n, err := scanNote(rows)
		if err != nil {
			return nil, fmt.Errorf("scan note: %w", err)
		}
		notes = append(notes, *n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate notes: %w", err)
	}
	return notes, nil
}
