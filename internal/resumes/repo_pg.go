package resumes

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"resume-feedback/internal/feedback"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB  *sql.DB
	Now func() time.Time
}

const recordColumns = `id, owner_id, job_title, company_name, job_description, document_url, document_key, file_name, preview_image_url, feedback, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

// Create inserts a new record.
func (r *PGRepo) Create(ctx context.Context, rec Record) error {
	const query = `
INSERT INTO resumes (
    id,
    owner_id,
    job_title,
    company_name,
    job_description,
    document_url,
    document_key,
    file_name,
    preview_image_url,
    feedback,
    created_at,
    updated_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

	fb, err := feedbackArg(rec.Feedback)
	if err != nil {
		return err
	}
	_, err = r.DB.ExecContext(
		ctx,
		query,
		rec.ID,
		rec.OwnerID,
		rec.JobTitle,
		rec.CompanyName,
		rec.JobDescription,
		rec.DocumentURL,
		rec.DocumentKey,
		rec.FileName,
		rec.PreviewImageURL,
		fb,
		rec.CreatedAt,
		rec.UpdatedAt,
	)
	return err
}

// GetByID fetches a record by ID for an owner.
func (r *PGRepo) GetByID(ctx context.Context, ownerID, id string) (Record, error) {
	query := `
SELECT ` + recordColumns + `
FROM resumes
WHERE id = $1 AND owner_id = $2`
	return scanOne(r.DB.QueryRowContext(ctx, query, id, ownerID))
}

// ListByOwner lists an owner's records newest-first.
func (r *PGRepo) ListByOwner(ctx context.Context, ownerID string) ([]Record, error) {
	query := `
SELECT ` + recordColumns + `
FROM resumes
WHERE owner_id = $1
ORDER BY created_at DESC, id DESC`

	rows, err := r.DB.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Record, 0)
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// Patch updates the non-nil fields of patch in a single statement.
func (r *PGRepo) Patch(ctx context.Context, ownerID, id string, patch Patch) (Record, error) {
	query := `
UPDATE resumes
SET preview_image_url = COALESCE($3::text, preview_image_url),
    feedback = COALESCE($4::jsonb, feedback),
    updated_at = $5
WHERE id = $1 AND owner_id = $2
RETURNING ` + recordColumns

	fb, err := feedbackArg(patch.Feedback)
	if err != nil {
		return Record{}, err
	}
	var preview any
	if patch.PreviewImageURL != nil {
		preview = *patch.PreviewImageURL
	}
	return scanOne(r.DB.QueryRowContext(ctx, query, id, ownerID, preview, fb, r.now()))
}

// SetFeedback stores the analysis result on the record.
func (r *PGRepo) SetFeedback(ctx context.Context, ownerID, id string, report feedback.Report) (Record, error) {
	query := `
UPDATE resumes
SET feedback = $3::jsonb, updated_at = $4
WHERE id = $1 AND owner_id = $2
RETURNING ` + recordColumns

	fb, err := feedbackArg(&report)
	if err != nil {
		return Record{}, err
	}
	return scanOne(r.DB.QueryRowContext(ctx, query, id, ownerID, fb, r.now()))
}

// DeleteByID removes the owner's record.
func (r *PGRepo) DeleteByID(ctx context.Context, ownerID, id string) error {
	const query = `DELETE FROM resumes WHERE id = $1 AND owner_id = $2`
	res, err := r.DB.ExecContext(ctx, query, id, ownerID)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteByOwner removes every record of the owner.
func (r *PGRepo) DeleteByOwner(ctx context.Context, ownerID string) (int, error) {
	const query = `DELETE FROM resumes WHERE owner_id = $1`
	res, err := r.DB.ExecContext(ctx, query, ownerID)
	if err != nil {
		return 0, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	return int(affected), nil
}

func (r *PGRepo) now() time.Time {
	if r.Now != nil {
		return r.Now()
	}
	return time.Now().UTC()
}

func scanOne(row *sql.Row) (Record, error) {
	rec, err := scanRecord(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Record{}, ErrNotFound
		}
		return Record{}, err
	}
	return rec, nil
}

func scanRecord(s rowScanner) (Record, error) {
	var rec Record
	var fb []byte
	if err := s.Scan(
		&rec.ID,
		&rec.OwnerID,
		&rec.JobTitle,
		&rec.CompanyName,
		&rec.JobDescription,
		&rec.DocumentURL,
		&rec.DocumentKey,
		&rec.FileName,
		&rec.PreviewImageURL,
		&fb,
		&rec.CreatedAt,
		&rec.UpdatedAt,
	); err != nil {
		return Record{}, err
	}
	if len(fb) > 0 && string(fb) != "null" {
		var report feedback.Report
		if err := json.Unmarshal(fb, &report); err != nil {
			return Record{}, fmt.Errorf("decode feedback for resume %s: %w", rec.ID, err)
		}
		rec.Feedback = &report
	}
	return rec, nil
}

// feedbackArg returns nil for SQL NULL or the JSON text of the report.
func feedbackArg(report *feedback.Report) (any, error) {
	if report == nil {
		return nil, nil
	}
	raw, err := json.Marshal(report)
	if err != nil {
		return nil, fmt.Errorf("encode feedback: %w", err)
	}
	return string(raw), nil
}

var _ Repo = (*PGRepo)(nil)
