package resumes

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"resume-feedback/internal/feedback"
)

var pgColumns = []string{
	"id", "owner_id", "job_title", "company_name", "job_description", "document_url",
	"document_key", "file_name", "preview_image_url", "feedback", "created_at", "updated_at",
}

func newMockRepo(t *testing.T) (*PGRepo, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	now := time.Date(2026, 2, 2, 0, 0, 0, 0, time.UTC)
	return &PGRepo{DB: db, Now: func() time.Time { return now }}, mock
}

func TestPGRepoCreateStoresNullFeedback(t *testing.T) {
	repo, mock := newMockRepo(t)
	rec := Record{
		ID:             "r1",
		OwnerID:        "u1",
		JobTitle:       "SRE",
		CompanyName:    "Acme",
		JobDescription: "Keep it running.",
		DocumentURL:    "https://files/x.pdf",
		DocumentKey:    "abc/x.pdf",
		FileName:       "x.pdf",
		CreatedAt:      time.Now().UTC(),
		UpdatedAt:      time.Now().UTC(),
	}

	mock.ExpectExec("INSERT INTO resumes").
		WithArgs(
			rec.ID,
			rec.OwnerID,
			rec.JobTitle,
			rec.CompanyName,
			rec.JobDescription,
			rec.DocumentURL,
			rec.DocumentKey,
			rec.FileName,
			rec.PreviewImageURL,
			nil, // feedback
			rec.CreatedAt,
			rec.UpdatedAt,
		).
		WillReturnResult(sqlmock.NewResult(1, 1))

	if err := repo.Create(context.Background(), rec); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoGetByIDDecodesFeedback(t *testing.T) {
	repo, mock := newMockRepo(t)
	created := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows(pgColumns).AddRow(
		"r1", "u1", "SRE", "Acme", "Keep it running.", "https://files/x.pdf",
		"abc/x.pdf", "x.pdf", "", []byte(`{"overallScore":77,"ATS":{"score":70,"tips":[]}}`), created, created,
	)
	mock.ExpectQuery("FROM resumes\\s+WHERE id").
		WithArgs("r1", "u1").
		WillReturnRows(rows)

	rec, err := repo.GetByID(context.Background(), "u1", "r1")
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if rec.Feedback == nil || rec.Feedback.OverallScore != 77 || rec.Feedback.ATS.Score != 70 {
		t.Fatalf("unexpected feedback: %+v", rec.Feedback)
	}
}

func TestPGRepoGetByIDNotFound(t *testing.T) {
	repo, mock := newMockRepo(t)
	mock.ExpectQuery("FROM resumes\\s+WHERE id").
		WithArgs("r1", "other").
		WillReturnRows(sqlmock.NewRows(pgColumns))

	if _, err := repo.GetByID(context.Background(), "other", "r1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPGRepoSetFeedback(t *testing.T) {
	repo, mock := newMockRepo(t)
	created := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows(pgColumns).AddRow(
		"r1", "u1", "SRE", "Acme", "Keep it running.", "https://files/x.pdf",
		"abc/x.pdf", "x.pdf", "", []byte(`{"overallScore":90}`), created, repo.Now(),
	)
	mock.ExpectQuery("UPDATE resumes").
		WithArgs("r1", "u1", sqlmock.AnyArg(), repo.Now()).
		WillReturnRows(rows)

	rec, err := repo.SetFeedback(context.Background(), "u1", "r1", feedback.Report{OverallScore: 90})
	if err != nil {
		t.Fatalf("SetFeedback: %v", err)
	}
	if rec.Feedback == nil || rec.Feedback.OverallScore != 90 {
		t.Fatalf("unexpected feedback: %+v", rec.Feedback)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoDeleteByIDNotFound(t *testing.T) {
	repo, mock := newMockRepo(t)
	mock.ExpectExec("DELETE FROM resumes").
		WithArgs("r1", "u1").
		WillReturnResult(sqlmock.NewResult(0, 0))

	if err := repo.DeleteByID(context.Background(), "u1", "r1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPGRepoDeleteByOwnerReturnsCount(t *testing.T) {
	repo, mock := newMockRepo(t)
	mock.ExpectExec("DELETE FROM resumes WHERE owner_id").
		WithArgs("u1").
		WillReturnResult(sqlmock.NewResult(0, 3))

	n, err := repo.DeleteByOwner(context.Background(), "u1")
	if err != nil {
		t.Fatalf("DeleteByOwner: %v", err)
	}
	if n != 3 {
		t.Fatalf("expected 3, got %d", n)
	}
}
