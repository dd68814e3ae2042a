package resumes

import (
	"context"

	"resume-feedback/internal/feedback"
)

// Repo persists résumé records. Every method is scoped to an owner; a record
// that exists under another owner behaves as missing.
type Repo interface {
	Create(ctx context.Context, rec Record) error
	GetByID(ctx context.Context, ownerID, id string) (Record, error)
	ListByOwner(ctx context.Context, ownerID string) ([]Record, error)
	Patch(ctx context.Context, ownerID, id string, patch Patch) (Record, error)
	SetFeedback(ctx context.Context, ownerID, id string, report feedback.Report) (Record, error)
	DeleteByID(ctx context.Context, ownerID, id string) error
	DeleteByOwner(ctx context.Context, ownerID string) (int, error)
}
