package resumes

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"resume-feedback/internal/feedback"
	"resume-feedback/internal/shared/telemetry"
)

// Service coordinates validation and persistence of résumé records.
type Service struct {
	Repo      Repo
	Now       func() time.Time
	NewID     func() string
	validator *validator.Validate
}

// NewService constructs a Service.
func NewService(repo Repo) *Service {
	return &Service{
		Repo:      repo,
		Now:       func() time.Time { return time.Now().UTC() },
		NewID:     uuid.NewString,
		validator: validator.New(),
	}
}

// ValidateMetadata checks the job metadata. Values are trimmed in place.
func (s *Service) ValidateMetadata(meta *Metadata) error {
	meta.JobTitle = strings.TrimSpace(meta.JobTitle)
	meta.CompanyName = strings.TrimSpace(meta.CompanyName)
	meta.JobDescription = strings.TrimSpace(meta.JobDescription)
	if err := s.validator.Struct(meta); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidInput, describeValidation(err))
	}
	return nil
}

// Create stores a new record with no feedback.
func (s *Service) Create(ctx context.Context, ownerID string, in CreateInput) (Record, error) {
	if strings.TrimSpace(ownerID) == "" {
		return Record{}, fmt.Errorf("%w: owner is required", ErrInvalidInput)
	}
	if err := s.ValidateMetadata(&in.Metadata); err != nil {
		return Record{}, err
	}
	in.DocumentURL = strings.TrimSpace(in.DocumentURL)
	if in.DocumentURL == "" {
		return Record{}, fmt.Errorf("%w: documentUrl is required", ErrInvalidInput)
	}

	now := s.Now()
	rec := Record{
		ID:              s.NewID(),
		OwnerID:         ownerID,
		JobTitle:        in.JobTitle,
		CompanyName:     in.CompanyName,
		JobDescription:  in.JobDescription,
		DocumentURL:     in.DocumentURL,
		DocumentKey:     in.DocumentKey,
		FileName:        in.FileName,
		PreviewImageURL: strings.TrimSpace(in.PreviewImageURL),
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.Repo.Create(ctx, rec); err != nil {
		return Record{}, err
	}
	telemetry.Info("resume.created", map[string]any{
		"record_id": rec.ID,
		"user_id":   ownerID,
	})
	return rec, nil
}

// Get returns one of the owner's records.
func (s *Service) Get(ctx context.Context, ownerID, id string) (Record, error) {
	return s.Repo.GetByID(ctx, ownerID, id)
}

// List returns the owner's records, newest first.
func (s *Service) List(ctx context.Context, ownerID string) ([]Record, error) {
	return s.Repo.ListByOwner(ctx, ownerID)
}

// Patch updates feedback and/or the preview image URL.
func (s *Service) Patch(ctx context.Context, ownerID, id string, patch Patch) (Record, error) {
	if patch.Empty() {
		return Record{}, fmt.Errorf("%w: nothing to update", ErrInvalidInput)
	}
	if patch.PreviewImageURL != nil {
		trimmed := strings.TrimSpace(*patch.PreviewImageURL)
		patch.PreviewImageURL = &trimmed
	}
	return s.Repo.Patch(ctx, ownerID, id, patch)
}

// SetFeedback records the analysis result.
func (s *Service) SetFeedback(ctx context.Context, ownerID, id string, report feedback.Report) (Record, error) {
	return s.Repo.SetFeedback(ctx, ownerID, id, report)
}

// Delete removes one of the owner's records.
func (s *Service) Delete(ctx context.Context, ownerID, id string) error {
	if err := s.Repo.DeleteByID(ctx, ownerID, id); err != nil {
		return err
	}
	telemetry.Info("resume.deleted", map[string]any{
		"record_id": id,
		"user_id":   ownerID,
	})
	return nil
}

// DeleteAll removes every record of the owner and returns the count.
func (s *Service) DeleteAll(ctx context.Context, ownerID string) (int, error) {
	n, err := s.Repo.DeleteByOwner(ctx, ownerID)
	if err != nil {
		return 0, err
	}
	telemetry.Info("resume.deleted_all", map[string]any{
		"user_id": ownerID,
		"count":   n,
	})
	return n, nil
}

func describeValidation(err error) string {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok || len(verrs) == 0 {
		return err.Error()
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		name := jsonName(fe.Field())
		switch fe.Tag() {
		case "required":
			parts = append(parts, name+" is required")
		case "min":
			parts = append(parts, fmt.Sprintf("%s must be at least %s characters", name, fe.Param()))
		default:
			parts = append(parts, name+" is invalid")
		}
	}
	return strings.Join(parts, "; ")
}

func jsonName(field string) string {
	if field == "" {
		return field
	}
	return strings.ToLower(field[:1]) + field[1:]
}
