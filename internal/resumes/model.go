package resumes

import (
	"time"

	"resume-feedback/internal/feedback"
)

// Record is a stored résumé with its optional feedback. A nil Feedback means
// the document is uploaded but not analyzed yet.
type Record struct {
	ID              string
	OwnerID         string
	JobTitle        string
	CompanyName     string
	JobDescription  string
	DocumentURL     string
	DocumentKey     string
	FileName        string
	PreviewImageURL string
	Feedback        *feedback.Report
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Metadata is the user-supplied description of the target job.
type Metadata struct {
	JobTitle       string `json:"jobTitle" validate:"required,min=2"`
	CompanyName    string `json:"companyName" validate:"required,min=2"`
	JobDescription string `json:"jobDescription" validate:"required,min=10"`
}

// CreateInput carries everything needed to create a record.
type CreateInput struct {
	Metadata
	DocumentURL     string `validate:"required"`
	DocumentKey     string
	FileName        string
	PreviewImageURL string
}

// Patch lists the mutable fields. Nil fields are left untouched.
type Patch struct {
	Feedback        *feedback.Report
	PreviewImageURL *string
}

// Empty reports whether the patch changes nothing.
func (p Patch) Empty() bool {
	return p.Feedback == nil && p.PreviewImageURL == nil
}
