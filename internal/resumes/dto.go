package resumes

import (
	"time"

	"resume-feedback/internal/feedback"
)

// Response is the JSON form of a Record.
type Response struct {
	ID              string           `json:"id"`
	OwnerID         string           `json:"ownerId"`
	JobTitle        string           `json:"jobTitle"`
	CompanyName     string           `json:"companyName"`
	JobDescription  string           `json:"jobDescription"`
	DocumentURL     string           `json:"documentUrl"`
	FileName        string           `json:"fileName,omitempty"`
	PreviewImageURL string           `json:"previewImageUrl,omitempty"`
	Feedback        *feedback.Report `json:"feedback"`
	CreatedAt       time.Time        `json:"createdAt"`
	UpdatedAt       time.Time        `json:"updatedAt"`
}

// ToResponse maps a Record to its JSON form.
func ToResponse(rec Record) Response {
	return Response{
		ID:              rec.ID,
		OwnerID:         rec.OwnerID,
		JobTitle:        rec.JobTitle,
		CompanyName:     rec.CompanyName,
		JobDescription:  rec.JobDescription,
		DocumentURL:     rec.DocumentURL,
		FileName:        rec.FileName,
		PreviewImageURL: rec.PreviewImageURL,
		Feedback:        rec.Feedback,
		CreatedAt:       rec.CreatedAt,
		UpdatedAt:       rec.UpdatedAt,
	}
}

type createRequest struct {
	JobTitle        string `json:"jobTitle"`
	CompanyName     string `json:"companyName"`
	JobDescription  string `json:"jobDescription"`
	DocumentURL     string `json:"documentUrl"`
	ImagePath       string `json:"imagePath"`
	PreviewImageURL string `json:"previewImageUrl"`
}

type patchRequest struct {
	Feedback        *feedback.Report `json:"feedback"`
	PreviewImageURL *string          `json:"previewImageUrl"`
}
