package pipeline

import (
	"context"
	"errors"
	"mime/multipart"
	"net/http"
	"path"
	"strings"

	"github.com/gin-gonic/gin"

	"resume-feedback/internal/feedback"
	"resume-feedback/internal/resumes"
	"resume-feedback/internal/shared/server/middleware"
	"resume-feedback/internal/shared/server/respond"
)

const (
	maxDocumentBytes = 10 << 20
	maxPreviewBytes  = 5 << 20
)

var previewTypes = map[string]struct{}{
	"image/png":  {},
	"image/jpeg": {},
	"image/webp": {},
}

// Runner is the pipeline entry point used by the HTTP handler.
type Runner interface {
	Run(ctx context.Context, in Input) (resumes.Record, error)
	Reanalyze(ctx context.Context, ownerID, recordID string) (resumes.Record, error)
}

// Handler exposes the pipeline over HTTP.
type Handler struct {
	Runner Runner
}

// NewHandler constructs a Handler.
func NewHandler(runner Runner) *Handler {
	return &Handler{Runner: runner}
}

// RegisterRoutes attaches pipeline routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/resumes/analyze", h.analyze)
	rg.POST("/resumes/:id/analyze", h.reanalyze)
}

func (h *Handler) analyze(c *gin.Context) {
	ownerID := middleware.UserIDFromContext(c)
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxDocumentBytes+maxPreviewBytes+(1<<20))

	fh, err := c.FormFile("file")
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "file is required", nil)
		return
	}
	if fh.Size > maxDocumentBytes {
		respond.Error(c, http.StatusRequestEntityTooLarge, "file_too_large", "file exceeds size limit", gin.H{"maxBytes": maxDocumentBytes})
		return
	}
	if !isPDF(fh) {
		respond.Error(c, http.StatusBadRequest, "validation_error", "file must be a PDF", nil)
		return
	}

	file, err := fh.Open()
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "unable to read file", nil)
		return
	}
	defer file.Close()

	in := Input{
		OwnerID:  ownerID,
		FileName: fh.Filename,
		File:     file,
		Metadata: resumes.Metadata{
			JobTitle:       c.PostForm("jobTitle"),
			CompanyName:    c.PostForm("companyName"),
			JobDescription: c.PostForm("jobDescription"),
		},
	}

	if ph, err := c.FormFile("preview"); err == nil {
		if ph.Size > maxPreviewBytes {
			respond.Error(c, http.StatusRequestEntityTooLarge, "file_too_large", "preview exceeds size limit", gin.H{"maxBytes": maxPreviewBytes})
			return
		}
		if _, ok := previewTypes[strings.ToLower(ph.Header.Get("Content-Type"))]; !ok {
			respond.Error(c, http.StatusBadRequest, "validation_error", "preview must be a png, jpeg or webp image", nil)
			return
		}
		preview, err := ph.Open()
		if err != nil {
			respond.Error(c, http.StatusBadRequest, "validation_error", "unable to read preview", nil)
			return
		}
		defer preview.Close()
		in.Preview = &Upload{FileName: ph.Filename, Body: preview}
	}

	rec, err := h.Runner.Run(c.Request.Context(), in)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.Set(middleware.RecordIDKey, rec.ID)
	respond.Created(c, resumes.ToResponse(rec))
}

func (h *Handler) reanalyze(c *gin.Context) {
	ownerID := middleware.UserIDFromContext(c)
	id := c.Param("id")
	c.Set(middleware.RecordIDKey, id)

	rec, err := h.Runner.Reanalyze(c.Request.Context(), ownerID, id)
	if err != nil {
		h.fail(c, err)
		return
	}
	respond.OK(c, resumes.ToResponse(rec))
}

func (h *Handler) fail(c *gin.Context, err error) {
	var perr *Error
	if !errors.As(err, &perr) {
		switch {
		case errors.Is(err, resumes.ErrInvalidInput):
			respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
		case errors.Is(err, resumes.ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "resume not found", nil)
		case errors.Is(err, resumes.ErrAlreadyAnalyzed):
			respond.Error(c, http.StatusConflict, "already_analyzed", "resume already has feedback", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "analysis pipeline failed", nil)
		}
		return
	}

	c.Set(middleware.PipelineStageKey, string(perr.Stage))
	if perr.RecordID != "" {
		c.Set(middleware.RecordIDKey, perr.RecordID)
	}

	switch perr.Stage {
	case StageUpload:
		respond.Error(c, http.StatusBadGateway, "upload_failed", "failed to store the document", nil)
	case StagePersist:
		respond.Error(c, http.StatusInternalServerError, "persist_failed", "failed to save the resume", nil)
	case StageAnalysis:
		details := gin.H{"recordId": perr.RecordID, "retryable": true}
		var ee *feedback.ExtractionError
		if errors.As(perr.Err, &ee) {
			details["kind"] = ee.Kind
			details["retryable"] = ee.Retryable()
		}
		respond.Error(c, http.StatusBadGateway, "analysis_failed", "failed to analyze the resume", details)
	default:
		respond.Error(c, http.StatusInternalServerError, "finalize_failed", "failed to save the analysis", gin.H{"recordId": perr.RecordID})
	}
}

func isPDF(fh *multipart.FileHeader) bool {
	if strings.EqualFold(fh.Header.Get("Content-Type"), "application/pdf") {
		return true
	}
	return strings.EqualFold(path.Ext(fh.Filename), ".pdf")
}
