package feedback

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"resume-feedback/internal/shared/server/respond"
)

// Runner is the extraction entry point used by the HTTP handler.
type Runner interface {
	Extract(ctx context.Context, jobDescription, documentURL string) (Result, error)
}

// Handler exposes extraction over HTTP.
type Handler struct {
	Runner    Runner
	validator *validator.Validate
}

// NewHandler constructs a Handler.
func NewHandler(runner Runner) *Handler {
	return &Handler{Runner: runner, validator: validator.New()}
}

// RegisterRoutes attaches the feedback route to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/feedback", h.generate)
}

type generateRequest struct {
	JobDescription string `json:"jobDescription" validate:"required"`
	DocumentURL    string `json:"documentUrl" validate:"required,url"`
}

func (h *Handler) generate(c *gin.Context) {
	var req generateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}
	req.JobDescription = strings.TrimSpace(req.JobDescription)
	req.DocumentURL = strings.TrimSpace(req.DocumentURL)
	if err := h.validator.Struct(req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "jobDescription and a valid documentUrl are required", nil)
		return
	}

	res, err := h.Runner.Extract(c.Request.Context(), req.JobDescription, req.DocumentURL)
	if err != nil {
		var ee *ExtractionError
		if errors.As(err, &ee) {
			respond.Error(c, http.StatusInternalServerError, "extraction_failed", "failed to generate feedback", gin.H{
				"kind":      ee.Kind,
				"retryable": ee.Retryable(),
			})
			return
		}
		respond.Error(c, http.StatusInternalServerError, "extraction_failed", "failed to generate feedback", nil)
		return
	}

	respond.OK(c, gin.H{"feedback": res.Report})
}
