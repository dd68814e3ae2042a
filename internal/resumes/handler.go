package resumes

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"resume-feedback/internal/shared/server/middleware"
	"resume-feedback/internal/shared/server/respond"
)

// Handler wires HTTP handlers to the service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches résumé routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/resumes", h.create)
	rg.GET("/resumes", h.list)
	rg.DELETE("/resumes", h.deleteAll)
	rg.GET("/resumes/:id", h.get)
	rg.PATCH("/resumes/:id", h.patch)
	rg.DELETE("/resumes/:id", h.delete)
}

func (h *Handler) create(c *gin.Context) {
	ownerID := middleware.UserIDFromContext(c)

	var req createRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}
	documentURL := strings.TrimSpace(req.DocumentURL)
	if documentURL == "" {
		documentURL = strings.TrimSpace(req.ImagePath)
	}

	rec, err := h.Svc.Create(c.Request.Context(), ownerID, CreateInput{
		Metadata: Metadata{
			JobTitle:       req.JobTitle,
			CompanyName:    req.CompanyName,
			JobDescription: req.JobDescription,
		},
		DocumentURL:     documentURL,
		PreviewImageURL: req.PreviewImageURL,
	})
	if err != nil {
		h.fail(c, err, "failed to create resume")
		return
	}
	c.Set(middleware.RecordIDKey, rec.ID)
	respond.Created(c, ToResponse(rec))
}

func (h *Handler) list(c *gin.Context) {
	ownerID := middleware.UserIDFromContext(c)

	recs, err := h.Svc.List(c.Request.Context(), ownerID)
	if err != nil {
		h.fail(c, err, "failed to list resumes")
		return
	}
	out := make([]Response, 0, len(recs))
	for _, rec := range recs {
		out = append(out, ToResponse(rec))
	}
	respond.OK(c, out)
}

func (h *Handler) get(c *gin.Context) {
	ownerID := middleware.UserIDFromContext(c)
	id := c.Param("id")
	c.Set(middleware.RecordIDKey, id)

	rec, err := h.Svc.Get(c.Request.Context(), ownerID, id)
	if err != nil {
		h.fail(c, err, "failed to fetch resume")
		return
	}
	respond.OK(c, ToResponse(rec))
}

func (h *Handler) patch(c *gin.Context) {
	ownerID := middleware.UserIDFromContext(c)
	id := c.Param("id")
	c.Set(middleware.RecordIDKey, id)

	var req patchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}

	rec, err := h.Svc.Patch(c.Request.Context(), ownerID, id, Patch{
		Feedback:        req.Feedback,
		PreviewImageURL: req.PreviewImageURL,
	})
	if err != nil {
		h.fail(c, err, "failed to update resume")
		return
	}
	respond.OK(c, ToResponse(rec))
}

func (h *Handler) delete(c *gin.Context) {
	ownerID := middleware.UserIDFromContext(c)
	id := c.Param("id")
	c.Set(middleware.RecordIDKey, id)

	if err := h.Svc.Delete(c.Request.Context(), ownerID, id); err != nil {
		h.fail(c, err, "failed to delete resume")
		return
	}
	respond.OK(c, gin.H{"deleted": true, "id": id})
}

func (h *Handler) deleteAll(c *gin.Context) {
	ownerID := middleware.UserIDFromContext(c)

	n, err := h.Svc.DeleteAll(c.Request.Context(), ownerID)
	if err != nil {
		h.fail(c, err, "failed to delete resumes")
		return
	}
	respond.OK(c, gin.H{"deletedCount": n})
}

func (h *Handler) fail(c *gin.Context, err error, message string) {
	switch {
	case errors.Is(err, ErrNotFound):
		respond.Error(c, http.StatusNotFound, "not_found", "resume not found", nil)
	case errors.Is(err, ErrInvalidInput):
		respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
	default:
		respond.Error(c, http.StatusInternalServerError, "internal_error", message, nil)
	}
}
