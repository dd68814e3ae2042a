package uploads

import (
	"bytes"
	"errors"
	"io"
	"mime"
	"net/http"
	"path"
	"strings"

	"github.com/gin-gonic/gin"

	"resume-feedback/internal/shared/server/middleware"
	"resume-feedback/internal/shared/server/respond"
	"resume-feedback/internal/shared/storage/object"
	"resume-feedback/internal/shared/telemetry"
	"resume-feedback/internal/shared/util"
)

const defaultMaxUploadBytes = 10 << 20

var allowedContentTypes = map[string]struct{}{
	"application/pdf": {},
	"image/png":       {},
	"image/jpeg":      {},
	"image/webp":      {},
}

// Handler stores files in the object store and serves them back.
type Handler struct {
	Store    object.ObjectStore
	MaxBytes int64
}

// NewHandler constructs a Handler.
func NewHandler(store object.ObjectStore, maxBytes int64) *Handler {
	if maxBytes <= 0 {
		maxBytes = defaultMaxUploadBytes
	}
	return &Handler{Store: store, MaxBytes: maxBytes}
}

type uploadResponse struct {
	URL         string `json:"url"`
	Key         string `json:"key"`
	Size        int64  `json:"size"`
	ContentType string `json:"contentType"`
}

// RegisterRoutes attaches the upload route to a session-protected group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/uploads", h.upload)
}

// RegisterFileRoutes attaches the public file route.
func (h *Handler) RegisterFileRoutes(r gin.IRoutes) {
	r.GET("/files/*key", h.serve)
}

func (h *Handler) upload(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.MaxBytes+(1<<20))

	fileName := strings.TrimSpace(c.Query("filename"))
	var body io.Reader = c.Request.Body
	contentType := mediaType(c.GetHeader("Content-Type"))

	if strings.HasPrefix(contentType, "multipart/") {
		fh, err := c.FormFile("file")
		if err != nil {
			respond.Error(c, http.StatusBadRequest, "validation_error", "file is required", nil)
			return
		}
		if fh.Size > h.MaxBytes {
			respond.Error(c, http.StatusRequestEntityTooLarge, "file_too_large", "file exceeds size limit", gin.H{"maxBytes": h.MaxBytes})
			return
		}
		f, err := fh.Open()
		if err != nil {
			respond.Error(c, http.StatusBadRequest, "validation_error", "unable to read file", nil)
			return
		}
		defer f.Close()
		body = f
		if fileName == "" {
			fileName = fh.Filename
		}
		contentType = mediaType(fh.Header.Get("Content-Type"))
	}

	if fileName == "" {
		respond.Error(c, http.StatusBadRequest, "validation_error", "filename is required", nil)
		return
	}
	if _, err := util.SanitizeFileName(fileName); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid filename", nil)
		return
	}
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = mime.TypeByExtension(strings.ToLower(path.Ext(fileName)))
	}
	if _, ok := allowedContentTypes[mediaType(contentType)]; !ok {
		respond.Error(c, http.StatusUnsupportedMediaType, "unsupported_type", "only PDF and image uploads are accepted", nil)
		return
	}

	data, err := io.ReadAll(io.LimitReader(body, h.MaxBytes+1))
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			respond.Error(c, http.StatusRequestEntityTooLarge, "file_too_large", "file exceeds size limit", gin.H{"maxBytes": h.MaxBytes})
			return
		}
		respond.Error(c, http.StatusBadRequest, "validation_error", "unable to read upload body", nil)
		return
	}
	if int64(len(data)) > h.MaxBytes {
		respond.Error(c, http.StatusRequestEntityTooLarge, "file_too_large", "file exceeds size limit", gin.H{"maxBytes": h.MaxBytes})
		return
	}

	obj, err := h.Store.Save(c.Request.Context(), userID, fileName, bytes.NewReader(data))
	if err != nil {
		telemetry.Error("uploads.save.failed", map[string]any{
			"err":        err,
			"user_id":    userID,
			"request_id": middleware.RequestIDFromContext(c),
		})
		respond.Error(c, http.StatusBadGateway, "upload_failed", "failed to store file", nil)
		return
	}
	if obj.MimeType == "" || strings.HasPrefix(obj.MimeType, "application/octet-stream") {
		obj.MimeType = contentType
	}

	respond.OK(c, uploadResponse{
		URL:         obj.URL,
		Key:         obj.Key,
		Size:        obj.SizeBytes,
		ContentType: mediaType(obj.MimeType),
	})
}

func (h *Handler) serve(c *gin.Context) {
	key := strings.TrimPrefix(c.Param("key"), "/")
	rc, err := h.Store.Open(c.Request.Context(), key)
	if err != nil {
		switch {
		case errors.Is(err, object.ErrNotFound), errors.Is(err, object.ErrInvalidKey):
			respond.Error(c, http.StatusNotFound, "not_found", "file not found", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to read file", nil)
		}
		return
	}
	defer rc.Close()

	contentType := mime.TypeByExtension(strings.ToLower(path.Ext(key)))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	c.DataFromReader(http.StatusOK, -1, contentType, rc, map[string]string{
		"Cache-Control": "private, max-age=300",
	})
}

func mediaType(value string) string {
	if value == "" {
		return ""
	}
	mt, _, err := mime.ParseMediaType(value)
	if err != nil {
		return strings.ToLower(strings.TrimSpace(value))
	}
	return mt
}
