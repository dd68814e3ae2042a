package pipeline

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resume-feedback/internal/resumes"
	"resume-feedback/internal/shared/server/middleware"
)

func newPipelineRouter(svc *Service, userID string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	rg := r.Group("/api/v1")
	rg.Use(func(c *gin.Context) {
		middleware.SetUserID(c, userID)
		c.Next()
	})
	NewHandler(svc).RegisterRoutes(rg)
	return r
}

func multipartBody(t *testing.T, withFile bool) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	fields := map[string]string{
		"jobTitle":       "Senior Backend Engineer",
		"companyName":    "Acme",
		"jobDescription": "Senior backend engineer, Go, distributed systems",
	}
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	if withFile {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", `form-data; name="file"; filename="cv.pdf"`)
		h.Set("Content-Type", "application/pdf")
		part, err := w.CreatePart(h)
		require.NoError(t, err)
		_, err = part.Write([]byte("%PDF-1.4 test"))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return &buf, w.FormDataContentType()
}

func postAnalyze(t *testing.T, r http.Handler, withFile bool) *httptest.ResponseRecorder {
	t.Helper()
	body, contentType := multipartBody(t, withFile)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/resumes/analyze", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestAnalyzeHandlerCreatesRecord(t *testing.T) {
	svc := newTestPipeline(&fakeStore{}, resumes.NewMemoryRepo(), &fakeAnalyzer{reply: fullReply})
	r := newPipelineRouter(svc, "u1")

	rec := postAnalyze(t, r, true)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var out resumes.Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	require.NotNil(t, out.Feedback)
	assert.Equal(t, 72, out.Feedback.OverallScore)
	assert.Equal(t, "cv.pdf", out.FileName)
}

func TestAnalyzeHandlerRequiresFile(t *testing.T) {
	svc := newTestPipeline(&fakeStore{}, resumes.NewMemoryRepo(), &fakeAnalyzer{reply: fullReply})
	r := newPipelineRouter(svc, "u1")

	rec := postAnalyze(t, r, false)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAnalyzeHandlerAnalysisFailure(t *testing.T) {
	svc := newTestPipeline(&fakeStore{}, resumes.NewMemoryRepo(), &fakeAnalyzer{reply: "no json here"})
	r := newPipelineRouter(svc, "u1")

	rec := postAnalyze(t, r, true)
	require.Equal(t, http.StatusBadGateway, rec.Code)

	var out struct {
		Error struct {
			Code    string         `json:"code"`
			Details map[string]any `json:"details"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.Equal(t, "analysis_failed", out.Error.Code)
	assert.Equal(t, "no_json_found", out.Error.Details["kind"])
	assert.Equal(t, false, out.Error.Details["retryable"])
	assert.NotEmpty(t, out.Error.Details["recordId"])
}

func TestAnalyzeHandlerUploadFailure(t *testing.T) {
	store := &fakeStore{err: assert.AnError}
	svc := newTestPipeline(store, resumes.NewMemoryRepo(), &fakeAnalyzer{reply: fullReply})
	r := newPipelineRouter(svc, "u1")

	rec := postAnalyze(t, r, true)
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Contains(t, rec.Body.String(), "upload_failed")
}

func TestReanalyzeHandlerNotFound(t *testing.T) {
	svc := newTestPipeline(&fakeStore{}, resumes.NewMemoryRepo(), &fakeAnalyzer{reply: fullReply})
	r := newPipelineRouter(svc, "u1")

	req := httptest.NewRequest(http.MethodPost, "/api/v1/resumes/missing/analyze", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestReanalyzeHandlerConflictWhenAnalyzed(t *testing.T) {
	analyzer := &fakeAnalyzer{reply: fullReply}
	svc := newTestPipeline(&fakeStore{}, resumes.NewMemoryRepo(), analyzer)
	r := newPipelineRouter(svc, "u1")

	created := postAnalyze(t, r, true)
	require.Equal(t, http.StatusCreated, created.Code, created.Body.String())
	var out resumes.Response
	require.NoError(t, json.Unmarshal(created.Body.Bytes(), &out))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/resumes/"+out.ID+"/analyze", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "already_analyzed")
	assert.Equal(t, 1, analyzer.calls)
}
