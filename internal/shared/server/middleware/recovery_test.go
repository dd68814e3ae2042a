package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"resume-feedback/internal/shared/metrics"
	"resume-feedback/internal/shared/telemetry"
)

func TestRecoveryReportsPipelineStage(t *testing.T) {
	gin.SetMode(gin.TestMode)

	core, logs := observer.New(zap.ErrorLevel)
	restore := telemetry.SetLogger(zap.New(core))
	defer restore()

	router := gin.New()
	router.Use(RequestID(), Recovery())
	router.POST("/resumes/:id/analyze", func(c *gin.Context) {
		c.Set(RecordIDKey, "rec-9")
		c.Set(PipelineStageKey, "recovery-test")
		panic("boom")
	})

	req := httptest.NewRequest(http.MethodPost, "/resumes/rec-9/analyze", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", resp.Code)
	}
	var body struct {
		Error struct {
			Code    string         `json:"code"`
			Details map[string]any `json:"details"`
		} `json:"error"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Error.Code != "internal_error" || body.Error.Details["recordId"] != "rec-9" {
		t.Fatalf("unexpected body %s", resp.Body.String())
	}

	entries := logs.FilterMessage("http.panic").All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 panic log, got %d", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["pipeline_stage"] != "recovery-test" || fields["panic"] != "boom" {
		t.Fatalf("unexpected fields %v", fields)
	}
	if !strings.Contains(metrics.Render(), `stage="recovery-test"`) {
		t.Fatalf("expected failure counted for stage")
	}
}
