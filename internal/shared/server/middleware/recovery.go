package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	"resume-feedback/internal/shared/metrics"
	"resume-feedback/internal/shared/server/respond"
	"resume-feedback/internal/shared/telemetry"
)

// Recovery turns a handler panic into a 500 envelope. A panic inside a
// pipeline handler is also counted as a failure of the stage it reached.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			stage := c.GetString(PipelineStageKey)
			telemetry.Error("http.panic", map[string]any{
				"request_id":     RequestIDFromContext(c),
				"user_id":        UserIDFromContext(c),
				"record_id":      c.GetString(RecordIDKey),
				"pipeline_stage": stage,
				"panic":          fmt.Sprint(rec),
				"stack":          string(debug.Stack()),
				"path":           c.Request.URL.Path,
				"method":         c.Request.Method,
			})
			if stage != "" {
				metrics.IncPipelineFailed(stage)
			}

			var details any
			if recordID := c.GetString(RecordIDKey); recordID != "" {
				details = gin.H{"recordId": recordID}
			}
			respond.Error(c, http.StatusInternalServerError, "internal_error", "unexpected server error", details)
			c.Abort()
		}()
		c.Next()
	}
}
