package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	googleauth "resume-feedback/internal/auth"
	"resume-feedback/internal/feedback"
	"resume-feedback/internal/pipeline"
	"resume-feedback/internal/resumes"
	"resume-feedback/internal/services/health"
	"resume-feedback/internal/shared/config"
	"resume-feedback/internal/shared/metrics"
	"resume-feedback/internal/shared/server/middleware"
	"resume-feedback/internal/shared/server/respond"
	"resume-feedback/internal/uploads"
	"resume-feedback/internal/users"
)

const (
	rateGroupAnalyze  = "ANALYZE"
	rateGroupFeedback = "FEEDBACK"
)

type RouterDeps struct {
	Config          config.Config
	Sessions        middleware.SessionVerifier
	Health          *health.Service
	UserHandler     *users.Handler
	GoogleAuth      *googleauth.GoogleService
	ResumeHandler   *resumes.Handler
	FeedbackHandler *feedback.Handler
	PipelineHandler *pipeline.Handler
	UploadHandler   *uploads.Handler
	RateLimiter     *middleware.RateLimiter
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(deps.Config.CORSAllowOrigin),
	)

	r.GET("/metrics", metrics.Handler())
	if deps.UploadHandler != nil {
		deps.UploadHandler.RegisterFileRoutes(r)
	}

	api := r.Group("/api/v1")
	api.GET("/health", func(c *gin.Context) {
		status, ok := deps.Health.Status(c.Request.Context())
		if !ok {
			respond.JSON(c, http.StatusServiceUnavailable, status)
			return
		}
		respond.OK(c, status)
	})
	if deps.UserHandler != nil {
		deps.UserHandler.RegisterPublicRoutes(api)
	}
	if deps.GoogleAuth != nil {
		deps.GoogleAuth.RegisterRoutes(api)
	}

	protected := api.Group("")
	protected.Use(
		middleware.Auth(deps.Sessions),
		middleware.RateLimit(middleware.RateLimitConfig{
			Rules: map[string]middleware.RateLimitRule{
				rateGroupAnalyze:  middleware.PerMinute(deps.Config.AnalyzePerMinute),
				rateGroupFeedback: middleware.PerMinute(deps.Config.AnalyzePerMinute),
			},
			GroupFor: rateGroupFor,
			Limiter:  deps.RateLimiter,
		}),
	)
	if deps.UserHandler != nil {
		deps.UserHandler.RegisterRoutes(protected)
	}
	if deps.UploadHandler != nil {
		deps.UploadHandler.RegisterRoutes(protected)
	}
	if deps.ResumeHandler != nil {
		deps.ResumeHandler.RegisterRoutes(protected)
	}
	if deps.PipelineHandler != nil {
		deps.PipelineHandler.RegisterRoutes(protected)
	}
	if deps.FeedbackHandler != nil {
		deps.FeedbackHandler.RegisterRoutes(protected)
	}

	return r
}

func rateGroupFor(c *gin.Context) string {
	if c.Request.Method != http.MethodPost {
		return ""
	}
	route := c.FullPath()
	switch {
	case strings.HasSuffix(route, "/analyze"):
		return rateGroupAnalyze
	case strings.HasSuffix(route, "/feedback"):
		return rateGroupFeedback
	default:
		return ""
	}
}

// Addr normalizes the listen address.
func Addr(port string) string {
	if port == "" {
		return ":8080"
	}
	if port[0] == ':' {
		return port
	}
	return ":" + port
}
