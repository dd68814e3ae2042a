package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"

	googleauth "resume-feedback/internal/auth"
	"resume-feedback/internal/feedback"
	"resume-feedback/internal/llm"
	"resume-feedback/internal/llm/gemini"
	"resume-feedback/internal/llm/openai"
	"resume-feedback/internal/pipeline"
	"resume-feedback/internal/resumes"
	"resume-feedback/internal/services/health"
	sharedauth "resume-feedback/internal/shared/auth"
	"resume-feedback/internal/shared/config"
	"resume-feedback/internal/shared/server"
	"resume-feedback/internal/shared/storage/db"
	"resume-feedback/internal/shared/storage/object"
	localstore "resume-feedback/internal/shared/storage/object/local"
	s3store "resume-feedback/internal/shared/storage/object/s3"
	"resume-feedback/internal/shared/telemetry"
	"resume-feedback/internal/uploads"
	"resume-feedback/internal/users"
)

// App holds shared dependencies and the configured router.
type App struct {
	Config          config.Config
	Router          *gin.Engine
	DB              *sql.DB
	Store           object.ObjectStore
	Completer       llm.Completer
	Tokens          *sharedauth.Tokens
	ResumesRepo     resumes.Repo
	UsersRepo       users.Repo
	ResumesService  *resumes.Service
	UsersService    *users.Service
	Extractor       *feedback.Extractor
	Pipeline        *pipeline.Service
	ResumesHandler  *resumes.Handler
	UsersHandler    *users.Handler
	FeedbackHandler *feedback.Handler
	PipelineHandler *pipeline.Handler
	UploadsHandler  *uploads.Handler
	GoogleAuth      *googleauth.GoogleService
}

// Build prepares shared dependencies and wires routes.
func Build(ctx context.Context, cfg config.Config) (*App, error) {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}
	if err := telemetry.Configure(cfg.LogLevel, cfg.LogFormat); err != nil {
		return nil, fmt.Errorf("configure logging: %w", err)
	}

	sqlDB, err := buildDB(ctx, cfg)
	if err != nil {
		return nil, err
	}

	store, err := buildStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	completer, err := buildCompleter(ctx, cfg)
	if err != nil {
		return nil, err
	}

	tokens, err := sharedauth.NewTokens(cfg.JWTSecret, cfg.Env, cfg.SessionTTL)
	if err != nil {
		return nil, err
	}

	app := &App{
		Config:    cfg,
		DB:        sqlDB,
		Store:     store,
		Completer: completer,
		Tokens:    tokens,
	}
	buildServices(app)

	var pinger health.Pinger
	if sqlDB != nil {
		pinger = sqlDB
	}
	app.Router = server.NewRouter(server.RouterDeps{
		Config:          cfg,
		Sessions:        tokens,
		Health:          health.NewService(pinger),
		UserHandler:     app.UsersHandler,
		GoogleAuth:      app.GoogleAuth,
		ResumeHandler:   app.ResumesHandler,
		FeedbackHandler: app.FeedbackHandler,
		PipelineHandler: app.PipelineHandler,
		UploadHandler:   app.UploadsHandler,
	})

	telemetry.Info("bootstrap.ready", map[string]any{
		"env":          cfg.Env,
		"object_store": cfg.ObjectStoreType,
		"llm_provider": cfg.LLMProvider,
		"database":     sqlDB != nil,
	})
	return app, nil
}

func buildDB(ctx context.Context, cfg config.Config) (*sql.DB, error) {
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		if cfg.IsDevLike() {
			telemetry.Warn("bootstrap.db.memory", map[string]any{"reason": "DATABASE_URL empty"})
			return nil, nil
		}
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	var (
		sqlDB *sql.DB
		err   error
	)
	if db.IsLambdaRuntime() {
		opts := db.OptionsFromEnv(db.DefaultLambdaOptions())
		sqlDB, err = db.GetSingleton(ctx, cfg.DatabaseURL, opts)
	} else {
		opts := db.OptionsFromEnv(db.DefaultServerOptions())
		sqlDB, err = db.Connect(ctx, cfg.DatabaseURL, opts)
	}
	if err != nil {
		if cfg.IsDevLike() {
			telemetry.Warn("bootstrap.db.memory", map[string]any{"reason": "connect failed", "err": err})
			return nil, nil
		}
		return nil, err
	}

	if cfg.IsDevLike() {
		if err := db.RunMigrations(ctx, sqlDB); err != nil {
			return nil, fmt.Errorf("run migrations: %w", err)
		}
	}
	return sqlDB, nil
}

func buildStore(ctx context.Context, cfg config.Config) (object.ObjectStore, error) {
	switch cfg.ObjectStoreType {
	case "s3":
		return s3store.New(ctx, s3store.Options{
			Region:        cfg.AWSRegion,
			Bucket:        cfg.S3Bucket,
			Prefix:        cfg.S3Prefix,
			KMSKeyID:      cfg.SSEKMSKeyID,
			PublicBaseURL: cfg.S3PublicBaseURL,
			URLTTL:        cfg.S3URLTTL,
		})
	default:
		return localstore.New(cfg.LocalStoreDir, cfg.PublicBaseURL), nil
	}
}

func buildCompleter(ctx context.Context, cfg config.Config) (llm.Completer, error) {
	switch cfg.LLMProvider {
	case "openai":
		return openai.NewClient(cfg.OpenAIAPIKey, cfg.LLMModel)
	case "gemini":
		if strings.TrimSpace(cfg.GeminiAPIKey) == "" {
			if cfg.IsDevLike() {
				telemetry.Warn("bootstrap.llm.placeholder", map[string]any{"reason": "GEMINI_API_KEY empty"})
				return llm.PlaceholderClient{}, nil
			}
			return nil, fmt.Errorf("GEMINI_API_KEY is required when LLM_PROVIDER=gemini")
		}
		return gemini.NewClient(ctx, cfg.GeminiAPIKey, cfg.LLMModel)
	default:
		return llm.PlaceholderClient{}, nil
	}
}

func buildServices(app *App) {
	if app.DB != nil {
		app.ResumesRepo = &resumes.PGRepo{DB: app.DB}
		app.UsersRepo = &users.PGRepo{DB: app.DB}
	} else {
		app.ResumesRepo = resumes.NewMemoryRepo()
		app.UsersRepo = users.NewMemoryRepo()
	}

	cfg := app.Config
	app.ResumesService = resumes.NewService(app.ResumesRepo)
	app.UsersService = users.NewService(app.UsersRepo)
	app.Extractor = &feedback.Extractor{
		Fetcher:   feedback.NewHTTPFetcher(cfg.FetchMaxBytes, cfg.FetchAllowedHosts),
		Completer: app.Completer,
		Timeout:   cfg.StepTimeout,
	}
	app.Pipeline = &pipeline.Service{
		Store:       app.Store,
		Records:     app.ResumesService,
		Analyzer:    app.Extractor,
		StepTimeout: cfg.StepTimeout,
	}

	app.ResumesHandler = resumes.NewHandler(app.ResumesService)
	app.UsersHandler = users.NewHandler(app.UsersService, app.Tokens, !cfg.IsDevLike())
	app.FeedbackHandler = feedback.NewHandler(app.Extractor)
	app.PipelineHandler = pipeline.NewHandler(app.Pipeline)
	app.UploadsHandler = uploads.NewHandler(app.Store, cfg.FetchMaxBytes)
	app.GoogleAuth = googleauth.NewGoogleService(
		app.Tokens,
		app.UsersService,
		cfg.GoogleClientID,
		cfg.GoogleClientSecret,
		cfg.GoogleRedirectURL,
		cfg.UIRedirectURL,
	)
}
