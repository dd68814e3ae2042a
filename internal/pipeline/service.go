package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"resume-feedback/internal/feedback"
	"resume-feedback/internal/resumes"
	"resume-feedback/internal/shared/metrics"
	"resume-feedback/internal/shared/storage/object"
	"resume-feedback/internal/shared/telemetry"
)

const DefaultStepTimeout = 90 * time.Second

// Analyzer runs feedback extraction against a stored document.
type Analyzer interface {
	Extract(ctx context.Context, jobDescription, documentURL string) (feedback.Result, error)
}

// Upload is a named file body.
type Upload struct {
	FileName string
	Body     io.Reader
}

// Input is everything a single run needs.
type Input struct {
	OwnerID  string
	FileName string
	File     io.Reader
	Preview  *Upload
	Metadata resumes.Metadata
}

// Service runs upload, persist, analysis and finalize in order.
type Service struct {
	Store       object.ObjectStore
	Records     *resumes.Service
	Analyzer    Analyzer
	StepTimeout time.Duration
}

// Run executes the full pipeline. Input errors are returned before any side
// effect; every later failure is a *Error.
func (s *Service) Run(ctx context.Context, in Input) (resumes.Record, error) {
	if err := s.Records.ValidateMetadata(&in.Metadata); err != nil {
		return resumes.Record{}, err
	}
	if in.File == nil {
		return resumes.Record{}, fmt.Errorf("%w: file is required", resumes.ErrInvalidInput)
	}

	start := time.Now()
	metrics.IncPipelineStarted()

	rec, err := s.run(ctx, in)
	s.observe(start, rec.ID, in.OwnerID, err)
	return rec, err
}

// Reanalyze runs analysis and finalize again for a record whose feedback is
// still null. A missing or foreign record yields resumes.ErrNotFound and an
// analyzed one resumes.ErrAlreadyAnalyzed.
func (s *Service) Reanalyze(ctx context.Context, ownerID, recordID string) (resumes.Record, error) {
	rec, err := s.Records.Get(ctx, ownerID, recordID)
	if err != nil {
		return resumes.Record{}, err
	}
	if rec.Feedback != nil {
		return rec, resumes.ErrAlreadyAnalyzed
	}

	start := time.Now()
	metrics.IncPipelineStarted()

	out, err := s.analyzeAndFinalize(ctx, rec)
	s.observe(start, rec.ID, ownerID, err)
	return out, err
}

func (s *Service) run(ctx context.Context, in Input) (resumes.Record, error) {
	doc, preview, err := s.upload(ctx, in)
	if err != nil {
		return resumes.Record{}, stageError(StageUpload, "", err)
	}
	s.logStep(StageUpload, "", in.OwnerID, map[string]any{"document_key": doc.Key})

	create := resumes.CreateInput{
		Metadata:    in.Metadata,
		DocumentURL: doc.URL,
		DocumentKey: doc.Key,
		FileName:    in.FileName,
	}
	if preview != nil {
		create.PreviewImageURL = preview.URL
	}
	stepCtx, cancel := s.withTimeout(ctx)
	rec, err := s.Records.Create(stepCtx, in.OwnerID, create)
	cancel()
	if err != nil {
		// The uploaded object is left in place.
		return resumes.Record{}, stageError(StagePersist, "", err)
	}
	s.logStep(StagePersist, rec.ID, in.OwnerID, nil)

	return s.analyzeAndFinalize(ctx, rec)
}

func (s *Service) upload(ctx context.Context, in Input) (object.Object, *object.Object, error) {
	stepCtx, cancel := s.withTimeout(ctx)
	defer cancel()

	doc, err := s.Store.Save(stepCtx, in.OwnerID, in.FileName, in.File)
	if err != nil {
		return object.Object{}, nil, err
	}
	if in.Preview == nil || in.Preview.Body == nil {
		return doc, nil, nil
	}
	preview, err := s.Store.Save(stepCtx, in.OwnerID, in.Preview.FileName, in.Preview.Body)
	if err != nil {
		return object.Object{}, nil, err
	}
	return doc, &preview, nil
}

func (s *Service) analyzeAndFinalize(ctx context.Context, rec resumes.Record) (resumes.Record, error) {
	// Extract fetches and then completes, each bounded by StepTimeout.
	stepCtx, cancel := context.WithTimeout(ctx, 2*s.stepTimeout())
	result, err := s.Analyzer.Extract(stepCtx, rec.JobDescription, rec.DocumentURL)
	cancel()
	if err != nil {
		return rec, stageError(StageAnalysis, rec.ID, err)
	}
	s.logStep(StageAnalysis, rec.ID, rec.OwnerID, map[string]any{"overall_score": result.Report.OverallScore})

	stepCtx, cancel = s.withTimeout(ctx)
	updated, err := s.Records.SetFeedback(stepCtx, rec.OwnerID, rec.ID, result.Report)
	cancel()
	if err != nil {
		return rec, stageError(StageFinalize, rec.ID, err)
	}
	s.logStep(StageFinalize, rec.ID, rec.OwnerID, nil)
	return updated, nil
}

func (s *Service) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.stepTimeout())
}

func (s *Service) stepTimeout() time.Duration {
	if s.StepTimeout <= 0 {
		return DefaultStepTimeout
	}
	return s.StepTimeout
}

func (s *Service) logStep(stage Stage, recordID, ownerID string, extra map[string]any) {
	fields := map[string]any{
		"stage":     string(stage),
		"record_id": recordID,
		"user_id":   ownerID,
	}
	for k, v := range extra {
		fields[k] = v
	}
	telemetry.Debug("pipeline.step", fields)
}

func (s *Service) observe(start time.Time, recordID, ownerID string, err error) {
	elapsed := time.Since(start)
	metrics.ObservePipelineDurationMs(float64(elapsed.Milliseconds()))
	if err == nil {
		metrics.IncPipelineCompleted()
		telemetry.Info("pipeline.complete", map[string]any{
			"record_id":   recordID,
			"user_id":     ownerID,
			"duration_ms": elapsed.Milliseconds(),
		})
		return
	}

	var perr *Error
	if !errors.As(err, &perr) {
		return
	}
	metrics.IncPipelineFailed(string(perr.Stage))
	fields := map[string]any{
		"stage":       string(perr.Stage),
		"record_id":   perr.RecordID,
		"user_id":     ownerID,
		"partial":     perr.Partial(),
		"duration_ms": elapsed.Milliseconds(),
		"err":         perr.Err,
	}
	if kind := feedback.KindOf(perr.Err); kind != "" {
		fields["kind"] = string(kind)
	}
	telemetry.Warn("pipeline.failed", fields)
}
