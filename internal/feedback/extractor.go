package feedback

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"resume-feedback/internal/llm"
	"resume-feedback/internal/shared/metrics"
	"resume-feedback/internal/shared/telemetry"
)

// Result is a successful extraction. Raw is the JSON span the report was
// decoded from.
type Result struct {
	Report Report
	Raw    json.RawMessage
}

// Extractor turns a job description and a document URL into a Report with
// exactly one fetch and one completion call. Timeout, when set, bounds each of
// the two calls separately.
type Extractor struct {
	Fetcher   Fetcher
	Completer llm.Completer
	Timeout   time.Duration
}

// Extract runs fetch, completion and parsing. Every failure is an
// *ExtractionError.
func (e *Extractor) Extract(ctx context.Context, jobDescription, documentURL string) (Result, error) {
	start := time.Now()
	res, err := e.extract(ctx, jobDescription, documentURL)
	fields := map[string]any{
		"duration_ms": time.Since(start).Milliseconds(),
	}
	if err != nil {
		kind := KindOf(err)
		metrics.IncFeedbackExtraction(string(kind))
		fields["kind"] = string(kind)
		fields["error"] = err
		telemetry.Warn("feedback.extract.failed", fields)
		return Result{}, err
	}
	metrics.IncFeedbackExtraction("ok")
	fields["overall_score"] = res.Report.OverallScore
	telemetry.Info("feedback.extract", fields)
	return res, nil
}

func (e *Extractor) extract(ctx context.Context, jobDescription, documentURL string) (Result, error) {
	fetchCtx, cancel := e.withTimeout(ctx)
	doc, err := e.Fetcher.Fetch(fetchCtx, documentURL)
	cancel()
	if err != nil {
		return Result{}, &ExtractionError{Kind: KindSourceUnavailable, Err: err}
	}

	completeCtx, cancel := e.withTimeout(ctx)
	reply, err := e.Completer.Complete(completeCtx, BuildPrompt(jobDescription), llm.Attachment{
		Data:     doc.Data,
		MimeType: doc.MimeType,
		FileName: doc.FileName,
	})
	cancel()
	if err != nil {
		return Result{}, &ExtractionError{Kind: KindCompletionFailed, Err: err}
	}

	return ExtractFromReply(reply)
}

func (e *Extractor) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if e.Timeout > 0 {
		return context.WithTimeout(ctx, e.Timeout)
	}
	return context.WithCancel(ctx)
}

// ExtractFromReply locates and decodes the JSON object in a free-text reply.
func ExtractFromReply(reply string) (Result, error) {
	span, ok := FindJSONSpan(reply)
	if !ok {
		return Result{}, &ExtractionError{Kind: KindNoJSONFound, Raw: reply}
	}
	if !json.Valid([]byte(span)) {
		var parsed any
		syntaxErr := json.Unmarshal([]byte(span), &parsed)
		if syntaxErr == nil {
			syntaxErr = errors.New("invalid JSON")
		}
		return Result{}, &ExtractionError{Kind: KindMalformedJSON, Raw: span, Err: syntaxErr}
	}
	report, err := Decode([]byte(span))
	if err != nil {
		return Result{}, &ExtractionError{Kind: KindMalformedJSON, Raw: span, Err: err}
	}
	return Result{Report: report, Raw: json.RawMessage(span)}, nil
}
