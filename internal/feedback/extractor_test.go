package feedback

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resume-feedback/internal/llm"
)

type stubFetcher struct {
	doc   Document
	err   error
	calls int
	url   string
}

func (s *stubFetcher) Fetch(ctx context.Context, documentURL string) (Document, error) {
	s.calls++
	s.url = documentURL
	if s.err != nil {
		return Document{}, s.err
	}
	return s.doc, nil
}

type stubCompleter struct {
	reply      string
	err        error
	calls      int
	prompt     string
	attachment llm.Attachment
	block      bool
}

func (s *stubCompleter) Complete(ctx context.Context, prompt string, attachment llm.Attachment) (string, error) {
	s.calls++
	s.prompt = prompt
	s.attachment = attachment
	if s.block {
		<-ctx.Done()
		return "", ctx.Err()
	}
	return s.reply, s.err
}

const fencedReply = "Sure! ```json\n" + `{"overallScore":72,"ats":{"score":70,"tips":[{"type":"good","tip":"Keywords present"}]},` +
	`"toneAndStyle":{"score":75,"tips":[]},"content":{"score":68,"tips":[]},` +
	`"structure":{"score":80,"tips":[]},"skills":{"score":66,"tips":[{"type":"improve","tip":"Add Kafka","explanation":"Listed in the job"}]}}` +
	"\n```"

func TestExtractFencedReply(t *testing.T) {
	fetcher := &stubFetcher{doc: Document{Data: []byte("%PDF-1.4 resume"), MimeType: "application/pdf", FileName: "cv.pdf"}}
	completer := &stubCompleter{reply: fencedReply}
	ex := &Extractor{Fetcher: fetcher, Completer: completer}

	jd := "Senior backend engineer, Go, distributed systems"
	res, err := ex.Extract(context.Background(), jd, "https://files.example.com/cv.pdf")
	require.NoError(t, err)

	assert.Equal(t, 72, res.Report.OverallScore)
	assert.Equal(t, 1, fetcher.calls)
	assert.Equal(t, 1, completer.calls)
	assert.Contains(t, completer.prompt, jd)
	assert.NotContains(t, completer.prompt, "{{JOB_DESCRIPTION}}")
	assert.Equal(t, "application/pdf", completer.attachment.MimeType)
	assert.Equal(t, []byte("%PDF-1.4 resume"), completer.attachment.Data)

	var generic map[string]any
	require.NoError(t, json.Unmarshal(res.Raw, &generic))
	assert.Contains(t, generic, "overallScore")
}

func TestExtractPlainProseIsNoJSON(t *testing.T) {
	completer := &stubCompleter{reply: "I'm sorry, I could not read the attached file."}
	ex := &Extractor{Fetcher: &stubFetcher{}, Completer: completer}

	_, err := ex.Extract(context.Background(), "jd", "https://files.example.com/cv.pdf")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNoJSONFound)
	assert.NotErrorIs(t, err, ErrMalformedJSON)
	assert.Equal(t, KindNoJSONFound, KindOf(err))

	var ee *ExtractionError
	require.True(t, errors.As(err, &ee))
	assert.False(t, ee.Retryable())
}

func TestExtractMalformedSpanCarriesRaw(t *testing.T) {
	reply := `Result: {"overallScore": 70, "ats": {"score": 60,} } thanks`
	_, err := ExtractFromReply(reply)
	require.Error(t, err)

	var ee *ExtractionError
	require.True(t, errors.As(err, &ee))
	assert.Equal(t, KindMalformedJSON, ee.Kind)
	assert.Equal(t, `{"overallScore": 70, "ats": {"score": 60,} }`, ee.Raw)
	assert.ErrorIs(t, err, ErrMalformedJSON)
	var syntaxErr *json.SyntaxError
	assert.True(t, errors.As(err, &syntaxErr))
}

func TestExtractSourceUnavailableSkipsCompletion(t *testing.T) {
	completer := &stubCompleter{reply: `{}`}
	ex := &Extractor{Fetcher: &stubFetcher{err: errors.New("connection refused")}, Completer: completer}

	_, err := ex.Extract(context.Background(), "jd", "https://files.example.com/cv.pdf")
	assert.ErrorIs(t, err, ErrSourceUnavailable)
	assert.Equal(t, 0, completer.calls)

	var ee *ExtractionError
	require.True(t, errors.As(err, &ee))
	assert.True(t, ee.Retryable())
}

func TestExtractCompletionFailure(t *testing.T) {
	upstream := errors.New("quota exceeded")
	ex := &Extractor{Fetcher: &stubFetcher{}, Completer: &stubCompleter{err: upstream}}

	_, err := ex.Extract(context.Background(), "jd", "https://files.example.com/cv.pdf")
	assert.ErrorIs(t, err, ErrCompletionFailed)
	assert.ErrorIs(t, err, upstream)
}

func TestExtractCompletionTimeout(t *testing.T) {
	ex := &Extractor{
		Fetcher:   &stubFetcher{},
		Completer: &stubCompleter{block: true},
		Timeout:   20 * time.Millisecond,
	}

	_, err := ex.Extract(context.Background(), "jd", "https://files.example.com/cv.pdf")
	assert.ErrorIs(t, err, ErrCompletionFailed)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestExtractReturnsStructureWithoutValidation(t *testing.T) {
	res, err := ExtractFromReply(`{"overallScore": 140, "unexpected": {"nested": true}}`)
	require.NoError(t, err)
	assert.Equal(t, 140, res.Report.OverallScore)
	assert.NotNil(t, res.Report.Structure.Tips)
}

func TestBuildPromptEmbedsJobDescription(t *testing.T) {
	p := BuildPrompt("  Staff SRE, Kubernetes  ")
	assert.Contains(t, p, "Staff SRE, Kubernetes")
	assert.True(t, strings.Contains(p, `"overallScore"`))
	assert.Contains(t, BuildPrompt(""), "N/A")
}
