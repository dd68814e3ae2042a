package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"google.golang.org/genai"

	"resume-feedback/internal/llm"
	"resume-feedback/internal/shared/telemetry"
)

// DefaultModel is used when LLM_MODEL is empty.
const DefaultModel = "gemini-2.5-flash"

// contentGenerator is the subset of genai.Models the client needs.
type contentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Client implements llm.Completer with the Gemini API. The document is sent
// inline next to the prompt so the model reads the original layout.
type Client struct {
	models contentGenerator
	model  string
}

// NewClient constructs a Gemini client using the API-key backend.
func NewClient(ctx context.Context, apiKey, model string) (*Client, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY is required")
	}
	gc, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("gemini client: %w", err)
	}
	return newClient(gc.Models, model), nil
}

func newClient(models contentGenerator, model string) *Client {
	if strings.TrimSpace(model) == "" {
		model = DefaultModel
	}
	return &Client{models: models, model: model}
}

// Complete sends the prompt, with the attachment when present, and returns the
// reply text.
func (c *Client) Complete(ctx context.Context, prompt string, attachment llm.Attachment) (string, error) {
	parts := make([]*genai.Part, 0, 2)
	if len(attachment.Data) > 0 {
		mime := attachment.MimeType
		if mime == "" {
			mime = "application/pdf"
		}
		parts = append(parts, genai.NewPartFromBytes(attachment.Data, mime))
	}
	parts = append(parts, genai.NewPartFromText(prompt))
	contents := []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}

	start := time.Now()
	resp, err := c.models.GenerateContent(ctx, c.model, contents, nil)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return "", fmt.Errorf("gemini request timeout: %w", err)
		}
		return "", fmt.Errorf("gemini generate content: %w", err)
	}

	fields := map[string]any{
		"model":       c.model,
		"duration_ms": time.Since(start).Milliseconds(),
	}
	if resp.UsageMetadata != nil {
		fields["prompt_tokens"] = resp.UsageMetadata.PromptTokenCount
		fields["completion_tokens"] = resp.UsageMetadata.CandidatesTokenCount
		fields["total_tokens"] = resp.UsageMetadata.TotalTokenCount
	}
	telemetry.Info("llm.response", fields)

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", llm.ErrEmptyReply
	}
	return text, nil
}

var _ llm.Completer = (*Client)(nil)
