package llm

import (
	"context"
	"errors"
)

// Attachment is a binary document sent alongside a prompt.
type Attachment struct {
	Data     []byte
	MimeType string
	FileName string
}

// Completer abstracts the text-generation provider. Implementations return the
// model's raw reply; callers are responsible for locating JSON inside it.
type Completer interface {
	Complete(ctx context.Context, prompt string, attachment Attachment) (string, error)
}

// ErrNotImplemented is returned by the placeholder client.
var ErrNotImplemented = errors.New("LLM not implemented")

// ErrEmptyReply is returned when the provider answers with no text.
var ErrEmptyReply = errors.New("llm reply empty")

// PlaceholderClient is used when no provider is configured.
type PlaceholderClient struct{}

// Complete returns ErrNotImplemented.
func (PlaceholderClient) Complete(ctx context.Context, prompt string, attachment Attachment) (string, error) {
	_ = ctx
	_ = prompt
	_ = attachment
	return "", ErrNotImplemented
}
