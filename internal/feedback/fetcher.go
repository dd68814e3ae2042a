package feedback

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"
)

// DefaultMaxBytes caps document downloads.
const DefaultMaxBytes = 10 << 20

var (
	ErrUnsupportedScheme = errors.New("document url scheme must be http or https")
	ErrHostNotAllowed    = errors.New("document host not allowed")
	ErrTooLarge          = errors.New("document exceeds size limit")
)

// Document is a fetched résumé file.
type Document struct {
	Data     []byte
	MimeType string
	FileName string
}

// Fetcher retrieves the bytes behind a document URL.
type Fetcher interface {
	Fetch(ctx context.Context, documentURL string) (Document, error)
}

// HTTPFetcher downloads documents over HTTP(S). AllowedHosts, when non-empty,
// restricts which hosts may be contacted.
type HTTPFetcher struct {
	Client       *http.Client
	MaxBytes     int64
	AllowedHosts []string
}

// NewHTTPFetcher builds a fetcher with a bounded client.
func NewHTTPFetcher(maxBytes int64, allowedHosts []string) *HTTPFetcher {
	return &HTTPFetcher{
		Client:       &http.Client{Timeout: 60 * time.Second},
		MaxBytes:     maxBytes,
		AllowedHosts: allowedHosts,
	}
}

// Fetch performs a single GET. Non-2xx responses are errors.
func (f *HTTPFetcher) Fetch(ctx context.Context, documentURL string) (Document, error) {
	u, err := url.Parse(strings.TrimSpace(documentURL))
	if err != nil {
		return Document{}, fmt.Errorf("parse document url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return Document{}, ErrUnsupportedScheme
	}
	if !f.hostAllowed(u.Hostname()) {
		return Document{}, fmt.Errorf("%w: %s", ErrHostNotAllowed, u.Hostname())
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return Document{}, err
	}
	client := f.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return Document{}, fmt.Errorf("fetch document: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4<<10))
		return Document{}, fmt.Errorf("fetch document: http status %d", resp.StatusCode)
	}

	limit := f.MaxBytes
	if limit <= 0 {
		limit = DefaultMaxBytes
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, limit+1))
	if err != nil {
		return Document{}, fmt.Errorf("read document: %w", err)
	}
	if int64(len(data)) > limit {
		return Document{}, ErrTooLarge
	}

	mimeType := "application/pdf"
	if ct := resp.Header.Get("Content-Type"); ct != "" {
		if parsed, _, err := mime.ParseMediaType(ct); err == nil && parsed != "application/octet-stream" && parsed != "binary/octet-stream" {
			mimeType = parsed
		}
	}

	return Document{
		Data:     data,
		MimeType: mimeType,
		FileName: path.Base(u.Path),
	}, nil
}

func (f *HTTPFetcher) hostAllowed(host string) bool {
	if len(f.AllowedHosts) == 0 {
		return true
	}
	for _, h := range f.AllowedHosts {
		if strings.EqualFold(strings.TrimSpace(h), host) {
			return true
		}
	}
	return false
}
