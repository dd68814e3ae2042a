package local

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"resume-feedback/internal/shared/storage/object"
)

func TestSaveAndOpenRoundTrip(t *testing.T) {
	store := New(t.TempDir(), "http://localhost:8080/")
	body := []byte("%PDF-1.4\n%test resume\n")

	obj, err := store.Save(context.Background(), "user-1", "My Resume.pdf", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if obj.SizeBytes != int64(len(body)) {
		t.Fatalf("expected size %d, got %d", len(body), obj.SizeBytes)
	}
	if obj.MimeType != "application/pdf" {
		t.Fatalf("expected application/pdf, got %q", obj.MimeType)
	}
	if !strings.HasPrefix(obj.URL, "http://localhost:8080/files/") || !strings.HasSuffix(obj.URL, obj.Key) {
		t.Fatalf("unexpected url %q for key %q", obj.URL, obj.Key)
	}
	if strings.Contains(obj.Key, "user-1") {
		t.Fatalf("key must not leak the owner id: %q", obj.Key)
	}

	rc, err := store.Open(context.Background(), obj.Key)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer rc.Close()
	got, err := io.ReadAll(rc)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !bytes.Equal(got, body) {
		t.Fatalf("content mismatch")
	}
}

func TestOpenRejectsTraversalAndMissing(t *testing.T) {
	store := New(t.TempDir(), "http://localhost:8080")

	if _, err := store.Open(context.Background(), "../etc/passwd"); !errors.Is(err, object.ErrInvalidKey) {
		t.Fatalf("expected traversal to be rejected")
	}
	if _, err := store.Open(context.Background(), "abc/missing.pdf"); !errors.Is(err, object.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSaveHonorsCancelledContext(t *testing.T) {
	store := New(t.TempDir(), "http://localhost:8080")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := store.Save(ctx, "user-1", "resume.pdf", strings.NewReader("x")); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
