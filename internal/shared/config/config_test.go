package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("ENV", "")
	t.Setenv("PORT", "9090")
	t.Setenv("OBJECT_STORE", "")
	t.Setenv("LLM_PROVIDER", "")
	t.Setenv("PIPELINE_STEP_TIMEOUT", "")
	t.Setenv("PUBLIC_BASE_URL", "")

	cfg := Load()
	if cfg.Env != "dev" {
		t.Fatalf("expected env dev, got %q", cfg.Env)
	}
	if cfg.ObjectStoreType != "local" {
		t.Fatalf("expected local object store, got %q", cfg.ObjectStoreType)
	}
	if cfg.LLMProvider != "gemini" {
		t.Fatalf("expected gemini provider, got %q", cfg.LLMProvider)
	}
	if cfg.StepTimeout != 2*time.Minute {
		t.Fatalf("expected 2m step timeout, got %s", cfg.StepTimeout)
	}
	if cfg.PublicBaseURL != "http://localhost:9090" {
		t.Fatalf("unexpected public base url %q", cfg.PublicBaseURL)
	}
	if !cfg.IsDevLike() {
		t.Fatalf("expected dev config to be dev-like")
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("ENV", "prod")
	t.Setenv("OBJECT_STORE", "S3")
	t.Setenv("LLM_PROVIDER", "OpenAI")
	t.Setenv("PIPELINE_STEP_TIMEOUT", "45s")
	t.Setenv("DOCUMENT_FETCH_ALLOWED_HOSTS", " a.example.com, ,b.example.com ")
	t.Setenv("DOCUMENT_FETCH_MAX_BYTES", "not-a-number")
	t.Setenv("PUBLIC_BASE_URL", "https://api.example.com/")

	cfg := Load()
	if cfg.Env != "production" {
		t.Fatalf("expected production, got %q", cfg.Env)
	}
	if cfg.ObjectStoreType != "s3" {
		t.Fatalf("expected s3, got %q", cfg.ObjectStoreType)
	}
	if cfg.LLMProvider != "openai" {
		t.Fatalf("expected openai, got %q", cfg.LLMProvider)
	}
	if cfg.StepTimeout != 45*time.Second {
		t.Fatalf("expected 45s, got %s", cfg.StepTimeout)
	}
	if len(cfg.FetchAllowedHosts) != 2 || cfg.FetchAllowedHosts[1] != "b.example.com" {
		t.Fatalf("unexpected allowed hosts %#v", cfg.FetchAllowedHosts)
	}
	if cfg.FetchMaxBytes != 10<<20 {
		t.Fatalf("expected default max bytes, got %d", cfg.FetchMaxBytes)
	}
	if cfg.PublicBaseURL != "https://api.example.com" {
		t.Fatalf("expected trailing slash trimmed, got %q", cfg.PublicBaseURL)
	}
	if cfg.IsDevLike() {
		t.Fatalf("production must not be dev-like")
	}
}
