package config

import (
	"testing"
	"time"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("ENV", "development")
	t.Setenv("DATABASE_URL", "postgres://localhost/tracker")
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("GOOGLE_CLIENT_ID", "cid")
	t.Setenv("GOOGLE_CLIENT_SECRET", "csecret")
}

func TestLoadDefaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Port != "8080" {
		t.Errorf("expected default port 8080, got %q", cfg.Port)
	}
	if cfg.SyncMaxResults != 25 {
		t.Errorf("expected default max results 25, got %d", cfg.SyncMaxResults)
	}
	if cfg.SyncLockTTL != 300*time.Second {
		t.Errorf("expected default lock TTL 300s, got %v", cfg.SyncLockTTL)
	}
	if cfg.LLMProvider != "disabled" {
		t.Errorf("expected LLM provider disabled, got %q", cfg.LLMProvider)
	}
	if cfg.OpenAIModel != "gpt-4o-mini" {
		t.Errorf("expected default OpenAI model, got %q", cfg.OpenAIModel)
	}
	if !cfg.IsDevelopment() {
		t.Error("expected development environment by default")
	}
}

func TestLoadOverrides(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("PORT", "9000")
	t.Setenv("ENV", "production")
	t.Setenv("SYNC_MAX_RESULTS", "100")
	t.Setenv("LLM_PROVIDER", "ollama")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example, https://b.example")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Port != "9000" {
		t.Errorf("expected port 9000, got %q", cfg.Port)
	}
	if !cfg.IsProduction() {
		t.Error("expected production environment")
	}
	if cfg.SyncMaxResults != 100 {
		t.Errorf("expected max results 100, got %d", cfg.SyncMaxResults)
	}
	if cfg.LLMProvider != "ollama" {
		t.Errorf("expected LLM provider ollama, got %q", cfg.LLMProvider)
	}
	if len(cfg.AllowedOrigins) != 2 || cfg.AllowedOrigins[1] != "https://b.example" {
		t.Errorf("expected trimmed origins, got %v", cfg.AllowedOrigins)
	}
}

func TestLoadMissingRequired(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("JWT_SECRET", "")

	if _, err := Load(); err == nil {
		t.Error("expected error for missing JWT_SECRET")
	}
}
