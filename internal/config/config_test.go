package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func clearTokenEnv(t *testing.T) {
	t.Helper()
	for _, name := range tokenEnvCandidates {
		t.Setenv(name, "")
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("LLM_PROVIDER", " OpenAI ")
	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.HTTPPort != "8080" {
		t.Fatalf("expected default port 8080, got %s", cfg.HTTPPort)
	}
	if cfg.LLMProvider != "openai" {
		t.Fatalf("expected normalized provider, got %q", cfg.LLMProvider)
	}
	if cfg.LLMTimeout != 60*time.Second {
		t.Fatalf("expected 60s timeout, got %s", cfg.LLMTimeout)
	}
	if cfg.RateLimitMax != 30 || cfg.RateLimitWindow != time.Minute {
		t.Fatalf("unexpected rate limit defaults: %d/%s", cfg.RateLimitMax, cfg.RateLimitWindow)
	}
}

func TestResolveLLMToken(t *testing.T) {
	t.Run("api key directo", func(t *testing.T) {
		clearTokenEnv(t)
		cfg := &Config{LLMAPIKey: "  k1 "}
		got, err := cfg.ResolveLLMToken()
		if err != nil || got != "k1" {
			t.Fatalf("expected k1, got %q (%v)", got, err)
		}
	})

	t.Run("variable de plataforma", func(t *testing.T) {
		clearTokenEnv(t)
		t.Setenv("MSPACE_API_KEY", "ms-token")
		cfg := &Config{}
		got, err := cfg.ResolveLLMToken()
		if err != nil || got != "ms-token" {
			t.Fatalf("expected ms-token, got %q (%v)", got, err)
		}
	})

	t.Run("archivo de token", func(t *testing.T) {
		clearTokenEnv(t)
		path := filepath.Join(t.TempDir(), "token.txt")
		if err := os.WriteFile(path, []byte("file-token\n"), 0o600); err != nil {
			t.Fatalf("write token: %v", err)
		}
		cfg := &Config{LLMTokenFile: path}
		got, err := cfg.ResolveLLMToken()
		if err != nil || got != "file-token" {
			t.Fatalf("expected file-token, got %q (%v)", got, err)
		}
	})

	t.Run("sin token", func(t *testing.T) {
		clearTokenEnv(t)
		cfg := &Config{LLMTokenFile: filepath.Join(t.TempDir(), "missing.txt")}
		_, err := cfg.ResolveLLMToken()
		if !errors.Is(err, ErrTokenNotFound) {
			t.Fatalf("expected ErrTokenNotFound, got %v", err)
		}
	})
}
