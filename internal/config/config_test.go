package config

import (
	"testing"
	"time"
)

func TestResolveModel(t *testing.T) {
	cases := []struct {
		requested  string
		configured string
		want       string
	}{
		{"", "llama-3.1-8b-instant", "llama-3.1-8b-instant"},
		{"fast", "llama-3.1-70b-versatile", ModelFast},
		{"POWERFUL", "llama-3.1-8b-instant", ModelPowerful},
		{" powerful ", "llama-3.1-8b-instant", ModelPowerful},
		{"custom-model-id", "llama-3.1-8b-instant", "custom-model-id"},
	}
	for _, tc := range cases {
		if got := ResolveModel(tc.requested, tc.configured); got != tc.want {
			t.Fatalf("ResolveModel(%q, %q) = %q, want %q", tc.requested, tc.configured, got, tc.want)
		}
	}
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("ENV", "")
	t.Setenv("LLM_MODEL", "")
	t.Setenv("LLM_MAX_TOKENS", "")
	t.Setenv("LLM_TIMEOUT_SECONDS", "")
	t.Setenv("MAX_UPLOAD_BYTES", "")

	cfg := Load()
	if cfg.Port != "8080" {
		t.Fatalf("port = %q", cfg.Port)
	}
	if cfg.Env != "dev" {
		t.Fatalf("env = %q", cfg.Env)
	}
	if cfg.LLMModel != ModelFast {
		t.Fatalf("model = %q", cfg.LLMModel)
	}
	if cfg.LLMMaxTokens != 2048 {
		t.Fatalf("max tokens = %d", cfg.LLMMaxTokens)
	}
	if cfg.LLMTimeout != 45*time.Second {
		t.Fatalf("timeout = %v", cfg.LLMTimeout)
	}
	if cfg.MaxUploadBytes != 5<<20 {
		t.Fatalf("upload cap = %d", cfg.MaxUploadBytes)
	}
}

func TestLoadOverridesAndBadValues(t *testing.T) {
	t.Setenv("ENV", "Production")
	t.Setenv("LLM_MAX_TOKENS", "not-a-number")
	t.Setenv("LLM_TIMEOUT_SECONDS", "10")
	t.Setenv("CORS_ALLOW_ORIGINS", "http://a.example, http://b.example ,")

	cfg := Load()
	if cfg.Env != "production" {
		t.Fatalf("env = %q", cfg.Env)
	}
	if cfg.LLMMaxTokens != 2048 {
		t.Fatalf("bad value should fall back to default, got %d", cfg.LLMMaxTokens)
	}
	if cfg.LLMTimeout != 10*time.Second {
		t.Fatalf("timeout = %v", cfg.LLMTimeout)
	}
	if len(cfg.CORSAllowOrigin) != 2 || cfg.CORSAllowOrigin[1] != "http://b.example" {
		t.Fatalf("cors origins = %v", cfg.CORSAllowOrigin)
	}
}
