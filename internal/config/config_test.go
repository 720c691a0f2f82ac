package config

import (
	"strings"
	"testing"
	"time"
)

// clearEnv wipes every variable Load reads so tests see pure defaults.
func clearEnv(t *testing.T) {
	t.Helper()
	keys := []string{
		"PORT", "READ_TIMEOUT", "READ_HEADER_TIMEOUT", "WRITE_TIMEOUT",
		"IDLE_TIMEOUT", "MAX_HEADER_BYTES", "GIN_MODE",
		"LOG_LEVEL", "LOG_PRETTY", "API_BASE_PATH",
		"DB_PATH", "POSTS_PER_PAGE", "EXPORT_BATCH", "MAX_BODY_RUNES",
		"RATE_RPS", "RATE_BURST",
		"CORS_ALLOWED_ORIGINS", "ENABLE_HSTS", "HSTS_MAX_AGE",
		"TRANSLATE_ENDPOINT", "TRANSLATE_API_KEY",
		"OTEL_ENABLED", "OTEL_EXPORTER_OTLP_ENDPOINT",
		"OTEL_EXPORTER_OTLP_INSECURE", "OTEL_SERVICE_NAME",
		"OTEL_TRACES_SAMPLER_ARG",
	}
	for _, k := range keys {
		t.Setenv(k, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != "8080" || cfg.GinMode != "release" || cfg.LogLevel != "info" {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.APIBasePath != "/api/v1" {
		t.Fatalf("unexpected base path %q", cfg.APIBasePath)
	}
	if cfg.PostsPerPage != 20 || cfg.ExportBatch != 100 || cfg.MaxBodyRunes != 280 {
		t.Fatalf("unexpected app defaults: %+v", cfg)
	}
	if cfg.ReadTimeout != 15*time.Second {
		t.Fatalf("unexpected read timeout %v", cfg.ReadTimeout)
	}
	if cfg.Translate.Endpoint != "" {
		t.Fatalf("translation must be unconfigured by default")
	}
}

func TestLoad_OverridesAndNormalization(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "9999")
	t.Setenv("LOG_LEVEL", "WARNING")
	t.Setenv("GIN_MODE", "weird")
	t.Setenv("API_BASE_PATH", "api/v2/")
	t.Setenv("POSTS_PER_PAGE", "50")
	t.Setenv("CORS_ALLOWED_ORIGINS", " https://a.example , https://b.example ,")
	t.Setenv("TRANSLATE_ENDPOINT", "https://mt.example/translate")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != "9999" {
		t.Fatalf("port override lost: %q", cfg.Port)
	}
	if cfg.LogLevel != "warn" {
		t.Fatalf("warning alias not normalized: %q", cfg.LogLevel)
	}
	if cfg.GinMode != "release" {
		t.Fatalf("invalid gin mode must fall back to release: %q", cfg.GinMode)
	}
	if cfg.APIBasePath != "/api/v2" {
		t.Fatalf("base path not normalized: %q", cfg.APIBasePath)
	}
	if cfg.PostsPerPage != 50 {
		t.Fatalf("posts per page override lost: %d", cfg.PostsPerPage)
	}
	if len(cfg.CORS.AllowedOrigins) != 2 || cfg.CORS.AllowedOrigins[0] != "https://a.example" {
		t.Fatalf("CSV not split/trimmed: %v", cfg.CORS.AllowedOrigins)
	}
	if cfg.Translate.Endpoint != "https://mt.example/translate" {
		t.Fatalf("translate endpoint lost: %q", cfg.Translate.Endpoint)
	}
}

func TestLoad_ValidationFailures(t *testing.T) {
	cases := []struct {
		key, val, wantSub string
	}{
		{"LOG_LEVEL", "verbose", "LOG_LEVEL"},
		{"POSTS_PER_PAGE", "0", "POSTS_PER_PAGE"},
		{"POSTS_PER_PAGE", "101", "POSTS_PER_PAGE"},
		{"EXPORT_BATCH", "0", "EXPORT_BATCH"},
		{"MAX_BODY_RUNES", "0", "MAX_BODY_RUNES"},
		{"RATE_RPS", "-1", "RATE_RPS"},
		{"RATE_BURST", "0", "RATE_BURST"},
		{"MAX_HEADER_BYTES", "-5", "MAX_HEADER_BYTES"},
		{"OTEL_TRACES_SAMPLER_ARG", "1.5", "OTEL_TRACES_SAMPLER_ARG"},
		{"READ_TIMEOUT", "-1s", "timeouts"},
	}
	for _, tc := range cases {
		t.Run(tc.key+"="+tc.val, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(tc.key, tc.val)
			_, err := Load()
			if err == nil {
				t.Fatalf("expected validation error for %s=%s", tc.key, tc.val)
			}
			if !strings.Contains(err.Error(), tc.wantSub) {
				t.Fatalf("error %q does not mention %q", err, tc.wantSub)
			}
		})
	}
}

func TestNormalizeBasePath(t *testing.T) {
	cases := map[string]string{
		"":        "/api/v1",
		"/":       "/",
		"api":     "/api",
		"/api/":   "/api",
		" /api/ ": "/api",
	}
	for in, want := range cases {
		if got := normalizeBasePath(in); got != want {
			t.Errorf("normalizeBasePath(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestMustLoad_PanicsOnInvalid(t *testing.T) {
	clearEnv(t)
	t.Setenv("LOG_LEVEL", "bogus")

	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic")
		}
	}()
	MustLoad()
}

func TestGetBool(t *testing.T) {
	clearEnv(t)
	for _, v := range []string{"1", "true", "YES", "on"} {
		t.Setenv("ENABLE_HSTS", v)
		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load: %v", err)
		}
		if !cfg.Security.EnableHSTS {
			t.Fatalf("%q should enable HSTS", v)
		}
	}
	t.Setenv("ENABLE_HSTS", "nope")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Security.EnableHSTS {
		t.Fatalf("unparseable bool must keep the default")
	}
}
