package config

import (
	"reflect"
	"strings"
	"testing"
	"time"
)

// --- MustLoad ---

func TestMustLoad_PanicsOnInvalidConfig(t *testing.T) {
	t.Setenv("JWT_SECRET", "s")
	t.Setenv("LOG_LEVEL", "verbose") // invalid -> Load() error
	defer func() {
		if r := recover(); r == nil {
			t.Fatalf("MustLoad should panic on invalid config")
		}
	}()
	_ = MustLoad()
}

// --- Load success + normalization + parsing ---

func TestLoad_Success_DefaultsAndOverrides(t *testing.T) {
	// Server timeouts / sizes (valid)
	t.Setenv("PORT", "8088")
	t.Setenv("READ_TIMEOUT", "2s")
	t.Setenv("READ_HEADER_TIMEOUT", "1s")
	t.Setenv("WRITE_TIMEOUT", "3s")
	t.Setenv("IDLE_TIMEOUT", "4s")
	t.Setenv("MAX_HEADER_BYTES", "8192")
	t.Setenv("GIN_MODE", "weird") // will normalize to "release"

	// Logging / Docs
	t.Setenv("LOG_LEVEL", "warning") // will normalize to "warn"
	t.Setenv("LOG_PRETTY", "yes")
	t.Setenv("SWAGGER_ENABLED", "on")
	t.Setenv("API_BASE_PATH", "api/v1/") // no leading slash + trailing slash -> "/api/v1"

	// App
	t.Setenv("DB_PATH", "db.sqlite")
	t.Setenv("APP_URL", "https://app.example.com/") // trailing slash stripped
	t.Setenv("CRON_SECRET", "trigger-me")

	// Auth
	t.Setenv("JWT_SECRET", "topsecret")
	t.Setenv("TOKEN_TTL", "12h")

	// Mail / extraction
	t.Setenv("RESEND_API_KEY", "re_123")
	t.Setenv("EMAIL_FROM", "Ops <ops@example.com>")
	t.Setenv("OPENAI_API_KEY", "sk-abc")
	t.Setenv("OPENAI_MODEL", "gpt-4o-mini")
	t.Setenv("EXTRACT_MAX_CHARS", "1500")
	t.Setenv("MIN_CONTRACT_TEXT", "25")

	// Uploads / scheduler
	t.Setenv("MAX_UPLOAD_BYTES", "1048576")
	t.Setenv("SCHEDULER_ENABLED", "1")
	t.Setenv("SCHEDULER_SPEC", "30 7 * * *")

	// Rate limiting (use invalids for parse to fall back to defaults)
	t.Setenv("RATE_RPS", "x")      // -> default 5.0
	t.Setenv("RATE_BURST", "nope") // -> default 10

	// Web protection
	t.Setenv("CORS_ALLOWED_ORIGINS", " https://a.com , , http://b ")
	t.Setenv("ENABLE_HSTS", "TRUE")
	t.Setenv("HSTS_MAX_AGE", "24h")

	// OTEL
	t.Setenv("OTEL_ENABLED", "1")
	t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "otel:4317")
	t.Setenv("OTEL_EXPORTER_OTLP_INSECURE", "0")
	t.Setenv("OTEL_SERVICE_NAME", "svc")
	t.Setenv("OTEL_TRACES_SAMPLER_ARG", "0.75")

	// Storage
	t.Setenv("STORAGE_ENABLED", "1")
	t.Setenv("STORAGE_ENDPOINT", "minio:9000")
	t.Setenv("STORAGE_ACCESS_KEY", "ak")
	t.Setenv("STORAGE_SECRET_KEY", "sk")
	t.Setenv("STORAGE_BUCKET", "files")
	t.Setenv("STORAGE_USE_SSL", "1")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	// Server
	if cfg.Port != "8088" ||
		cfg.ReadTimeout != 2*time.Second ||
		cfg.ReadHeaderTimeout != 1*time.Second ||
		cfg.WriteTimeout != 3*time.Second ||
		cfg.IdleTimeout != 4*time.Second ||
		cfg.MaxHeaderBytes != 8192 ||
		cfg.GinMode != "release" {
		t.Fatalf("server fields unexpected: %+v", cfg)
	}

	// Logging / Docs
	if cfg.LogLevel != "warn" || !cfg.LogPretty || !cfg.SwaggerEnabled || cfg.APIBasePath != "/api/v1" {
		t.Fatalf("logging/docs fields unexpected: %+v", cfg)
	}

	// App
	if cfg.DBPath != "db.sqlite" || cfg.AppURL != "https://app.example.com" || cfg.CronSecret != "trigger-me" {
		t.Fatalf("app fields unexpected: %+v", cfg)
	}

	// Auth / mail / extraction
	if cfg.JWTSecret != "topsecret" || cfg.TokenTTL != 12*time.Hour {
		t.Fatalf("auth fields unexpected: %+v", cfg)
	}
	if cfg.ResendAPIKey != "re_123" || cfg.EmailFrom != "Ops <ops@example.com>" {
		t.Fatalf("mail fields unexpected: %+v", cfg)
	}
	if cfg.OpenAIAPIKey != "sk-abc" || cfg.OpenAIModel != "gpt-4o-mini" ||
		cfg.ExtractMaxChars != 1500 || cfg.MinContractText != 25 {
		t.Fatalf("extraction fields unexpected: %+v", cfg)
	}

	// Uploads / scheduler
	if cfg.MaxUploadBytes != 1048576 || !cfg.SchedulerEnabled || cfg.SchedulerSpec != "30 7 * * *" {
		t.Fatalf("upload/scheduler fields unexpected: %+v", cfg)
	}

	// Rate limiting fell back to defaults on parse failures
	if cfg.RateRPS != 5.0 || cfg.RateBurst != 10 {
		t.Fatalf("rate fields unexpected: %+v", cfg)
	}

	// Web protection
	wantOrigins := []string{"https://a.com", "http://b"}
	if !reflect.DeepEqual(cfg.CORS.AllowedOrigins, wantOrigins) {
		t.Fatalf("CORS origins = %v, want %v", cfg.CORS.AllowedOrigins, wantOrigins)
	}
	if !cfg.Security.EnableHSTS || cfg.Security.HSTSMaxAge != 24*time.Hour {
		t.Fatalf("security fields unexpected: %+v", cfg)
	}

	// OTEL
	if !cfg.OTEL.Enabled || cfg.OTEL.Endpoint != "otel:4317" || cfg.OTEL.Insecure ||
		cfg.OTEL.ServiceName != "svc" || cfg.OTEL.SampleRatio != 0.75 {
		t.Fatalf("OTEL fields unexpected: %+v", cfg.OTEL)
	}

	// Storage
	if !cfg.Storage.Enabled || cfg.Storage.Endpoint != "minio:9000" ||
		cfg.Storage.AccessKey != "ak" || cfg.Storage.SecretKey != "sk" ||
		cfg.Storage.Bucket != "files" || !cfg.Storage.UseSSL {
		t.Fatalf("storage fields unexpected: %+v", cfg.Storage)
	}
}

// --- validation failures ---

func TestLoad_ValidationErrors(t *testing.T) {
	cases := []struct {
		name string
		env  map[string]string
		want string
	}{
		{"bad log level", map[string]string{"LOG_LEVEL": "chatty"}, "LOG_LEVEL"},
		{"zero timeout", map[string]string{"READ_TIMEOUT": "-1s"}, "timeouts"},
		{"missing jwt secret", map[string]string{"JWT_SECRET": " "}, "JWT_SECRET"},
		{"bad token ttl", map[string]string{"TOKEN_TTL": "-1h"}, "TOKEN_TTL"},
		{"bad extract cap", map[string]string{"EXTRACT_MAX_CHARS": "0"}, "EXTRACT_MAX_CHARS"},
		{"bad upload cap", map[string]string{"MAX_UPLOAD_BYTES": "0"}, "MAX_UPLOAD_BYTES"},
		{"empty cron spec", map[string]string{"SCHEDULER_ENABLED": "1", "SCHEDULER_SPEC": " "}, "SCHEDULER_SPEC"},
		{"bad burst", map[string]string{"RATE_BURST": "0"}, "RATE_BURST"},
		{"bad sample ratio", map[string]string{"OTEL_TRACES_SAMPLER_ARG": "1.5"}, "OTEL_TRACES_SAMPLER_ARG"},
		{"storage without creds", map[string]string{"STORAGE_ENABLED": "1"}, "STORAGE_ACCESS_KEY"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv("JWT_SECRET", "s") // satisfy the unconditional requirement
			for k, v := range tc.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("Load() = %v, want error mentioning %q", err, tc.want)
			}
		})
	}
}
