package config

import (
	"reflect"
	"testing"
	"time"
)

func TestParseConfigDefaults(t *testing.T) {
	cfg, err := ParseConfig()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.DailyGenerationLimit != 50 {
		t.Errorf("expected daily limit 50, got %d", cfg.DailyGenerationLimit)
	}
	if cfg.MonthlyGenerationLimit != 1500 {
		t.Errorf("expected monthly limit 1500, got %d", cfg.MonthlyGenerationLimit)
	}
	if cfg.RateLimitWindow != 24*time.Hour {
		t.Errorf("expected 24h window, got %s", cfg.RateLimitWindow)
	}
	if cfg.GeminiModel != "gemini-1.5-flash" {
		t.Errorf("unexpected gemini model %q", cfg.GeminiModel)
	}
}

func TestParseConfigFromEnv(t *testing.T) {
	t.Setenv("DAILY_GENERATION_LIMIT", "5")
	t.Setenv("CORS_ALLOW_ORIGINS", "https://a.example,https://b.example")
	t.Setenv("TASK_TIMEOUT", "3s")

	cfg, err := ParseConfig()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.DailyGenerationLimit != 5 {
		t.Errorf("expected daily limit 5, got %d", cfg.DailyGenerationLimit)
	}
	want := []string{"https://a.example", "https://b.example"}
	if !reflect.DeepEqual(cfg.CORSAllowOrigins, want) {
		t.Errorf("expected origins %v, got %v", want, cfg.CORSAllowOrigins)
	}
	if cfg.TaskTimeout != 3*time.Second {
		t.Errorf("expected 3s task timeout, got %s", cfg.TaskTimeout)
	}
}

func TestMissingRequired(t *testing.T) {
	tests := []struct {
		name     string
		cfg      Config
		expected []string
	}{
		{
			name:     "complete",
			cfg:      Config{GeminiAPIURL: "https://example.com", DBType: "sqlite", RateLimitBackend: "memory"},
			expected: nil,
		},
		{
			name:     "redis without url",
			cfg:      Config{GeminiAPIURL: "https://example.com", DBType: "sqlite", RateLimitBackend: "redis"},
			expected: []string{"REDIS_URL"},
		},
		{
			name:     "postgres without dsn",
			cfg:      Config{GeminiAPIURL: "https://example.com", DBType: "postgres"},
			expected: []string{"DSN_URL"},
		},
		{
			name:     "empty",
			cfg:      Config{},
			expected: []string{"GEMINI_API_URL", "DBType"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.cfg.MissingRequired()
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("expected %v, got %v", tt.expected, got)
			}
		})
	}
}
