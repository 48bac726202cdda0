package config

import (
	"log/slog"
	"os"
	"strings"
	"testing"
)

func cleanupEnv() {
	os.Unsetenv("LISTWISE_SERVER_PORT")
	os.Unsetenv("LISTWISE_SERVER_ENVIRONMENT")
	os.Unsetenv("LISTWISE_CATALOG_TYPE")
	os.Unsetenv("LISTWISE_CATALOG_PATH")
	os.Unsetenv("LISTWISE_FEEDBACK_TYPE")
	os.Unsetenv("LISTWISE_FEEDBACK_PATH")
	os.Unsetenv("LISTWISE_RATELIMIT_PER_IP")
}

func TestLoad(t *testing.T) {
	t.Run("loads with defaults when nothing is set", func(t *testing.T) {
		cleanupEnv()
		defer cleanupEnv()

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load() error = %v, want nil", err)
		}

		if cfg.Server.Port != "8080" {
			t.Errorf("Server.Port = %s, want 8080", cfg.Server.Port)
		}
		if cfg.Server.Environment != "development" {
			t.Errorf("Server.Environment = %s, want development", cfg.Server.Environment)
		}
		if cfg.Catalog.Type != "file" {
			t.Errorf("Catalog.Type = %s, want file", cfg.Catalog.Type)
		}
		if cfg.Catalog.Path == "" {
			t.Error("Catalog.Path is empty, want a default path")
		}
		if !cfg.Catalog.Watch {
			t.Error("Catalog.Watch = false, want true by default")
		}
		if cfg.Feedback.Type != "memory" {
			t.Errorf("Feedback.Type = %s, want memory", cfg.Feedback.Type)
		}
		if cfg.Matcher.FuzzyThreshold != 0.6 {
			t.Errorf("Matcher.FuzzyThreshold = %v, want 0.6", cfg.Matcher.FuzzyThreshold)
		}
		if cfg.Matcher.LearnedAcceptThreshold != 0.8 {
			t.Errorf("Matcher.LearnedAcceptThreshold = %v, want 0.8", cfg.Matcher.LearnedAcceptThreshold)
		}
		if cfg.Matcher.PromotionThreshold != 3 {
			t.Errorf("Matcher.PromotionThreshold = %d, want 3", cfg.Matcher.PromotionThreshold)
		}
		if cfg.Matcher.MaxBatchSize != 100 {
			t.Errorf("Matcher.MaxBatchSize = %d, want 100", cfg.Matcher.MaxBatchSize)
		}
		if cfg.Matcher.Workers != 4 {
			t.Errorf("Matcher.Workers = %d, want 4", cfg.Matcher.Workers)
		}
		if cfg.RateLimit.PerIP != 25 {
			t.Errorf("RateLimit.PerIP = %d, want 25", cfg.RateLimit.PerIP)
		}
		if cfg.Logging.Level != "info" {
			t.Errorf("Logging.Level = %s, want info", cfg.Logging.Level)
		}
		if cfg.Logging.Format != "text" {
			t.Errorf("Logging.Format = %s, want text", cfg.Logging.Format)
		}
	})
}

func TestSetupLogger(t *testing.T) {
	// SetupLogger swaps the process default logger; put it back afterwards
	prev := slog.Default()
	defer slog.SetDefault(prev)

	t.Run("accepts every level and format pair", func(t *testing.T) {
		for _, level := range []string{"debug", "info", "warn", "error"} {
			for _, format := range []string{"text", "json"} {
				if err := SetupLogger(LoggingConfig{Level: level, Format: format}); err != nil {
					t.Errorf("SetupLogger(%s, %s) error = %v, want nil", level, format, err)
				}
			}
		}
	})

	t.Run("rejects unknown level", func(t *testing.T) {
		err := SetupLogger(LoggingConfig{Level: "verbose", Format: "text"})
		if err == nil || !strings.Contains(err.Error(), "invalid log level") {
			t.Errorf("SetupLogger() error = %v, want invalid level error", err)
		}
	})

	t.Run("rejects unknown format", func(t *testing.T) {
		err := SetupLogger(LoggingConfig{Level: "info", Format: "logfmt"})
		if err == nil || !strings.Contains(err.Error(), "invalid log format") {
			t.Errorf("SetupLogger() error = %v, want invalid format error", err)
		}
	})
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Server: ServerConfig{Port: "8080", Environment: "test"},
			Catalog: CatalogConfig{
				Type: "file",
				Path: "./catalog.json",
			},
			Feedback: FeedbackConfig{Type: "memory"},
			Matcher: MatcherConfig{
				FuzzyThreshold:         0.6,
				LearnedAcceptThreshold: 0.8,
				PromotionThreshold:     3,
				MaxBatchSize:           100,
				Workers:                4,
			},
			RateLimit: RateLimitConfig{PerIP: 25, Burst: 50},
		}
	}

	t.Run("validates successfully with all required fields", func(t *testing.T) {
		if err := validate(valid()); err != nil {
			t.Errorf("validate() error = %v, want nil", err)
		}
	})

	testCases := []struct {
		name    string
		mutate  func(*Config)
		wantMsg string
	}{
		{
			name:    "invalid catalog type",
			mutate:  func(c *Config) { c.Catalog.Type = "redis" },
			wantMsg: "catalog type",
		},
		{
			name:    "missing catalog path",
			mutate:  func(c *Config) { c.Catalog.Path = "" },
			wantMsg: "catalog path",
		},
		{
			name: "http catalog without url",
			mutate: func(c *Config) {
				c.Catalog.Type = "http"
				c.Catalog.URL = ""
			},
			wantMsg: "catalog url",
		},
		{
			name:    "invalid feedback type",
			mutate:  func(c *Config) { c.Feedback.Type = "postgres" },
			wantMsg: "feedback type",
		},
		{
			name: "sqlite feedback without path",
			mutate: func(c *Config) {
				c.Feedback.Type = "sqlite"
				c.Feedback.Path = ""
			},
			wantMsg: "feedback path",
		},
		{
			name:    "fuzzy threshold out of range",
			mutate:  func(c *Config) { c.Matcher.FuzzyThreshold = 1.5 },
			wantMsg: "fuzzy threshold",
		},
		{
			name:    "zero fuzzy threshold",
			mutate:  func(c *Config) { c.Matcher.FuzzyThreshold = 0 },
			wantMsg: "fuzzy threshold",
		},
		{
			name:    "accept threshold out of range",
			mutate:  func(c *Config) { c.Matcher.LearnedAcceptThreshold = 1.2 },
			wantMsg: "learned accept threshold",
		},
		{
			name:    "zero promotion threshold",
			mutate:  func(c *Config) { c.Matcher.PromotionThreshold = 0 },
			wantMsg: "promotion threshold",
		},
		{
			name:    "zero batch size",
			mutate:  func(c *Config) { c.Matcher.MaxBatchSize = 0 },
			wantMsg: "batch size",
		},
		{
			name:    "zero workers",
			mutate:  func(c *Config) { c.Matcher.Workers = 0 },
			wantMsg: "workers",
		},
		{
			name:    "zero rate limit",
			mutate:  func(c *Config) { c.RateLimit.PerIP = 0 },
			wantMsg: "rate limit",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := valid()
			tc.mutate(cfg)
			err := validate(cfg)
			if err == nil {
				t.Fatal("validate() error = nil, want error")
			}
			if !strings.Contains(err.Error(), tc.wantMsg) {
				t.Errorf("validate() error = %q, want it to mention %q", err, tc.wantMsg)
			}
		})
	}

	t.Run("sqlite catalog and feedback validate with paths", func(t *testing.T) {
		cfg := valid()
		cfg.Catalog.Type = "sqlite"
		cfg.Catalog.Path = "./catalog.db"
		cfg.Feedback.Type = "sqlite"
		cfg.Feedback.Path = "./feedback.db"
		if err := validate(cfg); err != nil {
			t.Errorf("validate() error = %v, want nil", err)
		}
	})

	t.Run("http catalog validates with url", func(t *testing.T) {
		cfg := valid()
		cfg.Catalog.Type = "http"
		cfg.Catalog.Path = ""
		cfg.Catalog.URL = "https://catalog.internal:8443"
		if err := validate(cfg); err != nil {
			t.Errorf("validate() error = %v, want nil", err)
		}
	})
}
