package config

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server    ServerConfig
	Catalog   CatalogConfig
	Feedback  FeedbackConfig
	Matcher   MatcherConfig
	RateLimit RateLimitConfig
	Logging   LoggingConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port           string   `mapstructure:"port"`
	Environment    string   `mapstructure:"environment"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// CatalogConfig selects where the product catalog is loaded from
type CatalogConfig struct {
	Type  string `mapstructure:"type"`  // "file", "sqlite" or "http"
	Path  string `mapstructure:"path"`  // file path or sqlite database
	URL   string `mapstructure:"url"`   // catalog service base URL for "http"
	Token string `mapstructure:"token"` // optional api key for "http"
	Watch bool   `mapstructure:"watch"` // reload file catalogs when the file changes
}

// FeedbackConfig selects where feedback and learned aliases are stored
type FeedbackConfig struct {
	Type string `mapstructure:"type"` // "memory" or "sqlite"
	Path string `mapstructure:"path"`
}

// MatcherConfig holds the matching engine tunables
type MatcherConfig struct {
	FuzzyThreshold         float64  `mapstructure:"fuzzy_threshold"`
	LearnedAcceptThreshold float64  `mapstructure:"learned_accept_threshold"`
	PromotionThreshold     int      `mapstructure:"promotion_threshold"`
	MaxBatchSize           int      `mapstructure:"max_batch_size"`
	Workers                int      `mapstructure:"workers"`
	ExtraBrands            []string `mapstructure:"extra_brands"`
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	PerIP int `mapstructure:"per_ip"` // sustained requests per second per client
	Burst int `mapstructure:"burst"`
}

// LoggingConfig controls the process-wide slog handler
type LoggingConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn or error
	Format string `mapstructure:"format"` // text or json
}

// Load loads configuration from environment variables and config files
func Load() (*Config, error) {
	v := viper.New()

	// Set config name and paths
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/listwise/")

	// Environment variable settings
	v.SetEnvPrefix("LISTWISE")
	v.AutomaticEnv()

	// Set default values
	setDefaults(v)

	// Read config file (optional - will use env vars if file doesn't exist)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found; using environment variables and defaults
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	// Validate configuration
	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.allowed_origins", []string{"*"})

	// Catalog defaults
	v.SetDefault("catalog.type", "file")
	v.SetDefault("catalog.path", "./catalog.json")
	v.SetDefault("catalog.watch", true)

	// Feedback defaults
	v.SetDefault("feedback.type", "memory")
	v.SetDefault("feedback.path", "./data/feedback.db")

	// Matcher defaults, mirroring the engine's own fallbacks
	v.SetDefault("matcher.fuzzy_threshold", 0.6)
	v.SetDefault("matcher.learned_accept_threshold", 0.8)
	v.SetDefault("matcher.promotion_threshold", 3)
	v.SetDefault("matcher.max_batch_size", 100)
	v.SetDefault("matcher.workers", 4)

	// Rate limit defaults
	v.SetDefault("ratelimit.per_ip", 25)
	v.SetDefault("ratelimit.burst", 50)

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
}

// validate validates the configuration
func validate(config *Config) error {
	switch config.Catalog.Type {
	case "file", "sqlite":
		if config.Catalog.Path == "" {
			return fmt.Errorf("catalog path is required (set LISTWISE_CATALOG_PATH)")
		}
	case "http":
		if config.Catalog.URL == "" {
			return fmt.Errorf("catalog url is required when catalog type is 'http'")
		}
	default:
		return fmt.Errorf("catalog type must be 'file', 'sqlite' or 'http', got: %s", config.Catalog.Type)
	}

	if config.Feedback.Type != "memory" && config.Feedback.Type != "sqlite" {
		return fmt.Errorf("feedback type must be 'memory' or 'sqlite', got: %s", config.Feedback.Type)
	}
	if config.Feedback.Type == "sqlite" && config.Feedback.Path == "" {
		return fmt.Errorf("feedback path is required when feedback type is 'sqlite'")
	}

	if config.Matcher.FuzzyThreshold <= 0 || config.Matcher.FuzzyThreshold >= 1 {
		return fmt.Errorf("matcher fuzzy threshold must be in (0, 1), got: %v", config.Matcher.FuzzyThreshold)
	}
	if config.Matcher.LearnedAcceptThreshold <= 0 || config.Matcher.LearnedAcceptThreshold > 1 {
		return fmt.Errorf("matcher learned accept threshold must be in (0, 1], got: %v", config.Matcher.LearnedAcceptThreshold)
	}
	if config.Matcher.PromotionThreshold < 1 {
		return fmt.Errorf("matcher promotion threshold must be at least 1, got: %d", config.Matcher.PromotionThreshold)
	}
	if config.Matcher.MaxBatchSize < 1 {
		return fmt.Errorf("matcher max batch size must be at least 1, got: %d", config.Matcher.MaxBatchSize)
	}
	if config.Matcher.Workers < 1 {
		return fmt.Errorf("matcher workers must be at least 1, got: %d", config.Matcher.Workers)
	}

	if config.RateLimit.PerIP < 1 {
		return fmt.Errorf("rate limit per ip must be at least 1, got: %d", config.RateLimit.PerIP)
	}

	return nil
}

// SetupLogger installs the process-wide slog handler described by cfg
func SetupLogger(cfg LoggingConfig) error {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level: %s", cfg.Level)
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	switch cfg.Format {
	case "text":
		handler = slog.NewTextHandler(os.Stderr, opts)
	case "json":
		handler = slog.NewJSONHandler(os.Stderr, opts)
	default:
		return fmt.Errorf("invalid log format: %s", cfg.Format)
	}

	slog.SetDefault(slog.New(handler))
	return nil
}
