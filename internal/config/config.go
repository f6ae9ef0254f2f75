package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/mmuslimabdulj/goat-board/internal/domain"
	"github.com/spf13/viper"
	"golang.org/x/time/rate"
)

// Config holds all application configuration
type Config struct {
	// Server
	Port            string
	ShutdownTimeout time.Duration

	// Security
	AllowedOrigins []string

	// Rate Limiting
	RateLimitPost      rate.Limit
	RateLimitPostBurst int
	RateLimitWS        rate.Limit
	RateLimitWSBurst   int

	// Logging
	LogLevel  string
	LogFormat string

	// History
	HistoryCapacity int
}

// DefaultConfig returns configuration with default values
func DefaultConfig() *Config {
	return &Config{
		Port:               "8080",
		ShutdownTimeout:    domain.ShutdownGracePeriod,
		AllowedOrigins:     []string{"http://localhost:8080", "http://localhost:3000"},
		RateLimitPost:      domain.DefaultRateLimitPost,
		RateLimitPostBurst: domain.DefaultRateLimitPostBurst,
		RateLimitWS:        domain.DefaultRateLimitWS,
		RateLimitWSBurst:   domain.DefaultRateLimitWSBurst,
		LogLevel:           "info", // Options: debug, info, warn, error, silent
		LogFormat:          "json", // Options: json, console
		HistoryCapacity:    domain.DefaultHistoryCapacity,
	}
}

// Load reads configuration from environment variables on top of the
// defaults. Call godotenv.Load first to pick up a .env file.
func Load() (*Config, error) {
	return load(viper.New())
}

func load(v *viper.Viper) (*Config, error) {
	cfg := DefaultConfig()
	v.AutomaticEnv()

	// Server
	if port := v.GetString("port"); port != "" {
		cfg.Port = port
	}
	if d := v.GetDuration("shutdown_timeout"); d > 0 {
		cfg.ShutdownTimeout = d
	}

	// Security
	if origins := v.GetString("allowed_origins"); origins != "" {
		cfg.AllowedOrigins = parseOrigins(origins)
	}

	// Rate Limiting
	if val := v.GetFloat64("rate_limit_post"); val > 0 {
		cfg.RateLimitPost = rate.Limit(val)
	}
	if val := v.GetInt("rate_limit_post_burst"); val > 0 {
		cfg.RateLimitPostBurst = val
	}
	if val := v.GetFloat64("rate_limit_ws"); val > 0 {
		cfg.RateLimitWS = rate.Limit(val)
	}
	if val := v.GetInt("rate_limit_ws_burst"); val > 0 {
		cfg.RateLimitWSBurst = val
	}

	// Logging
	if level := v.GetString("log_level"); level != "" {
		cfg.LogLevel = strings.ToLower(level)
	}
	if format := v.GetString("log_format"); format != "" {
		cfg.LogFormat = strings.ToLower(format)
	}

	// History
	if v.IsSet("history_capacity") {
		cfg.HistoryCapacity = v.GetInt("history_capacity")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks values that have no sensible fallback
func (c *Config) Validate() error {
	if c.HistoryCapacity < 2 {
		return fmt.Errorf("config: HISTORY_CAPACITY must be at least 2 bytes, got %d", c.HistoryCapacity)
	}
	return nil
}

// parseOrigins parses comma-separated origins
func parseOrigins(origins string) []string {
	parts := strings.Split(origins, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			result = append(result, p)
		}
	}
	return result
}
