package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Trace     TraceConfig     `yaml:"trace"`
	Fetch     FetchConfig     `yaml:"fetch"`
	Browser   BrowserConfig   `yaml:"browser"`
	Auth      AuthConfig      `yaml:"auth"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	Cache     CacheConfig     `yaml:"cache"`
	Log       LogConfig       `yaml:"log"`
}

// ServerConfig controls the HTTP server.
type ServerConfig struct {
	Host string `yaml:"host"` // default: "0.0.0.0"
	Port int    `yaml:"port"` // default: 8080
	Mode string `yaml:"mode"` // "debug", "release", "test"; default: "release"
}

// TraceConfig controls the first-link traversal.
type TraceConfig struct {
	// Destination is the page a run tries to reach.
	Destination string `yaml:"destination"` // default: https://en.wikipedia.org/wiki/Philosophy

	// Source is the starting page used by the CLI when none is given.
	Source string `yaml:"source"` // default: https://en.wikipedia.org/wiki/Java_(programming_language)

	// Limit is the default number of links a run may follow.
	Limit int `yaml:"limit"` // default: 10

	// MaxLimit caps the limit accepted from API clients.
	MaxLimit int `yaml:"max_limit"` // default: 100

	// ParagraphSelector picks the body paragraphs of a page.
	ParagraphSelector string `yaml:"paragraph_selector"` // default: "#mw-content-text p"
}

// FetchConfig controls how pages are retrieved.
type FetchConfig struct {
	// Timeout is the per-page deadline.
	Timeout time.Duration `yaml:"timeout"` // default: 15s

	// UserAgent is sent with every request.
	UserAgent string `yaml:"user_agent"`

	// Proxy is an optional http(s) proxy URL for the HTTP engine.
	Proxy string `yaml:"proxy"`

	// RequestsPerSecond throttles page fetches across all runs.
	RequestsPerSecond float64 `yaml:"requests_per_second"` // default: 2

	// Burst is the politeness limiter burst size.
	Burst int `yaml:"burst"` // default: 1

	// MemoryTTL is how long the winning engine is remembered per domain.
	MemoryTTL time.Duration `yaml:"memory_ttl"` // default: 24h
}

// BrowserConfig controls the optional headless Chromium engine.
type BrowserConfig struct {
	// Enabled adds the browser engine as a fallback after plain HTTP.
	Enabled bool `yaml:"enabled"` // default: false

	// Headless controls whether the browser runs headless.
	Headless bool `yaml:"headless"` // default: true

	// NoSandbox disables Chrome's sandbox (needed in Docker).
	NoSandbox bool `yaml:"no_sandbox"` // default: false

	// Bin overrides the Chromium binary path.
	Bin string `yaml:"bin"`

	// Stealth masks common automation fingerprints.
	Stealth bool `yaml:"stealth"` // default: false
}

// AuthConfig controls API key authentication.
type AuthConfig struct {
	// Enabled toggles API key authentication.
	Enabled bool `yaml:"enabled"` // default: true

	// APIKeys is the list of valid API keys.
	APIKeys []string `yaml:"api_keys"`
}

// RateLimitConfig controls per-key API rate limiting.
type RateLimitConfig struct {
	// RequestsPerSecond is the sustained rate per API key.
	RequestsPerSecond float64 `yaml:"requests_per_second"` // default: 1

	// Burst is the maximum burst size per API key.
	Burst int `yaml:"burst"` // default: 3
}

// CacheConfig controls the trace response cache.
type CacheConfig struct {
	// MaxEntries is the maximum number of cached responses.
	MaxEntries int `yaml:"max_entries"` // default: 1000
}

// LogConfig controls structured logging.
type LogConfig struct {
	Level  string `yaml:"level"`  // default: "info"
	Format string `yaml:"format"` // "json", "text" or "pretty"; default: "json"
}

const defaultUserAgent = "philosophy/0.1 (+https://github.com/use-agent/philosophy)"

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{Host: "0.0.0.0", Port: 8080, Mode: "release"},
		Trace: TraceConfig{
			Destination:       "https://en.wikipedia.org/wiki/Philosophy",
			Source:            "https://en.wikipedia.org/wiki/Java_(programming_language)",
			Limit:             10,
			MaxLimit:          100,
			ParagraphSelector: "#mw-content-text p",
		},
		Fetch: FetchConfig{
			Timeout:           15 * time.Second,
			UserAgent:         defaultUserAgent,
			RequestsPerSecond: 2,
			Burst:             1,
			MemoryTTL:         24 * time.Hour,
		},
		Browser:   BrowserConfig{Headless: true},
		Auth:      AuthConfig{Enabled: true},
		RateLimit: RateLimitConfig{RequestsPerSecond: 1, Burst: 3},
		Cache:     CacheConfig{MaxEntries: 1000},
		Log:       LogConfig{Level: "info", Format: "json"},
	}
}

// Load builds the configuration from defaults, then the YAML file named by
// PHILO_CONFIG (if set), then PHILO_* environment variables.
func Load() (*Config, error) {
	cfg := Default()
	if path := os.Getenv("PHILO_CONFIG"); path != "" {
		if err := cfg.MergeFile(path); err != nil {
			return nil, err
		}
	}
	cfg.applyEnv()
	return cfg, nil
}

// MergeFile overlays the YAML file at path onto cfg. Keys absent from the
// file keep their current values.
func (c *Config) MergeFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("config: parse %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() {
	c.Server.Host = envOr("PHILO_HOST", c.Server.Host)
	c.Server.Port = envIntOr("PHILO_PORT", c.Server.Port)
	c.Server.Mode = envOr("PHILO_MODE", c.Server.Mode)

	c.Trace.Destination = envOr("PHILO_DESTINATION", c.Trace.Destination)
	c.Trace.Source = envOr("PHILO_SOURCE", c.Trace.Source)
	c.Trace.Limit = envIntOr("PHILO_LIMIT", c.Trace.Limit)
	c.Trace.MaxLimit = envIntOr("PHILO_MAX_LIMIT", c.Trace.MaxLimit)
	c.Trace.ParagraphSelector = envOr("PHILO_PARAGRAPH_SELECTOR", c.Trace.ParagraphSelector)

	c.Fetch.Timeout = envDurationOr("PHILO_FETCH_TIMEOUT", c.Fetch.Timeout)
	c.Fetch.UserAgent = envOr("PHILO_USER_AGENT", c.Fetch.UserAgent)
	c.Fetch.Proxy = envOr("PHILO_PROXY", c.Fetch.Proxy)
	c.Fetch.RequestsPerSecond = envFloatOr("PHILO_FETCH_RPS", c.Fetch.RequestsPerSecond)
	c.Fetch.Burst = envIntOr("PHILO_FETCH_BURST", c.Fetch.Burst)
	c.Fetch.MemoryTTL = envDurationOr("PHILO_ENGINE_MEMORY_TTL", c.Fetch.MemoryTTL)

	c.Browser.Enabled = envBoolOr("PHILO_BROWSER", c.Browser.Enabled)
	c.Browser.Headless = envBoolOr("PHILO_HEADLESS", c.Browser.Headless)
	c.Browser.NoSandbox = envBoolOr("PHILO_NO_SANDBOX", c.Browser.NoSandbox)
	c.Browser.Bin = envOr("PHILO_BROWSER_BIN", c.Browser.Bin)
	c.Browser.Stealth = envBoolOr("PHILO_STEALTH", c.Browser.Stealth)

	c.Auth.Enabled = envBoolOr("PHILO_AUTH_ENABLED", c.Auth.Enabled)
	c.Auth.APIKeys = envSliceOr("PHILO_API_KEYS", c.Auth.APIKeys)

	c.RateLimit.RequestsPerSecond = envFloatOr("PHILO_RATE_RPS", c.RateLimit.RequestsPerSecond)
	c.RateLimit.Burst = envIntOr("PHILO_RATE_BURST", c.RateLimit.Burst)

	c.Cache.MaxEntries = envIntOr("PHILO_CACHE_MAX_ENTRIES", c.Cache.MaxEntries)

	c.Log.Level = envOr("PHILO_LOG_LEVEL", c.Log.Level)
	c.Log.Format = envOr("PHILO_LOG_FORMAT", c.Log.Format)
}

// --- helper functions ---

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOr(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func envBoolOr(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envFloatOr(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envDurationOr(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func envSliceOr(key string, fallback []string) []string {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		result := make([]string, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				result = append(result, trimmed)
			}
		}
		return result
	}
	return fallback
}
