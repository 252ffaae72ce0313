// Package config loads pipeline configuration from an optional YAML file
// with environment variable overrides.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration wraps time.Duration so YAML accepts "90s" style strings.
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

// Std returns the wrapped standard duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// Config holds all tunables for a pipeline run.
type Config struct {
	// Language model endpoint (OpenAI-compatible chat completions).
	LLMBaseURL string   `yaml:"llm_base_url"`
	LLMModel   string   `yaml:"llm_model"`
	LLMTimeout Duration `yaml:"llm_timeout"`

	// Page fetching.
	FetchTimeout Duration `yaml:"fetch_timeout"`
	CacheDir     string   `yaml:"cache_dir"`

	// Persistence.
	DBPath string `yaml:"db_path"`

	// Pipeline behavior.
	Months        int `yaml:"months"`
	WarnThreshold int `yaml:"warn_threshold"`

	// Observability.
	LogLevel    string `yaml:"log_level"`
	LogFormat   string `yaml:"log_format"`
	MetricsAddr string `yaml:"metrics_addr"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		LLMBaseURL:    "http://localhost:1234/v1",
		LLMModel:      "qwen3-14b",
		LLMTimeout:    Duration(2 * time.Minute),
		FetchTimeout:  Duration(30 * time.Second),
		CacheDir:      "crawl_cache",
		DBPath:        "events.db",
		Months:        2,
		WarnThreshold: 3,
		LogLevel:      "info",
		LogFormat:     "text",
	}
}

// Load reads configuration from path (if non-empty) and then applies
// environment overrides. A missing file at an explicitly given path is an
// error; an empty path skips the file step.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	cfg.applyEnv()

	if cfg.Months < 1 {
		cfg.Months = 1
	}
	if cfg.WarnThreshold < 1 {
		cfg.WarnThreshold = 1
	}

	return cfg, nil
}

func (c *Config) applyEnv() {
	c.LLMBaseURL = getEnv("EVENTS_LLM_BASE_URL", c.LLMBaseURL)
	c.LLMModel = getEnv("EVENTS_LLM_MODEL", c.LLMModel)
	c.LLMTimeout = getEnvAsDuration("EVENTS_LLM_TIMEOUT", c.LLMTimeout)
	c.FetchTimeout = getEnvAsDuration("EVENTS_FETCH_TIMEOUT", c.FetchTimeout)
	c.CacheDir = getEnv("EVENTS_CACHE_DIR", c.CacheDir)
	c.DBPath = getEnv("EVENTS_DB_PATH", c.DBPath)
	c.Months = getEnvAsInt("EVENTS_MONTHS", c.Months)
	c.WarnThreshold = getEnvAsInt("EVENTS_WARN_THRESHOLD", c.WarnThreshold)
	c.LogLevel = getEnv("EVENTS_LOG_LEVEL", c.LogLevel)
	c.LogFormat = getEnv("EVENTS_LOG_FORMAT", c.LogFormat)
	c.MetricsAddr = getEnv("EVENTS_METRICS_ADDR", c.MetricsAddr)
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvAsDuration(key string, fallback Duration) Duration {
	if value, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(value); err == nil {
			return Duration(d)
		}
	}
	return fallback
}
