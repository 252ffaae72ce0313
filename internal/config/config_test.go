package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.LLMBaseURL != "http://localhost:1234/v1" {
		t.Errorf("LLMBaseURL = %s", cfg.LLMBaseURL)
	}
	if cfg.Months != 2 || cfg.WarnThreshold != 3 {
		t.Errorf("Months = %d, WarnThreshold = %d", cfg.Months, cfg.WarnThreshold)
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := `
llm_model: some-other-model
llm_timeout: 90s
months: 3
log_level: debug
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.LLMModel != "some-other-model" || cfg.LLMTimeout.Std() != 90*time.Second {
		t.Errorf("LLMModel = %s, LLMTimeout = %s", cfg.LLMModel, cfg.LLMTimeout.Std())
	}
	if cfg.Months != 3 || cfg.LogLevel != "debug" {
		t.Errorf("Months = %d, LogLevel = %s", cfg.Months, cfg.LogLevel)
	}
	// Untouched keys keep their defaults.
	if cfg.DBPath != "events.db" {
		t.Errorf("DBPath = %s", cfg.DBPath)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("Load() with missing explicit file expected error")
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("EVENTS_LLM_BASE_URL", "http://llm.internal:8000/v1")
	t.Setenv("EVENTS_MONTHS", "4")
	t.Setenv("EVENTS_FETCH_TIMEOUT", "10s")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.LLMBaseURL != "http://llm.internal:8000/v1" {
		t.Errorf("LLMBaseURL = %s", cfg.LLMBaseURL)
	}
	if cfg.Months != 4 || cfg.FetchTimeout.Std() != 10*time.Second {
		t.Errorf("Months = %d, FetchTimeout = %s", cfg.Months, cfg.FetchTimeout.Std())
	}
}

func TestLoadClampsInvalidValues(t *testing.T) {
	t.Setenv("EVENTS_MONTHS", "0")
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Months != 1 {
		t.Errorf("Months = %d, want clamped to 1", cfg.Months)
	}
}
