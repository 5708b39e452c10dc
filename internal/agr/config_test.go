package agr

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.BaseURL != "https://www.alliancegenome.org/api" {
		t.Errorf("BaseURL = %s", cfg.BaseURL)
	}
	if cfg.Timeout != 30 {
		t.Errorf("Timeout = %d, want 30", cfg.Timeout)
	}
	if cfg.ToolSet != "enhanced" {
		t.Errorf("ToolSet = %s, want enhanced", cfg.ToolSet)
	}
	if cfg.RateLimit != 100 || cfg.RateLimitWindow != 60 {
		t.Errorf("RateLimit = %d/%d, want 100/60", cfg.RateLimit, cfg.RateLimitWindow)
	}
}

func TestFromEnv_Overrides(t *testing.T) {
	t.Setenv("AGR_BASE_URL", "http://localhost:9999/api")
	t.Setenv("AGR_TIMEOUT", "15")
	t.Setenv("AGR_TOOLSET", "core")
	t.Setenv("LOG_LEVEL", "debug")

	cfg := FromEnv()

	if cfg.BaseURL != "http://localhost:9999/api" {
		t.Errorf("BaseURL = %s", cfg.BaseURL)
	}
	if cfg.Timeout != 15 {
		t.Errorf("Timeout = %d, want 15", cfg.Timeout)
	}
	if cfg.ToolSet != "core" {
		t.Errorf("ToolSet = %s, want core", cfg.ToolSet)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %s, want debug", cfg.LogLevel)
	}
	// Untouched fields keep their defaults.
	if cfg.BlastURL != DefaultConfig().BlastURL {
		t.Errorf("BlastURL = %s", cfg.BlastURL)
	}
}

func TestFromEnv_InvalidInt(t *testing.T) {
	t.Setenv("AGR_TIMEOUT", "not-a-number")

	cfg := FromEnv()
	if cfg.Timeout != 30 {
		t.Errorf("Timeout = %d, want default 30", cfg.Timeout)
	}
}

func TestLoadConfig_YAMLOverlay(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	doc := []byte(`
agr:
  base_url: http://localhost:8080/api
  timeout: 10
  tool_set: core
logging:
  level: warn
`)
	if err := os.WriteFile(path, doc, 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.BaseURL != "http://localhost:8080/api" {
		t.Errorf("BaseURL = %s", cfg.BaseURL)
	}
	if cfg.Timeout != 10 {
		t.Errorf("Timeout = %d, want 10", cfg.Timeout)
	}
	if cfg.ToolSet != "core" {
		t.Errorf("ToolSet = %s, want core", cfg.ToolSet)
	}
	if cfg.LogLevel != "warn" {
		t.Errorf("LogLevel = %s, want warn", cfg.LogLevel)
	}
	// Keys absent from the file keep their defaults.
	if cfg.BlastURL != DefaultConfig().BlastURL {
		t.Errorf("BlastURL = %s", cfg.BlastURL)
	}
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	if err == nil {
		t.Fatal("Expected error for missing config file")
	}
}

func TestLoadConfig_EmptyPathUsesEnv(t *testing.T) {
	t.Setenv("AGR_TIMEOUT", "42")

	// Run from a directory with no config.yaml.
	wd, _ := os.Getwd()
	if err := os.Chdir(t.TempDir()); err != nil {
		t.Fatal(err)
	}
	defer os.Chdir(wd)

	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.Timeout != 42 {
		t.Errorf("Timeout = %d, want 42", cfg.Timeout)
	}
}
