package agr

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds Alliance of Genome Resources API configuration
type Config struct {
	BaseURL       string `yaml:"base_url"`
	BlastURL      string `yaml:"blast_url"`
	FMSURL        string `yaml:"fms_url"`
	JBrowseURL    string `yaml:"jbrowse_url"`
	TextpressoURL string `yaml:"textpresso_url"`
	MineURL       string `yaml:"alliancemine_url"`

	// Timeout is the per-request timeout in seconds.
	Timeout int `yaml:"timeout"`

	// RateLimit and RateLimitWindow are declared for operators but not
	// enforced; the server processes requests strictly one at a time.
	RateLimit       int `yaml:"rate_limit"`
	RateLimitWindow int `yaml:"rate_limit_window"`

	LogLevel string `yaml:"-"`
	LogFile  string `yaml:"-"`

	// ToolSet selects which tool catalog is loaded: "core" or "enhanced".
	ToolSet string `yaml:"tool_set"`
}

// DefaultConfig returns the stock Alliance endpoints and limits.
func DefaultConfig() Config {
	return Config{
		BaseURL:         "https://www.alliancegenome.org/api",
		BlastURL:        "https://blast.alliancegenome.org",
		FMSURL:          "https://fms.alliancegenome.org/api",
		JBrowseURL:      "https://jbrowse.alliancegenome.org",
		TextpressoURL:   "https://textpresso.alliancegenome.org",
		MineURL:         "https://www.alliancegenome.org/alliancemine",
		Timeout:         30,
		RateLimit:       100,
		RateLimitWindow: 60,
		LogLevel:        "info",
		ToolSet:         "enhanced",
	}
}

// FromEnv loads configuration from environment variables on top of the
// defaults.
func FromEnv() Config {
	cfg := DefaultConfig()
	cfg.BaseURL = getEnv("AGR_BASE_URL", cfg.BaseURL)
	cfg.BlastURL = getEnv("AGR_BLAST_URL", cfg.BlastURL)
	cfg.FMSURL = getEnv("AGR_FMS_URL", cfg.FMSURL)
	cfg.JBrowseURL = getEnv("AGR_JBROWSE_URL", cfg.JBrowseURL)
	cfg.TextpressoURL = getEnv("AGR_TEXTPRESSO_URL", cfg.TextpressoURL)
	cfg.MineURL = getEnv("AGR_MINE_URL", cfg.MineURL)
	cfg.Timeout = getEnvInt("AGR_TIMEOUT", cfg.Timeout)
	cfg.RateLimit = getEnvInt("AGR_RATE_LIMIT", cfg.RateLimit)
	cfg.RateLimitWindow = getEnvInt("AGR_RATE_LIMIT_WINDOW", cfg.RateLimitWindow)
	cfg.LogLevel = getEnv("LOG_LEVEL", cfg.LogLevel)
	cfg.LogFile = getEnv("AGR_LOG_FILE", cfg.LogFile)
	cfg.ToolSet = getEnv("AGR_TOOLSET", cfg.ToolSet)
	return cfg
}

// fileConfig mirrors the config.yaml document layout.
type fileConfig struct {
	AGR     Config `yaml:"agr"`
	Logging struct {
		Level string `yaml:"level"`
		File  string `yaml:"file"`
	} `yaml:"logging"`
}

// LoadConfig loads configuration from the environment, then overlays the
// YAML file at path when one is given. An empty path falls back to
// config.yaml in the working directory if that file exists.
func LoadConfig(path string) (Config, error) {
	cfg := FromEnv()

	if path == "" {
		if _, err := os.Stat("config.yaml"); err == nil {
			path = "config.yaml"
		} else {
			return cfg, nil
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config file: %w", err)
	}

	fc := fileConfig{AGR: cfg}
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return cfg, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg = fc.AGR
	if fc.Logging.Level != "" {
		cfg.LogLevel = fc.Logging.Level
	}
	if fc.Logging.File != "" {
		cfg.LogFile = fc.Logging.File
	}
	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		var intVal int
		if _, err := fmt.Sscanf(value, "%d", &intVal); err == nil {
			return intVal
		}
	}
	return defaultValue
}
