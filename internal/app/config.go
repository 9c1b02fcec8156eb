package app

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configurable parameters for the application.
type Config struct {
	TargetURL   string // service under test, proxied in record mode
	Port        int
	ArtifactDir string
	SpecFile    string // file specification source (YAML or JSON)
	SpecURL     string // OpenAPI endpoint specification source
	Exclude     string // Expr expression excluding records from accounting
	LogLevel    string

	WatcherDebounce time.Duration

	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
}

// DefaultConfig returns a Config with sensible production defaults.
func DefaultConfig() Config {
	return Config{
		Port:        8880,
		ArtifactDir: "./audit",
		LogLevel:    "info",

		WatcherDebounce: 500 * time.Millisecond,

		ReadTimeout:     30 * time.Second,
		WriteTimeout:    30 * time.Second,
		IdleTimeout:     60 * time.Second,
		ShutdownTimeout: 10 * time.Second,
	}
}

// ApplyEnv overlays configuration from the environment, loading a .env file
// first when one exists.
func (c *Config) ApplyEnv() {
	_ = godotenv.Load()

	if v := os.Getenv("AUDIT_TARGET_URL"); v != "" {
		c.TargetURL = v
	}
	if v := os.Getenv("AUDIT_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.Port = port
		}
	}
	if v := os.Getenv("AUDIT_DIR"); v != "" {
		c.ArtifactDir = v
	}
	if v := os.Getenv("AUDIT_SPEC_FILE"); v != "" {
		c.SpecFile = v
	}
	if v := os.Getenv("AUDIT_SPEC_URL"); v != "" {
		c.SpecURL = v
	}
	if v := os.Getenv("AUDIT_EXCLUDE"); v != "" {
		c.Exclude = v
	}
	if v := os.Getenv("AUDIT_LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
}
