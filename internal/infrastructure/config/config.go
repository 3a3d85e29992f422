// Package config provides centralized configuration management.
//
// Configuration can be loaded from:
//  1. YAML file (config.yaml)
//  2. Environment variables (fallback)
//
// Example usage:
//
//	cfg := config.LoadOrEnv()
//	dbPath := cfg.Storage.DatabasePath
//	ttl := cfg.Reconcile.DedupTTL
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the entire application configuration
type Config struct {
	Storage       StorageConfig       `yaml:"storage"`
	Mailbox       MailboxConfig       `yaml:"mailbox"`
	Reconcile     ReconcileConfig     `yaml:"reconcile"`
	API           APIConfig           `yaml:"api"`
	Observability ObservabilityConfig `yaml:"observability"`
}

// StorageConfig holds database configuration
type StorageConfig struct {
	DatabasePath string `yaml:"database_path"`
}

// MailboxConfig holds Gmail API configuration
type MailboxConfig struct {
	CredentialsPath string `yaml:"credentials_path"`
	TokenPath       string `yaml:"token_path"`
	PendingLabel    string `yaml:"pending_label"`
	DoneLabel       string `yaml:"done_label"`
	FailedLabel     string `yaml:"failed_label"`
}

// ReconcileConfig holds reconciliation pipeline tuning
type ReconcileConfig struct {
	// DedupTTL is how long a processed message id is remembered.
	// Must exceed realistic run-failure recovery time.
	DedupTTL time.Duration `yaml:"dedup_ttl"`
	// SettleDelay is the pause after flushing one tenant's writes
	// before moving to the next tenant.
	SettleDelay time.Duration `yaml:"settle_delay"`
}

// APIConfig holds HTTP API server settings
type APIConfig struct {
	Port           int      `yaml:"port"`
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// ObservabilityConfig holds observability settings
type ObservabilityConfig struct {
	Logging LoggingConfig `yaml:"logging"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Load reads and parses the config file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	// Expand environment variables (e.g., ${RENTLEDGER_DB_PATH})
	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, err
	}

	cfg.applyDefaults()
	return &cfg, nil
}

// LoadFromEnv loads configuration from environment variables only
func LoadFromEnv() *Config {
	cfg := &Config{
		Storage: StorageConfig{
			DatabasePath: getEnv("RENTLEDGER_DB_PATH", "rentledger.db"),
		},
		Mailbox: MailboxConfig{
			CredentialsPath: getEnv("GMAIL_CREDENTIALS_PATH", "credentials.json"),
			TokenPath:       getEnv("GMAIL_TOKEN_PATH", "token.json"),
			PendingLabel:    getEnv("MAILBOX_PENDING_LABEL", "rent/pending"),
			DoneLabel:       getEnv("MAILBOX_DONE_LABEL", "rent/done"),
			FailedLabel:     getEnv("MAILBOX_FAILED_LABEL", "rent/failed"),
		},
		Reconcile: ReconcileConfig{
			DedupTTL:    getEnvDuration("DEDUP_TTL", 0),
			SettleDelay: getEnvDuration("SETTLE_DELAY", 0),
		},
		API: APIConfig{
			Port: getEnvInt("API_PORT", 8080),
		},
		Observability: ObservabilityConfig{
			Logging: LoggingConfig{
				Level:  getEnv("LOG_LEVEL", "info"),
				Format: getEnv("LOG_FORMAT", "text"),
			},
		},
	}
	cfg.applyDefaults()
	return cfg
}

// LoadOrEnv tries to load from config.yaml, falls back to environment variables
func LoadOrEnv() *Config {
	return LoadOrEnvWithPath("config.yaml")
}

// LoadOrEnvWithPath tries to load from specified path, falls back to environment variables
func LoadOrEnvWithPath(path string) *Config {
	if cfg, err := Load(path); err == nil {
		return cfg
	}
	return LoadFromEnv()
}

// applyDefaults fills zero values with usable defaults
func (c *Config) applyDefaults() {
	if c.Storage.DatabasePath == "" {
		c.Storage.DatabasePath = "rentledger.db"
	}
	if c.Mailbox.PendingLabel == "" {
		c.Mailbox.PendingLabel = "rent/pending"
	}
	if c.Mailbox.DoneLabel == "" {
		c.Mailbox.DoneLabel = "rent/done"
	}
	if c.Mailbox.FailedLabel == "" {
		c.Mailbox.FailedLabel = "rent/failed"
	}
	if c.Reconcile.DedupTTL <= 0 {
		c.Reconcile.DedupTTL = 14 * 24 * time.Hour
	}
	if c.API.Port == 0 {
		c.API.Port = 8080
	}
	if len(c.API.AllowedOrigins) == 0 {
		c.API.AllowedOrigins = []string{"http://localhost:3000", "http://localhost:5173"}
	}
	if c.Observability.Logging.Level == "" {
		c.Observability.Logging.Level = "info"
	}
}

// getEnv retrieves an environment variable with a fallback default
func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

// getEnvInt retrieves an integer environment variable with a fallback default
func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		var result int
		if _, err := fmt.Sscanf(val, "%d", &result); err == nil {
			return result
		}
	}
	return fallback
}

// getEnvDuration retrieves a duration environment variable with a fallback default
func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return fallback
}
