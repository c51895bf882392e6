// Package config provides configuration types for the TVET-MIS client.
package config

import (
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// Config is the top-level configuration for the client.
type Config struct {
	// Server configures the TVET-MIS backend endpoint.
	Server ServerConfig `yaml:"server" mapstructure:"server"`

	// Storage configures the durable client storage file.
	Storage StorageConfig `yaml:"storage" mapstructure:"storage"`

	// Audit configures the access-event audit trail.
	Audit AuditConfig `yaml:"audit" mapstructure:"audit"`

	// LogLevel sets the minimum log level.
	// Valid values: "debug", "info", "warn", "error".
	// Defaults to "info" if empty. DevMode=true overrides to "debug".
	LogLevel string `yaml:"log_level" mapstructure:"log_level" validate:"omitempty,oneof=debug info warn warning error"`

	// DevMode relaxes the HTTPS requirement and enables verbose logging.
	DevMode bool `yaml:"dev_mode" mapstructure:"dev_mode"`
}

// ServerConfig configures the backend endpoint.
type ServerConfig struct {
	// BaseURL is the TVET-MIS server base URL (e.g., "https://mis.tvet.gov.bt").
	BaseURL string `yaml:"base_url" mapstructure:"base_url" validate:"required,url"`

	// Timeout is the per-request timeout (e.g., "30s", "1m").
	// Defaults to "30s" if not specified.
	Timeout string `yaml:"timeout" mapstructure:"timeout" validate:"omitempty"`
}

// StorageConfig configures the client storage file.
type StorageConfig struct {
	// Dir is the directory holding the storage and audit files.
	// Defaults to ~/.tvetmis.
	Dir string `yaml:"dir" mapstructure:"dir"`

	// Secure marks persisted session entries as secure-channel only.
	// Defaults to true; dev_mode turns it off unless explicitly set.
	Secure bool `yaml:"secure" mapstructure:"secure"`
}

// AuditConfig configures the audit trail output.
type AuditConfig struct {
	// Output specifies where audit records are written.
	// Valid values: "stdout" or "file://<absolute-path>" (a directory).
	// Defaults to a file store under Storage.Dir.
	Output string `yaml:"output" mapstructure:"output" validate:"required,audit_output"`

	// RetentionDays is the number of days to keep audit files.
	// Defaults to 30. Only applies to file output.
	RetentionDays int `yaml:"retention_days" mapstructure:"retention_days" validate:"omitempty,min=1"`
}

// SetDefaults applies sensible default values to the configuration.
func (c *Config) SetDefaults() {
	if c.Server.Timeout == "" {
		c.Server.Timeout = "30s"
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.DevMode {
		c.LogLevel = "debug"
	}

	if c.Storage.Dir == "" {
		if home, err := os.UserHomeDir(); err == nil {
			c.Storage.Dir = filepath.Join(home, ".tvetmis")
		} else {
			c.Storage.Dir = ".tvetmis"
		}
	}
	// viper.IsSet distinguishes "not set" (zero value) from "explicitly false".
	if !viper.IsSet("storage.secure") {
		c.Storage.Secure = !c.DevMode
	}

	if c.Audit.Output == "" {
		if dir := filepath.Join(c.Storage.Dir, "audit"); filepath.IsAbs(dir) {
			c.Audit.Output = "file://" + dir
		} else {
			c.Audit.Output = "stdout"
		}
	}
	if c.Audit.RetentionDays == 0 {
		c.Audit.RetentionDays = 30
	}
}

// StoragePath returns the path of the storage jar file.
func (c *Config) StoragePath() string {
	return filepath.Join(c.Storage.Dir, "storage.json")
}
