// Package config loads the service configuration from defaults, an optional
// YAML file and HEM_* environment variables, in increasing precedence.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/goccy/go-yaml"
	"github.com/spf13/viper"
)

const envPrefix = "hem"

// Config holds every tunable of the HEM service. Zero values are not
// meaningful defaults; construct it through Default or Load.
type Config struct {
	// ServiceName is reported by the service info endpoint and attached
	// to audit events.
	ServiceName string `mapstructure:"service_name"`

	// ListenAddr is the address and port the HTTP API listens on.
	ListenAddr string `mapstructure:"listen_addr"`

	// MetricsAddr is the address and port for the Prometheus metrics
	// server. If empty, the metrics server is not started.
	MetricsAddr string `mapstructure:"metrics_addr"`

	// EnablePprof enables the pprof debugging API when true.
	EnablePprof bool `mapstructure:"enable_pprof"`

	// EnableSimulatedDecrypt allows the decrypt endpoint to reveal
	// plaintext vectors. Off by default.
	EnableSimulatedDecrypt bool `mapstructure:"enable_simulated_decrypt"`

	// RateLimitPerMinute caps requests per client IP per minute across
	// the API. Zero disables rate limiting.
	RateLimitPerMinute int `mapstructure:"rate_limit_per_minute"`

	// AuditLogPath appends audit events as JSON lines to a file.
	// If empty, only the in-memory sink is used.
	AuditLogPath string `mapstructure:"audit_log_path"`

	// AuditDatabaseURL is the Postgres DSN for the database audit sink.
	// If empty, no database sink is attached.
	AuditDatabaseURL string `mapstructure:"audit_database_url"`

	// LogJSON switches log output from text to JSON.
	LogJSON bool `mapstructure:"log_json"`

	// LogDebug lowers the log level to debug.
	LogDebug bool `mapstructure:"log_debug"`

	// ReadTimeout is the maximum duration for reading an entire request.
	ReadTimeout time.Duration `mapstructure:"read_timeout"`

	// WriteTimeout is the maximum duration before timing out a response.
	WriteTimeout time.Duration `mapstructure:"write_timeout"`

	// DrainSeconds is how long the server stays up after readiness flips
	// to false, so load balancers can notice before shutdown.
	DrainSeconds int `mapstructure:"drain_seconds"`

	// GracefulShutdownSeconds bounds the wait for in-flight requests
	// during shutdown.
	GracefulShutdownSeconds int `mapstructure:"graceful_shutdown_seconds"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		ServiceName:             "hem-service",
		ListenAddr:              ":8000",
		MetricsAddr:             ":9090",
		EnablePprof:             false,
		EnableSimulatedDecrypt:  false,
		RateLimitPerMinute:      120,
		AuditLogPath:            "",
		AuditDatabaseURL:        "",
		LogJSON:                 false,
		LogDebug:                false,
		ReadTimeout:             10 * time.Second,
		WriteTimeout:            15 * time.Second,
		DrainSeconds:            0,
		GracefulShutdownSeconds: 30,
	}
}

func applyDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("service_name", d.ServiceName)
	v.SetDefault("listen_addr", d.ListenAddr)
	v.SetDefault("metrics_addr", d.MetricsAddr)
	v.SetDefault("enable_pprof", d.EnablePprof)
	v.SetDefault("enable_simulated_decrypt", d.EnableSimulatedDecrypt)
	v.SetDefault("rate_limit_per_minute", d.RateLimitPerMinute)
	v.SetDefault("audit_log_path", d.AuditLogPath)
	v.SetDefault("audit_database_url", d.AuditDatabaseURL)
	v.SetDefault("log_json", d.LogJSON)
	v.SetDefault("log_debug", d.LogDebug)
	v.SetDefault("read_timeout", d.ReadTimeout)
	v.SetDefault("write_timeout", d.WriteTimeout)
	v.SetDefault("drain_seconds", d.DrainSeconds)
	v.SetDefault("graceful_shutdown_seconds", d.GracefulShutdownSeconds)
}

// Load builds a Config from defaults, the YAML file at path (optional, pass
// "" to skip) and HEM_* environment variables. Environment variables win
// over the file, the file wins over defaults.
func Load(path string) (*Config, error) {
	v := viper.New()
	applyDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AllowEmptyEnv(true)
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports the first invalid field, if any.
func (c *Config) Validate() error {
	if c.ServiceName == "" {
		return errors.New("config: service_name must not be empty")
	}
	if c.ListenAddr == "" {
		return errors.New("config: listen_addr must not be empty")
	}
	if c.RateLimitPerMinute < 0 {
		return fmt.Errorf("config: rate_limit_per_minute must not be negative, got %d", c.RateLimitPerMinute)
	}
	if c.ReadTimeout < 0 {
		return errors.New("config: read_timeout must not be negative")
	}
	if c.WriteTimeout < 0 {
		return errors.New("config: write_timeout must not be negative")
	}
	if c.DrainSeconds < 0 {
		return errors.New("config: drain_seconds must not be negative")
	}
	if c.GracefulShutdownSeconds < 0 {
		return errors.New("config: graceful_shutdown_seconds must not be negative")
	}
	return nil
}

// DrainDuration returns DrainSeconds as a time.Duration.
func (c *Config) DrainDuration() time.Duration {
	return time.Duration(c.DrainSeconds) * time.Second
}

// GracefulShutdownDuration returns GracefulShutdownSeconds as a time.Duration.
func (c *Config) GracefulShutdownDuration() time.Duration {
	return time.Duration(c.GracefulShutdownSeconds) * time.Second
}

const yamlHeader = `# HEM service configuration.
# Every key may be overridden with an environment variable of the same name,
# upper-cased and prefixed with HEM_, e.g. HEM_LISTEN_ADDR=:9000.
`

// DefaultConfigYAML renders the default configuration as a commented YAML
// document with keys in declaration order.
func DefaultConfigYAML() ([]byte, error) {
	d := Default()
	doc := yaml.MapSlice{
		{Key: "service_name", Value: d.ServiceName},
		{Key: "listen_addr", Value: d.ListenAddr},
		{Key: "metrics_addr", Value: d.MetricsAddr},
		{Key: "enable_pprof", Value: d.EnablePprof},
		{Key: "enable_simulated_decrypt", Value: d.EnableSimulatedDecrypt},
		{Key: "rate_limit_per_minute", Value: d.RateLimitPerMinute},
		{Key: "audit_log_path", Value: d.AuditLogPath},
		{Key: "audit_database_url", Value: d.AuditDatabaseURL},
		{Key: "log_json", Value: d.LogJSON},
		{Key: "log_debug", Value: d.LogDebug},
		{Key: "read_timeout", Value: d.ReadTimeout.String()},
		{Key: "write_timeout", Value: d.WriteTimeout.String()},
		{Key: "drain_seconds", Value: d.DrainSeconds},
		{Key: "graceful_shutdown_seconds", Value: d.GracefulShutdownSeconds},
	}

	body, err := yaml.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("marshal default config: %w", err)
	}

	var buf bytes.Buffer
	buf.WriteString(yamlHeader)
	buf.Write(body)
	return buf.Bytes(), nil
}

// WriteDefaultConfig writes the default configuration YAML to path, creating
// parent directories as needed.
func WriteDefaultConfig(path string) error {
	data, err := DefaultConfigYAML()
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory %s: %w", dir, err)
		}
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write config %s: %w", path, err)
	}
	return nil
}
