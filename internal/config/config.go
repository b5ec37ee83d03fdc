// Package config holds the runtime settings of the cacheflow server.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/aretw0/cacheflow/internal/logging"
)

// Config holds configuration settings for the canvas server
type Config struct {
	// HTTP
	Host        string
	Port        int
	MetricsPath string

	// Logging
	LogLevel  string
	LogFormat string

	// Canvas
	StreamBuffer    int
	ShutdownTimeout time.Duration
}

const (
	DefaultHost            = "127.0.0.1"
	DefaultPort            = 8080
	DefaultMetricsPath     = "/metrics"
	DefaultLogLevel        = "info"
	DefaultLogFormat       = LogFormatText
	DefaultStreamBuffer    = 16
	DefaultShutdownTimeout = 5 * time.Second

	LogFormatText = "text"
	LogFormatJSON = "json"

	MaxTCPPort      = 65535
	MaxStreamBuffer = 4096

	EnvPrefix = "CACHEFLOW_"
)

var (
	ErrInvalidPort            = errors.New("invalid port")
	ErrInvalidLogLevel        = errors.New("invalid log level")
	ErrInvalidLogFormat       = errors.New("invalid log format")
	ErrInvalidStreamBuffer    = errors.New("stream buffer must be positive")
	ErrInvalidMetricsPath     = errors.New("metrics path must start with /")
	ErrInvalidShutdownTimeout = errors.New("shutdown timeout must be positive")
)

// NewDefaultConfig creates a configuration with defaults suitable for a
// local editor session
func NewDefaultConfig() *Config {
	return &Config{
		Host:            DefaultHost,
		Port:            DefaultPort,
		MetricsPath:     DefaultMetricsPath,
		LogLevel:        DefaultLogLevel,
		LogFormat:       DefaultLogFormat,
		StreamBuffer:    DefaultStreamBuffer,
		ShutdownTimeout: DefaultShutdownTimeout,
	}
}

// LoadFromEnv populates configuration values from CACHEFLOW_* environment
// variables. Returns an error if any env var cannot be parsed.
func (c *Config) LoadFromEnv() error {
	if host := os.Getenv(EnvPrefix + "HOST"); host != "" {
		c.Host = host
	}
	if path := os.Getenv(EnvPrefix + "METRICS_PATH"); path != "" {
		c.MetricsPath = path
	}
	if level := os.Getenv(EnvPrefix + "LOG_LEVEL"); level != "" {
		c.LogLevel = level
	}
	if format := os.Getenv(EnvPrefix + "LOG_FORMAT"); format != "" {
		c.LogFormat = strings.ToLower(format)
	}

	if err := loadEnvInt(EnvPrefix+"PORT", &c.Port, 0, MaxTCPPort); err != nil {
		return err
	}
	if err := loadEnvInt(
		EnvPrefix+"STREAM_BUFFER", &c.StreamBuffer, 0, MaxStreamBuffer,
	); err != nil {
		return err
	}
	if s := os.Getenv(EnvPrefix + "SHUTDOWN_TIMEOUT"); s != "" {
		d, err := time.ParseDuration(s)
		if err != nil {
			return fmt.Errorf("invalid %sSHUTDOWN_TIMEOUT: %q", EnvPrefix, s)
		}
		c.ShutdownTimeout = d
	}
	return nil
}

// Addr returns the listen address in host:port form
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Validate checks that all configuration values are valid
func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > MaxTCPPort {
		return fmt.Errorf("%w: %d", ErrInvalidPort, c.Port)
	}
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidLogLevel, c.LogLevel)
	}
	if c.LogFormat != LogFormatText && c.LogFormat != LogFormatJSON {
		return fmt.Errorf("%w: %s", ErrInvalidLogFormat, c.LogFormat)
	}
	if c.StreamBuffer <= 0 {
		return ErrInvalidStreamBuffer
	}
	if !strings.HasPrefix(c.MetricsPath, "/") {
		return fmt.Errorf("%w: %q", ErrInvalidMetricsPath, c.MetricsPath)
	}
	if c.ShutdownTimeout <= 0 {
		return ErrInvalidShutdownTimeout
	}
	return nil
}

// loadEnvInt reads key from the environment, parses it as an integer, and
// sets *dst if the value is in the range (min, max]
func loadEnvInt(key string, dst *int, min, max int) error {
	s := os.Getenv(key)
	if s == "" {
		return nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return fmt.Errorf("invalid %s: %q", key, s)
	}
	if v <= min || v > max {
		return fmt.Errorf("invalid %s: %d out of range [%d, %d]",
			key, v, min+1, max)
	}
	*dst = v
	return nil
}
