package main

import (
	"errors"
	"fmt"
	"log/slog"
	"net"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/meshgatt/meshgatt-go/pkg/bearer"
	"github.com/meshgatt/meshgatt-go/pkg/connection"
)

// Config is the bearer-ctl configuration file.
type Config struct {
	Peer    PeerConfig    `yaml:"peer"`
	Bearer  BearerConfig  `yaml:"bearer"`
	Retry   RetryConfig   `yaml:"retry"`
	Logging LoggingConfig `yaml:"logging"`
	State   StateConfig   `yaml:"state"`
}

// PeerConfig selects the mesh node to connect to.
type PeerConfig struct {
	// Address is a MAC address (Linux) or a peripheral UUID (macOS).
	Address string `yaml:"address"`
}

// BearerConfig holds bearer session options.
type BearerConfig struct {
	RequestedMTU     int  `yaml:"requested_mtu"`
	DropWhenNotReady bool `yaml:"drop_when_not_ready"`
}

// RetryConfig holds connection retry options.
type RetryConfig struct {
	Attempts       int      `yaml:"attempts"`
	Initial        Duration `yaml:"initial"`
	Max            Duration `yaml:"max"`
	AttemptTimeout Duration `yaml:"attempt_timeout"`
	AutoReconnect  *bool    `yaml:"auto_reconnect"`
}

// LoggingConfig holds logging options.
type LoggingConfig struct {
	Level       string `yaml:"level"`
	ProtocolLog string `yaml:"protocol_log"`
}

// StateConfig locates the file that remembers known peers.
type StateConfig struct {
	File string `yaml:"file"`
}

// Duration is a time.Duration written as a Go duration string ("200ms").
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("line %d: %w", value.Line, err)
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (d Duration) MarshalYAML() (any, error) {
	return time.Duration(d).String(), nil
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	retry := connection.DefaultRetryConfig()
	autoReconnect := true
	return &Config{
		Bearer: BearerConfig{
			RequestedMTU: bearer.MaxMTU,
		},
		Retry: RetryConfig{
			Attempts:      retry.Attempts,
			Initial:       Duration(retry.Initial),
			Max:           Duration(2 * time.Second),
			AutoReconnect: &autoReconnect,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load reads a YAML configuration file. Keys missing from the file keep
// their Default values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks the configuration for out-of-range values.
func (c *Config) Validate() error {
	var errs []error

	if c.Peer.Address != "" && !validAddress(c.Peer.Address) {
		errs = append(errs, fmt.Errorf("peer.address: %q is neither a MAC address nor a UUID", c.Peer.Address))
	}
	if mtu := c.Bearer.RequestedMTU; mtu != 0 && (mtu < bearer.MinMTU || mtu > bearer.MaxMTU) {
		errs = append(errs, fmt.Errorf("bearer.requested_mtu: %d outside [%d, %d]", mtu, bearer.MinMTU, bearer.MaxMTU))
	}
	if c.Retry.Attempts < 0 {
		errs = append(errs, fmt.Errorf("retry.attempts: must not be negative, got %d", c.Retry.Attempts))
	}
	if c.Retry.Initial < 0 || c.Retry.Max < 0 || c.Retry.AttemptTimeout < 0 {
		errs = append(errs, errors.New("retry: durations must not be negative"))
	}
	if c.Retry.Max > 0 && c.Retry.Max < c.Retry.Initial {
		errs = append(errs, fmt.Errorf("retry.max: %s is below retry.initial %s",
			time.Duration(c.Retry.Max), time.Duration(c.Retry.Initial)))
	}
	if _, err := parseLevel(c.Logging.Level); err != nil {
		errs = append(errs, fmt.Errorf("logging.level: %w", err))
	}

	return errors.Join(errs...)
}

// SessionConfig returns the bearer session options. Loggers are left for
// the caller to fill in.
func (c *Config) SessionConfig() bearer.SessionConfig {
	cfg := bearer.DefaultSessionConfig()
	if c.Bearer.RequestedMTU != 0 {
		cfg.RequestedMTU = c.Bearer.RequestedMTU
	}
	cfg.DropWhenNotReady = c.Bearer.DropWhenNotReady
	return cfg
}

// RetryConfig returns the retry options for one connection round.
func (c *Config) RetryConfig() connection.RetryConfig {
	cfg := connection.DefaultRetryConfig()
	if c.Retry.Attempts > 0 {
		cfg.Attempts = c.Retry.Attempts
	}
	if c.Retry.Initial > 0 {
		cfg.Initial = time.Duration(c.Retry.Initial)
	}
	if c.Retry.Max > 0 {
		cfg.Max = time.Duration(c.Retry.Max)
	}
	cfg.AttemptTimeout = time.Duration(c.Retry.AttemptTimeout)
	return cfg
}

// AutoReconnect reports whether lost links are re-established.
func (c *Config) AutoReconnect() bool {
	return c.Retry.AutoReconnect == nil || *c.Retry.AutoReconnect
}

// SlogLevel returns the configured log level.
func (c *Config) SlogLevel() slog.Level {
	level, _ := parseLevel(c.Logging.Level)
	return level
}

func parseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown level %q (must be debug, info, warn, or error)", s)
	}
}

func validAddress(addr string) bool {
	if _, err := net.ParseMAC(addr); err == nil {
		return true
	}
	_, err := uuid.Parse(addr)
	return err == nil
}
