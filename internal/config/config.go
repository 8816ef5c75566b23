// Package config handles configuration loading from YAML files and environment variables.
// Configuration precedence: CLI flags > environment variables > config file > defaults.
package config

import (
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration is a wrapper around time.Duration that supports YAML unmarshaling
// from human-readable strings like "100ms", "30s", "1m".
type Duration struct {
	time.Duration
}

// UnmarshalYAML implements the yaml.Unmarshaler interface for Duration.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		parsed, err := time.ParseDuration(value.Value)
		if err != nil {
			return fmt.Errorf("invalid duration %q: %w", value.Value, err)
		}
		d.Duration = parsed
		return nil
	default:
		return fmt.Errorf("unsupported duration format: %v", value.Kind)
	}
}

// MarshalYAML implements the yaml.Marshaler interface for Duration.
func (d Duration) MarshalYAML() (interface{}, error) {
	return d.Duration.String(), nil
}

// Config holds the configuration of both binaries.
type Config struct {
	Agent     AgentConfig     `yaml:"agent"`
	Collector CollectorConfig `yaml:"collector"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// AgentConfig holds sender agent settings. Address and Port come only from
// the command line.
type AgentConfig struct {
	Address      string   `yaml:"-"`
	Port         int      `yaml:"-"`
	SampleWindow Duration `yaml:"sample_window"`
}

// CollectorConfig holds collector service settings.
type CollectorConfig struct {
	ListenAddress string `yaml:"listen_address"`
	Port          int    `yaml:"port"`
	Backlog       int    `yaml:"backlog"`
	// MaxConnections caps concurrently open handlers; 0 means unbounded.
	MaxConnections int `yaml:"max_connections"`
	// ReadTimeout bounds the frame read; 0 waits forever.
	ReadTimeout   Duration `yaml:"read_timeout"`
	StatusAddress string   `yaml:"status_address"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

// DestinationAddr returns the agent's host:port dial target.
func (a AgentConfig) DestinationAddr() string {
	return net.JoinHostPort(a.Address, strconv.Itoa(a.Port))
}

// ListenAddr returns the collector's host:port bind address.
func (c CollectorConfig) ListenAddr() string {
	return net.JoinHostPort(c.ListenAddress, strconv.Itoa(c.Port))
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Agent: AgentConfig{
			SampleWindow: Duration{100 * time.Millisecond},
		},
		Collector: CollectorConfig{
			ListenAddress: "0.0.0.0",
			Port:          8080,
			Backlog:       3,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// CLIOverrides holds values from command-line flags and arguments.
// Zero values are treated as "not set" and skipped.
type CLIOverrides struct {
	Address       string
	Port          int
	CollectorPort int
	LogLevel      string
}

// Locate searches standard config file paths and returns the first one found.
// Returns empty string if no config file exists.
func Locate() string {
	for _, p := range configSearchPaths() {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// LoadLayered loads configuration with the full precedence chain:
// CLI flags > env vars > YAML file > defaults.
//
// An optional configPath argument controls file discovery:
//   - omitted        → auto-discover via Locate()
//   - explicit value  → use that path ("" means no file)
func LoadLayered(cli CLIOverrides, configPath ...string) (*Config, error) {
	cfg := DefaultConfig()

	var filePath string
	if len(configPath) > 0 {
		filePath = configPath[0]
	} else {
		filePath = Locate()
	}
	if filePath != "" {
		data, err := os.ReadFile(filePath)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parsing config file %s: %w", filePath, err)
			}
		case !os.IsNotExist(err):
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}

	if cli.Address != "" {
		cfg.Agent.Address = cli.Address
	}
	if cli.Port != 0 {
		cfg.Agent.Port = cli.Port
	}
	if cli.CollectorPort != 0 {
		cfg.Collector.Port = cli.CollectorPort
	}
	if cli.LogLevel != "" {
		cfg.Logging.Level = cli.LogLevel
	}

	return cfg, nil
}

// WriteConfig serializes the config to a YAML file at the given path.
// Creates parent directories if needed.
func WriteConfig(cfg *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	return os.WriteFile(path, data, 0640)
}

// applyEnvOverrides applies SYSLENS_* environment variable overrides.
func applyEnvOverrides(cfg *Config) error {
	if level := os.Getenv("SYSLENS_LOG_LEVEL"); level != "" {
		cfg.Logging.Level = level
	}
	if window := os.Getenv("SYSLENS_SAMPLE_WINDOW"); window != "" {
		d, err := time.ParseDuration(window)
		if err != nil {
			return fmt.Errorf("SYSLENS_SAMPLE_WINDOW: %w", err)
		}
		cfg.Agent.SampleWindow = Duration{d}
	}
	if port := os.Getenv("SYSLENS_COLLECTOR_PORT"); port != "" {
		p, err := strconv.Atoi(port)
		if err != nil {
			return fmt.Errorf("SYSLENS_COLLECTOR_PORT: %w", err)
		}
		cfg.Collector.Port = p
	}
	if addr := os.Getenv("SYSLENS_STATUS_ADDRESS"); addr != "" {
		cfg.Collector.StatusAddress = addr
	}
	return nil
}

// ValidateAgent checks the settings the sender agent needs.
func (c *Config) ValidateAgent() error {
	if c.Agent.Address == "" {
		return fmt.Errorf("destination address is required")
	}
	if err := validatePort(c.Agent.Port); err != nil {
		return fmt.Errorf("destination %w", err)
	}
	if c.Agent.SampleWindow.Duration < 0 {
		return fmt.Errorf("sample window must not be negative (got: %s)", c.Agent.SampleWindow.Duration)
	}
	return nil
}

// ValidateCollector checks the settings the collector service needs.
func (c *Config) ValidateCollector() error {
	if err := validatePort(c.Collector.Port); err != nil {
		return fmt.Errorf("listen %w", err)
	}
	if c.Collector.Backlog < 1 {
		return fmt.Errorf("backlog must be positive (got: %d)", c.Collector.Backlog)
	}
	if c.Collector.MaxConnections < 0 {
		return fmt.Errorf("max connections must not be negative (got: %d)", c.Collector.MaxConnections)
	}
	if c.Collector.ReadTimeout.Duration < 0 {
		return fmt.Errorf("read timeout must not be negative (got: %s)", c.Collector.ReadTimeout.Duration)
	}
	return nil
}

func validatePort(port int) error {
	if port < 1 || port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535 (got: %d)", port)
	}
	return nil
}
