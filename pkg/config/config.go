// Package config loads and validates oscorectl's configuration: the
// shared security context material (§3) plus the ambient logging, metrics,
// and context-store settings a long-running OSCORE endpoint needs.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Config is oscorectl's top-level configuration.
//
// Configuration sources (in order of precedence):
//  1. Environment variables (OSCORE_*)
//  2. Configuration file (YAML)
//  3. Default values (lowest priority)
type Config struct {
	// Logging controls log output behavior.
	Logging LoggingConfig `mapstructure:"logging" yaml:"logging"`

	// Metrics contains Prometheus metrics server configuration.
	Metrics MetricsConfig `mapstructure:"metrics" yaml:"metrics"`

	// Security holds the pre-established material a security context is
	// derived from (§3). Never logged - see Security.LogValue.
	Security SecurityConfig `mapstructure:"security" yaml:"security"`

	// Store selects and configures the ContextStore backend that persists
	// the sender sequence number and replay window (§6).
	Store StoreConfig `mapstructure:"store" yaml:"store"`

	// Tracing configures OpenTelemetry span export for protect/unprotect
	// calls, off by default.
	Tracing TracingConfig `mapstructure:"tracing" yaml:"tracing"`

	// Profiling configures continuous Pyroscope profiling, off by default.
	Profiling ProfilingConfig `mapstructure:"profiling" yaml:"profiling"`
}

// LoggingConfig controls logging behavior.
type LoggingConfig struct {
	// Level is the minimum log level to output.
	Level string `mapstructure:"level" validate:"required,oneof=DEBUG INFO WARN ERROR debug info warn error" yaml:"level"`

	// Format specifies the log output format: text or json.
	Format string `mapstructure:"format" validate:"required,oneof=text json" yaml:"format"`

	// Output specifies where logs are written: stdout, stderr, or a file path.
	Output string `mapstructure:"output" validate:"required" yaml:"output"`
}

// MetricsConfig configures the Prometheus metrics HTTP endpoint.
type MetricsConfig struct {
	// Enabled controls whether metrics registration/exposition is active.
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`

	// Port is the HTTP port the /metrics endpoint listens on.
	Port int `mapstructure:"port" validate:"omitempty,min=1,max=65535" yaml:"port"`
}

// SecurityConfig holds the pre-established security context material
// (§3: master_secret, master_salt, sender_id, recipient_id, id_context)
// plus the replay window size, all hex-encoded for the config file.
type SecurityConfig struct {
	// MasterSecret is the shared secret, hex-encoded. Required, and never
	// written back out by SaveConfig in logged or displayed form.
	MasterSecret string `mapstructure:"master_secret" validate:"required,hexadecimal" yaml:"master_secret"`

	// MasterSalt is the optional shared salt, hex-encoded. Empty means
	// "no salt" (§3 default).
	MasterSalt string `mapstructure:"master_salt" validate:"omitempty,hexadecimal" yaml:"master_salt,omitempty"`

	// SenderID is this endpoint's sender_id (kid), hex-encoded. May be
	// the empty string.
	SenderID string `mapstructure:"sender_id" validate:"omitempty,hexadecimal" yaml:"sender_id"`

	// RecipientID is the peer's recipient_id (kid), hex-encoded. May be
	// the empty string.
	RecipientID string `mapstructure:"recipient_id" validate:"omitempty,hexadecimal" yaml:"recipient_id"`

	// IDContext is the optional ID Context, hex-encoded.
	IDContext string `mapstructure:"id_context" validate:"omitempty,hexadecimal" yaml:"id_context,omitempty"`

	// ReplayWindowSize is the configured recipient replay window width in
	// bits. Default: 32. It is validated and displayed, but the endpoint's
	// replay window is always 32 bits wide whatever this value is.
	ReplayWindowSize int `mapstructure:"replay_window_size" validate:"omitempty,min=1,max=1024" yaml:"replay_window_size,omitempty"`
}

// StoreBackend names a ContextStore implementation. Its own mapstructure
// decode hook (storeBackendDecodeHook) normalizes case and whitespace
// during Load, the same hand-off the teacher's byteSizeDecodeHook performs
// for a different custom-typed config value.
type StoreBackend string

// StoreConfig selects the ContextStore backend (internal/store) that
// persists sender sequence number and replay window state across restarts.
type StoreConfig struct {
	// Backend selects the implementation: memory, badger, sqlite, or postgres.
	Backend StoreBackend `mapstructure:"backend" validate:"required,oneof=memory badger sqlite postgres" yaml:"backend"`

	// Path is the filesystem path for badger/sqlite backends.
	Path string `mapstructure:"path" yaml:"path,omitempty"`

	// DSN is the connection string for the postgres backend.
	DSN string `mapstructure:"dsn" yaml:"dsn,omitempty"`

	// EndpointID scopes stored rows to one (sender_id, recipient_id) pair
	// when a single database is shared by several endpoints (sqlite/postgres).
	EndpointID string `mapstructure:"endpoint_id" yaml:"endpoint_id,omitempty"`
}

// TracingConfig configures OpenTelemetry trace export for the
// protect/unprotect pipeline (internal/tracing).
type TracingConfig struct {
	// Enabled controls whether spans are exported via OTLP/gRPC; when
	// false, a no-op tracer is installed.
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`

	// Endpoint is the OTLP/gRPC collector address, e.g. "localhost:4317".
	Endpoint string `mapstructure:"endpoint" yaml:"endpoint,omitempty"`

	// Insecure disables TLS on the gRPC connection to Endpoint.
	Insecure bool `mapstructure:"insecure" yaml:"insecure,omitempty"`

	// SampleRate is the fraction of traces exported, 0.0-1.0.
	SampleRate float64 `mapstructure:"sample_rate" validate:"omitempty,min=0,max=1" yaml:"sample_rate,omitempty"`
}

// ProfilingConfig configures continuous profiling of the running endpoint
// via Pyroscope (internal/tracing).
type ProfilingConfig struct {
	// Enabled controls whether the profiler is started.
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`

	// Endpoint is the Pyroscope server URL, e.g. "http://localhost:4040".
	Endpoint string `mapstructure:"endpoint" yaml:"endpoint,omitempty"`

	// ProfileTypes selects which profiles to collect: cpu, alloc_objects,
	// alloc_space, inuse_objects, inuse_space, goroutines, mutex_count,
	// mutex_duration, block_count, block_duration. Defaults to cpu,
	// alloc_objects and inuse_objects when Enabled is true and this is left
	// empty.
	ProfileTypes []string `mapstructure:"profile_types" validate:"dive,oneof=cpu alloc_objects alloc_space inuse_objects inuse_space goroutines mutex_count mutex_duration block_count block_duration" yaml:"profile_types,omitempty"`
}

// Load loads configuration from file, environment, and defaults.
//
// Parameters:
//   - configPath: path to config file (empty string uses the default location)
//
// Returns the loaded and validated configuration, or an error.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	setupViper(v, configPath)

	configFileFound, err := readConfigFile(v)
	if err != nil {
		return nil, err
	}

	if !configFileFound {
		cfg := GetDefaultConfig()
		return cfg, nil
	}

	var cfg Config
	if err := v.Unmarshal(&cfg, viper.DecodeHook(configDecodeHooks())); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	ApplyDefaults(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

// MustLoad loads configuration with a user-friendly error when no config
// file exists at the resolved path.
func MustLoad(configPath string) (*Config, error) {
	if configPath == "" {
		if !DefaultConfigExists() {
			return nil, fmt.Errorf("no configuration file found at default location: %s\n\n"+
				"Please initialize a configuration file first:\n"+
				"  oscorectl init\n\n"+
				"Or specify a custom config file:\n"+
				"  oscorectl <command> --config /path/to/config.yaml",
				GetDefaultConfigPath())
		}
		configPath = GetDefaultConfigPath()
	} else if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("configuration file not found: %s\n\n"+
			"Please create the configuration file:\n"+
			"  oscorectl init --config %s",
			configPath, configPath)
	}

	cfg, err := Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return cfg, nil
}

// SaveConfig saves the configuration to path in YAML format, with
// owner-only permissions since the file contains master_secret/master_salt.
func SaveConfig(cfg *Config, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// configDecodeHooks returns the combined decode hook for all custom types
// Load needs converted from their raw config/environment representation.
func configDecodeHooks() mapstructure.DecodeHookFunc {
	return mapstructure.ComposeDecodeHookFunc(
		storeBackendDecodeHook(),
	)
}

// storeBackendDecodeHook normalizes a store.backend value - trimming
// whitespace and lowercasing - so OSCORE_STORE_BACKEND=Memory from the
// environment and "backend: MEMORY" in a config file both resolve the way
// a literal "memory" would.
func storeBackendDecodeHook() mapstructure.DecodeHookFunc {
	return func(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
		if to != reflect.TypeOf(StoreBackend("")) {
			return data, nil
		}
		switch v := data.(type) {
		case string:
			return StoreBackend(strings.ToLower(strings.TrimSpace(v))), nil
		default:
			return data, nil
		}
	}
}

// setupViper configures viper with environment variable and config file settings.
func setupViper(v *viper.Viper, configPath string) {
	// OSCORE_SECURITY_MASTER_SECRET=... overrides security.master_secret, etc.
	v.SetEnvPrefix("OSCORE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		configDir := getConfigDir()
		v.AddConfigPath(configDir)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
}

// readConfigFile reads the configuration file if it exists. Returns
// (fileFound, error); a missing file is not itself an error.
func readConfigFile(v *viper.Viper) (bool, error) {
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return false, nil
		}
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to read config file: %w", err)
	}
	return true, nil
}

// getConfigDir returns the configuration directory: $XDG_CONFIG_HOME/oscore,
// falling back to ~/.config/oscore, or "." if the home directory is unknown.
func getConfigDir() string {
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "oscore")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".config", "oscore")
}

// GetDefaultConfigPath returns the default configuration file path.
func GetDefaultConfigPath() string {
	return filepath.Join(getConfigDir(), "config.yaml")
}

// DefaultConfigExists reports whether a config file exists at the default location.
func DefaultConfigExists() bool {
	_, err := os.Stat(GetDefaultConfigPath())
	return err == nil
}

// GetConfigDir returns the configuration directory path (exposed for the init command).
func GetConfigDir() string {
	return getConfigDir()
}
