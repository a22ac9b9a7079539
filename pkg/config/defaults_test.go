package config

import "testing"

func TestApplyDefaults_Logging(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)

	if cfg.Logging.Level != "INFO" {
		t.Errorf("Expected default log level 'INFO', got %q", cfg.Logging.Level)
	}
	if cfg.Logging.Format != "text" {
		t.Errorf("Expected default log format 'text', got %q", cfg.Logging.Format)
	}
	if cfg.Logging.Output != "stdout" {
		t.Errorf("Expected default log output 'stdout', got %q", cfg.Logging.Output)
	}
}

func TestApplyDefaults_Security(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)

	if cfg.Security.ReplayWindowSize != 32 {
		t.Errorf("Expected default replay window size 32, got %d", cfg.Security.ReplayWindowSize)
	}
}

func TestApplyDefaults_Store(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)

	if cfg.Store.Backend != "memory" {
		t.Errorf("Expected default store backend 'memory', got %q", cfg.Store.Backend)
	}
}

func TestApplyDefaults_MetricsPortOnlyWhenEnabled(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)
	if cfg.Metrics.Port != 0 {
		t.Errorf("Expected metrics port to stay 0 when disabled, got %d", cfg.Metrics.Port)
	}

	cfg = &Config{Metrics: MetricsConfig{Enabled: true}}
	ApplyDefaults(cfg)
	if cfg.Metrics.Port != 9090 {
		t.Errorf("Expected default metrics port 9090 when enabled, got %d", cfg.Metrics.Port)
	}
}

func TestApplyDefaults_PreservesExplicitValues(t *testing.T) {
	cfg := &Config{
		Logging: LoggingConfig{
			Level:  "DEBUG",
			Format: "json",
			Output: "/var/log/oscore.log",
		},
		Security: SecurityConfig{ReplayWindowSize: 64},
		Store:    StoreConfig{Backend: "badger"},
	}

	ApplyDefaults(cfg)

	if cfg.Logging.Level != "DEBUG" {
		t.Errorf("Expected explicit level 'DEBUG' to be preserved, got %q", cfg.Logging.Level)
	}
	if cfg.Logging.Format != "json" {
		t.Errorf("Expected explicit format 'json' to be preserved, got %q", cfg.Logging.Format)
	}
	if cfg.Logging.Output != "/var/log/oscore.log" {
		t.Errorf("Expected explicit output to be preserved, got %q", cfg.Logging.Output)
	}
	if cfg.Security.ReplayWindowSize != 64 {
		t.Errorf("Expected explicit replay window size to be preserved, got %d", cfg.Security.ReplayWindowSize)
	}
	if cfg.Store.Backend != "badger" {
		t.Errorf("Expected explicit store backend to be preserved, got %q", cfg.Store.Backend)
	}
}

func TestApplyDefaults_TracingOnlyWhenEnabled(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)
	if cfg.Tracing.Endpoint != "" {
		t.Errorf("Expected tracing endpoint to stay empty when disabled, got %q", cfg.Tracing.Endpoint)
	}

	cfg = &Config{Tracing: TracingConfig{Enabled: true}}
	ApplyDefaults(cfg)
	if cfg.Tracing.Endpoint != "localhost:4317" {
		t.Errorf("Expected default tracing endpoint, got %q", cfg.Tracing.Endpoint)
	}
	if cfg.Tracing.SampleRate != 1.0 {
		t.Errorf("Expected default sample rate 1.0, got %v", cfg.Tracing.SampleRate)
	}
}

func TestApplyDefaults_ProfilingOnlyWhenEnabled(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)
	if cfg.Profiling.Endpoint != "" {
		t.Errorf("Expected profiling endpoint to stay empty when disabled, got %q", cfg.Profiling.Endpoint)
	}
	if len(cfg.Profiling.ProfileTypes) != 0 {
		t.Errorf("Expected no default profile types when disabled, got %v", cfg.Profiling.ProfileTypes)
	}

	cfg = &Config{Profiling: ProfilingConfig{Enabled: true}}
	ApplyDefaults(cfg)
	if cfg.Profiling.Endpoint != "http://localhost:4040" {
		t.Errorf("Expected default profiling endpoint, got %q", cfg.Profiling.Endpoint)
	}
	if len(cfg.Profiling.ProfileTypes) == 0 {
		t.Error("Expected default profile types when enabled")
	}
}

func TestGetDefaultConfig_HasRequiredFields(t *testing.T) {
	cfg := GetDefaultConfig()

	if cfg.Logging.Level == "" {
		t.Error("Default config missing logging level")
	}
	if cfg.Security.ReplayWindowSize == 0 {
		t.Error("Default config missing replay window size")
	}
	if cfg.Store.Backend == "" {
		t.Error("Default config missing store backend")
	}
}

func TestGetDefaultConfig_SecurityStillRequiresKeyMaterial(t *testing.T) {
	// GetDefaultConfig deliberately cannot invent a master_secret - a zero
	// config must still fail Validate until the operator supplies one.
	cfg := GetDefaultConfig()

	if err := Validate(cfg); err == nil {
		t.Fatal("Expected validation error: default config has no master_secret")
	}
}
