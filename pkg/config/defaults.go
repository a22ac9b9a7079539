package config

// ApplyDefaults sets default values for any unspecified configuration
// fields. Called after loading from file/environment to fill in missing
// values; zero values are treated as "unset".
func ApplyDefaults(cfg *Config) {
	applyLoggingDefaults(&cfg.Logging)
	applyMetricsDefaults(&cfg.Metrics)
	applySecurityDefaults(&cfg.Security)
	applyStoreDefaults(&cfg.Store)
	applyTracingDefaults(&cfg.Tracing)
	applyProfilingDefaults(&cfg.Profiling)
}

func applyLoggingDefaults(cfg *LoggingConfig) {
	if cfg.Level == "" {
		cfg.Level = "INFO"
	}
	if cfg.Format == "" {
		cfg.Format = "text"
	}
	if cfg.Output == "" {
		cfg.Output = "stdout"
	}
}

func applyMetricsDefaults(cfg *MetricsConfig) {
	if cfg.Enabled && cfg.Port == 0 {
		cfg.Port = 9090
	}
}

// applySecurityDefaults sets the replay window default. MasterSecret,
// MasterSalt, SenderID, RecipientID and IDContext have no sensible
// defaults and must come from the config file, the environment, or an
// interactive oscorectl init prompt.
func applySecurityDefaults(cfg *SecurityConfig) {
	if cfg.ReplayWindowSize == 0 {
		cfg.ReplayWindowSize = 32
	}
}

// applyStoreDefaults defaults to an in-memory store: durable across the
// process lifetime but not across restarts, same tradeoff the teacher's
// identity store makes for a zero-config developer experience.
func applyStoreDefaults(cfg *StoreConfig) {
	if cfg.Backend == "" {
		cfg.Backend = "memory"
	}
}

// applyTracingDefaults fills in the OTLP endpoint and full sampling only
// when tracing was turned on without naming a collector - an explicitly
// disabled tracer (the default) needs none of this.
func applyTracingDefaults(cfg *TracingConfig) {
	if !cfg.Enabled {
		return
	}
	if cfg.Endpoint == "" {
		cfg.Endpoint = "localhost:4317"
	}
	if cfg.SampleRate == 0 {
		cfg.SampleRate = 1.0
	}
}

// applyProfilingDefaults fills in the Pyroscope endpoint and a cpu+heap
// profile set only when profiling was turned on without naming either -
// an explicitly disabled profiler (the default) needs none of this.
func applyProfilingDefaults(cfg *ProfilingConfig) {
	if !cfg.Enabled {
		return
	}
	if cfg.Endpoint == "" {
		cfg.Endpoint = "http://localhost:4040"
	}
	if len(cfg.ProfileTypes) == 0 {
		cfg.ProfileTypes = []string{"cpu", "alloc_objects", "inuse_objects"}
	}
}

// GetDefaultConfig returns a Config with every default applied and an
// empty (invalid) Security block - callers must still supply master
// secret/sender/recipient material before Validate will pass.
func GetDefaultConfig() *Config {
	cfg := &Config{
		Store: StoreConfig{Backend: "memory"},
	}
	ApplyDefaults(cfg)
	return cfg
}
