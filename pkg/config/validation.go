package config

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// Validate checks struct tag constraints via go-playground/validator, then
// the cross-field constraints tags can't express: a store backend's
// required connection parameter, and telemetry-style "enabled implies
// configured" pairs.
func Validate(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		return err
	}

	// The "hexadecimal" tag accepts odd-length strings; hex.DecodeString
	// (used by PreEstablished) does not, so reject those here rather than
	// surface a decode error deep in context derivation.
	for field, value := range map[string]string{
		"security.master_secret": cfg.Security.MasterSecret,
		"security.master_salt":   cfg.Security.MasterSalt,
		"security.sender_id":     cfg.Security.SenderID,
		"security.recipient_id":  cfg.Security.RecipientID,
		"security.id_context":    cfg.Security.IDContext,
	} {
		if len(value)%2 != 0 {
			return fmt.Errorf("%s must have an even number of hex digits, got %q", field, value)
		}
	}

	switch cfg.Store.Backend {
	case "badger", "sqlite":
		if cfg.Store.Path == "" {
			return fmt.Errorf("store.path is required when store.backend is %q", cfg.Store.Backend)
		}
	case "postgres":
		if cfg.Store.DSN == "" {
			return fmt.Errorf("store.dsn is required when store.backend is \"postgres\"")
		}
	}

	if cfg.Tracing.Enabled && cfg.Tracing.Endpoint == "" {
		return fmt.Errorf("tracing.endpoint is required when tracing.enabled is true")
	}

	if cfg.Profiling.Enabled && cfg.Profiling.Endpoint == "" {
		return fmt.Errorf("profiling.endpoint is required when profiling.enabled is true")
	}

	return nil
}
