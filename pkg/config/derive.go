package config

import (
	"context"
	"encoding/hex"
	"fmt"

	"github.com/coapsec/oscore/internal/logger"
	"github.com/coapsec/oscore/internal/store"
	"github.com/coapsec/oscore/internal/tracing"
	"github.com/coapsec/oscore/pkg/oscore"
)

// InitLogging configures the package-level structured logger from the
// Logging section.
func (c *Config) InitLogging() error {
	if err := logger.Init(logger.Config{
		Level:  c.Logging.Level,
		Format: c.Logging.Format,
		Output: c.Logging.Output,
	}); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	return nil
}

// PreEstablished decodes the hex-encoded Security fields into the shared
// input material DeriveCommonContext/DeriveSenderContext/DeriveRecipientContext
// expect (§3). Call Validate on the Config first; this assumes its fields
// are well-formed hex.
func (c *Config) PreEstablished() (oscore.PreEstablished, error) {
	masterSecret, err := hex.DecodeString(c.Security.MasterSecret)
	if err != nil {
		return oscore.PreEstablished{}, fmt.Errorf("security.master_secret: %w", err)
	}
	masterSalt, err := hex.DecodeString(c.Security.MasterSalt)
	if err != nil {
		return oscore.PreEstablished{}, fmt.Errorf("security.master_salt: %w", err)
	}
	senderID, err := hex.DecodeString(c.Security.SenderID)
	if err != nil {
		return oscore.PreEstablished{}, fmt.Errorf("security.sender_id: %w", err)
	}
	recipientID, err := hex.DecodeString(c.Security.RecipientID)
	if err != nil {
		return oscore.PreEstablished{}, fmt.Errorf("security.recipient_id: %w", err)
	}
	var idContext []byte
	if c.Security.IDContext != "" {
		idContext, err = hex.DecodeString(c.Security.IDContext)
		if err != nil {
			return oscore.PreEstablished{}, fmt.Errorf("security.id_context: %w", err)
		}
	}

	return oscore.PreEstablished{
		MasterSecret: masterSecret,
		MasterSalt:   masterSalt,
		SenderID:     senderID,
		RecipientID:  recipientID,
		IDContext:    idContext,
	}, nil
}

// TracingOptions converts the Tracing section into internal/tracing's
// Config, ready to pass to tracing.Init.
func (c *Config) TracingOptions() tracing.Config {
	return tracing.Config{
		Enabled:        c.Tracing.Enabled,
		ServiceName:    "oscorectl",
		ServiceVersion: "dev",
		Endpoint:       c.Tracing.Endpoint,
		Insecure:       c.Tracing.Insecure,
		SampleRate:     c.Tracing.SampleRate,
	}
}

// ProfilingOptions converts the Profiling section into internal/tracing's
// ProfilingConfig, ready to pass to tracing.InitProfiling.
func (c *Config) ProfilingOptions() tracing.ProfilingConfig {
	return tracing.ProfilingConfig{
		Enabled:        c.Profiling.Enabled,
		ServiceName:    "oscorectl",
		ServiceVersion: "dev",
		Endpoint:       c.Profiling.Endpoint,
		ProfileTypes:   c.Profiling.ProfileTypes,
	}
}

// OpenStore instantiates the ContextStore the Store section selects.
// Callers are responsible for closing the returned store when it
// implements io.Closer (the Badger backend does).
func (c *Config) OpenStore(ctx context.Context) (oscore.ContextStore, error) {
	switch c.Store.Backend {
	case "", "memory":
		return oscore.NewMemoryStore(), nil
	case "badger":
		return store.NewBadgerStore(c.Store.Path)
	case "sqlite":
		return store.NewSQLiteStore(c.Store.Path, c.Store.EndpointID)
	case "postgres":
		if err := store.MigrateEmbeddedPostgresSchema(ctx, c.Store.DSN); err != nil {
			return nil, fmt.Errorf("migrating postgres schema: %w", err)
		}
		return store.NewPostgresStore(c.Store.DSN, c.Store.EndpointID)
	default:
		return nil, fmt.Errorf("unknown store backend %q", c.Store.Backend)
	}
}
