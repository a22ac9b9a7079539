package message

import (
	"context"
	"fmt"

	"github.com/coapsec/oscore/internal/tracing"
	"github.com/coapsec/oscore/pkg/config"
	"github.com/coapsec/oscore/pkg/oscore"
	"github.com/spf13/cobra"
)

// openEndpoint loads the configuration named by cmd's inherited --config
// flag, initializes the logger and tracer from it, opens its configured
// ContextStore, and derives the endpoint the protect/unprotect commands
// operate on. The returned closer (possibly a no-op) shuts the tracer
// down and closes the store; it must be called once the command is done.
func openEndpoint(ctx context.Context, cmd *cobra.Command) (*oscore.Endpoint, func(), error) {
	configPath, _ := cmd.Flags().GetString("config")
	cfg, err := config.MustLoad(configPath)
	if err != nil {
		return nil, nil, err
	}

	if err := cfg.InitLogging(); err != nil {
		return nil, nil, err
	}

	shutdownTracing, err := tracing.Init(ctx, cfg.TracingOptions())
	if err != nil {
		return nil, nil, fmt.Errorf("initializing tracing: %w", err)
	}

	shutdownProfiling, err := tracing.InitProfiling(cfg.ProfilingOptions())
	if err != nil {
		_ = shutdownTracing(ctx)
		return nil, nil, fmt.Errorf("initializing profiling: %w", err)
	}

	pre, err := cfg.PreEstablished()
	if err != nil {
		_ = shutdownTracing(ctx)
		_ = shutdownProfiling()
		return nil, nil, fmt.Errorf("decoding security material: %w", err)
	}

	store, err := cfg.OpenStore(ctx)
	if err != nil {
		_ = shutdownTracing(ctx)
		_ = shutdownProfiling()
		return nil, nil, fmt.Errorf("opening context store: %w", err)
	}
	closeFn := func() {
		_ = shutdownTracing(context.Background())
		_ = shutdownProfiling()
		if closer, ok := store.(interface{ Close() error }); ok {
			_ = closer.Close()
		}
	}

	ep, err := oscore.NewEndpoint(ctx, pre, store)
	if err != nil {
		closeFn()
		return nil, nil, fmt.Errorf("deriving security contexts: %w", err)
	}
	return ep, closeFn, nil
}
