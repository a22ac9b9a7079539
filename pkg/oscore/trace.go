package oscore

import (
	"context"
	"encoding/hex"

	"github.com/coapsec/oscore/internal/logger"
	"github.com/coapsec/oscore/internal/tracing"
)

// withTraceContext attaches a logger.LogContext carrying the active span's
// trace/span ID to ctx, so every DebugCtx/WarnCtx call inside protect or
// unprotect logs the same correlation ID the span was recorded under.
func withTraceContext(ctx context.Context, operation string) context.Context {
	lc := logger.NewLogContext("").WithOperation(operation).WithTrace(tracing.TraceIDHex(ctx), tracing.SpanIDHex(ctx))
	return logger.WithContext(ctx, lc)
}

// hexSenderID hex-encodes a kid for use as a span attribute; tracing's own
// helpers take a string rather than []byte to avoid importing the oscore
// package's byte-slice identity types into internal/tracing.
func hexSenderID(kid []byte) string {
	return hex.EncodeToString(kid)
}
