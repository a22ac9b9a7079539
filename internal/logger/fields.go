package logger

import (
	"encoding/hex"
	"log/slog"
)

// Standard field keys for structured logging across the OSCORE pipeline.
// Use these keys consistently so log aggregation/querying stays uniform
// across protect, unprotect, and context-store events.
const (
	// ========================================================================
	// Distributed Tracing
	// ========================================================================
	KeyTraceID = "trace_id" // OpenTelemetry trace ID for request correlation
	KeySpanID  = "span_id"  // OpenTelemetry span ID for operation tracking

	// ========================================================================
	// Operation
	// ========================================================================
	KeyOperation = "operation" // "protect" or "unprotect"
	KeyPeerAddr  = "peer_addr" // Peer transport address, if known

	// ========================================================================
	// OSCORE Identity (never the key material itself)
	// ========================================================================
	KeySenderID    = "sender_id"    // Sender ID (kid), hex-encoded
	KeyRecipientID = "recipient_id" // Recipient ID (kid), hex-encoded
	KeyIDContext   = "id_context"   // ID Context, hex-encoded, if present
	KeySeqNum      = "seq_num"      // Sender sequence number at the time of the call
	KeyPartialIV   = "partial_iv"   // Partial IV (trimmed), hex-encoded

	// ========================================================================
	// Outcome
	// ========================================================================
	KeyErrorKind  = "error_kind"  // oscore.Kind of a failed operation
	KeyError      = "error"       // Error message
	KeyDurationMs = "duration_ms" // Operation duration in milliseconds

	// ========================================================================
	// Context Store
	// ========================================================================
	KeyStoreBackend = "store_backend" // "badger" or "sql"
	KeyReplayWindow = "replay_window" // Replay window bitmap, hex-encoded
)

// TraceID returns a slog.Attr for OpenTelemetry trace ID
func TraceID(id string) slog.Attr {
	return slog.String(KeyTraceID, id)
}

// SpanID returns a slog.Attr for OpenTelemetry span ID
func SpanID(id string) slog.Attr {
	return slog.String(KeySpanID, id)
}

// Operation returns a slog.Attr for the pipeline direction ("protect"/"unprotect").
func Operation(op string) slog.Attr {
	return slog.String(KeyOperation, op)
}

// PeerAddr returns a slog.Attr for the peer transport address.
func PeerAddr(addr string) slog.Attr {
	return slog.String(KeyPeerAddr, addr)
}

// SenderID returns a slog.Attr for a hex-encoded sender kid.
func SenderID(id []byte) slog.Attr {
	return slog.String(KeySenderID, hex.EncodeToString(id))
}

// RecipientID returns a slog.Attr for a hex-encoded recipient kid.
func RecipientID(id []byte) slog.Attr {
	return slog.String(KeyRecipientID, hex.EncodeToString(id))
}

// IDContext returns a slog.Attr for a hex-encoded ID Context.
func IDContext(idCtx []byte) slog.Attr {
	return slog.String(KeyIDContext, hex.EncodeToString(idCtx))
}

// SeqNum returns a slog.Attr for the sender sequence number.
func SeqNum(seq uint64) slog.Attr {
	return slog.Uint64(KeySeqNum, seq)
}

// PartialIV returns a slog.Attr for a hex-encoded trimmed Partial IV.
func PartialIV(piv []byte) slog.Attr {
	return slog.String(KeyPartialIV, hex.EncodeToString(piv))
}

// ErrorKind returns a slog.Attr for an oscore.Kind string value.
func ErrorKind(kind string) slog.Attr {
	return slog.String(KeyErrorKind, kind)
}

// Err returns a slog.Attr for an error
func Err(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.String(KeyError, err.Error())
}

// DurationMs returns a slog.Attr for duration in milliseconds
func DurationMs(ms float64) slog.Attr {
	return slog.Float64(KeyDurationMs, ms)
}

// StoreBackend returns a slog.Attr for the context store backend in use.
func StoreBackend(name string) slog.Attr {
	return slog.String(KeyStoreBackend, name)
}

// ReplayWindow returns a slog.Attr for a hex-encoded replay window bitmap.
func ReplayWindow(bitmap uint32) slog.Attr {
	return slog.String(KeyReplayWindow, hex.EncodeToString([]byte{
		byte(bitmap >> 24), byte(bitmap >> 16), byte(bitmap >> 8), byte(bitmap),
	}))
}
