package tracing

import "go.opentelemetry.io/otel/attribute"

// Span names for the two OSCORE pipeline operations (§4.11, §4.12).
const (
	SpanProtect   = "oscore.protect"
	SpanUnprotect = "oscore.unprotect"
)

// Attribute keys, mirroring internal/logger/fields.go's structured log
// keys so a trace span and its log line carry the same vocabulary.
const (
	AttrOperation = "oscore.operation"
	AttrSenderID  = "oscore.sender_id"
	AttrPeerAddr  = "oscore.peer_addr"
	AttrErrorKind = "oscore.error_kind"
)

// Operation returns an attribute for the pipeline direction.
func Operation(op string) attribute.KeyValue {
	return attribute.String(AttrOperation, op)
}

// SenderIDHex returns an attribute for a hex-encoded sender kid.
func SenderIDHex(hex string) attribute.KeyValue {
	return attribute.String(AttrSenderID, hex)
}

// PeerAddr returns an attribute for the peer transport address.
func PeerAddr(addr string) attribute.KeyValue {
	return attribute.String(AttrPeerAddr, addr)
}

// ErrorKind returns an attribute for an oscore.Kind string value.
func ErrorKind(kind string) attribute.KeyValue {
	return attribute.String(AttrErrorKind, kind)
}
