package oscore

import "fmt"

// Kind enumerates the non-overlapping error categories of §7: Encoding,
// Semantic, Cryptographic, Proxy URI, and Transport. Callers branch on
// Kind rather than matching error strings.
type Kind string

const (
	// Encoding errors indicate programmer or peer protocol violations;
	// the core refuses to continue on any of them.
	KindCborError               Kind = "CborError"
	KindInvalidOptionLength     Kind = "InvalidOptionLength"
	KindInvalidPartialIvLength  Kind = "InvalidPartialIvLength"
	KindInvalidKidLength        Kind = "InvalidKidLength"
	KindInvalidKidContextLength Kind = "InvalidKidContextLength"
	KindInvalidIvLength         Kind = "InvalidIvLength"
	KindInvalidIvUntrimmed      Kind = "InvalidIvUntrimmed"
	KindInvalidKeyLength        Kind = "InvalidKeyLength"
	KindInvalidOutputLength     Kind = "InvalidOutputLength"
	KindOutputTooLong           Kind = "OutputTooLong"

	// Semantic errors.
	KindNoOscoreOption       Kind = "NoOscoreOption"
	KindInvalidKid           Kind = "InvalidKid"
	KindKidContextError      Kind = "KidContextError"
	KindPayloadNoPayloadMark Kind = "PayloadNoPayloadMarker"
	KindInvalidVersion       Kind = "InvalidVersion"
	KindInvalidType          Kind = "InvalidType"
	KindInvalidTokenLength   Kind = "InvalidTokenLength"

	// Cryptographic errors. Deliberately silent to the peer (§7); the
	// caller MAY log them locally.
	KindAeadVerifyFailed Kind = "AeadVerifyFailed"
	KindReplayRejected   Kind = "ReplayRejected"

	// Proxy URI errors, from the Class U Proxy-Uri rewrite (§4.7).
	KindUriInvalidProtocol Kind = "UriInvalidProtocol"
	KindUriInvalidFragment Kind = "UriInvalidFragment"
	KindUriParserError     Kind = "UriParserError"

	// Transport adapter errors: opaque packet errors from the CoAP
	// collaborator (§6), surfaced as-is.
	KindTransportError Kind = "TransportError"
)

// Error is the single error type this module returns. Kind identifies
// which of §7's taxonomy applies; Cause, when non-nil, wraps the
// lower-level error (a cbor.Error, an aead error, etc.) that produced it.
type Error struct {
	Kind  Kind
	Msg   string
	Cause error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("oscore: %s: %s: %v", e.Kind, e.Msg, e.Cause)
	}
	return fmt.Sprintf("oscore: %s: %s", e.Kind, e.Msg)
}

// Unwrap exposes Cause for errors.Is/errors.As.
func (e *Error) Unwrap() error { return e.Cause }

// newErr constructs an *Error, the only constructor used throughout this
// package so every returned error carries a Kind.
func newErr(kind Kind, msg string, cause error) *Error {
	return &Error{Kind: kind, Msg: msg, Cause: cause}
}
