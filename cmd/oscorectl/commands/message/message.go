// Package message implements oscorectl's protect/unprotect test-harness
// commands (§4.16): round-tripping a hand-built CoAP message through
// this module's pipeline for manual inspection. Neither command opens a
// socket - this is not the demonstration CoAP server the spec excludes
// (§1 Non-goals), only a way to exercise Endpoint.ProtectRequest/Unprotect
// against the configured security context.
package message

// ProtectCmd and UnprotectCmd are mounted directly on the root command
// (`oscorectl protect` / `oscorectl unprotect`), not grouped under a
// parent - §4.16 lists them as top-level commands alongside init and
// context show.
var (
	ProtectCmd   = protectCmd
	UnprotectCmd = unprotectCmd
)

// optionUriPath is the CoAP Uri-Path option number (RFC 7252 §12.2);
// it isn't part of internal/coap's referenced-option-number set (§6)
// since the core never classifies it by name, only by its Class E
// default.
const optionUriPath uint16 = 11
