package oscore

import (
	"context"
	"sync"
)

// Endpoint bundles a Common/Sender/Recipient context triple with the
// ContextStore that persists their mutable state, and the mutex that
// makes sequence-number increment, replay-window update, and nonce/AEAD
// pairing one atomic unit (§5). Unlike the reference implementation's
// global process-wide context variables (§9), contexts are explicit
// handles here: an endpoint only ever holds the one Sender/Recipient pair
// it was constructed with, and callers hold one Endpoint per (sender_id,
// recipient_id, id_context) tuple they need to talk to - multi-context
// dispatch by kid/id_context is a caller-level concern, a named extension
// point rather than something this type does internally.
type Endpoint struct {
	mu sync.Mutex

	Common    *CommonContext
	Sender    *SenderContext
	Recipient *RecipientContext
	Store     ContextStore
}

// NewEndpoint derives the Common, Sender and Recipient contexts from pre
// and restores the Sender's sequence number and the Recipient's replay
// window from store (§4.5, §6).
func NewEndpoint(ctx context.Context, pre PreEstablished, store ContextStore) (*Endpoint, error) {
	common, err := DeriveCommonContext(pre)
	if err != nil {
		return nil, err
	}
	sender, err := DeriveSenderContext(pre)
	if err != nil {
		return nil, err
	}
	recipient, err := DeriveRecipientContext(pre, replayWindowBits)
	if err != nil {
		return nil, err
	}

	if store == nil {
		store = NewMemoryStore()
	}
	seq, highest, bitmap, err := store.Load(ctx)
	if err != nil {
		return nil, newErr(KindTransportError, "loading persisted context state", err)
	}
	sender.RestoreSeqNum(seq)
	recipient.Replay.Restore(highest, bitmap)

	return &Endpoint{Common: common, Sender: sender, Recipient: recipient, Store: store}, nil
}

// RequestContext carries the kid/Partial IV of a request, needed to
// compute the external AAD for both that request and any response to it
// (§4.10: "Both request_kid and request_piv are the request's values even
// when protecting a response"). ProtectRequest returns one alongside the
// protected message; Unprotect returns one for the peer's inbound request
// so the caller can later pass it to ProtectResponse.
type RequestContext struct {
	KID       []byte
	PartialIV []byte
}
