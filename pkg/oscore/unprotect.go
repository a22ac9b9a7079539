package oscore

import (
	"bytes"
	"context"
	"sort"

	"github.com/coapsec/oscore/internal/aad"
	"github.com/coapsec/oscore/internal/aead"
	"github.com/coapsec/oscore/internal/coap"
	"github.com/coapsec/oscore/internal/logger"
	"github.com/coapsec/oscore/internal/metrics"
	"github.com/coapsec/oscore/internal/nonce"
	"github.com/coapsec/oscore/internal/oscoreopt"
	"github.com/coapsec/oscore/internal/tracing"
	"go.opentelemetry.io/otel/trace"
)

// Unprotect converts an inbound OSCORE message back into its plaintext
// CoAP form (§4.12). It returns the decrypted message and the
// RequestContext the caller must pass to ProtectResponse if msg is a
// request this endpoint is about to answer (§4.10 - a response's AAD
// always reuses its request's kid/piv).
func (ep *Endpoint) Unprotect(ctx context.Context, msg *coap.Message) (*coap.Message, RequestContext, error) {
	ctx, span := tracing.StartSpan(ctx, tracing.SpanUnprotect, trace.WithAttributes(tracing.Operation("unprotect")))
	defer span.End()
	ctx = withTraceContext(ctx, "unprotect")

	ep.mu.Lock()
	defer ep.mu.Unlock()

	metrics.UnprotectTotal.Inc()

	out, reqCtx, err := ep.unprotect(ctx, msg)
	if err != nil {
		reason := "unknown"
		if oerr, ok := err.(*Error); ok {
			reason = string(oerr.Kind)
			// AEAD/replay failures are silent to the peer by design (§7)
			// but worth a local warning without key material attached.
			logger.WarnCtx(ctx, "unprotect failed", logger.ErrorKind(reason), logger.Err(err))
		}
		tracing.SetAttributes(ctx, tracing.ErrorKind(reason))
		tracing.RecordError(ctx, err)
		metrics.UnprotectErrorsTotal.WithLabelValues(reason).Inc()
		if reason == string(KindReplayRejected) {
			metrics.ReplayRejectedTotal.Inc()
		}
		return nil, RequestContext{}, err
	}
	return out, reqCtx, nil
}

func (ep *Endpoint) unprotect(ctx context.Context, msg *coap.Message) (*coap.Message, RequestContext, error) {
	oscOpt, ok := msg.Option(coap.OptionOSCORE)
	if !ok {
		return nil, RequestContext{}, newErr(KindNoOscoreOption, "inbound message carries no oscore option", nil)
	}
	val, err := oscoreopt.Decode(oscOpt.Value)
	if err != nil {
		return nil, RequestContext{}, newErr(KindInvalidOptionLength, "decoding oscore option", err)
	}

	pivNum := PartialIVToUint64(val.PartialIV)
	if !ep.Recipient.Replay.Accept(pivNum) {
		return nil, RequestContext{}, newErr(KindReplayRejected, "partial iv rejected by replay window", nil)
	}

	// kid absent (the common case for a response: correlation is by
	// token, not kid) falls back to this endpoint's single Recipient
	// Context - multi-context dispatch on kid/id_context is the named
	// extension point (§4.12 step 4).
	kid := ep.Recipient.RecipientID
	if val.KIDPresent {
		if !bytes.Equal(val.KID, ep.Recipient.RecipientID) {
			return nil, RequestContext{}, newErr(KindInvalidKid, "kid does not match recipient context", nil)
		}
		kid = val.KID
	}

	n, err := nonce.Build(kid, val.PartialIV, ep.Common.CommonIV[:])
	if err != nil {
		return nil, RequestContext{}, newErr(KindInvalidIvLength, "building nonce", err)
	}

	aadBytes, err := aad.Build(aad.External{
		AeadAlg:    ep.Common.AeadAlg,
		RequestKID: kid,
		RequestPIV: val.PartialIV,
	})
	if err != nil {
		return nil, RequestContext{}, newErr(KindCborError, "building external aad", err)
	}

	plaintext, err := aead.Open(ep.Recipient.RecipientKey[:], n, msg.Payload, aadBytes)
	if err != nil {
		return nil, RequestContext{}, newErr(KindAeadVerifyFailed, "aead open failed", err)
	}

	// Only on successful decryption does the Partial IV enter the replay
	// window (§4.12 step 7, §5's atomicity contract).
	ep.Recipient.Replay.Insert(pivNum)
	highest, bitmap := ep.Recipient.Replay.Snapshot()
	if err := ep.Store.SaveReplayWindow(ctx, highest, bitmap); err != nil {
		return nil, RequestContext{}, newErr(KindTransportError, "persisting replay window", err)
	}

	code, classE, payload, err := parsePlaintext(plaintext)
	if err != nil {
		return nil, RequestContext{}, err
	}

	outerU, err := coap.Filter(msg.Options, coap.ClassU)
	if err != nil {
		return nil, RequestContext{}, classErr(err)
	}
	outerU = withoutOSCORE(outerU)

	inner := &coap.Message{
		Version:   msg.Version,
		Type:      msg.Type,
		Token:     msg.Token,
		MessageID: msg.MessageID,
		Code:      code,
		Options:   mergeOptions(outerU, classE),
		Payload:   payload,
	}

	return inner, RequestContext{KID: kid, PartialIV: val.PartialIV}, nil
}

// parsePlaintext splits the decrypted plaintext into its CoAP code,
// option sequence, and payload (§4.12 step 8). coap.Decode's loop only
// ever stops at a 0xFF marker or end-of-buffer, so a malformed
// marker-less tail surfaces as an option decode error rather than a
// distinct "missing marker with leftover bytes" state.
func parsePlaintext(plaintext []byte) (code uint8, opts coap.Options, payload []byte, err error) {
	if len(plaintext) < 1 {
		return 0, nil, nil, newErr(KindPayloadNoPayloadMark, "plaintext shorter than one byte", nil)
	}
	code = plaintext[0]
	opts, payload, derr := coap.Decode(plaintext[1:])
	if derr != nil {
		return 0, nil, nil, newErr(KindInvalidOptionLength, "decoding class e options", derr)
	}
	return code, opts, payload, nil
}

// withoutOSCORE drops the OSCORE option itself from a Class U subsequence
// before merging it into the rebuilt inner message - it has no meaning
// once the message is unprotected.
func withoutOSCORE(opts coap.Options) coap.Options {
	out := make(coap.Options, 0, len(opts))
	for _, o := range opts {
		if o.Number == coap.OptionOSCORE {
			continue
		}
		out = append(out, o)
	}
	return out
}

// mergeOptions combines outer Class U/I options with inner Class E
// options, sorting by absolute number with a stable sort so any options
// sharing a number keep their relative (outer-before-inner) order (§4.12
// step 9).
func mergeOptions(outerUI, innerE coap.Options) coap.Options {
	merged := make(coap.Options, 0, len(outerUI)+len(innerE))
	merged = append(merged, outerUI...)
	merged = append(merged, innerE...)
	sort.SliceStable(merged, func(i, j int) bool { return merged[i].Number < merged[j].Number })
	return merged
}
