package oscore

import (
	"context"
	"sort"
	"time"

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

// ProtectRequest converts a plaintext outgoing request into its
// OSCORE-protected form (§4.11), using this endpoint's own Sender ID and a
// freshly incremented Partial IV as the AAD's request_kid/request_piv
// (there is no "originating request" to parse from - this message *is*
// the request). It returns the protected message plus the RequestContext
// the caller must hold onto and pass to ProtectResponse/Unprotect's
// matching response processing, since a response's AAD always reuses the
// request's kid/piv (§4.10).
func (ep *Endpoint) ProtectRequest(ctx context.Context, msg *coap.Message) (*coap.Message, RequestContext, error) {
	ctx, span := tracing.StartSpan(ctx, tracing.SpanProtect, trace.WithAttributes(tracing.Operation("protect")))
	defer span.End()
	ctx = withTraceContext(ctx, "protect")

	ep.mu.Lock()
	defer ep.mu.Unlock()

	metrics.ProtectTotal.Inc()

	piv, err := ep.Sender.NextPartialIV()
	if err != nil {
		tracing.RecordError(ctx, err)
		return nil, RequestContext{}, protectErr(err)
	}
	if err := ep.Store.SaveSenderSeq(ctx, ep.Sender.SeqNum()); err != nil {
		err = protectErr(newErr(KindTransportError, "persisting sender sequence number", err))
		tracing.RecordError(ctx, err)
		return nil, RequestContext{}, err
	}

	reqCtx := RequestContext{KID: ep.Sender.SenderID, PartialIV: piv}
	tracing.SetAttributes(ctx, tracing.SenderIDHex(hexSenderID(ep.Sender.SenderID)))
	out, err := ep.protect(ctx, msg, piv, reqCtx, coap.CodePOST, false)
	if err != nil {
		tracing.RecordError(ctx, err)
		return nil, reqCtx, protectErr(err)
	}
	return out, reqCtx, nil
}

// ProtectResponse converts a plaintext outgoing response into its
// OSCORE-protected form, computing AAD from req (the peer's request,
// as returned by Unprotect) rather than from this message's own Partial
// IV, per §4.10/§4.11. The outer response code is fixed to 2.04 Changed
// (§6); the real code travels inside the ciphertext.
func (ep *Endpoint) ProtectResponse(ctx context.Context, req RequestContext, msg *coap.Message) (*coap.Message, error) {
	ctx, span := tracing.StartSpan(ctx, tracing.SpanProtect, trace.WithAttributes(tracing.Operation("protect")))
	defer span.End()
	ctx = withTraceContext(ctx, "protect")

	ep.mu.Lock()
	defer ep.mu.Unlock()

	metrics.ProtectTotal.Inc()

	piv, err := ep.Sender.NextPartialIV()
	if err != nil {
		tracing.RecordError(ctx, err)
		return nil, protectErr(err)
	}
	if err := ep.Store.SaveSenderSeq(ctx, ep.Sender.SeqNum()); err != nil {
		err = protectErr(newErr(KindTransportError, "persisting sender sequence number", err))
		tracing.RecordError(ctx, err)
		return nil, err
	}

	tracing.SetAttributes(ctx, tracing.SenderIDHex(hexSenderID(ep.Sender.SenderID)))
	out, err := ep.protect(ctx, msg, piv, req, coap.CodeChanged, true)
	if err != nil {
		tracing.RecordError(ctx, err)
		return nil, protectErr(err)
	}
	return out, nil
}

// protectErr records a protect failure's Kind in metrics before returning
// it unchanged, so callers keep getting a plain *Error. errs that aren't
// *Error (shouldn't happen, but %w-wrapped causes might not unwrap to
// one) are counted under "unknown" rather than panicking.
func protectErr(err error) error {
	if err == nil {
		return nil
	}
	reason := "unknown"
	if oerr, ok := err.(*Error); ok {
		reason = string(oerr.Kind)
	}
	metrics.ProtectErrorsTotal.WithLabelValues(reason).Inc()
	return err
}

// protect implements §4.11 steps 4-10, shared by ProtectRequest and
// ProtectResponse: they differ only in how the sequence number was
// incremented and which request_kid/request_piv feed the AAD; from here
// the nonce, plaintext, AAD and outer assembly logic are identical.
func (ep *Endpoint) protect(ctx context.Context, msg *coap.Message, piv []byte, req RequestContext, outerCode uint8, isResponse bool) (*coap.Message, error) {
	n, err := nonce.Build(ep.Sender.SenderID, piv, ep.Common.CommonIV[:])
	if err != nil {
		return nil, newErr(KindInvalidIvLength, "building nonce", err)
	}

	plaintext, err := buildPlaintext(msg)
	if err != nil {
		return nil, err
	}

	aadBytes, err := aad.Build(aad.External{
		AeadAlg:    ep.Common.AeadAlg,
		RequestKID: req.KID,
		RequestPIV: req.PartialIV,
	})
	if err != nil {
		return nil, newErr(KindCborError, "building external aad", err)
	}

	sealStart := time.Now()
	ciphertext, err := aead.Seal(ep.Sender.SenderKey[:], n, plaintext, aadBytes)
	metrics.SealDuration.Observe(time.Since(sealStart).Seconds())
	if err != nil {
		return nil, newErr(KindInvalidKeyLength, "sealing", err)
	}

	logger.DebugCtx(ctx, "protect", logger.SenderID(ep.Sender.SenderID), logger.PartialIV(piv))

	oscoreVal, err := oscoreopt.Encode(oscoreopt.Value{
		PartialIV:  piv,
		KID:        ep.Sender.SenderID,
		KIDPresent: !isResponse,
	}, isResponse)
	if err != nil {
		return nil, newErr(KindKidContextError, "encoding oscore option", err)
	}

	outerOpts, err := coap.Filter(msg.Options, coap.ClassU)
	if err != nil {
		return nil, classErr(err)
	}
	outerOpts = insertSorted(outerOpts, coap.Option{Number: coap.OptionOSCORE, Value: oscoreVal})

	out := &coap.Message{
		Version:   msg.Version,
		Type:      msg.Type,
		Token:     msg.Token,
		MessageID: msg.MessageID,
		Code:      outerCode,
		Options:   outerOpts,
		Payload:   ciphertext,
	}
	return out, nil
}

// buildPlaintext forms `[CoAP_code] || encode(options, Class E) || (0xFF
// || payload if payload non-empty)` (§4.11 step 6).
func buildPlaintext(msg *coap.Message) ([]byte, error) {
	classE, err := coap.Filter(msg.Options, coap.ClassE)
	if err != nil {
		return nil, classErr(err)
	}
	_, optLen := coap.Sizing(classE)

	total := 1 + optLen
	if len(msg.Payload) > 0 {
		total += 1 + len(msg.Payload)
	}

	out := make([]byte, total)
	out[0] = msg.Code
	n, err := coap.Encode(classE, out[1:1+optLen])
	if err != nil {
		return nil, newErr(KindInvalidOptionLength, "encoding class e options", err)
	}
	off := 1 + n
	if len(msg.Payload) > 0 {
		out[off] = 0xff
		copy(out[off+1:], msg.Payload)
	}
	return out, nil
}

// insertSorted inserts opt into opts, keeping the sequence sorted by
// Number (the ordering invariant §3 requires of stored/emitted options).
func insertSorted(opts coap.Options, opt coap.Option) coap.Options {
	i := sort.Search(len(opts), func(i int) bool { return opts[i].Number >= opt.Number })
	opts = append(opts, coap.Option{})
	copy(opts[i+1:], opts[i:])
	opts[i] = opt
	return opts
}

func classErr(err error) error {
	if uriErr, ok := err.(*coap.URIError); ok {
		switch uriErr.Kind {
		case "UriInvalidProtocol":
			return newErr(KindUriInvalidProtocol, uriErr.Err, err)
		case "UriInvalidFragment":
			return newErr(KindUriInvalidFragment, uriErr.Err, err)
		default:
			return newErr(KindUriParserError, uriErr.Err, err)
		}
	}
	return newErr(KindInvalidOptionLength, "partitioning options", err)
}
